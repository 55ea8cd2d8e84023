// Package model 定义了与数据库表对应的数据结构
package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageRole 消息角色常量
const (
	MessageRoleUser      = "user"      // 用户消息
	MessageRoleAssistant = "assistant" // AI 助手响应
)

// ErrInvalidRole 消息角色不在枚举范围内
var ErrInvalidRole = errors.New("invalid message role")

// Message 消息模型
// 对应数据库表 messages
// 存储会话中的每一条消息，创建后不可变
type Message struct {
	// ID 消息唯一标识，UUID 字符串主键
	ID string `gorm:"primaryKey;size:36" json:"id"`

	// ConversationID 所属会话ID，外键关联 conversations.id
	// 消息只属于一个会话，不会被移动到其他会话
	ConversationID string `gorm:"index;size:36;not null" json:"conversation_id"`

	// Role 消息角色
	// user: 用户发送的消息
	// assistant: AI 助手的响应
	// 写入时严格校验，拒绝枚举之外的值
	Role string `gorm:"size:20;not null" json:"role"`

	// Content 消息内容
	// 使用 TEXT 类型存储，可以存储较长的内容
	Content string `gorm:"type:text;not null" json:"content"`

	// CreatedAt 消息创建时间
	// 同一会话内按插入顺序非递减，历史查询按此字段排序
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName 指定表名
func (Message) TableName() string {
	return "messages"
}

// BeforeCreate 创建前生成 UUID 主键并校验角色
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.Role != MessageRoleUser && m.Role != MessageRoleAssistant {
		return ErrInvalidRole
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// Package model 定义了与数据库表对应的数据结构
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation 会话模型
// 对应数据库表 conversations
// 一个 SessionID 对应一个会话，会话在第一条消息发送时惰性创建
type Conversation struct {
	// ID 会话唯一标识，UUID 字符串主键
	ID string `gorm:"primaryKey;size:36" json:"id"`

	// SessionID 前端持有的会话标识
	// 全局唯一，创建后不可变，是会话对外的唯一句柄
	// 唯一索引由数据库保证，防止并发创建时产生重复会话
	SessionID string `gorm:"uniqueIndex;size:36;not null" json:"session_id"`

	// CreatedAt 创建时间
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Messages 会话中的所有消息（一对多关系）
	// 删除会话时级联删除消息
	Messages []Message `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

// TableName 指定表名
func (Conversation) TableName() string {
	return "conversations"
}

// BeforeCreate 创建前生成 UUID 主键
func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

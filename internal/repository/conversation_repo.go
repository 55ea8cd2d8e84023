// Package repository 提供数据访问层的实现
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"gemini-chat-server/internal/model"
)

// ErrDuplicateSession 会话标识已存在
// 并发的"首条消息"请求竞争创建同一 SessionID 时触发
// 调用方应重新查询并继续，而不是让请求失败
var ErrDuplicateSession = errors.New("session id already exists")

// ConversationRepository 会话数据访问层
// 负责会话相关的所有数据库操作
type ConversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository 创建 ConversationRepository 实例
func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Create 创建新会话
// 依赖 conversations.session_id 的唯一索引防止并发重复创建
// 参数:
//   - ctx: 上下文
//   - conversation: 会话对象，ID 和 CreatedAt 会被自动填充
//
// 返回:
//   - error: SessionID 冲突时返回 ErrDuplicateSession，其他为数据库错误
func (r *ConversationRepository) Create(ctx context.Context, conversation *model.Conversation) error {
	err := r.db.WithContext(ctx).Create(conversation).Error
	if err != nil {
		// 需要 gorm.Config{TranslateError: true}，否则驱动错误不会被翻译
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateSession
		}
		return err
	}
	return nil
}

// GetBySessionID 根据 SessionID 获取会话
// 参数:
//   - ctx: 上下文
//   - sessionID: 前端持有的会话标识
//
// 返回:
//   - *model.Conversation: 会话对象，未找到返回 nil
//   - error: 数据库错误
func (r *ConversationRepository) GetBySessionID(ctx context.Context, sessionID string) (*model.Conversation, error) {
	var conversation model.Conversation
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&conversation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conversation, nil
}

// GetBySessionIDWithMessages 根据 SessionID 获取会话及其全部消息
// 用于历史查询，消息按创建时间正序排列
// 参数:
//   - ctx: 上下文
//   - sessionID: 前端持有的会话标识
//
// 返回:
//   - *model.Conversation: 包含 Messages 字段的会话对象，未找到返回 nil
//   - error: 数据库错误
func (r *ConversationRepository) GetBySessionIDWithMessages(ctx context.Context, sessionID string) (*model.Conversation, error) {
	var conversation model.Conversation
	// Preload 预加载消息，并按创建时间排序
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC") // 按时间正序，最早的在前
		}).
		Where("session_id = ?", sessionID).
		First(&conversation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conversation, nil
}

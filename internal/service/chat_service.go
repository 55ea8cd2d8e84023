// Package service 提供业务逻辑层的实现
package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"gemini-chat-server/internal/model"
	"gemini-chat-server/internal/repository"
	"gemini-chat-server/pkg/apperr"
)

const (
	// MaxMessageLength 单条用户消息的最大长度（字符数）
	MaxMessageLength = 10000

	// historyFetchLimit 从存储加载的历史消息上限
	// 与 gemini_service 的渲染上限（10）相互独立，见 contextWindow 的说明
	historyFetchLimit = 20
)

// ConversationStore 会话存储接口
// 由 repository.ConversationRepository 实现，测试时可替换
type ConversationStore interface {
	Create(ctx context.Context, conversation *model.Conversation) error
	GetBySessionID(ctx context.Context, sessionID string) (*model.Conversation, error)
	GetBySessionIDWithMessages(ctx context.Context, sessionID string) (*model.Conversation, error)
}

// MessageStore 消息存储接口
// 由 repository.MessageRepository 实现，测试时可替换
type MessageStore interface {
	Create(ctx context.Context, message *model.Message) error
	GetLatestByConversationID(ctx context.Context, conversationID string, limit int) ([]model.Message, error)
}

// Generator 文本生成接口
// 由 GeminiService 实现，测试时可替换
type Generator interface {
	GenerateResponse(userMessage string, history []ChatMessage) (string, error)
}

// ChatService 聊天服务
// 串联会话查找/创建、消息持久化和文本生成
type ChatService struct {
	conversationStore ConversationStore
	messageStore      MessageStore
	generator         Generator
}

// NewChatService 创建 ChatService 实例
func NewChatService(conversationStore ConversationStore, messageStore MessageStore, generator Generator) *ChatService {
	return &ChatService{
		conversationStore: conversationStore,
		messageStore:      messageStore,
		generator:         generator,
	}
}

// SendMessageResponse 发送消息的响应
type SendMessageResponse struct {
	Reply     string `json:"reply"`     // 生成的回复文本
	MessageID string `json:"messageId"` // 助手消息的ID
}

// MessageView 历史消息的对外视图
type MessageView struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// ChatHistoryResponse 历史查询的响应
type ChatHistoryResponse struct {
	SessionID string        `json:"sessionId"`
	Messages  []MessageView `json:"messages"`
}

// SendMessage 处理一轮对话
// 流程: 校验 -> 查找或创建会话 -> 持久化用户消息 -> 生成回复 -> 持久化助手消息
// 用户消息在生成之前落库，生成失败时不回滚，保留用户输入便于重试和排查
// 参数:
//   - ctx: 上下文
//   - sessionID: 会话标识
//   - message: 用户消息原文
//
// 返回:
//   - *SendMessageResponse: 回复文本和助手消息ID
//   - error: 分类后的 AppError
func (s *ChatService) SendMessage(ctx context.Context, sessionID, message string) (*SendMessageResponse, error) {
	// 校验发生在任何副作用之前
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return nil, apperr.Validation("Message cannot be empty")
	}
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return nil, apperr.Validation("Message is too long (max 10000 characters)")
	}

	// 查找或创建会话，并预取最近的历史
	conversation, history, err := s.findOrCreateConversation(ctx, sessionID)
	if err != nil {
		return nil, apperr.From(err, "Failed to process message")
	}

	// 持久化用户消息
	userMessage := &model.Message{
		ConversationID: conversation.ID,
		Role:           model.MessageRoleUser,
		Content:        trimmed,
	}
	if err := s.messageStore.Create(ctx, userMessage); err != nil {
		return nil, apperr.From(err, "Failed to process message")
	}

	// 生成回复，历史中不包含刚落库的用户消息，它作为 userMessage 单独传入
	reply, err := s.generator.GenerateResponse(trimmed, history)
	if err != nil {
		return nil, apperr.From(err, "Failed to process message")
	}

	// 持久化助手消息
	assistantMessage := &model.Message{
		ConversationID: conversation.ID,
		Role:           model.MessageRoleAssistant,
		Content:        reply,
	}
	if err := s.messageStore.Create(ctx, assistantMessage); err != nil {
		return nil, apperr.From(err, "Failed to process message")
	}

	return &SendMessageResponse{
		Reply:     reply,
		MessageID: assistantMessage.ID,
	}, nil
}

// findOrCreateConversation 按 SessionID 查找会话，不存在则创建
// 返回会话和最近 historyFetchLimit 条消息（按时间正序）
// 并发创建同一 SessionID 时，输掉竞争的一方重新查询并继续，
// 保证同一 SessionID 只有一行会话，两条用户消息都挂在它下面
func (s *ChatService) findOrCreateConversation(ctx context.Context, sessionID string) (*model.Conversation, []ChatMessage, error) {
	conversation, err := s.conversationStore.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	if conversation == nil {
		conversation = &model.Conversation{SessionID: sessionID}
		err = s.conversationStore.Create(ctx, conversation)
		if errors.Is(err, repository.ErrDuplicateSession) {
			// 另一边刚创建了同一会话，改为使用它
			conversation, err = s.conversationStore.GetBySessionID(ctx, sessionID)
			if err != nil {
				return nil, nil, err
			}
			if conversation == nil {
				return nil, nil, repository.ErrDuplicateSession
			}
		} else if err != nil {
			return nil, nil, err
		}
	}

	messages, err := s.messageStore.GetLatestByConversationID(ctx, conversation.ID, historyFetchLimit)
	if err != nil {
		return nil, nil, err
	}

	history := make([]ChatMessage, len(messages))
	for i, msg := range messages {
		history[i] = ChatMessage{Role: msg.Role, Content: msg.Content}
	}
	return conversation, history, nil
}

// GetChatHistory 获取会话的全部历史消息
// 未知 SessionID 返回空列表而不是错误，表示"还没有历史"
// 参数:
//   - ctx: 上下文
//   - sessionID: 会话标识
//
// 返回:
//   - *ChatHistoryResponse: 按时间正序的消息列表
//   - error: 分类后的 AppError
func (s *ChatService) GetChatHistory(ctx context.Context, sessionID string) (*ChatHistoryResponse, error) {
	conversation, err := s.conversationStore.GetBySessionIDWithMessages(ctx, sessionID)
	if err != nil {
		return nil, apperr.From(err, "Failed to retrieve chat history")
	}

	resp := &ChatHistoryResponse{
		SessionID: sessionID,
		Messages:  []MessageView{},
	}
	if conversation == nil {
		return resp, nil
	}

	for _, msg := range conversation.Messages {
		resp.Messages = append(resp.Messages, MessageView{
			ID:        msg.ID,
			Role:      msg.Role,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		})
	}
	return resp, nil
}

// CreateNewSession 生成新的会话标识
// 只返回 UUID，会话行在第一条消息发送时才创建
func (s *ChatService) CreateNewSession() string {
	return uuid.New().String()
}

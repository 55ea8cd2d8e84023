// Package handler 提供 HTTP 请求处理器
package handler

import (
	"log"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gemini-chat-server/internal/cache"
	"gemini-chat-server/internal/service"
	"gemini-chat-server/pkg/apperr"
	"gemini-chat-server/pkg/response"
)

// ChatHandler 聊天请求处理器
type ChatHandler struct {
	chatService *service.ChatService
	guard       *cache.GenerationGuard // 可为 nil，表示未启用并发限制
}

// NewChatHandler 创建 ChatHandler 实例
func NewChatHandler(chatService *service.ChatService, guard *cache.GenerationGuard) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		guard:       guard,
	}
}

// SendMessageRequest 发送消息请求
type SendMessageRequest struct {
	SessionID string `json:"sessionId"` // 会话标识，必须是 UUID
	Message   string `json:"message"`   // 用户消息，1..10000 字符
}

// validateSendMessage 校验发送消息请求的各个字段
// 返回字段级错误列表，空列表表示通过
func validateSendMessage(req *SendMessageRequest) []response.FieldError {
	var errs []response.FieldError

	if strings.TrimSpace(req.SessionID) == "" {
		errs = append(errs, response.FieldError{Field: "sessionId", Message: "Session ID is required"})
	} else if _, err := uuid.Parse(req.SessionID); err != nil {
		errs = append(errs, response.FieldError{Field: "sessionId", Message: "Session ID must be a valid UUID"})
	}

	if strings.TrimSpace(req.Message) == "" {
		errs = append(errs, response.FieldError{Field: "message", Message: "Message is required"})
	} else if utf8.RuneCountInString(req.Message) > service.MaxMessageLength {
		errs = append(errs, response.FieldError{Field: "message", Message: "Message must not exceed 10000 characters"})
	}

	return errs
}

// SendMessage 发送消息并获取 AI 回复
// POST /api/chat/message
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validateSendMessage(&req); len(errs) > 0 {
		response.ValidationFailed(c, errs)
		return
	}

	// 同会话并发限制（可选）
	// Redis 故障时放行，保持未启用时的行为
	if h.guard != nil {
		ok, err := h.guard.Acquire(c.Request.Context(), req.SessionID)
		if err != nil {
			log.Printf("[WARN] generation guard unavailable: %v", err)
		} else if !ok {
			response.TooManyRequests(c, "Another message is being processed for this session")
			return
		} else {
			defer func() {
				if err := h.guard.Release(c.Request.Context(), req.SessionID); err != nil {
					log.Printf("[WARN] failed to release generation guard: %v", err)
				}
			}()
		}
	}

	result, err := h.chatService.SendMessage(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		failWith(c, err, "Failed to process message")
		return
	}

	response.Success(c, result)
}

// GetChatHistory 获取会话的历史消息
// GET /api/chat/history/:sessionId
func (h *ChatHandler) GetChatHistory(c *gin.Context) {
	sessionID := c.Param("sessionId")
	if _, err := uuid.Parse(sessionID); err != nil {
		response.ValidationFailed(c, []response.FieldError{
			{Field: "sessionId", Message: "Session ID must be a valid UUID"},
		})
		return
	}

	history, err := h.chatService.GetChatHistory(c.Request.Context(), sessionID)
	if err != nil {
		failWith(c, err, "Failed to retrieve chat history")
		return
	}

	response.Success(c, history)
}

// CreateSession 创建新会话
// POST /api/chat/session
// 只分配 SessionID，会话行在第一条消息发送时才创建
func (h *ChatHandler) CreateSession(c *gin.Context) {
	sessionID := h.chatService.CreateNewSession()
	response.Created(c, gin.H{"sessionId": sessionID})
}

// failWith 错误出口
// 所有业务错误在这里映射为 HTTP 状态码和响应信封
func failWith(c *gin.Context, err error, fallback string) {
	appErr := apperr.From(err, fallback)
	if appErr.Status >= http.StatusInternalServerError {
		log.Printf("[ERROR] %s: %v", c.FullPath(), err)
	}
	response.Fail(c, appErr.Status, appErr.Message)
}

// Package service 提供业务逻辑层的实现
package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gemini-chat-server/internal/config"
	"gemini-chat-server/pkg/apperr"
)

const (
	// Gemini API Endpoint
	GeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"

	// 生成调用的超时时间
	// 超时后放弃本次调用，外部请求自然结束后结果被丢弃
	generateTimeout = 30 * time.Second

	// contextWindow 渲染进提示词的最大历史条数
	// 注意与 chat_service 的拉取上限（20）是两个独立的常量：
	// 拉取上限控制从存储加载多少，渲染上限控制给模型看多少
	contextWindow = 10
)

// systemPrompt 固定的系统提示词
// 只影响回复的语气和风格，不承载业务逻辑
const systemPrompt = `You are a helpful and knowledgeable AI assistant with expertise across multiple domains. Your role is to:

## Core Responsibilities:
- Provide accurate, clear, and helpful responses based on the latest information
- Be friendly and conversational in tone while maintaining professionalism
- Ask clarifying questions when the user's intent is unclear
- Admit when you don't know something rather than guessing
- Keep responses concise but informative, balancing brevity with completeness
- Use proper formatting (bullet points, numbered lists, code blocks) for better readability

## Knowledge Context:
- You have access to general knowledge across science, technology, arts, and humanities
- When discussing technical topics, provide practical examples and explanations
- For coding questions, suggest best practices and include code snippets when helpful
- Stay up-to-date with current events and modern practices
- Consider cultural context and diverse perspectives in your responses

## Conversation Guidelines:
- Always maintain context from the conversation history to provide coherent, contextual responses
- Reference previous messages when relevant to show continuity
- Build upon earlier topics naturally in the conversation
- If the user changes topics, acknowledge the shift while being prepared to return to earlier subjects
- Adapt your tone and complexity based on the user's communication style

## Response Quality:
- Prioritize accuracy over speed - take time to provide well-thought-out answers
- Structure complex information in digestible chunks
- Use analogies and examples to clarify difficult concepts
- Provide sources or suggest where to find more information when appropriate
- Be proactive in offering relevant follow-up information or suggestions

Remember: You are here to assist, educate, and engage in meaningful dialogue while respecting the user's time and intelligence.`

// ChatMessage 一条对话消息
// 发给模型的历史上下文的最小单元
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GeminiService 封装 Gemini 文本生成 API
type GeminiService struct {
	apiKey  string
	model   string
	baseURL string        // API 基础地址，测试时可替换
	timeout time.Duration // 生成调用超时
	client  *http.Client
}

// NewGeminiService 创建 GeminiService 实例
func NewGeminiService(cfg *config.Config) *GeminiService {
	return &GeminiService{
		apiKey:  cfg.Gemini.APIKey,
		model:   cfg.Gemini.Model,
		baseURL: GeminiEndpoint,
		timeout: generateTimeout,
		client: &http.Client{
			// 略大于生成超时，保证被放弃的调用也能自然结束
			Timeout: generateTimeout + 5*time.Second,
		},
	}
}

// geminiRequest Gemini API 请求结构
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// geminiResponse Gemini API 响应结构
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// apiError 上游调用失败，携带上游状态码
// 在 classifyError 中被收敛为 AppError
type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string {
	return e.message
}

// buildContext 将历史消息渲染为纯文本对话记录
// 只取最后 contextWindow 条，按时间正序逐行拼接
// 空历史返回空字符串，调用方据此省略整个 Previous conversation 段落
func buildContext(history []ChatMessage) string {
	if len(history) > contextWindow {
		history = history[len(history)-contextWindow:]
	}
	lines := make([]string, 0, len(history))
	for _, msg := range history {
		label := "Assistant"
		if msg.Role == "user" {
			label = "User"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", label, msg.Content))
	}
	return strings.Join(lines, "\n")
}

// buildPrompt 拼装完整提示词
// 系统提示词 + 可选的历史对话段落 + 当前用户消息
func buildPrompt(userMessage string, history []ChatMessage) string {
	context := buildContext(history)

	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\n")
	if context != "" {
		b.WriteString("Previous conversation:\n")
		b.WriteString(context)
		b.WriteString("\n\n")
	}
	b.WriteString("User: ")
	b.WriteString(userMessage)
	b.WriteString("\nAssistant:")
	return b.String()
}

type generateResult struct {
	text string
	err  error
}

// GenerateResponse 调用 Gemini 生成回复
// 生成调用与定时器竞争，超时一方先到则返回超时错误；
// 输掉竞争的调用不会被取消，其结果写入带缓冲的通道后被丢弃
// 参数:
//   - userMessage: 当前用户消息
//   - history: 历史对话（按时间正序，不含当前消息）
//
// 返回:
//   - string: 去除首尾空白后的生成文本
//   - error: 分类后的 AppError
func (s *GeminiService) GenerateResponse(userMessage string, history []ChatMessage) (string, error) {
	prompt := buildPrompt(userMessage, history)

	// 缓冲为 1，竞争失败的调用完成时不会阻塞泄漏的 goroutine
	ch := make(chan generateResult, 1)
	go func() {
		text, err := s.callAPI(prompt)
		ch <- generateResult{text: text, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return "", classifyError(res.err)
		}
		return strings.TrimSpace(res.text), nil
	case <-time.After(s.timeout):
		return "", apperr.Timeout()
	}
}

// callAPI 发送 generateContent 请求并提取文本
func (s *GeminiService) callAPI(prompt string) (string, error) {
	// 1. 构造请求 Body
	geminiReq := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
	}

	jsonData, err := json.Marshal(geminiReq)
	if err != nil {
		return "", err
	}

	// 2. 发送 HTTP 请求
	url := fmt.Sprintf("%s/%s:generateContent", s.baseURL, s.model)
	httpReq, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call Gemini API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	// 3. 解析响应
	var geminiResp geminiResponse
	if err := json.Unmarshal(bodyBytes, &geminiResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", &apiError{status: resp.StatusCode, message: fmt.Sprintf("Gemini API returned status %d", resp.StatusCode)}
		}
		return "", fmt.Errorf("failed to parse Gemini response: %w", err)
	}

	if geminiResp.Error != nil {
		return "", &apiError{status: resp.StatusCode, message: geminiResp.Error.Message}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &apiError{status: resp.StatusCode, message: fmt.Sprintf("Gemini API returned status %d", resp.StatusCode)}
	}

	// 4. 提取文本
	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", apperr.EmptyResponse()
	}

	text := geminiResp.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", apperr.EmptyResponse()
	}

	return text, nil
}

// classifyError 将上游错误收敛为 AppError
// 含 "API key" 的错误统一替换为固定文案，避免泄漏密钥相关细节；
// 含 "timeout" 的错误映射为 504；其余保留上游信息和状态码
func classifyError(err error) error {
	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	msg := err.Error()
	if strings.Contains(msg, "API key") {
		return apperr.Configuration()
	}
	if strings.Contains(msg, "timeout") {
		return apperr.Timeout()
	}

	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apperr.Generation(apiErr.message, apiErr.status)
	}
	return apperr.Generation(msg, 0)
}

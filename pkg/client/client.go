// Package client 封装与聊天后端的 HTTP API 交互
// 供命令行或其他 Go 程序作为轻量客户端使用
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client API 客户端
// baseURL: 例如 http://localhost:8080
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient 创建 API 客户端
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// --- 通用响应 ---

// APIResponse 服务端统一响应信封
type APIResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Message 历史消息
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// SendMessageResult 发送消息的结果
type SendMessageResult struct {
	Reply     string `json:"reply"`
	MessageID string `json:"messageId"`
}

// ChatHistory 会话历史
type ChatHistory struct {
	SessionID string    `json:"sessionId"`
	Messages  []Message `json:"messages"`
}

// CreateSession 申请新的会话标识
func (c *Client) CreateSession() (string, error) {
	resp, err := c.post("/api/chat/session", nil)
	if err != nil {
		return "", err
	}
	var result struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return "", fmt.Errorf("failed to parse session response: %w", err)
	}
	return result.SessionID, nil
}

// SendMessage 发送消息并获取 AI 回复
func (c *Client) SendMessage(sessionID, message string) (*SendMessageResult, error) {
	body := map[string]string{
		"sessionId": sessionID,
		"message":   message,
	}
	resp, err := c.post("/api/chat/message", body)
	if err != nil {
		return nil, err
	}
	var result SendMessageResult
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse message response: %w", err)
	}
	return &result, nil
}

// GetChatHistory 获取会话的全部历史消息
func (c *Client) GetChatHistory(sessionID string) (*ChatHistory, error) {
	resp, err := c.get("/api/chat/history/" + sessionID)
	if err != nil {
		return nil, err
	}
	var result ChatHistory
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse history response: %w", err)
	}
	return &result, nil
}

// --- 通用请求封装 ---

func (c *Client) get(path string) (*APIResponse, error) {
	req, err := http.NewRequest("GET", c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) post(path string, body interface{}) (*APIResponse, error) {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewBuffer(jsonBody)
	}
	req, err := http.NewRequest("POST", c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*APIResponse, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response (status %d): %w", resp.StatusCode, err)
	}

	if !apiResp.Success {
		if apiResp.Message == "" {
			apiResp.Message = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("API error: %s", apiResp.Message)
	}

	return &apiResp, nil
}

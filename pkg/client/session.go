package client

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SessionStore 持久化单个会话标识
// 对应浏览器前端的 localStorage 存储：一个客户端只记一个 SessionID，
// 清除后下次会向服务端申请新的标识
type SessionStore struct {
	path string
}

// NewSessionStore 创建默认位置的 SessionStore
// 会话标识存储在 <用户配置目录>/gemini-chat/session_id
func NewSessionStore() (*SessionStore, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to locate config dir: %w", err)
	}
	return NewSessionStoreAt(filepath.Join(dir, "gemini-chat", "session_id")), nil
}

// NewSessionStoreAt 创建指定文件路径的 SessionStore
func NewSessionStoreAt(path string) *SessionStore {
	return &SessionStore{path: path}
}

// Get 读取已保存的会话标识
// 文件不存在或为空时返回空字符串，不视为错误
func (s *SessionStore) Get() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read session id: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Set 保存会话标识
func (s *SessionStore) Set(sessionID string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(sessionID), 0600); err != nil {
		return fmt.Errorf("failed to save session id: %w", err)
	}
	return nil
}

// Clear 清除已保存的会话标识
func (s *SessionStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear session id: %w", err)
	}
	return nil
}

// GetOrCreate 获取已保存的会话标识，没有则向服务端申请并持久化
func (s *SessionStore) GetOrCreate(c *Client) (string, error) {
	sessionID, err := s.Get()
	if err != nil {
		return "", err
	}
	if sessionID != "" {
		return sessionID, nil
	}

	sessionID, err = c.CreateSession()
	if err != nil {
		return "", err
	}
	if err := s.Set(sessionID); err != nil {
		return "", err
	}
	return sessionID, nil
}

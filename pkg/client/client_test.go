package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer 模拟聊天后端
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/api/chat/session", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"success":true,"data":{"sessionId":"11111111-2222-3333-4444-555555555555"}}`)
	})

	mux.HandleFunc("/api/chat/message", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req["message"] == "" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"success":false,"message":"Validation error","errors":[{"field":"message","message":"Message is required"}]}`)
			return
		}
		fmt.Fprint(w, `{"success":true,"data":{"reply":"Hi there","messageId":"msg-1"}}`)
	})

	mux.HandleFunc("/api/chat/history/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"data":{"sessionId":"11111111-2222-3333-4444-555555555555","messages":[{"id":"m1","role":"user","content":"Hello","createdAt":"2025-01-02T03:04:05Z"},{"id":"m2","role":"assistant","content":"Hi there","createdAt":"2025-01-02T03:04:06Z"}]}}`)
	})

	return httptest.NewServer(mux)
}

func TestCreateSession(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	c := NewClient(server.URL)
	sessionID, err := c.CreateSession()
	require.NoError(t, err)
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", sessionID)
}

func TestSendMessage(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	c := NewClient(server.URL)
	result, err := c.SendMessage("11111111-2222-3333-4444-555555555555", "Hello")
	require.NoError(t, err)
	assert.Equal(t, "Hi there", result.Reply)
	assert.Equal(t, "msg-1", result.MessageID)
}

func TestSendMessageErrorEnvelope(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	c := NewClient(server.URL)
	_, err := c.SendMessage("11111111-2222-3333-4444-555555555555", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Validation error")
}

func TestGetChatHistory(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	c := NewClient(server.URL)
	history, err := c.GetChatHistory("11111111-2222-3333-4444-555555555555")
	require.NoError(t, err)
	require.Len(t, history.Messages, 2)
	assert.Equal(t, "user", history.Messages[0].Role)
	assert.Equal(t, "assistant", history.Messages[1].Role)
}

package client

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStoreRoundTrip(t *testing.T) {
	store := NewSessionStoreAt(filepath.Join(t.TempDir(), "nested", "session_id"))

	// 初始为空
	sessionID, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "", sessionID)

	require.NoError(t, store.Set("abc-123"))
	sessionID, err = store.Get()
	require.NoError(t, err)
	assert.Equal(t, "abc-123", sessionID)

	require.NoError(t, store.Clear())
	sessionID, err = store.Get()
	require.NoError(t, err)
	assert.Equal(t, "", sessionID)

	// 重复清除不报错
	require.NoError(t, store.Clear())
}

func TestSessionStoreGetOrCreate(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"success":true,"data":{"sessionId":"fresh-session-id"}}`)
	}))
	defer server.Close()

	store := NewSessionStoreAt(filepath.Join(t.TempDir(), "session_id"))
	c := NewClient(server.URL)

	// 第一次向服务端申请并持久化
	sessionID, err := store.GetOrCreate(c)
	require.NoError(t, err)
	assert.Equal(t, "fresh-session-id", sessionID)
	assert.Equal(t, 1, calls)

	// 第二次直接命中本地存储
	sessionID, err = store.GetOrCreate(c)
	require.NoError(t, err)
	assert.Equal(t, "fresh-session-id", sessionID)
	assert.Equal(t, 1, calls)
}

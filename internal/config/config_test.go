package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// 空目录：没有配置文件时使用默认值
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "localhost", cfg.MySQL.Host)
	assert.Equal(t, 3306, cfg.MySQL.Port)
	assert.Equal(t, "utf8mb4", cfg.MySQL.Charset)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "gemini-3-flash-preview", cfg.Gemini.Model)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  port: 9090
  mode: release
mysql:
  database: chatdb
  username: chat
gemini:
  api_key: file-key
  model: gemini-custom
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "chatdb", cfg.MySQL.Database)
	assert.Equal(t, "file-key", cfg.Gemini.APIKey)
	assert.Equal(t, "gemini-custom", cfg.Gemini.Model)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("MYSQL_DATABASE", "env-db")
	t.Setenv("SERVER_PORT", "7070")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Gemini.APIKey)
	assert.Equal(t, "env-db", cfg.MySQL.Database)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestValidateReportsAllMissing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini.api_key")
	assert.Contains(t, err.Error(), "mysql.database")
	assert.Contains(t, err.Error(), "mysql.username")
}

func TestValidatePasses(t *testing.T) {
	cfg := &Config{}
	cfg.Gemini.APIKey = "key"
	cfg.MySQL.Database = "chatdb"
	cfg.MySQL.Username = "chat"

	assert.NoError(t, cfg.Validate())
}

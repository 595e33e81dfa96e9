package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerConfigDefaultsPort(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := loadServerConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoadServerConfigAcceptsHostPort(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:9000")

	cfg, err := loadServerConfig()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
}

func TestLoadServerConfigRejectsSpaces(t *testing.T) {
	t.Setenv("PORT", "80 80")

	_, err := loadServerConfig()
	assert.Error(t, err)
}

func TestLoadAIConfigRejectsBadBool(t *testing.T) {
	t.Setenv("AI_SENTIMENT_LLM_ENABLED", "maybe")

	_, err := loadAIConfig()
	assert.Error(t, err)
}

func TestAIConfigEnabled(t *testing.T) {
	assert.False(t, AIConfig{}.Enabled())
	assert.True(t, AIConfig{Model: "m", APIKey: "k"}.Enabled())
	assert.True(t, AIConfig{Model: "m", AccessKey: "a", SecretKey: "s"}.Enabled())
	assert.False(t, AIConfig{APIKey: "k"}.Enabled())
}

func TestLoadClientFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sentibot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: http://file.example/\ntoken: from-file\n"), 0o600))

	t.Setenv("SENTIBOT_CONFIG", "")
	t.Setenv("SENTIBOT_API_URL", "")
	t.Setenv("SENTIBOT_TOKEN", "from-env")
	t.Setenv("SENTIBOT_TIMEOUT", "5")

	cfg, err := LoadClient(path)
	require.NoError(t, err)
	assert.Equal(t, "http://file.example", cfg.BaseURL)
	assert.Equal(t, "from-env", cfg.Token)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestLoadClientRejectsNonPositiveTimeout(t *testing.T) {
	t.Setenv("SENTIBOT_CONFIG", "")
	t.Setenv("SENTIBOT_TIMEOUT", "0")

	_, err := LoadClient("")
	assert.Error(t, err)
}

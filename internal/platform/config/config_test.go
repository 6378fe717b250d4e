package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"U8G2_SERVER_URL", "U8G2_HTTP_TIMEOUT", "U8G2_POLL_INTERVAL", "U8G2_WATCH_TIMEOUT",
		"U8G2_MAX_MALFORMED_POLLS", "U8G2_DOWNLOAD_DIR", "U8G2_AUTO_DOWNLOAD", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.Server.URL)
	assert.Equal(t, 30*time.Second, cfg.Server.HTTPTimeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.Poll.Interval)
	assert.Equal(t, time.Duration(0), cfg.Poll.WatchTimeout)
	assert.Equal(t, 5, cfg.Poll.MaxMalformed)
	assert.Equal(t, ".", cfg.Download.Dir)
	assert.True(t, cfg.Download.Auto)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("U8G2_SERVER_URL", "http://fonts.internal:8080")
	t.Setenv("U8G2_POLL_INTERVAL", "500ms")
	t.Setenv("U8G2_WATCH_TIMEOUT", "120")
	t.Setenv("U8G2_MAX_MALFORMED_POLLS", "0")
	t.Setenv("U8G2_AUTO_DOWNLOAD", "false")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://fonts.internal:8080", cfg.Server.URL)
	assert.Equal(t, 500*time.Millisecond, cfg.Poll.Interval)
	assert.Equal(t, 2*time.Minute, cfg.Poll.WatchTimeout)
	assert.Equal(t, 0, cfg.Poll.MaxMalformed)
	assert.False(t, cfg.Download.Auto)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("U8G2_DOWNLOAD_DIR=/tmp/fonts\nLOG_FORMAT=text\n"), 0o644))
	// godotenv は既存の環境変数を上書きしないため、テスト後に消しておく
	t.Cleanup(func() {
		os.Unsetenv("U8G2_DOWNLOAD_DIR")
		os.Unsetenv("LOG_FORMAT")
	})
	os.Unsetenv("U8G2_DOWNLOAD_DIR")
	os.Unsetenv("LOG_FORMAT")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/fonts", cfg.Download.Dir)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("U8G2_POLL_INTERVAL", "soon")
	t.Setenv("U8G2_MAX_MALFORMED_POLLS", "many")
	t.Setenv("U8G2_AUTO_DOWNLOAD", "maybe")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 1500*time.Millisecond, cfg.Poll.Interval)
	assert.Equal(t, 5, cfg.Poll.MaxMalformed)
	assert.True(t, cfg.Download.Auto)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty url", func(c *Config) { c.Server.URL = " " }},
		{"zero interval", func(c *Config) { c.Poll.Interval = 0 }},
		{"negative timeout", func(c *Config) { c.Poll.WatchTimeout = -time.Second }},
		{"negative malformed", func(c *Config) { c.Poll.MaxMalformed = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Server: ServerConfig{URL: "http://localhost:5000"},
				Poll:   PollConfig{Interval: time.Second},
			}
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

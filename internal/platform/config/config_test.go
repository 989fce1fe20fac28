package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "http://localhost:8000", cfg.Backend.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
	assert.Zero(t, cfg.Backend.RateLimit)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "causelist_session", cfg.Session.CookieName)
	assert.Empty(t, cfg.Redis.URL)
	assert.Empty(t, cfg.Server.AllowedOrigins)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CAUSELIST_SERVER_ADDR", ":9090")
	t.Setenv("CAUSELIST_BACKEND_BASE_URL", "http://backend.test/")
	t.Setenv("CAUSELIST_BACKEND_TIMEOUT", "2s")
	t.Setenv("CAUSELIST_BACKEND_RATE_LIMIT", "0.5")
	t.Setenv("CAUSELIST_SERVER_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("CAUSELIST_LOG_LEVEL", "DEBUG")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "http://backend.test", cfg.Backend.BaseURL, "trailing slash is trimmed")
	assert.Equal(t, 2*time.Second, cfg.Backend.Timeout)
	assert.InDelta(t, 0.5, cfg.Backend.RateLimit, 1e-9)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
backend:
  base_url: http://file.test
  timeout: 45s
cache:
  size: 16
session:
  ttl: 1h
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "causelist.yaml"), yaml, 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "http://file.test", cfg.Backend.BaseURL)
	assert.Equal(t, 45*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 16, cfg.Cache.Size)
	assert.Equal(t, time.Hour, cfg.Session.TTL)

	t.Run("env wins over file", func(t *testing.T) {
		t.Setenv("CAUSELIST_BACKEND_BASE_URL", "http://env.test")
		cfg, err := Load(dir)
		require.NoError(t, err)
		assert.Equal(t, "http://env.test", cfg.Backend.BaseURL)
	})
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("CAUSELIST_CACHE_SIZE", "0")
	_, err := Load("")
	assert.Error(t, err)
}

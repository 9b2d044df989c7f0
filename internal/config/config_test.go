package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aitools/aitools/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, config.DefaultPort, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "live", cfg.Mode)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, "memory", cfg.CacheBackend)
	assert.Equal(t, config.DefaultCORSOrigins, cfg.CORSOrigins)
	assert.True(t, cfg.EnableAuditLogging)
	assert.False(t, cfg.AuthEnabled())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("AITOOLS_PORT", "9100")
	t.Setenv("AITOOLS_MODE", "demo")
	t.Setenv("AITOOLS_UPSTREAM_TIMEOUT", "3s")
	t.Setenv("AITOOLS_API_KEYS", "a,b")
	t.Setenv("AITOOLS_ENABLE_AUTH", "true")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("BRAVE_API_KEY", "brave-test")

	cfg, err := config.Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "demo", cfg.Mode)
	assert.Equal(t, 3*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, []string{"a", "b"}, cfg.APIKeys)
	assert.True(t, cfg.AuthEnabled())
	assert.Equal(t, "sk-test", cfg.AnthropicAPIKey)
	assert.Equal(t, "brave-test", cfg.BraveAPIKey)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aitools.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 8123
mode: demo
demo_cache_ttl: 1m
cors_origins: ["https://example.com"]
`), 0o600))

	cfg, err := config.Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, 8123, cfg.Port)
	assert.Equal(t, "demo", cfg.Mode)
	assert.Equal(t, time.Minute, cfg.DemoCacheTTL)
	assert.Equal(t, []string{"https://example.com"}, cfg.CORSOrigins)
}

func TestLoadFileFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aitools.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"port": 8200}`), 0o600))
	t.Setenv("AITOOLS_CONFIG", path)

	cfg, err := config.Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, 8200, cfg.Port)
}

func TestLoadMissingNamedFile(t *testing.T) {
	_, err := config.Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("AITOOLS_MODE", "staging")
	t.Setenv("AITOOLS_CACHE_BACKEND", "redis")

	_, err := config.Load(viper.New(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mode must be live or demo")
	assert.Contains(t, err.Error(), "requires redis_url")
}

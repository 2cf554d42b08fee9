package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stepwise.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err, "an explicitly named missing file is refused")

	// Default-path probing tolerates absence.
	t.Chdir(t.TempDir())
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 64, cfg.MaxSteps)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Empty(t, cfg.Redis.Addr, "store is disabled unless configured")
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
max_steps: 16
timeout: 10s
http:
  addr: ":9090"
redis:
  addr: "localhost:6379"
  ttl: 1h
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 16, cfg.MaxSteps)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
	assert.Equal(t, "stepwise:result:", cfg.Redis.Prefix, "untouched keys keep their defaults")
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "log_level: debug\nmax_steps: 16\n")
	t.Setenv("STEPWISE_LOG_LEVEL", "error")
	t.Setenv("STEPWISE_MAX_STEPS", "32")
	t.Setenv("STEPWISE_HTTP_ADDR", ":7070")
	t.Setenv("STEPWISE_REDIS_TTL", "30m")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, 32, cfg.MaxSteps)
	assert.Equal(t, ":7070", cfg.HTTP.Addr)
	assert.Equal(t, 30*time.Minute, cfg.Redis.TTL)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "log_level: [broken\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

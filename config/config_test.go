package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
app_name: inventory-test
server:
  addr: ":9090"
  mode: test
database:
  driver: sqlite
  dsn: "file:test?mode=memory"
redis:
  addr: "localhost:6380"
rate_limit:
  enabled: true
  limit: 50
  window: 30s
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "inventory-test", cfg.AppName)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "localhost:6380", cfg.Redis.Addr)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, int64(50), cfg.RateLimit.Limit)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)

	// file values merge over defaults, untouched sections keep them
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Database.SlowThreshold)
}

func TestLoadRequiresDSN(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: sqlite
`)

	_, err := Load(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "dsn")
}

func TestLoadRejectsBadRateLimit(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: sqlite
  dsn: "file:test?mode=memory"
rate_limit:
  enabled: true
  limit: 0
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDefaultIsInternallyConsistent(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.False(t, cfg.Warmer.Enabled)
}

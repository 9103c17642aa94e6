package logger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_GetReturnsSameInstance(t *testing.T) {
	m := NewManager(Config{EnableConsole: false})
	defer m.Close()

	a := m.Get("product")
	b := m.Get("product")
	assert.Same(t, a, b)

	c := m.Get("cache")
	assert.NotSame(t, a, c)
}

func TestManager_FileOutput(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(Config{
		Level:         "debug",
		EnableConsole: false,
		EnableFile:    true,
		Dir:           dir,
	})

	log := m.Get("database")
	log.Info("connected")
	require.NoError(t, m.Close())

	assert.FileExists(t, filepath.Join(dir, "database.log"))
}

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Encoding)
	assert.Equal(t, 100, cfg.MaxSizeMB)
	assert.Equal(t, "request_id", cfg.RequestIDKey)
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	assert.Equal(t, "req-123", RequestIDFrom(ctx))
	assert.Empty(t, RequestIDFrom(context.Background()))
}

func TestNopLoggerDoesNotPanic(t *testing.T) {
	log := NewNop()
	log.InfoCtx(context.Background(), "ignored")
	log.ErrorCtx(context.Background(), "ignored")
}

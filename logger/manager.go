package logger

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Manager hands out one CtxZapLogger per module, created on demand.
type Manager struct {
	cfg     Config
	loggers map[string]*CtxZapLogger
	writers []*lumberjack.Logger // kept for Close
	mu      sync.RWMutex
}

// NewManager creates a logger manager. Zero-valued config fields are
// filled with defaults.
func NewManager(cfg Config) *Manager {
	cfg.ApplyDefaults()
	return &Manager{
		cfg:     cfg,
		loggers: make(map[string]*CtxZapLogger),
	}
}

// Get returns the logger for the given module, creating it on first use.
// The returned logger already carries the module field.
func (m *Manager) Get(module string) *CtxZapLogger {
	m.mu.RLock()
	if l, ok := m.loggers[module]; ok {
		m.mu.RUnlock()
		return l
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.loggers[module]; ok {
		return l
	}

	base := m.build(module)
	l := &CtxZapLogger{
		base:   base.With(zap.String("module", module)),
		module: module,
		cfg:    &m.cfg,
	}
	m.loggers[module] = l
	return l
}

// Sync flushes buffered records on every module logger.
func (m *Manager) Sync() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.loggers {
		_ = l.base.Sync()
	}
}

// Close flushes and closes every rotating file writer.
func (m *Manager) Close() error {
	m.Sync()
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.writers {
		_ = w.Close()
	}
	m.writers = nil
	return nil
}

func (m *Manager) build(module string) *zap.Logger {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(m.cfg.Level)); err != nil {
		level.SetLevel(zapcore.InfoLevel)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if m.cfg.Encoding == "console" {
		encoder = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	var cores []zapcore.Core
	if m.cfg.EnableConsole {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level))
	}
	if m.cfg.EnableFile {
		w := &lumberjack.Logger{
			Filename:   filepath.Join(m.cfg.Dir, module+".log"),
			MaxSize:    m.cfg.MaxSizeMB,
			MaxBackups: m.cfg.MaxBackups,
			MaxAge:     m.cfg.MaxAgeDays,
			Compress:   m.cfg.Compress,
		}
		m.writers = append(m.writers, w)
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(w), level))
	}
	if len(cores) == 0 {
		return zap.NewNop()
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
}

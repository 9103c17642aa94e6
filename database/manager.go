package database

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/invgo/inventory-service/logger"
	"github.com/invgo/inventory-service/retry"
)

// Manager owns the single shared relational handle. The connection is
// established lazily on first Acquire, redialed with exponential backoff,
// and recreated transparently after a failed liveness probe.
type Manager struct {
	cfg  Config
	log  *logger.CtxZapLogger
	db   *gorm.DB
	mu   sync.Mutex
	open func(cfg Config) (gorm.Dialector, error) // test seam
}

// NewManager creates a manager. No connection is opened until Acquire.
func NewManager(cfg Config, log *logger.CtxZapLogger) (*Manager, error) {
	if log == nil {
		log = logger.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Manager{cfg: cfg, log: log}, nil
}

// Acquire returns the shared handle, dialing it on first use. Idempotent:
// a live handle is returned as-is. Establishment is retried up to
// cfg.DialAttempts with delays doubling from cfg.RetryBaseDelay; after the
// final failure it returns ErrConnectionFailed carrying the attempt count
// and the underlying cause.
func (m *Manager) Acquire(ctx context.Context) (*gorm.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db != nil {
		return m.db, nil
	}

	db, err := retry.DoWithData(ctx, func() (*gorm.DB, error) {
		return m.dial()
	},
		retry.MaxAttempts(m.cfg.DialAttempts),
		retry.Backoff(retry.ExponentialBackoff(m.cfg.RetryBaseDelay)),
		retry.OnRetry(func(attempt int, err error) {
			m.log.WarnCtx(ctx, "database dial failed, retrying",
				zap.Int("attempt", attempt),
				zap.Error(err))
		}),
	)
	if err != nil {
		attempts := retry.Attempts(err)
		m.log.ErrorCtx(ctx, "database unreachable",
			zap.Int("attempts", attempts),
			zap.Error(err))
		return nil, ErrConnectionFailed.WithData("attempts", attempts).Wrap(err)
	}

	m.db = db
	m.log.InfoCtx(ctx, "database connected", zap.String("driver", m.cfg.Driver))
	return m.db, nil
}

// IsAlive probes the connection. It never returns an error: a failed probe
// reports false and clears the cached handle so the next Acquire redials.
func (m *Manager) IsAlive(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		return false
	}
	sqlDB, err := m.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		m.log.WarnCtx(ctx, "database liveness probe failed, clearing handle", zap.Error(err))
		m.db = nil
		return false
	}
	return true
}

// Close releases the shared handle.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		return nil
	}
	sqlDB, err := m.db.DB()
	m.db = nil
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		m.log.Error("failed to close database connection", zap.Error(err))
		return err
	}
	m.log.Debug("database connection closed")
	return nil
}

func (m *Manager) dial() (*gorm.DB, error) {
	var dialector gorm.Dialector
	if m.open != nil {
		var err error
		dialector, err = m.open(m.cfg)
		if err != nil {
			return nil, err
		}
	} else {
		switch m.cfg.Driver {
		case "mysql":
			dialector = mysql.Open(m.cfg.DSN)
		case "postgres":
			dialector = postgres.Open(m.cfg.DSN)
		case "sqlite":
			dialector = sqlite.Open(m.cfg.DSN)
		default:
			return nil, ErrInvalidConfig.WithMsgf("unsupported driver: %s", m.cfg.Driver)
		}
	}

	gl := logger.NewGormLogger(m.log, m.cfg.SlowThreshold).LogMode(gormlogger.Warn)
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gl})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(m.cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(m.cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(m.cfg.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

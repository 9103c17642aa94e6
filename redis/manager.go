package redis

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/invgo/inventory-service/logger"
	"github.com/invgo/inventory-service/retry"
)

// Manager owns the single shared cache client. Dialing is lazy, retried with
// exponential backoff, and the handle is cleared when a liveness probe fails
// so the next Acquire starts from scratch.
type Manager struct {
	cfg    Config
	log    *logger.CtxZapLogger
	client *redis.Client
	mu     sync.Mutex
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

// Acquire returns the shared client, dialing it on first use. Establishment
// is retried up to cfg.DialAttempts with delays doubling from
// cfg.RetryBaseDelay; the final failure yields ErrConnectionFailed with the
// attempt count and underlying cause.
func (m *Manager) Acquire(ctx context.Context) (*redis.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		return m.client, nil
	}

	client, err := retry.DoWithData(ctx, func() (*redis.Client, error) {
		return m.dial(ctx)
	},
		retry.MaxAttempts(m.cfg.DialAttempts),
		retry.Backoff(retry.ExponentialBackoff(m.cfg.RetryBaseDelay)),
		retry.OnRetry(func(attempt int, err error) {
			m.log.WarnCtx(ctx, "redis dial failed, retrying",
				zap.Int("attempt", attempt),
				zap.Error(err))
		}),
	)
	if err != nil {
		attempts := retry.Attempts(err)
		m.log.ErrorCtx(ctx, "redis unreachable",
			zap.Int("attempts", attempts),
			zap.Error(err))
		return nil, ErrConnectionFailed.WithData("attempts", attempts).Wrap(err)
	}

	m.client = client
	m.log.InfoCtx(ctx, "redis connected", zap.String("addr", m.cfg.Addr))
	return m.client, nil
}

// IsAlive probes the connection with a PING. It never returns an error: a
// failed probe reports false and clears the handle for the next Acquire.
func (m *Manager) IsAlive(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		return false
	}
	if err := m.client.Ping(ctx).Err(); err != nil {
		m.log.WarnCtx(ctx, "redis liveness probe failed, clearing handle", zap.Error(err))
		m.client.Close()
		m.client = nil
		return false
	}
	return true
}

// Close releases the shared client.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		return nil
	}
	err := m.client.Close()
	m.client = nil
	if err != nil {
		m.log.Error("failed to close redis connection", zap.Error(err))
		return err
	}
	m.log.Debug("redis connection closed")
	return nil
}

func (m *Manager) dial(ctx context.Context) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         m.cfg.Addr,
		Password:     m.cfg.Password,
		DB:           m.cfg.DB,
		PoolSize:     m.cfg.PoolSize,
		MinIdleConns: m.cfg.MinIdleConns,
		DialTimeout:  m.cfg.DialTimeout,
		ReadTimeout:  m.cfg.ReadTimeout,
		WriteTimeout: m.cfg.WriteTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// Package redis provides the cache store connection manager: one shared
// go-redis client, dialed lazily with bounded backoff, recreated after a
// failed liveness probe.
package redis

import (
	"time"

	"github.com/invgo/inventory-service/errcode"
)

// ModuleCode is the errcode module for the cache store connection layer.
const ModuleCode = 25

var (
	// ErrInvalidConfig rejects unusable configuration at startup.
	ErrInvalidConfig = errcode.Register(errcode.New(
		ModuleCode, 1,
		"redis", "error.redis.invalid_config", "invalid redis config",
		500,
	))

	// ErrConnectionFailed means the cache store stayed unreachable through
	// every dial attempt. Carries "attempts" and wraps the last cause.
	ErrConnectionFailed = errcode.Register(errcode.New(
		ModuleCode, 2,
		"redis", "error.redis.connection_failed", "redis connection failed",
		500,
	))
)

// Config is the cache store configuration (standalone node, as the service
// assumes a single cache node reachable by every instance).
type Config struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// Dial retry policy, mirroring the relational manager: DialAttempts
	// counts every try including the first, waits double from
	// RetryBaseDelay. The default of 4 spaces the retries 1s, 2s, 4s.
	DialAttempts   int           `mapstructure:"dial_attempts"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
}

// DefaultConfig returns the defaults applied over zero-valued fields.
func DefaultConfig() Config {
	return Config{
		Addr:           "localhost:6379",
		PoolSize:       10,
		MinIdleConns:   2,
		DialTimeout:    5 * time.Second,
		ReadTimeout:    3 * time.Second,
		WriteTimeout:   3 * time.Second,
		DialAttempts:   4,
		RetryBaseDelay: time.Second,
	}
}

// ApplyDefaults fills zero-valued fields in place.
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if c.PoolSize <= 0 {
		c.PoolSize = d.PoolSize
	}
	if c.MinIdleConns <= 0 {
		c.MinIdleConns = d.MinIdleConns
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = d.DialTimeout
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.DialAttempts <= 0 {
		c.DialAttempts = d.DialAttempts
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = d.RetryBaseDelay
	}
}

// Validate rejects configurations the manager cannot dial with.
func (c *Config) Validate() error {
	c.ApplyDefaults()
	if c.Addr == "" {
		return ErrInvalidConfig.WithMsg("redis addr is required")
	}
	if c.DB < 0 || c.DB > 15 {
		return ErrInvalidConfig.WithMsgf("redis db out of range: %d", c.DB)
	}
	return nil
}

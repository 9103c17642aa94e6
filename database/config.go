// Package database provides the relational store connection manager and the
// query executor every repository operation runs through.
package database

import "time"

// Config is the relational store configuration.
type Config struct {
	Driver          string        `mapstructure:"driver"` // mysql, postgres, sqlite
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	SlowThreshold   time.Duration `mapstructure:"slow_threshold"` // ops above this are logged as slow

	// Dial retry policy. DialAttempts counts every try including the first;
	// waits double from RetryBaseDelay between tries. The default of 4 gives
	// three retries after the initial attempt, spaced 1s, 2s, 4s.
	DialAttempts   int           `mapstructure:"dial_attempts"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
}

// DefaultConfig returns the defaults applied over zero-valued fields.
func DefaultConfig() Config {
	return Config{
		Driver:          "mysql",
		MaxOpenConns:    100,
		MaxIdleConns:    10,
		ConnMaxLifetime: time.Hour,
		SlowThreshold:   100 * time.Millisecond,
		DialAttempts:    4,
		RetryBaseDelay:  time.Second,
	}
}

// ApplyDefaults fills zero-valued fields in place.
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.Driver == "" {
		c.Driver = d.Driver
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = d.MaxOpenConns
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = d.MaxIdleConns
	}
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = d.ConnMaxLifetime
	}
	if c.SlowThreshold <= 0 {
		c.SlowThreshold = d.SlowThreshold
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
	if c.DSN == "" {
		return ErrInvalidConfig.WithMsg("database dsn is required")
	}
	switch c.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return ErrInvalidConfig.WithMsgf("unsupported driver: %s", c.Driver)
	}
	return nil
}

// Package config loads the service configuration from a YAML file with
// environment-variable overrides (INVENTORY_ prefix, dots become underscores).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/invgo/inventory-service/cache"
	"github.com/invgo/inventory-service/database"
	"github.com/invgo/inventory-service/logger"
	redisconn "github.com/invgo/inventory-service/redis"
)

// ServerConfig is the HTTP listener configuration.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Mode            string        `mapstructure:"mode"` // gin mode: debug, release, test
}

// RateLimitConfig is the fixed-window limiter configuration.
type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int64         `mapstructure:"limit"`  // requests per window
	Window  time.Duration `mapstructure:"window"` // window length
}

// WarmerConfig drives the periodic cache warmer.
type WarmerConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	Interval          time.Duration `mapstructure:"interval"`
	LowStockThreshold int           `mapstructure:"low_stock_threshold"`
}

// Config aggregates every component configuration.
type Config struct {
	AppName   string           `mapstructure:"app_name"`
	Server    ServerConfig     `mapstructure:"server"`
	Logger    logger.Config    `mapstructure:"logger"`
	Database  database.Config  `mapstructure:"database"`
	Redis     redisconn.Config `mapstructure:"redis"`
	Cache     cache.Config     `mapstructure:"cache"`
	RateLimit RateLimitConfig  `mapstructure:"rate_limit"`
	Warmer    WarmerConfig     `mapstructure:"warmer"`
}

// Default returns a runnable configuration for local development.
func Default() Config {
	return Config{
		AppName: "inventory-service",
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Mode:            "release",
		},
		Logger:   logger.DefaultConfig(),
		Database: database.DefaultConfig(),
		Redis:    redisconn.DefaultConfig(),
		Cache:    cache.DefaultConfig(),
		RateLimit: RateLimitConfig{
			Enabled: false,
			Limit:   100,
			Window:  time.Minute,
		},
		Warmer: WarmerConfig{
			Enabled:           false,
			Interval:          5 * time.Minute,
			LowStockThreshold: 10,
		},
	}
}

// Load reads the configuration file at path (optional, "" skips the file),
// applies INVENTORY_* environment overrides and validates the result.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("INVENTORY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := Default()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Logger.ApplyDefaults()
	cfg.Database.ApplyDefaults()
	cfg.Redis.ApplyDefaults()
	cfg.Cache.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if c.RateLimit.Enabled && (c.RateLimit.Limit <= 0 || c.RateLimit.Window <= 0) {
		return fmt.Errorf("rate_limit: limit and window must be positive when enabled")
	}
	if c.Warmer.Enabled && c.Warmer.Interval <= 0 {
		return fmt.Errorf("warmer: interval must be positive when enabled")
	}
	return nil
}

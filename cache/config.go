// Package cache provides the typed cache store adapter. Every operation is
// best-effort: reads degrade to a miss and writes to a no-op when the cache
// store fails, so the relational store is never blocked by cache trouble.
package cache

import "time"

// TTL classes. The repository picks one per operation kind.
const (
	// TTLShort backs listings and search results.
	TTLShort = 300 * time.Second
	// TTLMedium backs single-record reads and analytics.
	TTLMedium = 1800 * time.Second
	// TTLLong backs rarely-changing payloads.
	TTLLong = 3600 * time.Second
	// TTLDaily backs once-a-day aggregates.
	TTLDaily = 86400 * time.Second
	// TTLLowStock is deliberately short: stock levels change often.
	TTLLowStock = 600 * time.Second
)

// Config is the adapter configuration.
type Config struct {
	KeyPrefix string `mapstructure:"key_prefix"` // prepended to every key
	ScanCount int64  `mapstructure:"scan_count"` // SCAN batch size for pattern sweeps
}

// DefaultConfig returns the defaults applied over zero-valued fields.
func DefaultConfig() Config {
	return Config{
		KeyPrefix: "inventory:",
		ScanCount: 100,
	}
}

// ApplyDefaults fills zero-valued fields in place.
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.KeyPrefix == "" {
		c.KeyPrefix = d.KeyPrefix
	}
	if c.ScanCount <= 0 {
		c.ScanCount = d.ScanCount
	}
}

// Package logger provides per-module zap loggers with console and
// rotating-file outputs, plus a context-aware wrapper that enriches
// every record with the request id carried in the context.
package logger

// Config is the manager configuration shared by all module loggers.
type Config struct {
	Level         string `mapstructure:"level"`          // debug, info, warn, error
	Encoding      string `mapstructure:"encoding"`       // json or console
	AppName       string `mapstructure:"app_name"`       // injected into every record
	Dir           string `mapstructure:"dir"`            // log file directory
	EnableConsole bool   `mapstructure:"enable_console"` // write to stdout
	EnableFile    bool   `mapstructure:"enable_file"`    // write rotating files
	MaxSizeMB     int    `mapstructure:"max_size_mb"`    // single file size before rotation
	MaxBackups    int    `mapstructure:"max_backups"`    // rotated files kept
	MaxAgeDays    int    `mapstructure:"max_age_days"`   // retention in days
	Compress      bool   `mapstructure:"compress"`       // gzip rotated files
	RequestIDKey  string `mapstructure:"request_id_key"` // context key to lift into records
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		Level:         "info",
		Encoding:      "json",
		Dir:           "logs",
		EnableConsole: true,
		EnableFile:    false,
		MaxSizeMB:     100,
		MaxBackups:    3,
		MaxAgeDays:    28,
		Compress:      true,
		RequestIDKey:  "request_id",
	}
}

// ApplyDefaults fills zero-valued fields in place.
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.Level == "" {
		c.Level = d.Level
	}
	if c.Encoding == "" {
		c.Encoding = d.Encoding
	}
	if c.Dir == "" {
		c.Dir = d.Dir
	}
	if c.MaxSizeMB <= 0 {
		c.MaxSizeMB = d.MaxSizeMB
	}
	if c.MaxBackups <= 0 {
		c.MaxBackups = d.MaxBackups
	}
	if c.MaxAgeDays <= 0 {
		c.MaxAgeDays = d.MaxAgeDays
	}
	if c.RequestIDKey == "" {
		c.RequestIDKey = d.RequestIDKey
	}
}

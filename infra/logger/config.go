package logger

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Config defines the application log level, format and optional rotated file.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level"`
	// Format selects "json" or "console". Empty follows APP_ENV.
	Format string `json:"format"`
	// File additionally writes JSON logs to this path when set.
	File string `json:"file"`
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int  `json:"max_age_days"`
	Compress   bool `json:"compress"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.File != "" && c.MaxSizeMB == 0 {
		c.MaxSizeMB = 50
	}
}

// Validate checks the level and format names.
func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Level)); err != nil {
		return fmt.Errorf("unknown log level %s", c.Level)
	}
	switch c.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("unknown log format %s", c.Format)
	}
	if c.MaxSizeMB < 0 || c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		return fmt.Errorf("rotation limits must not be negative")
	}
	return nil
}

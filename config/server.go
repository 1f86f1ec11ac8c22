package config

import (
	"fmt"
	"time"
)

// RateLimitConfig bounds the request rate across all clients.
type RateLimitConfig struct {
	// RPS is the sustained requests per second. Zero disables limiting.
	RPS   float64 `json:"rps"`
	Burst int     `json:"burst"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Address             string          `json:"address"`
	ReadTimeoutSeconds  int             `json:"read_timeout_seconds"`
	WriteTimeoutSeconds int             `json:"write_timeout_seconds"`
	ShutdownSeconds     int             `json:"shutdown_seconds"`
	RateLimit           RateLimitConfig `json:"rate_limit"`
	// ServiceName labels the OpenTelemetry spans.
	ServiceName string `json:"service_name"`
}

// SetDefaults applies default values for unset fields.
func (c *ServerConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
	if c.ReadTimeoutSeconds == 0 {
		c.ReadTimeoutSeconds = 10
	}
	if c.WriteTimeoutSeconds == 0 {
		c.WriteTimeoutSeconds = 30
	}
	if c.ShutdownSeconds == 0 {
		c.ShutdownSeconds = 5
	}
	if c.ServiceName == "" {
		c.ServiceName = "evrange"
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = int(c.RateLimit.RPS) + 1
	}
}

// Validate checks the configuration values.
func (c ServerConfig) Validate() error {
	if c.ReadTimeoutSeconds < 0 || c.WriteTimeoutSeconds < 0 || c.ShutdownSeconds < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}
	return nil
}

// ReadTimeout returns the read timeout as a duration.
func (c ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the write timeout as a duration.
func (c ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

// ShutdownTimeout bounds the graceful shutdown.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownSeconds) * time.Second
}

// Package config loads the service configuration from a YAML or JSON file
// with environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/evrange/core/factory"
	"github.com/kilianp07/evrange/core/metrics"
	"github.com/kilianp07/evrange/infra/logger"
	"github.com/kilianp07/evrange/infra/monitoring"
)

// EnvPrefix marks environment variables that override file values. A double
// underscore separates nesting levels, e.g. K_SERVER__ADDRESS.
const EnvPrefix = "K_"

type Config struct {
	Server    ServerConfig         `json:"server"`
	Dataset   factory.ModuleConfig `json:"dataset"`
	Predictor factory.ModuleConfig `json:"predictor"`
	Metrics   metrics.Config       `json:"metrics"`
	Logging   logger.Config        `json:"logging"`
	Sentry    monitoring.Config    `json:"sentry"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills unset values of every section.
func (c *Config) SetDefaults() {
	c.Server.SetDefaults()
	c.Logging.SetDefaults()
	if c.Dataset.Type == "" {
		c.Dataset.Type = "csv"
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := validateModule(c.Dataset); err != nil {
		return fmt.Errorf("dataset: %w", err)
	}
	if c.Predictor.Type == "" {
		return fmt.Errorf("predictor: type is required")
	}
	if err := validateModule(c.Predictor); err != nil {
		return fmt.Errorf("predictor: %w", err)
	}
	for i, s := range c.Metrics.Sinks {
		if s.Type == "" {
			return fmt.Errorf("metrics: sink %d has no type", i)
		}
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Sentry.Validate(); err != nil {
		return fmt.Errorf("sentry: %w", err)
	}
	return nil
}

// validateModule requires the local file every dataset and predictor reads.
func validateModule(m factory.ModuleConfig) error {
	p, _ := m.Conf["path"].(string)
	if p == "" {
		return fmt.Errorf("%s: conf.path is required", m.Type)
	}
	return nil
}

package metrics

import "github.com/kilianp07/evrange/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
}

// Has reports whether a sink of the given type is configured.
func (c Config) Has(kind string) bool {
	for _, s := range c.Sinks {
		if s.Type == kind {
			return true
		}
	}
	return false
}

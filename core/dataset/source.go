package dataset

import (
	"context"

	"github.com/kilianp07/evrange/core/factory"
)

// Source loads the reference dataset once at startup.
type Source interface {
	Load(ctx context.Context) (*Table, error)
}

var sourceRegistry = factory.NewRegistry[Source]()

// RegisterSource adds a dataset source factory identified by name.
func RegisterSource(name string, f factory.Factory[Source]) error {
	return sourceRegistry.Register(name, f)
}

// NewSource creates the Source described by cfg.
func NewSource(cfg factory.ModuleConfig) (Source, error) {
	return sourceRegistry.Create(cfg)
}

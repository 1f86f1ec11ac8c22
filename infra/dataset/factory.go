// Package dataset provides the reference dataset sources: CSV files and
// SQLite tables.
package dataset

import (
	"fmt"

	coredataset "github.com/kilianp07/evrange/core/dataset"
	"github.com/kilianp07/evrange/core/factory"
)

func init() {
	_ = coredataset.RegisterSource("csv", func(conf map[string]any) (coredataset.Source, error) {
		var c struct {
			Path string `json:"path"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			return nil, fmt.Errorf("csv dataset: path is required")
		}
		return CSVSource{Path: c.Path}, nil
	})

	_ = coredataset.RegisterSource("sqlite", func(conf map[string]any) (coredataset.Source, error) {
		var c struct {
			Path  string `json:"path"`
			Table string `json:"table"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			return nil, fmt.Errorf("sqlite dataset: path is required")
		}
		if c.Table == "" {
			c.Table = "vehicles"
		}
		return SQLiteSource{Path: c.Path, Table: c.Table}, nil
	})
}

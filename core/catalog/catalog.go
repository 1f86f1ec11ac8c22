// Package catalog derives the legal values of every categorical input from
// the reference dataset. A Catalog is built once at startup and never
// mutated; accessors hand out copies.
package catalog

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kilianp07/evrange/core/dataset"
	"github.com/kilianp07/evrange/core/model"
)

// ErrEmptyDataset is returned when the reference dataset has no rows.
var ErrEmptyDataset = errors.New("reference dataset is empty")

// Catalog holds the sorted distinct options of each categorical field.
type Catalog struct {
	options map[model.Field][]string
	members map[model.Field]map[string]struct{}
}

// Build enumerates the options of every categorical field. Missing values
// are dropped. A missing column, an empty dataset or a column without any
// value is a startup failure.
func Build(t *dataset.Table) (*Catalog, error) {
	if t == nil || t.Len() == 0 {
		return nil, ErrEmptyDataset
	}
	c := &Catalog{
		options: make(map[model.Field][]string, len(model.CategoricalFields)),
		members: make(map[model.Field]map[string]struct{}, len(model.CategoricalFields)),
	}
	for _, f := range model.CategoricalFields {
		values, err := t.Column(string(f))
		if err != nil {
			return nil, fmt.Errorf("catalog %s: %w", f, err)
		}
		set := make(map[string]struct{}, len(values))
		for _, v := range values {
			set[v] = struct{}{}
		}
		if len(set) == 0 {
			return nil, fmt.Errorf("catalog %s: no values", f)
		}
		opts := make([]string, 0, len(set))
		for v := range set {
			opts = append(opts, v)
		}
		sort.Strings(opts)
		c.options[f] = opts
		c.members[f] = set
	}
	return c, nil
}

// Fields returns the categorical fields in form order.
func (c *Catalog) Fields() []model.Field {
	return append([]model.Field(nil), model.CategoricalFields...)
}

// Options returns a copy of the sorted options of f.
func (c *Catalog) Options(f model.Field) []string {
	return append([]string(nil), c.options[f]...)
}

// Default returns the first option of f, which is what an untouched
// selection control holds.
func (c *Catalog) Default(f model.Field) string {
	if opts := c.options[f]; len(opts) > 0 {
		return opts[0]
	}
	return ""
}

// Contains reports whether v is a legal option of f.
func (c *Catalog) Contains(f model.Field, v string) bool {
	_, ok := c.members[f][v]
	return ok
}

// Sizes returns the number of options per field.
func (c *Catalog) Sizes() map[model.Field]int {
	out := make(map[model.Field]int, len(c.options))
	for f, o := range c.options {
		out[f] = len(o)
	}
	return out
}

// All returns a copy of the options of every field.
func (c *Catalog) All() map[model.Field][]string {
	out := make(map[model.Field][]string, len(c.options))
	for f, o := range c.options {
		out[f] = append([]string(nil), o...)
	}
	return out
}

// DefaultRequest returns the request an untouched form submits.
func (c *Catalog) DefaultRequest() model.PredictionRequest {
	req := model.PredictionRequest{VehicleAge: model.DefaultVehicleAge}
	for _, f := range model.CategoricalFields {
		req = req.WithCategory(f, c.Default(f))
	}
	return req
}

package predictor

import (
	"context"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/evrange/core/model"
	"github.com/kilianp07/evrange/core/prediction"
)

// LinearArtifact is a one-hot encoded linear regression.
type LinearArtifact struct {
	Name      string  `json:"name" yaml:"name"`
	Intercept float64 `json:"intercept" yaml:"intercept"`
	// VehicleAge is the coefficient applied to the age in years.
	VehicleAge float64 `json:"vehicle_age" yaml:"vehicle_age"`
	// Weights maps field name to category level to coefficient. Every level
	// the encoder was fitted on must be listed, with 0 for a dropped level.
	Weights map[string]map[string]float64 `json:"weights" yaml:"weights"`
}

// Linear scores requests as the dot product of the encoded request with
// the fitted coefficients.
type Linear struct {
	name   string
	fields []model.Field
	index  map[model.Field]map[string]int
	coef   *mat.VecDense
}

// LoadLinear reads a LinearArtifact from path.
func LoadLinear(path string) (*Linear, error) {
	var a LinearArtifact
	if err := decodeArtifact(path, &a); err != nil {
		return nil, err
	}
	return NewLinear(a)
}

// NewLinear builds the encoder and coefficient vector. The last column is the
// age, the one before it the intercept.
func NewLinear(a LinearArtifact) (*Linear, error) {
	if len(a.Weights) == 0 {
		return nil, fmt.Errorf("linear artifact has no weights")
	}
	l := &Linear{name: a.Name, index: make(map[model.Field]map[string]int)}
	if l.name == "" {
		l.name = "linear"
	}
	weights, err := resolveFields(a.Weights)
	if err != nil {
		return nil, err
	}
	var coef []float64
	for _, f := range model.CategoricalFields {
		levels, ok := weights[f]
		if !ok {
			continue
		}
		if len(levels) == 0 {
			return nil, fmt.Errorf("field %s has no levels", f)
		}
		keys := make([]string, 0, len(levels))
		for k := range levels {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		idx := make(map[string]int, len(keys))
		for _, k := range keys {
			idx[k] = len(coef)
			coef = append(coef, levels[k])
		}
		l.fields = append(l.fields, f)
		l.index[f] = idx
	}
	coef = append(coef, a.Intercept, a.VehicleAge)
	l.coef = mat.NewVecDense(len(coef), coef)
	return l, nil
}

// Predict encodes req and returns the linear score.
func (l *Linear) Predict(_ context.Context, req model.PredictionRequest) (float64, error) {
	n := l.coef.Len()
	x := mat.NewVecDense(n, nil)
	for _, f := range l.fields {
		v := req.Category(f)
		i, ok := l.index[f][v]
		if !ok {
			return 0, &prediction.UnknownCategoryError{Field: f, Value: v}
		}
		x.SetVec(i, 1)
	}
	x.SetVec(n-2, 1)
	x.SetVec(n-1, float64(req.VehicleAge))
	return mat.Dot(l.coef, x), nil
}

// Name returns the artifact name.
func (l *Linear) Name() string { return l.name }

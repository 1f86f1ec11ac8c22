package prediction

import (
	"context"

	"github.com/kilianp07/evrange/core/model"
)

// MockPredictor returns deterministic ranges keyed by vehicle model.
type MockPredictor struct {
	// Ranges maps a model name to its range at age zero.
	Ranges map[string]float64
	// LossPerYear is subtracted once per year of vehicle age.
	LossPerYear float64
}

// Predict returns the configured range or an unknown category error.
func (m MockPredictor) Predict(_ context.Context, req model.PredictionRequest) (float64, error) {
	base, ok := m.Ranges[req.Model]
	if !ok {
		return 0, &UnknownCategoryError{Field: model.FieldModel, Value: req.Model}
	}
	v := base - m.LossPerYear*float64(req.VehicleAge)
	if v < 0 {
		v = 0
	}
	return v, nil
}

// Name returns "mock".
func (MockPredictor) Name() string { return "mock" }

package prediction

import (
	"context"
	"fmt"

	"github.com/kilianp07/evrange/core/factory"
	"github.com/kilianp07/evrange/core/model"
)

// Predictor maps one request to a predicted electric range in miles.
type Predictor interface {
	Predict(ctx context.Context, req model.PredictionRequest) (float64, error)
	// Name identifies the predictor implementation.
	Name() string
}

// PredictorFunc adapts a function to the Predictor interface.
type PredictorFunc func(ctx context.Context, req model.PredictionRequest) (float64, error)

// Predict calls f.
func (f PredictorFunc) Predict(ctx context.Context, req model.PredictionRequest) (float64, error) {
	return f(ctx, req)
}

// Name returns "func".
func (PredictorFunc) Name() string { return "func" }

// UnknownCategoryError reports a categorical level the predictor was not
// fitted on.
type UnknownCategoryError struct {
	Field model.Field
	Value string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("found unknown categories [%s] in column %s during transform", e.Value, e.Field)
}

var predictorRegistry = factory.NewRegistry[Predictor]()

// RegisterPredictor adds a predictor factory identified by name.
func RegisterPredictor(name string, f factory.Factory[Predictor]) error {
	return predictorRegistry.Register(name, f)
}

// NewPredictor loads the predictor described by cfg.
func NewPredictor(cfg factory.ModuleConfig) (Predictor, error) {
	return predictorRegistry.Create(cfg)
}

// Kinds lists the registered predictor types.
func Kinds() []string { return predictorRegistry.Names() }

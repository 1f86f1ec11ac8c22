// Package prediction defines the Predictor contract and the prediction cycle
// that turns one request into either a rendered range or a PredictionError.
// Predictors are opaque, deterministic and safe for concurrent use; concrete
// artifact formats live in infra/predictor.
package prediction

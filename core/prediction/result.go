package prediction

import (
	"fmt"
	"time"

	"github.com/kilianp07/evrange/core/model"
)

// PredictionError is the only error kind surfaced by a prediction cycle. It
// wraps whatever the predictor reported.
type PredictionError struct {
	Cause error
}

func (e *PredictionError) Error() string {
	if e.Cause == nil {
		return "Prediction Error"
	}
	return "Prediction Error: " + e.Cause.Error()
}

func (e *PredictionError) Unwrap() error { return e.Cause }

// Result is the outcome of one cycle: Value is meaningful only when Err is nil.
type Result struct {
	ID      string
	Request model.PredictionRequest
	Value   float64
	Err     *PredictionError
	Latency time.Duration
}

// OK reports whether the cycle produced a value.
func (r Result) OK() bool { return r.Err == nil }

// Render formats the outcome for display.
func (r Result) Render() string {
	if r.Err != nil {
		return r.Err.Error()
	}
	return FormatMiles(r.Value)
}

// FormatMiles renders a range with two decimals and the unit.
func FormatMiles(v float64) string {
	return fmt.Sprintf("%.2f miles", v)
}

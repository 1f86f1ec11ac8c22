package events

import (
	"time"

	"github.com/kilianp07/evrange/core/model"
)

// PredictionEvent is published once per prediction cycle. Err is nil on success.
type PredictionEvent struct {
	ID        string
	Predictor string
	Request   model.PredictionRequest
	Value     float64
	Err       error
	Latency   time.Duration
	Time      time.Time
}

package metrics

import (
	"time"

	"github.com/kilianp07/evrange/core/events"
	"github.com/kilianp07/evrange/core/model"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// PredictionRecord is one prediction cycle to be recorded.
type PredictionRecord struct {
	ID        string
	Predictor string
	Request   model.PredictionRequest
	Value     float64
	Error     string
	Latency   time.Duration
	Time      time.Time
}

// Outcome returns OutcomeSuccess or OutcomeError.
func (r PredictionRecord) Outcome() string {
	if r.Error != "" {
		return OutcomeError
	}
	return OutcomeSuccess
}

// RecordFromEvent converts a bus event into a record.
func RecordFromEvent(ev events.PredictionEvent) PredictionRecord {
	rec := PredictionRecord{
		ID:        ev.ID,
		Predictor: ev.Predictor,
		Request:   ev.Request,
		Value:     ev.Value,
		Latency:   ev.Latency,
		Time:      ev.Time,
	}
	if ev.Err != nil {
		rec.Error = ev.Err.Error()
	}
	return rec
}

// MetricsSink records prediction outcomes.
type MetricsSink interface {
	RecordPrediction(rec PredictionRecord) error
}

// CatalogRecorder receives the options offered per field once the catalog is
// built. Sinks use it to bound label values taken from requests.
type CatalogRecorder interface {
	RecordCatalog(options map[model.Field][]string) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordPrediction(PredictionRecord) error      { return nil }
func (NopSink) RecordCatalog(map[model.Field][]string) error { return nil }

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordPrediction forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) RecordPrediction(rec PredictionRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordPrediction(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordCatalog forwards the catalog options when supported by the sink.
func (m *MultiSink) RecordCatalog(options map[model.Field][]string) error {
	for _, s := range m.Sinks {
		if cr, ok := s.(CatalogRecorder); ok {
			if err := cr.RecordCatalog(options); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close releases every sink that holds a connection.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}

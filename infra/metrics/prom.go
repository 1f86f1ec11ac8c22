package metrics

import (
	"errors"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	coremetrics "github.com/kilianp07/evrange/core/metrics"
	"github.com/kilianp07/evrange/core/model"
)

// OtherEVType labels predictions whose EV type is not a catalog option.
const OtherEVType = "other"

// PromSink records prediction outcomes in Prometheus metrics. The ev_type
// label only takes catalog values so request input cannot grow the series.
type PromSink struct {
	predictions *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	miles       prometheus.Histogram
	options     *prometheus.GaugeVec

	mu      sync.RWMutex
	evTypes map[string]struct{}
}

// NewPromSink registers prediction metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	predictions, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "range_predictions_total",
		Help: "Total number of range predictions by outcome",
	}, []string{"outcome", "ev_type"}))
	if err != nil {
		return nil, err
	}
	latency, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "range_prediction_latency_seconds",
		Help:    "Time spent in the predictor",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"}))
	if err != nil {
		return nil, err
	}
	miles, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "range_predicted_miles",
		Help:    "Distribution of predicted electric ranges",
		Buckets: prometheus.LinearBuckets(0, 50, 8),
	}))
	if err != nil {
		return nil, err
	}
	options, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "range_catalog_options",
		Help: "Number of selectable options per categorical field",
	}, []string{"field"}))
	if err != nil {
		return nil, err
	}
	return &PromSink{predictions: predictions, latency: latency, miles: miles, options: options}, nil
}

// register returns the already registered collector when one with the same
// descriptor exists.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, err
	}
	return c, nil
}

// RecordPrediction updates the counters and histograms for one cycle.
func (s *PromSink) RecordPrediction(rec coremetrics.PredictionRecord) error {
	outcome := rec.Outcome()
	s.predictions.WithLabelValues(outcome, s.evTypeLabel(rec.Request.EVType)).Inc()
	s.latency.WithLabelValues(outcome).Observe(rec.Latency.Seconds())
	if outcome == coremetrics.OutcomeSuccess {
		s.miles.Observe(rec.Value)
	}
	return nil
}

// RecordCatalog sets the option gauge of every field and the EV types
// accepted as label values.
func (s *PromSink) RecordCatalog(options map[model.Field][]string) error {
	for f, o := range options {
		s.options.WithLabelValues(string(f)).Set(float64(len(o)))
	}
	known := make(map[string]struct{}, len(options[model.FieldEVType]))
	for _, v := range options[model.FieldEVType] {
		known[v] = struct{}{}
	}
	s.mu.Lock()
	s.evTypes = known
	s.mu.Unlock()
	return nil
}

func (s *PromSink) evTypeLabel(v string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.evTypes[v]; ok {
		return v
	}
	return OtherEVType
}

// Handler exposes the default gatherer in the Prometheus text format.
func Handler() http.Handler { return promhttp.Handler() }

// HandlerFor exposes the given gatherer.
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

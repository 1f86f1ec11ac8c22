package prediction

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/evrange/core/events"
	"github.com/kilianp07/evrange/core/logger"
	"github.com/kilianp07/evrange/core/model"
	"github.com/kilianp07/evrange/core/monitoring"
	"github.com/kilianp07/evrange/internal/eventbus"
)

// Cycle runs single request/response predictions against a shared predictor.
type Cycle struct {
	predictor Predictor
	bus       *eventbus.TypedBus[events.PredictionEvent]
	log       logger.Logger
	monitor   monitoring.Monitor
}

// Option customises a Cycle.
type Option func(*Cycle)

// WithEventBus publishes a PredictionEvent after every run.
func WithEventBus(bus *eventbus.TypedBus[events.PredictionEvent]) Option {
	return func(c *Cycle) { c.bus = bus }
}

// WithLogger sets the logger used for failed predictions.
func WithLogger(l logger.Logger) Option {
	return func(c *Cycle) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMonitor reports predictor failures to m.
func WithMonitor(m monitoring.Monitor) Option {
	return func(c *Cycle) {
		if m != nil {
			c.monitor = m
		}
	}
}

// NewCycle creates a cycle around p.
func NewCycle(p Predictor, opts ...Option) (*Cycle, error) {
	if p == nil {
		return nil, errors.New("predictor is required")
	}
	c := &Cycle{predictor: p, log: logger.NopLogger{}, monitor: monitoring.NopMonitor{}}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Predictor returns the wrapped predictor.
func (c *Cycle) Predictor() Predictor { return c.predictor }

// Run invokes the predictor once and converts any failure, including a panic,
// into a PredictionError. Nothing is retried.
func (c *Cycle) Run(ctx context.Context, req model.PredictionRequest) Result {
	res := Result{ID: uuid.NewString(), Request: req}
	start := time.Now()
	v, err := c.invoke(ctx, req)
	res.Latency = time.Since(start)
	if err != nil {
		res.Err = &PredictionError{Cause: err}
		c.log.Warnf("prediction %s failed: %v", res.ID, err)
		c.monitor.CaptureException(err, map[string]string{
			"predictor": c.predictor.Name(),
			"make":      req.Make,
			"model":     req.Model,
		})
	} else {
		res.Value = v
		c.log.Debugw("prediction", map[string]any{
			"id":         res.ID,
			"make":       req.Make,
			"model":      req.Model,
			"ev_type":    req.EVType,
			"miles":      v,
			"latency_ms": res.Latency.Milliseconds(),
		})
	}
	if c.bus != nil {
		ev := events.PredictionEvent{
			ID:        res.ID,
			Predictor: c.predictor.Name(),
			Request:   req,
			Value:     res.Value,
			Latency:   res.Latency,
			Time:      start,
		}
		if res.Err != nil {
			ev.Err = res.Err.Cause
		}
		c.bus.Publish(ev)
	}
	return res
}

// Sweep runs one cycle per vehicle age across the stepper range, keeping the
// categorical fields of req.
func (c *Cycle) Sweep(ctx context.Context, req model.PredictionRequest) []Result {
	out := make([]Result, 0, model.MaxVehicleAge-model.MinVehicleAge+1)
	for age := model.MinVehicleAge; age <= model.MaxVehicleAge; age++ {
		r := req
		r.VehicleAge = age
		out = append(out, c.Run(ctx, r))
	}
	return out
}

func (c *Cycle) invoke(ctx context.Context, req model.PredictionRequest) (v float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("predictor panic: %v", r)
		}
	}()
	if err := req.Validate(); err != nil {
		return 0, err
	}
	v, err = c.predictor.Predict(ctx, req)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("predictor returned non-finite value %v", v)
	}
	return v, nil
}

package scenarios

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/evrange/app"
	"github.com/kilianp07/evrange/config"
	"github.com/kilianp07/evrange/core/events"
	coremetrics "github.com/kilianp07/evrange/core/metrics"
	"github.com/kilianp07/evrange/core/model"
	"github.com/kilianp07/evrange/core/prediction"
	"github.com/kilianp07/evrange/infra/logger"
	"github.com/kilianp07/evrange/infra/metrics"
	"github.com/kilianp07/evrange/internal/eventbus"
)

func RunScenario(t *testing.T, sc *Scenario) {
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	cfg := config.Config{Dataset: sc.Dataset.ToConfig(), Predictor: sc.Predictor.ToConfig()}
	cat, err := app.LoadCatalog(context.Background(), cfg)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if err := sink.RecordCatalog(cat.All()); err != nil {
		t.Fatalf("record catalog: %v", err)
	}
	p, err := app.LoadPredictor(cfg)
	if err != nil {
		t.Fatalf("predictor: %v", err)
	}

	bus := eventbus.NewTyped[events.PredictionEvent]()
	done := metrics.StartEventCollector(context.Background(), bus, sink, logger.NopLogger{})
	cycle, err := prediction.NewCycle(p, prediction.WithEventBus(bus))
	if err != nil {
		t.Fatalf("cycle: %v", err)
	}

	for _, c := range sc.Cases {
		req, err := model.RequestFromValues(c.Request.Get, cat)
		if err != nil {
			t.Errorf("%s: request: %v", c.Name, err)
			continue
		}
		res := cycle.Run(context.Background(), req)
		switch {
		case c.ErrorContains != "":
			if res.OK() || !strings.Contains(res.Render(), c.ErrorContains) {
				t.Errorf("%s: expected error containing %q, got %q", c.Name, c.ErrorContains, res.Render())
			}
		case c.Rendered != "":
			if res.Render() != c.Rendered {
				t.Errorf("%s: expected %q, got %q", c.Name, c.Rendered, res.Render())
			}
		default:
			if !res.OK() {
				t.Errorf("%s: unexpected %s", c.Name, res.Render())
			}
		}
	}
	bus.Close()
	<-done

	counts := outcomeCounts(t, reg)
	if counts[coremetrics.OutcomeSuccess] != sc.Expected.Success {
		t.Errorf("scenario %s expected %d successes, got %d", sc.Name, sc.Expected.Success, counts[coremetrics.OutcomeSuccess])
	}
	if counts[coremetrics.OutcomeError] != sc.Expected.Error {
		t.Errorf("scenario %s expected %d errors, got %d", sc.Name, sc.Expected.Error, counts[coremetrics.OutcomeError])
	}
}

// outcomeCounts sums range_predictions_total per outcome label.
func outcomeCounts(t *testing.T, g prometheus.Gatherer) map[string]int {
	t.Helper()
	families, err := g.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	out := map[string]int{}
	for _, mf := range families {
		if mf.GetName() != "range_predictions_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "outcome" {
					out[l.GetValue()] += int(m.GetCounter().GetValue())
				}
			}
		}
	}
	return out
}

package metrics

import (
	"context"

	"github.com/kilianp07/evrange/core/events"
	"github.com/kilianp07/evrange/core/logger"
	coremetrics "github.com/kilianp07/evrange/core/metrics"
	"github.com/kilianp07/evrange/internal/eventbus"
)

// StartEventCollector subscribes to the bus and records every prediction
// event in sink. It stops when the context is canceled or the bus is closed;
// the returned channel is closed once the goroutine has exited.
func StartEventCollector(ctx context.Context, bus *eventbus.TypedBus[events.PredictionEvent], sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := sink.RecordPrediction(coremetrics.RecordFromEvent(ev)); err != nil {
					log.Errorf("record prediction %s: %v", ev.ID, err)
				}
			}
		}
	}()
	return done
}

package metrics

import (
	"fmt"

	"github.com/kilianp07/evrange/core/factory"
)

var sinkRegistry = factory.NewRegistry[MetricsSink]()

// RegisterMetricsSink adds a metrics sink factory identified by name.
func RegisterMetricsSink(name string, f factory.Factory[MetricsSink]) error {
	return sinkRegistry.Register(name, f)
}

// SinkKinds lists the registered sink types.
func SinkKinds() []string { return sinkRegistry.Names() }

// NewMetricsSink builds one sink per entry. No entries yields a NopSink, one
// entry the sink itself and several a MultiSink. A type may appear once since
// two sinks of the same type would record every prediction twice. When an
// entry fails, the sinks already built are closed.
func NewMetricsSink(cfgs []factory.ModuleConfig) (MetricsSink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	seen := make(map[string]int, len(cfgs))
	sinks := make([]MetricsSink, 0, len(cfgs))
	for i, c := range cfgs {
		if j, dup := seen[c.Type]; dup {
			closeSinks(sinks)
			return nil, fmt.Errorf("metrics sink %d: type %q already configured at %d", i, c.Type, j)
		}
		seen[c.Type] = i
		s, err := sinkRegistry.Create(c)
		if err != nil {
			closeSinks(sinks)
			return nil, fmt.Errorf("metrics sink %d: %w", i, err)
		}
		sinks = append(sinks, s)
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return NewMultiSink(sinks...), nil
}

func closeSinks(sinks []MetricsSink) {
	for _, s := range sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}

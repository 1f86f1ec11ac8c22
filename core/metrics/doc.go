// Package metrics defines the sinks that record prediction outcomes for
// observability. Sinks like PromSink and InfluxSink live in infra/metrics and
// register themselves by type name; NewMetricsSink returns a MultiSink
// automatically when several sinks are configured.
package metrics

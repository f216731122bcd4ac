// Package metrics defines the sink interface used to observe dispatch outcomes.
// Sinks such as PromSink, InfluxSink or the MQTT publisher record order
// assignments, misses and day summaries and can be combined with NewMultiSink.
// The factory helpers return a MultiSink automatically when several sinks are
// configured.
package metrics

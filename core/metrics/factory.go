package metrics

import (
	"fmt"

	"github.com/kilianp07/couriersim/core/factory"
)

var sinkRegistry = factory.NewRegistry[MetricsSink]()

// RegisterMetricsSink adds a metrics sink factory identified by name.
func RegisterMetricsSink(name string, f factory.Factory[MetricsSink]) error {
	return sinkRegistry.Register(name, f)
}

// RegisteredSinks lists the sink types that can be configured.
func RegisteredSinks() []string { return sinkRegistry.Names() }

// NewMetricsSink creates a MetricsSink from the provided configuration. Sinks
// created before a failure are closed.
func NewMetricsSink(cfgs []factory.ModuleConfig) (MetricsSink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	if len(cfgs) == 1 {
		return sinkRegistry.Create(cfgs[0])
	}
	sinks := make([]MetricsSink, 0, len(cfgs))
	for i, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			_ = NewMultiSink(sinks...).Close()
			return nil, fmt.Errorf("sink %d: %w", i, err)
		}
		sinks = append(sinks, s)
	}
	return NewMultiSink(sinks...), nil
}

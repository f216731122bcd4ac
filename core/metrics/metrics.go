package metrics

import (
	"io"

	"github.com/kilianp07/couriersim/core/events"
	"github.com/kilianp07/couriersim/core/model"
)

// MetricsSink records dispatch outcomes for observability purposes.
type MetricsSink interface {
	RecordAssignment(ev events.OrderAssigned) error
	RecordMiss(ev events.OrderMissed) error
	RecordDaySummary(s model.DaySummary) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordAssignment(events.OrderAssigned) error { return nil }
func (NopSink) RecordMiss(events.OrderMissed) error         { return nil }
func (NopSink) RecordDaySummary(model.DaySummary) error     { return nil }

// MultiSink fans records out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordAssignment forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordAssignment(ev events.OrderAssigned) error {
	for _, s := range m.Sinks {
		if err := s.RecordAssignment(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordMiss forwards miss events.
func (m *MultiSink) RecordMiss(ev events.OrderMissed) error {
	for _, s := range m.Sinks {
		if err := s.RecordMiss(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordDaySummary forwards day summaries.
func (m *MultiSink) RecordDaySummary(sum model.DaySummary) error {
	for _, s := range m.Sinks {
		if err := s.RecordDaySummary(sum); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink that holds resources and returns the first error.
func (m *MultiSink) Close() error {
	var first error
	for _, s := range m.Sinks {
		if err := Close(s); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Close releases the sink if it implements io.Closer.
func Close(s MetricsSink) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

package metrics

import (
	"context"

	"github.com/kilianp07/couriersim/core/events"
	coremetrics "github.com/kilianp07/couriersim/core/metrics"
	"github.com/kilianp07/couriersim/core/logger"
	"github.com/kilianp07/couriersim/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and forwards every event to
// sink from a separate goroutine. The returned channel is closed once the
// collector stops, which happens when ctx is canceled or the bus is closed.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus[events.Event], sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
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
				if err := Forward(sink, ev); err != nil && log != nil {
					log.Errorf("event collector: %v", err)
				}
			}
		}
	}()
	return done
}

// Forward hands ev to the matching sink method.
func Forward(sink coremetrics.MetricsSink, ev events.Event) error {
	switch e := ev.(type) {
	case events.OrderAssigned:
		return sink.RecordAssignment(e)
	case events.OrderMissed:
		return sink.RecordMiss(e)
	case events.DayClosed:
		return sink.RecordDaySummary(e.Summary)
	}
	return nil
}

package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/couriersim/core/events"
	"github.com/kilianp07/couriersim/core/model"
)

// PromSink records dispatch outcomes in Prometheus metrics.
type PromSink struct {
	assignments *prometheus.CounterVec
	revenue     *prometheus.CounterVec
	missed      *prometheus.CounterVec
	day         *prometheus.GaugeVec
}

// NewPromSink registers the sink's collectors on the default registerer. The
// /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	assignments, err := registerOrReuse(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "courier_assignments_total",
		Help: "Orders assigned to a courier",
	}, []string{"vehicle", "class"}))
	if err != nil {
		return nil, err
	}
	revenue, err := registerOrReuse(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "courier_revenue_total",
		Help: "Revenue earned by delivered orders",
	}, []string{"vehicle"}))
	if err != nil {
		return nil, err
	}
	missed, err := registerOrReuse(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "courier_missed_orders_total",
		Help: "Orders for which no courier was eligible",
	}, []string{"class"}))
	if err != nil {
		return nil, err
	}
	day, err := registerOrReuse(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "courier_last_day",
		Help: "Statistics of the most recently closed day",
	}, []string{"stat"}))
	if err != nil {
		return nil, err
	}
	return &PromSink{assignments: assignments, revenue: revenue, missed: missed, day: day}, nil
}

func registerOrReuse[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordAssignment counts the order and its revenue.
func (s *PromSink) RecordAssignment(ev events.OrderAssigned) error {
	s.assignments.WithLabelValues(ev.Vehicle.String(), ev.Order.Class.String()).Inc()
	s.revenue.WithLabelValues(ev.Vehicle.String()).Add(ev.Cost)
	return nil
}

// RecordMiss counts the missed order.
func (s *PromSink) RecordMiss(ev events.OrderMissed) error {
	s.missed.WithLabelValues(ev.Order.Class.String()).Inc()
	return nil
}

// RecordDaySummary publishes the closed day as gauges.
func (s *PromSink) RecordDaySummary(sum model.DaySummary) error {
	st := sum.Stats
	s.day.WithLabelValues("deliveries").Set(float64(st.Deliveries))
	s.day.WithLabelValues("revenue").Set(st.Revenue)
	s.day.WithLabelValues("missed").Set(float64(st.Missed))
	s.day.WithLabelValues("bicycle_deliveries").Set(float64(st.Bicycle.Deliveries))
	s.day.WithLabelValues("moped_deliveries").Set(float64(st.Moped.Deliveries))
	s.day.WithLabelValues("active_couriers").Set(float64(sum.Utilization.ActiveCouriers))
	s.day.WithLabelValues("mean_distance").Set(sum.Utilization.MeanDistance)
	return nil
}

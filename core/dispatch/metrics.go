package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ordersProcessed *prometheus.CounterVec
	tripDuration    *prometheus.HistogramVec
	outOfOrder      prometheus.Counter
	idleCouriers    prometheus.Gauge
	busyCouriers    prometheus.Gauge
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, *prometheus.HistogramVec, prometheus.Counter, prometheus.Gauge, prometheus.Gauge) {
	orders := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_orders_processed_total",
			Help: "Orders processed by the dispatch engine",
		},
		[]string{"outcome", "class"},
	)
	dur := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispatch_trip_duration_minutes",
			Help:    "Rounded round-trip duration of assigned orders in simulated minutes",
			Buckets: prometheus.LinearBuckets(10, 10, 12),
		},
		[]string{"vehicle"},
	)
	ooo := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_out_of_order_orders_total",
			Help: "Orders whose time is earlier than the previous order of the day",
		},
	)
	idle := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dispatch_idle_couriers",
			Help: "Couriers waiting in the availability queue",
		},
	)
	busy := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dispatch_in_flight_couriers",
			Help: "Couriers currently out on a delivery",
		},
	)
	return orders, dur, ooo, idle, busy
}

func init() {
	ordersProcessed, tripDuration, outOfOrder, idleCouriers, busyCouriers = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatch metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(ordersProcessed, tripDuration, outOfOrder, idleCouriers, busyCouriers)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	ordersProcessed, tripDuration, outOfOrder, idleCouriers, busyCouriers = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}

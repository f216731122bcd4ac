package dispatch

import (
	"fmt"
	"math"

	"github.com/kilianp07/couriersim/core/events"
	"github.com/kilianp07/couriersim/core/logger"
	"github.com/kilianp07/couriersim/core/metrics"
	"github.com/kilianp07/couriersim/core/model"
	"github.com/kilianp07/couriersim/internal/eventbus"
)

// Outcome describes what happened to a single order.
type Outcome struct {
	Assigned  bool
	CourierID CourierID
	Cost      float64
	// Duration is the rounded round-trip time in minutes.
	Duration int
	ReturnAt model.Minute
}

// Engine runs the dispatch simulation for one courier pool. It owns the pool,
// the availability queue, the in-flight registry and the daily statistics.
// An Engine is not safe for concurrent use.
type Engine struct {
	couriers []model.Courier
	queue    *Queue
	inflight *Registry
	stats    model.DailyStats
	pricing  Pricing

	date     string
	open     bool
	lastTime model.Minute
	seen     bool

	logger  logger.Logger
	metrics metrics.MetricsSink
	bus     *eventbus.Bus[events.Event]
}

// Option customises an Engine.
type Option func(*Engine)

// WithPricing overrides the default tariff.
func WithPricing(p Pricing) Option { return func(e *Engine) { e.pricing = p } }

// WithLogger sets the logger used for engine diagnostics.
func WithLogger(l logger.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithMetrics sets the sink notified of every outcome and day summary.
func WithMetrics(s metrics.MetricsSink) Option { return func(e *Engine) { e.metrics = s } }

// WithEventBus sets the bus on which dispatch events are published.
func WithEventBus(b *eventbus.Bus[events.Event]) Option { return func(e *Engine) { e.bus = b } }

// NewEngine creates an engine for the given pool. The pool order is the
// canonical queue order used at the start of each day. No day is open until
// BeginDay is called.
func NewEngine(pool []model.Courier, opts ...Option) (*Engine, error) {
	if len(pool) == 0 {
		return nil, fmt.Errorf("dispatch: empty courier pool")
	}
	for _, c := range pool {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("dispatch: %w", err)
		}
	}
	e := &Engine{
		couriers: append([]model.Courier(nil), pool...),
		queue:    NewQueue(len(pool)),
		inflight: NewRegistry(),
		pricing:  DefaultPricing(),
		logger:   nopLogger{},
		metrics:  metrics.NopSink{},
	}
	for _, o := range opts {
		o(e)
	}
	if e.logger == nil {
		e.logger = nopLogger{}
	}
	if e.metrics == nil {
		e.metrics = metrics.NopSink{}
	}
	return e, nil
}

// BeginDay closes the current day, if any, and starts a new one: statistics
// are zeroed, every courier's mileage is reset, couriers still in flight are
// returned and the queue is refilled in pool order. The summary of the closed
// day is returned with ok set to true when a day was open.
func (e *Engine) BeginDay(date string) (prev model.DaySummary, ok bool) {
	prev, ok = e.EndDay()
	if !ok && e.stats.Orders() > 0 {
		e.logger.Warnf("discarding %d orders received before the first day marker", e.stats.Orders())
	}
	e.stats.Reset()
	e.inflight.Clear()
	e.queue.Clear()
	for i := range e.couriers {
		e.couriers[i].ResetDay()
		e.queue.PushBack(CourierID(i))
	}
	e.date = date
	e.open = true
	e.seen = false
	e.lastTime = 0
	e.updateGauges()
	e.logger.Infof("processing date %s with %d couriers", date, len(e.couriers))
	return prev, ok
}

// EndDay closes the open day and returns its summary. Couriers in flight keep
// their state until the next BeginDay. ok is false when no day was open.
func (e *Engine) EndDay() (model.DaySummary, bool) {
	if !e.open {
		return model.DaySummary{}, false
	}
	sum := e.Summary()
	e.open = false
	if err := e.metrics.RecordDaySummary(sum); err != nil {
		e.logger.Errorf("metrics error: %v", err)
	}
	e.publish(events.DayClosed{Summary: sum})
	e.logger.Infow("day closed", map[string]any{
		"date":       sum.Date,
		"deliveries": sum.Stats.Deliveries,
		"revenue":    sum.Stats.Revenue,
		"missed":     sum.Stats.Missed,
	})
	return sum, true
}

// ProcessOrder runs one dispatch step at the order's time: returning couriers
// are queued, then the first eligible queued courier takes the order. When no
// courier qualifies the order is missed and lost.
func (e *Engine) ProcessOrder(o model.Order) Outcome {
	if e.seen && o.Time < e.lastTime {
		outOfOrder.Inc()
		e.logger.Warnf("order at %s is earlier than previous order at %s", o.Time, e.lastTime)
	}
	e.seen = true
	e.lastTime = o.Time

	for _, id := range e.inflight.DrainDue(o.Time) {
		e.queue.PushBack(id)
	}

	priority := o.IsPriority()
	id, found := e.queue.PopFirstMatching(func(id CourierID) bool {
		return e.couriers[id].IsEligible(o.Distance, priority)
	})
	if !found {
		return e.miss(o)
	}

	c := &e.couriers[id]
	c.Commit(o.Distance)
	cost := e.pricing.Cost(o)
	e.stats.RecordDelivery(c.Vehicle, cost)
	dur := tripMinutes(o.Time, c.DurationMinutes(o.Distance))
	ret := o.Time + model.Minute(dur)
	e.inflight.Add(id, ret)

	ordersProcessed.WithLabelValues("assigned", o.Class.String()).Inc()
	tripDuration.WithLabelValues(c.Vehicle.String()).Observe(float64(dur))
	e.updateGauges()

	ev := events.OrderAssigned{
		Date:            e.date,
		Order:           o,
		CourierID:       int(id),
		CourierName:     c.Name,
		Vehicle:         c.Vehicle,
		Cost:            cost,
		DurationMinutes: dur,
		ReturnAt:        ret,
	}
	if err := e.metrics.RecordAssignment(ev); err != nil {
		e.logger.Errorf("metrics error: %v", err)
	}
	e.publish(ev)
	e.logger.Debugw("order assigned", map[string]any{
		"order":     o.String(),
		"courier":   c.Name,
		"return_at": ret.String(),
	})
	return Outcome{Assigned: true, CourierID: id, Cost: cost, Duration: dur, ReturnAt: ret}
}

// tripMinutes rounds a trip duration to whole minutes, capped so that the
// return time stays representable. A capped courier is out for the rest of the day.
func tripMinutes(start model.Minute, minutes float64) int {
	limit := math.MaxInt - int(start)
	r := math.Round(minutes)
	if r >= float64(math.MaxInt) {
		return limit
	}
	if n := int(r); n < limit {
		return n
	}
	return limit
}

func (e *Engine) miss(o model.Order) Outcome {
	e.stats.RecordMiss()
	ordersProcessed.WithLabelValues("missed", o.Class.String()).Inc()
	ev := events.OrderMissed{
		Date:     e.date,
		Order:    o,
		Idle:     e.queue.Len(),
		InFlight: e.inflight.Len(),
	}
	if err := e.metrics.RecordMiss(ev); err != nil {
		e.logger.Errorf("metrics error: %v", err)
	}
	e.publish(ev)
	e.logger.Debugw("order missed", map[string]any{
		"order":     o.String(),
		"idle":      ev.Idle,
		"in_flight": ev.InFlight,
	})
	return Outcome{}
}

func (e *Engine) publish(ev events.Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}

func (e *Engine) updateGauges() {
	idleCouriers.Set(float64(e.queue.Len()))
	busyCouriers.Set(float64(e.inflight.Len()))
}

// Summary returns a snapshot of the current day.
func (e *Engine) Summary() model.DaySummary {
	return model.DaySummary{
		Date:        e.date,
		Stats:       e.stats,
		Utilization: Utilization(e.couriers),
	}
}

// Stats returns the statistics accumulated since the last day boundary.
func (e *Engine) Stats() model.DailyStats { return e.stats }

// Date returns the date token of the current or last day.
func (e *Engine) Date() string { return e.date }

// DayOpen reports whether a day is in progress.
func (e *Engine) DayOpen() bool { return e.open }

// Courier returns a copy of the courier behind id.
func (e *Engine) Courier(id CourierID) model.Courier { return e.couriers[id] }

// Couriers returns a copy of the pool in canonical order.
func (e *Engine) Couriers() []model.Courier {
	return append([]model.Courier(nil), e.couriers...)
}

// Idle returns the queued couriers front to back.
func (e *Engine) Idle() []CourierID { return e.queue.Snapshot() }

// InFlight returns the number of couriers on a delivery.
func (e *Engine) InFlight() int { return e.inflight.Len() }

// ReturnAt returns when a courier in flight becomes idle again.
func (e *Engine) ReturnAt(id CourierID) (model.Minute, bool) { return e.inflight.ReturnAt(id) }

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Infow(string, map[string]any)  {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}

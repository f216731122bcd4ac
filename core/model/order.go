package model

import "fmt"

// Minute is a simulated time expressed in minutes from midnight.
type Minute int

// Clock builds a Minute from hours and minutes.
func Clock(hours, minutes int) Minute { return Minute(hours*60 + minutes) }

// String formats the minute as HH.MM, the notation used by order feeds.
func (m Minute) String() string {
	return fmt.Sprintf("%02d.%02d", int(m)/60, int(m)%60)
}

// OrderClass defines the service level of an order.
type OrderClass int

const (
	OrderStandard OrderClass = iota
	OrderPriority
)

// String returns the label used in order feeds.
func (c OrderClass) String() string {
	switch c {
	case OrderPriority:
		return "Priority"
	default:
		return "Standard"
	}
}

// ParseOrderClass maps a feed label to an OrderClass. Only the exact label
// "Priority" selects priority service; anything else is standard.
func ParseOrderClass(s string) OrderClass {
	if s == "Priority" {
		return OrderPriority
	}
	return OrderStandard
}

// Order is a single delivery request.
type Order struct {
	Time     Minute     `json:"time"`
	Distance float64    `json:"distance"` // one-way
	Class    OrderClass `json:"class"`
}

// IsPriority reports whether the order requires priority service.
func (o Order) IsPriority() bool { return o.Class == OrderPriority }

// RoundTrip returns the distance covered by a courier serving the order.
func (o Order) RoundTrip() float64 { return 2 * o.Distance }

func (o Order) String() string {
	return fmt.Sprintf("%s:%g:%s", o.Time, o.Distance, o.Class)
}

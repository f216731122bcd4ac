package events

import "github.com/kilianp07/couriersim/core/model"

// Event is implemented by every dispatch event.
type Event interface {
	// Day returns the date token of the day the event belongs to.
	Day() string
}

// OrderAssigned is published when a courier accepts an order.
type OrderAssigned struct {
	Date            string
	Order           model.Order
	CourierID       int
	CourierName     string
	Vehicle         model.VehicleClass
	Cost            float64
	DurationMinutes int
	ReturnAt        model.Minute
}

func (e OrderAssigned) Day() string { return e.Date }

// OrderMissed is published when no queued courier is eligible for an order.
type OrderMissed struct {
	Date     string
	Order    model.Order
	Idle     int
	InFlight int
}

func (e OrderMissed) Day() string { return e.Date }

// DayClosed is published once the statistics of a day are final.
type DayClosed struct {
	Summary model.DaySummary
}

func (e DayClosed) Day() string { return e.Summary.Date }

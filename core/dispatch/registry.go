package dispatch

import (
	"sort"

	"github.com/kilianp07/couriersim/core/model"
)

type flight struct {
	id       CourierID
	returnAt model.Minute
	seq      uint64
}

// Registry tracks couriers on a delivery and the minute each becomes idle again.
type Registry struct {
	flights []flight
	seq     uint64
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry { return &Registry{} }

// Add records a courier returning at returnAt.
func (r *Registry) Add(id CourierID, returnAt model.Minute) {
	r.seq++
	r.flights = append(r.flights, flight{id: id, returnAt: returnAt, seq: r.seq})
}

// DrainDue removes every courier whose return time is at or before now and
// returns them by ascending return time, ties broken by insertion order.
func (r *Registry) DrainDue(now model.Minute) []CourierID {
	var due []flight
	kept := r.flights[:0]
	for _, f := range r.flights {
		if f.returnAt <= now {
			due = append(due, f)
		} else {
			kept = append(kept, f)
		}
	}
	r.flights = kept
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].returnAt != due[j].returnAt {
			return due[i].returnAt < due[j].returnAt
		}
		return due[i].seq < due[j].seq
	})
	ids := make([]CourierID, len(due))
	for i, f := range due {
		ids[i] = f.id
	}
	return ids
}

// Len returns the number of couriers in flight.
func (r *Registry) Len() int { return len(r.flights) }

// Contains reports whether the courier is in flight.
func (r *Registry) Contains(id CourierID) bool {
	for _, f := range r.flights {
		if f.id == id {
			return true
		}
	}
	return false
}

// ReturnAt returns the return minute of a courier in flight.
func (r *Registry) ReturnAt(id CourierID) (model.Minute, bool) {
	for _, f := range r.flights {
		if f.id == id {
			return f.returnAt, true
		}
	}
	return 0, false
}

// NextReturn returns the earliest pending return minute.
func (r *Registry) NextReturn() (model.Minute, bool) {
	if len(r.flights) == 0 {
		return 0, false
	}
	next := r.flights[0].returnAt
	for _, f := range r.flights[1:] {
		if f.returnAt < next {
			next = f.returnAt
		}
	}
	return next, true
}

// Clear forgets every courier in flight.
func (r *Registry) Clear() {
	r.flights = r.flights[:0]
}

package model

import (
	"errors"
	"fmt"
	"strings"
)

// BicycleMaxOneWay is the longest one-way distance a bicycle courier may ride.
const BicycleMaxOneWay = 2.0

var (
	ErrInvalidSpeed        = errors.New("speed must be positive")
	ErrInvalidCap          = errors.New("daily distance cap must be non-negative")
	ErrUnknownVehicleClass = errors.New("unknown vehicle class")
)

// VehicleClass identifies the transport used by a courier. Each class carries a
// fixed rule set, see Capabilities.
type VehicleClass int

const (
	VehicleBicycle VehicleClass = iota
	VehicleMoped
)

// String returns the label used in input files and reports.
func (v VehicleClass) String() string {
	switch v {
	case VehicleBicycle:
		return "Bicycle"
	case VehicleMoped:
		return "Moped"
	default:
		return "unknown"
	}
}

// ParseVehicleClass converts a case-insensitive label into a VehicleClass.
func ParseVehicleClass(s string) (VehicleClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bicycle", "bike":
		return VehicleBicycle, nil
	case "moped":
		return VehicleMoped, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownVehicleClass, s)
	}
}

// Capabilities is the fixed rule set of a vehicle class.
type Capabilities struct {
	// Priority reports whether the class may carry priority orders.
	Priority bool
	// MaxOneWay limits the one-way order distance. Zero means no limit.
	MaxOneWay float64
	// DailyCap reports whether the class is subject to a daily distance cap.
	DailyCap bool
}

// Capabilities returns the rule set of the class.
func (v VehicleClass) Capabilities() Capabilities {
	switch v {
	case VehicleBicycle:
		return Capabilities{Priority: false, MaxOneWay: BicycleMaxOneWay, DailyCap: true}
	case VehicleMoped:
		return Capabilities{Priority: true}
	default:
		return Capabilities{}
	}
}

// DistanceCap is the daily distance allowance of a courier. The unbounded cap is
// a distinct state, not a large number.
type DistanceCap struct {
	bounded bool
	limit   float64
}

// Unbounded returns a cap that never refuses a trip.
func Unbounded() DistanceCap { return DistanceCap{} }

// Bounded returns a cap limited to limit distance units per day.
func Bounded(limit float64) DistanceCap { return DistanceCap{bounded: true, limit: limit} }

// IsBounded reports whether the cap limits daily distance.
func (c DistanceCap) IsBounded() bool { return c.bounded }

// Limit returns the daily limit. It is only meaningful when IsBounded is true.
func (c DistanceCap) Limit() float64 { return c.limit }

// Allows reports whether a daily total of total distance units fits the cap.
func (c DistanceCap) Allows(total float64) bool {
	return !c.bounded || total <= c.limit
}

func (c DistanceCap) String() string {
	if !c.bounded {
		return "unbounded"
	}
	return fmt.Sprintf("%g", c.limit)
}

// Courier is a delivery agent. Name, Vehicle, Speed and Cap never change once the
// courier is created; only the daily distance counter moves.
type Courier struct {
	Name    string
	Vehicle VehicleClass
	Speed   float64 // distance units per hour
	Cap     DistanceCap

	distance float64
}

// NewMoped returns a moped courier with an unbounded daily cap.
func NewMoped(name string, speed float64) Courier {
	return Courier{Name: name, Vehicle: VehicleMoped, Speed: speed, Cap: Unbounded()}
}

// NewBicycle returns a bicycle courier limited to maxDistance units per day.
func NewBicycle(name string, speed, maxDistance float64) Courier {
	return Courier{Name: name, Vehicle: VehicleBicycle, Speed: speed, Cap: Bounded(maxDistance)}
}

// NewCourier builds a courier of the given class and validates it. maxDistance
// is only used by classes subject to a daily cap.
func NewCourier(name string, vehicle VehicleClass, speed, maxDistance float64) (Courier, error) {
	var c Courier
	switch vehicle {
	case VehicleMoped:
		c = NewMoped(name, speed)
	case VehicleBicycle:
		c = NewBicycle(name, speed, maxDistance)
	default:
		return Courier{}, fmt.Errorf("courier %s: %w", name, ErrUnknownVehicleClass)
	}
	if err := c.Validate(); err != nil {
		return Courier{}, err
	}
	return c, nil
}

// Validate checks that the courier definition is sound.
func (c Courier) Validate() error {
	if !(c.Speed > 0) {
		return fmt.Errorf("courier %s: %w", c.Name, ErrInvalidSpeed)
	}
	if c.Cap.IsBounded() && !(c.Cap.Limit() >= 0) {
		return fmt.Errorf("courier %s: %w", c.Name, ErrInvalidCap)
	}
	if c.Vehicle != VehicleBicycle && c.Vehicle != VehicleMoped {
		return fmt.Errorf("courier %s: %w", c.Name, ErrUnknownVehicleClass)
	}
	return nil
}

// IsEligible reports whether the courier may take an order of the given one-way
// distance. It has no side effects.
func (c *Courier) IsEligible(distance float64, priority bool) bool {
	caps := c.Vehicle.Capabilities()
	if priority && !caps.Priority {
		return false
	}
	if caps.MaxOneWay > 0 && distance > caps.MaxOneWay {
		return false
	}
	return c.Cap.Allows(c.distance + 2*distance)
}

// Commit charges the round trip of an order to the daily counter. Eligibility
// must have been checked by the caller.
func (c *Courier) Commit(distance float64) {
	c.distance += 2 * distance
}

// DurationMinutes returns the round-trip time of an order in minutes.
func (c Courier) DurationMinutes(distance float64) float64 {
	return (2 * distance / c.Speed) * 60
}

// ResetDay clears the daily distance counter.
func (c *Courier) ResetDay() {
	c.distance = 0
}

// Distance returns the distance covered since the last reset.
func (c Courier) Distance() float64 { return c.distance }

// Remaining returns the distance left under a bounded cap. ok is false when the
// cap is unbounded.
func (c Courier) Remaining() (remaining float64, ok bool) {
	if !c.Cap.IsBounded() {
		return 0, false
	}
	return c.Cap.Limit() - c.distance, true
}

func (c Courier) String() string {
	return fmt.Sprintf("%s (%s, speed %g, cap %s)", c.Name, c.Vehicle, c.Speed, c.Cap)
}

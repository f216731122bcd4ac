package model

// ClassStats aggregates deliveries for one vehicle class.
type ClassStats struct {
	Deliveries int     `json:"deliveries"`
	Revenue    float64 `json:"revenue"`
}

// DailyStats holds the counters of one simulated day.
type DailyStats struct {
	Deliveries int        `json:"deliveries"`
	Revenue    float64    `json:"revenue"`
	Bicycle    ClassStats `json:"bicycle"`
	Moped      ClassStats `json:"moped"`
	Missed     int        `json:"missed"`
}

// RecordDelivery accounts for an order served by a courier of class v.
func (s *DailyStats) RecordDelivery(v VehicleClass, cost float64) {
	s.Deliveries++
	s.Revenue += cost
	switch v {
	case VehicleBicycle:
		s.Bicycle.Deliveries++
		s.Bicycle.Revenue += cost
	case VehicleMoped:
		s.Moped.Deliveries++
		s.Moped.Revenue += cost
	}
}

// RecordMiss accounts for an order no courier could take.
func (s *DailyStats) RecordMiss() { s.Missed++ }

// Reset zeroes every counter.
func (s *DailyStats) Reset() { *s = DailyStats{} }

// ByClass returns the counters of vehicle class v.
func (s DailyStats) ByClass(v VehicleClass) ClassStats {
	switch v {
	case VehicleBicycle:
		return s.Bicycle
	case VehicleMoped:
		return s.Moped
	default:
		return ClassStats{}
	}
}

// Orders returns the number of orders seen, served or missed.
func (s DailyStats) Orders() int { return s.Deliveries + s.Missed }

// Utilization describes how the pool's daily distance was spread at day end.
type Utilization struct {
	Couriers       int     `json:"couriers"`
	ActiveCouriers int     `json:"active_couriers"`
	TotalDistance  float64 `json:"total_distance"`
	MeanDistance   float64 `json:"mean_distance"`
	StdDevDistance float64 `json:"stddev_distance"`
	MaxDistance    float64 `json:"max_distance"`
}

// DaySummary is the snapshot emitted when a simulated day closes.
type DaySummary struct {
	Date        string      `json:"date"`
	Stats       DailyStats  `json:"stats"`
	Utilization Utilization `json:"utilization"`
}

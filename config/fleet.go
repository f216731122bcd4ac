package config

import (
	"fmt"

	"github.com/kilianp07/couriersim/core/model"
)

// CourierConfig describes one courier of the pool.
type CourierConfig struct {
	Name    string  `json:"name"`
	Vehicle string  `json:"vehicle"`
	Speed   float64 `json:"speed"`
	// MaxDistance is the daily cap of capped vehicle classes. Ignored for mopeds.
	MaxDistance float64 `json:"max_distance"`
}

// FleetConfig lists the courier pool in canonical queue order.
type FleetConfig struct {
	Couriers []CourierConfig `json:"couriers"`
}

// DefaultFleet returns the stock pool of eight couriers.
func DefaultFleet() []CourierConfig {
	return []CourierConfig{
		{Name: "Anne", Vehicle: "Moped", Speed: 32},
		{Name: "Jim", Vehicle: "Moped", Speed: 28},
		{Name: "Sue", Vehicle: "Bicycle", Speed: 4, MaxDistance: 23},
		{Name: "Bill", Vehicle: "Bicycle", Speed: 5, MaxDistance: 17},
		{Name: "James", Vehicle: "Moped", Speed: 25},
		{Name: "Amy", Vehicle: "Moped", Speed: 24},
		{Name: "Bob", Vehicle: "Moped", Speed: 27},
		{Name: "Steve", Vehicle: "Bicycle", Speed: 3, MaxDistance: 21},
	}
}

// SetDefaults installs the stock pool when none is configured.
func (c *FleetConfig) SetDefaults() {
	if len(c.Couriers) == 0 {
		c.Couriers = DefaultFleet()
	}
}

// Validate builds the pool once to surface bad entries.
func (c FleetConfig) Validate() error {
	_, err := c.Build()
	return err
}

// Build converts the configuration into couriers.
func (c FleetConfig) Build() ([]model.Courier, error) {
	if len(c.Couriers) == 0 {
		return nil, fmt.Errorf("fleet is empty")
	}
	pool := make([]model.Courier, 0, len(c.Couriers))
	seen := make(map[string]bool, len(c.Couriers))
	for i, cc := range c.Couriers {
		if cc.Name == "" {
			return nil, fmt.Errorf("courier %d: name is required", i)
		}
		if seen[cc.Name] {
			return nil, fmt.Errorf("courier %s: duplicate name", cc.Name)
		}
		seen[cc.Name] = true
		v, err := model.ParseVehicleClass(cc.Vehicle)
		if err != nil {
			return nil, fmt.Errorf("courier %s: %w", cc.Name, err)
		}
		courier, err := model.NewCourier(cc.Name, v, cc.Speed, cc.MaxDistance)
		if err != nil {
			return nil, err
		}
		pool = append(pool, courier)
	}
	return pool, nil
}

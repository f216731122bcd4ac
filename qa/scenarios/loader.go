package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/couriersim/config"
)

// CourierDef overrides the stock pool when a scenario lists couriers.
type CourierDef struct {
	Name        string  `yaml:"name"`
	Vehicle     string  `yaml:"vehicle"`
	Speed       float64 `yaml:"speed"`
	MaxDistance float64 `yaml:"max_distance"`
}

func (c CourierDef) ToConfig() config.CourierConfig {
	return config.CourierConfig{Name: c.Name, Vehicle: c.Vehicle, Speed: c.Speed, MaxDistance: c.MaxDistance}
}

// DayExpectation lists the counters expected when a day closes.
type DayExpectation struct {
	Date              string  `yaml:"date"`
	Deliveries        int     `yaml:"deliveries"`
	Revenue           float64 `yaml:"revenue"`
	BicycleDeliveries int     `yaml:"bicycle_deliveries"`
	BicycleRevenue    float64 `yaml:"bicycle_revenue"`
	MopedDeliveries   int     `yaml:"moped_deliveries"`
	MopedRevenue      float64 `yaml:"moped_revenue"`
	Missed            int     `yaml:"missed"`
}

type Expected struct {
	Days    []DayExpectation `yaml:"days"`
	Dropped int              `yaml:"dropped"`
	// Outcomes names the courier given each order in feed order; "-" marks a miss.
	Outcomes []string `yaml:"outcomes,omitempty"`
}

type Scenario struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description,omitempty"`
	Couriers    []CourierDef `yaml:"couriers,omitempty"`
	Feed        string       `yaml:"feed"`
	Expected    Expected     `yaml:"expected"`
}

// Fleet returns the scenario pool, falling back to the stock fleet.
func (s Scenario) Fleet() config.FleetConfig {
	var fc config.FleetConfig
	for _, c := range s.Couriers {
		fc.Couriers = append(fc.Couriers, c.ToConfig())
	}
	fc.SetDefaults()
	return fc
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

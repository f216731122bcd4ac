package dispatch

import (
	"fmt"

	"github.com/kilianp07/couriersim/core/model"
)

const (
	DefaultStandardCost = 2.0
	DefaultPriorityCost = 3.0
)

// Pricing defines the flat fee charged per order. Distance does not change it.
type Pricing struct {
	Standard float64 `json:"standard"`
	Priority float64 `json:"priority"`
}

// DefaultPricing returns the standard tariff.
func DefaultPricing() Pricing {
	return Pricing{Standard: DefaultStandardCost, Priority: DefaultPriorityCost}
}

// Cost returns the fee for the order.
func (p Pricing) Cost(o model.Order) float64 {
	if o.IsPriority() {
		return p.Priority
	}
	return p.Standard
}

// Config defines dispatch-related settings.
type Config struct {
	Pricing Pricing `json:"pricing"`
}

// SetDefaults applies the standard tariff when no pricing is configured.
func (c *Config) SetDefaults() {
	if c.Pricing == (Pricing{}) {
		c.Pricing = DefaultPricing()
	}
}

// Validate rejects negative fees.
func (c Config) Validate() error {
	if c.Pricing.Standard < 0 || c.Pricing.Priority < 0 {
		return fmt.Errorf("dispatch pricing must be non-negative, got %+v", c.Pricing)
	}
	return nil
}

// Package feedgen produces synthetic order feeds for load tests and demos.
package feedgen

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"github.com/kilianp07/couriersim/core/model"
)

// Config controls the shape of a generated feed.
type Config struct {
	Days         int       `json:"days"`
	OrdersPerDay int       `json:"orders_per_day"`
	StartDate    time.Time `json:"start_date"`
	// FirstHour and LastHour bound the order times, inclusive of FirstHour.
	FirstHour   int     `json:"first_hour"`
	LastHour    int     `json:"last_hour"`
	MinDistance float64 `json:"min_distance"`
	MaxDistance float64 `json:"max_distance"`
	// PriorityPct is the share of priority orders in [0,1].
	PriorityPct float64 `json:"priority_pct"`
	// JitterPct spreads OrdersPerDay by up to this fraction each day.
	JitterPct float64 `json:"jitter_pct"`
	// MalformedPct is the share of lines deliberately corrupted.
	MalformedPct float64 `json:"malformed_pct"`
	Seed         int64   `json:"seed"`
}

// SetDefaults fills unset fields with a one-day lunchtime feed.
func (c *Config) SetDefaults() {
	if c.Days == 0 {
		c.Days = 1
	}
	if c.OrdersPerDay == 0 {
		c.OrdersPerDay = 50
	}
	if c.StartDate.IsZero() {
		c.StartDate = time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)
	}
	if c.FirstHour == 0 && c.LastHour == 0 {
		c.FirstHour, c.LastHour = 11, 14
	}
	if c.MaxDistance == 0 {
		c.MinDistance, c.MaxDistance = 0.5, 6
	}
}

// Validate checks ranges.
func (c Config) Validate() error {
	if c.Days < 0 || c.OrdersPerDay < 0 {
		return fmt.Errorf("feedgen: days and orders_per_day must be non-negative")
	}
	if c.FirstHour < 0 || c.LastHour > 23 || c.FirstHour > c.LastHour {
		return fmt.Errorf("feedgen: invalid hour range %d-%d", c.FirstHour, c.LastHour)
	}
	if c.MinDistance < 0 || c.MaxDistance < c.MinDistance {
		return fmt.Errorf("feedgen: invalid distance range %g-%g", c.MinDistance, c.MaxDistance)
	}
	for name, p := range map[string]float64{"priority_pct": c.PriorityPct, "jitter_pct": c.JitterPct, "malformed_pct": c.MalformedPct} {
		if p < 0 || p > 1 {
			return fmt.Errorf("feedgen: %s must be within [0,1], got %g", name, p)
		}
	}
	return nil
}

// Generator emits day markers followed by time-ordered orders. The same seed
// always yields the same feed.
type Generator struct {
	cfg  Config
	rand *rand.Rand
}

// New creates a Generator. cfg should already carry defaults.
func New(cfg Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{cfg: cfg, rand: rand.New(rand.NewSource(cfg.Seed))}, nil
}

// Day returns the orders of one day sorted by time.
func (g *Generator) Day() []model.Order {
	n := g.jittered(g.cfg.OrdersPerDay)
	orders := make([]model.Order, n)
	first := model.Clock(g.cfg.FirstHour, 0)
	span := model.Clock(g.cfg.LastHour, 59) - first + 1
	for i := range orders {
		class := model.OrderStandard
		if g.rand.Float64() < g.cfg.PriorityPct {
			class = model.OrderPriority
		}
		orders[i] = model.Order{
			Time:     first + model.Minute(g.rand.Intn(int(span))),
			Distance: g.distance(),
			Class:    class,
		}
	}
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].Time < orders[j].Time })
	return orders
}

// Write writes the whole feed to w.
func (g *Generator) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for d := 0; d < g.cfg.Days; d++ {
		date := g.cfg.StartDate.AddDate(0, 0, d).Format("02/01/2006")
		if _, err := fmt.Fprintln(bw, date); err != nil {
			return err
		}
		for _, o := range g.Day() {
			line := FormatOrder(o)
			if g.rand.Float64() < g.cfg.MalformedPct {
				line = g.corrupt(o)
			}
			if _, err := fmt.Fprintln(bw, line); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// FormatOrder renders o as a feed line.
func FormatOrder(o model.Order) string {
	return fmt.Sprintf("%02d.%02d:%s:%s", int(o.Time)/60, int(o.Time)%60,
		strconv.FormatFloat(o.Distance, 'f', -1, 64), o.Class)
}

func (g *Generator) corrupt(o model.Order) string {
	switch g.rand.Intn(3) {
	case 0:
		return fmt.Sprintf("%02d.%02d:far:%s", int(o.Time)/60, int(o.Time)%60, o.Class)
	case 1:
		return fmt.Sprintf("%02d.75:%g:%s", int(o.Time)/60, o.Distance, o.Class)
	default:
		return FormatOrder(o) + ":extra"
	}
}

func (g *Generator) distance() float64 {
	d := g.cfg.MinDistance + g.rand.Float64()*(g.cfg.MaxDistance-g.cfg.MinDistance)
	// One decimal keeps feeds readable.
	return float64(int(d*10+0.5)) / 10
}

func (g *Generator) jittered(n int) int {
	if g.cfg.JitterPct == 0 || n == 0 {
		return n
	}
	j := 1 + (g.rand.Float64()*2-1)*g.cfg.JitterPct
	out := int(float64(n)*j + 0.5)
	if out < 0 {
		return 0
	}
	return out
}

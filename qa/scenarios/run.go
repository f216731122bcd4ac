package scenarios

import (
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/couriersim/core/dispatch"
	"github.com/kilianp07/couriersim/core/model"
	"github.com/kilianp07/couriersim/infra/logger"
	"github.com/kilianp07/couriersim/infra/metrics"
	"github.com/kilianp07/couriersim/internal/feed"
)

const missMarker = "-"

func RunScenario(t *testing.T, sc *Scenario) {
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	pool, err := sc.Fleet().Build()
	if err != nil {
		t.Fatalf("fleet: %v", err)
	}
	eng, err := dispatch.NewEngine(pool, dispatch.WithMetrics(sink), dispatch.WithLogger(logger.NopLogger{}))
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	var days []model.DaySummary
	var outcomes []string
	rd := feed.NewReader(strings.NewReader(sc.Feed), nil)
	for {
		rec, err := rd.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("feed: %v", err)
		}
		switch rec.Kind {
		case feed.KindDay:
			if prev, ok := eng.BeginDay(rec.Date); ok {
				days = append(days, prev)
			}
		case feed.KindOrder:
			out := eng.ProcessOrder(rec.Order)
			if out.Assigned {
				outcomes = append(outcomes, eng.Courier(out.CourierID).Name)
			} else {
				outcomes = append(outcomes, missMarker)
			}
		}
	}
	if sum, ok := eng.EndDay(); ok {
		days = append(days, sum)
	}

	if rd.Dropped() != sc.Expected.Dropped {
		t.Errorf("scenario %s expected %d dropped lines, got %d", sc.Name, sc.Expected.Dropped, rd.Dropped())
	}
	if len(days) != len(sc.Expected.Days) {
		t.Fatalf("scenario %s expected %d days, got %d", sc.Name, len(sc.Expected.Days), len(days))
	}
	wantDeliveries := 0
	for i, want := range sc.Expected.Days {
		checkDay(t, sc.Name, want, days[i])
		wantDeliveries += want.Deliveries
	}
	if sc.Expected.Outcomes != nil && strings.Join(outcomes, ",") != strings.Join(sc.Expected.Outcomes, ",") {
		t.Errorf("scenario %s expected outcomes %v, got %v", sc.Name, sc.Expected.Outcomes, outcomes)
	}
	if got := counterTotal(t, reg, "courier_assignments_total"); got != float64(wantDeliveries) {
		t.Errorf("scenario %s expected %d assignments recorded, got %g", sc.Name, wantDeliveries, got)
	}
}

func checkDay(t *testing.T, name string, want DayExpectation, got model.DaySummary) {
	t.Helper()
	st := got.Stats
	if got.Date != want.Date {
		t.Errorf("scenario %s expected day %s, got %s", name, want.Date, got.Date)
	}
	ints := []struct {
		label     string
		want, got int
	}{
		{"deliveries", want.Deliveries, st.Deliveries},
		{"bicycle deliveries", want.BicycleDeliveries, st.Bicycle.Deliveries},
		{"moped deliveries", want.MopedDeliveries, st.Moped.Deliveries},
		{"missed", want.Missed, st.Missed},
	}
	for _, c := range ints {
		if c.want != c.got {
			t.Errorf("scenario %s day %s: expected %d %s, got %d", name, want.Date, c.want, c.label, c.got)
		}
	}
	floats := []struct {
		label     string
		want, got float64
	}{
		{"revenue", want.Revenue, st.Revenue},
		{"bicycle revenue", want.BicycleRevenue, st.Bicycle.Revenue},
		{"moped revenue", want.MopedRevenue, st.Moped.Revenue},
	}
	for _, c := range floats {
		if math.Abs(c.want-c.got) > 1e-9 {
			t.Errorf("scenario %s day %s: expected %s %g, got %g", name, want.Date, c.label, c.want, c.got)
		}
	}
}

func counterTotal(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	total := 0.0
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

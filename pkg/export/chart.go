package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/couriersim/core/model"
)

// WriteChartHTML renders an HTML page with per-day deliveries, missed orders
// and revenue.
func WriteChartHTML(w io.Writer, days []model.DaySummary) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Daily dispatch summary"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Orders / revenue"}),
		charts.WithLegendOpts(opts.Legend{}),
	)

	xAxis := make([]string, 0, len(days))
	var bicycle, moped, missed, revenue []opts.BarData
	for _, d := range days {
		xAxis = append(xAxis, d.Date)
		bicycle = append(bicycle, opts.BarData{Value: d.Stats.Bicycle.Deliveries})
		moped = append(moped, opts.BarData{Value: d.Stats.Moped.Deliveries})
		missed = append(missed, opts.BarData{Value: d.Stats.Missed})
		revenue = append(revenue, opts.BarData{Value: d.Stats.Revenue})
	}
	bar.SetXAxis(xAxis).
		AddSeries("Bicycle deliveries", bicycle).
		AddSeries("Moped deliveries", moped).
		AddSeries("Missed orders", missed).
		AddSeries("Revenue", revenue)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/couriersim/core/model"
)

var csvHeader = []string{
	"date",
	"deliveries",
	"revenue",
	"bicycle_deliveries",
	"bicycle_revenue",
	"moped_deliveries",
	"moped_revenue",
	"missed",
	"active_couriers",
	"mean_distance",
}

// WriteJSON writes the day summaries to w as a JSON array.
func WriteJSON(w io.Writer, days []model.DaySummary) error {
	if days == nil {
		days = []model.DaySummary{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(days)
}

// WriteCSV writes one row per day with a header line.
func WriteCSV(w io.Writer, days []model.DaySummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, d := range days {
		st := d.Stats
		rec := []string{
			d.Date,
			strconv.Itoa(st.Deliveries),
			formatFloat(st.Revenue),
			strconv.Itoa(st.Bicycle.Deliveries),
			formatFloat(st.Bicycle.Revenue),
			strconv.Itoa(st.Moped.Deliveries),
			formatFloat(st.Moped.Revenue),
			strconv.Itoa(st.Missed),
			strconv.Itoa(d.Utilization.ActiveCouriers),
			formatFloat(d.Utilization.MeanDistance),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

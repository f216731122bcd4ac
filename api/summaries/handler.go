package summaries

import (
	"encoding/json"
	"net/http"

	"github.com/kilianp07/couriersim/core/model"
	"github.com/kilianp07/couriersim/core/summary"
	"github.com/kilianp07/couriersim/pkg/export"
)

// Path is where NewHandler is mounted by the serve command.
const Path = "/api/summaries"

// NewHandler returns an HTTP handler exposing stored day summaries via GET.
// Optional query parameters: date, run_id and format (json or csv).
// Requests must include an Authorization header with "Bearer <token>" when token is non-empty.
func NewHandler(store summary.Store, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		q := summary.Query{
			Date:  r.URL.Query().Get("date"),
			RunID: r.URL.Query().Get("run_id"),
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		switch r.URL.Query().Get("format") {
		case "", "json":
			if records == nil {
				records = []summary.Record{}
			}
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(records); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		case "csv":
			days := make([]model.DaySummary, 0, len(records))
			for _, rec := range records {
				days = append(days, rec.Summary())
			}
			w.Header().Set("Content-Type", "text/csv")
			if err := export.WriteCSV(w, days); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		default:
			http.Error(w, "unknown format", http.StatusBadRequest)
		}
	})
}

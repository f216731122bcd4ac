package summary

import (
	"context"
	"time"

	"github.com/kilianp07/couriersim/core/model"
)

// Record is one closed day as persisted by a Store.
type Record struct {
	RunID       string            `json:"run_id"`
	Date        string            `json:"date"`
	Stats       model.DailyStats  `json:"stats"`
	Utilization model.Utilization `json:"utilization"`
	// Dropped counts malformed order lines skipped during the day.
	Dropped   int       `json:"dropped"`
	CreatedAt time.Time `json:"created_at"`
}

// NewRecord stamps a day summary with the run it belongs to.
func NewRecord(runID string, s model.DaySummary, dropped int, now time.Time) Record {
	return Record{
		RunID:       runID,
		Date:        s.Date,
		Stats:       s.Stats,
		Utilization: s.Utilization,
		Dropped:     dropped,
		CreatedAt:   now.UTC(),
	}
}

// Summary converts the record back into a day summary.
func (r Record) Summary() model.DaySummary {
	return model.DaySummary{Date: r.Date, Stats: r.Stats, Utilization: r.Utilization}
}

// Query filters records. Zero fields match everything.
type Query struct {
	Date  string
	RunID string
}

// Matches reports whether r satisfies q.
func (q Query) Matches(r Record) bool {
	if q.Date != "" && r.Date != q.Date {
		return false
	}
	if q.RunID != "" && r.RunID != q.RunID {
		return false
	}
	return true
}

// Store persists day summaries and supports querying them back in insertion
// order.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

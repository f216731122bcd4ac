package mqtt

import (
	"strings"
	"time"
)

// Event kinds carried in Envelope.Kind.
const (
	KindAssigned = "order_assigned"
	KindMissed   = "order_missed"
	KindDay      = "day_summary"
)

// Envelope is the JSON document published for every dispatch event.
type Envelope struct {
	ID     string    `json:"id"`
	RunID  string    `json:"run_id,omitempty"`
	Kind   string    `json:"kind"`
	Date   string    `json:"date"`
	SentAt time.Time `json:"sent_at"`
	Data   any       `json:"data"`
}

// Topic builds "<prefix>/<kind>/<date>" with the slashes of the date token
// removed so that it stays a single topic level.
func Topic(prefix, kind, date string) string {
	day := strings.ReplaceAll(date, "/", "")
	if day == "" {
		day = "undated"
	}
	return strings.TrimSuffix(prefix, "/") + "/" + kind + "/" + day
}

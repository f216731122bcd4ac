package summaries

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kilianp07/couriersim/core/model"
	"github.com/kilianp07/couriersim/core/summary"
)

type brokenStore struct{ summary.MemoryStore }

func (*brokenStore) Query(context.Context, summary.Query) ([]summary.Record, error) {
	return nil, errors.New("boom")
}

func seeded(t *testing.T) *summary.MemoryStore {
	t.Helper()
	store := summary.NewMemoryStore()
	now := time.Date(2024, 3, 12, 18, 0, 0, 0, time.UTC)
	for _, rec := range []summary.Record{
		summary.NewRecord("r1", model.DaySummary{Date: "12/03/2024", Stats: model.DailyStats{Deliveries: 2}}, 0, now),
		summary.NewRecord("r1", model.DaySummary{Date: "13/03/2024", Stats: model.DailyStats{Deliveries: 4}}, 1, now),
		summary.NewRecord("r2", model.DaySummary{Date: "12/03/2024", Stats: model.DailyStats{Deliveries: 3}}, 0, now),
	} {
		if err := store.Append(context.Background(), rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	return store
}

func TestHandler_AuthAndFilters(t *testing.T) {
	h := NewHandler(seeded(t), "tok")

	req := httptest.NewRequest("GET", Path+"?date=12/03/2024", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out []summary.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out))
	}

	req = httptest.NewRequest("GET", Path+"?date=12/03/2024&run_id=r2", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	out = nil
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 1 || out[0].Stats.Deliveries != 3 {
		t.Fatalf("unexpected records %+v", out)
	}

	// unauthorized
	req = httptest.NewRequest("GET", Path, nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}

func TestHandler_Formats(t *testing.T) {
	h := NewHandler(seeded(t), "")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", Path+"?format=csv", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	if got := len(strings.Split(strings.TrimSpace(rr.Body.String()), "\n")); got != 4 {
		t.Fatalf("expected header and 3 rows, got %d lines", got)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", Path+"?run_id=nope", nil))
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Fatalf("expected empty array, got %q", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", Path+"?format=xml", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("POST", Path, nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", rr.Code)
	}
}

func TestHandler_StoreError(t *testing.T) {
	h := NewHandler(&brokenStore{}, "")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", Path, nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rr.Code)
	}
}

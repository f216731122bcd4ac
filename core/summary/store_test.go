package summary

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/couriersim/core/model"
)

func sampleRecord(run, date string) Record {
	var st model.DailyStats
	st.RecordDelivery(model.VehicleMoped, 3)
	st.RecordDelivery(model.VehicleBicycle, 2)
	st.RecordMiss()
	sum := model.DaySummary{Date: date, Stats: st, Utilization: model.Utilization{Couriers: 8, ActiveCouriers: 2}}
	return NewRecord(run, sum, 1, time.Unix(1700000000, 0))
}

func TestRecord_JSON(t *testing.T) {
	data, err := json.Marshal(sampleRecord("r1", "01/02/2024"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, k := range []string{"run_id", "date", "stats", "utilization", "dropped", "created_at"} {
		if _, ok := m[k]; !ok {
			t.Errorf("missing key %s", k)
		}
	}
}

func TestRecordSummaryRoundTrip(t *testing.T) {
	rec := sampleRecord("r1", "01/02/2024")
	sum := rec.Summary()
	assert.Equal(t, "01/02/2024", sum.Date)
	assert.Equal(t, 2, sum.Stats.Deliveries)
	assert.Equal(t, 5.0, sum.Stats.Revenue)
	assert.Equal(t, time.UTC, rec.CreatedAt.Location())
}

func TestQueryMatches(t *testing.T) {
	rec := sampleRecord("r1", "01/02/2024")
	cases := []struct {
		name string
		q    Query
		want bool
	}{
		{"empty", Query{}, true},
		{"date", Query{Date: "01/02/2024"}, true},
		{"other date", Query{Date: "02/02/2024"}, false},
		{"run", Query{RunID: "r1"}, true},
		{"other run", Query{RunID: "r2", Date: "01/02/2024"}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.q.Matches(rec))
		})
	}
}

// exerciseStore appends three records over two runs and checks filtering.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	for _, r := range []Record{
		sampleRecord("r1", "01/02/2024"),
		sampleRecord("r1", "02/02/2024"),
		sampleRecord("r2", "01/02/2024"),
	} {
		require.NoError(t, s.Append(ctx, r))
	}

	all, err := s.Query(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "02/02/2024", all[1].Date)

	byDate, err := s.Query(ctx, Query{Date: "01/02/2024"})
	require.NoError(t, err)
	require.Len(t, byDate, 2)
	assert.Equal(t, "r1", byDate[0].RunID)
	assert.Equal(t, "r2", byDate[1].RunID)

	byRun, err := s.Query(ctx, Query{RunID: "r2"})
	require.NoError(t, err)
	require.Len(t, byRun, 1)
	assert.Equal(t, 1, byRun[0].Stats.Missed)
	assert.Equal(t, 1, byRun[0].Dropped)
	assert.Equal(t, 8, byRun[0].Utilization.Couriers)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer func() { _ = s.Close() }()
	exerciseStore(t, s)
}

func TestSQLiteStore_PersistQuery(t *testing.T) {
	store, err := NewSQLiteStore("file:summary_test.db?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()
	exerciseStore(t, store)
}

func TestRotatingJSONLStore_Query(t *testing.T) {
	path := t.TempDir() + "/sum/summaries.jsonl"
	store, err := NewRotatingJSONLStore(path, 1, 2, 1)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()
	exerciseStore(t, store)
}

func TestRotatingJSONLStore_EmptyQuery(t *testing.T) {
	store, err := NewRotatingJSONLStore(t.TempDir()+"/none.jsonl", 1, 1, 1)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()
	out, err := store.Query(context.Background(), Query{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected no records, got %d", len(out))
	}
}

func TestBuildPostgresQuery(t *testing.T) {
	sqlText, args := buildPostgresQuery(Query{})
	assert.Equal(t, "SELECT record FROM day_summaries ORDER BY id", sqlText)
	assert.Empty(t, args)

	sqlText, args = buildPostgresQuery(Query{Date: "01/02/2024", RunID: "r1"})
	assert.Equal(t, "SELECT record FROM day_summaries WHERE day = $1 AND run_id = $2 ORDER BY id", sqlText)
	assert.Equal(t, []any{"01/02/2024", "r1"}, args)

	_, args = buildPostgresQuery(Query{RunID: "r1"})
	assert.Equal(t, []any{"r1"}, args)
}

func TestConfigDefaultsAndValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"none", Config{}, false},
		{"jsonl default path", Config{Backend: BackendJSONL}, false},
		{"sqlite default path", Config{Backend: BackendSQLite}, false},
		{"postgres without dsn", Config{Backend: BackendPostgres}, true},
		{"postgres", Config{Backend: BackendPostgres, DSN: "postgres://localhost/db"}, false},
		{"unknown", Config{Backend: "redis"}, true},
		{"negative rotation", Config{Backend: BackendJSONL, MaxBackups: -1}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := c.cfg
			cfg.SetDefaults()
			err := cfg.Validate()
			if c.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, Config{Backend: BackendNone})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, Config{Backend: BackendSQLite, Path: "file:open_test.db?mode=memory&cache=shared"})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, Config{Backend: "bogus"})
	assert.Error(t, err)
}

package app

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/couriersim/config"
	"github.com/kilianp07/couriersim/core/events"
	"github.com/kilianp07/couriersim/core/model"
	"github.com/kilianp07/couriersim/core/summary"
)

const twoDays = `12/03/2024
08.00:10:Standard
08.10:1:Priority
oops
08.40:1:Priority
13/03/2024
09.00:2:Standard
`

type fakePublisher struct {
	mu       sync.Mutex
	assigned []events.OrderAssigned
	missed   []events.OrderMissed
	days     []model.DaySummary
	closed   bool
}

func (p *fakePublisher) RecordAssignment(ev events.OrderAssigned) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.assigned = append(p.assigned, ev)
	return nil
}

func (p *fakePublisher) RecordMiss(ev events.OrderMissed) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.missed = append(p.missed, ev)
	return nil
}

func (p *fakePublisher) RecordDaySummary(s model.DaySummary) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.days = append(p.days, s)
	return nil
}

func (p *fakePublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

type failingStore struct{ summary.MemoryStore }

func (*failingStore) Append(context.Context, summary.Record) error { return errors.New("disk full") }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Fleet.Couriers = []config.CourierConfig{{Name: "Anne", Vehicle: "Moped", Speed: 30}}
	cfg.Output.Dir = t.TempDir()
	return cfg
}

func fixedClock() time.Time { return time.Date(2024, 3, 12, 18, 0, 0, 0, time.UTC) }

func TestServiceRunWritesDayFiles(t *testing.T) {
	cfg := testConfig(t)
	store := summary.NewMemoryStore()
	svc, err := New(context.Background(), cfg, WithStore(store), WithRunID("run-1"), WithClock(fixedClock))
	require.NoError(t, err)
	defer svc.Close()

	res, err := svc.Run(context.Background(), strings.NewReader(twoDays))
	require.NoError(t, err)
	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, 1, res.Dropped)
	require.Len(t, res.Days, 2)

	day1 := res.Days[0].Stats
	assert.Equal(t, 2, day1.Deliveries)
	assert.Equal(t, 5.0, day1.Revenue)
	assert.Equal(t, 1, day1.Missed)
	assert.Equal(t, 2, day1.Moped.Deliveries)

	data, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "12032024.dat"))
	require.NoError(t, err)
	want := "Total deliveries: 2\nTotal money: 5\nBicycle deliveries: 0\nBicycle money: 0\n" +
		"Moped deliveries: 2\nMoped money: 5\nMissed orders: 1\n"
	assert.Equal(t, want, string(data))

	data, err = os.ReadFile(filepath.Join(cfg.Output.Dir, "13032024.dat"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Total deliveries: 1\n")
	assert.Len(t, res.Files, 2)

	recs, err := store.Query(context.Background(), summary.Query{})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "run-1", recs[0].RunID)
	assert.Equal(t, "12/03/2024", recs[0].Date)
	assert.Equal(t, 1, recs[0].Dropped)
	assert.Equal(t, 0, recs[1].Dropped)
	assert.Equal(t, fixedClock(), recs[0].CreatedAt)
}

func TestServiceRunExports(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.DisableDAT = true
	cfg.Output.CSV = true
	cfg.Output.JSON = true
	cfg.Output.Chart = true
	svc, err := New(context.Background(), cfg, WithStore(summary.NewMemoryStore()))
	require.NoError(t, err)
	defer svc.Close()

	res, err := svc.Run(context.Background(), strings.NewReader(twoDays))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(cfg.Output.Dir, CSVFile),
		filepath.Join(cfg.Output.Dir, JSONFile),
		filepath.Join(cfg.Output.Dir, ChartFile),
	}, res.Files)
	_, err = os.Stat(filepath.Join(cfg.Output.Dir, "12032024.dat"))
	assert.True(t, os.IsNotExist(err))

	raw, err := os.ReadFile(filepath.Join(cfg.Output.Dir, JSONFile))
	require.NoError(t, err)
	var days []model.DaySummary
	require.NoError(t, json.Unmarshal(raw, &days))
	require.Len(t, days, 2)
	assert.Equal(t, "13/03/2024", days[1].Date)

	csv, err := os.ReadFile(filepath.Join(cfg.Output.Dir, CSVFile))
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(csv)), "\n"), 3)
}

func TestServiceRunEmptyFeed(t *testing.T) {
	cfg := testConfig(t)
	svc, err := New(context.Background(), cfg, WithStore(summary.NewMemoryStore()))
	require.NoError(t, err)
	defer svc.Close()

	res, err := svc.Run(context.Background(), strings.NewReader("\n\n"))
	require.NoError(t, err)
	assert.Empty(t, res.Days)
	assert.Empty(t, res.Files)
}

func TestServiceRunIgnoresDropsBeforeFirstMarker(t *testing.T) {
	cfg := testConfig(t)
	store := summary.NewMemoryStore()
	svc, err := New(context.Background(), cfg, WithStore(store))
	require.NoError(t, err)
	defer svc.Close()

	feed := "garbage\n08.00:1:Standard\n12/03/2024\n09.00:1:Standard\n"
	res, err := svc.Run(context.Background(), strings.NewReader(feed))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Dropped)
	require.Len(t, res.Days, 1)
	assert.Equal(t, 1, res.Days[0].Stats.Deliveries)
	assert.Equal(t, 0, res.Days[0].Stats.Missed)

	recs, err := store.Query(context.Background(), summary.Query{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 0, recs[0].Dropped)
}

func TestServiceRunSurvivesOversizedLine(t *testing.T) {
	cfg := testConfig(t)
	store := summary.NewMemoryStore()
	svc, err := New(context.Background(), cfg, WithStore(store))
	require.NoError(t, err)
	defer svc.Close()

	feed := "01/01/2025\n" + strings.Repeat("x", 70000) + "\n08.00:1:Standard\n"
	res, err := svc.Run(context.Background(), strings.NewReader(feed))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Dropped)
	require.Len(t, res.Days, 1)
	assert.Equal(t, 1, res.Days[0].Stats.Deliveries)

	_, err = os.Stat(filepath.Join(cfg.Output.Dir, "01012025.dat"))
	require.NoError(t, err)
	recs, err := store.Query(context.Background(), summary.Query{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 1, recs[0].Dropped)
}

func TestServiceRunStoreFailureAborts(t *testing.T) {
	cfg := testConfig(t)
	svc, err := New(context.Background(), cfg, WithStore(&failingStore{}))
	require.NoError(t, err)
	defer svc.Close()

	_, err = svc.Run(context.Background(), strings.NewReader(twoDays))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "12/03/2024")
	assert.Contains(t, err.Error(), "disk full")
}

func TestServiceRunCanceled(t *testing.T) {
	cfg := testConfig(t)
	svc, err := New(context.Background(), cfg, WithStore(summary.NewMemoryStore()))
	require.NoError(t, err)
	defer svc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Run(ctx, strings.NewReader(twoDays))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestServicePublisherReceivesEvents(t *testing.T) {
	cfg := testConfig(t)
	pub := &fakePublisher{}
	svc, err := New(context.Background(), cfg, WithStore(summary.NewMemoryStore()), WithPublisher(pub))
	require.NoError(t, err)

	_, err = svc.Run(context.Background(), strings.NewReader(twoDays))
	require.NoError(t, err)
	require.NoError(t, svc.Close())

	pub.mu.Lock()
	defer pub.mu.Unlock()
	assert.True(t, pub.closed)
	assert.Len(t, pub.assigned, 3)
	assert.Len(t, pub.missed, 1)
	require.Len(t, pub.days, 2)
	assert.Equal(t, "12/03/2024", pub.days[0].Date)
}

func TestServiceCloseTwice(t *testing.T) {
	cfg := testConfig(t)
	svc, err := New(context.Background(), cfg, WithStore(summary.NewMemoryStore()), WithPublisher(&fakePublisher{}))
	require.NoError(t, err)
	require.NoError(t, svc.Close())
	require.NoError(t, svc.Close())
}

func TestNewRejectsInvalidFleet(t *testing.T) {
	cfg := testConfig(t)
	cfg.Fleet.Couriers = []config.CourierConfig{{Name: "A", Vehicle: "Moped", Speed: 20}, {Name: "A", Vehicle: "Moped", Speed: 20}}
	_, err := New(context.Background(), cfg)
	require.Error(t, err)
}

func TestNewGeneratesRunID(t *testing.T) {
	cfg := testConfig(t)
	svc, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer svc.Close()
	assert.Len(t, svc.RunID(), 36)
}

package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/couriersim/core/events"
	"github.com/kilianp07/couriersim/core/model"
)

func TestPromSinkRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	order := model.Order{Time: model.Clock(10, 0), Distance: 1, Class: model.OrderPriority}
	require.NoError(t, sink.RecordAssignment(events.OrderAssigned{Order: order, Vehicle: model.VehicleMoped, Cost: 3}))
	require.NoError(t, sink.RecordAssignment(events.OrderAssigned{Order: order, Vehicle: model.VehicleMoped, Cost: 3}))
	require.NoError(t, sink.RecordMiss(events.OrderMissed{Order: order}))

	var st model.DailyStats
	st.RecordDelivery(model.VehicleMoped, 3)
	st.RecordDelivery(model.VehicleMoped, 3)
	st.RecordMiss()
	require.NoError(t, sink.RecordDaySummary(model.DaySummary{Date: "d", Stats: st}))

	assert.Equal(t, 2.0, testutil.ToFloat64(sink.assignments.WithLabelValues("Moped", "Priority")))
	assert.Equal(t, 6.0, testutil.ToFloat64(sink.revenue.WithLabelValues("Moped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.missed.WithLabelValues("Priority")))
	assert.Equal(t, 6.0, testutil.ToFloat64(sink.day.WithLabelValues("revenue")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.day.WithLabelValues("missed")))
}

func TestPromSinkReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	b, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, a.RecordMiss(events.OrderMissed{}))
	assert.Equal(t, 1.0, testutil.ToFloat64(b.missed.WithLabelValues("Standard")))
}

func TestStartPromServer(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	require.NoError(t, sink.RecordMiss(events.OrderMissed{}))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- StartPromServer(ctx, addr, reg) }()

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err != nil {
			return false
		}
		defer func() { _ = resp.Body.Close() }()
		data, _ := io.ReadAll(resp.Body)
		body = string(data)
		return true
	}, 2*time.Second, 20*time.Millisecond)
	assert.True(t, strings.Contains(body, "courier_missed_orders_total"), body)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kilianp07/couriersim/core/events"
	coremetrics "github.com/kilianp07/couriersim/core/metrics"
	"github.com/kilianp07/couriersim/core/model"
	"github.com/kilianp07/couriersim/infra/logger"
)

// InfluxSink writes dispatch outcomes to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
	now      func() time.Time
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
		now:      time.Now,
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordAssignment writes an order_assigned point.
func (s *InfluxSink) RecordAssignment(ev events.OrderAssigned) error {
	p := write.NewPointWithMeasurement("order_assigned").
		AddTag("date", ev.Date).
		AddTag("courier", ev.CourierName).
		AddTag("vehicle", ev.Vehicle.String()).
		AddTag("class", ev.Order.Class.String()).
		AddField("minute", int(ev.Order.Time)).
		AddField("distance", round3(ev.Order.Distance)).
		AddField("cost", round3(ev.Cost)).
		AddField("duration_min", ev.DurationMinutes).
		SetTime(s.now())
	return s.write(p)
}

// RecordMiss writes an order_missed point.
func (s *InfluxSink) RecordMiss(ev events.OrderMissed) error {
	p := write.NewPointWithMeasurement("order_missed").
		AddTag("date", ev.Date).
		AddTag("class", ev.Order.Class.String()).
		AddField("minute", int(ev.Order.Time)).
		AddField("distance", round3(ev.Order.Distance)).
		AddField("idle", ev.Idle).
		AddField("in_flight", ev.InFlight).
		SetTime(s.now())
	return s.write(p)
}

// RecordDaySummary writes a day_summary point.
func (s *InfluxSink) RecordDaySummary(sum model.DaySummary) error {
	st := sum.Stats
	p := write.NewPointWithMeasurement("day_summary").
		AddTag("date", sum.Date).
		AddField("deliveries", st.Deliveries).
		AddField("revenue", round3(st.Revenue)).
		AddField("bicycle_deliveries", st.Bicycle.Deliveries).
		AddField("bicycle_revenue", round3(st.Bicycle.Revenue)).
		AddField("moped_deliveries", st.Moped.Deliveries).
		AddField("moped_revenue", round3(st.Moped.Revenue)).
		AddField("missed", st.Missed).
		AddField("mean_distance", round3(sum.Utilization.MeanDistance)).
		SetTime(s.now())
	return s.write(p)
}

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the HTTP client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

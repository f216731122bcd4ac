package mqtt

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/couriersim/core/events"
	"github.com/kilianp07/couriersim/core/model"
	coremon "github.com/kilianp07/couriersim/core/monitoring"
	coremqtt "github.com/kilianp07/couriersim/core/mqtt"
)

type recordMonitor struct {
	err  error
	tags map[string]string
}

func (r *recordMonitor) CaptureException(err error, tags map[string]string) {
	r.err = err
	r.tags = tags
}
func (r *recordMonitor) RecoverPanic(any)    {}
func (r *recordMonitor) Flush(time.Duration) {}

func newTestPublisher(t *testing.T, mc *mockClient, cfg Config) *EventPublisher {
	t.Helper()
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() { newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) } })
	if cfg.Broker == "" {
		cfg.Broker = "tcp://localhost:1883"
	}
	pub, err := NewEventPublisher(cfg, "run-1")
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	pub.now = func() time.Time { return time.Unix(1700000000, 0) }
	return pub
}

func TestPublishAssignment(t *testing.T) {
	mc := &mockClient{}
	pub := newTestPublisher(t, mc, Config{TopicPrefix: "sim", QoS: 1})
	ev := events.OrderAssigned{
		Date:            "01/02/2024",
		Order:           model.Order{Time: model.Clock(12, 0), Distance: 10, Class: model.OrderStandard},
		CourierName:     "Anne",
		Vehicle:         model.VehicleMoped,
		Cost:            2,
		DurationMinutes: 40,
		ReturnAt:        model.Clock(12, 40),
	}
	if err := pub.RecordAssignment(ev); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(mc.published) != 1 {
		t.Fatalf("expected 1 publish, got %d", len(mc.published))
	}
	msg := mc.published[0]
	if msg.topic != "sim/order_assigned/01022024" || msg.qos != 1 || msg.retained {
		t.Fatalf("unexpected publish %+v", msg)
	}
	var env struct {
		coremqtt.Envelope
		Data assignedPayload `json:"data"`
	}
	if err := json.Unmarshal(msg.payload, &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Kind != coremqtt.KindAssigned || env.RunID != "run-1" || env.ID == "" {
		t.Fatalf("bad envelope %+v", env.Envelope)
	}
	if env.Data.Courier != "Anne" || env.Data.ReturnAt != "12.40" || env.Data.Duration != 40 {
		t.Fatalf("bad payload %+v", env.Data)
	}
}

func TestPublishSummaryRetained(t *testing.T) {
	mc := &mockClient{}
	pub := newTestPublisher(t, mc, Config{RetainSummaries: true})
	if err := pub.RecordMiss(events.OrderMissed{Date: "01/02/2024"}); err != nil {
		t.Fatalf("miss: %v", err)
	}
	if err := pub.RecordDaySummary(model.DaySummary{Date: "01/02/2024"}); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(mc.published) != 2 {
		t.Fatalf("expected 2 publishes, got %d", len(mc.published))
	}
	if mc.published[0].retained {
		t.Fatalf("miss must not be retained")
	}
	if !mc.published[1].retained || mc.published[1].topic != "couriersim/day_summary/01022024" {
		t.Fatalf("unexpected summary publish %+v", mc.published[1])
	}
}

func TestRetryLogic(t *testing.T) {
	mc := &mockClient{publishErrs: []error{fmt.Errorf("net fail"), nil}}
	pub := newTestPublisher(t, mc, Config{MaxRetries: 1, BackoffMS: 1})
	if err := pub.RecordMiss(events.OrderMissed{Date: "d/1"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(mc.published) != 2 {
		t.Fatalf("expected retries")
	}
}

func TestPublishErrorCaptured(t *testing.T) {
	mc := &mockClient{publishErrs: []error{fmt.Errorf("net fail"), fmt.Errorf("net fail")}}
	pub := newTestPublisher(t, mc, Config{MaxRetries: 1, BackoffMS: 1})
	mon := &recordMonitor{}
	coremon.Init(mon)
	defer coremon.Init(coremon.NopMonitor{})

	err := pub.RecordMiss(events.OrderMissed{Date: "01/02/2024"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if mon.err == nil {
		t.Fatalf("error not captured")
	}
	if mon.tags["module"] != "mqtt" || mon.tags["topic"] != "couriersim/order_missed/01022024" {
		t.Fatalf("tags not set: %v", mon.tags)
	}
}

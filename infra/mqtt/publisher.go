package mqtt

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/couriersim/core/events"
	coremetrics "github.com/kilianp07/couriersim/core/metrics"
	"github.com/kilianp07/couriersim/core/model"
	coremon "github.com/kilianp07/couriersim/core/monitoring"
	coremqtt "github.com/kilianp07/couriersim/core/mqtt"
	"github.com/kilianp07/couriersim/infra/logger"
)

// Publisher receives dispatch events and forwards them to a broker.
type Publisher interface {
	coremetrics.MetricsSink
	Close() error
}

// EventPublisher publishes dispatch events as JSON envelopes. It satisfies
// metrics.MetricsSink so it can be fed by the event collector.
type EventPublisher struct {
	cli    pahoClient
	prefix string
	qos    byte
	retain bool
	runID  string

	mu         sync.Mutex
	logger     logger.Logger
	maxRetries int
	backoff    time.Duration
	now        func() time.Time
}

// NewEventPublisher connects to the broker. runID is stamped on every envelope.
func NewEventPublisher(cfg Config, runID string) (*EventPublisher, error) {
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	p := &EventPublisher{
		cli:        c,
		prefix:     cfg.TopicPrefix,
		qos:        cfg.QoS,
		retain:     cfg.RetainSummaries,
		runID:      runID,
		logger:     log,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		now:        time.Now,
	}
	if p.prefix == "" {
		p.prefix = "couriersim"
	}
	if p.backoff <= 0 {
		p.backoff = 100 * time.Millisecond
	}
	return p, nil
}

type assignedPayload struct {
	Time     string  `json:"time"`
	Distance float64 `json:"distance"`
	Class    string  `json:"class"`
	Courier  string  `json:"courier"`
	Vehicle  string  `json:"vehicle"`
	Cost     float64 `json:"cost"`
	Duration int     `json:"duration_min"`
	ReturnAt string  `json:"return_at"`
}

type missedPayload struct {
	Time     string  `json:"time"`
	Distance float64 `json:"distance"`
	Class    string  `json:"class"`
	Idle     int     `json:"idle"`
	InFlight int     `json:"in_flight"`
}

// RecordAssignment publishes an order_assigned envelope.
func (p *EventPublisher) RecordAssignment(ev events.OrderAssigned) error {
	return p.publish(coremqtt.KindAssigned, ev.Date, false, assignedPayload{
		Time:     ev.Order.Time.String(),
		Distance: ev.Order.Distance,
		Class:    ev.Order.Class.String(),
		Courier:  ev.CourierName,
		Vehicle:  ev.Vehicle.String(),
		Cost:     ev.Cost,
		Duration: ev.DurationMinutes,
		ReturnAt: ev.ReturnAt.String(),
	})
}

// RecordMiss publishes an order_missed envelope.
func (p *EventPublisher) RecordMiss(ev events.OrderMissed) error {
	return p.publish(coremqtt.KindMissed, ev.Date, false, missedPayload{
		Time:     ev.Order.Time.String(),
		Distance: ev.Order.Distance,
		Class:    ev.Order.Class.String(),
		Idle:     ev.Idle,
		InFlight: ev.InFlight,
	})
}

// RecordDaySummary publishes the closed day, retained when configured.
func (p *EventPublisher) RecordDaySummary(s model.DaySummary) error {
	return p.publish(coremqtt.KindDay, s.Date, p.retain, s)
}

func (p *EventPublisher) publish(kind, date string, retained bool, data any) error {
	env := coremqtt.Envelope{
		ID:     uuid.NewString(),
		RunID:  p.runID,
		Kind:   kind,
		Date:   date,
		SentAt: p.now().UTC(),
		Data:   data,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	topic := coremqtt.Topic(p.prefix, kind, date)

	p.mu.Lock()
	defer p.mu.Unlock()
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qos, retained, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Debugf("published %s to %s", env.ID, topic)
			return nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	err = fmt.Errorf("%w: %s: %v", coremqtt.ErrPublishFailed, topic, publishErr)
	coremon.CaptureException(err, map[string]string{"module": "mqtt", "topic": topic})
	return err
}

// Close disconnects from the broker.
func (p *EventPublisher) Close() error {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
	return nil
}

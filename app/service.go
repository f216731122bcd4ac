package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/couriersim/config"
	"github.com/kilianp07/couriersim/core/dispatch"
	"github.com/kilianp07/couriersim/core/events"
	coremetrics "github.com/kilianp07/couriersim/core/metrics"
	"github.com/kilianp07/couriersim/core/model"
	"github.com/kilianp07/couriersim/core/summary"
	"github.com/kilianp07/couriersim/infra/logger"
	"github.com/kilianp07/couriersim/infra/metrics"
	"github.com/kilianp07/couriersim/infra/mqtt"
	"github.com/kilianp07/couriersim/internal/eventbus"
	"github.com/kilianp07/couriersim/internal/feed"
	"github.com/kilianp07/couriersim/pkg/export"
)

// Export file names written into the output directory at the end of a run.
const (
	CSVFile   = "summaries.csv"
	JSONFile  = "summaries.json"
	ChartFile = "summaries.html"
)

// eventBuffer bounds how far the MQTT collector may lag behind the engine
// before events are dropped.
const eventBuffer = 1024

// Result describes a completed run.
type Result struct {
	RunID string
	Days  []model.DaySummary
	// Dropped counts malformed order lines over the whole feed.
	Dropped int
	// Files lists every file written by the run.
	Files []string
}

// Service wires the dispatch engine to its feed, stores, sinks and exports.
type Service struct {
	cfg    *config.Config
	engine *dispatch.Engine
	store  summary.Store
	sink   coremetrics.MetricsSink
	bus    *eventbus.Bus[events.Event]
	runID  string
	log    logger.Logger
	now    func() time.Time

	publisher     mqtt.Publisher
	collectorStop context.CancelFunc
	collectorDone <-chan struct{}
}

// Option customises a Service.
type Option func(*Service)

// WithStore replaces the summary store built from configuration.
func WithStore(s summary.Store) Option { return func(svc *Service) { svc.store = s } }

// WithSink replaces the metrics sink built from configuration.
func WithSink(s coremetrics.MetricsSink) Option { return func(svc *Service) { svc.sink = s } }

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id string) Option { return func(svc *Service) { svc.runID = id } }

// WithClock sets the time source used to stamp stored records.
func WithClock(now func() time.Time) Option { return func(svc *Service) { svc.now = now } }

// WithPublisher sets the event publisher fed from the event bus. It overrides
// the MQTT publisher that mqtt.enabled would create.
func WithPublisher(p mqtt.Publisher) Option { return func(svc *Service) { svc.publisher = p } }

// New creates a Service from the configuration.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	svc := &Service{cfg: cfg, log: logger.New("service"), now: time.Now}
	for _, o := range opts {
		o(svc)
	}
	if svc.runID == "" {
		svc.runID = uuid.NewString()
	}

	pool, err := cfg.Fleet.Build()
	if err != nil {
		return nil, fmt.Errorf("fleet: %w", err)
	}
	if svc.sink == nil {
		sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
		if err != nil {
			return nil, fmt.Errorf("metrics sink: %w", err)
		}
		svc.sink = sink
	}
	if svc.store == nil {
		store, err := summary.Open(ctx, cfg.Summary)
		if err != nil {
			return nil, fmt.Errorf("summary store: %w", err)
		}
		svc.store = store
	}

	svc.bus = eventbus.New[events.Event](eventBuffer)
	if svc.publisher == nil && cfg.MQTT.Enabled {
		pub, err := mqtt.NewEventPublisher(cfg.MQTT, svc.runID)
		if err != nil {
			_ = svc.closeResources()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.publisher = pub
	}
	if svc.publisher != nil {
		cctx, cancel := context.WithCancel(context.Background())
		svc.collectorStop = cancel
		svc.collectorDone = metrics.StartEventCollector(cctx, svc.bus, svc.publisher, logger.New("event_collector"))
	}

	engine, err := dispatch.NewEngine(pool,
		dispatch.WithPricing(cfg.Dispatch.Pricing),
		dispatch.WithLogger(logger.New("dispatch")),
		dispatch.WithMetrics(svc.sink),
		dispatch.WithEventBus(svc.bus),
	)
	if err != nil {
		_ = svc.closeResources()
		return nil, err
	}
	svc.engine = engine
	return svc, nil
}

// RunID returns the identifier stamped on stored records and MQTT envelopes.
func (s *Service) RunID() string { return s.runID }

// Engine exposes the underlying dispatch engine.
func (s *Service) Engine() *dispatch.Engine { return s.engine }

// Store exposes the summary store.
func (s *Service) Store() summary.Store { return s.store }

// Run simulates every day of the feed read from r. Each closed day is written
// to its .dat file and appended to the summary store; the run exports are
// written once the feed is exhausted.
func (s *Service) Run(ctx context.Context, r io.Reader) (Result, error) {
	res := Result{RunID: s.runID}
	if !s.cfg.Output.DisableDAT || s.exportsEnabled() {
		if err := os.MkdirAll(s.cfg.Output.Dir, 0o755); err != nil {
			return res, fmt.Errorf("output dir: %w", err)
		}
	}
	rd := feed.NewReader(r, logger.New("feed"))
	droppedAtOpen := 0
	closeDay := func(sum model.DaySummary) error {
		dropped := rd.Dropped() - droppedAtOpen
		droppedAtOpen = rd.Dropped()
		res.Days = append(res.Days, sum)
		return s.persistDay(ctx, sum, dropped, &res)
	}

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		rec, err := rd.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, err
		}
		switch rec.Kind {
		case feed.KindDay:
			prev, ok := s.engine.BeginDay(rec.Date)
			if ok {
				if err := closeDay(prev); err != nil {
					return res, err
				}
			} else {
				// Lines dropped before the first marker belong to no day.
				droppedAtOpen = rd.Dropped()
			}
		case feed.KindOrder:
			s.engine.ProcessOrder(rec.Order)
		}
	}
	if sum, ok := s.engine.EndDay(); ok {
		if err := closeDay(sum); err != nil {
			return res, err
		}
	}
	res.Dropped = rd.Dropped()

	files, err := s.writeExports(res.Days)
	res.Files = append(res.Files, files...)
	if err != nil {
		return res, err
	}
	s.log.Infow("run complete", map[string]any{
		"run_id":  s.runID,
		"days":    len(res.Days),
		"dropped": res.Dropped,
	})
	return res, nil
}

func (s *Service) persistDay(ctx context.Context, sum model.DaySummary, dropped int, res *Result) error {
	if !s.cfg.Output.DisableDAT {
		path, err := export.WriteDATFile(s.cfg.Output.Dir, sum.Date, sum.Stats)
		if err != nil {
			return fmt.Errorf("day %s: %w", sum.Date, err)
		}
		res.Files = append(res.Files, path)
	}
	rec := summary.NewRecord(s.runID, sum, dropped, s.now())
	if err := s.store.Append(ctx, rec); err != nil {
		return fmt.Errorf("day %s: store: %w", sum.Date, err)
	}
	if dropped > 0 {
		s.log.Warnf("day %s: %d malformed lines dropped", sum.Date, dropped)
	}
	return nil
}

func (s *Service) exportsEnabled() bool {
	o := s.cfg.Output
	return o.CSV || o.JSON || o.Chart
}

func (s *Service) writeExports(days []model.DaySummary) ([]string, error) {
	o := s.cfg.Output
	var files []string
	writers := []struct {
		enabled bool
		name    string
		fn      func(io.Writer, []model.DaySummary) error
	}{
		{o.CSV, CSVFile, export.WriteCSV},
		{o.JSON, JSONFile, export.WriteJSON},
		{o.Chart, ChartFile, export.WriteChartHTML},
	}
	for _, w := range writers {
		if !w.enabled {
			continue
		}
		path := filepath.Join(o.Dir, w.name)
		if err := writeFile(path, days, w.fn); err != nil {
			return files, fmt.Errorf("export %s: %w", w.name, err)
		}
		files = append(files, path)
	}
	return files, nil
}

func writeFile(path string, days []model.DaySummary, fn func(io.Writer, []model.DaySummary) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(f, days)
}

// Close drains the event bus and releases every resource held by the service.
func (s *Service) Close() error {
	err := s.closeResources()
	if s.bus != nil {
		if n := s.bus.Dropped(); n > 0 {
			s.log.Warnf("event bus dropped %d events", n)
		}
	}
	return err
}

func (s *Service) closeResources() error {
	var errs []error
	if s.bus != nil {
		s.bus.Close()
	}
	if s.collectorDone != nil {
		<-s.collectorDone
		s.collectorStop()
		s.collectorDone = nil
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
		s.publisher = nil
	}
	if s.sink != nil {
		if err := coremetrics.Close(s.sink); err != nil {
			errs = append(errs, fmt.Errorf("metrics sink: %w", err))
		}
		s.sink = nil
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("summary store: %w", err))
		}
		s.store = nil
	}
	return errors.Join(errs...)
}

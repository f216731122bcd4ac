package monitoring

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/kilianp07/couriersim/config"
	coremon "github.com/kilianp07/couriersim/core/monitoring"
)

// NewSentryMonitor initializes Sentry using the provided configuration and
// returns a Monitor implementation.
func NewSentryMonitor(cfg config.SentryConfig) (coremon.Monitor, error) {
	if cfg.DSN == "" {
		return coremon.NopMonitor{}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		TracesSampleRate: cfg.TracesSampleRate,
		Release:          cfg.Release,
	})
	if err != nil {
		return nil, err
	}
	return &sentryMonitor{}, nil
}

const panicFlushTimeout = 2 * time.Second

type sentryMonitor struct{}

func (s *sentryMonitor) CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	if len(tags) == 0 {
		sentry.CaptureException(err)
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}

// RecoverPanic sends the recovered value and flushes, since the process is
// usually about to die.
func (s *sentryMonitor) RecoverPanic(v any) {
	if v == nil {
		return
	}
	sentry.CurrentHub().Recover(v)
	sentry.Flush(panicFlushTimeout)
}

func (s *sentryMonitor) Flush(timeout time.Duration) { sentry.Flush(timeout) }

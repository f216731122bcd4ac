// Package monitoring routes errors and panics to the configured reporter.
package monitoring

import "time"

// Monitor reports errors and recovered panics.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	// RecoverPanic reports a value returned by recover.
	RecoverPanic(v any)
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) RecoverPanic(any)                          {}
func (NopMonitor) Flush(time.Duration)                       {}

var current Monitor = NopMonitor{}

// Init sets the global monitor. A nil monitor keeps the current one.
func Init(m Monitor) {
	if m != nil {
		current = m
	}
}

// CaptureException records the error with optional tags.
func CaptureException(err error, tags map[string]string) {
	current.CaptureException(err, tags)
}

// Recover reports an in-flight panic and re-panics with the same value. It
// only works when deferred directly: defer monitoring.Recover().
func Recover() {
	if r := recover(); r != nil {
		current.RecoverPanic(r)
		panic(r)
	}
}

// RecoverValue reports a value the caller already obtained from recover.
func RecoverValue(v any) {
	if v != nil {
		current.RecoverPanic(v)
	}
}

// Flush waits up to d for buffered reports to be sent.
func Flush(d time.Duration) { current.Flush(d) }

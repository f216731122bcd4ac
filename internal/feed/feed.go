// Package feed reads the line-oriented order stream. A line containing '/' is
// a day marker holding an opaque date token; any other non-blank line is an
// order "HH.MM:distance:Class". Malformed orders are dropped and counted.
package feed

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/kilianp07/couriersim/core/logger"
	"github.com/kilianp07/couriersim/core/model"
)

// ErrMalformed marks an order line that cannot be parsed.
var ErrMalformed = errors.New("malformed order")

// Kind distinguishes feed records.
type Kind int

const (
	KindDay Kind = iota
	KindOrder
)

// Record is one meaningful line of the feed.
type Record struct {
	Kind  Kind
	Line  int
	Date  string
	Order model.Order
}

// Reader yields day markers and well-formed orders from a stream. Lines have
// no length limit.
type Reader struct {
	br      *bufio.Reader
	eof     bool
	line    int
	dropped int
	log     logger.Logger
}

// NewReader wraps r. log may be nil.
func NewReader(r io.Reader, log logger.Logger) *Reader {
	return &Reader{br: bufio.NewReader(r), log: log}
}

func (r *Reader) readLine() (string, error) {
	if r.eof {
		return "", io.EOF
	}
	line, err := r.br.ReadString('\n')
	if errors.Is(err, io.EOF) {
		r.eof = true
		if line == "" {
			return "", io.EOF
		}
		err = nil
	}
	if err != nil {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

// Next returns the next record, skipping blank and malformed lines. It returns
// io.EOF once the stream is exhausted.
func (r *Reader) Next() (Record, error) {
	for {
		text, err := r.readLine()
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		if err != nil {
			return Record{}, fmt.Errorf("feed: line %d: %w", r.line+1, err)
		}
		r.line++
		if strings.TrimSpace(text) == "" {
			continue
		}
		if IsDayMarker(text) {
			return Record{Kind: KindDay, Line: r.line, Date: text}, nil
		}
		o, err := ParseOrder(text)
		if err != nil {
			r.dropped++
			if r.log != nil {
				r.log.Debugf("line %d dropped: %v", r.line, err)
			}
			continue
		}
		return Record{Kind: KindOrder, Line: r.line, Order: o}, nil
	}
}

// Dropped returns the number of malformed order lines skipped so far.
func (r *Reader) Dropped() int { return r.dropped }

// IsDayMarker reports whether the line starts a new day.
func IsDayMarker(line string) bool { return strings.Contains(line, "/") }

// ParseOrder parses "HH.MM:distance:Class". The class must be present; only the
// exact class "Priority" marks a priority order.
func ParseOrder(line string) (model.Order, error) {
	parts := strings.Split(line, ":")
	if len(parts) != 3 {
		return model.Order{}, fmt.Errorf("%w: want 3 fields, got %d", ErrMalformed, len(parts))
	}
	if parts[2] == "" {
		return model.Order{}, fmt.Errorf("%w: empty class", ErrMalformed)
	}
	t, err := ParseClock(parts[0])
	if err != nil {
		return model.Order{}, err
	}
	dist, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || math.IsNaN(dist) || math.IsInf(dist, 0) {
		return model.Order{}, fmt.Errorf("%w: distance %q", ErrMalformed, parts[1])
	}
	if dist < 0 {
		return model.Order{}, fmt.Errorf("%w: negative distance %g", ErrMalformed, dist)
	}
	return model.Order{Time: t, Distance: dist, Class: model.ParseOrderClass(parts[2])}, nil
}

// ParseClock converts "HH.MM" into minutes from midnight.
func ParseClock(s string) (model.Minute, error) {
	hs, ms, ok := strings.Cut(strings.TrimSpace(s), ".")
	if !ok {
		return 0, fmt.Errorf("%w: time %q", ErrMalformed, s)
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h < 0 || h > (math.MaxInt-59)/60 {
		return 0, fmt.Errorf("%w: hours %q", ErrMalformed, hs)
	}
	m, err := strconv.Atoi(ms)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: minutes %q", ErrMalformed, ms)
	}
	return model.Clock(h, m), nil
}

package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	settingsMu sync.RWMutex
	level      = zerolog.InfoLevel
	output     io.Writer
	console    bool
)

// Configure sets the minimum level and output used by loggers created
// afterwards. An empty level keeps the current one. A nil writer means stdout.
// Console formatting is enabled when format is "console" or APP_ENV is "dev".
func Configure(lvl, format string, w io.Writer) error {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	if lvl != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(lvl))
		if err != nil {
			return fmt.Errorf("log level %q: %w", lvl, err)
		}
		level = parsed
	}
	output = w
	console = strings.EqualFold(format, "console")
	return nil
}

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger creates a ZerologLogger tagged with the provided component.
func NewZerologLogger(component string) Logger {
	settingsMu.RLock()
	w, lvl, pretty := output, level, console
	settingsMu.RUnlock()
	if w == nil {
		w = os.Stdout
	}
	if pretty || strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	z := zerolog.New(w).Level(lvl).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	l.log.Debug().Fields(fields).Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Infow(msg string, fields map[string]any) {
	l.log.Info().Fields(fields).Msg(msg)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}

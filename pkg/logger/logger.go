// Package logger holds the process-wide zerolog logger.
//
// main calls Init once with the Log section of the service config; packages
// that are not handed a logger explicitly use Get. Levels, lowest first:
//
//	trace → debug → info → warn → error
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/medlab/diagnostic-booking/internal/infrastructure/config"
)

var (
	mu    sync.Mutex
	root  zerolog.Logger
	ready bool
)

// Init builds the root logger from cfg and writes to out (stdout when nil).
// Only the first call takes effect; later calls return the existing logger.
func Init(cfg config.LogConfig, out io.Writer) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if ready {
		return root
	}

	if out == nil {
		out = os.Stdout
	}
	if cfg.Pretty() {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	lvl := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(lvl)

	zctx := zerolog.New(out).Level(lvl).With().Timestamp().Caller()
	if cfg.Service != "" {
		zctx = zctx.Str("service", cfg.Service)
	}
	root = zctx.Logger()
	ready = true
	return root
}

// Get returns the root logger and panics when Init has not run.
func Get() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if !ready {
		panic("logger: Get() called before Init()")
	}
	return root
}

// Component derives a child logger tagged with the owning component, e.g.
// "bookings" or "payments".
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// Reset drops the root logger so tests can call Init again.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	root = zerolog.Logger{}
	ready = false
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

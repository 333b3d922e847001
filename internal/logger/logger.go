// Public domain.

// Package logger holds the process-wide zerolog root logger.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the root logger.
type Options struct {
	Level  string // trace, debug, info, warn, error; default info
	Format string // console or json; default console
	Writer io.Writer
	RunID  string // added to every line when set
}

var (
	once sync.Once
	root atomic.Pointer[zerolog.Logger]
)

// Init builds the root logger.  Only the first call has any effect.
// Diagnostics go to stderr unless opt.Writer is set, leaving stdout for
// command output.
func Init(opt Options) {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		var w io.Writer = os.Stderr
		if opt.Writer != nil {
			w = opt.Writer
		}
		if opt.Format != "json" {
			w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
		}
		ctx := zerolog.New(w).Level(ParseLevel(opt.Level)).With().Timestamp()
		if opt.RunID != "" {
			ctx = ctx.Str("run", opt.RunID)
		}
		l := ctx.Logger()
		root.Store(&l)
	})
}

// Get returns the root logger, initializing it with defaults if needed.
func Get() *zerolog.Logger {
	if l := root.Load(); l != nil {
		return l
	}
	Init(Options{})
	return root.Load()
}

// Named returns a child of the root logger with a component field.
func Named(component string) *zerolog.Logger {
	if component == "" {
		return Get()
	}
	l := Get().With().Str("component", component).Logger()
	return &l
}

// ParseLevel maps a level name to a zerolog level; unknown names give info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	}
	return zerolog.InfoLevel
}

// ValidLevel reports whether s names a level ParseLevel knows.
func ValidLevel(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "trace", "debug", "info", "warn", "warning", "error", "disabled", "off":
		return true
	}
	return false
}

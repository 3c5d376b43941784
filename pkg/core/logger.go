package core

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that discards every record. Enabled returns
// false so callers skip formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// NopLogger returns a logger that discards all output
func NopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(NopLogger())
}

// SetLogger installs the logger shared by all raytracer packages.
// By default nothing is logged. Passing nil restores the silent default.
// Safe for concurrent use.
//
// Levels used:
//   - [slog.LevelDebug]: per-tile and per-scene details
//   - [slog.LevelInfo]: render start and completion
//   - [slog.LevelWarn]: recoverable problems such as clamped parameters
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = NopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current shared logger
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

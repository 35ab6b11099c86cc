package framepace

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/framepace/frameinfo"
	"github.com/gogpu/framepace/resource"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for framepace, the frame time estimator
// and the texture cache. By default nothing is logged.
//
// Pass nil to disable logging. SetLogger is safe for concurrent use.
//
// Log levels used:
//   - [slog.LevelDebug]: per-frame diagnostics (controller state, texture reuse and release)
//   - [slog.LevelInfo]: lifecycle events (pacer created and closed)
//   - [slog.LevelWarn]: frames left unmeasured, driver release problems
//
// Example:
//
//	framepace.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
//
// The hal driver has its own logger, see haldriver.SetLogger.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	frameinfo.SetLogger(l)
	resource.SetLogger(l)
}

// Logger returns the current logger used by framepace.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

package log

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
)

// CountingHandler wraps an slog.Handler and counts the records passing
// through it, per level.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Derived loggers (WithAttrs, WithGroup) keep feeding the same counters
type CountingHandler struct {
	// handler is the underlying slog handler that receives the records.
	handler slog.Handler

	// warns and errors are shared by all handlers derived from this one.
	warns  *atomic.Int64
	errors *atomic.Int64
}

// NewCountingHandler creates a CountingHandler wrapping the given handler.
// If handler is nil, the returned CountingHandler wraps slog.Default().Handler().
func NewCountingHandler(handler slog.Handler) *CountingHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &CountingHandler{
		handler: handler,
		warns:   &atomic.Int64{},
		errors:  &atomic.Int64{},
	}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *CountingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle counts the record and passes it to the underlying handler.
func (h *CountingHandler) Handle(ctx context.Context, r slog.Record) error {
	switch {
	case r.Level >= slog.LevelError:
		h.errors.Add(1)
	case r.Level >= slog.LevelWarn:
		h.warns.Add(1)
	}
	return h.handler.Handle(ctx, r)
}

// WithAttrs returns a new handler with the given attributes added.
// The derived handler shares this handler's counters.
func (h *CountingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CountingHandler{
		handler: h.handler.WithAttrs(attrs),
		warns:   h.warns,
		errors:  h.errors,
	}
}

// WithGroup returns a new handler with the given group name.
// The derived handler shares this handler's counters.
func (h *CountingHandler) WithGroup(name string) slog.Handler {
	return &CountingHandler{
		handler: h.handler.WithGroup(name),
		warns:   h.warns,
		errors:  h.errors,
	}
}

// WarnCount returns the number of warning records handled so far.
func (h *CountingHandler) WarnCount() int {
	return int(h.warns.Load())
}

// ErrorCount returns the number of error records handled so far.
func (h *CountingHandler) ErrorCount() int {
	return int(h.errors.Load())
}

// NewLogger creates a logger writing human-readable records to w, plus
// the CountingHandler observing it. Verbose mode lowers the level to
// debug; otherwise only warnings and errors are printed, keeping the
// terminal quiet during long polite crawls.
func NewLogger(w io.Writer, verbose bool) (*slog.Logger, *CountingHandler) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := NewCountingHandler(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	return slog.New(handler), handler
}

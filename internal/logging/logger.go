// Package logging defines the structured-logging interface used by the
// record store and the CLI, plus slog-backed implementations.
//
// Storage components never return read failures to their callers; they log
// them here instead, so the diagnostic log is the only trace of a corrupt or
// missing file that was replaced by a default.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Warn(ctx, "balance file unreadable", "path", path, "err", err)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Package logging defines the structured-logging interface used by the
// server, the CLI and the upload pipeline. The default implementation wraps
// log/slog.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "destination issued", "seller", sellerID, "key", key)
type Logger interface {
	// Debug logs verbose diagnostics, usually per file or per request.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for degraded but non-fatal outcomes,
	// e.g. an upload that fell back to a local preview.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

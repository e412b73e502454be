// Package logging defines the structured-logging interface used by every
// projecthub component, plus a log/slog backed implementation.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are key/value pairs:
//
//	log.Info(ctx, "user signed in", "email", email)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)

	// Warn is for unusual but non-fatal conditions, e.g. a stale id_token cookie.
	Warn(ctx context.Context, msg string, args ...any)

	// Error is for failures. Provider and database error detail goes here,
	// never into client responses.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key/value pairs.
	With(args ...any) Logger
}

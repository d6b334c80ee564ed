// Package logging defines the structured-logging interface shared by the
// tchat server and client components. The slog implementation below is the
// only one in the tree, but components depend on the interface so an
// alternative backend can be dropped in without touching them.
package logging

import "context"

// Logger is a context-aware, structured logger. The variadic args are
// key/value pairs:
//
//	log.Info(ctx, "listening", "addr", addr, "auth", requireAuth)
type Logger interface {
	// Debug logs fine-grained events useful only when tracing a problem.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key/value pairs.
	With(args ...any) Logger
}

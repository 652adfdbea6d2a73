package logger

import (
	"context"
	"log/slog"
)

// loggerContextKey is the private context key under which a request-scoped
// logger travels. Keeping the key unexported prevents collisions with other
// packages' context values.
type loggerContextKey struct{}

// WithLogger returns a new context carrying the given logger. Middleware
// uses this to attach a logger enriched with request attributes (trace ID)
// so downstream components log with correlation automatically.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, logger)
}

// FromContext retrieves the logger from the context, or slog.Default()
// if none was attached.
func FromContext(ctx context.Context) *slog.Logger {
	return FromContextOrDefault(ctx, nil)
}

// FromContextOrDefault retrieves the logger from the context, falling back
// to the provided default, and finally to slog.Default() when both are
// absent.
func FromContextOrDefault(ctx context.Context, def *slog.Logger) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerContextKey{}).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	if def != nil {
		return def
	}
	return slog.Default()
}

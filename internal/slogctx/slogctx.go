// Package slogctx carries a [slog.Logger] in a context.
package slogctx

import (
	"context"
	"log/slog"

	"libdb.so/ctxt"
)

// With returns a copy of ctx carrying logger.
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return ctxt.With(ctx, logger)
}

// From returns a slog.Logger from the context. If no logger is found, the
// default logger is returned.
func From(ctx context.Context) *slog.Logger {
	return FromOr(ctx, slog.Default())
}

// FromOr returns a slog.Logger from the context, or fallback if there is none.
func FromOr(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	logger, ok := ctxt.From[*slog.Logger](ctx)
	if ok {
		return logger
	}
	return fallback
}

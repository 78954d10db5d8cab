package logging

import (
	"context"
	"log/slog"
)

type ctxKey struct{ name string }

var (
	sessionKey = ctxKey{"session"}
	roundKey   = ctxKey{"round"}
)

// ContextWithSession tags ctx with the active session ID.
func ContextWithSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey, id)
}

// ContextWithRound tags ctx with the current tournament round.
func ContextWithRound(ctx context.Context, round int) context.Context {
	return context.WithValue(ctx, roundKey, round)
}

func contextAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var attrs []slog.Attr
	if id, _ := ctx.Value(sessionKey).(string); id != "" {
		attrs = append(attrs, slog.String(FieldSessionID, id))
	}
	if round, ok := ctx.Value(roundKey).(int); ok {
		attrs = append(attrs, slog.Int(FieldRound, round))
	}
	return attrs
}

// WithContext returns logger carrying the session and round stored in ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	attrs := contextAttrs(ctx)
	if len(attrs) == 0 {
		return logger
	}
	return slog.New(logger.Handler().WithAttrs(attrs))
}

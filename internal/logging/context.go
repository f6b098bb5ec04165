package logging

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type loggerCtxKey struct{}
type requestCtxKey struct{}

// NewRequestID returns a random request identifier
func NewRequestID() string {
	return uuid.NewString()
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestCtxKey{}, requestID)
}

// RequestIDFromContext extracts the request ID from context
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestCtxKey{}).(string); ok {
		return id
	}
	return ""
}

// WithLogger stores a logger in context
func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, l)
}

// FromContext returns the request logger, or fallback tagged with the
// request ID when the context carries no logger.
func FromContext(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*zap.Logger); ok {
		return l
	}
	if fallback == nil {
		fallback = zap.NewNop()
	}
	if id := RequestIDFromContext(ctx); id != "" {
		return fallback.With(zap.String("request_id", id))
	}
	return fallback
}

package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

type ctxKey string

const (
	requestIDKey      ctxKey = "requestID"
	userIDKey         ctxKey = "userID"
	idempotencyKeyKey ctxKey = "idempotencyKey"
)

// InitLogger installs the default slog logger writing to stdout.
func InitLogger(cfg Config) *slog.Logger {
	return InitLoggerWithWriter(cfg, os.Stdout)
}

// InitLoggerWithWriter installs the default slog logger writing to w.
func InitLoggerWithWriter(cfg Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     cfg.LogLevel(),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if cfg.IsJSON() {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	handler = handler.WithAttrs(cfg.BaseAttributes())

	l := slog.New(handler)
	slog.SetDefault(l)
	return l
}

// GenerateRequestID creates a new UUID for tracing requests.
func GenerateRequestID() string {
	return uuid.NewString()
}

// WithRequestID returns a new context containing the request ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithUserID returns a new context containing the acting user ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// WithOpening tags the context with the user and the client idempotency key of
// one opening. The key is logged apart from the HTTP request_id.
func WithOpening(ctx context.Context, userID, idempotencyKey string) context.Context {
	ctx = WithUserID(ctx, userID)
	return context.WithValue(ctx, idempotencyKeyKey, idempotencyKey)
}

// RequestIDFromContext extracts the request ID from the context, if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok
}

// GetRequestID returns the request ID or an empty string.
func GetRequestID(ctx context.Context) string {
	id, _ := RequestIDFromContext(ctx)
	return id
}

// FromContext returns the default logger with request_id, user_id and
// idempotency_key attached when the context carries them.
func FromContext(ctx context.Context) *slog.Logger {
	var args []any
	if id, ok := RequestIDFromContext(ctx); ok {
		args = append(args, AttrKeyRequestID, id)
	}
	if id, ok := ctx.Value(userIDKey).(string); ok {
		args = append(args, AttrKeyUserID, id)
	}
	if key, ok := ctx.Value(idempotencyKeyKey).(string); ok {
		args = append(args, AttrKeyIdempotencyKey, key)
	}
	if len(args) == 0 {
		return slog.Default()
	}
	return slog.Default().With(args...)
}

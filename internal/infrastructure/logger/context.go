package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey         contextKey = "logger"
	requestIDKey      contextKey = "request_id"
	registrationIDKey contextKey = "registration_id"
	reviewerKey       contextKey = "reviewer"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the request logger enriched with trace_id and span_id
// when a span is active. A no-op logger is returned when none is attached.
func FromContext(ctx context.Context) *zap.Logger {
	l, ok := ctx.Value(loggerKey).(*zap.Logger)
	if !ok {
		l = zap.NewNop()
	}
	return WithTraceContext(ctx, l)
}

// WithRequestID adds request ID to context and returns enriched logger
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	enriched := logger.With(zap.String("request_id", requestID))
	return WithContext(ctx, enriched), enriched
}

// WithRegistrationID tags the context logger with the registration being worked on
func WithRegistrationID(ctx context.Context, logger *zap.Logger, registrationID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, registrationIDKey, registrationID)
	enriched := logger.With(zap.String("registration_id", registrationID))
	return WithContext(ctx, enriched), enriched
}

// WithReviewer tags the context logger with the admin performing a review
func WithReviewer(ctx context.Context, logger *zap.Logger, reviewer string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, reviewerKey, reviewer)
	enriched := logger.With(zap.String("reviewer", reviewer))
	return WithContext(ctx, enriched), enriched
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// GetRegistrationID retrieves the registration ID from context
func GetRegistrationID(ctx context.Context) string {
	v, _ := ctx.Value(registrationIDKey).(string)
	return v
}

// GetReviewer retrieves the reviewer from context
func GetReviewer(ctx context.Context) string {
	v, _ := ctx.Value(reviewerKey).(string)
	return v
}

// GetTraceID extracts the trace ID from the context's span.
// Returns an empty string if no valid span exists.
func GetTraceID(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}

// WithTraceContext adds trace_id and span_id to the logger from the context's span.
// If no valid span exists, returns the original logger unchanged.
func WithTraceContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return logger
	}
	return logger.With(
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	)
}

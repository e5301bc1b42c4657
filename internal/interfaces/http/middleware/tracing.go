package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ippis/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ReviewerHeader names the admin performing a review action
const ReviewerHeader = "X-Reviewer"

// maxAttrLength caps header-derived span attributes
const maxAttrLength = 64

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// Tracing returns the otelgin server-span middleware, or a pass-through when disabled
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	return otelgin.Middleware(cfg.ServiceName)
}

// SpanEnricher annotates the active server span once the route is resolved.
// It must run after Tracing.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if id := GetRequestID(c); id != "" {
				span.SetAttributes(attribute.String("request_id", id))
			}
			if id := c.Param("id"); id != "" {
				span.SetAttributes(attribute.String(telemetry.SpanAttrRegistrationID, truncate(id)))
			}
			if reviewer := c.GetHeader(ReviewerHeader); reviewer != "" {
				span.SetAttributes(attribute.String(telemetry.SpanAttrReviewer, truncate(reviewer)))
			}
		}

		c.Next()

		if span.IsRecording() && c.Writer.Status() >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(c.Writer.Status()))
		}
	}
}

func truncate(s string) string {
	if len(s) > maxAttrLength {
		return s[:maxAttrLength]
	}
	return s
}

package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// useRecorder installs a recording tracer provider for the test
func useRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func attrMap(attrs []attribute.KeyValue) map[string]any {
	m := make(map[string]any, len(attrs))
	for _, a := range attrs {
		m[string(a.Key)] = a.Value.AsInterface()
	}
	return m
}

func TestStartServiceSpan(t *testing.T) {
	recorder := useRecorder(t)

	_, span := StartServiceSpan(context.Background(), "review", "approve",
		WithAttribute(SpanAttrRegistrationID, "IPPIS-123456-7890"))
	SetAttributes(span, SpanAttrReviewer, "admin", "attempts", 2, 42, "ignored")
	AddEvent(span, "employee_id_collision", "attempt", 1)
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	s := spans[0]
	assert.Equal(t, "review.approve", s.Name())
	assert.Equal(t, map[string]any{
		"registration_id": "IPPIS-123456-7890",
		"reviewer":        "admin",
		"attempts":        int64(2),
	}, attrMap(s.Attributes()))
	require.Len(t, s.Events(), 1)
	assert.Equal(t, "employee_id_collision", s.Events()[0].Name)
}

func TestRecordError(t *testing.T) {
	recorder := useRecorder(t)

	_, span := StartSpan(context.Background(), "registration.submit")
	RecordError(span, errors.New("boom"))
	RecordError(span, nil)
	span.End()

	s := recorder.Ended()[0]
	assert.Equal(t, codes.Error, s.Status().Code)
	assert.Equal(t, "boom", s.Status().Description)
}

func TestSetOK(t *testing.T) {
	recorder := useRecorder(t)

	_, span := StartSpan(context.Background(), "ok")
	SetOK(span)
	span.End()

	assert.Equal(t, codes.Ok, recorder.Ended()[0].Status().Code)
}

func TestStartSpan_Kind(t *testing.T) {
	recorder := useRecorder(t)

	_, span := StartSpan(context.Background(), "verification.VerifyNIN",
		WithSpanKind(trace.SpanKindClient), WithAttribute("document_id", uint64(7)))
	span.End()

	s := recorder.Ended()[0]
	assert.Equal(t, trace.SpanKindClient, s.SpanKind())
	assert.Equal(t, map[string]any{"document_id": int64(7)}, attrMap(s.Attributes()))
}

// Package metrics records registration workflow counters through OpenTelemetry.
package metrics

import (
	"context"
	"errors"

	regapp "github.com/ippis/backend/internal/application/registration"
	"github.com/ippis/backend/internal/domain/registration"
	"github.com/ippis/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = errors.New("NewWorkflowMetrics: meter cannot be nil")

// WorkflowMetrics counts registration lifecycle events
type WorkflowMetrics struct {
	created       *telemetry.Counter
	submitted     *telemetry.Counter
	decisions     *telemetry.Counter
	verifications *telemetry.Counter
}

// NewWorkflowMetrics registers the workflow counters on meter
func NewWorkflowMetrics(meter metric.Meter) (*WorkflowMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	wm := &WorkflowMetrics{}
	var err error

	if wm.created, err = telemetry.NewCounter(meter, "ippis.registrations.created",
		"Registrations created, by source", "{registrations}"); err != nil {
		return nil, err
	}
	if wm.submitted, err = telemetry.NewCounter(meter, "ippis.registrations.submitted",
		"Registrations submitted for approval", "{registrations}"); err != nil {
		return nil, err
	}
	if wm.decisions, err = telemetry.NewCounter(meter, "ippis.registrations.decisions",
		"Review decisions, by outcome", "{decisions}"); err != nil {
		return nil, err
	}
	if wm.verifications, err = telemetry.NewCounter(meter, "ippis.verifications",
		"NIN verification attempts, by result", "{verifications}"); err != nil {
		return nil, err
	}
	return wm, nil
}

// RecordCreated counts a new registration
func (wm *WorkflowMetrics) RecordCreated(ctx context.Context, source registration.Source) {
	wm.created.Inc(ctx, telemetry.AttrSource.String(string(source)))
}

// RecordSubmitted counts a submission
func (wm *WorkflowMetrics) RecordSubmitted(ctx context.Context) {
	wm.submitted.Inc(ctx)
}

// RecordDecision counts a review decision
func (wm *WorkflowMetrics) RecordDecision(ctx context.Context, outcome regapp.Outcome) {
	wm.decisions.Inc(ctx, telemetry.AttrOutcome.String(string(outcome)))
}

// RecordVerification counts a NIN lookup
func (wm *WorkflowMetrics) RecordVerification(ctx context.Context, result string) {
	wm.verifications.Inc(ctx, telemetry.AttrResult.String(result))
}

var _ regapp.MetricsRecorder = (*WorkflowMetrics)(nil)

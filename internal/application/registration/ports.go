package registration

import (
	"context"
	"io"

	"github.com/ippis/backend/internal/domain/employee"
	"github.com/ippis/backend/internal/domain/registration"
)

// TransactionScope provides transactional access to the registration and employee repositories.
// All repository operations inside fn commit or roll back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes repositories bound to one transaction
type TransactionalRepositories interface {
	// Registrations returns the registration repository scoped to the current transaction
	Registrations() registration.Repository
	// Employees returns the employee repository scoped to the current transaction
	Employees() employee.Repository
}

// Verifier looks up a national identity number with an external provider.
// Implementations return shared.ErrValidation for malformed input, shared.ErrProvider
// or shared.ErrProviderTimeout for provider failures, and a result with Verified=false
// for a well-formed "no match" answer.
type Verifier interface {
	VerifyNIN(ctx context.Context, nin string) (*registration.VerificationResult, error)
}

// DocumentStorage stores uploaded documents
type DocumentStorage interface {
	// Store writes the object and returns the URL recorded for it
	Store(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	// Delete removes a previously stored object
	Delete(ctx context.Context, key string) error
	// Open streams a stored object; a missing key is shared.ErrNotFound
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Outcome names the review result an applicant is notified about
type Outcome string

const (
	OutcomeApproved         Outcome = "approved"
	OutcomeRejected         Outcome = "rejected"
	OutcomeDocumentApproved Outcome = "document_approved"
	OutcomeDocumentRejected Outcome = "document_rejected"
	OutcomeDataIncomplete   Outcome = "data_incomplete"
)

// Notification is a message to an applicant about their registration
type Notification struct {
	To             string
	Name           string
	RegistrationID string
	EmployeeID     string
	Outcome        Outcome
	Comment        string
}

// Notifier delivers applicant notifications
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// MetricsRecorder receives workflow counters
type MetricsRecorder interface {
	RecordCreated(ctx context.Context, source registration.Source)
	RecordSubmitted(ctx context.Context)
	RecordDecision(ctx context.Context, outcome Outcome)
	RecordVerification(ctx context.Context, result string)
}

type noopMetrics struct{}

func (noopMetrics) RecordCreated(context.Context, registration.Source) {}
func (noopMetrics) RecordSubmitted(context.Context)                    {}
func (noopMetrics) RecordDecision(context.Context, Outcome)            {}
func (noopMetrics) RecordVerification(context.Context, string)         {}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, Notification) error { return nil }

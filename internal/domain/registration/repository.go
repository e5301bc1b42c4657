package registration

import (
	"context"

	"github.com/ippis/backend/internal/domain/shared"
)

// Aggregate is the full read model of a registration and its satellite records
type Aggregate struct {
	Registration   *Registration
	PersonalInfo   *PersonalInfo
	EmploymentInfo *EmploymentInfo
	Documents      *DocumentUploads
	Verification   *VerificationData
	History        []HistoryEntry
	Comments       []Comment
}

// PendingDocument is a document row awaiting review together with its applicant name
type PendingDocument struct {
	Documents     DocumentUploads
	ApplicantName string
	Email         string
}

// Repository defines the interface for registration persistence.
// Satellite writes are upserts keyed by registration id.
type Repository interface {
	// Create inserts a new registration; a duplicate id yields shared.ErrConflict
	Create(ctx context.Context, r *Registration) error

	// FindByID finds a registration by its registration id
	FindByID(ctx context.Context, id string) (*Registration, error)

	// FindLatestByEmail finds the newest registration whose personal info has the email
	FindLatestByEmail(ctx context.Context, email string) (*Registration, error)

	// Update persists step, sub-status and declaration changes
	Update(ctx context.Context, r *Registration) error

	// UpdateStatus persists a status transition only if the stored status still equals expected.
	// Returns shared.ErrInvalidState when another writer got there first.
	UpdateStatus(ctx context.Context, r *Registration, expected Status) error

	// List finds registrations with the given status (all when empty)
	List(ctx context.Context, status Status, filter shared.Filter) ([]Registration, int64, error)

	// CountByStatus counts registrations per status
	CountByStatus(ctx context.Context) (map[Status]int64, error)

	// SavePersonalInfo upserts personal info
	SavePersonalInfo(ctx context.Context, info *PersonalInfo) error

	// FindPersonalInfo returns personal info, or shared.ErrNotFound
	FindPersonalInfo(ctx context.Context, registrationID string) (*PersonalInfo, error)

	// EmailExists checks whether any personal info uses the email (case-insensitive)
	EmailExists(ctx context.Context, email string) (bool, error)

	// SaveEmploymentInfo upserts employment info
	SaveEmploymentInfo(ctx context.Context, info *EmploymentInfo) error

	// FindEmploymentInfo returns employment info, or shared.ErrNotFound
	FindEmploymentInfo(ctx context.Context, registrationID string) (*EmploymentInfo, error)

	// SaveDocuments upserts the document row
	SaveDocuments(ctx context.Context, docs *DocumentUploads) error

	// FindDocuments returns the document row of a registration, or shared.ErrNotFound
	FindDocuments(ctx context.Context, registrationID string) (*DocumentUploads, error)

	// FindDocumentsByID returns a document row by its own id, or shared.ErrNotFound
	FindDocumentsByID(ctx context.Context, id uint64) (*DocumentUploads, error)

	// ListPendingDocuments lists unreviewed document rows of registrations awaiting approval
	ListPendingDocuments(ctx context.Context, filter shared.Filter) ([]PendingDocument, int64, error)

	// CountDocumentsByStatus counts document rows per review status
	CountDocumentsByStatus(ctx context.Context) (map[DocumentStatus]int64, error)

	// SaveVerification upserts verification data
	SaveVerification(ctx context.Context, v *VerificationData) error

	// FindVerification returns verification data, or shared.ErrNotFound
	FindVerification(ctx context.Context, registrationID string) (*VerificationData, error)

	// AppendHistory inserts a history row
	AppendHistory(ctx context.Context, entry *HistoryEntry) error

	// ListHistory returns history rows oldest first
	ListHistory(ctx context.Context, registrationID string) ([]HistoryEntry, error)

	// AddComment inserts a reviewer comment
	AddComment(ctx context.Context, c *Comment) error

	// ListComments returns comments oldest first
	ListComments(ctx context.Context, registrationID string) ([]Comment, error)
}

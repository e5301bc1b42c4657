package registration

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/ippis/backend/internal/domain/shared"
)

// Status represents the top-level lifecycle status of a registration
type Status string

const (
	StatusDraft           Status = "draft"
	StatusPendingApproval Status = "pending_approval"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
)

// IsValid checks if the status is a known value
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPendingApproval, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Step represents the applicant's position in the registration form
type Step string

const (
	StepVerification   Step = "verification"
	StepPersonalInfo   Step = "personal_info"
	StepEmploymentInfo Step = "employment_info"
	StepDocuments      Step = "documents"
	StepReview         Step = "review"
	StepSubmitted      Step = "submitted"
)

var stepOrder = map[Step]int{
	StepVerification:   0,
	StepPersonalInfo:   1,
	StepEmploymentInfo: 2,
	StepDocuments:      3,
	StepReview:         4,
	StepSubmitted:      5,
}

// Before reports whether s comes earlier in the form than other
func (s Step) Before(other Step) bool {
	return stepOrder[s] < stepOrder[other]
}

// SubStatus marks a pending registration as blocked on more applicant input
type SubStatus string

const (
	SubStatusNone                 SubStatus = ""
	SubStatusDocumentVerification SubStatus = "document_verification"
	SubStatusDataIncomplete       SubStatus = "data_incomplete"
)

// Source records how a registration entered the system
type Source string

const (
	SourceForm   Source = "form"
	SourceImport Source = "import"
)

// Registration is the aggregate root for one applicant's enrollment attempt.
// Status, CurrentStep and SubStatus are only changed through its methods.
type Registration struct {
	RegistrationID string
	Status         Status
	SubStatus      SubStatus
	CurrentStep    Step
	Source         Source
	Declaration    bool
	Metadata       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	SubmittedAt    *time.Time
	ApprovedAt     *time.Time
	RejectedAt     *time.Time
}

// NewRegistration creates a draft registration waiting for identity verification
func NewRegistration(id string, source Source) (*Registration, error) {
	if id == "" {
		return nil, shared.NewValidationError(shared.FieldError{Field: "registration_id", Message: "Registration ID is required"})
	}
	if source == "" {
		source = SourceForm
	}
	now := time.Now()
	return &Registration{
		RegistrationID: id,
		Status:         StatusDraft,
		CurrentStep:    StepVerification,
		Source:         source,
		Metadata:       "{}",
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// NewImportedRegistration creates a registration from a bulk import.
// Imported rows skip the applicant form and wait directly for review.
func NewImportedRegistration(id, metadata string) (*Registration, error) {
	r, err := NewRegistration(id, SourceImport)
	if err != nil {
		return nil, err
	}
	if metadata != "" {
		r.Metadata = metadata
	}
	r.Status = StatusPendingApproval
	r.CurrentStep = StepSubmitted
	submitted := r.CreatedAt
	r.SubmittedAt = &submitted
	return r, nil
}

// GenerateRegistrationID returns an id of the form IPPIS-NNNNNN-NNNN
func GenerateRegistrationID() (string, error) {
	first, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate registration id: %w", err)
	}
	second, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", fmt.Errorf("generate registration id: %w", err)
	}
	return fmt.Sprintf("IPPIS-%06d-%04d", first.Int64()+100000, second.Int64()+1000), nil
}

// AdvanceTo moves the current step forward. It never moves backwards.
func (r *Registration) AdvanceTo(step Step) {
	if r.CurrentStep.Before(step) {
		r.CurrentStep = step
	}
	r.UpdatedAt = time.Now()
}

// EnsureDetailsEditable checks that personal and employment info may be written
func (r *Registration) EnsureDetailsEditable() error {
	return r.ensureEditable(SubStatusDataIncomplete)
}

// EnsureDocumentsEditable checks that document uploads may be written
func (r *Registration) EnsureDocumentsEditable() error {
	return r.ensureEditable(SubStatusDocumentVerification)
}

func (r *Registration) ensureEditable(reopenedBy SubStatus) error {
	if r.Status == StatusDraft {
		return nil
	}
	if r.Status == StatusPendingApproval && r.SubStatus == reopenedBy {
		return nil
	}
	return shared.ErrInvalidState.WithMessage(
		fmt.Sprintf("Registration %s can no longer be edited (status %s)", r.RegistrationID, r.Status))
}

// ResolveSubStatus clears the sub-status once the applicant has supplied what was requested
func (r *Registration) ResolveSubStatus(resolved SubStatus) {
	if r.SubStatus == resolved {
		r.SubStatus = SubStatusNone
		r.UpdatedAt = time.Now()
	}
}

// Submit moves a draft registration into the review queue
func (r *Registration) Submit(declaration bool) error {
	if !declaration {
		return shared.ErrDeclarationRequired
	}
	if r.Status != StatusDraft {
		return shared.ErrInvalidState.WithMessage(
			fmt.Sprintf("Registration %s has already been submitted", r.RegistrationID))
	}
	now := time.Now()
	r.Status = StatusPendingApproval
	r.CurrentStep = StepSubmitted
	r.Declaration = true
	r.SubmittedAt = &now
	r.UpdatedAt = now
	return nil
}

// Approve marks a pending registration as approved.
// A registration waiting on the applicant (any sub-status) cannot be approved until it is resolved.
func (r *Registration) Approve() error {
	if err := r.ensurePending(); err != nil {
		return err
	}
	if r.SubStatus != SubStatusNone {
		return shared.ErrInvalidState.WithMessage(
			fmt.Sprintf("Registration %s is awaiting applicant input (%s)", r.RegistrationID, r.SubStatus))
	}
	now := time.Now()
	r.Status = StatusApproved
	r.SubStatus = SubStatusNone
	r.ApprovedAt = &now
	r.UpdatedAt = now
	return nil
}

// Reject marks a pending registration as rejected
func (r *Registration) Reject() error {
	if err := r.ensurePending(); err != nil {
		return err
	}
	now := time.Now()
	r.Status = StatusRejected
	r.SubStatus = SubStatusNone
	r.RejectedAt = &now
	r.UpdatedAt = now
	return nil
}

// Flag blocks a pending registration until the applicant supplies more input
func (r *Registration) Flag(sub SubStatus) error {
	if err := r.ensurePending(); err != nil {
		return err
	}
	r.SubStatus = sub
	r.UpdatedAt = time.Now()
	return nil
}

func (r *Registration) ensurePending() error {
	if r.Status != StatusPendingApproval {
		return shared.ErrInvalidState.WithMessage(
			fmt.Sprintf("Registration %s is %s, expected %s", r.RegistrationID, r.Status, StatusPendingApproval))
	}
	return nil
}

package registration

import (
	"strings"
	"time"

	"github.com/ippis/backend/internal/domain/shared"
)

// Action tags a registration history row
type Action string

const (
	ActionCreated             Action = "created"
	ActionPersonalInfoSaved   Action = "personal_info_saved"
	ActionEmploymentInfoSaved Action = "employment_info_saved"
	ActionDocumentsUploaded   Action = "documents_uploaded"
	ActionSubmitted           Action = "submitted"
	ActionApproved            Action = "approved"
	ActionRejected            Action = "rejected"
	ActionDocumentApproved    Action = "document_approved"
	ActionDocumentRejected    Action = "document_rejected"
	ActionDataIncomplete      Action = "data_incomplete"
)

// Well-known performers
const (
	PerformerApplicant = "applicant"
	PerformerSystem    = "system"
	DefaultReviewer    = "admin"
)

// HistoryEntry is an append-only audit row for a registration transition
type HistoryEntry struct {
	ID             uint64
	RegistrationID string
	Action         Action
	Details        string
	PerformedBy    string
	PerformedAt    time.Time
}

// NewHistoryEntry creates a history row stamped with the current time
func NewHistoryEntry(registrationID string, action Action, details, performedBy string) *HistoryEntry {
	return &HistoryEntry{
		RegistrationID: registrationID,
		Action:         action,
		Details:        details,
		PerformedBy:    performedBy,
		PerformedAt:    time.Now(),
	}
}

// Comment is a reviewer note attached to a registration
type Comment struct {
	ID             uint64
	RegistrationID string
	Text           string
	Author         string
	CreatedAt      time.Time
}

// NewComment creates a comment, rejecting blank text
func NewComment(registrationID, text, author string) (*Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, shared.ErrCommentRequired
	}
	if author == "" {
		author = DefaultReviewer
	}
	return &Comment{
		RegistrationID: registrationID,
		Text:           text,
		Author:         author,
		CreatedAt:      time.Now(),
	}, nil
}

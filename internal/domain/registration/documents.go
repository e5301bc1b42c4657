package registration

import (
	"fmt"
	"strings"
	"time"

	"github.com/ippis/backend/internal/domain/shared"
)

// DocumentKind identifies one of the six document slots
type DocumentKind string

const (
	DocAppointmentLetter       DocumentKind = "appointment_letter"
	DocEducationalCertificates DocumentKind = "educational_certificates"
	DocPromotionLetter         DocumentKind = "promotion_letter"
	DocOtherDocuments          DocumentKind = "other_documents"
	DocProfileImage            DocumentKind = "profile_image"
	DocSignature               DocumentKind = "signature"
)

// AllDocumentKinds lists the slots in display order
var AllDocumentKinds = []DocumentKind{
	DocAppointmentLetter,
	DocEducationalCertificates,
	DocPromotionLetter,
	DocOtherDocuments,
	DocProfileImage,
	DocSignature,
}

// RequiredDocumentKinds must be present before a registration leaves the documents step
var RequiredDocumentKinds = []DocumentKind{DocAppointmentLetter, DocEducationalCertificates}

// IsValid checks if the kind is one of the known slots
func (k DocumentKind) IsValid() bool {
	for _, kind := range AllDocumentKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// DocumentStatus is the review outcome shared by all slots of a registration
type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusApproved DocumentStatus = "approved"
	DocumentStatusRejected DocumentStatus = "rejected"
)

// DocumentUploads is the single row of stored document URLs for a registration
type DocumentUploads struct {
	ID             uint64
	RegistrationID string
	Paths          map[DocumentKind]string
	Status         DocumentStatus
	UploadedAt     time.Time
	UpdatedAt      time.Time
}

// NewDocumentUploads creates an empty document row for a registration
func NewDocumentUploads(registrationID string) *DocumentUploads {
	now := time.Now()
	return &DocumentUploads{
		RegistrationID: registrationID,
		Paths:          make(map[DocumentKind]string),
		Status:         DocumentStatusPending,
		UploadedAt:     now,
		UpdatedAt:      now,
	}
}

// Path returns the stored URL of a slot, or "" when empty
func (d *DocumentUploads) Path(kind DocumentKind) string {
	if d == nil || d.Paths == nil {
		return ""
	}
	return d.Paths[kind]
}

// DocumentKey is the storage key of an uploaded file: registrations/{id}/{kind}/{object}
func DocumentKey(registrationID string, kind DocumentKind, object string) string {
	return fmt.Sprintf("registrations/%s/%s/%s", registrationID, kind, object)
}

// KeyFromURL recovers the storage key from a stored document URL.
// It fails for URLs that do not point into the registration's own key space.
func KeyFromURL(registrationID, url string) (string, bool) {
	prefix := "registrations/" + registrationID + "/"
	i := strings.Index(url, prefix)
	if registrationID == "" || i < 0 {
		return "", false
	}
	key := url[i:]
	if q := strings.IndexAny(key, "?#"); q >= 0 {
		key = key[:q]
	}
	if strings.Contains(key, "..") || len(key) == len(prefix) {
		return "", false
	}
	return key, true
}

// Set records the stored URL of a slot and resets the review status
func (d *DocumentUploads) Set(kind DocumentKind, url string) {
	if d.Paths == nil {
		d.Paths = make(map[DocumentKind]string)
	}
	d.Paths[kind] = url
	d.Status = DocumentStatusPending
	d.UpdatedAt = time.Now()
}

// CheckRequired fails with ErrMissingRequiredDocument unless every required slot is
// filled, either already or by one of the incoming kinds
func CheckRequired(existing *DocumentUploads, incoming map[DocumentKind]bool) error {
	for _, kind := range RequiredDocumentKinds {
		if existing.Path(kind) == "" && !incoming[kind] {
			return shared.ErrMissingRequiredDocument.WithMessage(
				fmt.Sprintf("Required document %s is missing", kind))
		}
	}
	return nil
}

// Review sets the document-level review outcome
func (d *DocumentUploads) Review(status DocumentStatus) error {
	if status != DocumentStatusApproved && status != DocumentStatusRejected {
		return shared.NewValidationError(shared.FieldError{
			Field:   "status",
			Message: "status must be one of: approved rejected",
		})
	}
	d.Status = status
	d.UpdatedAt = time.Now()
	return nil
}

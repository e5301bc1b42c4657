package registration

import (
	"io"
	"time"

	"github.com/ippis/backend/internal/domain/registration"
)

// VerificationRequest carries the identity tokens submitted at the verification step
type VerificationRequest struct {
	NIN string `json:"nin" binding:"required,nin"`
	BVN string `json:"bvn" binding:"omitempty,nin"`
}

// DocumentFile is one uploaded file destined for a document slot
type DocumentFile struct {
	Kind        registration.DocumentKind
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// DocumentContent is a stored document streamed back to a reviewer.
// The caller closes Body.
type DocumentContent struct {
	Filename    string
	ContentType string
	Body        io.ReadCloser
}

// DecisionRequest carries a reviewer's comment for approve/reject style operations
type DecisionRequest struct {
	Comment  string `json:"comment"`
	Reviewer string `json:"-"`
}

// VerifyDocumentRequest carries a document-level review outcome
type VerifyDocumentRequest struct {
	Status   string `json:"status"`
	Comment  string `json:"comment"`
	Reviewer string `json:"-"`
}

// RegistrationResponse is the summary view of a registration
type RegistrationResponse struct {
	RegistrationID string     `json:"registration_id"`
	Status         string     `json:"status"`
	SubStatus      string     `json:"sub_status,omitempty"`
	CurrentStep    string     `json:"current_step"`
	Source         string     `json:"source"`
	Declaration    bool       `json:"declaration"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	SubmittedAt    *time.Time `json:"submitted_at,omitempty"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty"`
	RejectedAt     *time.Time `json:"rejected_at,omitempty"`
}

// VerificationResponse is returned by the verification step
type VerificationResponse struct {
	Verified    bool           `json:"verified"`
	Message     string         `json:"message"`
	CurrentStep string         `json:"current_step"`
	Data        map[string]any `json:"data,omitempty"`
}

// DocumentsResponse is the view of a registration's document row
type DocumentsResponse struct {
	ID             uint64            `json:"id"`
	RegistrationID string            `json:"registration_id"`
	Files          map[string]string `json:"files"`
	Status         string            `json:"status"`
	UploadedAt     time.Time         `json:"uploaded_at"`
}

// VerificationDataResponse is the stored verification outcome
type VerificationDataResponse struct {
	NIN              string         `json:"nin"`
	NINVerified      bool           `json:"nin_verified"`
	BVN              string         `json:"bvn,omitempty"`
	BVNVerified      bool           `json:"bvn_verified"`
	Message          string         `json:"message"`
	Payload          map[string]any `json:"payload,omitempty"`
	VerificationDate time.Time      `json:"verification_date"`
}

// HistoryResponse is one history row
type HistoryResponse struct {
	Action      string    `json:"action"`
	Details     string    `json:"details"`
	PerformedBy string    `json:"performed_by"`
	PerformedAt time.Time `json:"performed_at"`
}

// CommentResponse is one reviewer comment
type CommentResponse struct {
	Text      string    `json:"comment"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

// StatusResponse is the full tracking view of a registration
type StatusResponse struct {
	Registration   RegistrationResponse         `json:"registration"`
	PersonalInfo   *registration.PersonalInfo   `json:"personal_info"`
	EmploymentInfo *registration.EmploymentInfo `json:"employment_info"`
	Documents      *DocumentsResponse           `json:"documents"`
	Verification   *VerificationDataResponse    `json:"verification"`
	History        []HistoryResponse            `json:"history"`
	Comments       []CommentResponse            `json:"comments"`
}

// DecisionResponse is returned by review operations
type DecisionResponse struct {
	RegistrationID string `json:"registration_id"`
	Status         string `json:"status"`
	SubStatus      string `json:"sub_status,omitempty"`
	DocumentStatus string `json:"document_status,omitempty"`
	EmployeeID     string `json:"employee_id,omitempty"`
}

// PendingDocumentResponse is a document row waiting for review
type PendingDocumentResponse struct {
	DocumentsResponse
	ApplicantName string `json:"applicant_name"`
	Email         string `json:"email"`
}

// ToRegistrationResponse converts the aggregate root to its summary view
func ToRegistrationResponse(r *registration.Registration) RegistrationResponse {
	return RegistrationResponse{
		RegistrationID: r.RegistrationID,
		Status:         string(r.Status),
		SubStatus:      string(r.SubStatus),
		CurrentStep:    string(r.CurrentStep),
		Source:         string(r.Source),
		Declaration:    r.Declaration,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		SubmittedAt:    r.SubmittedAt,
		ApprovedAt:     r.ApprovedAt,
		RejectedAt:     r.RejectedAt,
	}
}

// ToRegistrationResponses converts a slice of registrations
func ToRegistrationResponses(rs []registration.Registration) []RegistrationResponse {
	out := make([]RegistrationResponse, len(rs))
	for i := range rs {
		out[i] = ToRegistrationResponse(&rs[i])
	}
	return out
}

// ToDocumentsResponse converts a document row, or returns nil
func ToDocumentsResponse(d *registration.DocumentUploads) *DocumentsResponse {
	if d == nil {
		return nil
	}
	files := make(map[string]string, len(d.Paths))
	for kind, path := range d.Paths {
		if path != "" {
			files[string(kind)] = path
		}
	}
	return &DocumentsResponse{
		ID:             d.ID,
		RegistrationID: d.RegistrationID,
		Files:          files,
		Status:         string(d.Status),
		UploadedAt:     d.UploadedAt,
	}
}

// ToVerificationDataResponse converts stored verification data, or returns nil
func ToVerificationDataResponse(v *registration.VerificationData) *VerificationDataResponse {
	if v == nil {
		return nil
	}
	return &VerificationDataResponse{
		NIN:              v.NIN,
		NINVerified:      v.NINVerified,
		BVN:              v.BVN,
		BVNVerified:      v.BVNVerified,
		Message:          v.Message,
		Payload:          v.Payload,
		VerificationDate: v.VerificationDate,
	}
}

// ToStatusResponse converts the full aggregate
func ToStatusResponse(a *registration.Aggregate) *StatusResponse {
	resp := &StatusResponse{
		Registration:   ToRegistrationResponse(a.Registration),
		PersonalInfo:   a.PersonalInfo,
		EmploymentInfo: a.EmploymentInfo,
		Documents:      ToDocumentsResponse(a.Documents),
		Verification:   ToVerificationDataResponse(a.Verification),
		History:        make([]HistoryResponse, 0, len(a.History)),
		Comments:       make([]CommentResponse, 0, len(a.Comments)),
	}
	for _, h := range a.History {
		resp.History = append(resp.History, HistoryResponse{
			Action:      string(h.Action),
			Details:     h.Details,
			PerformedBy: h.PerformedBy,
			PerformedAt: h.PerformedAt,
		})
	}
	for _, c := range a.Comments {
		resp.Comments = append(resp.Comments, CommentResponse{
			Text:      c.Text,
			Author:    c.Author,
			CreatedAt: c.CreatedAt,
		})
	}
	return resp
}

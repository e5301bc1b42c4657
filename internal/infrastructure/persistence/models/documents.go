package models

import (
	"time"

	"github.com/ippis/backend/internal/domain/registration"
)

// DocumentUploadModel is the persistence model for the document_uploads table.
// Each slot is a nullable URL column.
type DocumentUploadModel struct {
	ID                      uint64    `gorm:"primaryKey;autoIncrement"`
	RegistrationID          string    `gorm:"type:varchar(32);not null;uniqueIndex"`
	AppointmentLetter       *string   `gorm:"type:text"`
	EducationalCertificates *string   `gorm:"type:text"`
	PromotionLetter         *string   `gorm:"type:text"`
	OtherDocuments          *string   `gorm:"type:text"`
	ProfileImage            *string   `gorm:"type:text"`
	Signature               *string   `gorm:"type:text"`
	Status                  string    `gorm:"type:varchar(16);not null;default:'pending';index"`
	UploadedAt              time.Time `gorm:"not null"`
	UpdatedAt               time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DocumentUploadModel) TableName() string {
	return "document_uploads"
}

func (m *DocumentUploadModel) slots() map[registration.DocumentKind]**string {
	return map[registration.DocumentKind]**string{
		registration.DocAppointmentLetter:       &m.AppointmentLetter,
		registration.DocEducationalCertificates: &m.EducationalCertificates,
		registration.DocPromotionLetter:         &m.PromotionLetter,
		registration.DocOtherDocuments:          &m.OtherDocuments,
		registration.DocProfileImage:            &m.ProfileImage,
		registration.DocSignature:               &m.Signature,
	}
}

// ToDomain converts the persistence model to domain DocumentUploads
func (m *DocumentUploadModel) ToDomain() *registration.DocumentUploads {
	paths := make(map[registration.DocumentKind]string)
	for kind, col := range m.slots() {
		if *col != nil && **col != "" {
			paths[kind] = **col
		}
	}
	return &registration.DocumentUploads{
		ID:             m.ID,
		RegistrationID: m.RegistrationID,
		Paths:          paths,
		Status:         registration.DocumentStatus(m.Status),
		UploadedAt:     m.UploadedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// DocumentUploadModelFromDomain creates a persistence model from domain DocumentUploads
func DocumentUploadModelFromDomain(d *registration.DocumentUploads) *DocumentUploadModel {
	m := &DocumentUploadModel{
		ID:             d.ID,
		RegistrationID: d.RegistrationID,
		Status:         string(d.Status),
		UploadedAt:     d.UploadedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	for kind, col := range m.slots() {
		if url := d.Path(kind); url != "" {
			*col = &url
		}
	}
	return m
}

// VerificationDataModel is the persistence model for the verification_data table
type VerificationDataModel struct {
	ID               uint64         `gorm:"primaryKey;autoIncrement"`
	RegistrationID   string         `gorm:"type:varchar(32);not null;uniqueIndex"`
	NIN              string         `gorm:"column:nin;type:varchar(11)"`
	NINVerified      bool           `gorm:"column:nin_verified;not null;default:false"`
	BVN              string         `gorm:"column:bvn;type:varchar(11)"`
	BVNVerified      bool           `gorm:"column:bvn_verified;not null;default:false"`
	Message          string         `gorm:"type:text"`
	Payload          map[string]any `gorm:"type:text;serializer:json"`
	VerificationDate time.Time      `gorm:"not null"`
	UpdatedAt        time.Time      `gorm:"not null"`
}

// TableName returns the table name for GORM
func (VerificationDataModel) TableName() string {
	return "verification_data"
}

// ToDomain converts the persistence model to domain VerificationData
func (m *VerificationDataModel) ToDomain() *registration.VerificationData {
	return &registration.VerificationData{
		ID:               m.ID,
		RegistrationID:   m.RegistrationID,
		NIN:              m.NIN,
		NINVerified:      m.NINVerified,
		BVN:              m.BVN,
		BVNVerified:      m.BVNVerified,
		Message:          m.Message,
		Payload:          m.Payload,
		VerificationDate: m.VerificationDate,
		UpdatedAt:        m.UpdatedAt,
	}
}

// VerificationDataModelFromDomain creates a persistence model from domain VerificationData
func VerificationDataModelFromDomain(v *registration.VerificationData) *VerificationDataModel {
	return &VerificationDataModel{
		ID:               v.ID,
		RegistrationID:   v.RegistrationID,
		NIN:              v.NIN,
		NINVerified:      v.NINVerified,
		BVN:              v.BVN,
		BVNVerified:      v.BVNVerified,
		Message:          v.Message,
		Payload:          v.Payload,
		VerificationDate: v.VerificationDate,
		UpdatedAt:        v.UpdatedAt,
	}
}

// HistoryModel is the persistence model for the append-only registration_history table
type HistoryModel struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement"`
	RegistrationID string    `gorm:"type:varchar(32);not null;index"`
	Action         string    `gorm:"type:varchar(50);not null"`
	Details        string    `gorm:"type:text"`
	PerformedBy    string    `gorm:"type:varchar(100);not null"`
	PerformedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (HistoryModel) TableName() string {
	return "registration_history"
}

// ToDomain converts the persistence model to a domain HistoryEntry
func (m *HistoryModel) ToDomain() registration.HistoryEntry {
	return registration.HistoryEntry{
		ID:             m.ID,
		RegistrationID: m.RegistrationID,
		Action:         registration.Action(m.Action),
		Details:        m.Details,
		PerformedBy:    m.PerformedBy,
		PerformedAt:    m.PerformedAt,
	}
}

// CommentModel is the persistence model for the registration_comments table
type CommentModel struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement"`
	RegistrationID string    `gorm:"type:varchar(32);not null;index"`
	CommentText    string    `gorm:"type:text;not null"`
	Author         string    `gorm:"type:varchar(100);not null"`
	CreatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CommentModel) TableName() string {
	return "registration_comments"
}

// ToDomain converts the persistence model to a domain Comment
func (m *CommentModel) ToDomain() registration.Comment {
	return registration.Comment{
		ID:             m.ID,
		RegistrationID: m.RegistrationID,
		Text:           m.CommentText,
		Author:         m.Author,
		CreatedAt:      m.CreatedAt,
	}
}

package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ippis/backend/internal/domain/registration"
	"github.com/ippis/backend/internal/domain/shared"
	"github.com/ippis/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRegistrationRepository implements registration.Repository using GORM.
// Every statement is parameterized; satellite rows are upserted on registration_id.
type GormRegistrationRepository struct {
	db *gorm.DB
}

// NewGormRegistrationRepository creates a new GormRegistrationRepository
func NewGormRegistrationRepository(db *gorm.DB) *GormRegistrationRepository {
	return &GormRegistrationRepository{db: db}
}

// Create inserts a new registration
func (r *GormRegistrationRepository) Create(ctx context.Context, reg *registration.Registration) error {
	m := models.RegistrationModelFromDomain(reg)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	reg.CreatedAt, reg.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return nil
}

// FindByID finds a registration by its registration id
func (r *GormRegistrationRepository) FindByID(ctx context.Context, id string) (*registration.Registration, error) {
	var m models.RegistrationModel
	if err := r.db.WithContext(ctx).Where("registration_id = ?", id).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Registration")
		}
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindLatestByEmail finds the newest registration whose personal info carries the email
func (r *GormRegistrationRepository) FindLatestByEmail(ctx context.Context, email string) (*registration.Registration, error) {
	var rows []models.RegistrationModel
	err := r.db.WithContext(ctx).
		Model(&models.RegistrationModel{}).
		Select("registrations.*").
		Joins("JOIN personal_info ON personal_info.registration_id = registrations.registration_id").
		Where("LOWER(personal_info.email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Order("registrations.created_at DESC").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}
	if len(rows) == 0 {
		return nil, notFound("Registration")
	}
	return rows[0].ToDomain(), nil
}

// Update persists step, sub-status and declaration changes
func (r *GormRegistrationRepository) Update(ctx context.Context, reg *registration.Registration) error {
	reg.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.RegistrationModel{}).
		Where("registration_id = ?", reg.RegistrationID).
		Updates(map[string]any{
			"current_step": string(reg.CurrentStep),
			"sub_status":   string(reg.SubStatus),
			"declaration":  reg.Declaration,
			"updated_at":   reg.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("Registration")
	}
	return nil
}

// UpdateStatus writes a status transition guarded by the expected current status
func (r *GormRegistrationRepository) UpdateStatus(ctx context.Context, reg *registration.Registration, expected registration.Status) error {
	reg.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.RegistrationModel{}).
		Where("registration_id = ? AND status = ?", reg.RegistrationID, string(expected)).
		Updates(map[string]any{
			"status":       string(reg.Status),
			"sub_status":   string(reg.SubStatus),
			"current_step": string(reg.CurrentStep),
			"declaration":  reg.Declaration,
			"submitted_at": reg.SubmittedAt,
			"approved_at":  reg.ApprovedAt,
			"rejected_at":  reg.RejectedAt,
			"updated_at":   reg.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrInvalidState.WithMessage("Registration is no longer " + string(expected))
	}
	return nil
}

// List finds registrations with the given status, newest first unless the filter sorts otherwise.
// Search matches the registration id.
func (r *GormRegistrationRepository) List(ctx context.Context, status registration.Status, filter shared.Filter) ([]registration.Registration, int64, error) {
	filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.RegistrationModel{})
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	if filter.Search != "" {
		query = query.Where("registration_id LIKE ?", "%"+strings.ToUpper(filter.Search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	var rows []models.RegistrationModel
	if err := query.Order(orderClause(filter.OrderBy, filter.OrderDir, RegistrationSortFields, "created_at", "DESC")).
		Order("id DESC").
		Offset(filter.Offset()).Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, translateError(err)
	}

	regs := make([]registration.Registration, len(rows))
	for i := range rows {
		regs[i] = *rows[i].ToDomain()
	}
	return regs, total, nil
}

type statusCount struct {
	Status string
	Count  int64
}

// CountByStatus counts registrations per status
func (r *GormRegistrationRepository) CountByStatus(ctx context.Context) (map[registration.Status]int64, error) {
	var rows []statusCount
	if err := r.db.WithContext(ctx).Model(&models.RegistrationModel{}).
		Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	counts := make(map[registration.Status]int64, len(rows))
	for _, row := range rows {
		counts[registration.Status(row.Status)] = row.Count
	}
	return counts, nil
}

// upsert inserts m or, when a row for the same registration exists, overwrites the given columns
func (r *GormRegistrationRepository) upsert(ctx context.Context, m any, columns ...string) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "registration_id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(m).Error
	return translateError(err)
}

// SavePersonalInfo upserts personal info
func (r *GormRegistrationRepository) SavePersonalInfo(ctx context.Context, info *registration.PersonalInfo) error {
	now := time.Now()
	if info.CreatedAt.IsZero() {
		info.CreatedAt = now
	}
	info.UpdatedAt = now
	return r.upsert(ctx, models.PersonalInfoModelFromDomain(info),
		"title", "surname", "first_name", "other_names", "phone_number", "email",
		"date_of_birth", "sex", "marital_status", "state_of_origin", "lga",
		"state_of_residence", "address_state_of_residence", "next_of_kin_name",
		"next_of_kin_relationship", "next_of_kin_phone_number", "next_of_kin_address",
		"updated_at")
}

// FindPersonalInfo returns personal info of a registration
func (r *GormRegistrationRepository) FindPersonalInfo(ctx context.Context, registrationID string) (*registration.PersonalInfo, error) {
	var m models.PersonalInfoModel
	if err := r.db.WithContext(ctx).Where("registration_id = ?", registrationID).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Personal information")
		}
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// EmailExists checks whether any personal info uses the email, ignoring case
func (r *GormRegistrationRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PersonalInfoModel{}).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error; err != nil {
		return false, translateError(err)
	}
	return count > 0, nil
}

// SaveEmploymentInfo upserts employment info
func (r *GormRegistrationRepository) SaveEmploymentInfo(ctx context.Context, info *registration.EmploymentInfo) error {
	now := time.Now()
	if info.CreatedAt.IsZero() {
		info.CreatedAt = now
	}
	info.UpdatedAt = now
	return r.upsert(ctx, models.EmploymentInfoModelFromDomain(info),
		"employment_id_no", "service_no", "file_no", "rank_position", "department",
		"organization", "employment_type", "probation_period", "work_location",
		"date_of_first_appointment", "gl", "step", "salary_structure", "cadre",
		"name_of_bank", "account_number", "pfa_name", "rsapin",
		"educational_background", "certifications", "updated_at")
}

// FindEmploymentInfo returns employment info of a registration
func (r *GormRegistrationRepository) FindEmploymentInfo(ctx context.Context, registrationID string) (*registration.EmploymentInfo, error) {
	var m models.EmploymentInfoModel
	if err := r.db.WithContext(ctx).Where("registration_id = ?", registrationID).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Employment information")
		}
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// SaveDocuments upserts the document row and refreshes its id
func (r *GormRegistrationRepository) SaveDocuments(ctx context.Context, docs *registration.DocumentUploads) error {
	now := time.Now()
	if docs.UploadedAt.IsZero() {
		docs.UploadedAt = now
	}
	docs.UpdatedAt = now
	m := models.DocumentUploadModelFromDomain(docs)
	m.ID = 0
	if err := r.upsert(ctx, m,
		"appointment_letter", "educational_certificates", "promotion_letter",
		"other_documents", "profile_image", "signature", "status", "updated_at"); err != nil {
		return err
	}

	var id uint64
	if err := r.db.WithContext(ctx).Model(&models.DocumentUploadModel{}).
		Where("registration_id = ?", docs.RegistrationID).
		Pluck("id", &id).Error; err != nil {
		return translateError(err)
	}
	docs.ID = id
	return nil
}

// FindDocuments returns the document row of a registration
func (r *GormRegistrationRepository) FindDocuments(ctx context.Context, registrationID string) (*registration.DocumentUploads, error) {
	return r.findDocuments(ctx, "registration_id = ?", registrationID)
}

// FindDocumentsByID returns a document row by its own id
func (r *GormRegistrationRepository) FindDocumentsByID(ctx context.Context, id uint64) (*registration.DocumentUploads, error) {
	return r.findDocuments(ctx, "id = ?", id)
}

func (r *GormRegistrationRepository) findDocuments(ctx context.Context, cond string, arg any) (*registration.DocumentUploads, error) {
	var m models.DocumentUploadModel
	if err := r.db.WithContext(ctx).Where(cond, arg).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Documents")
		}
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

type pendingDocumentRow struct {
	models.DocumentUploadModel `gorm:"embedded"`
	Title                      string
	FirstName                  string
	Surname                    string
	Email                      string
}

// ListPendingDocuments lists unreviewed document rows of registrations awaiting approval, oldest first
func (r *GormRegistrationRepository) ListPendingDocuments(ctx context.Context, filter shared.Filter) ([]registration.PendingDocument, int64, error) {
	filter.Normalize()
	query := r.db.WithContext(ctx).
		Table("document_uploads").
		Joins("JOIN registrations ON registrations.registration_id = document_uploads.registration_id").
		Joins("LEFT JOIN personal_info ON personal_info.registration_id = document_uploads.registration_id").
		Where("document_uploads.status = ? AND registrations.status = ?",
			string(registration.DocumentStatusPending), string(registration.StatusPendingApproval))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	var rows []pendingDocumentRow
	if err := query.
		Select("document_uploads.*, personal_info.title, personal_info.first_name, personal_info.surname, personal_info.email").
		Order(orderClause(filter.OrderBy, filter.OrderDir, PendingDocumentSortFields, "uploaded_at", "ASC")).
		Offset(filter.Offset()).Limit(filter.PageSize).
		Scan(&rows).Error; err != nil {
		return nil, 0, translateError(err)
	}

	result := make([]registration.PendingDocument, len(rows))
	for i := range rows {
		name := (&registration.PersonalInfo{
			Title:     rows[i].Title,
			FirstName: rows[i].FirstName,
			Surname:   rows[i].Surname,
		}).FullName()
		result[i] = registration.PendingDocument{
			Documents:     *rows[i].DocumentUploadModel.ToDomain(),
			ApplicantName: name,
			Email:         rows[i].Email,
		}
	}
	return result, total, nil
}

// CountDocumentsByStatus counts document rows per review status
func (r *GormRegistrationRepository) CountDocumentsByStatus(ctx context.Context) (map[registration.DocumentStatus]int64, error) {
	var rows []statusCount
	if err := r.db.WithContext(ctx).Model(&models.DocumentUploadModel{}).
		Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	counts := make(map[registration.DocumentStatus]int64, len(rows))
	for _, row := range rows {
		counts[registration.DocumentStatus(row.Status)] = row.Count
	}
	return counts, nil
}

// SaveVerification upserts the verification record
func (r *GormRegistrationRepository) SaveVerification(ctx context.Context, v *registration.VerificationData) error {
	now := time.Now()
	if v.VerificationDate.IsZero() {
		v.VerificationDate = now
	}
	v.UpdatedAt = now
	m := models.VerificationDataModelFromDomain(v)
	m.ID = 0
	return r.upsert(ctx, m,
		"nin", "nin_verified", "bvn", "bvn_verified", "message", "payload",
		"verification_date", "updated_at")
}

// FindVerification returns verification data of a registration
func (r *GormRegistrationRepository) FindVerification(ctx context.Context, registrationID string) (*registration.VerificationData, error) {
	var m models.VerificationDataModel
	if err := r.db.WithContext(ctx).Where("registration_id = ?", registrationID).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Verification data")
		}
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// AppendHistory inserts a history row
func (r *GormRegistrationRepository) AppendHistory(ctx context.Context, entry *registration.HistoryEntry) error {
	if entry.PerformedAt.IsZero() {
		entry.PerformedAt = time.Now()
	}
	m := &models.HistoryModel{
		RegistrationID: entry.RegistrationID,
		Action:         string(entry.Action),
		Details:        entry.Details,
		PerformedBy:    entry.PerformedBy,
		PerformedAt:    entry.PerformedAt,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	entry.ID = m.ID
	return nil
}

// ListHistory returns history rows oldest first
func (r *GormRegistrationRepository) ListHistory(ctx context.Context, registrationID string) ([]registration.HistoryEntry, error) {
	var rows []models.HistoryModel
	if err := r.db.WithContext(ctx).Where("registration_id = ?", registrationID).
		Order("performed_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	entries := make([]registration.HistoryEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, nil
}

// AddComment inserts a reviewer comment
func (r *GormRegistrationRepository) AddComment(ctx context.Context, c *registration.Comment) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	m := &models.CommentModel{
		RegistrationID: c.RegistrationID,
		CommentText:    c.Text,
		Author:         c.Author,
		CreatedAt:      c.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	c.ID = m.ID
	return nil
}

// ListComments returns comments oldest first
func (r *GormRegistrationRepository) ListComments(ctx context.Context, registrationID string) ([]registration.Comment, error) {
	var rows []models.CommentModel
	if err := r.db.WithContext(ctx).Where("registration_id = ?", registrationID).
		Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	comments := make([]registration.Comment, len(rows))
	for i := range rows {
		comments[i] = rows[i].ToDomain()
	}
	return comments, nil
}

// Ensure GormRegistrationRepository implements registration.Repository
var _ registration.Repository = (*GormRegistrationRepository)(nil)

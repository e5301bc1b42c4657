package registration

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ippis/backend/internal/domain/registration"
	"github.com/ippis/backend/internal/domain/shared"
	"github.com/ippis/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const (
	maxIDAttempts        = 3
	defaultMaxUploadSize = 5 << 20
)

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// WorkflowService runs the applicant side of the registration state machine
type WorkflowService struct {
	repo          registration.Repository
	txScope       TransactionScope
	verifier      Verifier
	storage       DocumentStorage
	metrics       MetricsRecorder
	logger        *zap.Logger
	maxUploadSize int64
}

// WorkflowOption configures a WorkflowService
type WorkflowOption func(*WorkflowService)

// WithWorkflowMetrics sets the metrics recorder
func WithWorkflowMetrics(m MetricsRecorder) WorkflowOption {
	return func(s *WorkflowService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithMaxUploadSize sets the per-file upload limit in bytes
func WithMaxUploadSize(n int64) WorkflowOption {
	return func(s *WorkflowService) {
		if n > 0 {
			s.maxUploadSize = n
		}
	}
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(
	repo registration.Repository,
	txScope TransactionScope,
	verifier Verifier,
	storage DocumentStorage,
	logger *zap.Logger,
	opts ...WorkflowOption,
) *WorkflowService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &WorkflowService{
		repo:          repo,
		txScope:       txScope,
		verifier:      verifier,
		storage:       storage,
		metrics:       noopMetrics{},
		logger:        logger,
		maxUploadSize: defaultMaxUploadSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a new draft registration and returns it
func (s *WorkflowService) Create(ctx context.Context) (*RegistrationResponse, error) {
	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		id, err := registration.GenerateRegistrationID()
		if err != nil {
			return nil, err
		}
		reg, err := registration.NewRegistration(id, registration.SourceForm)
		if err != nil {
			return nil, err
		}

		err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			if err := repos.Registrations().Create(ctx, reg); err != nil {
				return err
			}
			return repos.Registrations().AppendHistory(ctx,
				registration.NewHistoryEntry(id, registration.ActionCreated, "Registration created", registration.PerformerApplicant))
		})
		if errors.Is(err, shared.ErrConflict) {
			s.logger.Warn("Registration id collision, regenerating", zap.String("registration_id", id), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, err
		}

		s.metrics.RecordCreated(ctx, registration.SourceForm)
		s.logger.Info("Registration created", zap.String("registration_id", id))
		resp := ToRegistrationResponse(reg)
		return &resp, nil
	}
	return nil, shared.ErrConflict.WithMessage("Could not allocate a unique registration id")
}

// SaveVerification looks up the NIN, stores the outcome and advances to personal info when verified.
// An unverified answer is a valid outcome and is returned with Verified=false.
// Once a NIN is verified, failed or unverified re-lookups never replace the stored identity.
func (s *WorkflowService) SaveVerification(ctx context.Context, id string, req VerificationRequest) (*VerificationResponse, error) {
	nin := strings.TrimSpace(req.NIN)
	bvn := strings.TrimSpace(req.BVN)
	if !registration.IsValidNIN(nin) {
		return nil, shared.NewValidationError(shared.FieldError{Field: "nin", Message: "nin must be exactly 11 digits"})
	}
	if bvn != "" && !registration.IsValidNIN(bvn) {
		return nil, shared.NewValidationError(shared.FieldError{Field: "bvn", Message: "bvn must be exactly 11 digits"})
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "registration", "verify",
		telemetry.WithAttribute(telemetry.SpanAttrRegistrationID, id))
	defer span.End()

	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := reg.EnsureDetailsEditable(); err != nil {
		return nil, err
	}
	stored, err := optional(s.repo.FindVerification(ctx, id))
	if err != nil {
		return nil, err
	}

	result, verr := s.verifier.VerifyNIN(ctx, nin)
	if verr != nil {
		if errors.Is(verr, shared.ErrValidation) {
			return nil, verr
		}
		telemetry.RecordError(span, verr)
		s.metrics.RecordVerification(ctx, strings.ToLower(shared.CodeOf(verr)))
		attempt := registration.NewVerificationData(id, nin, &registration.VerificationResult{Message: verr.Error()})
		attempt.BVN = bvn
		if !attempt.Replaces(stored) {
			s.logger.Warn("NIN re-verification failed, keeping verified identity",
				zap.String("registration_id", id), zap.Error(verr))
			return nil, verr
		}
		if err := s.repo.SaveVerification(ctx, attempt); err != nil {
			s.logger.Warn("Failed to record failed verification attempt", zap.String("registration_id", id), zap.Error(err))
		}
		return nil, verr
	}

	data := registration.NewVerificationData(id, nin, result)
	data.BVN = bvn

	if data.Replaces(stored) {
		err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			regs := repos.Registrations()
			if err := regs.SaveVerification(ctx, data); err != nil {
				return err
			}
			if !data.FullyVerified() {
				return nil
			}
			reg.AdvanceTo(registration.StepPersonalInfo)
			return regs.Update(ctx, reg)
		})
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	} else {
		s.logger.Info("Unverified re-lookup ignored, keeping verified identity", zap.String("registration_id", id))
	}

	outcome := "unverified"
	if result.Verified {
		outcome = "verified"
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrOutcome, outcome)
	s.metrics.RecordVerification(ctx, outcome)

	return &VerificationResponse{
		Verified:    result.Verified,
		Message:     result.Message,
		CurrentStep: string(reg.CurrentStep),
		Data:        result.Data,
	}, nil
}

// SavePersonalInfo validates and upserts personal info, then advances to employment info
func (s *WorkflowService) SavePersonalInfo(ctx context.Context, id string, info registration.PersonalInfo) (*RegistrationResponse, error) {
	if err := info.Validate(); err != nil {
		return nil, err
	}
	info.RegistrationID = id

	var reg *registration.Registration
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		regs := repos.Registrations()
		var err error
		if reg, err = regs.FindByID(ctx, id); err != nil {
			return err
		}
		if err := reg.EnsureDetailsEditable(); err != nil {
			return err
		}
		if err := regs.SavePersonalInfo(ctx, &info); err != nil {
			return err
		}
		reg.AdvanceTo(registration.StepEmploymentInfo)
		reg.ResolveSubStatus(registration.SubStatusDataIncomplete)
		if err := regs.Update(ctx, reg); err != nil {
			return err
		}
		return regs.AppendHistory(ctx, registration.NewHistoryEntry(id, registration.ActionPersonalInfoSaved,
			"Personal information saved", registration.PerformerApplicant))
	})
	if err != nil {
		return nil, err
	}

	resp := ToRegistrationResponse(reg)
	return &resp, nil
}

// SaveEmploymentInfo validates and upserts employment info, then advances to documents
func (s *WorkflowService) SaveEmploymentInfo(ctx context.Context, id string, info registration.EmploymentInfo) (*RegistrationResponse, error) {
	if err := info.Validate(); err != nil {
		return nil, err
	}
	info.RegistrationID = id

	var reg *registration.Registration
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		regs := repos.Registrations()
		var err error
		if reg, err = regs.FindByID(ctx, id); err != nil {
			return err
		}
		if err := reg.EnsureDetailsEditable(); err != nil {
			return err
		}
		if err := regs.SaveEmploymentInfo(ctx, &info); err != nil {
			return err
		}
		reg.AdvanceTo(registration.StepDocuments)
		reg.ResolveSubStatus(registration.SubStatusDataIncomplete)
		if err := regs.Update(ctx, reg); err != nil {
			return err
		}
		return regs.AppendHistory(ctx, registration.NewHistoryEntry(id, registration.ActionEmploymentInfoSaved,
			"Employment information saved", registration.PerformerApplicant))
	})
	if err != nil {
		return nil, err
	}

	resp := ToRegistrationResponse(reg)
	return &resp, nil
}

// SaveDocuments stores the uploaded files and records their URLs, then advances to review.
// Required slots are checked before anything is stored.
func (s *WorkflowService) SaveDocuments(ctx context.Context, id string, files []DocumentFile) (*DocumentsResponse, error) {
	incoming, err := s.checkFiles(files)
	if err != nil {
		return nil, err
	}

	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := reg.EnsureDocumentsEditable(); err != nil {
		return nil, err
	}
	existing, err := s.repo.FindDocuments(ctx, id)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if err := registration.CheckRequired(existing, incoming); err != nil {
		return nil, err
	}

	urls := make(map[registration.DocumentKind]string, len(files))
	keys := make([]string, 0, len(files))
	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(f.Filename))
		key := registration.DocumentKey(id, f.Kind, uuid.NewString()+ext)
		url, err := s.storage.Store(ctx, key, f.Body, f.Size, f.ContentType)
		if err != nil {
			s.discard(ctx, keys)
			return nil, shared.ErrPersistence.WithMessage("Failed to store document").Wrap(err)
		}
		urls[f.Kind] = url
		keys = append(keys, key)
	}

	var docs *registration.DocumentUploads
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		regs := repos.Registrations()
		current, err := regs.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := current.EnsureDocumentsEditable(); err != nil {
			return err
		}
		docs, err = regs.FindDocuments(ctx, id)
		if errors.Is(err, shared.ErrNotFound) {
			docs, err = registration.NewDocumentUploads(id), nil
		}
		if err != nil {
			return err
		}

		kinds := make([]string, 0, len(urls))
		for _, kind := range registration.AllDocumentKinds {
			if url, ok := urls[kind]; ok {
				docs.Set(kind, url)
				kinds = append(kinds, string(kind))
			}
		}
		if err := regs.SaveDocuments(ctx, docs); err != nil {
			return err
		}

		current.AdvanceTo(registration.StepReview)
		current.ResolveSubStatus(registration.SubStatusDocumentVerification)
		if err := regs.Update(ctx, current); err != nil {
			return err
		}
		reg = current
		return regs.AppendHistory(ctx, registration.NewHistoryEntry(id, registration.ActionDocumentsUploaded,
			"Documents uploaded: "+strings.Join(kinds, ", "), registration.PerformerApplicant))
	})
	if err != nil {
		s.discard(ctx, keys)
		return nil, err
	}

	s.logger.Info("Documents uploaded",
		zap.String("registration_id", id),
		zap.Int("files", len(files)),
		zap.String("current_step", string(reg.CurrentStep)))
	return ToDocumentsResponse(docs), nil
}

func (s *WorkflowService) checkFiles(files []DocumentFile) (map[registration.DocumentKind]bool, error) {
	incoming := make(map[registration.DocumentKind]bool, len(files))
	var details []shared.FieldError
	for _, f := range files {
		field := string(f.Kind)
		switch {
		case !f.Kind.IsValid():
			details = append(details, shared.FieldError{Field: field, Message: "unknown document type " + field})
		case incoming[f.Kind]:
			details = append(details, shared.FieldError{Field: field, Message: field + " was uploaded more than once"})
		case !allowedExtensions[strings.ToLower(filepath.Ext(f.Filename))]:
			details = append(details, shared.FieldError{Field: field, Message: field + " must be a PDF, JPG or PNG file"})
		case f.Size <= 0:
			details = append(details, shared.FieldError{Field: field, Message: field + " is empty"})
		case f.Size > s.maxUploadSize:
			details = append(details, shared.FieldError{Field: field, Message: fmt.Sprintf("%s exceeds %d bytes", field, s.maxUploadSize)})
		}
		incoming[f.Kind] = true
	}
	if len(details) > 0 {
		return nil, shared.NewValidationError(details...)
	}
	return incoming, nil
}

// discard removes stored objects that will not be referenced; failures are only logged
func (s *WorkflowService) discard(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.storage.Delete(ctx, key); err != nil {
			s.logger.Warn("Failed to delete orphaned document", zap.String("key", key), zap.Error(err))
		}
	}
}

// Submit hands a completed draft over for review
func (s *WorkflowService) Submit(ctx context.Context, id string, declaration bool) (*RegistrationResponse, error) {
	if !declaration {
		return nil, shared.ErrDeclarationRequired
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "registration", "submit")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrRegistrationID, id)

	var reg *registration.Registration
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		regs := repos.Registrations()
		var err error
		if reg, err = regs.FindByID(ctx, id); err != nil {
			return err
		}
		if reg.Status != registration.StatusDraft {
			return shared.ErrInvalidState.WithMessage(
				fmt.Sprintf("Registration %s has already been submitted", id))
		}
		if _, err := regs.FindPersonalInfo(ctx, id); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.ErrInvalidState.WithMessage("Personal information has not been provided")
			}
			return err
		}
		docs, err := regs.FindDocuments(ctx, id)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if err := registration.CheckRequired(docs, nil); err != nil {
			return err
		}
		if err := reg.Submit(true); err != nil {
			return err
		}
		if err := regs.UpdateStatus(ctx, reg, registration.StatusDraft); err != nil {
			return err
		}
		return regs.AppendHistory(ctx, registration.NewHistoryEntry(id, registration.ActionSubmitted,
			"Registration submitted for approval", registration.PerformerApplicant))
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordSubmitted(ctx)
	s.logger.Info("Registration submitted", zap.String("registration_id", id))
	resp := ToRegistrationResponse(reg)
	return &resp, nil
}

// GetStatus returns the full aggregate of a registration for tracking
func (s *WorkflowService) GetStatus(ctx context.Context, id string) (*StatusResponse, error) {
	agg, err := s.loadAggregate(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToStatusResponse(agg), nil
}

// Track finds a registration by id or, failing that, by applicant email
func (s *WorkflowService) Track(ctx context.Context, id, email string) (*RegistrationResponse, error) {
	id = strings.TrimSpace(id)
	email = strings.ToLower(strings.TrimSpace(email))

	var (
		reg *registration.Registration
		err error
	)
	switch {
	case id != "":
		reg, err = s.repo.FindByID(ctx, id)
	case email != "":
		reg, err = s.repo.FindLatestByEmail(ctx, email)
	default:
		return nil, shared.NewValidationError(shared.FieldError{Field: "id", Message: "registration id or email is required"})
	}
	if err != nil {
		return nil, err
	}
	resp := ToRegistrationResponse(reg)
	return &resp, nil
}

// Prefill returns the normalized identity payload captured at verification
func (s *WorkflowService) Prefill(ctx context.Context, id string) (map[string]any, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	v, err := s.repo.FindVerification(ctx, id)
	if err != nil {
		return nil, err
	}
	if !v.NINVerified || len(v.Payload) == 0 {
		return nil, shared.ErrNotFound.WithMessage("No verified identity data for this registration")
	}
	return v.Payload, nil
}

// VerifyNIN performs a stand-alone lookup without touching any registration
func (s *WorkflowService) VerifyNIN(ctx context.Context, nin string) (*registration.VerificationResult, error) {
	nin = strings.TrimSpace(nin)
	if !registration.IsValidNIN(nin) {
		return nil, shared.NewValidationError(shared.FieldError{Field: "nin", Message: "nin must be exactly 11 digits"})
	}
	return s.verifier.VerifyNIN(ctx, nin)
}

func (s *WorkflowService) loadAggregate(ctx context.Context, id string) (*registration.Aggregate, error) {
	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	agg := &registration.Aggregate{Registration: reg}

	if agg.PersonalInfo, err = optional(s.repo.FindPersonalInfo(ctx, id)); err != nil {
		return nil, err
	}
	if agg.EmploymentInfo, err = optional(s.repo.FindEmploymentInfo(ctx, id)); err != nil {
		return nil, err
	}
	if agg.Documents, err = optional(s.repo.FindDocuments(ctx, id)); err != nil {
		return nil, err
	}
	if agg.Verification, err = optional(s.repo.FindVerification(ctx, id)); err != nil {
		return nil, err
	}
	if agg.History, err = s.repo.ListHistory(ctx, id); err != nil {
		return nil, err
	}
	if agg.Comments, err = s.repo.ListComments(ctx, id); err != nil {
		return nil, err
	}
	return agg, nil
}

// optional turns a not-found lookup into a nil value
func optional[T any](v *T, err error) (*T, error) {
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	return v, err
}

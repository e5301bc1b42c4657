package registration

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"

	"github.com/ippis/backend/internal/domain/employee"
	"github.com/ippis/backend/internal/domain/registration"
	"github.com/ippis/backend/internal/domain/shared"
	"github.com/ippis/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ReviewService runs the administrator side of the registration workflow
type ReviewService struct {
	repo     registration.Repository
	txScope  TransactionScope
	notifier Notifier
	metrics  MetricsRecorder
	storage  DocumentStorage
	logger   *zap.Logger
}

// ReviewOption configures a ReviewService
type ReviewOption func(*ReviewService)

// WithNotifier sets the applicant notifier
func WithNotifier(n Notifier) ReviewOption {
	return func(s *ReviewService) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithReviewMetrics sets the metrics recorder
func WithReviewMetrics(m MetricsRecorder) ReviewOption {
	return func(s *ReviewService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithDocumentStorage lets reviewers read uploaded files back
func WithDocumentStorage(storage DocumentStorage) ReviewOption {
	return func(s *ReviewService) {
		s.storage = storage
	}
}

// NewReviewService creates a new ReviewService
func NewReviewService(repo registration.Repository, txScope TransactionScope, logger *zap.Logger, opts ...ReviewOption) *ReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ReviewService{
		repo:     repo,
		txScope:  txScope,
		notifier: noopNotifier{},
		metrics:  noopMetrics{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Approve accepts a pending registration and creates its employee record.
// The status change, the employee insert and the history row commit together.
func (s *ReviewService) Approve(ctx context.Context, id string, req DecisionRequest) (*DecisionResponse, error) {
	reviewer := reviewerOf(req.Reviewer)
	comment := strings.TrimSpace(req.Comment)

	ctx, span := s.startDecisionSpan(ctx, "approve", id, reviewer)
	defer span.End()

	var (
		reg *registration.Registration
		emp *employee.Employee
		err error
	)
	// A concurrent approval can take the same employee id; the unique
	// constraint rejects ours and the whole transaction is retried.
	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		reg, emp, err = s.approveOnce(ctx, id, reviewer, comment)
		if !errors.Is(err, shared.ErrConflict) {
			break
		}
		s.logger.Warn("Employee id collision, retrying approval", zap.String("registration_id", id), zap.Int("attempt", attempt))
		telemetry.AddEvent(span, "employee_id_collision", "attempt", attempt)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrEmployeeID, emp.EmployeeID)
	endDecisionSpan(span, OutcomeApproved)

	s.metrics.RecordDecision(ctx, OutcomeApproved)
	s.logger.Info("Registration approved",
		zap.String("registration_id", id),
		zap.String("employee_id", emp.EmployeeID),
		zap.String("reviewer", reviewer))
	s.notify(ctx, id, Notification{Outcome: OutcomeApproved, EmployeeID: emp.EmployeeID, Comment: comment})

	return &DecisionResponse{
		RegistrationID: id,
		Status:         string(reg.Status),
		EmployeeID:     emp.EmployeeID,
	}, nil
}

func (s *ReviewService) approveOnce(ctx context.Context, id, reviewer, comment string) (*registration.Registration, *employee.Employee, error) {
	var (
		reg *registration.Registration
		emp *employee.Employee
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		regs := repos.Registrations()
		var err error
		if reg, err = regs.FindByID(ctx, id); err != nil {
			return err
		}
		if err := reg.Approve(); err != nil {
			return err
		}
		if err := regs.UpdateStatus(ctx, reg, registration.StatusPendingApproval); err != nil {
			return err
		}

		personal, err := regs.FindPersonalInfo(ctx, id)
		if errors.Is(err, shared.ErrNotFound) {
			return shared.ErrInvalidState.WithMessage("Registration has no personal information")
		}
		if err != nil {
			return err
		}
		employment, err := optional(regs.FindEmploymentInfo(ctx, id))
		if err != nil {
			return err
		}

		maxSeq, err := repos.Employees().MaxSequence(ctx)
		if err != nil {
			return err
		}
		if emp, err = employee.NewFromRegistration(employee.NextID(maxSeq), id, personal, employment); err != nil {
			return err
		}
		if err := repos.Employees().Create(ctx, emp); err != nil {
			return err
		}

		if err := regs.AppendHistory(ctx, registration.NewHistoryEntry(id, registration.ActionApproved,
			"Registration approved and employee created with ID "+emp.EmployeeID, reviewer)); err != nil {
			return err
		}
		if comment == "" {
			return nil
		}
		c, err := registration.NewComment(id, comment, reviewer)
		if err != nil {
			return err
		}
		return regs.AddComment(ctx, c)
	})
	return reg, emp, err
}

// Reject declines a pending registration; a non-blank comment is mandatory
func (s *ReviewService) Reject(ctx context.Context, id string, req DecisionRequest) (*DecisionResponse, error) {
	reviewer := reviewerOf(req.Reviewer)
	ctx, span := s.startDecisionSpan(ctx, "reject", id, reviewer)
	defer span.End()

	c, err := registration.NewComment(id, req.Comment, reviewer)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var reg *registration.Registration
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		regs := repos.Registrations()
		var err error
		if reg, err = regs.FindByID(ctx, id); err != nil {
			return err
		}
		if err := reg.Reject(); err != nil {
			return err
		}
		if err := regs.UpdateStatus(ctx, reg, registration.StatusPendingApproval); err != nil {
			return err
		}
		if err := regs.AppendHistory(ctx, registration.NewHistoryEntry(id, registration.ActionRejected,
			"Registration rejected: "+c.Text, reviewer)); err != nil {
			return err
		}
		return regs.AddComment(ctx, c)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	endDecisionSpan(span, OutcomeRejected)

	s.metrics.RecordDecision(ctx, OutcomeRejected)
	s.logger.Info("Registration rejected", zap.String("registration_id", id), zap.String("reviewer", reviewer))
	s.notify(ctx, id, Notification{Outcome: OutcomeRejected, Comment: c.Text})

	return &DecisionResponse{RegistrationID: id, Status: string(reg.Status)}, nil
}

// RejectDocument rejects a document row and with it the owning registration
func (s *ReviewService) RejectDocument(ctx context.Context, documentID uint64, req DecisionRequest) (*DecisionResponse, error) {
	reviewer := reviewerOf(req.Reviewer)
	ctx, span := telemetry.StartServiceSpan(ctx, "review", "reject_document",
		telemetry.WithAttribute("document_id", documentID))
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrReviewer, reviewer)

	text := strings.TrimSpace(req.Comment)
	if text == "" {
		telemetry.RecordError(span, shared.ErrCommentRequired)
		return nil, shared.ErrCommentRequired
	}

	var (
		reg  *registration.Registration
		docs *registration.DocumentUploads
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		regs := repos.Registrations()
		var err error
		if docs, err = regs.FindDocumentsByID(ctx, documentID); err != nil {
			return err
		}
		if reg, err = regs.FindByID(ctx, docs.RegistrationID); err != nil {
			return err
		}
		if err := reg.Reject(); err != nil {
			return err
		}
		if err := docs.Review(registration.DocumentStatusRejected); err != nil {
			return err
		}
		if err := regs.UpdateStatus(ctx, reg, registration.StatusPendingApproval); err != nil {
			return err
		}
		if err := regs.SaveDocuments(ctx, docs); err != nil {
			return err
		}
		if err := regs.AppendHistory(ctx, registration.NewHistoryEntry(reg.RegistrationID, registration.ActionDocumentRejected,
			"Document rejected with reason: "+text, reviewer)); err != nil {
			return err
		}
		c, err := registration.NewComment(reg.RegistrationID, text, reviewer)
		if err != nil {
			return err
		}
		return regs.AddComment(ctx, c)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrRegistrationID, reg.RegistrationID)
	endDecisionSpan(span, OutcomeDocumentRejected)

	s.metrics.RecordDecision(ctx, OutcomeDocumentRejected)
	s.logger.Info("Document rejected",
		zap.Uint64("document_id", documentID),
		zap.String("registration_id", reg.RegistrationID),
		zap.String("reviewer", reviewer))
	s.notify(ctx, reg.RegistrationID, Notification{Outcome: OutcomeDocumentRejected, Comment: text})

	return &DecisionResponse{
		RegistrationID: reg.RegistrationID,
		Status:         string(reg.Status),
		DocumentStatus: string(docs.Status),
	}, nil
}

// VerifyDocument records a document-level outcome while the registration stays pending.
// A rejected document re-opens uploads for the applicant.
func (s *ReviewService) VerifyDocument(ctx context.Context, id string, req VerifyDocumentRequest) (*DecisionResponse, error) {
	reviewer := reviewerOf(req.Reviewer)
	ctx, span := s.startDecisionSpan(ctx, "verify_document", id, reviewer)
	defer span.End()

	status := registration.DocumentStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if status != registration.DocumentStatusApproved && status != registration.DocumentStatusRejected {
		err := shared.NewValidationError(shared.FieldError{Field: "status", Message: "status must be one of: approved rejected"})
		telemetry.RecordError(span, err)
		return nil, err
	}
	comment := strings.TrimSpace(req.Comment)

	action, outcome := registration.ActionDocumentApproved, OutcomeDocumentApproved
	if status == registration.DocumentStatusRejected {
		action, outcome = registration.ActionDocumentRejected, OutcomeDocumentRejected
	}

	var (
		reg  *registration.Registration
		docs *registration.DocumentUploads
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		regs := repos.Registrations()
		var err error
		if reg, err = regs.FindByID(ctx, id); err != nil {
			return err
		}
		if reg.Status != registration.StatusPendingApproval {
			return shared.ErrInvalidState.WithMessage(
				fmt.Sprintf("Registration %s is %s, expected %s", id, reg.Status, registration.StatusPendingApproval))
		}
		if docs, err = regs.FindDocuments(ctx, id); err != nil {
			return err
		}
		if err := docs.Review(status); err != nil {
			return err
		}
		if err := regs.SaveDocuments(ctx, docs); err != nil {
			return err
		}

		if status == registration.DocumentStatusRejected {
			err = reg.Flag(registration.SubStatusDocumentVerification)
		} else {
			reg.ResolveSubStatus(registration.SubStatusDocumentVerification)
		}
		if err != nil {
			return err
		}
		if err := regs.UpdateStatus(ctx, reg, registration.StatusPendingApproval); err != nil {
			return err
		}

		details := "Documents " + string(status)
		if comment != "" {
			details += ": " + comment
		}
		if err := regs.AppendHistory(ctx, registration.NewHistoryEntry(id, action, details, reviewer)); err != nil {
			return err
		}
		if comment == "" {
			return nil
		}
		c, err := registration.NewComment(id, comment, reviewer)
		if err != nil {
			return err
		}
		return regs.AddComment(ctx, c)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	endDecisionSpan(span, outcome)

	s.metrics.RecordDecision(ctx, outcome)
	s.logger.Info("Documents reviewed",
		zap.String("registration_id", id),
		zap.String("document_status", string(status)),
		zap.String("reviewer", reviewer))
	s.notify(ctx, id, Notification{Outcome: outcome, Comment: comment})

	return &DecisionResponse{
		RegistrationID: id,
		Status:         string(reg.Status),
		SubStatus:      string(reg.SubStatus),
		DocumentStatus: string(docs.Status),
	}, nil
}

// FlagIncomplete asks the applicant to correct personal or employment details
func (s *ReviewService) FlagIncomplete(ctx context.Context, id string, req DecisionRequest) (*DecisionResponse, error) {
	reviewer := reviewerOf(req.Reviewer)
	ctx, span := s.startDecisionSpan(ctx, "flag_incomplete", id, reviewer)
	defer span.End()

	c, err := registration.NewComment(id, req.Comment, reviewer)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var reg *registration.Registration
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		regs := repos.Registrations()
		var err error
		if reg, err = regs.FindByID(ctx, id); err != nil {
			return err
		}
		if err := reg.Flag(registration.SubStatusDataIncomplete); err != nil {
			return err
		}
		if err := regs.UpdateStatus(ctx, reg, registration.StatusPendingApproval); err != nil {
			return err
		}
		if err := regs.AppendHistory(ctx, registration.NewHistoryEntry(id, registration.ActionDataIncomplete,
			"Registration flagged as incomplete: "+c.Text, reviewer)); err != nil {
			return err
		}
		return regs.AddComment(ctx, c)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	endDecisionSpan(span, OutcomeDataIncomplete)

	s.metrics.RecordDecision(ctx, OutcomeDataIncomplete)
	s.notify(ctx, id, Notification{Outcome: OutcomeDataIncomplete, Comment: c.Text})

	return &DecisionResponse{RegistrationID: id, Status: string(reg.Status), SubStatus: string(reg.SubStatus)}, nil
}

// ListRegistrations lists registrations by status, pending approval by default
func (s *ReviewService) ListRegistrations(ctx context.Context, status string, filter shared.Filter) (shared.Paginated[RegistrationResponse], error) {
	filter.Normalize()
	st := registration.Status(strings.TrimSpace(status))
	switch {
	case st == "":
		st = registration.StatusPendingApproval
	case st == "all":
		st = ""
	case !st.IsValid():
		return shared.Paginated[RegistrationResponse]{}, shared.NewValidationError(
			shared.FieldError{Field: "status", Message: "unknown status " + status})
	}

	items, total, err := s.repo.List(ctx, st, filter)
	if err != nil {
		return shared.Paginated[RegistrationResponse]{}, err
	}
	return shared.NewPaginated(ToRegistrationResponses(items), total, filter.Page, filter.PageSize), nil
}

// ListPendingDocuments lists document rows awaiting review
func (s *ReviewService) ListPendingDocuments(ctx context.Context, filter shared.Filter) (shared.Paginated[PendingDocumentResponse], error) {
	filter.Normalize()
	items, total, err := s.repo.ListPendingDocuments(ctx, filter)
	if err != nil {
		return shared.Paginated[PendingDocumentResponse]{}, err
	}
	out := make([]PendingDocumentResponse, 0, len(items))
	for i := range items {
		out = append(out, PendingDocumentResponse{
			DocumentsResponse: *ToDocumentsResponse(&items[i].Documents),
			ApplicantName:     items[i].ApplicantName,
			Email:             items[i].Email,
		})
	}
	return shared.NewPaginated(out, total, filter.Page, filter.PageSize), nil
}

// OpenDocument streams the file held in one document slot of a registration
func (s *ReviewService) OpenDocument(ctx context.Context, id, kind string) (*DocumentContent, error) {
	if s.storage == nil {
		return nil, shared.ErrNotFound.WithMessage("Document storage is not configured")
	}
	k := registration.DocumentKind(strings.TrimSpace(kind))
	if !k.IsValid() {
		return nil, shared.NewValidationError(shared.FieldError{Field: "kind", Message: "unknown document kind " + kind})
	}

	docs, err := s.repo.FindDocuments(ctx, id)
	if err != nil {
		return nil, err
	}
	url := docs.Path(k)
	if url == "" {
		return nil, shared.ErrNotFound.WithMessage("No " + string(k) + " uploaded for this registration")
	}
	key, ok := registration.KeyFromURL(id, url)
	if !ok {
		s.logger.Warn("Document URL outside the registration prefix",
			zap.String("registration_id", id),
			zap.String("kind", string(k)),
			zap.String("url", url))
		return nil, shared.ErrNotFound.WithMessage("Document file not found")
	}

	body, err := s.storage.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	name := path.Base(key)
	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &DocumentContent{Filename: name, ContentType: contentType, Body: body}, nil
}

// notify emails the applicant after a committed transition; failures are logged only
func (s *ReviewService) notify(ctx context.Context, id string, n Notification) {
	personal, err := s.repo.FindPersonalInfo(ctx, id)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Failed to load applicant for notification", zap.String("registration_id", id), zap.Error(err))
		}
		return
	}
	if personal.Email == "" {
		return
	}
	n.To = personal.Email
	n.Name = personal.FullName()
	n.RegistrationID = id
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Warn("Failed to notify applicant",
			zap.String("registration_id", id),
			zap.String("outcome", string(n.Outcome)),
			zap.Error(err))
	}
}

func (s *ReviewService) startDecisionSpan(ctx context.Context, method, id, reviewer string) (context.Context, trace.Span) {
	ctx, span := telemetry.StartServiceSpan(ctx, "review", method)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrRegistrationID, id,
		telemetry.SpanAttrReviewer, reviewer,
	)
	return ctx, span
}

func endDecisionSpan(span trace.Span, outcome Outcome) {
	telemetry.SetAttribute(span, telemetry.SpanAttrOutcome, string(outcome))
	telemetry.SetOK(span)
}

func reviewerOf(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return registration.DefaultReviewer
}

package registration_test

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	regapp "github.com/ippis/backend/internal/application/registration"
	"github.com/ippis/backend/internal/domain/registration"
	"github.com/ippis/backend/internal/domain/shared"
	"github.com/ippis/backend/internal/infrastructure/persistence"
	"github.com/ippis/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type stubVerifier struct{}

func (stubVerifier) VerifyNIN(_ context.Context, nin string) (*registration.VerificationResult, error) {
	if nin == "00000000000" {
		return &registration.VerificationResult{Message: "NIN verification failed"}, nil
	}
	if nin == "99999999999" {
		return nil, shared.ErrProviderTimeout
	}
	return &registration.VerificationResult{
		Verified: true,
		Message:  "Verification successful",
		Data:     map[string]any{"surname": "Okafor", "firstname": "Chinedu"},
	}, nil
}

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (s *memStorage) Store(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return "https://files.test/" + key, nil
}

func (s *memStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *memStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type scenario struct {
	db       *gorm.DB
	repo     *persistence.GormRegistrationRepository
	workflow *regapp.WorkflowService
	review   *regapp.ReviewService
}

func newScenario(t *testing.T) *scenario {
	t.Helper()
	d, err := persistence.Open(sqlite.Open(":memory:"))
	require.NoError(t, err)
	sqlDB, err := d.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = d.Close() })
	require.NoError(t, d.DB.AutoMigrate(models.AllModels()...))

	repo := persistence.NewGormRegistrationRepository(d.DB)
	scope := persistence.NewGormTransactionScope(d.DB)
	storage := &memStorage{objects: map[string][]byte{}}
	return &scenario{
		db:       d.DB,
		repo:     repo,
		workflow: regapp.NewWorkflowService(repo, scope, stubVerifier{}, storage, zap.NewNop()),
		review:   regapp.NewReviewService(repo, scope, zap.NewNop()),
	}
}

func (s *scenario) submitted(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	reg, err := s.workflow.Create(ctx)
	require.NoError(t, err)
	id := reg.RegistrationID

	v, err := s.workflow.SaveVerification(ctx, id, regapp.VerificationRequest{NIN: "12345678901"})
	require.NoError(t, err)
	require.True(t, v.Verified)

	_, err = s.workflow.SavePersonalInfo(ctx, id, registration.PersonalInfo{
		Title:                   "Mr",
		Surname:                 "Okafor",
		FirstName:               "Chinedu",
		PhoneNumber:             "08031234567",
		Email:                   "chinedu.okafor@example.com",
		DateOfBirth:             "15-05-1990",
		Sex:                     "male",
		StateOfOrigin:           "Anambra",
		LGA:                     "Awka South",
		StateOfResidence:        "FCT",
		AddressStateOfResidence: "12 Garki Road, Abuja",
		NextOfKinName:           "Ngozi Okafor",
		NextOfKinRelationship:   "Spouse",
		NextOfKinPhoneNumber:    "08037654321",
		NextOfKinAddress:        "12 Garki Road, Abuja",
	})
	require.NoError(t, err)

	_, err = s.workflow.SaveEmploymentInfo(ctx, id, registration.EmploymentInfo{
		EmploymentIDNo:         "EMPNO-001",
		ServiceNo:              "SVC-42",
		FileNo:                 "F-9",
		RankPosition:           "Senior Officer",
		Department:             "Finance",
		Organization:           "Federal Ministry of Finance",
		EmploymentType:         "Permanent",
		WorkLocation:           "Abuja",
		DateOfFirstAppointment: "2015-01-05",
		GL:                     "08",
		Step:                   "3",
		SalaryStructure:        "CONPSS",
		Cadre:                  "Administrative",
		NameOfBank:             "First Bank",
		AccountNumber:          "0123456789",
		PFAName:                "ARM Pensions",
		RSAPIN:                 "PEN100200300400",
	})
	require.NoError(t, err)

	_, err = s.workflow.SaveDocuments(ctx, id, []regapp.DocumentFile{
		pdf(registration.DocAppointmentLetter),
		pdf(registration.DocEducationalCertificates),
	})
	require.NoError(t, err)

	sub, err := s.workflow.Submit(ctx, id, true)
	require.NoError(t, err)
	require.Equal(t, string(registration.StatusPendingApproval), sub.Status)
	return id
}

func pdf(kind registration.DocumentKind) regapp.DocumentFile {
	body := []byte("%PDF-1.4 test")
	return regapp.DocumentFile{
		Kind:        kind,
		Filename:    string(kind) + ".pdf",
		ContentType: "application/pdf",
		Size:        int64(len(body)),
		Body:        bytes.NewReader(body),
	}
}

func historyActions(t *testing.T, s *scenario, id string) []registration.Action {
	t.Helper()
	entries, err := s.repo.ListHistory(context.Background(), id)
	require.NoError(t, err)
	actions := make([]registration.Action, len(entries))
	for i, e := range entries {
		actions[i] = e.Action
	}
	return actions
}

func TestScenario_HappyPath(t *testing.T) {
	ctx := context.Background()
	s := newScenario(t)
	id := s.submitted(t)

	decision, err := s.review.Approve(ctx, id, regapp.DecisionRequest{Comment: "All good", Reviewer: "reviewer-1"})
	require.NoError(t, err)
	assert.Equal(t, string(registration.StatusApproved), decision.Status)
	assert.Equal(t, "EMP00001", decision.EmployeeID)

	assert.Equal(t, []registration.Action{
		registration.ActionCreated,
		registration.ActionPersonalInfoSaved,
		registration.ActionEmploymentInfoSaved,
		registration.ActionDocumentsUploaded,
		registration.ActionSubmitted,
		registration.ActionApproved,
	}, historyActions(t, s, id))

	status, err := s.workflow.GetStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "1990-05-15", status.PersonalInfo.DateOfBirth)
	assert.Equal(t, registration.SexMale, status.PersonalInfo.Sex)
	require.Len(t, status.Comments, 1)
	assert.Equal(t, "reviewer-1", status.Comments[0].Author)

	var employees int64
	require.NoError(t, s.db.Table("employees").Count(&employees).Error)
	assert.Equal(t, int64(1), employees)

	// A second decision on the same registration is refused
	_, err = s.review.Approve(ctx, id, regapp.DecisionRequest{})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	_, err = s.review.Reject(ctx, id, regapp.DecisionRequest{Comment: "too late"})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	require.NoError(t, s.db.Table("employees").Count(&employees).Error)
	assert.Equal(t, int64(1), employees)
}

func TestScenario_Reject(t *testing.T) {
	ctx := context.Background()
	s := newScenario(t)
	id := s.submitted(t)

	_, err := s.review.Reject(ctx, id, regapp.DecisionRequest{Comment: "   "})
	assert.ErrorIs(t, err, shared.ErrCommentRequired)

	decision, err := s.review.Reject(ctx, id, regapp.DecisionRequest{Comment: "Certificate is illegible"})
	require.NoError(t, err)
	assert.Equal(t, string(registration.StatusRejected), decision.Status)

	actions := historyActions(t, s, id)
	assert.Equal(t, registration.ActionRejected, actions[len(actions)-1])

	_, err = s.review.Approve(ctx, id, regapp.DecisionRequest{})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	var employees int64
	require.NoError(t, s.db.Table("employees").Count(&employees).Error)
	assert.Zero(t, employees)
}

func TestScenario_RejectDocument(t *testing.T) {
	ctx := context.Background()
	s := newScenario(t)
	id := s.submitted(t)

	pending, err := s.review.ListPendingDocuments(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, pending.Items, 1)
	assert.Equal(t, "Mr Chinedu Okafor", pending.Items[0].ApplicantName)

	decision, err := s.review.RejectDocument(ctx, pending.Items[0].ID, regapp.DecisionRequest{Comment: "Blurry scan"})
	require.NoError(t, err)
	assert.Equal(t, id, decision.RegistrationID)
	assert.Equal(t, string(registration.StatusRejected), decision.Status)
	assert.Equal(t, string(registration.DocumentStatusRejected), decision.DocumentStatus)

	pending, err = s.review.ListPendingDocuments(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Empty(t, pending.Items)
}

func TestScenario_ApproveRollsBackWithoutPersonalInfo(t *testing.T) {
	ctx := context.Background()
	s := newScenario(t)

	reg, err := registration.NewImportedRegistration("IPPIS-555555-5555", "")
	require.NoError(t, err)
	require.NoError(t, s.repo.Create(ctx, reg))

	_, err = s.review.Approve(ctx, reg.RegistrationID, regapp.DecisionRequest{})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	stored, err := s.repo.FindByID(ctx, reg.RegistrationID)
	require.NoError(t, err)
	assert.Equal(t, registration.StatusPendingApproval, stored.Status)
	assert.Empty(t, historyActions(t, s, reg.RegistrationID))
}

func TestScenario_UnverifiedNINStaysOnVerification(t *testing.T) {
	ctx := context.Background()
	s := newScenario(t)

	reg, err := s.workflow.Create(ctx)
	require.NoError(t, err)

	v, err := s.workflow.SaveVerification(ctx, reg.RegistrationID, regapp.VerificationRequest{NIN: "00000000000"})
	require.NoError(t, err)
	assert.False(t, v.Verified)
	assert.Equal(t, string(registration.StepVerification), v.CurrentStep)

	_, err = s.workflow.Prefill(ctx, reg.RegistrationID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = s.workflow.GetStatus(ctx, "IPPIS-000000-0000")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestScenario_FailedReverifyKeepsVerifiedIdentity(t *testing.T) {
	ctx := context.Background()
	s := newScenario(t)

	reg, err := s.workflow.Create(ctx)
	require.NoError(t, err)
	id := reg.RegistrationID

	v, err := s.workflow.SaveVerification(ctx, id, regapp.VerificationRequest{NIN: "12345678901"})
	require.NoError(t, err)
	require.True(t, v.Verified)

	prefill, err := s.workflow.Prefill(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Okafor", prefill["surname"])

	_, err = s.workflow.SaveVerification(ctx, id, regapp.VerificationRequest{NIN: "99999999999"})
	assert.ErrorIs(t, err, shared.ErrProviderTimeout)

	v, err = s.workflow.SaveVerification(ctx, id, regapp.VerificationRequest{NIN: "00000000000"})
	require.NoError(t, err)
	assert.False(t, v.Verified)
	assert.Equal(t, string(registration.StepPersonalInfo), v.CurrentStep)

	prefill, err = s.workflow.Prefill(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Okafor", prefill["surname"])

	stored, err := s.repo.FindVerification(ctx, id)
	require.NoError(t, err)
	assert.True(t, stored.NINVerified)
	assert.Equal(t, "12345678901", stored.NIN)
}

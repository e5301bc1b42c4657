package importer

import (
	"context"
	"strings"
	"testing"

	regapp "github.com/ippis/backend/internal/application/registration"
	"github.com/ippis/backend/internal/domain/employee"
	"github.com/ippis/backend/internal/domain/registration"
	"github.com/ippis/backend/internal/domain/shared"
	"github.com/ippis/backend/internal/infrastructure/csvimport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockRegistrationRepository mocks the registration.Repository methods used by imports
type MockRegistrationRepository struct {
	registration.Repository
	mock.Mock
}

func (m *MockRegistrationRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockRegistrationRepository) Create(ctx context.Context, r *registration.Registration) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRegistrationRepository) SavePersonalInfo(ctx context.Context, p *registration.PersonalInfo) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRegistrationRepository) SaveEmploymentInfo(ctx context.Context, e *registration.EmploymentInfo) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockRegistrationRepository) AppendHistory(ctx context.Context, h *registration.HistoryEntry) error {
	return m.Called(ctx, h).Error(0)
}

type mockScope struct {
	regs *MockRegistrationRepository
}

func (s *mockScope) Execute(_ context.Context, fn func(regapp.TransactionalRepositories) error) error {
	return fn(s)
}

func (s *mockScope) Registrations() registration.Repository { return s.regs }
func (s *mockScope) Employees() employee.Repository         { return nil }

const sampleCSV = `Last Name,Given Name,Email Address,Phone,Rank,Department,DOB,Gender,GL,Staff Code
Bello,Amina,amina@example.com,08030000000,Nurse,Health,1990-01-31,female,8,H-001
Okafor,Chinedu,CHINEDU@example.com,,Driver,Transport,,MALE,,T-002
Eze,,eze@example.com,0803-1,Clerk,Works,31/12/1990,M,18,W-003
Musa,Ibrahim,amina@EXAMPLE.com,,Clerk,Works,,,,W-004
Ade,Tolu,taken@example.com,,Clerk,Works,,,,W-005
`

func newImportFixture() (*MockRegistrationRepository, *RegistrationImportService) {
	regs := new(MockRegistrationRepository)
	svc := NewRegistrationImportService(regs, &mockScope{regs: regs}, nil, zap.NewNop())
	return regs, svc
}

func TestRegistrationImportService_Validate(t *testing.T) {
	ctx := context.Background()
	regs, svc := newImportFixture()
	regs.On("EmailExists", ctx, "amina@example.com").Return(false, nil)
	regs.On("EmailExists", ctx, "chinedu@example.com").Return(false, nil)
	regs.On("EmailExists", ctx, "taken@example.com").Return(true, nil)

	result, err := svc.Validate(ctx, strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, 5, result.TotalRows)
	assert.Equal(t, 2, result.ValidRows)
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, 0, result.Imported)

	byRow := map[int][]string{}
	for _, e := range result.Errors {
		byRow[e.Row] = append(byRow[e.Row], e.Code)
	}
	assert.ElementsMatch(t, []string{
		csvimport.ErrCodeImportRequiredField,
		csvimport.ErrCodeImportInvalidLength,
		csvimport.ErrCodeImportPatternMismatch,
		csvimport.ErrCodeImportInvalidType,
		csvimport.ErrCodeImportValidation,
		csvimport.ErrCodeImportInvalidRange,
	}, byRow[4])
	assert.Equal(t, []string{csvimport.ErrCodeImportDuplicateInFile}, byRow[5])
	assert.Equal(t, []string{csvimport.ErrCodeImportDuplicateInDB}, byRow[6])
	regs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegistrationImportService_Import(t *testing.T) {
	ctx := context.Background()
	regs, svc := newImportFixture()
	regs.On("EmailExists", ctx, mock.Anything).Return(false, nil)
	regs.On("Create", ctx, mock.MatchedBy(func(r *registration.Registration) bool {
		return r.Source == registration.SourceImport &&
			r.Status == registration.StatusPendingApproval &&
			r.CurrentStep == registration.StepSubmitted &&
			strings.Contains(r.Metadata, `"Staff Code"`)
	})).Return(nil)
	regs.On("SavePersonalInfo", ctx, mock.MatchedBy(func(p *registration.PersonalInfo) bool {
		return p.Title == "N/A" && p.Email == strings.ToLower(p.Email) && (p.Sex == "FEMALE" || p.Sex == "MALE")
	})).Return(nil)
	regs.On("SaveEmploymentInfo", ctx, mock.Anything).Return(nil)
	regs.On("AppendHistory", ctx, mock.MatchedBy(func(h *registration.HistoryEntry) bool {
		return h.PerformedBy == registration.PerformerSystem
	})).Return(nil)

	csv := strings.Join(strings.Split(sampleCSV, "\n")[:3], "\n")
	result, err := svc.Import(ctx, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Len(t, result.RegistrationIDs, 2)
	assert.Empty(t, result.Errors)
	regs.AssertNumberOfCalls(t, "AppendHistory", 4)
}

func TestRegistrationImportService_ImportAbortKeepsCommittedRows(t *testing.T) {
	ctx := context.Background()
	regs, svc := newImportFixture()
	dbDown := shared.ErrPersistence.WithMessage("connection reset")
	regs.On("EmailExists", ctx, mock.Anything).Return(false, nil)
	regs.On("Create", ctx, mock.Anything).Return(nil).Once()
	regs.On("Create", ctx, mock.Anything).Return(dbDown).Once()
	regs.On("SavePersonalInfo", ctx, mock.Anything).Return(nil)
	regs.On("SaveEmploymentInfo", ctx, mock.Anything).Return(nil)
	regs.On("AppendHistory", ctx, mock.Anything).Return(nil)

	csv := strings.Join(strings.Split(sampleCSV, "\n")[:3], "\n")
	result, err := svc.Import(ctx, strings.NewReader(csv))
	assert.ErrorIs(t, err, shared.ErrPersistence)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.Imported)
	assert.Len(t, result.RegistrationIDs, 1)
	assert.Equal(t, 3, result.FailedRow)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Equal(t, csvimport.ErrCodeImportFailed, result.Errors[0].Code)
}

func TestRegistrationImportService_FileErrors(t *testing.T) {
	ctx := context.Background()
	_, svc := newImportFixture()

	_, err := svc.Validate(ctx, strings.NewReader(""))
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Validate(ctx, strings.NewReader("surname,firstname\nBello,Amina\n"))
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	require.Len(t, de.Details, 1)
	assert.Equal(t, ColEmail, de.Details[0].Field)
}

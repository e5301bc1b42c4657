package registration

import (
	"context"
	"io"

	"github.com/ippis/backend/internal/domain/employee"
	"github.com/ippis/backend/internal/domain/registration"
	"github.com/ippis/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockRegistrationRepository is a mock implementation of registration.Repository
type MockRegistrationRepository struct {
	mock.Mock
}

func (m *MockRegistrationRepository) Create(ctx context.Context, r *registration.Registration) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRegistrationRepository) FindByID(ctx context.Context, id string) (*registration.Registration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registration.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) FindLatestByEmail(ctx context.Context, email string) (*registration.Registration, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registration.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) Update(ctx context.Context, r *registration.Registration) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRegistrationRepository) UpdateStatus(ctx context.Context, r *registration.Registration, expected registration.Status) error {
	return m.Called(ctx, r, expected).Error(0)
}

func (m *MockRegistrationRepository) List(ctx context.Context, status registration.Status, filter shared.Filter) ([]registration.Registration, int64, error) {
	args := m.Called(ctx, status, filter)
	return args.Get(0).([]registration.Registration), args.Get(1).(int64), args.Error(2)
}

func (m *MockRegistrationRepository) CountByStatus(ctx context.Context) (map[registration.Status]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[registration.Status]int64), args.Error(1)
}

func (m *MockRegistrationRepository) SavePersonalInfo(ctx context.Context, info *registration.PersonalInfo) error {
	return m.Called(ctx, info).Error(0)
}

func (m *MockRegistrationRepository) FindPersonalInfo(ctx context.Context, id string) (*registration.PersonalInfo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registration.PersonalInfo), args.Error(1)
}

func (m *MockRegistrationRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockRegistrationRepository) SaveEmploymentInfo(ctx context.Context, info *registration.EmploymentInfo) error {
	return m.Called(ctx, info).Error(0)
}

func (m *MockRegistrationRepository) FindEmploymentInfo(ctx context.Context, id string) (*registration.EmploymentInfo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registration.EmploymentInfo), args.Error(1)
}

func (m *MockRegistrationRepository) SaveDocuments(ctx context.Context, docs *registration.DocumentUploads) error {
	return m.Called(ctx, docs).Error(0)
}

func (m *MockRegistrationRepository) FindDocuments(ctx context.Context, id string) (*registration.DocumentUploads, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registration.DocumentUploads), args.Error(1)
}

func (m *MockRegistrationRepository) FindDocumentsByID(ctx context.Context, id uint64) (*registration.DocumentUploads, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registration.DocumentUploads), args.Error(1)
}

func (m *MockRegistrationRepository) ListPendingDocuments(ctx context.Context, filter shared.Filter) ([]registration.PendingDocument, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]registration.PendingDocument), args.Get(1).(int64), args.Error(2)
}

func (m *MockRegistrationRepository) CountDocumentsByStatus(ctx context.Context) (map[registration.DocumentStatus]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[registration.DocumentStatus]int64), args.Error(1)
}

func (m *MockRegistrationRepository) SaveVerification(ctx context.Context, v *registration.VerificationData) error {
	return m.Called(ctx, v).Error(0)
}

func (m *MockRegistrationRepository) FindVerification(ctx context.Context, id string) (*registration.VerificationData, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registration.VerificationData), args.Error(1)
}

func (m *MockRegistrationRepository) AppendHistory(ctx context.Context, entry *registration.HistoryEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockRegistrationRepository) ListHistory(ctx context.Context, id string) ([]registration.HistoryEntry, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]registration.HistoryEntry), args.Error(1)
}

func (m *MockRegistrationRepository) AddComment(ctx context.Context, c *registration.Comment) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockRegistrationRepository) ListComments(ctx context.Context, id string) ([]registration.Comment, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]registration.Comment), args.Error(1)
}

// MockEmployeeRepository is a mock implementation of employee.Repository
type MockEmployeeRepository struct {
	mock.Mock
}

func (m *MockEmployeeRepository) Create(ctx context.Context, e *employee.Employee) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockEmployeeRepository) MaxSequence(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockEmployeeRepository) FindByEmployeeID(ctx context.Context, id string) (*employee.Employee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*employee.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) FindByRegistrationID(ctx context.Context, id string) (*employee.Employee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*employee.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) List(ctx context.Context, filter shared.Filter) ([]employee.Employee, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]employee.Employee), args.Get(1).(int64), args.Error(2)
}

func (m *MockEmployeeRepository) CountByStatus(ctx context.Context) (map[employee.Status]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[employee.Status]int64), args.Error(1)
}

// mockTransactionScope runs fn directly against the mock repositories
type mockTransactionScope struct {
	regs      *MockRegistrationRepository
	employees *MockEmployeeRepository
}

func (s *mockTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *mockTransactionScope) Registrations() registration.Repository { return s.regs }
func (s *mockTransactionScope) Employees() employee.Repository         { return s.employees }

// MockVerifier is a mock implementation of Verifier
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) VerifyNIN(ctx context.Context, nin string) (*registration.VerificationResult, error) {
	args := m.Called(ctx, nin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registration.VerificationResult), args.Error(1)
}

// MockDocumentStorage is a mock implementation of DocumentStorage
type MockDocumentStorage struct {
	mock.Mock
}

func (m *MockDocumentStorage) Store(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, key, body, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockDocumentStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, n Notification) error {
	return m.Called(ctx, n).Error(0)
}

package employee

import (
	"context"
	"testing"

	"github.com/ippis/backend/internal/domain/employee"
	"github.com/ippis/backend/internal/domain/registration"
	"github.com/ippis/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

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

// MockRegistrationCounts mocks the counting methods of registration.Repository.
// Other methods are not used by EmployeeService and panic through the nil embedded interface.
type MockRegistrationCounts struct {
	registration.Repository
	mock.Mock
}

func (m *MockRegistrationCounts) CountByStatus(ctx context.Context) (map[registration.Status]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[registration.Status]int64), args.Error(1)
}

func (m *MockRegistrationCounts) CountDocumentsByStatus(ctx context.Context) (map[registration.DocumentStatus]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[registration.DocumentStatus]int64), args.Error(1)
}

func TestEmployeeService_List(t *testing.T) {
	ctx := context.Background()
	employees := new(MockEmployeeRepository)
	svc := NewEmployeeService(employees, new(MockRegistrationCounts), zap.NewNop())

	employees.On("List", ctx, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Page == 2 && f.PageSize == 10 && f.Search == "bello" && f.Filters["status"] == employee.StatusActive
	})).Return([]employee.Employee{
		{EmployeeID: "EMP00011", Name: "Dr Amina Bello", Status: employee.StatusActive},
	}, int64(11), nil)

	page, err := svc.List(ctx, "Active", shared.Filter{Page: 2, PageSize: 10, Search: "bello"})
	require.NoError(t, err)
	assert.Equal(t, int64(11), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "EMP00011", page.Items[0].EmployeeID)

	_, err = svc.List(ctx, "retired", shared.Filter{})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestEmployeeService_Get(t *testing.T) {
	ctx := context.Background()
	employees := new(MockEmployeeRepository)
	svc := NewEmployeeService(employees, new(MockRegistrationCounts), zap.NewNop())

	employees.On("FindByEmployeeID", ctx, "EMP00003").Return(&employee.Employee{EmployeeID: "EMP00003", JoinDate: "2020-01-01"}, nil)
	employees.On("FindByEmployeeID", ctx, "EMP99999").Return(nil, shared.ErrNotFound)

	resp, err := svc.Get(ctx, " emp00003 ")
	require.NoError(t, err)
	assert.Equal(t, "2020-01-01", resp.JoinDate)

	_, err = svc.Get(ctx, "EMP99999")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestEmployeeService_DashboardStats(t *testing.T) {
	ctx := context.Background()
	employees := new(MockEmployeeRepository)
	registrations := new(MockRegistrationCounts)
	svc := NewEmployeeService(employees, registrations, zap.NewNop())

	employees.On("CountByStatus", ctx).Return(map[employee.Status]int64{
		employee.StatusActive:   8,
		employee.StatusInactive: 2,
	}, nil)
	registrations.On("CountByStatus", ctx).Return(map[registration.Status]int64{
		registration.StatusDraft:           4,
		registration.StatusPendingApproval: 3,
	}, nil)
	registrations.On("CountDocumentsByStatus", ctx).Return(map[registration.DocumentStatus]int64{
		registration.DocumentStatusPending:  5,
		registration.DocumentStatusApproved: 6,
		registration.DocumentStatusRejected: 1,
	}, nil)

	stats, err := svc.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &DashboardStats{
		TotalEmployees:       10,
		ActiveEmployees:      8,
		PendingRegistrations: 3,
		PendingDocuments:     5,
		VerifiedDocuments:    6,
		RejectedDocuments:    1,
	}, stats)
}

package employee

import (
	"context"
	"strings"
	"time"

	"github.com/ippis/backend/internal/domain/employee"
	"github.com/ippis/backend/internal/domain/registration"
	"github.com/ippis/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// EmployeeResponse is the view of an employee record
type EmployeeResponse struct {
	EmployeeID     string    `json:"employee_id"`
	RegistrationID string    `json:"registration_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Department     string    `json:"department"`
	Position       string    `json:"position"`
	Status         string    `json:"status"`
	JoinDate       string    `json:"join_date"`
	CreatedAt      time.Time `json:"created_at"`
}

// DashboardStats summarizes employees, registrations and document reviews
type DashboardStats struct {
	TotalEmployees       int64 `json:"total_employees"`
	ActiveEmployees      int64 `json:"active_employees"`
	PendingRegistrations int64 `json:"pending_registrations"`
	PendingDocuments     int64 `json:"pending_documents"`
	VerifiedDocuments    int64 `json:"verified_documents"`
	RejectedDocuments    int64 `json:"rejected_documents"`
}

// EmployeeService provides read access to employee records
type EmployeeService struct {
	employees     employee.Repository
	registrations registration.Repository
	logger        *zap.Logger
}

// NewEmployeeService creates a new EmployeeService
func NewEmployeeService(employees employee.Repository, registrations registration.Repository, logger *zap.Logger) *EmployeeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{
		employees:     employees,
		registrations: registrations,
		logger:        logger,
	}
}

// List returns a page of employees; status narrows by employee status when set
func (s *EmployeeService) List(ctx context.Context, status string, filter shared.Filter) (shared.Paginated[EmployeeResponse], error) {
	filter.Normalize()
	if status = strings.ToLower(strings.TrimSpace(status)); status != "" {
		st := employee.Status(status)
		if st != employee.StatusActive && st != employee.StatusInactive {
			return shared.Paginated[EmployeeResponse]{}, shared.NewValidationError(
				shared.FieldError{Field: "status", Message: "status must be one of: active inactive"})
		}
		if filter.Filters == nil {
			filter.Filters = make(map[string]any)
		}
		filter.Filters["status"] = st
	}

	items, total, err := s.employees.List(ctx, filter)
	if err != nil {
		return shared.Paginated[EmployeeResponse]{}, err
	}
	out := make([]EmployeeResponse, len(items))
	for i := range items {
		out[i] = toResponse(&items[i])
	}
	return shared.NewPaginated(out, total, filter.Page, filter.PageSize), nil
}

// Get returns one employee by employee id
func (s *EmployeeService) Get(ctx context.Context, employeeID string) (*EmployeeResponse, error) {
	e, err := s.employees.FindByEmployeeID(ctx, strings.ToUpper(strings.TrimSpace(employeeID)))
	if err != nil {
		return nil, err
	}
	resp := toResponse(e)
	return &resp, nil
}

// DashboardStats aggregates the counters shown on the admin dashboard
func (s *EmployeeService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	byEmployee, err := s.employees.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byRegistration, err := s.registrations.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byDocument, err := s.registrations.CountDocumentsByStatus(ctx)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		ActiveEmployees:      byEmployee[employee.StatusActive],
		PendingRegistrations: byRegistration[registration.StatusPendingApproval],
		PendingDocuments:     byDocument[registration.DocumentStatusPending],
		VerifiedDocuments:    byDocument[registration.DocumentStatusApproved],
		RejectedDocuments:    byDocument[registration.DocumentStatusRejected],
	}
	for _, n := range byEmployee {
		stats.TotalEmployees += n
	}
	s.logger.Debug("Dashboard stats computed", zap.Int64("total_employees", stats.TotalEmployees))
	return stats, nil
}

func toResponse(e *employee.Employee) EmployeeResponse {
	return EmployeeResponse{
		EmployeeID:     e.EmployeeID,
		RegistrationID: e.RegistrationID,
		Name:           e.Name,
		Email:          e.Email,
		Phone:          e.Phone,
		Department:     e.Department,
		Position:       e.Position,
		Status:         string(e.Status),
		JoinDate:       e.JoinDate,
		CreatedAt:      e.CreatedAt,
	}
}

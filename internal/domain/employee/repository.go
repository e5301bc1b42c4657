package employee

import (
	"context"

	"github.com/ippis/backend/internal/domain/shared"
)

// Repository defines the interface for employee persistence
type Repository interface {
	// Create inserts an employee; a duplicate employee_id or registration_id yields shared.ErrConflict
	Create(ctx context.Context, e *Employee) error

	// MaxSequence returns the highest numeric employee id suffix in use, or 0
	MaxSequence(ctx context.Context) (int, error)

	// FindByEmployeeID finds an employee by employee id
	FindByEmployeeID(ctx context.Context, employeeID string) (*Employee, error)

	// FindByRegistrationID finds the employee created from a registration
	FindByRegistrationID(ctx context.Context, registrationID string) (*Employee, error)

	// List finds employees matching the filter; Search matches name or email, Filters["status"] narrows by status
	List(ctx context.Context, filter shared.Filter) ([]Employee, int64, error)

	// CountByStatus counts employees per status
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}

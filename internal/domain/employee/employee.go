package employee

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ippis/backend/internal/domain/registration"
	"github.com/ippis/backend/internal/domain/shared"
)

// Status represents the status of an employee record
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// IDPrefix prefixes every generated employee id
const IDPrefix = "EMP"

// Employee is a confirmed personnel record created from an approved registration
type Employee struct {
	ID             uint64
	EmployeeID     string
	RegistrationID string
	Name           string
	Email          string
	Phone          string
	Department     string
	Position       string
	Status         Status
	JoinDate       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FormatID renders a sequence number as EMP followed by five zero-padded digits
func FormatID(seq int) string {
	return fmt.Sprintf("%s%05d", IDPrefix, seq)
}

// ParseSequence extracts the numeric suffix of an employee id
func ParseSequence(employeeID string) (int, bool) {
	if !strings.HasPrefix(employeeID, IDPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(employeeID, IDPrefix))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// NextID returns the id following the highest sequence currently in use
func NextID(maxSeq int) string {
	return FormatID(maxSeq + 1)
}

// NewFromRegistration snapshots personal and employment info into a new active employee.
// Employment info is optional; imported registrations may not carry it.
func NewFromRegistration(employeeID, registrationID string, p *registration.PersonalInfo, e *registration.EmploymentInfo) (*Employee, error) {
	if p == nil {
		return nil, shared.ErrInvalidState.WithMessage("Registration has no personal information")
	}
	if _, ok := ParseSequence(employeeID); !ok {
		return nil, shared.NewValidationError(shared.FieldError{Field: "employee_id", Message: "employee_id is invalid"})
	}

	now := time.Now()
	emp := &Employee{
		EmployeeID:     employeeID,
		RegistrationID: registrationID,
		Name:           p.FullName(),
		Email:          p.Email,
		Phone:          p.PhoneNumber,
		Status:         StatusActive,
		JoinDate:       now.Format("2006-01-02"),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if e != nil {
		emp.Department = e.Department
		emp.Position = e.RankPosition
		if e.DateOfFirstAppointment != "" {
			emp.JoinDate = e.DateOfFirstAppointment
		}
	}
	return emp, nil
}

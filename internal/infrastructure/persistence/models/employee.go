package models

import (
	"time"

	"github.com/ippis/backend/internal/domain/employee"
)

// EmployeeModel is the persistence model for the employees table
type EmployeeModel struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement"`
	EmployeeID     string    `gorm:"type:varchar(16);not null;uniqueIndex"`
	RegistrationID string    `gorm:"type:varchar(32);not null;uniqueIndex"`
	Name           string    `gorm:"type:varchar(300);not null"`
	Email          string    `gorm:"type:varchar(100)"`
	Phone          string    `gorm:"type:varchar(20)"`
	Department     string    `gorm:"type:varchar(100)"`
	Position       string    `gorm:"type:varchar(100)"`
	Status         string    `gorm:"type:varchar(16);not null;index"`
	JoinDate       string    `gorm:"type:varchar(10)"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (EmployeeModel) TableName() string {
	return "employees"
}

// ToDomain converts the persistence model to a domain Employee
func (m *EmployeeModel) ToDomain() *employee.Employee {
	return &employee.Employee{
		ID:             m.ID,
		EmployeeID:     m.EmployeeID,
		RegistrationID: m.RegistrationID,
		Name:           m.Name,
		Email:          m.Email,
		Phone:          m.Phone,
		Department:     m.Department,
		Position:       m.Position,
		Status:         employee.Status(m.Status),
		JoinDate:       m.JoinDate,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// EmployeeModelFromDomain creates a persistence model from a domain Employee
func EmployeeModelFromDomain(e *employee.Employee) *EmployeeModel {
	return &EmployeeModel{
		ID:             e.ID,
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
		UpdatedAt:      e.UpdatedAt,
	}
}

// AllModels lists every persistence model, in dependency order, for AutoMigrate in tests
func AllModels() []any {
	return []any{
		&RegistrationModel{},
		&PersonalInfoModel{},
		&EmploymentInfoModel{},
		&DocumentUploadModel{},
		&VerificationDataModel{},
		&HistoryModel{},
		&CommentModel{},
		&EmployeeModel{},
	}
}

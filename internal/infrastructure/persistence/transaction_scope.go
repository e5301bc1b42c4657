package persistence

import (
	"context"

	regapp "github.com/ippis/backend/internal/application/registration"
	"github.com/ippis/backend/internal/domain/employee"
	"github.com/ippis/backend/internal/domain/registration"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// Registration, satellite, history and employee writes inside one Execute commit together.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos regapp.TransactionalRepositories) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
	return translateError(err)
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Registrations returns the registration repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Registrations() registration.Repository {
	return NewGormRegistrationRepository(r.tx)
}

// Employees returns the employee repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Employees() employee.Repository {
	return NewGormEmployeeRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ regapp.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ regapp.TransactionalRepositories = (*gormTransactionalRepositories)(nil)

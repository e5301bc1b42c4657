package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ippis/backend/internal/domain/employee"
	"github.com/ippis/backend/internal/domain/shared"
	"github.com/ippis/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormEmployeeRepository implements employee.Repository using GORM
type GormEmployeeRepository struct {
	db *gorm.DB
}

// NewGormEmployeeRepository creates a new GormEmployeeRepository
func NewGormEmployeeRepository(db *gorm.DB) *GormEmployeeRepository {
	return &GormEmployeeRepository{db: db}
}

// Create inserts an employee; unique employee_id and registration_id violations become shared.ErrConflict
func (r *GormEmployeeRepository) Create(ctx context.Context, e *employee.Employee) error {
	now := time.Now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	m := models.EmployeeModelFromDomain(e)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	e.ID = m.ID
	return nil
}

// MaxSequence returns the highest numeric suffix among EMP ids, or 0 when none exist
func (r *GormEmployeeRepository) MaxSequence(ctx context.Context) (int, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&models.EmployeeModel{}).
		Where("employee_id LIKE ?", employee.IDPrefix+"%").
		Pluck("employee_id", &ids).Error; err != nil {
		return 0, translateError(err)
	}
	maxSeq := 0
	for _, id := range ids {
		if n, ok := employee.ParseSequence(id); ok && n > maxSeq {
			maxSeq = n
		}
	}
	return maxSeq, nil
}

// FindByEmployeeID finds an employee by employee id
func (r *GormEmployeeRepository) FindByEmployeeID(ctx context.Context, employeeID string) (*employee.Employee, error) {
	return r.findOne(ctx, "employee_id = ?", employeeID)
}

// FindByRegistrationID finds the employee created from a registration
func (r *GormEmployeeRepository) FindByRegistrationID(ctx context.Context, registrationID string) (*employee.Employee, error) {
	return r.findOne(ctx, "registration_id = ?", registrationID)
}

func (r *GormEmployeeRepository) findOne(ctx context.Context, cond string, arg any) (*employee.Employee, error) {
	var m models.EmployeeModel
	if err := r.db.WithContext(ctx).Where(cond, arg).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Employee")
		}
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// List finds employees, newest first unless the filter sorts otherwise
func (r *GormEmployeeRepository) List(ctx context.Context, filter shared.Filter) ([]employee.Employee, int64, error) {
	filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.EmployeeModel{})
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(employee_id) LIKE ?", like, like, like)
	}
	if status, ok := filter.Filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	var rows []models.EmployeeModel
	if err := query.Order(orderClause(filter.OrderBy, filter.OrderDir, EmployeeSortFields, "created_at", "DESC")).
		Order("id DESC").
		Offset(filter.Offset()).Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, translateError(err)
	}

	employees := make([]employee.Employee, len(rows))
	for i := range rows {
		employees[i] = *rows[i].ToDomain()
	}
	return employees, total, nil
}

// CountByStatus counts employees per status
func (r *GormEmployeeRepository) CountByStatus(ctx context.Context) (map[employee.Status]int64, error) {
	var rows []statusCount
	if err := r.db.WithContext(ctx).Model(&models.EmployeeModel{}).
		Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	counts := make(map[employee.Status]int64, len(rows))
	for _, row := range rows {
		counts[employee.Status(row.Status)] = row.Count
	}
	return counts, nil
}

// Ensure GormEmployeeRepository implements employee.Repository
var _ employee.Repository = (*GormEmployeeRepository)(nil)

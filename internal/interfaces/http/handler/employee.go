package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	empapp "github.com/ippis/backend/internal/application/employee"
	"github.com/ippis/backend/internal/domain/shared"
	"github.com/ippis/backend/internal/interfaces/http/dto"
)

// EmployeeReader is the read side used by EmployeeHandler
type EmployeeReader interface {
	List(ctx context.Context, status string, filter shared.Filter) (shared.Paginated[empapp.EmployeeResponse], error)
	Get(ctx context.Context, employeeID string) (*empapp.EmployeeResponse, error)
	DashboardStats(ctx context.Context) (*empapp.DashboardStats, error)
}

var _ EmployeeReader = (*empapp.EmployeeService)(nil)

// EmployeeHandler serves employee records and the admin dashboard
type EmployeeHandler struct {
	BaseHandler
	employees EmployeeReader
}

// NewEmployeeHandler creates a new EmployeeHandler
func NewEmployeeHandler(employees EmployeeReader) *EmployeeHandler {
	return &EmployeeHandler{employees: employees}
}

// List returns a page of employees
//
// @ID           listEmployees
// @Summary      List employees
// @Tags         admin
// @Produce      json
// @Param        status query string false "Employee status"
// @Param        page query integer false "Page number"
// @Param        page_size query integer false "Page size"
// @Param        search query string false "Search term"
// @Success      200 {object} dto.Response{data=[]employee.EmployeeResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/employees [get]
func (h *EmployeeHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if !bindQuery(c, &req) {
		return
	}
	page, err := h.employees.List(c.Request.Context(), req.Status, req.Filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

// Get returns one employee by employee id
//
// @ID           getEmployee
// @Summary      Get an employee
// @Tags         admin
// @Produce      json
// @Param        employeeId path string true "Employee ID"
// @Success      200 {object} dto.Response{data=employee.EmployeeResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/employees/{employeeId} [get]
func (h *EmployeeHandler) Get(c *gin.Context) {
	emp, err := h.employees.Get(c.Request.Context(), c.Param("employeeId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, emp)
}

// DashboardStats returns the admin dashboard counters
//
// @ID           getDashboardStats
// @Summary      Get dashboard counters
// @Tags         admin
// @Produce      json
// @Success      200 {object} dto.Response{data=employee.DashboardStats}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/dashboard/stats [get]
func (h *EmployeeHandler) DashboardStats(c *gin.Context) {
	stats, err := h.employees.DashboardStats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

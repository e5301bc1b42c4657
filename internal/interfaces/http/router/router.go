// Package router assembles the versioned IPPIS API from route groups.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	_ "github.com/ippis/backend/docs"
	"github.com/ippis/backend/internal/interfaces/http/handler"
	"github.com/ippis/backend/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	apiDocs    bool
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithAPIDocs serves the Swagger UI and OpenAPI document under /swagger
func WithAPIDocs(enabled bool) RouterOption {
	return func(r *Router) {
		r.apiDocs = enabled
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup registers all routes under /api/<version>
func (r *Router) Setup() {
	if r.apiDocs {
		r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// DomainGroup collects the routes of one area of the API
type DomainGroup struct {
	name       string
	prefix     string
	routes     []route
	subgroups  []*DomainGroup
	middleware []gin.HandlerFunc
}

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a new route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware to this group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodGet, path, handlers)
}

// POST registers a POST route
func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPost, path, handlers)
}

func (dg *DomainGroup) handle(method, path string, handlers []gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, route{method: method, path: path, handlers: handlers})
	return dg
}

// Group creates a sub-group within this group
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	sub := NewDomainGroup(name, prefix)
	dg.subgroups = append(dg.subgroups, sub)
	return sub
}

// RegisterRoutes implements RouteRegistrar
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}
	for _, rt := range dg.routes {
		group.Handle(rt.method, rt.path, rt.handlers...)
	}
	for _, sub := range dg.subgroups {
		sub.RegisterRoutes(group)
	}
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}

// RegistrationRoutes builds the applicant-facing routes.
// lookup is applied in front of the stand-alone NIN lookup only.
func RegistrationRoutes(h *handler.RegistrationHandler, lookup ...gin.HandlerFunc) []RouteRegistrar {
	regs := NewDomainGroup("registrations", "/registrations").Use(middleware.SpanEnricher())
	regs.POST("", h.Create).
		GET("/track", h.Track).
		POST("/:id/verification", h.SaveVerification).
		POST("/:id/personal-info", h.SavePersonalInfo).
		POST("/:id/employment-info", h.SaveEmploymentInfo).
		POST("/:id/documents", h.SaveDocuments).
		POST("/:id/submit", h.Submit).
		GET("/:id/status", h.GetStatus).
		GET("/:id/prefill", h.Prefill)

	verifications := NewDomainGroup("verifications", "/verifications")
	verifications.POST("/nin", append(lookup, h.LookupNIN)...)

	return []RouteRegistrar{regs, verifications}
}

// AdminRoutes builds the reviewer-facing routes
func AdminRoutes(review *handler.ReviewHandler, employees *handler.EmployeeHandler, imports *handler.ImportHandler) RouteRegistrar {
	admin := NewDomainGroup("admin", "/admin").Use(middleware.SpanEnricher())

	admin.Group("registrations", "/registrations").
		GET("", review.ListRegistrations).
		POST("/:id/approve", review.Approve).
		POST("/:id/reject", review.Reject).
		POST("/:id/incomplete", review.FlagIncomplete).
		POST("/:id/documents/verify", review.VerifyDocument).
		GET("/:id/documents/:kind", review.GetDocument)

	admin.Group("documents", "/documents").
		GET("/pending", review.ListPendingDocuments).
		POST("/:documentId/reject", review.RejectDocument)

	admin.Group("employees", "/employees").
		GET("", employees.List).
		GET("/:employeeId", employees.Get)

	admin.GET("/dashboard/stats", employees.DashboardStats)

	admin.Group("import", "/import").
		POST("", imports.Import).
		POST("/validate", imports.Validate)

	return admin
}

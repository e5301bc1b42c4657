package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ippis/backend/internal/infrastructure/logger"
	"github.com/ippis/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// PingFunc checks a dependency
type PingFunc func(ctx context.Context) error

// HealthHandler reports liveness and database reachability
type HealthHandler struct {
	ping    PingFunc
	timeout time.Duration
}

// NewHealthHandler creates a HealthHandler around a database ping
func NewHealthHandler(ping PingFunc) *HealthHandler {
	return &HealthHandler{ping: ping, timeout: 2 * time.Second}
}

// Health answers GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.ping(ctx); err != nil {
		logger.FromContext(ctx).Error("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, dto.Response{
			Success: false,
			Data:    gin.H{"status": "unhealthy", "database": "unreachable"},
			Error:   &dto.ErrorInfo{Code: dto.ErrCodeUnavailable, Message: "Database unreachable"},
		})
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "healthy", "database": "ok"}))
}

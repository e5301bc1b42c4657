package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ippis/backend/internal/domain/shared"
	"github.com/ippis/backend/internal/infrastructure/logger"
	"github.com/ippis/backend/internal/interfaces/http/dto"
	"github.com/ippis/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

const genericErrorMessage = "An unexpected error occurred"

// BaseHandler provides common handler utilities
type BaseHandler struct {
	// HideInternalErrors replaces 5xx messages with a generic text
	HideInternalErrors bool
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMessage sends a success response with a message
func (h *BaseHandler) SuccessWithMessage(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, dto.NewMessageResponse(data, message))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest, message, middleware.GetRequestID(c)))
}

// HandleError converts an error into the envelope, deriving the status from the domain code
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	c.JSON(h.errorResponse(c, err))
}

// HandleErrorWithData writes the error response and attaches data, such as a partial result
func (h *BaseHandler) HandleErrorWithData(c *gin.Context, err error, data any) {
	status, resp := h.errorResponse(c, err)
	resp.Data = data
	c.JSON(status, resp)
}

func (h *BaseHandler) errorResponse(c *gin.Context, err error) (int, dto.Response) {
	requestID := middleware.GetRequestID(c)
	log := logger.FromContext(c.Request.Context())

	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		log.Error("Unhandled error", zap.Error(err))
		return http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(dto.ErrCodeInternal, genericErrorMessage, requestID)
	}

	status := dto.GetHTTPStatus(domainErr.Code)
	message := domainErr.Message
	switch status {
	case http.StatusBadGateway, http.StatusGatewayTimeout:
		log.Warn("Upstream failure", zap.String("code", domainErr.Code), zap.Error(err))
	case http.StatusInternalServerError:
		log.Error("Request failed", zap.String("code", domainErr.Code), zap.Error(err))
		if h.HideInternalErrors {
			message = genericErrorMessage
		}
	}

	resp := dto.NewErrorResponseWithRequestID(domainErr.Code, message, requestID)
	resp.Error.Details = domainErr.Details
	return status, resp
}

// bindJSON binds the body into obj, writing the validation response on failure
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// bindQuery binds query parameters into obj, writing the validation response on failure
func bindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

package dto

import (
	"net/http"

	"github.com/ippis/backend/internal/domain/shared"
)

// Transport-level error codes. Domain codes are passed through unchanged.
const (
	ErrCodeValidation      = "VALIDATION_FAILED"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeRateLimited     = "RATE_LIMIT_EXCEEDED"
	ErrCodeUnavailable     = "SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	shared.ErrValidation.Code:              http.StatusBadRequest,
	shared.ErrDeclarationRequired.Code:     http.StatusBadRequest,
	shared.ErrCommentRequired.Code:         http.StatusBadRequest,
	shared.ErrMissingRequiredDocument.Code: http.StatusBadRequest,
	shared.ErrInvalidState.Code:            http.StatusBadRequest,
	shared.ErrNotFound.Code:                http.StatusNotFound,
	shared.ErrConflict.Code:                http.StatusConflict,
	shared.ErrProvider.Code:                http.StatusBadGateway,
	shared.ErrProviderTimeout.Code:         http.StatusGatewayTimeout,
	shared.ErrPersistence.Code:             http.StatusInternalServerError,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeUnavailable:     http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

package dto

import (
	"net/http"
	"testing"

	"github.com/ippis/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{shared.ErrValidation.Code, http.StatusBadRequest},
		{shared.ErrDeclarationRequired.Code, http.StatusBadRequest},
		{shared.ErrCommentRequired.Code, http.StatusBadRequest},
		{shared.ErrMissingRequiredDocument.Code, http.StatusBadRequest},
		{shared.ErrInvalidState.Code, http.StatusBadRequest},
		{shared.ErrNotFound.Code, http.StatusNotFound},
		{shared.ErrConflict.Code, http.StatusConflict},
		{shared.ErrProvider.Code, http.StatusBadGateway},
		{shared.ErrProviderTimeout.Code, http.StatusGatewayTimeout},
		{shared.ErrPersistence.Code, http.StatusInternalServerError},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []shared.FieldError{{Field: "email", Message: "Invalid email format"}}
	resp := NewValidationErrorResponse("Request validation failed", "req-1", details)

	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	assert.Equal(t, details, resp.Error.Details)
}

func TestNewPaginatedResponse(t *testing.T) {
	resp := NewPaginatedResponse(shared.NewPaginated([]string{"a", "b"}, 5, 1, 2))

	assert.True(t, resp.Success)
	assert.Equal(t, []string{"a", "b"}, resp.Data)
	assert.Equal(t, &Meta{Total: 5, Page: 1, PageSize: 2, TotalPages: 3}, resp.Meta)

	empty := NewPaginatedResponse(shared.NewPaginated[string](nil, 0, 1, 20))
	assert.Equal(t, []string{}, empty.Data)
}

func TestListRequest_Filter(t *testing.T) {
	f := ListRequest{}.Filter()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.PageSize)

	f = ListRequest{Page: 3, PageSize: 50, Search: "bello"}.Filter()
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 50, f.PageSize)
	assert.Equal(t, "bello", f.Search)

	f = ListRequest{SortBy: "submitted_at", SortOrder: "asc"}.Filter()
	assert.Equal(t, "submitted_at", f.OrderBy)
	assert.Equal(t, "asc", f.OrderDir)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ippis/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lookupBody struct {
	NIN   string `json:"nin" binding:"required,nin"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone" binding:"omitempty,digits"`
	Born  string `json:"born" binding:"omitempty,ippis_date"`
}

func TestHandleValidationError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	SetupValidator()

	router := gin.New()
	router.POST("/lookup", func(c *gin.Context) {
		var body lookupBody
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	t.Run("field errors use json names", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/lookup", strings.NewReader(`{"email":"nope"}`)))

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeValidation)
		assert.Contains(t, w.Body.String(), `"field":"nin"`)
		assert.Contains(t, w.Body.String(), "This field is required")
		assert.Contains(t, w.Body.String(), "Invalid email format")
	})

	t.Run("registration rules are registered", func(t *testing.T) {
		w := httptest.NewRecorder()
		body := `{"nin":"123","phone":"080-123","born":"someday"}`
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/lookup", strings.NewReader(body)))

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Must be exactly 11 digits")
		assert.Contains(t, w.Body.String(), "Must contain only numbers")
		assert.Contains(t, w.Body.String(), "Must be a valid date (YYYY-MM-DD)")
	})

	t.Run("well-formed values pass", func(t *testing.T) {
		w := httptest.NewRecorder()
		body := `{"nin":"12345678901","phone":"08012345678","born":"1990-02-01"}`
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/lookup", strings.NewReader(body)))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("malformed json is a bad request", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/lookup", strings.NewReader(`{`)))

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeBadRequest)
	})
}

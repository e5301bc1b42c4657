package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthHandler(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		h := NewHealthHandler(func(context.Context) error { return nil })
		w := perform(http.MethodGet, "/health", "/health", nil, h.Health)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "healthy")
	})

	t.Run("database down", func(t *testing.T) {
		h := NewHealthHandler(func(context.Context) error { return errors.New("dial tcp: refused") })
		w := perform(http.MethodGet, "/health", "/health", nil, h.Health)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.NotContains(t, w.Body.String(), "refused")
	})
}

package verification

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ippis/backend/internal/domain/shared"
	"github.com/ippis/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testNIN = "12345678901"

func newProvider(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.VerificationConfig{URL: srv.URL, SecretKey: "s3cret", Timeout: 2 * time.Second},
		WithRetryInterval(time.Millisecond))
}

func respondJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestClient_VerifyNIN(t *testing.T) {
	ctx := context.Background()

	t.Run("sends secret key and nin", func(t *testing.T) {
		var gotKey, gotMethod, gotType string
		var gotBody map[string]string
		c := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
			gotKey = r.Header.Get("x-secret-key")
			gotMethod = r.Method
			gotType = r.Header.Get("Content-Type")
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			respondJSON(w, http.StatusOK, `{"status":"successful","data":{"Surname":"Bello"}}`)
		})

		_, err := c.VerifyNIN(ctx, testNIN)
		require.NoError(t, err)
		assert.Equal(t, "s3cret", gotKey)
		assert.Equal(t, http.MethodPost, gotMethod)
		assert.Equal(t, "application/json", gotType)
		assert.Equal(t, map[string]string{"nin": testNIN}, gotBody)
	})

	t.Run("successful status with data is verified and normalized", func(t *testing.T) {
		c := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, http.StatusOK, `{"status":"SUCCESSFUL","data":{"Surname":" Bello ","FirstName":"Amina","birthDate":"15-05-1990","middlename":""}}`)
		})

		res, err := c.VerifyNIN(ctx, testNIN)
		require.NoError(t, err)
		assert.True(t, res.Verified)
		assert.Equal(t, "NIN verified successfully", res.Message)
		assert.Equal(t, map[string]any{
			"surname":   "Bello",
			"firstname": "Amina",
			"birthdate": "1990-05-15",
		}, res.Data)
	})

	t.Run("provider message is kept on success", func(t *testing.T) {
		c := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, http.StatusOK, `{"status":"successful","message":"Record found","data":{}}`)
		})

		res, err := c.VerifyNIN(ctx, testNIN)
		require.NoError(t, err)
		assert.True(t, res.Verified)
		assert.Equal(t, "Record found", res.Message)
	})

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"failed status uses message", `{"status":"failed","message":"NIN not found"}`, "NIN not found"},
		{"falls back to error field", `{"status":"failed","error":"invalid nin"}`, "invalid nin"},
		{"falls back to default", `{"status":"pending"}`, "NIN verification failed"},
		{"successful without object data", `{"status":"successful","data":"nope"}`, "NIN verification failed"},
		{"successful with null data", `{"status":"successful","data":null}`, "NIN verification failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
				respondJSON(w, http.StatusOK, tt.body)
			})

			res, err := c.VerifyNIN(ctx, testNIN)
			require.NoError(t, err)
			assert.False(t, res.Verified)
			assert.Equal(t, tt.message, res.Message)
			assert.Nil(t, res.Data)
		})
	}

	t.Run("non-2xx is a provider error", func(t *testing.T) {
		c := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, http.StatusInternalServerError, `{"status":"error"}`)
		})

		_, err := c.VerifyNIN(ctx, testNIN)
		assert.ErrorIs(t, err, shared.ErrProvider)
		assert.Contains(t, err.Error(), "500")
	})

	t.Run("malformed JSON is a provider error", func(t *testing.T) {
		c := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, http.StatusOK, `<html>`)
		})

		_, err := c.VerifyNIN(ctx, testNIN)
		assert.ErrorIs(t, err, shared.ErrProvider)
	})

	t.Run("slow provider is a timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		t.Cleanup(srv.Close)
		t.Cleanup(func() { close(release) })
		c := NewClient(config.VerificationConfig{URL: srv.URL, Timeout: 50 * time.Millisecond})

		_, err := c.VerifyNIN(ctx, testNIN)
		assert.ErrorIs(t, err, shared.ErrProviderTimeout)
	})

	t.Run("unreachable provider is a provider error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()
		c := NewClient(config.VerificationConfig{URL: url, Timeout: time.Second})

		_, err := c.VerifyNIN(ctx, testNIN)
		assert.ErrorIs(t, err, shared.ErrProvider)
	})

	t.Run("malformed nin never reaches the provider", func(t *testing.T) {
		called := false
		c := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
			called = true
		})

		_, err := c.VerifyNIN(ctx, "1234")
		assert.ErrorIs(t, err, shared.ErrValidation)
		assert.False(t, called)
	})

	t.Run("missing url is a provider error", func(t *testing.T) {
		c := NewClient(config.VerificationConfig{})

		_, err := c.VerifyNIN(ctx, testNIN)
		assert.ErrorIs(t, err, shared.ErrProvider)
	})
}

func TestClient_VerifyNIN_Retries(t *testing.T) {
	ctx := context.Background()

	flaky := func(failures int32, status int) (*atomic.Int32, http.HandlerFunc) {
		var calls atomic.Int32
		return &calls, func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) <= failures {
				respondJSON(w, status, `{"status":"error"}`)
				return
			}
			respondJSON(w, http.StatusOK, `{"status":"successful","data":{"surname":"Bello"}}`)
		}
	}

	t.Run("transient failure is retried", func(t *testing.T) {
		calls, h := flaky(1, http.StatusServiceUnavailable)
		c := newProvider(t, h)

		res, err := c.VerifyNIN(ctx, testNIN)
		require.NoError(t, err)
		assert.True(t, res.Verified)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("rate limiting is retried", func(t *testing.T) {
		calls, h := flaky(1, http.StatusTooManyRequests)
		c := newProvider(t, h)

		_, err := c.VerifyNIN(ctx, testNIN)
		require.NoError(t, err)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("attempts are bounded", func(t *testing.T) {
		calls, h := flaky(10, http.StatusBadGateway)
		c := newProvider(t, h)

		_, err := c.VerifyNIN(ctx, testNIN)
		assert.ErrorIs(t, err, shared.ErrProvider)
		assert.Equal(t, int32(config.DefaultVerificationAttempts), calls.Load())
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		calls, h := flaky(10, http.StatusBadRequest)
		c := newProvider(t, h)

		_, err := c.VerifyNIN(ctx, testNIN)
		assert.ErrorIs(t, err, shared.ErrProvider)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("malformed JSON is not retried", func(t *testing.T) {
		var calls atomic.Int32
		c := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			respondJSON(w, http.StatusOK, `<html>`)
		})

		_, err := c.VerifyNIN(ctx, testNIN)
		assert.ErrorIs(t, err, shared.ErrProvider)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("single attempt when configured", func(t *testing.T) {
		calls, h := flaky(1, http.StatusServiceUnavailable)
		srv := httptest.NewServer(h)
		t.Cleanup(srv.Close)
		c := NewClient(config.VerificationConfig{URL: srv.URL, Timeout: time.Second, MaxAttempts: 1})

		_, err := c.VerifyNIN(ctx, testNIN)
		assert.ErrorIs(t, err, shared.ErrProvider)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("timeout is not retried", func(t *testing.T) {
		var calls atomic.Int32
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		t.Cleanup(srv.Close)
		t.Cleanup(func() { close(release) })
		c := NewClient(config.VerificationConfig{URL: srv.URL, Timeout: 50 * time.Millisecond, MaxAttempts: 3},
			WithRetryInterval(time.Millisecond))

		_, err := c.VerifyNIN(ctx, testNIN)
		assert.ErrorIs(t, err, shared.ErrProviderTimeout)
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestNewClient_ClampsTimeout(t *testing.T) {
	assert.Equal(t, config.MaxVerificationTimeout, NewClient(config.VerificationConfig{}).timeout)
	assert.Equal(t, config.MaxVerificationTimeout, NewClient(config.VerificationConfig{Timeout: time.Minute}).timeout)
	assert.Equal(t, 3*time.Second, NewClient(config.VerificationConfig{Timeout: 3 * time.Second}).timeout)
	assert.Equal(t, config.DefaultVerificationAttempts, NewClient(config.VerificationConfig{}).maxAttempts)
	assert.Equal(t, config.MaxVerificationAttempts, NewClient(config.VerificationConfig{MaxAttempts: 50}).maxAttempts)
}

func TestMaskNIN(t *testing.T) {
	assert.Equal(t, "********901", MaskNIN(testNIN))
	assert.Equal(t, "***", MaskNIN("12"))
}

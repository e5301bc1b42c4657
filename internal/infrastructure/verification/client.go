package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	regapp "github.com/ippis/backend/internal/application/registration"
	"github.com/ippis/backend/internal/domain/registration"
	"github.com/ippis/backend/internal/domain/shared"
	"github.com/ippis/backend/internal/infrastructure/config"
	"github.com/ippis/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// maxResponseSize caps the provider body; payloads carry base64 photo and signature
	maxResponseSize = 4 << 20

	secretKeyHeader = "x-secret-key"

	defaultVerifiedMessage = "NIN verified successfully"
	defaultFailedMessage   = "NIN verification failed"

	defaultRetryInterval = 200 * time.Millisecond
	maxRetryInterval     = 2 * time.Second
)

// HTTPDoer is the subset of *http.Client used by Client
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls the NIN verification provider over HTTP.
// Connection failures and 429/5xx answers are retried with backoff until
// MaxAttempts or the timeout runs out; the timeout covers every attempt.
type Client struct {
	url           string
	secretKey     string
	timeout       time.Duration
	maxAttempts   int
	retryInterval time.Duration
	httpClient    HTTPDoer
	logger        *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.httpClient = doer
		}
	}
}

// WithRetryInterval sets the wait before the first retry
func WithRetryInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.retryInterval = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a provider client from configuration
func NewClient(cfg config.VerificationConfig, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 || timeout > config.MaxVerificationTimeout {
		timeout = config.MaxVerificationTimeout
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = config.DefaultVerificationAttempts
	}
	c := &Client{
		url:           cfg.URL,
		secretKey:     cfg.SecretKey,
		timeout:       timeout,
		maxAttempts:   min(attempts, config.MaxVerificationAttempts),
		retryInterval: defaultRetryInterval,
		httpClient:    &http.Client{Timeout: timeout},
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type verifyRequest struct {
	NIN string `json:"nin"`
}

// providerResponse is the provider envelope; data stays raw until the status is known
type providerResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// VerifyNIN looks up the NIN with the provider
func (c *Client) VerifyNIN(ctx context.Context, nin string) (*registration.VerificationResult, error) {
	nin = strings.TrimSpace(nin)
	if !registration.IsValidNIN(nin) {
		return nil, shared.NewValidationError(shared.FieldError{Field: "nin", Message: "nin must be exactly 11 digits"})
	}
	if c.url == "" {
		return nil, shared.ErrProvider.WithMessage("Verification provider is not configured")
	}

	ctx, span := telemetry.StartSpan(ctx, "verification.VerifyNIN",
		telemetry.WithSpanKind(trace.SpanKindClient),
		telemetry.WithAttribute("verification.max_attempts", c.maxAttempts))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	attempts := 0
	result, err := backoff.Retry(ctx, func() (*registration.VerificationResult, error) {
		attempts++
		res, err := c.verify(ctx, nin)
		var te *transientError
		if err != nil && !errors.As(err, &te) {
			return nil, backoff.Permanent(err)
		}
		return res, err
	},
		backoff.WithBackOff(c.backOff()),
		backoff.WithMaxTries(uint(c.maxAttempts)),
		backoff.WithMaxElapsedTime(c.timeout),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.Warn("NIN provider call failed, retrying",
				zap.Int("attempt", attempts), zap.Duration("backoff", next), zap.Error(err))
			telemetry.AddEvent(span, "retry", "attempt", attempts)
		}),
	)
	telemetry.SetAttribute(span, "verification.attempts", attempts)
	if err != nil {
		err = classify(ctx, err)
		telemetry.RecordError(span, err)
		telemetry.SetAttribute(span, "verification.result", resultLabel(nil, err))
		return nil, err
	}
	telemetry.SetAttribute(span, "verification.result", resultLabel(result, nil))
	return result, nil
}

func (c *Client) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInterval
	b.MaxInterval = maxRetryInterval
	return b
}

// transientError marks a provider failure worth another attempt
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// classify strips retry wrappers and maps bare context errors to provider errors
func classify(ctx context.Context, err error) error {
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Err
	}
	var te *transientError
	if errors.As(err, &te) {
		err = te.err
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}
	if isTimeout(ctx, err) {
		return shared.ErrProviderTimeout.Wrap(err)
	}
	return shared.ErrProvider.Wrap(err)
}

func (c *Client) verify(ctx context.Context, nin string) (*registration.VerificationResult, error) {
	body, err := json.Marshal(verifyRequest{NIN: nin})
	if err != nil {
		return nil, shared.ErrProvider.Wrap(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, shared.ErrProvider.Wrap(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(secretKeyHeader, c.secretKey)

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			c.logger.Warn("NIN provider timed out", zap.Duration("elapsed", time.Since(started)))
			return nil, shared.ErrProviderTimeout.Wrap(err)
		}
		c.logger.Warn("NIN provider request failed", zap.Error(err))
		return nil, &transientError{err: shared.ErrProvider.Wrap(err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, shared.ErrProviderTimeout.Wrap(err)
		}
		return nil, shared.ErrProvider.Wrap(err)
	}
	if len(raw) > maxResponseSize {
		return nil, shared.ErrProvider.WithMessage("Verification provider response too large")
	}

	c.logger.Debug("NIN provider responded",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
		zap.String("nin", MaskNIN(nin)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := shared.ErrProvider.WithMessage(fmt.Sprintf("Verification provider returned HTTP %d", resp.StatusCode))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, &transientError{err: err}
		}
		return nil, err
	}

	var pr providerResponse
	if err := json.Unmarshal(raw, &pr); err != nil {
		return nil, shared.ErrProvider.WithMessage("Verification provider returned malformed JSON").Wrap(err)
	}
	return interpret(&pr), nil
}

// interpret turns a well-formed provider answer into a result
func interpret(pr *providerResponse) *registration.VerificationResult {
	if strings.EqualFold(pr.Status, "successful") {
		var data map[string]any
		if err := json.Unmarshal(pr.Data, &data); err == nil && data != nil {
			msg := pr.Message
			if msg == "" {
				msg = defaultVerifiedMessage
			}
			return &registration.VerificationResult{
				Verified: true,
				Message:  msg,
				Data:     Normalize(data),
			}
		}
	}
	msg := pr.Message
	if msg == "" {
		msg = pr.Error
	}
	if msg == "" {
		msg = defaultFailedMessage
	}
	return &registration.VerificationResult{Verified: false, Message: msg}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

// resultLabel classifies an outcome for spans and metrics
func resultLabel(result *registration.VerificationResult, err error) string {
	switch {
	case errors.Is(err, shared.ErrProviderTimeout):
		return ResultTimeout
	case err != nil:
		return ResultProviderError
	case result != nil && result.Verified:
		return ResultVerified
	default:
		return ResultUnverified
	}
}

// Outcome labels
const (
	ResultVerified      = "verified"
	ResultUnverified    = "unverified"
	ResultProviderError = "provider_error"
	ResultTimeout       = "provider_timeout"
)

// MaskNIN keeps the last three digits for logs
func MaskNIN(nin string) string {
	if len(nin) <= 3 {
		return "***"
	}
	return strings.Repeat("*", len(nin)-3) + nin[len(nin)-3:]
}

var _ regapp.Verifier = (*Client)(nil)

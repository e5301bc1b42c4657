package verification

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	regapp "github.com/ippis/backend/internal/application/registration"
	"github.com/ippis/backend/internal/domain/registration"
	"go.uber.org/zap"
)

// ResultCache stores verified lookups by opaque key
type ResultCache interface {
	// Get returns the cached result; found is false on a miss
	Get(ctx context.Context, key string) (result *registration.VerificationResult, found bool, err error)
	// Set stores the result for ttl
	Set(ctx context.Context, key string, result *registration.VerificationResult, ttl time.Duration) error
}

// CachingVerifier serves repeat lookups of verified NINs from a cache.
// Only verified results are cached; cache errors fall through to the provider.
type CachingVerifier struct {
	next   regapp.Verifier
	cache  ResultCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachingVerifier wraps next with cache
func NewCachingVerifier(next regapp.Verifier, cache ResultCache, ttl time.Duration, logger *zap.Logger) *CachingVerifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachingVerifier{next: next, cache: cache, ttl: ttl, logger: logger}
}

// CacheKey derives the cache key for a NIN; the raw number is never used as a key
func CacheKey(nin string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(nin)))
	return hex.EncodeToString(sum[:])
}

// VerifyNIN implements regapp.Verifier
func (v *CachingVerifier) VerifyNIN(ctx context.Context, nin string) (*registration.VerificationResult, error) {
	if !registration.IsValidNIN(nin) {
		return v.next.VerifyNIN(ctx, nin)
	}
	key := CacheKey(nin)

	cached, found, err := v.cache.Get(ctx, key)
	switch {
	case err != nil:
		v.logger.Warn("Verification cache read failed", zap.Error(err))
	case found && cached != nil:
		v.logger.Debug("Verification cache hit", zap.String("nin", MaskNIN(nin)))
		return cached, nil
	}

	result, err := v.next.VerifyNIN(ctx, nin)
	if err != nil {
		return nil, err
	}
	if result.Verified {
		if err := v.cache.Set(ctx, key, result, v.ttl); err != nil {
			v.logger.Warn("Verification cache write failed", zap.Error(err))
		}
	}
	return result, nil
}

var _ regapp.Verifier = (*CachingVerifier)(nil)

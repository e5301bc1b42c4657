package cache

import (
	"context"
	"sync"
	"time"

	"github.com/ippis/backend/internal/domain/registration"
)

type entry struct {
	result    *registration.VerificationResult
	expiresAt time.Time
}

// InMemoryVerificationCache keeps verification results in process memory.
// Suitable for single-instance deployments and tests.
type InMemoryVerificationCache struct {
	mu        sync.RWMutex
	entries   map[string]entry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	now       func() time.Time
}

// NewInMemoryVerificationCache creates the cache and starts its expiry sweeper
func NewInMemoryVerificationCache() *InMemoryVerificationCache {
	c := &InMemoryVerificationCache{
		entries:  make(map[string]entry),
		stopChan: make(chan struct{}),
		now:      time.Now,
	}

	c.wg.Add(1)
	go c.cleanupLoop(5 * time.Minute)

	return c
}

// Get returns the cached result for key
func (c *InMemoryVerificationCache) Get(_ context.Context, key string) (*registration.VerificationResult, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	return e.result, true, nil
}

// Set stores result under key with ttl
func (c *InMemoryVerificationCache) Set(_ context.Context, key string, result *registration.VerificationResult, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{result: result, expiresAt: c.now().Add(ttl)}
	return nil
}

// Close stops the sweeper. Safe to call multiple times.
func (c *InMemoryVerificationCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *InMemoryVerificationCache) cleanupLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemoryVerificationCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Size returns the number of entries, expired or not
func (c *InMemoryVerificationCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

var _ VerificationCache = (*InMemoryVerificationCache)(nil)

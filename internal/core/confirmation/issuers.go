package confirmation

import (
	"context"
	"fmt"
	"sync"

	"bat-ads/internal/core/domain"
)

// IssuersCache holds the last valid issuers fetched from the ad server.
type IssuersCache struct {
	mu      sync.RWMutex
	issuers domain.Issuers
	loaded  bool
}

// NewIssuersCache returns an empty cache.
func NewIssuersCache() *IssuersCache {
	return &IssuersCache{}
}

// Get returns the cached issuers and whether any were loaded.
func (c *IssuersCache) Get() (domain.Issuers, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.issuers, c.loaded
}

// Set replaces the cached issuers.
func (c *IssuersCache) Set(issuers domain.Issuers) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issuers = issuers
	c.loaded = true
}

// RefreshIssuers fetches issuers and caches them when valid. changed reports
// whether the confirmations keys differ from the previous ones, in which
// case tokens signed with a retired key must be dropped.
func (s *Service) RefreshIssuers(ctx context.Context) (issuers domain.Issuers, changed bool, err error) {
	issuers, err = s.server.GetIssuers(ctx)
	if err != nil {
		return domain.Issuers{}, false, fmt.Errorf("get issuers: %w", err)
	}
	if !issuers.IsValid() {
		return domain.Issuers{}, false, fmt.Errorf("get issuers: missing keys: %w", ErrIssuersUnavailable)
	}
	prev, loaded := s.issuers.Get()
	s.issuers.Set(issuers)
	return issuers, !loaded || !sameKeys(prev, issuers), nil
}

func sameKeys(a, b domain.Issuers) bool {
	if len(a.Confirmations) != len(b.Confirmations) || len(a.Payments) != len(b.Payments) {
		return false
	}
	for _, k := range a.Confirmations {
		if !b.HasConfirmationsKey(k) {
			return false
		}
	}
	for _, k := range a.Payments {
		if !b.HasPaymentsKey(k.PublicKey) {
			return false
		}
	}
	return true
}

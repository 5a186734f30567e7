package eligibility

import (
	"sync"

	"bat-ads/internal/core/domain"
)

// SeenSet remembers which creative instances were served in the current
// round-robin cycle of each ad type.
type SeenSet struct {
	mu   sync.Mutex
	seen map[domain.AdType]map[string]struct{}
}

// NewSeenSet returns an empty set.
func NewSeenSet() *SeenSet {
	return &SeenSet{seen: make(map[domain.AdType]map[string]struct{})}
}

// Add marks a creative instance as seen.
func (s *SeenSet) Add(adType domain.AdType, creativeInstanceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.seen[adType]
	if !ok {
		m = make(map[string]struct{})
		s.seen[adType] = m
	}
	m[creativeInstanceID] = struct{}{}
}

// Unseen filters candidates to those not seen this cycle.
func (s *SeenSet) Unseen(adType domain.AdType, candidates []domain.CreativeAd) []domain.CreativeAd {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.seen[adType]
	var out []domain.CreativeAd
	for _, c := range candidates {
		if _, ok := m[c.CreativeInstanceID]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// Reset starts a new cycle for the ad type.
func (s *SeenSet) Reset(adType domain.AdType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, adType)
}

// Len is the number of seen creatives for the ad type.
func (s *SeenSet) Len(adType domain.AdType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen[adType])
}

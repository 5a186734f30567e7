package port

import (
	"context"

	"bat-ads/internal/core/domain"
)

// Catalog serves the creatives currently on offer.
type Catalog interface {
	// GetCreativeAds returns every creative of the ad type, expired or not.
	GetCreativeAds(ctx context.Context, adType domain.AdType) ([]domain.CreativeAd, error)
}

// AntiTargetingResource maps creative sets to sites whose visitors must not
// see them.
type AntiTargetingResource interface {
	SitesForCreativeSet(creativeSetID string) []string
}

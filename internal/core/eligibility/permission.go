package eligibility

import (
	"context"
	"fmt"
	"time"

	"bat-ads/internal/core/domain"
	"bat-ads/internal/core/port"
)

// Permissions limit how many ads of one type are served. Zero is unlimited.
type Permissions struct {
	MaxPerHour int
	MaxPerDay  int
}

// Check returns ErrNoEligibleAds when serving another ad of adType at now
// would exceed a limit.
func (p Permissions) Check(ctx context.Context, repo port.AdEventRepository, adType domain.AdType, now time.Time) error {
	if p.MaxPerHour <= 0 && p.MaxPerDay <= 0 {
		return nil
	}
	served, err := repo.GetAdEventTimestamps(ctx, adType, domain.ConfirmationTypeServed)
	if err != nil {
		return fmt.Errorf("get served timestamps: %w", err)
	}
	var lastHour, lastDay int
	for _, ts := range served {
		if ts.After(now) {
			continue
		}
		age := now.Sub(ts)
		if age < time.Hour {
			lastHour++
		}
		if age < 24*time.Hour {
			lastDay++
		}
	}
	if p.MaxPerHour > 0 && lastHour >= p.MaxPerHour {
		return fmt.Errorf("%w: %d %s served in the last hour", ErrNoEligibleAds, lastHour, adType)
	}
	if p.MaxPerDay > 0 && lastDay >= p.MaxPerDay {
		return fmt.Errorf("%w: %d %s served in the last day", ErrNoEligibleAds, lastDay, adType)
	}
	return nil
}

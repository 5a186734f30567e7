package exclusion

import (
	"time"

	"bat-ads/internal/core/domain"
)

// Cooldown is how long a dismissal or transfer keeps a creative away.
const Cooldown = 48 * time.Hour

// historyRule excludes a creative when some event in the window matches.
type historyRule struct {
	name    string
	history History
	window  time.Duration
	key     func(domain.CreativeAd) string
	matches func(domain.AdEvent, domain.CreativeAd) bool
	reason  string
}

func (r *historyRule) Name() string { return r.name }

func (r *historyRule) UUID(c domain.CreativeAd) string { return r.key(c) }

func (r *historyRule) ShouldInclude(c domain.CreativeAd) error {
	if r.history.Any(r.window, func(e domain.AdEvent) bool { return r.matches(e, c) }) {
		return excluded(r, c, "%s", r.reason)
	}
	return nil
}

func ofType(t domain.ConfirmationType, same func(domain.AdEvent, domain.CreativeAd) bool) func(domain.AdEvent, domain.CreativeAd) bool {
	return func(e domain.AdEvent, c domain.CreativeAd) bool {
		return e.ConfirmationType == t && same(e, c)
	}
}

// NewDismissedRule excludes a creative instance dismissed within the
// cooldown.
func NewDismissedRule(h History) Rule {
	return &historyRule{
		name: "dismissed", history: h, window: Cooldown,
		key:     instanceID,
		matches: ofType(domain.ConfirmationTypeDismissed, sameInstance),
		reason:  "dismissed recently",
	}
}

// NewTransferredRule excludes a creative instance the user already
// landed on through a transfer within the cooldown.
func NewTransferredRule(h History) Rule {
	return &historyRule{
		name: "transferred", history: h, window: Cooldown,
		key:     instanceID,
		matches: ofType(domain.ConfirmationTypeTransferred, sameInstance),
		reason:  "transferred recently",
	}
}

// NewConversionRule excludes creative sets that already converted.
func NewConversionRule(h History) Rule {
	return &historyRule{
		name: "conversion", history: h,
		key:     setID,
		matches: ofType(domain.ConfirmationTypeConversion, sameSet),
		reason:  "already converted",
	}
}

// NewMarkedAsInappropriateRule excludes creative sets the user flagged.
func NewMarkedAsInappropriateRule(h History) Rule {
	return &historyRule{
		name: "marked_as_inappropriate", history: h,
		key:     setID,
		matches: ofType(domain.ConfirmationTypeFlagged, sameSet),
		reason:  "flagged as inappropriate",
	}
}

// NewMarkedToNoLongerReceiveRule excludes advertisers the user downvoted.
func NewMarkedToNoLongerReceiveRule(h History) Rule {
	return &historyRule{
		name: "marked_to_no_longer_receive", history: h,
		key: advertiserID,
		matches: ofType(domain.ConfirmationTypeDownvoted, func(e domain.AdEvent, c domain.CreativeAd) bool {
			return e.AdvertiserID == c.AdvertiserID
		}),
		reason: "advertiser downvoted",
	}
}

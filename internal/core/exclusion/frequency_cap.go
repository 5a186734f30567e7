package exclusion

import (
	"strconv"
	"time"

	"bat-ads/internal/core/domain"
)

const (
	hour  = time.Hour
	day   = 24 * time.Hour
	week  = 7 * day
	month = 30 * day
)

// frequencyCap counts served events in a rolling window. A cap of zero
// means uncapped.
type frequencyCap struct {
	name    string
	history History
	window  time.Duration
	key     func(domain.CreativeAd) string
	matches func(domain.AdEvent, domain.CreativeAd) bool
	cap     func(domain.CreativeAd) int
}

func (r *frequencyCap) Name() string { return r.name }

func (r *frequencyCap) UUID(c domain.CreativeAd) string { return r.key(c) }

func (r *frequencyCap) verdictKey(c domain.CreativeAd) string {
	return r.key(c) + "#" + strconv.Itoa(r.cap(c))
}

func (r *frequencyCap) ShouldInclude(c domain.CreativeAd) error {
	limit := r.cap(c)
	if limit <= 0 {
		return nil
	}
	n := r.history.Count(r.window, func(e domain.AdEvent) bool {
		return e.ConfirmationType == domain.ConfirmationTypeServed && r.matches(e, c)
	})
	if n >= limit {
		return excluded(r, c, "served %d times, cap %d", n, limit)
	}
	return nil
}

func sameInstance(e domain.AdEvent, c domain.CreativeAd) bool {
	return e.CreativeInstanceID == c.CreativeInstanceID
}

func sameSet(e domain.AdEvent, c domain.CreativeAd) bool {
	return e.CreativeSetID == c.CreativeSetID
}

func sameCampaign(e domain.AdEvent, c domain.CreativeAd) bool {
	return e.CampaignID == c.CampaignID
}

func instanceID(c domain.CreativeAd) string   { return c.CreativeInstanceID }
func setID(c domain.CreativeAd) string        { return c.CreativeSetID }
func campaignID(c domain.CreativeAd) string   { return c.CampaignID }
func advertiserID(c domain.CreativeAd) string { return c.AdvertiserID }

// NewPerHourRule allows one serve of the same creative instance per hour.
func NewPerHourRule(h History) Rule {
	return &frequencyCap{
		name: "per_hour", history: h, window: hour,
		key: instanceID, matches: sameInstance,
		cap: func(domain.CreativeAd) int { return 1 },
	}
}

// NewPerDayRule caps serves of a creative set per 24 hours.
func NewPerDayRule(h History) Rule {
	return &frequencyCap{
		name: "per_day", history: h, window: day,
		key: setID, matches: sameSet,
		cap: func(c domain.CreativeAd) int { return c.PerDay },
	}
}

// NewDailyCapRule caps serves of a campaign per 24 hours.
func NewDailyCapRule(h History) Rule {
	return &frequencyCap{
		name: "daily_cap", history: h, window: day,
		key: campaignID, matches: sameCampaign,
		cap: func(c domain.CreativeAd) int { return c.DailyCap },
	}
}

// NewPerWeekRule caps serves of a creative set per 7 days.
func NewPerWeekRule(h History) Rule {
	return &frequencyCap{
		name: "per_week", history: h, window: week,
		key: setID, matches: sameSet,
		cap: func(c domain.CreativeAd) int { return c.PerWeek },
	}
}

// NewPerMonthRule caps serves of a creative set per 30 days.
func NewPerMonthRule(h History) Rule {
	return &frequencyCap{
		name: "per_month", history: h, window: month,
		key: setID, matches: sameSet,
		cap: func(c domain.CreativeAd) int { return c.PerMonth },
	}
}

// NewTotalMaxRule caps serves of a creative set over the retained history.
func NewTotalMaxRule(h History) Rule {
	return &frequencyCap{
		name: "total_max", history: h,
		key: setID, matches: sameSet,
		cap: func(c domain.CreativeAd) int { return c.TotalMax },
	}
}

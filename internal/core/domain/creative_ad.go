package domain

import (
	"strconv"
	"strings"
	"time"
)

// CreativeAd is an advertisable unit loaded from the catalog. Values are
// immutable; a catalog refresh replaces them wholesale.
type CreativeAd struct {
	CreativeInstanceID string `json:"creative_instance_id" yaml:"creative_instance_id"`
	CreativeSetID      string `json:"creative_set_id" yaml:"creative_set_id"`
	CampaignID         string `json:"campaign_id" yaml:"campaign_id"`
	AdvertiserID       string `json:"advertiser_id" yaml:"advertiser_id"`
	Type               AdType `json:"type" yaml:"type"`
	Segment            string `json:"segment" yaml:"segment"`

	StartAt time.Time `json:"start_at" yaml:"start_at"`
	EndAt   time.Time `json:"end_at" yaml:"end_at"`

	// Caps. Zero means uncapped.
	DailyCap int `json:"daily_cap" yaml:"daily_cap"` // per campaign per 24h
	PerDay   int `json:"per_day" yaml:"per_day"`     // per creative set per 24h
	PerWeek  int `json:"per_week" yaml:"per_week"`
	PerMonth int `json:"per_month" yaml:"per_month"`
	TotalMax int `json:"total_max" yaml:"total_max"`

	// Priority orders buckets; lower is more important and 0 is never served.
	Priority        int     `json:"priority" yaml:"priority"`
	PassThroughRate float64 `json:"pass_through_rate" yaml:"pass_through_rate"`

	GeoTargets     []string  `json:"geo_targets" yaml:"geo_targets"`
	Dayparts       []Daypart `json:"dayparts" yaml:"dayparts"`
	SplitTestGroup string    `json:"split_test_group,omitempty" yaml:"split_test_group,omitempty"`
	// Condition is an optional boolean CEL expression over the user's signals.
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty"`

	TargetURL string `json:"target_url,omitempty" yaml:"target_url,omitempty"`
}

// IsActiveAt reports start_at <= now < end_at.
func (c CreativeAd) IsActiveAt(now time.Time) bool {
	return !now.Before(c.StartAt) && now.Before(c.EndAt)
}

// Daypart is a weekly local-time window. DaysOfWeek holds digits 0 (Sunday)
// through 6; minutes count from local midnight, end inclusive.
type Daypart struct {
	DaysOfWeek  string `json:"days_of_week" yaml:"days_of_week"`
	StartMinute int    `json:"start_minute" yaml:"start_minute"`
	EndMinute   int    `json:"end_minute" yaml:"end_minute"`
}

// Contains reports whether t, in its own location, falls inside the window.
func (d Daypart) Contains(t time.Time) bool {
	day := strconv.Itoa(int(t.Weekday()))
	if d.DaysOfWeek != "" && !strings.Contains(d.DaysOfWeek, day) {
		return false
	}
	minute := t.Hour()*60 + t.Minute()
	return minute >= d.StartMinute && minute <= d.EndMinute
}

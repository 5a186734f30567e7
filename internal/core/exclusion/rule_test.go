package exclusion

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bat-ads/internal/core/domain"
)

var now = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC) // a Wednesday

func creative(id string) domain.CreativeAd {
	return domain.CreativeAd{
		CreativeInstanceID: id,
		CreativeSetID:      "set-" + id,
		CampaignID:         "campaign-" + id,
		AdvertiserID:       "advertiser-" + id,
		Type:               domain.AdTypeNotification,
		Segment:            "technology & computing",
		StartAt:            now.Add(-day),
		EndAt:              now.Add(day),
		Priority:           1,
		PassThroughRate:    1,
	}
}

func event(c domain.CreativeAd, t domain.ConfirmationType, ago time.Duration) domain.AdEvent {
	return domain.NewAdEvent(c, "placement", t, now.Add(-ago))
}

func include(t *testing.T, r Rule, c domain.CreativeAd) {
	t.Helper()
	assert.NoError(t, r.ShouldInclude(c), r.Name())
}

func exclude(t *testing.T, r Rule, c domain.CreativeAd) {
	t.Helper()
	err := r.ShouldInclude(c)
	var ex *ExcludedError
	if assert.True(t, errors.As(err, &ex), "%s should exclude", r.Name()) {
		assert.Equal(t, r.Name(), ex.Rule)
		assert.Equal(t, r.UUID(c), ex.UUID)
	}
}

func TestPerDayCapBoundary(t *testing.T) {
	c := creative("a")
	c.PerDay = 3

	var events []domain.AdEvent
	for i := 0; i < c.PerDay-1; i++ {
		events = append(events, event(c, domain.ConfirmationTypeServed, time.Duration(i+2)*hour))
	}
	include(t, NewPerDayRule(NewHistory(events, now)), c)

	events = append(events, event(c, domain.ConfirmationTypeServed, 5*hour))
	exclude(t, NewPerDayRule(NewHistory(events, now)), c)
}

func TestPerDayWindowIsRolling(t *testing.T) {
	c := creative("a")
	c.PerDay = 1

	exclude(t, NewPerDayRule(NewHistory([]domain.AdEvent{event(c, domain.ConfirmationTypeServed, 23*hour)}, now)), c)
	include(t, NewPerDayRule(NewHistory([]domain.AdEvent{event(c, domain.ConfirmationTypeServed, 24*hour)}, now)), c)
}

func TestZeroCapIsUncapped(t *testing.T) {
	c := creative("a")
	var events []domain.AdEvent
	for i := 0; i < 50; i++ {
		events = append(events, event(c, domain.ConfirmationTypeServed, time.Duration(i+2)*time.Hour))
	}
	h := NewHistory(events, now)
	for _, r := range []Rule{NewPerDayRule(h), NewDailyCapRule(h), NewPerWeekRule(h), NewPerMonthRule(h), NewTotalMaxRule(h)} {
		include(t, r, c)
	}
}

func TestCapsCountServedOnly(t *testing.T) {
	c := creative("a")
	c.PerDay = 1
	h := NewHistory([]domain.AdEvent{
		event(c, domain.ConfirmationTypeViewed, hour),
		event(c, domain.ConfirmationTypeClicked, hour),
	}, now)
	include(t, NewPerDayRule(h), c)
}

func TestCapWindows(t *testing.T) {
	c := creative("a")
	c.PerWeek, c.PerMonth, c.TotalMax, c.DailyCap = 1, 1, 1, 1

	served := func(ago time.Duration) History {
		return NewHistory([]domain.AdEvent{event(c, domain.ConfirmationTypeServed, ago)}, now)
	}
	exclude(t, NewDailyCapRule(served(2*hour)), c)
	include(t, NewDailyCapRule(served(25*hour)), c)
	exclude(t, NewPerWeekRule(served(6*day)), c)
	include(t, NewPerWeekRule(served(8*day)), c)
	exclude(t, NewPerMonthRule(served(29*day)), c)
	include(t, NewPerMonthRule(served(31*day)), c)
	exclude(t, NewTotalMaxRule(served(80*day)), c)
}

func TestPerHourIsPerInstance(t *testing.T) {
	a, b := creative("a"), creative("b")
	b.CreativeSetID = a.CreativeSetID
	h := NewHistory([]domain.AdEvent{event(a, domain.ConfirmationTypeServed, 30*time.Minute)}, now)
	exclude(t, NewPerHourRule(h), a)
	include(t, NewPerHourRule(h), b)

	later := NewHistory([]domain.AdEvent{event(a, domain.ConfirmationTypeServed, 61*time.Minute)}, now)
	include(t, NewPerHourRule(later), a)
}

func TestDailyCapSharedByCampaign(t *testing.T) {
	a, b := creative("a"), creative("b")
	b.CampaignID = a.CampaignID
	a.DailyCap, b.DailyCap = 1, 1
	h := NewHistory([]domain.AdEvent{event(a, domain.ConfirmationTypeServed, hour)}, now)
	exclude(t, NewDailyCapRule(h), b)
}

func TestDismissedAndTransferredCooldown(t *testing.T) {
	c := creative("a")

	exclude(t, NewDismissedRule(NewHistory([]domain.AdEvent{event(c, domain.ConfirmationTypeDismissed, 47*hour)}, now)), c)
	include(t, NewDismissedRule(NewHistory([]domain.AdEvent{event(c, domain.ConfirmationTypeDismissed, 49*hour)}, now)), c)

	exclude(t, NewTransferredRule(NewHistory([]domain.AdEvent{event(c, domain.ConfirmationTypeTransferred, hour)}, now)), c)
	include(t, NewTransferredRule(NewHistory([]domain.AdEvent{event(c, domain.ConfirmationTypeDismissed, hour)}, now)), c)
}

func TestSetAndAdvertiserRules(t *testing.T) {
	c := creative("a")
	sibling := creative("b")
	sibling.CreativeSetID = c.CreativeSetID
	sibling.AdvertiserID = c.AdvertiserID

	converted := NewHistory([]domain.AdEvent{event(c, domain.ConfirmationTypeConversion, 60*day)}, now)
	exclude(t, NewConversionRule(converted), sibling)

	flagged := NewHistory([]domain.AdEvent{event(c, domain.ConfirmationTypeFlagged, day)}, now)
	exclude(t, NewMarkedAsInappropriateRule(flagged), sibling)
	include(t, NewMarkedAsInappropriateRule(flagged), creative("z"))

	downvoted := NewHistory([]domain.AdEvent{event(c, domain.ConfirmationTypeDownvoted, day)}, now)
	exclude(t, NewMarkedToNoLongerReceiveRule(downvoted), sibling)
	include(t, NewMarkedToNoLongerReceiveRule(downvoted), creative("z"))
}

func TestSplitTestGroup(t *testing.T) {
	c := creative("a")
	include(t, NewSplitTestGroupRule(domain.UserSignals{}), c)

	c.SplitTestGroup = "GroupA"
	exclude(t, NewSplitTestGroupRule(domain.UserSignals{}), c)
	exclude(t, NewSplitTestGroupRule(domain.UserSignals{SplitTestGroup: "GroupB"}), c)
	include(t, NewSplitTestGroupRule(domain.UserSignals{SplitTestGroup: "GroupA"}), c)
}

type sites map[string][]string

func (s sites) SitesForCreativeSet(id string) []string { return s[id] }

func TestAntiTargetingMatchesRegistrableDomain(t *testing.T) {
	c := creative("a")
	res := sites{c.CreativeSetID: {"https://www.competitor.co.uk"}}

	visited := domain.UserSignals{VisitedSites: []string{"https://shop.competitor.co.uk/cart"}}
	exclude(t, NewAntiTargetingRule(res, visited), c)

	other := domain.UserSignals{VisitedSites: []string{"https://example.com"}}
	include(t, NewAntiTargetingRule(res, other), c)
	include(t, NewAntiTargetingRule(nil, visited), c)
}

func TestRegistrableDomain(t *testing.T) {
	cases := map[string]string{
		"https://news.example.co.uk/a": "example.co.uk",
		"WWW.Brave.com":                "brave.com",
		"http://a.b.example.com:8080":  "example.com",
	}
	for in, want := range cases {
		got, ok := RegistrableDomain(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", "localhost", "://"} {
		_, ok := RegistrableDomain(bad)
		assert.False(t, ok, bad)
	}
}

func TestSubdivisionTargeting(t *testing.T) {
	c := creative("a")
	include(t, NewSubdivisionTargetingRule(domain.UserSignals{}), c)

	c.GeoTargets = []string{"US-CA", "GB"}
	include(t, NewSubdivisionTargetingRule(domain.UserSignals{Subdivision: "US-CA"}), c)
	include(t, NewSubdivisionTargetingRule(domain.UserSignals{Subdivision: "gb-lnd"}), c)
	exclude(t, NewSubdivisionTargetingRule(domain.UserSignals{Subdivision: "US-NY"}), c)
	exclude(t, NewSubdivisionTargetingRule(domain.UserSignals{}), c)
}

func TestDaypart(t *testing.T) {
	c := creative("a")
	h := NewHistory(nil, now)
	include(t, NewDaypartRule(h), c)

	c.Dayparts = []domain.Daypart{{DaysOfWeek: "3", StartMinute: 11 * 60, EndMinute: 13 * 60}}
	include(t, NewDaypartRule(h), c)

	c.Dayparts = []domain.Daypart{{DaysOfWeek: "012456", StartMinute: 0, EndMinute: 24*60 - 1}}
	exclude(t, NewDaypartRule(h), c)

	c.Dayparts = []domain.Daypart{{StartMinute: 0, EndMinute: 60}, {StartMinute: 12 * 60, EndMinute: 12 * 60}}
	include(t, NewDaypartRule(h), c)
}

func TestConditionMatcher(t *testing.T) {
	conds, err := NewConditions()
	require.NoError(t, err)
	h := NewHistory(nil, now)
	signals := domain.UserSignals{Segments: []string{"sports"}, Subdivision: "US-CA"}

	c := creative("a")
	include(t, NewConditionMatcherRule(conds, h, signals), c)

	c.Condition = `"sports" in segments && country == "US" && hour >= 9`
	include(t, NewConditionMatcherRule(conds, h, signals), c)

	c.Condition = `weekday == 0`
	exclude(t, NewConditionMatcherRule(conds, h, signals), c)

	c.Condition = `segments.size()`
	exclude(t, NewConditionMatcherRule(conds, h, signals), c)

	c.Condition = `this is not cel`
	exclude(t, NewConditionMatcherRule(conds, h, signals), c)

	_, err = conds.Compile(`hour`)
	assert.Error(t, err)
}

// TestPerDayScenario: priority 1, always paced through, per_day 2. Two serves
// in the last hour leave it excluded on the third run.
func TestPerDayScenario(t *testing.T) {
	c := creative("c")
	c.PerDay = 2
	events := []domain.AdEvent{
		event(c, domain.ConfirmationTypeServed, 50*time.Minute),
		event(c, domain.ConfirmationTypeServed, 10*time.Minute),
	}
	h := NewHistory(events, now.Add(2*time.Hour))
	eligible, reasons := DefaultRules(h, domain.UserSignals{}, Resources{}).Apply([]domain.CreativeAd{c})
	assert.Empty(t, eligible)
	require.Len(t, reasons, 1)
	assert.Equal(t, "per_day", reasons[0].Rule)
}

// TestAddingEventsNeverIncreasesEligibility checks that for random histories,
// appending one more event removes or keeps candidates but never adds any.
func TestAddingEventsNeverIncreasesEligibility(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	conds, err := NewConditions()
	require.NoError(t, err)

	var catalog []domain.CreativeAd
	for i := 0; i < 6; i++ {
		c := creative(fmt.Sprint(i))
		c.CreativeSetID = fmt.Sprint("set-", i%3)
		c.CampaignID = fmt.Sprint("campaign-", i%2)
		c.AdvertiserID = fmt.Sprint("advertiser-", i%2)
		c.PerDay, c.PerWeek, c.DailyCap, c.TotalMax = 3, 5, 4, 8
		catalog = append(catalog, c)
	}
	types := []domain.ConfirmationType{
		domain.ConfirmationTypeServed, domain.ConfirmationTypeServed, domain.ConfirmationTypeServed,
		domain.ConfirmationTypeViewed, domain.ConfirmationTypeClicked, domain.ConfirmationTypeDismissed,
		domain.ConfirmationTypeTransferred, domain.ConfirmationTypeFlagged, domain.ConfirmationTypeUpvoted,
		domain.ConfirmationTypeDownvoted, domain.ConfirmationTypeConversion,
	}
	randomEvent := func() domain.AdEvent {
		c := catalog[rnd.Intn(len(catalog))]
		return event(c, types[rnd.Intn(len(types))], time.Duration(rnd.Intn(10*24))*hour)
	}
	ids := func(cs []domain.CreativeAd) map[string]bool {
		out := make(map[string]bool)
		for _, c := range cs {
			out[c.CreativeInstanceID] = true
		}
		return out
	}

	for trial := 0; trial < 200; trial++ {
		var events []domain.AdEvent
		for i := rnd.Intn(12); i > 0; i-- {
			events = append(events, randomEvent())
		}
		res := Resources{Conditions: conds}
		before, _ := DefaultRules(NewHistory(events, now), domain.UserSignals{}, res).Apply(catalog)
		after, _ := DefaultRules(NewHistory(append(events, randomEvent()), now), domain.UserSignals{}, res).Apply(catalog)

		was := ids(before)
		for id := range ids(after) {
			assert.True(t, was[id], "trial %d: %s became eligible", trial, id)
		}
	}
}

func TestRuleSetEvaluatesOncePerUUID(t *testing.T) {
	calls := 0
	r := &countingRule{calls: &calls}
	a, b := creative("a"), creative("b")
	b.CreativeSetID = a.CreativeSetID

	eligible, reasons := NewRuleSet(r).Apply([]domain.CreativeAd{a, b, creative("c")})
	assert.Len(t, eligible, 3)
	assert.Empty(t, reasons)
	assert.Equal(t, 2, calls)
}

func TestRuleSetVerdictIndependentOfOrder(t *testing.T) {
	uncapped, capped := creative("a"), creative("b")
	capped.CreativeSetID = uncapped.CreativeSetID
	capped.PerDay = 2
	h := NewHistory([]domain.AdEvent{
		event(capped, domain.ConfirmationTypeServed, 10*time.Minute),
		event(capped, domain.ConfirmationTypeServed, 20*time.Minute),
		event(capped, domain.ConfirmationTypeServed, 30*time.Minute),
	}, now)

	for _, order := range [][]domain.CreativeAd{{uncapped, capped}, {capped, uncapped}} {
		eligible, reasons := NewRuleSet(NewPerDayRule(h)).Apply(order)
		require.Len(t, eligible, 1)
		assert.Equal(t, "a", eligible[0].CreativeInstanceID)
		assert.Len(t, reasons, 1)
	}

	untargeted, targeted := creative("c"), creative("d")
	targeted.CreativeSetID = untargeted.CreativeSetID
	targeted.GeoTargets = []string{"DE"}
	rules := NewRuleSet(NewSubdivisionTargetingRule(domain.UserSignals{Subdivision: "US-CA"}))
	for _, order := range [][]domain.CreativeAd{{untargeted, targeted}, {targeted, untargeted}} {
		eligible, _ := rules.Apply(order)
		require.Len(t, eligible, 1)
		assert.Equal(t, "c", eligible[0].CreativeInstanceID)
	}
}

type countingRule struct{ calls *int }

func (r *countingRule) Name() string                    { return "counting" }
func (r *countingRule) UUID(c domain.CreativeAd) string { return c.CreativeSetID }
func (r *countingRule) ShouldInclude(domain.CreativeAd) error {
	*r.calls++
	return nil
}

func TestHistoryIgnoresFutureEvents(t *testing.T) {
	c := creative("a")
	c.PerDay = 1
	h := NewHistory([]domain.AdEvent{event(c, domain.ConfirmationTypeServed, -time.Minute)}, now)
	include(t, NewPerDayRule(h), c)
	assert.Equal(t, 1, h.Len())
}

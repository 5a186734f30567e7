package eligibility

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bat-ads/internal/core/domain"
	"bat-ads/internal/core/exclusion"
	"bat-ads/internal/core/port/mocks"
)

var (
	now     = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	discard = slog.New(slog.NewTextHandler(io.Discard, nil))
)

func creative(id string, priority int) domain.CreativeAd {
	return domain.CreativeAd{
		CreativeInstanceID: id,
		CreativeSetID:      "set-" + id,
		CampaignID:         "campaign-" + id,
		AdvertiserID:       "advertiser-" + id,
		Type:               domain.AdTypeNotification,
		StartAt:            now.Add(-time.Hour),
		EndAt:              now.Add(time.Hour),
		Priority:           priority,
		PassThroughRate:    1,
	}
}

func seeded() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }

func TestPacingConvergesToPassThroughRate(t *testing.T) {
	const (
		trials = 20000
		p      = 0.3
	)
	c := creative("a", 1)
	c.PassThroughRate = p
	r := seeded()

	kept := 0
	for i := 0; i < trials; i++ {
		kept += len(Pace([]domain.CreativeAd{c}, r))
	}
	assert.InDelta(t, p, float64(kept)/trials, 0.02)
}

func TestPacingBounds(t *testing.T) {
	always, never := creative("a", 1), creative("b", 1)
	never.PassThroughRate = 0
	out := Pace([]domain.CreativeAd{always, never}, seeded())
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].CreativeInstanceID)
}

func TestPrioritizeLowestNonZero(t *testing.T) {
	in := []domain.CreativeAd{creative("zero", 0), creative("two", 2), creative("one-a", 1), creative("one-b", 1)}
	out := Prioritize(in)
	require.Len(t, out, 2)
	assert.Equal(t, "one-a", out[0].CreativeInstanceID)
	assert.Equal(t, "one-b", out[1].CreativeInstanceID)

	assert.Empty(t, Prioritize([]domain.CreativeAd{creative("zero", 0)}))
}

type votes map[string]float64

func (v votes) Votes(c domain.CreativeAd, _ domain.UserSignals) float64 { return v[c.CreativeInstanceID] }

func TestChooseFollowsVotes(t *testing.T) {
	bucket := []domain.CreativeAd{creative("a", 1), creative("b", 1), creative("c", 1)}
	pr := votes{"a": 3, "b": 1}
	r := seeded()

	counts := map[string]int{}
	const draws = 20000
	for i := 0; i < draws; i++ {
		counts[Choose(bucket, domain.UserSignals{}, pr, r).CreativeInstanceID]++
	}
	assert.Zero(t, counts["c"])
	assert.InDelta(t, 0.75, float64(counts["a"])/draws, 0.02)
	assert.InDelta(t, 0.25, float64(counts["b"])/draws, 0.02)
}

func TestChooseUniformWithoutVotes(t *testing.T) {
	bucket := []domain.CreativeAd{creative("a", 1), creative("b", 1)}
	r := seeded()

	counts := map[string]int{}
	const draws = 10000
	for i := 0; i < draws; i++ {
		counts[Choose(bucket, domain.UserSignals{}, votes{}, r).CreativeInstanceID]++
	}
	assert.InDelta(t, 0.5, float64(counts["a"])/draws, 0.03)
}

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

func TestChooseUpperEdge(t *testing.T) {
	bucket := []domain.CreativeAd{creative("a", 1), creative("b", 1)}
	top := fixedRand(math.Nextafter(1, 0))
	assert.Equal(t, "b", Choose(bucket, domain.UserSignals{}, votes{}, top).CreativeInstanceID)
	assert.Equal(t, "a", Choose(bucket, domain.UserSignals{}, votes{"a": 1}, top).CreativeInstanceID)
}

func TestSegmentPredictor(t *testing.T) {
	c := creative("a", 1)
	c.Segment = "sports-golf"
	signals := domain.UserSignals{Segments: []string{"sports-golf", "sports-tennis", "travel"}}
	assert.Equal(t, 2.0, SegmentPredictor{}.Votes(c, signals))

	c.Segment = ""
	assert.Zero(t, SegmentPredictor{}.Votes(c, signals))
	assert.Equal(t, "sports", ParentSegment("sports-golf"))
	assert.Equal(t, "travel", ParentSegment("travel"))
}

func TestSelectRoundRobinResetsOnce(t *testing.T) {
	ctx := context.Background()
	catalog := mocks.NewMockCatalog(t)
	catalog.EXPECT().
		GetCreativeAds(mock.Anything, domain.AdTypeNotification).
		Return([]domain.CreativeAd{creative("a", 1), creative("b", 1)}, nil)

	p := NewPipeline(catalog, discard, WithRand(seeded()))
	req := Request{AdType: domain.AdTypeNotification, Now: now}

	first, err := p.Select(ctx, req)
	require.NoError(t, err)
	second, err := p.Select(ctx, req)
	require.NoError(t, err)
	assert.NotEqual(t, first.CreativeInstanceID, second.CreativeInstanceID)
	assert.Equal(t, 2, p.Seen().Len(domain.AdTypeNotification))

	_, err = p.Select(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Seen().Len(domain.AdTypeNotification))
}

func TestSelectFiltersTypeAndValidity(t *testing.T) {
	ctx := context.Background()
	expired := creative("expired", 1)
	expired.EndAt = now
	notYet := creative("future", 1)
	notYet.StartAt = now.Add(time.Minute)
	other := creative("other", 1)
	other.Type = domain.AdTypeNewTabPage
	active := creative("active", 1)
	active.StartAt = now

	catalog := mocks.NewMockCatalog(t)
	catalog.EXPECT().
		GetCreativeAds(mock.Anything, domain.AdTypeNotification).
		Return([]domain.CreativeAd{expired, notYet, other, active}, nil)

	got, err := NewPipeline(catalog, discard, WithRand(seeded())).
		Select(ctx, Request{AdType: domain.AdTypeNotification, Now: now})
	require.NoError(t, err)
	assert.Equal(t, "active", got.CreativeInstanceID)
}

func TestSelectNoEligibleAds(t *testing.T) {
	ctx := context.Background()
	c := creative("a", 1)
	c.PerDay = 1

	catalog := mocks.NewMockCatalog(t)
	catalog.EXPECT().
		GetCreativeAds(mock.Anything, domain.AdTypeNotification).
		Return([]domain.CreativeAd{c}, nil)

	h := exclusion.NewHistory([]domain.AdEvent{
		domain.NewAdEvent(c, "p1", domain.ConfirmationTypeServed, now.Add(-2*time.Hour)),
	}, now)
	req := Request{
		AdType: domain.AdTypeNotification,
		Now:    now,
		Rules:  exclusion.DefaultRules(h, domain.UserSignals{}, exclusion.Resources{}),
	}

	_, err := NewPipeline(catalog, discard).Select(ctx, req)
	assert.ErrorIs(t, err, ErrNoEligibleAds)
}

func TestSelectOnlyUnprioritized(t *testing.T) {
	catalog := mocks.NewMockCatalog(t)
	catalog.EXPECT().
		GetCreativeAds(mock.Anything, domain.AdTypeNotification).
		Return([]domain.CreativeAd{creative("a", 0)}, nil)

	_, err := NewPipeline(catalog, discard).Select(context.Background(), Request{AdType: domain.AdTypeNotification, Now: now})
	assert.ErrorIs(t, err, ErrNoEligibleAds)
}

func TestSelectCatalogFailure(t *testing.T) {
	boom := errors.New("catalog down")
	catalog := mocks.NewMockCatalog(t)
	catalog.EXPECT().GetCreativeAds(mock.Anything, mock.Anything).Return(nil, boom)

	_, err := NewPipeline(catalog, discard).Select(context.Background(), Request{AdType: domain.AdTypeNotification, Now: now})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNoEligibleAds)
}

func TestPermissions(t *testing.T) {
	ctx := context.Background()
	repo := mocks.NewMockAdEventRepository(t)
	repo.EXPECT().
		GetAdEventTimestamps(mock.Anything, domain.AdTypeNotification, domain.ConfirmationTypeServed).
		Return([]time.Time{now.Add(-30 * time.Minute), now.Add(-2 * time.Hour), now.Add(-3 * time.Hour)}, nil)

	assert.NoError(t, Permissions{MaxPerHour: 2, MaxPerDay: 4}.Check(ctx, repo, domain.AdTypeNotification, now))
	assert.ErrorIs(t, Permissions{MaxPerHour: 1}.Check(ctx, repo, domain.AdTypeNotification, now), ErrNoEligibleAds)
	assert.ErrorIs(t, Permissions{MaxPerDay: 3}.Check(ctx, repo, domain.AdTypeNotification, now), ErrNoEligibleAds)
	assert.NoError(t, Permissions{}.Check(ctx, repo, domain.AdTypeNotification, now))
}

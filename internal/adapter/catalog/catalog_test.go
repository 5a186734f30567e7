package catalog

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bat-ads/internal/core/domain"
)

const sample = `
version: 1
creatives:
  - creative_instance_id: ci-1
    creative_set_id: cs-1
    campaign_id: c-1
    advertiser_id: a-1
    type: ad_notification
    segment: technology & computing
    start_at: 2024-01-01T00:00:00Z
    end_at: 2030-01-01T00:00:00Z
    priority: 1
    pass_through_rate: 1
    dayparts:
      - days_of_week: "12345"
        start_minute: 0
        end_minute: 1439
  - creative_instance_id: ci-2
    creative_set_id: cs-2
    campaign_id: c-2
    type: new_tab_page_ad
    start_at: 2024-01-01T00:00:00Z
    end_at: 2030-01-01T00:00:00Z
    priority: 2
    pass_through_rate: 0.5
anti_targeting:
  cs-1: [competitor.com]
`

func writeFile(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestOpen(t *testing.T) {
	f, err := Open(writeFile(t, t.TempDir(), sample))
	require.NoError(t, err)

	assert.Equal(t, 2, f.Count())
	ads, err := f.GetCreativeAds(context.Background(), domain.AdTypeNotification)
	require.NoError(t, err)
	require.Len(t, ads, 1)
	assert.Equal(t, "ci-1", ads[0].CreativeInstanceID)
	assert.Equal(t, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), ads[0].EndAt.UTC())
	require.Len(t, ads[0].Dayparts, 1)
	assert.Equal(t, 1439, ads[0].Dayparts[0].EndMinute)

	assert.Equal(t, []string{"competitor.com"}, f.SitesForCreativeSet("cs-1"))
	assert.Empty(t, f.SitesForCreativeSet("cs-2"))

	ads, err = f.GetCreativeAds(context.Background(), domain.AdTypeSearchResult)
	require.NoError(t, err)
	assert.Empty(t, ads)
}

func TestParseJSON(t *testing.T) {
	doc, err := Parse([]byte(`{"creatives":[{"creative_instance_id":"ci","creative_set_id":"cs","campaign_id":"c",
"type":"inline_content_ad","start_at":"2024-01-01T00:00:00Z","end_at":"2025-01-01T00:00:00Z","priority":1,"pass_through_rate":1}]}`))
	require.NoError(t, err)
	require.Len(t, doc.Creatives, 1)
	assert.Equal(t, domain.AdTypeInlineContent, doc.Creatives[0].Type)
}

func TestParseRejects(t *testing.T) {
	base := domain.CreativeAd{
		CreativeInstanceID: "ci",
		CreativeSetID:      "cs",
		CampaignID:         "c",
		Type:               domain.AdTypeNotification,
		StartAt:            time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndAt:              time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		PassThroughRate:    1,
	}
	require.NoError(t, validate(base))

	tests := []struct {
		name   string
		mutate func(*domain.CreativeAd)
	}{
		{"missing instance", func(c *domain.CreativeAd) { c.CreativeInstanceID = "" }},
		{"missing set", func(c *domain.CreativeAd) { c.CreativeSetID = "" }},
		{"missing campaign", func(c *domain.CreativeAd) { c.CampaignID = "" }},
		{"unknown type", func(c *domain.CreativeAd) { c.Type = "banner" }},
		{"negative priority", func(c *domain.CreativeAd) { c.Priority = -1 }},
		{"rate above one", func(c *domain.CreativeAd) { c.PassThroughRate = 1.5 }},
		{"empty window", func(c *domain.CreativeAd) { c.EndAt = c.StartAt }},
		{"daypart", func(c *domain.CreativeAd) { c.Dayparts = []domain.Daypart{{StartMinute: 10, EndMinute: 5}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			assert.Error(t, validate(c))
		})
	}

	_, err := Parse([]byte("creatives:\n  - {creative_instance_id: a}\n  - {creative_instance_id: a}\n"))
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = Parse([]byte("creatives: [unterminated"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestRefresh(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, sample)
	f, err := Open(path)
	require.NoError(t, err)

	changed, err := f.Refresh(context.Background())
	require.NoError(t, err)
	assert.False(t, changed)

	t.Run("broken file keeps catalog", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("creatives: [{creative_instance_id: x}]"), 0o600))
		require.NoError(t, os.Chtimes(path, time.Now(), time.Now().Add(time.Minute)))

		_, err := f.Refresh(context.Background())
		assert.ErrorIs(t, err, ErrInvalid)
		assert.Equal(t, 2, f.Count())
	})

	t.Run("replaces wholesale", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte(`
creatives:
  - creative_instance_id: ci-9
    creative_set_id: cs-9
    campaign_id: c-9
    type: ad_notification
    start_at: 2024-01-01T00:00:00Z
    end_at: 2030-01-01T00:00:00Z
    priority: 1
    pass_through_rate: 1
`), 0o600))
		require.NoError(t, os.Chtimes(path, time.Now(), time.Now().Add(2*time.Minute)))

		changed, err := f.Refresh(context.Background())
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, 1, f.Count())
		ads, _ := f.GetCreativeAds(context.Background(), domain.AdTypeNewTabPage)
		assert.Empty(t, ads)
		assert.Empty(t, f.SitesForCreativeSet("cs-1"))
	})
}

func TestGetCreativeAdsReturnsCopy(t *testing.T) {
	f, err := Open(writeFile(t, t.TempDir(), sample))
	require.NoError(t, err)

	ads, _ := f.GetCreativeAds(context.Background(), domain.AdTypeNotification)
	ads[0].CreativeInstanceID = "mutated"

	again, _ := f.GetCreativeAds(context.Background(), domain.AdTypeNotification)
	assert.Equal(t, "ci-1", again[0].CreativeInstanceID)
}

func TestSeedParses(t *testing.T) {
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	doc := Seed(rand.New(rand.NewSource(1)), now, 5, 10)
	require.Len(t, doc.Creatives, 50)
	assert.Len(t, doc.AntiTargeting, 2)

	data, err := Marshal(doc)
	require.NoError(t, err)
	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Len(t, parsed.Creatives, 50)
	for _, c := range parsed.Creatives {
		assert.True(t, c.IsActiveAt(now), c.CreativeInstanceID)
	}
}

package catalog

import (
	"fmt"
	"math/rand"
	"time"

	"gopkg.in/yaml.v3"

	"bat-ads/internal/core/domain"
)

// Seed generates a demo catalog of campaigns active from a day before now
// for a month. Every campaign gets perCampaign creatives of random types.
func Seed(r *rand.Rand, now time.Time, campaigns, perCampaign int) Document {
	types := domain.AdTypes()
	doc := Document{Version: 1, AntiTargeting: make(map[string][]string)}

	// create campaigns
	for i := 1; i <= campaigns; i++ {
		campaignID := fmt.Sprintf("campaign-%d", i)
		setID := fmt.Sprintf("creative-set-%d", i)
		start := now.AddDate(0, 0, -1).UTC().Truncate(time.Second)
		end := now.AddDate(0, 1, 0).UTC().Truncate(time.Second)
		dailyCap := 10 + r.Intn(10)
		priority := 1 + r.Intn(3)
		geos := [][]string{nil, {"US"}, {"US", "CA"}, {"GB"}}[r.Intn(4)]

		// create creatives for campaign
		for j := 1; j <= perCampaign; j++ {
			crID := (i-1)*perCampaign + j
			doc.Creatives = append(doc.Creatives, domain.CreativeAd{
				CreativeInstanceID: fmt.Sprintf("creative-%d", crID),
				CreativeSetID:      setID,
				CampaignID:         campaignID,
				AdvertiserID:       fmt.Sprintf("advertiser-%d", (i-1)/2+1),
				Type:               types[r.Intn(len(types))],
				Segment:            []string{"technology & computing", "sports", "travel", "untargeted"}[r.Intn(4)],
				StartAt:            start,
				EndAt:              end,
				DailyCap:           dailyCap,
				PerDay:             3,
				PerWeek:            10,
				Priority:           priority,
				PassThroughRate:    1,
				GeoTargets:         geos,
				TargetURL:          fmt.Sprintf("https://example.com/landing/%d", crID),
			})
		}
		if i%2 == 0 {
			doc.AntiTargeting[setID] = []string{fmt.Sprintf("https://competitor-%d.example.com", i)}
		}
	}
	return doc
}

// Marshal encodes doc as YAML.
func Marshal(doc Document) ([]byte, error) {
	return yaml.Marshal(doc)
}

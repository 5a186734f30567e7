package domain

import (
	"errors"
	"time"
)

// AdEvent is an immutable record of something that happened to an ad.
// PlacementID ties together all events of one serve of a creative.
type AdEvent struct {
	PlacementID        string           `json:"placement_id"`
	Type               AdType           `json:"type"`
	ConfirmationType   ConfirmationType `json:"confirmation_type"`
	CreativeInstanceID string           `json:"creative_instance_id"`
	CreativeSetID      string           `json:"creative_set_id"`
	CampaignID         string           `json:"campaign_id"`
	AdvertiserID       string           `json:"advertiser_id"`
	Segment            string           `json:"segment"`
	CreatedAt          time.Time        `json:"created_at"`
}

// NewAdEvent builds an event for creative at the given time.
func NewAdEvent(creative CreativeAd, placementID string, confirmationType ConfirmationType, at time.Time) AdEvent {
	return AdEvent{
		PlacementID:        placementID,
		Type:               creative.Type,
		ConfirmationType:   confirmationType,
		CreativeInstanceID: creative.CreativeInstanceID,
		CreativeSetID:      creative.CreativeSetID,
		CampaignID:         creative.CampaignID,
		AdvertiserID:       creative.AdvertiserID,
		Segment:            creative.Segment,
		CreatedAt:          at,
	}
}

// Validate checks the fields every stored event must carry.
func (e AdEvent) Validate() error {
	switch {
	case e.PlacementID == "":
		return errors.New("ad event: missing placement_id")
	case e.CreativeInstanceID == "":
		return errors.New("ad event: missing creative_instance_id")
	case e.ConfirmationType == "":
		return errors.New("ad event: missing confirmation_type")
	case e.Type == "":
		return errors.New("ad event: missing type")
	case e.CreatedAt.IsZero():
		return errors.New("ad event: missing created_at")
	}
	if _, err := ParseConfirmationType(string(e.ConfirmationType)); err != nil {
		return err
	}
	_, err := ParseAdType(string(e.Type))
	return err
}

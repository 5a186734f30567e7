package eligibility

import (
	"strings"

	"bat-ads/internal/core/domain"
)

// Predictor scores how well a creative fits the user. Scores are relative
// weights; zero means no signal.
type Predictor interface {
	Votes(creative domain.CreativeAd, signals domain.UserSignals) float64
}

// SegmentPredictor gives one vote per user interest segment equal to the
// creative's segment or sharing its parent segment.
type SegmentPredictor struct{}

// ParentSegment strips the child part, "sports-golf" becomes "sports".
func ParentSegment(segment string) string {
	if i := strings.Index(segment, "-"); i >= 0 {
		return segment[:i]
	}
	return segment
}

func (SegmentPredictor) Votes(c domain.CreativeAd, signals domain.UserSignals) float64 {
	if c.Segment == "" {
		return 0
	}
	parent := ParentSegment(c.Segment)
	var votes float64
	for _, s := range signals.Segments {
		if s == c.Segment || ParentSegment(s) == parent {
			votes++
		}
	}
	return votes
}

// Package eligibility picks the single creative to serve for a request.
package eligibility

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"bat-ads/internal/core/domain"
	"bat-ads/internal/core/exclusion"
	"bat-ads/internal/core/port"
)

// ErrNoEligibleAds means nothing may be served right now. Callers must not
// treat it as a failure.
var ErrNoEligibleAds = errors.New("no eligible ads")

// Rand draws uniform numbers in [0, 1).
type Rand interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// Request is one serve request.
type Request struct {
	AdType  domain.AdType
	Signals domain.UserSignals
	Now     time.Time
	Rules   *exclusion.RuleSet
}

// Pipeline runs retrieval, exclusion, pacing, priority and weighted choice.
// It is not safe for concurrent use; callers run it on their sequence.
type Pipeline struct {
	catalog   port.Catalog
	predictor Predictor
	rand      Rand
	seen      *SeenSet
	log       *slog.Logger
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithRand replaces the random source.
func WithRand(r Rand) Option {
	return func(p *Pipeline) { p.rand = r }
}

// WithPredictor replaces the default SegmentPredictor.
func WithPredictor(pr Predictor) Option {
	return func(p *Pipeline) { p.predictor = pr }
}

// NewPipeline creates a pipeline over catalog.
func NewPipeline(catalog port.Catalog, log *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		catalog:   catalog,
		predictor: SegmentPredictor{},
		rand:      globalRand{},
		seen:      NewSeenSet(),
		log:       log,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Seen exposes the round-robin state.
func (p *Pipeline) Seen() *SeenSet { return p.seen }

// Select returns the creative to serve or ErrNoEligibleAds.
func (p *Pipeline) Select(ctx context.Context, req Request) (domain.CreativeAd, error) {
	all, err := p.catalog.GetCreativeAds(ctx, req.AdType)
	if err != nil {
		return domain.CreativeAd{}, fmt.Errorf("get creative ads: %w", err)
	}

	candidates := Retrieve(all, req.AdType, req.Now)
	if len(candidates) == 0 {
		return domain.CreativeAd{}, fmt.Errorf("%w: no active creatives", ErrNoEligibleAds)
	}

	if req.Rules != nil {
		var reasons []*exclusion.ExcludedError
		candidates, reasons = req.Rules.Apply(candidates)
		for _, r := range reasons {
			p.log.Debug("creative excluded",
				slog.String("rule", r.Rule),
				slog.String("uuid", r.UUID),
				slog.String("reason", r.Reason),
			)
		}
		if len(candidates) == 0 {
			return domain.CreativeAd{}, fmt.Errorf("%w: all creatives excluded", ErrNoEligibleAds)
		}
	}

	candidates = Pace(candidates, p.rand)
	bucket := Prioritize(candidates)
	if len(bucket) == 0 {
		return domain.CreativeAd{}, fmt.Errorf("%w: no prioritized creatives", ErrNoEligibleAds)
	}

	unseen := p.seen.Unseen(req.AdType, bucket)
	if len(unseen) == 0 {
		p.log.Debug("round robin reset", slog.String("ad_type", string(req.AdType)))
		p.seen.Reset(req.AdType)
		unseen = bucket
	}

	chosen := Choose(unseen, req.Signals, p.predictor, p.rand)
	p.seen.Add(req.AdType, chosen.CreativeInstanceID)
	return chosen, nil
}

// Retrieve keeps creatives of adType active at now.
func Retrieve(all []domain.CreativeAd, adType domain.AdType, now time.Time) []domain.CreativeAd {
	var out []domain.CreativeAd
	for _, c := range all {
		if c.Type == adType && c.IsActiveAt(now) {
			out = append(out, c)
		}
	}
	return out
}

// Pace keeps each candidate with probability pass_through_rate.
func Pace(candidates []domain.CreativeAd, r Rand) []domain.CreativeAd {
	var out []domain.CreativeAd
	for _, c := range candidates {
		if r.Float64() < c.PassThroughRate {
			out = append(out, c)
		}
	}
	return out
}

// Prioritize returns the candidates sharing the lowest non-zero priority.
// Priority 0 is never served.
func Prioritize(candidates []domain.CreativeAd) []domain.CreativeAd {
	best := 0
	for _, c := range candidates {
		if c.Priority > 0 && (best == 0 || c.Priority < best) {
			best = c.Priority
		}
	}
	if best == 0 {
		return nil
	}
	var out []domain.CreativeAd
	for _, c := range candidates {
		if c.Priority == best {
			out = append(out, c)
		}
	}
	return out
}

// Choose draws one candidate with probability votes_i / sum(votes), falling
// back to a uniform draw when no candidate has votes. bucket must not be
// empty.
func Choose(bucket []domain.CreativeAd, signals domain.UserSignals, pr Predictor, r Rand) domain.CreativeAd {
	votes := make([]float64, len(bucket))
	var sum float64
	for i, c := range bucket {
		v := pr.Votes(c, signals)
		if v < 0 {
			v = 0
		}
		votes[i] = v
		sum += v
	}
	if sum == 0 {
		i := int(r.Float64() * float64(len(bucket)))
		if i >= len(bucket) {
			i = len(bucket) - 1
		}
		return bucket[i]
	}

	x := r.Float64() * sum
	for i, v := range votes {
		if x < v {
			return bucket[i]
		}
		x -= v
	}
	// float rounding left x just past the last positive weight
	for i := len(votes) - 1; i >= 0; i-- {
		if votes[i] > 0 {
			return bucket[i]
		}
	}
	return bucket[len(bucket)-1]
}

package port

import (
	"context"
	"errors"

	"bat-ads/internal/core/domain"
)

// ErrInvalidRequest wraps caller mistakes such as an unknown ad type or an
// incomplete event.
var ErrInvalidRequest = errors.New("invalid request")

// AdsUseCase is the primary port of the engine. Implementations serialize
// every call onto one sequence so history and token mutations never
// interleave.
type AdsUseCase interface {
	// ServeAd picks one eligible creative of the ad type and records a served
	// event for it. It returns eligibility.ErrNoEligibleAds when nothing can
	// be shown, which is not a failure.
	ServeAd(ctx context.Context, adType domain.AdType, signals domain.UserSignals) (*ServedAd, error)

	// RecordAdEvent appends event to the history and, for billable types,
	// queues its confirmation. Recording the same placement and type twice
	// never spends a second token.
	RecordAdEvent(ctx context.Context, event domain.AdEvent) error

	// Diagnostics reports token pools, storage health and queue depth.
	Diagnostics(ctx context.Context) (*Diagnostics, error)
}

// ServedAd is the creative picked for a serve request and the placement id
// later events must carry.
type ServedAd struct {
	PlacementID string
	Creative    domain.CreativeAd
}

// Diagnostics is a snapshot of engine health.
type Diagnostics struct {
	UnblindedTokens      int
	PaymentTokens        int
	PendingConfirmations int
	StorageHealthy       bool
	IssuersLoaded        bool
	CatalogCreatives     int
}

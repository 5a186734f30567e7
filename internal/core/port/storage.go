package port

import (
	"context"
	"errors"
	"time"

	"bat-ads/internal/core/domain"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

// Pinger reports whether the storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TokenRepository persists the unblinded token pool. Implementations must
// make DeleteUnblindedTokens durable before returning: the store relies on it
// to never hand out a token twice across restarts.
type TokenRepository interface {
	SaveUnblindedTokens(ctx context.Context, tokens []domain.UnblindedToken) error
	LoadUnblindedTokens(ctx context.Context) ([]domain.UnblindedToken, error)
	DeleteUnblindedTokens(ctx context.Context, tokens []domain.UnblindedToken) error
}

// PaymentTokenRepository persists payment tokens awaiting payout. Saving a
// token that is already stored is a no-op.
type PaymentTokenRepository interface {
	SavePaymentTokens(ctx context.Context, tokens []domain.PaymentToken) error
	LoadPaymentTokens(ctx context.Context) ([]domain.PaymentToken, error)
	DeletePaymentTokens(ctx context.Context, tokens []domain.PaymentToken) error
}

// AdEventRepository is the append-only ad event history.
type AdEventRepository interface {
	// SaveAdEvents appends the events in one transaction.
	SaveAdEvents(ctx context.Context, events []domain.AdEvent) error
	// HasAdEvent reports whether an event of the placement and confirmation
	// type is in the history.
	HasAdEvent(ctx context.Context, placementID string, confirmationType domain.ConfirmationType) (bool, error)
	// GetAdEvents returns events created at or after since, oldest first.
	GetAdEvents(ctx context.Context, since time.Time) ([]domain.AdEvent, error)
	// GetAdEventTimestamps returns the creation times of matching events,
	// oldest first.
	GetAdEventTimestamps(ctx context.Context, adType domain.AdType, confirmationType domain.ConfirmationType) ([]time.Time, error)
	// PurgeExpired deletes events created before the given time.
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
	// PurgeOrphaned deletes served events created before the given time
	// that have no other event with the same placement id.
	PurgeOrphaned(ctx context.Context, before time.Time) (int64, error)
}

// ConfirmationRepository is the durable confirmation queue plus the log of
// placements that were already redeemed.
type ConfirmationRepository interface {
	// SaveConfirmation inserts or replaces the confirmation keyed by its
	// placement id and type. The transaction id may change between saves.
	SaveConfirmation(ctx context.Context, c domain.Confirmation) error
	// GetConfirmations returns every non-terminal confirmation, oldest first.
	GetConfirmations(ctx context.Context) ([]domain.Confirmation, error)
	// GetConfirmation looks up the confirmation for a placement and type,
	// terminal or not. It returns ErrNotFound when none exists.
	GetConfirmation(ctx context.Context, placementID string, confirmationType domain.ConfirmationType) (*domain.Confirmation, error)
	// CompleteConfirmation stores the redeemed confirmation and appends it to
	// the confirmed placements log atomically.
	CompleteConfirmation(ctx context.Context, c domain.Confirmation, confirmedAt time.Time) error
	// IsPlacementConfirmed reports whether the placement and type were
	// already redeemed.
	IsPlacementConfirmed(ctx context.Context, placementID string, confirmationType domain.ConfirmationType) (bool, error)
	// PurgeConfirmations deletes terminal confirmations updated before the
	// given time. The confirmed placements log is kept.
	PurgeConfirmations(ctx context.Context, before time.Time) (int64, error)
}

// Storage bundles every repository a backend provides.
type Storage interface {
	Pinger
	TokenRepository
	PaymentTokenRepository
	AdEventRepository
	ConfirmationRepository
	Close()
}

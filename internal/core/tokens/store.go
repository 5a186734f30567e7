// Package tokens holds the pools of spendable tokens. Each pool is an actor:
// its state is only touched from its own sequence, so two concurrent callers
// of GetToken can never receive the same token.
package tokens

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bat-ads/internal/core/domain"
	"bat-ads/internal/core/port"
	"bat-ads/internal/core/sequence"
)

var (
	// ErrEmpty is returned by GetToken when the pool is exhausted.
	ErrEmpty = errors.New("token store is empty")
	// ErrStorageUnhealthy is returned by GetToken after a persistence
	// failure, until CheckHealth succeeds.
	ErrStorageUnhealthy = errors.New("token storage is unhealthy")
)

// Token is a pool element.
type Token[T any] interface {
	Equal(other T) bool
}

// Repository persists one pool.
type Repository[T any] interface {
	Save(ctx context.Context, tokens []T) error
	Load(ctx context.Context) ([]T, error)
	Delete(ctx context.Context, tokens []T) error
}

// Store is a write-through token pool.
type Store[T Token[T]] struct {
	name    string
	seq     *sequence.Sequence
	repo    Repository[T]
	pinger  port.Pinger
	log     *slog.Logger
	tokens  []T
	healthy bool
}

// NewStore starts a pool backed by repo. pinger may be nil, in which case
// CheckHealth only clears the flag.
func NewStore[T Token[T]](name string, repo Repository[T], pinger port.Pinger, log *slog.Logger) *Store[T] {
	return &Store[T]{
		name:    name,
		seq:     sequence.New(),
		repo:    repo,
		pinger:  pinger,
		log:     log.With(slog.String("store", name)),
		healthy: true,
	}
}

// Close stops the actor.
func (s *Store[T]) Close() {
	s.seq.Close()
}

// AddTokens appends tokens to the pool and persists them. Tokens already
// in the pool are skipped. On a storage failure the tokens stay in memory
// but the store turns unhealthy.
func (s *Store[T]) AddTokens(ctx context.Context, tokens []T) error {
	if len(tokens) == 0 {
		return nil
	}
	return s.seq.Run(ctx, func(ctx context.Context) error {
		var fresh []T
		for _, t := range tokens {
			if !contains(s.tokens, t) && !contains(fresh, t) {
				fresh = append(fresh, t)
			}
		}
		if len(fresh) == 0 {
			return nil
		}
		s.tokens = append(s.tokens, fresh...)
		if err := s.repo.Save(ctx, fresh); err != nil {
			s.markUnhealthy(err)
			return fmt.Errorf("%s: save tokens: %w", s.name, err)
		}
		return nil
	})
}

// GetToken removes one token from the pool and returns it. The token is
// deleted from storage before it is handed out.
func (s *Store[T]) GetToken(ctx context.Context) (T, error) {
	return sequence.Do(ctx, s.seq, func(ctx context.Context) (T, error) {
		var zero T
		if !s.healthy {
			return zero, ErrStorageUnhealthy
		}
		if len(s.tokens) == 0 {
			return zero, ErrEmpty
		}
		t := s.tokens[0]
		if err := s.repo.Delete(ctx, []T{t}); err != nil {
			s.markUnhealthy(err)
			return zero, fmt.Errorf("%s: delete token: %w", s.name, err)
		}
		s.tokens = s.tokens[1:]
		return t, nil
	})
}

// RemoveToken drops token from the pool. Removing an unknown token is not
// an error.
func (s *Store[T]) RemoveToken(ctx context.Context, token T) error {
	return s.RemoveTokens(ctx, []T{token})
}

// RemoveTokens drops every given token from the pool.
func (s *Store[T]) RemoveTokens(ctx context.Context, tokens []T) error {
	if len(tokens) == 0 {
		return nil
	}
	return s.seq.Run(ctx, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, tokens); err != nil {
			s.markUnhealthy(err)
			return fmt.Errorf("%s: delete tokens: %w", s.name, err)
		}
		s.tokens = without(s.tokens, tokens)
		return nil
	})
}

// Count returns the number of tokens in the pool.
func (s *Store[T]) Count(ctx context.Context) (int, error) {
	return sequence.Do(ctx, s.seq, func(context.Context) (int, error) {
		return len(s.tokens), nil
	})
}

// All returns a copy of the pool.
func (s *Store[T]) All(ctx context.Context) ([]T, error) {
	return sequence.Do(ctx, s.seq, func(context.Context) ([]T, error) {
		out := make([]T, len(s.tokens))
		copy(out, s.tokens)
		return out, nil
	})
}

// Healthy reports whether the last storage operation succeeded.
func (s *Store[T]) Healthy(ctx context.Context) (bool, error) {
	return sequence.Do(ctx, s.seq, func(context.Context) (bool, error) {
		return s.healthy, nil
	})
}

// MarkUnhealthy stops GetToken until CheckHealth succeeds. Callers use it
// when a write tied to a spent token failed outside the pool.
func (s *Store[T]) MarkUnhealthy(ctx context.Context, cause error) error {
	return s.seq.Run(ctx, func(context.Context) error {
		s.markUnhealthy(cause)
		return nil
	})
}

// CheckHealth pings storage and, on success, clears the unhealthy flag.
func (s *Store[T]) CheckHealth(ctx context.Context) error {
	return s.seq.Run(ctx, func(ctx context.Context) error {
		if s.pinger != nil {
			if err := s.pinger.Ping(ctx); err != nil {
				s.markUnhealthy(err)
				return fmt.Errorf("%s: ping storage: %w", s.name, err)
			}
		}
		if !s.healthy {
			s.log.Info("token storage healthy again")
		}
		s.healthy = true
		return nil
	})
}

// Load replaces the pool with the persisted tokens for which keep returns
// true. Rejected tokens are deleted from storage. It returns how many were
// dropped.
func (s *Store[T]) Load(ctx context.Context, keep func(T) bool) (int, error) {
	return sequence.Do(ctx, s.seq, func(ctx context.Context) (int, error) {
		loaded, err := s.repo.Load(ctx)
		if err != nil {
			s.markUnhealthy(err)
			return 0, fmt.Errorf("%s: load tokens: %w", s.name, err)
		}
		kept := loaded[:0:0]
		var dropped []T
		for _, t := range loaded {
			if keep(t) {
				kept = append(kept, t)
			} else {
				dropped = append(dropped, t)
			}
		}
		if len(dropped) > 0 {
			if err := s.repo.Delete(ctx, dropped); err != nil {
				s.markUnhealthy(err)
				return 0, fmt.Errorf("%s: delete stale tokens: %w", s.name, err)
			}
			s.log.Info("dropped stale tokens", slog.Int("count", len(dropped)))
		}
		s.tokens = kept
		return len(dropped), nil
	})
}

func (s *Store[T]) markUnhealthy(err error) {
	if s.healthy {
		s.log.Error("token storage failure", slog.Any("error", err))
	}
	s.healthy = false
}

func without[T Token[T]](pool, remove []T) []T {
	out := pool[:0]
	for _, t := range pool {
		drop := false
		for _, r := range remove {
			if t.Equal(r) {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, t)
		}
	}
	return out
}

// NewUnblindedStore returns the pool of confirmation tokens.
func NewUnblindedStore(repo port.TokenRepository, pinger port.Pinger, log *slog.Logger) *Store[domain.UnblindedToken] {
	return NewStore[domain.UnblindedToken]("unblinded_tokens", unblindedRepo{repo}, pinger, log)
}

// NewPaymentStore returns the pool of payment tokens awaiting payout.
func NewPaymentStore(repo port.PaymentTokenRepository, pinger port.Pinger, log *slog.Logger) *Store[domain.PaymentToken] {
	return NewStore[domain.PaymentToken]("payment_tokens", paymentRepo{repo}, pinger, log)
}

// SignedByConfirmationsIssuer keeps tokens whose key is a current
// confirmations key.
func SignedByConfirmationsIssuer(issuers domain.Issuers) func(domain.UnblindedToken) bool {
	return func(t domain.UnblindedToken) bool {
		return issuers.HasConfirmationsKey(t.PublicKey)
	}
}

// SignedByPaymentsIssuer keeps tokens whose key is a current payments key.
func SignedByPaymentsIssuer(issuers domain.Issuers) func(domain.PaymentToken) bool {
	return func(t domain.PaymentToken) bool {
		return issuers.HasPaymentsKey(t.PublicKey)
	}
}

type unblindedRepo struct{ r port.TokenRepository }

func (u unblindedRepo) Save(ctx context.Context, t []domain.UnblindedToken) error {
	return u.r.SaveUnblindedTokens(ctx, t)
}

func (u unblindedRepo) Load(ctx context.Context) ([]domain.UnblindedToken, error) {
	return u.r.LoadUnblindedTokens(ctx)
}

func (u unblindedRepo) Delete(ctx context.Context, t []domain.UnblindedToken) error {
	return u.r.DeleteUnblindedTokens(ctx, t)
}

type paymentRepo struct{ r port.PaymentTokenRepository }

func (p paymentRepo) Save(ctx context.Context, t []domain.PaymentToken) error {
	return p.r.SavePaymentTokens(ctx, t)
}

func (p paymentRepo) Load(ctx context.Context) ([]domain.PaymentToken, error) {
	return p.r.LoadPaymentTokens(ctx)
}

func (p paymentRepo) Delete(ctx context.Context, t []domain.PaymentToken) error {
	return p.r.DeletePaymentTokens(ctx, t)
}

func contains[T Token[T]](pool []T, token T) bool {
	for _, t := range pool {
		if t.Equal(token) {
			return true
		}
	}
	return false
}

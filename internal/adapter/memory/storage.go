// Package memory is a volatile implementation of every storage port, used
// in tests and for ephemeral runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"bat-ads/internal/core/domain"
	"bat-ads/internal/core/port"
)

var _ port.Storage = (*Storage)(nil)

type placementKey struct {
	placementID string
	typ         domain.ConfirmationType
}

// Storage keeps everything in maps guarded by one mutex.
type Storage struct {
	mu            sync.Mutex
	err           error
	failures      map[string][]error
	unblinded     []domain.UnblindedToken
	payments      []domain.PaymentToken
	events        []domain.AdEvent
	confirmations map[placementKey]domain.Confirmation
	confirmed     map[placementKey]domain.ConfirmedPlacement
}

// New returns empty storage.
func New() *Storage {
	return &Storage{
		confirmations: make(map[placementKey]domain.Confirmation),
		confirmed:     make(map[placementKey]domain.ConfirmedPlacement),
	}
}

// SetError makes every subsequent call fail with err. nil restores it.
func (s *Storage) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// FailNext makes the next call of the named method, e.g.
// "SaveConfirmation", fail with err. Calls queue up.
func (s *Storage) FailNext(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures == nil {
		s.failures = make(map[string][]error)
	}
	s.failures[method] = append(s.failures[method], err)
}

// failure returns the error a call of method must fail with. Callers hold mu.
func (s *Storage) failure(method string) error {
	if s.err != nil {
		return s.err
	}
	if q := s.failures[method]; len(q) > 0 {
		s.failures[method] = q[1:]
		return q[0]
	}
	return nil
}

func (s *Storage) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Storage) Close() {}

func (s *Storage) SaveUnblindedTokens(_ context.Context, tokens []domain.UnblindedToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.unblinded = append(s.unblinded, tokens...)
	return nil
}

func (s *Storage) LoadUnblindedTokens(context.Context) ([]domain.UnblindedToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]domain.UnblindedToken(nil), s.unblinded...), nil
}

func (s *Storage) DeleteUnblindedTokens(_ context.Context, tokens []domain.UnblindedToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	out := s.unblinded[:0]
	for _, t := range s.unblinded {
		if !containsUnblinded(tokens, t) {
			out = append(out, t)
		}
	}
	s.unblinded = out
	return nil
}

func containsUnblinded(list []domain.UnblindedToken, t domain.UnblindedToken) bool {
	for _, x := range list {
		if x.Equal(t) {
			return true
		}
	}
	return false
}

func (s *Storage) SavePaymentTokens(_ context.Context, tokens []domain.PaymentToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("SavePaymentTokens"); err != nil {
		return err
	}
	for _, t := range tokens {
		if !containsPayment(s.payments, t) {
			s.payments = append(s.payments, t)
		}
	}
	return nil
}

func (s *Storage) LoadPaymentTokens(context.Context) ([]domain.PaymentToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]domain.PaymentToken(nil), s.payments...), nil
}

func (s *Storage) DeletePaymentTokens(_ context.Context, tokens []domain.PaymentToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	out := s.payments[:0]
	for _, t := range s.payments {
		if !containsPayment(tokens, t) {
			out = append(out, t)
		}
	}
	s.payments = out
	return nil
}

func containsPayment(list []domain.PaymentToken, t domain.PaymentToken) bool {
	for _, x := range list {
		if x.Equal(t) {
			return true
		}
	}
	return false
}

func (s *Storage) SaveAdEvents(_ context.Context, events []domain.AdEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("SaveAdEvents"); err != nil {
		return err
	}
	s.events = append(s.events, events...)
	sort.SliceStable(s.events, func(i, j int) bool { return s.events[i].CreatedAt.Before(s.events[j].CreatedAt) })
	return nil
}

func (s *Storage) HasAdEvent(_ context.Context, placementID string, confirmationType domain.ConfirmationType) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	for _, e := range s.events {
		if e.PlacementID == placementID && e.ConfirmationType == confirmationType {
			return true, nil
		}
	}
	return false, nil
}

func (s *Storage) GetAdEvents(_ context.Context, since time.Time) ([]domain.AdEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []domain.AdEvent
	for _, e := range s.events {
		if !e.CreatedAt.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Storage) GetAdEventTimestamps(_ context.Context, adType domain.AdType, confirmationType domain.ConfirmationType) ([]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []time.Time
	for _, e := range s.events {
		if e.Type == adType && e.ConfirmationType == confirmationType {
			out = append(out, e.CreatedAt)
		}
	}
	return out, nil
}

func (s *Storage) PurgeExpired(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	return s.removeEvents(func(e domain.AdEvent) bool { return e.CreatedAt.Before(before) }), nil
}

func (s *Storage) PurgeOrphaned(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	followed := make(map[string]bool)
	for _, e := range s.events {
		if e.ConfirmationType != domain.ConfirmationTypeServed {
			followed[e.PlacementID] = true
		}
	}
	return s.removeEvents(func(e domain.AdEvent) bool {
		return e.ConfirmationType == domain.ConfirmationTypeServed &&
			e.CreatedAt.Before(before) &&
			!followed[e.PlacementID]
	}), nil
}

func (s *Storage) removeEvents(drop func(domain.AdEvent) bool) int64 {
	var n int64
	out := s.events[:0]
	for _, e := range s.events {
		if drop(e) {
			n++
			continue
		}
		out = append(out, e)
	}
	s.events = out
	return n
}

func (s *Storage) SaveConfirmation(_ context.Context, c domain.Confirmation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("SaveConfirmation"); err != nil {
		return err
	}
	s.confirmations[placementKey{c.PlacementID, c.Type}] = c
	return nil
}

func (s *Storage) GetConfirmations(context.Context) ([]domain.Confirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []domain.Confirmation
	for _, c := range s.confirmations {
		if !c.State.IsTerminal() {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].TransactionID < out[j].TransactionID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Storage) GetConfirmation(_ context.Context, placementID string, typ domain.ConfirmationType) (*domain.Confirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.confirmations[placementKey{placementID, typ}]
	if !ok {
		return nil, port.ErrNotFound
	}
	return &c, nil
}

func (s *Storage) CompleteConfirmation(_ context.Context, c domain.Confirmation, confirmedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("CompleteConfirmation"); err != nil {
		return err
	}
	k := placementKey{c.PlacementID, c.Type}
	s.confirmations[k] = c
	s.confirmed[k] = domain.ConfirmedPlacement{
		PlacementID:   c.PlacementID,
		Type:          c.Type,
		TransactionID: c.TransactionID,
		ConfirmedAt:   confirmedAt,
	}
	return nil
}

func (s *Storage) IsPlacementConfirmed(_ context.Context, placementID string, typ domain.ConfirmationType) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	_, ok := s.confirmed[placementKey{placementID, typ}]
	return ok, nil
}

func (s *Storage) PurgeConfirmations(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	var n int64
	for k, c := range s.confirmations {
		if c.State.IsTerminal() && c.UpdatedAt.Before(before) {
			delete(s.confirmations, k)
			n++
		}
	}
	return n, nil
}

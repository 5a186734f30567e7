// Package confirmation redeems billable ad events. Each event spends exactly
// one unblinded token and yields one payment token.
package confirmation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"bat-ads/internal/core/domain"
	"bat-ads/internal/core/port"
	"bat-ads/internal/core/tokens"
	"bat-ads/internal/privacy/cbr"
)

// Config tunes the protocol.
type Config struct {
	PaymentID    string
	BuildChannel string
	Platform     string

	MinUnblindedTokens int
	MaxUnblindedTokens int

	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	// Jitter spreads retries by up to 10% either way.
	Jitter bool

	OrphanWindow time.Duration
	Retention    time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		BuildChannel:       "release",
		Platform:           "linux",
		MinUnblindedTokens: 20,
		MaxUnblindedTokens: 50,
		BaseBackoff:        15 * time.Second,
		MaxBackoff:         time.Hour,
		Jitter:             true,
		OrphanWindow:       time.Hour,
		Retention:          90 * 24 * time.Hour,
	}
}

// Service drives confirmations through
// pending -> token_reserved -> payload_built -> submitted -> redeemed | failed.
// It is not safe for concurrent use; callers run it on their sequence.
type Service struct {
	cfg      Config
	server   port.AdsServer
	queue    port.ConfirmationRepository
	events   port.AdEventRepository
	tokens   *tokens.Store[domain.UnblindedToken]
	payments *tokens.Store[domain.PaymentToken]
	issuers  *IssuersCache
	log      *slog.Logger

	now   func() time.Time
	newID func() string
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the transaction id generator.
func WithIDGenerator(f func() string) Option {
	return func(s *Service) { s.newID = f }
}

// NewService wires the protocol.
func NewService(
	cfg Config,
	server port.AdsServer,
	queue port.ConfirmationRepository,
	events port.AdEventRepository,
	unblinded *tokens.Store[domain.UnblindedToken],
	payments *tokens.Store[domain.PaymentToken],
	issuers *IssuersCache,
	log *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		cfg:      cfg,
		server:   server,
		queue:    queue,
		events:   events,
		tokens:   unblinded,
		payments: payments,
		issuers:  issuers,
		log:      log,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Issuers returns the cache the service verifies against.
func (s *Service) Issuers() *IssuersCache { return s.issuers }

// Confirm queues and processes the confirmation for event. It returns nil,
// nil for non-billable events and for placements already redeemed. A
// confirmation already queued for the same placement and type is returned as
// is, without spending another token.
func (s *Service) Confirm(ctx context.Context, event domain.AdEvent) (*domain.Confirmation, error) {
	if !event.ConfirmationType.IsBillable() {
		return nil, nil
	}
	done, err := s.queue.IsPlacementConfirmed(ctx, event.PlacementID, event.ConfirmationType)
	if err != nil {
		return nil, fmt.Errorf("check confirmed placements: %w", err)
	}
	if done {
		s.log.Debug("placement already confirmed",
			slog.String("placement_id", event.PlacementID),
			slog.String("type", string(event.ConfirmationType)),
		)
		return nil, nil
	}

	existing, err := s.queue.GetConfirmation(ctx, event.PlacementID, event.ConfirmationType)
	switch {
	case err == nil:
		return existing, nil
	case !errors.Is(err, port.ErrNotFound):
		return nil, fmt.Errorf("get confirmation: %w", err)
	}

	now := s.now()
	c := domain.Confirmation{
		TransactionID:      s.newID(),
		PlacementID:        event.PlacementID,
		CreativeInstanceID: event.CreativeInstanceID,
		Type:               event.ConfirmationType,
		AdType:             event.Type,
		State:              domain.ConfirmationStatePending,
		NextRetryAt:        now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.save(ctx, &c); err != nil {
		return nil, err
	}
	err = s.Process(ctx, &c)
	return &c, err
}

// RetryDue processes every queued confirmation whose retry time has come and
// returns how many were attempted. Once the pool runs dry the remaining
// pending confirmations are left for after the refill and ErrOutOfTokens is
// returned.
func (s *Service) RetryDue(ctx context.Context) (int, error) {
	queued, err := s.queue.GetConfirmations(ctx)
	if err != nil {
		return 0, fmt.Errorf("get confirmations: %w", err)
	}
	now := s.now()
	var (
		attempted int
		outErr    error
	)
	for i := range queued {
		c := &queued[i]
		if c.NextRetryAt.After(now) {
			continue
		}
		if outErr != nil && c.State == domain.ConfirmationStatePending {
			continue
		}
		attempted++
		err := s.Process(ctx, c)
		switch {
		case errors.Is(err, ErrOutOfTokens):
			outErr = err
		case ctx.Err() != nil:
			return attempted, ctx.Err()
		case err != nil:
			s.log.Error("process confirmation",
				slog.String("transaction_id", c.TransactionID),
				slog.Any("error", err),
			)
		}
	}
	return attempted, outErr
}

// Pending returns the number of queued confirmations.
func (s *Service) Pending(ctx context.Context) (int, error) {
	queued, err := s.queue.GetConfirmations(ctx)
	if err != nil {
		return 0, err
	}
	return len(queued), nil
}

// Process advances c as far as it can go now. Every transition is persisted
// before the next one starts. It returns nil once c is terminal or waiting
// for a scheduled retry.
func (s *Service) Process(ctx context.Context, c *domain.Confirmation) error {
	for {
		var err error
		switch c.State {
		case domain.ConfirmationStatePending:
			err = s.reserveToken(ctx, c)
		case domain.ConfirmationStateTokenReserved:
			err = s.buildPayload(ctx, c)
		case domain.ConfirmationStatePayloadBuilt:
			c.State = domain.ConfirmationStateSubmitted
			err = s.save(ctx, c)
		case domain.ConfirmationStateSubmitted:
			return s.redeem(ctx, c)
		default:
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (s *Service) reserveToken(ctx context.Context, c *domain.Confirmation) error {
	t, err := s.tokens.GetToken(ctx)
	if err != nil {
		c.LastError = err.Error()
		c.NextRetryAt = s.now()
		if saveErr := s.save(ctx, c); saveErr != nil {
			return saveErr
		}
		if errors.Is(err, tokens.ErrEmpty) {
			return fmt.Errorf("confirmation %s: %w", c.TransactionID, ErrOutOfTokens)
		}
		return fmt.Errorf("reserve token: %w", err)
	}
	// The token is gone from the pool for good; if the next save fails it is
	// lost rather than ever spent twice.
	c.Token = &t
	c.State = domain.ConfirmationStateTokenReserved
	c.LastError = ""
	return s.save(ctx, c)
}

func (s *Service) buildPayload(ctx context.Context, c *domain.Confirmation) error {
	pts, err := cbr.GenerateTokens(1)
	if err != nil {
		return fmt.Errorf("generate payment token: %w", err)
	}
	blinded := pts[0].Blind()
	payload, err := BuildPayload(*c, blinded, s.cfg.BuildChannel, s.cfg.Platform)
	if err != nil {
		return err
	}
	credential, err := BuildCredential(c.Token.Value, payload)
	if err != nil {
		return err
	}
	c.PaymentToken = &pts[0]
	c.BlindedPaymentToken = &blinded
	c.Payload = payload
	c.Credential = credential
	c.State = domain.ConfirmationStatePayloadBuilt
	return s.save(ctx, c)
}

// redeem submits c if the server has not acknowledged it yet and collects the
// payment token. On return c is redeemed, failed or rescheduled.
func (s *Service) redeem(ctx context.Context, c *domain.Confirmation) error {
	if !c.WasCreated {
		err := s.server.CreateConfirmation(ctx, port.ConfirmationRequest{
			TransactionID: c.TransactionID,
			Credential:    c.Credential,
			Payload:       c.Payload,
		})
		if err != nil {
			return s.handleFailure(ctx, c, err)
		}
		c.WasCreated = true
		if err := s.save(ctx, c); err != nil {
			return err
		}
	}

	signed, err := s.server.FetchPaymentToken(ctx, c.TransactionID)
	if err != nil {
		return s.handleFailure(ctx, c, err)
	}

	issuers, ok := s.issuers.Get()
	if !ok {
		return s.retry(ctx, c, ErrIssuersUnavailable, true)
	}
	if !issuers.HasPaymentsKey(signed.PublicKey) {
		return s.retry(ctx, c, ErrUnknownIssuer, true)
	}
	if len(signed.SignedTokens) != 1 {
		return s.fail(ctx, c, fmt.Errorf("%d signed tokens: %w", len(signed.SignedTokens), port.ErrMalformedResponse))
	}

	unblinded, err := cbr.Unblind(signed.SignedTokens[0], *c.PaymentToken, signed.PublicKey, signed.BatchProof)
	if errors.Is(err, cbr.ErrInvalidSignature) {
		return s.restart(ctx, c, err)
	}
	if err != nil {
		return s.fail(ctx, c, err)
	}

	now := s.now()
	pt := domain.PaymentToken{
		TransactionID:    c.TransactionID,
		Value:            unblinded,
		PublicKey:        signed.PublicKey,
		ConfirmationType: c.Type,
		AdType:           c.AdType,
		CreatedAt:        now,
	}
	if err := s.payments.AddTokens(ctx, []domain.PaymentToken{pt}); err != nil {
		s.log.Error("store payment token",
			slog.String("transaction_id", c.TransactionID),
			slog.Any("error", err),
		)
	}

	c.State = domain.ConfirmationStateRedeemed
	c.LastError = ""
	c.UpdatedAt = now
	if err := s.queue.CompleteConfirmation(ctx, *c, now); err != nil {
		s.storageFailed(ctx, err)
		return fmt.Errorf("complete confirmation: %w", err)
	}
	s.log.Info("confirmation redeemed",
		slog.String("transaction_id", c.TransactionID),
		slog.String("type", string(c.Type)),
	)
	return nil
}

func (s *Service) handleFailure(ctx context.Context, c *domain.Confirmation, err error) error {
	if ctx.Err() != nil {
		// Cancelled mid-request: the token stays consumed in the durable
		// record and the next run resumes from submitted.
		return ctx.Err()
	}
	var reqErr *port.RequestError
	if !errors.As(err, &reqErr) {
		return s.retry(ctx, c, err, true)
	}
	if !reqErr.Retryable {
		return s.fail(ctx, c, err)
	}
	if reqErr.StatusCode == 404 {
		// The server lost the confirmation: create it again, right away.
		c.WasCreated = false
		return s.retry(ctx, c, err, false)
	}
	return s.retry(ctx, c, err, true)
}

func (s *Service) retry(ctx context.Context, c *domain.Confirmation, cause error, backoff bool) error {
	now := s.now()
	c.NextRetryAt = now
	if backoff {
		c.NextRetryAt = now.Add(s.Backoff(c.Attempts))
	}
	c.Attempts++
	c.LastError = cause.Error()
	s.log.Warn("confirmation retry scheduled",
		slog.String("transaction_id", c.TransactionID),
		slog.Int("attempts", c.Attempts),
		slog.Time("next_retry_at", c.NextRetryAt),
		slog.Any("error", cause),
	)
	return s.save(ctx, c)
}

func (s *Service) fail(ctx context.Context, c *domain.Confirmation, cause error) error {
	c.State = domain.ConfirmationStateFailed
	c.LastError = cause.Error()
	s.log.Error("confirmation failed",
		slog.String("transaction_id", c.TransactionID),
		slog.Any("error", cause),
	)
	return s.save(ctx, c)
}

// restart discards the spent token after a signature failure and sends c
// back to pending under a new transaction id, so it redeems with a fresh
// token on its next attempt.
func (s *Service) restart(ctx context.Context, c *domain.Confirmation, cause error) error {
	s.log.Warn("payment token signature invalid, restarting with a fresh token",
		slog.String("transaction_id", c.TransactionID),
		slog.Any("error", cause),
	)
	old := c.TransactionID
	c.TransactionID = s.newID()
	c.State = domain.ConfirmationStatePending
	c.Token = nil
	c.PaymentToken = nil
	c.BlindedPaymentToken = nil
	c.Payload = ""
	c.Credential = ""
	c.WasCreated = false
	if err := s.retry(ctx, c, cause, true); err != nil {
		return err
	}
	s.log.Debug("confirmation renamed", slog.String("old_transaction_id", old), slog.String("transaction_id", c.TransactionID))
	return nil
}

// Backoff returns the delay before retry number attempt: BaseBackoff doubled
// per attempt, capped at MaxBackoff.
func (s *Service) Backoff(attempt int) time.Duration {
	d := s.cfg.BaseBackoff
	for i := 0; i < attempt && d < s.cfg.MaxBackoff; i++ {
		d *= 2
	}
	if d > s.cfg.MaxBackoff {
		d = s.cfg.MaxBackoff
	}
	if s.cfg.Jitter {
		d += time.Duration((rand.Float64()*0.2 - 0.1) * float64(d))
	}
	return d
}

// save persists c. A failed write leaves the durable record behind the
// in-memory one, so spending stops until storage is healthy again.
func (s *Service) save(ctx context.Context, c *domain.Confirmation) error {
	c.UpdatedAt = s.now()
	if err := s.queue.SaveConfirmation(ctx, *c); err != nil {
		s.storageFailed(ctx, err)
		return fmt.Errorf("save confirmation %s: %w", c.TransactionID, err)
	}
	return nil
}

func (s *Service) storageFailed(ctx context.Context, cause error) {
	if err := s.tokens.MarkUnhealthy(ctx, cause); err != nil {
		s.log.Error("mark token storage unhealthy", slog.Any("error", err))
	}
}

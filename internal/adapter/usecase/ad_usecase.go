package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bat-ads/internal/core/confirmation"
	"bat-ads/internal/core/domain"
	"bat-ads/internal/core/eligibility"
	"bat-ads/internal/core/exclusion"
	"bat-ads/internal/core/port"
	"bat-ads/internal/core/sequence"
	"bat-ads/internal/core/tokens"
	"bat-ads/internal/metrics"
)

// Catalog is the creative source the service serves from.
type Catalog interface {
	port.Catalog
	port.AntiTargetingResource
	Count() int
}

// Config tunes the service.
type Config struct {
	Confirmation confirmation.Config
	// Permissions caps serves per ad type. Missing types are unlimited.
	Permissions map[domain.AdType]eligibility.Permissions
	// HistoryWindow is how far back exclusion rules look. Zero means the
	// confirmation retention.
	HistoryWindow time.Duration
}

// Option customises an AdsService.
type Option func(*options)

type options struct {
	now     func() time.Time
	newID   func() string
	rand    eligibility.Rand
	metrics *metrics.Metrics
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator replaces the generator of placement and transaction ids.
func WithIDGenerator(f func() string) Option {
	return func(o *options) { o.newID = f }
}

// WithRand replaces the random source of the eligibility pipeline.
func WithRand(r eligibility.Rand) Option {
	return func(o *options) { o.rand = r }
}

// WithMetrics reports to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// AdsService implements port.AdsUseCase. Every call, and every background
// task started through it, runs on one sequence.
type AdsService struct {
	seq           *sequence.Sequence
	storage       port.Storage
	catalog       Catalog
	pipeline      *eligibility.Pipeline
	conditions    *exclusion.Conditions
	confirmations *confirmation.Service
	unblinded     *tokens.Store[domain.UnblindedToken]
	payments      *tokens.Store[domain.PaymentToken]

	permissions map[domain.AdType]eligibility.Permissions
	history     time.Duration
	metrics     *metrics.Metrics
	log         *slog.Logger
	now         func() time.Time
	newID       func() string

	// tokensLoaded is set once the pools were loaded against valid issuers.
	tokensLoaded bool
}

var _ port.AdsUseCase = (*AdsService)(nil)

// NewAdsService wires the engine over storage, catalog and the ad server.
// Call Start before serving and Close when done.
func NewAdsService(cfg Config, storage port.Storage, catalog Catalog, server port.AdsServer, log *slog.Logger, opts ...Option) (*AdsService, error) {
	o := options{now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(&o)
	}

	conditions, err := exclusion.NewConditions()
	if err != nil {
		return nil, err
	}

	unblinded := tokens.NewUnblindedStore(storage, storage, log)
	payments := tokens.NewPaymentStore(storage, storage, log)
	svc := confirmation.NewService(cfg.Confirmation, server, storage, storage, unblinded, payments,
		confirmation.NewIssuersCache(), log,
		confirmation.WithClock(o.now),
		confirmation.WithIDGenerator(o.newID),
	)

	var pipelineOpts []eligibility.Option
	if o.rand != nil {
		pipelineOpts = append(pipelineOpts, eligibility.WithRand(o.rand))
	}

	history := cfg.HistoryWindow
	if history <= 0 {
		history = cfg.Confirmation.Retention
	}

	return &AdsService{
		seq:           sequence.New(),
		storage:       storage,
		catalog:       catalog,
		pipeline:      eligibility.NewPipeline(catalog, log, pipelineOpts...),
		conditions:    conditions,
		confirmations: svc,
		unblinded:     unblinded,
		payments:      payments,
		permissions:   cfg.Permissions,
		history:       history,
		metrics:       o.metrics,
		log:           log,
		now:           o.now,
		newID:         o.newID,
	}, nil
}

// Close stops the sequence and the token pools.
func (s *AdsService) Close() {
	s.seq.Close()
	s.unblinded.Close()
	s.payments.Close()
}

// Start fetches issuers, loads the token pools and resumes queued
// confirmations. An unreachable ad server is not fatal: the scheduler keeps
// trying.
func (s *AdsService) Start(ctx context.Context) error {
	return s.seq.Run(ctx, func(ctx context.Context) error {
		if err := s.refreshIssuers(ctx); err != nil {
			s.log.Warn("issuers unavailable at start", slog.Any("error", err))
			return nil
		}
		if _, err := s.retryDue(ctx); err != nil {
			s.log.Warn("resume confirmations", slog.Any("error", err))
		}
		return nil
	})
}

// ServeAd picks a creative of adType for signals and records it as served.
func (s *AdsService) ServeAd(ctx context.Context, adType domain.AdType, signals domain.UserSignals) (*port.ServedAd, error) {
	if _, err := domain.ParseAdType(string(adType)); err != nil {
		return nil, fmt.Errorf("%w: %v", port.ErrInvalidRequest, err)
	}
	return sequence.Do(ctx, s.seq, func(ctx context.Context) (*port.ServedAd, error) {
		served, err := s.serve(ctx, adType, signals)
		if errors.Is(err, eligibility.ErrNoEligibleAds) {
			s.metrics.NoFill(adType)
			s.log.Debug("no ad served", slog.String("ad_type", string(adType)), slog.Any("reason", err))
		}
		return served, err
	})
}

func (s *AdsService) serve(ctx context.Context, adType domain.AdType, signals domain.UserSignals) (*port.ServedAd, error) {
	now := signals.Now
	if now.IsZero() {
		now = s.now()
	}

	if err := s.permissions[adType].Check(ctx, s.storage, adType, now); err != nil {
		return nil, err
	}

	events, err := s.storage.GetAdEvents(ctx, now.Add(-s.history))
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	h := exclusion.NewHistory(events, now)
	rules := exclusion.DefaultRules(h, signals, exclusion.Resources{
		AntiTargeting: s.catalog,
		Conditions:    s.conditions,
	})

	creative, err := s.pipeline.Select(ctx, eligibility.Request{
		AdType:  adType,
		Signals: signals,
		Now:     now,
		Rules:   rules,
	})
	if err != nil {
		return nil, err
	}

	served := domain.NewAdEvent(creative, s.newID(), domain.ConfirmationTypeServed, now)
	if err := s.storage.SaveAdEvents(ctx, []domain.AdEvent{served}); err != nil {
		return nil, fmt.Errorf("save served event: %w", err)
	}
	s.metrics.AdServed(adType)
	s.log.Info("ad served",
		slog.String("ad_type", string(adType)),
		slog.String("placement_id", served.PlacementID),
		slog.String("creative_instance_id", creative.CreativeInstanceID),
	)
	return &port.ServedAd{PlacementID: served.PlacementID, Creative: creative}, nil
}

// RecordAdEvent appends event and confirms it when billable. A billable
// placement and type already queued or redeemed is ignored, and an event
// already in the history is not appended twice. Running out of tokens is not
// an error: the confirmation waits for the next refill.
func (s *AdsService) RecordAdEvent(ctx context.Context, event domain.AdEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now()
	}
	if err := event.Validate(); err != nil {
		return fmt.Errorf("%w: %v", port.ErrInvalidRequest, err)
	}
	return s.seq.Run(ctx, func(ctx context.Context) error {
		if event.ConfirmationType.IsBillable() {
			dup, err := s.isDuplicate(ctx, event)
			if err != nil {
				return err
			}
			if dup {
				s.log.Debug("duplicate ad event ignored",
					slog.String("placement_id", event.PlacementID),
					slog.String("type", string(event.ConfirmationType)),
				)
				return nil
			}
		}

		// A redelivered event whose confirmation never got queued is in the
		// history already; only the confirmation is retried.
		seen, err := s.storage.HasAdEvent(ctx, event.PlacementID, event.ConfirmationType)
		if err != nil {
			return fmt.Errorf("look up ad event: %w", err)
		}
		if !seen {
			if err := s.storage.SaveAdEvents(ctx, []domain.AdEvent{event}); err != nil {
				return fmt.Errorf("save ad event: %w", err)
			}
			s.metrics.EventRecorded(event.ConfirmationType)
		}

		c, err := s.confirmations.Confirm(ctx, event)
		if c != nil {
			s.metrics.ConfirmationProcessed(c.State)
		}
		if errors.Is(err, confirmation.ErrOutOfTokens) {
			s.log.Info("confirmation waiting for tokens", slog.String("placement_id", event.PlacementID))
			if _, err := s.refill(ctx); err != nil {
				s.log.Warn("refill unblinded tokens", slog.Any("error", err))
			}
			return nil
		}
		return err
	})
}

func (s *AdsService) isDuplicate(ctx context.Context, event domain.AdEvent) (bool, error) {
	done, err := s.storage.IsPlacementConfirmed(ctx, event.PlacementID, event.ConfirmationType)
	if err != nil || done {
		return done, err
	}
	_, err = s.storage.GetConfirmation(ctx, event.PlacementID, event.ConfirmationType)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, port.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Diagnostics reports pool sizes, queue depth and storage health.
func (s *AdsService) Diagnostics(ctx context.Context) (*port.Diagnostics, error) {
	return sequence.Do(ctx, s.seq, func(ctx context.Context) (*port.Diagnostics, error) {
		d := &port.Diagnostics{CatalogCreatives: s.catalog.Count()}
		var err error
		if d.UnblindedTokens, err = s.unblinded.Count(ctx); err != nil {
			return nil, err
		}
		if d.PaymentTokens, err = s.payments.Count(ctx); err != nil {
			return nil, err
		}
		_, d.IssuersLoaded = s.confirmations.Issuers().Get()

		healthy := s.storage.Ping(ctx) == nil
		if d.PendingConfirmations, err = s.confirmations.Pending(ctx); err != nil {
			s.log.Warn("count pending confirmations", slog.Any("error", err))
			healthy = false
		}
		for _, ok := range []func(context.Context) (bool, error){s.unblinded.Healthy, s.payments.Healthy} {
			h, err := ok(ctx)
			if err != nil {
				return nil, err
			}
			healthy = healthy && h
		}
		d.StorageHealthy = healthy

		s.metrics.SetPools(d.UnblindedTokens, d.PaymentTokens, d.PendingConfirmations)
		return d, nil
	})
}

// RefreshIssuers fetches issuers. A key rotation reloads both token pools so
// tokens signed with a retired key are dropped.
func (s *AdsService) RefreshIssuers(ctx context.Context) error {
	return s.seq.Run(ctx, s.refreshIssuers)
}

func (s *AdsService) refreshIssuers(ctx context.Context) error {
	issuers, changed, err := s.confirmations.RefreshIssuers(ctx)
	if err != nil {
		return err
	}
	if !changed && s.tokensLoaded {
		return nil
	}
	dropped, err := s.unblinded.Load(ctx, tokens.SignedByConfirmationsIssuer(issuers))
	if err != nil {
		return fmt.Errorf("load unblinded tokens: %w", err)
	}
	droppedPayments, err := s.payments.Load(ctx, tokens.SignedByPaymentsIssuer(issuers))
	if err != nil {
		return fmt.Errorf("load payment tokens: %w", err)
	}
	s.tokensLoaded = true
	s.log.Info("issuers loaded",
		slog.Int("confirmations_keys", len(issuers.Confirmations)),
		slog.Int("payments_keys", len(issuers.Payments)),
		slog.Int("dropped_unblinded", dropped),
		slog.Int("dropped_payment", droppedPayments),
	)
	return nil
}

// Refill tops up the unblinded token pool and, when tokens were added,
// retries the confirmations that were waiting for them.
func (s *AdsService) Refill(ctx context.Context) (int, error) {
	return sequence.Do(ctx, s.seq, s.refill)
}

func (s *AdsService) refill(ctx context.Context) (int, error) {
	if !s.tokensLoaded {
		return 0, confirmation.ErrIssuersUnavailable
	}
	added, err := s.confirmations.RefillUnblindedTokens(ctx)
	if err != nil || added == 0 {
		return added, err
	}
	if _, err := s.confirmations.RetryDue(ctx); err != nil && !errors.Is(err, confirmation.ErrOutOfTokens) {
		s.log.Warn("retry after refill", slog.Any("error", err))
	}
	return added, nil
}

// RetryDue processes confirmations whose retry time has come.
func (s *AdsService) RetryDue(ctx context.Context) (int, error) {
	return sequence.Do(ctx, s.seq, s.retryDue)
}

func (s *AdsService) retryDue(ctx context.Context) (int, error) {
	n, err := s.confirmations.RetryDue(ctx)
	if !errors.Is(err, confirmation.ErrOutOfTokens) {
		return n, err
	}
	// refill retries the remaining pending confirmations itself
	if _, err := s.refill(ctx); err != nil {
		return n, err
	}
	return n, nil
}

// RedeemPaymentTokens pays out the stored payment tokens.
func (s *AdsService) RedeemPaymentTokens(ctx context.Context) (int, error) {
	return sequence.Do(ctx, s.seq, func(ctx context.Context) (int, error) {
		n, err := s.confirmations.RedeemPaymentTokens(ctx)
		s.metrics.PaymentTokensRedeemed(n)
		return n, err
	})
}

// PurgeHistory removes expired and orphaned events and old terminal
// confirmations.
func (s *AdsService) PurgeHistory(ctx context.Context) (confirmation.PurgeResult, error) {
	return sequence.Do(ctx, s.seq, s.confirmations.PurgeHistory)
}

// CheckStorage pings storage and clears the pools' unhealthy flags once it
// answers.
func (s *AdsService) CheckStorage(ctx context.Context) error {
	return s.seq.Run(ctx, func(ctx context.Context) error {
		if err := s.unblinded.CheckHealth(ctx); err != nil {
			return err
		}
		return s.payments.CheckHealth(ctx)
	})
}

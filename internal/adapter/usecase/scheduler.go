package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"bat-ads/internal/core/confirmation"
	"bat-ads/internal/metrics"
)

// Task is a background job run every Interval.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Intervals configures the default tasks. A zero interval disables the task.
type Intervals struct {
	Issuers   time.Duration
	Refill    time.Duration
	Retry     time.Duration
	Payout    time.Duration
	Purge     time.Duration
	Catalog   time.Duration
	HealthChk time.Duration
}

// Refresher reloads a resource in place.
type Refresher interface {
	Refresh(ctx context.Context) (bool, error)
}

// DefaultTasks returns the maintenance jobs of svc. catalog may be nil.
func DefaultTasks(svc *AdsService, catalog Refresher, iv Intervals) []Task {
	tasks := []Task{
		{Name: "issuers", Interval: iv.Issuers, Run: svc.RefreshIssuers},
		{Name: "refill", Interval: iv.Refill, Run: discardCount(svc.Refill)},
		{Name: "retry", Interval: iv.Retry, Run: discardCount(svc.RetryDue)},
		{Name: "payout", Interval: iv.Payout, Run: discardCount(svc.RedeemPaymentTokens)},
		{Name: "purge", Interval: iv.Purge, Run: func(ctx context.Context) error {
			_, err := svc.PurgeHistory(ctx)
			return err
		}},
		{Name: "storage_health", Interval: iv.HealthChk, Run: svc.CheckStorage},
	}
	if catalog != nil {
		tasks = append(tasks, Task{Name: "catalog", Interval: iv.Catalog, Run: func(ctx context.Context) error {
			_, err := catalog.Refresh(ctx)
			return err
		}})
	}
	return tasks
}

func discardCount(fn func(context.Context) (int, error)) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := fn(ctx)
		return err
	}
}

// Scheduler runs tasks on their own tickers until its context ends.
type Scheduler struct {
	tasks   []Task
	metrics *metrics.Metrics
	log     *slog.Logger
}

// NewScheduler skips tasks without a positive interval.
func NewScheduler(log *slog.Logger, m *metrics.Metrics, tasks ...Task) *Scheduler {
	s := &Scheduler{metrics: m, log: log}
	for _, t := range tasks {
		if t.Interval > 0 {
			s.tasks = append(s.tasks, t)
		}
	}
	return s
}

// Run blocks until ctx is cancelled. It always returns nil: a failing task
// is logged and retried on its next tick.
func (s *Scheduler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, t := range s.tasks {
		g.Go(func() error {
			s.loop(ctx, t)
			return nil
		})
	}
	return g.Wait()
}

func (s *Scheduler) loop(ctx context.Context, t Task) {
	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, t)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, t Task) {
	err := t.Run(ctx)
	switch {
	case err == nil, ctx.Err() != nil:
	case errors.Is(err, confirmation.ErrIssuersUnavailable), errors.Is(err, confirmation.ErrOutOfTokens):
		s.log.Info("task waiting", slog.String("task", t.Name), slog.Any("reason", err))
	default:
		s.metrics.TaskFailed(t.Name)
		s.log.Warn("task failed", slog.String("task", t.Name), slog.Any("error", err))
	}
}

package confirmation

import (
	"context"
	"fmt"
	"log/slog"
)

// PurgeResult counts what PurgeHistory removed.
type PurgeResult struct {
	Expired       int64
	Orphaned      int64
	Confirmations int64
}

// PurgeHistory bounds storage: events older than Retention go, served
// events that saw no follow-up within OrphanWindow go, and terminal
// confirmations older than Retention go. Tokens consumed by purged
// confirmations are not refunded.
func (s *Service) PurgeHistory(ctx context.Context) (PurgeResult, error) {
	var (
		res PurgeResult
		err error
	)
	now := s.now()
	if res.Expired, err = s.events.PurgeExpired(ctx, now.Add(-s.cfg.Retention)); err != nil {
		return res, fmt.Errorf("purge expired events: %w", err)
	}
	if res.Orphaned, err = s.events.PurgeOrphaned(ctx, now.Add(-s.cfg.OrphanWindow)); err != nil {
		return res, fmt.Errorf("purge orphaned events: %w", err)
	}
	if res.Confirmations, err = s.queue.PurgeConfirmations(ctx, now.Add(-s.cfg.Retention)); err != nil {
		return res, fmt.Errorf("purge confirmations: %w", err)
	}
	if res.Expired+res.Orphaned+res.Confirmations > 0 {
		s.log.Info("purged history",
			slog.Int64("expired", res.Expired),
			slog.Int64("orphaned", res.Orphaned),
			slog.Int64("confirmations", res.Confirmations),
		)
	}
	return res, nil
}

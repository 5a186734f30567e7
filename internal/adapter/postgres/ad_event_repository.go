package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"bat-ads/internal/core/domain"
)

const adEventColumns = `placement_id, type, confirmation_type, creative_instance_id, creative_set_id,
campaign_id, advertiser_id, segment, created_at`

// SaveAdEvents appends events in one transaction.
func (s *Storage) SaveAdEvents(ctx context.Context, events []domain.AdEvent) (err error) {
	if len(events) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	b := &pgx.Batch{}
	for _, e := range events {
		b.Queue(`INSERT INTO ad_events (`+adEventColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			e.PlacementID, string(e.Type), string(e.ConfirmationType), e.CreativeInstanceID, e.CreativeSetID,
			e.CampaignID, e.AdvertiserID, e.Segment, e.CreatedAt.UTC())
	}
	err = tx.SendBatch(ctx, b).Close()
	return err
}

// HasAdEvent reports whether the placement has an event of the given type.
func (s *Storage) HasAdEvent(ctx context.Context, placementID string, confirmationType domain.ConfirmationType) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (
    SELECT 1 FROM ad_events WHERE placement_id = $1 AND confirmation_type = $2
)`, placementID, string(confirmationType)).Scan(&ok)
	return ok, err
}

// GetAdEvents returns events created at or after since, oldest first.
func (s *Storage) GetAdEvents(ctx context.Context, since time.Time) ([]domain.AdEvent, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+adEventColumns+` FROM ad_events WHERE created_at >= $1 ORDER BY created_at, id`, since.UTC())
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.AdEvent, error) {
		var (
			e           domain.AdEvent
			typ, ctType string
		)
		err := row.Scan(
			&e.PlacementID,
			&typ,
			&ctType,
			&e.CreativeInstanceID,
			&e.CreativeSetID,
			&e.CampaignID,
			&e.AdvertiserID,
			&e.Segment,
			&e.CreatedAt,
		)
		e.Type = domain.AdType(typ)
		e.ConfirmationType = domain.ConfirmationType(ctType)
		e.CreatedAt = e.CreatedAt.UTC()
		return e, err
	})
}

// GetAdEventTimestamps returns creation times of matching events, oldest
// first.
func (s *Storage) GetAdEventTimestamps(ctx context.Context, adType domain.AdType, confirmationType domain.ConfirmationType) ([]time.Time, error) {
	rows, err := s.pool.Query(ctx, `SELECT created_at FROM ad_events WHERE type = $1 AND confirmation_type = $2 ORDER BY created_at`,
		string(adType), string(confirmationType))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (time.Time, error) {
		var t time.Time
		err := row.Scan(&t)
		return t.UTC(), err
	})
}

// PurgeExpired deletes events created before the cutoff.
func (s *Storage) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM ad_events WHERE created_at < $1`, before.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// PurgeOrphaned deletes served events before the cutoff that no other event
// followed.
func (s *Storage) PurgeOrphaned(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
        DELETE FROM ad_events e
        WHERE e.confirmation_type = $1
          AND e.created_at < $2
          AND NOT EXISTS (
              SELECT 1 FROM ad_events o
              WHERE o.placement_id = e.placement_id AND o.confirmation_type <> $1
          )`, string(domain.ConfirmationTypeServed), before.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

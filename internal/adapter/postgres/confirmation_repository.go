package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"bat-ads/internal/core/domain"
	"bat-ads/internal/core/port"
	"bat-ads/internal/db"
)

const confirmationColumns = `placement_id, confirmation_type, transaction_id, creative_instance_id, ad_type, state,
token, token_public_key, payment_token, blinded_payment_token, payload, credential,
was_created, attempts, next_retry_at, last_error, created_at, updated_at`

const upsertConfirmation = `INSERT INTO confirmations (` + confirmationColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
ON CONFLICT (placement_id, confirmation_type) DO UPDATE SET
    transaction_id = EXCLUDED.transaction_id,
    creative_instance_id = EXCLUDED.creative_instance_id,
    ad_type = EXCLUDED.ad_type,
    state = EXCLUDED.state,
    token = EXCLUDED.token,
    token_public_key = EXCLUDED.token_public_key,
    payment_token = EXCLUDED.payment_token,
    blinded_payment_token = EXCLUDED.blinded_payment_token,
    payload = EXCLUDED.payload,
    credential = EXCLUDED.credential,
    was_created = EXCLUDED.was_created,
    attempts = EXCLUDED.attempts,
    next_retry_at = EXCLUDED.next_retry_at,
    last_error = EXCLUDED.last_error,
    updated_at = EXCLUDED.updated_at`

func confirmationArgs(c domain.Confirmation) []any {
	sec := db.EncodeSecrets(c)
	return []any{
		c.PlacementID, string(c.Type), c.TransactionID, c.CreativeInstanceID, string(c.AdType), string(c.State),
		sec.Token, sec.TokenPublicKey, sec.PaymentToken, sec.BlindedPaymentToken, c.Payload, c.Credential,
		c.WasCreated, c.Attempts, c.NextRetryAt.UTC(), c.LastError, c.CreatedAt.UTC(), c.UpdatedAt.UTC(),
	}
}

func scanConfirmation(row pgx.Row) (domain.Confirmation, error) {
	var (
		c                  domain.Confirmation
		sec                db.Secrets
		typ, adType, state string
	)
	err := row.Scan(
		&c.PlacementID, &typ, &c.TransactionID, &c.CreativeInstanceID, &adType, &state,
		&sec.Token, &sec.TokenPublicKey, &sec.PaymentToken, &sec.BlindedPaymentToken, &c.Payload, &c.Credential,
		&c.WasCreated, &c.Attempts, &c.NextRetryAt, &c.LastError, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return c, err
	}
	c.Type = domain.ConfirmationType(typ)
	c.AdType = domain.AdType(adType)
	c.State = domain.ConfirmationState(state)
	c.NextRetryAt = c.NextRetryAt.UTC()
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c, sec.Apply(&c)
}

// SaveConfirmation upserts c by placement and type.
func (s *Storage) SaveConfirmation(ctx context.Context, c domain.Confirmation) error {
	_, err := s.pool.Exec(ctx, upsertConfirmation, confirmationArgs(c)...)
	return err
}

// GetConfirmations returns non-terminal confirmations oldest first.
func (s *Storage) GetConfirmations(ctx context.Context) ([]domain.Confirmation, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+confirmationColumns+` FROM confirmations
WHERE state NOT IN ($1, $2) ORDER BY created_at, transaction_id`,
		string(domain.ConfirmationStateRedeemed), string(domain.ConfirmationStateFailed))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Confirmation, error) {
		return scanConfirmation(row)
	})
}

// GetConfirmation returns port.ErrNotFound when no row matches.
func (s *Storage) GetConfirmation(ctx context.Context, placementID string, typ domain.ConfirmationType) (*domain.Confirmation, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+confirmationColumns+` FROM confirmations
WHERE placement_id = $1 AND confirmation_type = $2`, placementID, string(typ))
	c, err := scanConfirmation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CompleteConfirmation stores the redeemed record and logs the placement in
// one transaction.
func (s *Storage) CompleteConfirmation(ctx context.Context, c domain.Confirmation, confirmedAt time.Time) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, upsertConfirmation, confirmationArgs(c)...); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `INSERT INTO confirmed_placements (placement_id, confirmation_type, transaction_id, confirmed_at)
VALUES ($1,$2,$3,$4) ON CONFLICT DO NOTHING`, c.PlacementID, string(c.Type), c.TransactionID, confirmedAt.UTC())
		return err
	})
}

// IsPlacementConfirmed reports whether the placement was redeemed.
func (s *Storage) IsPlacementConfirmed(ctx context.Context, placementID string, typ domain.ConfirmationType) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (
    SELECT 1 FROM confirmed_placements WHERE placement_id = $1 AND confirmation_type = $2
)`, placementID, string(typ)).Scan(&ok)
	return ok, err
}

// PurgeConfirmations deletes terminal confirmations last updated before the
// cutoff.
func (s *Storage) PurgeConfirmations(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM confirmations WHERE state IN ($1, $2) AND updated_at < $3`,
		string(domain.ConfirmationStateRedeemed), string(domain.ConfirmationStateFailed), before.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Package sqlite stores the client profile in a local sqlite file through
// the pure Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bat-ads/internal/core/domain"
	"bat-ads/internal/core/port"
	"bat-ads/internal/db"
	"bat-ads/internal/privacy/cbr"
)

var _ port.Storage = (*Storage)(nil)

// Storage implements every storage port on one sqlite handle. Timestamps
// are stored as unix microseconds.
type Storage struct {
	db *sql.DB
}

// Open opens the database at path and applies migrations.
func Open(path string) (*Storage, error) {
	conn, err := db.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	if err := db.MigrateSQLite(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return &Storage{db: conn}, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Close() {
	_ = s.db.Close()
}

func ts(t time.Time) int64 {
	return t.UnixMicro()
}

func fromTS(v int64) time.Time {
	return time.UnixMicro(v).UTC()
}

// inTx runs fn in a transaction, committing when it returns nil.
func (s *Storage) inTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Storage) SaveUnblindedTokens(ctx context.Context, tokens []domain.UnblindedToken) error {
	now := ts(time.Now())
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for i, t := range tokens {
			// created_at keeps batch order stable on load.
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO unblinded_tokens (token, public_key, created_at) VALUES (?,?,?)`,
				t.Value.EncodeBase64(), t.PublicKey.EncodeBase64(), now+int64(i)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Storage) LoadUnblindedTokens(ctx context.Context) ([]domain.UnblindedToken, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT token, public_key FROM unblinded_tokens ORDER BY created_at, token`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.UnblindedToken
	for rows.Next() {
		var value, pk string
		if err := rows.Scan(&value, &pk); err != nil {
			return nil, err
		}
		t, err := db.DecodeUnblindedToken(value, pk)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Storage) DeleteUnblindedTokens(ctx context.Context, tokens []domain.UnblindedToken) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, t := range tokens {
			if _, err := tx.ExecContext(ctx, `DELETE FROM unblinded_tokens WHERE token = ?`, t.Value.EncodeBase64()); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Storage) SavePaymentTokens(ctx context.Context, tokens []domain.PaymentToken) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, t := range tokens {
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO payment_tokens
(token, transaction_id, public_key, confirmation_type, ad_type, created_at) VALUES (?,?,?,?,?,?)`,
				t.Value.EncodeBase64(), t.TransactionID, t.PublicKey.EncodeBase64(),
				string(t.ConfirmationType), string(t.AdType), ts(t.CreatedAt)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Storage) LoadPaymentTokens(ctx context.Context) ([]domain.PaymentToken, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT token, transaction_id, public_key, confirmation_type, ad_type, created_at
FROM payment_tokens ORDER BY created_at, token`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PaymentToken
	for rows.Next() {
		var (
			t                  domain.PaymentToken
			value, pk, ct, typ string
			created            int64
		)
		if err := rows.Scan(&value, &t.TransactionID, &pk, &ct, &typ, &created); err != nil {
			return nil, err
		}
		if t.Value, err = cbr.DecodeUnblindedToken(value); err != nil {
			return nil, err
		}
		if t.PublicKey, err = cbr.DecodePublicKey(pk); err != nil {
			return nil, err
		}
		t.ConfirmationType = domain.ConfirmationType(ct)
		t.AdType = domain.AdType(typ)
		t.CreatedAt = fromTS(created)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Storage) DeletePaymentTokens(ctx context.Context, tokens []domain.PaymentToken) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, t := range tokens {
			if _, err := tx.ExecContext(ctx, `DELETE FROM payment_tokens WHERE token = ?`, t.Value.EncodeBase64()); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Storage) SaveAdEvents(ctx context.Context, events []domain.AdEvent) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, e := range events {
			if _, err := tx.ExecContext(ctx, `INSERT INTO ad_events
(placement_id, type, confirmation_type, creative_instance_id, creative_set_id, campaign_id, advertiser_id, segment, created_at)
VALUES (?,?,?,?,?,?,?,?,?)`,
				e.PlacementID, string(e.Type), string(e.ConfirmationType), e.CreativeInstanceID, e.CreativeSetID,
				e.CampaignID, e.AdvertiserID, e.Segment, ts(e.CreatedAt)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Storage) HasAdEvent(ctx context.Context, placementID string, confirmationType domain.ConfirmationType) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ad_events WHERE placement_id = ? AND confirmation_type = ?`,
		placementID, string(confirmationType)).Scan(&n)
	return n > 0, err
}

func (s *Storage) GetAdEvents(ctx context.Context, since time.Time) ([]domain.AdEvent, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT placement_id, type, confirmation_type, creative_instance_id, creative_set_id,
campaign_id, advertiser_id, segment, created_at FROM ad_events WHERE created_at >= ? ORDER BY created_at, id`, ts(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AdEvent
	for rows.Next() {
		var (
			e           domain.AdEvent
			typ, ctType string
			created     int64
		)
		if err := rows.Scan(&e.PlacementID, &typ, &ctType, &e.CreativeInstanceID, &e.CreativeSetID,
			&e.CampaignID, &e.AdvertiserID, &e.Segment, &created); err != nil {
			return nil, err
		}
		e.Type = domain.AdType(typ)
		e.ConfirmationType = domain.ConfirmationType(ctType)
		e.CreatedAt = fromTS(created)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Storage) GetAdEventTimestamps(ctx context.Context, adType domain.AdType, confirmationType domain.ConfirmationType) ([]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT created_at FROM ad_events WHERE type = ? AND confirmation_type = ? ORDER BY created_at`,
		string(adType), string(confirmationType))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, fromTS(v))
	}
	return out, rows.Err()
}

func (s *Storage) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM ad_events WHERE created_at < ?`, ts(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Storage) PurgeOrphaned(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM ad_events
WHERE confirmation_type = ?1
  AND created_at < ?2
  AND placement_id NOT IN (SELECT placement_id FROM ad_events WHERE confirmation_type <> ?1)`,
		string(domain.ConfirmationTypeServed), ts(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const confirmationColumns = `placement_id, confirmation_type, transaction_id, creative_instance_id, ad_type, state,
token, token_public_key, payment_token, blinded_payment_token, payload, credential,
was_created, attempts, next_retry_at, last_error, created_at, updated_at`

// INSERT OR REPLACE keys on the (placement_id, confirmation_type) primary key.
const upsertConfirmation = `INSERT OR REPLACE INTO confirmations (` + confirmationColumns + `)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func saveConfirmation(ctx context.Context, ex execer, c domain.Confirmation) error {
	sec := db.EncodeSecrets(c)
	_, err := ex.ExecContext(ctx, upsertConfirmation,
		c.PlacementID, string(c.Type), c.TransactionID, c.CreativeInstanceID, string(c.AdType), string(c.State),
		sec.Token, sec.TokenPublicKey, sec.PaymentToken, sec.BlindedPaymentToken, c.Payload, c.Credential,
		c.WasCreated, c.Attempts, ts(c.NextRetryAt), c.LastError, ts(c.CreatedAt), ts(c.UpdatedAt))
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConfirmation(row scanner) (domain.Confirmation, error) {
	var (
		c                      domain.Confirmation
		sec                    db.Secrets
		typ, adType, state     string
		next, created, updated int64
	)
	err := row.Scan(
		&c.PlacementID, &typ, &c.TransactionID, &c.CreativeInstanceID, &adType, &state,
		&sec.Token, &sec.TokenPublicKey, &sec.PaymentToken, &sec.BlindedPaymentToken, &c.Payload, &c.Credential,
		&c.WasCreated, &c.Attempts, &next, &c.LastError, &created, &updated,
	)
	if err != nil {
		return c, err
	}
	c.Type = domain.ConfirmationType(typ)
	c.AdType = domain.AdType(adType)
	c.State = domain.ConfirmationState(state)
	c.NextRetryAt = fromTS(next)
	c.CreatedAt = fromTS(created)
	c.UpdatedAt = fromTS(updated)
	return c, sec.Apply(&c)
}

func (s *Storage) SaveConfirmation(ctx context.Context, c domain.Confirmation) error {
	return saveConfirmation(ctx, s.db, c)
}

func (s *Storage) GetConfirmations(ctx context.Context) ([]domain.Confirmation, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+confirmationColumns+` FROM confirmations
WHERE state NOT IN (?, ?) ORDER BY created_at, transaction_id`,
		string(domain.ConfirmationStateRedeemed), string(domain.ConfirmationStateFailed))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Confirmation
	for rows.Next() {
		c, err := scanConfirmation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Storage) GetConfirmation(ctx context.Context, placementID string, typ domain.ConfirmationType) (*domain.Confirmation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+confirmationColumns+` FROM confirmations
WHERE placement_id = ? AND confirmation_type = ?`, placementID, string(typ))
	c, err := scanConfirmation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Storage) CompleteConfirmation(ctx context.Context, c domain.Confirmation, confirmedAt time.Time) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := saveConfirmation(ctx, tx, c); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO confirmed_placements
(placement_id, confirmation_type, transaction_id, confirmed_at) VALUES (?,?,?,?)`,
			c.PlacementID, string(c.Type), c.TransactionID, ts(confirmedAt))
		return err
	})
}

func (s *Storage) IsPlacementConfirmed(ctx context.Context, placementID string, typ domain.ConfirmationType) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM confirmed_placements WHERE placement_id = ? AND confirmation_type = ?`,
		placementID, string(typ)).Scan(&n)
	return n > 0, err
}

func (s *Storage) PurgeConfirmations(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM confirmations WHERE state IN (?, ?) AND updated_at < ?`,
		string(domain.ConfirmationStateRedeemed), string(domain.ConfirmationStateFailed), ts(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

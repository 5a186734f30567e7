package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"bat-ads/internal/core/domain"
	"bat-ads/internal/db"
	"bat-ads/internal/privacy/cbr"
)

// SaveUnblindedTokens inserts tokens, ignoring ones already stored.
func (s *Storage) SaveUnblindedTokens(ctx context.Context, tokens []domain.UnblindedToken) error {
	if len(tokens) == 0 {
		return nil
	}
	now := time.Now().UTC()
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		b := &pgx.Batch{}
		for _, t := range tokens {
			b.Queue(`INSERT INTO unblinded_tokens (token, public_key, created_at) VALUES ($1,$2,$3) ON CONFLICT DO NOTHING`,
				t.Value.EncodeBase64(), t.PublicKey.EncodeBase64(), now)
		}
		return tx.SendBatch(ctx, b).Close()
	})
}

// LoadUnblindedTokens returns the pool in insertion order.
func (s *Storage) LoadUnblindedTokens(ctx context.Context) ([]domain.UnblindedToken, error) {
	rows, err := s.pool.Query(ctx, `SELECT token, public_key FROM unblinded_tokens ORDER BY created_at, token`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.UnblindedToken, error) {
		var value, pk string
		if err := row.Scan(&value, &pk); err != nil {
			return domain.UnblindedToken{}, err
		}
		return db.DecodeUnblindedToken(value, pk)
	})
}

// DeleteUnblindedTokens removes tokens; the delete is committed on return.
func (s *Storage) DeleteUnblindedTokens(ctx context.Context, tokens []domain.UnblindedToken) error {
	if len(tokens) == 0 {
		return nil
	}
	keys := make([]string, len(tokens))
	for i, t := range tokens {
		keys[i] = t.Value.EncodeBase64()
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM unblinded_tokens WHERE token = ANY($1)`, keys)
	return err
}

// SavePaymentTokens inserts tokens; duplicates are ignored.
func (s *Storage) SavePaymentTokens(ctx context.Context, tokens []domain.PaymentToken) error {
	if len(tokens) == 0 {
		return nil
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		b := &pgx.Batch{}
		for _, t := range tokens {
			b.Queue(`INSERT INTO payment_tokens (token, transaction_id, public_key, confirmation_type, ad_type, created_at)
VALUES ($1,$2,$3,$4,$5,$6) ON CONFLICT DO NOTHING`,
				t.Value.EncodeBase64(), t.TransactionID, t.PublicKey.EncodeBase64(),
				string(t.ConfirmationType), string(t.AdType), t.CreatedAt.UTC())
		}
		return tx.SendBatch(ctx, b).Close()
	})
}

// LoadPaymentTokens returns stored payment tokens oldest first.
func (s *Storage) LoadPaymentTokens(ctx context.Context) ([]domain.PaymentToken, error) {
	rows, err := s.pool.Query(ctx, `SELECT token, transaction_id, public_key, confirmation_type, ad_type, created_at
FROM payment_tokens ORDER BY created_at, token`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PaymentToken, error) {
		var (
			t                  domain.PaymentToken
			value, pk, ct, typ string
		)
		if err := row.Scan(&value, &t.TransactionID, &pk, &ct, &typ, &t.CreatedAt); err != nil {
			return t, err
		}
		var err error
		if t.Value, err = cbr.DecodeUnblindedToken(value); err != nil {
			return t, err
		}
		if t.PublicKey, err = cbr.DecodePublicKey(pk); err != nil {
			return t, err
		}
		t.ConfirmationType = domain.ConfirmationType(ct)
		t.AdType = domain.AdType(typ)
		t.CreatedAt = t.CreatedAt.UTC()
		return t, nil
	})
}

// DeletePaymentTokens removes redeemed tokens.
func (s *Storage) DeletePaymentTokens(ctx context.Context, tokens []domain.PaymentToken) error {
	if len(tokens) == 0 {
		return nil
	}
	keys := make([]string, len(tokens))
	for i, t := range tokens {
		keys[i] = t.Value.EncodeBase64()
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM payment_tokens WHERE token = ANY($1)`, keys)
	return err
}

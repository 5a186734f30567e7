package db

import (
	"database/sql"
	"fmt"

	"bat-ads/internal/core/domain"
	"bat-ads/internal/privacy/cbr"
)

// Secrets is the nullable token material of a confirmation row.
type Secrets struct {
	Token               sql.NullString
	TokenPublicKey      sql.NullString
	PaymentToken        sql.NullString
	BlindedPaymentToken sql.NullString
}

// EncodeSecrets turns the token fields of c into column values.
func EncodeSecrets(c domain.Confirmation) Secrets {
	var s Secrets
	if c.Token != nil {
		s.Token = valid(c.Token.Value.EncodeBase64())
		s.TokenPublicKey = valid(c.Token.PublicKey.EncodeBase64())
	}
	if c.PaymentToken != nil {
		s.PaymentToken = valid(c.PaymentToken.EncodeBase64())
	}
	if c.BlindedPaymentToken != nil {
		s.BlindedPaymentToken = valid(c.BlindedPaymentToken.EncodeBase64())
	}
	return s
}

// Apply decodes the columns back onto c.
func (s Secrets) Apply(c *domain.Confirmation) error {
	if s.Token.Valid {
		tok, err := DecodeUnblindedToken(s.Token.String, s.TokenPublicKey.String)
		if err != nil {
			return fmt.Errorf("confirmation %s token: %w", c.TransactionID, err)
		}
		c.Token = &tok
	}
	if s.PaymentToken.Valid {
		pt, err := cbr.DecodeToken(s.PaymentToken.String)
		if err != nil {
			return fmt.Errorf("confirmation %s payment token: %w", c.TransactionID, err)
		}
		c.PaymentToken = &pt
	}
	if s.BlindedPaymentToken.Valid {
		bt, err := cbr.DecodeBlindedToken(s.BlindedPaymentToken.String)
		if err != nil {
			return fmt.Errorf("confirmation %s blinded payment token: %w", c.TransactionID, err)
		}
		c.BlindedPaymentToken = &bt
	}
	return nil
}

// DecodeUnblindedToken parses a stored token and its issuer key.
func DecodeUnblindedToken(value, publicKey string) (domain.UnblindedToken, error) {
	v, err := cbr.DecodeUnblindedToken(value)
	if err != nil {
		return domain.UnblindedToken{}, err
	}
	pk, err := cbr.DecodePublicKey(publicKey)
	if err != nil {
		return domain.UnblindedToken{}, err
	}
	return domain.UnblindedToken{Value: v, PublicKey: pk}, nil
}

func valid(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

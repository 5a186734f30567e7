package domain

import (
	"time"

	"bat-ads/internal/privacy/cbr"
)

// UnblindedToken is a spendable confirmation credential together with the
// issuer key it was verified against.
type UnblindedToken struct {
	Value     cbr.UnblindedToken
	PublicKey cbr.PublicKey
}

// Equal compares the credential only.
func (t UnblindedToken) Equal(other UnblindedToken) bool {
	return t.Value.Equal(other.Value)
}

// PaymentToken is the value-bearing token obtained by redeeming an
// UnblindedToken. It is not linkable to the token that produced it.
type PaymentToken struct {
	TransactionID    string
	Value            cbr.UnblindedToken
	PublicKey        cbr.PublicKey
	ConfirmationType ConfirmationType
	AdType           AdType
	CreatedAt        time.Time
}

// Equal compares the credential only.
func (t PaymentToken) Equal(other PaymentToken) bool {
	return t.Value.Equal(other.Value)
}

// Issuers holds the public keys the ad server currently signs with.
type Issuers struct {
	Confirmations []cbr.PublicKey
	Payments      []PaymentIssuerKey
	// Ping is how often the server asks clients to refresh issuers.
	Ping time.Duration
}

// PaymentIssuerKey is a payments public key and the value of a token
// signed with it.
type PaymentIssuerKey struct {
	PublicKey cbr.PublicKey
	Value     float64
}

// IsValid reports whether both issuer kinds carry at least one key.
func (i Issuers) IsValid() bool {
	return len(i.Confirmations) > 0 && len(i.Payments) > 0
}

// HasConfirmationsKey reports whether pk is a current confirmations key.
func (i Issuers) HasConfirmationsKey(pk cbr.PublicKey) bool {
	for _, k := range i.Confirmations {
		if k.Equal(pk) {
			return true
		}
	}
	return false
}

// HasPaymentsKey reports whether pk is a current payments key.
func (i Issuers) HasPaymentsKey(pk cbr.PublicKey) bool {
	for _, k := range i.Payments {
		if k.PublicKey.Equal(pk) {
			return true
		}
	}
	return false
}

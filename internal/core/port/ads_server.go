package port

import (
	"context"
	"errors"

	"bat-ads/internal/core/domain"
	"bat-ads/internal/privacy/cbr"
)

var (
	// ErrMalformedResponse is a response that is missing required fields.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrNotReady means the server accepted the request but has no result yet.
	ErrNotReady = errors.New("not ready")
)

// SignedTokens is the issuer's answer to a batch of blinded tokens.
type SignedTokens struct {
	PublicKey    cbr.PublicKey
	BatchProof   cbr.BatchDLEQProof
	SignedTokens []cbr.SignedToken
}

// ConfirmationRequest is the payload submitted for one confirmation.
type ConfirmationRequest struct {
	TransactionID string
	Credential    string
	Payload       string
}

// AdsServer is the typed client of the ad server. Failures are returned as
// *RequestError so callers can tell retryable from fatal.
type AdsServer interface {
	GetIssuers(ctx context.Context) (domain.Issuers, error)
	// RequestSignedTokens submits blinded tokens for signing and returns the
	// nonce to collect them with.
	RequestSignedTokens(ctx context.Context, paymentID string, blinded []cbr.BlindedToken) (string, error)
	GetSignedTokens(ctx context.Context, paymentID, nonce string) (SignedTokens, error)
	// CreateConfirmation submits a confirmation. A confirmation the server
	// already knows is not an error.
	CreateConfirmation(ctx context.Context, req ConfirmationRequest) error
	// FetchPaymentToken collects the signed payment token for a submitted
	// confirmation.
	FetchPaymentToken(ctx context.Context, transactionID string) (SignedTokens, error)
	// RedeemPaymentTokens exchanges payment tokens for a payout.
	RedeemPaymentTokens(ctx context.Context, paymentID string, tokens []domain.PaymentToken) error
}

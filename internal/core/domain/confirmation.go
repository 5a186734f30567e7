package domain

import (
	"time"

	"bat-ads/internal/privacy/cbr"
)

// ConfirmationState is the position of a confirmation in the redemption
// state machine.
type ConfirmationState string

const (
	ConfirmationStatePending       ConfirmationState = "pending"
	ConfirmationStateTokenReserved ConfirmationState = "token_reserved"
	ConfirmationStatePayloadBuilt  ConfirmationState = "payload_built"
	ConfirmationStateSubmitted     ConfirmationState = "submitted"
	ConfirmationStateRedeemed      ConfirmationState = "redeemed"
	ConfirmationStateFailed        ConfirmationState = "failed"
)

// IsTerminal reports whether no further transition is possible.
func (s ConfirmationState) IsTerminal() bool {
	return s == ConfirmationStateRedeemed || s == ConfirmationStateFailed
}

// Confirmation tracks the redemption of one billable AdEvent. Once a token
// is reserved it is owned by the confirmation and never returned to the
// store, whatever happens afterwards.
type Confirmation struct {
	TransactionID      string
	PlacementID        string
	CreativeInstanceID string
	Type               ConfirmationType
	AdType             AdType
	State              ConfirmationState

	Token               *UnblindedToken
	PaymentToken        *cbr.Token
	BlindedPaymentToken *cbr.BlindedToken
	Payload             string
	Credential          string

	// WasCreated is set once the server acknowledged the create request; a
	// retry then only fetches the payment token.
	WasCreated  bool
	Attempts    int
	NextRetryAt time.Time
	LastError   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Key identifies the event the confirmation is for.
func (c Confirmation) Key() ConfirmedPlacement {
	return ConfirmedPlacement{PlacementID: c.PlacementID, Type: c.Type}
}

// ConfirmedPlacement is an entry of the durable log of redeemed
// confirmations.
type ConfirmedPlacement struct {
	PlacementID   string
	Type          ConfirmationType
	TransactionID string
	ConfirmedAt   time.Time
}

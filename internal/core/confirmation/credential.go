package confirmation

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"bat-ads/internal/core/domain"
	"bat-ads/internal/privacy/cbr"
)

// Payload is the confirmation body. Field order is the wire order.
type Payload struct {
	BlindedPaymentTokens []cbr.BlindedToken `json:"blindedPaymentTokens"`
	BuildChannel         string             `json:"buildChannel"`
	CreativeInstanceID   string             `json:"creativeInstanceId"`
	Payload              struct{}           `json:"payload"`
	Platform             string             `json:"platform"`
	PublicKey            cbr.PublicKey      `json:"publicKey"`
	TransactionID        string             `json:"transactionId"`
	Type                 string             `json:"type"`
}

// Credential proves possession of an unblinded token without revealing it:
// the token preimage and a MAC of the payload under the token's derived key.
type Credential struct {
	Payload   string `json:"payload"`
	Signature string `json:"signature"`
	T         string `json:"t"`
}

// BuildPayload serializes the payload for c.
func BuildPayload(c domain.Confirmation, blinded cbr.BlindedToken, buildChannel, platform string) (string, error) {
	if c.Token == nil {
		return "", fmt.Errorf("confirmation %s has no token", c.TransactionID)
	}
	b, err := json.Marshal(Payload{
		BlindedPaymentTokens: []cbr.BlindedToken{blinded},
		BuildChannel:         buildChannel,
		CreativeInstanceID:   c.CreativeInstanceID,
		Platform:             platform,
		PublicKey:            c.Token.PublicKey,
		TransactionID:        c.TransactionID,
		Type:                 string(c.Type),
	})
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return string(b), nil
}

// BuildCredential signs payload with token and returns the base64 encoded
// credential.
func BuildCredential(token cbr.UnblindedToken, payload string) (string, error) {
	sig := token.DeriveVerificationKey().Sign([]byte(payload))
	b, err := json.Marshal(Credential{
		Payload:   payload,
		Signature: sig.EncodeBase64(),
		T:         token.Preimage().EncodeBase64(),
	})
	if err != nil {
		return "", fmt.Errorf("marshal credential: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// ParseCredential decodes a base64 credential.
func ParseCredential(s string) (Credential, cbr.TokenPreimage, cbr.VerificationSignature, error) {
	var cred Credential
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return cred, cbr.TokenPreimage{}, cbr.VerificationSignature{}, fmt.Errorf("decode credential: %w", cbr.ErrDecode)
	}
	if err := json.Unmarshal(raw, &cred); err != nil {
		return cred, cbr.TokenPreimage{}, cbr.VerificationSignature{}, fmt.Errorf("unmarshal credential: %w", cbr.ErrDecode)
	}
	t, err := cbr.DecodeTokenPreimage(cred.T)
	if err != nil {
		return cred, cbr.TokenPreimage{}, cbr.VerificationSignature{}, err
	}
	sig, err := cbr.DecodeVerificationSignature(cred.Signature)
	if err != nil {
		return cred, cbr.TokenPreimage{}, cbr.VerificationSignature{}, err
	}
	return cred, t, sig, nil
}

// Package cbr implements Challenge Bypass tokens over the ristretto255 group.
//
// A client generates random tokens, blinds them and sends the blinded form to
// an issuer. The issuer signs blinded points with its secret key and returns a
// batch DLEQ proof that every signature was produced with the key behind its
// published PublicKey. The client verifies the proof and unblinds the
// signatures into UnblindedTokens. An UnblindedToken is redeemed by deriving
// a VerificationKey from it and signing a request; the issuer can rederive the
// same key from the token preimage without ever having seen the blinded value.
package cbr

import "errors"

var (
	// ErrDecode is returned when a base64 or binary encoding is malformed.
	ErrDecode = errors.New("cbr: malformed encoding")
	// ErrInvalidSignature is returned when a DLEQ proof does not verify
	// against the supplied public key.
	ErrInvalidSignature = errors.New("cbr: invalid signature")
	// ErrLengthMismatch is returned when batch inputs have different lengths.
	ErrLengthMismatch = errors.New("cbr: token and signature count mismatch")
)

package cbr

import (
	"encoding/base64"

	"github.com/gtank/ristretto255"
)

// SigningKey is the issuer secret k. Clients never hold one; it exists here
// so the issuer half of the protocol can be exercised against the client.
type SigningKey struct {
	k *ristretto255.Scalar
}

// GenerateSigningKey returns a fresh random signing key.
func GenerateSigningKey() (SigningKey, error) {
	k, err := randomScalar(randReader)
	if err != nil {
		return SigningKey{}, err
	}
	return SigningKey{k: k}, nil
}

// DecodeSigningKey parses a base64 encoded signing key.
func DecodeSigningKey(s string) (SigningKey, error) {
	raw, err := decodeBase64(s, scalarSize)
	if err != nil {
		return SigningKey{}, err
	}
	k, err := decodeScalar(raw)
	if err != nil {
		return SigningKey{}, err
	}
	return SigningKey{k: k}, nil
}

// EncodeBase64 returns the base64 encoding of the secret scalar.
func (sk SigningKey) EncodeBase64() string {
	return base64.StdEncoding.EncodeToString(encodeScalar(sk.k))
}

// PublicKey returns Y = k * G.
func (sk SigningKey) PublicKey() PublicKey {
	return PublicKey{point: ristretto255.NewElement().ScalarBaseMult(sk.k)}
}

// Sign returns Q = k * P. The signature is over the blinded point; the
// unblinded value is never seen.
func (sk SigningKey) Sign(blinded BlindedToken) SignedToken {
	return SignedToken{point: ristretto255.NewElement().ScalarMult(sk.k, blinded.point)}
}

// BatchProof proves that every signed[i] was produced from blinded[i] with
// this key.
func (sk SigningKey) BatchProof(blinded []BlindedToken, signed []SignedToken) (BatchDLEQProof, error) {
	if len(blinded) != len(signed) || len(blinded) == 0 {
		return BatchDLEQProof{}, ErrLengthMismatch
	}
	pub := sk.PublicKey()
	m, z := batchCombine(pub, blinded, signed)
	p, err := newDLEQProof(randReader, sk.k, pub.point, m, z)
	if err != nil {
		return BatchDLEQProof{}, err
	}
	return BatchDLEQProof{proof: p}, nil
}

// RederiveUnblindedToken recomputes (t, k * H(t)) from a revealed preimage.
func (sk SigningKey) RederiveUnblindedToken(preimage TokenPreimage) UnblindedToken {
	w := ristretto255.NewElement().ScalarMult(sk.k, preimage.element())
	return UnblindedToken{preimage: preimage, point: w}
}

// VerifyRedemption checks a credential signature produced by the holder of
// the UnblindedToken for preimage.
func (sk SigningKey) VerifyRedemption(preimage TokenPreimage, sig VerificationSignature, message []byte) bool {
	return sk.RederiveUnblindedToken(preimage).DeriveVerificationKey().Verify(sig, message)
}

// PublicKey is the issuer key Y published through the issuers resource.
type PublicKey struct {
	point *ristretto255.Element
}

// EncodeBase64 returns the base64 encoding of the compressed point.
func (pk PublicKey) EncodeBase64() string {
	if pk.point == nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(encodeElement(pk.point))
}

// String is an alias of EncodeBase64 for logging and map keys.
func (pk PublicKey) String() string {
	return pk.EncodeBase64()
}

// Equal reports whether both keys are the same point.
func (pk PublicKey) Equal(other PublicKey) bool {
	if pk.point == nil || other.point == nil {
		return pk.point == other.point
	}
	return pk.point.Equal(other.point) == 1
}

// DecodePublicKey parses a base64 encoded public key.
func DecodePublicKey(s string) (PublicKey, error) {
	raw, err := decodeBase64(s, elementSize)
	if err != nil {
		return PublicKey{}, err
	}
	p, err := decodeElement(raw)
	if err != nil {
		return PublicKey{}, err
	}
	return PublicKey{point: p}, nil
}

// MarshalText implements encoding.TextMarshaler.
func (pk PublicKey) MarshalText() ([]byte, error) {
	return []byte(pk.EncodeBase64()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (pk *PublicKey) UnmarshalText(text []byte) error {
	v, err := DecodePublicKey(string(text))
	if err != nil {
		return err
	}
	*pk = v
	return nil
}

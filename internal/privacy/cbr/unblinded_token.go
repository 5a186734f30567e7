package cbr

import (
	"crypto/hmac"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"

	"github.com/gtank/ristretto255"
)

var deriveKeyLabel = []byte("hash_derive_key")

// UnblindedToken is the spendable credential (t, W) where W = k * H(t).
type UnblindedToken struct {
	preimage TokenPreimage
	point    *ristretto255.Element
}

// Preimage returns the token preimage revealed on redemption.
func (u UnblindedToken) Preimage() TokenPreimage {
	return u.preimage
}

// DeriveVerificationKey returns the MAC key bound to this token.
func (u UnblindedToken) DeriveVerificationKey() VerificationKey {
	h := sha512.New()
	h.Write(deriveKeyLabel)
	h.Write(u.preimage[:])
	h.Write(encodeElement(u.point))
	var k VerificationKey
	copy(k[:], h.Sum(nil))
	return k
}

// Equal reports whether two tokens encode the same credential.
func (u UnblindedToken) Equal(other UnblindedToken) bool {
	if u.point == nil || other.point == nil {
		return u.point == other.point && u.preimage == other.preimage
	}
	return subtle.ConstantTimeCompare(u.preimage[:], other.preimage[:]) == 1 &&
		u.point.Equal(other.point) == 1
}

// EncodeBase64 returns the 96 byte wire form: preimage followed by W.
func (u UnblindedToken) EncodeBase64() string {
	b := make([]byte, 0, preimageSize+elementSize)
	b = append(b, u.preimage[:]...)
	b = append(b, encodeElement(u.point)...)
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeUnblindedToken parses the wire form produced by EncodeBase64.
func DecodeUnblindedToken(s string) (UnblindedToken, error) {
	b, err := decodeBase64(s, preimageSize+elementSize)
	if err != nil {
		return UnblindedToken{}, err
	}
	p, err := decodeElement(b[preimageSize:])
	if err != nil {
		return UnblindedToken{}, err
	}
	var u UnblindedToken
	copy(u.preimage[:], b[:preimageSize])
	u.point = p
	return u, nil
}

// MarshalText implements encoding.TextMarshaler.
func (u UnblindedToken) MarshalText() ([]byte, error) {
	return []byte(u.EncodeBase64()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *UnblindedToken) UnmarshalText(text []byte) error {
	v, err := DecodeUnblindedToken(string(text))
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// VerificationKey proves possession of an UnblindedToken without revealing it.
type VerificationKey [sha512.Size]byte

// Sign returns the MAC of message under the key.
func (k VerificationKey) Sign(message []byte) VerificationSignature {
	mac := hmac.New(sha512.New, k[:])
	mac.Write(message)
	var sig VerificationSignature
	copy(sig[:], mac.Sum(nil))
	return sig
}

// Verify reports whether sig is the MAC of message under the key.
func (k VerificationKey) Verify(sig VerificationSignature, message []byte) bool {
	expected := k.Sign(message)
	return hmac.Equal(expected[:], sig[:])
}

// VerificationSignature is a MAC produced by a VerificationKey.
type VerificationSignature [sha512.Size]byte

// EncodeBase64 returns the base64 encoding of the signature.
func (s VerificationSignature) EncodeBase64() string {
	return base64.StdEncoding.EncodeToString(s[:])
}

// DecodeVerificationSignature parses a base64 encoded signature.
func DecodeVerificationSignature(s string) (VerificationSignature, error) {
	var sig VerificationSignature
	b, err := decodeBase64(s, sha512.Size)
	if err != nil {
		return sig, err
	}
	copy(sig[:], b)
	return sig, nil
}

package cbr

import (
	"encoding/base64"

	"github.com/gtank/ristretto255"
)

// BlindedToken is the point sent to the issuer for signing.
type BlindedToken struct {
	point *ristretto255.Element
}

// EncodeBase64 returns the base64 encoding of the compressed point.
func (b BlindedToken) EncodeBase64() string {
	return base64.StdEncoding.EncodeToString(encodeElement(b.point))
}

// DecodeBlindedToken parses a base64 encoded blinded token.
func DecodeBlindedToken(s string) (BlindedToken, error) {
	raw, err := decodeBase64(s, elementSize)
	if err != nil {
		return BlindedToken{}, err
	}
	p, err := decodeElement(raw)
	if err != nil {
		return BlindedToken{}, err
	}
	return BlindedToken{point: p}, nil
}

// MarshalText implements encoding.TextMarshaler.
func (b BlindedToken) MarshalText() ([]byte, error) {
	return []byte(b.EncodeBase64()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *BlindedToken) UnmarshalText(text []byte) error {
	v, err := DecodeBlindedToken(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// SignedToken is the issuer's signature k * P over a blinded token.
type SignedToken struct {
	point *ristretto255.Element
}

// EncodeBase64 returns the base64 encoding of the compressed point.
func (s SignedToken) EncodeBase64() string {
	return base64.StdEncoding.EncodeToString(encodeElement(s.point))
}

// DecodeSignedToken parses a base64 encoded signed token.
func DecodeSignedToken(s string) (SignedToken, error) {
	raw, err := decodeBase64(s, elementSize)
	if err != nil {
		return SignedToken{}, err
	}
	p, err := decodeElement(raw)
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{point: p}, nil
}

// MarshalText implements encoding.TextMarshaler.
func (s SignedToken) MarshalText() ([]byte, error) {
	return []byte(s.EncodeBase64()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SignedToken) UnmarshalText(text []byte) error {
	v, err := DecodeSignedToken(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

package cbr

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/gtank/ristretto255"
)

// randReader is swapped in tests that exercise entropy failures.
var randReader io.Reader = rand.Reader

// TokenPreimage is the random value t a token is built from. It is revealed
// to the issuer only when the unblinded token is redeemed.
type TokenPreimage [preimageSize]byte

// EncodeBase64 returns the standard base64 encoding of the preimage.
func (p TokenPreimage) EncodeBase64() string {
	return base64.StdEncoding.EncodeToString(p[:])
}

// DecodeTokenPreimage parses a base64 encoded preimage.
func DecodeTokenPreimage(s string) (TokenPreimage, error) {
	var p TokenPreimage
	b, err := decodeBase64(s, preimageSize)
	if err != nil {
		return p, err
	}
	copy(p[:], b)
	return p, nil
}

func (p TokenPreimage) element() *ristretto255.Element {
	return hashToElement(p[:])
}

// Token is a locally generated secret: a preimage and the blinding scalar
// that hides it from the issuer.
type Token struct {
	preimage TokenPreimage
	blind    *ristretto255.Scalar
}

// GenerateTokens returns count fresh tokens. It fails only when the entropy
// source fails.
func GenerateTokens(count int) ([]Token, error) {
	tokens := make([]Token, 0, count)
	for range count {
		t, err := newToken(randReader)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, nil
}

func newToken(r io.Reader) (Token, error) {
	var t Token
	if _, err := io.ReadFull(r, t.preimage[:]); err != nil {
		return Token{}, fmt.Errorf("cbr: read entropy: %w", err)
	}
	blind, err := randomScalar(r)
	if err != nil {
		return Token{}, err
	}
	t.blind = blind
	return t, nil
}

func randomScalar(r io.Reader) (*ristretto255.Scalar, error) {
	var buf [64]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, fmt.Errorf("cbr: read entropy: %w", err)
	}
	return ristretto255.NewScalar().FromUniformBytes(buf[:]), nil
}

// Preimage returns the token preimage.
func (t Token) Preimage() TokenPreimage {
	return t.preimage
}

// Blind returns r * H(t). It is a pure function of the token.
func (t Token) Blind() BlindedToken {
	p := ristretto255.NewElement().ScalarMult(t.blind, t.preimage.element())
	return BlindedToken{point: p}
}

// EncodeBase64 returns the 96 byte wire form: preimage followed by the
// blinding scalar.
func (t Token) EncodeBase64() string {
	b := make([]byte, 0, preimageSize+scalarSize)
	b = append(b, t.preimage[:]...)
	b = append(b, encodeScalar(t.blind)...)
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeToken parses the wire form produced by Token.EncodeBase64.
func DecodeToken(s string) (Token, error) {
	b, err := decodeBase64(s, preimageSize+scalarSize)
	if err != nil {
		return Token{}, err
	}
	blind, err := decodeScalar(b[preimageSize:])
	if err != nil {
		return Token{}, err
	}
	var t Token
	copy(t.preimage[:], b[:preimageSize])
	t.blind = blind
	return t, nil
}

// MarshalText implements encoding.TextMarshaler.
func (t Token) MarshalText() ([]byte, error) {
	return []byte(t.EncodeBase64()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Token) UnmarshalText(text []byte) error {
	v, err := DecodeToken(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

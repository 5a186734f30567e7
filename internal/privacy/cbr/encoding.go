package cbr

import (
	"crypto/sha512"
	"encoding/base64"
	"fmt"

	"github.com/gtank/ristretto255"
)

const (
	elementSize  = 32
	scalarSize   = 32
	preimageSize = 64
)

func decodeBase64(s string, size int) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(b) != size {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrDecode, len(b), size)
	}
	return b, nil
}

func decodeElement(b []byte) (*ristretto255.Element, error) {
	if len(b) != elementSize {
		return nil, fmt.Errorf("%w: element of %d bytes", ErrDecode, len(b))
	}
	e := ristretto255.NewElement()
	if err := e.Decode(b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return e, nil
}

func decodeScalar(b []byte) (*ristretto255.Scalar, error) {
	if len(b) != scalarSize {
		return nil, fmt.Errorf("%w: scalar of %d bytes", ErrDecode, len(b))
	}
	s := ristretto255.NewScalar()
	if err := s.Decode(b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return s, nil
}

func encodeElement(e *ristretto255.Element) []byte {
	return e.Encode(make([]byte, 0, elementSize))
}

func encodeScalar(s *ristretto255.Scalar) []byte {
	return s.Encode(make([]byte, 0, scalarSize))
}

// hashToElement maps arbitrary bytes onto the group with SHA-512 as the
// uniform source, matching the ristretto255 hash-to-group construction.
func hashToElement(parts ...[]byte) *ristretto255.Element {
	h := sha512.New()
	for _, p := range parts {
		h.Write(p)
	}
	return ristretto255.NewElement().FromUniformBytes(h.Sum(nil))
}

func hashToScalar(parts ...[]byte) *ristretto255.Scalar {
	h := sha512.New()
	for _, p := range parts {
		h.Write(p)
	}
	return ristretto255.NewScalar().FromUniformBytes(h.Sum(nil))
}

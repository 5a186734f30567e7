package cbr

import (
	"crypto/sha512"
	"encoding/base64"
	"encoding/binary"
	"io"

	"github.com/gtank/ristretto255"
)

// DLEQProof is a Chaum-Pedersen proof that log_G(Y) == log_M(Z).
type DLEQProof struct {
	c *ristretto255.Scalar
	s *ristretto255.Scalar
}

func newDLEQProof(r io.Reader, k *ristretto255.Scalar, y, m, z *ristretto255.Element) (DLEQProof, error) {
	nonce, err := randomScalar(r)
	if err != nil {
		return DLEQProof{}, err
	}
	a := ristretto255.NewElement().ScalarBaseMult(nonce)
	b := ristretto255.NewElement().ScalarMult(nonce, m)
	c := challenge(y, m, z, a, b)
	s := ristretto255.NewScalar().Subtract(nonce, ristretto255.NewScalar().Multiply(c, k))
	return DLEQProof{c: c, s: s}, nil
}

func challenge(y, m, z, a, b *ristretto255.Element) *ristretto255.Scalar {
	g := ristretto255.NewElement().Base()
	return hashToScalar(
		encodeElement(g),
		encodeElement(y),
		encodeElement(m),
		encodeElement(z),
		encodeElement(a),
		encodeElement(b),
	)
}

func (p DLEQProof) verify(y, m, z *ristretto255.Element) bool {
	if p.c == nil || p.s == nil {
		return false
	}
	a := ristretto255.NewElement().Add(
		ristretto255.NewElement().ScalarBaseMult(p.s),
		ristretto255.NewElement().ScalarMult(p.c, y),
	)
	b := ristretto255.NewElement().Add(
		ristretto255.NewElement().ScalarMult(p.s, m),
		ristretto255.NewElement().ScalarMult(p.c, z),
	)
	return challenge(y, m, z, a, b).Equal(p.c) == 1
}

func (p DLEQProof) encode() []byte {
	b := make([]byte, 0, 2*scalarSize)
	b = append(b, encodeScalar(p.c)...)
	return append(b, encodeScalar(p.s)...)
}

func decodeDLEQProof(b []byte) (DLEQProof, error) {
	c, err := decodeScalar(b[:scalarSize])
	if err != nil {
		return DLEQProof{}, err
	}
	s, err := decodeScalar(b[scalarSize:])
	if err != nil {
		return DLEQProof{}, err
	}
	return DLEQProof{c: c, s: s}, nil
}

// BatchDLEQProof proves a whole batch of signatures with one DLEQ proof over
// a random linear combination of the batch.
type BatchDLEQProof struct {
	proof DLEQProof
}

// EncodeBase64 returns the 64 byte proof as base64.
func (bp BatchDLEQProof) EncodeBase64() string {
	return base64.StdEncoding.EncodeToString(bp.proof.encode())
}

// DecodeBatchDLEQProof parses a base64 encoded batch proof.
func DecodeBatchDLEQProof(s string) (BatchDLEQProof, error) {
	raw, err := decodeBase64(s, 2*scalarSize)
	if err != nil {
		return BatchDLEQProof{}, err
	}
	p, err := decodeDLEQProof(raw)
	if err != nil {
		return BatchDLEQProof{}, err
	}
	return BatchDLEQProof{proof: p}, nil
}

// MarshalText implements encoding.TextMarshaler.
func (bp BatchDLEQProof) MarshalText() ([]byte, error) {
	return []byte(bp.EncodeBase64()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (bp *BatchDLEQProof) UnmarshalText(text []byte) error {
	v, err := DecodeBatchDLEQProof(string(text))
	if err != nil {
		return err
	}
	*bp = v
	return nil
}

// Verify checks the proof for the given batch and public key.
func (bp BatchDLEQProof) Verify(blinded []BlindedToken, signed []SignedToken, pub PublicKey) bool {
	if len(blinded) != len(signed) || len(blinded) == 0 || pub.point == nil {
		return false
	}
	m, z := batchCombine(pub, blinded, signed)
	return bp.proof.verify(pub.point, m, z)
}

// VerifyAndUnblind verifies the proof and then unblinds every signed token
// with the blinding scalar of the matching token. Verification is never
// skipped: a proof that does not hold under pub yields ErrInvalidSignature.
func (bp BatchDLEQProof) VerifyAndUnblind(tokens []Token, blinded []BlindedToken, signed []SignedToken, pub PublicKey) ([]UnblindedToken, error) {
	if len(tokens) != len(blinded) || len(blinded) != len(signed) {
		return nil, ErrLengthMismatch
	}
	if !bp.Verify(blinded, signed, pub) {
		return nil, ErrInvalidSignature
	}
	out := make([]UnblindedToken, len(tokens))
	for i, t := range tokens {
		out[i] = unblind(t, signed[i])
	}
	return out, nil
}

// Unblind verifies a single signature and recovers the unblinded token.
func Unblind(signed SignedToken, token Token, pub PublicKey, proof BatchDLEQProof) (UnblindedToken, error) {
	out, err := proof.VerifyAndUnblind([]Token{token}, []BlindedToken{token.Blind()}, []SignedToken{signed}, pub)
	if err != nil {
		return UnblindedToken{}, err
	}
	return out[0], nil
}

func unblind(t Token, signed SignedToken) UnblindedToken {
	inv := ristretto255.NewScalar().Invert(t.blind)
	w := ristretto255.NewElement().ScalarMult(inv, signed.point)
	return UnblindedToken{preimage: t.preimage, point: w}
}

// batchCombine derives deterministic weights from the batch transcript and
// returns M = sum(e_i * P_i) and Z = sum(e_i * Q_i).
func batchCombine(pub PublicKey, blinded []BlindedToken, signed []SignedToken) (*ristretto255.Element, *ristretto255.Element) {
	h := sha512.New()
	h.Write(encodeElement(pub.point))
	for _, b := range blinded {
		h.Write(encodeElement(b.point))
	}
	for _, s := range signed {
		h.Write(encodeElement(s.point))
	}
	seed := h.Sum(nil)

	m := ristretto255.NewElement().Zero()
	z := ristretto255.NewElement().Zero()
	var idx [8]byte
	for i := range blinded {
		binary.BigEndian.PutUint64(idx[:], uint64(i))
		e := hashToScalar(seed, idx[:])
		m.Add(m, ristretto255.NewElement().ScalarMult(e, blinded[i].point))
		z.Add(z, ristretto255.NewElement().ScalarMult(e, signed[i].point))
	}
	return m, z
}

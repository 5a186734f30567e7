// Package cbrtest issues tokens with a throwaway signing key for tests.
package cbrtest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"bat-ads/internal/privacy/cbr"
)

// SigningKey returns a fresh issuer key.
func SigningKey(t testing.TB) cbr.SigningKey {
	t.Helper()
	key, err := cbr.GenerateSigningKey()
	require.NoError(t, err)
	return key
}

// Issue runs the full blind, sign and unblind exchange for n tokens.
func Issue(t testing.TB, key cbr.SigningKey, n int) []cbr.UnblindedToken {
	t.Helper()
	tokens, err := cbr.GenerateTokens(n)
	require.NoError(t, err)

	blinded := make([]cbr.BlindedToken, n)
	signed := make([]cbr.SignedToken, n)
	for i, tk := range tokens {
		blinded[i] = tk.Blind()
		signed[i] = key.Sign(blinded[i])
	}
	proof, err := key.BatchProof(blinded, signed)
	require.NoError(t, err)

	out, err := proof.VerifyAndUnblind(tokens, blinded, signed, key.PublicKey())
	require.NoError(t, err)
	return out
}

package confirmation

import (
	"context"
	"fmt"
	"log/slog"

	"bat-ads/internal/core/domain"
	"bat-ads/internal/privacy/cbr"
)

// RefillUnblindedTokens tops the pool up to MaxUnblindedTokens once it has
// fallen below MinUnblindedTokens. It returns how many tokens were added.
func (s *Service) RefillUnblindedTokens(ctx context.Context) (int, error) {
	issuers, ok := s.issuers.Get()
	if !ok {
		return 0, ErrIssuersUnavailable
	}
	count, err := s.tokens.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count >= s.cfg.MinUnblindedTokens {
		return 0, nil
	}
	n := s.cfg.MaxUnblindedTokens - count

	toks, err := cbr.GenerateTokens(n)
	if err != nil {
		return 0, fmt.Errorf("generate tokens: %w", err)
	}
	blinded := make([]cbr.BlindedToken, n)
	for i, t := range toks {
		blinded[i] = t.Blind()
	}

	nonce, err := s.server.RequestSignedTokens(ctx, s.cfg.PaymentID, blinded)
	if err != nil {
		return 0, fmt.Errorf("request signed tokens: %w", err)
	}
	signed, err := s.server.GetSignedTokens(ctx, s.cfg.PaymentID, nonce)
	if err != nil {
		return 0, fmt.Errorf("get signed tokens: %w", err)
	}
	if !issuers.HasConfirmationsKey(signed.PublicKey) {
		return 0, fmt.Errorf("signed tokens: %w", ErrUnknownIssuer)
	}

	unblinded, err := signed.BatchProof.VerifyAndUnblind(toks, blinded, signed.SignedTokens, signed.PublicKey)
	if err != nil {
		return 0, fmt.Errorf("verify signed tokens: %w", err)
	}
	out := make([]domain.UnblindedToken, len(unblinded))
	for i, u := range unblinded {
		out[i] = domain.UnblindedToken{Value: u, PublicKey: signed.PublicKey}
	}
	if err := s.tokens.AddTokens(ctx, out); err != nil {
		return 0, err
	}
	s.log.Info("refilled unblinded tokens", slog.Int("added", n), slog.Int("total", count+n))
	return n, nil
}

package confirmation

import (
	"context"
	"fmt"
	"log/slog"
)

// RedeemPaymentTokens pays out every stored payment token. Tokens leave the
// pool only after the server accepted them.
func (s *Service) RedeemPaymentTokens(ctx context.Context) (int, error) {
	all, err := s.payments.All(ctx)
	if err != nil {
		return 0, err
	}
	if len(all) == 0 {
		return 0, nil
	}
	if err := s.server.RedeemPaymentTokens(ctx, s.cfg.PaymentID, all); err != nil {
		return 0, fmt.Errorf("redeem payment tokens: %w", err)
	}
	if err := s.payments.RemoveTokens(ctx, all); err != nil {
		return 0, err
	}
	s.log.Info("redeemed payment tokens", slog.Int("count", len(all)))
	return len(all), nil
}

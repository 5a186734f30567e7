// Package storagetest checks a port.Storage implementation against the
// behaviour the engine relies on.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bat-ads/internal/core/domain"
	"bat-ads/internal/core/port"
	"bat-ads/internal/privacy/cbr"
	"bat-ads/internal/privacy/cbr/cbrtest"
)

// Run exercises every repository of the storage returned by open. Each
// subtest gets a fresh instance.
func Run(t *testing.T, open func(t *testing.T) port.Storage) {
	t.Run("UnblindedTokens", func(t *testing.T) { testUnblindedTokens(t, open(t)) })
	t.Run("PaymentTokens", func(t *testing.T) { testPaymentTokens(t, open(t)) })
	t.Run("AdEvents", func(t *testing.T) { testAdEvents(t, open(t)) })
	t.Run("PurgeOrphaned", func(t *testing.T) { testPurgeOrphaned(t, open(t)) })
	t.Run("Confirmations", func(t *testing.T) { testConfirmations(t, open(t)) })
	t.Run("CompleteConfirmation", func(t *testing.T) { testCompleteConfirmation(t, open(t)) })
	t.Run("PurgeConfirmations", func(t *testing.T) { testPurgeConfirmations(t, open(t)) })
}

var base = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func unblinded(t *testing.T, n int) []domain.UnblindedToken {
	key := cbrtest.SigningKey(t)
	var out []domain.UnblindedToken
	for _, u := range cbrtest.Issue(t, key, n) {
		out = append(out, domain.UnblindedToken{Value: u, PublicKey: key.PublicKey()})
	}
	return out
}

func containsToken(list []domain.UnblindedToken, tok domain.UnblindedToken) bool {
	for _, x := range list {
		if x.Equal(tok) && x.PublicKey.Equal(tok.PublicKey) {
			return true
		}
	}
	return false
}

func testUnblindedTokens(t *testing.T, s port.Storage) {
	ctx := context.Background()
	require.NoError(t, s.Ping(ctx))

	toks := unblinded(t, 3)
	require.NoError(t, s.SaveUnblindedTokens(ctx, toks))

	got, err := s.LoadUnblindedTokens(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, tok := range toks {
		assert.True(t, containsToken(got, tok))
	}

	require.NoError(t, s.DeleteUnblindedTokens(ctx, toks[:2]))
	got, err = s.LoadUnblindedTokens(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Equal(toks[2]))
}

func testPaymentTokens(t *testing.T, s port.Storage) {
	ctx := context.Background()
	key := cbrtest.SigningKey(t)
	var toks []domain.PaymentToken
	for i, u := range cbrtest.Issue(t, key, 2) {
		toks = append(toks, domain.PaymentToken{
			TransactionID:    []string{"tx-1", "tx-2"}[i],
			Value:            u,
			PublicKey:        key.PublicKey(),
			ConfirmationType: domain.ConfirmationTypeViewed,
			AdType:           domain.AdTypeNotification,
			CreatedAt:        base.Add(time.Duration(i) * time.Minute),
		})
	}
	require.NoError(t, s.SavePaymentTokens(ctx, toks))
	require.NoError(t, s.SavePaymentTokens(ctx, toks[:1]))

	got, err := s.LoadPaymentTokens(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Equal(toks[0]))
	assert.Equal(t, "tx-1", got[0].TransactionID)
	assert.True(t, got[0].PublicKey.Equal(key.PublicKey()))
	assert.Equal(t, domain.ConfirmationTypeViewed, got[0].ConfirmationType)
	assert.Equal(t, domain.AdTypeNotification, got[0].AdType)
	assert.True(t, base.Equal(got[0].CreatedAt))

	require.NoError(t, s.DeletePaymentTokens(ctx, toks))
	got, err = s.LoadPaymentTokens(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func event(placement string, ct domain.ConfirmationType, at time.Time) domain.AdEvent {
	return domain.AdEvent{
		PlacementID:        placement,
		Type:               domain.AdTypeNotification,
		ConfirmationType:   ct,
		CreativeInstanceID: "ci-" + placement,
		CreativeSetID:      "cs-1",
		CampaignID:         "camp-1",
		AdvertiserID:       "adv-1",
		Segment:            "technology & computing",
		CreatedAt:          at,
	}
}

func testAdEvents(t *testing.T, s port.Storage) {
	ctx := context.Background()
	events := []domain.AdEvent{
		event("p2", domain.ConfirmationTypeViewed, base.Add(2*time.Hour)),
		event("p1", domain.ConfirmationTypeServed, base),
		event("p2", domain.ConfirmationTypeServed, base.Add(time.Hour)),
	}
	events[1].Type = domain.AdTypeNewTabPage
	require.NoError(t, s.SaveAdEvents(ctx, events))

	got, err := s.GetAdEvents(ctx, base)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "p1", got[0].PlacementID)
	assert.Equal(t, domain.AdTypeNewTabPage, got[0].Type)
	assert.Equal(t, "technology & computing", got[0].Segment)
	assert.True(t, base.Equal(got[0].CreatedAt))
	assert.Equal(t, domain.ConfirmationTypeViewed, got[2].ConfirmationType)

	got, err = s.GetAdEvents(ctx, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, got, 2)

	seen, err := s.HasAdEvent(ctx, "p2", domain.ConfirmationTypeViewed)
	require.NoError(t, err)
	assert.True(t, seen)
	seen, err = s.HasAdEvent(ctx, "p1", domain.ConfirmationTypeViewed)
	require.NoError(t, err)
	assert.False(t, seen)

	stamps, err := s.GetAdEventTimestamps(ctx, domain.AdTypeNotification, domain.ConfirmationTypeServed)
	require.NoError(t, err)
	require.Len(t, stamps, 1)
	assert.True(t, base.Add(time.Hour).Equal(stamps[0]))

	n, err := s.PurgeExpired(ctx, base.Add(90*time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	got, err = s.GetAdEvents(ctx, time.Time{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.ConfirmationTypeViewed, got[0].ConfirmationType)
}

func testPurgeOrphaned(t *testing.T, s port.Storage) {
	ctx := context.Background()
	require.NoError(t, s.SaveAdEvents(ctx, []domain.AdEvent{
		event("orphan", domain.ConfirmationTypeServed, base),
		event("viewed", domain.ConfirmationTypeServed, base),
		event("viewed", domain.ConfirmationTypeViewed, base.Add(time.Minute)),
		event("recent", domain.ConfirmationTypeServed, base.Add(2*time.Hour)),
	}))

	n, err := s.PurgeOrphaned(ctx, base.Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := s.GetAdEvents(ctx, time.Time{})
	require.NoError(t, err)
	var placements []string
	for _, e := range got {
		placements = append(placements, e.PlacementID)
	}
	assert.Equal(t, []string{"viewed", "viewed", "recent"}, placements)
}

func pendingConfirmation(placement, txID string, at time.Time) domain.Confirmation {
	return domain.Confirmation{
		TransactionID:      txID,
		PlacementID:        placement,
		CreativeInstanceID: "ci-" + placement,
		Type:               domain.ConfirmationTypeViewed,
		AdType:             domain.AdTypeNotification,
		State:              domain.ConfirmationStatePending,
		NextRetryAt:        at,
		CreatedAt:          at,
		UpdatedAt:          at,
	}
}

func testConfirmations(t *testing.T, s port.Storage) {
	ctx := context.Background()

	_, err := s.GetConfirmation(ctx, "p1", domain.ConfirmationTypeViewed)
	require.ErrorIs(t, err, port.ErrNotFound)

	later := pendingConfirmation("p2", "tx-b", base.Add(time.Minute))
	require.NoError(t, s.SaveConfirmation(ctx, later))

	c := pendingConfirmation("p1", "tx-a", base)
	require.NoError(t, s.SaveConfirmation(ctx, c))

	tok := unblinded(t, 1)[0]
	payments, err := cbr.GenerateTokens(1)
	require.NoError(t, err)
	blinded := payments[0].Blind()
	c.State = domain.ConfirmationStateSubmitted
	c.TransactionID = "tx-a2"
	c.Token = &tok
	c.PaymentToken = &payments[0]
	c.BlindedPaymentToken = &blinded
	c.Payload = `{"transactionId":"tx-a2"}`
	c.Credential = "Y3JlZA=="
	c.WasCreated = true
	c.Attempts = 3
	c.LastError = "status 503"
	c.NextRetryAt = base.Add(time.Hour)
	c.UpdatedAt = base.Add(30 * time.Second)
	require.NoError(t, s.SaveConfirmation(ctx, c))

	got, err := s.GetConfirmation(ctx, "p1", domain.ConfirmationTypeViewed)
	require.NoError(t, err)
	assert.Equal(t, "tx-a2", got.TransactionID)
	assert.Equal(t, domain.ConfirmationStateSubmitted, got.State)
	assert.Equal(t, domain.AdTypeNotification, got.AdType)
	assert.Equal(t, c.Payload, got.Payload)
	assert.Equal(t, c.Credential, got.Credential)
	assert.True(t, got.WasCreated)
	assert.Equal(t, 3, got.Attempts)
	assert.Equal(t, "status 503", got.LastError)
	assert.True(t, c.NextRetryAt.Equal(got.NextRetryAt))
	assert.True(t, c.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, c.UpdatedAt.Equal(got.UpdatedAt))
	require.NotNil(t, got.Token)
	assert.True(t, got.Token.Equal(tok))
	assert.True(t, got.Token.PublicKey.Equal(tok.PublicKey))
	require.NotNil(t, got.PaymentToken)
	assert.Equal(t, payments[0].EncodeBase64(), got.PaymentToken.EncodeBase64())
	require.NotNil(t, got.BlindedPaymentToken)
	assert.Equal(t, blinded.EncodeBase64(), got.BlindedPaymentToken.EncodeBase64())

	_, err = s.GetConfirmation(ctx, "p1", domain.ConfirmationTypeClicked)
	require.ErrorIs(t, err, port.ErrNotFound)

	queue, err := s.GetConfirmations(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, "tx-a2", queue[0].TransactionID)
	assert.Equal(t, "tx-b", queue[1].TransactionID)
	assert.Nil(t, queue[1].Token)
}

func testCompleteConfirmation(t *testing.T, s port.Storage) {
	ctx := context.Background()
	c := pendingConfirmation("p1", "tx-1", base)
	require.NoError(t, s.SaveConfirmation(ctx, c))

	ok, err := s.IsPlacementConfirmed(ctx, "p1", domain.ConfirmationTypeViewed)
	require.NoError(t, err)
	assert.False(t, ok)

	c.State = domain.ConfirmationStateRedeemed
	require.NoError(t, s.CompleteConfirmation(ctx, c, base.Add(time.Minute)))

	ok, err = s.IsPlacementConfirmed(ctx, "p1", domain.ConfirmationTypeViewed)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.IsPlacementConfirmed(ctx, "p1", domain.ConfirmationTypeClicked)
	require.NoError(t, err)
	assert.False(t, ok)

	queue, err := s.GetConfirmations(ctx)
	require.NoError(t, err)
	assert.Empty(t, queue)

	got, err := s.GetConfirmation(ctx, "p1", domain.ConfirmationTypeViewed)
	require.NoError(t, err)
	assert.Equal(t, domain.ConfirmationStateRedeemed, got.State)
}

func testPurgeConfirmations(t *testing.T, s port.Storage) {
	ctx := context.Background()
	redeemed := pendingConfirmation("p1", "tx-1", base)
	redeemed.State = domain.ConfirmationStateRedeemed
	require.NoError(t, s.CompleteConfirmation(ctx, redeemed, base))

	failed := pendingConfirmation("p2", "tx-2", base)
	failed.State = domain.ConfirmationStateFailed
	require.NoError(t, s.SaveConfirmation(ctx, failed))

	fresh := pendingConfirmation("p3", "tx-3", base.Add(2*time.Hour))
	fresh.State = domain.ConfirmationStateFailed
	require.NoError(t, s.SaveConfirmation(ctx, fresh))

	require.NoError(t, s.SaveConfirmation(ctx, pendingConfirmation("p4", "tx-4", base)))

	n, err := s.PurgeConfirmations(ctx, base.Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = s.GetConfirmation(ctx, "p1", domain.ConfirmationTypeViewed)
	require.ErrorIs(t, err, port.ErrNotFound)
	_, err = s.GetConfirmation(ctx, "p3", domain.ConfirmationTypeViewed)
	require.NoError(t, err)
	_, err = s.GetConfirmation(ctx, "p4", domain.ConfirmationTypeViewed)
	require.NoError(t, err)

	ok, err := s.IsPlacementConfirmed(ctx, "p1", domain.ConfirmationTypeViewed)
	require.NoError(t, err)
	assert.True(t, ok)
}

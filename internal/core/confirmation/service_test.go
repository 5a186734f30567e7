package confirmation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bat-ads/internal/adapter/memory"
	"bat-ads/internal/core/domain"
	"bat-ads/internal/core/port"
	"bat-ads/internal/core/port/mocks"
	"bat-ads/internal/core/tokens"
	"bat-ads/internal/privacy/cbr"
	"bat-ads/internal/privacy/cbr/cbrtest"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type harness struct {
	t         *testing.T
	store     *memory.Storage
	server    *mocks.MockAdsServer
	unblinded *tokens.Store[domain.UnblindedToken]
	payments  *tokens.Store[domain.PaymentToken]
	issuers   *IssuersCache
	svc       *Service
	confKey   cbr.SigningKey
	payKey    cbr.SigningKey
	now       time.Time
	ids       int

	// blinded payment tokens by transaction id, as submitted
	submitted map[string]cbr.BlindedToken
	creates   []port.ConfirmationRequest
}

func newHarness(t *testing.T) *harness {
	h := &harness{
		t:         t,
		store:     memory.New(),
		server:    mocks.NewMockAdsServer(t),
		confKey:   cbrtest.SigningKey(t),
		payKey:    cbrtest.SigningKey(t),
		now:       time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC),
		submitted: make(map[string]cbr.BlindedToken),
	}
	h.unblinded = tokens.NewUnblindedStore(h.store, h.store, discard)
	h.payments = tokens.NewPaymentStore(h.store, h.store, discard)
	t.Cleanup(h.unblinded.Close)
	t.Cleanup(h.payments.Close)

	h.issuers = NewIssuersCache()
	h.issuers.Set(domain.Issuers{
		Confirmations: []cbr.PublicKey{h.confKey.PublicKey()},
		Payments:      []domain.PaymentIssuerKey{{PublicKey: h.payKey.PublicKey(), Value: 0.05}},
	})

	cfg := DefaultConfig()
	cfg.Jitter = false
	cfg.PaymentID = "6e7a1c3e-9d34-4c4e-8a3d-2a8d7f1f0c11"
	h.svc = NewService(cfg, h.server, h.store, h.store, h.unblinded, h.payments, h.issuers, discard,
		WithClock(func() time.Time { return h.now }),
		WithIDGenerator(func() string {
			h.ids++
			return fmt.Sprintf("tx-%d", h.ids)
		}),
	)
	return h
}

func (h *harness) addTokens(n int) {
	var out []domain.UnblindedToken
	for _, u := range cbrtest.Issue(h.t, h.confKey, n) {
		out = append(out, domain.UnblindedToken{Value: u, PublicKey: h.confKey.PublicKey()})
	}
	require.NoError(h.t, h.unblinded.AddTokens(context.Background(), out))
}

func (h *harness) tokenCount() int {
	n, err := h.unblinded.Count(context.Background())
	require.NoError(h.t, err)
	return n
}

// acceptCreate verifies the credential like the server would and remembers
// the blinded payment token.
func (h *harness) acceptCreate(ctx context.Context, req port.ConfirmationRequest) error {
	cred, preimage, sig, err := ParseCredential(req.Credential)
	require.NoError(h.t, err)
	require.Equal(h.t, req.Payload, cred.Payload)
	require.True(h.t, h.confKey.VerifyRedemption(preimage, sig, []byte(cred.Payload)), "credential must verify")

	var p Payload
	require.NoError(h.t, json.Unmarshal([]byte(cred.Payload), &p))
	require.Equal(h.t, req.TransactionID, p.TransactionID)
	require.Len(h.t, p.BlindedPaymentTokens, 1)
	h.submitted[req.TransactionID] = p.BlindedPaymentTokens[0]
	h.creates = append(h.creates, req)
	return nil
}

func (h *harness) signWith(key cbr.SigningKey, proofKey cbr.SigningKey) func(context.Context, string) (port.SignedTokens, error) {
	return func(_ context.Context, tx string) (port.SignedTokens, error) {
		blinded, ok := h.submitted[tx]
		require.True(h.t, ok, "payment token fetched before create for %s", tx)
		signed := proofKey.Sign(blinded)
		proof, err := proofKey.BatchProof([]cbr.BlindedToken{blinded}, []cbr.SignedToken{signed})
		require.NoError(h.t, err)
		return port.SignedTokens{
			PublicKey:    key.PublicKey(),
			BatchProof:   proof,
			SignedTokens: []cbr.SignedToken{signed},
		}, nil
	}
}

func (h *harness) event(placement string, t domain.ConfirmationType) domain.AdEvent {
	return domain.AdEvent{
		PlacementID:        placement,
		Type:               domain.AdTypeNotification,
		ConfirmationType:   t,
		CreativeInstanceID: "546fe7b0-5047-4f28-a11c-81f14edcf0f6",
		CreativeSetID:      "set",
		CampaignID:         "campaign",
		AdvertiserID:       "advertiser",
		CreatedAt:          h.now,
	}
}

func TestConfirmRedeems(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.addTokens(1)

	h.server.EXPECT().CreateConfirmation(mock.Anything, mock.Anything).RunAndReturn(h.acceptCreate).Once()
	h.server.EXPECT().FetchPaymentToken(mock.Anything, "tx-1").RunAndReturn(h.signWith(h.payKey, h.payKey)).Once()

	c, err := h.svc.Confirm(ctx, h.event("p1", domain.ConfirmationTypeViewed))
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, domain.ConfirmationStateRedeemed, c.State)
	assert.True(t, c.WasCreated)
	assert.Zero(t, h.tokenCount())

	pts, err := h.payments.All(ctx)
	require.NoError(t, err)
	require.Len(t, pts, 1)
	assert.Equal(t, "tx-1", pts[0].TransactionID)
	assert.True(t, pts[0].PublicKey.Equal(h.payKey.PublicKey()))
	assert.Equal(t, domain.ConfirmationTypeViewed, pts[0].ConfirmationType)

	ok, err := h.store.IsPlacementConfirmed(ctx, "p1", domain.ConfirmationTypeViewed)
	require.NoError(t, err)
	assert.True(t, ok)

	queued, err := h.svc.Pending(ctx)
	require.NoError(t, err)
	assert.Zero(t, queued)
}

func TestConfirmTwiceSpendsOneToken(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.addTokens(2)

	h.server.EXPECT().CreateConfirmation(mock.Anything, mock.Anything).RunAndReturn(h.acceptCreate).Once()
	h.server.EXPECT().FetchPaymentToken(mock.Anything, "tx-1").RunAndReturn(h.signWith(h.payKey, h.payKey)).Once()

	ev := h.event("p1", domain.ConfirmationTypeClicked)
	_, err := h.svc.Confirm(ctx, ev)
	require.NoError(t, err)

	again, err := h.svc.Confirm(ctx, ev)
	require.NoError(t, err)
	assert.Nil(t, again)
	assert.Equal(t, 1, h.tokenCount())
}

func TestConfirmServedIsNotBillable(t *testing.T) {
	h := newHarness(t)
	h.addTokens(1)

	c, err := h.svc.Confirm(context.Background(), h.event("p1", domain.ConfirmationTypeServed))
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.Equal(t, 1, h.tokenCount())
}

func TestOutOfTokensStaysPending(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	c, err := h.svc.Confirm(ctx, h.event("p1", domain.ConfirmationTypeViewed))
	require.ErrorIs(t, err, ErrOutOfTokens)
	require.NotNil(t, c)
	assert.Equal(t, domain.ConfirmationStatePending, c.State)

	queued, err := h.store.GetConfirmations(ctx)
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Equal(t, domain.ConfirmationStatePending, queued[0].State)

	h.addTokens(1)
	h.server.EXPECT().CreateConfirmation(mock.Anything, mock.Anything).RunAndReturn(h.acceptCreate).Once()
	h.server.EXPECT().FetchPaymentToken(mock.Anything, "tx-1").RunAndReturn(h.signWith(h.payKey, h.payKey)).Once()

	n, err := h.svc.RetryDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ok, err := h.store.IsPlacementConfirmed(ctx, "p1", domain.ConfirmationTypeViewed)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestClientErrorFailsAndLosesToken(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.addTokens(2)

	h.server.EXPECT().CreateConfirmation(mock.Anything, mock.Anything).
		Return(&port.RequestError{Op: "create confirmation", StatusCode: 400, Err: errors.New("bad request")}).Once()

	ev := h.event("p1", domain.ConfirmationTypeViewed)
	c, err := h.svc.Confirm(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, domain.ConfirmationStateFailed, c.State)
	assert.Equal(t, 1, h.tokenCount())

	queued, err := h.svc.Pending(ctx)
	require.NoError(t, err)
	assert.Zero(t, queued)

	again, err := h.svc.Confirm(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, domain.ConfirmationStateFailed, again.State)
	assert.Equal(t, 1, h.tokenCount())
}

func TestMalformedPaymentTokenFails(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.addTokens(1)

	h.server.EXPECT().CreateConfirmation(mock.Anything, mock.Anything).RunAndReturn(h.acceptCreate).Once()
	h.server.EXPECT().FetchPaymentToken(mock.Anything, "tx-1").
		Return(port.SignedTokens{PublicKey: h.payKey.PublicKey()}, nil).Once()

	c, err := h.svc.Confirm(ctx, h.event("p1", domain.ConfirmationTypeViewed))
	require.NoError(t, err)
	assert.Equal(t, domain.ConfirmationStateFailed, c.State)
}

func TestRetryReusesPayload(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.addTokens(3)

	h.server.EXPECT().CreateConfirmation(mock.Anything, mock.Anything).RunAndReturn(h.acceptCreate).Once()
	h.server.EXPECT().FetchPaymentToken(mock.Anything, "tx-1").
		Return(port.SignedTokens{}, &port.RequestError{Op: "fetch payment token", StatusCode: 503, Retryable: true, Err: errors.New("unavailable")}).Once()

	c, err := h.svc.Confirm(ctx, h.event("p1", domain.ConfirmationTypeViewed))
	require.NoError(t, err)
	assert.Equal(t, domain.ConfirmationStateSubmitted, c.State)
	assert.Equal(t, 1, c.Attempts)
	assert.Equal(t, h.now.Add(15*time.Second), c.NextRetryAt)
	credential := c.Credential

	// not due yet
	n, err := h.svc.RetryDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	h.now = h.now.Add(16 * time.Second)
	h.server.EXPECT().FetchPaymentToken(mock.Anything, "tx-1").RunAndReturn(h.signWith(h.payKey, h.payKey)).Once()

	n, err = h.svc.RetryDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, h.tokenCount())
	require.Len(t, h.creates, 1)
	assert.Equal(t, credential, h.creates[0].Credential)
}

func TestNotFoundRecreatesWithSameCredential(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.addTokens(1)

	h.server.EXPECT().CreateConfirmation(mock.Anything, mock.Anything).RunAndReturn(h.acceptCreate).Twice()
	h.server.EXPECT().FetchPaymentToken(mock.Anything, "tx-1").
		Return(port.SignedTokens{}, &port.RequestError{StatusCode: 404, Retryable: true, Err: errors.New("not found")}).Once()

	c, err := h.svc.Confirm(ctx, h.event("p1", domain.ConfirmationTypeViewed))
	require.NoError(t, err)
	assert.False(t, c.WasCreated)
	assert.Equal(t, h.now, c.NextRetryAt)

	h.server.EXPECT().FetchPaymentToken(mock.Anything, "tx-1").RunAndReturn(h.signWith(h.payKey, h.payKey)).Once()
	_, err = h.svc.RetryDue(ctx)
	require.NoError(t, err)

	require.Len(t, h.creates, 2)
	assert.Equal(t, h.creates[0].Credential, h.creates[1].Credential)
}

func TestInvalidSignatureRetriesWithFreshToken(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.addTokens(2)
	forger := cbrtest.SigningKey(t)

	h.server.EXPECT().CreateConfirmation(mock.Anything, mock.Anything).RunAndReturn(h.acceptCreate).Twice()
	h.server.EXPECT().FetchPaymentToken(mock.Anything, "tx-1").RunAndReturn(h.signWith(h.payKey, forger)).Once()

	c, err := h.svc.Confirm(ctx, h.event("p1", domain.ConfirmationTypeViewed))
	require.NoError(t, err)
	assert.Equal(t, domain.ConfirmationStatePending, c.State)
	assert.Equal(t, "tx-2", c.TransactionID)
	assert.Nil(t, c.Token)
	assert.Equal(t, 1, h.tokenCount())

	queued, err := h.store.GetConfirmations(ctx)
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Equal(t, "tx-2", queued[0].TransactionID)

	h.now = h.now.Add(time.Minute)
	h.server.EXPECT().FetchPaymentToken(mock.Anything, "tx-2").RunAndReturn(h.signWith(h.payKey, h.payKey)).Once()
	_, err = h.svc.RetryDue(ctx)
	require.NoError(t, err)

	assert.Zero(t, h.tokenCount())
	ok, err := h.store.IsPlacementConfirmed(ctx, "p1", domain.ConfirmationTypeViewed)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEqual(t, h.creates[0].Credential, h.creates[1].Credential)
}

func TestUnknownPaymentKeyRetries(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.addTokens(1)
	rotated := cbrtest.SigningKey(t)

	h.server.EXPECT().CreateConfirmation(mock.Anything, mock.Anything).RunAndReturn(h.acceptCreate).Once()
	h.server.EXPECT().FetchPaymentToken(mock.Anything, "tx-1").RunAndReturn(h.signWith(rotated, rotated)).Once()

	c, err := h.svc.Confirm(ctx, h.event("p1", domain.ConfirmationTypeViewed))
	require.NoError(t, err)
	assert.Equal(t, domain.ConfirmationStateSubmitted, c.State)
	assert.Contains(t, c.LastError, ErrUnknownIssuer.Error())
	assert.True(t, c.NextRetryAt.After(h.now))
}

func TestCancelledSubmissionKeepsTokenConsumed(t *testing.T) {
	h := newHarness(t)
	h.addTokens(1)
	ctx, cancel := context.WithCancel(context.Background())

	h.server.EXPECT().CreateConfirmation(mock.Anything, mock.Anything).
		RunAndReturn(func(context.Context, port.ConfirmationRequest) error {
			cancel()
			return context.Canceled
		}).Once()

	_, err := h.svc.Confirm(ctx, h.event("p1", domain.ConfirmationTypeViewed))
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, h.tokenCount())

	queued, err := h.store.GetConfirmations(context.Background())
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Equal(t, domain.ConfirmationStateSubmitted, queued[0].State)
	assert.NotNil(t, queued[0].Token)
	assert.NotEmpty(t, queued[0].Credential)
}

func TestUnhealthyStorageStopsSpending(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.addTokens(2)

	h.store.SetError(errors.New("io error"))
	require.Error(t, h.unblinded.CheckHealth(ctx))

	h.store.SetError(nil)
	c, err := h.svc.Confirm(ctx, h.event("p1", domain.ConfirmationTypeViewed))
	require.ErrorIs(t, err, tokens.ErrStorageUnhealthy)
	assert.Equal(t, domain.ConfirmationStatePending, c.State)
	assert.Equal(t, 2, h.tokenCount())
}

func TestFailedReservationSaveStopsSpending(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.addTokens(4)

	// the pending record saves, the token_reserved one does not
	h.store.FailNext("SaveConfirmation", nil)
	h.store.FailNext("SaveConfirmation", errors.New("disk full"))
	_, err := h.svc.Confirm(ctx, h.event("p1", domain.ConfirmationTypeViewed))
	require.ErrorContains(t, err, "disk full")
	assert.Equal(t, 3, h.tokenCount())
	healthy, err := h.unblinded.Healthy(ctx)
	require.NoError(t, err)
	assert.False(t, healthy)

	_, err = h.svc.RetryDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, h.tokenCount())

	h.server.EXPECT().CreateConfirmation(mock.Anything, mock.Anything).RunAndReturn(h.acceptCreate).Once()
	h.server.EXPECT().FetchPaymentToken(mock.Anything, "tx-1").RunAndReturn(h.signWith(h.payKey, h.payKey)).Once()
	require.NoError(t, h.unblinded.CheckHealth(ctx))
	n, err := h.svc.RetryDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, h.tokenCount())
}

func TestCompleteFailureStoresPaymentTokenOnce(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.addTokens(1)

	h.server.EXPECT().CreateConfirmation(mock.Anything, mock.Anything).RunAndReturn(h.acceptCreate).Once()
	h.server.EXPECT().FetchPaymentToken(mock.Anything, "tx-1").RunAndReturn(h.signWith(h.payKey, h.payKey)).Twice()

	h.store.FailNext("CompleteConfirmation", errors.New("disk full"))
	_, err := h.svc.Confirm(ctx, h.event("p1", domain.ConfirmationTypeViewed))
	require.ErrorContains(t, err, "complete confirmation")

	_, err = h.svc.RetryDue(ctx)
	require.NoError(t, err)

	inMemory, err := h.payments.All(ctx)
	require.NoError(t, err)
	persisted, err := h.store.LoadPaymentTokens(ctx)
	require.NoError(t, err)
	assert.Len(t, inMemory, 1)
	assert.Len(t, persisted, 1)

	ok, err := h.store.IsPlacementConfirmed(ctx, "p1", domain.ConfirmationTypeViewed)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBackoff(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, 15*time.Second, h.svc.Backoff(0))
	assert.Equal(t, 30*time.Second, h.svc.Backoff(1))
	assert.Equal(t, 4*time.Minute, h.svc.Backoff(4))
	assert.Equal(t, time.Hour, h.svc.Backoff(8))
	assert.Equal(t, time.Hour, h.svc.Backoff(500))

	h.svc.cfg.Jitter = true
	for i := 0; i < 100; i++ {
		d := h.svc.Backoff(2)
		assert.InDelta(t, float64(time.Minute), float64(d), float64(6*time.Second))
	}
}

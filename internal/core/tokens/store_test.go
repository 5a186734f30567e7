package tokens

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bat-ads/internal/core/domain"
	"bat-ads/internal/core/port/mocks"
	"bat-ads/internal/privacy/cbr"
	"bat-ads/internal/privacy/cbr/cbrtest"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeRepo struct {
	rows      []domain.UnblindedToken
	deleteErr error
	saveErr   error
}

func (f *fakeRepo) Save(_ context.Context, t []domain.UnblindedToken) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.rows = append(f.rows, t...)
	return nil
}

func (f *fakeRepo) Load(context.Context) ([]domain.UnblindedToken, error) {
	out := make([]domain.UnblindedToken, len(f.rows))
	copy(out, f.rows)
	return out, nil
}

func (f *fakeRepo) Delete(_ context.Context, t []domain.UnblindedToken) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.rows = without(f.rows, t)
	return nil
}

func issue(t *testing.T, key cbr.SigningKey, n int) []domain.UnblindedToken {
	out := make([]domain.UnblindedToken, 0, n)
	for _, u := range cbrtest.Issue(t, key, n) {
		out = append(out, domain.UnblindedToken{Value: u, PublicKey: key.PublicKey()})
	}
	return out
}

func TestGetTokenRemovesFromStorageFirst(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	s := NewStore[domain.UnblindedToken]("test", repo, nil, discard)
	defer s.Close()

	toks := issue(t, cbrtest.SigningKey(t), 3)
	require.NoError(t, s.AddTokens(ctx, toks))
	require.Len(t, repo.rows, 3)

	got, err := s.GetToken(ctx)
	require.NoError(t, err)
	assert.True(t, got.Equal(toks[0]))
	assert.Len(t, repo.rows, 2)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestGetTokenEmpty(t *testing.T) {
	s := NewStore[domain.UnblindedToken]("test", &fakeRepo{}, nil, discard)
	defer s.Close()

	_, err := s.GetToken(context.Background())
	assert.ErrorIs(t, err, ErrEmpty)
}

// TestConcurrentGetTokenAtMostOnce hammers the store from many goroutines:
// every token must be handed out at most once.
func TestConcurrentGetTokenAtMostOnce(t *testing.T) {
	ctx := context.Background()
	s := NewStore[domain.UnblindedToken]("test", &fakeRepo{}, nil, discard)
	defer s.Close()

	const pool = 40
	require.NoError(t, s.AddTokens(ctx, issue(t, cbrtest.SigningKey(t), pool)))

	var (
		mu  sync.Mutex
		got []domain.UnblindedToken
		wg  sync.WaitGroup
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tk, err := s.GetToken(ctx)
			if errors.Is(err, ErrEmpty) {
				return
			}
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			got = append(got, tk)
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, got, pool)
	for i := range got {
		for j := i + 1; j < len(got); j++ {
			assert.False(t, got[i].Equal(got[j]), "token %d handed out twice", i)
		}
	}
}

func TestDeleteFailureMarksUnhealthy(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	s := NewStore[domain.UnblindedToken]("test", repo, nil, discard)
	defer s.Close()

	require.NoError(t, s.AddTokens(ctx, issue(t, cbrtest.SigningKey(t), 2)))

	repo.deleteErr = errors.New("disk full")
	_, err := s.GetToken(ctx)
	require.Error(t, err)

	// the token stays in the pool but nothing can be spent
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	repo.deleteErr = nil
	_, err = s.GetToken(ctx)
	assert.ErrorIs(t, err, ErrStorageUnhealthy)

	require.NoError(t, s.CheckHealth(ctx))
	_, err = s.GetToken(ctx)
	assert.NoError(t, err)
}

func TestCheckHealthPingFailure(t *testing.T) {
	ctx := context.Background()
	pinger := pingerFunc(func(context.Context) error { return errors.New("down") })
	s := NewStore[domain.UnblindedToken]("test", &fakeRepo{}, pinger, discard)
	defer s.Close()

	require.Error(t, s.CheckHealth(ctx))
	healthy, err := s.Healthy(ctx)
	require.NoError(t, err)
	assert.False(t, healthy)
}

func TestLoadDropsTokensOfRotatedKey(t *testing.T) {
	ctx := context.Background()
	oldKey, newKey := cbrtest.SigningKey(t), cbrtest.SigningKey(t)
	stale := issue(t, oldKey, 2)
	fresh := issue(t, newKey, 3)

	repo := &fakeRepo{rows: append(append([]domain.UnblindedToken{}, stale...), fresh...)}
	s := NewStore[domain.UnblindedToken]("test", repo, nil, discard)
	defer s.Close()

	issuers := domain.Issuers{Confirmations: []cbr.PublicKey{newKey.PublicKey()}}
	dropped, err := s.Load(ctx, SignedByConfirmationsIssuer(issuers))
	require.NoError(t, err)
	assert.Equal(t, 2, dropped)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, repo.rows, 3)
}

func TestRemoveTokens(t *testing.T) {
	ctx := context.Background()
	s := NewStore[domain.UnblindedToken]("test", &fakeRepo{}, nil, discard)
	defer s.Close()

	toks := issue(t, cbrtest.SigningKey(t), 3)
	require.NoError(t, s.AddTokens(ctx, toks))
	require.NoError(t, s.RemoveToken(ctx, toks[1]))

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, all[0].Equal(toks[0]))
	assert.True(t, all[1].Equal(toks[2]))
}

func TestUnblindedStoreUsesRepository(t *testing.T) {
	ctx := context.Background()
	repo := mocks.NewMockTokenRepository(t)
	toks := issue(t, cbrtest.SigningKey(t), 1)

	repo.EXPECT().SaveUnblindedTokens(mock.Anything, toks).Return(nil).Once()
	repo.EXPECT().DeleteUnblindedTokens(mock.Anything, toks).Return(nil).Once()

	s := NewUnblindedStore(repo, nil, discard)
	defer s.Close()

	require.NoError(t, s.AddTokens(ctx, toks))
	got, err := s.GetToken(ctx)
	require.NoError(t, err)
	assert.True(t, got.Equal(toks[0]))
}

func TestAddTokensSaveFailure(t *testing.T) {
	ctx := context.Background()
	repo := mocks.NewMockPaymentTokenRepository(t)
	repo.EXPECT().SavePaymentTokens(mock.Anything, mock.Anything).Return(errors.New("locked"))

	s := NewPaymentStore(repo, nil, discard)
	defer s.Close()

	u := cbrtest.Issue(t, cbrtest.SigningKey(t), 1)[0]
	err := s.AddTokens(ctx, []domain.PaymentToken{{TransactionID: "tx", Value: u}})
	require.Error(t, err)

	healthy, err := s.Healthy(ctx)
	require.NoError(t, err)
	assert.False(t, healthy)
}

func TestAddTokensSkipsTokensAlreadyPooled(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	s := NewStore[domain.UnblindedToken]("test", repo, nil, discard)
	defer s.Close()

	toks := issue(t, cbrtest.SigningKey(t), 2)
	require.NoError(t, s.AddTokens(ctx, toks[:1]))
	require.NoError(t, s.AddTokens(ctx, []domain.UnblindedToken{toks[0], toks[1], toks[1]}))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, repo.rows, 2)
}

func TestMarkUnhealthyBlocksSpending(t *testing.T) {
	ctx := context.Background()
	s := NewStore[domain.UnblindedToken]("test", &fakeRepo{}, nil, discard)
	defer s.Close()
	require.NoError(t, s.AddTokens(ctx, issue(t, cbrtest.SigningKey(t), 1)))

	require.NoError(t, s.MarkUnhealthy(ctx, errors.New("confirmation write failed")))
	_, err := s.GetToken(ctx)
	assert.ErrorIs(t, err, ErrStorageUnhealthy)

	require.NoError(t, s.CheckHealth(ctx))
	_, err = s.GetToken(ctx)
	assert.NoError(t, err)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

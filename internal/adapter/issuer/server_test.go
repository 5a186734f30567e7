package issuer

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bat-ads/internal/core/confirmation"
	"bat-ads/internal/core/domain"
	"bat-ads/internal/privacy/cbr"
	"bat-ads/internal/privacy/cbr/cbrtest"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func credentialFor(t *testing.T, key cbr.SigningKey, txID string) (string, string) {
	t.Helper()
	tok := domain.UnblindedToken{Value: cbrtest.Issue(t, key, 1)[0], PublicKey: key.PublicKey()}
	return credentialWith(t, tok, txID)
}

func credentialWith(t *testing.T, tok domain.UnblindedToken, txID string) (string, string) {
	t.Helper()
	payments, err := cbr.GenerateTokens(1)
	require.NoError(t, err)
	c := domain.Confirmation{TransactionID: txID, CreativeInstanceID: "ci", Type: domain.ConfirmationTypeViewed, Token: &tok}
	payload, err := confirmation.BuildPayload(c, payments[0].Blind(), "release", "linux")
	require.NoError(t, err)
	cred, err := confirmation.BuildCredential(tok.Value, payload)
	require.NoError(t, err)
	return cred, payload
}

func post(t *testing.T, srv *httptest.Server, txID, cred, payload string) int {
	t.Helper()
	resp, err := http.Post(srv.URL+"/v3/confirmation/"+txID+"/"+url.PathEscape(cred), "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestCreateConfirmationRejectsForeignToken(t *testing.T) {
	s := New(cbrtest.SigningKey(t), cbrtest.SigningKey(t), discard)
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	cred, payload := credentialFor(t, cbrtest.SigningKey(t), "tx-1")
	assert.Equal(t, http.StatusBadRequest, post(t, srv, "tx-1", cred, payload))
	assert.Zero(t, s.Confirmations())
}

func TestCreateConfirmationRejectsTamperedPayload(t *testing.T) {
	key := cbrtest.SigningKey(t)
	s := New(key, cbrtest.SigningKey(t), discard)
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	cred, payload := credentialFor(t, key, "tx-1")
	assert.Equal(t, http.StatusBadRequest, post(t, srv, "tx-1", cred, strings.Replace(payload, "view", "click", 1)))
	assert.Equal(t, http.StatusBadRequest, post(t, srv, "tx-2", cred, payload))
	assert.Equal(t, http.StatusCreated, post(t, srv, "tx-1", cred, payload))
	assert.Equal(t, http.StatusConflict, post(t, srv, "tx-1", cred, payload))
}

func TestCreateConfirmationRejectsDoubleSpend(t *testing.T) {
	key := cbrtest.SigningKey(t)
	s := New(key, cbrtest.SigningKey(t), discard)
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	tok := domain.UnblindedToken{Value: cbrtest.Issue(t, key, 1)[0], PublicKey: key.PublicKey()}
	cred, payload := credentialWith(t, tok, "tx-1")
	require.Equal(t, http.StatusCreated, post(t, srv, "tx-1", cred, payload))

	cred, payload = credentialWith(t, tok, "tx-2")
	assert.Equal(t, http.StatusBadRequest, post(t, srv, "tx-2", cred, payload))
	assert.Equal(t, 1, s.Confirmations())
}

func TestFailNextIsConsumedInOrder(t *testing.T) {
	s := New(cbrtest.SigningKey(t), cbrtest.SigningKey(t), discard)
	srv := httptest.NewServer(s.Router())
	defer srv.Close()
	s.FailNext(RouteIssuers, http.StatusServiceUnavailable, http.StatusBadGateway)

	for _, want := range []int{http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusOK} {
		resp, err := http.Get(srv.URL + "/v3/issuers/")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, want, resp.StatusCode)
	}
}

package adserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"bat-ads/internal/core/domain"
	"bat-ads/internal/core/port"
	"bat-ads/internal/privacy/cbr"
)

const (
	issuersName       = "confirmations"
	paymentIssuerName = "payments"
)

// Client is the ad server API used by the confirmation service.
type Client struct {
	transport port.Transport
	baseURL   string
}

var _ port.AdsServer = (*Client)(nil)

// New returns a client for the server at baseURL, e.g.
// "https://anonymous.ads.example.com".
func New(t port.Transport, baseURL string) *Client {
	return &Client{transport: t, baseURL: strings.TrimRight(baseURL, "/")}
}

func (c *Client) url(parts ...string) string {
	return c.baseURL + "/v3/" + strings.Join(parts, "/")
}

// GetIssuers fetches the current confirmations and payments public keys.
func (c *Client) GetIssuers(ctx context.Context) (domain.Issuers, error) {
	const op = "get issuers"
	body, err := c.do(ctx, op, port.Request{Method: http.MethodGet, URL: c.url("issuers") + "/"}, http.StatusOK)
	if err != nil {
		return domain.Issuers{}, err
	}

	var out domain.Issuers
	if ms := gjson.GetBytes(body, "ping").Int(); ms > 0 {
		out.Ping = time.Duration(ms) * time.Millisecond
	}
	for _, issuer := range gjson.GetBytes(body, "issuers").Array() {
		name := issuer.Get("name").String()
		for _, key := range issuer.Get("publicKeys").Array() {
			pk, err := cbr.DecodePublicKey(key.Get("publicKey").String())
			if err != nil {
				return domain.Issuers{}, malformed(op, fmt.Errorf("%s public key: %w", name, err))
			}
			switch name {
			case issuersName:
				out.Confirmations = append(out.Confirmations, pk)
			case paymentIssuerName:
				value, _ := strconv.ParseFloat(key.Get("associatedValue").String(), 64)
				out.Payments = append(out.Payments, domain.PaymentIssuerKey{PublicKey: pk, Value: value})
			}
		}
	}
	if !out.IsValid() {
		return domain.Issuers{}, malformed(op, errors.New("missing issuer keys"))
	}
	return out, nil
}

// RequestSignedTokens submits blinded tokens for signing.
func (c *Client) RequestSignedTokens(ctx context.Context, paymentID string, blinded []cbr.BlindedToken) (string, error) {
	const op = "request signed tokens"
	req, err := json.Marshal(struct {
		BlindedTokens []cbr.BlindedToken `json:"blindedTokens"`
	}{blinded})
	if err != nil {
		return "", err
	}
	body, err := c.do(ctx, op, port.Request{
		Method:  http.MethodPost,
		URL:     c.url("confirmation", "token", url.PathEscape(paymentID)),
		Body:    req,
		Headers: jsonHeaders,
	}, http.StatusCreated, http.StatusOK)
	if err != nil {
		return "", err
	}
	nonce := gjson.GetBytes(body, "nonce").String()
	if nonce == "" {
		return "", malformed(op, errors.New("missing nonce"))
	}
	return nonce, nil
}

// GetSignedTokens collects the batch signed for nonce.
func (c *Client) GetSignedTokens(ctx context.Context, paymentID, nonce string) (port.SignedTokens, error) {
	const op = "get signed tokens"
	u := c.url("confirmation", "token", url.PathEscape(paymentID)) + "?" + url.Values{"nonce": {nonce}}.Encode()
	body, err := c.do(ctx, op, port.Request{Method: http.MethodGet, URL: u}, http.StatusOK)
	if err != nil {
		return port.SignedTokens{}, err
	}
	signed, err := parseSignedTokens(gjson.ParseBytes(body))
	if err != nil {
		return port.SignedTokens{}, malformed(op, err)
	}
	return signed, nil
}

// CreateConfirmation submits the payload under the credential. 409 means the
// server already has it.
func (c *Client) CreateConfirmation(ctx context.Context, req port.ConfirmationRequest) error {
	_, err := c.do(ctx, "create confirmation", port.Request{
		Method:  http.MethodPost,
		URL:     c.url("confirmation", url.PathEscape(req.TransactionID), url.PathEscape(req.Credential)),
		Body:    []byte(req.Payload),
		Headers: jsonHeaders,
	}, http.StatusCreated, http.StatusOK, http.StatusConflict)
	return err
}

// FetchPaymentToken collects the signed payment token for transactionID.
func (c *Client) FetchPaymentToken(ctx context.Context, transactionID string) (port.SignedTokens, error) {
	const op = "fetch payment token"
	body, err := c.do(ctx, op, port.Request{
		Method: http.MethodGet,
		URL:    c.url("confirmation", url.PathEscape(transactionID), "paymentToken"),
	}, http.StatusOK)
	if err != nil {
		return port.SignedTokens{}, err
	}
	res := gjson.ParseBytes(body)
	if id := res.Get("id").String(); id != transactionID {
		return port.SignedTokens{}, malformed(op, fmt.Errorf("id %q does not match", id))
	}
	pt := res.Get("paymentToken")
	if !pt.Exists() {
		return port.SignedTokens{}, malformed(op, errors.New("missing paymentToken"))
	}
	signed, err := parseSignedTokens(pt)
	if err != nil {
		return port.SignedTokens{}, malformed(op, err)
	}
	return signed, nil
}

type credential struct {
	Signature string `json:"signature"`
	T         string `json:"t"`
}

type paymentCredential struct {
	Credential credential    `json:"credential"`
	PublicKey  cbr.PublicKey `json:"publicKey"`
}

// RedeemPaymentTokens exchanges tokens for a payout to paymentID.
func (c *Client) RedeemPaymentTokens(ctx context.Context, paymentID string, tokens []domain.PaymentToken) error {
	payload, err := json.Marshal(struct {
		PaymentID string `json:"paymentId"`
	}{paymentID})
	if err != nil {
		return err
	}
	creds := make([]paymentCredential, len(tokens))
	for i, t := range tokens {
		creds[i] = paymentCredential{
			Credential: credential{
				Signature: t.Value.DeriveVerificationKey().Sign(payload).EncodeBase64(),
				T:         t.Value.Preimage().EncodeBase64(),
			},
			PublicKey: t.PublicKey,
		}
	}
	body, err := json.Marshal(struct {
		Payload            string              `json:"payload"`
		PaymentCredentials []paymentCredential `json:"paymentCredentials"`
	}{string(payload), creds})
	if err != nil {
		return err
	}
	_, err = c.do(ctx, "redeem payment tokens", port.Request{
		Method:  http.MethodPut,
		URL:     c.url("confirmation", "payment", url.PathEscape(paymentID)),
		Body:    body,
		Headers: jsonHeaders,
	}, http.StatusOK)
	return err
}

var jsonHeaders = map[string]string{"Content-Type": "application/json"}

// do sends req and classifies the outcome. Statuses outside ok become a
// *port.RequestError; 2xx ok bodies that are not JSON are retryable.
func (c *Client) do(ctx context.Context, op string, req port.Request, ok ...int) ([]byte, error) {
	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		return nil, &port.RequestError{Op: op, Retryable: true, Err: err}
	}
	for _, code := range ok {
		if resp.StatusCode != code {
			continue
		}
		if len(resp.Body) > 0 && !gjson.ValidBytes(resp.Body) {
			return nil, &port.RequestError{Op: op, StatusCode: resp.StatusCode, Retryable: true, Err: errors.New("invalid json")}
		}
		return resp.Body, nil
	}
	return nil, statusError(op, resp.StatusCode)
}

func statusError(op string, code int) error {
	switch {
	case code == http.StatusAccepted:
		return &port.RequestError{Op: op, StatusCode: code, Retryable: true, Err: port.ErrNotReady}
	case code == http.StatusNotFound, code == http.StatusTooManyRequests:
		return &port.RequestError{Op: op, StatusCode: code, Retryable: true, Err: errors.New(http.StatusText(code))}
	case code >= 500:
		return &port.RequestError{Op: op, StatusCode: code, Retryable: true, Err: errors.New(http.StatusText(code))}
	case code >= 400:
		return &port.RequestError{Op: op, StatusCode: code, Err: errors.New(http.StatusText(code))}
	default:
		return &port.RequestError{Op: op, StatusCode: code, Retryable: true, Err: fmt.Errorf("unexpected status %d", code)}
	}
}

func malformed(op string, err error) error {
	return &port.RequestError{Op: op, StatusCode: http.StatusOK, Err: fmt.Errorf("%w: %v", port.ErrMalformedResponse, err)}
}

// parseSignedTokens reads {publicKey, batchProof, signedTokens}.
func parseSignedTokens(res gjson.Result) (port.SignedTokens, error) {
	f := res.Get("publicKey")
	if !f.Exists() {
		return port.SignedTokens{}, errors.New("missing publicKey")
	}
	pk, err := cbr.DecodePublicKey(f.String())
	if err != nil {
		return port.SignedTokens{}, fmt.Errorf("publicKey: %w", err)
	}
	f = res.Get("batchProof")
	if !f.Exists() {
		return port.SignedTokens{}, errors.New("missing batchProof")
	}
	proof, err := cbr.DecodeBatchDLEQProof(f.String())
	if err != nil {
		return port.SignedTokens{}, fmt.Errorf("batchProof: %w", err)
	}
	f = res.Get("signedTokens")
	if !f.IsArray() || len(f.Array()) == 0 {
		return port.SignedTokens{}, errors.New("missing signedTokens")
	}
	signed := make([]cbr.SignedToken, 0, len(f.Array()))
	for _, v := range f.Array() {
		st, err := cbr.DecodeSignedToken(v.String())
		if err != nil {
			return port.SignedTokens{}, fmt.Errorf("signedTokens: %w", err)
		}
		signed = append(signed, st)
	}
	return port.SignedTokens{PublicKey: pk, BatchProof: proof, SignedTokens: signed}, nil
}

// Package issuer is a local stand-in for the ad server: it signs token
// batches, accepts confirmations and pays out payment tokens. It backs
// integration tests and the issuer command.
package issuer

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"bat-ads/internal/core/confirmation"
	"bat-ads/internal/privacy/cbr"
)

// Route names accepted by FailNext.
const (
	RouteIssuers            = "issuers"
	RouteRequestTokens      = "request_tokens"
	RouteGetTokens          = "get_tokens"
	RouteCreateConfirmation = "create_confirmation"
	RoutePaymentToken       = "payment_token"
	RoutePayout             = "payout"
)

type batch struct {
	signed []cbr.SignedToken
	proof  cbr.BatchDLEQProof
}

type confirmationRecord struct {
	id                 string
	typ                string
	creativeInstanceID string
	blinded            cbr.BlindedToken
	createdAt          time.Time
}

// Payout is one accepted payment token redemption.
type Payout struct {
	PaymentID string
	Tokens    int
}

// Server implements the ad server endpoints over chi.
type Server struct {
	confirmations cbr.SigningKey
	payments      cbr.SigningKey
	ping          time.Duration
	logger        *slog.Logger
	router        chi.Router

	mu        sync.Mutex
	batches   map[string]batch
	confirmed map[string]confirmationRecord
	spent     map[cbr.TokenPreimage]struct{}
	payouts   []Payout
	failures  map[string][]int
}

// New returns a server that signs with the given keys.
func New(confirmations, payments cbr.SigningKey, logger *slog.Logger) *Server {
	s := &Server{
		confirmations: confirmations,
		payments:      payments,
		ping:          2 * time.Hour,
		logger:        logger,
		batches:       make(map[string]batch),
		confirmed:     make(map[string]confirmationRecord),
		spent:         make(map[cbr.TokenPreimage]struct{}),
		failures:      make(map[string][]int),
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Route("/v3", func(r chi.Router) {
		r.Get("/issuers/", s.handleIssuers)
		r.Post("/confirmation/token/{paymentID}", s.handleRequestTokens)
		r.Get("/confirmation/token/{paymentID}", s.handleGetTokens)
		r.Put("/confirmation/payment/{paymentID}", s.handlePayout)
		r.Post("/confirmation/{id}/{credential}", s.handleCreateConfirmation)
		r.Get("/confirmation/{id}/paymentToken", s.handlePaymentToken)
	})
	s.router = r
	return s
}

// Router returns the underlying http.Handler.
func (s *Server) Router() http.Handler {
	return s.router
}

// FailNext makes the next calls to route answer with the given statuses,
// one per call, before normal handling resumes.
func (s *Server) FailNext(route string, statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = append(s.failures[route], statuses...)
}

// DelayPaymentToken makes the next n fetches for a confirmation answer 202.
func (s *Server) DelayPaymentToken(n int) {
	s.FailNext(RoutePaymentToken, repeat(http.StatusAccepted, n)...)
}

// Confirmations returns how many confirmations were accepted.
func (s *Server) Confirmations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.confirmed)
}

// Payouts returns the accepted payouts in order.
func (s *Server) Payouts() []Payout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Payout(nil), s.payouts...)
}

func (s *Server) injected(w http.ResponseWriter, route string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.failures[route]
	if len(q) == 0 {
		return false
	}
	s.failures[route] = q[1:]
	w.WriteHeader(q[0])
	return true
}

type publicKey struct {
	PublicKey       string `json:"publicKey"`
	AssociatedValue string `json:"associatedValue"`
}

type issuerEntry struct {
	Name       string      `json:"name"`
	PublicKeys []publicKey `json:"publicKeys"`
}

func (s *Server) handleIssuers(w http.ResponseWriter, r *http.Request) {
	if s.injected(w, RouteIssuers) {
		return
	}
	writeJSON(w, s.logger, http.StatusOK, struct {
		Ping    int64         `json:"ping"`
		Issuers []issuerEntry `json:"issuers"`
	}{
		Ping: s.ping.Milliseconds(),
		Issuers: []issuerEntry{
			{Name: "confirmations", PublicKeys: []publicKey{{PublicKey: s.confirmations.PublicKey().EncodeBase64()}}},
			{Name: "payments", PublicKeys: []publicKey{{PublicKey: s.payments.PublicKey().EncodeBase64(), AssociatedValue: "0.05"}}},
		},
	})
}

func (s *Server) handleRequestTokens(w http.ResponseWriter, r *http.Request) {
	if s.injected(w, RouteRequestTokens) {
		return
	}
	var req struct {
		BlindedTokens []cbr.BlindedToken `json:"blindedTokens"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.BlindedTokens) == 0 {
		http.Error(w, "invalid blindedTokens", http.StatusBadRequest)
		return
	}
	signed := make([]cbr.SignedToken, len(req.BlindedTokens))
	for i, b := range req.BlindedTokens {
		signed[i] = s.confirmations.Sign(b)
	}
	proof, err := s.confirmations.BatchProof(req.BlindedTokens, signed)
	if err != nil {
		s.logger.Error("batch proof", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	nonce := uuid.NewString()
	s.mu.Lock()
	s.batches[nonce] = batch{signed: signed, proof: proof}
	s.mu.Unlock()
	writeJSON(w, s.logger, http.StatusCreated, map[string]string{"nonce": nonce})
}

type signedTokensBody struct {
	BatchProof   cbr.BatchDLEQProof `json:"batchProof"`
	SignedTokens []cbr.SignedToken  `json:"signedTokens"`
	PublicKey    cbr.PublicKey      `json:"publicKey"`
}

func (s *Server) handleGetTokens(w http.ResponseWriter, r *http.Request) {
	if s.injected(w, RouteGetTokens) {
		return
	}
	nonce := r.URL.Query().Get("nonce")
	s.mu.Lock()
	b, ok := s.batches[nonce]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, signedTokensBody{
		BatchProof:   b.proof,
		SignedTokens: b.signed,
		PublicKey:    s.confirmations.PublicKey(),
	})
}

func (s *Server) handleCreateConfirmation(w http.ResponseWriter, r *http.Request) {
	if s.injected(w, RouteCreateConfirmation) {
		return
	}
	id := chi.URLParam(r, "id")
	raw, err := url.PathUnescape(chi.URLParam(r, "credential"))
	if err != nil {
		http.Error(w, "invalid credential", http.StatusBadRequest)
		return
	}
	cred, preimage, sig, err := confirmation.ParseCredential(raw)
	if err != nil {
		http.Error(w, "invalid credential", http.StatusBadRequest)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil || string(body) != cred.Payload {
		http.Error(w, "payload mismatch", http.StatusBadRequest)
		return
	}
	if !s.confirmations.VerifyRedemption(preimage, sig, []byte(cred.Payload)) {
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	payload := gjson.Parse(cred.Payload)
	if payload.Get("transactionId").String() != id {
		http.Error(w, "transaction id mismatch", http.StatusBadRequest)
		return
	}
	blinded, err := cbr.DecodeBlindedToken(payload.Get("blindedPaymentTokens.0").String())
	if err != nil {
		http.Error(w, "invalid blindedPaymentTokens", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.confirmed[id]; ok {
		w.WriteHeader(http.StatusConflict)
		return
	}
	if _, ok := s.spent[preimage]; ok {
		http.Error(w, "token already spent", http.StatusBadRequest)
		return
	}
	s.spent[preimage] = struct{}{}
	s.confirmed[id] = confirmationRecord{
		id:                 id,
		typ:                payload.Get("type").String(),
		creativeInstanceID: payload.Get("creativeInstanceId").String(),
		blinded:            blinded,
		createdAt:          time.Now().UTC(),
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handlePaymentToken(w http.ResponseWriter, r *http.Request) {
	if s.injected(w, RoutePaymentToken) {
		return
	}
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	rec, ok := s.confirmed[id]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	signed := []cbr.SignedToken{s.payments.Sign(rec.blinded)}
	proof, err := s.payments.BatchProof([]cbr.BlindedToken{rec.blinded}, signed)
	if err != nil {
		s.logger.Error("batch proof", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, struct {
		ID                 string           `json:"id"`
		CreatedAt          time.Time        `json:"createdAt"`
		Type               string           `json:"type"`
		CreativeInstanceID string           `json:"creativeInstanceId"`
		PaymentToken       signedTokensBody `json:"paymentToken"`
	}{
		ID:                 rec.id,
		CreatedAt:          rec.createdAt,
		Type:               rec.typ,
		CreativeInstanceID: rec.creativeInstanceID,
		PaymentToken: signedTokensBody{
			BatchProof:   proof,
			SignedTokens: signed,
			PublicKey:    s.payments.PublicKey(),
		},
	})
}

var errBadCredential = errors.New("invalid payment credential")

func (s *Server) handlePayout(w http.ResponseWriter, r *http.Request) {
	if s.injected(w, RoutePayout) {
		return
	}
	paymentID := chi.URLParam(r, "paymentID")
	body, err := io.ReadAll(r.Body)
	if err != nil || !gjson.ValidBytes(body) {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	res := gjson.ParseBytes(body)
	payload := res.Get("payload").String()
	if gjson.Get(payload, "paymentId").String() != paymentID {
		http.Error(w, "payment id mismatch", http.StatusBadRequest)
		return
	}

	creds := res.Get("paymentCredentials").Array()
	preimages := make([]cbr.TokenPreimage, 0, len(creds))
	for _, c := range creds {
		preimage, err := s.verifyPaymentCredential(c, payload)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		preimages = append(preimages, preimage)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range preimages {
		if _, ok := s.spent[p]; ok {
			http.Error(w, "token already spent", http.StatusBadRequest)
			return
		}
	}
	for _, p := range preimages {
		s.spent[p] = struct{}{}
	}
	s.payouts = append(s.payouts, Payout{PaymentID: paymentID, Tokens: len(preimages)})
	w.WriteHeader(http.StatusOK)
}

func (s *Server) verifyPaymentCredential(c gjson.Result, payload string) (cbr.TokenPreimage, error) {
	pk, err := cbr.DecodePublicKey(c.Get("publicKey").String())
	if err != nil || !pk.Equal(s.payments.PublicKey()) {
		return cbr.TokenPreimage{}, errBadCredential
	}
	preimage, err := cbr.DecodeTokenPreimage(c.Get("credential.t").String())
	if err != nil {
		return cbr.TokenPreimage{}, errBadCredential
	}
	sig, err := cbr.DecodeVerificationSignature(c.Get("credential.signature").String())
	if err != nil {
		return cbr.TokenPreimage{}, errBadCredential
	}
	if !s.payments.VerifyRedemption(preimage, sig, []byte(payload)) {
		return cbr.TokenPreimage{}, errBadCredential
	}
	return preimage, nil
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response error", slog.Any("error", err))
	}
}

func repeat(v, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

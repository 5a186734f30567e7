package httpadapter

import (
	"log/slog"
	"net/http"
)

type diagnosticsResponse struct {
	UnblindedTokens      int  `json:"unblinded_tokens"`
	PaymentTokens        int  `json:"payment_tokens"`
	PendingConfirmations int  `json:"pending_confirmations"`
	StorageHealthy       bool `json:"storage_healthy"`
	IssuersLoaded        bool `json:"issuers_loaded"`
	CatalogCreatives     int  `json:"catalog_creatives"`
}

// handleDiagnostics reports token pools, queue depth and storage health. It
// answers HTTP 503 while storage is unhealthy so probes can act on it.
func (h *Handler) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Diagnostics(r.Context())
	if err != nil {
		h.logger.Error("diagnostics error", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	status := http.StatusOK
	if !d.StorageHealthy {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, diagnosticsResponse{
		UnblindedTokens:      d.UnblindedTokens,
		PaymentTokens:        d.PaymentTokens,
		PendingConfirmations: d.PendingConfirmations,
		StorageHealthy:       d.StorageHealthy,
		IssuersLoaded:        d.IssuersLoaded,
		CatalogCreatives:     d.CatalogCreatives,
	})
}

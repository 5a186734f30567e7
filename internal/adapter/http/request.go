package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bat-ads/internal/core/domain"
	"bat-ads/internal/core/eligibility"
	"bat-ads/internal/core/port"
)

// ServeResponse is the creative picked for a serve request. Events about it
// must carry PlacementID.
type ServeResponse struct {
	PlacementID string            `json:"placement_id"`
	Creative    domain.CreativeAd `json:"creative"`
}

// handleServeAd picks an ad of the {adType} path parameter for the user
// signals in the body. It returns HTTP 204 when nothing is eligible, which
// is a normal outcome. Unknown ad types and bad JSON produce HTTP 400.
func (h *Handler) handleServeAd(w http.ResponseWriter, r *http.Request) {
	adType, err := domain.ParseAdType(chi.URLParam(r, "adType"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var signals domain.UserSignals
	// an empty body means no signals
	if err := json.NewDecoder(r.Body).Decode(&signals); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	served, err := h.svc.ServeAd(r.Context(), adType, signals)
	switch {
	case errors.Is(err, eligibility.ErrNoEligibleAds):
		w.WriteHeader(http.StatusNoContent)
		return
	case errors.Is(err, port.ErrInvalidRequest):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		h.logger.Error("serve ad error", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, ServeResponse{PlacementID: served.PlacementID, Creative: served.Creative})
}

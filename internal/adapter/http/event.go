package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"bat-ads/internal/core/domain"
	"bat-ads/internal/core/port"
)

// handleAdEvent records an ad event. Billable events are confirmed before the
// response is written: HTTP 202 means the event is stored and its confirmation
// queued or redeemed, not that the payment token was paid out.
func (h *Handler) handleAdEvent(w http.ResponseWriter, r *http.Request) {
	var event domain.AdEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	err := h.svc.RecordAdEvent(r.Context(), event)
	switch {
	case errors.Is(err, port.ErrInvalidRequest):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		h.logger.Error("record ad event error",
			slog.String("placement_id", event.PlacementID),
			slog.Any("error", err),
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

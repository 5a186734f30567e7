package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"bat-ads/internal/core/port"
)

// Handler contains dependencies and routes. It is an inbound adapter for HTTP.
// It holds the ads use case and a logger for structured logging. Routes are
// registered on a chi.Router.
type Handler struct {
	svc    port.AdsUseCase
	logger *slog.Logger
	router chi.Router
}

// NewHandler creates a handler with all routes configured. metrics, when not
// nil, is mounted at /metrics.
func NewHandler(svc port.AdsUseCase, logger *slog.Logger, metrics http.Handler) *Handler {
	h := &Handler{svc: svc, logger: logger}
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer, traced)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/ads/{adType}/serve", h.handleServeAd)
		r.Post("/ads/events", h.handleAdEvent)
		r.Get("/diagnostics", h.handleDiagnostics)
	})
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}

// traced continues the caller's trace, if any, in a server span.
func traced(next http.Handler) http.Handler {
	tracer := otel.Tracer("bat-ads/http")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// encoding should rarely fail; the status is already sent
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}

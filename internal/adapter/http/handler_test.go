package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bat-ads/internal/core/domain"
	"bat-ads/internal/core/eligibility"
	"bat-ads/internal/core/port"
	"bat-ads/internal/core/port/mocks"
	"bat-ads/internal/metrics"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServeAd(t *testing.T) {
	creative := domain.CreativeAd{
		CreativeInstanceID: "ci-1",
		CreativeSetID:      "cs-1",
		CampaignID:         "c-1",
		Type:               domain.AdTypeNotification,
	}

	t.Run("ok", func(t *testing.T) {
		svc := mocks.NewMockAdsUseCase(t)
		svc.EXPECT().
			ServeAd(mock.Anything, domain.AdTypeNotification, mock.MatchedBy(func(s domain.UserSignals) bool {
				return s.Subdivision == "US-CA" && len(s.Segments) == 1
			})).
			Return(&port.ServedAd{PlacementID: "p-1", Creative: creative}, nil)

		rec := do(t, NewHandler(svc, discard, nil).Router(), http.MethodPost, "/api/v1/ads/ad_notification/serve",
			`{"segments":["technology & computing"],"subdivision":"US-CA"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp ServeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "p-1", resp.PlacementID)
		assert.Equal(t, "ci-1", resp.Creative.CreativeInstanceID)
	})

	t.Run("empty body", func(t *testing.T) {
		svc := mocks.NewMockAdsUseCase(t)
		svc.EXPECT().ServeAd(mock.Anything, domain.AdTypeNewTabPage, domain.UserSignals{}).
			Return(&port.ServedAd{PlacementID: "p-2", Creative: creative}, nil)

		rec := do(t, NewHandler(svc, discard, nil).Router(), http.MethodPost, "/api/v1/ads/new_tab_page_ad/serve", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("no eligible ads", func(t *testing.T) {
		svc := mocks.NewMockAdsUseCase(t)
		svc.EXPECT().ServeAd(mock.Anything, domain.AdTypeNotification, mock.Anything).
			Return(nil, fmt.Errorf("%w: all creatives excluded", eligibility.ErrNoEligibleAds))

		rec := do(t, NewHandler(svc, discard, nil).Router(), http.MethodPost, "/api/v1/ads/ad_notification/serve", "{}")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("internal error", func(t *testing.T) {
		svc := mocks.NewMockAdsUseCase(t)
		svc.EXPECT().ServeAd(mock.Anything, domain.AdTypeNotification, mock.Anything).
			Return(nil, errors.New("disk full"))

		rec := do(t, NewHandler(svc, discard, nil).Router(), http.MethodPost, "/api/v1/ads/ad_notification/serve", "{}")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "disk full")
	})

	t.Run("bad requests", func(t *testing.T) {
		svc := mocks.NewMockAdsUseCase(t)
		router := NewHandler(svc, discard, nil).Router()

		assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPost, "/api/v1/ads/banner/serve", "{}").Code)
		assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPost, "/api/v1/ads/ad_notification/serve", "{").Code)
		assert.Equal(t, http.StatusMethodNotAllowed, do(t, router, http.MethodGet, "/api/v1/ads/ad_notification/serve", "").Code)
	})
}

func TestAdEvent(t *testing.T) {
	body := `{"placement_id":"p-1","type":"ad_notification","confirmation_type":"click",
"creative_instance_id":"ci-1","creative_set_id":"cs-1","campaign_id":"c-1","created_at":"2024-05-15T12:00:00Z"}`

	t.Run("accepted", func(t *testing.T) {
		svc := mocks.NewMockAdsUseCase(t)
		svc.EXPECT().RecordAdEvent(mock.Anything, domain.AdEvent{
			PlacementID:        "p-1",
			Type:               domain.AdTypeNotification,
			ConfirmationType:   domain.ConfirmationTypeClicked,
			CreativeInstanceID: "ci-1",
			CreativeSetID:      "cs-1",
			CampaignID:         "c-1",
			CreatedAt:          time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC),
		}).Return(nil)

		rec := do(t, NewHandler(svc, discard, nil).Router(), http.MethodPost, "/api/v1/ads/events", body)
		assert.Equal(t, http.StatusAccepted, rec.Code)
	})

	t.Run("invalid event", func(t *testing.T) {
		svc := mocks.NewMockAdsUseCase(t)
		svc.EXPECT().RecordAdEvent(mock.Anything, mock.Anything).
			Return(fmt.Errorf("%w: ad event: missing placement_id", port.ErrInvalidRequest))

		rec := do(t, NewHandler(svc, discard, nil).Router(), http.MethodPost, "/api/v1/ads/events", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "missing placement_id")
	})

	t.Run("storage failure", func(t *testing.T) {
		svc := mocks.NewMockAdsUseCase(t)
		svc.EXPECT().RecordAdEvent(mock.Anything, mock.Anything).Return(errors.New("disk full"))

		rec := do(t, NewHandler(svc, discard, nil).Router(), http.MethodPost, "/api/v1/ads/events", body)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("bad json", func(t *testing.T) {
		svc := mocks.NewMockAdsUseCase(t)
		rec := do(t, NewHandler(svc, discard, nil).Router(), http.MethodPost, "/api/v1/ads/events", `[1,2`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDiagnostics(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		svc := mocks.NewMockAdsUseCase(t)
		svc.EXPECT().Diagnostics(mock.Anything).Return(&port.Diagnostics{
			UnblindedTokens:  42,
			PaymentTokens:    3,
			StorageHealthy:   true,
			IssuersLoaded:    true,
			CatalogCreatives: 7,
		}, nil)

		rec := do(t, NewHandler(svc, discard, nil).Router(), http.MethodGet, "/api/v1/diagnostics", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"unblinded_tokens":42,"payment_tokens":3,"pending_confirmations":0,
"storage_healthy":true,"issuers_loaded":true,"catalog_creatives":7}`, rec.Body.String())
	})

	t.Run("unhealthy storage", func(t *testing.T) {
		svc := mocks.NewMockAdsUseCase(t)
		svc.EXPECT().Diagnostics(mock.Anything).Return(&port.Diagnostics{}, nil)

		rec := do(t, NewHandler(svc, discard, nil).Router(), http.MethodGet, "/api/v1/diagnostics", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.New(reg).AdServed(domain.AdTypeNotification)

	svc := mocks.NewMockAdsUseCase(t)
	router := NewHandler(svc, discard, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Router()

	rec := do(t, router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `bat_ads_ads_served_total{ad_type="ad_notification"} 1`)

	assert.Equal(t, http.StatusNotFound, do(t, NewHandler(svc, discard, nil).Router(), http.MethodGet, "/metrics", "").Code)
}

// Package metrics exposes engine counters and gauges to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"bat-ads/internal/core/domain"
)

const namespace = "bat_ads"

// Metrics groups every collector the engine updates. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	served        *prometheus.CounterVec
	noFill        *prometheus.CounterVec
	events        *prometheus.CounterVec
	confirmations *prometheus.CounterVec
	taskErrors    *prometheus.CounterVec
	redeemed      prometheus.Counter

	unblindedTokens prometheus.Gauge
	paymentTokens   prometheus.Gauge
	pending         prometheus.Gauge
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		served: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ads_served_total",
			Help:      "Ads served, by ad type.",
		}, []string{"ad_type"}),
		noFill: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ads_no_fill_total",
			Help:      "Serve requests that found no eligible ad, by ad type.",
		}, []string{"ad_type"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ad_events_total",
			Help:      "Ad events recorded, by confirmation type.",
		}, []string{"confirmation_type"}),
		confirmations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "confirmations_total",
			Help:      "Confirmation attempts, by resulting state.",
		}, []string{"state"}),
		taskErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduler_task_errors_total",
			Help:      "Failed background task runs, by task.",
		}, []string{"task"}),
		redeemed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_tokens_redeemed_total",
			Help:      "Payment tokens paid out.",
		}),
		unblindedTokens: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "unblinded_tokens",
			Help:      "Spendable confirmation tokens in the pool.",
		}),
		paymentTokens: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "payment_tokens",
			Help:      "Payment tokens awaiting payout.",
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_confirmations",
			Help:      "Confirmations not yet redeemed or failed.",
		}),
	}
	reg.MustRegister(
		m.served, m.noFill, m.events, m.confirmations, m.taskErrors, m.redeemed,
		m.unblindedTokens, m.paymentTokens, m.pending,
	)
	return m
}

func (m *Metrics) AdServed(adType domain.AdType) {
	if m != nil {
		m.served.WithLabelValues(string(adType)).Inc()
	}
}

func (m *Metrics) NoFill(adType domain.AdType) {
	if m != nil {
		m.noFill.WithLabelValues(string(adType)).Inc()
	}
}

func (m *Metrics) EventRecorded(t domain.ConfirmationType) {
	if m != nil {
		m.events.WithLabelValues(string(t)).Inc()
	}
}

func (m *Metrics) ConfirmationProcessed(state domain.ConfirmationState) {
	if m != nil {
		m.confirmations.WithLabelValues(string(state)).Inc()
	}
}

func (m *Metrics) TaskFailed(task string) {
	if m != nil {
		m.taskErrors.WithLabelValues(task).Inc()
	}
}

func (m *Metrics) PaymentTokensRedeemed(n int) {
	if m != nil {
		m.redeemed.Add(float64(n))
	}
}

// SetPools records the current pool and queue sizes.
func (m *Metrics) SetPools(unblinded, payment, pending int) {
	if m == nil {
		return
	}
	m.unblindedTokens.Set(float64(unblinded))
	m.paymentTokens.Set(float64(payment))
	m.pending.Set(float64(pending))
}

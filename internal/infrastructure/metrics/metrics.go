// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups every collector the API records. Build one per process
// with New and share it.
type Metrics struct {
	OTPSends     *prometheus.CounterVec
	OTPVerifies  *prometheus.CounterVec
	Logins       *prometheus.CounterVec
	Conversions  *prometheus.CounterVec
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	BreakerState *prometheus.GaugeVec
}

// New registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		OTPSends: f.NewCounterVec(prometheus.CounterOpts{
			Name: "documentor_otp_sends_total",
			Help: "OTP send attempts by outcome (sent, cooldown, failed).",
		}, []string{"outcome"}),
		OTPVerifies: f.NewCounterVec(prometheus.CounterOpts{
			Name: "documentor_otp_verifications_total",
			Help: "OTP verifications by outcome (valid, mismatch, expired, not_found).",
		}, []string{"outcome"}),
		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "documentor_logins_total",
			Help: "Completed logins by kind (existing, registered).",
		}, []string{"kind"}),
		Conversions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "documentor_conversions_total",
			Help: "Image conversions by outcome.",
		}, []string{"outcome"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "documentor_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "documentor_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		BreakerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "documentor_circuit_breaker_state",
			Help: "Circuit breaker state: 0 closed, 1 half-open, 2 open.",
		}, []string{"name"}),
	}
}

// Noop returns collectors registered on a throwaway registry, for tests
// and tools that do not expose /metrics.
func Noop() *Metrics { return New(prometheus.NewRegistry()) }

func (m *Metrics) OTPSent(outcome string) { m.OTPSends.WithLabelValues(outcome).Inc() }
func (m *Metrics) OTPVerified(outcome string) { m.OTPVerifies.WithLabelValues(outcome).Inc() }
func (m *Metrics) LoggedIn(kind string) { m.Logins.WithLabelValues(kind).Inc() }
func (m *Metrics) Converted(outcome string) { m.Conversions.WithLabelValues(outcome).Inc() }
func (m *Metrics) SetBreakerState(name string, state float64) {
	m.BreakerState.WithLabelValues(name).Set(state)
}

package biometric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"votegate/pkg/platform/circuit"
)

// Metrics contains biometric client metrics.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec   // Calls by endpoint and outcome category
	RequestDuration *prometheus.HistogramVec // Call latency by endpoint
	CircuitState    prometheus.Gauge         // 0 closed, 1 open, 2 half-open
}

// NewMetrics creates and registers the biometric metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "votegate_biometric_requests_total",
			Help: "Biometric service calls by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),

		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "votegate_biometric_request_duration_seconds",
			Help:    "Biometric service call latency by endpoint",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),

		CircuitState: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "votegate_biometric_circuit_state",
			Help: "Biometric circuit breaker state (0 closed, 1 open, 2 half-open)",
		}),
	}
}

func (m *Metrics) observe(endpoint, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	m.RequestDuration.WithLabelValues(endpoint).Observe(seconds)
}

func (m *Metrics) setCircuitState(s circuit.State) {
	if m == nil {
		return
	}
	m.CircuitState.Set(float64(s))
}

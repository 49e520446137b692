package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains voting session metrics. A nil *Metrics records nothing.
type Metrics struct {
	SessionsStarted    prometheus.Counter
	ActiveSessions     prometheus.Gauge
	SessionTransitions *prometheus.CounterVec // by from, to
	Verifications      *prometheus.CounterVec // by kind (face|fingerprint), result (error code or "success")
	VotesSubmitted     *prometheus.CounterVec // by result
	RateLimited        prometheus.Counter
	SessionsEvicted    prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		SessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "votegate_sessions_started_total",
			Help: "Voting sessions started",
		}),
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "votegate_sessions_active",
			Help: "Voting sessions currently held in memory",
		}),
		SessionTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "votegate_session_transitions_total",
			Help: "Voting session phase transitions",
		}, []string{"from", "to"}),
		Verifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "votegate_verifications_total",
			Help: "Biometric verification attempts by kind and result",
		}, []string{"kind", "result"}),
		VotesSubmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "votegate_votes_submitted_total",
			Help: "Vote submissions by result",
		}, []string{"result"}),
		RateLimited: promauto.NewCounter(prometheus.CounterOpts{
			Name: "votegate_biometric_attempts_rate_limited_total",
			Help: "Biometric attempts rejected by the per-session limiter",
		}),
		SessionsEvicted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "votegate_sessions_evicted_total",
			Help: "Idle voting sessions evicted by the cleanup worker",
		}),
	}
}

func (m *Metrics) IncSessionsStarted() {
	if m != nil {
		m.SessionsStarted.Inc()
	}
}

func (m *Metrics) SetActiveSessions(n int) {
	if m != nil {
		m.ActiveSessions.Set(float64(n))
	}
}

func (m *Metrics) IncTransition(from, to string) {
	if m != nil {
		m.SessionTransitions.WithLabelValues(from, to).Inc()
	}
}

func (m *Metrics) IncVerification(kind, result string) {
	if m != nil {
		m.Verifications.WithLabelValues(kind, result).Inc()
	}
}

func (m *Metrics) IncVoteSubmitted(result string) {
	if m != nil {
		m.VotesSubmitted.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) IncRateLimited() {
	if m != nil {
		m.RateLimited.Inc()
	}
}

func (m *Metrics) AddSessionsEvicted(n int) {
	if m != nil && n > 0 {
		m.SessionsEvicted.Add(float64(n))
	}
}

package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains roster cache metrics.
type Metrics struct {
	HitsTotal          *prometheus.CounterVec // Hits by key
	MissesTotal        *prometheus.CounterVec // Misses by key
	InvalidationsTotal prometheus.Counter     // Invalidations after ledger writes
}

// NewMetrics creates and registers the roster cache metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		HitsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "votegate_roster_cache_hits_total",
			Help: "Roster cache hits by key",
		}, []string{"key"}),
		MissesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "votegate_roster_cache_misses_total",
			Help: "Roster cache misses by key",
		}, []string{"key"}),
		InvalidationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "votegate_roster_cache_invalidations_total",
			Help: "Roster cache invalidations after ledger writes",
		}),
	}
}

func (m *Metrics) hit(key string) {
	if m != nil {
		m.HitsTotal.WithLabelValues(key).Inc()
	}
}

func (m *Metrics) miss(key string) {
	if m != nil {
		m.MissesTotal.WithLabelValues(key).Inc()
	}
}

func (m *Metrics) invalidated() {
	if m != nil {
		m.InvalidationsTotal.Inc()
	}
}

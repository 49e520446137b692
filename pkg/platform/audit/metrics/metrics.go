package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the audit publisher.
type Metrics struct {
	QueueDepth      prometheus.Gauge
	EventsDropped   prometheus.Counter
	EventsEnqueued  prometheus.Counter
	PersistDuration prometheus.Histogram
	PersistFailures prometheus.Counter
}

// New creates a new Metrics instance with all audit publisher metrics registered.
func New() *Metrics {
	return &Metrics{
		QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "votegate_audit_queue_depth",
			Help: "Current number of events in the audit publisher queue",
		}),
		EventsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "votegate_audit_events_dropped_total",
			Help: "Total number of audit events dropped due to full buffer",
		}),
		EventsEnqueued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "votegate_audit_events_enqueued_total",
			Help: "Total number of audit events successfully enqueued",
		}),
		PersistDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "votegate_audit_persist_duration_seconds",
			Help:    "Time taken to hand an audit event to the store",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		PersistFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "votegate_audit_persist_failures_total",
			Help: "Total number of audit event persistence failures",
		}),
	}
}

func (m *Metrics) IncQueueDepth() {
	if m != nil {
		m.QueueDepth.Inc()
	}
}

func (m *Metrics) DecQueueDepth() {
	if m != nil {
		m.QueueDepth.Dec()
	}
}

func (m *Metrics) IncEventsDropped() {
	if m != nil {
		m.EventsDropped.Inc()
	}
}

func (m *Metrics) IncEventsEnqueued() {
	if m != nil {
		m.EventsEnqueued.Inc()
	}
}

func (m *Metrics) ObservePersistDuration(durationSeconds float64) {
	if m != nil {
		m.PersistDuration.Observe(durationSeconds)
	}
}

func (m *Metrics) IncPersistFailures() {
	if m != nil {
		m.PersistFailures.Inc()
	}
}

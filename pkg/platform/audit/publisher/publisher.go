package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	dErrors "votegate/pkg/domain-errors"
	audit "votegate/pkg/platform/audit"
	"votegate/pkg/platform/audit/metrics"
)

// Publisher hands audit events to a store, inline or through a buffered
// background worker.
type Publisher struct {
	store   audit.Store
	events  chan audit.Event
	wg      sync.WaitGroup
	logger  *slog.Logger
	metrics *metrics.Metrics
	async   bool
	once    sync.Once
}

// PublisherOption configures the Publisher.
type PublisherOption func(*Publisher)

// WithAsyncBuffer enables async processing with the specified buffer size.
// Events are queued and persisted in a background goroutine.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan audit.Event, size)
			p.async = true
		}
	}
}

// WithPublisherLogger sets a logger for async error reporting.
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) PublisherOption {
	return func(p *Publisher) {
		p.metrics = m
	}
}

func NewPublisher(store audit.Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.processEvents()
	}
	return p
}

func (p *Publisher) processEvents() {
	defer p.wg.Done()
	for event := range p.events {
		p.metrics.DecQueueDepth()
		if err := p.persist(context.Background(), event); err != nil && p.logger != nil {
			p.logger.Error("failed to persist audit event",
				"error", err,
				"action", event.Action,
				"session_id", event.SessionID,
			)
		}
	}
}

func (p *Publisher) persist(ctx context.Context, event audit.Event) error {
	start := time.Now()
	err := p.store.Append(ctx, event)
	p.metrics.ObservePersistDuration(time.Since(start).Seconds())
	if err != nil {
		p.metrics.IncPersistFailures()
	}
	return err
}

// Close shuts down the async publisher and waits for pending events to drain.
// It is safe to call more than once.
func (p *Publisher) Close() {
	if !p.async {
		return
	}
	p.once.Do(func() {
		close(p.events)
		p.wg.Wait()
	})
}

func (p *Publisher) Emit(ctx context.Context, base audit.Event) error {
	if base.Timestamp.IsZero() {
		base.Timestamp = time.Now()
	}
	if !p.async {
		return p.persist(ctx, base)
	}
	select {
	case p.events <- base:
		p.metrics.IncEventsEnqueued()
		p.metrics.IncQueueDepth()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		p.metrics.IncEventsDropped()
		if p.logger != nil {
			p.logger.Warn("audit buffer full, event dropped",
				"action", base.Action,
				"session_id", base.SessionID,
			)
		}
		return dErrors.New(dErrors.CodeInternal, "audit buffer full")
	}
}

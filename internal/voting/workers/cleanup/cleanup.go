package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"votegate/internal/voting/metrics"
)

const (
	DefaultInterval = time.Minute
	DefaultIdleTTL  = 15 * time.Minute
)

// SessionStore exposes eviction of idle voting sessions.
type SessionStore interface {
	DeleteIdleSince(ctx context.Context, cutoff time.Time) (int, error)
	Count(ctx context.Context) (int, error)
}

// CleanupResult summarizes one eviction pass.
type CleanupResult struct {
	DeletedSessions int
	ActiveSessions  int
}

// CleanupService periodically evicts sessions a kiosk has abandoned.
type CleanupService struct {
	sessions SessionStore
	interval time.Duration
	idleTTL  time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// CleanupOption configures CleanupService.
type CleanupOption func(*CleanupService)

// WithCleanupInterval overrides the cleanup interval when greater than zero.
func WithCleanupInterval(interval time.Duration) CleanupOption {
	return func(s *CleanupService) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithIdleTTL overrides how long a session may sit untouched.
func WithIdleTTL(ttl time.Duration) CleanupOption {
	return func(s *CleanupService) {
		if ttl > 0 {
			s.idleTTL = ttl
		}
	}
}

// WithCleanupLogger overrides the logger used for cleanup errors.
func WithCleanupLogger(logger *slog.Logger) CleanupOption {
	return func(s *CleanupService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) CleanupOption {
	return func(s *CleanupService) {
		s.metrics = m
	}
}

func WithClock(now func() time.Time) CleanupOption {
	return func(s *CleanupService) {
		if now != nil {
			s.now = now
		}
	}
}

func New(sessions SessionStore, opts ...CleanupOption) (*CleanupService, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session store is required")
	}
	svc := &CleanupService{
		sessions: sessions,
		interval: DefaultInterval,
		idleTTL:  DefaultIdleTTL,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// Start runs cleanup periodically until ctx is cancelled.
func (s *CleanupService) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.ErrorContext(ctx, "session cleanup failed", "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunOnce evicts sessions idle for longer than the idle TTL.
func (s *CleanupService) RunOnce(ctx context.Context) (CleanupResult, error) {
	var res CleanupResult
	deleted, err := s.sessions.DeleteIdleSince(ctx, s.now().Add(-s.idleTTL))
	if err != nil {
		return res, fmt.Errorf("delete idle sessions: %w", err)
	}
	res.DeletedSessions = deleted
	s.metrics.AddSessionsEvicted(deleted)

	active, err := s.sessions.Count(ctx)
	if err != nil {
		return res, fmt.Errorf("count sessions: %w", err)
	}
	res.ActiveSessions = active
	s.metrics.SetActiveSessions(active)

	if deleted > 0 {
		s.logger.InfoContext(ctx, "evicted idle voting sessions", "deleted", deleted, "active", active)
	}
	return res, nil
}

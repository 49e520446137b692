// Package lockout throttles admin password guessing. Failures are counted
// per client address inside a window; reaching the limit locks the address
// out for a fixed period. A successful login clears the count.
package lockout

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/audit"
	"votegate/pkg/platform/privacy"
)

// Config defines the failure budget.
type Config struct {
	MaxAttempts  int
	Window       time.Duration
	LockDuration time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:  5,
		Window:       15 * time.Minute,
		LockDuration: 15 * time.Minute,
	}
}

// Store keeps failure counts and locks.
type Store interface {
	// RecordFailure counts a failure and returns the count within the window
	// that began with the first uncounted failure.
	RecordFailure(ctx context.Context, key string, now time.Time, window time.Duration) (int, error)
	Lock(ctx context.Context, key string, now, until time.Time) error
	// LockedUntil reports an active lock.
	LockedUntil(ctx context.Context, key string, now time.Time) (time.Time, bool, error)
	Clear(ctx context.Context, key string) error
}

type Service struct {
	store  Store
	cfg    Config
	logger *slog.Logger
	audit  *audit.Logger
	now    func() time.Time
}

type Option func(*Service)

func WithConfig(cfg Config) Option {
	return func(s *Service) {
		if cfg.MaxAttempts > 0 {
			s.cfg.MaxAttempts = cfg.MaxAttempts
		}
		if cfg.Window > 0 {
			s.cfg.Window = cfg.Window
		}
		if cfg.LockDuration > 0 {
			s.cfg.LockDuration = cfg.LockDuration
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithAuditLogger(l *audit.Logger) Option {
	return func(s *Service) {
		s.audit = l
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("lockout store is required")
	}
	s := &Service{
		store:  store,
		cfg:    DefaultConfig(),
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Check fails with RateLimited while key is locked out.
func (s *Service) Check(ctx context.Context, key string) error {
	until, locked, err := s.store.LockedUntil(ctx, key, s.now())
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read login lockout")
	}
	if !locked {
		return nil
	}
	retry := int(math.Ceil(until.Sub(s.now()).Seconds()))
	return dErrors.New(dErrors.CodeRateLimited,
		fmt.Sprintf("too many failed login attempts, retry in %ds", max(retry, 1)))
}

// RecordFailure counts a failed login and locks key once the budget is spent.
func (s *Service) RecordFailure(ctx context.Context, key string) error {
	now := s.now()
	failures, err := s.store.RecordFailure(ctx, key, now, s.cfg.Window)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record login failure")
	}
	if failures < s.cfg.MaxAttempts {
		return nil
	}
	until := now.Add(s.cfg.LockDuration)
	if err := s.store.Lock(ctx, key, now, until); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock login")
	}
	s.logger.WarnContext(ctx, "admin login locked",
		"client", privacy.AnonymizeIP(key),
		"failures", failures,
		"locked_until", until,
	)
	s.audit.Log(ctx, audit.Event{
		Action:  string(audit.EventAdminLoginLocked),
		Subject: "admin",
		Outcome: "locked",
		Reason:  fmt.Sprintf("%d failed attempts", failures),
	})
	return nil
}

// Clear forgets key's failures and any lock.
func (s *Service) Clear(ctx context.Context, key string) error {
	if err := s.store.Clear(ctx, key); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear login lockout")
	}
	return nil
}

package lockout

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/audit"
	"votegate/pkg/platform/audit/publisher"
	auditstore "votegate/pkg/platform/audit/store/memory"
)

type LockoutSuite struct {
	suite.Suite
	now     time.Time
	events  *auditstore.InMemoryStore
	service *Service
	ctx     context.Context
}

func TestLockoutSuite(t *testing.T) {
	suite.Run(t, new(LockoutSuite))
}

func (s *LockoutSuite) SetupTest() {
	s.now = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	s.events = auditstore.NewInMemoryStore()
	s.ctx = context.Background()
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc, err := New(NewInMemoryStore(),
		WithConfig(Config{MaxAttempts: 3, Window: time.Minute, LockDuration: 5 * time.Minute}),
		WithLogger(discard),
		WithAuditLogger(audit.NewLogger(discard, publisher.NewPublisher(s.events))),
		WithClock(func() time.Time { return s.now }),
	)
	s.Require().NoError(err)
	s.service = svc
}

func (s *LockoutSuite) fail(n int, key string) {
	for range n {
		s.Require().NoError(s.service.RecordFailure(s.ctx, key))
	}
}

func (s *LockoutSuite) TestNewRequiresStore() {
	_, err := New(nil)
	s.Error(err)
}

func (s *LockoutSuite) TestLocksAfterBudget() {
	s.fail(2, "10.0.0.5")
	s.NoError(s.service.Check(s.ctx, "10.0.0.5"))

	s.fail(1, "10.0.0.5")
	err := s.service.Check(s.ctx, "10.0.0.5")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeRateLimited))
	s.Contains(err.Error(), "retry in 300s")

	s.NoError(s.service.Check(s.ctx, "10.0.0.6"), "other clients are unaffected")

	events, err := s.events.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(string(audit.EventAdminLoginLocked), events[0].Action)
}

func (s *LockoutSuite) TestLockExpires() {
	s.fail(3, "10.0.0.5")
	s.now = s.now.Add(5 * time.Minute)
	s.NoError(s.service.Check(s.ctx, "10.0.0.5"))
}

func (s *LockoutSuite) TestWindowResetsCount() {
	s.fail(2, "10.0.0.5")
	s.now = s.now.Add(time.Minute)
	s.fail(2, "10.0.0.5")
	s.NoError(s.service.Check(s.ctx, "10.0.0.5"))
}

func (s *LockoutSuite) TestClearForgetsFailures() {
	s.fail(2, "10.0.0.5")
	s.Require().NoError(s.service.Clear(s.ctx, "10.0.0.5"))
	s.fail(2, "10.0.0.5")
	s.NoError(s.service.Check(s.ctx, "10.0.0.5"))
}

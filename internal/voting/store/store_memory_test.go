package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"votegate/internal/voting/models"
	dErrors "votegate/pkg/domain-errors"
)

type InMemorySessionStoreSuite struct {
	suite.Suite
	store *InMemorySessionStore
	ctx   context.Context
	base  time.Time
}

func TestInMemorySessionStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemorySessionStoreSuite))
}

func (s *InMemorySessionStoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
	s.base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
}

func (s *InMemorySessionStoreSuite) save(id string, created time.Time) {
	s.Require().NoError(s.store.Save(s.ctx, &models.Entry{ID: id, CreatedAt: created}))
}

func (s *InMemorySessionStoreSuite) TestSaveAndFind() {
	s.save("a", s.base)

	e, err := s.store.Find(s.ctx, "a")
	s.Require().NoError(err)
	s.Equal("a", e.ID)
	s.Equal(s.base, e.LastSeenAt, "last seen defaults to creation time")
}

func (s *InMemorySessionStoreSuite) TestFindMissing() {
	_, err := s.store.Find(s.ctx, "missing")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *InMemorySessionStoreSuite) TestTouch() {
	s.save("a", s.base)
	s.Require().NoError(s.store.Touch(s.ctx, "a", s.base.Add(time.Minute)))
	s.True(dErrors.HasCode(s.store.Touch(s.ctx, "b", s.base), dErrors.CodeNotFound))
}

func (s *InMemorySessionStoreSuite) TestDeleteIdleSince() {
	s.save("idle", s.base)
	s.save("active", s.base)
	s.Require().NoError(s.store.Touch(s.ctx, "active", s.base.Add(20*time.Minute)))

	deleted, err := s.store.DeleteIdleSince(s.ctx, s.base.Add(15*time.Minute))
	s.Require().NoError(err)
	s.Equal(1, deleted)

	_, err = s.store.Find(s.ctx, "idle")
	s.Error(err)
	_, err = s.store.Find(s.ctx, "active")
	s.NoError(err)
}

func (s *InMemorySessionStoreSuite) TestDeleteAndCount() {
	s.save("a", s.base)
	s.save("b", s.base)
	n, _ := s.store.Count(s.ctx)
	s.Equal(2, n)

	s.Require().NoError(s.store.Delete(s.ctx, "a"))
	s.Require().NoError(s.store.Delete(s.ctx, "a"))
	n, _ = s.store.Count(s.ctx)
	s.Equal(1, n)
}

func TestConcurrentAccess(t *testing.T) {
	st := New()
	ctx := context.Background()
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			id := string(rune('a' + i))
			_ = st.Save(ctx, &models.Entry{ID: id, CreatedAt: time.Now()})
			_, _ = st.Find(ctx, id)
			_ = st.Touch(ctx, id, time.Now())
			_, _ = st.Count(ctx)
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}
	n, err := st.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
}

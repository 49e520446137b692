package cleanup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"votegate/internal/voting/models"
	"votegate/internal/voting/store"
)

type failingStore struct{}

func (failingStore) DeleteIdleSince(context.Context, time.Time) (int, error) {
	return 0, errors.New("store unavailable")
}

func (failingStore) Count(context.Context) (int, error) { return 0, nil }

func TestCleanupService_RunOnce(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	sessions := store.New()

	require.NoError(t, sessions.Save(ctx, &models.Entry{ID: "abandoned", CreatedAt: now.Add(-time.Hour)}))
	require.NoError(t, sessions.Save(ctx, &models.Entry{ID: "fresh", CreatedAt: now.Add(-time.Minute)}))
	require.NoError(t, sessions.Save(ctx, &models.Entry{ID: "touched", CreatedAt: now.Add(-time.Hour)}))
	require.NoError(t, sessions.Touch(ctx, "touched", now.Add(-2*time.Minute)))

	svc, err := New(sessions,
		WithIdleTTL(15*time.Minute),
		WithCleanupInterval(10*time.Second),
		WithClock(func() time.Time { return now }),
	)
	require.NoError(t, err)

	res, err := svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.DeletedSessions)
	assert.Equal(t, 2, res.ActiveSessions)

	_, err = sessions.Find(ctx, "abandoned")
	assert.Error(t, err)
	_, err = sessions.Find(ctx, "touched")
	assert.NoError(t, err)
}

func TestCleanupService_RunOnceError(t *testing.T) {
	svc, err := New(failingStore{})
	require.NoError(t, err)

	_, err = svc.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete idle sessions")
}

func TestCleanupService_StartStopsOnCancel(t *testing.T) {
	svc, err := New(store.New(), WithCleanupInterval(time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Start(ctx) }()
	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cleanup did not stop")
	}
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

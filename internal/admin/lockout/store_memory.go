package lockout

import (
	"context"
	"sync"
	"time"
)

type record struct {
	failures    int
	windowEnd   time.Time
	lockedUntil time.Time
}

// InMemoryStore is a single-instance Store.
type InMemoryStore struct {
	mu      sync.Mutex
	records map[string]*record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]*record)}
}

func (s *InMemoryStore) RecordFailure(_ context.Context, key string, now time.Time, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[key]
	if !ok {
		r = &record{}
		s.records[key] = r
	}
	if !now.Before(r.windowEnd) {
		r.failures = 0
		r.windowEnd = now.Add(window)
	}
	r.failures++
	return r.failures, nil
}

func (s *InMemoryStore) Lock(_ context.Context, key string, _, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[key]
	if !ok {
		r = &record{}
		s.records[key] = r
	}
	r.lockedUntil = until
	r.failures = 0
	r.windowEnd = time.Time{}
	return nil
}

func (s *InMemoryStore) LockedUntil(_ context.Context, key string, now time.Time) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[key]
	if !ok || !now.Before(r.lockedUntil) {
		return time.Time{}, false, nil
	}
	return r.lockedUntil, true, nil
}

func (s *InMemoryStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key)
	return nil
}

// Package store keeps live voting sessions in process memory. Sessions are
// not persisted and are lost on restart.
package store

import (
	"context"
	"sync"
	"time"

	"votegate/internal/voting/models"
	dErrors "votegate/pkg/domain-errors"
)

// Error Contract:
// Find and Touch return a CodeNotFound domain error when the session does not exist.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Entry
}

func New() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: make(map[string]*models.Entry)}
}

func notFound() error {
	return dErrors.New(dErrors.CodeNotFound, "session not found")
}

func (s *InMemorySessionStore) Save(_ context.Context, entry *models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.LastSeenAt.IsZero() {
		entry.LastSeenAt = entry.CreatedAt
	}
	s.sessions[entry.ID] = entry
	return nil
}

func (s *InMemorySessionStore) Find(_ context.Context, id string) (*models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.sessions[id]; ok {
		return e, nil
	}
	return nil, notFound()
}

// Touch records activity on a session, pushing back its idle eviction.
func (s *InMemorySessionStore) Touch(_ context.Context, id string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return notFound()
	}
	e.LastSeenAt = now
	return nil
}

// Delete removes a session. Deleting an unknown id is not an error.
func (s *InMemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// DeleteIdleSince removes sessions whose last activity is before cutoff.
func (s *InMemorySessionStore) DeleteIdleSince(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for id, e := range s.sessions {
		if e.LastSeenAt.Before(cutoff) {
			delete(s.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *InMemorySessionStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}

package service

import (
	"context"
	"time"

	"votegate/contracts/election"
	"votegate/internal/voting/models"
	"votegate/internal/voting/session"
)

// Store holds live sessions.
// Error Contract: Find and Touch return a CodeNotFound domain error for unknown ids.
type Store interface {
	Save(ctx context.Context, entry *models.Entry) error
	Find(ctx context.Context, id string) (*models.Entry, error)
	Touch(ctx context.Context, id string, now time.Time) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// Ledger is what the service needs from the election contract: the roster
// reads done once at session start, and vote submission. Production passes
// the roster-cached ledger, which also invalidates the roster after a vote.
type Ledger interface {
	GetAllVoters(ctx context.Context) ([]election.Voter, error)
	GetAllCandidates(ctx context.Context) ([]election.Candidate, error)
	session.Ledger
}

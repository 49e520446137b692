// Package cache is a read-through roster cache in front of a ledger.
//
// Only the two roster reads a session start needs are cached. Every write
// invalidates both keys, so a vote cast through this process is visible to
// the next session. Votes cast elsewhere show up within one TTL; the ledger
// still rejects a double vote regardless of what the cache says.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"votegate/contracts/election"
	"votegate/internal/ledger"
)

const (
	KeyVoters     = "roster:voters"
	KeyCandidates = "roster:candidates"

	DefaultTTL = 5 * time.Second
)

// Store is a byte-oriented key/value cache with expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Ledger decorates a ledger.Ledger with the roster cache.
type Ledger struct {
	ledger.Ledger
	store   Store
	ttl     time.Duration
	logger  *slog.Logger
	metrics *Metrics
}

var _ ledger.Ledger = (*Ledger)(nil)

// Option configures the cached ledger.
type Option func(*Ledger)

func WithTTL(ttl time.Duration) Option {
	return func(l *Ledger) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(l *Ledger) {
		l.metrics = m
	}
}

// New wraps next with store.
func New(next ledger.Ledger, store Store, opts ...Option) *Ledger {
	l := &Ledger{
		Ledger: next,
		store:  store,
		ttl:    DefaultTTL,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) GetAllVoters(ctx context.Context) ([]election.Voter, error) {
	return readThrough(ctx, l, KeyVoters, l.Ledger.GetAllVoters)
}

func (l *Ledger) GetAllCandidates(ctx context.Context) ([]election.Candidate, error) {
	return readThrough(ctx, l, KeyCandidates, l.Ledger.GetAllCandidates)
}

// readThrough serves key from the store, or loads and stores it. Store
// failures are logged and never fail the read.
func readThrough[T any](ctx context.Context, l *Ledger, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	if raw, ok, err := l.store.Get(ctx, key); err != nil {
		l.logger.WarnContext(ctx, "roster cache read failed", "key", key, "error", err)
	} else if ok {
		var out []T
		if err := json.Unmarshal(raw, &out); err == nil {
			l.metrics.hit(key)
			return out, nil
		}
		l.logger.WarnContext(ctx, "roster cache entry corrupt", "key", key)
	}
	l.metrics.miss(key)

	out, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(out); err == nil {
		if err := l.store.Set(ctx, key, raw, l.ttl); err != nil {
			l.logger.WarnContext(ctx, "roster cache write failed", "key", key, "error", err)
		}
	}
	return out, nil
}

// Invalidate drops both roster keys.
func (l *Ledger) Invalidate(ctx context.Context) {
	if err := l.store.Delete(ctx, KeyVoters, KeyCandidates); err != nil {
		l.logger.WarnContext(ctx, "roster cache invalidation failed", "error", err)
	}
	l.metrics.invalidated()
}

func (l *Ledger) write(ctx context.Context, tx election.TxHash, err error) (election.TxHash, error) {
	if err == nil {
		l.Invalidate(ctx)
	}
	return tx, err
}

func (l *Ledger) CastVote(ctx context.Context, voterID, candidateID uint64) (election.TxHash, error) {
	tx, err := l.Ledger.CastVote(ctx, voterID, candidateID)
	return l.write(ctx, tx, err)
}

func (l *Ledger) RegisterVoter(ctx context.Context, reg election.VoterRegistration) (election.TxHash, error) {
	tx, err := l.Ledger.RegisterVoter(ctx, reg)
	return l.write(ctx, tx, err)
}

func (l *Ledger) RegisterCandidate(ctx context.Context, name string) (election.TxHash, error) {
	tx, err := l.Ledger.RegisterCandidate(ctx, name)
	return l.write(ctx, tx, err)
}

func (l *Ledger) RemoveCandidate(ctx context.Context, candidateID uint64) (election.TxHash, error) {
	tx, err := l.Ledger.RemoveCandidate(ctx, candidateID)
	return l.write(ctx, tx, err)
}

func (l *Ledger) RemoveVoter(ctx context.Context, voterID uint64) (election.TxHash, error) {
	tx, err := l.Ledger.RemoveVoter(ctx, voterID)
	return l.write(ctx, tx, err)
}

func (l *Ledger) StartElection(ctx context.Context) (election.TxHash, error) {
	tx, err := l.Ledger.StartElection(ctx)
	return l.write(ctx, tx, err)
}

func (l *Ledger) EndElection(ctx context.Context) (election.TxHash, error) {
	tx, err := l.Ledger.EndElection(ctx)
	return l.write(ctx, tx, err)
}

func (l *Ledger) NewElection(ctx context.Context) (election.TxHash, error) {
	tx, err := l.Ledger.NewElection(ctx)
	return l.write(ctx, tx, err)
}

// Package memory is an in-process election contract for local runs and tests.
// It enforces the same rules the deployed contract does and mints
// Keccak-256 transaction hashes, but every submission is final immediately.
package memory

import (
	"context"
	"encoding/binary"
	"fmt"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"

	"votegate/contracts/election"
	"votegate/internal/ledger"
	dErrors "votegate/pkg/domain-errors"
)

// Ledger is a thread-safe in-memory election contract.
type Ledger struct {
	mu              sync.RWMutex
	state           election.State
	voters          map[uint64]*election.Voter
	candidates      map[uint64]*election.Candidate
	parties         map[uint64]string
	nextCandidateID uint64
	nonce           uint64
}

var _ ledger.Ledger = (*Ledger)(nil)

// New creates an empty ledger in the NotStarted state.
func New() *Ledger {
	return &Ledger{
		state:           election.StateNotStarted,
		voters:          make(map[uint64]*election.Voter),
		candidates:      make(map[uint64]*election.Candidate),
		parties:         make(map[uint64]string),
		nextCandidateID: 1,
	}
}

func revert(reason string) error {
	return dErrors.New(dErrors.CodeSubmissionFailed, "execution reverted: "+reason)
}

// mint returns a fresh transaction hash. Caller holds l.mu.
func (l *Ledger) mint(method string) election.TxHash {
	l.nonce++
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], l.nonce)
	return election.TxHash(crypto.Keccak256Hash([]byte(method), n[:]).Hex())
}

func (l *Ledger) GetAllVoters(_ context.Context) ([]election.Voter, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]election.Voter, 0, len(l.voters))
	for _, v := range l.voters {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (l *Ledger) GetAllCandidates(_ context.Context) ([]election.Candidate, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sortedCandidates(), nil
}

func (l *Ledger) sortedCandidates() []election.Candidate {
	out := make([]election.Candidate, 0, len(l.candidates))
	for _, c := range l.candidates {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (l *Ledger) ElectionState(_ context.Context) (election.State, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state, nil
}

func (l *Ledger) ElectionStatus(_ context.Context) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.String(), nil
}

func (l *Ledger) TotalVoterCount(_ context.Context) (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return uint64(len(l.voters)), nil
}

func (l *Ledger) TotalCandidateCount(_ context.Context) (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return uint64(len(l.candidates)), nil
}

func (l *Ledger) VoteCounts(ctx context.Context) ([]election.Candidate, error) {
	return l.GetAllCandidates(ctx)
}

func (l *Ledger) VoterVotingStatus(_ context.Context) ([]election.VoterStatus, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]election.VoterStatus, 0, len(l.voters))
	for _, v := range l.voters {
		out = append(out, election.VoterStatus{VoterID: v.ID, Name: v.Name, HasVoted: v.HasVoted})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VoterID < out[j].VoterID })
	return out, nil
}

// Winners returns every candidate sharing the top vote count once the
// election has ended.
func (l *Ledger) Winners(_ context.Context) ([]election.Winner, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.state != election.StateEnded {
		return nil, dErrors.New(dErrors.CodeConflict, "execution reverted: election has not ended")
	}
	var top uint64
	for _, c := range l.candidates {
		if c.VoteCount > top {
			top = c.VoteCount
		}
	}
	var out []election.Winner
	for _, c := range l.sortedCandidates() {
		if c.VoteCount == top {
			out = append(out, election.Winner{ID: c.ID, Name: c.Name, PartyName: l.parties[c.ID]})
		}
	}
	return out, nil
}

func (l *Ledger) CastVote(_ context.Context, voterID, candidateID uint64) (election.TxHash, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != election.StateOngoing {
		return "", revert("election is not ongoing")
	}
	v, ok := l.voters[voterID]
	if !ok {
		return "", revert("voter not registered")
	}
	if v.HasVoted {
		return "", revert("voter has already voted")
	}
	c, ok := l.candidates[candidateID]
	if !ok {
		return "", revert("invalid candidate")
	}
	v.HasVoted = true
	c.VoteCount++
	return l.mint("castVote"), nil
}

func (l *Ledger) RegisterVoter(_ context.Context, reg election.VoterRegistration) (election.TxHash, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if reg.Name == "" {
		return "", revert("name is required")
	}
	if _, exists := l.voters[reg.VoterID]; exists {
		return "", revert(fmt.Sprintf("voter %d already registered", reg.VoterID))
	}
	l.voters[reg.VoterID] = &election.Voter{
		ID:             reg.VoterID,
		Name:           reg.Name,
		FaceEncoding:   reg.FaceEncoding,
		FingerEncoding: reg.FingerEncoding,
		FaceDisabled:   reg.FaceDisabled,
		FingerDisabled: reg.FingerDisabled,
	}
	return l.mint("registerVoter"), nil
}

func (l *Ledger) RegisterCandidate(_ context.Context, name string) (election.TxHash, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != election.StateNotStarted {
		return "", revert("candidates can only be added before the election starts")
	}
	if name == "" {
		return "", revert("name is required")
	}
	l.addCandidate(name, "")
	return l.mint("registerCandidate"), nil
}

// addCandidate assigns the next id. Caller holds l.mu.
func (l *Ledger) addCandidate(name, party string) uint64 {
	id := l.nextCandidateID
	l.nextCandidateID++
	l.candidates[id] = &election.Candidate{ID: id, Name: name}
	if party != "" {
		l.parties[id] = party
	}
	return id
}

func (l *Ledger) RemoveCandidate(_ context.Context, candidateID uint64) (election.TxHash, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != election.StateNotStarted {
		return "", revert("candidates can only be removed before the election starts")
	}
	if _, ok := l.candidates[candidateID]; !ok {
		return "", revert("invalid candidate")
	}
	delete(l.candidates, candidateID)
	delete(l.parties, candidateID)
	return l.mint("removeCandidate"), nil
}

func (l *Ledger) RemoveVoter(_ context.Context, voterID uint64) (election.TxHash, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != election.StateNotStarted {
		return "", revert("voters can only be removed before the election starts")
	}
	if _, ok := l.voters[voterID]; !ok {
		return "", revert("voter not registered")
	}
	delete(l.voters, voterID)
	return l.mint("removeVoter"), nil
}

func (l *Ledger) StartElection(_ context.Context) (election.TxHash, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != election.StateNotStarted {
		return "", revert("election already started")
	}
	if len(l.candidates) == 0 {
		return "", revert("no candidates registered")
	}
	l.state = election.StateOngoing
	return l.mint("startElection"), nil
}

func (l *Ledger) EndElection(_ context.Context) (election.TxHash, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != election.StateOngoing {
		return "", revert("election is not ongoing")
	}
	l.state = election.StateEnded
	return l.mint("endElection"), nil
}

// NewElection resets to NotStarted: candidates are dropped and every
// registered voter may vote again.
func (l *Ledger) NewElection(_ context.Context) (election.TxHash, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != election.StateEnded {
		return "", revert("current election has not ended")
	}
	l.state = election.StateNotStarted
	l.candidates = make(map[uint64]*election.Candidate)
	l.parties = make(map[uint64]string)
	l.nextCandidateID = 1
	for _, v := range l.voters {
		v.HasVoted = false
	}
	return l.mint("newElection"), nil
}

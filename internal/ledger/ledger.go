// Package ledger defines the election contract as votegate sees it.
//
// The contract is authoritative for voters, candidates, tallies and the
// election phase. Implementations live in sub-packages: ethereum talks to the
// deployed contract, memory is an in-process stand-in, cache decorates either
// with a short-lived roster cache.
package ledger

import (
	"context"

	"votegate/contracts/election"
)

// Reader is the view side of the contract.
type Reader interface {
	GetAllVoters(ctx context.Context) ([]election.Voter, error)
	GetAllCandidates(ctx context.Context) ([]election.Candidate, error)
	ElectionState(ctx context.Context) (election.State, error)
	ElectionStatus(ctx context.Context) (string, error)
	TotalVoterCount(ctx context.Context) (uint64, error)
	TotalCandidateCount(ctx context.Context) (uint64, error)
	VoteCounts(ctx context.Context) ([]election.Candidate, error)
	VoterVotingStatus(ctx context.Context) ([]election.VoterStatus, error)
	Winners(ctx context.Context) ([]election.Winner, error)
}

// Writer submits transactions. Each call returns once the transaction is
// accepted for submission; none of them wait for it to be mined.
type Writer interface {
	CastVote(ctx context.Context, voterID, candidateID uint64) (election.TxHash, error)
	RegisterVoter(ctx context.Context, reg election.VoterRegistration) (election.TxHash, error)
	RegisterCandidate(ctx context.Context, name string) (election.TxHash, error)
	RemoveCandidate(ctx context.Context, candidateID uint64) (election.TxHash, error)
	RemoveVoter(ctx context.Context, voterID uint64) (election.TxHash, error)
	StartElection(ctx context.Context) (election.TxHash, error)
	EndElection(ctx context.Context) (election.TxHash, error)
	NewElection(ctx context.Context) (election.TxHash, error)
}

// Ledger is the full contract surface.
type Ledger interface {
	Reader
	Writer
}

// Backend names accepted by configuration.
const (
	BackendMemory   = "memory"
	BackendEthereum = "ethereum"
)

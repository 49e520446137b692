package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"votegate/contracts/election"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/testutil"
)

const fixture = `
state: ongoing
candidates:
  - name: Bob
    party: Green
  - name: Carol
voters:
  - id: 7
    name: Alice
    face_encoding: "[0.1, 0.2]"
    finger_disabled: true
  - id: 8
    name: Dave
    has_voted: true
`

type LedgerSuite struct {
	suite.Suite
	ctx    context.Context
	ledger *Ledger
}

func (s *LedgerSuite) SetupTest() {
	s.ctx = context.Background()
	l, err := Load([]byte(fixture))
	s.Require().NoError(err)
	s.ledger = l
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerSuite))
}

func (s *LedgerSuite) reverted(err error) {
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeSubmissionFailed), "got %v", err)
}

func (s *LedgerSuite) TestSeedLoads() {
	voters, err := s.ledger.GetAllVoters(s.ctx)
	s.Require().NoError(err)
	s.Equal([]election.Voter{
		{ID: 7, Name: "Alice", FaceEncoding: "[0.1, 0.2]", FingerDisabled: true},
		{ID: 8, Name: "Dave", HasVoted: true},
	}, voters)

	candidates, err := s.ledger.GetAllCandidates(s.ctx)
	s.Require().NoError(err)
	s.Equal([]election.Candidate{{ID: 1, Name: "Bob"}, {ID: 2, Name: "Carol"}}, candidates)

	state, _ := s.ledger.ElectionState(s.ctx)
	s.Equal(election.StateOngoing, state)
	status, _ := s.ledger.ElectionStatus(s.ctx)
	s.Equal("Ongoing", status)
}

func (s *LedgerSuite) TestSeedErrors() {
	_, err := Load([]byte("state: paused"))
	s.Error(err)
	_, err = Load([]byte("voters: [{id: 1, name: a}, {id: 1, name: b}]"))
	s.Error(err)
	_, err = Load([]byte("candidates: [{party: x}]"))
	s.Error(err)
	_, err = LoadFile(filepath.Join(s.T().TempDir(), "missing.yaml"))
	s.Error(err)
}

func (s *LedgerSuite) TestLoadFile() {
	path := filepath.Join(s.T().TempDir(), "seed.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(fixture), 0o600))
	l, err := LoadFile(path)
	s.Require().NoError(err)
	n, _ := l.TotalVoterCount(s.ctx)
	s.Equal(uint64(2), n)
}

func (s *LedgerSuite) TestCastVote() {
	s.Run("records the vote once", func() {
		tx, err := s.ledger.CastVote(s.ctx, 7, 2)
		s.Require().NoError(err)
		s.Len(string(tx), 66)

		counts, _ := s.ledger.VoteCounts(s.ctx)
		s.Equal(uint64(1), counts[1].VoteCount)
		status, _ := s.ledger.VoterVotingStatus(s.ctx)
		s.Equal(election.VoterStatus{VoterID: 7, Name: "Alice", HasVoted: true}, status[0])

		_, err = s.ledger.CastVote(s.ctx, 7, 1)
		s.reverted(err)
	})

	s.Run("rejects unknown voter and candidate", func() {
		_, err := s.ledger.CastVote(s.ctx, 99, 1)
		s.reverted(err)
		_, err = s.ledger.CastVote(s.ctx, 8, 42)
		s.reverted(err)
	})
}

func (s *LedgerSuite) TestConcurrentVotesCountOnce() {
	res := testutil.RunConcurrentCtx(s.ctx, 16, func(ctx context.Context, idx int) error {
		_, err := s.ledger.CastVote(ctx, 7, uint64(idx%2+1))
		return err
	})

	s.Equal(1, res.Successes)
	s.Equal(15, res.Failed(dErrors.CodeSubmissionFailed))
	counts, err := s.ledger.VoteCounts(s.ctx)
	s.Require().NoError(err)
	s.Equal(uint64(1), counts[0].VoteCount+counts[1].VoteCount)
}

func (s *LedgerSuite) TestTxHashesAreUnique() {
	a, err := s.ledger.RegisterVoter(s.ctx, election.VoterRegistration{Name: "E", VoterID: 20})
	s.Require().NoError(err)
	b, err := s.ledger.RegisterVoter(s.ctx, election.VoterRegistration{Name: "F", VoterID: 21})
	s.Require().NoError(err)
	s.NotEqual(a, b)
}

func (s *LedgerSuite) TestRegisterVoterRejectsDuplicate() {
	_, err := s.ledger.RegisterVoter(s.ctx, election.VoterRegistration{Name: "Alice again", VoterID: 7})
	s.reverted(err)
}

func (s *LedgerSuite) TestLifecycle() {
	l := New()

	_, err := l.StartElection(s.ctx)
	s.reverted(err)

	_, err = l.RegisterCandidate(s.ctx, "Bob")
	s.Require().NoError(err)
	_, err = l.RegisterVoter(s.ctx, election.VoterRegistration{Name: "Alice", VoterID: 7})
	s.Require().NoError(err)

	_, err = l.Winners(s.ctx)
	s.Error(err)

	_, err = l.StartElection(s.ctx)
	s.Require().NoError(err)
	_, err = l.RegisterCandidate(s.ctx, "Late")
	s.reverted(err)
	_, err = l.RemoveVoter(s.ctx, 7)
	s.reverted(err)
	_, err = l.NewElection(s.ctx)
	s.reverted(err)

	_, err = l.CastVote(s.ctx, 7, 1)
	s.Require().NoError(err)
	_, err = l.EndElection(s.ctx)
	s.Require().NoError(err)

	winners, err := l.Winners(s.ctx)
	s.Require().NoError(err)
	s.Equal([]election.Winner{{ID: 1, Name: "Bob"}}, winners)

	_, err = l.NewElection(s.ctx)
	s.Require().NoError(err)
	state, _ := l.ElectionState(s.ctx)
	s.Equal(election.StateNotStarted, state)
	n, _ := l.TotalCandidateCount(s.ctx)
	s.Zero(n)
	voters, _ := l.GetAllVoters(s.ctx)
	s.False(voters[0].HasVoted)
}

func (s *LedgerSuite) TestWinnersIncludesTies() {
	l, err := FromSeed(Seed{
		State:      "ended",
		Candidates: []SeedCandidate{{Name: "A", Party: "P1", VoteCount: 3}, {Name: "B", VoteCount: 1}, {Name: "C", Party: "P3", VoteCount: 3}},
	})
	s.Require().NoError(err)
	winners, err := l.Winners(s.ctx)
	s.Require().NoError(err)
	s.Equal([]election.Winner{{ID: 1, Name: "A", PartyName: "P1"}, {ID: 3, Name: "C", PartyName: "P3"}}, winners)
}

func (s *LedgerSuite) TestRemoveCandidateAndVoter() {
	l, err := FromSeed(Seed{
		Candidates: []SeedCandidate{{Name: "A"}, {Name: "B"}},
		Voters:     []election.Voter{{ID: 1, Name: "x"}},
	})
	s.Require().NoError(err)

	_, err = l.RemoveCandidate(s.ctx, 1)
	s.Require().NoError(err)
	_, err = l.RemoveCandidate(s.ctx, 1)
	s.reverted(err)
	_, err = l.RemoveVoter(s.ctx, 1)
	s.Require().NoError(err)

	candidates, _ := l.GetAllCandidates(s.ctx)
	s.Equal([]election.Candidate{{ID: 2, Name: "B"}}, candidates)
	n, _ := l.TotalVoterCount(s.ctx)
	s.Zero(n)
}

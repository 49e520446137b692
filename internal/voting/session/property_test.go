package session

import (
	"context"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	biometric "votegate/contracts/biometric"
	"votegate/contracts/election"
	dErrors "votegate/pkg/domain-errors"
)

// stubBiometric matches every face and reports every fingerprint as belonging
// to voterID.
type stubBiometric struct {
	voterID uint64
	calls   int
}

func (b *stubBiometric) EncodeFace(context.Context, []byte) (biometric.Descriptor, error) {
	b.calls++
	return biometric.Descriptor{1}, nil
}

func (b *stubBiometric) CompareFaces(context.Context, biometric.Descriptor, biometric.Descriptor, float64) (bool, error) {
	b.calls++
	return true, nil
}

func (b *stubBiometric) InitFingerprintScanner(context.Context, string) error {
	b.calls++
	return nil
}

func (b *stubBiometric) VerifyFingerprint(context.Context) (biometric.FingerprintMatch, error) {
	b.calls++
	return biometric.FingerprintMatch{IsMatch: true, VoterID: b.voterID}, nil
}

type stubLedger struct{ calls int }

func (l *stubLedger) CastVote(context.Context, uint64, uint64) (election.TxHash, error) {
	l.calls++
	return "0x0", nil
}

func rosterOf(ids []uint64, hasVoted bool) []election.Voter {
	voters := make([]election.Voter, 0, len(ids))
	for _, id := range ids {
		voters = append(voters, election.Voter{ID: id, Name: "v" + strconv.FormatUint(id, 10), FaceEncoding: "[1]", HasVoted: hasVoted})
	}
	return voters
}

func newPropertySession(voters []election.Voter, bio *stubBiometric, led *stubLedger) *Session {
	sess, err := New(DefaultConfig(), Roster{Voters: voters, Candidates: []election.Candidate{{ID: 1, Name: "Bob"}}}, led, bio)
	if err != nil {
		panic(err)
	}
	return sess
}

func TestAuthenticateProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("an id outside the roster is not found and stays in login", prop.ForAll(
		func(ids []uint64, lookup uint64) bool {
			for _, id := range ids {
				if id == lookup {
					return true
				}
			}
			sess := newPropertySession(rosterOf(ids, false), &stubBiometric{}, &stubLedger{})
			err := sess.Authenticate(strconv.FormatUint(lookup, 10))
			return dErrors.HasCode(err, dErrors.CodeNotFound) && sess.Snapshot().Phase == PhaseLogin
		},
		gen.SliceOf(gen.UInt64Range(0, 500)),
		gen.UInt64Range(0, 1000),
	))

	properties.Property("a voter who already voted never leaves login", prop.ForAll(
		func(ids []uint64, pick int) bool {
			if len(ids) == 0 {
				return true
			}
			target := ids[pick%len(ids)]
			sess := newPropertySession(rosterOf(ids, true), &stubBiometric{}, &stubLedger{})
			err := sess.Authenticate(strconv.FormatUint(target, 10))
			return dErrors.HasCode(err, dErrors.CodeAlreadyVoted) && sess.Snapshot().Phase == PhaseLogin
		},
		gen.SliceOfN(20, gen.UInt64Range(1, 10_000)),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}

func TestProceedProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	// steps: 0 verify face, 1 verify fingerprint, 2 proceed
	properties.Property("proceed succeeds only once both checks are satisfied", prop.ForAll(
		func(faceExempt, fingerExempt bool, steps []int) bool {
			voter := election.Voter{ID: 7, FaceEncoding: "[1]", FaceDisabled: faceExempt, FingerDisabled: fingerExempt}
			bio := &stubBiometric{voterID: 7}
			sess := newPropertySession([]election.Voter{voter}, bio, &stubLedger{})
			if err := sess.Authenticate("7"); err != nil {
				return false
			}
			for _, step := range append(steps, 2) {
				before := sess.Snapshot()
				switch step {
				case 0:
					_ = sess.VerifyFace(context.Background(), []byte("jpeg"))
				case 1:
					_ = sess.VerifyFingerprint(context.Background())
				case 2:
					if before.Phase != PhaseVerification {
						continue
					}
					err := sess.ProceedToVoting()
					complete := before.FaceVerified && before.FingerprintVerified
					if complete != (err == nil) {
						return false
					}
					if !complete && !dErrors.HasCode(err, dErrors.CodeVerificationIncomplete) {
						return false
					}
				}
			}
			if faceExempt && fingerExempt && bio.calls != 0 {
				return false
			}
			return true
		},
		gen.Bool(),
		gen.Bool(),
		gen.SliceOf(gen.IntRange(0, 2)),
	))

	properties.Property("cast vote without a selection never reaches the ledger", prop.ForAll(
		func(selectThenReset bool) bool {
			led := &stubLedger{}
			voter := election.Voter{ID: 7, FaceDisabled: true, FingerDisabled: true}
			sess := newPropertySession([]election.Voter{voter}, &stubBiometric{}, led)
			_ = sess.Authenticate("7")
			_ = sess.ProceedToVoting()
			if selectThenReset {
				_ = sess.SelectCandidate(1)
				_ = sess.ResetSelection()
			}
			_, err := sess.CastVote(context.Background())
			return dErrors.HasCode(err, dErrors.CodeNoSelection) && led.calls == 0 && sess.Snapshot().Phase == PhaseVoting
		},
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// Package session implements the voter-facing voting wizard as a state
// machine: Login, Verification, Voting, Success.
//
// A Session owns only its own workflow state. The roster is loaded by the
// caller before the session exists, the biometric service answers match
// questions, and the ledger records the vote and enforces one vote per voter
// across sessions.
//
// Every failing operation leaves the phase where it was and records a
// human-readable status message, so the kiosk can always retry.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	biometric "votegate/contracts/biometric"
	"votegate/contracts/election"
	dErrors "votegate/pkg/domain-errors"
)

// Phase is a step of the voting wizard.
type Phase string

const (
	PhaseLogin        Phase = "login"
	PhaseVerification Phase = "verification"
	PhaseVoting       Phase = "voting"
	PhaseSuccess      Phase = "success"
)

// Config is the per-kiosk collaborator configuration.
type Config struct {
	// FaceMatchThreshold is forwarded to the face compare call.
	FaceMatchThreshold float64
	// ScannerPort names the serial port the fingerprint reader is attached to.
	ScannerPort string
}

// DefaultConfig returns the values the kiosks shipped with.
func DefaultConfig() Config {
	return Config{
		FaceMatchThreshold: biometric.DefaultFaceMatchThreshold,
		ScannerPort:        "COM11",
	}
}

// Kind names a biometric check.
type Kind string

const (
	KindFace        Kind = "face"
	KindFingerprint Kind = "fingerprint"
)

// AttemptGate admits a biometric attempt. It is consulted only once every
// precondition holds, immediately before the biometric service is called; a
// non-nil error rejects the attempt and leaves the session unchanged.
type AttemptGate func(kind Kind) error

// Option configures a Session.
type Option func(*Session)

// WithAttemptGate throttles biometric attempts.
func WithAttemptGate(gate AttemptGate) Option {
	return func(s *Session) {
		s.gate = gate
	}
}

// Roster is the voter and candidate list fetched from the ledger at session start.
type Roster struct {
	Voters     []election.Voter
	Candidates []election.Candidate
}

// Busy reports which collaborator-backed operations are in flight.
// Authenticate calls no collaborator and runs entirely under the session
// lock, so it has no flag.
type Busy struct {
	VerifyingFace        bool `json:"verifying_face"`
	VerifyingFingerprint bool `json:"verifying_fingerprint"`
	SubmittingVote       bool `json:"submitting_vote"`
}

func (b Busy) any() bool {
	return b.VerifyingFace || b.VerifyingFingerprint || b.SubmittingVote
}

// State is a point-in-time copy of a session.
type State struct {
	Phase               Phase
	VoterIDInput        string
	Voter               *election.Voter
	FaceVerified        bool
	FingerprintVerified bool
	Selected            *election.Candidate
	StatusMessage       string
	Busy                Busy
	TxHash              election.TxHash
}

// Session is one voter's pass through the wizard. It is safe for concurrent
// use; the lock is never held across a collaborator call.
type Session struct {
	mu        sync.Mutex
	cfg       Config
	ledger    Ledger
	biometric Biometric
	roster    Roster
	gate      AttemptGate

	phase               Phase
	voterIDInput        string
	voter               *election.Voter
	faceVerified        bool
	fingerprintVerified bool
	selected            *election.Candidate
	statusMessage       string
	busy                Busy
	txHash              election.TxHash
}

// New creates a session in the Login phase.
func New(cfg Config, roster Roster, ledger Ledger, bio Biometric, opts ...Option) (*Session, error) {
	if ledger == nil {
		return nil, fmt.Errorf("ledger is required")
	}
	if bio == nil {
		return nil, fmt.Errorf("biometric service is required")
	}
	defaults := DefaultConfig()
	if cfg.FaceMatchThreshold <= 0 {
		cfg.FaceMatchThreshold = defaults.FaceMatchThreshold
	}
	if cfg.ScannerPort == "" {
		cfg.ScannerPort = defaults.ScannerPort
	}
	sess := &Session{
		cfg:       cfg,
		ledger:    ledger,
		biometric: bio,
		roster:    roster,
		phase:     PhaseLogin,
	}
	for _, opt := range opts {
		opt(sess)
	}
	return sess, nil
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Phase:               s.phase,
		VoterIDInput:        s.voterIDInput,
		FaceVerified:        s.faceVerified,
		FingerprintVerified: s.fingerprintVerified,
		StatusMessage:       s.statusMessage,
		Busy:                s.busy,
		TxHash:              s.txHash,
	}
	if s.voter != nil {
		v := *s.voter
		st.Voter = &v
	}
	if s.selected != nil {
		c := *s.selected
		st.Selected = &c
	}
	return st
}

// Candidates returns the candidate roster the session was started with.
func (s *Session) Candidates() []election.Candidate {
	out := make([]election.Candidate, len(s.roster.Candidates))
	copy(out, s.roster.Candidates)
	return out
}

// Authenticate matches the typed voter id against the roster by exact string
// equality of the decimal id. No collaborator is called.
func (s *Session) Authenticate(input string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseLogin {
		return s.fail(phaseError(PhaseLogin, s.phase))
	}

	input = strings.TrimSpace(input)
	s.voterIDInput = input
	if input == "" {
		return s.fail(dErrors.New(dErrors.CodeInvalidInput, "Please enter your Voter ID"))
	}

	voter, ok := s.findVoter(input)
	if !ok {
		return s.fail(dErrors.New(dErrors.CodeNotFound, "Voter ID not found. Please check and try again."))
	}
	if voter.HasVoted {
		return s.fail(dErrors.New(dErrors.CodeAlreadyVoted, "You have already cast your vote in this election."))
	}

	s.voter = &voter
	s.seedVerification(voter)
	s.phase = PhaseVerification
	s.statusMessage = ""
	return nil
}

// seedVerification is the single place exemptions are applied: an exempt
// check starts out satisfied.
func (s *Session) seedVerification(v election.Voter) {
	s.faceVerified = v.FaceDisabled
	s.fingerprintVerified = v.FingerDisabled
}

func (s *Session) findVoter(input string) (election.Voter, bool) {
	for _, v := range s.roster.Voters {
		if v.IDString() == input {
			return v, true
		}
	}
	return election.Voter{}, false
}

// VerifyFace encodes the captured image and compares it with the voter's
// stored descriptor.
func (s *Session) VerifyFace(ctx context.Context, sample []byte) error {
	s.mu.Lock()
	if err := s.checkVerifiable(s.voter != nil && s.voter.FaceDisabled, s.faceVerified, s.busy.VerifyingFace, "Face"); err != nil {
		s.mu.Unlock()
		return err
	}
	if len(sample) == 0 {
		err := s.fail(dErrors.New(dErrors.CodeInvalidInput, "Failed to capture image"))
		s.mu.Unlock()
		return err
	}
	if err := s.admit(KindFace); err != nil {
		s.mu.Unlock()
		return err
	}
	stored := s.voter.FaceEncoding
	s.busy.VerifyingFace = true
	s.statusMessage = "Verifying face..."
	s.mu.Unlock()

	err := s.compareFace(ctx, stored, sample)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy.VerifyingFace = false
	if err != nil {
		return s.fail(err)
	}
	s.faceVerified = true
	s.statusMessage = "Face verification successful"
	return nil
}

func (s *Session) compareFace(ctx context.Context, stored string, sample []byte) error {
	reference, err := biometric.ParseDescriptor(stored)
	if err != nil {
		return dErrors.Classify(err, dErrors.CodeVerificationFailed, "Face verification failed: stored face encoding is unreadable")
	}
	captured, err := s.biometric.EncodeFace(ctx, sample)
	if err != nil {
		return classify(err, dErrors.CodeVerificationFailed, "Face verification failed")
	}
	matched, err := s.biometric.CompareFaces(ctx, reference, captured, s.cfg.FaceMatchThreshold)
	if err != nil {
		return classify(err, dErrors.CodeVerificationFailed, "Face verification failed")
	}
	if !matched {
		return dErrors.New(dErrors.CodeVerificationFailed, "Face verification failed: No match found")
	}
	return nil
}

// VerifyFingerprint opens a scanner session, takes a reading, and accepts it
// only if the service matched it to the authenticated voter. A match against
// anyone else is a failure.
func (s *Session) VerifyFingerprint(ctx context.Context) error {
	s.mu.Lock()
	if err := s.checkVerifiable(s.voter != nil && s.voter.FingerDisabled, s.fingerprintVerified, s.busy.VerifyingFingerprint, "Fingerprint"); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.admit(KindFingerprint); err != nil {
		s.mu.Unlock()
		return err
	}
	voterID := s.voter.ID
	s.busy.VerifyingFingerprint = true
	s.statusMessage = "Initializing fingerprint scanner..."
	s.mu.Unlock()

	err := s.matchFingerprint(ctx, voterID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy.VerifyingFingerprint = false
	if err != nil {
		return s.fail(err)
	}
	s.fingerprintVerified = true
	s.statusMessage = "Fingerprint verification successful"
	return nil
}

func (s *Session) matchFingerprint(ctx context.Context, voterID uint64) error {
	if err := s.biometric.InitFingerprintScanner(ctx, s.cfg.ScannerPort); err != nil {
		return classify(err, dErrors.CodeScannerUnavailable, "Failed to initialize scanner")
	}
	s.setStatus("Please place your finger on the scanner...")

	match, err := s.biometric.VerifyFingerprint(ctx)
	if err != nil {
		return classify(err, dErrors.CodeNoMatch, "Fingerprint verification failed")
	}
	if !match.IsMatch {
		return dErrors.New(dErrors.CodeNoMatch, "Fingerprint verification failed: No match found")
	}
	if match.VoterID != voterID {
		return dErrors.New(dErrors.CodeNoMatch, "Fingerprint verification failed: fingerprint belongs to a different voter")
	}
	return nil
}

func (s *Session) setStatus(msg string) {
	s.mu.Lock()
	s.statusMessage = msg
	s.mu.Unlock()
}

// admit asks the gate for an attempt. Caller holds s.mu.
func (s *Session) admit(kind Kind) error {
	if s.gate == nil {
		return nil
	}
	if err := s.gate(kind); err != nil {
		return s.fail(err)
	}
	return nil
}

// checkVerifiable enforces the shared preconditions of both biometric steps.
// Caller holds s.mu.
func (s *Session) checkVerifiable(exempt, verified, busy bool, label string) error {
	if s.phase != PhaseVerification {
		return s.fail(phaseError(PhaseVerification, s.phase))
	}
	if exempt {
		return s.fail(dErrors.New(dErrors.CodeAlreadyVerified, label+" verification is exempted for this voter"))
	}
	if verified {
		return s.fail(dErrors.New(dErrors.CodeAlreadyVerified, label+" already verified"))
	}
	if busy {
		return s.fail(dErrors.New(dErrors.CodeBusy, label+" verification already in progress"))
	}
	return nil
}

// ProceedToVoting moves to the ballot once both checks are satisfied, either
// by exemption or by a successful verification.
func (s *Session) ProceedToVoting() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseVerification {
		return s.fail(phaseError(PhaseVerification, s.phase))
	}
	if !s.faceVerified || !s.fingerprintVerified {
		return s.fail(dErrors.New(dErrors.CodeVerificationIncomplete, "Please complete all verification steps"))
	}
	s.phase = PhaseVoting
	s.statusMessage = ""
	return nil
}

// SelectCandidate marks a candidate from the roster as the voter's choice.
func (s *Session) SelectCandidate(candidateID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseVoting {
		return s.fail(phaseError(PhaseVoting, s.phase))
	}
	if s.busy.SubmittingVote {
		return s.fail(dErrors.New(dErrors.CodeBusy, "Vote submission in progress"))
	}
	for _, c := range s.roster.Candidates {
		if c.ID == candidateID {
			selected := c
			s.selected = &selected
			s.statusMessage = ""
			return nil
		}
	}
	return s.fail(dErrors.New(dErrors.CodeNotFound, "Candidate not found"))
}

// ResetSelection clears the voter's choice.
func (s *Session) ResetSelection() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseVoting {
		return s.fail(phaseError(PhaseVoting, s.phase))
	}
	if s.busy.SubmittingVote {
		return s.fail(dErrors.New(dErrors.CodeBusy, "Vote submission in progress"))
	}
	s.selected = nil
	s.statusMessage = ""
	return nil
}

// CastVote submits the selection to the ledger. The session reaches Success
// as soon as the transaction is accepted for submission, before it is mined.
func (s *Session) CastVote(ctx context.Context) (election.TxHash, error) {
	s.mu.Lock()
	if s.phase != PhaseVoting {
		err := s.fail(phaseError(PhaseVoting, s.phase))
		s.mu.Unlock()
		return "", err
	}
	if s.busy.SubmittingVote {
		err := s.fail(dErrors.New(dErrors.CodeBusy, "Vote submission in progress"))
		s.mu.Unlock()
		return "", err
	}
	if s.selected == nil || s.voter == nil {
		err := s.fail(dErrors.New(dErrors.CodeNoSelection, "Please select a candidate"))
		s.mu.Unlock()
		return "", err
	}
	if s.voter.HasVoted {
		err := s.fail(dErrors.New(dErrors.CodeAlreadyVoted, "You have already cast your vote in this election."))
		s.mu.Unlock()
		return "", err
	}
	voterID, candidateID := s.voter.ID, s.selected.ID
	s.busy.SubmittingVote = true
	s.statusMessage = "Submitting your vote to blockchain..."
	s.mu.Unlock()

	tx, err := s.ledger.CastVote(ctx, voterID, candidateID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy.SubmittingVote = false
	if err != nil {
		return "", s.fail(classify(err, dErrors.CodeSubmissionFailed, "Vote submission failed"))
	}
	s.txHash = tx
	s.phase = PhaseSuccess
	s.statusMessage = "Your vote has been submitted successfully!"
	return tx, nil
}

// Back retreats exactly one phase and drops that phase's state:
// Verification to Login forgets the voter and both checks, Voting to
// Verification forgets the selection.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy.any() {
		return s.fail(dErrors.New(dErrors.CodeBusy, "Please wait for the current step to finish"))
	}
	switch s.phase {
	case PhaseVerification:
		s.phase = PhaseLogin
		s.voter = nil
		s.faceVerified = false
		s.fingerprintVerified = false
	case PhaseVoting:
		s.phase = PhaseVerification
		s.selected = nil
	default:
		return s.fail(dErrors.New(dErrors.CodeInvalidPhase, "cannot go back from "+string(s.phase)+" phase"))
	}
	s.statusMessage = ""
	return nil
}

// fail records err's message as the status and returns it. Caller holds s.mu.
func (s *Session) fail(err error) error {
	s.statusMessage = err.Error()
	return err
}

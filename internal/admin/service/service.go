// Package service implements the admin dashboard and election controls.
// The dashboard button guards are enforced here before any transaction is
// submitted, so an admin gets a conflict instead of a reverted transaction.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"votegate/contracts/election"
	"votegate/internal/admin/auth"
	"votegate/internal/admin/models"
	"votegate/internal/ledger"
	"votegate/internal/platform/tracer"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/audit"
	adminmw "votegate/pkg/platform/middleware/admin"
	"votegate/pkg/platform/middleware/metadata"
)

// Lockout throttles failed logins per client address.
type Lockout interface {
	Check(ctx context.Context, key string) error
	RecordFailure(ctx context.Context, key string) error
	Clear(ctx context.Context, key string) error
}

type Service struct {
	ledger    ledger.Ledger
	biometric Biometric
	auth      Authenticator
	logger    *slog.Logger
	tracer    tracer.Tracer
	audit     *audit.Logger
	lockout   Lockout
	now       func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

func WithAuditLogger(l *audit.Logger) Option {
	return func(s *Service) {
		s.audit = l
	}
}

// WithLockout enables failed-login throttling.
func WithLockout(l Lockout) Option {
	return func(s *Service) {
		s.lockout = l
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(l ledger.Ledger, bio Biometric, authenticator Authenticator, opts ...Option) (*Service, error) {
	if l == nil || bio == nil || authenticator == nil {
		return nil, fmt.Errorf("ledger, biometric and authenticator are required")
	}
	s := &Service{
		ledger:    l,
		biometric: bio,
		auth:      authenticator,
		logger:    slog.Default(),
		tracer:    tracer.NewNoop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Login exchanges the admin password for a bearer token. With a lockout
// configured, a locked-out client is refused before the password is checked.
func (s *Service) Login(ctx context.Context, password string) (*models.TokenResponse, error) {
	client := clientKey(ctx)
	if s.lockout != nil {
		if err := s.lockout.Check(ctx, client); err != nil {
			s.auditLoginFailure(ctx, err)
			return nil, err
		}
	}
	token, err := s.auth.Login(ctx, password)
	if err != nil {
		s.auditLoginFailure(ctx, err)
		if s.lockout != nil && dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			if lerr := s.lockout.RecordFailure(ctx, client); lerr != nil {
				s.logger.ErrorContext(ctx, "failed to record login failure", "error", lerr)
			}
		}
		return nil, err
	}
	if s.lockout != nil {
		if err := s.lockout.Clear(ctx, client); err != nil {
			s.logger.WarnContext(ctx, "failed to clear login failures", "error", err)
		}
	}
	s.audit.Log(ctx, audit.Event{
		Action:  string(audit.EventAdminLogin),
		Subject: auth.Subject,
		Outcome: "success",
	})
	return &models.TokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(token.ExpiresAt.Sub(s.now()).Seconds()),
	}, nil
}

func (s *Service) auditLoginFailure(ctx context.Context, err error) {
	s.audit.Log(ctx, audit.Event{
		Action:  string(audit.EventAdminLogin),
		Subject: auth.Subject,
		Outcome: "failure",
		Reason:  string(dErrors.CodeOf(err)),
	})
}

func clientKey(ctx context.Context) string {
	if ip := metadata.ClientIP(ctx); ip != "" {
		return ip
	}
	return "unknown"
}

// Dashboard reads every figure the admin page shows. The reads are
// independent contract calls and run concurrently.
func (s *Service) Dashboard(ctx context.Context) (dash *models.Dashboard, err error) {
	ctx, span := s.tracer.Start(ctx, "admin.dashboard")
	defer func() { span.End(err) }()

	d := &models.Dashboard{Timestamp: s.now()}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.State, err = s.ledger.ElectionState(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.Status, err = s.ledger.ElectionStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.TotalVoters, err = s.ledger.TotalVoterCount(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.TotalCandidates, err = s.ledger.TotalCandidateCount(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.VoteCounts, err = s.ledger.VoteCounts(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.Voters, err = s.ledger.VoterVotingStatus(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeCollaboratorUnreachable, "failed to load dashboard")
	}

	d.StateName = d.State.String()
	for _, c := range d.VoteCounts {
		d.TotalVotesCast += c.VoteCount
	}
	if d.State == election.StateEnded {
		winners, err := s.ledger.Winners(ctx)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeCollaboratorUnreachable, "failed to load winners")
		}
		d.Winners = winners
	}
	span.SetAttributes(
		tracer.String("election.state", d.StateName),
		tracer.Int64("election.votes_cast", int64(d.TotalVotesCast)),
	)
	return d, nil
}

// ElectionAction moves the election through NotStarted, Ongoing and Ended.
func (s *Service) ElectionAction(ctx context.Context, action models.ElectionAction) (*models.ActionResult, error) {
	state, err := s.state(ctx)
	if err != nil {
		return nil, err
	}

	var (
		submit func(context.Context) (election.TxHash, error)
		event  audit.AuditEvent
	)
	switch action {
	case models.ActionStart:
		if state != election.StateNotStarted {
			return nil, dErrors.New(dErrors.CodeConflict, "Election has already started")
		}
		count, err := s.ledger.TotalCandidateCount(ctx)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeCollaboratorUnreachable, "failed to count candidates")
		}
		if count == 0 {
			return nil, dErrors.New(dErrors.CodeConflict, "Add at least one candidate before starting the election")
		}
		submit, event = s.ledger.StartElection, audit.EventElectionStarted
	case models.ActionEnd:
		if state != election.StateOngoing {
			return nil, dErrors.New(dErrors.CodeConflict, "Election is not ongoing")
		}
		submit, event = s.ledger.EndElection, audit.EventElectionEnded
	case models.ActionNew:
		if state != election.StateEnded {
			return nil, dErrors.New(dErrors.CodeConflict, "The current election has not ended")
		}
		submit, event = s.ledger.NewElection, audit.EventElectionNew
	default:
		return nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown election action %q", action))
	}

	tx, err := submit(ctx)
	if err != nil {
		return nil, s.failed(ctx, event, err)
	}
	return s.submitted(ctx, event, "", tx), nil
}

// AddCandidate registers a candidate. Only allowed before the election starts.
func (s *Service) AddCandidate(ctx context.Context, name string) (*models.ActionResult, error) {
	if err := s.requireNotStarted(ctx, "Candidates can only be added before the election starts"); err != nil {
		return nil, err
	}
	tx, err := s.ledger.RegisterCandidate(ctx, name)
	if err != nil {
		return nil, s.failed(ctx, audit.EventCandidateAdded, err)
	}
	return s.submitted(ctx, audit.EventCandidateAdded, name, tx), nil
}

// RemoveCandidate deletes a candidate. Only allowed before the election starts.
func (s *Service) RemoveCandidate(ctx context.Context, candidateID uint64) (*models.ActionResult, error) {
	if err := s.requireNotStarted(ctx, "Candidates can only be removed before the election starts"); err != nil {
		return nil, err
	}
	tx, err := s.ledger.RemoveCandidate(ctx, candidateID)
	if err != nil {
		return nil, s.failed(ctx, audit.EventCandidateRemoved, err)
	}
	return s.submitted(ctx, audit.EventCandidateRemoved, strconv.FormatUint(candidateID, 10), tx), nil
}

// RemoveVoter deletes a voter from the ledger and then drops their
// fingerprint template. A failed template delete does not fail the call.
func (s *Service) RemoveVoter(ctx context.Context, voterID uint64) (*models.RemoveVoterResult, error) {
	if err := s.requireNotStarted(ctx, "Voters can only be removed before the election starts"); err != nil {
		return nil, err
	}
	tx, err := s.ledger.RemoveVoter(ctx, voterID)
	if err != nil {
		return nil, s.failed(ctx, audit.EventVoterRemoved, err)
	}

	res := &models.RemoveVoterResult{
		ActionResult:       *s.submitted(ctx, audit.EventVoterRemoved, tracer.HashID(strconv.FormatUint(voterID, 10)), tx),
		FingerprintDeleted: true,
	}
	if err := s.biometric.DeleteFingerprint(ctx, voterID); err != nil {
		s.logger.WarnContext(ctx, "fingerprint template delete failed",
			"error", err,
			"voter", tracer.HashID(strconv.FormatUint(voterID, 10)),
		)
		res.FingerprintDeleted = false
	}
	return res, nil
}

func (s *Service) state(ctx context.Context) (election.State, error) {
	state, err := s.ledger.ElectionState(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeCollaboratorUnreachable, "failed to read election state")
	}
	return state, nil
}

func (s *Service) requireNotStarted(ctx context.Context, msg string) error {
	state, err := s.state(ctx)
	if err != nil {
		return err
	}
	if state != election.StateNotStarted {
		return dErrors.New(dErrors.CodeConflict, msg)
	}
	return nil
}

func (s *Service) submitted(ctx context.Context, event audit.AuditEvent, reason string, tx election.TxHash) *models.ActionResult {
	s.logger.InfoContext(ctx, "admin transaction submitted",
		"action", string(event),
		"tx_hash", string(tx),
	)
	s.audit.Log(ctx, audit.Event{
		Action:  string(event),
		Subject: s.actor(ctx),
		Outcome: "submitted",
		Reason:  reason,
		TxHash:  string(tx),
	})
	return &models.ActionResult{TxHash: string(tx)}
}

func (s *Service) failed(ctx context.Context, event audit.AuditEvent, err error) error {
	err = dErrors.Wrap(err, dErrors.CodeSubmissionFailed, "transaction submission failed")
	s.logger.ErrorContext(ctx, "admin transaction failed",
		"action", string(event),
		"error", err,
	)
	s.audit.Log(ctx, audit.Event{
		Action:  string(event),
		Subject: s.actor(ctx),
		Outcome: "failure",
		Reason:  string(dErrors.CodeOf(err)),
	})
	return err
}

func (s *Service) actor(ctx context.Context) string {
	if actor := adminmw.GetAdminActorID(ctx); actor != "" {
		return actor
	}
	return auth.Subject
}

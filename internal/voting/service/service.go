package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"votegate/contracts/election"
	"votegate/internal/platform/tracer"
	"votegate/internal/voting/device"
	"votegate/internal/voting/metrics"
	"votegate/internal/voting/models"
	"votegate/internal/voting/session"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/audit"
)

const defaultAttemptsPerMinute = 10

type Config struct {
	Session session.Config
	// BiometricAttemptsPerMinute bounds face plus fingerprint attempts per session.
	BiometricAttemptsPerMinute int
}

// Service runs many voting sessions keyed by an opaque id.
type Service struct {
	sessions  Store
	ledger    Ledger
	biometric session.Biometric
	cfg       Config
	logger    *slog.Logger
	tracer    tracer.Tracer
	metrics   *metrics.Metrics
	audit     *audit.Logger
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

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditLogger(l *audit.Logger) Option {
	return func(s *Service) {
		s.audit = l
	}
}

// WithClock overrides time.Now; tests use it to drive the attempt limiter.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(sessions Store, ledger Ledger, bio session.Biometric, cfg Config, opts ...Option) (*Service, error) {
	if sessions == nil || ledger == nil || bio == nil {
		return nil, fmt.Errorf("sessions, ledger, and biometric are required")
	}
	if cfg.BiometricAttemptsPerMinute <= 0 {
		cfg.BiometricAttemptsPerMinute = defaultAttemptsPerMinute
	}
	s := &Service{
		sessions:  sessions,
		ledger:    ledger,
		biometric: bio,
		cfg:       cfg,
		logger:    slog.Default(),
		tracer:    tracer.NewNoop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Start loads the roster and opens a session in the Login phase.
func (s *Service) Start(ctx context.Context, userAgent string) (view *models.SessionView, err error) {
	id := uuid.NewString()
	ctx, span := s.tracer.Start(ctx, tracer.SpanSessionStart, tracer.String(tracer.AttrSessionID, id))
	defer func() { span.End(err) }()

	roster, err := s.loadRoster(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load roster", "error", err, "session_id", id)
		return nil, err
	}
	perAttempt := time.Minute / time.Duration(s.cfg.BiometricAttemptsPerMinute)
	limiter := rate.NewLimiter(rate.Every(perAttempt), s.cfg.BiometricAttemptsPerMinute)
	sess, err := session.New(s.cfg.Session, roster, s.ledger, s.biometric,
		session.WithAttemptGate(s.attemptGate(id, limiter)),
	)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session")
	}

	entry := &models.Entry{
		ID:        id,
		Session:   sess,
		Kiosk:     device.Describe(userAgent),
		CreatedAt: s.now(),
	}
	if err := s.sessions.Save(ctx, entry); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save session")
	}

	s.metrics.IncSessionsStarted()
	s.refreshActive(ctx)
	s.logger.InfoContext(ctx, "voting session started",
		"session_id", id,
		"kiosk", entry.Kiosk.Display,
		"voters", len(roster.Voters),
		"candidates", len(roster.Candidates),
	)
	s.audit.Log(ctx, audit.Event{
		Action:    string(audit.EventSessionStarted),
		SessionID: id,
		ToPhase:   string(session.PhaseLogin),
	})
	return models.NewSessionView(entry), nil
}

// loadRoster fetches voters and candidates concurrently.
func (s *Service) loadRoster(ctx context.Context) (session.Roster, error) {
	var roster session.Roster
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		voters, err := s.ledger.GetAllVoters(gctx)
		roster.Voters = voters
		return err
	})
	g.Go(func() error {
		candidates, err := s.ledger.GetAllCandidates(gctx)
		roster.Candidates = candidates
		return err
	})
	if err := g.Wait(); err != nil {
		return session.Roster{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load roster")
	}
	return roster, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.SessionView, error) {
	entry, err := s.sessions.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return models.NewSessionView(entry), nil
}

// End discards a session, the server-side equivalent of reloading the kiosk page.
func (s *Service) End(ctx context.Context, id string) error {
	entry, err := s.sessions.Find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete session")
	}
	s.refreshActive(ctx)
	st := entry.Session.Snapshot()
	s.audit.Log(ctx, audit.Event{
		Action:    string(audit.EventSessionEnded),
		SessionID: id,
		Subject:   subject(st),
		FromPhase: string(st.Phase),
	})
	return nil
}

func (s *Service) Authenticate(ctx context.Context, id, voterID string) (view *models.SessionView, err error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	ctx, span := s.tracer.Start(ctx, tracer.SpanAuthenticate,
		tracer.String(tracer.AttrSessionID, id),
		tracer.String(tracer.AttrVoterID, tracer.HashID(voterID)),
	)
	defer func() { span.End(err) }()

	view, err = s.run(ctx, entry, span, func(sess *session.Session) error {
		return sess.Authenticate(voterID)
	})
	span.SetAttributes(tracer.String(tracer.AttrOutcome, result(err)))
	if err != nil {
		s.logger.InfoContext(ctx, "voter authentication rejected",
			"session_id", id,
			"code", string(dErrors.CodeOf(err)),
		)
	}
	return view, err
}

func (s *Service) VerifyFace(ctx context.Context, id string, sample []byte) (*models.SessionView, error) {
	return s.verify(ctx, id, "face", tracer.SpanVerifyFace, func(ctx context.Context, sess *session.Session) error {
		return sess.VerifyFace(ctx, sample)
	})
}

func (s *Service) VerifyFingerprint(ctx context.Context, id string) (*models.SessionView, error) {
	return s.verify(ctx, id, "fingerprint", tracer.SpanVerifyFingerprint, func(ctx context.Context, sess *session.Session) error {
		return sess.VerifyFingerprint(ctx)
	})
}

// attemptGate spends one limiter token per biometric attempt that passed the
// session's own preconditions.
func (s *Service) attemptGate(id string, limiter *rate.Limiter) session.AttemptGate {
	logger := s.logger.With("session_id", id)
	return func(kind session.Kind) error {
		if limiter.AllowN(s.now(), 1) {
			return nil
		}
		s.metrics.IncRateLimited()
		logger.Warn("biometric attempt rate limited", "kind", string(kind))
		return dErrors.New(dErrors.CodeRateLimited, "Too many verification attempts, please wait a moment")
	}
}

// verify runs one biometric check; the session's attempt gate throttles it.
func (s *Service) verify(ctx context.Context, id, kind, spanName string, op func(context.Context, *session.Session) error) (view *models.SessionView, err error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	st := entry.Session.Snapshot()
	ctx, span := s.tracer.Start(ctx, spanName,
		tracer.String(tracer.AttrSessionID, id),
		tracer.String(tracer.AttrVoterID, subject(st)),
	)
	defer func() { span.End(err) }()

	view, err = s.run(ctx, entry, span, func(sess *session.Session) error {
		return op(ctx, sess)
	})
	outcome := result(err)
	span.SetAttributes(tracer.String(tracer.AttrOutcome, outcome))
	s.metrics.IncVerification(kind, outcome)

	ev := audit.Event{
		Action:    string(audit.EventVerificationAttempted),
		SessionID: id,
		Subject:   subject(st),
		Outcome:   kind + ":" + outcome,
	}
	if err != nil {
		ev.Reason = err.Error()
		s.logger.InfoContext(ctx, "biometric verification failed",
			"session_id", id,
			"kind", kind,
			"code", outcome,
		)
	}
	s.audit.Log(ctx, ev)
	return view, err
}

func (s *Service) Proceed(ctx context.Context, id string) (*models.SessionView, error) {
	return s.simple(ctx, id, (*session.Session).ProceedToVoting)
}

func (s *Service) Select(ctx context.Context, id string, candidateID uint64) (*models.SessionView, error) {
	return s.simple(ctx, id, func(sess *session.Session) error {
		return sess.SelectCandidate(candidateID)
	})
}

func (s *Service) ResetSelection(ctx context.Context, id string) (*models.SessionView, error) {
	return s.simple(ctx, id, (*session.Session).ResetSelection)
}

func (s *Service) Back(ctx context.Context, id string) (*models.SessionView, error) {
	return s.simple(ctx, id, (*session.Session).Back)
}

// CastVote submits the selected candidate. The view carries the tx hash and
// confirmed=false.
func (s *Service) CastVote(ctx context.Context, id string) (view *models.SessionView, err error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	st := entry.Session.Snapshot()
	attrs := []tracer.Attribute{
		tracer.String(tracer.AttrSessionID, id),
		tracer.String(tracer.AttrVoterID, subject(st)),
	}
	if st.Selected != nil {
		attrs = append(attrs, tracer.String(tracer.AttrCandidateID, strconv.FormatUint(st.Selected.ID, 10)))
	}
	ctx, span := s.tracer.Start(ctx, tracer.SpanCastVote, attrs...)
	defer func() { span.End(err) }()

	var tx election.TxHash
	view, err = s.run(ctx, entry, span, func(sess *session.Session) error {
		var castErr error
		tx, castErr = sess.CastVote(ctx)
		return castErr
	})
	outcome := result(err)
	s.metrics.IncVoteSubmitted(outcome)
	span.SetAttributes(
		tracer.String(tracer.AttrOutcome, outcome),
		tracer.String(tracer.AttrTxHash, string(tx)),
	)

	ev := audit.Event{
		Action:    string(audit.EventVoteSubmitted),
		SessionID: id,
		Subject:   subject(st),
		Outcome:   outcome,
		TxHash:    string(tx),
	}
	if err != nil {
		ev.Reason = err.Error()
		s.logger.WarnContext(ctx, "vote submission failed", "session_id", id, "code", outcome, "error", err)
	} else {
		s.logger.InfoContext(ctx, "vote submitted", "session_id", id, "tx_hash", string(tx))
	}
	s.audit.Log(ctx, ev)
	return view, err
}

func (s *Service) simple(ctx context.Context, id string, op func(*session.Session) error) (*models.SessionView, error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, entry, nil, op)
}

// load finds a session and records activity on it.
func (s *Service) load(ctx context.Context, id string) (*models.Entry, error) {
	entry, err := s.sessions.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Touch(ctx, id, s.now()); err != nil {
		return nil, err
	}
	return entry, nil
}

// run applies op to the session and records the phase change, if any.
func (s *Service) run(ctx context.Context, entry *models.Entry, span tracer.Span, op func(*session.Session) error) (*models.SessionView, error) {
	before := entry.Session.Snapshot()
	err := op(entry.Session)
	after := entry.Session.Snapshot()

	if before.Phase != after.Phase {
		s.phaseChanged(ctx, entry.ID, before, after, span)
	}
	if err != nil {
		return nil, err
	}
	return models.NewSessionView(entry), nil
}

func (s *Service) phaseChanged(ctx context.Context, id string, before, after session.State, span tracer.Span) {
	from, to := string(before.Phase), string(after.Phase)
	s.metrics.IncTransition(from, to)
	if span != nil {
		span.AddEvent(tracer.EventPhaseChanged,
			tracer.String("from", from),
			tracer.String("to", to),
		)
	}
	subj := subject(after)
	if subj == "" {
		subj = subject(before)
	}
	s.logger.InfoContext(ctx, "session phase changed", "session_id", id, "from", from, "to", to)
	s.audit.Log(ctx, audit.Event{
		Action:    string(audit.EventPhaseChanged),
		SessionID: id,
		Subject:   subj,
		FromPhase: from,
		ToPhase:   to,
		TxHash:    string(after.TxHash),
	})
}

func (s *Service) refreshActive(ctx context.Context) {
	if n, err := s.sessions.Count(ctx); err == nil {
		s.metrics.SetActiveSessions(n)
	}
}

// subject is the hashed id of the session's voter, empty before login.
func subject(st session.State) string {
	if st.Voter == nil {
		return ""
	}
	return tracer.HashID(st.Voter.IDString())
}

func result(err error) string {
	if err == nil {
		return "success"
	}
	return string(dErrors.CodeOf(err))
}

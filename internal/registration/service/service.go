// Package service enrolls voters: it captures biometric templates and
// submits the registerVoter transaction. It keeps no state between requests.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	biometricClient "votegate/internal/biometric"
	"votegate/internal/platform/tracer"
	"votegate/internal/registration/models"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/audit"
	psync "votegate/pkg/platform/sync"
)

type Service struct {
	biometric   Biometric
	ledger      Ledger
	scannerPort string
	logger      *slog.Logger
	audit       *audit.Logger
	// locks serializes scanner use per port and submissions per voter id.
	locks *psync.ShardedMutex
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithAuditLogger(l *audit.Logger) Option {
	return func(s *Service) {
		s.audit = l
	}
}

func New(bio Biometric, ledger Ledger, scannerPort string, opts ...Option) (*Service, error) {
	if bio == nil || ledger == nil {
		return nil, fmt.Errorf("biometric and ledger are required")
	}
	if scannerPort == "" {
		return nil, fmt.Errorf("scanner port is required")
	}
	s := &Service{
		biometric:   bio,
		ledger:      ledger,
		scannerPort: scannerPort,
		logger:      slog.Default(),
		locks:       psync.NewShardedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CaptureFace encodes a face capture and returns the descriptor in the form
// stored on the ledger.
func (s *Service) CaptureFace(ctx context.Context, image []byte) (*models.FaceCaptureResult, error) {
	if len(image) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "Failed to capture image")
	}
	descriptor, err := s.biometric.EncodeFace(ctx, image)
	if err != nil {
		return nil, classify(err, dErrors.CodeVerificationFailed, "Face encoding failed")
	}
	return &models.FaceCaptureResult{Encoding: descriptor.String()}, nil
}

// EnrollFingerprint initializes the scanner and records a new template.
func (s *Service) EnrollFingerprint(ctx context.Context, req *models.EnrollFingerprintRequest) (*models.FingerprintResult, error) {
	s.locks.Lock("scanner:" + s.scannerPort)
	defer s.locks.Unlock("scanner:" + s.scannerPort)

	if err := s.biometric.InitFingerprintScanner(ctx, s.scannerPort); err != nil {
		return nil, classify(err, dErrors.CodeScannerUnavailable, "Failed to initialize scanner")
	}
	encoding, err := s.biometric.RegisterFingerprint(ctx, req.VoterID, req.Name)
	if err != nil {
		return nil, classify(err, dErrors.CodeNoMatch, "Fingerprint enrollment failed")
	}
	s.logger.InfoContext(ctx, "fingerprint enrolled", "voter", tracer.HashID(fmt.Sprint(req.VoterID)))
	return &models.FingerprintResult{FingerprintEncoding: encoding}, nil
}

// Register submits the voter to the ledger. Like voting, success means the
// transaction was accepted for submission.
func (s *Service) Register(ctx context.Context, req *models.Request) (*models.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	reg, err := req.ToRegistration()
	if err != nil {
		return nil, err
	}
	// Lock on the parsed id so "007" and "7" contend for one voter.
	voterID := strconv.FormatUint(reg.VoterID, 10)
	s.locks.Lock("voter:" + voterID)
	defer s.locks.Unlock("voter:" + voterID)

	tx, err := s.ledger.RegisterVoter(ctx, reg)
	if err != nil {
		s.logger.WarnContext(ctx, "voter registration failed", "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeSubmissionFailed, "Registration failed")
	}
	s.audit.Log(ctx, audit.Event{
		Action:  string(audit.EventVoterRegistered),
		Subject: tracer.HashID(voterID),
		TxHash:  string(tx),
		Outcome: "submitted",
	})
	return &models.Result{TxHash: string(tx)}, nil
}

// classify keeps a transport failure distinct from the service saying no.
func classify(err error, code dErrors.Code, msg string) error {
	if biometricClient.IsUnreachable(err) || dErrors.HasCode(err, dErrors.CodeCollaboratorUnreachable) {
		return dErrors.Classify(err, dErrors.CodeCollaboratorUnreachable, "Service unreachable, please try again")
	}
	var be *biometricClient.Error
	if errors.As(err, &be) && be.Reason() != "" {
		msg = msg + ": " + be.Reason()
	}
	return dErrors.Classify(err, code, msg)
}

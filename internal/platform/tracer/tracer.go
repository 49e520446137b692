// Package tracer provides a lightweight tracing abstraction for votegate.
//
// Services depend on the Tracer interface rather than OpenTelemetry directly,
// so tests run against NoopTracer and production wires OTelTracer.
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks the span as failed.
	// End must be called exactly once, typically via defer.
	End(err error)

	SetAttributes(attrs ...Attribute)

	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a new span; the returned context carries it to child calls.
	//
	// Example:
	//   ctx, span := t.Start(ctx, tracer.SpanVerifyFace,
	//       tracer.String(tracer.AttrVoterID, tracer.HashID(voterID)),
	//   )
	//   defer func() { span.End(err) }()
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// HashID returns a short SHA-256 digest of a voter id so traces and logs can
// be correlated without recording who voted.
func HashID(voterID string) string {
	if voterID == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(voterID))
	return hex.EncodeToString(hash[:8])
}

// Span names.
const (
	SpanSessionStart      = "voting.session.start"
	SpanAuthenticate      = "voting.authenticate"
	SpanVerifyFace        = "voting.verify_face"
	SpanVerifyFingerprint = "voting.verify_fingerprint"
	SpanCastVote          = "voting.cast_vote"
	SpanBiometricCall     = "biometric.call"
	SpanLedgerCall        = "ledger.call"
)

// Attribute keys.
const (
	AttrSessionID   = "session.id"
	AttrVoterID     = "voter.id_hash"
	AttrCandidateID = "candidate.id"
	AttrPhase       = "session.phase"
	AttrOutcome     = "outcome"
	AttrEndpoint    = "endpoint"
	AttrMethod      = "method"
	AttrTxHash      = "tx.hash"
)

// Event names.
const (
	EventPhaseChanged = "session.phase_changed"
	EventAuditEmitted = "audit.emitted"
)

package session

import (
	"context"

	biometric "votegate/contracts/biometric"
	"votegate/contracts/election"
)

// Ledger is the write side of the election contract the session needs.
// Submission is fire-and-forget: a returned hash means the transport accepted
// the transaction, not that it was mined.
type Ledger interface {
	CastVote(ctx context.Context, voterID, candidateID uint64) (election.TxHash, error)
}

// Biometric is the face and fingerprint service.
type Biometric interface {
	EncodeFace(ctx context.Context, image []byte) (biometric.Descriptor, error)
	CompareFaces(ctx context.Context, stored, captured biometric.Descriptor, threshold float64) (bool, error)
	InitFingerprintScanner(ctx context.Context, port string) error
	VerifyFingerprint(ctx context.Context) (biometric.FingerprintMatch, error)
}

// unreachable is implemented by collaborator errors that can tell a transport
// failure apart from a well-formed negative answer.
type unreachable interface {
	Unreachable() bool
}

// reasoned is implemented by collaborator errors that carry the service's own
// explanation.
type reasoned interface {
	Reason() string
}

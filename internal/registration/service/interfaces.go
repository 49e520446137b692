package service

import (
	"context"

	biometric "votegate/contracts/biometric"
	"votegate/contracts/election"
)

// Biometric is the enrollment side of the biometric service.
type Biometric interface {
	EncodeFace(ctx context.Context, image []byte) (biometric.Descriptor, error)
	InitFingerprintScanner(ctx context.Context, port string) error
	RegisterFingerprint(ctx context.Context, voterID uint64, name string) (string, error)
}

type Ledger interface {
	RegisterVoter(ctx context.Context, reg election.VoterRegistration) (election.TxHash, error)
}

package service

import (
	"context"

	"votegate/internal/admin/auth"
)

// Biometric removes enrolled fingerprint templates.
type Biometric interface {
	DeleteFingerprint(ctx context.Context, voterID uint64) error
}

// Authenticator checks the admin password.
type Authenticator interface {
	Login(ctx context.Context, password string) (*auth.Token, error)
}

package auth

import (
	"votegate/pkg/platform/middleware/admin"
)

func ToMiddlewareClaims(claims *Claims) *admin.Claims {
	return &admin.Claims{
		Subject: claims.Subject,
		TokenID: claims.ID,
	}
}

// MiddlewareAdapter exposes an Authenticator as an admin.TokenValidator.
type MiddlewareAdapter struct {
	auth *Authenticator
}

func NewMiddlewareAdapter(a *Authenticator) *MiddlewareAdapter {
	return &MiddlewareAdapter{auth: a}
}

func (m *MiddlewareAdapter) ValidateToken(token string) (*admin.Claims, error) {
	claims, err := m.auth.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims), nil
}

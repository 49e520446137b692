// Package auth issues and validates admin bearer tokens.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/secrets"
)

const (
	// Subject is the only admin principal; the dashboard has a single password.
	Subject = "admin"

	DefaultTokenTTL = time.Hour
	issuer          = "votegate"
	audience        = "votegate-admin"
)

// Claims are the admin token claims.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Token is an issued admin token.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Authenticator checks the admin password and signs HS256 tokens.
type Authenticator struct {
	passwordHash string
	signingKey   []byte
	tokenTTL     time.Duration
	now          func() time.Time
}

type Option func(*Authenticator)

func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) {
		if now != nil {
			a.now = now
		}
	}
}

// New creates an Authenticator. passwordHash is a bcrypt hash.
func New(passwordHash, signingKey string, tokenTTL time.Duration, opts ...Option) (*Authenticator, error) {
	if passwordHash == "" {
		return nil, errors.New("admin password hash is required")
	}
	if signingKey == "" {
		return nil, errors.New("admin signing key is required")
	}
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	a := &Authenticator{
		passwordHash: passwordHash,
		signingKey:   []byte(signingKey),
		tokenTTL:     tokenTTL,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Login verifies the password and issues a token.
func (a *Authenticator) Login(_ context.Context, password string) (*Token, error) {
	if password == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}
	if err := secrets.Verify(password, a.passwordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, err
	}
	return a.issue()
}

func (a *Authenticator) issue() (*Token, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not generate token id")
	}
	now := a.now()
	expiresAt := now.Add(a.tokenTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: Subject,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   Subject,
			Issuer:    issuer,
			Audience:  []string{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        hex.EncodeToString(b),
		},
	})
	signed, err := token.SignedString(a.signingKey)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not sign token")
	}
	return &Token{AccessToken: signed, ExpiresAt: expiresAt}, nil
}

// ValidateToken parses a token and checks signature, algorithm, expiry,
// issuer, audience and role.
func (a *Authenticator) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return a.signingKey, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Role != Subject {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

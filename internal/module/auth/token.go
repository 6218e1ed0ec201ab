package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/simp-lee/jwt"

	"github.com/learnhub/admin/internal/domain"
	"github.com/learnhub/admin/internal/middleware"
)

const tokenIssuer = "learnhub-catalog"

// clockFunc adapts a time source to jwt.Clock.
type clockFunc func() time.Time

func (f clockFunc) Now() time.Time { return f() }

// TokenManager issues, verifies and revokes HS256 access tokens. Tokens carry
// the user ID and roles; permissions are resolved from the roles per request.
type TokenManager struct {
	svc    jwt.Service
	expiry time.Duration
	now    func() time.Time
}

var _ middleware.TokenVerifier = (*TokenManager)(nil)

// NewTokenManager returns a TokenManager signing with secret, which must be
// at least jwt.MinSecretLength characters. Call Close to stop its revocation
// cleanup.
func NewTokenManager(secret string, expiry time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("auth: token secret is required")
	}
	if expiry <= 0 {
		return nil, errors.New("auth: token expiry must be positive")
	}

	m := &TokenManager{expiry: expiry, now: time.Now}
	opts := []jwt.Option{
		jwt.WithIssuer(tokenIssuer),
		jwt.WithMaxTokenLifetime(expiry),
		jwt.WithClock(clockFunc(func() time.Time { return m.now() })),
	}
	if expiry > jwt.DefaultUserRevocationTTL {
		opts = append(opts, jwt.WithUserRevocationTTL(expiry))
	}
	svc, err := jwt.New(secret, opts...)
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}
	m.svc = svc
	return m, nil
}

// Issue signs a token for u and returns it with its expiry.
func (m *TokenManager) Issue(u *domain.User) (string, time.Time, error) {
	token, err := m.svc.GenerateToken(strconv.FormatUint(uint64(u.ID), 10), u.Roles, m.expiry)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	parsed, err := m.svc.ParseToken(token)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("parse issued token: %w", err)
	}
	return token, parsed.ExpiresAt, nil
}

// Verify checks the signature, issuer, expiry and revocation of token.
func (m *TokenManager) Verify(token string) (middleware.Principal, error) {
	t, err := m.svc.ValidateToken(token)
	if err != nil {
		return middleware.Principal{}, fmt.Errorf("verify token: %w", err)
	}

	id, err := strconv.ParseUint(t.UserID, 10, 64)
	if err != nil || id == 0 {
		return middleware.Principal{}, fmt.Errorf("verify token: invalid user id %q", t.UserID)
	}
	return middleware.Principal{UserID: uint(id), Roles: t.Roles}, nil
}

// Revoke invalidates token until it would have expired anyway.
func (m *TokenManager) Revoke(token string) error {
	if err := m.svc.RevokeToken(token); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// Close stops the revocation cleanup. Tokens cannot be issued afterwards.
func (m *TokenManager) Close() error {
	m.svc.Close()
	return nil
}

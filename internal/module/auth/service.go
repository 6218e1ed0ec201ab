package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/learnhub/admin/internal/domain"
)

// Service defines the authentication operations.
type Service interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	Logout(ctx context.Context, token string) error
}

// PermissionLister resolves the permissions granted by a role set.
type PermissionLister interface {
	Permissions(roles []string) []domain.Permission
}

// authService implements Service.
type authService struct {
	tokens *TokenManager
	users  domain.UserRepository
	perms  PermissionLister
}

// NewService creates a new auth Service.
func NewService(tokens *TokenManager, users domain.UserRepository, perms PermissionLister) Service {
	return &authService{tokens: tokens, users: users, perms: perms}
}

// Login authenticates an active user by email and password.
func (s *authService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		// Unknown emails are indistinguishable from wrong passwords.
		if domain.IsNotFound(err) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != domain.StatusActive {
		return nil, domain.NewAppError(domain.CodeUnauthorized, "account is disabled", nil)
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to generate token", err)
	}

	return &LoginResponse{
		Token:       token,
		ExpiresAt:   expiresAt,
		User:        UserInfo{ID: user.ID, Name: user.Name, Email: user.Email},
		Roles:       user.Roles,
		Permissions: s.perms.Permissions(user.Roles),
	}, nil
}

// Logout revokes token so it is refused for the rest of its lifetime.
func (s *authService) Logout(_ context.Context, token string) error {
	if err := s.tokens.Revoke(token); err != nil {
		return domain.NewAppError(domain.CodeUnauthorized, "invalid token", err)
	}
	return nil
}

package user

import (
	"context"
	"net/mail"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/learnhub/admin/internal/domain"
)

// Service manages administrator accounts.
type Service struct {
	repo domain.UserRepository
}

// NewService creates a Service over repo.
func NewService(repo domain.UserRepository) *Service {
	return &Service{repo: repo}
}

// Provision creates an active administrator holding roles, storing a bcrypt
// hash of password.
func (s *Service) Provision(ctx context.Context, name, email, password string, roles ...domain.Role) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if err := validateAccount(name, email, password, roles); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to hash password", err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Status:       domain.StatusActive,
	}
	for _, r := range roles {
		user.Roles = append(user.Roles, string(r))
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if domain.IsAlreadyExists(err) {
			return nil, domain.NewAppError(domain.CodeAlreadyExists, "email already registered", err)
		}
		return nil, err
	}
	return user, nil
}

func validateAccount(name, email, password string, roles []domain.Role) error {
	n := utf8.RuneCountInString(name)
	if n == 0 {
		return domain.NewAppError(domain.CodeValidation, "name is required", nil)
	}
	if n > 100 {
		return domain.NewAppError(domain.CodeValidation, "name must not exceed 100 characters", nil)
	}
	if email == "" {
		return domain.NewAppError(domain.CodeValidation, "email is required", nil)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return domain.NewAppError(domain.CodeValidation, "email must be a valid email address", nil)
	}
	if len(password) < 8 {
		return domain.NewAppError(domain.CodeValidation, "password must be at least 8 characters", nil)
	}
	// bcrypt ignores input past 72 bytes.
	if len(password) > 72 {
		return domain.NewAppError(domain.CodeValidation, "password must not exceed 72 characters", nil)
	}
	if len(roles) == 0 {
		return domain.NewAppError(domain.CodeValidation, "at least one role is required", nil)
	}
	for _, r := range roles {
		if _, err := domain.ParseRole(string(r)); err != nil {
			return domain.NewAppError(domain.CodeValidation, err.Error(), nil)
		}
	}
	return nil
}

package user

import (
	"context"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/learnhub/admin/internal/domain"
)

// --- mock repository ---

type mockUserRepo struct {
	users     map[string]*domain.User
	createErr error
}

func newMockRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*domain.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.users[user.Email]; ok {
		return domain.NewAppError(domain.CodeAlreadyExists, "already exists", nil)
	}
	user.ID = uint(len(m.users) + 1)
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func TestProvision_Success(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	u, err := svc.Provision(context.Background(), " Ada ", "Ada@LearnHub.test", "correct-horse", domain.RoleSuperAdmin)
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if u.Name != "Ada" || u.Email != "ada@learnhub.test" || u.Status != domain.StatusActive {
		t.Errorf("user = %+v", u)
	}
	if !u.HasRole(domain.RoleSuperAdmin) {
		t.Errorf("roles = %v", u.Roles)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("correct-horse")); err != nil {
		t.Errorf("password hash does not match: %v", err)
	}
}

func TestProvision_Validation(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		email    string
		password string
		roles    []domain.Role
		want     string
	}{
		{"empty name", "", "a@b.test", "password1", []domain.Role{domain.RoleViewer}, "name is required"},
		{"long name", strings.Repeat("x", 101), "a@b.test", "password1", []domain.Role{domain.RoleViewer}, "100 characters"},
		{"empty email", "Ada", "", "password1", []domain.Role{domain.RoleViewer}, "email is required"},
		{"bad email", "Ada", "not-an-email", "password1", []domain.Role{domain.RoleViewer}, "valid email"},
		{"display name email", "Ada", "Ada <a@b.test>", "password1", []domain.Role{domain.RoleViewer}, "valid email"},
		{"short password", "Ada", "a@b.test", "short", []domain.Role{domain.RoleViewer}, "at least 8"},
		{"long password", "Ada", "a@b.test", strings.Repeat("p", 73), []domain.Role{domain.RoleViewer}, "72"},
		{"no roles", "Ada", "a@b.test", "password1", nil, "role"},
		{"unknown role", "Ada", "a@b.test", "password1", []domain.Role{"janitor"}, "unknown role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewService(newMockRepo()).Provision(context.Background(), tt.userName, tt.email, tt.password, tt.roles...)
			if !domain.IsValidation(err) || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v; want validation error containing %q", err, tt.want)
			}
		})
	}
}

func TestProvision_DuplicateEmail(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	if _, err := svc.Provision(ctx, "Ada", "ada@learnhub.test", "password1", domain.RoleViewer); err != nil {
		t.Fatalf("first Provision: %v", err)
	}
	_, err := svc.Provision(ctx, "Ada Again", "ADA@learnhub.test", "password2", domain.RoleViewer)
	if !domain.IsAlreadyExists(err) || !strings.Contains(err.Error(), "email already registered") {
		t.Errorf("err = %v", err)
	}
}

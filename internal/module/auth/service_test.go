package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/learnhub/admin/internal/domain"
)

// --- fakes ---

type fakeUserRepo struct {
	user *domain.User
	err  error
}

func (f *fakeUserRepo) Create(context.Context, *domain.User) error { return nil }

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.user == nil || f.user.Email != email {
		return nil, domain.ErrNotFound
	}
	return f.user, nil
}

type staticPermissions map[string][]domain.Permission

func (s staticPermissions) Permissions(roles []string) []domain.Permission {
	var out []domain.Permission
	for _, r := range roles {
		out = append(out, s[r]...)
	}
	return out
}

// --- helpers ---

func hashPassword(t *testing.T, pw string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return string(hash)
}

func newTestService(t *testing.T, repo *fakeUserRepo) Service {
	t.Helper()
	perms := staticPermissions{
		"viewer": {domain.PermSubjectsRead, domain.PermVideosRead},
	}
	return NewService(newTestTokens(t, time.Now()), repo, perms)
}

func activeViewer(t *testing.T) *domain.User {
	u := &domain.User{
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: hashPassword(t, "password123"),
		Roles:        []string{"viewer"},
		Status:       domain.StatusActive,
	}
	u.ID = 7
	return u
}

// --- tests ---

func TestLogin_Success(t *testing.T) {
	svc := newTestService(t, &fakeUserRepo{user: activeViewer(t)})

	resp, err := svc.Login(context.Background(), "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Token == "" || resp.ExpiresAt.IsZero() {
		t.Errorf("resp = %+v", resp)
	}
	if resp.User.ID != 7 || resp.User.Email != "alice@example.com" {
		t.Errorf("user = %+v", resp.User)
	}
	if len(resp.Permissions) != 2 || resp.Permissions[0] != domain.PermSubjectsRead {
		t.Errorf("permissions = %v", resp.Permissions)
	}
}

func TestLogin_UnknownEmailLooksLikeBadPassword(t *testing.T) {
	svc := newTestService(t, &fakeUserRepo{user: activeViewer(t)})

	_, err := svc.Login(context.Background(), "nobody@example.com", "password123")
	if !domain.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err.Error() != domain.ErrUnauthorized.Error() {
		t.Errorf("message = %q", err.Error())
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newTestService(t, &fakeUserRepo{user: activeViewer(t)})

	_, err := svc.Login(context.Background(), "alice@example.com", "wrongpassword")
	if !domain.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLogin_InactiveAccount(t *testing.T) {
	u := activeViewer(t)
	u.Status = domain.StatusInactive
	svc := newTestService(t, &fakeUserRepo{user: u})

	_, err := svc.Login(context.Background(), "alice@example.com", "password123")
	if !domain.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLogin_RepositoryError(t *testing.T) {
	dbErr := errors.New("connection refused")
	svc := newTestService(t, &fakeUserRepo{err: dbErr})

	_, err := svc.Login(context.Background(), "alice@example.com", "password123")
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected repository error, got %v", err)
	}
}

func TestLogout_RevokesToken(t *testing.T) {
	tokens := newTestTokens(t, time.Now())
	svc := NewService(tokens, &fakeUserRepo{user: activeViewer(t)}, staticPermissions{})

	resp, err := svc.Login(context.Background(), "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := svc.Logout(context.Background(), resp.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := tokens.Verify(resp.Token); err == nil {
		t.Error("revoked token still verifies")
	}
}

func TestLogout_InvalidToken(t *testing.T) {
	svc := newTestService(t, &fakeUserRepo{})

	if err := svc.Logout(context.Background(), "not-a-token"); !domain.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

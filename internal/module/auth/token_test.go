package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/simp-lee/jwt"

	"github.com/learnhub/admin/internal/domain"
)

const testSecret = "test-secret-that-is-long-enough-0123456789"

func newTestTokens(t *testing.T, now time.Time) *TokenManager {
	t.Helper()
	m, err := NewTokenManager(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	m.now = func() time.Time { return now }
	return m
}

func testUser() *domain.User {
	u := &domain.User{
		Name:   "Alice",
		Email:  "alice@example.com",
		Roles:  []string{string(domain.RoleContentManager)},
		Status: domain.StatusActive,
	}
	u.ID = 42
	return u
}

func signed(t *testing.T, method gojwt.SigningMethod, claims gojwt.MapClaims) string {
	t.Helper()
	token, err := gojwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func TestNewTokenManager_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		expiry time.Duration
	}{
		{"empty secret", "", time.Hour},
		{"short secret", "too-short", time.Hour},
		{"zero expiry", testSecret, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTokenManager(tt.secret, tt.expiry); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestTokenManager_IssueAndVerify(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := newTestTokens(t, now)

	token, expiresAt, err := m.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !expiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("expiresAt = %v", expiresAt)
	}

	p, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if p.UserID != 42 {
		t.Errorf("principal = %+v", p)
	}
	if len(p.Roles) != 1 || p.Roles[0] != "content_manager" {
		t.Errorf("roles = %v", p.Roles)
	}
}

func TestTokenManager_VerifyExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := newTestTokens(t, now)
	token, _, err := m.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	m.now = func() time.Time { return now.Add(2 * time.Hour) }
	if _, err := m.Verify(token); !errors.Is(err, jwt.ErrExpiredToken) {
		t.Fatalf("Verify = %v; want ErrExpiredToken", err)
	}
}

func TestTokenManager_VerifyWrongSecret(t *testing.T) {
	m := newTestTokens(t, time.Now())
	token, _, _ := m.Issue(testUser())

	other, err := NewTokenManager(strings.Repeat("x", 40), time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	defer other.Close()
	if _, err := other.Verify(token); err == nil {
		t.Fatal("expected signature mismatch")
	}
}

func TestTokenManager_VerifyRejectsForeignTokens(t *testing.T) {
	m := newTestTokens(t, time.Now())
	now := time.Now()
	valid := func() gojwt.MapClaims {
		return gojwt.MapClaims{
			"user_id": "1",
			"iss":     tokenIssuer,
			"iat":     gojwt.NewNumericDate(now),
			"exp":     gojwt.NewNumericDate(now.Add(time.Hour)),
		}
	}
	if _, err := m.Verify(signed(t, gojwt.SigningMethodHS256, valid())); err != nil {
		t.Fatalf("baseline token rejected: %v", err)
	}

	tests := []struct {
		name   string
		method gojwt.SigningMethod
		edit   func(gojwt.MapClaims)
	}{
		{"other algorithm", gojwt.SigningMethodHS512, func(gojwt.MapClaims) {}},
		{"foreign issuer", gojwt.SigningMethodHS256, func(c gojwt.MapClaims) { c["iss"] = "someone-else" }},
		{"non numeric user", gojwt.SigningMethodHS256, func(c gojwt.MapClaims) { c["user_id"] = "alice" }},
		{"missing expiry", gojwt.SigningMethodHS256, func(c gojwt.MapClaims) { delete(c, "exp") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := valid()
			tt.edit(claims)
			if _, err := m.Verify(signed(t, tt.method, claims)); err == nil {
				t.Error("expected token to be rejected")
			}
		})
	}
}

func TestTokenManager_Revoke(t *testing.T) {
	m := newTestTokens(t, time.Now())
	token, _, err := m.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	other, _, err := m.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if err := m.Revoke(token); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := m.Verify(token); !errors.Is(err, jwt.ErrRevokedToken) {
		t.Errorf("Verify revoked = %v; want ErrRevokedToken", err)
	}
	if _, err := m.Verify(other); err != nil {
		t.Errorf("other token rejected: %v", err)
	}
	if err := m.Revoke("garbage"); err == nil {
		t.Error("expected error revoking an unparseable token")
	}
}

func TestTokenManager_Close(t *testing.T) {
	m, err := NewTokenManager(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	_ = m.Close()
	_ = m.Close()
	if _, _, err := m.Issue(testUser()); !errors.Is(err, jwt.ErrServiceClosed) {
		t.Errorf("Issue after Close = %v; want ErrServiceClosed", err)
	}
}

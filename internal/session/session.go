// Package session holds the signed-in administrator's permission snapshot
// and the stores that keep it between requests.
package session

import (
	"errors"
	"slices"
	"time"

	"github.com/learnhub/admin/internal/domain"
)

// ErrNotFound is returned by stores for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// Session is the cached result of a successful login: the catalog API token
// plus the roles and permissions it carries. It is replaced wholesale on
// login and removed on logout, never patched in place.
type Session struct {
	ID          string              `json:"id"`
	Token       string              `json:"token"`
	ExpiresAt   time.Time           `json:"expires_at"`
	UserID      uint                `json:"user_id"`
	Name        string              `json:"name"`
	Email       string              `json:"email"`
	Roles       []string            `json:"roles"`
	Permissions []domain.Permission `json:"permissions"`
}

// IsAuthenticated reports whether s holds a token that has not expired at now.
func (s *Session) IsAuthenticated(now time.Time) bool {
	return s != nil && s.Token != "" && now.Before(s.ExpiresAt)
}

// HasPermission reports whether s grants p.
func (s *Session) HasPermission(p domain.Permission) bool {
	return s != nil && slices.Contains(s.Permissions, p)
}

// HasAnyPermission reports whether s grants at least one of ps. An empty ps
// grants nothing.
func (s *Session) HasAnyPermission(ps ...domain.Permission) bool {
	return slices.ContainsFunc(ps, s.HasPermission)
}

// HasAllPermissions reports whether s grants every one of ps.
func (s *Session) HasAllPermissions(ps ...domain.Permission) bool {
	for _, p := range ps {
		if !s.HasPermission(p) {
			return false
		}
	}
	return s != nil
}

// HasRole reports whether s holds role.
func (s *Session) HasRole(role domain.Role) bool {
	return s != nil && slices.Contains(s.Roles, string(role))
}

// Valid checks that every cached permission is a known one. A session that
// fails this check is treated as inconsistent and discarded.
func (s *Session) Valid() error {
	for _, p := range s.Permissions {
		if _, err := domain.ParsePermission(string(p)); err != nil {
			return err
		}
	}
	return nil
}

package apiclient

import (
	"context"
	"net/http"
	"time"

	"github.com/learnhub/admin/internal/domain"
	"github.com/learnhub/admin/internal/session"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      struct {
		ID    uint   `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// Login exchanges credentials for a token and returns the session snapshot
// it grants. The session has no ID until a store creates it. Permission
// strings the dashboard does not know are dropped.
func (c *Client) Login(ctx context.Context, email, password string) (*session.Session, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}

	perms := make([]domain.Permission, 0, len(resp.Permissions))
	for _, s := range resp.Permissions {
		if p, err := domain.ParsePermission(s); err == nil {
			perms = append(perms, p)
		}
	}

	s := &session.Session{
		Token:       resp.Token,
		ExpiresAt:   resp.ExpiresAt,
		UserID:      resp.User.ID,
		Name:        resp.User.Name,
		Email:       resp.User.Email,
		Roles:       resp.Roles,
		Permissions: perms,
	}
	if s.Token == "" || s.ExpiresAt.IsZero() {
		return nil, domain.NewAppError(domain.CodeInternal, "invalid login response", nil)
	}
	return s, nil
}

// Logout asks the API to revoke token.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.WithToken(token).do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

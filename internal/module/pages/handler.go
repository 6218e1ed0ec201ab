// Package pages serves the dashboard pages that are not entity lists:
// sign-in, sign-out, the unauthorized notice and the home page.
package pages

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/learnhub/admin/internal/domain"
	"github.com/learnhub/admin/internal/middleware"
	"github.com/learnhub/admin/internal/pkg"
	"github.com/learnhub/admin/internal/session"
	"github.com/learnhub/admin/internal/ui"
)

// Authenticator exchanges credentials for a session snapshot and revokes
// the token behind one.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*session.Session, error)
	Logout(ctx context.Context, token string) error
}

// LoginForm is the sign-in form.
type LoginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}

type loginData struct {
	ui.Layout
	Email  string
	Next   string
	Error  string
	Fields map[string]string
}

type homeData struct {
	ui.Layout
}

// Handler serves the pages.
type Handler struct {
	auth   Authenticator
	guard  *middleware.SessionGuard
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewHandler returns a Handler. A positive ttl caps every session, whatever
// the token expiry.
func NewHandler(auth Authenticator, guard *middleware.SessionGuard, ttl time.Duration, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{auth: auth, guard: guard, ttl: ttl, logger: logger, now: time.Now}
}

// LoginPage handles GET /login.
func (h *Handler) LoginPage(c *gin.Context) {
	next := middleware.SafeNext(c.Query("next"))
	if middleware.CurrentSession(c) != nil {
		c.Redirect(http.StatusSeeOther, next)
		return
	}
	c.HTML(http.StatusOK, "pages/login.html", loginData{
		Layout: ui.NewLayout(c, "Sign in", ""),
		Next:   next,
	})
}

// Login handles POST /login.
func (h *Handler) Login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		fields, _ := pkg.FieldErrors(err, &form)
		h.renderLogin(c, http.StatusUnprocessableEntity, form, "", fields)
		return
	}

	s, err := h.auth.Login(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		if domain.IsUnauthorized(err) {
			h.logger.InfoContext(c.Request.Context(), "sign-in rejected", "email", form.Email)
			h.renderLogin(c, http.StatusUnauthorized, form, "Invalid email or password.", nil)
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "sign-in failed", "error", err)
		h.renderLogin(c, http.StatusBadGateway, form, "Sign-in is unavailable right now. Try again shortly.", nil)
		return
	}

	if h.ttl > 0 {
		if limit := h.now().Add(h.ttl); limit.Before(s.ExpiresAt) {
			s.ExpiresAt = limit
		}
	}
	if err := h.guard.Start(c, s); err != nil {
		h.logger.ErrorContext(c.Request.Context(), "start session", "error", err)
		h.renderLogin(c, http.StatusInternalServerError, form, "Could not start your session. Try again.", nil)
		return
	}

	h.logger.InfoContext(c.Request.Context(), "signed in", "user_id", s.UserID, "roles", s.Roles)
	pkg.Redirect(c, middleware.SafeNext(form.Next))
}

// Logout handles POST /logout.
func (h *Handler) Logout(c *gin.Context) {
	if s := middleware.CurrentSession(c); s != nil && s.Token != "" {
		if err := h.auth.Logout(c.Request.Context(), s.Token); err != nil {
			h.logger.WarnContext(c.Request.Context(), "revoke token", "user_id", s.UserID, "error", err)
		}
	}
	if err := h.guard.End(c); err != nil {
		h.logger.WarnContext(c.Request.Context(), "end session", "error", err)
	}
	pkg.Redirect(c, middleware.LoginPath)
}

// Unauthorized handles GET /unauthorized.
func (h *Handler) Unauthorized(c *gin.Context) {
	ui.ErrorPage(c, http.StatusForbidden, "Your role does not grant access to that page.")
}

// Home handles GET /.
func (h *Handler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "pages/home.html", homeData{Layout: ui.NewLayout(c, "Dashboard", "/")})
}

func (h *Handler) renderLogin(c *gin.Context, status int, form LoginForm, msg string, fields map[string]string) {
	c.HTML(status, "pages/login.html", loginData{
		Layout: ui.NewLayout(c, "Sign in", ""),
		Email:  form.Email,
		Next:   middleware.SafeNext(form.Next),
		Error:  msg,
		Fields: fields,
	})
}

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/learnhub/admin/internal/domain"
	"github.com/learnhub/admin/internal/pkg"
	"github.com/learnhub/admin/internal/session"
)

const (
	sessionContextKey = "session"

	// LoginPath and UnauthorizedPath are where the guard sends rejected
	// requests.
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
)

// SessionGuard loads the dashboard session from its cookie and gates page
// routes on authentication and permissions.
type SessionGuard struct {
	store  session.Store
	cookie string
	secure bool
	logger *slog.Logger
	now    func() time.Time
}

// NewSessionGuard returns a guard backed by store.
func NewSessionGuard(store session.Store, cookieName string, secure bool, logger *slog.Logger) *SessionGuard {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionGuard{
		store:  store,
		cookie: cookieName,
		secure: secure,
		logger: logger,
		now:    time.Now,
	}
}

// Load resolves the session cookie. Unknown, expired and inconsistent
// sessions are removed from the store and the cookie is cleared; the request
// then continues anonymously.
func (g *SessionGuard) Load() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(g.cookie)
		if err != nil || id == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		s, err := g.store.Get(ctx, id)
		switch {
		case errors.Is(err, session.ErrNotFound):
			g.clearCookie(c)
		case err != nil:
			g.logger.ErrorContext(ctx, "session lookup failed", slog.Any("error", err))
		case !s.IsAuthenticated(g.now()):
			g.discard(ctx, c, id, "session expired")
		case s.Valid() != nil:
			g.discard(ctx, c, id, "session inconsistent")
		default:
			c.Set(sessionContextKey, s)
		}
		c.Next()
	}
}

func (g *SessionGuard) discard(ctx context.Context, c *gin.Context, id, reason string) {
	if err := g.store.Delete(ctx, id); err != nil {
		g.logger.WarnContext(ctx, "session delete failed", slog.Any("error", err))
	}
	g.logger.InfoContext(ctx, reason)
	g.clearCookie(c)
}

// RequireLogin sends anonymous requests to the login page, remembering the
// requested URL.
func (g *SessionGuard) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentSession(c) == nil {
			redirectToLogin(c)
			return
		}
		c.Next()
	}
}

// RequirePermission sends anonymous requests to the login page and requests
// lacking p to the unauthorized page.
func (g *SessionGuard) RequirePermission(p domain.Permission) gin.HandlerFunc {
	p = domain.MustPermission(string(p))

	return func(c *gin.Context) {
		s := CurrentSession(c)
		if s == nil {
			redirectToLogin(c)
			return
		}
		if !s.HasPermission(p) {
			pkg.Redirect(c, UnauthorizedPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

func redirectToLogin(c *gin.Context) {
	next := c.Request.URL.RequestURI()
	if pkg.IsHTMX(c) {
		if u, err := url.Parse(c.GetHeader(pkg.HeaderHXCurrentURL)); err == nil && u.Path != "" {
			next = u.RequestURI()
		}
	}
	pkg.Redirect(c, LoginPath+"?next="+url.QueryEscape(SafeNext(next)))
	c.Abort()
}

// Start stores s and sets the session cookie.
func (g *SessionGuard) Start(c *gin.Context, s *session.Session) error {
	if err := g.store.Create(c.Request.Context(), s); err != nil {
		return err
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     g.cookie,
		Value:    s.ID,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})
	c.Set(sessionContextKey, s)
	return nil
}

// End removes the current session and clears the cookie.
func (g *SessionGuard) End(c *gin.Context) error {
	defer g.clearCookie(c)
	id, err := c.Cookie(g.cookie)
	if err != nil || id == "" {
		return nil
	}
	return g.store.Delete(c.Request.Context(), id)
}

func (g *SessionGuard) clearCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     g.cookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// CurrentSession returns the session loaded for the request, or nil.
func CurrentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	s, _ := v.(*session.Session)
	return s
}

// SafeNext returns next when it is a local path, and "/" otherwise.
func SafeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}
	return next
}

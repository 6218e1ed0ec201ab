package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/learnhub/admin/internal/domain"
	"github.com/learnhub/admin/internal/pkg"
)

const principalContextKey = "principal"

// Principal is the caller identified by a bearer token.
type Principal struct {
	UserID uint
	Roles  []string
	// Token is the bearer token the caller presented.
	Token string
}

// TokenVerifier validates a bearer token and returns its principal.
type TokenVerifier interface {
	Verify(token string) (Principal, error)
}

// PermissionChecker decides whether a role set grants a permission.
type PermissionChecker interface {
	Can(roles []string, p domain.Permission) bool
}

var errAuthRequired = domain.NewAppError(domain.CodeUnauthorized, "authentication required", nil)

// BearerAuth requires a valid "Authorization: Bearer <token>" header and
// stores the principal for CurrentPrincipal.
func BearerAuth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			pkg.Error(c, errAuthRequired)
			c.Abort()
			return
		}

		token = strings.TrimSpace(token)
		principal, err := v.Verify(token)
		if err != nil {
			pkg.Error(c, errAuthRequired)
			c.Abort()
			return
		}
		principal.Token = token
		c.Set(principalContextKey, principal)
		c.Next()
	}
}

// RequirePermission rejects principals whose roles do not grant p. It must
// run after BearerAuth.
func RequirePermission(checker PermissionChecker, p domain.Permission) gin.HandlerFunc {
	p = domain.MustPermission(string(p))

	return func(c *gin.Context) {
		principal, ok := CurrentPrincipal(c)
		if !ok {
			pkg.Error(c, errAuthRequired)
			c.Abort()
			return
		}
		if !checker.Can(principal.Roles, p) {
			pkg.Error(c, domain.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentPrincipal returns the principal stored by BearerAuth.
func CurrentPrincipal(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(principalContextKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/learnhub/admin/internal/domain"
	"github.com/learnhub/admin/internal/middleware"
	"github.com/learnhub/admin/internal/pkg"
)

// AuthHandler handles REST API requests for authentication.
type AuthHandler struct {
	svc Service
}

// NewHandler creates a new AuthHandler with the given service.
func NewHandler(svc Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, resp)
}

// Logout handles POST /api/v1/auth/logout. It must run after
// middleware.BearerAuth.
func (h *AuthHandler) Logout(c *gin.Context) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		pkg.Error(c, domain.ErrUnauthorized)
		return
	}
	if err := h.svc.Logout(c.Request.Context(), principal.Token); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, gin.H{"revoked": true})
}

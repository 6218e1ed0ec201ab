package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/learnhub/admin/internal/middleware"
)

// AuthModule registers the authentication API.
type AuthModule struct {
	handler  *AuthHandler
	verifier middleware.TokenVerifier
}

// NewModule creates a new AuthModule. Panics if h or verifier is nil.
func NewModule(h *AuthHandler, verifier middleware.TokenVerifier) *AuthModule {
	if h == nil {
		panic("auth.NewModule: handler must not be nil")
	}
	if verifier == nil {
		panic("auth.NewModule: verifier must not be nil")
	}
	return &AuthModule{handler: h, verifier: verifier}
}

// RegisterAPI registers auth API routes. Login is public; logout needs the
// token it revokes.
func (m *AuthModule) RegisterAPI(api *gin.RouterGroup) {
	api.POST("/auth/login", m.handler.Login)
	api.POST("/auth/logout", middleware.BearerAuth(m.verifier), m.handler.Logout)
}

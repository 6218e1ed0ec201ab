package pages

import (
	"github.com/gin-gonic/gin"

	"github.com/learnhub/admin/internal/middleware"
)

// Module registers the pages.
type Module struct {
	handler *Handler
	guard   *middleware.SessionGuard
}

// NewModule creates a Module. Panics if h or guard is nil.
func NewModule(h *Handler, guard *middleware.SessionGuard) *Module {
	if h == nil || guard == nil {
		panic("pages.NewModule: handler and guard must not be nil")
	}
	return &Module{handler: h, guard: guard}
}

// RegisterPages registers the sign-in flow and the home page. The group must
// load the session.
func (m *Module) RegisterPages(r *gin.RouterGroup) {
	r.GET(middleware.LoginPath, m.handler.LoginPage)
	r.POST(middleware.LoginPath, m.handler.Login)
	r.POST("/logout", m.handler.Logout)
	r.GET(middleware.UnauthorizedPath, m.guard.RequireLogin(), m.handler.Unauthorized)
	r.GET("/", m.guard.RequireLogin(), m.handler.Home)
}

package app

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/learnhub/admin/internal/pkg"
	"github.com/learnhub/admin/internal/ui"
)

// renderError sends an error response appropriate for the client: the JSON
// envelope for API paths and explicit JSON requests, the error page for
// browsers, and JSON otherwise.
func renderError(c *gin.Context, code int, message string) {
	accept := strings.ToLower(c.GetHeader("Accept"))
	// Explicit JSON request; checked first because AcceptsHTML also matches */*.
	explicitJSON := strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
	if strings.HasPrefix(c.Request.URL.Path, "/api/") || explicitJSON || !ui.AcceptsHTML(c) {
		c.JSON(code, pkg.Envelope{Success: false, Message: message})
		return
	}
	ui.ErrorPage(c, code, message)
}

package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/learnhub/admin/internal/pkg"
)

// Recovery recovers from panics and logs them with a stack trace.
//
// htmx requests get an error toast and no swap so the current page stays
// usable. Browser navigations get errors/500.html; everything else gets the
// JSON error envelope.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			logger.ErrorContext(c.Request.Context(), "panic recovered",
				slog.Any("panic", rec),
				slog.String("method", c.Request.Method),
				slog.String("path", c.Request.URL.Path),
				slog.String("stack", string(debug.Stack())),
			)
			c.Abort()

			switch {
			case pkg.IsHTMX(c):
				pkg.NoSwap(c)
				pkg.Toast(c, pkg.ToastError, "Something went wrong. Please try again.")
				c.Status(http.StatusInternalServerError)
			case acceptsHTML(c):
				renderHTMLError(c)
			default:
				c.JSON(http.StatusInternalServerError, pkg.Envelope{
					Success: false,
					Message: "internal server error",
				})
			}
		}()
		c.Next()
	}
}

// renderHTMLError renders errors/500.html, falling back to plain text when
// no HTML renderer is configured.
func renderHTMLError(c *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			c.Data(http.StatusInternalServerError, "text/plain; charset=utf-8", []byte("500 Internal Server Error"))
		}
	}()
	c.HTML(http.StatusInternalServerError, "errors/500.html", gin.H{})
}

func acceptsHTML(c *gin.Context) bool {
	return strings.Contains(strings.ToLower(c.GetHeader("Accept")), "text/html")
}

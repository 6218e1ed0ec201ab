package ui

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// errorTemplates maps HTTP status codes to their error template paths.
var errorTemplates = map[int]string{
	http.StatusBadRequest:          "errors/400.html",
	http.StatusForbidden:           "errors/403.html",
	http.StatusNotFound:            "errors/404.html",
	http.StatusInternalServerError: "errors/500.html",
}

// ErrorData is the view data of an error page.
type ErrorData struct {
	Layout
	Code    int
	Message string
}

// ErrorPage renders the error template for code, falling back to the 500
// page for unmapped codes and to plain text if rendering panics.
func ErrorPage(c *gin.Context, code int, message string) {
	defer func() {
		if r := recover(); r != nil {
			c.Data(code, "text/plain; charset=utf-8",
				[]byte(fmt.Sprintf("%d %s", code, StatusText(code))))
		}
	}()

	tmpl, ok := errorTemplates[code]
	if !ok {
		tmpl = errorTemplates[http.StatusInternalServerError]
	}
	c.HTML(code, tmpl, ErrorData{
		Layout:  NewLayout(c, StatusText(code), ""),
		Code:    code,
		Message: message,
	})
}

// AcceptsHTML reports whether the client accepts an HTML response.
// Matches text/html, */* (browser default), and empty Accept headers.
func AcceptsHTML(c *gin.Context) bool {
	accept := strings.ToLower(c.GetHeader("Accept"))
	return strings.Contains(accept, "text/html") ||
		strings.Contains(accept, "*/*") ||
		strings.TrimSpace(accept) == ""
}

// StatusText returns a short human-readable label for common error codes.
func StatusText(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "Bad Request"
	case http.StatusUnauthorized:
		return "Sign In Required"
	case http.StatusForbidden:
		return "Access Denied"
	case http.StatusNotFound:
		return "Not Found"
	case http.StatusRequestTimeout:
		return "Request Timeout"
	case http.StatusTooManyRequests:
		return "Too Many Requests"
	case http.StatusInternalServerError:
		return "Internal Server Error"
	case http.StatusBadGateway:
		return "Catalog Unavailable"
	default:
		return "Error"
	}
}

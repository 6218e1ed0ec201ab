package ui

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestAcceptsHTML(t *testing.T) {
	tests := []struct {
		accept string
		want   bool
	}{
		{"text/html,application/xhtml+xml", true},
		{"*/*", true},
		{"", true},
		{"application/json", false},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.Header.Set("Accept", tt.accept)
		if got := AcceptsHTML(c); got != tt.want {
			t.Errorf("AcceptsHTML(%q) = %v; want %v", tt.accept, got, tt.want)
		}
	}
}

func TestStatusText(t *testing.T) {
	if got := StatusText(http.StatusForbidden); got != "Access Denied" {
		t.Errorf("403 = %q", got)
	}
	if got := StatusText(418); got != "Error" {
		t.Errorf("418 = %q", got)
	}
}

func TestErrorPage_RendersMappedTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	tmpl := template.Must(template.New("errors/404.html").Parse(`{{.Code}} {{.Message}}`))
	template.Must(tmpl.New("errors/500.html").Parse(`fallback {{.Code}}`))
	r.SetHTMLTemplate(tmpl)
	r.GET("/missing", func(c *gin.Context) { ErrorPage(c, http.StatusNotFound, "no such subject") })
	r.GET("/teapot", func(c *gin.Context) { ErrorPage(c, http.StatusTeapot, "") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if w.Code != http.StatusNotFound || w.Body.String() != "404 no such subject" {
		t.Errorf("got %d %q", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/teapot", nil))
	if w.Code != http.StatusTeapot || !strings.HasPrefix(w.Body.String(), "fallback 418") {
		t.Errorf("got %d %q", w.Code, w.Body.String())
	}
}

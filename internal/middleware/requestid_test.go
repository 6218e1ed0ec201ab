package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/simp-lee/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRequestIDRouter(cfg RequestIDConfig) *gin.Engine {
	r := gin.New()
	r.Use(RequestIDWithConfig(cfg))
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})
	r.GET("/ctx", func(c *gin.Context) {
		c.String(http.StatusOK, findAttrValue(logger.FromContext(c.Request.Context()), "request_id"))
	})
	return r
}

func findAttrValue(attrs []slog.Attr, key string) string {
	for _, a := range attrs {
		if a.Key == key {
			return a.Value.String()
		}
	}
	return ""
}

func TestRequestID_GeneratesUUID(t *testing.T) {
	r := setupRequestIDRouter(RequestIDConfig{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	body := w.Body.String()
	if _, err := uuid.Parse(body); err != nil {
		t.Fatalf("request id %q is not a UUID: %v", body, err)
	}
	if got := w.Header().Get(requestIDHeader); got != body {
		t.Errorf("response header = %q; want %q", got, body)
	}
}

func TestRequestID_UniquePerRequest(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	seen := make(map[string]bool)
	for range 20 {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		id := w.Body.String()
		if seen[id] {
			t.Fatalf("duplicate request id %q", id)
		}
		seen[id] = true
	}
}

func TestRequestID_Upstream(t *testing.T) {
	tests := []struct {
		name     string
		trust    bool
		upstream string
		reused   bool
	}{
		{"trusted well-formed", true, "dash-7f3a-0001", true},
		{"untrusted", false, "dash-7f3a-0001", false},
		{"trusted but malformed", true, "bad id; drop table", false},
		{"trusted but too long", true, strings.Repeat("a", 65), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRequestIDRouter(RequestIDConfig{TrustUpstream: tt.trust})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set(requestIDHeader, tt.upstream)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if got := w.Body.String() == tt.upstream; got != tt.reused {
				t.Errorf("reused = %v; want %v (id %q)", got, tt.reused, w.Body.String())
			}
		})
	}
}

func TestRequestID_InLoggerContext(t *testing.T) {
	r := setupRequestIDRouter(RequestIDConfig{TrustUpstream: true})

	req := httptest.NewRequest(http.MethodGet, "/ctx", nil)
	req.Header.Set(requestIDHeader, "ctx-id-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Body.String() != "ctx-id-42" {
		t.Errorf("context request_id = %q; want ctx-id-42", w.Body.String())
	}
}

func TestGetRequestID_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := GetRequestID(c); got != "" {
		t.Errorf("GetRequestID = %q; want empty", got)
	}
}

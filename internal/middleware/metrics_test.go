package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHTTPMetrics_CountsByRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg, "catalogapi")

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/v1/subjects/:id", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	for _, path := range []string{"/api/v1/subjects/1", "/api/v1/subjects/2", "/wp-login.php"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/v1/subjects/:id", "200")); got != 2 {
		t.Errorf("route counter = %v; want 2", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")); got != 1 {
		t.Errorf("unmatched counter = %v; want 1", got)
	}
	if n := testutil.CollectAndCount(m.duration); n != 2 {
		t.Errorf("histogram series = %d; want 2", n)
	}
}

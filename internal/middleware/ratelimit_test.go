package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/learnhub/admin/internal/config"
)

func setupRateLimitRouter(cfg config.RateLimitConfig) *gin.Engine {
	r := gin.New()
	r.Use(RateLimit(cfg))
	r.GET("/api/v1/subjects", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func hit(r *gin.Engine, ip string) int {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/subjects", nil)
	req.RemoteAddr = ip + ":40000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimit_Disabled(t *testing.T) {
	r := setupRateLimitRouter(config.RateLimitConfig{})
	for i := range 50 {
		if code := hit(r, "10.0.0.1"); code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, code)
		}
	}
}

func TestRateLimit_BurstThenReject(t *testing.T) {
	r := setupRateLimitRouter(config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 3})

	for i := range 3 {
		if code := hit(r, "10.0.0.1"); code != http.StatusOK {
			t.Fatalf("request %d within burst: status %d", i, code)
		}
	}
	if code := hit(r, "10.0.0.1"); code != http.StatusTooManyRequests {
		t.Errorf("request over burst: status %d; want 429", code)
	}
	if code := hit(r, "10.0.0.2"); code != http.StatusOK {
		t.Errorf("other client: status %d; want 200", code)
	}
}

func TestClientLimiter_SweepsIdleVisitors(t *testing.T) {
	l := newClientLimiter(1, 1)
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.allow("10.0.0.1")
	l.allow("10.0.0.2")
	if len(l.visitors) != 2 {
		t.Fatalf("visitors = %d; want 2", len(l.visitors))
	}

	now = now.Add(limiterIdleTTL + 2*time.Minute)
	l.allow("10.0.0.3")
	if len(l.visitors) != 1 {
		t.Errorf("visitors after sweep = %d; want 1", len(l.visitors))
	}
}

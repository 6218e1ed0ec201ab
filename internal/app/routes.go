package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/learnhub/admin/internal/config"
	"github.com/learnhub/admin/internal/middleware"
	"github.com/learnhub/admin/internal/ui"
	"github.com/learnhub/admin/web"
)

const healthTimeout = 2 * time.Second

// HealthCheck checks one dependency. A nil Check always fails.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// APIRouteDeps holds everything the catalog API routes need.
type APIRouteDeps struct {
	Modules   []APIModule
	Health    []HealthCheck
	Registry  *prometheus.Registry
	RateLimit config.RateLimitConfig
}

// PageRouteDeps holds everything the dashboard routes need.
type PageRouteDeps struct {
	Modules    []PageModule
	Nav        ui.Navigation
	Guard      *middleware.SessionGuard
	Health     []HealthCheck
	Registry   *prometheus.Registry
	Mode       string
	CSRFSecret string
	Secure     bool
}

// RegisterAPIRoutes registers the catalog API on r.
func RegisterAPIRoutes(r *gin.Engine, deps *APIRouteDeps) error {
	if r == nil {
		return errors.New("router is nil")
	}
	if deps == nil {
		return errors.New("route dependencies are nil")
	}
	if len(deps.Modules) == 0 {
		return errors.New("at least one module is required")
	}

	registerOps(r, deps.Health, deps.Registry)

	api := r.Group("/api/v1", middleware.RateLimit(deps.RateLimit))
	for i, m := range deps.Modules {
		if m == nil {
			return fmt.Errorf("module at index %d is nil", i)
		}
		m.RegisterAPI(api)
	}

	r.NoRoute(noRouteHandler())
	return nil
}

// RegisterPageRoutes registers the dashboard on r.
func RegisterPageRoutes(r *gin.Engine, deps *PageRouteDeps) error {
	if r == nil {
		return errors.New("router is nil")
	}
	if deps == nil {
		return errors.New("route dependencies are nil")
	}
	if len(deps.Modules) == 0 {
		return errors.New("at least one module is required")
	}
	if deps.Guard == nil {
		return errors.New("session guard is required")
	}
	if strings.TrimSpace(deps.CSRFSecret) == "" {
		return errors.New("csrf secret is required")
	}

	if err := registerStaticRoutes(r, deps.Mode); err != nil {
		return fmt.Errorf("register static routes: %w", err)
	}
	registerOps(r, deps.Health, deps.Registry)

	pages := r.Group("/",
		middleware.CSRF(deps.CSRFSecret, deps.Secure),
		deps.Guard.Load(),
		deps.Nav.Middleware(),
	)
	for i, m := range deps.Modules {
		if m == nil {
			return fmt.Errorf("module at index %d is nil", i)
		}
		m.RegisterPages(pages)
	}

	r.NoRoute(deps.Guard.Load(), deps.Nav.Middleware(), noRouteHandler())
	return nil
}

// registerOps mounts /health and, when reg is set, /metrics.
func registerOps(r *gin.Engine, checks []HealthCheck, reg *prometheus.Registry) {
	r.GET("/health", healthHandler(checks))
	if reg != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	}
}

// healthHandler runs every check and reports 503 when any fails.
func healthHandler(checks []HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		status := "ok"
		code := http.StatusOK
		components := gin.H{}
		for _, hc := range checks {
			state := "ok"
			if hc.Check == nil || hc.Check(ctx) != nil {
				state = "error"
				status = "degraded"
				code = http.StatusServiceUnavailable
			}
			components[hc.Name] = state
		}

		c.JSON(code, gin.H{
			"status":     status,
			"components": components,
		})
	}
}

// databaseCheck pings the pool behind db.
func databaseCheck(db *gorm.DB) HealthCheck {
	return HealthCheck{Name: "database", Check: func(ctx context.Context) error {
		if db == nil {
			return errors.New("database is nil")
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}}
}

// noRouteHandler renders a 404 page for browsers and a JSON envelope for API
// clients.
func noRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		renderError(c, http.StatusNotFound, "not found")
	}
}

func registerStaticRoutes(r *gin.Engine, mode string) error {
	if mode == gin.DebugMode {
		debugStaticFS, err := resolveDebugStaticFS()
		if err != nil {
			return fmt.Errorf("resolve debug static filesystem: %w", err)
		}
		fileServer := http.StripPrefix("/static", http.FileServer(http.FS(debugStaticFS)))
		r.GET("/static/*filepath", func(c *gin.Context) {
			fileServer.ServeHTTP(c.Writer, c.Request)
		})
		return nil
	}

	staticFS, err := fs.Sub(web.EmbeddedFS, "static")
	if err != nil {
		return fmt.Errorf("create sub filesystem for static assets: %w", err)
	}
	r.GET("/static/*filepath", cacheStaticHandler(http.FS(staticFS)))
	return nil
}

func resolveDebugStaticFS() (fs.FS, error) {
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		return nil, errors.New("resolve current file path")
	}

	projectRoot := filepath.Clean(filepath.Join(filepath.Dir(currentFile), "..", ".."))
	staticDir := filepath.Join(projectRoot, "web", "static")
	if _, err := os.Stat(staticDir); err != nil {
		return nil, fmt.Errorf("stat static directory %q: %w", staticDir, err)
	}

	return os.DirFS(staticDir), nil
}

// cacheStaticHandler serves fsys with a one-day Cache-Control header.
func cacheStaticHandler(fsys http.FileSystem) gin.HandlerFunc {
	fileServer := http.StripPrefix("/static", http.FileServer(fsys))
	return func(c *gin.Context) {
		c.Header("Cache-Control", "public, max-age=86400")
		fileServer.ServeHTTP(c.Writer, c.Request)
	}
}

// Package app wires the two HTTP processes: the catalog API and the admin
// dashboard. Both share the engine setup, graceful shutdown and ops routes.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"

	"github.com/learnhub/admin/internal/config"
	"github.com/learnhub/admin/internal/middleware"
)

// App holds a configured engine and the resources to release on shutdown.
type App struct {
	name    string
	engine  *gin.Engine
	logger  *logger.Logger
	cfg     *config.Config
	closers []closer
}

type closer struct {
	name  string
	close func() error
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// Handler returns the engine, for tests and embedding.
func (a *App) Handler() http.Handler {
	return a.engine
}

// builder accumulates closers while an App is wired and releases them if
// wiring fails.
type builder struct {
	log     *logger.Logger
	closers []closer
	done    bool
}

func newBuilder(cfg *config.Config) (*builder, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 may expose debug behavior and permissive CORS")
	}
	return &builder{log: log}, nil
}

func (b *builder) onClose(name string, fn func() error) {
	b.closers = append(b.closers, closer{name: name, close: fn})
}

// release undoes a failed build. It is a no-op after finish.
func (b *builder) release() {
	if b.done {
		return
	}
	closeAll(b.log.Logger, b.closers)
	if err := b.log.Close(); err != nil {
		slog.Error("logger close error", slog.Any("error", err))
	}
}

func (b *builder) finish(name string, engine *gin.Engine, cfg *config.Config) *App {
	b.done = true
	return &App{name: name, engine: engine, logger: b.log, cfg: cfg, closers: b.closers}
}

// newEngine creates a gin engine with the middleware shared by both apps.
func newEngine(cfg *config.Config, log *slog.Logger, trustUpstreamID bool, metrics *middleware.HTTPMetrics) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()
	engine.Use(
		middleware.Recovery(log),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{TrustUpstream: trustUpstreamID}),
		middleware.Logger(log, "/static/", "/health", "/metrics"),
		middleware.CORS(resolveCORSConfig(cfg.Server.Mode, cfg.Server.CORS)),
	)
	if metrics != nil {
		engine.Use(metrics.Middleware())
	}
	return engine
}

// resolveCORSConfig allows any origin in non-release modes when no allowlist
// is configured. Release mode without an allowlist denies cross-origin
// requests.
func resolveCORSConfig(mode string, cors config.CORSConfig) config.CORSConfig {
	if len(cors.AllowOrigins) == 0 && mode != gin.ReleaseMode {
		cors.AllowOrigins = []string{"*"}
	}
	return cors
}

// Run starts the HTTP server and blocks until SIGINT or SIGTERM, then shuts
// down within the configured timeout and releases every resource.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}

	log := slog.Default()
	if a.logger != nil {
		log = a.logger.Logger
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine)

	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("app", a.name), slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if runErr == nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Duration(a.cfg.Server.Timeout, 5*time.Second))
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", slog.Any("error", err))
		}
	}

	closeAll(log, a.closers)

	log.Info("server stopped", slog.String("app", a.name))
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}
	return runErr
}

// closeAll releases closers in reverse order of registration.
func closeAll(log *slog.Logger, closers []closer) {
	for i := len(closers) - 1; i >= 0; i-- {
		c := closers[i]
		if err := c.close(); err != nil {
			log.Error("close error", slog.String("resource", c.name), slog.Any("error", err))
			continue
		}
		log.Info("closed", slog.String("resource", c.name))
	}
}

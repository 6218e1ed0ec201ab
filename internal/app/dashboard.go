package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/learnhub/admin/internal/apiclient"
	"github.com/learnhub/admin/internal/authz"
	"github.com/learnhub/admin/internal/config"
	"github.com/learnhub/admin/internal/domain"
	"github.com/learnhub/admin/internal/entities"
	"github.com/learnhub/admin/internal/listview"
	"github.com/learnhub/admin/internal/middleware"
	"github.com/learnhub/admin/internal/module/listpage"
	"github.com/learnhub/admin/internal/module/pages"
	"github.com/learnhub/admin/internal/session"
	"github.com/learnhub/admin/internal/ui"
	"github.com/learnhub/admin/web"
)

// entityPage is a list page built by listpage.New.
type entityPage interface {
	PageModule
	NavItem() ui.NavItem
}

// NewDashboard wires the admin dashboard: catalog API client, session store,
// templates and one list page per entity.
func NewDashboard(cfg *config.Config) (*App, error) {
	b, err := newBuilder(cfg)
	if err != nil {
		return nil, err
	}
	defer b.release()
	log := b.log.Logger

	client, err := apiclient.New(cfg.API.BaseURL, apiclient.WithTimeout(config.Duration(cfg.API.Timeout, 10*time.Second)))
	if err != nil {
		return nil, fmt.Errorf("api client: %w", err)
	}

	store, err := newSessionStore(cfg.Session)
	if err != nil {
		return nil, err
	}
	if c, ok := store.(interface{ Close() error }); ok {
		b.onClose("session store", c.Close)
	}
	guard := middleware.NewSessionGuard(store, cfg.Session.CookieName, cfg.Session.Secure, log)

	enforcer, err := authz.New(cfg.Auth.PolicyPath)
	if err != nil {
		return nil, err
	}
	permissions, err := listview.NewMemoryFetcher(enforcer.Catalog(), entities.PermissionMemoryOptions(cfg.ListView.MemoryTierMax))
	if err != nil {
		return nil, fmt.Errorf("permission catalog: %w", err)
	}

	reg := newRegistry()
	opts := listpage.Options{
		PageSize:       cfg.ListView.PageSize,
		SkeletonRows:   cfg.ListView.SkeletonRows,
		SearchDebounce: config.Duration(cfg.ListView.SearchDebounce, listview.DefaultDebounce),
		Logger:         log,
		Metrics:        listview.NewMetrics(reg),
	}
	lists := []entityPage{
		listpage.New(entities.Subjects, listpage.Remote[domain.Subject](client, entities.Subjects.Slug), guard, opts),
		listpage.New(entities.Packages, listpage.Remote[domain.Package](client, entities.Packages.Slug), guard, opts),
		listpage.New(entities.Videos, listpage.Remote[domain.Video](client, entities.Videos.Slug), guard, opts),
		listpage.New(entities.Faculty, listpage.Remote[domain.Faculty](client, entities.Faculty.Slug), guard, opts),
		listpage.New(entities.Users, listpage.Remote[domain.User](client, entities.Users.Slug), guard, opts),
		listpage.New(entities.Permissions, listpage.Local[authz.Grant](permissions), guard, opts),
	}

	ttl := config.Duration(cfg.Session.TTL, 12*time.Hour)
	modules := []PageModule{pages.NewModule(pages.NewHandler(client, guard, ttl, log), guard)}
	nav := make(ui.Navigation, 0, len(lists))
	for _, l := range lists {
		modules = append(modules, l)
		nav = append(nav, l.NavItem())
	}

	fsys, err := webFS(cfg.Server.Mode)
	if err != nil {
		return nil, err
	}
	renderer, err := NewTemplateRenderer(fsys, cfg.Server.Mode == gin.DebugMode)
	if err != nil {
		return nil, fmt.Errorf("setup template renderer: %w", err)
	}

	csrfSecret, err := resolveCSRFSecret(cfg.Server.CSRFSecret, cfg.Server.Mode)
	if err != nil {
		return nil, err
	}
	if csrfSecret != cfg.Server.CSRFSecret {
		log.Warn("no csrf_secret configured, using random secret in non-release mode (will change on restart)")
	}

	engine := newEngine(cfg, log, false, middleware.NewHTTPMetrics(reg, "dashboard"))
	engine.HTMLRender = renderer
	if err := RegisterPageRoutes(engine, &PageRouteDeps{
		Modules: modules,
		Nav:     nav,
		Guard:   guard,
		Health: []HealthCheck{{Name: "catalog_api", Check: func(ctx context.Context) error {
			return client.Health(ctx)
		}}},
		Registry:   reg,
		Mode:       cfg.Server.Mode,
		CSRFSecret: csrfSecret,
		Secure:     cfg.Session.Secure,
	}); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	return b.finish("dashboard", engine, cfg), nil
}

// redisSessionStore closes its client on shutdown.
type redisSessionStore struct {
	*session.RedisStore
	client *redis.Client
}

func (s redisSessionStore) Close() error { return s.client.Close() }

// newSessionStore builds the store named by cfg.Store. A redis store must
// answer a ping before the dashboard starts.
func newSessionStore(cfg config.SessionConfig) (session.Store, error) {
	if cfg.Store != config.SessionStoreRedis {
		return session.NewMemoryStore(session.WithMaxSessions(cfg.MaxEntries)), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect session redis %s: %w", cfg.Redis.Addr, err)
	}
	return redisSessionStore{RedisStore: session.NewRedisStore(client, cfg.Redis.Prefix), client: client}, nil
}

// resolveCSRFSecret returns secret, or a random one outside release mode when
// secret is a placeholder.
func resolveCSRFSecret(secret, mode string) (string, error) {
	if !isPlaceholderCSRFSecret(secret) {
		return secret, nil
	}
	if mode == gin.ReleaseMode {
		return "", errors.New("csrf_secret must be a non-placeholder value in release mode")
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate csrf secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func isPlaceholderCSRFSecret(secret string) bool {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return true
	}

	switch strings.ToLower(trimmed) {
	case "change-me-to-a-random-secret", "change-me-in-env":
		return true
	default:
		return false
	}
}

// webFS serves templates from disk in debug mode for hot reload and from the
// embedded copy otherwise.
func webFS(mode string) (fs.FS, error) {
	if mode != gin.DebugMode {
		return web.EmbeddedFS, nil
	}
	fsys, err := resolveDebugWebFS()
	if err != nil {
		return nil, fmt.Errorf("resolve debug template fs: %w", err)
	}
	return fsys, nil
}

func resolveDebugWebFS() (fs.FS, error) {
	if _, file, _, ok := runtime.Caller(0); ok {
		webDir := filepath.Clean(filepath.Join(filepath.Dir(file), "..", "..", "web"))
		if stat, err := os.Stat(webDir); err == nil && stat.IsDir() {
			return os.DirFS(webDir), nil
		}
	}

	exePath, err := os.Executable()
	if err == nil {
		webDir := filepath.Join(filepath.Dir(exePath), "web")
		if stat, err := os.Stat(webDir); err == nil && stat.IsDir() {
			return os.DirFS(webDir), nil
		}
	}

	return nil, errors.New("debug web directory not found")
}

package app

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/learnhub/admin/internal/authz"
	"github.com/learnhub/admin/internal/config"
	"github.com/learnhub/admin/internal/middleware"
	"github.com/learnhub/admin/internal/module/auth"
	"github.com/learnhub/admin/internal/module/catalog"
	"github.com/learnhub/admin/internal/module/user"
)

// NewCatalogAPI wires the catalog API: database, token issuer, role policy
// and the auth and catalog modules.
func NewCatalogAPI(cfg *config.Config) (*App, error) {
	b, err := newBuilder(cfg)
	if err != nil {
		return nil, err
	}
	defer b.release()
	log := b.log.Logger

	db, err := config.SetupDatabase(&cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	b.onClose("database", func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	if cfg.Server.Mode == "debug" {
		if err := catalog.Migrate(db); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("auto migration completed")
	}

	enforcer, err := authz.New(cfg.Auth.PolicyPath)
	if err != nil {
		return nil, err
	}
	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, config.Duration(cfg.Auth.TokenExpiry, 12*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}
	b.onClose("token manager", tokens.Close)

	authSvc := auth.NewService(tokens, user.NewUserRepository(db), enforcer)
	modules := []APIModule{
		auth.NewModule(auth.NewHandler(authSvc), tokens),
		catalog.NewModule(tokens, enforcer, catalog.Resources(db)...),
	}

	reg := newRegistry()
	engine := newEngine(cfg, log, true, middleware.NewHTTPMetrics(reg, "catalogapi"))
	if err := RegisterAPIRoutes(engine, &APIRouteDeps{
		Modules:   modules,
		Health:    []HealthCheck{databaseCheck(db)},
		Registry:  reg,
		RateLimit: cfg.Server.RateLimit,
	}); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	return b.finish("catalogapi", engine, cfg), nil
}

// newRegistry returns a registry carrying the process and Go runtime
// collectors.
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

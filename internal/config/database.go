package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	defaultMaxIdleConns    = 10
	defaultMaxOpenConns    = 100
	defaultConnMaxLifetime = time.Hour
)

// SetupDatabase opens the catalog database described by cfg and applies the
// pool settings. SQL statements are logged only when logger has debug enabled.
func SetupDatabase(cfg *DatabaseConfig, logger *slog.Logger) (*gorm.DB, error) {
	if cfg == nil {
		return nil, errors.New("database config is nil")
	}
	if logger == nil {
		return nil, errors.New("logger is nil")
	}

	dialector, err := openDialector(cfg)
	if err != nil {
		return nil, err
	}

	logMode := gormlogger.Warn
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		logMode = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(logMode),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	pool, err := configurePool(db, &cfg.Pool)
	if err != nil {
		CloseDatabase(db)
		return nil, err
	}

	logger.Info("database connected",
		slog.String("driver", cfg.Driver),
		slog.Int("max_idle_conns", pool.idle),
		slog.Int("max_open_conns", pool.open),
		slog.Duration("conn_max_lifetime", pool.lifetime),
	)
	return db, nil
}

// CloseDatabase releases the underlying connection pool. Errors are ignored.
func CloseDatabase(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func openDialector(cfg *DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "sqlite":
		if dir := filepath.Dir(cfg.SQLite.Path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create sqlite directory %q: %w", dir, err)
			}
		}
		return sqlite.Open(cfg.SQLite.Path), nil
	case "postgres":
		return postgres.Open(buildPostgresDSN(&cfg.Postgres)), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

type poolSettings struct {
	idle     int
	open     int
	lifetime time.Duration
}

func configurePool(db *gorm.DB, cfg *PoolConfig) (poolSettings, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return poolSettings{}, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	p := poolSettings{
		idle:     positiveOr(cfg.MaxIdleConns, defaultMaxIdleConns),
		open:     positiveOr(cfg.MaxOpenConns, defaultMaxOpenConns),
		lifetime: defaultConnMaxLifetime,
	}
	if v := strings.TrimSpace(cfg.ConnMaxLifetime); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return poolSettings{}, fmt.Errorf("invalid pool.conn_max_lifetime %q: %w", cfg.ConnMaxLifetime, err)
		}
		if d <= 0 {
			return poolSettings{}, fmt.Errorf("invalid pool.conn_max_lifetime %q: must be greater than 0", cfg.ConnMaxLifetime)
		}
		p.lifetime = d
	}

	sqlDB.SetMaxIdleConns(p.idle)
	sqlDB.SetMaxOpenConns(p.open)
	sqlDB.SetConnMaxLifetime(p.lifetime)
	return p, nil
}

func positiveOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

func buildPostgresDSN(cfg *PostgresConfig) string {
	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   cfg.DBName,
	}
	if cfg.User != "" || cfg.Password != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}
	if cfg.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {cfg.SSLMode}}.Encode()
	}
	return u.String()
}

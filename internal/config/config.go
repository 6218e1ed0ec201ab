package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the configuration shared by the dashboard, the catalog API and
// the eductl CLI.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
	Auth     AuthConfig     `koanf:"auth"`
	API      APIConfig      `koanf:"api"`
	Session  SessionConfig  `koanf:"session"`
	ListView ListViewConfig `koanf:"listview"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host       string          `koanf:"host"`
	Port       int             `koanf:"port"`
	Mode       string          `koanf:"mode"`
	CSRFSecret string          `koanf:"csrf_secret"`
	Timeout    string          `koanf:"timeout"`
	CORS       CORSConfig      `koanf:"cors"`
	RateLimit  RateLimitConfig `koanf:"rate_limit"`
}

// CORSConfig holds CORS middleware settings.
type CORSConfig struct {
	AllowOrigins     []string `koanf:"allow_origins"`
	AllowMethods     []string `koanf:"allow_methods"`
	AllowHeaders     []string `koanf:"allow_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           string   `koanf:"max_age"`
}

// RateLimitConfig holds per-client token bucket settings.
type RateLimitConfig struct {
	Enabled bool    `koanf:"enabled"`
	RPS     float64 `koanf:"rps"`
	Burst   int     `koanf:"burst"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver   string         `koanf:"driver"`
	SQLite   SQLiteConfig   `koanf:"sqlite"`
	Postgres PostgresConfig `koanf:"postgres"`
	Pool     PoolConfig     `koanf:"pool"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DBName   string `koanf:"dbname"`
	SSLMode  string `koanf:"sslmode"`
}

// PoolConfig holds database connection pool settings.
type PoolConfig struct {
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	ConnMaxLifetime string `koanf:"conn_max_lifetime"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level           string `koanf:"level"`
	Format          string `koanf:"format"`
	Color           *bool  `koanf:"color"`
	FilePath        string `koanf:"file_path"`
	MaxSizeMB       int    `koanf:"max_size_mb"`
	RetentionDays   int    `koanf:"retention_days"`
	MaxBackups      int    `koanf:"max_backups"`
	CompressRotated *bool  `koanf:"compress_rotated"`
}

// AuthConfig holds catalog API token and policy settings.
type AuthConfig struct {
	JWTSecret   string          `koanf:"jwt_secret"`
	TokenExpiry string          `koanf:"token_expiry"`
	PolicyPath  string          `koanf:"policy_path"`
	SeedAdmin   SeedAdminConfig `koanf:"seed_admin"`
}

// SeedAdminConfig is the administrator created by "eductl seed".
type SeedAdminConfig struct {
	Name     string `koanf:"name"`
	Email    string `koanf:"email"`
	Password string `koanf:"password"`
}

// APIConfig tells the dashboard and the CLI where the catalog API lives.
type APIConfig struct {
	BaseURL string `koanf:"base_url"`
	Timeout string `koanf:"timeout"`
}

// SessionConfig holds dashboard session settings.
type SessionConfig struct {
	Store      string      `koanf:"store"`
	TTL        string      `koanf:"ttl"`
	CookieName string      `koanf:"cookie_name"`
	Secure     bool        `koanf:"secure"`
	MaxEntries int         `koanf:"max_entries"`
	Redis      RedisConfig `koanf:"redis"`
}

// RedisConfig holds the redis session store connection.
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
	Prefix   string `koanf:"prefix"`
}

// ListViewConfig tunes every list page.
type ListViewConfig struct {
	PageSize       int    `koanf:"page_size"`
	SearchDebounce string `koanf:"search_debounce"`
	SkeletonRows   int    `koanf:"skeleton_rows"`
	MemoryTierMax  int    `koanf:"memory_tier_max"`
}

// Session store kinds.
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// LoadEnv preloads the given dotenv files into the process environment.
// Missing files are skipped; variables already set are not overridden.
func LoadEnv(files ...string) error {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}
	return nil
}

// Load reads configuration from a YAML file and overlays environment variables.
// Environment variables use the prefix "APP__" and double-underscore as the
// hierarchy separator. Single underscores are preserved as part of the key name.
// For example, APP__SERVER__PORT=9090 overrides server.port and
// APP__LISTVIEW__MEMORY_TIER_MAX=500 overrides listview.memory_tier_max.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}

	if err := k.Load(env.Provider("APP__", ".", func(s string) string {
		key := strings.TrimPrefix(s, "APP__")
		key = strings.ToLower(key)
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cross-field constraints and supported values, normalizing
// whitespace and filling defaults for optional sections.
func (c *Config) Validate() error {
	steps := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateAuth,
		c.validateAPI,
		c.validateSession,
		c.validateListView,
		c.validateLog,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	mode := strings.TrimSpace(c.Server.Mode)
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		c.Server.Mode = mode
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", c.Server.Mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", c.Server.Port)
	}

	host := strings.TrimSpace(c.Server.Host)
	if host == "" {
		return fmt.Errorf("server.host is required")
	}
	c.Server.Host = host

	if err := optionalDuration("server.timeout", &c.Server.Timeout); err != nil {
		return err
	}
	if err := optionalDuration("server.cors.max_age", &c.Server.CORS.MaxAge); err != nil {
		return err
	}

	if c.Server.RateLimit.Enabled {
		if c.Server.RateLimit.RPS <= 0 {
			return fmt.Errorf("invalid server.rate_limit.rps %v: must be positive when rate limiting is enabled", c.Server.RateLimit.RPS)
		}
		if c.Server.RateLimit.Burst <= 0 {
			return fmt.Errorf("invalid server.rate_limit.burst %d: must be positive when rate limiting is enabled", c.Server.RateLimit.Burst)
		}
	}
	return nil
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case "sqlite":
		sqlitePath := strings.TrimSpace(c.Database.SQLite.Path)
		if sqlitePath == "" {
			return fmt.Errorf("database.sqlite.path is required when driver is sqlite")
		}
		c.Database.SQLite.Path = sqlitePath
	case "postgres":
		pg := &c.Database.Postgres
		pg.Host = strings.TrimSpace(pg.Host)
		pg.User = strings.TrimSpace(pg.User)
		pg.DBName = strings.TrimSpace(pg.DBName)
		pg.SSLMode = strings.TrimSpace(pg.SSLMode)

		if pg.Host == "" {
			return fmt.Errorf("database.postgres.host is required when driver is postgres")
		}
		if pg.Port < 1 || pg.Port > 65535 {
			return fmt.Errorf("invalid database.postgres.port %d: must be between 1 and 65535", pg.Port)
		}
		if pg.User == "" {
			return fmt.Errorf("database.postgres.user is required when driver is postgres")
		}
		if pg.DBName == "" {
			return fmt.Errorf("database.postgres.dbname is required when driver is postgres")
		}
		switch pg.SSLMode {
		case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
		default:
			return fmt.Errorf("invalid database.postgres.sslmode %q: must be one of %q, %q, %q, %q, %q, %q", pg.SSLMode, "disable", "allow", "prefer", "require", "verify-ca", "verify-full")
		}
		if c.Server.Mode == gin.ReleaseMode {
			switch pg.SSLMode {
			case "require", "verify-ca", "verify-full":
			default:
				return fmt.Errorf("invalid database.postgres.sslmode %q for server.mode %q: must be one of %q, %q, %q", pg.SSLMode, gin.ReleaseMode, "require", "verify-ca", "verify-full")
			}
		}
	default:
		return fmt.Errorf("invalid database.driver %q: must be one of %q, %q", c.Database.Driver, "sqlite", "postgres")
	}

	return optionalDuration("database.pool.conn_max_lifetime", &c.Database.Pool.ConnMaxLifetime)
}

func (c *Config) validateAuth() error {
	secret := strings.TrimSpace(c.Auth.JWTSecret)
	if secret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if len(secret) < 32 {
		return fmt.Errorf("invalid auth.jwt_secret: must be at least 32 characters")
	}
	if c.Server.Mode == gin.ReleaseMode && CountSecretClasses(secret) < 3 {
		return fmt.Errorf("auth.jwt_secret must include at least 3 character classes (lowercase, uppercase, digit, symbol) in release mode")
	}
	c.Auth.JWTSecret = secret

	if strings.TrimSpace(c.Auth.TokenExpiry) == "" {
		c.Auth.TokenExpiry = "12h"
	}
	if err := optionalDuration("auth.token_expiry", &c.Auth.TokenExpiry); err != nil {
		return err
	}

	c.Auth.PolicyPath = strings.TrimSpace(c.Auth.PolicyPath)
	c.Auth.SeedAdmin.Email = strings.ToLower(strings.TrimSpace(c.Auth.SeedAdmin.Email))
	if c.Auth.SeedAdmin.Email != "" && len(c.Auth.SeedAdmin.Password) < 8 {
		return fmt.Errorf("invalid auth.seed_admin.password: must be at least 8 characters")
	}
	return nil
}

func (c *Config) validateAPI() error {
	base := strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if base == "" {
		return fmt.Errorf("api.base_url is required")
	}
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api.base_url %q: must be an absolute http(s) URL", c.API.BaseURL)
	}
	c.API.BaseURL = base

	if strings.TrimSpace(c.API.Timeout) == "" {
		c.API.Timeout = "10s"
	}
	return optionalDuration("api.timeout", &c.API.Timeout)
}

func (c *Config) validateSession() error {
	store := strings.ToLower(strings.TrimSpace(c.Session.Store))
	if store == "" {
		store = SessionStoreMemory
	}
	switch store {
	case SessionStoreMemory:
	case SessionStoreRedis:
		c.Session.Redis.Addr = strings.TrimSpace(c.Session.Redis.Addr)
		if c.Session.Redis.Addr == "" {
			return fmt.Errorf("session.redis.addr is required when session.store is %q", SessionStoreRedis)
		}
		if c.Session.Redis.Prefix == "" {
			c.Session.Redis.Prefix = "session:"
		}
	default:
		return fmt.Errorf("invalid session.store %q: must be one of %q, %q", c.Session.Store, SessionStoreMemory, SessionStoreRedis)
	}
	c.Session.Store = store

	if strings.TrimSpace(c.Session.TTL) == "" {
		c.Session.TTL = "12h"
	}
	if strings.TrimSpace(c.Session.CookieName) == "" {
		c.Session.CookieName = "admin_session"
	}
	if c.Session.MaxEntries == 0 {
		c.Session.MaxEntries = 10000
	}
	if c.Session.MaxEntries < 0 {
		return fmt.Errorf("invalid session.max_entries %d: must be positive", c.Session.MaxEntries)
	}
	return optionalDuration("session.ttl", &c.Session.TTL)
}

func (c *Config) validateListView() error {
	lv := &c.ListView
	if lv.PageSize == 0 {
		lv.PageSize = 20
	}
	if lv.PageSize < 1 || lv.PageSize > 100 {
		return fmt.Errorf("invalid listview.page_size %d: must be between 1 and 100", lv.PageSize)
	}
	if lv.SkeletonRows == 0 {
		lv.SkeletonRows = 5
	}
	if lv.SkeletonRows < 1 {
		return fmt.Errorf("invalid listview.skeleton_rows %d: must be positive", lv.SkeletonRows)
	}
	if lv.MemoryTierMax == 0 {
		lv.MemoryTierMax = 1000
	}
	if lv.MemoryTierMax < 1 {
		return fmt.Errorf("invalid listview.memory_tier_max %d: must be positive", lv.MemoryTierMax)
	}
	if strings.TrimSpace(lv.SearchDebounce) == "" {
		lv.SearchDebounce = "300ms"
	}
	return optionalDuration("listview.search_debounce", &lv.SearchDebounce)
}

func (c *Config) validateLog() error {
	level := strings.ToLower(strings.TrimSpace(c.Log.Level))
	switch level {
	case "debug", "info", "warn", "error":
		c.Log.Level = level
	default:
		return fmt.Errorf("invalid log.level %q: must be one of %q, %q, %q, %q", c.Log.Level, "debug", "info", "warn", "error")
	}

	format := strings.ToLower(strings.TrimSpace(c.Log.Format))
	switch format {
	case "text", "json":
		c.Log.Format = format
	default:
		return fmt.Errorf("invalid log.format %q: must be one of %q, %q", c.Log.Format, "text", "json")
	}
	return nil
}

// optionalDuration trims *v and, when set, requires a positive Go duration.
func optionalDuration(name string, v *string) error {
	*v = strings.TrimSpace(*v)
	if *v == "" {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, *v, err)
	}
	if d <= 0 {
		return fmt.Errorf("invalid %s %q: must be greater than 0", name, *v)
	}
	return nil
}

// Duration parses a validated duration field, returning fallback when unset.
func Duration(v string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// CountSecretClasses counts how many character classes (lowercase, uppercase,
// digit, symbol) are present in the given secret string.
func CountSecretClasses(secret string) int {
	var lower, upper, digit, symbol bool
	for _, r := range secret {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}

	classes := 0
	for _, ok := range []bool{lower, upper, digit, symbol} {
		if ok {
			classes++
		}
	}
	return classes
}

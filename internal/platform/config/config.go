package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	platformstrings "baiki/pkg/platform/strings"
)

const devSigningKey = "dev-secret-key-change-in-production"

// Config is the full process configuration assembled from the environment.
type Config struct {
	Environment string
	Server      Server
	Tenancy     Tenancy
	Auth        Auth
	Database    Database
	Redis       RedisConfig
	Audit       Audit
	RateLimit   RateLimit
	Logging     Logging
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// Tenancy configures host-based tenant resolution.
type Tenancy struct {
	RootDomain string
	// PassthroughPrefixes are request paths never rewritten to a tenant tree.
	PassthroughPrefixes []string
}

// Auth configures credential issuance and the session cookie.
type Auth struct {
	JWTSigningKey  string
	SessionTTL     time.Duration
	CookieDomain   string
	CookieSecure   bool
	TrustedOrigins []string
	BcryptCost     int
}

// Database selects the persistence backend. Empty URL means in-memory stores.
type Database struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the optional Redis client. Empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Audit selects where audit events go. No brokers means log-only.
type Audit struct {
	Brokers []string
	Topic   string
}

// RateLimit bounds credential and registration attempts per client IP.
type RateLimit struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

// Logging configures the slog handler.
type Logging struct {
	Level  string
	Format string
}

// IsProduction reports whether the process runs with production defaults.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// FromEnv builds the config from environment variables so main stays lean.
// A .env file in the working directory is loaded first when present; real
// environment variables take precedence over it.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: Server{
			Addr:            getEnv("BAIKI_ADDR", ":8080"),
			ShutdownTimeout: 10 * time.Second,
		},
		Tenancy: Tenancy{
			RootDomain:          strings.ToLower(getEnv("ROOT_DOMAIN", "baiki.test")),
			PassthroughPrefixes: platformstrings.SplitList(getEnv("PASSTHROUGH_PREFIXES", "/api,/metrics,/healthz,/favicon.ico")),
		},
		Auth: Auth{
			JWTSigningKey:  getEnv("JWT_SIGNING_KEY", devSigningKey),
			CookieDomain:   getEnv("COOKIE_DOMAIN", ".baiki.test"),
			TrustedOrigins: platformstrings.SplitListLower(getEnv("TRUSTED_ORIGINS", "http://localhost:3000,http://baiki.test")),
		},
		Database: Database{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Audit: Audit{
			Brokers: platformstrings.SplitListLower(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnv("AUDIT_TOPIC", "baiki.audit"),
		},
		Logging: Logging{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", ""),
		},
	}

	var err error
	if cfg.Server.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout); err != nil {
		return Config{}, err
	}
	if cfg.Auth.SessionTTL, err = getDuration("SESSION_TTL", 7*24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.Auth.BcryptCost, err = getInt("BCRYPT_COST", 10); err != nil {
		return Config{}, err
	}
	cfg.Auth.CookieSecure = getEnv("COOKIE_SECURE", strconv.FormatBool(cfg.IsProduction())) == "true"

	cfg.RateLimit.Enabled = getEnv("RATE_LIMIT_ENABLED", "true") == "true"
	if cfg.RateLimit.Requests, err = getInt("RATE_LIMIT_REQUESTS", 20); err != nil {
		return Config{}, err
	}
	if cfg.RateLimit.Window, err = getDuration("RATE_LIMIT_WINDOW", time.Minute); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	if c.Tenancy.RootDomain == "" {
		return fmt.Errorf("ROOT_DOMAIN is required")
	}
	if c.IsProduction() && c.Auth.JWTSigningKey == devSigningKey {
		return fmt.Errorf("JWT_SIGNING_KEY must be set in production")
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		return fmt.Errorf("rate limit requests and window must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

const (
	EnvDev  = "dev"
	EnvProd = "prod"

	SessionStoreAuto   = "auto"
	SessionStoreBadger = "badger"
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"

	minSecretLen = 32
)

// Config holds everything the server needs to start.
type Config struct {
	Env  string
	Host string
	Port int

	StoreDriver string
	DatabaseURL string

	SecretKey          string
	SessionStore       string
	RedisAddr          string
	SessionLifetime    time.Duration
	SessionIdleTimeout time.Duration
	CookieSecure       bool

	BcryptCost      int
	ShutdownTimeout time.Duration
	LogLevel        string
}

// devSecret is only accepted when APP_ENV=dev.
const devSecret = "inkpost-development-secret-do-not-use"

// Load reads the environment, applying defaults, and validates the result.
func Load() (*Config, error) {
	var env envReader
	cfg := &Config{
		Env:                mustEnv("APP_ENV", EnvDev),
		Host:               mustEnv("HOST", "0.0.0.0"),
		Port:               env.mustEnvInt("PORT", 5000),
		StoreDriver:        mustEnv("STORE_DRIVER", "badger"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		SecretKey:          os.Getenv("SECRET_KEY"),
		SessionStore:       mustEnv("SESSION_STORE", SessionStoreAuto),
		RedisAddr:          mustEnv("REDIS_ADDR", "localhost:6379"),
		SessionLifetime:    env.mustEnvDuration("SESSION_LIFETIME", 24*time.Hour),
		SessionIdleTimeout: env.mustEnvDuration("SESSION_IDLE_TIMEOUT", 0),
		CookieSecure:       env.mustEnvBool("COOKIE_SECURE", false),
		BcryptCost:         env.mustEnvInt("BCRYPT_COST", 12),
		ShutdownTimeout:    env.mustEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		LogLevel:           mustEnv("LOG_LEVEL", "info"),
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = defaultDatabaseURL(cfg.StoreDriver)
	}
	if cfg.SecretKey == "" && cfg.Env == EnvDev {
		cfg.SecretKey = devSecret
	}
	if err := errors.Join(append(env.errs, cfg.Validate())...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultDatabaseURL(driver string) string {
	switch driver {
	case "sqlite":
		return "data/blog.db"
	case "badger":
		return "data/badger"
	default:
		return ""
	}
}

// Validate checks the combination of settings.
func (c *Config) Validate() error {
	var errs []error
	switch c.Env {
	case EnvDev, EnvProd:
	default:
		errs = append(errs, fmt.Errorf("APP_ENV must be %q or %q, got %q", EnvDev, EnvProd, c.Env))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}
	switch c.StoreDriver {
	case "badger", "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required for STORE_DRIVER="+c.StoreDriver))
	}
	if len(c.SecretKey) < minSecretLen {
		errs = append(errs, fmt.Errorf("SECRET_KEY must be at least %d bytes", minSecretLen))
	}
	if c.Env == EnvProd && c.SecretKey == devSecret {
		errs = append(errs, errors.New("SECRET_KEY must be set in prod"))
	}
	switch c.SessionStore {
	case SessionStoreAuto, SessionStoreRedis, SessionStoreMemory:
	case SessionStoreBadger:
		if c.StoreDriver != "badger" {
			errs = append(errs, errors.New("SESSION_STORE=badger needs STORE_DRIVER=badger"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown SESSION_STORE %q", c.SessionStore))
	}
	if c.SessionLifetime <= 0 {
		errs = append(errs, errors.New("SESSION_LIFETIME must be positive"))
	}
	return errors.Join(errs...)
}

// ResolvedSessionStore turns "auto" into a concrete store: badger sessions
// live next to badger data, SQL backends fall back to memory.
func (c *Config) ResolvedSessionStore() string {
	if c.SessionStore != SessionStoreAuto {
		return c.SessionStore
	}
	if c.StoreDriver == "badger" {
		return SessionStoreBadger
	}
	return SessionStoreMemory
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func mustEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// envReader parses typed variables, remembering every malformed value.
type envReader struct {
	errs []error
}

func (e *envReader) lookup(k string) (string, bool) {
	v := os.Getenv(k)
	return v, v != ""
}

func (e *envReader) fail(k, v, kind string) {
	e.errs = append(e.errs, fmt.Errorf("%s: %q is not a valid %s", k, v, kind))
}

func (e *envReader) mustEnvInt(k string, def int) int {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		e.fail(k, v, "integer")
		return def
	}
	return i
}

func (e *envReader) mustEnvBool(k string, def bool) bool {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(k, v, "boolean")
		return def
	}
	return b
}

func (e *envReader) mustEnvDuration(k string, def time.Duration) time.Duration {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(k, v, "duration")
		return def
	}
	return d
}

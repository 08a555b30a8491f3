package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Session store kinds.
const (
	StoreCookie = "cookie"
	StoreRedis  = "redis"
)

type Config struct {
	Port     string `env:"PORT,     default=3000"`
	Env      string `env:"ENV,      default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// BackendURL is the document service's base URL. Required: a gateway
	// without a Backend cannot serve a single request, so absence is a
	// startup error, never a per-request one.
	BackendURL     string        `env:"BACKEND_URL"`
	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT, default=15s"`

	Session SessionConfig
	Redis   RedisConfig
}

type SessionConfig struct {
	// Secret signs the session cookie. Required for the default cookie
	// store: an unsigned session would let the browser forge identity.
	Secret string        `env:"SESSION_SECRET"`
	Store  string        `env:"SESSION_STORE, default=cookie"`
	TTL    time.Duration `env:"SESSION_TTL,   default=168h"`
	Cookie string        `env:"SESSION_COOKIE, default=noosify_session"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig and
// rejects startup when required values are missing or malformed.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.BackendURL == "" {
		return errors.New("BACKEND_URL is required")
	}
	if u, err := url.Parse(c.BackendURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("BACKEND_URL %q is not an absolute URL", c.BackendURL)
	}
	switch c.Session.Store {
	case StoreCookie:
		if c.Session.Secret == "" {
			return errors.New("SESSION_SECRET is required with the cookie session store")
		}
	case StoreRedis:
	default:
		return fmt.Errorf("SESSION_STORE %q is not one of %q, %q", c.Session.Store, StoreCookie, StoreRedis)
	}
	if c.Session.TTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	return nil
}

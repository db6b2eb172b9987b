package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StoreSQL   = "sql"
	StoreMongo = "mongo"

	RateLimitMemory = "memory"
	RateLimitRedis  = "redis"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	JWT       JWTConfig
	Store     StoreConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Session   SessionConfig

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS, default=http://localhost:3000"`
	AuditWorkers       int      `env:"AUDIT_WORKERS,        default=4"`
}

type JWTConfig struct {
	Secret     string        `env:"JWT_SECRET"`
	Expiration time.Duration `env:"JWT_EXPIRATION, default=24h"`
	Issuer     string        `env:"JWT_ISSUER,     default=backoffice"`
}

type StoreConfig struct {
	Driver string `env:"STORE_DRIVER, default=sql"`
	DSN    string `env:"DATABASE_DSN, default=backoffice.db"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=backoffice"`
}

// RedisConfig is optional: an empty address disables Redis.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type RateLimitConfig struct {
	Backend       string        `env:"RATE_LIMIT_BACKEND,        default=memory"`
	MaxAttempts   int           `env:"RATE_LIMIT_MAX_ATTEMPTS,   default=5"`
	BlockDuration time.Duration `env:"RATE_LIMIT_BLOCK_DURATION, default=5m"`
	Expiry        time.Duration `env:"RATE_LIMIT_EXPIRY,         default=10m"`
	SweepInterval time.Duration `env:"RATE_LIMIT_SWEEP_INTERVAL, default=10m"`
}

type SessionConfig struct {
	TTL        time.Duration `env:"SESSION_TTL,         default=30m"`
	MaxEntries int           `env:"SESSION_MAX_ENTRIES, default=10000"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWT.Expiration <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRATION must be positive"))
	}

	switch c.Store.Driver {
	case StoreSQL:
		if c.Store.DSN == "" {
			errs = append(errs, errors.New("DATABASE_DSN is required for the sql store"))
		}
	case StoreMongo:
		if c.Mongo.URI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongo store"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreSQL, StoreMongo, c.Store.Driver))
	}

	switch c.RateLimit.Backend {
	case RateLimitMemory:
	case RateLimitRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis rate limiter"))
		}
	default:
		errs = append(errs, fmt.Errorf("RATE_LIMIT_BACKEND must be %q or %q, got %q", RateLimitMemory, RateLimitRedis, c.RateLimit.Backend))
	}
	if c.RateLimit.MaxAttempts <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX_ATTEMPTS must be positive"))
	}
	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"RATE_LIMIT_BLOCK_DURATION", c.RateLimit.BlockDuration},
		{"RATE_LIMIT_EXPIRY", c.RateLimit.Expiry},
		{"RATE_LIMIT_SWEEP_INTERVAL", c.RateLimit.SweepInterval},
	} {
		if d.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", d.name, d.value))
		}
	}

	if c.AuditWorkers <= 0 {
		errs = append(errs, errors.New("AUDIT_WORKERS must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

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
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"

	minSecretLen = 32
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Session SessionConfig
	Hash    HashConfig
	Admin   AdminConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type SessionConfig struct {
	// Secret signs the session cookie.
	Secret        string        `env:"SESSION_SECRET"`
	Store         string        `env:"SESSION_STORE,          default=memory"`
	TTL           time.Duration `env:"SESSION_TTL,            default=24h"`
	CookieName    string        `env:"SESSION_COOKIE_NAME,    default=storefront_session"`
	CookieSecure  bool          `env:"SESSION_COOKIE_SECURE,  default=false"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL, default=1m"`
	// LoginPath is where anonymous browser page loads are redirected.
	LoginPath string `env:"SESSION_LOGIN_PATH, default=/login"`
}

type HashConfig struct {
	BcryptCost int `env:"BCRYPT_COST,  default=12"`
	Workers    int `env:"HASH_WORKERS, default=4"`
}

// AdminConfig seeds the first admin account. Bootstrap is skipped when Email
// is empty.
type AdminConfig struct {
	Username string `env:"ADMIN_USERNAME, default=admin"`
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=shop_db"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Enabled reports whether an initial admin account is configured.
func (a AdminConfig) Enabled() bool {
	return a.Email != ""
}

// Validate checks values envconfig cannot express.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Session.Secret) < minSecretLen {
		errs = append(errs, fmt.Errorf("SESSION_SECRET must be at least %d bytes", minSecretLen))
	}
	switch c.Session.Store {
	case SessionStoreMemory, SessionStoreRedis:
	default:
		errs = append(errs, fmt.Errorf("SESSION_STORE must be %q or %q, got %q", SessionStoreMemory, SessionStoreRedis, c.Session.Store))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if !strings.HasPrefix(c.Session.LoginPath, "/") || strings.HasPrefix(c.Session.LoginPath, "//") {
		errs = append(errs, fmt.Errorf("SESSION_LOGIN_PATH must be a local path, got %q", c.Session.LoginPath))
	}
	if c.Hash.Workers <= 0 {
		errs = append(errs, errors.New("HASH_WORKERS must be positive"))
	}
	if c.Admin.Enabled() && c.Admin.Password == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD is required when ADMIN_EMAIL is set"))
	}
	return errors.Join(errs...)
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration from l and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

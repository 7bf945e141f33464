package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// DevJWTSecret signs tokens when JWT_SECRET is unset outside production.
const DevJWTSecret = "dev-only-insecure-secret"

type Config struct {
	Port        string   `env:"PORT,         default=3000"`
	Env         string   `env:"ENV,          default=development"`
	LogLevel    string   `env:"LOG_LEVEL,    default=info"`
	TrustProxy  bool     `env:"TRUST_PROXY,  default=false"`
	CORSOrigins []string `env:"CORS_ORIGINS, default=*"`

	Auth      AuthConfig
	Users     UsersConfig
	Admission AdmissionConfig
	Mongo     MongoConfig
	Redis     RedisConfig
}

type AuthConfig struct {
	JWTSecret    string        `env:"JWT_SECRET"`
	JWTExpiresIn time.Duration `env:"JWT_EXPIRES_IN, default=24h"`
	BcryptCost   int           `env:"BCRYPT_COST,    default=10"`
	// HashWorkers sizes the password hashing pool; 0 means one per CPU.
	HashWorkers int `env:"HASH_WORKERS, default=0"`
}

type UsersConfig struct {
	EnforceAuthz bool `env:"USERS_ENFORCE_AUTHZ, default=false"`
}

type AdmissionConfig struct {
	// Store is "memory" or "redis".
	Store    string   `env:"ADMISSION_STORE,     default=memory"`
	BotAllow []string `env:"ADMISSION_BOT_ALLOW, default=CATEGORY:SEARCH_ENGINE,CATEGORY:PREVIEW,POSTMAN,curl*,Insomnia*,Thunder Client*"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=acquisitions"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := Process(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// Process loads configuration from l and validates it.
func Process(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if cfg.Auth.JWTSecret == "" && !cfg.IsProduction() {
		cfg.Auth.JWTSecret = DevJWTSecret
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports settings that would make the service unsafe or unable to
// start.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required in production"))
	}
	if c.IsProduction() && c.Auth.JWTSecret == DevJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must not be the development default in production"))
	}
	if c.Auth.JWTExpiresIn <= 0 {
		errs = append(errs, fmt.Errorf("JWT_EXPIRES_IN must be positive, got %s", c.Auth.JWTExpiresIn))
	}
	if c.Auth.HashWorkers < 0 {
		errs = append(errs, fmt.Errorf("HASH_WORKERS must not be negative, got %d", c.Auth.HashWorkers))
	}
	switch c.Admission.Store {
	case "memory":
	case "redis":
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required when ADMISSION_STORE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("ADMISSION_STORE must be memory or redis, got %q", c.Admission.Store))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// MinJWTSecretLength is the minimum HS256 secret size in bytes.
const MinJWTSecretLength = 32

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	JWT      JWTConfig
	Database DatabaseConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Cleanup  CleanupConfig
	CORS     CORSConfig
}

type JWTConfig struct {
	Secret string        `env:"JWT_SECRET"`
	TTL    time.Duration `env:"JWT_TTL, default=1h"`
}

type DatabaseConfig struct {
	Driver string `env:"DB_DRIVER, default=mongo"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=book_exchange"`
}

type RedisConfig struct {
	// Addr empty disables the catalog cache.
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,          default=0"`
	CacheTTL time.Duration `env:"CATALOG_CACHE_TTL, default=5m"`
}

type StorageConfig struct {
	Endpoint       string `env:"STORAGE_ENDPOINT"`
	PublicURL      string `env:"STORAGE_PUBLIC_URL"`
	Bucket         string `env:"STORAGE_BUCKET,           default=book-images"`
	AccessKey      string `env:"STORAGE_ACCESS_KEY"`
	SecretKey      string `env:"STORAGE_SECRET_KEY"`
	Region         string `env:"STORAGE_REGION,           default=us-east-1"`
	MaxUploadBytes int64  `env:"STORAGE_MAX_UPLOAD_BYTES, default=5242880"`
}

type CleanupConfig struct {
	Workers int `env:"CLEANUP_WORKERS, default=4"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS, default=*"`
}

// Load reads configuration from environment variables using go-envconfig and
// validates the result.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith is Load with an explicit variable source.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that cannot be expressed as struct tags.
func (c *Config) Validate() error {
	var errs []error
	if len(c.JWT.Secret) < MinJWTSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", MinJWTSecretLength))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	switch c.Database.Driver {
	case DriverMongo, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not one of %s, %s", c.Database.Driver, DriverMongo, DriverMemory))
	}
	if c.Storage.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("STORAGE_MAX_UPLOAD_BYTES must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// IsDevelopment reports whether the service runs in a local environment.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// StorageEnabled reports whether an object store endpoint or region is configured.
func (c *Config) StorageEnabled() bool {
	return c.Storage.Endpoint != "" || c.Storage.AccessKey != ""
}

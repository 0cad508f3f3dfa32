package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Data      DataConfig
	Session   SessionConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port        string `envconfig:"PORT" default:"8000" validate:"required,numeric"`
	Host        string `envconfig:"HOST" default:"0.0.0.0"`
	MaxUploadMB int64  `envconfig:"MAX_UPLOAD_MB" default:"1024" validate:"gte=1,lte=1048576"`
}

// StorageConfig holds file storage configuration.
type StorageConfig struct {
	Root          string `envconfig:"STORAGE_ROOT" default:"storage" validate:"required"`
	SerializeDirs bool   `envconfig:"STORAGE_SERIALIZE_DIRS" default:"false"`
}

// DataConfig holds configuration of the key-value store.
type DataConfig struct {
	Dir       string `envconfig:"DATA_DIR" default:"data" validate:"required"`
	Backend   string `envconfig:"STORE_BACKEND" default:"json" validate:"oneof=json badger"`
	SeedUsers string `envconfig:"SEED_USERS_FILE"`
}

// SessionConfig holds login session configuration.
type SessionConfig struct {
	CookieName string        `envconfig:"SESSION_COOKIE" default:"session" validate:"required"`
	MaxAge     time.Duration `envconfig:"SESSION_MAX_AGE" default:"1h" validate:"gte=1s"`
	Secure     bool          `envconfig:"SESSION_SECURE" default:"false"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100" validate:"gte=1"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200" validate:"gte=1"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8000",
			Host:        "0.0.0.0",
			MaxUploadMB: 1024,
		},
		Storage: StorageConfig{
			Root: "storage",
		},
		Data: DataConfig{
			Dir:     "data",
			Backend: "json",
		},
		Session: SessionConfig{
			CookieName: "session",
			MaxAge:     time.Hour,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.Server.MaxUploadMB << 20
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", field, fe.Param()))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		case "numeric":
			msgs = append(msgs, fmt.Sprintf("%s must be numeric", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

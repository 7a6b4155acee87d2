package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"

	"fitgympro/internal/adapters/storage/kv"
)

// Environments
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Configuration errors
var (
	ErrCSRFKeyRequired = errors.New("FITGYM_CSRF_KEY is required in production")
	ErrInvalidCSRFKey  = errors.New("FITGYM_CSRF_KEY must be 64 hex characters")
	ErrInvalidBackend  = errors.New("FITGYM_STORE_BACKEND must be sqlite or leveldb")
	ErrInvalidEnv      = errors.New("FITGYM_ENV must be development or production")
	ErrInvalidLogLevel = errors.New("FITGYM_LOG_LEVEL must be debug, info, warn or error")
)

// Config is the process configuration, read from FITGYM_* variables.
type Config struct {
	Env  string `env:"FITGYM_ENV" envDefault:"development"`
	Addr string `env:"FITGYM_ADDR" envDefault:":8080"`

	StoreBackend string `env:"FITGYM_STORE_BACKEND" envDefault:"sqlite"`
	StorePath    string `env:"FITGYM_STORE_PATH" envDefault:"fitgympro.db"`
	SlowOpMs     int    `env:"FITGYM_SLOW_OP_MS" envDefault:"100"`

	CSRFKey        string   `env:"FITGYM_CSRF_KEY"`
	TrustedOrigins []string `env:"FITGYM_TRUSTED_ORIGINS" envSeparator:","`
	RateLimit      int      `env:"FITGYM_RATE_LIMIT" envDefault:"10"`

	AdminUsername string `env:"FITGYM_ADMIN_USERNAME" envDefault:"admin"`
	AdminEmail    string `env:"FITGYM_ADMIN_EMAIL" envDefault:"admin@fitgympro.com"`
	AdminPassword string `env:"FITGYM_ADMIN_PASSWORD"`

	ResendKey  string `env:"FITGYM_RESEND_KEY"`
	ResendFrom string `env:"FITGYM_RESEND_FROM" envDefault:"FitGym Pro <noreply@fitgympro.com>"`

	// CMSSyncSchedule is a cron schedule with seconds; empty disables the nightly catalogue sync.
	CMSSyncSchedule string `env:"FITGYM_CMS_SYNC" envDefault:"0 0 3 * * *"`

	LogLevel      string `env:"FITGYM_LOG_LEVEL" envDefault:"info"`
	LogJSON       bool   `env:"FITGYM_LOG_JSON" envDefault:"false"`
	LogFile       string `env:"FITGYM_LOG_FILE"`
	LogMaxSizeMB  int    `env:"FITGYM_LOG_MAX_SIZE_MB" envDefault:"50"`
	LogMaxBackups int    `env:"FITGYM_LOG_MAX_BACKUPS" envDefault:"5"`
	LogMaxAgeDays int    `env:"FITGYM_LOG_MAX_AGE_DAYS" envDefault:"28"`
}

// Load parses the environment into a Config and validates it.
// POST: Returns a valid Config or an error naming the bad variable
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Production reports whether the process runs in production.
func (c Config) Production() bool { return c.Env == EnvProduction }

// Validate checks the values env.Parse cannot.
func (c Config) Validate() error {
	switch c.Env {
	case EnvDevelopment, EnvProduction:
	default:
		return ErrInvalidEnv
	}
	switch c.StoreBackend {
	case kv.BackendSQLite, kv.BackendLevelDB:
	default:
		return ErrInvalidBackend
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	if c.CSRFKey == "" {
		if c.Production() {
			return ErrCSRFKeyRequired
		}
		return nil
	}
	if _, err := c.CSRFKeyBytes(); err != nil {
		return err
	}
	return nil
}

// CSRFKeyBytes decodes the configured CSRF key.
// An empty key in development yields a fixed all-zero key.
func (c Config) CSRFKeyBytes() ([]byte, error) {
	if c.CSRFKey == "" {
		return make([]byte, 32), nil
	}
	key, err := hex.DecodeString(c.CSRFKey)
	if err != nil || len(key) != 32 {
		return nil, ErrInvalidCSRFKey
	}
	return key, nil
}

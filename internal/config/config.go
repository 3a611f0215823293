// Package config resolves application configuration from defaults, an
// optional YAML file and CLIERP_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultAdminPassword is the bootstrap fallback. It is a known weak default
// and must be rotated after install; Load warns when it is in effect.
const DefaultAdminPassword = "admin123"

const defaultJWTSecret = "change-this-secret"

// Database holds connection pool settings.
type Database struct {
	DSN      string        `yaml:"dsn"`
	MaxConns int           `yaml:"max_conns"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Auth holds credential and token settings.
type Auth struct {
	JWTSecret     string        `yaml:"jwt_secret"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
	BcryptCost    int           `yaml:"bcrypt_cost"`
	AdminPassword string        `yaml:"admin_password"`
}

// Logging holds log output settings.
type Logging struct {
	Level string `yaml:"level"`
}

// Config is the resolved application configuration.
type Config struct {
	Database Database `yaml:"database"`
	Auth     Auth     `yaml:"auth"`
	Logging  Logging  `yaml:"logging"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Database: Database{
			DSN:      "",
			MaxConns: 10,
			Timeout:  30 * time.Second,
		},
		Auth: Auth{
			JWTSecret:     defaultJWTSecret,
			TokenTTL:      time.Hour,
			BcryptCost:    12,
			AdminPassword: DefaultAdminPassword,
		},
		Logging: Logging{Level: "info"},
	}
}

// Load resolves configuration. An empty path skips the file layer; a named
// file that does not exist is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("CLIERP_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("CLIERP_DB_MAX_CONNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Database.MaxConns = n
		}
	}
	if v := os.Getenv("CLIERP_DB_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Database.Timeout = d
		}
	}
	if v := os.Getenv("CLIERP_AUTH_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("CLIERP_AUTH_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Auth.TokenTTL = d
		}
	}
	if v := os.Getenv("CLIERP_AUTH_BCRYPT_COST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Auth.BcryptCost = n
		}
	}
	if v := os.Getenv("CLIERP_ADMIN_PASSWORD"); v != "" {
		cfg.Auth.AdminPassword = v
	}
	if v := os.Getenv("CLIERP_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks invariants that would otherwise fail deep inside a service.
func (c Config) Validate() error {
	if c.Auth.TokenTTL <= 0 {
		return errors.New("config: token_ttl must be positive")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return errors.New("config: bcrypt_cost out of range")
	}
	if c.Database.MaxConns <= 0 {
		return errors.New("config: max_conns must be positive")
	}
	return nil
}

// UsingDefaultSecret reports whether the JWT secret was never overridden.
func (c Config) UsingDefaultSecret() bool {
	return c.Auth.JWTSecret == defaultJWTSecret
}

// Package config loads and validates server configuration from the
// environment.
//
// Configuration is entirely env-driven (a `.env` file is auto-loaded by
// the main package in development). Parsing is a single env.Parse call
// against the struct tags below; validation runs immediately after, so a
// misconfigured server refuses to start instead of failing on its first
// request.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/crypto/bcrypt"
)

// Environment names. Production toggles the stricter cookie policy
// (Secure + SameSite=None); development keeps cookies usable over
// plain-HTTP localhost.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds everything the server needs, mapped from environment
// variables via the `env` tags.
type Config struct {
	Port       int           `env:"PORT" envDefault:"8080"`
	Env        string        `env:"APP_ENV" envDefault:"development"`
	DBPath     string        `env:"DB_PATH" envDefault:"data/inkpad.db"`
	StaticDir  string        `env:"STATIC_DIR" envDefault:"web/static"`
	JWTSecret  string        `env:"JWT_SECRET,required"`
	TokenTTL   time.Duration `env:"TOKEN_TTL" envDefault:"168h"` // 7 days
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10"`
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for values that would only blow up
// later (unbindable port, trivially guessable secret, bcrypt cost the
// library itself would reject).
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.Env, validation.Required, validation.In(EnvDevelopment, EnvProduction)),
		validation.Field(&c.DBPath, validation.Required),
		validation.Field(&c.JWTSecret, validation.Required, validation.Length(16, 0)),
		validation.Field(&c.TokenTTL, validation.Required, validation.Min(time.Minute)),
		validation.Field(&c.BcryptCost, validation.Required,
			validation.Min(bcrypt.MinCost), validation.Max(bcrypt.MaxCost)),
	)
}

// Production reports whether the server runs with the production cookie
// policy.
func (c *Config) Production() bool {
	return c.Env == EnvProduction
}

// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreBadger   = "badger"
)

// Config is the full service configuration.
type Config struct {
	Addr   string `env:"ADDR" envDefault:":8080" validate:"required"`
	WebDir string `env:"WEB_DIR" envDefault:"web"`

	Store       string `env:"STORE" envDefault:"memory" validate:"oneof=memory postgres sqlite badger"`
	DatabaseURL string `env:"DATABASE_URL" validate:"required_if=Store postgres"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"secretsanta.db" validate:"required_if=Store sqlite"`
	BadgerPath  string `env:"BADGER_PATH" envDefault:"data/badger" validate:"required_if=Store badger"`

	// CycleYear keys the active assignment map. Zero means the current year.
	CycleYear  int    `env:"CYCLE_YEAR" validate:"gte=0"`
	RosterFile string `env:"ROSTER_FILE"`

	// RNGSeed fixes the draw randomness. Zero seeds from crypto/rand.
	RNGSeed         int64         `env:"RNG_SEED"`
	DrawMaxAttempts uint          `env:"DRAW_MAX_ATTEMPTS" envDefault:"8" validate:"gte=1"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"24h" validate:"gt=0"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text" validate:"oneof=text json"`

	OIDC OIDC `envPrefix:"OIDC_"`
}

// OIDC configures single sign-on. It is enabled when Issuer is set.
type OIDC struct {
	Issuer       string `env:"ISSUER"`
	ClientID     string `env:"CLIENT_ID" validate:"required_with=Issuer"`
	ClientSecret string `env:"CLIENT_SECRET" validate:"required_with=Issuer"`
	RedirectURL  string `env:"REDIRECT_URL" validate:"required_with=Issuer"`
}

// Enabled reports whether SSO is configured.
func (o OIDC) Enabled() bool {
	return o.Issuer != ""
}

// Load reads envFile if it exists, then parses and validates the environment.
// Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.CycleYear == 0 {
		cfg.CycleYear = time.Now().Year()
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Cycle returns the key of the active assignment cycle.
func (c *Config) Cycle() string {
	return strconv.Itoa(c.CycleYear)
}

// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every variable read by Load.
const EnvPrefix = "PARLEY_"

// Config holds runtime configuration.
type Config struct {
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	// DBPath is the SQLite save file.
	DBPath string `env:"DB_PATH" envDefault:".parley/parley.db"`

	// Seed for arena layout and ritual sequences. 0 picks a random seed.
	Seed int64 `env:"SEED"`

	CaseID   string `env:"CASE_ID"`
	CaseFile string `env:"CASE_FILE"`

	TickRate  int     `env:"TICK_RATE" envDefault:"30"`
	TimeScale float64 `env:"TIME_SCALE" envDefault:"1"`

	TelemetryEnabled bool   `env:"TELEMETRY_ENABLED"`
	OTelEndpoint     string `env:"OTEL_ENDPOINT" envDefault:"https://api.honeycomb.io"`
	HoneycombAPIKey  string `env:"HONEYCOMB_API_KEY"`
	HoneycombDataset string `env:"HONEYCOMB_DATASET" envDefault:"parley"`
}

// Load reads a .env file if present, then the environment.
func Load() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	return Parse()
}

// Parse reads configuration from the environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.LogFormat) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log format %q: want json or console", c.LogFormat))
	}
	if c.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("tick rate must be positive, got %d", c.TickRate))
	}
	if c.TimeScale <= 0 {
		errs = append(errs, fmt.Errorf("time scale must be positive, got %v", c.TimeScale))
	}
	return errors.Join(errs...)
}

// FrameDuration is the wall-clock length of one tick.
func (c Config) FrameDuration() time.Duration {
	if c.TickRate <= 0 {
		return time.Second / 30
	}
	return time.Second / time.Duration(c.TickRate)
}

// TelemetryHeaders returns OTLP headers for the configured backend.
func (c Config) TelemetryHeaders() map[string]string {
	if c.HoneycombAPIKey == "" {
		return nil
	}
	return map[string]string{
		"x-honeycomb-team":    c.HoneycombAPIKey,
		"x-honeycomb-dataset": c.HoneycombDataset,
	}
}

package config

import (
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// Config holds the runtime settings of the catalog tool. Values come from
// CATALOG_* environment variables and may be overridden by command line flags.
type Config struct {
	// SeedFile is a JSON, CSV or SQLite export to load at startup. Empty
	// means the built-in sample catalog.
	SeedFile  string `envconfig:"SEED_FILE"`
	ExportDir string `envconfig:"EXPORT_DIR" default:"." validate:"required"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"warn" validate:"oneof=debug info warn error"`
}

// Option mutates the config after the environment has been read.
type Option func(*Config)

// WithSeedFile overrides CATALOG_SEED_FILE.
func WithSeedFile(path string) Option {
	return func(c *Config) { c.SeedFile = path }
}

// WithExportDir overrides CATALOG_EXPORT_DIR.
func WithExportDir(dir string) Option {
	return func(c *Config) { c.ExportDir = dir }
}

// WithLogLevel overrides CATALOG_LOG_LEVEL.
func WithLogLevel(level string) Option {
	return func(c *Config) { c.LogLevel = level }
}

// Load reads the environment, applies opts and validates the result.
func Load(opts ...Option) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("catalog", &cfg); err != nil {
		return nil, errors.Wrap(err, "read env")
	}
	for _, op := range opts {
		op(&cfg)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &cfg, nil
}

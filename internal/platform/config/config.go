package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds the server settings. Values come from an optional YAML file
// and environment variables; the environment always wins.
type Config struct {
	Addr               string `yaml:"addr" env:"APP_ADDR" env-default:":8080"`
	Environment        string `yaml:"env" env:"APP_ENV" env-default:"development"`
	DatabaseURL        string `yaml:"-" env:"DATABASE_URL"`
	JWTSecret          string `yaml:"-" env:"JWT_SECRET"`
	MigrationsDir      string `yaml:"migrations_dir" env:"MIGRATIONS_DIR" env-default:"migrations"`
	RunMigrations      bool   `yaml:"run_migrations" env:"RUN_MIGRATIONS" env-default:"true"`
	MaxBodyBytes       int64  `yaml:"max_body_bytes" env:"MAX_BODY_BYTES" env-default:"1048576"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute" env:"RATE_LIMIT_PER_MINUTE" env-default:"60"`
	CatalogPath        string `yaml:"catalog_path" env:"CATALOG_PATH"`
	MetricsEnabled     bool   `yaml:"metrics_enabled" env:"METRICS_ENABLED" env-default:"true"`
}

// Load reads path when it exists, then applies environment overrides.
// An empty path means environment only.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return Config{}, fmt.Errorf("read %s: %w", path, err)
			}
			return cfg, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.IsProduction() && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}

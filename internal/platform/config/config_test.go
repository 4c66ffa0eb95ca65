package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/perf")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, "migrations", cfg.MigrationsDir)
	assert.True(t, cfg.RunMigrations)
	assert.Equal(t, int64(1048576), cfg.MaxBodyBytes)
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
	assert.True(t, cfg.MetricsEnabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":9090\"\nrate_limit_per_minute: 10\n"), 0o600))
	t.Setenv("DATABASE_URL", "postgres://localhost/perf")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "25")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 25, cfg.RateLimitPerMinute)
}

func TestLoadMissingFileFallsBackToEnv(t *testing.T) {
	t.Setenv("APP_ADDR", ":7070")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr)
}

func TestValidate(t *testing.T) {
	base := Config{DatabaseURL: "postgres://db", MaxBodyBytes: 4096, RateLimitPerMinute: 5, Environment: EnvDevelopment}
	require.NoError(t, base.Validate())

	cases := map[string]func(c *Config){
		"missing database": func(c *Config) { c.DatabaseURL = "" },
		"prod without secret": func(c *Config) {
			c.Environment = EnvProduction
			c.JWTSecret = ""
		},
		"tiny body limit": func(c *Config) { c.MaxBodyBytes = 100 },
		"zero rate limit": func(c *Config) { c.RateLimitPerMinute = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

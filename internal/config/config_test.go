package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "algebra.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5001, cfg.Server.Port)
	assert.Equal(t, 128, cfg.Limits.MaxPasses)
	assert.Equal(t, 2*time.Second, cfg.Limits.Deadline)
}

func TestLoad_EmptyPathGivesDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileOverlaysDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	path := writeConfig(t, `
server:
  port: 8080
limits:
  max_passes: 64
  deadline: 500ms
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 64, cfg.Limits.MaxPasses)
	assert.Equal(t, 500*time.Millisecond, cfg.Limits.Deadline)
	assert.Equal(t, "debug", cfg.Log.Level)
	// untouched fields keep their defaults
	assert.Equal(t, 10000, cfg.Limits.MaxSamples)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_PortEnvWins(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 8080\n")
	t.Setenv("PORT", "9090")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoad_BadPortEnv(t *testing.T) {
	t.Setenv("PORT", "eighty")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [1, 2"))
	assert.Error(t, err)
}

func TestValidate_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }, ErrPort},
		{"port too big", func(c *Config) { c.Server.Port = 70000 }, ErrPort},
		{"body", func(c *Config) { c.Server.MaxBodyBytes = 0 }, ErrBody},
		{"passes", func(c *Config) { c.Limits.MaxPasses = 0 }, ErrLimits},
		{"samples", func(c *Config) { c.Limits.MaxSamples = 1 }, ErrLimits},
		{"burst", func(c *Config) { c.RateLimit.Burst = 0 }, ErrRate},
		{"level", func(c *Config) { c.Log.Level = "loud" }, ErrLog},
		{"format", func(c *Config) { c.Log.Format = "xml" }, ErrLog},
		{"exporter", func(c *Config) { c.Tracing.Exporter = "jaeger" }, ErrExporter},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), tc.want)
		})
	}
}

func TestValidate_RateLimitDisabled(t *testing.T) {
	cfg := Default()
	cfg.RateLimit = RateLimitConfig{}
	assert.NoError(t, cfg.Validate())
}

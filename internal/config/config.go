// Package config loads the server configuration: built-in defaults, an
// optional YAML file on top, and the PORT environment variable last.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/njchilds90/algebra"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Limits    algebra.Limits  `yaml:"limits"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
	Tracing   TracingConfig   `yaml:"tracing"`
}

type ServerConfig struct {
	Port              int           `yaml:"port"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes"`
}

// RateLimitConfig is a token bucket shared by all clients. A zero rate
// disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

type TracingConfig struct {
	Exporter    string `yaml:"exporter"` // none or stdout
	ServiceName string `yaml:"service_name"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:              5001,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxBodyBytes:      1 << 20,
		},
		Limits: algebra.DefaultLimits(),
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
		},
		Log:     LogConfig{Level: "info", Format: "json"},
		Tracing: TracingConfig{Exporter: "none", ServiceName: "algebra"},
	}
}

// Load returns the defaults overlaid with the YAML file at path (skipped
// when path is empty) and the PORT environment variable.
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
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return Config{}, fmt.Errorf("PORT %q is not a number: %w", port, err)
		}
		cfg.Server.Port = p
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var (
	ErrPort     = errors.New("server.port must be between 1 and 65535")
	ErrBody     = errors.New("server.max_body_bytes must be positive")
	ErrLimits   = errors.New("limits must be positive")
	ErrRate     = errors.New("rate_limit needs a positive burst when requests_per_second is set")
	ErrLog      = errors.New("log.level must be debug, info, warn or error and log.format json or text")
	ErrExporter = errors.New("tracing.exporter must be none or stdout")
)

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return ErrPort
	}
	if c.Server.MaxBodyBytes <= 0 {
		return ErrBody
	}
	l := c.Limits
	if l.MaxPasses <= 0 || l.MaxSamples < 2 || l.MaxBinomialDegree < 2 ||
		l.MaxRootSearchDegree < 2 || l.MaxInputLength <= 0 || l.MaxTerms <= 0 || l.Deadline <= 0 {
		return ErrLimits
	}
	if c.RateLimit.RequestsPerSecond < 0 || (c.RateLimit.RequestsPerSecond > 0 && c.RateLimit.Burst <= 0) {
		return ErrRate
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return ErrLog
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return ErrLog
	}
	if c.Tracing.Exporter != "none" && c.Tracing.Exporter != "stdout" {
		return ErrExporter
	}
	return nil
}

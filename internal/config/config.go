// Package config loads tablabaki settings from the environment and builds
// the process logger.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/yourusername/tablabaki/pkg/api"
)

// Config holds the server settings. Every field can be set through a
// TABLABAKI_* environment variable; command-line flags take precedence.
type Config struct {
	Host            string        `env:"TABLABAKI_HOST"             envDefault:"localhost"`
	Port            int           `env:"TABLABAKI_PORT"             envDefault:"8080"`
	ReadTimeout     time.Duration `env:"TABLABAKI_READ_TIMEOUT"     envDefault:"30s"`
	WriteTimeout    time.Duration `env:"TABLABAKI_WRITE_TIMEOUT"    envDefault:"30s"`
	IdleTimeout     time.Duration `env:"TABLABAKI_IDLE_TIMEOUT"     envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"TABLABAKI_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxFastWorkers  int           `env:"TABLABAKI_MAX_FAST_WORKERS" envDefault:"64"`
	MaxSlowWorkers  int           `env:"TABLABAKI_MAX_SLOW_WORKERS" envDefault:"4"`

	// VariantsDir serves variant files from disk instead of the embedded
	// catalog.
	VariantsDir string `env:"TABLABAKI_VARIANTS_DIR"`

	LogLevel  string `env:"TABLABAKI_LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"TABLABAKI_LOG_FORMAT" envDefault:"json"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads and validates the environment configuration.
func Load() (Config, error) {
	var c Config
	if err := ParseEnv(&c); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks values the environment parser cannot.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format %q", c.LogFormat)
	}
	return nil
}

// ServerConfig maps the settings onto the API server configuration.
func (c Config) ServerConfig() api.ServerConfig {
	return api.ServerConfig{
		Host:            c.Host,
		Port:            c.Port,
		ReadTimeout:     c.ReadTimeout,
		WriteTimeout:    c.WriteTimeout,
		IdleTimeout:     c.IdleTimeout,
		ShutdownTimeout: c.ShutdownTimeout,
		MaxFastWorkers:  c.MaxFastWorkers,
		MaxSlowWorkers:  c.MaxSlowWorkers,
	}
}

// ParseLogLevel parses debug, info, warn or error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q", s)
	}
}

// NewLogger builds the process logger. Unknown levels fall back to info
// and unknown formats to JSON.
func NewLogger(w io.Writer, level, format string) *slog.Logger {
	lvl, err := ParseLogLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

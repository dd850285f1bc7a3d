// Package config provides configuration loading for storequery.
//
// Configuration is loaded from a YAML file, then overridden by environment
// variables. Defaults are production-ready; a zero-config start works.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the complete storequery configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Storage   StorageConfig   `koanf:"storage"`
	Logging   LoggingConfig   `koanf:"logging"`
	Query     QueryConfig     `koanf:"query"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// StorageConfig holds the SQLite database location.
type StorageConfig struct {
	Path string `koanf:"path"`
}

// LoggingConfig holds logger construction settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // json or console
}

// QueryConfig holds request-time bounds for engine operations. These mirror
// the engine defaults and exist so operators can tighten them.
type QueryConfig struct {
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// RateLimitConfig holds per-client HTTP rate limiting settings.
type RateLimitConfig struct {
	Enabled bool    `koanf:"enabled"`
	RPS     float64 `koanf:"rps"`
	Burst   int     `koanf:"burst"`
}

// Default returns the configuration used when no file or env overrides exist.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Path: "storequery.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Query: QueryConfig{
			RequestTimeout: 15 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			RPS:     20,
			Burst:   40,
		},
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}
	if c.Storage.Path == "" {
		errs = append(errs, errors.New("storage.path is required"))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown logging.level %q", c.Logging.Level))
	}
	if c.Query.RequestTimeout <= 0 {
		errs = append(errs, errors.New("query.request_timeout must be positive"))
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.RPS <= 0 {
			errs = append(errs, errors.New("ratelimit.rps must be positive"))
		}
		if c.RateLimit.Burst <= 0 {
			errs = append(errs, errors.New("ratelimit.burst must be positive"))
		}
	}
	return errors.Join(errs...)
}

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// envPrefix is stripped from environment variables before mapping them
	// onto config keys: STOREQUERY_SERVER_PORT -> server.port.
	envPrefix = "STOREQUERY_"

	maxConfigFileSize = 1 << 20 // 1MB
)

// Load reads configuration with the following precedence (highest first):
//
//  1. Environment variables (STOREQUERY_SERVER_PORT, STOREQUERY_LOGGING_LEVEL, ...)
//  2. YAML config file (configPath; skipped when empty or absent)
//  3. Defaults
//
// Environment variables map single underscores to key separators, so nested
// keys with underscores in their names use the YAML file.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	cfg := Default()

	if configPath != "" {
		if err := loadFile(k, configPath); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment config: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadFile(k *koanf.Koanf, path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}
	// Config may hold operational detail; reject group/world-readable files.
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		return fmt.Errorf("config file %s has permissions %04o, want 0600", path, perm)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

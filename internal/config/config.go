// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

// Package config loads runtime configuration from defaults, an optional
// YAML file, and command-line flags, in that order of precedence.
package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config holds the runtime configuration.
type Config struct {
	DatabaseURL string `koanf:"database_url"`
	LogFormat   string `koanf:"log_format"`
	MetricsAddr string `koanf:"metrics_addr"`
	AutoMigrate bool   `koanf:"auto_migrate"`
}

// Default returns the built-in configuration defaults.
func Default() Config {
	return Config{
		LogFormat:   "json",
		MetricsAddr: "127.0.0.1:9100",
	}
}

// Load builds the configuration from defaults, the YAML file at path
// (skipped when path is empty), and the given flag set (skipped when
// nil). An unset database_url falls back to the DATABASE_URL
// environment variable.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		// Flag names use dashes; config keys use underscores.
		provider := posflag.ProviderWithValue(flags, ".", k, func(key, value string) (string, any) {
			return strings.ReplaceAll(key, "-", "_"), value
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("operation", "load flags").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("operation", "unmarshal config").Wrap(err)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").Errorf("log_format must be 'json' or 'text', got %q", c.LogFormat)
	}
	return nil
}

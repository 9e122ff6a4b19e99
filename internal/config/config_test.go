// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loreforge/loreforge/internal/config"
	"github.com/loreforge/loreforge/pkg/errutil"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "127.0.0.1:9100", cfg.MetricsAddr)
	assert.False(t, cfg.AutoMigrate)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
log_format: text
metrics_addr: "127.0.0.1:9200"
database_url: "postgres://localhost:5432/loreforge"
`)

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "127.0.0.1:9200", cfg.MetricsAddr)
	assert.Equal(t, "postgres://localhost:5432/loreforge", cfg.DatabaseURL)
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	path := writeConfigFile(t, "log_format: text\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-format", "json", "")
	require.NoError(t, flags.Set("log-format", "json"))

	cfg, err := config.Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_DatabaseURLFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env-host:5432/loreforge")

	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres://env-host:5432/loreforge", cfg.DatabaseURL)
}

func TestLoad_FileWinsOverEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env-host:5432/loreforge")
	path := writeConfigFile(t, "database_url: postgres://file-host:5432/loreforge\n")

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres://file-host:5432/loreforge", cfg.DatabaseURL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load("/nonexistent/config.yaml", nil)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_LOAD_FAILED")
}

func TestLoad_InvalidLogFormat(t *testing.T) {
	path := writeConfigFile(t, "log_format: xml\n")

	_, err := config.Load(path, nil)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
}

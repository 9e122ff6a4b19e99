// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateCommand_Properties(t *testing.T) {
	cmd := NewMigrateCmd()

	assert.Equal(t, "migrate", cmd.Use)
	assert.Contains(t, cmd.Short, "migration", "Short description should mention migration")
	assert.Contains(t, cmd.Long, "PostgreSQL", "Long description should mention PostgreSQL")
	assert.NotNil(t, cmd.Flags().Lookup("down"))
	assert.NotNil(t, cmd.Flags().Lookup("steps"))
	assert.NotNil(t, cmd.Flags().Lookup("version"))
}

func TestMigrateCommand_Help(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetArgs([]string{"migrate", "--help"})

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "--config", "Migrate missing --config flag")
	assert.Contains(t, output, "--down")
	assert.Contains(t, output, "--steps")
}

func TestMigrateCommand_DownAndStepsExclusive(t *testing.T) {
	configFile = ""

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"migrate", "--down", "--steps", "2"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestMigrateCommand_NoDatabaseURL(t *testing.T) {
	configFile = ""
	t.Setenv("DATABASE_URL", "")

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"migrate"})

	err := cmd.Execute()
	require.Error(t, err, "Expected error when DATABASE_URL is not set")
	assert.Contains(t, err.Error(), "database_url")
}

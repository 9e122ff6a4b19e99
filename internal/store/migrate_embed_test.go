// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

package store

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsFS_EmbeddedFiles(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err, "should read embedded migrations directory")

	fileNames := make(map[string]bool)
	for _, entry := range entries {
		fileNames[entry.Name()] = true
	}

	// Every up migration needs a matching down migration.
	assert.True(t, fileNames["000001_initial.up.sql"])
	assert.True(t, fileNames["000001_initial.down.sql"])

	pattern := regexp.MustCompile(`^\d{6}_\w+\.(up|down)\.sql$`)
	for _, entry := range entries {
		assert.True(t, pattern.MatchString(entry.Name()),
			"file %s should match pattern NNNNNN_name.(up|down).sql", entry.Name())
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

package store

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loreforge/loreforge/pkg/errutil"
)

func TestNewMigrator_InvalidURL(t *testing.T) {
	_, err := NewMigrator("invalid://url")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MIGRATION_INIT_FAILED")
}

// Verifies that postgresql:// URLs are rewritten for the golang-migrate
// pgx/v5 driver. The connection fails, but not with an unknown-driver
// error.
func TestNewMigrator_PostgresqlScheme(t *testing.T) {
	_, err := NewMigrator("postgresql://localhost:5432/testdb")
	require.Error(t, err, "should fail due to connection, not URL scheme")
	errutil.AssertErrorCode(t, err, "MIGRATION_INIT_FAILED")
	assert.NotContains(t, err.Error(), "unknown driver")
}

// mockMigrate implements migrateIface for testing.
type mockMigrate struct {
	upErr          error
	downErr        error
	stepsErr       error
	versionVal     uint
	versionErr     error
	dirty          bool
	forceErr       error
	closeSourceErr error
	closeDbErr     error
}

func (m *mockMigrate) Up() error                    { return m.upErr }
func (m *mockMigrate) Down() error                  { return m.downErr }
func (m *mockMigrate) Steps(_ int) error            { return m.stepsErr }
func (m *mockMigrate) Version() (uint, bool, error) { return m.versionVal, m.dirty, m.versionErr }
func (m *mockMigrate) Force(_ int) error            { return m.forceErr }
func (m *mockMigrate) Close() (error, error)        { return m.closeSourceErr, m.closeDbErr }

func TestMigrator_Up(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{}}
		require.NoError(t, m.Up())
	})
	t.Run("no change treated as success", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{upErr: migrate.ErrNoChange}}
		require.NoError(t, m.Up())
	})
	t.Run("error", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{upErr: errors.New("database locked")}}
		err := m.Up()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_UP_FAILED")
	})
}

func TestMigrator_Down(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{}}
		require.NoError(t, m.Down())
	})
	t.Run("no change treated as success", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{downErr: migrate.ErrNoChange}}
		require.NoError(t, m.Down())
	})
	t.Run("error", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{downErr: errors.New("constraint violation")}}
		err := m.Down()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_DOWN_FAILED")
	})
}

func TestMigrator_Steps(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{}}
		require.NoError(t, m.Steps(1))
	})
	t.Run("zero is a no-op", func(t *testing.T) {
		// golang-migrate returns ErrNoChange for n=0.
		m := &Migrator{m: &mockMigrate{stepsErr: migrate.ErrNoChange}}
		require.NoError(t, m.Steps(0))
	})
	t.Run("error", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{stepsErr: errors.New("invalid step")}}
		err := m.Steps(5)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_STEPS_FAILED")
	})
}

func TestMigrator_Version(t *testing.T) {
	t.Run("returns version and dirty state", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{versionVal: 1, dirty: true}}
		version, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Equal(t, uint(1), version)
		assert.True(t, dirty)
	})
	t.Run("nil version means fresh database", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{versionErr: migrate.ErrNilVersion}}
		version, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Equal(t, uint(0), version)
		assert.False(t, dirty)
	})
	t.Run("error", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{versionErr: errors.New("connection lost")}}
		_, _, err := m.Version()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_VERSION_FAILED")
	})
}

func TestMigrator_Force(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{}}
		require.NoError(t, m.Force(1))
	})
	t.Run("negative version rejected", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{}}
		err := m.Force(-1)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "INVALID_VERSION")
	})
	t.Run("error", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{forceErr: errors.New("invalid version")}}
		err := m.Force(5)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_FORCE_FAILED")
	})
}

func TestMigrator_Close(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{}}
		require.NoError(t, m.Close())
	})
	t.Run("source error", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{closeSourceErr: errors.New("source close failed")}}
		err := m.Close()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_CLOSE_FAILED")
		errutil.AssertErrorContext(t, err, "component", "source")
	})
	t.Run("database error", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{closeDbErr: errors.New("db close failed")}}
		err := m.Close()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_CLOSE_FAILED")
		errutil.AssertErrorContext(t, err, "component", "database")
	})
	t.Run("both errors reported", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{
			closeSourceErr: errors.New("source close failed"),
			closeDbErr:     errors.New("db close failed"),
		}}
		err := m.Close()
		require.Error(t, err)
		errutil.AssertErrorContext(t, err, "component", "both")
		assert.Contains(t, err.Error(), "source close failed")
		assert.Contains(t, err.Error(), "db close failed")
	})
}

func TestMigrator_PendingMigrations(t *testing.T) {
	t.Run("fresh database has all migrations pending", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{versionErr: migrate.ErrNilVersion}}
		pending, err := m.PendingMigrations()
		require.NoError(t, err)
		assert.Equal(t, []uint{1}, pending)
	})
	t.Run("nothing pending at latest", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{versionVal: 1}}
		pending, err := m.PendingMigrations()
		require.NoError(t, err)
		assert.Empty(t, pending)
	})
	t.Run("version error", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{versionErr: errors.New("connection lost")}}
		_, err := m.PendingMigrations()
		require.Error(t, err)
		errutil.AssertErrorContext(t, err, "operation", "get pending migrations")
	})
}

func TestMigrator_AppliedMigrations(t *testing.T) {
	t.Run("fresh database has none applied", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{versionErr: migrate.ErrNilVersion}}
		applied, err := m.AppliedMigrations()
		require.NoError(t, err)
		assert.Empty(t, applied)
	})
	t.Run("all applied at latest", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{versionVal: 1}}
		applied, err := m.AppliedMigrations()
		require.NoError(t, err)
		assert.Equal(t, []uint{1}, applied)
	})
}

func TestMigrationName(t *testing.T) {
	t.Run("known version", func(t *testing.T) {
		name, err := MigrationName(1)
		require.NoError(t, err)
		assert.Equal(t, "000001_initial", name)
	})
	t.Run("unknown version is not an error", func(t *testing.T) {
		name, err := MigrationName(999)
		require.NoError(t, err)
		assert.Equal(t, "", name)
	})
}

func TestAllMigrationVersions_ReturnsCopy(t *testing.T) {
	versions1, err := allMigrationVersions()
	require.NoError(t, err)
	require.NotEmpty(t, versions1)

	original := versions1[0]
	versions1[0] = 99999

	versions2, err := allMigrationVersions()
	require.NoError(t, err)
	assert.Equal(t, original, versions2[0], "mutation should not affect cache")
}

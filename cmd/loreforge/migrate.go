// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

package main

import (
	"log/slog"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/loreforge/loreforge/internal/store"
)

// migrateConfig holds configuration for the migrate command.
type migrateConfig struct {
	down        bool
	steps       int
	showVersion bool
}

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cfg := &migrateConfig{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Run database migrations against the PostgreSQL database.
By default all pending migrations are applied.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd, cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.down, "down", false, "roll back the most recent migration")
	cmd.Flags().IntVar(&cfg.steps, "steps", 0, "apply exactly n migrations (negative rolls back)")
	cmd.Flags().BoolVar(&cfg.showVersion, "version", false, "print the current migration version and exit")

	return cmd
}

func runMigrate(cmd *cobra.Command, cfg *migrateConfig) error {
	if cfg.down && cfg.steps != 0 {
		return oops.Code("CONFIG_INVALID").Errorf("--down and --steps are mutually exclusive")
	}

	databaseURL, err := resolveDatabaseURL(cmd)
	if err != nil {
		return err
	}

	m, err := store.NewMigrator(databaseURL)
	if err != nil {
		return oops.Code("MIGRATION_INIT_FAILED").With("operation", "create migrator").Wrap(err)
	}
	defer closeMigrator(m)

	if cfg.showVersion {
		version, dirty, err := m.Version()
		if err != nil {
			return oops.Code("MIGRATION_STATUS_FAILED").With("operation", "read version").Wrap(err)
		}
		cmd.Printf("version: %d, dirty: %v\n", version, dirty)
		return nil
	}

	switch {
	case cfg.down:
		cmd.Println("Rolling back the most recent migration...")
		if err := m.Steps(-1); err != nil {
			return oops.Code("MIGRATION_FAILED").With("operation", "roll back migration").Wrap(err)
		}
	case cfg.steps != 0:
		cmd.Printf("Applying %d migration step(s)...\n", cfg.steps)
		if err := m.Steps(cfg.steps); err != nil {
			return oops.Code("MIGRATION_FAILED").With("operation", "apply migration steps").Wrap(err)
		}
	default:
		cmd.Println("Running migrations...")
		if err := m.Up(); err != nil {
			return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
		}
	}

	cmd.Println("Migrations completed successfully")
	return nil
}

func closeMigrator(m *store.Migrator) {
	if err := m.Close(); err != nil {
		slog.Warn("error closing migrator", "error", err)
	}
}

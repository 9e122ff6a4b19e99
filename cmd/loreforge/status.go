// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/loreforge/loreforge/internal/store"
)

// MigrationStatus holds the schema state reported by the status command.
type MigrationStatus struct {
	Version uint     `json:"version"`
	Dirty   bool     `json:"dirty"`
	Pending []string `json:"pending,omitempty"`
}

// statusConfig holds configuration for the status command.
type statusConfig struct {
	jsonOutput bool
}

// migrationReader is the subset of store.Migrator used by status.
type migrationReader interface {
	Version() (uint, bool, error)
	PendingMigrations() ([]uint, error)
}

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	cfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show database schema status",
		Long:  `Show the current migration version, dirty state, and any pending migrations.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output status as JSON")

	return cmd
}

func runStatus(cmd *cobra.Command, cfg *statusConfig) error {
	databaseURL, err := resolveDatabaseURL(cmd)
	if err != nil {
		return err
	}

	m, err := store.NewMigrator(databaseURL)
	if err != nil {
		return oops.Code("MIGRATION_INIT_FAILED").With("operation", "create migrator").Wrap(err)
	}
	defer closeMigrator(m)

	status, err := collectMigrationStatus(m)
	if err != nil {
		return err
	}

	if cfg.jsonOutput {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return oops.Code("STATUS_FORMAT_FAILED").Wrap(err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(formatMigrationStatus(status))
	return nil
}

// collectMigrationStatus reads the schema state from the migrator.
func collectMigrationStatus(m migrationReader) (*MigrationStatus, error) {
	version, dirty, err := m.Version()
	if err != nil {
		return nil, oops.Code("MIGRATION_STATUS_FAILED").With("operation", "read version").Wrap(err)
	}

	pending, err := m.PendingMigrations()
	if err != nil {
		return nil, oops.Code("MIGRATION_STATUS_FAILED").With("operation", "list pending migrations").Wrap(err)
	}

	status := &MigrationStatus{Version: version, Dirty: dirty}
	for _, v := range pending {
		name, nameErr := store.MigrationName(v)
		if nameErr != nil {
			name = fmt.Sprintf("%06d", v)
		}
		status.Pending = append(status.Pending, name)
	}
	return status, nil
}

// formatMigrationStatus formats the status as human-readable text.
func formatMigrationStatus(status *MigrationStatus) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Schema version: %d\n", status.Version)
	fmt.Fprintf(&b, "Dirty: %v\n", status.Dirty)
	if len(status.Pending) == 0 {
		b.WriteString("Pending migrations: none")
	} else {
		fmt.Fprintf(&b, "Pending migrations (%d):\n", len(status.Pending))
		for _, name := range status.Pending {
			fmt.Fprintf(&b, "  %s\n", name)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

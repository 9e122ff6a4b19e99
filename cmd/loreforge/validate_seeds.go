// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/loreforge/loreforge/internal/seed"
)

// validateSeedsConfig holds configuration for the validate-seeds command.
type validateSeedsConfig struct {
	file string
}

// NewValidateSeedsCmd creates the validate-seeds subcommand.
func NewValidateSeedsCmd() *cobra.Command {
	cfg := &validateSeedsConfig{}

	cmd := &cobra.Command{
		Use:   "validate-seeds",
		Short: "Validate a seed file without touching the database",
		Long: `Validates a YAML seed file against the JSON schema.
Does NOT require a database connection.
Exits with code 0 on success, non-zero on failure.

Useful in CI pipelines to catch seed file errors early:
  loreforge validate-seeds --file seeds.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidateSeeds(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.file, "file", "seeds.yaml", "seed file path")

	return cmd
}

func runValidateSeeds(cmd *cobra.Command, cfg *validateSeedsConfig) error {
	f, err := seed.Load(cfg.file)
	if err != nil {
		return err
	}

	slog.Info("seed file valid", "path", cfg.file, "worlds", len(f.Worlds))
	cmd.Printf("%s: valid (%d worlds)\n", cfg.file, len(f.Worlds))
	return nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/loreforge/loreforge/internal/seed"
	"github.com/loreforge/loreforge/internal/store"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// seedConfig holds configuration for the seed command.
type seedConfig struct {
	file    string
	only    string
	timeout time.Duration
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load world data from a seed file",
		Long: `Validates a YAML seed file against the JSON schema and loads it into
the database. Rows carry fixed ULIDs chosen in the file, so running
the command again does not create duplicates.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.file, "file", "seeds.yaml", "seed file path")
	cmd.Flags().StringVar(&cfg.only, "only", "", "apply only matching sections (glob, e.g. worlds or *types)")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")

	return cmd
}

func runSeed(cmd *cobra.Command, cfg *seedConfig) error {
	// Validate the file before touching the database.
	f, err := seed.Load(cfg.file)
	if err != nil {
		return err
	}

	databaseURL, err := resolveDatabaseURL(cmd)
	if err != nil {
		return err
	}

	// Add timeout to prevent indefinite hangs
	// Use cmd.Context() to respect SIGINT/SIGTERM signals
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.timeout)
	defer cancel()

	cmd.Println("Connecting to database...")
	pool, err := store.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	applier, err := seed.NewApplier(pool, cfg.only)
	if err != nil {
		return err
	}
	if err := applier.Apply(ctx, f); err != nil {
		return err
	}

	cmd.Printf("Seed complete: %d inserted, %d skipped\n", applier.Applied(), applier.Skipped())
	return nil
}

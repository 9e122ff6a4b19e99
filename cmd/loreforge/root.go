// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/loreforge/loreforge/internal/config"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Loreforge CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loreforge",
		Short: "Loreforge - a collaborative worldbuilding backend",
		Long: `Loreforge is a multi-tenant worldbuilding and campaign management
backend with scoped access control, entity relationship graphs,
location hierarchies, and custom fields.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedCmd())
	cmd.AddCommand(NewValidateSeedsCmd())
	cmd.AddCommand(NewStatusCmd())

	return cmd
}

// resolveDatabaseURL loads the configuration and returns the database
// URL, erroring when none is set anywhere.
func resolveDatabaseURL(cmd *cobra.Command) (string, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return "", err
	}
	if cfg.DatabaseURL == "" {
		return "", oops.Code("CONFIG_INVALID").Errorf("database_url is not set (use the DATABASE_URL environment variable or the config file)")
	}
	return cfg.DatabaseURL, nil
}

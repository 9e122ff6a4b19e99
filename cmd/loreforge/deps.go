// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

package main

import (
	"context"

	"github.com/spf13/pflag"

	"github.com/loreforge/loreforge/internal/config"
	"github.com/loreforge/loreforge/internal/observability"
	"github.com/loreforge/loreforge/internal/store"
)

// ServeDeps contains injectable dependencies for the serve command.
// All fields with nil values will use their default implementations.
type ServeDeps struct {
	// ConfigLoader loads the runtime configuration.
	// Default: config.Load
	ConfigLoader func(path string, flags *pflag.FlagSet) (*config.Config, error)

	// PoolFactory creates a database connection pool.
	// Default: store.Connect
	PoolFactory func(ctx context.Context, databaseURL string) (Pool, error)

	// MigratorFactory creates a migrator for startup auto-migration.
	// Default: store.NewMigrator
	MigratorFactory func(databaseURL string) (AutoMigrator, error)

	// ObservabilityServerFactory creates an observability server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer
}

// Pool interface wraps the methods used from pgxpool.Pool.
type Pool interface {
	Ping(ctx context.Context) error
	Close()
}

// AutoMigrator interface wraps the methods used from store.Migrator
// during startup auto-migration.
type AutoMigrator interface {
	Up() error
	Close() error
}

// ObservabilityServer interface wraps the methods used from
// observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
}

var _ AutoMigrator = (*store.Migrator)(nil)
var _ ObservabilityServer = (*observability.Server)(nil)

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/loreforge/loreforge/internal/config"
	"github.com/loreforge/loreforge/internal/logging"
	"github.com/loreforge/loreforge/internal/observability"
	"github.com/loreforge/loreforge/internal/store"
)

// Timeout applied to shutdown and readiness probes.
const (
	shutdownTimeout  = 5 * time.Second
	readinessTimeout = 2 * time.Second
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Loreforge server",
		Long: `Start the Loreforge server: connects to PostgreSQL, optionally runs
pending migrations, and serves metrics and health endpoints until
interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServeWithDeps(cmd.Context(), cmd, nil)
		},
	}

	defaults := config.Default()
	cmd.Flags().String("database-url", "", "PostgreSQL connection URL")
	cmd.Flags().String("log-format", defaults.LogFormat, "log format (json or text)")
	cmd.Flags().String("metrics-addr", defaults.MetricsAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().Bool("auto-migrate", defaults.AutoMigrate, "run pending migrations on startup")

	return cmd
}

// runServeWithDeps starts the server with injectable dependencies.
// If deps is nil, default implementations are used.
func runServeWithDeps(ctx context.Context, cmd *cobra.Command, deps *ServeDeps) error {
	if deps == nil {
		deps = &ServeDeps{}
	}

	// Set up default factories
	if deps.ConfigLoader == nil {
		deps.ConfigLoader = config.Load
	}
	if deps.PoolFactory == nil {
		deps.PoolFactory = func(ctx context.Context, databaseURL string) (Pool, error) {
			return store.Connect(ctx, databaseURL)
		}
	}
	if deps.MigratorFactory == nil {
		deps.MigratorFactory = func(databaseURL string) (AutoMigrator, error) {
			return store.NewMigrator(databaseURL)
		}
	}
	if deps.ObservabilityServerFactory == nil {
		deps.ObservabilityServerFactory = func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, readinessChecker)
		}
	}

	cfg, err := deps.ConfigLoader(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	logging.SetDefault("loreforge", version, cfg.LogFormat)

	slog.Info("starting server",
		"log_format", cfg.LogFormat,
		"metrics_addr", cfg.MetricsAddr,
	)

	if cfg.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database_url is not set (use the DATABASE_URL environment variable or the config file)")
	}

	if cfg.AutoMigrate {
		if err := runAutoMigration(cfg.DatabaseURL, deps.MigratorFactory); err != nil {
			return err
		}
	}

	pool, err := deps.PoolFactory(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	slog.Info("connected to database")

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Start observability server if configured
	var obsServer ObservabilityServer
	if cfg.MetricsAddr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.MetricsAddr, func() bool {
			pingCtx, pingCancel := context.WithTimeout(context.Background(), readinessTimeout)
			defer pingCancel()
			return pool.Ping(pingCtx) == nil
		})
		obsErrChan, startErr := obsServer.Start()
		if startErr != nil {
			return oops.Code("OBSERVABILITY_START_FAILED").With("addr", cfg.MetricsAddr).Wrap(startErr)
		}
		// Monitor observability server errors - cancel context on error
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
		slog.Info("observability server started", "addr", obsServer.Addr())
	}

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("Server started")
	slog.Info("server ready")

	// Wait for shutdown signal or error
	select {
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
		slog.Info("context cancelled, shutting down")
	}

	// Graceful shutdown
	slog.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			slog.Warn("error stopping observability server", "error", err)
		}
	}

	slog.Info("shutdown complete")
	return nil
}

// runAutoMigration applies pending migrations before the server starts.
func runAutoMigration(databaseURL string, factory func(string) (AutoMigrator, error)) error {
	migrator, err := factory(databaseURL)
	if err != nil {
		return oops.Code("MIGRATION_INIT_FAILED").With("operation", "create migrator").Wrap(err)
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			slog.Warn("error closing migrator, connection may leak", "error", closeErr)
		}
	}()

	if err := migrator.Up(); err != nil {
		return oops.Code("AUTO_MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
	}

	slog.Info("auto-migration complete")
	return nil
}

// monitorServerErrors monitors a server's error channel and cancels the context on error.
// It exits when either an error is received, the channel is closed, or the context is cancelled.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			// Channel closed, server stopped gracefully
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
		// Context cancelled, exit monitoring
	}
}

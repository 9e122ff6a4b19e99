// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

// Package store manages the PostgreSQL connection pool and schema
// migrations.
package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

const (
	connectBaseBackoff = 500 * time.Millisecond
	connectMaxRetries  = 3
)

// Connect opens a pgx connection pool and verifies it with a ping.
// Transient ping failures are retried with exponential backoff, up to
// connectMaxRetries retries after the initial attempt.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONFIG_INVALID").With("operation", "parse database url").Wrap(err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "create connection pool").Wrap(err)
	}

	attempt := 0
	backoff := retry.WithMaxRetries(connectMaxRetries, retry.NewExponential(connectBaseBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := pool.Ping(ctx); err != nil {
			slog.Debug("database ping failed",
				"attempt", attempt,
				"error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("DB_PING_FAILED").With("attempts", attempt).Wrap(err)
	}

	return pool, nil
}

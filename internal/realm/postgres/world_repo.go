// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/loreforge/loreforge/internal/realm"
)

// WorldRepository implements realm.WorldRepository using PostgreSQL.
type WorldRepository struct {
	db DB
}

// NewWorldRepository creates a new WorldRepository.
func NewWorldRepository(db DB) *WorldRepository {
	return &WorldRepository{db: db}
}

// Get retrieves a world by ID.
func (r *WorldRepository) Get(ctx context.Context, id ulid.ULID) (*realm.World, error) {
	row := querierFrom(ctx, r.db).QueryRow(ctx, `
		SELECT id, name, architect_id, entity_scope, created_at
		FROM worlds WHERE id = $1
	`, id.String())

	var w realm.World
	var idStr, architectStr string
	err := row.Scan(&idStr, &w.Name, &architectStr, &w.EntityScope, &w.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("WORLD_NOT_FOUND").With("id", id.String()).Wrap(realm.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get world").With("id", id.String()).Wrap(err)
	}
	if w.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.With("operation", "parse world id").With("id", idStr).Wrap(err)
	}
	if w.ArchitectID, err = ulid.Parse(architectStr); err != nil {
		return nil, oops.With("operation", "parse architect id").With("architect_id", architectStr).Wrap(err)
	}
	return &w, nil
}

// Compile-time interface check.
var _ realm.WorldRepository = (*WorldRepository)(nil)

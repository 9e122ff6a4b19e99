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

// CharacterRepository implements realm.CharacterRepository using
// PostgreSQL.
type CharacterRepository struct {
	db DB
}

// NewCharacterRepository creates a new CharacterRepository.
func NewCharacterRepository(db DB) *CharacterRepository {
	return &CharacterRepository{db: db}
}

// Get retrieves a character by ID.
func (r *CharacterRepository) Get(ctx context.Context, id ulid.ULID) (*realm.Character, error) {
	row := querierFrom(ctx, r.db).QueryRow(ctx, `
		SELECT id, world_id, owner_id, name, created_at
		FROM characters WHERE id = $1
	`, id.String())

	var c realm.Character
	var idStr, worldStr, ownerStr string
	err := row.Scan(&idStr, &worldStr, &ownerStr, &c.Name, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("CHARACTER_NOT_FOUND").With("id", id.String()).Wrap(realm.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get character").With("id", id.String()).Wrap(err)
	}
	if c.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.With("operation", "parse character id").With("id", idStr).Wrap(err)
	}
	if c.WorldID, err = ulid.Parse(worldStr); err != nil {
		return nil, oops.With("operation", "parse world id").With("world_id", worldStr).Wrap(err)
	}
	if c.OwnerID, err = ulid.Parse(ownerStr); err != nil {
		return nil, oops.With("operation", "parse owner id").With("owner_id", ownerStr).Wrap(err)
	}
	return &c, nil
}

// Compile-time interface check.
var _ realm.CharacterRepository = (*CharacterRepository)(nil)

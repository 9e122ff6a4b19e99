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

// EntityRepository implements realm.EntityRepository using PostgreSQL.
type EntityRepository struct {
	db DB
}

// NewEntityRepository creates a new EntityRepository.
func NewEntityRepository(db DB) *EntityRepository {
	return &EntityRepository{db: db}
}

// Get retrieves an entity by ID.
func (r *EntityRepository) Get(ctx context.Context, id ulid.ULID) (*realm.Entity, error) {
	row := querierFrom(ctx, r.db).QueryRow(ctx, `
		SELECT id, world_id, entity_type_id, name, created_at, updated_at
		FROM entities WHERE id = $1
	`, id.String())
	e, err := scanEntityRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ENTITY_NOT_FOUND").With("id", id.String()).Wrap(realm.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get entity").With("id", id.String()).Wrap(err)
	}
	return e, nil
}

// Create persists a new entity.
// Callers must validate the entity before calling this method.
func (r *EntityRepository) Create(ctx context.Context, e *realm.Entity) error {
	_, err := querierFrom(ctx, r.db).Exec(ctx, `
		INSERT INTO entities (id, world_id, entity_type_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.ID.String(), e.WorldID.String(), e.EntityTypeID.String(), e.Name, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("ENTITY_EXISTS").With("id", e.ID.String()).Wrap(realm.ErrConflict)
		}
		return oops.With("operation", "create entity").With("id", e.ID.String()).Wrap(err)
	}
	return nil
}

// Update modifies an existing entity.
func (r *EntityRepository) Update(ctx context.Context, e *realm.Entity) error {
	result, err := querierFrom(ctx, r.db).Exec(ctx, `
		UPDATE entities SET entity_type_id = $2, name = $3, updated_at = $4
		WHERE id = $1
	`, e.ID.String(), e.EntityTypeID.String(), e.Name, e.UpdatedAt)
	if err != nil {
		return oops.With("operation", "update entity").With("id", e.ID.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ENTITY_NOT_FOUND").With("id", e.ID.String()).Wrap(realm.ErrNotFound)
	}
	return nil
}

// Delete removes an entity by ID.
func (r *EntityRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := querierFrom(ctx, r.db).Exec(ctx, `DELETE FROM entities WHERE id = $1`, id.String())
	if err != nil {
		return oops.With("operation", "delete entity").With("id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ENTITY_NOT_FOUND").With("id", id.String()).Wrap(realm.ErrNotFound)
	}
	return nil
}

// Names resolves display names for a set of entity IDs. Missing IDs are
// absent from the result.
func (r *EntityRepository) Names(ctx context.Context, ids []ulid.ULID) (map[ulid.ULID]string, error) {
	names := make(map[ulid.ULID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = id.String()
	}
	rows, err := querierFrom(ctx, r.db).Query(ctx, `
		SELECT id, name FROM entities WHERE id = ANY($1)
	`, idStrs)
	if err != nil {
		return nil, oops.With("operation", "resolve entity names").Wrap(err)
	}
	defer rows.Close()

	for rows.Next() {
		var idStr, name string
		if err := rows.Scan(&idStr, &name); err != nil {
			return nil, oops.With("operation", "scan entity name").Wrap(err)
		}
		id, err := ulid.Parse(idStr)
		if err != nil {
			return nil, oops.With("operation", "parse entity id").With("id", idStr).Wrap(err)
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate entity names").Wrap(err)
	}
	return names, nil
}

// List returns entities visible under the access filter, ordered by name.
func (r *EntityRepository) List(ctx context.Context, f realm.AccessFilter) ([]*realm.Entity, error) {
	args := []any{f.WorldID.String()}
	clause := accessClause(f, realm.KindEntity, "e", &args)
	rows, err := querierFrom(ctx, r.db).Query(ctx, `
		SELECT e.id, e.world_id, e.entity_type_id, e.name, e.created_at, e.updated_at
		FROM entities e
		WHERE e.world_id = $1 AND `+clause+`
		ORDER BY e.name ASC
	`, args...)
	if err != nil {
		return nil, oops.With("operation", "list entities").With("world_id", f.WorldID.String()).Wrap(err)
	}
	defer rows.Close()

	entities := make([]*realm.Entity, 0)
	for rows.Next() {
		e, err := scanEntityRow(rows)
		if err != nil {
			return nil, oops.With("operation", "scan entity").Wrap(err)
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate entities").Wrap(err)
	}
	return entities, nil
}

func scanEntityRow(row pgx.Row) (*realm.Entity, error) {
	var e realm.Entity
	var idStr, worldStr, typeStr string
	err := row.Scan(&idStr, &worldStr, &typeStr, &e.Name, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if e.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.With("operation", "parse entity id").With("id", idStr).Wrap(err)
	}
	if e.WorldID, err = ulid.Parse(worldStr); err != nil {
		return nil, oops.With("operation", "parse world id").With("world_id", worldStr).Wrap(err)
	}
	if e.EntityTypeID, err = ulid.Parse(typeStr); err != nil {
		return nil, oops.With("operation", "parse entity type id").With("entity_type_id", typeStr).Wrap(err)
	}
	return &e, nil
}

// Compile-time interface check.
var _ realm.EntityRepository = (*EntityRepository)(nil)

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

// RelationshipTypeRepository implements realm.RelationshipTypeRepository
// using PostgreSQL.
type RelationshipTypeRepository struct {
	db DB
}

// NewRelationshipTypeRepository creates a new RelationshipTypeRepository.
func NewRelationshipTypeRepository(db DB) *RelationshipTypeRepository {
	return &RelationshipTypeRepository{db: db}
}

// Get retrieves a relationship type by ID.
func (r *RelationshipTypeRepository) Get(ctx context.Context, id ulid.ULID) (*realm.RelationshipType, error) {
	row := querierFrom(ctx, r.db).QueryRow(ctx, `
		SELECT id, world_id, name, from_label, to_label, past_from_label, past_to_label, peerable
		FROM relationship_types WHERE id = $1
	`, id.String())

	var rt realm.RelationshipType
	var idStr, worldStr string
	err := row.Scan(&idStr, &worldStr, &rt.Name, &rt.FromLabel, &rt.ToLabel,
		&rt.PastFromLabel, &rt.PastToLabel, &rt.Peerable)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("RELATIONSHIP_TYPE_NOT_FOUND").With("id", id.String()).Wrap(realm.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get relationship type").With("id", id.String()).Wrap(err)
	}
	if rt.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.With("operation", "parse relationship type id").With("id", idStr).Wrap(err)
	}
	if rt.WorldID, err = ulid.Parse(worldStr); err != nil {
		return nil, oops.With("operation", "parse world id").With("world_id", worldStr).Wrap(err)
	}
	return &rt, nil
}

// RuleExists reports whether a directed rule allows fromEntityType →
// toEntityType under the relationship type.
func (r *RelationshipTypeRepository) RuleExists(ctx context.Context, typeID, fromEntityTypeID, toEntityTypeID ulid.ULID) (bool, error) {
	var exists bool
	err := querierFrom(ctx, r.db).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM relationship_type_rules
			WHERE relationship_type_id = $1 AND from_entity_type_id = $2 AND to_entity_type_id = $3
		)
	`, typeID.String(), fromEntityTypeID.String(), toEntityTypeID.String()).Scan(&exists)
	if err != nil {
		return false, oops.With("operation", "check relationship rule").
			With("relationship_type_id", typeID.String()).Wrap(err)
	}
	return exists, nil
}

// Compile-time interface check.
var _ realm.RelationshipTypeRepository = (*RelationshipTypeRepository)(nil)

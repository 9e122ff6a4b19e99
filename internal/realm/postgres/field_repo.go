// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

package postgres

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/loreforge/loreforge/internal/fieldstore"
	"github.com/loreforge/loreforge/internal/realm"
)

// FieldRepository implements fieldstore.DefinitionRepository and
// fieldstore.ValueRepository using PostgreSQL.
type FieldRepository struct {
	db DB
}

// NewFieldRepository creates a new FieldRepository.
func NewFieldRepository(db DB) *FieldRepository {
	return &FieldRepository{db: db}
}

// ListForWorld returns the field definitions of a world and resource
// kind.
func (r *FieldRepository) ListForWorld(ctx context.Context, worldID ulid.ULID, kind realm.ResourceKind) ([]fieldstore.Definition, error) {
	rows, err := querierFrom(ctx, r.db).Query(ctx, `
		SELECT id, world_id, resource_kind, key, field_type, created_at
		FROM field_definitions
		WHERE world_id = $1 AND resource_kind = $2
	`, worldID.String(), string(kind))
	if err != nil {
		return nil, oops.With("operation", "list field definitions").
			With("world_id", worldID.String()).Wrap(err)
	}
	defer rows.Close()

	defs := make([]fieldstore.Definition, 0)
	for rows.Next() {
		var def fieldstore.Definition
		var idStr, worldStr string
		if err := rows.Scan(&idStr, &worldStr, &def.Kind, &def.Key, &def.Type, &def.CreatedAt); err != nil {
			return nil, oops.With("operation", "scan field definition").Wrap(err)
		}
		if def.ID, err = ulid.Parse(idStr); err != nil {
			return nil, oops.With("operation", "parse field id").With("id", idStr).Wrap(err)
		}
		if def.WorldID, err = ulid.Parse(worldStr); err != nil {
			return nil, oops.With("operation", "parse world id").With("world_id", worldStr).Wrap(err)
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate field definitions").Wrap(err)
	}
	return defs, nil
}

// Upsert inserts or replaces a field value.
func (r *FieldRepository) Upsert(ctx context.Context, v *fieldstore.Value) error {
	_, err := querierFrom(ctx, r.db).Exec(ctx, `
		INSERT INTO field_values (field_id, resource_id, value_string, value_text, value_bool, value_number, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (field_id, resource_id) DO UPDATE SET
			value_string = EXCLUDED.value_string,
			value_text = EXCLUDED.value_text,
			value_bool = EXCLUDED.value_bool,
			value_number = EXCLUDED.value_number,
			updated_at = EXCLUDED.updated_at
	`, v.FieldID.String(), v.ResourceID.String(), v.String, v.Text, v.Bool, v.Number, v.UpdatedAt)
	if err != nil {
		return oops.With("operation", "upsert field value").
			With("field_id", v.FieldID.String()).
			With("resource_id", v.ResourceID.String()).Wrap(err)
	}
	return nil
}

// Delete removes a field value. Deleting an absent value is a no-op;
// clearing an unset field is not an error.
func (r *FieldRepository) Delete(ctx context.Context, fieldID, resourceID ulid.ULID) error {
	_, err := querierFrom(ctx, r.db).Exec(ctx, `
		DELETE FROM field_values WHERE field_id = $1 AND resource_id = $2
	`, fieldID.String(), resourceID.String())
	if err != nil {
		return oops.With("operation", "delete field value").
			With("field_id", fieldID.String()).
			With("resource_id", resourceID.String()).Wrap(err)
	}
	return nil
}

// ListForResource returns the stored field values of a resource.
func (r *FieldRepository) ListForResource(ctx context.Context, resourceID ulid.ULID) ([]fieldstore.Value, error) {
	rows, err := querierFrom(ctx, r.db).Query(ctx, `
		SELECT field_id, resource_id, value_string, value_text, value_bool, value_number, updated_at
		FROM field_values WHERE resource_id = $1
	`, resourceID.String())
	if err != nil {
		return nil, oops.With("operation", "list field values").
			With("resource_id", resourceID.String()).Wrap(err)
	}
	defer rows.Close()

	values := make([]fieldstore.Value, 0)
	for rows.Next() {
		var v fieldstore.Value
		var fieldStr, resourceStr string
		if err := rows.Scan(&fieldStr, &resourceStr, &v.String, &v.Text, &v.Bool, &v.Number, &v.UpdatedAt); err != nil {
			return nil, oops.With("operation", "scan field value").Wrap(err)
		}
		if v.FieldID, err = ulid.Parse(fieldStr); err != nil {
			return nil, oops.With("operation", "parse field id").With("field_id", fieldStr).Wrap(err)
		}
		if v.ResourceID, err = ulid.Parse(resourceStr); err != nil {
			return nil, oops.With("operation", "parse resource id").With("resource_id", resourceStr).Wrap(err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate field values").Wrap(err)
	}
	return values, nil
}

// Compile-time interface checks.
var (
	_ fieldstore.DefinitionRepository = (*FieldRepository)(nil)
	_ fieldstore.ValueRepository      = (*FieldRepository)(nil)
)

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

// LocationRepository implements realm.LocationRepository using
// PostgreSQL.
type LocationRepository struct {
	db DB
}

// NewLocationRepository creates a new LocationRepository.
func NewLocationRepository(db DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// Get retrieves a location by ID.
func (r *LocationRepository) Get(ctx context.Context, id ulid.ULID) (*realm.Location, error) {
	row := querierFrom(ctx, r.db).QueryRow(ctx, `
		SELECT id, world_id, location_type_id, parent_id, name, created_at
		FROM locations WHERE id = $1
	`, id.String())
	loc, err := scanLocationRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("LOCATION_NOT_FOUND").With("id", id.String()).Wrap(realm.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get location").With("id", id.String()).Wrap(err)
	}
	return loc, nil
}

// Create persists a new location.
// Callers must validate the location before calling this method.
func (r *LocationRepository) Create(ctx context.Context, loc *realm.Location) error {
	_, err := querierFrom(ctx, r.db).Exec(ctx, `
		INSERT INTO locations (id, world_id, location_type_id, parent_id, name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, loc.ID.String(), loc.WorldID.String(), loc.LocationTypeID.String(),
		ulidToStringPtr(loc.ParentID), loc.Name, loc.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("LOCATION_EXISTS").With("id", loc.ID.String()).Wrap(realm.ErrConflict)
		}
		return oops.With("operation", "create location").With("id", loc.ID.String()).Wrap(err)
	}
	return nil
}

// Update modifies an existing location, including re-parenting.
func (r *LocationRepository) Update(ctx context.Context, loc *realm.Location) error {
	result, err := querierFrom(ctx, r.db).Exec(ctx, `
		UPDATE locations SET location_type_id = $2, parent_id = $3, name = $4
		WHERE id = $1
	`, loc.ID.String(), loc.LocationTypeID.String(), ulidToStringPtr(loc.ParentID), loc.Name)
	if err != nil {
		return oops.With("operation", "update location").With("id", loc.ID.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("LOCATION_NOT_FOUND").With("id", loc.ID.String()).Wrap(realm.ErrNotFound)
	}
	return nil
}

// Delete removes a location by ID.
func (r *LocationRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := querierFrom(ctx, r.db).Exec(ctx, `DELETE FROM locations WHERE id = $1`, id.String())
	if err != nil {
		return oops.With("operation", "delete location").With("id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("LOCATION_NOT_FOUND").With("id", id.String()).Wrap(realm.ErrNotFound)
	}
	return nil
}

// HasChildren reports whether any location has this one as parent.
func (r *LocationRepository) HasChildren(ctx context.Context, id ulid.ULID) (bool, error) {
	var exists bool
	err := querierFrom(ctx, r.db).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM locations WHERE parent_id = $1)
	`, id.String()).Scan(&exists)
	if err != nil {
		return false, oops.With("operation", "check location children").With("id", id.String()).Wrap(err)
	}
	return exists, nil
}

// List returns locations visible under the access filter, ordered by
// name.
func (r *LocationRepository) List(ctx context.Context, f realm.AccessFilter) ([]*realm.Location, error) {
	args := []any{f.WorldID.String()}
	clause := accessClause(f, realm.KindLocation, "l", &args)
	rows, err := querierFrom(ctx, r.db).Query(ctx, `
		SELECT l.id, l.world_id, l.location_type_id, l.parent_id, l.name, l.created_at
		FROM locations l
		WHERE l.world_id = $1 AND `+clause+`
		ORDER BY l.name ASC
	`, args...)
	if err != nil {
		return nil, oops.With("operation", "list locations").With("world_id", f.WorldID.String()).Wrap(err)
	}
	defer rows.Close()

	locations := make([]*realm.Location, 0)
	for rows.Next() {
		loc, err := scanLocationRow(rows)
		if err != nil {
			return nil, oops.With("operation", "scan location").Wrap(err)
		}
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate locations").Wrap(err)
	}
	return locations, nil
}

func scanLocationRow(row pgx.Row) (*realm.Location, error) {
	var loc realm.Location
	var idStr, worldStr, typeStr string
	var parentStr *string
	err := row.Scan(&idStr, &worldStr, &typeStr, &parentStr, &loc.Name, &loc.CreatedAt)
	if err != nil {
		return nil, err
	}
	if loc.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.With("operation", "parse location id").With("id", idStr).Wrap(err)
	}
	if loc.WorldID, err = ulid.Parse(worldStr); err != nil {
		return nil, oops.With("operation", "parse world id").With("world_id", worldStr).Wrap(err)
	}
	if loc.LocationTypeID, err = ulid.Parse(typeStr); err != nil {
		return nil, oops.With("operation", "parse location type id").With("location_type_id", typeStr).Wrap(err)
	}
	if loc.ParentID, err = parseOptionalULID(parentStr, "parent_id"); err != nil {
		return nil, err
	}
	return &loc, nil
}

// Compile-time interface check.
var _ realm.LocationRepository = (*LocationRepository)(nil)

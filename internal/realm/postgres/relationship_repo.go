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

const relationshipColumns = `id, world_id, relationship_type_id, from_entity_id, to_entity_id,
	peer_group_id, status, expired_at, visibility, visibility_ref_id, created_by_id, created_at`

// RelationshipRepository implements realm.RelationshipRepository using
// PostgreSQL.
type RelationshipRepository struct {
	db DB
}

// NewRelationshipRepository creates a new RelationshipRepository.
func NewRelationshipRepository(db DB) *RelationshipRepository {
	return &RelationshipRepository{db: db}
}

// Get retrieves a relationship by ID.
func (r *RelationshipRepository) Get(ctx context.Context, id ulid.ULID) (*realm.Relationship, error) {
	row := querierFrom(ctx, r.db).QueryRow(ctx, `
		SELECT `+relationshipColumns+` FROM relationships WHERE id = $1
	`, id.String())
	rel, err := scanRelationshipRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("RELATIONSHIP_NOT_FOUND").With("id", id.String()).Wrap(realm.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get relationship").With("id", id.String()).Wrap(err)
	}
	return rel, nil
}

// Create persists a new relationship row. The partial unique index on
// active ordered pairs backs the service-level duplicate pre-check.
func (r *RelationshipRepository) Create(ctx context.Context, rel *realm.Relationship) error {
	_, err := querierFrom(ctx, r.db).Exec(ctx, `
		INSERT INTO relationships (`+relationshipColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, rel.ID.String(), rel.WorldID.String(), rel.RelationshipTypeID.String(),
		rel.FromEntityID.String(), rel.ToEntityID.String(), ulidToStringPtr(rel.PeerGroupID),
		string(rel.Status), rel.ExpiredAt, string(rel.Visibility),
		ulidToStringPtr(rel.VisibilityRefID), rel.CreatedByID.String(), rel.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("RELATIONSHIP_EXISTS").With("id", rel.ID.String()).Wrap(realm.ErrConflict)
		}
		return oops.With("operation", "create relationship").With("id", rel.ID.String()).Wrap(err)
	}
	return nil
}

// Update modifies the mutable columns of a relationship row.
func (r *RelationshipRepository) Update(ctx context.Context, rel *realm.Relationship) error {
	result, err := querierFrom(ctx, r.db).Exec(ctx, `
		UPDATE relationships
		SET status = $2, expired_at = $3, visibility = $4, visibility_ref_id = $5
		WHERE id = $1
	`, rel.ID.String(), string(rel.Status), rel.ExpiredAt,
		string(rel.Visibility), ulidToStringPtr(rel.VisibilityRefID))
	if err != nil {
		return oops.With("operation", "update relationship").With("id", rel.ID.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("RELATIONSHIP_NOT_FOUND").With("id", rel.ID.String()).Wrap(realm.ErrNotFound)
	}
	return nil
}

// Delete removes a relationship row by ID.
func (r *RelationshipRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := querierFrom(ctx, r.db).Exec(ctx, `DELETE FROM relationships WHERE id = $1`, id.String())
	if err != nil {
		return oops.With("operation", "delete relationship").With("id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("RELATIONSHIP_NOT_FOUND").With("id", id.String()).Wrap(realm.ErrNotFound)
	}
	return nil
}

// ListGroup returns all rows sharing a peer group ID.
func (r *RelationshipRepository) ListGroup(ctx context.Context, peerGroupID ulid.ULID) ([]*realm.Relationship, error) {
	rows, err := querierFrom(ctx, r.db).Query(ctx, `
		SELECT `+relationshipColumns+` FROM relationships WHERE peer_group_id = $1 ORDER BY id
	`, peerGroupID.String())
	if err != nil {
		return nil, oops.With("operation", "list peer group").
			With("peer_group_id", peerGroupID.String()).Wrap(err)
	}
	defer rows.Close()

	return scanRelationships(rows)
}

// FindActive returns the active relationship for the ordered triple, or
// ErrNotFound.
func (r *RelationshipRepository) FindActive(ctx context.Context, typeID, fromEntityID, toEntityID ulid.ULID) (*realm.Relationship, error) {
	row := querierFrom(ctx, r.db).QueryRow(ctx, `
		SELECT `+relationshipColumns+` FROM relationships
		WHERE relationship_type_id = $1 AND from_entity_id = $2 AND to_entity_id = $3 AND status = 'ACTIVE'
	`, typeID.String(), fromEntityID.String(), toEntityID.String())
	rel, err := scanRelationshipRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("RELATIONSHIP_NOT_FOUND").
			With("relationship_type_id", typeID.String()).Wrap(realm.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "find active relationship").
			With("relationship_type_id", typeID.String()).Wrap(err)
	}
	return rel, nil
}

// ListForEntity returns rows where the entity is either endpoint,
// restricted to the given statuses and optionally one type.
func (r *RelationshipRepository) ListForEntity(ctx context.Context, entityID ulid.ULID, statuses []realm.RelationshipStatus, typeID *ulid.ULID) ([]*realm.Relationship, error) {
	statusStrs := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrs[i] = string(s)
	}
	args := []any{entityID.String(), statusStrs}
	sql := `
		SELECT ` + relationshipColumns + ` FROM relationships
		WHERE (from_entity_id = $1 OR to_entity_id = $1) AND status = ANY($2)`
	if typeID != nil {
		args = append(args, typeID.String())
		sql += ` AND relationship_type_id = $3`
	}
	sql += ` ORDER BY id`

	rows, err := querierFrom(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, oops.With("operation", "list relationships").
			With("entity_id", entityID.String()).Wrap(err)
	}
	defer rows.Close()

	return scanRelationships(rows)
}

// relationshipScanFields holds intermediate scan values.
type relationshipScanFields struct {
	idStr         string
	worldStr      string
	typeStr       string
	fromStr       string
	toStr         string
	peerGroupStr  *string
	visibilityRef *string
	createdByStr  string
}

func scanRelationshipRow(row pgx.Row) (*realm.Relationship, error) {
	var rel realm.Relationship
	var f relationshipScanFields
	err := row.Scan(
		&f.idStr, &f.worldStr, &f.typeStr, &f.fromStr, &f.toStr, &f.peerGroupStr,
		&rel.Status, &rel.ExpiredAt, &rel.Visibility, &f.visibilityRef,
		&f.createdByStr, &rel.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := parseRelationshipFields(&f, &rel); err != nil {
		return nil, err
	}
	return &rel, nil
}

func parseRelationshipFields(f *relationshipScanFields, rel *realm.Relationship) error {
	var err error
	if rel.ID, err = ulid.Parse(f.idStr); err != nil {
		return oops.With("operation", "parse relationship id").With("id", f.idStr).Wrap(err)
	}
	if rel.WorldID, err = ulid.Parse(f.worldStr); err != nil {
		return oops.With("operation", "parse world id").With("world_id", f.worldStr).Wrap(err)
	}
	if rel.RelationshipTypeID, err = ulid.Parse(f.typeStr); err != nil {
		return oops.With("operation", "parse relationship type id").With("relationship_type_id", f.typeStr).Wrap(err)
	}
	if rel.FromEntityID, err = ulid.Parse(f.fromStr); err != nil {
		return oops.With("operation", "parse from entity id").With("from_entity_id", f.fromStr).Wrap(err)
	}
	if rel.ToEntityID, err = ulid.Parse(f.toStr); err != nil {
		return oops.With("operation", "parse to entity id").With("to_entity_id", f.toStr).Wrap(err)
	}
	if rel.PeerGroupID, err = parseOptionalULID(f.peerGroupStr, "peer_group_id"); err != nil {
		return err
	}
	if rel.VisibilityRefID, err = parseOptionalULID(f.visibilityRef, "visibility_ref_id"); err != nil {
		return err
	}
	if rel.CreatedByID, err = ulid.Parse(f.createdByStr); err != nil {
		return oops.With("operation", "parse created by id").With("created_by_id", f.createdByStr).Wrap(err)
	}
	return nil
}

func scanRelationships(rows pgx.Rows) ([]*realm.Relationship, error) {
	rels := make([]*realm.Relationship, 0)
	for rows.Next() {
		rel, err := scanRelationshipRow(rows)
		if err != nil {
			return nil, oops.With("operation", "scan relationship").Wrap(err)
		}
		rels = append(rels, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate relationships").Wrap(err)
	}
	return rels, nil
}

// Compile-time interface check.
var _ realm.RelationshipRepository = (*RelationshipRepository)(nil)

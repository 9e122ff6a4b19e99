// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

package postgres

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/loreforge/loreforge/internal/realm"
)

// GrantRepository implements realm.GrantRepository using PostgreSQL.
type GrantRepository struct {
	db DB
}

// NewGrantRepository creates a new GrantRepository.
func NewGrantRepository(db DB) *GrantRepository {
	return &GrantRepository{db: db}
}

// ListForResource returns all grants on a resource.
func (r *GrantRepository) ListForResource(ctx context.Context, kind realm.ResourceKind, resourceID ulid.ULID) ([]realm.AccessGrant, error) {
	rows, err := querierFrom(ctx, r.db).Query(ctx, `
		SELECT access_type, scope_type, scope_id
		FROM access_grants
		WHERE resource_kind = $1 AND resource_id = $2
	`, string(kind), resourceID.String())
	if err != nil {
		return nil, oops.With("operation", "list grants").With("resource_id", resourceID.String()).Wrap(err)
	}
	defer rows.Close()

	grants := make([]realm.AccessGrant, 0)
	for rows.Next() {
		var g realm.AccessGrant
		var scopeStr *string
		if err := rows.Scan(&g.AccessType, &g.ScopeType, &scopeStr); err != nil {
			return nil, oops.With("operation", "scan grant").Wrap(err)
		}
		if g.ScopeID, err = parseOptionalULID(scopeStr, "scope_id"); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate grants").Wrap(err)
	}
	return grants, nil
}

// ReplaceForResource deletes every grant on the resource and inserts the
// new set. Intended to run inside a transaction; partial replacement is
// never visible.
func (r *GrantRepository) ReplaceForResource(ctx context.Context, kind realm.ResourceKind, resourceID ulid.ULID, grants []realm.AccessGrant) error {
	q := querierFrom(ctx, r.db)
	_, err := q.Exec(ctx, `
		DELETE FROM access_grants WHERE resource_kind = $1 AND resource_id = $2
	`, string(kind), resourceID.String())
	if err != nil {
		return oops.With("operation", "delete grants").With("resource_id", resourceID.String()).Wrap(err)
	}
	for _, g := range grants {
		_, err := q.Exec(ctx, `
			INSERT INTO access_grants (resource_kind, resource_id, access_type, scope_type, scope_id)
			VALUES ($1, $2, $3, $4, $5)
		`, string(kind), resourceID.String(), string(g.AccessType), string(g.ScopeType), ulidToStringPtr(g.ScopeID))
		if err != nil {
			if isUniqueViolation(err) {
				return oops.Code("GRANT_EXISTS").With("resource_id", resourceID.String()).Wrap(realm.ErrConflict)
			}
			return oops.With("operation", "insert grant").With("resource_id", resourceID.String()).Wrap(err)
		}
	}
	return nil
}

// Compile-time interface check.
var _ realm.GrantRepository = (*GrantRepository)(nil)

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

package postgres

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/loreforge/loreforge/internal/realm"
)

// LocationTypeRuleRepository implements realm.LocationTypeRuleRepository
// using PostgreSQL.
type LocationTypeRuleRepository struct {
	db DB
}

// NewLocationTypeRuleRepository creates a new LocationTypeRuleRepository.
func NewLocationTypeRuleRepository(db DB) *LocationTypeRuleRepository {
	return &LocationTypeRuleRepository{db: db}
}

// Allowed reports whether a rule permits childType under parentType in
// the world. Absence of a rule means not allowed.
func (r *LocationTypeRuleRepository) Allowed(ctx context.Context, worldID, parentTypeID, childTypeID ulid.ULID) (bool, error) {
	var allowed bool
	err := querierFrom(ctx, r.db).QueryRow(ctx, `
		SELECT COALESCE(
			(SELECT allowed FROM location_type_rules
			 WHERE world_id = $1 AND parent_type_id = $2 AND child_type_id = $3),
			FALSE
		)
	`, worldID.String(), parentTypeID.String(), childTypeID.String()).Scan(&allowed)
	if err != nil {
		return false, oops.With("operation", "check containment rule").
			With("world_id", worldID.String()).
			With("parent_type_id", parentTypeID.String()).
			With("child_type_id", childTypeID.String()).Wrap(err)
	}
	return allowed, nil
}

// Create persists a new containment rule.
func (r *LocationTypeRuleRepository) Create(ctx context.Context, rule *realm.LocationTypeRule) error {
	_, err := querierFrom(ctx, r.db).Exec(ctx, `
		INSERT INTO location_type_rules (id, world_id, parent_type_id, child_type_id, allowed)
		VALUES ($1, $2, $3, $4, $5)
	`, rule.ID.String(), rule.WorldID.String(), rule.ParentTypeID.String(),
		rule.ChildTypeID.String(), rule.Allowed)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("RULE_EXISTS").With("id", rule.ID.String()).Wrap(realm.ErrConflict)
		}
		return oops.With("operation", "create containment rule").With("id", rule.ID.String()).Wrap(err)
	}
	return nil
}

// Compile-time interface check.
var _ realm.LocationTypeRuleRepository = (*LocationTypeRuleRepository)(nil)

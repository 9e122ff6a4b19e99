// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

package postgres

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/loreforge/loreforge/internal/hierarchy"
)

// AuditRepository implements hierarchy.AuditLog using PostgreSQL.
type AuditRepository struct {
	db DB
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// RecordAccessChange appends one access-change row. Runs inside the
// grant-replacement transaction when one is active in ctx.
func (r *AuditRepository) RecordAccessChange(ctx context.Context, change hierarchy.AccessChange) error {
	_, err := querierFrom(ctx, r.db).Exec(ctx, `
		INSERT INTO audit_log (id, actor_id, resource_kind, resource_id, old_signature, new_signature, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, ulid.Make().String(), change.ActorID.String(), string(change.ResourceKind),
		change.ResourceID.String(), change.OldSignature, change.NewSignature, change.At)
	if err != nil {
		return oops.With("operation", "record access change").
			With("resource_id", change.ResourceID.String()).Wrap(err)
	}
	return nil
}

// Compile-time interface check.
var _ hierarchy.AuditLog = (*AuditRepository)(nil)

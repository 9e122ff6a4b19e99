// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

package hierarchy

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/loreforge/loreforge/internal/realm"
)

// AccessChange describes one audit-worthy grant replacement.
type AccessChange struct {
	ActorID      ulid.ULID
	ResourceKind realm.ResourceKind
	ResourceID   ulid.ULID
	OldSignature string
	NewSignature string
	At           time.Time
}

// AuditLog records access changes. Implementations decide storage;
// RecordAccessChange runs inside the grant-replacement transaction.
type AuditLog interface {
	RecordAccessChange(ctx context.Context, change AccessChange) error
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

package realm

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// ResourceKind discriminates records that share generic infrastructure
// (access grants, typed fields).
type ResourceKind string

// Resource kinds.
const (
	KindEntity   ResourceKind = "entity"
	KindLocation ResourceKind = "location"
)

// Valid reports whether the kind is one of the declared values.
func (k ResourceKind) Valid() bool {
	return k == KindEntity || k == KindLocation
}

// EntityType is a world-scoped classification for entities ("NPC",
// "Faction", "Artifact"). Relationship rules are declared between entity
// types, not individual entities.
type EntityType struct {
	ID      ulid.ULID
	WorldID ulid.ULID
	Name    string
}

// Entity is a freeform typed record scoped to a world.
type Entity struct {
	ID           ulid.ULID
	WorldID      ulid.ULID
	EntityTypeID ulid.ULID
	Name         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// LocationType is a world-scoped classification for locations ("Region",
// "City", "Building"). Containment rules are declared between location
// types.
type LocationType struct {
	ID      ulid.ULID
	WorldID ulid.ULID
	Name    string
}

// Location is a node in a world's location tree. ParentID is nil for
// roots.
type Location struct {
	ID             ulid.ULID
	WorldID        ulid.ULID
	LocationTypeID ulid.ULID
	ParentID       *ulid.ULID
	Name           string
	CreatedAt      time.Time
}

// LocationTypeRule declares whether a child location type may sit under a
// parent location type within one world.
type LocationTypeRule struct {
	ID           ulid.ULID
	WorldID      ulid.ULID
	ParentTypeID ulid.ULID
	ChildTypeID  ulid.ULID
	Allowed      bool
}

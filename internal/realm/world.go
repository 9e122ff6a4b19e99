// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

// Package realm contains the worldbuilding domain types and repository
// contracts. A world is the tenant boundary: campaigns, characters,
// entities, locations, and relationship types all hang off exactly one
// world.
package realm

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// EntityPermissionScope controls which world members may author entities
// without an explicit grant.
type EntityPermissionScope string

// Entity permission scopes, from most to least restrictive.
const (
	EntityScopeArchitect         EntityPermissionScope = "ARCHITECT"
	EntityScopeArchitectGM       EntityPermissionScope = "ARCHITECT_GM"
	EntityScopeArchitectGMPlayer EntityPermissionScope = "ARCHITECT_GM_PLAYER"
)

// Valid reports whether the scope is one of the declared values.
func (s EntityPermissionScope) Valid() bool {
	switch s {
	case EntityScopeArchitect, EntityScopeArchitectGM, EntityScopeArchitectGMPlayer:
		return true
	}
	return false
}

// World is the root tenant record.
type World struct {
	ID          ulid.ULID
	Name        string
	ArchitectID ulid.ULID // primary architect; delegates live in world_architects
	EntityScope EntityPermissionScope
	CreatedAt   time.Time
}

// Campaign belongs to exactly one world and is run by one GM user.
type Campaign struct {
	ID        ulid.ULID
	WorldID   ulid.ULID
	GMUserID  ulid.ULID
	Name      string
	CreatedAt time.Time
}

// RosterStatus is the state of a character on a campaign roster.
type RosterStatus string

// Roster statuses.
const (
	RosterActive   RosterStatus = "ACTIVE"
	RosterInactive RosterStatus = "INACTIVE"
)

// RosterEntry is a character's membership on a campaign roster.
type RosterEntry struct {
	CampaignID  ulid.ULID
	CharacterID ulid.ULID
	Status      RosterStatus
}

// Character belongs to one world and is owned by a player user. It may sit
// on zero or more campaign rosters.
type Character struct {
	ID        ulid.ULID
	WorldID   ulid.ULID
	OwnerID   ulid.ULID
	Name      string
	CreatedAt time.Time
}

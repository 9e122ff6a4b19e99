// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

// Package access provides authorization for Loreforge.
//
// Permissions are not a single role check: effective access is the union
// of independently granted scopes (GLOBAL, per-campaign, per-character)
// combined with role-based bypass for admins and world architects. The
// resolver answers the same question two ways: a boolean point check for
// a single resource, and a composable filter for bulk queries. Both
// MUST evaluate the bypass first so they never disagree.
package access

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// Role is the global role carried on an authenticated user record.
// World-level authority (architect, GM, campaign GM, character owner) is
// derived from membership lookups, never stored on the user.
type Role string

// Global roles.
const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Actor is the authenticated user an operation runs as.
type Actor struct {
	ID   ulid.ULID
	Role Role
}

// IsAdmin reports whether the actor holds the global admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Context carries the optional campaign/character request context. A
// supplied campaign widens the predicate set with CAMPAIGN(id); a
// supplied character with CHARACTER(id). GLOBAL is always in play.
type Context struct {
	CampaignID  *ulid.ULID
	CharacterID *ulid.ULID
}

// MembershipReader answers the derived-role lookups the resolver and the
// role evaluator need. Implementations are black boxes over the
// world/campaign/character membership tables.
type MembershipReader interface {
	// IsWorldArchitect reports whether the user is the world's primary
	// or a delegated architect.
	IsWorldArchitect(ctx context.Context, userID, worldID ulid.ULID) (bool, error)

	// IsWorldGameMaster reports whether the user holds world-wide GM
	// status.
	IsWorldGameMaster(ctx context.Context, userID, worldID ulid.ULID) (bool, error)

	// IsCampaignGM reports whether the user runs the given campaign.
	IsCampaignGM(ctx context.Context, userID, campaignID ulid.ULID) (bool, error)

	// OwnsWorldCharacter reports whether the user owns any character in
	// the world.
	OwnsWorldCharacter(ctx context.Context, userID, worldID ulid.ULID) (bool, error)
}

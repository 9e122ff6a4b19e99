// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

package access

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/loreforge/loreforge/internal/realm"
)

// RoleEvaluator centralizes the world-role boolean checks that would
// otherwise be re-derived inline at every call site.
type RoleEvaluator struct {
	memberships MembershipReader
}

// NewRoleEvaluator creates a RoleEvaluator over the given membership
// lookups.
func NewRoleEvaluator(memberships MembershipReader) *RoleEvaluator {
	return &RoleEvaluator{memberships: memberships}
}

// CanManageRelationships reports whether the actor may create, expire,
// or delete relationships in the world: global admin, world architect,
// world GM, or (when a campaign context is supplied) GM of that
// campaign. The checks are OR'd; the first hit wins.
func (e *RoleEvaluator) CanManageRelationships(ctx context.Context, actor Actor, worldID ulid.ULID, campaignID *ulid.ULID) (bool, error) {
	if actor.IsAdmin() {
		return true, nil
	}
	architect, err := e.memberships.IsWorldArchitect(ctx, actor.ID, worldID)
	if err != nil {
		return false, oops.In("access").With("world_id", worldID.String()).Wrap(err)
	}
	if architect {
		return true, nil
	}
	gm, err := e.memberships.IsWorldGameMaster(ctx, actor.ID, worldID)
	if err != nil {
		return false, oops.In("access").With("world_id", worldID.String()).Wrap(err)
	}
	if gm {
		return true, nil
	}
	if campaignID != nil {
		campaignGM, err := e.memberships.IsCampaignGM(ctx, actor.ID, *campaignID)
		if err != nil {
			return false, oops.In("access").With("campaign_id", campaignID.String()).Wrap(err)
		}
		if campaignGM {
			return true, nil
		}
	}
	return false, nil
}

// CanAuthorEntities reports whether the actor may create entities in the
// world without an explicit grant, per the world's entity permission
// scope: architects always; ARCHITECT_GM adds world GMs; and
// ARCHITECT_GM_PLAYER adds anyone who owns a character in the world.
func (e *RoleEvaluator) CanAuthorEntities(ctx context.Context, actor Actor, world *realm.World) (bool, error) {
	if actor.IsAdmin() {
		return true, nil
	}
	architect, err := e.memberships.IsWorldArchitect(ctx, actor.ID, world.ID)
	if err != nil {
		return false, oops.In("access").With("world_id", world.ID.String()).Wrap(err)
	}
	if architect {
		return true, nil
	}
	switch world.EntityScope {
	case realm.EntityScopeArchitect:
		return false, nil
	case realm.EntityScopeArchitectGM:
		gm, err := e.memberships.IsWorldGameMaster(ctx, actor.ID, world.ID)
		if err != nil {
			return false, oops.In("access").With("world_id", world.ID.String()).Wrap(err)
		}
		return gm, nil
	case realm.EntityScopeArchitectGMPlayer:
		gm, err := e.memberships.IsWorldGameMaster(ctx, actor.ID, world.ID)
		if err != nil {
			return false, oops.In("access").With("world_id", world.ID.String()).Wrap(err)
		}
		if gm {
			return true, nil
		}
		player, err := e.memberships.OwnsWorldCharacter(ctx, actor.ID, world.ID)
		if err != nil {
			return false, oops.In("access").With("world_id", world.ID.String()).Wrap(err)
		}
		return player, nil
	default:
		return false, oops.In("access").
			Code("UNKNOWN_ENTITY_SCOPE").
			With("world_id", world.ID.String()).
			With("scope", string(world.EntityScope)).
			New("unknown entity permission scope")
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

package postgres

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/loreforge/loreforge/internal/access"
)

// MembershipRepository answers the role membership lookups behind access
// resolution. Implements access.MembershipReader.
type MembershipRepository struct {
	db DB
}

// NewMembershipRepository creates a new MembershipRepository.
func NewMembershipRepository(db DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// IsWorldArchitect reports whether the user is the world's primary
// architect or a delegated one.
func (r *MembershipRepository) IsWorldArchitect(ctx context.Context, userID, worldID ulid.ULID) (bool, error) {
	var exists bool
	err := querierFrom(ctx, r.db).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM worlds WHERE id = $1 AND architect_id = $2
			UNION
			SELECT 1 FROM world_architects WHERE world_id = $1 AND user_id = $2
		)
	`, worldID.String(), userID.String()).Scan(&exists)
	if err != nil {
		return false, oops.With("operation", "check world architect").
			With("world_id", worldID.String()).With("user_id", userID.String()).Wrap(err)
	}
	return exists, nil
}

// IsWorldGameMaster reports whether the user is a world-wide GM.
func (r *MembershipRepository) IsWorldGameMaster(ctx context.Context, userID, worldID ulid.ULID) (bool, error) {
	var exists bool
	err := querierFrom(ctx, r.db).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM world_gamemasters WHERE world_id = $1 AND user_id = $2
		)
	`, worldID.String(), userID.String()).Scan(&exists)
	if err != nil {
		return false, oops.With("operation", "check world gamemaster").
			With("world_id", worldID.String()).With("user_id", userID.String()).Wrap(err)
	}
	return exists, nil
}

// IsCampaignGM reports whether the user runs the campaign.
func (r *MembershipRepository) IsCampaignGM(ctx context.Context, userID, campaignID ulid.ULID) (bool, error) {
	var exists bool
	err := querierFrom(ctx, r.db).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM campaigns WHERE id = $1 AND gm_user_id = $2
		)
	`, campaignID.String(), userID.String()).Scan(&exists)
	if err != nil {
		return false, oops.With("operation", "check campaign gm").
			With("campaign_id", campaignID.String()).With("user_id", userID.String()).Wrap(err)
	}
	return exists, nil
}

// OwnsWorldCharacter reports whether the user owns any character in the
// world.
func (r *MembershipRepository) OwnsWorldCharacter(ctx context.Context, userID, worldID ulid.ULID) (bool, error) {
	var exists bool
	err := querierFrom(ctx, r.db).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM characters WHERE world_id = $1 AND owner_id = $2
		)
	`, worldID.String(), userID.String()).Scan(&exists)
	if err != nil {
		return false, oops.With("operation", "check character ownership").
			With("world_id", worldID.String()).With("user_id", userID.String()).Wrap(err)
	}
	return exists, nil
}

// Compile-time interface check.
var _ access.MembershipReader = (*MembershipRepository)(nil)

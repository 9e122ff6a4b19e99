// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

// Package accesstest provides in-memory test doubles for access control.
package accesstest

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// Memberships is a MembershipReader backed by maps. The zero value denies
// everything.
type Memberships struct {
	Architects      map[ulid.ULID][]ulid.ULID // worldID → userIDs
	WorldGMs        map[ulid.ULID][]ulid.ULID // worldID → userIDs
	CampaignGMs     map[ulid.ULID][]ulid.ULID // campaignID → userIDs
	CharacterOwners map[ulid.ULID][]ulid.ULID // worldID → userIDs owning a character there

	// Err, when set, is returned by every lookup.
	Err error
}

// IsWorldArchitect reports whether userID is an architect of worldID.
func (m *Memberships) IsWorldArchitect(_ context.Context, userID, worldID ulid.ULID) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	return contains(m.Architects[worldID], userID), nil
}

// IsWorldGameMaster reports whether userID is a world-wide GM of worldID.
func (m *Memberships) IsWorldGameMaster(_ context.Context, userID, worldID ulid.ULID) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	return contains(m.WorldGMs[worldID], userID), nil
}

// IsCampaignGM reports whether userID runs campaignID.
func (m *Memberships) IsCampaignGM(_ context.Context, userID, campaignID ulid.ULID) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	return contains(m.CampaignGMs[campaignID], userID), nil
}

// OwnsWorldCharacter reports whether userID owns a character in worldID.
func (m *Memberships) OwnsWorldCharacter(_ context.Context, userID, worldID ulid.ULID) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	return contains(m.CharacterOwners[worldID], userID), nil
}

func contains(ids []ulid.ULID, id ulid.ULID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

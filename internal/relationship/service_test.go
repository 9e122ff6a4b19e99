// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

package relationship_test

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loreforge/loreforge/internal/access"
	"github.com/loreforge/loreforge/internal/access/accesstest"
	"github.com/loreforge/loreforge/internal/observability"
	"github.com/loreforge/loreforge/internal/realm"
	"github.com/loreforge/loreforge/internal/realm/realmtest"
	"github.com/loreforge/loreforge/internal/relationship"
)

func ulidPtr(id ulid.ULID) *ulid.ULID { return &id }

func strPtr(s string) *string { return &s }

// fixture wires a service over the in-memory store with one world, an
// "NPC" entity type, two NPC entities, and a peerable "Ally" type ruled
// NPC→NPC in both directions.
type fixture struct {
	store       *realmtest.Store
	memberships *accesstest.Memberships
	svc         *relationship.Service
	metrics     *observability.Metrics

	worldID   ulid.ULID
	npcType   ulid.ULID
	entityA   ulid.ULID
	entityB   ulid.ULID
	allyType  ulid.ULID // peerable
	rivalType ulid.ULID // directional, labels "rival of"/"rivaled by"
	admin     access.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:       realmtest.NewStore(),
		memberships: &accesstest.Memberships{},
		worldID:     ulid.Make(),
		npcType:     ulid.Make(),
		entityA:     ulid.Make(),
		entityB:     ulid.Make(),
		allyType:    ulid.Make(),
		rivalType:   ulid.Make(),
		admin:       access.Actor{ID: ulid.Make(), Role: access.RoleAdmin},
		metrics:     observability.NewMetrics(prometheus.NewRegistry()),
	}

	f.store.Worlds[f.worldID] = &realm.World{ID: f.worldID, Name: "Aldéran", EntityScope: realm.EntityScopeArchitect}
	f.store.Entities[f.entityA] = &realm.Entity{ID: f.entityA, WorldID: f.worldID, EntityTypeID: f.npcType, Name: "Aric"}
	f.store.Entities[f.entityB] = &realm.Entity{ID: f.entityB, WorldID: f.worldID, EntityTypeID: f.npcType, Name: "Brann"}
	f.store.RelTypes[f.allyType] = &realm.RelationshipType{
		ID: f.allyType, WorldID: f.worldID, Name: "Ally",
		FromLabel: "ally of", ToLabel: "ally of",
		PastFromLabel: strPtr("former ally of"), PastToLabel: strPtr("former ally of"),
		Peerable: true,
	}
	f.store.RelTypes[f.rivalType] = &realm.RelationshipType{
		ID: f.rivalType, WorldID: f.worldID, Name: "Rival",
		FromLabel: "rival of", ToLabel: "rivaled by",
		PastFromLabel: strPtr("former rival of"),
	}
	f.store.RelRules = []realm.RelationshipTypeRule{
		{ID: ulid.Make(), RelationshipTypeID: f.allyType, FromEntityTypeID: f.npcType, ToEntityTypeID: f.npcType},
		{ID: ulid.Make(), RelationshipTypeID: f.rivalType, FromEntityTypeID: f.npcType, ToEntityTypeID: f.npcType},
	}

	f.svc = relationship.NewService(relationship.ServiceConfig{
		RelationshipRepo: f.store.RelationshipRepo(),
		TypeRepo:         f.store.RelTypeRepo(),
		EntityRepo:       f.store.EntityRepo(),
		CampaignRepo:     f.store.CampaignRepo(),
		CharacterRepo:    f.store.CharacterRepo(),
		GrantRepo:        f.store.GrantRepo(),
		Checker:          access.NewResolver(f.memberships),
		Authority:        access.NewRoleEvaluator(f.memberships),
		Transactor:       f.store,
		Metrics:          f.metrics,
	})
	return f
}

func (f *fixture) countRows() int { return len(f.store.Relationships) }

func TestService_Create_PeerPair(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rel, err := f.svc.Create(ctx, f.admin, relationship.CreateInput{
		RelationshipTypeID: f.allyType,
		FromEntityID:       f.entityA,
		ToEntityID:         f.entityB,
	}, access.Context{})
	require.NoError(t, err)
	require.NotNil(t, rel.PeerGroupID)
	assert.Equal(t, 2, f.countRows())

	group, err := f.store.RelationshipRepo().ListGroup(ctx, *rel.PeerGroupID)
	require.NoError(t, err)
	require.Len(t, group, 2)

	// One row per direction, all shared fields equal.
	var forward, mirror *realm.Relationship
	for _, row := range group {
		if row.FromEntityID == f.entityA {
			forward = row
		} else {
			mirror = row
		}
	}
	require.NotNil(t, forward)
	require.NotNil(t, mirror)
	assert.Equal(t, forward.ToEntityID, mirror.FromEntityID)
	assert.Equal(t, forward.FromEntityID, mirror.ToEntityID)
	assert.Equal(t, forward.Status, mirror.Status)
	assert.Equal(t, forward.Visibility, mirror.Visibility)

	// Scenario A: the reversed pair conflicts while the pair is active.
	_, err = f.svc.Create(ctx, f.admin, relationship.CreateInput{
		RelationshipTypeID: f.allyType,
		FromEntityID:       f.entityB,
		ToEntityID:         f.entityA,
	}, access.Context{})
	assert.ErrorIs(t, err, realm.ErrConflict)
}

func TestService_Create_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("self-referential", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Create(ctx, f.admin, relationship.CreateInput{
			RelationshipTypeID: f.allyType,
			FromEntityID:       f.entityA,
			ToEntityID:         f.entityA,
		}, access.Context{})
		var verr *realm.ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("missing type is not found", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Create(ctx, f.admin, relationship.CreateInput{
			RelationshipTypeID: ulid.Make(),
			FromEntityID:       f.entityA,
			ToEntityID:         f.entityB,
		}, access.Context{})
		assert.ErrorIs(t, err, realm.ErrNotFound)
	})

	t.Run("missing entity is not found", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Create(ctx, f.admin, relationship.CreateInput{
			RelationshipTypeID: f.allyType,
			FromEntityID:       f.entityA,
			ToEntityID:         ulid.Make(),
		}, access.Context{})
		assert.ErrorIs(t, err, realm.ErrNotFound)
	})

	t.Run("entity from another world", func(t *testing.T) {
		f := newFixture(t)
		stray := ulid.Make()
		f.store.Entities[stray] = &realm.Entity{ID: stray, WorldID: ulid.Make(), EntityTypeID: f.npcType, Name: "Stray"}
		_, err := f.svc.Create(ctx, f.admin, relationship.CreateInput{
			RelationshipTypeID: f.allyType,
			FromEntityID:       f.entityA,
			ToEntityID:         stray,
		}, access.Context{})
		var verr *realm.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "worldId", verr.Field)
	})

	t.Run("no rule for pairing", func(t *testing.T) {
		f := newFixture(t)
		factionType := ulid.Make()
		faction := ulid.Make()
		f.store.Entities[faction] = &realm.Entity{ID: faction, WorldID: f.worldID, EntityTypeID: factionType, Name: "Guild"}
		_, err := f.svc.Create(ctx, f.admin, relationship.CreateInput{
			RelationshipTypeID: f.allyType,
			FromEntityID:       f.entityA,
			ToEntityID:         faction,
		}, access.Context{})
		var verr *realm.ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("peerable type missing reverse rule", func(t *testing.T) {
		f := newFixture(t)
		factionType := ulid.Make()
		faction := ulid.Make()
		f.store.Entities[faction] = &realm.Entity{ID: faction, WorldID: f.worldID, EntityTypeID: factionType, Name: "Guild"}
		// Forward rule only.
		f.store.RelRules = append(f.store.RelRules, realm.RelationshipTypeRule{
			ID: ulid.Make(), RelationshipTypeID: f.allyType,
			FromEntityTypeID: f.npcType, ToEntityTypeID: factionType,
		})
		_, err := f.svc.Create(ctx, f.admin, relationship.CreateInput{
			RelationshipTypeID: f.allyType,
			FromEntityID:       f.entityA,
			ToEntityID:         faction,
		}, access.Context{})
		var verr *realm.ValidationError
		require.ErrorAs(t, err, &verr)
	})
}

func TestService_Create_Authorization(t *testing.T) {
	ctx := context.Background()

	t.Run("actor without manage role is denied", func(t *testing.T) {
		f := newFixture(t)
		user := access.Actor{ID: ulid.Make(), Role: access.RoleUser}
		_, err := f.svc.Create(ctx, user, relationship.CreateInput{
			RelationshipTypeID: f.allyType,
			FromEntityID:       f.entityA,
			ToEntityID:         f.entityB,
		}, access.Context{})
		assert.ErrorIs(t, err, realm.ErrPermissionDenied)
	})

	t.Run("world GM without endpoint read is denied", func(t *testing.T) {
		f := newFixture(t)
		gm := access.Actor{ID: ulid.Make(), Role: access.RoleUser}
		f.memberships.WorldGMs = map[ulid.ULID][]ulid.ULID{f.worldID: {gm.ID}}
		// No grants on either entity: GM can manage but cannot read.
		_, err := f.svc.Create(ctx, gm, relationship.CreateInput{
			RelationshipTypeID: f.allyType,
			FromEntityID:       f.entityA,
			ToEntityID:         f.entityB,
		}, access.Context{})
		assert.ErrorIs(t, err, realm.ErrPermissionDenied)
	})

	t.Run("world GM with global read grants succeeds", func(t *testing.T) {
		f := newFixture(t)
		gm := access.Actor{ID: ulid.Make(), Role: access.RoleUser}
		f.memberships.WorldGMs = map[ulid.ULID][]ulid.ULID{f.worldID: {gm.ID}}
		readAll := []realm.AccessGrant{{AccessType: realm.AccessRead, ScopeType: realm.ScopeGlobal}}
		f.store.SetGrants(realm.KindEntity, f.entityA, readAll)
		f.store.SetGrants(realm.KindEntity, f.entityB, readAll)

		_, err := f.svc.Create(ctx, gm, relationship.CreateInput{
			RelationshipTypeID: f.allyType,
			FromEntityID:       f.entityA,
			ToEntityID:         f.entityB,
		}, access.Context{})
		require.NoError(t, err)
	})
}

func TestService_Create_VisibilityDefaults(t *testing.T) {
	ctx := context.Background()

	t.Run("character context infers CHARACTER", func(t *testing.T) {
		f := newFixture(t)
		characterID := ulid.Make()
		f.store.Characters[characterID] = &realm.Character{ID: characterID, WorldID: f.worldID, Name: "Mira"}

		rel, err := f.svc.Create(ctx, f.admin, relationship.CreateInput{
			RelationshipTypeID: f.rivalType,
			FromEntityID:       f.entityA,
			ToEntityID:         f.entityB,
		}, access.Context{CharacterID: ulidPtr(characterID)})
		require.NoError(t, err)
		assert.Equal(t, realm.VisibilityCharacter, rel.Visibility)
		require.NotNil(t, rel.VisibilityRefID)
		assert.Equal(t, characterID, *rel.VisibilityRefID)
	})

	t.Run("campaign context infers CAMPAIGN", func(t *testing.T) {
		f := newFixture(t)
		campaignID := ulid.Make()
		f.store.Campaigns[campaignID] = &realm.Campaign{ID: campaignID, WorldID: f.worldID, Name: "The Long Road"}

		rel, err := f.svc.Create(ctx, f.admin, relationship.CreateInput{
			RelationshipTypeID: f.rivalType,
			FromEntityID:       f.entityA,
			ToEntityID:         f.entityB,
		}, access.Context{CampaignID: ulidPtr(campaignID)})
		require.NoError(t, err)
		assert.Equal(t, realm.VisibilityCampaign, rel.Visibility)
	})

	t.Run("no context infers GLOBAL", func(t *testing.T) {
		f := newFixture(t)
		rel, err := f.svc.Create(ctx, f.admin, relationship.CreateInput{
			RelationshipTypeID: f.rivalType,
			FromEntityID:       f.entityA,
			ToEntityID:         f.entityB,
		}, access.Context{})
		require.NoError(t, err)
		assert.Equal(t, realm.VisibilityGlobal, rel.Visibility)
		assert.Nil(t, rel.VisibilityRefID)
	})

	t.Run("campaign from another world is rejected", func(t *testing.T) {
		f := newFixture(t)
		campaignID := ulid.Make()
		f.store.Campaigns[campaignID] = &realm.Campaign{ID: campaignID, WorldID: ulid.Make(), Name: "Elsewhere"}
		vis := realm.VisibilityCampaign
		_, err := f.svc.Create(ctx, f.admin, relationship.CreateInput{
			RelationshipTypeID: f.rivalType,
			FromEntityID:       f.entityA,
			ToEntityID:         f.entityB,
			Visibility:         &vis,
			VisibilityRefID:    ulidPtr(campaignID),
		}, access.Context{})
		var verr *realm.ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("global visibility rejects a reference", func(t *testing.T) {
		f := newFixture(t)
		vis := realm.VisibilityGlobal
		_, err := f.svc.Create(ctx, f.admin, relationship.CreateInput{
			RelationshipTypeID: f.rivalType,
			FromEntityID:       f.entityA,
			ToEntityID:         f.entityB,
			Visibility:         &vis,
			VisibilityRefID:    ulidPtr(ulid.Make()),
		}, access.Context{})
		var verr *realm.ValidationError
		require.ErrorAs(t, err, &verr)
	})
}

func TestService_Create_DuplicateDirectional(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Create(ctx, f.admin, relationship.CreateInput{
		RelationshipTypeID: f.rivalType,
		FromEntityID:       f.entityA,
		ToEntityID:         f.entityB,
	}, access.Context{})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.admin, relationship.CreateInput{
		RelationshipTypeID: f.rivalType,
		FromEntityID:       f.entityA,
		ToEntityID:         f.entityB,
	}, access.Context{})
	assert.ErrorIs(t, err, realm.ErrConflict)

	// Directional types allow the reversed pair.
	_, err = f.svc.Create(ctx, f.admin, relationship.CreateInput{
		RelationshipTypeID: f.rivalType,
		FromEntityID:       f.entityB,
		ToEntityID:         f.entityA,
	}, access.Context{})
	require.NoError(t, err)
}

func TestService_Expire(t *testing.T) {
	ctx := context.Background()

	t.Run("peer pair expires together", func(t *testing.T) {
		f := newFixture(t)
		rel, err := f.svc.Create(ctx, f.admin, relationship.CreateInput{
			RelationshipTypeID: f.allyType,
			FromEntityID:       f.entityA,
			ToEntityID:         f.entityB,
		}, access.Context{})
		require.NoError(t, err)

		require.NoError(t, f.svc.Expire(ctx, f.admin, rel.ID, access.Context{}))

		group, err := f.store.RelationshipRepo().ListGroup(ctx, *rel.PeerGroupID)
		require.NoError(t, err)
		require.Len(t, group, 2)
		for _, row := range group {
			assert.Equal(t, realm.RelationshipExpired, row.Status)
			require.NotNil(t, row.ExpiredAt)
		}
		assert.Equal(t, group[0].ExpiredAt, group[1].ExpiredAt, "pair must share the expiry timestamp")
	})

	t.Run("expired is terminal", func(t *testing.T) {
		f := newFixture(t)
		rel, err := f.svc.Create(ctx, f.admin, relationship.CreateInput{
			RelationshipTypeID: f.rivalType,
			FromEntityID:       f.entityA,
			ToEntityID:         f.entityB,
		}, access.Context{})
		require.NoError(t, err)
		require.NoError(t, f.svc.Expire(ctx, f.admin, rel.ID, access.Context{}))

		err = f.svc.Expire(ctx, f.admin, rel.ID, access.Context{})
		assert.ErrorIs(t, err, realm.ErrConflict)
	})

	t.Run("corrupt peer group is an invariant violation", func(t *testing.T) {
		f := newFixture(t)
		rel, err := f.svc.Create(ctx, f.admin, relationship.CreateInput{
			RelationshipTypeID: f.allyType,
			FromEntityID:       f.entityA,
			ToEntityID:         f.entityB,
		}, access.Context{})
		require.NoError(t, err)

		// Corrupt the pair behind the service's back.
		for id := range f.store.Relationships {
			if id != rel.ID {
				delete(f.store.Relationships, id)
			}
		}

		err = f.svc.Expire(ctx, f.admin, rel.ID, access.Context{})
		var inv *realm.InvariantError
		require.ErrorAs(t, err, &inv)
	})
}

func TestService_Delete_PeerGroup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rel, err := f.svc.Create(ctx, f.admin, relationship.CreateInput{
		RelationshipTypeID: f.allyType,
		FromEntityID:       f.entityA,
		ToEntityID:         f.entityB,
	}, access.Context{})
	require.NoError(t, err)
	require.Equal(t, 2, f.countRows())

	require.NoError(t, f.svc.Delete(ctx, f.admin, rel.ID, access.Context{}))
	assert.Equal(t, 0, f.countRows(), "both rows of the pair must be removed")
}

func TestService_SetVisibility_PeerGroup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	campaignID := ulid.Make()
	f.store.Campaigns[campaignID] = &realm.Campaign{ID: campaignID, WorldID: f.worldID, Name: "Embers"}

	rel, err := f.svc.Create(ctx, f.admin, relationship.CreateInput{
		RelationshipTypeID: f.allyType,
		FromEntityID:       f.entityA,
		ToEntityID:         f.entityB,
	}, access.Context{})
	require.NoError(t, err)

	require.NoError(t, f.svc.SetVisibility(ctx, f.admin, rel.ID, realm.VisibilityCampaign, ulidPtr(campaignID), access.Context{}))

	group, err := f.store.RelationshipRepo().ListGroup(ctx, *rel.PeerGroupID)
	require.NoError(t, err)
	for _, row := range group {
		assert.Equal(t, realm.VisibilityCampaign, row.Visibility)
		require.NotNil(t, row.VisibilityRefID)
		assert.Equal(t, campaignID, *row.VisibilityRefID)
	}
}

func TestService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("expired excluded by default, included with ALL and past label", func(t *testing.T) {
		f := newFixture(t)
		rel, err := f.svc.Create(ctx, f.admin, relationship.CreateInput{
			RelationshipTypeID: f.rivalType,
			FromEntityID:       f.entityA,
			ToEntityID:         f.entityB,
		}, access.Context{})
		require.NoError(t, err)
		require.NoError(t, f.svc.Expire(ctx, f.admin, rel.ID, access.Context{}))

		views, err := f.svc.List(ctx, f.admin, f.entityA, relationship.Query{}, access.Context{})
		require.NoError(t, err)
		assert.Empty(t, views)

		views, err = f.svc.List(ctx, f.admin, f.entityA, relationship.Query{Status: relationship.StatusAll}, access.Context{})
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, realm.RelationshipExpired, views[0].Status)
		assert.Equal(t, "former rival of", views[0].Label, "past from-label substituted")

		// Incoming side has no past to-label; live label is used.
		views, err = f.svc.List(ctx, f.admin, f.entityB, relationship.Query{Status: relationship.StatusAll}, access.Context{})
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, relationship.DirectionIncoming, views[0].Direction)
		assert.Equal(t, "rivaled by", views[0].Label)
	})

	t.Run("peer pair collapses to one entry with from label", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Create(ctx, f.admin, relationship.CreateInput{
			RelationshipTypeID: f.allyType,
			FromEntityID:       f.entityA,
			ToEntityID:         f.entityB,
		}, access.Context{})
		require.NoError(t, err)

		views, err := f.svc.List(ctx, f.admin, f.entityB, relationship.Query{}, access.Context{})
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.True(t, views[0].Peer)
		assert.Equal(t, "ally of", views[0].Label)
		assert.Equal(t, f.entityA, views[0].RelatedEntityID)
		assert.Equal(t, "Aric", views[0].RelatedEntityName)
	})

	t.Run("visibility scoping applies to non-managers", func(t *testing.T) {
		f := newFixture(t)
		campaignID := ulid.Make()
		f.store.Campaigns[campaignID] = &realm.Campaign{ID: campaignID, WorldID: f.worldID, Name: "Embers"}

		vis := realm.VisibilityCampaign
		_, err := f.svc.Create(ctx, f.admin, relationship.CreateInput{
			RelationshipTypeID: f.rivalType,
			FromEntityID:       f.entityA,
			ToEntityID:         f.entityB,
			Visibility:         &vis,
			VisibilityRefID:    ulidPtr(campaignID),
		}, access.Context{})
		require.NoError(t, err)

		viewer := access.Actor{ID: ulid.Make(), Role: access.RoleUser}

		views, err := f.svc.List(ctx, viewer, f.entityA, relationship.Query{}, access.Context{})
		require.NoError(t, err)
		assert.Empty(t, views, "campaign-scoped row hidden without campaign context")

		views, err = f.svc.List(ctx, viewer, f.entityA, relationship.Query{}, access.Context{CampaignID: ulidPtr(campaignID)})
		require.NoError(t, err)
		assert.Len(t, views, 1)

		// Managers bypass visibility scoping entirely.
		views, err = f.svc.List(ctx, f.admin, f.entityA, relationship.Query{}, access.Context{})
		require.NoError(t, err)
		assert.Len(t, views, 1)
	})

	t.Run("sort order", func(t *testing.T) {
		f := newFixture(t)
		entityC := ulid.Make()
		f.store.Entities[entityC] = &realm.Entity{ID: entityC, WorldID: f.worldID, EntityTypeID: f.npcType, Name: "Cade"}

		// Peer between A and B. Directional A to C. Directional C to A, then expired.
		_, err := f.svc.Create(ctx, f.admin, relationship.CreateInput{
			RelationshipTypeID: f.allyType, FromEntityID: f.entityA, ToEntityID: f.entityB,
		}, access.Context{})
		require.NoError(t, err)
		_, err = f.svc.Create(ctx, f.admin, relationship.CreateInput{
			RelationshipTypeID: f.rivalType, FromEntityID: f.entityA, ToEntityID: entityC,
		}, access.Context{})
		require.NoError(t, err)
		expired, err := f.svc.Create(ctx, f.admin, relationship.CreateInput{
			RelationshipTypeID: f.rivalType, FromEntityID: entityC, ToEntityID: f.entityA,
		}, access.Context{})
		require.NoError(t, err)
		require.NoError(t, f.svc.Expire(ctx, f.admin, expired.ID, access.Context{}))

		views, err := f.svc.List(ctx, f.admin, f.entityA, relationship.Query{Status: relationship.StatusAll}, access.Context{})
		require.NoError(t, err)
		require.Len(t, views, 3)

		assert.True(t, views[0].Peer, "peer entry first among actives")
		assert.Equal(t, relationship.DirectionOutgoing, views[1].Direction)
		assert.Equal(t, realm.RelationshipExpired, views[2].Status, "expired entries last")
	})

	t.Run("type filter", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Create(ctx, f.admin, relationship.CreateInput{
			RelationshipTypeID: f.allyType, FromEntityID: f.entityA, ToEntityID: f.entityB,
		}, access.Context{})
		require.NoError(t, err)
		_, err = f.svc.Create(ctx, f.admin, relationship.CreateInput{
			RelationshipTypeID: f.rivalType, FromEntityID: f.entityA, ToEntityID: f.entityB,
		}, access.Context{})
		require.NoError(t, err)

		views, err := f.svc.List(ctx, f.admin, f.entityA, relationship.Query{TypeID: ulidPtr(f.rivalType)}, access.Context{})
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, "Rival", views[0].TypeName)
	})

	t.Run("missing entity is not found", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.List(ctx, f.admin, ulid.Make(), relationship.Query{}, access.Context{})
		assert.ErrorIs(t, err, realm.ErrNotFound)
	})
}

// Symmetry property: across create/expire/visibility mutations the pair
// always shares status, expiry, and visibility.
func TestService_PeerSymmetryProperty(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	campaignID := ulid.Make()
	f.store.Campaigns[campaignID] = &realm.Campaign{ID: campaignID, WorldID: f.worldID, Name: "Embers"}

	rel, err := f.svc.Create(ctx, f.admin, relationship.CreateInput{
		RelationshipTypeID: f.allyType, FromEntityID: f.entityA, ToEntityID: f.entityB,
	}, access.Context{})
	require.NoError(t, err)

	checkSymmetry := func() {
		t.Helper()
		group, err := f.store.RelationshipRepo().ListGroup(ctx, *rel.PeerGroupID)
		require.NoError(t, err)
		require.Len(t, group, 2)
		a, b := group[0], group[1]
		assert.Equal(t, a.Status, b.Status)
		assert.Equal(t, a.Visibility, b.Visibility)
		assert.Equal(t, a.VisibilityRefID, b.VisibilityRefID)
		if a.ExpiredAt != nil || b.ExpiredAt != nil {
			require.NotNil(t, a.ExpiredAt)
			require.NotNil(t, b.ExpiredAt)
			assert.True(t, a.ExpiredAt.Equal(*b.ExpiredAt))
		}
		assert.Equal(t, a.FromEntityID, b.ToEntityID)
		assert.Equal(t, a.ToEntityID, b.FromEntityID)
	}

	checkSymmetry()
	require.NoError(t, f.svc.SetVisibility(ctx, f.admin, rel.ID, realm.VisibilityCampaign, ulidPtr(campaignID), access.Context{}))
	checkSymmetry()
	require.NoError(t, f.svc.Expire(ctx, f.admin, rel.ID, access.Context{}))
	checkSymmetry()

	// Shared timestamp sanity: expiry is recent and UTC.
	group, err := f.store.RelationshipRepo().ListGroup(ctx, *rel.PeerGroupID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), *group[0].ExpiredAt, time.Minute)
}

func TestService_RecordsOperations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rel, err := f.svc.Create(ctx, f.admin, relationship.CreateInput{
		RelationshipTypeID: f.allyType, FromEntityID: f.entityA, ToEntityID: f.entityB,
	}, access.Context{})
	require.NoError(t, err)
	require.NoError(t, f.svc.Expire(ctx, f.admin, rel.ID, access.Context{}))

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RelationshipsTotal.WithLabelValues("create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RelationshipsTotal.WithLabelValues("expire")))
	assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.RelationshipsTotal.WithLabelValues("delete")))
}

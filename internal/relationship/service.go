// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

// Package relationship manages typed, directed, optionally peerable
// links between entities: rule validation, duplicate prevention,
// peer-group symmetric mutation, and the query-time grouping and
// labeling that turns raw rows into a display-ready list.
package relationship

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/loreforge/loreforge/internal/access"
	"github.com/loreforge/loreforge/internal/observability"
	"github.com/loreforge/loreforge/internal/realm"
)

// AccessChecker answers point checks for relationship endpoints. Mirrors
// access.Resolver to avoid coupling this package to the concrete type.
type AccessChecker interface {
	CanRead(ctx context.Context, actor access.Actor, worldID ulid.ULID, grants []realm.AccessGrant, scope access.Context) (bool, error)
}

// ManageAuthority answers whether an actor may manage relationships in a
// world. Mirrors access.RoleEvaluator.
type ManageAuthority interface {
	CanManageRelationships(ctx context.Context, actor access.Actor, worldID ulid.ULID, campaignID *ulid.ULID) (bool, error)
}

// ServiceConfig holds dependencies for Service.
type ServiceConfig struct {
	RelationshipRepo realm.RelationshipRepository
	TypeRepo         realm.RelationshipTypeRepository
	EntityRepo       realm.EntityRepository
	CampaignRepo     realm.CampaignRepository
	CharacterRepo    realm.CharacterRepository
	GrantRepo        realm.GrantRepository
	Checker          AccessChecker
	Authority        ManageAuthority
	Transactor       realm.Transactor

	// Metrics is optional; nil records nothing.
	Metrics *observability.Metrics
}

// Service provides relationship graph operations. Mutations that touch a
// peer pair always run inside a single transaction; a pair is never left
// half-written.
type Service struct {
	rels       realm.RelationshipRepository
	types      realm.RelationshipTypeRepository
	entities   realm.EntityRepository
	campaigns  realm.CampaignRepository
	characters realm.CharacterRepository
	grants     realm.GrantRepository
	checker    AccessChecker
	authority  ManageAuthority
	tx         realm.Transactor
	metrics    *observability.Metrics
}

// NewService creates a Service with the given configuration.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		rels:       cfg.RelationshipRepo,
		types:      cfg.TypeRepo,
		entities:   cfg.EntityRepo,
		campaigns:  cfg.CampaignRepo,
		characters: cfg.CharacterRepo,
		grants:     cfg.GrantRepo,
		checker:    cfg.Checker,
		authority:  cfg.Authority,
		tx:         cfg.Transactor,
		metrics:    cfg.Metrics,
	}
}

func (s *Service) record(operation string) {
	if s.metrics != nil {
		s.metrics.RelationshipsTotal.WithLabelValues(operation).Inc()
	}
}

// CreateInput is the validated input for Create.
type CreateInput struct {
	RelationshipTypeID ulid.ULID
	FromEntityID       ulid.ULID
	ToEntityID         ulid.ULID

	// Visibility, when nil, is inferred from the request context:
	// CHARACTER if a character context was supplied, else CAMPAIGN if a
	// campaign context was supplied, else GLOBAL.
	Visibility      *realm.VisibilityScope
	VisibilityRefID *ulid.ULID
}

// Create validates and creates a relationship. For peerable types it
// creates the mirrored row under a fresh peer group in the same
// transaction and returns the forward row.
func (s *Service) Create(ctx context.Context, actor access.Actor, in CreateInput, scope access.Context) (*realm.Relationship, error) {
	var zero ulid.ULID
	if in.FromEntityID == zero || in.ToEntityID == zero {
		return nil, &realm.ValidationError{Field: "fromEntityId", Message: "both endpoints are required"}
	}
	if in.FromEntityID == in.ToEntityID {
		return nil, &realm.ValidationError{Field: "toEntityId", Message: "relationship cannot reference the same entity twice"}
	}

	rt, err := s.types.Get(ctx, in.RelationshipTypeID)
	if err != nil {
		return nil, oops.With("relationship_type_id", in.RelationshipTypeID.String()).Wrap(err)
	}
	from, err := s.entities.Get(ctx, in.FromEntityID)
	if err != nil {
		return nil, oops.With("entity_id", in.FromEntityID.String()).Wrap(err)
	}
	to, err := s.entities.Get(ctx, in.ToEntityID)
	if err != nil {
		return nil, oops.With("entity_id", in.ToEntityID.String()).Wrap(err)
	}
	if from.WorldID != rt.WorldID || to.WorldID != rt.WorldID {
		return nil, &realm.ValidationError{Field: "worldId", Message: "entities must share the relationship type's world"}
	}

	if err := s.requireManage(ctx, actor, rt.WorldID, scope); err != nil {
		return nil, err
	}
	if err := s.requireEndpointRead(ctx, actor, from, scope); err != nil {
		return nil, err
	}
	if err := s.requireEndpointRead(ctx, actor, to, scope); err != nil {
		return nil, err
	}

	forward, err := s.types.RuleExists(ctx, rt.ID, from.EntityTypeID, to.EntityTypeID)
	if err != nil {
		return nil, oops.With("relationship_type_id", rt.ID.String()).Wrap(err)
	}
	if !forward {
		return nil, &realm.ValidationError{Field: "relationshipTypeId", Message: "no rule allows this entity type pairing"}
	}
	if rt.Peerable {
		reverse, err := s.types.RuleExists(ctx, rt.ID, to.EntityTypeID, from.EntityTypeID)
		if err != nil {
			return nil, oops.With("relationship_type_id", rt.ID.String()).Wrap(err)
		}
		if !reverse {
			return nil, &realm.ValidationError{Field: "relationshipTypeId", Message: "peerable types require the reverse rule as well"}
		}
	}

	if err := s.requireNoActiveDuplicate(ctx, rt, in.FromEntityID, in.ToEntityID); err != nil {
		return nil, err
	}

	visibility, refID, err := s.resolveVisibility(ctx, rt.WorldID, in.Visibility, in.VisibilityRefID, scope)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rel := &realm.Relationship{
		ID:                 ulid.Make(),
		WorldID:            rt.WorldID,
		RelationshipTypeID: rt.ID,
		FromEntityID:       in.FromEntityID,
		ToEntityID:         in.ToEntityID,
		Status:             realm.RelationshipActive,
		Visibility:         visibility,
		VisibilityRefID:    refID,
		CreatedByID:        actor.ID,
		CreatedAt:          now,
	}

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if rt.Peerable {
			peerGroup := ulid.Make()
			rel.PeerGroupID = &peerGroup
			mirror := *rel
			mirror.ID = ulid.Make()
			mirror.FromEntityID = rel.ToEntityID
			mirror.ToEntityID = rel.FromEntityID
			if err := s.rels.Create(ctx, rel); err != nil {
				return err
			}
			return s.rels.Create(ctx, &mirror)
		}
		return s.rels.Create(ctx, rel)
	})
	if err != nil {
		return nil, oops.With("relationship_id", rel.ID.String()).Wrap(err)
	}
	s.record("create")
	return rel, nil
}

// Expire transitions a relationship (and its peer, if any) to EXPIRED.
// EXPIRED is terminal; expiring an already-expired relationship is a
// conflict.
func (s *Service) Expire(ctx context.Context, actor access.Actor, id ulid.ULID, scope access.Context) error {
	rel, err := s.rels.Get(ctx, id)
	if err != nil {
		return oops.With("relationship_id", id.String()).Wrap(err)
	}
	if err := s.requireManage(ctx, actor, rel.WorldID, scope); err != nil {
		return err
	}
	if rel.Status == realm.RelationshipExpired {
		return oops.Code("RELATIONSHIP_EXPIRED").With("relationship_id", id.String()).Wrap(realm.ErrConflict)
	}
	group, err := s.resolveGroup(ctx, rel)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		for _, row := range group {
			row.Status = realm.RelationshipExpired
			row.ExpiredAt = &now
			if err := s.rels.Update(ctx, row); err != nil {
				return oops.With("relationship_id", row.ID.String()).Wrap(err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.record("expire")
	return nil
}

// SetVisibility changes the visibility scope of a relationship and its
// peer, atomically for the whole group.
func (s *Service) SetVisibility(ctx context.Context, actor access.Actor, id ulid.ULID, visibility realm.VisibilityScope, refID *ulid.ULID, scope access.Context) error {
	rel, err := s.rels.Get(ctx, id)
	if err != nil {
		return oops.With("relationship_id", id.String()).Wrap(err)
	}
	if err := s.requireManage(ctx, actor, rel.WorldID, scope); err != nil {
		return err
	}
	resolved, resolvedRef, err := s.resolveVisibility(ctx, rel.WorldID, &visibility, refID, scope)
	if err != nil {
		return err
	}
	group, err := s.resolveGroup(ctx, rel)
	if err != nil {
		return err
	}
	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		for _, row := range group {
			row.Visibility = resolved
			row.VisibilityRefID = resolvedRef
			if err := s.rels.Update(ctx, row); err != nil {
				return oops.With("relationship_id", row.ID.String()).Wrap(err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.record("set_visibility")
	return nil
}

// Delete removes a relationship and its peer, atomically for the whole
// group.
func (s *Service) Delete(ctx context.Context, actor access.Actor, id ulid.ULID, scope access.Context) error {
	rel, err := s.rels.Get(ctx, id)
	if err != nil {
		return oops.With("relationship_id", id.String()).Wrap(err)
	}
	if err := s.requireManage(ctx, actor, rel.WorldID, scope); err != nil {
		return err
	}
	group, err := s.resolveGroup(ctx, rel)
	if err != nil {
		return err
	}
	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		for _, row := range group {
			if err := s.rels.Delete(ctx, row.ID); err != nil {
				return oops.With("relationship_id", row.ID.String()).Wrap(err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.record("delete")
	return nil
}

func (s *Service) requireManage(ctx context.Context, actor access.Actor, worldID ulid.ULID, scope access.Context) error {
	ok, err := s.authority.CanManageRelationships(ctx, actor, worldID, scope.CampaignID)
	if err != nil {
		return oops.With("world_id", worldID.String()).Wrap(err)
	}
	if !ok {
		return realm.ErrPermissionDenied
	}
	return nil
}

func (s *Service) requireEndpointRead(ctx context.Context, actor access.Actor, entity *realm.Entity, scope access.Context) error {
	grants, err := s.grants.ListForResource(ctx, realm.KindEntity, entity.ID)
	if err != nil {
		return oops.With("entity_id", entity.ID.String()).Wrap(err)
	}
	ok, err := s.checker.CanRead(ctx, actor, entity.WorldID, grants, scope)
	if err != nil {
		return oops.With("entity_id", entity.ID.String()).Wrap(err)
	}
	if !ok {
		return realm.ErrPermissionDenied
	}
	return nil
}

// requireNoActiveDuplicate rejects a second active relationship for the
// ordered pair, and for peerable types the reversed pair as well.
func (s *Service) requireNoActiveDuplicate(ctx context.Context, rt *realm.RelationshipType, fromID, toID ulid.ULID) error {
	pairs := [][2]ulid.ULID{{fromID, toID}}
	if rt.Peerable {
		pairs = append(pairs, [2]ulid.ULID{toID, fromID})
	}
	for _, pair := range pairs {
		_, err := s.rels.FindActive(ctx, rt.ID, pair[0], pair[1])
		if err == nil {
			return oops.Code("RELATIONSHIP_EXISTS").
				With("relationship_type_id", rt.ID.String()).
				Wrap(realm.ErrConflict)
		}
		if !errors.Is(err, realm.ErrNotFound) {
			return oops.With("relationship_type_id", rt.ID.String()).Wrap(err)
		}
	}
	return nil
}

// resolveVisibility applies the default scope and validates references.
// CAMPAIGN and CHARACTER visibility must reference a record in the same
// world; GLOBAL carries no reference.
func (s *Service) resolveVisibility(ctx context.Context, worldID ulid.ULID, visibility *realm.VisibilityScope, refID *ulid.ULID, scope access.Context) (realm.VisibilityScope, *ulid.ULID, error) {
	if visibility == nil {
		switch {
		case scope.CharacterID != nil:
			v := realm.VisibilityCharacter
			visibility, refID = &v, scope.CharacterID
		case scope.CampaignID != nil:
			v := realm.VisibilityCampaign
			visibility, refID = &v, scope.CampaignID
		default:
			v := realm.VisibilityGlobal
			visibility, refID = &v, nil
		}
	}
	if !visibility.Valid() {
		return "", nil, &realm.ValidationError{Field: "visibilityScope", Message: "unknown visibility scope " + string(*visibility)}
	}
	switch *visibility {
	case realm.VisibilityGlobal:
		if refID != nil {
			return "", nil, &realm.ValidationError{Field: "visibilityRefId", Message: "GLOBAL visibility carries no reference"}
		}
	case realm.VisibilityCampaign:
		if refID == nil {
			return "", nil, &realm.ValidationError{Field: "visibilityRefId", Message: "CAMPAIGN visibility requires a campaign reference"}
		}
		campaign, err := s.campaigns.Get(ctx, *refID)
		if err != nil {
			return "", nil, oops.With("campaign_id", refID.String()).Wrap(err)
		}
		if campaign.WorldID != worldID {
			return "", nil, &realm.ValidationError{Field: "visibilityRefId", Message: "campaign belongs to a different world"}
		}
	case realm.VisibilityCharacter:
		if refID == nil {
			return "", nil, &realm.ValidationError{Field: "visibilityRefId", Message: "CHARACTER visibility requires a character reference"}
		}
		character, err := s.characters.Get(ctx, *refID)
		if err != nil {
			return "", nil, oops.With("character_id", refID.String()).Wrap(err)
		}
		if character.WorldID != worldID {
			return "", nil, &realm.ValidationError{Field: "visibilityRefId", Message: "character belongs to a different world"}
		}
	}
	return *visibility, refID, nil
}

// resolveGroup returns every row that must be mutated together with rel:
// the row itself, or both rows of its peer group. A peer group with any
// row count other than two is data corruption and is never silently
// corrected.
func (s *Service) resolveGroup(ctx context.Context, rel *realm.Relationship) ([]*realm.Relationship, error) {
	if rel.PeerGroupID == nil {
		return []*realm.Relationship{rel}, nil
	}
	group, err := s.rels.ListGroup(ctx, *rel.PeerGroupID)
	if err != nil {
		return nil, oops.With("peer_group_id", rel.PeerGroupID.String()).Wrap(err)
	}
	if len(group) != 2 {
		slog.Error("peer group row count invariant violated",
			"peer_group_id", rel.PeerGroupID.String(),
			"rows", len(group))
		return nil, realm.Invariantf("peer group %s has %d rows, want 2", rel.PeerGroupID, len(group))
	}
	return group, nil
}

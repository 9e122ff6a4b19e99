// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

// Package hierarchy manages the per-world location tree: cycle-safe
// re-parenting, containment rule enforcement, child-blocked deletion,
// and access-grant replacement with signature-gated audit records.
package hierarchy

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/loreforge/loreforge/internal/access"
	"github.com/loreforge/loreforge/internal/observability"
	"github.com/loreforge/loreforge/internal/realm"
)

// maxAncestorDepth bounds the ancestor walk. A chain this deep means the
// stored tree already contains a cycle.
const maxAncestorDepth = 256

// ServiceConfig holds dependencies for Service. Audit may be nil, in
// which case access changes are not recorded.
type ServiceConfig struct {
	LocationRepo realm.LocationRepository
	RuleRepo     realm.LocationTypeRuleRepository
	GrantRepo    realm.GrantRepository
	Audit        AuditLog
	Transactor   realm.Transactor
}

// Service provides location tree operations. Callers are expected to
// have resolved access before invoking mutations; the service itself
// only applies the structural rules and the admin containment bypass.
type Service struct {
	locations realm.LocationRepository
	rules     realm.LocationTypeRuleRepository
	grants    realm.GrantRepository
	audit     AuditLog
	tx        realm.Transactor
}

// NewService creates a Service with the given configuration.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		locations: cfg.LocationRepo,
		rules:     cfg.RuleRepo,
		grants:    cfg.GrantRepo,
		audit:     cfg.Audit,
		tx:        cfg.Transactor,
	}
}

// CreateInput is the validated input for Create.
type CreateInput struct {
	WorldID        ulid.ULID
	LocationTypeID ulid.ULID
	Name           string

	// ParentID, when set, places the location under an existing parent,
	// subject to the containment rules.
	ParentID *ulid.ULID

	// BypassRules skips containment rule checks. Admin actors bypass
	// implicitly.
	BypassRules bool
}

// Create validates and creates a location, enforcing containment rules
// when a parent is given.
func (s *Service) Create(ctx context.Context, actor access.Actor, in CreateInput) (*realm.Location, error) {
	if err := realm.ValidateName(in.Name); err != nil {
		return nil, err
	}
	if in.ParentID != nil {
		parent, err := s.locations.Get(ctx, *in.ParentID)
		if err != nil {
			return nil, oops.With("location_id", in.ParentID.String()).Wrap(err)
		}
		if parent.WorldID != in.WorldID {
			return nil, &realm.ValidationError{Field: "parentLocationId", Message: "parent belongs to a different world"}
		}
		if err := s.requireContainment(ctx, actor, in.BypassRules, in.WorldID, parent.LocationTypeID, in.LocationTypeID); err != nil {
			return nil, err
		}
	}
	loc := &realm.Location{
		ID:             ulid.Make(),
		WorldID:        in.WorldID,
		LocationTypeID: in.LocationTypeID,
		ParentID:       in.ParentID,
		Name:           in.Name,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.locations.Create(ctx, loc); err != nil {
		return nil, oops.With("location_id", loc.ID.String()).Wrap(err)
	}
	return loc, nil
}

// SetParentInput is the validated input for SetParent.
type SetParentInput struct {
	LocationID ulid.ULID

	// NewParentID nil detaches the location to the root.
	NewParentID *ulid.ULID

	// BypassRules skips containment rule checks. Admin actors bypass
	// implicitly.
	BypassRules bool
}

// SetParent re-parents a location. The move is rejected when it would
// make the location its own ancestor or when no containment rule allows
// the parent/child type pairing.
func (s *Service) SetParent(ctx context.Context, actor access.Actor, in SetParentInput) error {
	loc, err := s.locations.Get(ctx, in.LocationID)
	if err != nil {
		return oops.With("location_id", in.LocationID.String()).Wrap(err)
	}
	if in.NewParentID == nil {
		loc.ParentID = nil
		return s.update(ctx, loc)
	}
	if *in.NewParentID == loc.ID {
		return &realm.ValidationError{Field: "parentLocationId", Message: "location cannot be its own parent"}
	}

	parent, err := s.locations.Get(ctx, *in.NewParentID)
	if err != nil {
		return oops.With("location_id", in.NewParentID.String()).Wrap(err)
	}
	if parent.WorldID != loc.WorldID {
		return &realm.ValidationError{Field: "parentLocationId", Message: "parent belongs to a different world"}
	}

	if err := s.requireAcyclic(ctx, loc.ID, parent); err != nil {
		return err
	}
	if err := s.requireContainment(ctx, actor, in.BypassRules, loc.WorldID, parent.LocationTypeID, loc.LocationTypeID); err != nil {
		return err
	}

	loc.ParentID = in.NewParentID
	return s.update(ctx, loc)
}

// Delete removes a location. Deletion is blocked while any location
// still names this one as its parent.
func (s *Service) Delete(ctx context.Context, actor access.Actor, locationID ulid.ULID) error {
	loc, err := s.locations.Get(ctx, locationID)
	if err != nil {
		return oops.With("location_id", locationID.String()).Wrap(err)
	}
	hasChildren, err := s.locations.HasChildren(ctx, loc.ID)
	if err != nil {
		return oops.With("location_id", loc.ID.String()).Wrap(err)
	}
	if hasChildren {
		return &realm.ValidationError{Field: "locationId", Message: "location has child locations"}
	}
	if err := s.locations.Delete(ctx, loc.ID); err != nil {
		return oops.With("location_id", loc.ID.String()).Wrap(err)
	}
	return nil
}

// ReplaceAccess replaces the full grant set of a resource inside one
// transaction. Grants are never patched in place. An audit record is
// written only when the order-independent grant signature changed, so
// resending the same set is a silent no-op.
func (s *Service) ReplaceAccess(ctx context.Context, actor access.Actor, kind realm.ResourceKind, resourceID ulid.ULID, grants []realm.AccessGrant) error {
	if !kind.Valid() {
		return &realm.ValidationError{Field: "resourceKind", Message: "unknown resource kind " + string(kind)}
	}
	if err := realm.ValidateGrants(grants); err != nil {
		return err
	}

	old, err := s.grants.ListForResource(ctx, kind, resourceID)
	if err != nil {
		return oops.With("resource_id", resourceID.String()).Wrap(err)
	}
	oldSig := realm.GrantSignature(old)
	newSig := realm.GrantSignature(grants)

	return s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.grants.ReplaceForResource(ctx, kind, resourceID, grants); err != nil {
			return oops.With("resource_id", resourceID.String()).Wrap(err)
		}
		if oldSig == newSig || s.audit == nil {
			return nil
		}
		change := AccessChange{
			ActorID:      actor.ID,
			ResourceKind: kind,
			ResourceID:   resourceID,
			OldSignature: oldSig,
			NewSignature: newSig,
			At:           time.Now().UTC(),
		}
		if err := s.audit.RecordAccessChange(ctx, change); err != nil {
			observability.RecordAuditWriteFailure()
			return oops.With("resource_id", resourceID.String()).Wrap(err)
		}
		return nil
	})
}

func (s *Service) update(ctx context.Context, loc *realm.Location) error {
	if err := s.locations.Update(ctx, loc); err != nil {
		return oops.With("location_id", loc.ID.String()).Wrap(err)
	}
	return nil
}

// requireAcyclic walks the candidate parent's ancestor chain. Finding
// locID in the chain rejects the move; revisiting an ancestor or running
// past the depth cap means the stored tree is already cyclic, which is
// corruption, not caller error.
func (s *Service) requireAcyclic(ctx context.Context, locID ulid.ULID, parent *realm.Location) error {
	visited := map[ulid.ULID]struct{}{}
	current := parent
	for depth := 0; ; depth++ {
		if current.ID == locID {
			return &realm.ValidationError{Field: "parentLocationId", Message: "move would create a cycle"}
		}
		if _, seen := visited[current.ID]; seen || depth > maxAncestorDepth {
			slog.Error("location ancestor chain is cyclic",
				"location_id", locID.String(),
				"ancestor_id", current.ID.String())
			return realm.Invariantf("location %s has a cyclic ancestor chain", current.ID)
		}
		visited[current.ID] = struct{}{}
		if current.ParentID == nil {
			return nil
		}
		next, err := s.locations.Get(ctx, *current.ParentID)
		if err != nil {
			return oops.With("location_id", current.ParentID.String()).Wrap(err)
		}
		current = next
	}
}

// requireContainment enforces the world's parent/child type rules.
// Global admins and explicit bypass skip the check.
func (s *Service) requireContainment(ctx context.Context, actor access.Actor, bypass bool, worldID, parentTypeID, childTypeID ulid.ULID) error {
	if bypass || actor.IsAdmin() {
		return nil
	}
	allowed, err := s.rules.Allowed(ctx, worldID, parentTypeID, childTypeID)
	if err != nil {
		return oops.With("world_id", worldID.String()).Wrap(err)
	}
	if !allowed {
		return &realm.ValidationError{Field: "parentLocationId", Message: "no containment rule allows this location type pairing"}
	}
	return nil
}

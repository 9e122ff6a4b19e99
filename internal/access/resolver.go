// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

package access

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/loreforge/loreforge/internal/observability"
	"github.com/loreforge/loreforge/internal/realm"
)

// Resolver computes point checks and bulk-query filters from access
// grants and membership facts. Absence of a grant is not an error: the
// answer is simply false. Missing world or resource lookups are the
// caller's responsibility (404 before 403).
type Resolver struct {
	memberships MembershipReader
	metrics     *observability.Metrics
}

// NewResolver creates a Resolver over the given membership lookups.
func NewResolver(memberships MembershipReader) *Resolver {
	return &Resolver{memberships: memberships}
}

// WithMetrics attaches decision counters. Optional; nil metrics record
// nothing.
func (r *Resolver) WithMetrics(m *observability.Metrics) *Resolver {
	r.metrics = m
	return r
}

// CanRead reports whether the actor may read a resource in the given
// world, given the resource's grant set and the request context.
func (r *Resolver) CanRead(ctx context.Context, actor Actor, worldID ulid.ULID, grants []realm.AccessGrant, scope Context) (bool, error) {
	return r.can(ctx, actor, worldID, realm.AccessRead, grants, scope)
}

// CanWrite reports whether the actor may write a resource in the given
// world. WRITE never implies READ and vice versa; callers check each
// explicitly.
func (r *Resolver) CanWrite(ctx context.Context, actor Actor, worldID ulid.ULID, grants []realm.AccessGrant, scope Context) (bool, error) {
	return r.can(ctx, actor, worldID, realm.AccessWrite, grants, scope)
}

func (r *Resolver) can(ctx context.Context, actor Actor, worldID ulid.ULID, access realm.AccessType, grants []realm.AccessGrant, scope Context) (bool, error) {
	bypass, err := r.bypasses(ctx, actor, worldID)
	if err != nil {
		return false, err
	}
	if bypass {
		r.record(access, true)
		return true, nil
	}
	for _, pred := range predicates(scope) {
		for _, g := range grants {
			if g.AccessType != access || g.ScopeType != pred.Type {
				continue
			}
			if matchScopeID(g.ScopeID, pred.ID) {
				r.record(access, true)
				return true, nil
			}
		}
	}
	r.record(access, false)
	return false, nil
}

func (r *Resolver) record(access realm.AccessType, allowed bool) {
	if r.metrics == nil {
		return
	}
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	r.metrics.AccessChecksTotal.WithLabelValues(string(access), decision).Inc()
}

// BuildFilter returns the predicate bulk listings apply: world equality
// intersected with the OR of "has a matching grant" across the same
// predicate set the point check uses. The bypass short-circuits here
// exactly as it does for point checks.
func (r *Resolver) BuildFilter(ctx context.Context, actor Actor, worldID ulid.ULID, access realm.AccessType, scope Context) (realm.AccessFilter, error) {
	bypass, err := r.bypasses(ctx, actor, worldID)
	if err != nil {
		return realm.AccessFilter{}, err
	}
	f := realm.AccessFilter{WorldID: worldID, Access: access, Bypass: bypass}
	if !bypass {
		f.Scopes = predicates(scope)
	}
	return f, nil
}

// bypasses reports whether the actor skips grant evaluation entirely:
// global admins and world architects (primary or delegated) see and
// touch everything in the world. Evaluated first, always.
func (r *Resolver) bypasses(ctx context.Context, actor Actor, worldID ulid.ULID) (bool, error) {
	if actor.IsAdmin() {
		return true, nil
	}
	architect, err := r.memberships.IsWorldArchitect(ctx, actor.ID, worldID)
	if err != nil {
		return false, oops.In("access").With("world_id", worldID.String()).Wrap(err)
	}
	return architect, nil
}

// predicates collects the scope branches that apply to a request
// context: GLOBAL always, CAMPAIGN and CHARACTER only when supplied.
func predicates(scope Context) []realm.ScopePredicate {
	preds := []realm.ScopePredicate{{Type: realm.ScopeGlobal}}
	if scope.CampaignID != nil {
		preds = append(preds, realm.ScopePredicate{Type: realm.ScopeCampaign, ID: scope.CampaignID})
	}
	if scope.CharacterID != nil {
		preds = append(preds, realm.ScopePredicate{Type: realm.ScopeCharacter, ID: scope.CharacterID})
	}
	return preds
}

func matchScopeID(grantID, predID *ulid.ULID) bool {
	if grantID == nil && predID == nil {
		return true
	}
	if grantID == nil || predID == nil {
		return false
	}
	return *grantID == *predID
}

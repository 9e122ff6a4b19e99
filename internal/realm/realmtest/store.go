// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

// Package realmtest provides an in-memory store implementing the realm
// repository contracts for service-level tests.
package realmtest

import (
	"context"
	"sort"

	"github.com/oklog/ulid/v2"

	"github.com/loreforge/loreforge/internal/realm"
)

// Store holds all realm records in maps. The zero value is not usable;
// call NewStore.
type Store struct {
	Worlds        map[ulid.ULID]*realm.World
	Campaigns     map[ulid.ULID]*realm.Campaign
	Characters    map[ulid.ULID]*realm.Character
	Entities      map[ulid.ULID]*realm.Entity
	Locations     map[ulid.ULID]*realm.Location
	LocationRules []realm.LocationTypeRule
	RelTypes      map[ulid.ULID]*realm.RelationshipType
	RelRules      []realm.RelationshipTypeRule
	Relationships map[ulid.ULID]*realm.Relationship
	Roster        map[ulid.ULID][]realm.RosterEntry
	Grants        map[string][]realm.AccessGrant

	// TxCount records how many transactions were opened.
	TxCount int
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		Worlds:        make(map[ulid.ULID]*realm.World),
		Campaigns:     make(map[ulid.ULID]*realm.Campaign),
		Characters:    make(map[ulid.ULID]*realm.Character),
		Entities:      make(map[ulid.ULID]*realm.Entity),
		Locations:     make(map[ulid.ULID]*realm.Location),
		RelTypes:      make(map[ulid.ULID]*realm.RelationshipType),
		Relationships: make(map[ulid.ULID]*realm.Relationship),
		Roster:        make(map[ulid.ULID][]realm.RosterEntry),
		Grants:        make(map[string][]realm.AccessGrant),
	}
}

// InTransaction implements realm.Transactor. The in-memory store has no
// real transactions; fn runs directly.
func (s *Store) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.TxCount++
	return fn(ctx)
}

// WorldRepo returns a WorldRepository view of the store.
func (s *Store) WorldRepo() realm.WorldRepository { return worldRepo{s} }

// CampaignRepo returns a CampaignRepository view of the store.
func (s *Store) CampaignRepo() realm.CampaignRepository { return campaignRepo{s} }

// CharacterRepo returns a CharacterRepository view of the store.
func (s *Store) CharacterRepo() realm.CharacterRepository { return characterRepo{s} }

// EntityRepo returns an EntityRepository view of the store.
func (s *Store) EntityRepo() realm.EntityRepository { return entityRepo{s} }

// LocationRepo returns a LocationRepository view of the store.
func (s *Store) LocationRepo() realm.LocationRepository { return locationRepo{s} }

// LocationRuleRepo returns a LocationTypeRuleRepository view of the store.
func (s *Store) LocationRuleRepo() realm.LocationTypeRuleRepository { return locationRuleRepo{s} }

// GrantRepo returns a GrantRepository view of the store.
func (s *Store) GrantRepo() realm.GrantRepository { return grantRepo{s} }

// RelTypeRepo returns a RelationshipTypeRepository view of the store.
func (s *Store) RelTypeRepo() realm.RelationshipTypeRepository { return relTypeRepo{s} }

// RelationshipRepo returns a RelationshipRepository view of the store.
func (s *Store) RelationshipRepo() realm.RelationshipRepository { return relationshipRepo{s} }

func grantKey(kind realm.ResourceKind, id ulid.ULID) string {
	return string(kind) + "|" + id.String()
}

// SetGrants replaces the grant set for a resource directly, bypassing
// any service logic. Test setup helper.
func (s *Store) SetGrants(kind realm.ResourceKind, id ulid.ULID, grants []realm.AccessGrant) {
	s.Grants[grantKey(kind, id)] = grants
}

type worldRepo struct{ s *Store }

func (r worldRepo) Get(_ context.Context, id ulid.ULID) (*realm.World, error) {
	w, ok := r.s.Worlds[id]
	if !ok {
		return nil, realm.ErrNotFound
	}
	return w, nil
}

type campaignRepo struct{ s *Store }

func (r campaignRepo) Get(_ context.Context, id ulid.ULID) (*realm.Campaign, error) {
	c, ok := r.s.Campaigns[id]
	if !ok {
		return nil, realm.ErrNotFound
	}
	return c, nil
}

func (r campaignRepo) SetRosterStatus(_ context.Context, campaignID, characterID ulid.ULID, status realm.RosterStatus) error {
	entries := r.s.Roster[campaignID]
	for i := range entries {
		if entries[i].CharacterID == characterID {
			entries[i].Status = status
			return nil
		}
	}
	r.s.Roster[campaignID] = append(entries, realm.RosterEntry{
		CampaignID:  campaignID,
		CharacterID: characterID,
		Status:      status,
	})
	return nil
}

func (r campaignRepo) Roster(_ context.Context, campaignID ulid.ULID) ([]realm.RosterEntry, error) {
	return r.s.Roster[campaignID], nil
}

type characterRepo struct{ s *Store }

func (r characterRepo) Get(_ context.Context, id ulid.ULID) (*realm.Character, error) {
	c, ok := r.s.Characters[id]
	if !ok {
		return nil, realm.ErrNotFound
	}
	return c, nil
}

type entityRepo struct{ s *Store }

func (r entityRepo) Get(_ context.Context, id ulid.ULID) (*realm.Entity, error) {
	e, ok := r.s.Entities[id]
	if !ok {
		return nil, realm.ErrNotFound
	}
	return e, nil
}

func (r entityRepo) Create(_ context.Context, e *realm.Entity) error {
	r.s.Entities[e.ID] = e
	return nil
}

func (r entityRepo) Update(_ context.Context, e *realm.Entity) error {
	if _, ok := r.s.Entities[e.ID]; !ok {
		return realm.ErrNotFound
	}
	r.s.Entities[e.ID] = e
	return nil
}

func (r entityRepo) Delete(_ context.Context, id ulid.ULID) error {
	if _, ok := r.s.Entities[id]; !ok {
		return realm.ErrNotFound
	}
	delete(r.s.Entities, id)
	return nil
}

func (r entityRepo) Names(_ context.Context, ids []ulid.ULID) (map[ulid.ULID]string, error) {
	names := make(map[ulid.ULID]string, len(ids))
	for _, id := range ids {
		if e, ok := r.s.Entities[id]; ok {
			names[id] = e.Name
		}
	}
	return names, nil
}

func (r entityRepo) List(_ context.Context, f realm.AccessFilter) ([]*realm.Entity, error) {
	var out []*realm.Entity
	for _, e := range r.s.Entities {
		if e.WorldID != f.WorldID {
			continue
		}
		if f.Bypass || r.s.grantMatches(f, realm.KindEntity, e.ID) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type locationRepo struct{ s *Store }

func (r locationRepo) Get(_ context.Context, id ulid.ULID) (*realm.Location, error) {
	l, ok := r.s.Locations[id]
	if !ok {
		return nil, realm.ErrNotFound
	}
	return l, nil
}

func (r locationRepo) Create(_ context.Context, l *realm.Location) error {
	r.s.Locations[l.ID] = l
	return nil
}

func (r locationRepo) Update(_ context.Context, l *realm.Location) error {
	if _, ok := r.s.Locations[l.ID]; !ok {
		return realm.ErrNotFound
	}
	r.s.Locations[l.ID] = l
	return nil
}

func (r locationRepo) Delete(_ context.Context, id ulid.ULID) error {
	if _, ok := r.s.Locations[id]; !ok {
		return realm.ErrNotFound
	}
	delete(r.s.Locations, id)
	return nil
}

func (r locationRepo) HasChildren(_ context.Context, id ulid.ULID) (bool, error) {
	for _, l := range r.s.Locations {
		if l.ParentID != nil && *l.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r locationRepo) List(_ context.Context, f realm.AccessFilter) ([]*realm.Location, error) {
	var out []*realm.Location
	for _, l := range r.s.Locations {
		if l.WorldID != f.WorldID {
			continue
		}
		if f.Bypass || r.s.grantMatches(f, realm.KindLocation, l.ID) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type locationRuleRepo struct{ s *Store }

func (r locationRuleRepo) Allowed(_ context.Context, worldID, parentTypeID, childTypeID ulid.ULID) (bool, error) {
	for _, rule := range r.s.LocationRules {
		if rule.WorldID == worldID && rule.ParentTypeID == parentTypeID && rule.ChildTypeID == childTypeID {
			return rule.Allowed, nil
		}
	}
	return false, nil
}

func (r locationRuleRepo) Create(_ context.Context, rule *realm.LocationTypeRule) error {
	r.s.LocationRules = append(r.s.LocationRules, *rule)
	return nil
}

type grantRepo struct{ s *Store }

func (r grantRepo) ListForResource(_ context.Context, kind realm.ResourceKind, resourceID ulid.ULID) ([]realm.AccessGrant, error) {
	return r.s.Grants[grantKey(kind, resourceID)], nil
}

func (r grantRepo) ReplaceForResource(_ context.Context, kind realm.ResourceKind, resourceID ulid.ULID, grants []realm.AccessGrant) error {
	r.s.Grants[grantKey(kind, resourceID)] = append([]realm.AccessGrant(nil), grants...)
	return nil
}

type relTypeRepo struct{ s *Store }

func (r relTypeRepo) Get(_ context.Context, id ulid.ULID) (*realm.RelationshipType, error) {
	rt, ok := r.s.RelTypes[id]
	if !ok {
		return nil, realm.ErrNotFound
	}
	return rt, nil
}

func (r relTypeRepo) RuleExists(_ context.Context, typeID, fromEntityTypeID, toEntityTypeID ulid.ULID) (bool, error) {
	for _, rule := range r.s.RelRules {
		if rule.RelationshipTypeID == typeID && rule.FromEntityTypeID == fromEntityTypeID && rule.ToEntityTypeID == toEntityTypeID {
			return true, nil
		}
	}
	return false, nil
}

type relationshipRepo struct{ s *Store }

func (r relationshipRepo) Get(_ context.Context, id ulid.ULID) (*realm.Relationship, error) {
	rel, ok := r.s.Relationships[id]
	if !ok {
		return nil, realm.ErrNotFound
	}
	return rel, nil
}

func (r relationshipRepo) Create(_ context.Context, rel *realm.Relationship) error {
	cp := *rel
	r.s.Relationships[rel.ID] = &cp
	return nil
}

func (r relationshipRepo) Update(_ context.Context, rel *realm.Relationship) error {
	if _, ok := r.s.Relationships[rel.ID]; !ok {
		return realm.ErrNotFound
	}
	cp := *rel
	r.s.Relationships[rel.ID] = &cp
	return nil
}

func (r relationshipRepo) Delete(_ context.Context, id ulid.ULID) error {
	if _, ok := r.s.Relationships[id]; !ok {
		return realm.ErrNotFound
	}
	delete(r.s.Relationships, id)
	return nil
}

func (r relationshipRepo) ListGroup(_ context.Context, peerGroupID ulid.ULID) ([]*realm.Relationship, error) {
	var out []*realm.Relationship
	for _, rel := range r.s.Relationships {
		if rel.PeerGroupID != nil && *rel.PeerGroupID == peerGroupID {
			out = append(out, rel)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Compare(out[j].ID) < 0 })
	return out, nil
}

func (r relationshipRepo) FindActive(_ context.Context, typeID, fromEntityID, toEntityID ulid.ULID) (*realm.Relationship, error) {
	for _, rel := range r.s.Relationships {
		if rel.RelationshipTypeID == typeID && rel.FromEntityID == fromEntityID &&
			rel.ToEntityID == toEntityID && rel.Status == realm.RelationshipActive {
			return rel, nil
		}
	}
	return nil, realm.ErrNotFound
}

func (r relationshipRepo) ListForEntity(_ context.Context, entityID ulid.ULID, statuses []realm.RelationshipStatus, typeID *ulid.ULID) ([]*realm.Relationship, error) {
	var out []*realm.Relationship
	for _, rel := range r.s.Relationships {
		if rel.FromEntityID != entityID && rel.ToEntityID != entityID {
			continue
		}
		if typeID != nil && rel.RelationshipTypeID != *typeID {
			continue
		}
		if !statusIn(rel.Status, statuses) {
			continue
		}
		out = append(out, rel)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Compare(out[j].ID) < 0 })
	return out, nil
}

func statusIn(s realm.RelationshipStatus, set []realm.RelationshipStatus) bool {
	for _, candidate := range set {
		if candidate == s {
			return true
		}
	}
	return false
}

// grantMatches mirrors the SQL EXISTS clause the Postgres repositories
// build from an access filter.
func (s *Store) grantMatches(f realm.AccessFilter, kind realm.ResourceKind, resourceID ulid.ULID) bool {
	for _, g := range s.Grants[grantKey(kind, resourceID)] {
		if g.AccessType != f.Access {
			continue
		}
		for _, pred := range f.Scopes {
			if g.ScopeType != pred.Type {
				continue
			}
			if g.ScopeID == nil && pred.ID == nil {
				return true
			}
			if g.ScopeID != nil && pred.ID != nil && *g.ScopeID == *pred.ID {
				return true
			}
		}
	}
	return false
}

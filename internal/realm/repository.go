// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

package realm

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// Transactor runs a function inside a single database transaction. All
// multi-row invariant-preserving operations (peer-pair writes, grant
// replacement, field batch updates) go through it so partial failure
// cannot leave stored state inconsistent.
type Transactor interface {
	// InTransaction begins a transaction, calls fn with a context that
	// carries it, and commits iff fn returns nil.
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ScopePredicate is one branch of an access filter: "has a grant at this
// scope". GLOBAL predicates carry no ID.
type ScopePredicate struct {
	Type ScopeType
	ID   *ulid.ULID
}

// AccessFilter is the composable predicate produced by the access
// resolver for bulk listing. It always intersects with world equality.
// When Bypass is set (admin or architect) the grant branches are skipped
// entirely.
type AccessFilter struct {
	WorldID ulid.ULID
	Access  AccessType
	Bypass  bool
	Scopes  []ScopePredicate
}

// WorldRepository manages world persistence.
type WorldRepository interface {
	// Get retrieves a world by ID.
	Get(ctx context.Context, id ulid.ULID) (*World, error)
}

// CampaignRepository manages campaigns and their rosters.
type CampaignRepository interface {
	// Get retrieves a campaign by ID.
	Get(ctx context.Context, id ulid.ULID) (*Campaign, error)

	// SetRosterStatus adds a character to the roster or updates its
	// status if already present.
	SetRosterStatus(ctx context.Context, campaignID, characterID ulid.ULID, status RosterStatus) error

	// Roster returns all roster entries for a campaign.
	Roster(ctx context.Context, campaignID ulid.ULID) ([]RosterEntry, error)
}

// CharacterRepository manages character persistence.
type CharacterRepository interface {
	// Get retrieves a character by ID.
	Get(ctx context.Context, id ulid.ULID) (*Character, error)
}

// EntityRepository manages entity persistence.
type EntityRepository interface {
	// Get retrieves an entity by ID.
	Get(ctx context.Context, id ulid.ULID) (*Entity, error)

	// Create persists a new entity.
	Create(ctx context.Context, e *Entity) error

	// Update modifies an existing entity.
	Update(ctx context.Context, e *Entity) error

	// Delete removes an entity by ID.
	Delete(ctx context.Context, id ulid.ULID) error

	// Names resolves display names for a set of entity IDs. Missing IDs
	// are absent from the result, not an error.
	Names(ctx context.Context, ids []ulid.ULID) (map[ulid.ULID]string, error)

	// List returns entities visible under the given access filter,
	// ordered by name.
	List(ctx context.Context, f AccessFilter) ([]*Entity, error)
}

// LocationRepository manages location persistence.
type LocationRepository interface {
	// Get retrieves a location by ID.
	Get(ctx context.Context, id ulid.ULID) (*Location, error)

	// Create persists a new location.
	Create(ctx context.Context, l *Location) error

	// Update modifies an existing location, including re-parenting.
	Update(ctx context.Context, l *Location) error

	// Delete removes a location by ID. Callers check for children first.
	Delete(ctx context.Context, id ulid.ULID) error

	// HasChildren reports whether any location has this one as parent.
	HasChildren(ctx context.Context, id ulid.ULID) (bool, error)

	// List returns locations visible under the given access filter,
	// ordered by name.
	List(ctx context.Context, f AccessFilter) ([]*Location, error)
}

// LocationTypeRuleRepository manages containment rules.
type LocationTypeRuleRepository interface {
	// Allowed reports whether a rule permits childType under parentType
	// in the given world. Absence of a rule means not allowed.
	Allowed(ctx context.Context, worldID, parentTypeID, childTypeID ulid.ULID) (bool, error)

	// Create persists a new containment rule.
	Create(ctx context.Context, r *LocationTypeRule) error
}

// GrantRepository manages access grants for entities and locations.
type GrantRepository interface {
	// ListForResource returns all grants on a resource.
	ListForResource(ctx context.Context, kind ResourceKind, resourceID ulid.ULID) ([]AccessGrant, error)

	// ReplaceForResource deletes every grant on the resource and inserts
	// the new set. Grants are never patched in place; full replacement is
	// what makes signature comparison meaningful.
	ReplaceForResource(ctx context.Context, kind ResourceKind, resourceID ulid.ULID, grants []AccessGrant) error
}

// RelationshipTypeRepository manages relationship types and their rules.
type RelationshipTypeRepository interface {
	// Get retrieves a relationship type by ID.
	Get(ctx context.Context, id ulid.ULID) (*RelationshipType, error)

	// RuleExists reports whether a directed rule allows fromEntityType →
	// toEntityType under the given relationship type.
	RuleExists(ctx context.Context, typeID, fromEntityTypeID, toEntityTypeID ulid.ULID) (bool, error)
}

// RelationshipRepository manages relationship rows. Peer-group semantics
// live in the relationship service; this interface only moves rows.
type RelationshipRepository interface {
	// Get retrieves a relationship by ID.
	Get(ctx context.Context, id ulid.ULID) (*Relationship, error)

	// Create persists a new relationship row.
	Create(ctx context.Context, r *Relationship) error

	// Update modifies an existing relationship row.
	Update(ctx context.Context, r *Relationship) error

	// Delete removes a relationship row by ID.
	Delete(ctx context.Context, id ulid.ULID) error

	// ListGroup returns all rows sharing a peer group ID.
	ListGroup(ctx context.Context, peerGroupID ulid.ULID) ([]*Relationship, error)

	// FindActive returns the active relationship for the ordered triple,
	// or ErrNotFound.
	FindActive(ctx context.Context, typeID, fromEntityID, toEntityID ulid.ULID) (*Relationship, error)

	// ListForEntity returns rows where the entity is either endpoint,
	// restricted to the given statuses and, when typeID is non-nil, to
	// one relationship type.
	ListForEntity(ctx context.Context, entityID ulid.ULID, statuses []RelationshipStatus, typeID *ulid.ULID) ([]*Relationship, error)
}

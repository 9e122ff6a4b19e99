// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

package realm

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// RelationshipType declares a kind of link between entities within one
// world. FromLabel describes the link as seen from the source entity,
// ToLabel as seen from the target ("employs" / "works for"). The past
// labels, when present, replace the live labels once a relationship has
// expired. Peerable types are undirected: relationships of a peerable
// type are stored as two mirrored rows sharing a peer group.
type RelationshipType struct {
	ID            ulid.ULID
	WorldID       ulid.ULID
	Name          string
	FromLabel     string
	ToLabel       string
	PastFromLabel *string
	PastToLabel   *string
	Peerable      bool
}

// RelationshipTypeRule allows the directed pairing of two entity types
// under a relationship type. Peerable types need both directions declared
// before a relationship may be created.
type RelationshipTypeRule struct {
	ID                 ulid.ULID
	RelationshipTypeID ulid.ULID
	FromEntityTypeID   ulid.ULID
	ToEntityTypeID     ulid.ULID
}

// RelationshipStatus is the lifecycle state of a relationship. EXPIRED is
// terminal.
type RelationshipStatus string

// Relationship statuses.
const (
	RelationshipActive  RelationshipStatus = "ACTIVE"
	RelationshipExpired RelationshipStatus = "EXPIRED"
)

// VisibilityScope controls who sees a relationship when listing.
type VisibilityScope string

// Visibility scopes.
const (
	VisibilityGlobal    VisibilityScope = "GLOBAL"
	VisibilityCampaign  VisibilityScope = "CAMPAIGN"
	VisibilityCharacter VisibilityScope = "CHARACTER"
)

// Valid reports whether the visibility scope is one of the declared values.
func (v VisibilityScope) Valid() bool {
	return v == VisibilityGlobal || v == VisibilityCampaign || v == VisibilityCharacter
}

// Relationship is one directed link between two entities. When
// PeerGroupID is set, exactly two rows share it, one in each direction,
// and the pair is always mutated together: status, expiry, and visibility
// never diverge within a group.
type Relationship struct {
	ID                 ulid.ULID
	WorldID            ulid.ULID
	RelationshipTypeID ulid.ULID
	FromEntityID       ulid.ULID
	ToEntityID         ulid.ULID
	PeerGroupID        *ulid.ULID
	Status             RelationshipStatus
	ExpiredAt          *time.Time
	Visibility         VisibilityScope
	VisibilityRefID    *ulid.ULID
	CreatedByID        ulid.ULID
	CreatedAt          time.Time
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

package relationship

import (
	"context"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/loreforge/loreforge/internal/access"
	"github.com/loreforge/loreforge/internal/realm"
)

// StatusFilter selects which lifecycle states a listing includes.
type StatusFilter string

// Status filters. The default is active-only.
const (
	StatusActive  StatusFilter = "ACTIVE"
	StatusExpired StatusFilter = "EXPIRED"
	StatusAll     StatusFilter = "ALL"
)

// Query restricts a relationship listing.
type Query struct {
	// Status defaults to StatusActive when empty.
	Status StatusFilter

	// TypeID, when set, restricts the listing to one relationship type.
	TypeID *ulid.ULID
}

// Direction is the orientation of a listed relationship relative to the
// queried entity.
type Direction string

// Directions.
const (
	DirectionOutgoing Direction = "OUTGOING"
	DirectionIncoming Direction = "INCOMING"
)

// View is one display-ready entry in a relationship listing. Peer pairs
// are collapsed to a single undirected entry.
type View struct {
	RelationshipID    ulid.ULID
	TypeID            ulid.ULID
	TypeName          string
	Peer              bool
	Direction         Direction
	Status            realm.RelationshipStatus
	Label             string
	RelatedEntityID   ulid.ULID
	RelatedEntityName string
	ExpiredAt         *time.Time
	Visibility        realm.VisibilityScope
	VisibilityRefID   *ulid.ULID
}

// List returns the display-ready relationships of an entity. Visibility
// scoping applies unless the actor can manage relationships in the
// world, in which case everything is visible.
func (s *Service) List(ctx context.Context, actor access.Actor, entityID ulid.ULID, q Query, scope access.Context) ([]View, error) {
	entity, err := s.entities.Get(ctx, entityID)
	if err != nil {
		return nil, oops.With("entity_id", entityID.String()).Wrap(err)
	}

	manage, err := s.authority.CanManageRelationships(ctx, actor, entity.WorldID, scope.CampaignID)
	if err != nil {
		return nil, oops.With("world_id", entity.WorldID.String()).Wrap(err)
	}

	rows, err := s.rels.ListForEntity(ctx, entityID, q.statuses(), q.TypeID)
	if err != nil {
		return nil, oops.With("entity_id", entityID.String()).Wrap(err)
	}
	if !manage {
		rows = filterVisible(rows, scope)
	}
	rows = collapsePeers(rows, entityID)

	types, err := s.loadTypes(ctx, rows)
	if err != nil {
		return nil, err
	}
	names, err := s.loadRelatedNames(ctx, rows, entityID)
	if err != nil {
		return nil, err
	}

	views := make([]View, 0, len(rows))
	for _, row := range rows {
		rt := types[row.RelationshipTypeID]
		views = append(views, buildView(row, rt, entityID, names))
	}
	sortViews(views)
	return views, nil
}

// statuses expands the filter to the concrete status set. Default is
// active-only.
func (q Query) statuses() []realm.RelationshipStatus {
	switch q.Status {
	case StatusExpired:
		return []realm.RelationshipStatus{realm.RelationshipExpired}
	case StatusAll:
		return []realm.RelationshipStatus{realm.RelationshipActive, realm.RelationshipExpired}
	default:
		return []realm.RelationshipStatus{realm.RelationshipActive}
	}
}

// filterVisible keeps rows whose visibility matches GLOBAL or the
// supplied campaign/character context.
func filterVisible(rows []*realm.Relationship, scope access.Context) []*realm.Relationship {
	out := rows[:0]
	for _, row := range rows {
		switch row.Visibility {
		case realm.VisibilityGlobal:
			out = append(out, row)
		case realm.VisibilityCampaign:
			if scope.CampaignID != nil && row.VisibilityRefID != nil && *row.VisibilityRefID == *scope.CampaignID {
				out = append(out, row)
			}
		case realm.VisibilityCharacter:
			if scope.CharacterID != nil && row.VisibilityRefID != nil && *row.VisibilityRefID == *scope.CharacterID {
				out = append(out, row)
			}
		}
	}
	return out
}

// collapsePeers represents each peer group as one undirected entry,
// preferring the row whose from-side is the queried entity.
func collapsePeers(rows []*realm.Relationship, entityID ulid.ULID) []*realm.Relationship {
	chosen := make(map[ulid.ULID]*realm.Relationship)
	var out []*realm.Relationship
	for _, row := range rows {
		if row.PeerGroupID == nil {
			out = append(out, row)
			continue
		}
		current, ok := chosen[*row.PeerGroupID]
		if !ok {
			chosen[*row.PeerGroupID] = row
			continue
		}
		if current.FromEntityID != entityID && row.FromEntityID == entityID {
			chosen[*row.PeerGroupID] = row
		}
	}
	for _, row := range chosen {
		out = append(out, row)
	}
	return out
}

func (s *Service) loadTypes(ctx context.Context, rows []*realm.Relationship) (map[ulid.ULID]*realm.RelationshipType, error) {
	types := make(map[ulid.ULID]*realm.RelationshipType)
	for _, row := range rows {
		if _, ok := types[row.RelationshipTypeID]; ok {
			continue
		}
		rt, err := s.types.Get(ctx, row.RelationshipTypeID)
		if err != nil {
			return nil, oops.With("relationship_type_id", row.RelationshipTypeID.String()).Wrap(err)
		}
		types[row.RelationshipTypeID] = rt
	}
	return types, nil
}

func (s *Service) loadRelatedNames(ctx context.Context, rows []*realm.Relationship, entityID ulid.ULID) (map[ulid.ULID]string, error) {
	ids := make([]ulid.ULID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, relatedEntity(row, entityID))
	}
	names, err := s.entities.Names(ctx, ids)
	if err != nil {
		return nil, oops.With("entity_id", entityID.String()).Wrap(err)
	}
	return names, nil
}

// relatedEntity returns the endpoint that is not the queried entity.
func relatedEntity(row *realm.Relationship, entityID ulid.ULID) ulid.ULID {
	if row.FromEntityID == entityID {
		return row.ToEntityID
	}
	return row.FromEntityID
}

// buildView resolves direction and the direction-aware label. Expired
// relationships substitute past-tense labels when the type defines them;
// peer entries always use the from label.
func buildView(row *realm.Relationship, rt *realm.RelationshipType, entityID ulid.ULID, names map[ulid.ULID]string) View {
	outgoing := row.FromEntityID == entityID
	direction := DirectionIncoming
	if outgoing {
		direction = DirectionOutgoing
	}

	fromLabel, toLabel := rt.FromLabel, rt.ToLabel
	if row.Status == realm.RelationshipExpired {
		if rt.PastFromLabel != nil {
			fromLabel = *rt.PastFromLabel
		}
		if rt.PastToLabel != nil {
			toLabel = *rt.PastToLabel
		}
	}

	label := toLabel
	if outgoing || row.PeerGroupID != nil {
		label = fromLabel
	}

	related := relatedEntity(row, entityID)
	return View{
		RelationshipID:    row.ID,
		TypeID:            rt.ID,
		TypeName:          rt.Name,
		Peer:              row.PeerGroupID != nil,
		Direction:         direction,
		Status:            row.Status,
		Label:             label,
		RelatedEntityID:   related,
		RelatedEntityName: names[related],
		ExpiredAt:         row.ExpiredAt,
		Visibility:        row.Visibility,
		VisibilityRefID:   row.VisibilityRefID,
	}
}

// sortViews orders a listing: ACTIVE before EXPIRED, peer entries before
// directional ones, OUTGOING before INCOMING, then type name and related
// entity name ascending.
func sortViews(views []View) {
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i], views[j]
		if a.Status != b.Status {
			return a.Status == realm.RelationshipActive
		}
		if a.Peer != b.Peer {
			return a.Peer
		}
		if a.Direction != b.Direction {
			return a.Direction == DirectionOutgoing
		}
		if a.TypeName != b.TypeName {
			return a.TypeName < b.TypeName
		}
		return a.RelatedEntityName < b.RelatedEntityName
	})
}

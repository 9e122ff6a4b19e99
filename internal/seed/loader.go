// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

package seed

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/loreforge/loreforge/internal/realm/postgres"
)

// Load reads a seed file, validates it against the JSON schema, and
// unmarshals it.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.Code("SEED_READ_FAILED").With("path", path).Wrap(err)
	}

	if err := ValidateSchema(data); err != nil {
		return nil, oops.Code("SEED_INVALID").With("path", path).Wrap(err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, oops.Code("SEED_INVALID").With("path", path).Wrap(err)
	}
	return &f, nil
}

// Sections selectable with the --only glob. Patterns match with '.' as
// the segment separator, e.g. "worlds" or "*types".
const (
	SectionWorlds            = "worlds"
	SectionEntityTypes       = "entity_types"
	SectionLocationTypes     = "location_types"
	SectionLocationRules     = "location_rules"
	SectionRelationshipTypes = "relationship_types"
	SectionCampaigns         = "campaigns"
	SectionCharacters        = "characters"
	SectionFields            = "fields"
)

// Applier writes seed data to the database. Inserts use ON CONFLICT DO
// NOTHING: a row whose fixed ID already exists is skipped, which makes
// repeated seed runs safe.
type Applier struct {
	db      postgres.DB
	only    glob.Glob
	applied int
	skipped int
}

// NewApplier creates an Applier. onlyPattern restricts which sections
// are applied; empty means all.
func NewApplier(db postgres.DB, onlyPattern string) (*Applier, error) {
	a := &Applier{db: db}
	if onlyPattern != "" {
		g, err := glob.Compile(onlyPattern, '.')
		if err != nil {
			return nil, oops.Code("SEED_PATTERN_INVALID").With("pattern", onlyPattern).Wrap(err)
		}
		a.only = g
	}
	return a, nil
}

// Applied returns how many rows the last Apply inserted.
func (a *Applier) Applied() int { return a.applied }

// Skipped returns how many rows the last Apply found already present.
func (a *Applier) Skipped() int { return a.skipped }

func (a *Applier) wants(section string) bool {
	return a.only == nil || a.only.Match(section)
}

// Apply writes the seed file to the database.
func (a *Applier) Apply(ctx context.Context, f *File) error {
	a.applied, a.skipped = 0, 0
	now := time.Now().UTC()

	for i := range f.Worlds {
		w := &f.Worlds[i]

		if a.wants(SectionWorlds) {
			if err := a.exec(ctx, SectionWorlds, `
				INSERT INTO worlds (id, name, architect_id, entity_scope, created_at)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (id) DO NOTHING
			`, w.ID, w.Name, w.ArchitectID, w.EntityScope, now); err != nil {
				return err
			}
		}

		if a.wants(SectionEntityTypes) {
			for _, t := range w.EntityTypes {
				if err := a.exec(ctx, SectionEntityTypes, `
					INSERT INTO entity_types (id, world_id, name, created_at)
					VALUES ($1, $2, $3, $4)
					ON CONFLICT (id) DO NOTHING
				`, t.ID, w.ID, t.Name, now); err != nil {
					return err
				}
			}
		}

		if a.wants(SectionLocationTypes) {
			for _, t := range w.LocationTypes {
				if err := a.exec(ctx, SectionLocationTypes, `
					INSERT INTO location_types (id, world_id, name, created_at)
					VALUES ($1, $2, $3, $4)
					ON CONFLICT (id) DO NOTHING
				`, t.ID, w.ID, t.Name, now); err != nil {
					return err
				}
			}
		}

		if a.wants(SectionLocationRules) {
			for _, r := range w.LocationRules {
				if err := a.exec(ctx, SectionLocationRules, `
					INSERT INTO location_type_rules (id, world_id, parent_type_id, child_type_id, allowed)
					VALUES ($1, $2, $3, $4, $5)
					ON CONFLICT (id) DO NOTHING
				`, r.ID, w.ID, r.ParentTypeID, r.ChildTypeID, r.Allowed); err != nil {
					return err
				}
			}
		}

		if a.wants(SectionRelationshipTypes) {
			for _, rt := range w.Relationships {
				if err := a.exec(ctx, SectionRelationshipTypes, `
					INSERT INTO relationship_types (id, world_id, name, from_label, to_label, past_from_label, past_to_label, peerable)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
					ON CONFLICT (id) DO NOTHING
				`, rt.ID, w.ID, rt.Name, rt.FromLabel, rt.ToLabel,
					nullable(rt.PastFromLabel), nullable(rt.PastToLabel), rt.Peerable); err != nil {
					return err
				}
				for _, rr := range rt.Rules {
					if err := a.exec(ctx, SectionRelationshipTypes, `
						INSERT INTO relationship_type_rules (id, relationship_type_id, from_entity_type_id, to_entity_type_id)
						VALUES ($1, $2, $3, $4)
						ON CONFLICT (id) DO NOTHING
					`, rr.ID, rt.ID, rr.FromEntityTypeID, rr.ToEntityTypeID); err != nil {
						return err
					}
				}
			}
		}

		if a.wants(SectionCampaigns) {
			for _, c := range w.Campaigns {
				if err := a.exec(ctx, SectionCampaigns, `
					INSERT INTO campaigns (id, world_id, gm_user_id, name, created_at)
					VALUES ($1, $2, $3, $4, $5)
					ON CONFLICT (id) DO NOTHING
				`, c.ID, w.ID, c.GMUserID, c.Name, now); err != nil {
					return err
				}
			}
		}

		if a.wants(SectionCharacters) {
			for _, c := range w.Characters {
				if err := a.exec(ctx, SectionCharacters, `
					INSERT INTO characters (id, world_id, owner_id, name, created_at)
					VALUES ($1, $2, $3, $4, $5)
					ON CONFLICT (id) DO NOTHING
				`, c.ID, w.ID, c.OwnerID, c.Name, now); err != nil {
					return err
				}
			}
		}

		if a.wants(SectionFields) {
			for _, fd := range w.Fields {
				if err := a.exec(ctx, SectionFields, `
					INSERT INTO field_definitions (id, world_id, resource_kind, key, field_type, created_at)
					VALUES ($1, $2, $3, $4, $5, $6)
					ON CONFLICT (id) DO NOTHING
				`, fd.ID, w.ID, fd.Kind, fd.Key, fd.Type, now); err != nil {
					return err
				}
			}
		}
	}

	slog.Info("seed apply complete", "inserted", a.applied, "skipped", a.skipped)
	return nil
}

func (a *Applier) exec(ctx context.Context, section, sql string, args ...any) error {
	tag, err := a.db.Exec(ctx, sql, args...)
	if err != nil {
		return oops.Code("SEED_APPLY_FAILED").With("section", section).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		a.skipped++
	} else {
		a.applied++
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

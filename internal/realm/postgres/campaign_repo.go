// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/loreforge/loreforge/internal/realm"
)

// CampaignRepository implements realm.CampaignRepository using PostgreSQL.
type CampaignRepository struct {
	db DB
}

// NewCampaignRepository creates a new CampaignRepository.
func NewCampaignRepository(db DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// Get retrieves a campaign by ID.
func (r *CampaignRepository) Get(ctx context.Context, id ulid.ULID) (*realm.Campaign, error) {
	row := querierFrom(ctx, r.db).QueryRow(ctx, `
		SELECT id, world_id, gm_user_id, name, created_at
		FROM campaigns WHERE id = $1
	`, id.String())

	var c realm.Campaign
	var idStr, worldStr, gmStr string
	err := row.Scan(&idStr, &worldStr, &gmStr, &c.Name, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("CAMPAIGN_NOT_FOUND").With("id", id.String()).Wrap(realm.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get campaign").With("id", id.String()).Wrap(err)
	}
	if c.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.With("operation", "parse campaign id").With("id", idStr).Wrap(err)
	}
	if c.WorldID, err = ulid.Parse(worldStr); err != nil {
		return nil, oops.With("operation", "parse world id").With("world_id", worldStr).Wrap(err)
	}
	if c.GMUserID, err = ulid.Parse(gmStr); err != nil {
		return nil, oops.With("operation", "parse gm user id").With("gm_user_id", gmStr).Wrap(err)
	}
	return &c, nil
}

// SetRosterStatus adds a character to the campaign roster or updates its
// status if already present.
func (r *CampaignRepository) SetRosterStatus(ctx context.Context, campaignID, characterID ulid.ULID, status realm.RosterStatus) error {
	_, err := querierFrom(ctx, r.db).Exec(ctx, `
		INSERT INTO campaign_characters (campaign_id, character_id, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (campaign_id, character_id) DO UPDATE SET status = EXCLUDED.status
	`, campaignID.String(), characterID.String(), string(status))
	if err != nil {
		return oops.With("operation", "set roster status").
			With("campaign_id", campaignID.String()).
			With("character_id", characterID.String()).Wrap(err)
	}
	return nil
}

// Roster returns all roster entries for a campaign.
func (r *CampaignRepository) Roster(ctx context.Context, campaignID ulid.ULID) ([]realm.RosterEntry, error) {
	rows, err := querierFrom(ctx, r.db).Query(ctx, `
		SELECT campaign_id, character_id, status
		FROM campaign_characters WHERE campaign_id = $1
	`, campaignID.String())
	if err != nil {
		return nil, oops.With("operation", "list roster").With("campaign_id", campaignID.String()).Wrap(err)
	}
	defer rows.Close()

	entries := make([]realm.RosterEntry, 0)
	for rows.Next() {
		var e realm.RosterEntry
		var campaignStr, characterStr string
		if err := rows.Scan(&campaignStr, &characterStr, &e.Status); err != nil {
			return nil, oops.With("operation", "scan roster entry").Wrap(err)
		}
		if e.CampaignID, err = ulid.Parse(campaignStr); err != nil {
			return nil, oops.With("operation", "parse campaign id").With("campaign_id", campaignStr).Wrap(err)
		}
		if e.CharacterID, err = ulid.Parse(characterStr); err != nil {
			return nil, oops.With("operation", "parse character id").With("character_id", characterStr).Wrap(err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate roster").Wrap(err)
	}
	return entries, nil
}

// Compile-time interface check.
var _ realm.CampaignRepository = (*CampaignRepository)(nil)

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

// Package seed loads world data from YAML seed files, validates it
// against a generated JSON schema, and applies it idempotently.
package seed

// File is the root of a seed file.
type File struct {
	Worlds []World `yaml:"worlds" json:"worlds" jsonschema:"required"`
}

// World seeds one world and everything hanging off it. IDs are fixed
// ULIDs chosen by the seed author so repeated runs cannot create
// duplicates.
type World struct {
	ID            string             `yaml:"id" json:"id" jsonschema:"required,pattern=^[0-9A-HJKMNP-TV-Z]{26}$"`
	Name          string             `yaml:"name" json:"name" jsonschema:"required,minLength=1"`
	ArchitectID   string             `yaml:"architect_id" json:"architect_id" jsonschema:"required,pattern=^[0-9A-HJKMNP-TV-Z]{26}$"`
	EntityScope   string             `yaml:"entity_scope" json:"entity_scope" jsonschema:"required,enum=ARCHITECT,enum=ARCHITECT_GM,enum=ARCHITECT_GM_PLAYER"`
	EntityTypes   []NamedType        `yaml:"entity_types,omitempty" json:"entity_types,omitempty"`
	LocationTypes []NamedType        `yaml:"location_types,omitempty" json:"location_types,omitempty"`
	LocationRules []LocationRule     `yaml:"location_rules,omitempty" json:"location_rules,omitempty"`
	Relationships []RelationshipType `yaml:"relationship_types,omitempty" json:"relationship_types,omitempty"`
	Campaigns     []Campaign         `yaml:"campaigns,omitempty" json:"campaigns,omitempty"`
	Characters    []Character        `yaml:"characters,omitempty" json:"characters,omitempty"`
	Fields        []FieldDefinition  `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// NamedType seeds an entity type or location type.
type NamedType struct {
	ID   string `yaml:"id" json:"id" jsonschema:"required,pattern=^[0-9A-HJKMNP-TV-Z]{26}$"`
	Name string `yaml:"name" json:"name" jsonschema:"required,minLength=1"`
}

// LocationRule seeds a containment rule between two location types.
type LocationRule struct {
	ID           string `yaml:"id" json:"id" jsonschema:"required,pattern=^[0-9A-HJKMNP-TV-Z]{26}$"`
	ParentTypeID string `yaml:"parent_type_id" json:"parent_type_id" jsonschema:"required"`
	ChildTypeID  string `yaml:"child_type_id" json:"child_type_id" jsonschema:"required"`
	Allowed      bool   `yaml:"allowed" json:"allowed"`
}

// RelationshipType seeds a relationship type with its pairing rules.
type RelationshipType struct {
	ID            string             `yaml:"id" json:"id" jsonschema:"required,pattern=^[0-9A-HJKMNP-TV-Z]{26}$"`
	Name          string             `yaml:"name" json:"name" jsonschema:"required,minLength=1"`
	FromLabel     string             `yaml:"from_label" json:"from_label" jsonschema:"required,minLength=1"`
	ToLabel       string             `yaml:"to_label" json:"to_label" jsonschema:"required,minLength=1"`
	PastFromLabel string             `yaml:"past_from_label,omitempty" json:"past_from_label,omitempty"`
	PastToLabel   string             `yaml:"past_to_label,omitempty" json:"past_to_label,omitempty"`
	Peerable      bool               `yaml:"peerable" json:"peerable"`
	Rules         []RelationshipRule `yaml:"rules,omitempty" json:"rules,omitempty"`
}

// RelationshipRule seeds a directed entity-type pairing rule.
type RelationshipRule struct {
	ID               string `yaml:"id" json:"id" jsonschema:"required,pattern=^[0-9A-HJKMNP-TV-Z]{26}$"`
	FromEntityTypeID string `yaml:"from_entity_type_id" json:"from_entity_type_id" jsonschema:"required"`
	ToEntityTypeID   string `yaml:"to_entity_type_id" json:"to_entity_type_id" jsonschema:"required"`
}

// Campaign seeds a campaign.
type Campaign struct {
	ID       string `yaml:"id" json:"id" jsonschema:"required,pattern=^[0-9A-HJKMNP-TV-Z]{26}$"`
	Name     string `yaml:"name" json:"name" jsonschema:"required,minLength=1"`
	GMUserID string `yaml:"gm_user_id" json:"gm_user_id" jsonschema:"required"`
}

// Character seeds a character.
type Character struct {
	ID      string `yaml:"id" json:"id" jsonschema:"required,pattern=^[0-9A-HJKMNP-TV-Z]{26}$"`
	Name    string `yaml:"name" json:"name" jsonschema:"required,minLength=1"`
	OwnerID string `yaml:"owner_id" json:"owner_id" jsonschema:"required"`
}

// FieldDefinition seeds a custom field definition.
type FieldDefinition struct {
	ID   string `yaml:"id" json:"id" jsonschema:"required,pattern=^[0-9A-HJKMNP-TV-Z]{26}$"`
	Kind string `yaml:"kind" json:"kind" jsonschema:"required,enum=entity,enum=location"`
	Key  string `yaml:"key" json:"key" jsonschema:"required,minLength=1"`
	Type string `yaml:"type" json:"type" jsonschema:"required,enum=TEXT,enum=CHOICE,enum=ENTITY_REF,enum=LOCATION_REF,enum=CHARACTER_REF,enum=TEXTAREA,enum=BOOLEAN,enum=NUMBER"`
}

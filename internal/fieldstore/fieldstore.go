// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

// Package fieldstore stores user-defined typed attributes for entities
// and locations. Each declared field dispatches its raw value into
// exactly one typed column; a value that resolves to empty is deleted
// rather than stored.
package fieldstore

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/loreforge/loreforge/internal/realm"
)

// FieldType is the declared type of a field definition.
type FieldType string

// Field types. Reference types store the referenced id as a string.
const (
	FieldText         FieldType = "TEXT"
	FieldChoice       FieldType = "CHOICE"
	FieldEntityRef    FieldType = "ENTITY_REF"
	FieldLocationRef  FieldType = "LOCATION_REF"
	FieldCharacterRef FieldType = "CHARACTER_REF"
	FieldTextarea     FieldType = "TEXTAREA"
	FieldBoolean      FieldType = "BOOLEAN"
	FieldNumber       FieldType = "NUMBER"
)

// Valid reports whether t is a known field type.
func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldChoice, FieldEntityRef, FieldLocationRef,
		FieldCharacterRef, FieldTextarea, FieldBoolean, FieldNumber:
		return true
	}
	return false
}

// Definition declares one field on a resource kind within a world.
type Definition struct {
	ID        ulid.ULID
	WorldID   ulid.ULID
	Kind      realm.ResourceKind
	Key       string
	Type      FieldType
	CreatedAt time.Time
}

// Columns holds the typed value columns. At most one is non-nil.
type Columns struct {
	String *string
	Text   *string
	Bool   *bool
	Number *float64
}

// Value is one stored field value on a resource.
type Value struct {
	FieldID    ulid.ULID
	ResourceID ulid.ULID
	Columns
	UpdatedAt time.Time
}

// DefinitionRepository provides field definition lookups.
type DefinitionRepository interface {
	ListForWorld(ctx context.Context, worldID ulid.ULID, kind realm.ResourceKind) ([]Definition, error)
}

// ValueRepository persists field values.
type ValueRepository interface {
	Upsert(ctx context.Context, v *Value) error
	Delete(ctx context.Context, fieldID, resourceID ulid.ULID) error
	ListForResource(ctx context.Context, resourceID ulid.ULID) ([]Value, error)
}

// Assign dispatches a raw payload value into the column for the field
// type. It reports empty=true when the resolved value should be deleted
// from storage instead of stored: nil always clears, and string-typed
// fields clear on the empty string. A false boolean is a stored value.
func Assign(ft FieldType, raw any) (cols Columns, empty bool, err error) {
	if raw == nil {
		return Columns{}, true, nil
	}
	switch ft {
	case FieldText, FieldChoice, FieldEntityRef, FieldLocationRef, FieldCharacterRef:
		s, err := coerceString(raw)
		if err != nil {
			return Columns{}, false, &realm.ValidationError{Field: "value", Message: err.Error()}
		}
		if s == "" {
			return Columns{}, true, nil
		}
		return Columns{String: &s}, false, nil
	case FieldTextarea:
		s, err := coerceString(raw)
		if err != nil {
			return Columns{}, false, &realm.ValidationError{Field: "value", Message: err.Error()}
		}
		if s == "" {
			return Columns{}, true, nil
		}
		return Columns{Text: &s}, false, nil
	case FieldBoolean:
		b := truthy(raw)
		return Columns{Bool: &b}, false, nil
	case FieldNumber:
		n, err := coerceNumber(raw)
		if err != nil {
			return Columns{}, false, &realm.ValidationError{Field: "value", Message: err.Error()}
		}
		return Columns{Number: &n}, false, nil
	default:
		return Columns{}, false, &realm.ValidationError{Field: "fieldType", Message: "unknown field type " + string(ft)}
	}
}

func coerceString(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("cannot store %T as a string field", raw)
	}
}

// truthy coerces a raw value to a boolean the way loosely typed clients
// send them: false, 0, "", "false", and "0" are false.
func truthy(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	case string:
		s := strings.TrimSpace(strings.ToLower(v))
		return s != "" && s != "false" && s != "0"
	default:
		return true
	}
}

func coerceNumber(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("cannot store %T as a number field", raw)
	}
}

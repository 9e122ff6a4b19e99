// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

package realm

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Validation limits for domain types.
const (
	MaxNameLength  = 120
	MaxLabelLength = 60
)

// ValidateName checks that a record name is valid: non-empty, valid
// UTF-8, no control characters, within the length limit.
func ValidateName(name string) error {
	if name == "" {
		return &ValidationError{Field: "name", Message: "cannot be empty"}
	}
	if !utf8.ValidString(name) {
		return &ValidationError{Field: "name", Message: "must be valid UTF-8"}
	}
	if len(name) > MaxNameLength {
		return &ValidationError{Field: "name", Message: fmt.Sprintf("exceeds maximum length of %d", MaxNameLength)}
	}
	if hasControlChars(name) {
		return &ValidationError{Field: "name", Message: "cannot contain control characters"}
	}
	return nil
}

// ValidateLabel checks a relationship-type label. Labels follow the same
// rules as names but with a tighter length limit.
func ValidateLabel(field, label string) error {
	if label == "" {
		return &ValidationError{Field: field, Message: "cannot be empty"}
	}
	if !utf8.ValidString(label) {
		return &ValidationError{Field: field, Message: "must be valid UTF-8"}
	}
	if len(label) > MaxLabelLength {
		return &ValidationError{Field: field, Message: fmt.Sprintf("exceeds maximum length of %d", MaxLabelLength)}
	}
	if hasControlChars(label) {
		return &ValidationError{Field: field, Message: "cannot contain control characters"}
	}
	return nil
}

// hasControlChars returns true if the string contains control characters.
func hasControlChars(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}

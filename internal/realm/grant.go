// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

package realm

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/oklog/ulid/v2"
)

// AccessType is the action an access grant permits. READ and WRITE are
// independent; neither implies the other.
type AccessType string

// Access types.
const (
	AccessRead  AccessType = "READ"
	AccessWrite AccessType = "WRITE"
)

// Valid reports whether the access type is one of the declared values.
func (t AccessType) Valid() bool {
	return t == AccessRead || t == AccessWrite
}

// ScopeType is the breadth of an access grant.
type ScopeType string

// Scope types.
const (
	ScopeGlobal    ScopeType = "GLOBAL"
	ScopeCampaign  ScopeType = "CAMPAIGN"
	ScopeCharacter ScopeType = "CHARACTER"
)

// Valid reports whether the scope type is one of the declared values.
func (t ScopeType) Valid() bool {
	return t == ScopeGlobal || t == ScopeCampaign || t == ScopeCharacter
}

// AccessGrant permits one action on one resource at one scope. GLOBAL
// grants carry no scope ID; CAMPAIGN and CHARACTER grants reference the
// campaign or character they are scoped to. At most one grant exists per
// (resource, accessType, scopeType, scopeID) tuple.
type AccessGrant struct {
	AccessType AccessType
	ScopeType  ScopeType
	ScopeID    *ulid.ULID
}

// key returns the canonical tuple encoding used for signatures and
// duplicate detection.
func (g AccessGrant) key() string {
	scopeID := ""
	if g.ScopeID != nil {
		scopeID = g.ScopeID.String()
	}
	return string(g.AccessType) + "|" + string(g.ScopeType) + "|" + scopeID
}

// ValidateGrants checks a grant set for structural problems: unknown
// access or scope types, GLOBAL grants carrying a scope ID, scoped grants
// missing one, and duplicate tuples.
func ValidateGrants(grants []AccessGrant) error {
	seen := make(map[string]bool, len(grants))
	for _, g := range grants {
		if !g.AccessType.Valid() {
			return &ValidationError{Field: "accessType", Message: "unknown access type " + string(g.AccessType)}
		}
		if !g.ScopeType.Valid() {
			return &ValidationError{Field: "scopeType", Message: "unknown scope type " + string(g.ScopeType)}
		}
		if g.ScopeType == ScopeGlobal && g.ScopeID != nil {
			return &ValidationError{Field: "scopeId", Message: "GLOBAL grants cannot reference a scope"}
		}
		if g.ScopeType != ScopeGlobal && g.ScopeID == nil {
			return &ValidationError{Field: "scopeId", Message: string(g.ScopeType) + " grants require a scope reference"}
		}
		k := g.key()
		if seen[k] {
			return &ValidationError{Field: "grants", Message: "duplicate grant tuple " + k}
		}
		seen[k] = true
	}
	return nil
}

// GrantSignature computes an order-independent signature over a grant set.
// Two sets produce the same signature iff they contain the same tuples,
// regardless of ordering. Used to suppress audit records for no-op grant
// replacements.
func GrantSignature(grants []AccessGrant) string {
	keys := make([]string, 0, len(grants))
	for _, g := range grants {
		keys = append(keys, g.key())
	}
	sort.Strings(keys)
	sum := sha256.Sum256([]byte(strings.Join(keys, "\n")))
	return hex.EncodeToString(sum[:])
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

package realm

import (
	"errors"
	"fmt"
)

// Sentinel errors for the status-independent error kinds. The transport
// layer maps these to protocol responses; this package never does.
var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied is returned when the actor lacks the role or
	// scope required for the attempted action. Existence checks run
	// first: callers see NotFound before PermissionDenied.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrConflict is returned for duplicate relationships, duplicate
	// rules, and other already-exists conditions.
	ErrConflict = errors.New("conflict")
)

// ValidationError represents a caller-fixable input error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// InvariantError indicates data corruption: a peer group with the wrong
// row count, or stored state that defies a uniqueness rule. It is a bug,
// not a caller error; callers surface it as an internal failure and the
// site that detects it logs loudly. It is never silently corrected.
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string {
	return "invariant violation: " + e.Message
}

// Invariantf builds an InvariantError from a format string.
func Invariantf(format string, args ...any) *InvariantError {
	return &InvariantError{Message: fmt.Sprintf(format, args...)}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loreforge Contributors

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/loreforge/loreforge/internal/realm"
)

// DB is the database handle the repositories accept: *pgxpool.Pool in
// production, a pgxmock pool in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// querier abstracts query execution over a DB and pgx.Tx so repository
// methods work within or outside of transactions.
type querier = DB

// querierFrom returns the transaction stored in ctx by Transactor, or
// the fallback when no transaction is active.
func querierFrom(ctx context.Context, fallback querier) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return fallback
}

// ulidToStringPtr converts a ULID pointer to a string pointer for SQL
// parameters. Returns nil if the input is nil.
func ulidToStringPtr(id *ulid.ULID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

// parseOptionalULID parses an optional ULID string pointer into a ULID
// pointer. Returns nil if the input is nil.
func parseOptionalULID(strPtr *string, fieldName string) (*ulid.ULID, error) {
	if strPtr == nil {
		return nil, nil
	}
	id, err := ulid.Parse(*strPtr)
	if err != nil {
		return nil, oops.With("operation", "parse "+fieldName).With(fieldName, *strPtr).Wrap(err)
	}
	return &id, nil
}

// isUniqueViolation reports whether err is a unique-constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// accessClause builds the grant-matching predicate for a listing query.
// alias is the table alias whose id column identifies the resource.
// Appends bind parameters to args and returns the SQL fragment. A filter
// with no scope predicates matches nothing.
func accessClause(f realm.AccessFilter, kind realm.ResourceKind, alias string, args *[]any) string {
	if f.Bypass {
		return "TRUE"
	}
	if len(f.Scopes) == 0 {
		return "FALSE"
	}

	var scopeBranches []string
	for _, p := range f.Scopes {
		if p.Type == realm.ScopeGlobal {
			scopeBranches = append(scopeBranches, "g.scope_type = 'GLOBAL'")
			continue
		}
		*args = append(*args, string(p.Type))
		typeParam := len(*args)
		*args = append(*args, ulidToStringPtr(p.ID))
		idParam := len(*args)
		scopeBranches = append(scopeBranches,
			fmt.Sprintf("(g.scope_type = $%d AND g.scope_id = $%d)", typeParam, idParam))
	}

	*args = append(*args, string(kind))
	kindParam := len(*args)
	*args = append(*args, string(f.Access))
	accessParam := len(*args)

	return fmt.Sprintf(`EXISTS (
		SELECT 1 FROM access_grants g
		WHERE g.resource_kind = $%d AND g.resource_id = %s.id
		AND g.access_type = $%d
		AND (%s)
	)`, kindParam, alias, accessParam, strings.Join(scopeBranches, " OR "))
}

// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors for storage operations.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrDuplicateKey        = errors.New("duplicate key violation")
	ErrForeignKeyViolation = errors.New("foreign key violation")
)

const (
	pgErrCodeUniqueViolation     = "23505"
	pgErrCodeForeignKeyViolation = "23503"
)

func IsDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrCodeUniqueViolation
	}
	return false
}

func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrCodeForeignKeyViolation
	}
	return false
}

// isNoRows covers both the pgx and the database/sql flavour, statements run
// through the stdlib adapter.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows)
}

// wrapConstraintError maps unique and foreign key violations to the storage
// sentinels, keeping context about what was being written.
func wrapConstraintError(err error, context string) error {
	switch {
	case IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", context, ErrDuplicateKey)
	case IsForeignKeyViolation(err):
		return fmt.Errorf("%s: %w", context, ErrForeignKeyViolation)
	}
	return fmt.Errorf("failed to %s: %w", context, err)
}

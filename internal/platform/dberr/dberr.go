// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/certly/internal/platform/apperr"
)

// ErrNotFound is returned when a queried row doesn't exist.
var ErrNotFound = errors.New("dberr: row not found")

// ErrConflict is returned when a write violates a unique constraint.
var ErrConflict = errors.New("dberr: unique violation")

// Wrap classifies a database error. Missing rows and unique violations become
// the sentinels above; everything else is an internal "DB" failure whose cause
// stays server-side.
func Wrap(err error) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. Constraint mapping
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrConflict
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.InternalServer("DB", err)
}

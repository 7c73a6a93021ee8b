// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sentra-id/sentra/internal/platform/apperr"
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
//
// The operation string names the failed store call and is kept in the error
// chain for server-side logs.
func Wrap(err error, operation string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("Resource")
	}

	// 2. Constraint mapping via the Postgres SQLSTATE
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return apperr.Conflict("Resource already exists")
		case pgerrcode.CheckViolation:
			return apperr.ValidationError("Value violates a data constraint")
		}
	}

	// 3. Unknown query errors stay in the chain for logging
	return fmt.Errorf("%s: %w", operation, err)
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// The predicates in this package inspect the PostgreSQL SQLSTATE carried by
// [pgconn.PgError] as well as the transport-level errors raised by pgx.
package dberr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/bookreview/internal/platform/apperr"
)

// SQLSTATE values the review store reacts to.
const (
	codeUniqueViolation    = "23505"
	codeTooManyConnections = "53300"
	codeAdminShutdown      = "57P01"
	codeCannotConnectNow   = "57P03"
	codeInvalidCatalogName = "3D000"
	codeDuplicateDatabase  = "42P04"

	// classConnectionException covers 08000..08P01.
	classConnectionException = "08"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// Errors that were already classified pass through untouched.
	if apperr.IsAppError(err) {
		return err
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. Constraint mapping
	if IsUniqueViolation(err, "") {
		return apperr.Conflict("Resource already exists")
	}

	// 3. Connectivity and timeouts are retryable by the caller
	if IsUnavailable(err) {
		return apperr.StoreUnavailable(annotate(err, action))
	}

	// 4. Unknown query errors become Internal Server Errors
	return apperr.Internal(annotate(err, action))
}

// IsUniqueViolation reports whether err is a unique_violation (23505).
//
// When constraint is non-empty, only violations of that named constraint match.
func IsUniqueViolation(err error, constraint string) bool {
	pgErr := pgError(err)
	if pgErr == nil || pgErr.Code != codeUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// IsUnknownDatabase reports whether the server rejected a connection because
// the requested database does not exist (3D000).
func IsUnknownDatabase(err error) bool {
	pgErr := pgError(err)
	return pgErr != nil && pgErr.Code == codeInvalidCatalogName
}

// IsDuplicateDatabase reports whether CREATE DATABASE lost a race (42P04).
func IsDuplicateDatabase(err error) bool {
	pgErr := pgError(err)
	return pgErr != nil && pgErr.Code == codeDuplicateDatabase
}

// IsUnavailable reports whether err is a connectivity, transport or timeout
// failure rather than a problem with the statement itself.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}

	if pgconn.Timeout(err) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	if pgErr := pgError(err); pgErr != nil {
		switch {
		case strings.HasPrefix(pgErr.Code, classConnectionException),
			pgErr.Code == codeTooManyConnections,
			pgErr.Code == codeAdminShutdown,
			pgErr.Code == codeCannotConnectNow:
			return true
		}
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// pgx marks errors raised before any bytes reached the server.
	return pgconn.SafeToRetry(err)
}

func pgError(err error) *pgconn.PgError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr
	}
	return nil
}

func annotate(err error, action string) error {
	if action == "" {
		return err
	}
	return fmt.Errorf("%s: %w", action, err)
}

package database

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes
const (
	// ErrCodeUndefinedTable is the PostgreSQL error code for references to
	// missing tables
	ErrCodeUndefinedTable = "42P01"
	// ErrCodeUndefinedColumn is the PostgreSQL error code for references to
	// missing columns
	ErrCodeUndefinedColumn = "42703"
	// errClassConnection is the PostgreSQL error class for connection
	// exceptions
	errClassConnection = "08"
)

// IsUndefinedTable checks if an error is a reference to a missing table
func IsUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == ErrCodeUndefinedTable
	}
	return false
}

// IsUndefinedColumn checks if an error is a reference to a missing column
func IsUndefinedColumn(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == ErrCodeUndefinedColumn
	}
	return false
}

// IsConnectionFailure checks if an error belongs to the connection exception
// class, meaning the backing store was unreachable rather than the query
// being wrong
func IsConnectionFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, errClassConnection)
	}
	return false
}

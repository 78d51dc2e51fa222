package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes.
const (
	codeUniqueViolation = "23505"
	codeCheckViolation  = "23514"
)

// ErrConstraint is returned for CHECK constraint violations, such as a
// document row with an unknown status.
var ErrConstraint = errors.New("constraint violation")

// MapError translates driver errors into domain errors: sql.ErrNoRows
// becomes notFound, a unique violation becomes duplicate and a check
// violation wraps ErrConstraint. Anything else is returned unchanged.
func MapError(err error, notFound, duplicate error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		return duplicate
	case codeCheckViolation:
		return errors.Join(ErrConstraint, err)
	}
	return err
}

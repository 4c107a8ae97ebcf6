package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// MapError translates database errors to domain errors.
// sql.ErrNoRows and foreign key violations (23503, a missing parent row)
// map to notFoundErr. Unique violations (23505) map to duplicateErr and
// keep the violated constraint name in the message. Other errors are
// returned unchanged.
func MapError(err error, notFoundErr, duplicateErr error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		if pgErr.ConstraintName != "" {
			return fmt.Errorf("%w (%s)", duplicateErr, pgErr.ConstraintName)
		}
		return duplicateErr
	case pgForeignKeyViolation:
		return notFoundErr
	}

	return err
}

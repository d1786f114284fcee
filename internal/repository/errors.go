package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"courier-dispatch/internal/apperr"
)

// IsNotFound - signals that the query matched no row.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// rowErr maps a single-row read error. No row becomes apperr.ErrNotFound.
func rowErr(entity, id string, err error) error {
	if IsNotFound(err) {
		return fmt.Errorf("%s %q: %w", entity, id, apperr.ErrNotFound)
	}
	return fmt.Errorf("get %s %q: %w", entity, id, err)
}

// guardErr maps the result of a version-guarded update. Zero affected rows
// means the guard failed and becomes apperr.ErrConflict.
func guardErr(ct pgconn.CommandTag, err error, entity, id string, version int64) error {
	if err != nil {
		return fmt.Errorf("bind %s %q: %w", entity, id, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%s %q at version %d: %w", entity, id, version, apperr.ErrConflict)
	}
	return nil
}

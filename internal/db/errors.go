package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"
	"gorm.io/gorm"

	"github.com/EmpoweredVote/zone-incidents/internal/apperr"
)

// Postgres SQLSTATE codes we translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Translate maps store errors onto the apperr taxonomy. what names the
// entity for the message. Errors it does not recognise are returned wrapped
// but otherwise unchanged, so they surface as store failures.
func Translate(err error, what string) error {
	if err == nil || isApp(err) {
		return err
	}

	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(what + " not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Conflict("%s already exists", what)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperr.InvalidReference("%s references a missing row", what)
	case errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation:
		return apperr.Conflict("%s already exists", what)
	case errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation:
		return apperr.InvalidReference("%s references a missing row", what)
	case isSQLiteConstraint(err, "UNIQUE"):
		return apperr.Conflict("%s already exists", what)
	case isSQLiteConstraint(err, "FOREIGN KEY"):
		return apperr.InvalidReference("%s references a missing row", what)
	}
	return eris.Wrapf(err, "db: %s", what)
}

func isApp(err error) bool {
	return errors.Is(err, apperr.ErrNotFound) ||
		errors.Is(err, apperr.ErrConflict) ||
		errors.Is(err, apperr.ErrInvalidReference) ||
		errors.Is(err, apperr.ErrInvalid)
}

// isSQLiteConstraint matches constraint failures that reach us untranslated
// from the sqlite driver used in tests.
func isSQLiteConstraint(err error, kind string) bool {
	return strings.Contains(err.Error(), kind+" constraint failed")
}

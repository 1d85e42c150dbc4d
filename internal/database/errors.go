package database

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicate is returned by Create methods when a unique index rejects the
// row. Every store maps its own driver error to it.
var ErrDuplicate = errors.New("duplicate record")

const uniqueViolation = "23505"

// duplicate wraps a unique violation as ErrDuplicate and passes any other
// error through unchanged.
func duplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

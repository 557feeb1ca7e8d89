package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/abhisek/escaperoom/internal/game"
)

// PersistenceError wraps a driver failure. It matches game.ErrPersistence
// under errors.Is so callers never need to import driver packages.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool {
	return target == game.ErrPersistence
}

// classify maps a driver error onto the domain error kinds.
func (r runner) classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", op, game.ErrNotFound)
	case r.dialect.IsUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, game.ErrConflict)
	case r.dialect.IsForeignKeyViolation(err):
		return fmt.Errorf("%s: %w", op, game.ErrInvalidReference)
	}
	return &PersistenceError{Op: op, Err: err}
}

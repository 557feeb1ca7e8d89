package game

import "errors"

var (
	// ErrNotFound means a game, puzzle or user ID did not resolve.
	ErrNotFound = errors.New("not found")

	// ErrInvalidReference means a foreign key pointed at a missing record,
	// e.g. creating a game for an unknown user.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrInvalidInput means request values failed validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict means a uniqueness constraint was violated.
	ErrConflict = errors.New("conflict")

	// ErrPersistence marks storage failures. Store errors wrap it so callers
	// can tell them apart from domain errors.
	ErrPersistence = errors.New("persistence failure")
)

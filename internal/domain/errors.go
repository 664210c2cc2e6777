package domain

import "errors"

var (
	// ErrNotFound means a referenced contest or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState means an operation was called against a contest that
	// cannot accept it, e.g. rating finalize on a practice contest or with
	// fewer than two active participants. Nothing is written.
	ErrInvalidState = errors.New("invalid state")
)

package library

import "errors"

var (
	ErrNotFound         = errors.New("book not found")
	ErrCapacityExceeded = errors.New("maximum number of books reached")
	ErrInvalidRating    = errors.New("rating must be between 0.0 and 5.0")
	ErrAlreadyBorrowed  = errors.New("book is already borrowed")
	ErrNotBorrowed      = errors.New("book is not currently borrowed")
	ErrIO               = errors.New("catalog i/o failure")
	ErrUnauthorized     = errors.New("invalid admin password")
)

// ErrNotSaved marks a change that was applied in memory but could not be
// written to the primary store.
var ErrNotSaved = errors.New("change not saved")

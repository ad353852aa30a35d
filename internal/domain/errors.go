package domain

import "errors"

var (
	ErrConnectionFailure  = errors.New("database connection failure")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrFlightNotFound     = errors.New("flight not found")
	ErrInsufficientSeats  = errors.New("not enough seats available")
	ErrInvalidSeats       = errors.New("seats must be positive")
	ErrInvalidDateFormat  = errors.New("invalid date format")
	ErrInvalidDateTime    = errors.New("invalid datetime format")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidPrice       = errors.New("invalid price")
	ErrForbidden          = errors.New("forbidden")
	ErrCapacityMismatch   = errors.New("seat ledger does not balance")
)

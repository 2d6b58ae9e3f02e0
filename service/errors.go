package service

import "errors"

var (
	// ErrInvalidInput is returned for unparseable or out-of-range request fields
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned when a referenced record does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned when a record cannot accept the requested transition
	ErrInvalidState = errors.New("invalid state")

	// ErrConflict is returned when a unique record already exists
	ErrConflict = errors.New("already exists")

	// ErrUnauthorized is returned when the caller cannot be authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnavailable is returned when an optional collaborator is not configured
	ErrUnavailable = errors.New("unavailable")

	// ErrDuplicateTxHash is returned by the donation repository when the
	// transaction hash is already stored
	ErrDuplicateTxHash = errors.New("duplicate transaction hash")

	// ErrDuplicateWallet is returned by the user repository when the wallet is already registered
	ErrDuplicateWallet = errors.New("duplicate wallet address")

	// ErrDuplicateDreamID is returned by the dream repository when an explicit ID is taken
	ErrDuplicateDreamID = errors.New("duplicate dream id")
)

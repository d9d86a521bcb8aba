package repository

import "errors"

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when trying to create an account with an existing email
	ErrDuplicateEmail = errors.New("account with this email already exists")

	// ErrDuplicateNick is returned when trying to create an account with an existing nickname
	ErrDuplicateNick = errors.New("account with this nickname already exists")

	// ErrDuplicateToken is returned when a generated token string collides with an existing one
	ErrDuplicateToken = errors.New("token already exists")

	// ErrTokenUsed is returned when consuming a token that was already consumed
	ErrTokenUsed = errors.New("token already used")

	// ErrTokenExpired is returned when consuming a token past its expiry
	ErrTokenExpired = errors.New("token expired")

	// ErrWrongStatus is returned when a conditional status transition matched no row
	ErrWrongStatus = errors.New("account is not in the required status")
)

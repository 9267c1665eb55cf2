package auth

import "errors"

var (
	// ErrInvalidCode is returned when the submitted code does not match or
	// has expired
	ErrInvalidCode = errors.New("invalid or expired code")

	// ErrAccountNotFound is returned when no registered account matches
	ErrAccountNotFound = errors.New("account not found")
)

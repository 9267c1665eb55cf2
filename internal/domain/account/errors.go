package account

import "errors"

var (
	// ErrNotFound is returned when neither partition holds the account
	ErrNotFound = errors.New("account not found")

	// ErrInternal wraps storage failures
	ErrInternal = errors.New("internal error")
)

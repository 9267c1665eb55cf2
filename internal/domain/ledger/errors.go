package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientCredits is returned when the balance cannot cover a debit
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrInvalidAmount is returned when amount is <= 0
	ErrInvalidAmount = errors.New("invalid amount: must be greater than 0")

	// ErrAccountNotFound is returned when the account cannot be resolved
	ErrAccountNotFound = errors.New("account not found")

	// ErrPersistence is returned when the store fails mid-operation.
	// The operation never partially applies: balance and marker travel in
	// one statement, so a failed write leaves both untouched and the caller
	// may retry.
	ErrPersistence = errors.New("ledger persistence failed")
)

// InsufficientCreditsError carries the amounts for the API response.
// errors.Is(err, ErrInsufficientCredits) matches it.
type InsufficientCreditsError struct {
	Required  int
	Available int
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: need %d, have %d", e.Required, e.Available)
}

func (e *InsufficientCreditsError) Is(target error) bool {
	return target == ErrInsufficientCredits
}

package payment

import "errors"

var (
	// ErrPurchaseNotCompleted is returned when the provider reports the
	// transaction in any state other than captured/paid
	ErrPurchaseNotCompleted = errors.New("purchase is not completed")

	// ErrAmountMismatch is returned when the charged amount does not match
	// the package price
	ErrAmountMismatch = errors.New("charged amount does not match package price")

	// ErrOwnershipMismatch is returned when the transaction belongs to a
	// different account
	ErrOwnershipMismatch = errors.New("purchase belongs to a different account")

	// ErrProductMismatch is returned when the transaction references a
	// different product than the one claimed
	ErrProductMismatch = errors.New("transaction references a different product")

	// ErrTransactionNotFound is returned when the provider does not know
	// the transaction reference
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrProviderUnreachable is returned when the provider call fails
	ErrProviderUnreachable = errors.New("payment provider unreachable")

	// ErrUnknownProduct is returned when the product id matches no package
	ErrUnknownProduct = errors.New("unknown product")
)

package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/inkleaf/fiction-api/internal/domain/account"
)

// Store is the account storage the ledger runs against. The conditional
// update methods must be atomic: they apply balance and marker together or
// not at all, and return nil, nil when the guard matched no row.
type Store interface {
	Resolve(ctx context.Context, id uuid.UUID) (*account.Account, account.Partition, error)
	Ensure(ctx context.Context, id uuid.UUID) (*account.Account, account.Partition, error)
	DebitUnlock(ctx context.Context, p account.Partition, id uuid.UUID, amount int, marker string) (*account.Account, error)
	CreditPurchase(ctx context.Context, p account.Partition, id uuid.UUID, amount int, marker *string) (*account.Account, error)
}

// Service applies balance-changing operations exactly once per logical
// event. Markers (chapter keys on debits, product ids on credits) make
// retried requests no-ops instead of double-applications.
type Service struct {
	store Store
}

// NewService creates ledger service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Debit spends credits for a chapter unlock. The chapter marker is recorded
// in the same write as the balance change. An already-recorded marker yields
// an unapplied entry with the current balance.
func (s *Service) Debit(ctx context.Context, accountID uuid.UUID, amount int, marker string) (*Entry, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	acct, partition, err := s.store.Ensure(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if acct.HasUnlocked(marker) {
		return entryFrom(acct, partition, false), nil
	}
	if acct.Credits < amount {
		return nil, &InsufficientCreditsError{Required: amount, Available: acct.Credits}
	}

	updated, err := s.store.DebitUnlock(ctx, partition, accountID, amount, marker)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if updated != nil {
		return entryFrom(updated, partition, true), nil
	}

	// The guard matched no row: a concurrent request either consumed the
	// balance or recorded the marker first. Re-read to tell which.
	return s.reconcileDebit(ctx, accountID, amount, marker)
}

func (s *Service) reconcileDebit(ctx context.Context, accountID uuid.UUID, amount int, marker string) (*Entry, error) {
	acct, partition, err := s.store.Resolve(ctx, accountID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if acct.HasUnlocked(marker) {
		return entryFrom(acct, partition, false), nil
	}
	if acct.Credits < amount {
		return nil, &InsufficientCreditsError{Required: amount, Available: acct.Credits}
	}
	return nil, fmt.Errorf("%w: debit guard rejected a retryable write", ErrPersistence)
}

// Credit adds credits to an account. A non-nil marker makes the grant
// one-time: a recorded marker yields an unapplied entry and an unchanged
// balance, which is how duplicate provider verifications stay harmless.
func (s *Service) Credit(ctx context.Context, accountID uuid.UUID, amount int, marker *string) (*Entry, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	acct, partition, err := s.store.Ensure(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if marker != nil && acct.HasPurchased(*marker) {
		return entryFrom(acct, partition, false), nil
	}

	updated, err := s.store.CreditPurchase(ctx, partition, accountID, amount, marker)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if updated != nil {
		return entryFrom(updated, partition, true), nil
	}

	// Guard no-op: a concurrent request recorded the marker first.
	acct, partition, err = s.store.Resolve(ctx, accountID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if marker != nil && acct.HasPurchased(*marker) {
		return entryFrom(acct, partition, false), nil
	}
	return nil, fmt.Errorf("%w: credit guard rejected a retryable write", ErrPersistence)
}

// Balance returns the current balance for an account without creating it
func (s *Service) Balance(ctx context.Context, accountID uuid.UUID) (*Entry, error) {
	acct, partition, err := s.store.Resolve(ctx, accountID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return entryFrom(acct, partition, false), nil
}

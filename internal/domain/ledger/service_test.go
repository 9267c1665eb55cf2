package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/inkleaf/fiction-api/internal/domain/account"
)

// fakeStore mimics the conditional-update semantics of the real store:
// guarded writes apply balance and marker together or return nil, nil.
type fakeStore struct {
	accounts   map[uuid.UUID]*account.Account
	partitions map[uuid.UUID]account.Partition

	resolveErr error
	debitErr   error
	creditErr  error

	// onDebit, when set, replaces the guarded debit entirely
	onDebit func() (*account.Account, error)
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts:   make(map[uuid.UUID]*account.Account),
		partitions: make(map[uuid.UUID]account.Partition),
	}
}

func (f *fakeStore) add(id uuid.UUID, credits int, p account.Partition) *account.Account {
	acct := &account.Account{ID: id, Credits: credits}
	f.accounts[id] = acct
	f.partitions[id] = p
	return acct
}

func (f *fakeStore) Resolve(ctx context.Context, id uuid.UUID) (*account.Account, account.Partition, error) {
	if f.resolveErr != nil {
		return nil, "", f.resolveErr
	}
	acct, ok := f.accounts[id]
	if !ok {
		return nil, "", account.ErrNotFound
	}
	return acct, f.partitions[id], nil
}

func (f *fakeStore) Ensure(ctx context.Context, id uuid.UUID) (*account.Account, account.Partition, error) {
	if f.resolveErr != nil {
		return nil, "", f.resolveErr
	}
	if acct, ok := f.accounts[id]; ok {
		return acct, f.partitions[id], nil
	}
	return f.add(id, 0, account.PartitionGuest), account.PartitionGuest, nil
}

func (f *fakeStore) DebitUnlock(ctx context.Context, p account.Partition, id uuid.UUID, amount int, marker string) (*account.Account, error) {
	if f.debitErr != nil {
		return nil, f.debitErr
	}
	if f.onDebit != nil {
		return f.onDebit()
	}
	acct, ok := f.accounts[id]
	if !ok || acct.Credits < amount || acct.HasUnlocked(marker) {
		return nil, nil
	}
	acct.Credits -= amount
	acct.UnlockedChapters = append(acct.UnlockedChapters, marker)
	return acct, nil
}

func (f *fakeStore) CreditPurchase(ctx context.Context, p account.Partition, id uuid.UUID, amount int, marker *string) (*account.Account, error) {
	if f.creditErr != nil {
		return nil, f.creditErr
	}
	acct, ok := f.accounts[id]
	if !ok {
		return nil, nil
	}
	if marker != nil {
		if acct.HasPurchased(*marker) {
			return nil, nil
		}
		acct.Settings.AddPurchased(*marker)
	}
	acct.Credits += amount
	return acct, nil
}

func TestDebitHappyPath(t *testing.T) {
	store := newFakeStore()
	id := uuid.New()
	store.add(id, 100, account.PartitionRegistered)

	svc := NewService(store)
	entry, err := svc.Debit(context.Background(), id, 50, "book:6")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !entry.Applied {
		t.Fatal("expected debit to apply")
	}
	if entry.Balance != 50 {
		t.Fatalf("expected balance 50, got %d", entry.Balance)
	}
	if len(entry.UnlockedChapters) != 1 || entry.UnlockedChapters[0] != "book:6" {
		t.Fatalf("expected marker recorded, got %v", entry.UnlockedChapters)
	}
}

func TestDebitInsufficientCredits(t *testing.T) {
	store := newFakeStore()
	id := uuid.New()
	store.add(id, 49, account.PartitionGuest)

	svc := NewService(store)
	_, err := svc.Debit(context.Background(), id, 50, "book:6")
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}

	var detail *InsufficientCreditsError
	if !errors.As(err, &detail) {
		t.Fatalf("expected InsufficientCreditsError, got %T", err)
	}
	if detail.Required != 50 || detail.Available != 49 {
		t.Fatalf("wrong amounts: %+v", detail)
	}

	// Balance untouched on rejection.
	if store.accounts[id].Credits != 49 {
		t.Fatalf("balance changed on rejected debit: %d", store.accounts[id].Credits)
	}
}

func TestDebitIdempotentMarker(t *testing.T) {
	store := newFakeStore()
	id := uuid.New()
	store.add(id, 100, account.PartitionRegistered)

	svc := NewService(store)
	first, err := svc.Debit(context.Background(), id, 50, "book:6")
	if err != nil {
		t.Fatalf("first debit: %v", err)
	}
	if !first.Applied || first.Balance != 50 {
		t.Fatalf("first debit: %+v", first)
	}

	second, err := svc.Debit(context.Background(), id, 50, "book:6")
	if err != nil {
		t.Fatalf("second debit: %v", err)
	}
	if second.Applied {
		t.Fatal("second debit should be a no-op")
	}
	if second.Balance != 50 {
		t.Fatalf("second debit changed balance: %d", second.Balance)
	}
}

func TestDebitCreatesGuestAccount(t *testing.T) {
	store := newFakeStore()
	id := uuid.New()

	svc := NewService(store)
	_, err := svc.Debit(context.Background(), id, 50, "book:6")
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits for fresh guest, got %v", err)
	}
	if _, ok := store.accounts[id]; !ok {
		t.Fatal("expected guest account to be created")
	}
}

func TestDebitInvalidAmount(t *testing.T) {
	svc := NewService(newFakeStore())
	for _, amount := range []int{0, -1} {
		if _, err := svc.Debit(context.Background(), uuid.New(), amount, "m"); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %d: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

func TestDebitReconcilesConcurrentMarker(t *testing.T) {
	store := newFakeStore()
	id := uuid.New()
	acct := store.add(id, 50, account.PartitionRegistered)

	// The guarded write loses the race: another request records the marker
	// and spends the balance between the read and the write.
	store.onDebit = func() (*account.Account, error) {
		acct.Credits = 0
		acct.UnlockedChapters = append(acct.UnlockedChapters, "book:6")
		return nil, nil
	}

	svc := NewService(store)
	entry, err := svc.Debit(context.Background(), id, 50, "book:6")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Applied {
		t.Fatal("expected unapplied entry after losing the race")
	}
	if entry.Balance != 0 {
		t.Fatalf("expected re-read balance 0, got %d", entry.Balance)
	}
}

func TestCreditWithMarkerIsOneTime(t *testing.T) {
	store := newFakeStore()
	id := uuid.New()
	store.add(id, 0, account.PartitionRegistered)

	svc := NewService(store)
	marker := "premium_unlock"

	first, err := svc.Credit(context.Background(), id, 500, &marker)
	if err != nil {
		t.Fatalf("first credit: %v", err)
	}
	if !first.Applied || first.Balance != 500 {
		t.Fatalf("first credit: %+v", first)
	}

	second, err := svc.Credit(context.Background(), id, 500, &marker)
	if err != nil {
		t.Fatalf("second credit: %v", err)
	}
	if second.Applied {
		t.Fatal("second credit should be a no-op")
	}
	if second.Balance != 500 {
		t.Fatalf("second credit changed balance: %d", second.Balance)
	}
}

func TestCreditWithoutMarkerRepeats(t *testing.T) {
	store := newFakeStore()
	id := uuid.New()
	store.add(id, 0, account.PartitionGuest)

	svc := NewService(store)
	for i := 1; i <= 3; i++ {
		entry, err := svc.Credit(context.Background(), id, 100, nil)
		if err != nil {
			t.Fatalf("credit %d: %v", i, err)
		}
		if !entry.Applied || entry.Balance != i*100 {
			t.Fatalf("credit %d: %+v", i, entry)
		}
	}
}

func TestCreditStoreFailure(t *testing.T) {
	store := newFakeStore()
	id := uuid.New()
	store.add(id, 0, account.PartitionRegistered)
	store.creditErr = errors.New("connection reset")

	svc := NewService(store)
	marker := "pack_100"
	if _, err := svc.Credit(context.Background(), id, 100, &marker); !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

func TestBalanceUnknownAccount(t *testing.T) {
	svc := NewService(newFakeStore())
	if _, err := svc.Balance(context.Background(), uuid.New()); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

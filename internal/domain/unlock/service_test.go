package unlock

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/inkleaf/fiction-api/internal/domain/ledger"
)

type fakeLedger struct {
	entry  *ledger.Entry
	err    error
	calls  int
	amount int
	marker string
}

func (f *fakeLedger) Debit(ctx context.Context, accountID uuid.UUID, amount int, marker string) (*ledger.Entry, error) {
	f.calls++
	f.amount = amount
	f.marker = marker
	if f.err != nil {
		return nil, f.err
	}
	return f.entry, nil
}

func TestUnlockFreeChapterSkipsLedger(t *testing.T) {
	fake := &fakeLedger{}
	svc := NewService(fake)

	for n := 1; n < FreeChapterThreshold; n++ {
		result, err := svc.Unlock(context.Background(), uuid.New(), uuid.New(), n)
		if err != nil {
			t.Fatalf("chapter %d: %v", n, err)
		}
		if !result.Free {
			t.Fatalf("chapter %d should be free", n)
		}
	}
	if fake.calls != 0 {
		t.Fatalf("free chapters must not touch the ledger, got %d calls", fake.calls)
	}
}

func TestUnlockPaidChapterDebitsFlatCost(t *testing.T) {
	bookID := uuid.New()
	fake := &fakeLedger{
		entry: &ledger.Entry{Balance: 50, Applied: true, UnlockedChapters: []string{bookID.String() + ":6"}},
	}
	svc := NewService(fake)

	result, err := svc.Unlock(context.Background(), uuid.New(), bookID, FreeChapterThreshold)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Free {
		t.Fatal("paid chapter reported as free")
	}
	if result.AlreadyUnlocked {
		t.Fatal("fresh unlock reported as already unlocked")
	}
	if fake.amount != ChapterUnlockCost {
		t.Fatalf("expected debit of %d, got %d", ChapterUnlockCost, fake.amount)
	}
	if want := Marker(bookID, FreeChapterThreshold); fake.marker != want {
		t.Fatalf("expected marker %q, got %q", want, fake.marker)
	}
	if result.Credits != 50 {
		t.Fatalf("expected remaining credits 50, got %d", result.Credits)
	}
}

func TestUnlockAlreadyUnlocked(t *testing.T) {
	fake := &fakeLedger{
		entry: &ledger.Entry{Balance: 50, Applied: false, UnlockedChapters: []string{"x:6"}},
	}
	svc := NewService(fake)

	result, err := svc.Unlock(context.Background(), uuid.New(), uuid.New(), 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.AlreadyUnlocked {
		t.Fatal("expected AlreadyUnlocked for unapplied entry")
	}
	if result.Credits != 50 {
		t.Fatalf("balance must be unchanged, got %d", result.Credits)
	}
}

func TestUnlockInsufficientCredits(t *testing.T) {
	fake := &fakeLedger{
		err: &ledger.InsufficientCreditsError{Required: 50, Available: 10},
	}
	svc := NewService(fake)

	_, err := svc.Unlock(context.Background(), uuid.New(), uuid.New(), 10)
	if !errors.Is(err, ledger.ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}
}

func TestMarkerFormat(t *testing.T) {
	id := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	if got := Marker(id, 7); got != "11111111-2222-3333-4444-555555555555:7" {
		t.Fatalf("unexpected marker: %q", got)
	}
}

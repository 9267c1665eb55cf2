package ledger

import (
	"github.com/google/uuid"

	"github.com/inkleaf/fiction-api/internal/domain/account"
)

// SignupBonusCredits is granted once when an account is created through the
// authentication flow. Lazily-created guest accounts start at zero.
const SignupBonusCredits = 100

// Entry is the outcome of a balance-changing operation.
// Applied is false when the idempotency marker was already recorded and the
// balance was left untouched (success-with-no-op, not an error).
type Entry struct {
	AccountID         uuid.UUID
	Partition         account.Partition
	Balance           int
	Applied           bool
	UnlockedChapters  []string
	PurchasedProducts []string
}

func entryFrom(acct *account.Account, partition account.Partition, applied bool) *Entry {
	return &Entry{
		AccountID:         acct.ID,
		Partition:         partition,
		Balance:           acct.Credits,
		Applied:           applied,
		UnlockedChapters:  acct.UnlockedChapters,
		PurchasedProducts: acct.Settings.PurchasedProducts,
	}
}

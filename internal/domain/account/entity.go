package account

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Partition identifies which storage partition an account row lives in.
// Registered accounts take precedence over guests when both exist.
type Partition string

const (
	PartitionRegistered Partition = "registered"
	PartitionGuest      Partition = "guest"
)

// Account is a credit-holding identity, registered or guest.
type Account struct {
	ID               uuid.UUID      `db:"id"`
	Email            sql.NullString `db:"email"`
	Credits          int            `db:"credits"`
	UnlockedChapters pq.StringArray `db:"unlocked_chapters"`
	Settings         Settings       `db:"settings"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

// HasUnlocked reports whether the chapter marker is already recorded
func (a *Account) HasUnlocked(marker string) bool {
	for _, m := range a.UnlockedChapters {
		if m == marker {
			return true
		}
	}
	return false
}

// HasPurchased reports whether a one-time product is already recorded
func (a *Account) HasPurchased(productID string) bool {
	return a.Settings.HasPurchased(productID)
}

// Settings is the account's opaque settings blob. The purchased-products set
// is a first-class field here; every other key round-trips untouched so
// client-owned settings survive server writes.
type Settings struct {
	PurchasedProducts []string
	extra             map[string]json.RawMessage
}

const purchasedProductsKey = "purchasedProducts"

// HasPurchased reports whether productID is in the purchased set
func (s *Settings) HasPurchased(productID string) bool {
	for _, p := range s.PurchasedProducts {
		if p == productID {
			return true
		}
	}
	return false
}

// AddPurchased records productID in the purchased set if absent
func (s *Settings) AddPurchased(productID string) {
	if s.HasPurchased(productID) {
		return
	}
	s.PurchasedProducts = append(s.PurchasedProducts, productID)
}

// MarshalJSON serializes the blob, folding the purchased set back in
func (s Settings) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(s.extra)+1)
	for k, v := range s.extra {
		out[k] = v
	}
	if len(s.PurchasedProducts) > 0 {
		raw, err := json.Marshal(s.PurchasedProducts)
		if err != nil {
			return nil, err
		}
		out[purchasedProductsKey] = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON parses the blob, lifting the purchased set out
func (s *Settings) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.PurchasedProducts = nil
	if v, ok := raw[purchasedProductsKey]; ok {
		if err := json.Unmarshal(v, &s.PurchasedProducts); err != nil {
			return err
		}
		delete(raw, purchasedProductsKey)
	}
	s.extra = raw
	return nil
}

// Value implements driver.Valuer for the jsonb column
func (s Settings) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner for the jsonb column
func (s *Settings) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = Settings{}
		return nil
	case []byte:
		if len(v) == 0 {
			*s = Settings{}
			return nil
		}
		return s.UnmarshalJSON(v)
	case string:
		if v == "" {
			*s = Settings{}
			return nil
		}
		return s.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("unsupported settings type: %T", src)
	}
}

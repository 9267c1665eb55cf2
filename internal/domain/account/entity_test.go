package account

import (
	"encoding/json"
	"testing"
)

func TestSettingsRoundTripPreservesUnknownKeys(t *testing.T) {
	blob := `{"theme":"dark","fontSize":18,"purchasedProducts":["premium_unlock"]}`

	var s Settings
	if err := json.Unmarshal([]byte(blob), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(s.PurchasedProducts) != 1 || s.PurchasedProducts[0] != "premium_unlock" {
		t.Fatalf("purchased products not lifted: %v", s.PurchasedProducts)
	}

	out, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("re-decode: %v", err)
	}
	if string(decoded["theme"]) != `"dark"` {
		t.Fatalf("theme lost: %s", out)
	}
	if string(decoded["fontSize"]) != "18" {
		t.Fatalf("fontSize lost: %s", out)
	}
	if _, ok := decoded["purchasedProducts"]; !ok {
		t.Fatalf("purchasedProducts lost: %s", out)
	}
}

func TestSettingsEmptyBlob(t *testing.T) {
	var s Settings
	if err := s.Scan([]byte(`{}`)); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(s.PurchasedProducts) != 0 {
		t.Fatalf("expected no purchases: %v", s.PurchasedProducts)
	}

	s.AddPurchased("premium_unlock")
	s.AddPurchased("premium_unlock")
	if len(s.PurchasedProducts) != 1 {
		t.Fatalf("AddPurchased must be idempotent: %v", s.PurchasedProducts)
	}
}

func TestSettingsScanNull(t *testing.T) {
	s := Settings{PurchasedProducts: []string{"stale"}}
	if err := s.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if len(s.PurchasedProducts) != 0 {
		t.Fatalf("expected reset settings: %v", s.PurchasedProducts)
	}
}

func TestHasUnlocked(t *testing.T) {
	a := Account{UnlockedChapters: []string{"b1:6", "b1:7"}}
	if !a.HasUnlocked("b1:6") {
		t.Fatal("expected marker b1:6")
	}
	if a.HasUnlocked("b1:8") {
		t.Fatal("unexpected marker b1:8")
	}
}

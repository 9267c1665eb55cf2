package googleplay

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testConfig(baseURL string) Config {
	return Config{
		PackageName: "app.inkleaf.reader",
		AccessToken: "ya29.token",
		BaseURL:     baseURL,
	}
}

func TestGetProductPurchase(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		want := "/androidpublisher/v3/applications/app.inkleaf.reader/purchases/products/credits_500/tokens/tok-1"
		if r.URL.Path != want {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer ya29.token" {
			t.Errorf("unexpected auth header: %s", got)
		}
		w.Write([]byte(`{
			"kind": "androidpublisher#productPurchase",
			"orderId": "GPA.1234",
			"purchaseState": 0,
			"acknowledgementState": 0,
			"purchaseTimeMillis": "1724572800000",
			"obfuscatedExternalAccountId": "acc-1"
		}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	purchase, err := client.GetProductPurchase(context.Background(), "credits_500", "tok-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !purchase.IsPurchased() {
		t.Fatalf("expected purchased state: %+v", purchase)
	}
	if purchase.IsAcknowledged() {
		t.Fatalf("expected unacknowledged state: %+v", purchase)
	}
	if purchase.ObfuscatedExternalAccountID != "acc-1" {
		t.Fatalf("account id: %+v", purchase)
	}
}

func TestGetProductPurchaseNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":404,"status":"NOT_FOUND","message":"Purchase token not found."}}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	_, err := client.GetProductPurchase(context.Background(), "credits_500", "tok-gone")
	if !errors.Is(err, ErrPurchaseNotFound) {
		t.Fatalf("expected ErrPurchaseNotFound, got %v", err)
	}
}

func TestAcknowledgeProductPurchase(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		want := "/androidpublisher/v3/applications/app.inkleaf.reader/purchases/products/credits_500/tokens/tok-1:acknowledge"
		if r.URL.Path != want {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	if err := client.AcknowledgeProductPurchase(context.Background(), "credits_500", "tok-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAcknowledgeFailureSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":{"code":409,"status":"CONFLICT","message":"Purchase already acknowledged."}}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	if err := client.AcknowledgeProductPurchase(context.Background(), "credits_500", "tok-1"); err == nil {
		t.Fatal("expected error")
	}
}

func TestValidationErrors(t *testing.T) {
	client := NewClient(testConfig(""))

	if _, err := client.GetProductPurchase(context.Background(), "", "tok"); err == nil {
		t.Fatal("expected error for empty product id")
	}
	if _, err := client.GetProductPurchase(context.Background(), "credits_500", ""); err == nil {
		t.Fatal("expected error for empty purchase token")
	}
	if err := client.AcknowledgeProductPurchase(context.Background(), "", "tok"); err == nil {
		t.Fatal("expected error for empty product id")
	}
}

func TestMissingPackageName(t *testing.T) {
	client := NewClient(Config{AccessToken: "t"})
	if _, err := client.GetProductPurchase(context.Background(), "credits_500", "tok"); err == nil {
		t.Fatal("expected config error")
	}
}

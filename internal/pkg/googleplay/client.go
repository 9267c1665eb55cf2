package googleplay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrPurchaseNotFound is returned when the purchase token is unknown to Google
var ErrPurchaseNotFound = errors.New("google play purchase not found")

// Product purchase states reported by the Android Publisher API
const (
	PurchaseStatePurchased int64 = 0
	PurchaseStateCanceled  int64 = 1
	PurchaseStatePending   int64 = 2
)

// Acknowledgement states
const (
	AckStateYetToBeAcknowledged int64 = 0
	AckStateAcknowledged        int64 = 1
)

// Config holds Google Play Android Publisher API configuration
type Config struct {
	PackageName string
	AccessToken string
	BaseURL     string // override for tests; defaults to https://androidpublisher.googleapis.com
	Timeout     time.Duration
}

// Client represents an Android Publisher purchases API client
type Client struct {
	httpClient *http.Client
	config     Config
}

// NewClient creates new Google Play client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		config:     cfg,
	}
}

// ProductPurchase represents a one-time product purchase resource
type ProductPurchase struct {
	Kind                        string `json:"kind"`
	OrderID                     string `json:"orderId"`
	PurchaseState               int64  `json:"purchaseState"`
	ConsumptionState            int64  `json:"consumptionState"`
	AcknowledgementState        int64  `json:"acknowledgementState"`
	PurchaseTimeMillis          string `json:"purchaseTimeMillis"`
	ObfuscatedExternalAccountID string `json:"obfuscatedExternalAccountId"`
}

// IsPurchased reports whether the purchase is in the captured state
func (p *ProductPurchase) IsPurchased() bool {
	return p.PurchaseState == PurchaseStatePurchased
}

// IsAcknowledged reports whether the purchase has been acknowledged
func (p *ProductPurchase) IsAcknowledged() bool {
	return p.AcknowledgementState == AckStateAcknowledged
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// GetProductPurchase retrieves the purchase behind a purchase token
func (c *Client) GetProductPurchase(ctx context.Context, productID, purchaseToken string) (*ProductPurchase, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, fmt.Errorf("validation error: product id must be non-empty")
	}
	if strings.TrimSpace(purchaseToken) == "" {
		return nil, fmt.Errorf("validation error: purchase token must be non-empty")
	}

	path := c.purchasePath(productID, purchaseToken)

	var out ProductPurchase
	if err := c.do(ctx, http.MethodGet, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AcknowledgeProductPurchase acknowledges a purchase so Google does not auto-refund it
func (c *Client) AcknowledgeProductPurchase(ctx context.Context, productID, purchaseToken string) error {
	if strings.TrimSpace(productID) == "" {
		return fmt.Errorf("validation error: product id must be non-empty")
	}
	if strings.TrimSpace(purchaseToken) == "" {
		return fmt.Errorf("validation error: purchase token must be non-empty")
	}

	path := c.purchasePath(productID, purchaseToken) + ":acknowledge"
	return c.do(ctx, http.MethodPost, path, nil)
}

func (c *Client) purchasePath(productID, purchaseToken string) string {
	return fmt.Sprintf("/androidpublisher/v3/applications/%s/purchases/products/%s/tokens/%s",
		url.PathEscape(c.config.PackageName),
		url.PathEscape(productID),
		url.PathEscape(purchaseToken),
	)
}

func (c *Client) do(ctx context.Context, method, path string, out interface{}) error {
	if c == nil || c.httpClient == nil {
		return fmt.Errorf("google play client is not initialized")
	}
	if strings.TrimSpace(c.config.PackageName) == "" {
		return fmt.Errorf("google play config error: package_name is empty")
	}

	base := strings.TrimRight(c.config.BaseURL, "/")
	if base == "" {
		base = "https://androidpublisher.googleapis.com"
	}

	var body io.Reader
	if method == http.MethodPost {
		body = strings.NewReader("{}")
	}

	req, err := http.NewRequestWithContext(ctx, method, base+path, body)
	if err != nil {
		return fmt.Errorf("google play api call failed: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.AccessToken)
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("google play api call failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("google play api call failed: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrPurchaseNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("google play api error (%s): %s", apiErr.Error.Status, apiErr.Error.Message)
		}
		return fmt.Errorf("google play api returned non-2xx status: %d, body: %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse google play response: %w", err)
	}

	return nil
}

package payment

import (
	"time"

	"github.com/google/uuid"
)

// Providers accepted by the verification endpoint
const (
	ProviderStripe     = "stripe"
	ProviderGooglePlay = "google_play"
)

// Package represents a purchasable credit bundle. ProductID is the
// store-facing identifier shared between Stripe metadata and Google Play
// product ids.
type Package struct {
	ID          uuid.UUID `db:"id"`
	ProductID   string    `db:"product_id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Credits     int       `db:"credits"`
	PriceCents  int64     `db:"price_cents"`
	Currency    string    `db:"currency"`
	OneTime     bool      `db:"one_time"`
	Active      bool      `db:"active"`
	CreatedAt   time.Time `db:"created_at"`
}

// PackageResponse is the JSON shape served by the packages endpoint
type PackageResponse struct {
	ProductID   string `json:"productId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Credits     int    `json:"credits"`
	PriceCents  int64  `json:"priceCents"`
	Currency    string `json:"currency"`
	OneTime     bool   `json:"oneTime"`
}

// NewPackageResponse maps a package row to its JSON shape
func NewPackageResponse(p *Package) PackageResponse {
	return PackageResponse{
		ProductID:   p.ProductID,
		Name:        p.Name,
		Description: p.Description,
		Credits:     p.Credits,
		PriceCents:  p.PriceCents,
		Currency:    p.Currency,
		OneTime:     p.OneTime,
	}
}

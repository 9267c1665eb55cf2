package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/inkleaf/fiction-api/internal/domain/ledger"
	"github.com/inkleaf/fiction-api/internal/pkg/googleplay"
	"github.com/inkleaf/fiction-api/internal/pkg/stripe"
)

// StripeClient is the slice of the Stripe API the payment service needs
type StripeClient interface {
	GetCheckoutSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error)
	GetPaymentIntent(ctx context.Context, intentID string) (*stripe.PaymentIntent, error)
	CreateCheckoutSession(ctx context.Context, params stripe.CreateCheckoutSessionParams) (*stripe.CheckoutSession, error)
	CreatePaymentIntent(ctx context.Context, params stripe.CreatePaymentIntentParams) (*stripe.PaymentIntent, error)
}

// GooglePlayClient is the slice of the Android Publisher API the payment service needs
type GooglePlayClient interface {
	GetProductPurchase(ctx context.Context, productID, purchaseToken string) (*googleplay.ProductPurchase, error)
	AcknowledgeProductPurchase(ctx context.Context, productID, purchaseToken string) error
}

// Ledger is the slice of the credit ledger the payment service needs
type Ledger interface {
	Credit(ctx context.Context, accountID uuid.UUID, amount int, marker *string) (*ledger.Entry, error)
	Balance(ctx context.Context, accountID uuid.UUID) (*ledger.Entry, error)
}

// PackageStore provides the purchasable packages
type PackageStore interface {
	ListActive(ctx context.Context) ([]Package, error)
	GetByProductID(ctx context.Context, productID string) (*Package, error)
}

// URLs are the redirect targets for hosted checkout
type URLs struct {
	SuccessURL string
	CancelURL  string
}

// VerifyParams identifies one provider transaction to verify
type VerifyParams struct {
	Provider      string
	AccountID     uuid.UUID
	ProductID     string
	SessionID     string // stripe checkout session id
	PurchaseToken string // google play purchase token
}

// VerifyResult reports what a verification did to the balance. CreditsAdded
// is zero when the transaction was already consumed.
type VerifyResult struct {
	CreditsAdded int
	NewTotal     int
}

// CheckoutSession is the hosted checkout handle returned to the client
type CheckoutSession struct {
	SessionID string
	URL       string
}

// PaymentSheet carries the client secret for the mobile payment sheet
type PaymentSheet struct {
	IntentID     string
	ClientSecret string
}

// Service verifies purchases against the provider of record and credits the
// ledger. The provider is the source of truth for transaction state; the
// ledger marker only keeps retried verifications from double-crediting.
type Service struct {
	packages   PackageStore
	ledger     Ledger
	stripe     StripeClient
	googlePlay GooglePlayClient
	urls       URLs
}

// NewService creates payment service
func NewService(packages PackageStore, l Ledger, sc StripeClient, gp GooglePlayClient, urls URLs) *Service {
	return &Service{
		packages:   packages,
		ledger:     l,
		stripe:     sc,
		googlePlay: gp,
		urls:       urls,
	}
}

// ListPackages returns the purchasable packages. When accountID is known,
// one-time packages the account already owns are filtered out.
func (s *Service) ListPackages(ctx context.Context, accountID uuid.UUID) ([]Package, error) {
	packages, err := s.packages.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	if accountID == uuid.Nil {
		return packages, nil
	}

	entry, err := s.ledger.Balance(ctx, accountID)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return packages, nil
		}
		return nil, err
	}

	owned := make(map[string]bool, len(entry.PurchasedProducts))
	for _, p := range entry.PurchasedProducts {
		owned[p] = true
	}

	out := packages[:0]
	for _, pkg := range packages {
		if pkg.OneTime && owned[pkg.ProductID] {
			continue
		}
		out = append(out, pkg)
	}
	return out, nil
}

// VerifyPurchase checks one transaction with its provider and credits the
// package's amount exactly once.
func (s *Service) VerifyPurchase(ctx context.Context, params VerifyParams) (*VerifyResult, error) {
	pkg, err := s.packages.GetByProductID(ctx, params.ProductID)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, ErrUnknownProduct
	}

	switch params.Provider {
	case ProviderStripe:
		return s.verifyStripeSession(ctx, params.AccountID, pkg, params.SessionID)
	case ProviderGooglePlay:
		return s.verifyGooglePlay(ctx, params.AccountID, pkg, params.PurchaseToken)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", params.Provider)
	}
}

// ConfirmCheckoutSession verifies a Stripe checkout session identified only
// by its id; the product comes from the session metadata written at creation.
func (s *Service) ConfirmCheckoutSession(ctx context.Context, accountID uuid.UUID, sessionID string) (*VerifyResult, error) {
	session, err := s.stripe.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, mapStripeErr(err)
	}

	pkg, err := s.packageFromMetadata(ctx, session.Metadata)
	if err != nil {
		return nil, err
	}
	return s.settleStripe(ctx, accountID, pkg, session.Metadata, session.PaymentStatus == stripe.PaymentStatusPaid, session.AmountTotal, session.Currency, session.ID)
}

// ConfirmPaymentIntent verifies a payment sheet intent after the client
// reports completion.
func (s *Service) ConfirmPaymentIntent(ctx context.Context, accountID uuid.UUID, intentID string) (*VerifyResult, error) {
	intent, err := s.stripe.GetPaymentIntent(ctx, intentID)
	if err != nil {
		return nil, mapStripeErr(err)
	}

	pkg, err := s.packageFromMetadata(ctx, intent.Metadata)
	if err != nil {
		return nil, err
	}
	return s.settleStripe(ctx, accountID, pkg, intent.Metadata, intent.Status == stripe.IntentStatusSucceeded, intent.Amount, intent.Currency, intent.ID)
}

// CreateCheckoutSession opens a hosted checkout for one package. Account and
// product travel in the session metadata so confirmation can re-derive them.
func (s *Service) CreateCheckoutSession(ctx context.Context, accountID uuid.UUID, productID string) (*CheckoutSession, error) {
	pkg, err := s.packages.GetByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, ErrUnknownProduct
	}

	session, err := s.stripe.CreateCheckoutSession(ctx, stripe.CreateCheckoutSessionParams{
		ProductName: pkg.Name,
		AmountCents: pkg.PriceCents,
		Currency:    pkg.Currency,
		SuccessURL:  s.urls.SuccessURL,
		CancelURL:   s.urls.CancelURL,
		Metadata: map[string]string{
			"account_id": accountID.String(),
			"product_id": pkg.ProductID,
		},
	})
	if err != nil {
		return nil, mapStripeErr(err)
	}
	return &CheckoutSession{SessionID: session.ID, URL: session.URL}, nil
}

// CreatePaymentIntent opens a payment sheet intent for one package
func (s *Service) CreatePaymentIntent(ctx context.Context, accountID uuid.UUID, productID string) (*PaymentSheet, error) {
	pkg, err := s.packages.GetByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, ErrUnknownProduct
	}

	intent, err := s.stripe.CreatePaymentIntent(ctx, stripe.CreatePaymentIntentParams{
		AmountCents: pkg.PriceCents,
		Currency:    pkg.Currency,
		Metadata: map[string]string{
			"account_id": accountID.String(),
			"product_id": pkg.ProductID,
		},
	})
	if err != nil {
		return nil, mapStripeErr(err)
	}
	return &PaymentSheet{IntentID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

func (s *Service) verifyStripeSession(ctx context.Context, accountID uuid.UUID, pkg *Package, sessionID string) (*VerifyResult, error) {
	session, err := s.stripe.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, mapStripeErr(err)
	}
	return s.settleStripe(ctx, accountID, pkg, session.Metadata, session.PaymentStatus == stripe.PaymentStatusPaid, session.AmountTotal, session.Currency, session.ID)
}

// settleStripe runs the shared checks for both checkout sessions and payment
// intents, then credits the ledger.
func (s *Service) settleStripe(ctx context.Context, accountID uuid.UUID, pkg *Package, metadata map[string]string, paid bool, amount int64, currency, transactionID string) (*VerifyResult, error) {
	if !paid {
		return nil, ErrPurchaseNotCompleted
	}
	if amount != pkg.PriceCents || !strings.EqualFold(currency, pkg.Currency) {
		return nil, ErrAmountMismatch
	}
	if owner := metadata["account_id"]; owner != "" && owner != accountID.String() {
		return nil, ErrOwnershipMismatch
	}
	if pid := metadata["product_id"]; pid != "" && pid != pkg.ProductID {
		return nil, ErrProductMismatch
	}

	return s.credit(ctx, accountID, pkg, transactionID)
}

func (s *Service) verifyGooglePlay(ctx context.Context, accountID uuid.UUID, pkg *Package, purchaseToken string) (*VerifyResult, error) {
	purchase, err := s.googlePlay.GetProductPurchase(ctx, pkg.ProductID, purchaseToken)
	if err != nil {
		if errors.Is(err, googleplay.ErrPurchaseNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrProviderUnreachable, err)
	}

	if !purchase.IsPurchased() {
		return nil, ErrPurchaseNotCompleted
	}
	if owner := purchase.ObfuscatedExternalAccountID; owner != "" && owner != accountID.String() {
		return nil, ErrOwnershipMismatch
	}

	result, err := s.credit(ctx, accountID, pkg, purchaseToken)
	if err != nil {
		return nil, err
	}

	// Acknowledgement is best effort: the credits are already granted, and
	// Google accepts a later retry of the acknowledge call.
	if !purchase.IsAcknowledged() {
		if err := s.googlePlay.AcknowledgeProductPurchase(ctx, pkg.ProductID, purchaseToken); err != nil {
			log.Warn().Err(err).
				Str("product_id", pkg.ProductID).
				Msg("failed to acknowledge google play purchase")
		}
	}
	return result, nil
}

// credit grants the package amount. One-time packages use the product id as
// the ledger marker, so the grant survives at most once per account;
// consumable packages use the provider transaction reference, so retried
// verifications of the same transaction stay no-ops.
func (s *Service) credit(ctx context.Context, accountID uuid.UUID, pkg *Package, transactionID string) (*VerifyResult, error) {
	marker := pkg.ProductID
	if !pkg.OneTime {
		marker = pkg.ProductID + ":" + transactionID
	}

	entry, err := s.ledger.Credit(ctx, accountID, pkg.Credits, &marker)
	if err != nil {
		return nil, err
	}

	result := &VerifyResult{NewTotal: entry.Balance}
	if entry.Applied {
		result.CreditsAdded = pkg.Credits
	}
	return result, nil
}

func (s *Service) packageFromMetadata(ctx context.Context, metadata map[string]string) (*Package, error) {
	productID := metadata["product_id"]
	if productID == "" {
		return nil, ErrUnknownProduct
	}
	pkg, err := s.packages.GetByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, ErrUnknownProduct
	}
	return pkg, nil
}

func mapStripeErr(err error) error {
	if errors.Is(err, stripe.ErrNotFound) {
		return ErrTransactionNotFound
	}
	return fmt.Errorf("%w: %v", ErrProviderUnreachable, err)
}

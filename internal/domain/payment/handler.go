package payment

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/inkleaf/fiction-api/internal/pkg/response"
	"github.com/inkleaf/fiction-api/internal/pkg/validator"
)

// Handler handles payment HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates payment handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the payments router
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/packages", h.ListPackages)
	r.Post("/verify-purchase", h.VerifyPurchase)
	r.Post("/create-checkout-session", h.CreateCheckoutSession)
	r.Post("/create-payment-intent", h.CreatePaymentIntent)
	r.Post("/stripe/confirm", h.ConfirmCheckoutSession)
	r.Post("/stripe/payment-sheet/confirm", h.ConfirmPaymentIntent)
	return r
}

// ListPackages handles GET /api/payments/packages
func (h *Handler) ListPackages(w http.ResponseWriter, r *http.Request) {
	accountID := uuid.Nil
	if raw := r.URL.Query().Get("accountId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "Invalid account id")
			return
		}
		accountID = parsed
	}

	packages, err := h.service.ListPackages(r.Context(), accountID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list credit packages")
		response.InternalError(w)
		return
	}

	out := make([]PackageResponse, 0, len(packages))
	for i := range packages {
		out = append(out, NewPackageResponse(&packages[i]))
	}
	response.OK(w, out)
}

// VerifyPurchaseRequest is the verification endpoint payload
type VerifyPurchaseRequest struct {
	Provider      string `json:"provider" validate:"required,provider"`
	AccountID     string `json:"accountId" validate:"required,uuid"`
	ProductID     string `json:"productId" validate:"required"`
	SessionID     string `json:"sessionId"`
	PurchaseToken string `json:"purchaseToken"`
}

// VerifyPurchaseResponse reports the credit outcome
type VerifyPurchaseResponse struct {
	Success      bool `json:"success"`
	CreditsAdded int  `json:"creditsAdded"`
	NewTotal     int  `json:"newTotal"`
}

// VerifyPurchase handles POST /api/payments/verify-purchase
func (h *Handler) VerifyPurchase(w http.ResponseWriter, r *http.Request) {
	var req VerifyPurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}
	if req.Provider == ProviderStripe && req.SessionID == "" {
		response.BadRequest(w, "sessionId is required for stripe")
		return
	}
	if req.Provider == ProviderGooglePlay && req.PurchaseToken == "" {
		response.BadRequest(w, "purchaseToken is required for google_play")
		return
	}

	accountID, _ := uuid.Parse(req.AccountID)

	result, err := h.service.VerifyPurchase(r.Context(), VerifyParams{
		Provider:      req.Provider,
		AccountID:     accountID,
		ProductID:     req.ProductID,
		SessionID:     req.SessionID,
		PurchaseToken: req.PurchaseToken,
	})
	if err != nil {
		h.writeVerifyError(w, err, req.Provider, req.ProductID)
		return
	}

	response.OK(w, VerifyPurchaseResponse{
		Success:      true,
		CreditsAdded: result.CreditsAdded,
		NewTotal:     result.NewTotal,
	})
}

// CheckoutRequest identifies the package and buyer for checkout creation
type CheckoutRequest struct {
	AccountID string `json:"accountId" validate:"required,uuid"`
	ProductID string `json:"productId" validate:"required"`
}

// CreateCheckoutSession handles POST /api/payments/create-checkout-session
func (h *Handler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	accountID, _ := uuid.Parse(req.AccountID)

	session, err := h.service.CreateCheckoutSession(r.Context(), accountID, req.ProductID)
	if err != nil {
		h.writeVerifyError(w, err, ProviderStripe, req.ProductID)
		return
	}

	response.OK(w, map[string]string{
		"sessionId": session.SessionID,
		"url":       session.URL,
	})
}

// CreatePaymentIntent handles POST /api/payments/create-payment-intent
func (h *Handler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	accountID, _ := uuid.Parse(req.AccountID)

	sheet, err := h.service.CreatePaymentIntent(r.Context(), accountID, req.ProductID)
	if err != nil {
		h.writeVerifyError(w, err, ProviderStripe, req.ProductID)
		return
	}

	response.OK(w, map[string]string{
		"paymentIntentId": sheet.IntentID,
		"clientSecret":    sheet.ClientSecret,
	})
}

// ConfirmRequest identifies a stripe transaction to settle
type ConfirmRequest struct {
	AccountID       string `json:"accountId" validate:"required,uuid"`
	SessionID       string `json:"sessionId"`
	PaymentIntentID string `json:"paymentIntentId"`
}

// ConfirmCheckoutSession handles POST /api/payments/stripe/confirm
func (h *Handler) ConfirmCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}
	if req.SessionID == "" {
		response.BadRequest(w, "sessionId is required")
		return
	}

	accountID, _ := uuid.Parse(req.AccountID)

	result, err := h.service.ConfirmCheckoutSession(r.Context(), accountID, req.SessionID)
	if err != nil {
		h.writeVerifyError(w, err, ProviderStripe, "")
		return
	}

	response.OK(w, VerifyPurchaseResponse{
		Success:      true,
		CreditsAdded: result.CreditsAdded,
		NewTotal:     result.NewTotal,
	})
}

// ConfirmPaymentIntent handles POST /api/payments/stripe/payment-sheet/confirm
func (h *Handler) ConfirmPaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}
	if req.PaymentIntentID == "" {
		response.BadRequest(w, "paymentIntentId is required")
		return
	}

	accountID, _ := uuid.Parse(req.AccountID)

	result, err := h.service.ConfirmPaymentIntent(r.Context(), accountID, req.PaymentIntentID)
	if err != nil {
		h.writeVerifyError(w, err, ProviderStripe, "")
		return
	}

	response.OK(w, VerifyPurchaseResponse{
		Success:      true,
		CreditsAdded: result.CreditsAdded,
		NewTotal:     result.NewTotal,
	})
}

func (h *Handler) writeVerifyError(w http.ResponseWriter, err error, provider, productID string) {
	switch {
	case errors.Is(err, ErrUnknownProduct):
		response.Error(w, http.StatusNotFound, "UNKNOWN_PRODUCT", "No such credit package")
	case errors.Is(err, ErrTransactionNotFound):
		response.Error(w, http.StatusNotFound, "TRANSACTION_NOT_FOUND", "Transaction not found")
	case errors.Is(err, ErrPurchaseNotCompleted):
		response.Error(w, http.StatusBadRequest, "PURCHASE_NOT_COMPLETED", "Purchase is not completed")
	case errors.Is(err, ErrAmountMismatch):
		response.Error(w, http.StatusBadRequest, "AMOUNT_MISMATCH", "Charged amount does not match package price")
	case errors.Is(err, ErrProductMismatch):
		response.Error(w, http.StatusBadRequest, "PRODUCT_MISMATCH", "Transaction references a different product")
	case errors.Is(err, ErrOwnershipMismatch):
		response.Error(w, http.StatusBadRequest, "OWNERSHIP_MISMATCH", "Purchase belongs to a different account")
	case errors.Is(err, ErrProviderUnreachable):
		response.Error(w, http.StatusInternalServerError, "PROVIDER_UNREACHABLE", "Payment provider is unavailable")
	default:
		log.Error().Err(err).
			Str("provider", provider).
			Str("product_id", productID).
			Msg("payment operation failed")
		response.InternalError(w)
	}
}

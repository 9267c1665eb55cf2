package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/inkleaf/fiction-api/internal/middleware"
	"github.com/inkleaf/fiction-api/internal/pkg/jwt"
	"github.com/inkleaf/fiction-api/internal/pkg/response"
	"github.com/inkleaf/fiction-api/internal/pkg/validator"
)

// Handler handles auth HTTP requests
type Handler struct {
	service *Service
	jwt     *jwt.Service
}

// NewHandler creates auth handler
func NewHandler(service *Service, jwtService *jwt.Service) *Handler {
	return &Handler{service: service, jwt: jwtService}
}

// Routes returns the auth router
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/magiclink", h.RequestMagicLink)
	r.Post("/verify", h.Verify)
	r.Post("/guest", h.CreateGuest)
	r.Post("/delete-otp", h.RequestDeleteCode)
	r.Post("/delete-confirm", h.ConfirmDelete)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(h.jwt))
		r.Get("/me", h.Me)
		r.Delete("/delete", h.DeleteAccount)
	})

	return r
}

// RequestMagicLink handles POST /api/auth/magiclink
func (h *Handler) RequestMagicLink(w http.ResponseWriter, r *http.Request) {
	var req MagicLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	if err := h.service.RequestMagicLink(r.Context(), req.Email); err != nil {
		log.Error().Err(err).Msg("failed to issue magic link")
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]bool{"sent": true})
}

// Verify handles POST /api/auth/verify
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	session, err := h.service.Verify(r.Context(), req.Email, req.Code)
	if err != nil {
		if errors.Is(err, ErrInvalidCode) {
			response.BadRequest(w, "Invalid or expired code")
			return
		}
		log.Error().Err(err).Msg("failed to verify sign-in code")
		response.InternalError(w)
		return
	}

	response.OK(w, session)
}

// Me handles GET /api/auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	me, err := h.service.Me(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			response.NotFound(w, "Account not found")
			return
		}
		log.Error().Err(err).Str("account_id", accountID.String()).Msg("failed to load account")
		response.InternalError(w)
		return
	}

	response.OK(w, me)
}

// CreateGuest handles POST /api/auth/guest
func (h *Handler) CreateGuest(w http.ResponseWriter, r *http.Request) {
	guest, err := h.service.CreateGuest(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to create guest account")
		response.InternalError(w)
		return
	}

	response.OK(w, guest)
}

// DeleteAccount handles DELETE /api/auth/delete
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	if err := h.service.DeleteAccount(r.Context(), accountID); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			response.NotFound(w, "Account not found")
			return
		}
		log.Error().Err(err).Str("account_id", accountID.String()).Msg("failed to delete account")
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]bool{"deleted": true})
}

// RequestDeleteCode handles POST /api/auth/delete-otp
func (h *Handler) RequestDeleteCode(w http.ResponseWriter, r *http.Request) {
	var req DeleteOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	if err := h.service.RequestDeleteCode(r.Context(), req.Email); err != nil {
		log.Error().Err(err).Msg("failed to issue deletion code")
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]bool{"sent": true})
}

// ConfirmDelete handles POST /api/auth/delete-confirm
func (h *Handler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	var req DeleteConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	err := h.service.ConfirmDelete(r.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCode):
			response.BadRequest(w, "Invalid or expired code")
		case errors.Is(err, ErrAccountNotFound):
			response.NotFound(w, "Account not found")
		default:
			log.Error().Err(err).Msg("failed to confirm account deletion")
			response.InternalError(w)
		}
		return
	}

	response.OK(w, map[string]bool{"deleted": true})
}

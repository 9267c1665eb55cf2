package book

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/inkleaf/fiction-api/internal/pkg/response"
)

// Handler handles book HTTP requests
type Handler struct {
	repo *Repository
}

// NewHandler creates book handler
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// Routes returns the books router
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/view", h.View)
	return r
}

// List handles GET /api/books
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.repo.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list books")
		response.InternalError(w)
		return
	}

	out := make([]Response, 0, len(books))
	for i := range books {
		out = append(out, NewResponse(&books[i]))
	}
	response.OK(w, out)
}

// Get handles GET /api/books/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid book id")
		return
	}

	b, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Str("book_id", id.String()).Msg("failed to get book")
		response.InternalError(w)
		return
	}
	if b == nil {
		response.NotFound(w, "Book not found")
		return
	}

	response.OK(w, NewResponse(b))
}

// View handles POST /api/books/{id}/view
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid book id")
		return
	}

	views, err := h.repo.IncrementViews(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			response.NotFound(w, "Book not found")
			return
		}
		log.Error().Err(err).Str("book_id", id.String()).Msg("failed to increment views")
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]int64{"views": views})
}

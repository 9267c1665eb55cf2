package chapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/inkleaf/fiction-api/internal/domain/ledger"
	"github.com/inkleaf/fiction-api/internal/domain/unlock"
	"github.com/inkleaf/fiction-api/internal/pkg/response"
	"github.com/inkleaf/fiction-api/internal/pkg/validator"
)

// Unlocker is the slice of the unlock service the handler needs
type Unlocker interface {
	Unlock(ctx context.Context, accountID, bookID uuid.UUID, chapterNumber int) (*unlock.Result, error)
}

// Handler handles chapter HTTP requests
type Handler struct {
	repo     *Repository
	unlocker Unlocker
}

// NewHandler creates chapter handler
func NewHandler(repo *Repository, unlocker Unlocker) *Handler {
	return &Handler{repo: repo, unlocker: unlocker}
}

// Routes returns the chapters router
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/book/{bookId}", h.ListByBook)
	r.Get("/book/{bookId}/chapter/{number}", h.Get)
	r.Post("/unlock", h.Unlock)
	return r
}

// ListByBook handles GET /api/chapters/book/{bookId}
func (h *Handler) ListByBook(w http.ResponseWriter, r *http.Request) {
	bookID, err := uuid.Parse(chi.URLParam(r, "bookId"))
	if err != nil {
		response.BadRequest(w, "Invalid book id")
		return
	}

	chapters, err := h.repo.ListByBook(r.Context(), bookID)
	if err != nil {
		log.Error().Err(err).Str("book_id", bookID.String()).Msg("failed to list chapters")
		response.InternalError(w)
		return
	}

	out := make([]ListItem, 0, len(chapters))
	for i := range chapters {
		c := &chapters[i]
		out = append(out, ListItem{
			ID:        c.ID,
			BookID:    c.BookID,
			Number:    c.Number,
			Title:     c.Title,
			WordCount: c.WordCount,
			Free:      c.Number < unlock.FreeChapterThreshold,
			CreatedAt: c.CreatedAt.Format(time.RFC3339),
		})
	}
	response.OK(w, out)
}

// Get handles GET /api/chapters/book/{bookId}/chapter/{number}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	bookID, err := uuid.Parse(chi.URLParam(r, "bookId"))
	if err != nil {
		response.BadRequest(w, "Invalid book id")
		return
	}
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number < 1 {
		response.BadRequest(w, "Invalid chapter number")
		return
	}

	c, err := h.repo.GetByBookAndNumber(r.Context(), bookID, number)
	if err != nil {
		log.Error().Err(err).Str("book_id", bookID.String()).Int("number", number).Msg("failed to get chapter")
		response.InternalError(w)
		return
	}
	if c == nil {
		response.NotFound(w, "Chapter not found")
		return
	}

	response.OK(w, Response{
		ID:        c.ID,
		BookID:    c.BookID,
		Number:    c.Number,
		Title:     c.Title,
		Content:   c.Content,
		WordCount: c.WordCount,
		Free:      c.Number < unlock.FreeChapterThreshold,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	})
}

// UnlockRequest is the unlock endpoint payload
type UnlockRequest struct {
	AccountID     string `json:"accountId" validate:"required,uuid"`
	BookID        string `json:"bookId" validate:"required,uuid"`
	ChapterNumber int    `json:"chapterNumber" validate:"required,gte=1"`
}

// UnlockResponse is the unlock endpoint result
type UnlockResponse struct {
	Success      bool     `json:"success"`
	Free         bool     `json:"free,omitempty"`
	Credits      int      `json:"credits"`
	PaidChapters []string `json:"paidChapters"`
}

// Unlock handles POST /api/chapters/unlock
func (h *Handler) Unlock(w http.ResponseWriter, r *http.Request) {
	var req UnlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	accountID, _ := uuid.Parse(req.AccountID)
	bookID, _ := uuid.Parse(req.BookID)

	result, err := h.unlocker.Unlock(r.Context(), accountID, bookID, req.ChapterNumber)
	if err != nil {
		var insufficient *ledger.InsufficientCreditsError
		if errors.As(err, &insufficient) {
			response.ErrorWithDetails(w, http.StatusBadRequest, "INSUFFICIENT_CREDITS", "Not enough credits to unlock this chapter", map[string]string{
				"required":  strconv.Itoa(insufficient.Required),
				"available": strconv.Itoa(insufficient.Available),
			})
			return
		}
		log.Error().Err(err).
			Str("account_id", req.AccountID).
			Str("book_id", req.BookID).
			Int("chapter_number", req.ChapterNumber).
			Msg("failed to unlock chapter")
		response.InternalError(w)
		return
	}

	if result.Free {
		response.OK(w, UnlockResponse{Success: true, Free: true, PaidChapters: []string{}})
		return
	}

	paid := result.PaidChapters
	if paid == nil {
		paid = []string{}
	}
	response.OK(w, UnlockResponse{
		Success:      true,
		Credits:      result.Credits,
		PaidChapters: paid,
	})
}

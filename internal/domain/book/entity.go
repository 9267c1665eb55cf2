package book

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Book represents one serialized title in the catalog
type Book struct {
	ID           uuid.UUID      `db:"id"`
	Title        string         `db:"title"`
	Author       string         `db:"author"`
	Description  sql.NullString `db:"description"`
	CoverURL     sql.NullString `db:"cover_url"`
	Genre        sql.NullString `db:"genre"`
	ChapterCount int            `db:"chapter_count"`
	Views        int64          `db:"views"`
	IsPublished  bool           `db:"is_published"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// Response is the JSON shape served by the books endpoints
type Response struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	Description  string    `json:"description,omitempty"`
	CoverURL     string    `json:"coverUrl,omitempty"`
	Genre        string    `json:"genre,omitempty"`
	ChapterCount int       `json:"chapterCount"`
	Views        int64     `json:"views"`
	CreatedAt    string    `json:"createdAt"`
}

// NewResponse maps a book row to its JSON shape
func NewResponse(b *Book) Response {
	return Response{
		ID:           b.ID,
		Title:        b.Title,
		Author:       b.Author,
		Description:  b.Description.String,
		CoverURL:     b.CoverURL.String,
		Genre:        b.Genre.String,
		ChapterCount: b.ChapterCount,
		Views:        b.Views,
		CreatedAt:    b.CreatedAt.Format(time.RFC3339),
	}
}

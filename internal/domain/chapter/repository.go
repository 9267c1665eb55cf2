package chapter

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository handles chapter database operations
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new chapter repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// ListByBook returns all chapters of a book without their body text,
// ordered by chapter number.
func (r *Repository) ListByBook(ctx context.Context, bookID uuid.UUID) ([]Chapter, error) {
	query := `
		SELECT id, book_id, number, title, word_count, created_at
		FROM chapters
		WHERE book_id = $1
		ORDER BY number ASC
	`
	chapters := make([]Chapter, 0)
	err := r.db.SelectContext(ctx, &chapters, query, bookID)
	return chapters, err
}

// GetByBookAndNumber returns one chapter with its content, or nil if absent
func (r *Repository) GetByBookAndNumber(ctx context.Context, bookID uuid.UUID, number int) (*Chapter, error) {
	query := `
		SELECT id, book_id, number, title, content, word_count, created_at
		FROM chapters
		WHERE book_id = $1 AND number = $2
	`
	var c Chapter
	err := r.db.GetContext(ctx, &c, query, bookID, number)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

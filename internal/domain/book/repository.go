package book

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository handles book database operations
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new book repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// List returns all published books, newest first
func (r *Repository) List(ctx context.Context) ([]Book, error) {
	query := `
		SELECT id, title, author, description, cover_url, genre, chapter_count, views, is_published, created_at, updated_at
		FROM books
		WHERE is_published = true
		ORDER BY created_at DESC
	`
	books := make([]Book, 0)
	err := r.db.SelectContext(ctx, &books, query)
	return books, err
}

// GetByID returns a book by ID, or nil if absent
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Book, error) {
	query := `
		SELECT id, title, author, description, cover_url, genre, chapter_count, views, is_published, created_at, updated_at
		FROM books
		WHERE id = $1
	`
	var b Book
	err := r.db.GetContext(ctx, &b, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// IncrementViews bumps the view counter and returns the new count.
// Returns sql.ErrNoRows when the book does not exist.
func (r *Repository) IncrementViews(ctx context.Context, id uuid.UUID) (int64, error) {
	var views int64
	err := r.db.QueryRowContext(ctx, `
		UPDATE books SET views = views + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING views
	`, id).Scan(&views)
	return views, err
}

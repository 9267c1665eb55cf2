package chapter

import (
	"time"

	"github.com/google/uuid"
)

// Chapter represents one installment of a book
type Chapter struct {
	ID        uuid.UUID `db:"id"`
	BookID    uuid.UUID `db:"book_id"`
	Number    int       `db:"number"`
	Title     string    `db:"title"`
	Content   string    `db:"content"`
	WordCount int       `db:"word_count"`
	CreatedAt time.Time `db:"created_at"`
}

// ListItem is the JSON shape for chapter listings (no body text)
type ListItem struct {
	ID        uuid.UUID `json:"id"`
	BookID    uuid.UUID `json:"bookId"`
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	WordCount int       `json:"wordCount"`
	Free      bool      `json:"free"`
	CreatedAt string    `json:"createdAt"`
}

// Response is the JSON shape for a single chapter fetch
type Response struct {
	ID        uuid.UUID `json:"id"`
	BookID    uuid.UUID `json:"bookId"`
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	WordCount int       `json:"wordCount"`
	Free      bool      `json:"free"`
	CreatedAt string    `json:"createdAt"`
}

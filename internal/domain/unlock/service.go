package unlock

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/inkleaf/fiction-api/internal/domain/ledger"
)

const (
	// FreeChapterThreshold is the first paid chapter number. Chapters below
	// it never touch the ledger.
	FreeChapterThreshold = 6

	// ChapterUnlockCost is the flat price of a paid chapter
	ChapterUnlockCost = 50
)

// Ledger is the slice of the credit ledger the unlock gate needs
type Ledger interface {
	Debit(ctx context.Context, accountID uuid.UUID, amount int, marker string) (*ledger.Entry, error)
}

// Result distinguishes the three unlock outcomes
type Result struct {
	Free            bool
	AlreadyUnlocked bool
	Credits         int
	PaidChapters    []string
}

// Service gates chapter access behind the credit ledger
type Service struct {
	ledger Ledger
}

// NewService creates unlock service
func NewService(l Ledger) *Service {
	return &Service{ledger: l}
}

// Marker builds the chapter idempotency key
func Marker(bookID uuid.UUID, chapterNumber int) string {
	return fmt.Sprintf("%s:%d", bookID, chapterNumber)
}

// Unlock spends credits to open a chapter. Free chapters succeed without any
// ledger interaction; paid chapters debit the flat cost exactly once per
// (book, chapter) thanks to the ledger marker.
func (s *Service) Unlock(ctx context.Context, accountID, bookID uuid.UUID, chapterNumber int) (*Result, error) {
	if chapterNumber < FreeChapterThreshold {
		return &Result{Free: true}, nil
	}

	entry, err := s.ledger.Debit(ctx, accountID, ChapterUnlockCost, Marker(bookID, chapterNumber))
	if err != nil {
		return nil, err
	}

	return &Result{
		AlreadyUnlocked: !entry.Applied,
		Credits:         entry.Balance,
		PaidChapters:    entry.UnlockedChapters,
	}, nil
}

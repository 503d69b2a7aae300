package book

import (
	"time"

	"github.com/ideaforge/backend/internal/id"
)

// Book groups the ideas extracted from a single title.
// Book → Ideas → Tests → Attempts.
type Book struct {
	ID       string
	Title    string
	Author   string
	CoverURL *string // Optional - filled from the metadata lookup
	AddedAt  time.Time
}

// New creates a Book with a generated ID.
func New(title, author string) *Book {
	return &Book{
		ID:      id.New(),
		Title:   title,
		Author:  author,
		AddedAt: time.Now().UTC(),
	}
}

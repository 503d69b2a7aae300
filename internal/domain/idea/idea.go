package idea

import (
	"time"

	"github.com/ideaforge/backend/internal/id"
)

// MasteryLevel summarizes demonstrated competence on a single idea.
type MasteryLevel int

const (
	MasteryUnstarted    MasteryLevel = 0
	MasteryBasic        MasteryLevel = 1
	MasteryIntermediate MasteryLevel = 2
	MasteryMastered     MasteryLevel = 3
)

func (m MasteryLevel) String() string {
	switch m {
	case MasteryUnstarted:
		return "unstarted"
	case MasteryBasic:
		return "basic"
	case MasteryIntermediate:
		return "intermediate"
	case MasteryMastered:
		return "mastered"
	}
	return "unknown"
}

// Valid reports whether m is one of the four defined levels.
func (m MasteryLevel) Valid() bool {
	return m >= MasteryUnstarted && m <= MasteryMastered
}

// Advance moves the level up one step, capped at Mastered.
func (m MasteryLevel) Advance() MasteryLevel {
	if m >= MasteryMastered {
		return MasteryMastered
	}
	return m + 1
}

// Demote moves the level down one step, floored at Unstarted.
func (m MasteryLevel) Demote() MasteryLevel {
	if m <= MasteryUnstarted {
		return MasteryUnstarted
	}
	return m - 1
}

// Idea is a single extracted concept the learner practices against.
type Idea struct {
	ID            string
	BookID        string
	BookTitle     string
	Title         string
	Description   string
	Mastery       MasteryLevel
	LastPracticed *time.Time
	CurrentLevel  *int // Legacy sub-progression counter; persisted but not interpreted
}

// New creates an Idea with a generated ID and no prior progress.
func New(bookID, bookTitle, title, description string) *Idea {
	return &Idea{
		ID:          id.New(),
		BookID:      bookID,
		BookTitle:   bookTitle,
		Title:       title,
		Description: description,
		Mastery:     MasteryUnstarted,
	}
}

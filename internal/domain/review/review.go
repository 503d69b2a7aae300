package review

import (
	"time"

	"github.com/ideaforge/backend/internal/domain/idea"
	"github.com/ideaforge/backend/internal/domain/question"
	"github.com/ideaforge/backend/internal/id"
	"github.com/ideaforge/backend/internal/scheduler"
)

// QueueItem is one missed question captured for future review. Exactly one
// item exists per incorrect response; the store enforces this with a unique
// index on ResponseID.
type QueueItem struct {
	ID           string
	IdeaID       string
	IdeaTitle    string
	BookID       string
	BookTitle    string
	Type         question.Type
	Difficulty   question.Difficulty
	Bloom        question.Bloom
	QuestionText string // the original missed question, for regeneration context
	ResponseID   string
	AddedAt      time.Time
	Completed    bool
	CompletedAt  *time.Time
	Curveball    bool
}

// NewQueueItem captures a missed question as a review item.
func NewQueueItem(ideaRef idea.Idea, q question.Question, responseID string) *QueueItem {
	return &QueueItem{
		ID:           id.New(),
		IdeaID:       ideaRef.ID,
		IdeaTitle:    ideaRef.Title,
		BookID:       ideaRef.BookID,
		BookTitle:    ideaRef.BookTitle,
		Type:         q.Type,
		Difficulty:   q.Difficulty,
		Bloom:        q.Bloom,
		QuestionText: q.Text,
		ResponseID:   responseID,
		AddedAt:      time.Now().UTC(),
	}
}

// QueueStats counts pending (not completed, not curveball) items per type.
type QueueStats struct {
	SingleChoice int
	MultiChoice  int
	OpenEnded    int
}

// Total is the number of pending items across all types.
func (s QueueStats) Total() int {
	return s.SingleChoice + s.MultiChoice + s.OpenEnded
}

// Tally counts graded responses for one bloom category.
type Tally struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
}

// MasteryRecord is the durable per-(idea, book) projection the scheduler and
// queue consult: coverage tallies per bloom category, the derived mastery
// level, and the serialized review state.
type MasteryRecord struct {
	IdeaID         string
	BookID         string
	Level          idea.MasteryLevel
	Coverage       map[question.Bloom]Tally
	State          *scheduler.ReviewState // nil until the first graded review
	MasteredAt     *time.Time
	LastCurveball  *time.Time
	UpdatedAt      time.Time
}

// NewMasteryRecord creates the first-exposure record for an (idea, book) pair.
func NewMasteryRecord(ideaID, bookID string) *MasteryRecord {
	return &MasteryRecord{
		IdeaID:   ideaID,
		BookID:   bookID,
		Level:    idea.MasteryUnstarted,
		Coverage: make(map[question.Bloom]Tally),
	}
}

// RecordOutcome updates the coverage tally for one graded response.
func (m *MasteryRecord) RecordOutcome(bloom question.Bloom, correct bool) {
	if m.Coverage == nil {
		m.Coverage = make(map[question.Bloom]Tally)
	}
	t := m.Coverage[bloom]
	if correct {
		t.Correct++
	} else {
		t.Incorrect++
	}
	m.Coverage[bloom] = t
}

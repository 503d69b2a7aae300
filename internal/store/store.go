package store

import (
	"context"
	"errors"
	"time"

	"github.com/ideaforge/backend/internal/domain/assessment"
	"github.com/ideaforge/backend/internal/domain/book"
	"github.com/ideaforge/backend/internal/domain/idea"
	"github.com/ideaforge/backend/internal/domain/review"
)

var (
	ErrNotFound = errors.New("not found")
)

// Store is the persistence contract the engine assumes: CRUD plus
// predicate-filtered fetch per entity, read-your-writes within the process.
// Writes for a single logical assembly (a test and its questions) are atomic.
type Store interface {
	// Books
	SaveBook(ctx context.Context, b *book.Book) error
	GetBook(ctx context.Context, id string) (*book.Book, error)
	ListBooks(ctx context.Context) ([]*book.Book, error)
	DeleteBook(ctx context.Context, id string) error

	// Ideas
	SaveIdeas(ctx context.Context, ideas []*idea.Idea) error
	GetIdea(ctx context.Context, id string) (*idea.Idea, error)
	ListIdeasByBook(ctx context.Context, bookID string) ([]*idea.Idea, error)
	UpdateIdeaProgress(ctx context.Context, ideaID string, level idea.MasteryLevel, lastPracticed time.Time) error

	// Tests: SaveTest writes the test and all its questions in one
	// transaction, or nothing.
	SaveTest(ctx context.Context, t *assessment.Test) error
	GetTest(ctx context.Context, id string) (*assessment.Test, error)
	DeleteTest(ctx context.Context, id string) error

	// Ready sessions: the persisted composition for a book's next practice.
	SaveReadySession(ctx context.Context, bookID, testID string) error
	GetReadySessionTestID(ctx context.Context, bookID string) (string, error)
	ClearReadySession(ctx context.Context, bookID string) error

	// Attempts and responses
	SaveAttempt(ctx context.Context, a *assessment.Attempt) error
	GetAttempt(ctx context.Context, id string) (*assessment.Attempt, error)
	UpdateAttempt(ctx context.Context, a *assessment.Attempt) error
	SaveResponse(ctx context.Context, r *assessment.Response) error
	UpdateResponse(ctx context.Context, r *assessment.Response) error

	// Review queue
	SaveQueueItem(ctx context.Context, item *review.QueueItem) (created bool, err error)
	ListPendingQueueItems(ctx context.Context, bookID string) ([]review.QueueItem, error)
	MarkQueueItemsCompleted(ctx context.Context, ids []string, at time.Time) error
	CountPendingQueueItems(ctx context.Context, bookID string) (review.QueueStats, error)
	DeleteCompletedQueueItemsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Mastery records
	GetMasteryRecord(ctx context.Context, ideaID, bookID string) (*review.MasteryRecord, error)
	SaveMasteryRecord(ctx context.Context, rec *review.MasteryRecord) error
	ListMasteryRecordsByBook(ctx context.Context, bookID string) ([]*review.MasteryRecord, error)
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ideaforge/backend/internal/domain/assessment"
	"github.com/ideaforge/backend/internal/domain/idea"
	"github.com/ideaforge/backend/internal/domain/question"
	"github.com/ideaforge/backend/internal/domain/review"
	"github.com/ideaforge/backend/internal/store"
)

// Daily intake caps. These are an attention-budget constraint, not a storage
// limit: however many mistakes are queued, one session surfaces at most
// 3 choice items and 1 open-ended item.
const (
	dailyChoiceCap    = 3
	dailyOpenEndedCap = 1
)

// ReviewQueueService owns the ReviewQueueItem lifecycle: durable mistake
// capture, daily intake shaping, completion, and retention GC.
type ReviewQueueService struct {
	store     store.Store
	logger    *slog.Logger
	retention time.Duration
}

// NewReviewQueueService creates a ReviewQueueService. retention bounds how
// long completed items are kept before physical deletion.
func NewReviewQueueService(s store.Store, logger *slog.Logger, retention time.Duration) *ReviewQueueService {
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	return &ReviewQueueService{
		store:     s,
		logger:    logger,
		retention: retention,
	}
}

// RecordMistakes creates one review item per incorrect response in a
// completed attempt, scoped to the idea each question tests. Idempotent per
// response: re-invoking with the same attempt never double-queues a mistake.
// Returns the number of items newly created.
func (s *ReviewQueueService) RecordMistakes(ctx context.Context, attempt *assessment.Attempt, test *assessment.Test) (int, error) {
	created := 0
	ideas := make(map[string]*idea.Idea)

	for _, resp := range attempt.IncorrectResponses() {
		q := test.QuestionByID(resp.QuestionID)
		if q == nil {
			return created, fmt.Errorf("response %s references unknown question %s", resp.ID, resp.QuestionID)
		}

		ideaRef, ok := ideas[q.IdeaID]
		if !ok {
			var err error
			ideaRef, err = s.store.GetIdea(ctx, q.IdeaID)
			if err != nil {
				return created, fmt.Errorf("failed to load idea %s: %w", q.IdeaID, err)
			}
			ideas[q.IdeaID] = ideaRef
		}

		item := review.NewQueueItem(*ideaRef, *q, resp.ID)
		ok, err := s.store.SaveQueueItem(ctx, item)
		if err != nil {
			return created, fmt.Errorf("failed to queue mistake: %w", err)
		}
		if ok {
			created++
		}
	}

	if created > 0 {
		s.logger.Info("mistakes queued for review",
			"attempt_id", attempt.ID,
			"count", created,
		)
	}
	return created, nil
}

// SelectDailyItems returns the oldest pending items for the book, capped at
// 3 choice-type and 1 open-ended. Completed and curveball items are never
// returned; curveballs follow the mastery component's own policy.
func (s *ReviewQueueService) SelectDailyItems(ctx context.Context, bookID string) (mcq []review.QueueItem, openEnded []review.QueueItem, err error) {
	pending, err := s.store.ListPendingQueueItems(ctx, bookID)
	if err != nil {
		return nil, nil, err
	}

	for _, item := range pending {
		switch {
		case item.Type.IsChoice() && len(mcq) < dailyChoiceCap:
			mcq = append(mcq, item)
		case item.Type == question.TypeOpenEnded && len(openEnded) < dailyOpenEndedCap:
			openEnded = append(openEnded, item)
		}
		if len(mcq) == dailyChoiceCap && len(openEnded) == dailyOpenEndedCap {
			break
		}
	}
	return mcq, openEnded, nil
}

// MarkCompleted flags the items complete. They stay on disk for the
// retention window (analytics/undo) and are excluded from future selection.
func (s *ReviewQueueService) MarkCompleted(ctx context.Context, items []review.QueueItem) error {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return s.MarkCompletedIDs(ctx, ids)
}

// MarkCompletedIDs is MarkCompleted for callers that only hold item IDs.
func (s *ReviewQueueService) MarkCompletedIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.store.MarkQueueItemsCompleted(ctx, ids, time.Now().UTC())
}

// Statistics reports pending item counts per type for the book.
func (s *ReviewQueueService) Statistics(ctx context.Context, bookID string) (review.QueueStats, error) {
	return s.store.CountPendingQueueItems(ctx, bookID)
}

// PurgeExpired deletes completed items older than the retention window.
func (s *ReviewQueueService) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	deleted, err := s.store.DeleteCompletedQueueItemsBefore(ctx, now.Add(-s.retention))
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("purged expired review items", "count", deleted)
	}
	return deleted, nil
}

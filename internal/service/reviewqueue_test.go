package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/ideaforge/backend/internal/domain/assessment"
	"github.com/ideaforge/backend/internal/domain/idea"
	"github.com/ideaforge/backend/internal/domain/question"
	"github.com/ideaforge/backend/internal/domain/review"
	"github.com/ideaforge/backend/internal/id"
	"github.com/ideaforge/backend/internal/service"
)

func seedIdea(t *testing.T, ms *memStore, bookID string) *idea.Idea {
	t.Helper()
	iv := idea.New(bookID, "Some Book", "Some Idea", "A description of the idea.")
	if err := ms.SaveIdeas(context.Background(), []*idea.Idea{iv}); err != nil {
		t.Fatalf("seed idea: %v", err)
	}
	return iv
}

// missedAttempt builds a completed test+attempt where the given question
// indices were answered wrong.
func missedAttempt(t *testing.T, ms *memStore, ideaID, bookID string, types []question.Type, wrong map[int]bool) (*assessment.Test, *assessment.Attempt) {
	t.Helper()
	ctx := context.Background()

	test := assessment.NewTest(ideaID, bookID, "Some Book", assessment.TestInitial)
	for i, qt := range types {
		q := question.Question{
			ID:         id.New(),
			IdeaID:     ideaID,
			Type:       qt,
			Difficulty: question.DifficultyEasy,
			Bloom:      question.BloomRecall,
			Text:       "q",
			Position:   i,
		}
		if qt.IsChoice() {
			q.Options = []string{"a", "b", "c", "d"}
			q.Correct = []int{0}
		}
		test.Questions = append(test.Questions, q)
	}
	if err := ms.SaveTest(ctx, test); err != nil {
		t.Fatalf("save test: %v", err)
	}

	attempt := assessment.NewAttempt(test.ID)
	for i := range test.Questions {
		resp := assessment.NewResponse(attempt.ID, test.Questions[i].ID, "[0]")
		resp.Correct = !wrong[i]
		attempt.Responses = append(attempt.Responses, *resp)
	}
	return test, attempt
}

func TestRecordMistakes_QueuesIncorrectOnly(t *testing.T) {
	ms := newMemStore()
	svc := service.NewReviewQueueService(ms, discardLogger(), 0)
	iv := seedIdea(t, ms, "book-1")

	types := []question.Type{
		question.TypeSingleChoice, question.TypeSingleChoice, question.TypeOpenEnded,
	}
	test, attempt := missedAttempt(t, ms, iv.ID, "book-1", types, map[int]bool{0: true, 2: true})

	created, err := svc.RecordMistakes(context.Background(), attempt, test)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created != 2 {
		t.Errorf("created %d items, want 2", created)
	}

	stats, err := svc.Statistics(context.Background(), "book-1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.SingleChoice != 1 || stats.OpenEnded != 1 {
		t.Errorf("stats = %+v, want 1 single choice and 1 open ended", stats)
	}
}

func TestRecordMistakes_IdempotentPerResponse(t *testing.T) {
	ms := newMemStore()
	svc := service.NewReviewQueueService(ms, discardLogger(), 0)
	iv := seedIdea(t, ms, "book-1")

	test, attempt := missedAttempt(t, ms, iv.ID, "book-1",
		[]question.Type{question.TypeSingleChoice}, map[int]bool{0: true})

	if _, err := svc.RecordMistakes(context.Background(), attempt, test); err != nil {
		t.Fatalf("first call: %v", err)
	}
	created, err := svc.RecordMistakes(context.Background(), attempt, test)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if created != 0 {
		t.Errorf("second call created %d items, want 0", created)
	}

	stats, _ := svc.Statistics(context.Background(), "book-1")
	if stats.Total() != 1 {
		t.Errorf("queue holds %d items, want 1", stats.Total())
	}
}

func TestSelectDailyItems_Caps(t *testing.T) {
	ms := newMemStore()
	svc := service.NewReviewQueueService(ms, discardLogger(), 0)
	iv := seedIdea(t, ms, "book-1")
	ctx := context.Background()

	// 5 choice and 3 open-ended mistakes, staggered in time.
	added := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 8; i++ {
		qt := question.TypeSingleChoice
		if i >= 5 {
			qt = question.TypeOpenEnded
		}
		q := question.Question{Type: qt, Difficulty: question.DifficultyEasy, Bloom: question.BloomRecall, Text: "q"}
		item := review.NewQueueItem(*iv, q, id.New())
		item.AddedAt = added.Add(time.Duration(i) * time.Minute)
		if _, err := ms.SaveQueueItem(ctx, item); err != nil {
			t.Fatalf("seed item: %v", err)
		}
	}

	mcq, openEnded, err := svc.SelectDailyItems(ctx, "book-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mcq) != 3 {
		t.Errorf("got %d choice items, want 3", len(mcq))
	}
	if len(openEnded) != 1 {
		t.Errorf("got %d open-ended items, want 1", len(openEnded))
	}

	// Oldest first.
	for i := 1; i < len(mcq); i++ {
		if mcq[i].AddedAt.Before(mcq[i-1].AddedAt) {
			t.Error("choice items not ordered oldest first")
		}
	}
}

func TestSelectDailyItems_SkipsCompletedAndCurveball(t *testing.T) {
	ms := newMemStore()
	svc := service.NewReviewQueueService(ms, discardLogger(), 0)
	iv := seedIdea(t, ms, "book-1")
	ctx := context.Background()

	q := question.Question{Type: question.TypeSingleChoice, Difficulty: question.DifficultyEasy, Bloom: question.BloomRecall, Text: "q"}

	completed := review.NewQueueItem(*iv, q, id.New())
	completed.Completed = true
	curve := review.NewQueueItem(*iv, q, id.New())
	curve.Curveball = true
	pending := review.NewQueueItem(*iv, q, id.New())

	for _, item := range []*review.QueueItem{completed, curve, pending} {
		if _, err := ms.SaveQueueItem(ctx, item); err != nil {
			t.Fatalf("seed item: %v", err)
		}
	}

	mcq, openEnded, err := svc.SelectDailyItems(ctx, "book-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mcq) != 1 || len(openEnded) != 0 {
		t.Errorf("got %d choice + %d open ended, want exactly the 1 pending item", len(mcq), len(openEnded))
	}
	if len(mcq) == 1 && mcq[0].ID != pending.ID {
		t.Errorf("selected %s, want %s", mcq[0].ID, pending.ID)
	}
}

func TestPurgeExpired(t *testing.T) {
	ms := newMemStore()
	svc := service.NewReviewQueueService(ms, discardLogger(), 30*24*time.Hour)
	iv := seedIdea(t, ms, "book-1")
	ctx := context.Background()
	now := time.Now().UTC()

	q := question.Question{Type: question.TypeSingleChoice, Difficulty: question.DifficultyEasy, Bloom: question.BloomRecall, Text: "q"}

	old := review.NewQueueItem(*iv, q, id.New())
	old.Completed = true
	oldDone := now.Add(-31 * 24 * time.Hour)
	old.CompletedAt = &oldDone

	recent := review.NewQueueItem(*iv, q, id.New())
	recent.Completed = true
	recentDone := now.Add(-24 * time.Hour)
	recent.CompletedAt = &recentDone

	stillPending := review.NewQueueItem(*iv, q, id.New())

	for _, item := range []*review.QueueItem{old, recent, stillPending} {
		if _, err := ms.SaveQueueItem(ctx, item); err != nil {
			t.Fatalf("seed item: %v", err)
		}
	}

	purged, err := svc.PurgeExpired(ctx, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if purged != 1 {
		t.Errorf("purged %d items, want 1", purged)
	}
	if _, ok := ms.queue[old.ID]; ok {
		t.Error("expired item should be deleted")
	}
	if _, ok := ms.queue[recent.ID]; !ok {
		t.Error("recently completed item should be retained")
	}
	if _, ok := ms.queue[stillPending.ID]; !ok {
		t.Error("pending item must never be purged")
	}
}

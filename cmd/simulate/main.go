// Command simulate runs the full practice loop against a scripted content
// provider and an in-memory store: add a book, assemble a session, answer
// it (with one deliberate miss), complete the attempt, and show how the
// mistake flows into the next session's review section.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ideaforge/backend/internal/books"
	"github.com/ideaforge/backend/internal/domain/assessment"
	"github.com/ideaforge/backend/internal/domain/blueprint"
	"github.com/ideaforge/backend/internal/domain/book"
	"github.com/ideaforge/backend/internal/domain/question"
	"github.com/ideaforge/backend/internal/generator"
	"github.com/ideaforge/backend/internal/grader"
	"github.com/ideaforge/backend/internal/scheduler"
	"github.com/ideaforge/backend/internal/service"
	"github.com/ideaforge/backend/internal/store"
)

// scriptedProvider answers every prompt shape the engine sends without a
// real model: idea extraction, batched and single question generation, and
// open-ended grading.
type scriptedProvider struct {
	calls int
}

func (p *scriptedProvider) Complete(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	p.calls++

	switch {
	case strings.Contains(systemPrompt, "distill books"):
		return `{"ideas": [
			{"title": "Deliberate Practice", "description": "Skill grows fastest through focused practice at the edge of ability, with immediate feedback and repetition of weak spots."},
			{"title": "Spacing Effect", "description": "Information reviewed at increasing intervals is retained far longer than information crammed in one sitting."}
		]}`, nil

	case strings.Contains(systemPrompt, "grade a learner"):
		return `{"correct": true, "points": 20, "feedback": "Captures the core of the idea in your own words."}`, nil

	case strings.Contains(userPrompt, "Write exactly 8 questions"):
		return p.batchResponse(), nil

	default:
		// Single-slot or review regeneration.
		if strings.Contains(userPrompt, "open_ended") {
			return fmt.Sprintf(`{"question": "Scripted open question %d"}`, p.calls), nil
		}
		return fmt.Sprintf(`{"question": "Scripted question %d", "options": ["Deliberate effort", "Passive reading", "Raw talent", "Longer hours"], "correct": [0]}`, p.calls), nil
	}
}

func (p *scriptedProvider) batchResponse() string {
	items := make([]string, 0, blueprint.Size)
	for _, slot := range blueprint.Blueprint() {
		if slot.Type == question.TypeOpenEnded {
			items = append(items, fmt.Sprintf(
				`{"orderIndex": %d, "type": "%s", "bloom": "%s", "difficulty": "%s", "question": "Scripted %s prompt"}`,
				slot.Index, slot.Type, slot.Bloom, slot.Difficulty, slot.Bloom))
			continue
		}
		items = append(items, fmt.Sprintf(
			`{"orderIndex": %d, "type": "%s", "bloom": "%s", "difficulty": "%s", "question": "Scripted %s question", "options": ["Right answer", "Near miss", "Common myth", "Unrelated fact"], "correct": [0]}`,
			slot.Index, slot.Type, slot.Bloom, slot.Difficulty, slot.Bloom))
	}
	return `{"questions": [` + strings.Join(items, ",") + `]}`
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctx := context.Background()

	db, err := store.NewSQLite(":memory:")
	if err != nil {
		fmt.Fprintln(os.Stderr, "open store:", err)
		os.Exit(1)
	}
	defer db.Close()

	provider := &scriptedProvider{}
	gen := generator.New(provider, logger)
	analyzer := books.NewAnalyzer(provider, logger)
	queueSvc := service.NewReviewQueueService(db, logger, 30*24*time.Hour)
	masterySvc := service.NewMasteryService(db, logger, scheduler.DefaultParams(), 7*24*time.Hour)
	evalSvc := service.NewEvaluationService(db, grader.NewLLMGrader(provider), logger)
	sessions := service.NewSessionService(db, gen, queueSvc, masterySvc, evalSvc, logger)

	// Add a book and extract its ideas.
	b := book.New("Make It Stick", "Peter C. Brown")
	if err := db.SaveBook(ctx, b); err != nil {
		fail("save book", err)
	}
	ideas, err := analyzer.ExtractIdeas(ctx, b, 2)
	if err != nil {
		fail("extract ideas", err)
	}
	if err := db.SaveIdeas(ctx, ideas); err != nil {
		fail("save ideas", err)
	}
	fmt.Printf("book %q added with %d ideas\n", b.Title, len(ideas))

	// Round 1: fresh session, one deliberate miss.
	attempt := runSession(ctx, sessions, db, b.ID, 1)
	fmt.Printf("round 1 score: %d (mastery achieved: %v)\n", attempt.Score, attempt.MasteryAchieved)

	stats, err := queueSvc.Statistics(ctx, b.ID)
	if err != nil {
		fail("queue stats", err)
	}
	fmt.Printf("review queue after round 1: %d pending\n", stats.Total())

	// Round 2: the miss comes back as a review question.
	attempt = runSession(ctx, sessions, db, b.ID, 0)
	fmt.Printf("round 2 score: %d (mastery achieved: %v)\n", attempt.Score, attempt.MasteryAchieved)

	stats, err = queueSvc.Statistics(ctx, b.ID)
	if err != nil {
		fail("queue stats", err)
	}
	fmt.Printf("review queue after round 2: %d pending\n", stats.Total())
	fmt.Printf("provider calls: %d\n", provider.calls)
}

// runSession answers a full session, getting the first `misses` choice
// questions deliberately wrong.
func runSession(ctx context.Context, sessions *service.SessionService, db store.Store, bookID string, misses int) *assessment.Attempt {
	t, err := sessions.TodaySession(ctx, bookID)
	if err != nil {
		fail("assemble session", err)
	}
	fmt.Printf("session: %d questions (%s)\n", len(t.Questions), t.Type)

	attempt, err := sessions.StartAttempt(ctx, t.ID)
	if err != nil {
		fail("start attempt", err)
	}

	missed := 0
	for i := range t.Questions {
		q := &t.Questions[i]
		var answer string
		switch {
		case q.Type == question.TypeOpenEnded:
			answer = "Spreading reviews out over growing intervals makes the memory durable."
		case missed < misses:
			wrong := (q.Correct[0] + 1) % len(q.Options)
			answer = marshalIndices([]int{wrong})
			missed++
		default:
			answer = marshalIndices(q.Correct)
		}
		if _, _, err := sessions.SubmitAnswer(ctx, attempt.ID, q.ID, answer); err != nil {
			fail("submit answer", err)
		}
	}

	done, err := sessions.CompleteAttempt(ctx, attempt.ID)
	if err != nil {
		fail("complete attempt", err)
	}
	return done
}

func marshalIndices(indices []int) string {
	raw, _ := json.Marshal(indices)
	return string(raw)
}

func fail(what string, err error) {
	fmt.Fprintln(os.Stderr, what+":", err)
	os.Exit(1)
}

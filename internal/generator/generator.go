// Package generator turns LLM output into validated test content. The happy
// path is one batched call covering all 8 blueprint slots; on validation
// failure the batch is retried once, then generation falls back to one
// question at a time, which is slower but more reliable.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/ideaforge/backend/internal/domain/assessment"
	"github.com/ideaforge/backend/internal/domain/blueprint"
	"github.com/ideaforge/backend/internal/domain/idea"
	"github.com/ideaforge/backend/internal/domain/question"
	"github.com/ideaforge/backend/internal/domain/review"
	"github.com/ideaforge/backend/internal/llm"
)

// Strategy selects the generation pipeline. The default batches first and
// falls back to sequential; the other two pin a single path so tests and
// callers can force either deterministically.
type Strategy int

const (
	StrategyBatchedWithFallback Strategy = iota
	StrategyBatchedOnly
	StrategySequentialOnly
)

// batchAttempts is the initial batched call plus one retry.
const batchAttempts = 2

// singleAttempts bounds per-slot calls on the sequential path.
const singleAttempts = 2

// Generator assembles validated questions from a content provider.
type Generator struct {
	provider llm.Provider
	logger   *slog.Logger
}

// New creates a Generator.
func New(provider llm.Provider, logger *slog.Logger) *Generator {
	return &Generator{provider: provider, logger: logger}
}

// InitialTest produces a complete, shape-valid initial test for the idea, or
// fails with ErrExhausted. It never returns a partially-filled test.
func (g *Generator) InitialTest(ctx context.Context, ideaRef idea.Idea) (*assessment.Test, error) {
	return g.InitialTestWithStrategy(ctx, ideaRef, StrategyBatchedWithFallback)
}

// InitialTestWithStrategy is InitialTest with an explicit pipeline choice.
func (g *Generator) InitialTestWithStrategy(ctx context.Context, ideaRef idea.Idea, strategy Strategy) (*assessment.Test, error) {
	var questions []question.Question
	var lastErr error

	if strategy != StrategySequentialOnly {
		questions, lastErr = g.generateBatched(ctx, ideaRef)
	}

	if questions == nil && strategy != StrategyBatchedOnly {
		if lastErr != nil {
			g.logger.Warn("batched generation failed, falling back to sequential",
				"idea_id", ideaRef.ID,
				"error", lastErr,
			)
		}
		questions, lastErr = g.generateSequential(ctx, ideaRef)
	}

	if questions == nil {
		return nil, fmt.Errorf("%w: idea %s: %v", ErrExhausted, ideaRef.ID, lastErr)
	}

	for i := range questions {
		shuffleOptions(&questions[i])
	}

	test := assessment.NewTest(ideaRef.ID, ideaRef.BookID, ideaRef.BookTitle, assessment.TestInitial)
	test.Questions = questions
	return test, nil
}

// generateBatched makes the batched call with one retry.
func (g *Generator) generateBatched(ctx context.Context, ideaRef idea.Idea) ([]question.Question, error) {
	prompt := buildBatchPrompt(ideaRef)

	var lastErr error
	for attempt := 0; attempt < batchAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := g.provider.Complete(ctx, batchSystemPrompt, prompt)
		if err != nil {
			lastErr = err
			continue
		}

		batch, err := parseBatch(raw)
		if err != nil {
			lastErr = err
			continue
		}

		questions, err := buildFromBatch(ideaRef.ID, batch)
		if err != nil {
			lastErr = err
			continue
		}
		return questions, nil
	}
	return nil, lastErr
}

// generateSequential fills the blueprint one slot at a time, each slot
// independently validated and bounded by singleAttempts.
func (g *Generator) generateSequential(ctx context.Context, ideaRef idea.Idea) ([]question.Question, error) {
	questions := make([]question.Question, 0, blueprint.Size)
	for _, slot := range blueprint.Blueprint() {
		q, err := g.generateSlot(ctx, ideaRef, slot)
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", slot.Index, err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func (g *Generator) generateSlot(ctx context.Context, ideaRef idea.Idea, slot blueprint.Slot) (question.Question, error) {
	prompt := buildSinglePrompt(ideaRef, slot)

	var lastErr error
	for attempt := 0; attempt < singleAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return question.Question{}, err
		}

		raw, err := g.provider.Complete(ctx, batchSystemPrompt, prompt)
		if err != nil {
			lastErr = err
			continue
		}

		single, err := parseSingle(raw)
		if err != nil {
			lastErr = err
			continue
		}

		q, err := buildQuestion(ideaRef.ID, slot, *single)
		if err != nil {
			lastErr = err
			continue
		}
		return q, nil
	}
	return question.Question{}, lastErr
}

// ReviewQuestion regenerates one review-queue item as a fresh question with
// the same (bloom, difficulty, type) shape but different surface content.
func (g *Generator) ReviewQuestion(ctx context.Context, item review.QueueItem) (question.Question, error) {
	slot := blueprint.Slot{
		Bloom:      item.Bloom,
		Difficulty: item.Difficulty,
		Type:       item.Type,
	}
	prompt := buildReviewPrompt(item)

	var lastErr error
	for attempt := 0; attempt < singleAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return question.Question{}, err
		}

		raw, err := g.provider.Complete(ctx, batchSystemPrompt, prompt)
		if err != nil {
			lastErr = err
			continue
		}

		single, err := parseSingle(raw)
		if err != nil {
			lastErr = err
			continue
		}

		q, err := buildQuestion(item.IdeaID, slot, *single)
		if err != nil {
			lastErr = err
			continue
		}

		shuffleOptions(&q)
		q.ReviewItemID = item.ID
		q.Curveball = item.Curveball
		return q, nil
	}
	return question.Question{}, fmt.Errorf("%w: review item %s: %v", ErrExhausted, item.ID, lastErr)
}

// CurveballQuestion generates a disguised re-check for a mastered idea: one
// single-choice medium question on a randomly chosen bloom category.
func (g *Generator) CurveballQuestion(ctx context.Context, ideaRef idea.Idea) (question.Question, error) {
	slot := blueprint.Slot{
		Bloom:      question.Blooms[rand.Intn(len(question.Blooms))],
		Difficulty: question.DifficultyMedium,
		Type:       question.TypeSingleChoice,
	}
	prompt := buildSinglePrompt(ideaRef, slot)

	var lastErr error
	for attempt := 0; attempt < singleAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return question.Question{}, err
		}

		raw, err := g.provider.Complete(ctx, batchSystemPrompt, prompt)
		if err != nil {
			lastErr = err
			continue
		}

		single, err := parseSingle(raw)
		if err != nil {
			lastErr = err
			continue
		}

		q, err := buildQuestion(ideaRef.ID, slot, *single)
		if err != nil {
			lastErr = err
			continue
		}

		shuffleOptions(&q)
		q.Curveball = true
		return q, nil
	}
	return question.Question{}, fmt.Errorf("%w: curveball for idea %s: %v", ErrExhausted, ideaRef.ID, lastErr)
}

package grader

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ideaforge/backend/internal/llm"
)

// LLMGrader grades open-ended answers through the shared LLM provider.
type LLMGrader struct {
	provider llm.Provider
}

// Compile-time check: *LLMGrader satisfies the Grader interface.
var _ Grader = (*LLMGrader)(nil)

// GradeError is returned when grading fails so the caller can distinguish
// between "LLM returned a bad grade" and "LLM was unreachable."
type GradeError struct {
	Reason  string
	Wrapped error
}

func (e *GradeError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("grading failed: %s: %v", e.Reason, e.Wrapped)
	}
	return fmt.Sprintf("grading failed: %s", e.Reason)
}

func (e *GradeError) Unwrap() error {
	return e.Wrapped
}

// NewLLMGrader creates a grader backed by the given provider.
func NewLLMGrader(provider llm.Provider) *LLMGrader {
	return &LLMGrader{provider: provider}
}

const maxRetries = 2

const gradeSystemPrompt = `You grade a learner's free-text answer about an idea from a book.
Judge whether the answer demonstrates understanding of the idea, allowing
different wording and synonyms. Partial understanding earns partial points.`

// GradeAnswer asks the LLM to score the answer and returns the parsed result.
// It retries once on parse failure (small models sometimes need a second try).
func (g *LLMGrader) GradeAnswer(ctx context.Context, req Request) (Result, error) {
	prompt := buildGradePrompt(req)

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		raw, err := g.provider.Complete(ctx, gradeSystemPrompt, prompt)
		if err != nil {
			lastErr = err
			continue
		}

		jsonStr := llm.ExtractJSON(raw)
		if jsonStr == "" {
			lastErr = &GradeError{Reason: "no JSON object found in LLM response"}
			continue
		}

		var result Result
		if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
			lastErr = &GradeError{Reason: "invalid JSON from LLM", Wrapped: err}
			continue
		}

		if result.Points < 0 {
			result.Points = 0
		}
		if result.Points > req.MaxPoints {
			result.Points = req.MaxPoints
		}
		// A correct answer always earns points; an incorrect one may still
		// earn partial credit but never full.
		if result.Correct && result.Points == 0 {
			result.Points = req.MaxPoints
		}
		if !result.Correct && result.Points == req.MaxPoints && req.MaxPoints > 0 {
			result.Points = req.MaxPoints / 2
		}

		return result, nil
	}

	return Result{}, &GradeError{
		Reason:  fmt.Sprintf("failed after %d attempts", maxRetries),
		Wrapped: lastErr,
	}
}

func buildGradePrompt(req Request) string {
	return fmt.Sprintf(`QUESTION:
%s

IDEA BEING TESTED: %s
%s

LEARNER'S ANSWER:
%s

Score from 0 to %d points. "correct" means the answer shows real understanding.

Respond with ONLY this JSON — no explanation, no markdown:
{"correct": true, "points": %d, "feedback": "one or two sentences"}`,
		req.QuestionText, req.IdeaTitle, req.IdeaDescription, req.UserAnswer,
		req.MaxPoints, req.MaxPoints)
}

package grader

import "context"

// Result is the evaluation contract: correctness and points, plus free-text
// feedback the presentation layer may show.
type Result struct {
	Correct  bool   `json:"correct"`
	Points   int    `json:"points"`
	Feedback string `json:"feedback"`
}

// Request carries everything needed to grade one open-ended answer.
type Request struct {
	QuestionText    string
	IdeaTitle       string
	IdeaDescription string
	UserAnswer      string
	MaxPoints       int
}

// Grader evaluates a free-text answer against the idea it tests.
// Implementations may call an LLM or return canned results (for tests).
type Grader interface {
	GradeAnswer(ctx context.Context, req Request) (Result, error)
}

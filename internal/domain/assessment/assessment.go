package assessment

import (
	"time"

	"github.com/ideaforge/backend/internal/domain/question"
	"github.com/ideaforge/backend/internal/id"
)

// TestType distinguishes how a test was assembled.
type TestType string

const (
	// TestInitial is a fresh 8-slot test for an idea, matching the blueprint.
	TestInitial TestType = "initial"
	// TestReview contains only regenerated review-queue material.
	TestReview TestType = "review"
	// TestRetry is rebuilt from the questions missed in a prior attempt.
	TestRetry TestType = "retry"
	// TestMixed interleaves fresh material with review material.
	TestMixed TestType = "mixed"
)

func (t TestType) Valid() bool {
	switch t {
	case TestInitial, TestReview, TestRetry, TestMixed:
		return true
	}
	return false
}

// Test is one assembled set of questions for a single idea's session.
type Test struct {
	ID        string
	IdeaID    string
	BookID    string
	BookTitle string
	Type      TestType
	CreatedAt time.Time
	Questions []question.Question
}

// NewTest creates a Test with a generated ID. Questions are appended by the
// assembler and persisted all-or-nothing by the store.
func NewTest(ideaID, bookID, bookTitle string, testType TestType) *Test {
	return &Test{
		ID:        id.New(),
		IdeaID:    ideaID,
		BookID:    bookID,
		BookTitle: bookTitle,
		Type:      testType,
		CreatedAt: time.Now().UTC(),
	}
}

// QuestionByID finds a question in the test, or nil.
func (t *Test) QuestionByID(questionID string) *question.Question {
	for i := range t.Questions {
		if t.Questions[i].ID == questionID {
			return &t.Questions[i]
		}
	}
	return nil
}

// MaxScore is the sum of all question point values.
func (t *Test) MaxScore() int {
	total := 0
	for i := range t.Questions {
		total += t.Questions[i].Points()
	}
	return total
}

// Attempt is one run through a test.
type Attempt struct {
	ID              string
	TestID          string
	CreatedAt       time.Time
	CompletedAt     *time.Time
	Completed       bool
	Score           int
	RetryCount      int
	MasteryAchieved bool
	Responses       []Response
}

// NewAttempt creates an Attempt for the given test.
func NewAttempt(testID string) *Attempt {
	return &Attempt{
		ID:        id.New(),
		TestID:    testID,
		CreatedAt: time.Now().UTC(),
	}
}

// ResponseFor finds the response answering the given question, or nil.
func (a *Attempt) ResponseFor(questionID string) *Response {
	for i := range a.Responses {
		if a.Responses[i].QuestionID == questionID {
			return &a.Responses[i]
		}
	}
	return nil
}

// IncorrectResponses returns the responses flagged incorrect.
func (a *Attempt) IncorrectResponses() []Response {
	var out []Response
	for _, r := range a.Responses {
		if !r.Correct {
			out = append(out, r)
		}
	}
	return out
}

// TotalPoints sums the points earned across all responses.
func (a *Attempt) TotalPoints() int {
	total := 0
	for _, r := range a.Responses {
		total += r.Points
	}
	return total
}

// Response records one answered question. The raw answer is serialized by the
// caller (selected indices as JSON for choice questions, free text otherwise).
type Response struct {
	ID         string
	AttemptID  string
	QuestionID string
	Answer     string
	Correct    bool
	Points     int
}

// NewResponse creates a Response with a generated ID.
func NewResponse(attemptID, questionID, answer string) *Response {
	return &Response{
		ID:         id.New(),
		AttemptID:  attemptID,
		QuestionID: questionID,
		Answer:     answer,
	}
}

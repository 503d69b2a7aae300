package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ideaforge/backend/internal/domain/assessment"
	"github.com/ideaforge/backend/internal/domain/question"
	"github.com/ideaforge/backend/internal/grader"
	"github.com/ideaforge/backend/internal/store"
)

// ScoreChoice grades a choice question locally: the selected index set must
// equal the correct set exactly. Partial credit for multi-choice is not
// awarded.
func ScoreChoice(q *question.Question, selected []int) (bool, int) {
	if len(selected) != len(q.Correct) {
		return false, 0
	}
	want := make(map[int]bool, len(q.Correct))
	for _, c := range q.Correct {
		want[c] = true
	}
	for _, sel := range selected {
		if !want[sel] {
			return false, 0
		}
	}
	return true, q.Points()
}

// OpenEndedRequest contains everything needed to grade one free-text answer.
type OpenEndedRequest struct {
	AttemptID       string
	Response        assessment.Response
	QuestionText    string
	IdeaTitle       string
	IdeaDescription string
	MaxPoints       int
}

// EvaluationService manages asynchronous grading of open-ended answers.
// It owns the per-attempt WaitGroups so the store stays a pure persistence
// layer; choice answers are scored synchronously with ScoreChoice.
type EvaluationService struct {
	store  store.Store
	grader grader.Grader
	logger *slog.Logger

	mu      sync.RWMutex
	pending map[string]*sync.WaitGroup // attemptID → WaitGroup
}

// NewEvaluationService creates an EvaluationService.
func NewEvaluationService(s store.Store, g grader.Grader, logger *slog.Logger) *EvaluationService {
	return &EvaluationService{
		store:   s,
		grader:  g,
		logger:  logger,
		pending: make(map[string]*sync.WaitGroup),
	}
}

// TrackAttempt registers an attempt for WaitGroup tracking.
// Call this after saving a new attempt.
func (es *EvaluationService) TrackAttempt(attemptID string) {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.pending[attemptID] = &sync.WaitGroup{}
}

// SubmitOpenEnded sends a free-text answer for async grading. The goroutine
// calls the LLM and corrects the persisted response with the result.
func (es *EvaluationService) SubmitOpenEnded(req OpenEndedRequest) {
	es.mu.RLock()
	wg, ok := es.pending[req.AttemptID]
	es.mu.RUnlock()

	if ok {
		wg.Add(1)
	}

	go func() {
		if ok {
			defer wg.Done()
		}
		es.evaluate(req)
	}()
}

// WaitForAttempt blocks until all grading goroutines for an attempt finish.
func (es *EvaluationService) WaitForAttempt(attemptID string) {
	es.mu.RLock()
	wg, ok := es.pending[attemptID]
	es.mu.RUnlock()

	if ok {
		wg.Wait()
	}
}

// Release drops the WaitGroup for a finished attempt.
func (es *EvaluationService) Release(attemptID string) {
	es.mu.Lock()
	defer es.mu.Unlock()
	delete(es.pending, attemptID)
}

// evaluate does the actual LLM call and persists the corrected response.
// It uses context.Background because evaluation runs asynchronously and must
// not be cancelled when the originating HTTP request ends.
func (es *EvaluationService) evaluate(req OpenEndedRequest) {
	ctx := context.Background()

	result, err := es.grader.GradeAnswer(ctx, grader.Request{
		QuestionText:    req.QuestionText,
		IdeaTitle:       req.IdeaTitle,
		IdeaDescription: req.IdeaDescription,
		UserAnswer:      req.Response.Answer,
		MaxPoints:       req.MaxPoints,
	})
	if err != nil {
		// The response stays persisted as incorrect with zero points.
		es.logger.Error("evaluation error",
			"attempt_id", req.AttemptID,
			"question_id", req.Response.QuestionID,
			"error", err,
		)
		return
	}

	resp := req.Response
	resp.Correct = result.Correct
	resp.Points = result.Points

	if err := es.store.UpdateResponse(ctx, &resp); err != nil {
		es.logger.Error("failed to save evaluation result",
			"response_id", resp.ID,
			"error", err,
		)
	}
}

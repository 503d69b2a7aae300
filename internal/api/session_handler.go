package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ideaforge/backend/internal/domain/assessment"
	"github.com/ideaforge/backend/internal/domain/question"
	"github.com/ideaforge/backend/internal/store"
)

// ── Request / Response types ────────────────────────────────────────────────

type SessionQuestion struct {
	ID         string   `json:"id" example:"q1u2e3s4t5i6o7n8"`
	Type       string   `json:"type" example:"single_choice"`
	Difficulty string   `json:"difficulty" example:"easy"`
	Bloom      string   `json:"bloom" example:"recall"`
	Text       string   `json:"text"`
	Options    []string `json:"options,omitempty"`
	Points     int      `json:"points" example:"10"`
}

type SessionResponse struct {
	TestID    string            `json:"test_id" example:"t1e2s3t4i5d6e7f8"`
	IdeaID    string            `json:"idea_id" example:"i1d2e3a4i5d6e7f8"`
	BookID    string            `json:"book_id" example:"a1b2c3d4e5f6g7h8"`
	Type      string            `json:"type" example:"mixed"`
	Questions []SessionQuestion `json:"questions"`
	MaxScore  int               `json:"max_score" example:"140"`
}

type AttemptResponse struct {
	ID              string `json:"id" example:"a1t2t3e4m5p6t7i8"`
	TestID          string `json:"test_id" example:"t1e2s3t4i5d6e7f8"`
	Completed       bool   `json:"completed" example:"false"`
	Score           int    `json:"score" example:"0"`
	RetryCount      int    `json:"retry_count" example:"0"`
	MasteryAchieved bool   `json:"mastery_achieved" example:"false"`
	CompletedAt     string `json:"completed_at,omitempty"`
}

type SubmitAnswerRequest struct {
	QuestionID string `json:"question_id" example:"q1u2e3s4t5i6o7n8"`
	Answer     string `json:"answer" example:"[2]"`
}

func (r *SubmitAnswerRequest) Validate() error {
	if r.QuestionID == "" {
		return errors.New("question_id is required")
	}
	if r.Answer == "" {
		return errors.New("answer is required")
	}
	return nil
}

type SubmitAnswerResponse struct {
	Status  string `json:"status" example:"scored"`
	Correct *bool  `json:"correct,omitempty"`
	Points  *int   `json:"points,omitempty"`
}

type RetryResponse struct {
	Session SessionResponse `json:"session"`
	Attempt AttemptResponse `json:"attempt"`
}

type PrepareSessionsRequest struct {
	BookIDs []string `json:"book_ids,omitempty"`
	Workers int      `json:"workers,omitempty" example:"2"`
}

type PrepareOutcome struct {
	BookID string `json:"book_id" example:"a1b2c3d4e5f6g7h8"`
	TestID string `json:"test_id,omitempty" example:"t1e2s3t4i5d6e7f8"`
	Error  string `json:"error,omitempty"`
}

type PrepareSessionsResponse struct {
	Results []PrepareOutcome `json:"results"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// getSession returns the book's ready practice session, building one if
// needed.
// @Summary      Today's session
// @Description  Fresh questions for the weakest idea (easy to hard, open-ended last per band) followed by review questions. The composition is persisted and reused until refreshed or completed.
// @Tags         Sessions
// @Produce      json
// @Param        bookID  path      string  true  "Book ID"
// @Success      200     {object}  SessionResponse
// @Failure      404     {object}  map[string]string
// @Failure      502     {object}  map[string]string  "question generation failed"
// @Router       /books/{bookID}/session [get]
func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bookID := r.PathValue("bookID")

	if _, err := h.store.GetBook(ctx, bookID); h.handleStoreError(w, err, "book") {
		return
	}
	t, err := h.sessions.TodaySession(ctx, bookID)
	if err != nil {
		h.logger.Error("session assembly failed", "book_id", bookID, "error", err)
		respondError(w, http.StatusBadGateway, "failed to assemble session")
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse(t))
}

// refreshSession discards the ready session and regenerates it.
// @Summary      Refresh session
// @Tags         Sessions
// @Produce      json
// @Param        bookID  path      string  true  "Book ID"
// @Success      200     {object}  SessionResponse
// @Failure      404     {object}  map[string]string
// @Failure      502     {object}  map[string]string
// @Router       /books/{bookID}/session/refresh [post]
func (h *Handler) refreshSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bookID := r.PathValue("bookID")

	if _, err := h.store.GetBook(ctx, bookID); h.handleStoreError(w, err, "book") {
		return
	}
	t, err := h.sessions.Refresh(ctx, bookID)
	if err != nil {
		h.logger.Error("session refresh failed", "book_id", bookID, "error", err)
		respondError(w, http.StatusBadGateway, "failed to refresh session")
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse(t))
}

// startAttempt opens an attempt on a session's test.
// @Summary      Start an attempt
// @Tags         Attempts
// @Produce      json
// @Param        testID  path      string  true  "Test ID"
// @Success      201     {object}  AttemptResponse
// @Failure      404     {object}  map[string]string
// @Router       /tests/{testID}/attempts [post]
func (h *Handler) startAttempt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	testID := r.PathValue("testID")

	attempt, err := h.sessions.StartAttempt(ctx, testID)
	if h.handleStoreError(w, err, "test") {
		return
	}
	respondJSON(w, http.StatusCreated, attemptResponse(attempt))
}

// submitAnswer records one answer in an open attempt.
// @Summary      Submit an answer
// @Description  Choice answers are a JSON array of selected option indices and are scored immediately. Open-ended answers are graded in the background; their result lands when the attempt completes.
// @Tags         Attempts
// @Accept       json
// @Produce      json
// @Param        attemptID  path      string               true  "Attempt ID"
// @Param        body       body      SubmitAnswerRequest  true  "Answer"
// @Success      200        {object}  SubmitAnswerResponse
// @Failure      400        {object}  map[string]string
// @Failure      404        {object}  map[string]string
// @Router       /attempts/{attemptID}/answers [post]
func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	attemptID := r.PathValue("attemptID")

	var req SubmitAnswerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, q, err := h.sessions.SubmitAnswer(ctx, attemptID, req.QuestionID, req.Answer)
	if h.handleStoreError(w, err, "attempt") {
		return
	}

	// Open-ended answers carry no verdict yet.
	if q.Type == question.TypeOpenEnded {
		respondJSON(w, http.StatusOK, SubmitAnswerResponse{Status: "grading"})
		return
	}
	respondJSON(w, http.StatusOK, SubmitAnswerResponse{
		Status:  "scored",
		Correct: &resp.Correct,
		Points:  &resp.Points,
	})
}

// completeAttempt finalizes an attempt and routes its outcomes.
// @Summary      Complete an attempt
// @Description  Waits for outstanding open-ended grading, computes the score, queues mistakes for review, and updates mastery and scheduling for every idea the test touched.
// @Tags         Attempts
// @Produce      json
// @Param        attemptID  path      string  true  "Attempt ID"
// @Success      200        {object}  AttemptResponse
// @Failure      404        {object}  map[string]string
// @Router       /attempts/{attemptID}/complete [post]
func (h *Handler) completeAttempt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	attemptID := r.PathValue("attemptID")

	attempt, err := h.sessions.CompleteAttempt(ctx, attemptID)
	if h.handleStoreError(w, err, "attempt") {
		return
	}
	respondJSON(w, http.StatusOK, attemptResponse(attempt))
}

// prepareSessions warms ready sessions ahead of time.
// @Summary      Pre-generate sessions
// @Description  Builds ready sessions concurrently for the given books (or every book when the list is empty), skipping books that already have one.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        body  body      PrepareSessionsRequest  false  "Books to warm"
// @Success      200   {object}  PrepareSessionsResponse
// @Failure      400   {object}  map[string]string
// @Router       /sessions/prepare [post]
func (h *Handler) prepareSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req PrepareSessionsRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	bookIDs := req.BookIDs
	if len(bookIDs) == 0 {
		books, err := h.store.ListBooks(ctx)
		if err != nil {
			h.logger.Error("failed to list books", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		for _, b := range books {
			bookIDs = append(bookIDs, b.ID)
		}
	}

	results := h.sessions.PrepareSessions(ctx, bookIDs, req.Workers)
	out := make([]PrepareOutcome, len(results))
	for i, res := range results {
		out[i] = PrepareOutcome{BookID: res.BookID, TestID: res.TestID}
		if res.Err != nil {
			out[i].Error = res.Err.Error()
		}
	}
	respondJSON(w, http.StatusOK, PrepareSessionsResponse{Results: out})
}

// retryAttempt builds a retry test from an attempt's missed questions.
// @Summary      Retry missed questions
// @Tags         Attempts
// @Produce      json
// @Param        attemptID  path      string  true  "Attempt ID"
// @Success      201        {object}  RetryResponse
// @Failure      400        {object}  map[string]string
// @Failure      404        {object}  map[string]string
// @Router       /attempts/{attemptID}/retry [post]
func (h *Handler) retryAttempt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	attemptID := r.PathValue("attemptID")

	t, attempt, err := h.sessions.StartRetry(ctx, attemptID)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "attempt not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, RetryResponse{
		Session: sessionResponse(t),
		Attempt: attemptResponse(attempt),
	})
}

func sessionResponse(t *assessment.Test) SessionResponse {
	questions := make([]SessionQuestion, len(t.Questions))
	for i := range t.Questions {
		q := &t.Questions[i]
		questions[i] = SessionQuestion{
			ID:         q.ID,
			Type:       string(q.Type),
			Difficulty: string(q.Difficulty),
			Bloom:      string(q.Bloom),
			Text:       q.Text,
			Options:    q.Options,
			Points:     q.Points(),
		}
	}
	return SessionResponse{
		TestID:    t.ID,
		IdeaID:    t.IdeaID,
		BookID:    t.BookID,
		Type:      string(t.Type),
		Questions: questions,
		MaxScore:  t.MaxScore(),
	}
}

func attemptResponse(a *assessment.Attempt) AttemptResponse {
	resp := AttemptResponse{
		ID:              a.ID,
		TestID:          a.TestID,
		Completed:       a.Completed,
		Score:           a.Score,
		RetryCount:      a.RetryCount,
		MasteryAchieved: a.MasteryAchieved,
	}
	if a.CompletedAt != nil {
		resp.CompletedAt = a.CompletedAt.Format(time.RFC3339)
	}
	return resp
}

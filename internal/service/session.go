package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/ideaforge/backend/internal/domain/assessment"
	"github.com/ideaforge/backend/internal/domain/idea"
	"github.com/ideaforge/backend/internal/domain/question"
	"github.com/ideaforge/backend/internal/generator"
	"github.com/ideaforge/backend/internal/id"
	"github.com/ideaforge/backend/internal/store"
	"github.com/ideaforge/backend/internal/worker"
)

// SessionService assembles one practice session's worth of questions per
// book: fresh material for the weakest idea first, then regenerated review
// questions, with at most one curveball smuggled into the review section.
// The assembled test is persisted as the book's ready session and reused
// until completed or explicitly refreshed. On completion it routes outcomes
// to the review queue, the mastery state machine, and the curveball path.
type SessionService struct {
	store      store.Store
	gen        *generator.Generator
	queue      *ReviewQueueService
	mastery    *MasteryService
	evaluation *EvaluationService
	logger     *slog.Logger
}

// NewSessionService creates a SessionService.
func NewSessionService(s store.Store, g *generator.Generator, queue *ReviewQueueService, mastery *MasteryService, evaluation *EvaluationService, logger *slog.Logger) *SessionService {
	return &SessionService{
		store:      s,
		gen:        g,
		queue:      queue,
		mastery:    mastery,
		evaluation: evaluation,
		logger:     logger,
	}
}

// TodaySession returns the book's ready session, building one if none
// exists. A ready session survives process restarts and repeated fetches;
// content is only regenerated through Refresh or after completion.
func (s *SessionService) TodaySession(ctx context.Context, bookID string) (*assessment.Test, error) {
	testID, err := s.store.GetReadySessionTestID(ctx, bookID)
	if err == nil {
		t, err := s.store.GetTest(ctx, testID)
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		// Stale pointer: the test was deleted underneath the session.
		if err := s.store.ClearReadySession(ctx, bookID); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return s.buildSession(ctx, bookID)
}

// Refresh discards the book's ready session and builds a fresh one.
func (s *SessionService) Refresh(ctx context.Context, bookID string) (*assessment.Test, error) {
	testID, err := s.store.GetReadySessionTestID(ctx, bookID)
	if err == nil {
		if err := s.store.DeleteTest(ctx, testID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		if err := s.store.ClearReadySession(ctx, bookID); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return s.buildSession(ctx, bookID)
}

func (s *SessionService) buildSession(ctx context.Context, bookID string) (*assessment.Test, error) {
	ideas, err := s.store.ListIdeasByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if len(ideas) == 0 {
		return nil, fmt.Errorf("book %s has no ideas to practice", bookID)
	}

	target := pickFreshIdea(ideas)
	fresh, err := s.gen.InitialTest(ctx, *target)
	if err != nil {
		return nil, fmt.Errorf("failed to generate fresh questions: %w", err)
	}

	reviewQs, err := s.assembleReview(ctx, bookID, target.ID)
	if err != nil {
		return nil, err
	}

	testType := assessment.TestInitial
	if len(reviewQs) > 0 {
		testType = assessment.TestMixed
	}

	t := assessment.NewTest(target.ID, bookID, target.BookTitle, testType)
	t.Questions = orderSession(fresh.Questions, reviewQs)
	for i := range t.Questions {
		t.Questions[i].Position = i
	}

	if err := s.store.SaveTest(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save session test: %w", err)
	}
	if err := s.store.SaveReadySession(ctx, bookID, t.ID); err != nil {
		return nil, fmt.Errorf("failed to mark session ready: %w", err)
	}

	// Housekeeping piggybacks on session assembly rather than a timer.
	if purged, err := s.queue.PurgeExpired(ctx, time.Now().UTC()); err != nil {
		s.logger.Warn("review queue purge failed", "error", err)
	} else if purged > 0 {
		s.logger.Info("purged expired review items", "count", purged)
	}

	s.logger.Info("session assembled",
		"book_id", bookID,
		"idea_id", target.ID,
		"type", string(t.Type),
		"questions", len(t.Questions),
	)
	return t, nil
}

// assembleReview regenerates the day's review items plus at most one
// curveball for a rested mastered idea. A regeneration failure skips the
// item and leaves it pending for a later session.
func (s *SessionService) assembleReview(ctx context.Context, bookID, freshIdeaID string) ([]question.Question, error) {
	mcq, openEnded, err := s.queue.SelectDailyItems(ctx, bookID)
	if err != nil {
		return nil, err
	}

	var reviewQs []question.Question
	for _, item := range append(mcq, openEnded...) {
		q, err := s.gen.ReviewQuestion(ctx, item)
		if err != nil {
			s.logger.Warn("review regeneration failed, item stays pending",
				"item_id", item.ID,
				"error", err,
			)
			continue
		}
		reviewQs = append(reviewQs, q)
	}

	candidates, err := s.mastery.CurveballCandidates(ctx, bookID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	for _, candidateID := range candidates {
		if candidateID == freshIdeaID {
			continue
		}
		candidate, err := s.store.GetIdea(ctx, candidateID)
		if err != nil {
			s.logger.Warn("curveball candidate lookup failed", "idea_id", candidateID, "error", err)
			continue
		}
		q, err := s.gen.CurveballQuestion(ctx, *candidate)
		if err != nil {
			s.logger.Warn("curveball generation failed", "idea_id", candidateID, "error", err)
			continue
		}
		reviewQs = append(reviewQs, q)
		break // one surprise per session is plenty
	}
	return reviewQs, nil
}

// pickFreshIdea chooses the idea that needs attention most: lowest mastery
// level first, then never-practiced before least-recently-practiced.
func pickFreshIdea(ideas []*idea.Idea) *idea.Idea {
	target := ideas[0]
	for _, cand := range ideas[1:] {
		if cand.Mastery != target.Mastery {
			if cand.Mastery < target.Mastery {
				target = cand
			}
			continue
		}
		if target.LastPracticed == nil {
			continue
		}
		if cand.LastPracticed == nil || cand.LastPracticed.Before(*target.LastPracticed) {
			target = cand
		}
	}
	return target
}

// orderSession arranges the presentation order: fresh questions easy to
// hard with open-ended pinned last within each band, then review questions
// under the same rule.
func orderSession(fresh, reviewQs []question.Question) []question.Question {
	sortBand(fresh)
	sortBand(reviewQs)
	out := make([]question.Question, 0, len(fresh)+len(reviewQs))
	out = append(out, fresh...)
	out = append(out, reviewQs...)
	return out
}

func sortBand(qs []question.Question) {
	sort.SliceStable(qs, func(i, j int) bool {
		ri, rj := qs[i].Difficulty.Rank(), qs[j].Difficulty.Rank()
		if ri != rj {
			return ri < rj
		}
		return qs[i].Type != question.TypeOpenEnded && qs[j].Type == question.TypeOpenEnded
	})
}

// StartAttempt opens a new attempt on the test and registers it with the
// evaluation service so open-ended grading can be awaited at completion.
func (s *SessionService) StartAttempt(ctx context.Context, testID string) (*assessment.Attempt, error) {
	if _, err := s.store.GetTest(ctx, testID); err != nil {
		return nil, err
	}
	attempt := assessment.NewAttempt(testID)
	if err := s.store.SaveAttempt(ctx, attempt); err != nil {
		return nil, err
	}
	s.evaluation.TrackAttempt(attempt.ID)
	return attempt, nil
}

// StartRetry builds a retry test from the questions missed in a completed
// attempt and opens a new attempt on it. Curveball and review markers are
// stripped: a retry is ordinary remediation, not a re-run of the original
// routing.
func (s *SessionService) StartRetry(ctx context.Context, attemptID string) (*assessment.Test, *assessment.Attempt, error) {
	prev, err := s.store.GetAttempt(ctx, attemptID)
	if err != nil {
		return nil, nil, err
	}
	if !prev.Completed {
		return nil, nil, errors.New("cannot retry an attempt that is not completed")
	}
	origin, err := s.store.GetTest(ctx, prev.TestID)
	if err != nil {
		return nil, nil, err
	}

	var missed []question.Question
	for _, resp := range prev.IncorrectResponses() {
		q := origin.QuestionByID(resp.QuestionID)
		if q == nil {
			continue
		}
		copied := *q
		copied.ID = id.New()
		copied.Options = append([]string(nil), q.Options...)
		copied.Correct = append([]int(nil), q.Correct...)
		copied.Curveball = false
		copied.ReviewItemID = ""
		missed = append(missed, copied)
	}
	if len(missed) == 0 {
		return nil, nil, errors.New("attempt has no missed questions to retry")
	}

	t := assessment.NewTest(origin.IdeaID, origin.BookID, origin.BookTitle, assessment.TestRetry)
	sortBand(missed)
	for i := range missed {
		missed[i].Position = i
	}
	t.Questions = missed
	if err := s.store.SaveTest(ctx, t); err != nil {
		return nil, nil, err
	}

	attempt := assessment.NewAttempt(t.ID)
	attempt.RetryCount = prev.RetryCount + 1
	if err := s.store.SaveAttempt(ctx, attempt); err != nil {
		return nil, nil, err
	}
	s.evaluation.TrackAttempt(attempt.ID)
	return t, attempt, nil
}

// SubmitAnswer records one response and returns it alongside the question
// it answers. Choice answers are a JSON array of selected option indices
// and are scored synchronously; open-ended answers are persisted ungraded
// and handed to the evaluation service, whose correction lands before
// CompleteAttempt returns.
func (s *SessionService) SubmitAnswer(ctx context.Context, attemptID, questionID, answer string) (*assessment.Response, *question.Question, error) {
	attempt, err := s.store.GetAttempt(ctx, attemptID)
	if err != nil {
		return nil, nil, err
	}
	if attempt.Completed {
		return nil, nil, errors.New("attempt is already completed")
	}
	test, err := s.store.GetTest(ctx, attempt.TestID)
	if err != nil {
		return nil, nil, err
	}
	q := test.QuestionByID(questionID)
	if q == nil {
		return nil, nil, fmt.Errorf("question %s is not part of test %s", questionID, test.ID)
	}
	if existing := attempt.ResponseFor(questionID); existing != nil {
		return nil, nil, fmt.Errorf("question %s already answered in attempt %s", questionID, attemptID)
	}

	resp := assessment.NewResponse(attempt.ID, questionID, answer)
	if q.Type.IsChoice() {
		var selected []int
		if err := json.Unmarshal([]byte(answer), &selected); err != nil {
			return nil, nil, fmt.Errorf("choice answer must be a JSON array of option indices: %w", err)
		}
		resp.Correct, resp.Points = ScoreChoice(q, selected)
	}
	if err := s.store.SaveResponse(ctx, resp); err != nil {
		return nil, nil, err
	}

	if q.Type == question.TypeOpenEnded {
		ideaRef, err := s.store.GetIdea(ctx, q.IdeaID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load idea for grading: %w", err)
		}
		s.evaluation.SubmitOpenEnded(OpenEndedRequest{
			AttemptID:       attempt.ID,
			Response:        *resp,
			QuestionText:    q.Text,
			IdeaTitle:       ideaRef.Title,
			IdeaDescription: ideaRef.Description,
			MaxPoints:       q.Points(),
		})
	}
	return resp, q, nil
}

// CompleteAttempt waits for outstanding open-ended grading, finalizes the
// attempt, and routes outcomes: curveball results to the mastery curveball
// path, mistakes into the review queue, answered review items to
// completion, and per-idea coverage and scheduling updates.
func (s *SessionService) CompleteAttempt(ctx context.Context, attemptID string) (*assessment.Attempt, error) {
	s.evaluation.WaitForAttempt(attemptID)
	defer s.evaluation.Release(attemptID)

	attempt, err := s.store.GetAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Completed {
		return attempt, nil
	}
	test, err := s.store.GetTest(ctx, attempt.TestID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	attempt.Score = attempt.TotalPoints()
	attempt.Completed = true
	attempt.CompletedAt = &now

	var reviewItemIDs []string
	for _, resp := range attempt.Responses {
		q := test.QuestionByID(resp.QuestionID)
		if q == nil {
			return nil, fmt.Errorf("response %s references unknown question %s", resp.ID, resp.QuestionID)
		}
		if q.Curveball {
			if err := s.mastery.MarkCurveballResult(ctx, q.IdeaID, test.BookID, resp.Correct); err != nil {
				return nil, err
			}
		}
		if q.ReviewItemID != "" {
			reviewItemIDs = append(reviewItemIDs, q.ReviewItemID)
		}
	}

	// Mistake capture runs after curveball routing so a failed curveball is
	// already demoted when it re-enters the queue as an ordinary item.
	if _, err := s.queue.RecordMistakes(ctx, attempt, test); err != nil {
		return nil, err
	}
	if err := s.queue.MarkCompletedIDs(ctx, reviewItemIDs); err != nil {
		return nil, err
	}

	records, err := s.mastery.UpdateFromAttempt(ctx, test, attempt)
	if err != nil {
		return nil, err
	}
	if rec := records[test.IdeaID]; rec != nil && rec.Level == idea.MasteryMastered {
		attempt.MasteryAchieved = true
	}

	if err := s.store.UpdateAttempt(ctx, attempt); err != nil {
		return nil, err
	}

	// A completed session is consumed; the next fetch assembles a new one.
	if readyID, err := s.store.GetReadySessionTestID(ctx, test.BookID); err == nil && readyID == test.ID {
		if err := s.store.ClearReadySession(ctx, test.BookID); err != nil {
			return nil, err
		}
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	s.logger.Info("attempt completed",
		"attempt_id", attempt.ID,
		"score", attempt.Score,
		"max_score", test.MaxScore(),
		"mastery_achieved", attempt.MasteryAchieved,
	)
	return attempt, nil
}

// PrepareResult reports one book's pre-generation outcome.
type PrepareResult struct {
	BookID string
	TestID string
	Err    error
}

// PrepareSessions warms ready sessions for the given books concurrently,
// skipping books that already have one. Blocks until every submitted build
// finishes.
func (s *SessionService) PrepareSessions(ctx context.Context, bookIDs []string, workers int) []PrepareResult {
	if workers <= 0 {
		workers = 2
	}

	pool := worker.New[PrepareResult](workers, len(bookIDs))
	var results []PrepareResult
	submitted := 0
	for _, bookID := range bookIDs {
		if _, err := s.store.GetReadySessionTestID(ctx, bookID); err == nil {
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			results = append(results, PrepareResult{BookID: bookID, Err: err})
			continue
		}
		bookID := bookID
		pool.Submit(bookID, func() PrepareResult {
			t, err := s.buildSession(ctx, bookID)
			if err != nil {
				return PrepareResult{BookID: bookID, Err: err}
			}
			return PrepareResult{BookID: bookID, TestID: t.ID}
		})
		submitted++
	}
	pool.Close()

	for res := range pool.Results() {
		results = append(results, res.Output)
	}
	s.logger.Info("session pre-generation finished", "requested", len(bookIDs), "built", submitted)
	return results
}

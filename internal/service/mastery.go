package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ideaforge/backend/internal/domain/assessment"
	"github.com/ideaforge/backend/internal/domain/blueprint"
	"github.com/ideaforge/backend/internal/domain/idea"
	"github.com/ideaforge/backend/internal/domain/question"
	"github.com/ideaforge/backend/internal/domain/review"
	"github.com/ideaforge/backend/internal/scheduler"
	"github.com/ideaforge/backend/internal/store"
)

// MasteryService owns MasteryRecord and ReviewState: coverage tallies, the
// 0-3 mastery state machine, curveball policy, and review scheduling. All
// mutations for a given (idea, book) key are serialized under a per-key lock
// so concurrent attempt completions cannot lose updates.
type MasteryService struct {
	store          store.Store
	logger         *slog.Logger
	params         scheduler.Params
	curveballAfter time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex // (ideaID, bookID) key → lock
}

// NewMasteryService creates a MasteryService. curveballAfter is how long a
// mastered idea rests before it becomes eligible for a surprise re-check.
func NewMasteryService(s store.Store, logger *slog.Logger, params scheduler.Params, curveballAfter time.Duration) *MasteryService {
	if curveballAfter <= 0 {
		curveballAfter = 7 * 24 * time.Hour
	}
	return &MasteryService{
		store:          s,
		logger:         logger,
		params:         params,
		curveballAfter: curveballAfter,
		locks:          make(map[string]*sync.Mutex),
	}
}

func (s *MasteryService) keyLock(ideaID, bookID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ideaID + "/" + bookID
	m, ok := s.locks[key]
	if !ok {
		m = &sync.Mutex{}
		s.locks[key] = m
	}
	return m
}

// loadOrInit fetches the record for the pair, treating a missing record as
// first exposure rather than an error.
func (s *MasteryService) loadOrInit(ctx context.Context, ideaID, bookID string) (*review.MasteryRecord, error) {
	rec, err := s.store.GetMasteryRecord(ctx, ideaID, bookID)
	if errors.Is(err, store.ErrNotFound) {
		return review.NewMasteryRecord(ideaID, bookID), nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// UpdateFromAttempt advances the mastery state machine from a completed
// attempt's graded responses and reschedules the next review. A mixed test
// carries questions for more than one idea; responses are grouped by the
// idea each question tests and every group gets its own update. Returns the
// updated record per idea ID.
//
// Coverage tallies count every graded response. Level transitions consider
// only the non-curveball responses: clearing the full fresh blueprint on the
// first pass jumps straight to Mastered; otherwise at least half correct
// nudges the level up one step. The level never decreases here — demotion
// happens only through the curveball failure path. A group containing only
// curveball responses updates coverage alone; its level and review schedule
// are owned by the curveball path.
func (s *MasteryService) UpdateFromAttempt(ctx context.Context, test *assessment.Test, attempt *assessment.Attempt) (map[string]*review.MasteryRecord, error) {
	type outcome struct {
		bloom   question.Bloom
		correct bool
	}
	type group struct {
		outcomes []outcome
		correct  int
		total    int
	}

	groups := make(map[string]*group)
	for _, resp := range attempt.Responses {
		q := test.QuestionByID(resp.QuestionID)
		if q == nil {
			return nil, fmt.Errorf("response %s references unknown question %s", resp.ID, resp.QuestionID)
		}

		grp := groups[q.IdeaID]
		if grp == nil {
			grp = &group{}
			groups[q.IdeaID] = grp
		}
		grp.outcomes = append(grp.outcomes, outcome{bloom: q.Bloom, correct: resp.Correct})

		if q.Curveball {
			continue
		}
		grp.total++
		if resp.Correct {
			grp.correct++
		}
	}

	records := make(map[string]*review.MasteryRecord, len(groups))
	for ideaID, grp := range groups {
		rec, err := s.updateIdea(ctx, ideaID, test, grp.correct, grp.total, func(rec *review.MasteryRecord) {
			for _, o := range grp.outcomes {
				rec.RecordOutcome(o.bloom, o.correct)
			}
		})
		if err != nil {
			return nil, err
		}
		records[ideaID] = rec
	}
	return records, nil
}

// updateIdea applies one idea's graded outcomes under the per-key lock.
func (s *MasteryService) updateIdea(ctx context.Context, ideaID string, test *assessment.Test, correct, total int, tally func(*review.MasteryRecord)) (*review.MasteryRecord, error) {
	lock := s.keyLock(ideaID, test.BookID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := s.loadOrInit(ctx, ideaID, test.BookID)
	if err != nil {
		return nil, err
	}
	tally(rec)

	now := time.Now().UTC()

	// A group with no non-curveball responses is a curveball-only group. Its
	// level and schedule belong to the curveball path (MarkCurveballResult);
	// grading it here as 0/0 would lapse a healthy review state. Keep the
	// coverage tally, leave everything else untouched.
	if total == 0 {
		rec.UpdatedAt = now
		if err := s.store.SaveMasteryRecord(ctx, rec); err != nil {
			return nil, fmt.Errorf("failed to save mastery record: %w", err)
		}
		return rec, nil
	}

	prevLevel := rec.Level

	// A full first-pass clear means the test's primary idea answered its
	// entire fresh blueprint without a miss.
	firstPassClear := ideaID == test.IdeaID &&
		(test.Type == assessment.TestInitial || test.Type == assessment.TestMixed) &&
		total >= blueprint.Size && correct == total

	switch {
	case firstPassClear:
		rec.Level = idea.MasteryMastered
	case correct > 0 && correct*2 >= total:
		rec.Level = rec.Level.Advance()
	}
	if rec.Level == idea.MasteryMastered && prevLevel != idea.MasteryMastered {
		rec.MasteredAt = &now
	}

	perf := scheduler.PerformanceFromScore(correct, total)
	state := s.params.NextReview(rec.State, perf, now)
	rec.State = &state
	rec.UpdatedAt = now

	if err := s.store.SaveMasteryRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save mastery record: %w", err)
	}
	if err := s.store.UpdateIdeaProgress(ctx, ideaID, rec.Level, now); err != nil {
		return nil, fmt.Errorf("failed to update idea progress: %w", err)
	}

	s.logger.Info("mastery updated",
		"idea_id", ideaID,
		"level", rec.Level.String(),
		"performance", perf.String(),
		"next_review", state.NextReview,
	)
	return rec, nil
}

// CurrentMastery reports the level for the pair; an idea with no record is
// Unstarted.
func (s *MasteryService) CurrentMastery(ctx context.Context, ideaID, bookID string) (idea.MasteryLevel, error) {
	rec, err := s.store.GetMasteryRecord(ctx, ideaID, bookID)
	if errors.Is(err, store.ErrNotFound) {
		return idea.MasteryUnstarted, nil
	}
	if err != nil {
		return idea.MasteryUnstarted, err
	}
	return rec.Level, nil
}

// MarkCurveballResult records the outcome of a disguised re-check. A pass
// reinforces mastery and resets the re-check timer; a failure demotes the
// level by exactly one step. The caller re-queues the miss as an ordinary
// mistake through the review queue.
func (s *MasteryService) MarkCurveballResult(ctx context.Context, ideaID, bookID string, passed bool) error {
	lock := s.keyLock(ideaID, bookID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := s.loadOrInit(ctx, ideaID, bookID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	rec.LastCurveball = &now
	rec.UpdatedAt = now

	if !passed {
		rec.Level = rec.Level.Demote()
		s.logger.Info("curveball failed, mastery demoted",
			"idea_id", ideaID,
			"level", rec.Level.String(),
		)
	}

	if err := s.store.SaveMasteryRecord(ctx, rec); err != nil {
		return fmt.Errorf("failed to save curveball result: %w", err)
	}
	return s.store.UpdateIdeaProgress(ctx, ideaID, rec.Level, now)
}

// CurveballCandidates returns the mastered ideas in the book that have
// rested long enough for a surprise re-check: the re-check timer keys off
// the later of mastery time and last curveball.
func (s *MasteryService) CurveballCandidates(ctx context.Context, bookID string, now time.Time) ([]string, error) {
	records, err := s.store.ListMasteryRecordsByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	var ideaIDs []string
	for _, rec := range records {
		if rec.Level != idea.MasteryMastered {
			continue
		}
		since := rec.MasteredAt
		if rec.LastCurveball != nil && (since == nil || rec.LastCurveball.After(*since)) {
			since = rec.LastCurveball
		}
		if since == nil {
			continue
		}
		if now.Sub(*since) >= s.curveballAfter {
			ideaIDs = append(ideaIDs, rec.IdeaID)
		}
	}
	return ideaIDs, nil
}

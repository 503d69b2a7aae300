package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ideaforge/backend/internal/domain/assessment"
	"github.com/ideaforge/backend/internal/domain/question"
	"github.com/ideaforge/backend/internal/grader"
	"github.com/ideaforge/backend/internal/service"
)

func TestScoreChoice(t *testing.T) {
	single := &question.Question{
		Type:       question.TypeSingleChoice,
		Difficulty: question.DifficultyMedium,
		Options:    []string{"a", "b", "c", "d"},
		Correct:    []int{2},
	}
	multi := &question.Question{
		Type:       question.TypeMultiChoice,
		Difficulty: question.DifficultyHard,
		Options:    []string{"a", "b", "c", "d"},
		Correct:    []int{1, 3},
	}

	tests := []struct {
		name     string
		q        *question.Question
		selected []int
		correct  bool
		points   int
	}{
		{"single exact", single, []int{2}, true, 20},
		{"single wrong", single, []int{0}, false, 0},
		{"single overselected", single, []int{2, 0}, false, 0},
		{"single empty", single, nil, false, 0},
		{"multi exact", multi, []int{1, 3}, true, 30},
		{"multi order irrelevant", multi, []int{3, 1}, true, 30},
		{"multi partial", multi, []int{1}, false, 0},
		{"multi superset", multi, []int{1, 3, 0}, false, 0},
		{"multi one off", multi, []int{1, 0}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			correct, points := service.ScoreChoice(tt.q, tt.selected)
			if correct != tt.correct || points != tt.points {
				t.Errorf("ScoreChoice(%v) = (%v, %d), want (%v, %d)",
					tt.selected, correct, points, tt.correct, tt.points)
			}
		})
	}
}

func TestSubmitOpenEnded_CorrectsPersistedResponse(t *testing.T) {
	ms := newMemStore()
	grade := graderFunc(func(_ context.Context, req grader.Request) (grader.Result, error) {
		return grader.Result{Correct: true, Points: req.MaxPoints}, nil
	})
	es := service.NewEvaluationService(ms, grade, discardLogger())
	ctx := context.Background()

	attempt := assessment.NewAttempt("test-1")
	if err := ms.SaveAttempt(ctx, attempt); err != nil {
		t.Fatalf("save attempt: %v", err)
	}
	es.TrackAttempt(attempt.ID)

	resp := assessment.NewResponse(attempt.ID, "q-1", "my written answer")
	if err := ms.SaveResponse(ctx, resp); err != nil {
		t.Fatalf("save response: %v", err)
	}

	es.SubmitOpenEnded(service.OpenEndedRequest{
		AttemptID:    attempt.ID,
		Response:     *resp,
		QuestionText: "Explain it.",
		IdeaTitle:    "Some Idea",
		MaxPoints:    30,
	})
	es.WaitForAttempt(attempt.ID)
	es.Release(attempt.ID)

	got, err := ms.GetAttempt(ctx, attempt.ID)
	if err != nil {
		t.Fatalf("reload attempt: %v", err)
	}
	graded := got.ResponseFor("q-1")
	if graded == nil {
		t.Fatal("response missing after grading")
	}
	if !graded.Correct || graded.Points != 30 {
		t.Errorf("graded = (%v, %d), want (true, 30)", graded.Correct, graded.Points)
	}
}

func TestSubmitOpenEnded_GraderFailureLeavesZeroScore(t *testing.T) {
	ms := newMemStore()
	grade := graderFunc(func(context.Context, grader.Request) (grader.Result, error) {
		return grader.Result{}, errors.New("endpoint down")
	})
	es := service.NewEvaluationService(ms, grade, discardLogger())
	ctx := context.Background()

	attempt := assessment.NewAttempt("test-1")
	if err := ms.SaveAttempt(ctx, attempt); err != nil {
		t.Fatalf("save attempt: %v", err)
	}
	es.TrackAttempt(attempt.ID)

	resp := assessment.NewResponse(attempt.ID, "q-1", "my written answer")
	if err := ms.SaveResponse(ctx, resp); err != nil {
		t.Fatalf("save response: %v", err)
	}

	es.SubmitOpenEnded(service.OpenEndedRequest{
		AttemptID: attempt.ID,
		Response:  *resp,
		MaxPoints: 30,
	})
	es.WaitForAttempt(attempt.ID)
	es.Release(attempt.ID)

	got, _ := ms.GetAttempt(ctx, attempt.ID)
	graded := got.ResponseFor("q-1")
	if graded.Correct || graded.Points != 0 {
		t.Errorf("graded = (%v, %d), want the persisted zero score", graded.Correct, graded.Points)
	}
}

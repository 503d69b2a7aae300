package scheduler_test

import (
	"testing"
	"time"

	"github.com/ideaforge/backend/internal/scheduler"
)

func TestPerformanceFromScore(t *testing.T) {
	cases := []struct {
		correct, total int
		want           scheduler.Performance
	}{
		{0, 8, scheduler.Again},
		{3, 8, scheduler.Again},  // 37%
		{4, 8, scheduler.Hard},   // 50%
		{5, 8, scheduler.Hard},   // 62%
		{6, 8, scheduler.Good},   // 75%
		{7, 8, scheduler.Good},   // 87%
		{8, 8, scheduler.Easy},   // 100%
		{1, 1, scheduler.Easy},
		{0, 0, scheduler.Again},  // empty attempt
		{5, 0, scheduler.Again},
	}

	for _, tc := range cases {
		if got := scheduler.PerformanceFromScore(tc.correct, tc.total); got != tc.want {
			t.Errorf("PerformanceFromScore(%d, %d) = %s, want %s",
				tc.correct, tc.total, got, tc.want)
		}
	}
}

func TestNextReview_FirstExposure(t *testing.T) {
	p := scheduler.DefaultParams()
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	state := p.NextReview(nil, scheduler.Good, now)

	if state.Reps != 1 {
		t.Errorf("reps = %d, want 1", state.Reps)
	}
	if state.Lapses != 0 {
		t.Errorf("lapses = %d, want 0", state.Lapses)
	}
	if state.LastReview != now {
		t.Errorf("last review = %v, want %v", state.LastReview, now)
	}
	if !state.NextReview.After(now) {
		t.Errorf("next review %v not after %v", state.NextReview, now)
	}
	if state.Difficulty < 1 || state.Difficulty > 10 {
		t.Errorf("difficulty %f out of bounds", state.Difficulty)
	}
}

func TestNextReview_FirstExposureSeedsByGrade(t *testing.T) {
	p := scheduler.DefaultParams()
	now := time.Now().UTC()

	again := p.NextReview(nil, scheduler.Again, now)
	easy := p.NextReview(nil, scheduler.Easy, now)

	if again.Stability >= easy.Stability {
		t.Errorf("again stability %f should be below easy stability %f",
			again.Stability, easy.Stability)
	}
	if !easy.NextReview.After(again.NextReview) {
		t.Errorf("easy next review %v should be later than again %v",
			easy.NextReview, again.NextReview)
	}
	if again.Difficulty <= easy.Difficulty {
		t.Errorf("again difficulty %f should exceed easy difficulty %f",
			again.Difficulty, easy.Difficulty)
	}
}

func TestNextReview_SuccessGrowsStability(t *testing.T) {
	p := scheduler.DefaultParams()
	now := time.Now().UTC()

	prev := p.NextReview(nil, scheduler.Good, now)
	next := p.NextReview(&prev, scheduler.Good, now.AddDate(0, 0, 3))

	if next.Stability <= prev.Stability {
		t.Errorf("stability should grow on good: %f -> %f", prev.Stability, next.Stability)
	}
	if next.Reps != 2 {
		t.Errorf("reps = %d, want 2", next.Reps)
	}
}

func TestNextReview_GradeOrdering(t *testing.T) {
	p := scheduler.DefaultParams()
	now := time.Now().UTC()
	prev := p.NextReview(nil, scheduler.Good, now)
	later := now.AddDate(0, 0, 3)

	again := p.NextReview(&prev, scheduler.Again, later)
	hard := p.NextReview(&prev, scheduler.Hard, later)
	good := p.NextReview(&prev, scheduler.Good, later)
	easy := p.NextReview(&prev, scheduler.Easy, later)

	if !(again.Stability < hard.Stability && hard.Stability < good.Stability && good.Stability < easy.Stability) {
		t.Errorf("stability should be ordered by grade: again=%f hard=%f good=%f easy=%f",
			again.Stability, hard.Stability, good.Stability, easy.Stability)
	}
}

func TestNextReview_LapseCountsAndFloors(t *testing.T) {
	p := scheduler.DefaultParams()
	now := time.Now().UTC()

	state := p.NextReview(nil, scheduler.Good, now)
	for i := 0; i < 10; i++ {
		now = now.AddDate(0, 0, 1)
		state = p.NextReview(&state, scheduler.Again, now)
	}

	if state.Lapses != 10 {
		t.Errorf("lapses = %d, want 10", state.Lapses)
	}
	if state.Stability < p.MinStability {
		t.Errorf("stability %f fell below floor %f", state.Stability, p.MinStability)
	}
	if !state.NextReview.After(state.LastReview) {
		t.Error("next review must stay in the future even after repeated lapses")
	}
}

func TestNextReview_AgainBeforeAnySuccessIsNotALapse(t *testing.T) {
	p := scheduler.DefaultParams()
	now := time.Now().UTC()

	// Failing repeatedly without ever having learned the material is not
	// forgetting.
	state := p.NextReview(nil, scheduler.Again, now)
	for i := 0; i < 3; i++ {
		now = now.AddDate(0, 0, 1)
		state = p.NextReview(&state, scheduler.Again, now)
	}
	if state.Lapses != 0 {
		t.Errorf("lapses = %d, want 0 with no prior success", state.Lapses)
	}
	if state.Successes != 0 {
		t.Errorf("successes = %d, want 0", state.Successes)
	}

	// The first failure after a success is a lapse.
	now = now.AddDate(0, 0, 1)
	state = p.NextReview(&state, scheduler.Good, now)
	now = now.AddDate(0, 0, 1)
	state = p.NextReview(&state, scheduler.Again, now)

	if state.Lapses != 1 {
		t.Errorf("lapses = %d, want 1 after forgetting learned material", state.Lapses)
	}
	if state.Successes != 1 {
		t.Errorf("successes = %d, want 1", state.Successes)
	}
}

func TestNextReview_LapseRaisesDifficulty(t *testing.T) {
	p := scheduler.DefaultParams()
	now := time.Now().UTC()

	prev := p.NextReview(nil, scheduler.Good, now)
	lapsed := p.NextReview(&prev, scheduler.Again, now.AddDate(0, 0, 3))

	if lapsed.Difficulty <= prev.Difficulty {
		t.Errorf("difficulty should rise on lapse: %f -> %f", prev.Difficulty, lapsed.Difficulty)
	}
	if lapsed.Difficulty > 10 {
		t.Errorf("difficulty %f above bound", lapsed.Difficulty)
	}
}

func TestNextReview_IntervalCapped(t *testing.T) {
	p := scheduler.DefaultParams()
	p.MaxIntervalDays = 30
	now := time.Now().UTC()

	state := p.NextReview(nil, scheduler.Easy, now)
	for i := 0; i < 20; i++ {
		now = state.NextReview
		state = p.NextReview(&state, scheduler.Easy, now)
	}

	max := now.Add(time.Duration(p.MaxIntervalDays) * 24 * time.Hour)
	if state.NextReview.After(max) {
		t.Errorf("next review %v exceeds %d-day cap (%v)", state.NextReview, p.MaxIntervalDays, max)
	}
}

// Package scheduler computes spaced-repetition review dates from an
// FSRS-style memory model. It is pure: callers pass in the prior persisted
// state and a performance grade, and persist the returned state themselves.
package scheduler

import (
	"math"
	"time"
)

// Performance is the discrete 4-level grade derived from attempt accuracy.
type Performance int

const (
	Again Performance = 1 // <50% accuracy
	Hard  Performance = 2 // 50-74%
	Good  Performance = 3 // 75-99%
	Easy  Performance = 4 // 100%
)

func (p Performance) String() string {
	switch p {
	case Again:
		return "again"
	case Hard:
		return "hard"
	case Good:
		return "good"
	case Easy:
		return "easy"
	}
	return "unknown"
}

func (p Performance) Valid() bool {
	return p >= Again && p <= Easy
}

// PerformanceFromScore maps an accuracy ratio to a performance grade.
// A non-positive total grades as Again.
func PerformanceFromScore(correct, total int) Performance {
	if total <= 0 || correct <= 0 {
		return Again
	}
	if correct >= total {
		return Easy
	}
	ratio := float64(correct) / float64(total)
	switch {
	case ratio < 0.5:
		return Again
	case ratio < 0.75:
		return Hard
	default:
		return Good
	}
}

// ReviewState is the persisted memory model for one (idea, book) pair.
type ReviewState struct {
	Stability  float64   // memory strength, in days of retention
	Difficulty float64   // bounded 1-10
	LastReview time.Time
	NextReview time.Time
	Reps       int // number of graded reviews
	Successes  int // number of non-Again grades
	Lapses     int // number of Again grades after a prior successful review
}

// Params holds the tunable curve constants. Defaults come from the published
// FSRS v4 weight vector; callers may substitute calibrated values.
type Params struct {
	// FirstStability seeds stability on the very first review,
	// indexed by Performance-1 (again, hard, good, easy).
	FirstStability [4]float64
	// InitialDifficulty and DifficultySlope seed difficulty on the first
	// review: d0 = InitialDifficulty - DifficultySlope*(grade-3).
	InitialDifficulty float64
	DifficultySlope   float64
	// DifficultyDelta shifts difficulty per review; MeanReversion pulls it
	// back toward 5.0 so repeated grades don't pin it at a bound.
	DifficultyDelta float64
	MeanReversion   float64
	// Stability growth term: S' = S * (1 + e^Growth * (11-d) * S^-DecayExp *
	// (e^((1-Retention)*RetrievabilityGain) - 1) * penalty/bonus).
	Growth             float64
	DecayExp           float64
	RetrievabilityGain float64
	HardPenalty        float64 // <1, dampens growth on Hard
	EasyBonus          float64 // >1, boosts growth on Easy
	// LapseFactor shrinks stability on Again; MinStability is the floor that
	// prevents runaway short intervals after repeated lapses.
	LapseFactor   float64
	LapsePenalty  float64 // added to difficulty on Again
	MinStability  float64
	// RequestRetention is the target recall probability; the next interval is
	// stability * ln(RequestRetention)/ln(0.9) days, capped at MaxIntervalDays.
	RequestRetention float64
	MaxIntervalDays  int
}

// DefaultParams returns the FSRS v4 defaults.
func DefaultParams() Params {
	return Params{
		FirstStability:     [4]float64{0.4072, 1.1829, 3.1262, 15.4722},
		InitialDifficulty:  7.2102,
		DifficultySlope:    0.5316,
		DifficultyDelta:    1.9813,
		MeanReversion:      0.0953,
		Growth:             1.616,
		DecayExp:           0.1544,
		RetrievabilityGain: 1.0824,
		HardPenalty:        0.2407,
		EasyBonus:          2.9466,
		LapseFactor:        0.3,
		LapsePenalty:       1.0,
		MinStability:       0.1,
		RequestRetention:   0.9,
		MaxIntervalDays:    365,
	}
}

// NextReview advances the review state by one graded review at time now.
// A nil prev means first exposure: stability and difficulty are seeded from
// the grade. The returned state carries the computed next review date.
func (p Params) NextReview(prev *ReviewState, perf Performance, now time.Time) ReviewState {
	if !perf.Valid() {
		perf = Again
	}

	if prev == nil || prev.Reps == 0 {
		state := ReviewState{
			Stability:  math.Max(p.FirstStability[perf-1], p.MinStability),
			Difficulty: clampDifficulty(p.InitialDifficulty - p.DifficultySlope*float64(perf-3)),
			LastReview: now,
			Reps:       1,
		}
		if perf != Again {
			state.Successes = 1
		}
		state.NextReview = now.Add(p.interval(state.Stability))
		return state
	}

	state := *prev
	state.Reps++
	state.LastReview = now

	if perf == Again {
		// Shrink stability toward the floor, never below it. Forgetting only
		// counts as a lapse once something was demonstrably learned.
		if prev.Successes > 0 {
			state.Lapses++
		}
		state.Stability = math.Max(prev.Stability*p.LapseFactor, p.MinStability)
		state.Difficulty = clampDifficulty(prev.Difficulty + p.LapsePenalty)
	} else {
		state.Successes++
		state.Stability = p.nextStability(prev.Stability, prev.Difficulty, perf)
		state.Difficulty = p.nextDifficulty(prev.Difficulty, perf)
	}

	state.NextReview = now.Add(p.interval(state.Stability))
	return state
}

// nextStability grows stability on a successful review. Every factor in the
// growth term is non-negative, so stability never shrinks here.
func (p Params) nextStability(stability, difficulty float64, perf Performance) float64 {
	modifier := 1.0
	switch perf {
	case Hard:
		modifier = p.HardPenalty
	case Easy:
		modifier = p.EasyBonus
	}

	growth := math.Exp(p.Growth) *
		(11 - difficulty) *
		math.Pow(stability, -p.DecayExp) *
		(math.Exp((1-p.RequestRetention)*p.RetrievabilityGain) - 1) *
		modifier

	return math.Max(stability*(1+growth), p.MinStability)
}

// nextDifficulty shifts difficulty by the grade's distance from Good, then
// mean-reverts toward 5.0.
func (p Params) nextDifficulty(difficulty float64, perf Performance) float64 {
	next := difficulty - p.DifficultyDelta*float64(perf-3)
	next += p.MeanReversion * (5.0 - next)
	return clampDifficulty(next)
}

// interval converts stability into the wait before the next review.
func (p Params) interval(stability float64) time.Duration {
	days := stability * math.Log(p.RequestRetention) / math.Log(0.9)
	rounded := int(math.Round(days))
	if rounded < 1 {
		rounded = 1
	}
	if p.MaxIntervalDays > 0 && rounded > p.MaxIntervalDays {
		rounded = p.MaxIntervalDays
	}
	return time.Duration(rounded) * 24 * time.Hour
}

func clampDifficulty(d float64) float64 {
	return math.Max(math.Min(d, 10.0), 1.0)
}

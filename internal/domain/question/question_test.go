package question_test

import (
	"testing"

	"github.com/ideaforge/backend/internal/domain/question"
)

func choiceQuestion() question.Question {
	return question.Question{
		ID:         "q1",
		IdeaID:     "i1",
		Type:       question.TypeSingleChoice,
		Difficulty: question.DifficultyEasy,
		Bloom:      question.BloomRecall,
		Text:       "Which statement restates the idea?",
		Options:    []string{"a", "b", "c", "d"},
		Correct:    []int{2},
	}
}

func TestValidate_ChoiceHappyPath(t *testing.T) {
	q := choiceQuestion()
	if err := q.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_ChoiceErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*question.Question)
	}{
		{"three options", func(q *question.Question) { q.Options = q.Options[:3] }},
		{"five options", func(q *question.Question) { q.Options = append(q.Options, "e") }},
		{"no correct index", func(q *question.Question) { q.Correct = nil }},
		{"out of range index", func(q *question.Question) { q.Correct = []int{4} }},
		{"negative index", func(q *question.Question) { q.Correct = []int{-1} }},
		{"two correct on single choice", func(q *question.Question) { q.Correct = []int{0, 1} }},
		{"duplicate options", func(q *question.Question) { q.Options[1] = "A." }}, // normalizes to same as "a"
		{"empty text", func(q *question.Question) { q.Text = "  " }},
		{"bad difficulty", func(q *question.Question) { q.Difficulty = "impossible" }},
		{"bad bloom", func(q *question.Question) { q.Bloom = "memorize" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := choiceQuestion()
			tc.mutate(&q)
			if err := q.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidate_MultiChoiceCorrectCount(t *testing.T) {
	q := choiceQuestion()
	q.Type = question.TypeMultiChoice

	q.Correct = []int{0}
	if err := q.Validate(); err == nil {
		t.Error("expected error for multi-choice with 1 correct index")
	}

	q.Correct = []int{0, 2}
	if err := q.Validate(); err != nil {
		t.Errorf("unexpected error for 2 correct indices: %v", err)
	}

	q.Correct = []int{0, 1, 2, 3}
	if err := q.Validate(); err == nil {
		t.Error("expected error for multi-choice with 4 correct indices")
	}
}

func TestValidate_OpenEnded(t *testing.T) {
	q := question.Question{
		Type:       question.TypeOpenEnded,
		Difficulty: question.DifficultyHard,
		Bloom:      question.BloomHowWield,
		Text:       "How would you put this into practice?",
	}
	if err := q.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	q.Options = []string{"a", "b", "c", "d"}
	if err := q.Validate(); err == nil {
		t.Error("expected error for open-ended with options")
	}
}

func TestParseType(t *testing.T) {
	cases := map[string]question.Type{
		"single_choice": question.TypeSingleChoice,
		"Single-Choice": question.TypeSingleChoice,
		"mcq":           question.TypeSingleChoice,
		"multi_choice":  question.TypeMultiChoice,
		"open_ended":    question.TypeOpenEnded,
		"OpenEnded":     question.TypeOpenEnded,
	}
	for in, want := range cases {
		got, err := question.ParseType(in)
		if err != nil {
			t.Errorf("ParseType(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseType(%q) = %q, want %q", in, got, want)
		}
	}

	if _, err := question.ParseType("essay"); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestParseBloom(t *testing.T) {
	got, err := question.ParseBloom("whyImportant")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != question.BloomWhyImportant {
		t.Errorf("got %q, want %q", got, question.BloomWhyImportant)
	}

	if _, err := question.ParseBloom("synthesize"); err == nil {
		t.Error("expected error for unknown bloom")
	}
}

func TestDifficultyPoints(t *testing.T) {
	cases := map[question.Difficulty]int{
		question.DifficultyEasy:   10,
		question.DifficultyMedium: 20,
		question.DifficultyHard:   30,
	}
	for d, want := range cases {
		if got := d.Points(); got != want {
			t.Errorf("%s.Points() = %d, want %d", d, got, want)
		}
	}
}

func TestNormalizeOption(t *testing.T) {
	if question.NormalizeOption("All of the above!") != question.NormalizeOption("all OF the above") {
		t.Error("expected case and punctuation insensitive normalization")
	}
	if question.NormalizeOption("abc") == question.NormalizeOption("abd") {
		t.Error("expected distinct texts to stay distinct")
	}
}

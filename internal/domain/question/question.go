package question

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Type is the answer format of a question.
type Type string

const (
	TypeSingleChoice Type = "single_choice"
	TypeMultiChoice  Type = "multi_choice"
	TypeOpenEnded    Type = "open_ended"
)

// Valid reports whether t is one of the defined question types.
func (t Type) Valid() bool {
	switch t {
	case TypeSingleChoice, TypeMultiChoice, TypeOpenEnded:
		return true
	}
	return false
}

// IsChoice reports whether t carries an options list.
func (t Type) IsChoice() bool {
	return t == TypeSingleChoice || t == TypeMultiChoice
}

// ParseType maps provider output (which spells types a few ways) to a Type.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, "-", "_"))) {
	case "single_choice", "singlechoice", "mcq", "single":
		return TypeSingleChoice, nil
	case "multi_choice", "multichoice", "multi":
		return TypeMultiChoice, nil
	case "open_ended", "openended", "open":
		return TypeOpenEnded, nil
	}
	return "", fmt.Errorf("unknown question type %q", s)
}

// Difficulty is the difficulty band of a question. Each band has a fixed
// point value.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Points returns the fixed point value for the band.
func (d Difficulty) Points() int {
	switch d {
	case DifficultyEasy:
		return 10
	case DifficultyMedium:
		return 20
	case DifficultyHard:
		return 30
	}
	return 0
}

// Rank orders bands easy < medium < hard for presentation sorting.
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyEasy:
		return 0
	case DifficultyMedium:
		return 1
	case DifficultyHard:
		return 2
	}
	return 3
}

func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return DifficultyEasy, nil
	case "medium":
		return DifficultyMedium, nil
	case "hard":
		return DifficultyHard, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// Bloom is the cognitive-skill label a question targets.
type Bloom string

const (
	BloomRecall       Bloom = "recall"
	BloomReframe      Bloom = "reframe"
	BloomApply        Bloom = "apply"
	BloomContrast     Bloom = "contrast"
	BloomCritique     Bloom = "critique"
	BloomWhyImportant Bloom = "why_important"
	BloomWhenUse      Bloom = "when_use"
	BloomHowWield     Bloom = "how_wield"
)

// Blooms lists every category, in the order the blueprint cycles through them.
var Blooms = []Bloom{
	BloomRecall, BloomReframe, BloomApply, BloomContrast,
	BloomCritique, BloomWhyImportant, BloomWhenUse, BloomHowWield,
}

func (b Bloom) Valid() bool {
	switch b {
	case BloomRecall, BloomReframe, BloomApply, BloomContrast,
		BloomCritique, BloomWhyImportant, BloomWhenUse, BloomHowWield:
		return true
	}
	return false
}

func ParseBloom(s string) (Bloom, error) {
	switch strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, "-", "_"))) {
	case "recall":
		return BloomRecall, nil
	case "reframe":
		return BloomReframe, nil
	case "apply":
		return BloomApply, nil
	case "contrast":
		return BloomContrast, nil
	case "critique":
		return BloomCritique, nil
	case "why_important", "whyimportant":
		return BloomWhyImportant, nil
	case "when_use", "whenuse":
		return BloomWhenUse, nil
	case "how_wield", "howwield":
		return BloomHowWield, nil
	}
	return "", fmt.Errorf("unknown bloom category %q", s)
}

// Question is a single generated assessment item.
// Related entities are referenced by ID only; traversal goes through the store.
type Question struct {
	ID           string
	IdeaID       string
	Type         Type
	Difficulty   Difficulty
	Bloom        Bloom
	Text         string
	Options      []string // exactly 4 for choice types, empty otherwise
	Correct      []int    // indices into Options; empty for open-ended
	Position     int      // display order within the owning test
	Curveball    bool
	ReviewItemID string // review-queue item this question regenerates, if any
}

// Points returns the question's fixed point value.
func (q *Question) Points() int {
	return q.Difficulty.Points()
}

// Validate checks the per-question shape invariants: choice questions carry
// exactly 4 distinct options with an in-range correct set (1 for single,
// 2-3 for multi); open-ended questions carry neither.
func (q *Question) Validate() error {
	if !q.Type.Valid() {
		return fmt.Errorf("invalid question type %q", q.Type)
	}
	if !q.Difficulty.Valid() {
		return fmt.Errorf("invalid difficulty %q", q.Difficulty)
	}
	if !q.Bloom.Valid() {
		return fmt.Errorf("invalid bloom category %q", q.Bloom)
	}
	if strings.TrimSpace(q.Text) == "" {
		return errors.New("question text is empty")
	}

	if q.Type == TypeOpenEnded {
		if len(q.Options) != 0 || len(q.Correct) != 0 {
			return errors.New("open-ended question must not carry options or correct indices")
		}
		return nil
	}

	if len(q.Options) != 4 {
		return fmt.Errorf("choice question has %d options, want 4", len(q.Options))
	}
	seen := make(map[string]bool, 4)
	for _, opt := range q.Options {
		norm := NormalizeOption(opt)
		if norm == "" {
			return errors.New("choice question has an empty option")
		}
		if seen[norm] {
			return fmt.Errorf("duplicate option %q", opt)
		}
		seen[norm] = true
	}

	switch q.Type {
	case TypeSingleChoice:
		if len(q.Correct) != 1 {
			return fmt.Errorf("single-choice question has %d correct indices, want 1", len(q.Correct))
		}
	case TypeMultiChoice:
		if len(q.Correct) < 2 || len(q.Correct) > 3 {
			return fmt.Errorf("multi-choice question has %d correct indices, want 2-3", len(q.Correct))
		}
	}

	seenIdx := make(map[int]bool, len(q.Correct))
	for _, c := range q.Correct {
		if c < 0 || c >= len(q.Options) {
			return fmt.Errorf("correct index %d out of range", c)
		}
		if seenIdx[c] {
			return fmt.Errorf("duplicate correct index %d", c)
		}
		seenIdx[c] = true
	}

	return nil
}

// NormalizeOption lowercases an option and strips punctuation and whitespace,
// so "Paris." and "paris" compare equal when checking for duplicates.
func NormalizeOption(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

package generator

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"

	"github.com/ideaforge/backend/internal/domain/blueprint"
	"github.com/ideaforge/backend/internal/domain/question"
	"github.com/ideaforge/backend/internal/id"
	"github.com/ideaforge/backend/internal/llm"
)

// rawBatch matches the batched provider schema.
type rawBatch struct {
	Questions []rawItem `json:"questions"`
}

type rawItem struct {
	OrderIndex int      `json:"orderIndex"`
	Type       string   `json:"type"`
	Bloom      string   `json:"bloom"`
	Difficulty string   `json:"difficulty"`
	Question   string   `json:"question"`
	Options    []string `json:"options"`
	Correct    []int    `json:"correct"`
}

// rawSingle matches the single-question provider schema.
type rawSingle struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Correct  []int    `json:"correct"`
}

// bannedPhrases are option texts that make choice questions guessable.
// Compared against normalized option text.
var bannedPhrases = []string{
	"alloftheabove",
	"noneoftheabove",
	"neither",
}

// bannedOption reports whether an option uses a forbidden pattern, including
// "both X and Y" constructions.
func bannedOption(opt string) bool {
	norm := question.NormalizeOption(opt)
	for _, banned := range bannedPhrases {
		if strings.Contains(norm, banned) {
			return true
		}
	}
	lower := strings.ToLower(strings.TrimSpace(opt))
	if strings.HasPrefix(lower, "both ") && strings.Contains(lower, " and ") {
		return true
	}
	return false
}

// parseBatch decodes a raw provider reply into the batched schema.
func parseBatch(raw string) (*rawBatch, error) {
	jsonStr := llm.ExtractJSON(raw)
	if jsonStr == "" {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrMalformedBatch)
	}
	var batch rawBatch
	if err := json.Unmarshal([]byte(jsonStr), &batch); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBatch, err)
	}
	return &batch, nil
}

// buildFromBatch validates a decoded batch against the blueprint and produces
// the 8 questions in slot order.
func buildFromBatch(ideaID string, batch *rawBatch) ([]question.Question, error) {
	if len(batch.Questions) != blueprint.Size {
		return nil, fmt.Errorf("%w: got %d items, want %d", ErrMalformedBatch, len(batch.Questions), blueprint.Size)
	}

	bySlot := make(map[int]rawItem, blueprint.Size)
	for _, item := range batch.Questions {
		if item.OrderIndex < 0 || item.OrderIndex >= blueprint.Size {
			return nil, fmt.Errorf("%w: orderIndex %d out of range", ErrSlotMismatch, item.OrderIndex)
		}
		if _, dup := bySlot[item.OrderIndex]; dup {
			return nil, fmt.Errorf("%w: duplicate orderIndex %d", ErrSlotMismatch, item.OrderIndex)
		}
		bySlot[item.OrderIndex] = item
	}

	questions := make([]question.Question, 0, blueprint.Size)
	for _, slot := range blueprint.Blueprint() {
		item, ok := bySlot[slot.Index]
		if !ok {
			return nil, fmt.Errorf("%w: missing orderIndex %d", ErrSlotMismatch, slot.Index)
		}
		q, err := buildItem(ideaID, slot, item)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// buildItem validates one batch item against its slot and builds a Question.
func buildItem(ideaID string, slot blueprint.Slot, item rawItem) (question.Question, error) {
	declaredType, err := question.ParseType(item.Type)
	if err != nil {
		return question.Question{}, fmt.Errorf("%w: slot %d: %v", ErrSlotMismatch, slot.Index, err)
	}
	declaredBloom, err := question.ParseBloom(item.Bloom)
	if err != nil {
		return question.Question{}, fmt.Errorf("%w: slot %d: %v", ErrSlotMismatch, slot.Index, err)
	}
	declaredDifficulty, err := question.ParseDifficulty(item.Difficulty)
	if err != nil {
		return question.Question{}, fmt.Errorf("%w: slot %d: %v", ErrSlotMismatch, slot.Index, err)
	}
	if declaredType != slot.Type || declaredBloom != slot.Bloom || declaredDifficulty != slot.Difficulty {
		return question.Question{}, fmt.Errorf("%w: slot %d declared (%s,%s,%s), want (%s,%s,%s)",
			ErrSlotMismatch, slot.Index,
			declaredType, declaredBloom, declaredDifficulty,
			slot.Type, slot.Bloom, slot.Difficulty)
	}

	return buildQuestion(ideaID, slot, rawSingle{
		Question: item.Question,
		Options:  item.Options,
		Correct:  item.Correct,
	})
}

// parseSingle decodes a single-question provider reply.
func parseSingle(raw string) (*rawSingle, error) {
	jsonStr := llm.ExtractJSON(raw)
	if jsonStr == "" {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrMalformedBatch)
	}
	var single rawSingle
	if err := json.Unmarshal([]byte(jsonStr), &single); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBatch, err)
	}
	return &single, nil
}

// buildQuestion builds and shape-validates a Question for the given slot.
func buildQuestion(ideaID string, slot blueprint.Slot, raw rawSingle) (question.Question, error) {
	q := question.Question{
		ID:         id.New(),
		IdeaID:     ideaID,
		Type:       slot.Type,
		Difficulty: slot.Difficulty,
		Bloom:      slot.Bloom,
		Text:       strings.TrimSpace(raw.Question),
		Position:   slot.Index,
	}
	if slot.Type.IsChoice() {
		q.Options = raw.Options
		q.Correct = raw.Correct
	}

	if err := q.Validate(); err != nil {
		return question.Question{}, fmt.Errorf("%w: slot %d: %v", ErrInvalidOptions, slot.Index, err)
	}
	for _, opt := range q.Options {
		if bannedOption(opt) {
			return question.Question{}, fmt.Errorf("%w: slot %d: banned option %q", ErrInvalidOptions, slot.Index, opt)
		}
	}
	return q, nil
}

// shuffleOptions randomizes the display order of a choice question's options
// and remaps the correct indices, so the answer position is not predictable
// across regenerations. Open-ended questions pass through unchanged.
func shuffleOptions(q *question.Question) {
	if !q.Type.IsChoice() {
		return
	}

	perm := rand.Perm(len(q.Options))

	shuffled := make([]string, len(q.Options))
	for oldIdx, newIdx := range perm {
		shuffled[newIdx] = q.Options[oldIdx]
	}
	remapped := make([]int, len(q.Correct))
	for i, c := range q.Correct {
		remapped[i] = perm[c]
	}

	q.Options = shuffled
	q.Correct = remapped
}

package generator

import (
	"fmt"
	"strings"

	"github.com/ideaforge/backend/internal/domain/blueprint"
	"github.com/ideaforge/backend/internal/domain/idea"
	"github.com/ideaforge/backend/internal/domain/question"
	"github.com/ideaforge/backend/internal/domain/review"
)

// ============================================================================
// Prompt builders — short and directive, with the JSON schema last so it's
// the final thing the model sees.
// ============================================================================

const batchSystemPrompt = `You write assessment questions for a reading companion app.
A learner has read a book and is practicing one idea from it.

RULES:
- Every question must test the idea itself, not trivia about the book.
- single_choice questions need exactly 4 answer options and exactly 1 correct index.
- Options must be distinct and plausible. NEVER use "all of the above",
  "none of the above", "both X and Y", or "neither" style options.
- open_ended questions must have no options and no correct index.
- Question text must never be empty.
- Respond with ONLY the requested JSON. No explanation, no markdown.`

// bloomInstruction describes what each category should ask for.
func bloomInstruction(b question.Bloom) string {
	switch b {
	case question.BloomRecall:
		return "recall: restate a core fact of the idea"
	case question.BloomReframe:
		return "reframe: explain the idea in the learner's own words"
	case question.BloomApply:
		return "apply: use the idea in a concrete situation"
	case question.BloomContrast:
		return "contrast: distinguish the idea from a similar or opposing one"
	case question.BloomCritique:
		return "critique: identify a weakness or limit of the idea"
	case question.BloomWhyImportant:
		return "why_important: why the idea matters"
	case question.BloomWhenUse:
		return "when_use: recognize the situation where the idea applies"
	case question.BloomHowWield:
		return "how_wield: plan how to put the idea into practice"
	}
	return string(b)
}

func buildBatchPrompt(ideaRef idea.Idea) string {
	var slotLines strings.Builder
	for _, slot := range blueprint.Blueprint() {
		fmt.Fprintf(&slotLines, "- orderIndex %d: type=%s, difficulty=%s, bloom=%s (%s)\n",
			slot.Index, slot.Type, slot.Difficulty, slot.Bloom, bloomInstruction(slot.Bloom))
	}

	return fmt.Sprintf(`Write exactly 8 questions for this idea, one per slot below.

BOOK: %s
IDEA: %s
DESCRIPTION:
%s

SLOTS:
%s
Respond with ONLY this JSON:
{"questions": [{"orderIndex": 0, "type": "single_choice", "bloom": "recall", "difficulty": "easy", "question": "...", "options": ["...","...","...","..."], "correct": [0]}, ...]}
Open-ended entries omit "options" and "correct".`,
		ideaRef.BookTitle, ideaRef.Title, ideaRef.Description, slotLines.String())
}

func buildSinglePrompt(ideaRef idea.Idea, slot blueprint.Slot) string {
	shape := `{"question": "...", "options": ["...","...","...","..."], "correct": [0]}`
	if slot.Type == question.TypeOpenEnded {
		shape = `{"question": "..."}`
	}

	return fmt.Sprintf(`Write one %s question, difficulty %s, bloom category %s (%s).

BOOK: %s
IDEA: %s
DESCRIPTION:
%s

Respond with ONLY this JSON:
%s`,
		slot.Type, slot.Difficulty, slot.Bloom, bloomInstruction(slot.Bloom),
		ideaRef.BookTitle, ideaRef.Title, ideaRef.Description, shape)
}

func buildReviewPrompt(item review.QueueItem) string {
	shape := `{"question": "...", "options": ["...","...","...","..."], "correct": [0]}`
	if item.Type == question.TypeOpenEnded {
		shape = `{"question": "..."}`
	}

	return fmt.Sprintf(`The learner previously missed a question on this idea. Write ONE new %s
question, difficulty %s, bloom category %s (%s), testing the same ground with
DIFFERENT surface content — do not reuse the old wording or answer options.

BOOK: %s
IDEA: %s

PREVIOUSLY MISSED QUESTION:
%s

Respond with ONLY this JSON:
%s`,
		item.Type, item.Difficulty, item.Bloom, bloomInstruction(item.Bloom),
		item.BookTitle, item.IdeaTitle, item.QuestionText, shape)
}

package blueprint

import "github.com/ideaforge/backend/internal/domain/question"

// Slot is one fixed position in the 8-question initial-test layout.
type Slot struct {
	Index      int
	Bloom      question.Bloom
	Difficulty question.Difficulty
	Type       question.Type
}

// Size is the number of questions in an initial test.
const Size = 8

// slots is the fixed layout every initial test must satisfy. The ordering is
// a contract: difficulty rises easy → medium → hard, and the open-ended item
// in a band always comes after the choice items of that band. The session
// builder relies on this to keep open-ended questions last within their band.
var slots = [Size]Slot{
	{Index: 0, Bloom: question.BloomRecall, Difficulty: question.DifficultyEasy, Type: question.TypeSingleChoice},
	{Index: 1, Bloom: question.BloomApply, Difficulty: question.DifficultyEasy, Type: question.TypeSingleChoice},
	{Index: 2, Bloom: question.BloomWhyImportant, Difficulty: question.DifficultyMedium, Type: question.TypeSingleChoice},
	{Index: 3, Bloom: question.BloomWhenUse, Difficulty: question.DifficultyMedium, Type: question.TypeSingleChoice},
	{Index: 4, Bloom: question.BloomContrast, Difficulty: question.DifficultyMedium, Type: question.TypeSingleChoice},
	{Index: 5, Bloom: question.BloomReframe, Difficulty: question.DifficultyMedium, Type: question.TypeOpenEnded},
	{Index: 6, Bloom: question.BloomCritique, Difficulty: question.DifficultyHard, Type: question.TypeSingleChoice},
	{Index: 7, Bloom: question.BloomHowWield, Difficulty: question.DifficultyHard, Type: question.TypeOpenEnded},
}

// Blueprint returns the 8 slots in order.
func Blueprint() [Size]Slot {
	return slots
}

// IsOpenEndedSlot reports whether the slot at index i is open-ended.
// Out-of-range indices are not open-ended.
func IsOpenEndedSlot(i int) bool {
	if i < 0 || i >= Size {
		return false
	}
	return slots[i].Type == question.TypeOpenEnded
}

package blueprint_test

import (
	"testing"

	"github.com/ideaforge/backend/internal/domain/blueprint"
	"github.com/ideaforge/backend/internal/domain/question"
)

func TestBlueprint_Shape(t *testing.T) {
	slots := blueprint.Blueprint()

	if len(slots) != blueprint.Size {
		t.Fatalf("expected %d slots, got %d", blueprint.Size, len(slots))
	}

	want := []struct {
		bloom      question.Bloom
		difficulty question.Difficulty
		qtype      question.Type
	}{
		{question.BloomRecall, question.DifficultyEasy, question.TypeSingleChoice},
		{question.BloomApply, question.DifficultyEasy, question.TypeSingleChoice},
		{question.BloomWhyImportant, question.DifficultyMedium, question.TypeSingleChoice},
		{question.BloomWhenUse, question.DifficultyMedium, question.TypeSingleChoice},
		{question.BloomContrast, question.DifficultyMedium, question.TypeSingleChoice},
		{question.BloomReframe, question.DifficultyMedium, question.TypeOpenEnded},
		{question.BloomCritique, question.DifficultyHard, question.TypeSingleChoice},
		{question.BloomHowWield, question.DifficultyHard, question.TypeOpenEnded},
	}

	for i, w := range want {
		slot := slots[i]
		if slot.Index != i {
			t.Errorf("slot %d: index %d", i, slot.Index)
		}
		if slot.Bloom != w.bloom {
			t.Errorf("slot %d: bloom %q, want %q", i, slot.Bloom, w.bloom)
		}
		if slot.Difficulty != w.difficulty {
			t.Errorf("slot %d: difficulty %q, want %q", i, slot.Difficulty, w.difficulty)
		}
		if slot.Type != w.qtype {
			t.Errorf("slot %d: type %q, want %q", i, slot.Type, w.qtype)
		}
	}
}

func TestBlueprint_DifficultyNeverDecreases(t *testing.T) {
	slots := blueprint.Blueprint()
	for i := 1; i < len(slots); i++ {
		if slots[i].Difficulty.Rank() < slots[i-1].Difficulty.Rank() {
			t.Errorf("slot %d (%s) is easier than slot %d (%s)",
				i, slots[i].Difficulty, i-1, slots[i-1].Difficulty)
		}
	}
}

func TestIsOpenEndedSlot(t *testing.T) {
	for i := 0; i < blueprint.Size; i++ {
		want := i == 5 || i == 7
		if got := blueprint.IsOpenEndedSlot(i); got != want {
			t.Errorf("IsOpenEndedSlot(%d) = %v, want %v", i, got, want)
		}
	}
}

package generator

import (
	"testing"

	"github.com/KDigitalAi/Assessments/internal/models"
)

func TestSplitDifficulty(t *testing.T) {
	tests := []struct {
		n    int
		want models.DifficultyMix
	}{
		{20, models.DifficultyMix{Easy: 6, Medium: 13, Hard: 1}},
		{10, models.DifficultyMix{Easy: 3, Medium: 6, Hard: 1}},
		{9, models.DifficultyMix{Easy: 3, Medium: 6, Hard: 0}},
		{5, models.DifficultyMix{Easy: 1, Medium: 3, Hard: 1}},
		{1, models.DifficultyMix{Easy: 0, Medium: 0, Hard: 1}},
		{0, models.DifficultyMix{}},
	}
	for _, tt := range tests {
		got := SplitDifficulty(tt.n)
		if got != tt.want {
			t.Errorf("SplitDifficulty(%d): expected %+v, got %+v", tt.n, tt.want, got)
		}
		if got.Total() != tt.n && tt.n > 0 {
			t.Errorf("SplitDifficulty(%d): total %d", tt.n, got.Total())
		}
	}
}

func TestPlanArchetypes(t *testing.T) {
	tech := PlanArchetypes(20, true)
	if tech.CodeTracing != 10 || tech.Conceptual != 5 || tech.Scenario != 5 {
		t.Errorf("expected 10/5/5 for technical, got %+v", tech)
	}
	prose := PlanArchetypes(20, false)
	if prose.CodeTracing != 0 || prose.Conceptual != 10 || prose.Scenario != 5 {
		t.Errorf("expected 0/10/5 for non-technical, got %+v", prose)
	}
}

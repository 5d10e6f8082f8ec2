package generator

import "github.com/KDigitalAi/Assessments/internal/models"

// SplitDifficulty divides n questions into easy/medium/hard. medium is
// taken from n, not from what easy leaves, so the split leans medium
// (20 -> 6/13/1). Stored assessments carry this split; keep it stable.
func SplitDifficulty(n int) models.DifficultyMix {
	if n <= 0 {
		return models.DifficultyMix{}
	}
	easy := n / 3
	medium := (2 * n) / 3
	return models.DifficultyMix{Easy: easy, Medium: medium, Hard: n - easy - medium}
}

// ArchetypeMix holds minimum counts per question archetype.
type ArchetypeMix struct {
	CodeTracing int
	Conceptual  int
	Scenario    int
}

// PlanArchetypes sets the minimums for a batch of n. Technical content gets
// at least half code-tracing/debugging questions; other content leans on
// conceptual reasoning.
func PlanArchetypes(n int, technical bool) ArchetypeMix {
	if n <= 0 {
		return ArchetypeMix{}
	}
	if technical {
		return ArchetypeMix{CodeTracing: n / 2, Conceptual: n / 4, Scenario: n / 4}
	}
	return ArchetypeMix{Conceptual: n / 2, Scenario: n / 4}
}

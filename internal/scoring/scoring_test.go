package scoring

import (
	"testing"

	"github.com/KDigitalAi/Assessments/internal/models"
)

var opts = []string{"append()", "extend()", "insert()", "pop()"}

func TestResolveAnswer(t *testing.T) {
	tests := []struct {
		answer string
		want   int
		ok     bool
	}{
		{"A", 0, true},
		{"d", 3, true},
		{" C ", 2, true},
		{"extend()", 1, true},
		{"  POP()  ", 3, true},
		{"E", -1, false},
		{"", -1, false},
		{"remove()", -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			got, ok := ResolveAnswer(opts, tt.answer)
			if got != tt.want || ok != tt.ok {
				t.Errorf("expected (%d, %v), got (%d, %v)", tt.want, tt.ok, got, ok)
			}
		})
	}
}

func TestResolveAnswer_LetterOutsideOptions(t *testing.T) {
	if _, ok := ResolveAnswer([]string{"yes", "no"}, "C"); ok {
		t.Error("expected C to be unresolvable with two options")
	}
}

func TestScore_MixedAnswerFormats(t *testing.T) {
	questions := []models.Question{
		{ID: "q1", Options: opts, CorrectAnswer: "B"},
		{ID: "q2", Options: opts, CorrectAnswer: "pop()"},
		{ID: "q3", Options: opts, CorrectAnswer: "A"},
		{ID: "q4", Options: opts, CorrectAnswer: "C"},
	}
	answers := map[string]string{
		"q1": "extend()", // text for a letter key
		"q2": "D",        // letter for a text key
		"q3": "B",        // wrong
	}

	got := Score("a-1", questions, answers)

	if got.Total != 4 || got.Correct != 2 {
		t.Fatalf("expected 2/4 correct, got %d/%d", got.Correct, got.Total)
	}
	if got.Percentage != 50 {
		t.Errorf("expected 50%%, got %v", got.Percentage)
	}
	if got.Results[1].CorrectOption != "D" {
		t.Errorf("expected text answer resolved to D, got %q", got.Results[1].CorrectOption)
	}
	if got.Results[3].Correct {
		t.Error("expected unanswered question to be wrong")
	}
}

func TestScore_Empty(t *testing.T) {
	got := Score("a-1", nil, nil)
	if got.Total != 0 || got.Percentage != 0 {
		t.Errorf("expected empty score, got %+v", got)
	}
}

package generator

import (
	"strings"
	"testing"

	"github.com/KDigitalAi/Assessments/internal/models"
)

func hasRule(v models.Verdict, rule string) bool {
	for _, r := range v.Reasons {
		if r == rule || strings.HasPrefix(r, rule+":") {
			return true
		}
	}
	return false
}

func TestValidate_AcceptsWellFormed(t *testing.T) {
	v := Validate(validCandidate(1))
	if !v.OK() {
		t.Fatalf("expected acceptance, got reasons: %v", v.Reasons)
	}
	if v.Accepted.Difficulty != models.DifficultyMedium {
		t.Errorf("expected medium, got %s", v.Accepted.Difficulty)
	}
	if v.Accepted.Options[3] != "An error is raised" {
		t.Errorf("expected options carried over, got %v", v.Accepted.Options)
	}
	if len(v.Reasons) != 0 {
		t.Errorf("expected no reasons, got %v", v.Reasons)
	}
}

func TestValidate_RejectsMalformedSet(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.CandidateQuestion)
		rule   string
	}{
		{"empty question text", func(q *models.CandidateQuestion) { q.QuestionText = "" }, RuleEmptyQuestion},
		{"text containing pdf_", func(q *models.CandidateQuestion) {
			q.QuestionText = "According to pdf_lesson_03, which statement about loops is correct?"
		}, RuleMetadataLeak},
		{"three options", func(q *models.CandidateQuestion) { q.Options = q.Options[:3] }, RuleOptionCount},
		{"answer E without literal match", func(q *models.CandidateQuestion) { q.CorrectAnswer = "E" }, RuleAnswerMismatch},
		{"empty explanation", func(q *models.CandidateQuestion) { q.Explanation = "  " }, RuleEmptyExplanation},
		{"difficulty trivial", func(q *models.CandidateQuestion) { q.Difficulty = "trivial" }, RuleDifficulty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validCandidate(1)
			tt.mutate(&q)
			v := Validate(q)
			if v.OK() {
				t.Fatal("expected rejection, got acceptance")
			}
			if !hasRule(v, tt.rule) {
				t.Errorf("expected rule %s, got %v", tt.rule, v.Reasons)
			}
		})
	}
}

func TestValidate_OtherRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.CandidateQuestion)
		rule   string
	}{
		{"short text", func(q *models.CandidateQuestion) { q.QuestionText = "What prints here?" }, RuleShortQuestion},
		{"generic opener", func(q *models.CandidateQuestion) {
			q.QuestionText = "What is Python and why do so many teams use it today?"
		}, RuleGenericOpener},
		{"filename leak", func(q *models.CandidateQuestion) {
			q.QuestionText = "Which filename stores the configuration described in the lesson?"
		}, RuleMetadataLeak},
		{"recording date", func(q *models.CandidateQuestion) {
			q.QuestionText = "In the session recorded on 2024-03-11, which command was shown first?"
		}, RuleMetadataLeak},
		{"clock time", func(q *models.CandidateQuestion) {
			q.QuestionText = "At 00:12:31 the instructor runs which command to list containers?"
		}, RuleMetadataLeak},
		{"empty option", func(q *models.CandidateQuestion) { q.Options[2] = " " }, RuleEmptyOption},
		{"empty answer", func(q *models.CandidateQuestion) { q.CorrectAnswer = "" }, RuleEmptyAnswer},
		{"empty topic", func(q *models.CandidateQuestion) { q.Topic = "" }, RuleEmptyTopic},
		{"five options", func(q *models.CandidateQuestion) { q.Options = append(q.Options, "extra") }, RuleOptionCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validCandidate(1)
			q.Options = append([]string(nil), q.Options...)
			tt.mutate(&q)
			v := Validate(q)
			if v.OK() {
				t.Fatal("expected rejection, got acceptance")
			}
			if !hasRule(v, tt.rule) {
				t.Errorf("expected rule %s, got %v", tt.rule, v.Reasons)
			}
		})
	}
}

func TestValidate_AnswerFormats(t *testing.T) {
	tests := []struct {
		answer string
		ok     bool
	}{
		{"C", true},
		{"c", true},
		{" b ", true},
		{"An error is raised", true},
		{"an error is raised", false},
		{"E", false},
		{"3", false},
	}
	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			q := validCandidate(1)
			q.CorrectAnswer = tt.answer
			if got := Validate(q).OK(); got != tt.ok {
				t.Errorf("expected ok=%v for %q, got %v", tt.ok, tt.answer, got)
			}
		})
	}
}

func TestValidate_StoresAnswerAsEmitted(t *testing.T) {
	q := validCandidate(1)
	q.CorrectAnswer = "c"
	v := Validate(q)
	if !v.OK() {
		t.Fatalf("expected acceptance, got %v", v.Reasons)
	}
	if v.Accepted.CorrectAnswer != "c" {
		t.Errorf("expected answer kept as emitted, got %q", v.Accepted.CorrectAnswer)
	}
}

func TestValidate_DifficultyCaseInsensitive(t *testing.T) {
	q := validCandidate(1)
	q.Difficulty = " HARD "
	v := Validate(q)
	if !v.OK() || v.Accepted.Difficulty != models.DifficultyHard {
		t.Errorf("expected hard accepted, got %+v", v)
	}
}

func TestValidate_CollectsEveryFailure(t *testing.T) {
	v := Validate(models.CandidateQuestion{})
	for _, rule := range []string{RuleEmptyQuestion, RuleOptionCount, RuleEmptyAnswer, RuleEmptyExplanation, RuleDifficulty, RuleEmptyTopic} {
		if !hasRule(v, rule) {
			t.Errorf("expected rule %s among %v", rule, v.Reasons)
		}
	}
}

func TestValidateAll_KeepsOrderAndCounts(t *testing.T) {
	bad := validCandidate(2)
	bad.Difficulty = "trivial"
	verdicts, accepted := ValidateAll([]models.CandidateQuestion{validCandidate(1), bad, validCandidate(3)})

	if len(verdicts) != 3 || len(accepted) != 2 {
		t.Fatalf("expected 3 verdicts and 2 accepted, got %d and %d", len(verdicts), len(accepted))
	}
	if verdicts[1].OK() {
		t.Error("expected second verdict rejected")
	}
	counts := RejectionCounts(verdicts)
	if counts[RuleDifficulty] != 1 {
		t.Errorf("expected one difficulty rejection, got %v", counts)
	}
}

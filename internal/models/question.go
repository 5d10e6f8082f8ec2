package models

import (
	"strings"
	"time"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

var ValidDifficulties = map[Difficulty]bool{
	DifficultyEasy:   true,
	DifficultyMedium: true,
	DifficultyHard:   true,
}

// ParseDifficulty accepts any casing and surrounding whitespace.
func ParseDifficulty(s string) (Difficulty, bool) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	return d, ValidDifficulties[d]
}

// ── Generation ──────────────────────────────────────────

// CandidateQuestion is one question as emitted by the completion model,
// before validation. Every field is optional at this stage.
type CandidateQuestion struct {
	QuestionText  string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
	Difficulty    string   `json:"difficulty"`
	Topic         string   `json:"topic"`
}

// AcceptedQuestion can only be well-formed: exactly four options and a
// known difficulty. CorrectAnswer keeps whatever format the model emitted
// (letter or option text).
type AcceptedQuestion struct {
	Text          string
	Options       [4]string
	CorrectAnswer string
	Explanation   string
	Difficulty    Difficulty
	Topic         string
}

// Verdict is the validator's decision for one candidate. Accepted is nil
// exactly when the candidate was rejected, in which case Reasons is non-empty.
type Verdict struct {
	Candidate CandidateQuestion
	Accepted  *AcceptedQuestion
	Reasons   []string
}

func (v Verdict) OK() bool { return v.Accepted != nil }

// ── Persisted ───────────────────────────────────────────

type Question struct {
	ID            string     `json:"id"`
	AssessmentID  string     `json:"assessment_id"`
	SourceID      string     `json:"source_id"`
	SourceKind    SourceKind `json:"source_kind"`
	Topic         string     `json:"topic"`
	QuestionText  string     `json:"question"`
	Options       []string   `json:"options"`
	CorrectAnswer string     `json:"correct_answer"`
	Explanation   string     `json:"explanation"`
	Difficulty    Difficulty `json:"difficulty"`
	CreatedAt     time.Time  `json:"created_at"`
}

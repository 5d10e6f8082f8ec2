// Package scoring grades submitted answers against stored questions. Stored
// correct answers may be an option letter or the option's text.
package scoring

import (
	"strings"

	"github.com/KDigitalAi/Assessments/internal/models"
)

const letters = "ABCD"

// ResolveAnswer maps answer to an option index. A single letter A-D (any
// case) is taken as a position; otherwise the answer must equal one
// option's text, ignoring surrounding whitespace and case.
func ResolveAnswer(options []string, answer string) (int, bool) {
	a := strings.TrimSpace(answer)
	if a == "" {
		return -1, false
	}
	if len(a) == 1 {
		if i := strings.IndexByte(letters, strings.ToUpper(a)[0]); i >= 0 && i < len(options) {
			return i, true
		}
	}
	for i, o := range options {
		if strings.EqualFold(strings.TrimSpace(o), a) {
			return i, true
		}
	}
	return -1, false
}

// Letter returns the option letter for index i, or "" when out of range.
func Letter(i int) string {
	if i < 0 || i >= len(letters) {
		return ""
	}
	return letters[i : i+1]
}

// Score grades answers (question id -> selection) against questions.
// Unanswered or unresolvable selections count as wrong.
func Score(assessmentID string, questions []models.Question, answers map[string]string) models.ScoreResponse {
	resp := models.ScoreResponse{AssessmentID: assessmentID, Total: len(questions)}

	for _, q := range questions {
		outcome := models.AnswerOutcome{QuestionID: q.ID, Selected: answers[q.ID]}

		correctIdx, ok := ResolveAnswer(q.Options, q.CorrectAnswer)
		if ok {
			outcome.CorrectOption = Letter(correctIdx)
			if selected, found := ResolveAnswer(q.Options, outcome.Selected); found && selected == correctIdx {
				outcome.Correct = true
				resp.Correct++
			}
		}
		resp.Results = append(resp.Results, outcome)
	}

	if resp.Total > 0 {
		resp.Percentage = float64(resp.Correct) * 100 / float64(resp.Total)
	}
	return resp
}

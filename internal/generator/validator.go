package generator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/KDigitalAi/Assessments/internal/models"
)

// Rule names prefix every rejection reason.
const (
	RuleEmptyQuestion    = "empty_question"
	RuleShortQuestion    = "short_question"
	RuleMetadataLeak     = "metadata_leak"
	RuleGenericOpener    = "generic_opener"
	RuleOptionCount      = "option_count"
	RuleEmptyOption      = "empty_option"
	RuleEmptyAnswer      = "empty_answer"
	RuleAnswerMismatch   = "answer_mismatch"
	RuleEmptyExplanation = "empty_explanation"
	RuleDifficulty       = "invalid_difficulty"
	RuleEmptyTopic       = "empty_topic"
)

const (
	MinQuestionLength = 30
	OptionCount       = 4
)

// Substrings that show the model leaked storage details into a question.
var bannedSubstrings = []string{
	"pdf_", "video_", ".pdf", ".mp4", ".avi", ".mov",
	"file name", "filename", "file title", "video title", "timestamp",
	"chunk", "embedding", "metadata",
	"what is the name", "what is the title", "what is the file",
}

// Recording dates (2024-05, 2023-11-02) and clock times (00:12:31).
var bannedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:19|20)\d{2}-\d{2}`),
	regexp.MustCompile(`\b\d{1,2}:\d{2}:\d{2}\b`),
}

var genericOpeners = []string{
	"what is python",
	"what is a variable",
	"what is a function",
	"what is a loop",
	"what is a list",
	"what is a dictionary",
	"what is python used for",
	"what is the purpose of python",
}

var answerLetters = map[string]bool{"A": true, "B": true, "C": true, "D": true}

// Validate checks one candidate against every rule and reports all
// failures. It has no side effects.
func Validate(c models.CandidateQuestion) models.Verdict {
	var reasons []string
	fail := func(rule, format string, args ...any) {
		if format == "" {
			reasons = append(reasons, rule)
			return
		}
		reasons = append(reasons, rule+": "+fmt.Sprintf(format, args...))
	}

	text := strings.TrimSpace(c.QuestionText)
	lower := strings.ToLower(text)
	if text == "" {
		fail(RuleEmptyQuestion, "")
	} else {
		if n := utf8.RuneCountInString(text); n < MinQuestionLength {
			fail(RuleShortQuestion, "%d characters", n)
		}
		for _, s := range bannedSubstrings {
			if strings.Contains(lower, s) {
				fail(RuleMetadataLeak, "%q", s)
			}
		}
		for _, p := range bannedPatterns {
			if m := p.FindString(text); m != "" {
				fail(RuleMetadataLeak, "%q", m)
			}
		}
		for _, g := range genericOpeners {
			if strings.HasPrefix(lower, g) {
				fail(RuleGenericOpener, "%q", g)
				break
			}
		}
	}

	var options [OptionCount]string
	if len(c.Options) != OptionCount {
		fail(RuleOptionCount, "got %d", len(c.Options))
	} else {
		for i, o := range c.Options {
			options[i] = strings.TrimSpace(o)
			if options[i] == "" {
				fail(RuleEmptyOption, "option %c", 'A'+i)
			}
		}
	}

	answer := strings.TrimSpace(c.CorrectAnswer)
	if answer == "" {
		fail(RuleEmptyAnswer, "")
	} else if !answerLetters[strings.ToUpper(answer)] && !matchesOption(answer, c.Options) {
		fail(RuleAnswerMismatch, "%q", answer)
	}

	explanation := strings.TrimSpace(c.Explanation)
	if explanation == "" {
		fail(RuleEmptyExplanation, "")
	}

	difficulty, ok := models.ParseDifficulty(c.Difficulty)
	if !ok {
		fail(RuleDifficulty, "%q", c.Difficulty)
	}

	topic := strings.TrimSpace(c.Topic)
	if topic == "" {
		fail(RuleEmptyTopic, "")
	}

	if len(reasons) > 0 {
		return models.Verdict{Candidate: c, Reasons: reasons}
	}
	return models.Verdict{
		Candidate: c,
		Accepted: &models.AcceptedQuestion{
			Text:          text,
			Options:       options,
			CorrectAnswer: answer,
			Explanation:   explanation,
			Difficulty:    difficulty,
			Topic:         topic,
		},
	}
}

func matchesOption(answer string, options []string) bool {
	for _, o := range options {
		if strings.TrimSpace(o) == answer {
			return true
		}
	}
	return false
}

// ValidateAll validates each candidate and returns verdicts in input order
// along with the accepted questions.
func ValidateAll(candidates []models.CandidateQuestion) ([]models.Verdict, []models.AcceptedQuestion) {
	verdicts := make([]models.Verdict, len(candidates))
	var accepted []models.AcceptedQuestion
	for i, c := range candidates {
		verdicts[i] = Validate(c)
		if verdicts[i].OK() {
			accepted = append(accepted, *verdicts[i].Accepted)
		}
	}
	return verdicts, accepted
}

// RejectionCounts tallies rejections by rule name.
func RejectionCounts(verdicts []models.Verdict) map[string]int {
	counts := make(map[string]int)
	for _, v := range verdicts {
		for _, r := range v.Reasons {
			rule, _, _ := strings.Cut(r, ":")
			counts[rule]++
		}
	}
	return counts
}

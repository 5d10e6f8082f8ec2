package generator

import (
	"strings"

	"github.com/KDigitalAi/Assessments/internal/models"
	"github.com/KDigitalAi/Assessments/internal/scoring"
)

const (
	nearDuplicateThreshold = 0.60
	letterClusterShare     = 0.5
	minBatchForClustering  = 8
)

// BatchReview collects warnings about an accepted batch. Nothing here
// rejects questions.
type BatchReview struct {
	LetterCounts   map[string]int
	NearDuplicates [][2]int
	Warnings       []string
}

// ReviewBatch flags correct-answer clustering on one letter and pairs of
// questions whose wording overlaps heavily.
func ReviewBatch(questions []models.AcceptedQuestion) BatchReview {
	review := BatchReview{LetterCounts: make(map[string]int)}

	for _, q := range questions {
		if i, ok := scoring.ResolveAnswer(q.Options[:], q.CorrectAnswer); ok {
			review.LetterCounts[scoring.Letter(i)]++
		}
	}
	if len(questions) >= minBatchForClustering {
		for _, letter := range []string{"A", "B", "C", "D"} {
			if n := review.LetterCounts[letter]; float64(n) > letterClusterShare*float64(len(questions)) {
				review.Warnings = append(review.Warnings, "correct answers cluster on "+letter)
			}
		}
	}

	tokens := make([]map[string]bool, len(questions))
	for i, q := range questions {
		tokens[i] = tokenize(q.Text)
	}
	for i := 0; i < len(questions); i++ {
		for j := i + 1; j < len(questions); j++ {
			if jaccardSimilarity(tokens[i], tokens[j]) > nearDuplicateThreshold {
				review.NearDuplicates = append(review.NearDuplicates, [2]int{i, j})
			}
		}
	}
	if len(review.NearDuplicates) > 0 {
		review.Warnings = append(review.Warnings, "batch contains near-duplicate questions")
	}

	return review
}

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "to": true, "in": true, "is": true,
	"and": true, "or": true, "what": true, "which": true, "following": true, "does": true,
	"this": true, "that": true, "for": true, "be": true, "will": true, "it": true,
}

func tokenize(s string) map[string]bool {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_')
	})
	set := make(map[string]bool, len(words))
	for _, w := range words {
		if !stopWords[w] {
			set[w] = true
		}
	}
	return set
}

func jaccardSimilarity(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if b[w] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

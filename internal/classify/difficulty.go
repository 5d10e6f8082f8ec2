// Package classify holds the deterministic heuristics that label a source
// before generation: difficulty from chunk statistics, course from its name.
package classify

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/KDigitalAi/Assessments/internal/models"
)

var technicalTerms = []string{
	"function", "class", "method", "algorithm", "implementation",
	"complexity", "optimization", "architecture", "pattern",
}

const (
	easyMaxAvgLen   = 200
	easyMaxKeywords = 3
	hardMinAvgLen   = 500
	hardMinKeywords = 8
)

// Stats are the inputs of the difficulty heuristic.
type Stats struct {
	Chunks       int
	AvgLength    float64
	KeywordHits  int
	CodeDetected bool
}

var codeMarkers = regexp.MustCompile("(?m)(```|^\\s*(def|class|import|func|public|for|while|if)\\b.*[:{(]\\s*$|\\w+\\([^)]*\\)\\s*[;{:]|=>|->)")

// Analyze counts one keyword hit per (chunk, term) pair where the term
// appears, case-insensitively.
func Analyze(chunks []models.ContentChunk) Stats {
	s := Stats{Chunks: len(chunks)}
	if len(chunks) == 0 {
		return s
	}

	total := 0
	for _, c := range chunks {
		total += utf8.RuneCountInString(c.Text)
		lower := strings.ToLower(c.Text)
		for _, term := range technicalTerms {
			if strings.Contains(lower, term) {
				s.KeywordHits++
			}
		}
		if !s.CodeDetected && codeMarkers.MatchString(c.Text) {
			s.CodeDetected = true
		}
	}
	s.AvgLength = float64(total) / float64(len(chunks))
	return s
}

// DifficultyOf applies the thresholds to precomputed stats. No chunks
// means medium.
func DifficultyOf(s Stats) models.Difficulty {
	if s.Chunks == 0 {
		return models.DifficultyMedium
	}
	switch {
	case s.AvgLength < easyMaxAvgLen && s.KeywordHits < easyMaxKeywords:
		return models.DifficultyEasy
	case s.AvgLength > hardMinAvgLen || s.KeywordHits > hardMinKeywords:
		return models.DifficultyHard
	default:
		return models.DifficultyMedium
	}
}

func Difficulty(chunks []models.ContentChunk) models.Difficulty {
	return DifficultyOf(Analyze(chunks))
}

// IsTechnical reports whether the content warrants code-tracing questions.
func IsTechnical(chunks []models.ContentChunk) bool {
	s := Analyze(chunks)
	return s.CodeDetected || s.KeywordHits > 0
}

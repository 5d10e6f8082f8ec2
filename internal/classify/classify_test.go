package classify

import (
	"strings"
	"testing"

	"github.com/KDigitalAi/Assessments/internal/models"
)

// chunksOf builds n chunks of exactly length runes each, with the first
// `hits` chunks opening on the word "function".
func chunksOf(n, length, hits int) []models.ContentChunk {
	out := make([]models.ContentChunk, n)
	for i := range out {
		text := strings.Repeat("x", length)
		if i < hits {
			text = "function" + strings.Repeat("x", length-len("function"))
		}
		out[i] = models.ContentChunk{SourceID: "s", Ordinal: int64(i + 1), Text: text}
	}
	return out
}

func TestDifficulty_Boundaries(t *testing.T) {
	tests := []struct {
		name   string
		chunks []models.ContentChunk
		want   models.Difficulty
	}{
		{"avg 150 with 2 hits is easy", chunksOf(4, 150, 2), models.DifficultyEasy},
		{"avg 600 is hard", chunksOf(3, 600, 0), models.DifficultyHard},
		{"avg 300 with 4 hits is medium", chunksOf(5, 300, 4), models.DifficultyMedium},
		{"avg 150 with 3 hits is medium", chunksOf(4, 150, 3), models.DifficultyMedium},
		{"short but keyword heavy is hard", chunksOf(9, 100, 9), models.DifficultyHard},
		{"avg exactly 500 is medium", chunksOf(2, 500, 0), models.DifficultyMedium},
		{"avg exactly 200 is medium", chunksOf(2, 200, 0), models.DifficultyMedium},
		{"no chunks is medium", nil, models.DifficultyMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Difficulty(tt.chunks); got != tt.want {
				t.Errorf("expected %s, got %s (stats %+v)", tt.want, got, Analyze(tt.chunks))
			}
		})
	}
}

func TestAnalyze_CountsTermsPerChunk(t *testing.T) {
	chunks := []models.ContentChunk{
		{Text: "A Class has a method; another method follows."},
		{Text: "The algorithm and its complexity."},
		{Text: "plain prose"},
	}
	s := Analyze(chunks)
	// class + method in chunk 1, algorithm + complexity in chunk 2
	if s.KeywordHits != 4 {
		t.Errorf("expected 4 keyword hits, got %d", s.KeywordHits)
	}
	if s.Chunks != 3 {
		t.Errorf("expected 3 chunks, got %d", s.Chunks)
	}
}

func TestAnalyze_EndToEndSourceIsEasy(t *testing.T) {
	// 5 chunks, 250 characters total, one keyword hit
	chunks := chunksOf(5, 50, 1)
	s := Analyze(chunks)
	if s.AvgLength != 50 || s.KeywordHits != 1 {
		t.Fatalf("unexpected stats %+v", s)
	}
	if got := DifficultyOf(s); got != models.DifficultyEasy {
		t.Errorf("expected easy, got %s", got)
	}
}

func TestIsTechnical(t *testing.T) {
	code := []models.ContentChunk{{Text: "def add(a, b):\n    return a + b"}}
	if !IsTechnical(code) {
		t.Error("expected python snippet to be technical")
	}
	prose := []models.ContentChunk{{Text: "Good teams listen to each other and share credit."}}
	if IsTechnical(prose) {
		t.Error("expected plain prose to be non-technical")
	}
}

func TestCourse(t *testing.T) {
	tests := []struct {
		title, id, want string
	}{
		{"Docker Networking Deep Dive", "pdf-1", "DevOps"},
		{"Python on Kubernetes", "pdf-2", "DevOps"},
		{"Python Loops and Lists", "pdf-3", "Python"},
		{"Intro", "k8s-cluster-notes", "DevOps"},
		{"Decorators explained", "v-9", "Python"},
		{"JavaScript Promises", "x", "JavaScript"},
		{"Java Streams", "x", "Java"},
		{"Effective Communication at Work", "x", "Communication"},
		{"Digital Marketing Fundamentals", "abc", "Digital"},
		{"Introduction to Accounting", "abc", "Accounting"},
		{"", "doc-1", "General"},
		{"Document doc-1", "doc-1", "General"},
		{"A 101", "x", "General"},
	}
	for _, tt := range tests {
		t.Run(tt.title+"/"+tt.id, func(t *testing.T) {
			if got := Course(tt.title, tt.id); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCourse_WordBoundaries(t *testing.T) {
	// "digital" contains "git", "dataset" contains "set"; neither should match.
	if got := Course("Digital Dataset Handbook", "id"); got != "Digital" {
		t.Errorf("expected substring-free match to fall back to Digital, got %q", got)
	}
}

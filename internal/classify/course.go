package classify

import (
	"regexp"
	"strings"
	"unicode"
)

const FallbackCourse = "General"

type lexicon struct {
	label    string
	patterns []*regexp.Regexp
}

func newLexicon(label string, words ...string) lexicon {
	l := lexicon{label: label}
	for _, w := range words {
		l.patterns = append(l.patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(w)+`\b`))
	}
	return l
}

func (l lexicon) matches(text string) bool {
	for _, p := range l.patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// Checked in order: infrastructure first, so "python on kubernetes" is DevOps.
var lexicons = []lexicon{
	newLexicon("DevOps",
		"devops", "docker", "kubernetes", "k8s", "jenkins", "sonarqube", "linux", "git",
		"ci/cd", "ci-cd", "cicd", "terraform", "ansible", "aws", "azure", "gcp", "networking",
		"cloud", "container", "containers", "orchestration", "deployment", "infrastructure"),
	newLexicon("Python",
		"python", "datatypes", "loops", "functions", "classes", "list", "dict", "tuple", "set",
		"comprehension", "decorator", "decorators", "generator", "generators", "iterator",
		"iterators", "exception", "exceptions", "import", "package"),
	newLexicon("React", "react", "reactjs"),
	newLexicon("JavaScript", "javascript", "js"),
	newLexicon("TypeScript", "typescript", "ts"),
	newLexicon("Java", "java"),
	newLexicon("Problem Solving", "problem solving", "problem-solving"),
	newLexicon("Communication", "communication"),
	newLexicon("Teamwork", "teamwork", "collaboration"),
}

var genericWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "into": true, "from": true,
	"introduction": true, "intro": true, "document": true, "video": true, "pdf": true,
	"assessment": true, "lecture": true, "chapter": true, "module": true, "part": true,
	"lesson": true, "session": true, "notes": true, "course": true,
}

// Course maps a source title and id to a course label. The first matching
// lexicon wins; otherwise the first significant word of the title is used,
// and FallbackCourse when there is none.
func Course(title, sourceID string) string {
	text := strings.ToLower(title + " " + sourceID)
	for _, l := range lexicons {
		if l.matches(text) {
			return l.label
		}
	}
	if w := firstSignificantWord(title); w != "" {
		return w
	}
	return FallbackCourse
}

func firstSignificantWord(title string) string {
	for _, raw := range strings.Fields(title) {
		word := strings.TrimFunc(raw, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
		if len([]rune(word)) < 3 || genericWords[strings.ToLower(word)] {
			continue
		}
		if strings.IndexFunc(word, func(r rune) bool { return !unicode.IsLetter(r) }) >= 0 {
			continue
		}
		r := []rune(strings.ToLower(word))
		r[0] = unicode.ToUpper(r[0])
		return string(r)
	}
	return ""
}

package generator

import (
	"fmt"
	"strings"

	"github.com/KDigitalAi/Assessments/internal/models"
)

const knowledgeSystemPrompt = `You are an expert technical educator. You read course material and distill it into a structured knowledge summary that another author will use to write assessment questions.

Respond with JSON only. Do not add commentary.`

const questionSystemPrompt = `You are an expert assessment author who writes multiple-choice questions that test real understanding of course material.

Every question must be answerable from the material's concepts alone. Never refer to files, documents, videos, slides, timestamps, dates of recording, chunk numbers or any other storage details. Never ask for the name or title of the material.

Respond with a JSON array only. Do not add commentary.`

// BuildKnowledgePrompt asks for the knowledge summary schema.
func BuildKnowledgePrompt(content string) string {
	return fmt.Sprintf(`Analyze the following course material and extract the knowledge it teaches.

Material:
%s

Respond with this exact JSON structure:
{
  "topics": ["main topics covered"],
  "definitions": ["term: definition"],
  "code_examples": ["short code snippets with what they do"],
  "important_points": ["key facts and rules"],
  "advanced_concepts": ["deeper or tricky ideas"],
  "common_errors": ["typical mistakes learners make"]
}

Requirements:
- Use only what the material states or directly implies
- Keep each entry to one or two sentences
- Use empty arrays for categories the material does not cover`, content)
}

// QuestionPrompt is everything the question prompt is built from.
type QuestionPrompt struct {
	Target     int
	Topic      string
	Level      models.Difficulty
	Mix        models.DifficultyMix
	Archetypes ArchetypeMix
	Content    string
	Knowledge  models.KnowledgeSummary
}

func BuildQuestionPrompt(p QuestionPrompt) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate exactly %d multiple-choice questions about %s.\n\n", p.Target, p.Topic)
	fmt.Fprintf(&b, "Overall material level: %s\n", p.Level)
	fmt.Fprintf(&b, "Difficulty distribution: %d easy, %d medium, %d hard\n\n", p.Mix.Easy, p.Mix.Medium, p.Mix.Hard)

	b.WriteString("Question types (minimum counts):\n")
	if p.Archetypes.CodeTracing > 0 {
		fmt.Fprintf(&b, "- At least %d code-tracing or debugging questions: show a short snippet and ask for its output, the bug, or the fix\n", p.Archetypes.CodeTracing)
	}
	if p.Archetypes.Conceptual > 0 {
		fmt.Fprintf(&b, "- At least %d conceptual-reasoning questions: why something works, how two ideas differ, what happens if a rule is broken\n", p.Archetypes.Conceptual)
	}
	if p.Archetypes.Scenario > 0 {
		fmt.Fprintf(&b, "- At least %d applied-scenario questions: a realistic situation where the learner must choose the right approach\n", p.Archetypes.Scenario)
	}

	if summary := formatKnowledge(p.Knowledge); summary != "" {
		b.WriteString("\nKnowledge summary of the material:\n")
		b.WriteString(summary)
	}

	b.WriteString("\nMaterial:\n")
	b.WriteString(p.Content)
	b.WriteString("\n\n")

	b.WriteString(`Respond with this exact JSON structure:
[
  {
    "question": "...",
    "options": ["...", "...", "...", "..."],
    "correct_answer": "B",
    "explanation": "...",
    "difficulty": "easy",
    "topic": "..."
  }
]

Requirements:
- Exactly 4 options per question, all plausible, none empty
- "correct_answer" is the letter A, B, C or D of the correct option
- Vary the position of the correct answer across A-D; do not cluster
- "difficulty" is one of easy, medium, hard
- "topic" names the concept tested, not the material
- Every question is at least one full sentence
- Do not ask generic definition questions such as "What is Python?" or "What is a variable?"
- Do not mention file names, video titles, timestamps, chunks, embeddings or metadata`)

	return b.String()
}

func formatKnowledge(k models.KnowledgeSummary) string {
	if k.IsEmpty() {
		return ""
	}
	var b strings.Builder
	section := func(title string, items []string, limit int) {
		if len(items) == 0 {
			return
		}
		if len(items) > limit {
			items = items[:limit]
		}
		fmt.Fprintf(&b, "%s:\n", title)
		for _, it := range items {
			fmt.Fprintf(&b, "- %s\n", it)
		}
	}
	section("Topics", k.Topics, 10)
	section("Definitions", k.Definitions, 10)
	section("Code examples", k.CodeExamples, 5)
	section("Important points", k.ImportantPoints, 10)
	section("Advanced concepts", k.AdvancedConcepts, 5)
	section("Common errors", k.CommonErrors, 5)
	return b.String()
}

// BuildContent joins chunk texts and cuts the result at maxChars runes,
// appending "..." when anything was dropped.
func BuildContent(chunks []models.ContentChunk, maxChars int) string {
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if t := strings.TrimSpace(c.Text); t != "" {
			parts = append(parts, t)
		}
	}
	content := strings.Join(parts, "\n\n")

	if maxChars <= 0 {
		return content
	}
	runes := []rune(content)
	if len(runes) <= maxChars {
		return content
	}
	return string(runes[:maxChars]) + "..."
}

package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"github.com/KDigitalAi/Assessments/internal/models"
)

// MockClient returns canned, valid responses for local runs without a
// model: a fixed knowledge summary, or as many questions as the prompt asks
// for.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

var requestedCount = regexp.MustCompile(`Generate exactly (\d+) multiple-choice questions about (.+?)\.\n`)

func (m *MockClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrapCompletionErr("mock", err)
	}

	if req.SystemPrompt == knowledgeSystemPrompt {
		return &CompletionResponse{Content: buildMockKnowledge(), PromptTokens: 800, OutputTokens: 300}, nil
	}

	count, topic := 20, "the material"
	if m := requestedCount.FindStringSubmatch(req.UserPrompt); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			count = n
		}
		topic = m[2]
	}
	return &CompletionResponse{Content: buildMockQuestions(count, topic), PromptTokens: 4000, OutputTokens: 6000}, nil
}

func buildMockKnowledge() string {
	data, _ := json.Marshal(models.KnowledgeSummary{
		Topics:          []string{"control flow", "data structures"},
		Definitions:     []string{"iteration: repeating a block for each element"},
		ImportantPoints: []string{"mutating a collection while iterating over it is unsafe"},
	})
	return "```json\n" + string(data) + "\n```"
}

func buildMockQuestions(count int, topic string) string {
	mix := SplitDifficulty(count)
	difficulties := make([]models.Difficulty, 0, count)
	for i := 0; i < mix.Easy; i++ {
		difficulties = append(difficulties, models.DifficultyEasy)
	}
	for i := 0; i < mix.Medium; i++ {
		difficulties = append(difficulties, models.DifficultyMedium)
	}
	for i := 0; i < mix.Hard; i++ {
		difficulties = append(difficulties, models.DifficultyHard)
	}

	questions := make([]models.CandidateQuestion, count)
	for i := range questions {
		questions[i] = models.CandidateQuestion{
			QuestionText: fmt.Sprintf("[Mock %d] When applying %s in practice, which approach best avoids the most common mistake?", i+1, topic),
			Options: []string{
				fmt.Sprintf("Validate inputs before step %d", i+1),
				fmt.Sprintf("Skip error handling in step %d", i+1),
				fmt.Sprintf("Repeat step %d without checks", i+1),
				fmt.Sprintf("Ignore the result of step %d", i+1),
			},
			CorrectAnswer: string(rune('A' + i%4)),
			Explanation:   fmt.Sprintf("[Mock] Option %c is the practice the material recommends.", 'A'+i%4),
			Difficulty:    string(difficulties[i]),
			Topic:         topic,
		}
	}
	data, _ := json.Marshal(questions)
	return string(data)
}

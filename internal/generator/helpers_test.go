package generator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/KDigitalAi/Assessments/internal/models"
)

func validCandidate(i int) models.CandidateQuestion {
	return models.CandidateQuestion{
		QuestionText:  fmt.Sprintf("Question %d: what does the snippet print when the loop runs twice over items?", i),
		Options:       []string{"0", "1", "2", "An error is raised"},
		CorrectAnswer: "C",
		Explanation:   "The loop body executes once per item, so the counter reaches 2.",
		Difficulty:    "medium",
		Topic:         "loops",
	}
}

func validCandidatesJSON(count int) string {
	qs := make([]models.CandidateQuestion, count)
	for i := range qs {
		qs[i] = validCandidate(i + 1)
	}
	data, _ := json.Marshal(qs)
	return string(data)
}

// fakeClient replays responses in order; a non-nil error at the same index
// is returned instead of the response.
type fakeClient struct {
	responses []string
	errs      []error
	requests  []CompletionRequest
}

func (f *fakeClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	i := len(f.requests)
	f.requests = append(f.requests, req)
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i >= len(f.responses) {
		return nil, fmt.Errorf("fakeClient: no response for call %d", i+1)
	}
	return &CompletionResponse{Content: f.responses[i]}, nil
}

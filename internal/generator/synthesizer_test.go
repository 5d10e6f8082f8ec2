package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/KDigitalAi/Assessments/internal/models"
)

func newTestSynthesizer(c CompletionClient) *Synthesizer {
	return NewSynthesizer(c, SynthesizerConfig{MaxContentChars: 12000, Temperature: 0.8, MaxTokens: 10000})
}

func TestSynthesizer_ReturnsCandidates(t *testing.T) {
	client := &fakeClient{responses: []string{"```json\n" + validCandidatesJSON(20) + "\n```"}}

	got, err := newTestSynthesizer(client).Synthesize(context.Background(), GenerationRequest{
		SourceID:  "doc-1",
		Topic:     "Python",
		Level:     models.DifficultyEasy,
		Target:    20,
		Technical: true,
		Chunks:    someChunks,
		Knowledge: models.KnowledgeSummary{Topics: []string{"loops"}},
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(got) != 20 {
		t.Errorf("expected 20 candidates, got %d", len(got))
	}

	req := client.requests[0]
	if req.Temperature != 0.8 || req.MaxTokens != 10000 {
		t.Errorf("expected generation settings 0.8/10000, got %v/%d", req.Temperature, req.MaxTokens)
	}
	if !strings.Contains(req.UserPrompt, "Loops repeat a block of code.") {
		t.Error("expected chunk text in prompt")
	}
}

func TestSynthesizer_DecodeFailureIsParseError(t *testing.T) {
	client := &fakeClient{responses: []string{"[{\"question\": "}}
	_, err := newTestSynthesizer(client).Synthesize(context.Background(), GenerationRequest{Target: 20, Chunks: someChunks})
	if !errors.Is(err, ErrMalformedJSON) {
		t.Errorf("expected ErrMalformedJSON, got: %v", err)
	}
}

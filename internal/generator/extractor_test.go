package generator

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/KDigitalAi/Assessments/internal/models"
)

var someChunks = []models.ContentChunk{{SourceID: "doc-1", Ordinal: 1, Text: "Loops repeat a block of code."}}

func newTestExtractor(c CompletionClient) *Extractor {
	return NewExtractor(c, ExtractorConfig{MaxContentChars: 12000, Temperature: 0.3, MaxTokens: 4000})
}

func TestExtractor_ParsesSummary(t *testing.T) {
	client := &fakeClient{responses: []string{"```json\n{\"topics\": [\"loops\"], \"important_points\": [\"range stops early\"]}\n```"}}

	summary, err := newTestExtractor(client).Extract(context.Background(), someChunks)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(summary.Topics) != 1 || summary.Topics[0] != "loops" {
		t.Errorf("unexpected summary: %+v", summary)
	}
	req := client.requests[0]
	if req.Temperature != 0.3 || req.MaxTokens != 4000 {
		t.Errorf("expected extraction settings 0.3/4000, got %v/%d", req.Temperature, req.MaxTokens)
	}
}

func TestExtractor_FailuresDegradeToEmptySummary(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeClient
		kind   error
	}{
		{"timeout", &fakeClient{errs: []error{fmt.Errorf("anthropic: %w", ErrTimeout)}}, ErrTimeout},
		{"malformed", &fakeClient{responses: []string{"{not json"}}, ErrMalformedJSON},
		{"empty", &fakeClient{responses: []string{"  "}}, ErrEmptyResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary, err := newTestExtractor(tt.client).Extract(context.Background(), someChunks)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var ee *ExtractionError
			if !errors.As(err, &ee) {
				t.Errorf("expected *ExtractionError, got %T", err)
			}
			if !errors.Is(err, tt.kind) {
				t.Errorf("expected %v, got: %v", tt.kind, err)
			}
			if !summary.IsEmpty() {
				t.Errorf("expected empty summary, got %+v", summary)
			}
		})
	}
}

func TestExtractor_NoContentSkipsCall(t *testing.T) {
	client := &fakeClient{}
	_, err := newTestExtractor(client).Extract(context.Background(), nil)
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got: %v", err)
	}
	if len(client.requests) != 0 {
		t.Errorf("expected no completion call, got %d", len(client.requests))
	}
}

package generator

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/KDigitalAi/Assessments/internal/models"
)

type ExtractorConfig struct {
	MaxContentChars int
	Temperature     float64
	MaxTokens       int
}

// Extractor condenses a source's chunks into a KnowledgeSummary with one
// completion call.
type Extractor struct {
	llm CompletionClient
	cfg ExtractorConfig
}

func NewExtractor(llm CompletionClient, cfg ExtractorConfig) *Extractor {
	return &Extractor{llm: llm, cfg: cfg}
}

// Extract returns the summary, or an empty summary and an *ExtractionError.
// Callers may always use the returned summary.
func (e *Extractor) Extract(ctx context.Context, chunks []models.ContentChunk) (models.KnowledgeSummary, error) {
	content := BuildContent(chunks, e.cfg.MaxContentChars)
	if content == "" {
		return models.KnowledgeSummary{}, &ExtractionError{Err: &ParseError{Kind: ErrEmptyResponse, Detail: "no content to summarize"}}
	}

	resp, err := e.llm.Complete(ctx, CompletionRequest{
		SystemPrompt: knowledgeSystemPrompt,
		UserPrompt:   BuildKnowledgePrompt(content),
		Temperature:  e.cfg.Temperature,
		MaxTokens:    e.cfg.MaxTokens,
	})
	if err != nil {
		return models.KnowledgeSummary{}, &ExtractionError{Err: err}
	}

	var summary models.KnowledgeSummary
	if err := parseObject(resp.Content, &summary); err != nil {
		return models.KnowledgeSummary{}, &ExtractionError{Err: err}
	}

	log.Debug().
		Int("topics", len(summary.Topics)).
		Int("definitions", len(summary.Definitions)).
		Int("code_examples", len(summary.CodeExamples)).
		Int("output_tokens", resp.OutputTokens).
		Msg("knowledge extracted")

	return summary, nil
}

package generator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/KDigitalAi/Assessments/internal/models"
)

type SynthesizerConfig struct {
	MaxContentChars int
	Temperature     float64
	MaxTokens       int
}

// GenerationRequest describes one batch to generate for a source.
type GenerationRequest struct {
	SourceID  string
	Topic     string
	Level     models.Difficulty
	Target    int
	Technical bool
	Chunks    []models.ContentChunk
	Knowledge models.KnowledgeSummary
}

// Synthesizer turns a GenerationRequest into candidate questions with one
// completion call.
type Synthesizer struct {
	llm CompletionClient
	cfg SynthesizerConfig
}

func NewSynthesizer(llm CompletionClient, cfg SynthesizerConfig) *Synthesizer {
	return &Synthesizer{llm: llm, cfg: cfg}
}

func (s *Synthesizer) Synthesize(ctx context.Context, req GenerationRequest) ([]models.CandidateQuestion, error) {
	prompt := BuildQuestionPrompt(QuestionPrompt{
		Target:     req.Target,
		Topic:      req.Topic,
		Level:      req.Level,
		Mix:        SplitDifficulty(req.Target),
		Archetypes: PlanArchetypes(req.Target, req.Technical),
		Content:    BuildContent(req.Chunks, s.cfg.MaxContentChars),
		Knowledge:  req.Knowledge,
	})

	resp, err := s.llm.Complete(ctx, CompletionRequest{
		SystemPrompt: questionSystemPrompt,
		UserPrompt:   prompt,
		Temperature:  s.cfg.Temperature,
		MaxTokens:    s.cfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	candidates, err := ParseCandidates(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("parse questions: %w", err)
	}

	log.Debug().
		Str("source_id", req.SourceID).
		Int("candidates", len(candidates)).
		Int("prompt_tokens", resp.PromptTokens).
		Int("output_tokens", resp.OutputTokens).
		Msg("questions synthesized")

	return candidates, nil
}

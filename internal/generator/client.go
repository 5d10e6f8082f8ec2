package generator

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	"github.com/rs/zerolog/log"

	"github.com/KDigitalAi/Assessments/internal/config"
)

// CompletionClient is the one call every backend provides.
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int
}

// CompletionResponse holds the raw response text and token usage.
type CompletionResponse struct {
	Content      string
	PromptTokens int
	OutputTokens int
}

// NewCompletionClient picks the backend named by cfg.Provider.
func NewCompletionClient(cfg config.CompletionConfig) (CompletionClient, error) {
	switch cfg.Provider {
	case "anthropic":
		log.Info().Str("model", cfg.AnthropicModel).Msg("completion backend: Anthropic API")
		return NewAPIClient(cfg.AnthropicKey, cfg.AnthropicModel, cfg.Timeout), nil
	case "openai":
		log.Info().Str("model", cfg.OpenAIModel).Msg("completion backend: OpenAI-compatible API")
		return NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, cfg.Timeout)
	case "cli":
		log.Info().Str("path", cfg.CLIPath).Msg("completion backend: local CLI")
		return NewCLIClient(cfg.CLIPath, cfg.Timeout), nil
	case "mock":
		log.Info().Msg("completion backend: mock data")
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.Provider)
	}
}

// ── APIClient: Anthropic SDK ─────────────────────────────

type APIClient struct {
	client *anthropic.Client
	model  string
}

func NewAPIClient(apiKey, model string, timeout time.Duration) *APIClient {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
		option.WithMaxRetries(2),
	)
	return &APIClient{client: &client, model: model}
}

func (c *APIClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: param.NewOpt(req.Temperature),
		System: []anthropic.TextBlockParam{
			{Text: req.SystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserPrompt)),
		},
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, wrapCompletionErr("anthropic", err)
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("anthropic: %w", ErrEmptyResponse)
	}

	return &CompletionResponse{
		Content:      responseText,
		PromptTokens: int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}

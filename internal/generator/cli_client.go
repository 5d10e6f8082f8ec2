package generator

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// CLIClient pipes the user prompt into a local model CLI for development
// runs. The CLI picks its own sampling settings, so Temperature and
// MaxTokens are ignored.
type CLIClient struct {
	path    string
	timeout time.Duration
}

func NewCLIClient(path string, timeout time.Duration) *CLIClient {
	return &CLIClient{path: path, timeout: timeout}
}

func (c *CLIClient) args(req CompletionRequest) []string {
	args := []string{"--print", "--output-format", "text", "--max-turns", "1"}
	if req.SystemPrompt != "" {
		args = append(args, "--system-prompt", req.SystemPrompt)
	}
	return args
}

func (c *CLIClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return nil, wrapCompletionErr("cli", err)
	}

	cmd := exec.CommandContext(ctx, c.path, c.args(req)...)
	cmd.Stdin = strings.NewReader(req.UserPrompt)
	cmd.WaitDelay = time.Second

	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, wrapCompletionErr("cli", ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("cli: %w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, wrapCompletionErr("cli", err)
	}

	text := strings.TrimSpace(string(out))
	if text == "" {
		return nil, fmt.Errorf("cli: %w", ErrEmptyResponse)
	}
	return &CompletionResponse{Content: text}, nil
}

package generate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Anthropic completes prompts through the Anthropic Messages API.
type Anthropic struct {
	client *anthropic.Client
	model  anthropic.Model
}

// NewAnthropic creates a generator. Empty baseURL and apiKey fall back to the
// SDK defaults (api.anthropic.com and ANTHROPIC_API_KEY).
func NewAnthropic(baseURL, apiKey, model string, timeout time.Duration) *Anthropic {
	var opts []option.RequestOption
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}
	client := anthropic.NewClient(opts...)
	return &Anthropic{client: &client, model: anthropic.Model(model)}
}

func (a *Anthropic) Complete(ctx context.Context, r Request) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       a.model,
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(r.Prompt))},
		MaxTokens:   int64(r.MaxTokens),
		Temperature: anthropic.Float(r.Temperature),
		TopP:        anthropic.Float(r.TopP),
	}
	// The Messages API rejects whitespace-only stop sequences.
	for _, s := range r.Stop {
		if strings.TrimSpace(s) != "" {
			params.StopSequences = append(params.StopSequences, s)
		}
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}
	return sb.String(), nil
}

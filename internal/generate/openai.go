package generate

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI completes prompts through any OpenAI-compatible Chat Completions API.
// The prompt is sent as a single user message.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates a generator. Empty baseURL and apiKey fall back to the
// SDK defaults (api.openai.com and OPENAI_API_KEY).
func NewOpenAI(baseURL, apiKey, model string, timeout time.Duration) *OpenAI {
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
		model = openai.ChatModelGPT4oMini
	}
	client := openai.NewClient(opts...)
	return &OpenAI{client: &client, model: model}
}

func (o *OpenAI) Complete(ctx context.Context, r Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages:            []openai.ChatCompletionMessageParamUnion{openai.UserMessage(r.Prompt)},
		Model:               o.model,
		Temperature:         openai.Float(r.Temperature),
		TopP:                openai.Float(r.TopP),
		MaxCompletionTokens: openai.Int(int64(r.MaxTokens)),
	}
	if len(r.Stop) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: r.Stop}
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

package adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const deepseekBaseURL = "https://api.deepseek.com/v1"

// OpenAIAdapter implements the Adapter interface for OpenAI models and
// OpenAI-compatible endpoints such as DeepSeek.
type OpenAIAdapter struct {
	client openai.Client
	name   string
	models []string
}

// NewOpenAIAdapter creates a new OpenAI adapter.
func NewOpenAIAdapter(apiKey string) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIAdapter{
		client: client,
		name:   "openai",
		models: []string{"gpt-4o-mini", "gpt-4o"},
	}, nil
}

// NewDeepSeekAdapter creates an adapter for DeepSeek's OpenAI-compatible API.
func NewDeepSeekAdapter(apiKey string) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("deepseek API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey), option.WithBaseURL(deepseekBaseURL))
	return &OpenAIAdapter{
		client: client,
		name:   "deepseek",
		models: []string{"deepseek-chat"},
	}, nil
}

// Name returns the adapter identifier.
func (a *OpenAIAdapter) Name() string {
	return a.name
}

// Models returns the list of supported models.
func (a *OpenAIAdapter) Models() []string {
	return a.models
}

// Generate sends a prompt as a single user message and returns the first choice.
func (a *OpenAIAdapter) Generate(ctx context.Context, model string, prompt string) (*Response, error) {
	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxCompletionTokens: openai.Int(2048),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, providerError(a.name, apiErr.StatusCode, err)
		}
		return nil, fmt.Errorf("%s API error: %w", a.name, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s returned no choices", a.name)
	}

	usage := &Usage{
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:      int(resp.Usage.TotalTokens),
	}
	return newResponse(resp.Choices[0].Message.Content, a.Name(), model, usage), nil
}

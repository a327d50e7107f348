package adapter

import (
	"context"
	"fmt"
)

// Adapter defines the interface for LLM provider adapters.
type Adapter interface {
	// Generate sends a prompt to the model and returns its text output.
	Generate(ctx context.Context, model string, prompt string) (*Response, error)

	// Name returns the adapter's identifier.
	Name() string

	// Models returns the list of supported models.
	Models() []string
}

// New builds the adapter for a provider name.
func New(provider, apiKey string) (Adapter, error) {
	switch provider {
	case "google":
		return NewGoogleAdapter(apiKey)
	case "openai":
		return NewOpenAIAdapter(apiKey)
	case "deepseek":
		return NewDeepSeekAdapter(apiKey)
	case "anthropic":
		return NewAnthropicAdapter(apiKey)
	case "mock":
		return NewMockAdapter(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}

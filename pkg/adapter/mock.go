package adapter

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// MockAdapter returns deterministic responses for local runs and tests.
type MockAdapter struct {
	responses       map[string]string
	defaultResponse string
	Usage           *Usage
	// Err, when set, is returned by every call.
	Err error
	// Delay holds each call until it elapses or the context ends.
	Delay time.Duration

	mu      sync.Mutex
	prompts []string
}

// NewMockAdapter creates a mock adapter with a default response.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{
		responses:       make(map[string]string),
		defaultResponse: "mock response:",
	}
}

// NewMockAdapterWithResponses creates a mock adapter with predefined responses.
// Keys are matched as substrings of the prompt, so a key may name a fragment
// such as the candidate answer embedded in it.
func NewMockAdapterWithResponses(responses map[string]string, defaultResponse string) *MockAdapter {
	if defaultResponse == "" {
		defaultResponse = "mock response:"
	}
	return &MockAdapter{responses: responses, defaultResponse: defaultResponse}
}

// Name returns the adapter identifier.
func (a *MockAdapter) Name() string {
	return "mock"
}

// Models returns the list of supported mock models.
func (a *MockAdapter) Models() []string {
	return []string{"mock-1"}
}

// Prompts returns the prompts received so far.
func (a *MockAdapter) Prompts() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.prompts...)
}

// Generate returns the configured response for the prompt.
func (a *MockAdapter) Generate(ctx context.Context, model string, prompt string) (*Response, error) {
	a.mu.Lock()
	a.prompts = append(a.prompts, prompt)
	a.mu.Unlock()

	if model == "" {
		model = "mock-1"
	}
	if a.Delay > 0 {
		timer := time.NewTimer(a.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	if a.Err != nil {
		return nil, a.Err
	}
	if prompt == "" {
		return newResponse(a.defaultResponse, a.Name(), model, a.Usage), nil
	}
	if response, ok := a.responses[prompt]; ok {
		return newResponse(response, a.Name(), model, a.Usage), nil
	}
	for key, response := range a.responses {
		if key != "" && strings.Contains(prompt, key) {
			return newResponse(response, a.Name(), model, a.Usage), nil
		}
	}
	content := fmt.Sprintf("%s\n%s", a.defaultResponse, prompt)
	return newResponse(content, a.Name(), model, a.Usage), nil
}

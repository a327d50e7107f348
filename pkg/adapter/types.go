package adapter

import "time"

// Usage captures normalized token usage.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response wraps an adapter output and optional usage data.
type Response struct {
	Content string
	Adapter string
	Model   string
	Usage   *Usage
}

// CallReport captures adapter call metadata.
type CallReport struct {
	Adapter string        `json:"adapter"`
	Model   string        `json:"model"`
	Usage   Usage         `json:"usage"`
	Latency time.Duration `json:"latency"`
	Error   string        `json:"error,omitempty"`
}

func newResponse(content, adapter, model string, usage *Usage) *Response {
	return &Response{Content: content, Adapter: adapter, Model: model, Usage: usage}
}

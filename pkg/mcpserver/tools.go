// Package mcpserver exposes answer evaluation and the site assistant as
// MCP tools over stdio.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/zen-systems/acemock/pkg/assistant"
	"github.com/zen-systems/acemock/pkg/engine"
	"github.com/zen-systems/acemock/pkg/scoring"
)

// Engine is the part of engine.Engine the tools call.
type Engine interface {
	EvaluateAnswer(ctx context.Context, req engine.EvaluationRequest) scoring.Result
	Chat(ctx context.Context, req engine.ChatRequest) assistant.Reply
}

// MetadataEvaluateAnswer describes the evaluate_answer tool.
var MetadataEvaluateAnswer = &mcp.Tool{
	Name: "evaluate_answer",
	Description: "Rate a candidate's answer to an interview question on a 1-5 scale with short feedback. " +
		"Uses the configured model when available and a local heuristic otherwise.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"question", "candidate_answer"},
		"properties": map[string]interface{}{
			"question": map[string]interface{}{
				"type":        "string",
				"description": "The interview question",
			},
			"reference_answer": map[string]interface{}{
				"type":        "string",
				"description": "Optional expected answer to compare against",
			},
			"candidate_answer": map[string]interface{}{
				"type":        "string",
				"description": "The answer given by the candidate",
			},
		},
	},
}

// InputEvaluateAnswer is the input for the evaluate_answer tool.
type InputEvaluateAnswer struct {
	Question        string `json:"question"`
	ReferenceAnswer string `json:"reference_answer"`
	CandidateAnswer string `json:"candidate_answer"`
}

// OutputEvaluateAnswer is the output for the evaluate_answer tool.
type OutputEvaluateAnswer struct {
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
	// Source is "model" or "heuristic".
	Source string `json:"source"`
}

// MetadataAssistantChat describes the assistant_chat tool.
var MetadataAssistantChat = &mcp.Tool{
	Name: "assistant_chat",
	Description: "Answer a message sent to the AceMock site assistant. " +
		"The reply may carry a navigate action with a site URL.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"message"},
		"properties": map[string]interface{}{
			"message": map[string]interface{}{
				"type":        "string",
				"description": "The user's message",
			},
			"current_url": map[string]interface{}{
				"type":        "string",
				"description": "Page the user is on. Defaults to /",
			},
			"routes": map[string]interface{}{
				"type":        "array",
				"description": "Site routes the assistant may navigate to",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"url":   map[string]interface{}{"type": "string"},
						"label": map[string]interface{}{"type": "string"},
					},
				},
			},
		},
	},
}

// InputAssistantChat is the input for the assistant_chat tool.
type InputAssistantChat struct {
	Message    string            `json:"message"`
	CurrentURL string            `json:"current_url"`
	Routes     []assistant.Route `json:"routes"`
}

// OutputAssistantChat is the output for the assistant_chat tool.
type OutputAssistantChat struct {
	Reply  string            `json:"reply"`
	Action *assistant.Action `json:"action,omitempty"`
}

// Tools binds the tool handlers to an engine.
type Tools struct {
	engine Engine
}

// NewTools returns handlers backed by eng.
func NewTools(eng Engine) *Tools {
	return &Tools{engine: eng}
}

// EvaluateAnswer handles evaluate_answer.
func (t *Tools) EvaluateAnswer(ctx context.Context, _ *mcp.CallToolRequest, input InputEvaluateAnswer) (*mcp.CallToolResult, OutputEvaluateAnswer, error) {
	if input.Question == "" || input.CandidateAnswer == "" {
		return nil, OutputEvaluateAnswer{}, fmt.Errorf("question and candidate_answer are required")
	}

	result := t.engine.EvaluateAnswer(ctx, engine.EvaluationRequest{
		Question:        input.Question,
		ReferenceAnswer: input.ReferenceAnswer,
		CandidateAnswer: input.CandidateAnswer,
	})
	return nil, OutputEvaluateAnswer{
		Rating:   result.Rating,
		Feedback: result.Feedback,
		Source:   string(result.Source),
	}, nil
}

// AssistantChat handles assistant_chat.
func (t *Tools) AssistantChat(ctx context.Context, _ *mcp.CallToolRequest, input InputAssistantChat) (*mcp.CallToolResult, OutputAssistantChat, error) {
	if input.Message == "" {
		return nil, OutputAssistantChat{}, fmt.Errorf("message is required")
	}

	reply := t.engine.Chat(ctx, engine.ChatRequest{
		Message:    input.Message,
		CurrentURL: input.CurrentURL,
		Routes:     input.Routes,
	})
	return nil, OutputAssistantChat{Reply: reply.Reply, Action: reply.Action}, nil
}

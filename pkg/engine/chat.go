package engine

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/zen-systems/acemock/pkg/assistant"
	"github.com/zen-systems/acemock/pkg/modeljson"
)

// ChatRequest is one assistant message with the client's page context.
type ChatRequest struct {
	Message    string
	CurrentURL string
	Routes     []assistant.Route
}

type modelReply struct {
	Reply  any             `json:"reply"`
	Action json.RawMessage `json:"action"`
}

// Chat answers an assistant message. The rule responder answers whenever
// the model is unconfigured, fails or returns an unusable reply.
func (e *Engine) Chat(ctx context.Context, req ChatRequest) assistant.Reply {
	fallback := func() assistant.Reply {
		return e.responder.Respond(req.Message)
	}

	if !e.Configured() {
		e.log(ctx).Debug("no model credentials, using rule responder")
		return fallback()
	}

	text, err := e.generate(ctx, "chat", chatPrompt(req))
	if err != nil {
		e.logFallback(ctx, "chat", "provider call failed", err)
		return fallback()
	}

	reply, err := parseReply(text)
	if err != nil {
		e.logFallback(ctx, "chat", "unusable model output", err)
		e.log(ctx).Debug("raw model output", zap.String("text", text))
		return fallback()
	}
	return reply
}

func parseReply(text string) (assistant.Reply, error) {
	var out modelReply
	if err := modeljson.Object(text, &out); err != nil {
		return assistant.Reply{}, err
	}

	reply, ok := out.Reply.(string)
	if !ok || strings.TrimSpace(reply) == "" {
		return assistant.Reply{}, errors.New("reply missing or not a string")
	}

	result := assistant.Reply{Reply: reply}
	if action := navigateAction(out.Action); action != nil {
		result.Action = action
	}
	return result, nil
}

// navigateAction keeps an action only when it is a navigate directive with
// a string URL. Anything else is dropped.
func navigateAction(raw json.RawMessage) *assistant.Action {
	if len(raw) == 0 {
		return nil
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	typ, _ := fields["type"].(string)
	url, ok := fields["url"].(string)
	if typ != assistant.ActionNavigate || !ok {
		return nil
	}
	return &assistant.Action{Type: assistant.ActionNavigate, URL: url}
}

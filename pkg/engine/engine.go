// Package engine decides, per request, whether an answer evaluation or a
// chat reply comes from the configured generative model or from the local
// evaluators. Model failures never reach the caller.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/zen-systems/acemock/pkg/adapter"
	"github.com/zen-systems/acemock/pkg/assistant"
	"github.com/zen-systems/acemock/pkg/config"
	"github.com/zen-systems/acemock/pkg/logging"
)

// ErrModelUnavailable is returned by operations that have no local fallback
// when no provider credentials are configured.
var ErrModelUnavailable = errors.New("generative model unavailable")

// Engine routes requests to the model or to the local fallbacks.
// It is safe for concurrent use.
type Engine struct {
	adapter       adapter.Adapter
	model         string
	timeout       time.Duration
	questionCount int
	responder     *assistant.Responder
	logger        *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithAdapter replaces the adapter built from the credentials. A nil
// adapter puts the engine in offline mode.
func WithAdapter(a adapter.Adapter) Option {
	return func(e *Engine) { e.adapter = a }
}

// WithResponder sets the rule responder used for chat fallbacks.
func WithResponder(r *assistant.Responder) Option {
	return func(e *Engine) { e.responder = r }
}

// WithQuestionCount sets the default number of generated questions.
func WithQuestionCount(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.questionCount = n
		}
	}
}

// New binds credentials once. Unconfigured credentials are valid and make
// every request use the local evaluators.
func New(creds config.Credentials, model string, timeout time.Duration, logger *zap.Logger, opts ...Option) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = config.DefaultModelTimeout
	}
	if model == "" {
		model = config.DefaultModel
	}

	e := &Engine{
		model:         model,
		timeout:       timeout,
		questionCount: config.DefaultQuestionCount,
		responder:     &assistant.Responder{},
		logger:        logger,
	}

	if c, ok := creds.(config.Configured); ok {
		a, err := adapter.New(c.Provider, c.APIKey)
		if err != nil {
			return nil, fmt.Errorf("create %s adapter: %w", c.Provider, err)
		}
		e.adapter = a
	}

	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// FromConfig builds an Engine from loaded configuration.
func FromConfig(cfg *config.Config, logger *zap.Logger, opts ...Option) (*Engine, error) {
	opts = append([]Option{WithQuestionCount(cfg.QuestionCount)}, opts...)
	return New(cfg.Credentials(), cfg.Model, cfg.ModelTimeout, logger, opts...)
}

// Configured reports whether a provider is bound.
func (e *Engine) Configured() bool {
	return e.adapter != nil
}

// Model returns the model name sent to the provider.
func (e *Engine) Model() string {
	return e.model
}

// Models lists the models the bound provider serves, or nil when
// unconfigured.
func (e *Engine) Models() []string {
	if e.adapter == nil {
		return nil
	}
	return e.adapter.Models()
}

// generate performs one bounded provider call and records it.
func (e *Engine) generate(ctx context.Context, op, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	resp, err := e.adapter.Generate(ctx, e.model, prompt)
	report := adapter.CallReport{
		Adapter: e.adapter.Name(),
		Model:   e.model,
		Latency: time.Since(start),
	}
	if err == nil && resp == nil {
		err = errors.New("provider returned no response")
	}
	if err != nil {
		report.Error = err.Error()
	} else if resp.Usage != nil {
		report.Usage = *resp.Usage
	}

	e.log(ctx).Debug("model call",
		zap.String("op", op),
		zap.String("adapter", report.Adapter),
		zap.String("model", report.Model),
		zap.Duration("latency", report.Latency),
		zap.Int("prompt_tokens", report.Usage.PromptTokens),
		zap.Int("completion_tokens", report.Usage.CompletionTokens),
		zap.String("error", report.Error),
	)

	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// log prefers the request-scoped logger carried by ctx.
func (e *Engine) log(ctx context.Context) *zap.Logger {
	return logging.FromContext(ctx, e.logger)
}

func (e *Engine) logFallback(ctx context.Context, op, reason string, err error) {
	e.log(ctx).Warn("using local fallback",
		zap.String("op", op),
		zap.String("reason", reason),
		zap.String("failure", string(adapter.Classify(err))),
		zap.Bool("transient", adapter.IsTransient(err)),
		zap.Error(err),
	)
}

package config

import (
	"fmt"
	"sort"
)

// ModelAliases manages model alias resolution and validation.
type ModelAliases struct {
	Aliases   map[string]string   `yaml:"aliases"`
	Providers map[string][]string `yaml:"providers"`
}

// Merge adds aliases on top of the existing table. Later entries win.
func (a *ModelAliases) Merge(extra map[string]string) {
	if a == nil || len(extra) == 0 {
		return
	}
	if a.Aliases == nil {
		a.Aliases = make(map[string]string, len(extra))
	}
	for k, v := range extra {
		a.Aliases[k] = v
	}
}

// Resolve returns the canonical model name for an alias.
// If the input is not an alias, it returns the input unchanged.
func (a *ModelAliases) Resolve(modelOrAlias string) string {
	if a == nil || a.Aliases == nil {
		return modelOrAlias
	}
	if canonical, ok := a.Aliases[modelOrAlias]; ok {
		return canonical
	}
	return modelOrAlias
}

// DefaultModel returns the first listed model of a provider.
func (a *ModelAliases) DefaultModel(provider string) string {
	models := a.GetProviderModels(provider)
	if len(models) == 0 {
		return DefaultModel
	}
	return models[0]
}

// ValidateModel checks if a model exists in the provider's list.
// Returns nil if valid, or an error describing the problem.
func (a *ModelAliases) ValidateModel(provider, model string) error {
	if a == nil || a.Providers == nil {
		return nil // No validation possible without provider info
	}

	models, ok := a.Providers[provider]
	if !ok {
		return fmt.Errorf("unknown provider %q", provider)
	}

	for _, m := range models {
		if m == model {
			return nil
		}
	}

	return fmt.Errorf("model %q not in %s provider list", model, provider)
}

// ListAliases returns a copy of the aliases map.
func (a *ModelAliases) ListAliases() map[string]string {
	if a == nil || a.Aliases == nil {
		return make(map[string]string)
	}
	result := make(map[string]string, len(a.Aliases))
	for k, v := range a.Aliases {
		result[k] = v
	}
	return result
}

// ListProviders returns a sorted list of provider names.
func (a *ModelAliases) ListProviders() []string {
	if a == nil || a.Providers == nil {
		return nil
	}
	providers := make([]string, 0, len(a.Providers))
	for p := range a.Providers {
		providers = append(providers, p)
	}
	sort.Strings(providers)
	return providers
}

// GetProviderModels returns the models for a given provider.
func (a *ModelAliases) GetProviderModels(provider string) []string {
	if a == nil || a.Providers == nil {
		return nil
	}
	return a.Providers[provider]
}

// GetProviderForModel returns the provider name for a canonical model.
func (a *ModelAliases) GetProviderForModel(model string) string {
	if a == nil || a.Providers == nil {
		return ""
	}
	for _, provider := range a.ListProviders() {
		for _, m := range a.Providers[provider] {
			if m == model {
				return provider
			}
		}
	}
	return ""
}

// ValidateConfig checks that the configured provider and model agree.
// Returns a slice of validation errors (empty if all valid).
func (a *ModelAliases) ValidateConfig(cfg *Config) []error {
	if a == nil || cfg == nil {
		return nil
	}

	var errs []error
	model := a.Resolve(cfg.Model)
	if err := a.ValidateModel(cfg.Provider, model); err != nil {
		errs = append(errs, fmt.Errorf("model: %w", err))
	}
	if cfg.ModelTimeout <= 0 {
		errs = append(errs, fmt.Errorf("model_timeout must be positive"))
	}
	return errs
}

// DefaultAliases returns the default model aliases configuration.
func DefaultAliases() *ModelAliases {
	return &ModelAliases{
		Aliases: map[string]string{
			// Google
			"flash": "gemini-1.5-flash",
			"pro":   "gemini-1.5-pro",
			"fast":  "gemini-2.0-flash",
			// OpenAI
			"mini": "gpt-4o-mini",
			"gpt":  "gpt-4o",
			// Anthropic
			"haiku":  "claude-3-5-haiku-latest",
			"sonnet": "claude-sonnet-4-20250514",
			// DeepSeek
			"cheap": "deepseek-chat",
		},
		Providers: map[string][]string{
			"google":    {"gemini-1.5-flash", "gemini-1.5-pro", "gemini-2.0-flash"},
			"openai":    {"gpt-4o-mini", "gpt-4o"},
			"anthropic": {"claude-3-5-haiku-latest", "claude-sonnet-4-20250514"},
			"deepseek":  {"deepseek-chat"},
			"mock":      {"mock-1"},
		},
	}
}

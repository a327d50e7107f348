package config

import (
	"testing"
	"time"
)

func TestResolve(t *testing.T) {
	aliases := &ModelAliases{
		Aliases: map[string]string{
			"flash":  "gemini-1.5-flash",
			"sonnet": "claude-sonnet-4-20250514",
		},
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "resolve known alias",
			input:    "flash",
			expected: "gemini-1.5-flash",
		},
		{
			name:     "resolve another alias",
			input:    "sonnet",
			expected: "claude-sonnet-4-20250514",
		},
		{
			name:     "unknown alias returns input unchanged",
			input:    "unknown-model",
			expected: "unknown-model",
		},
		{
			name:     "canonical model returns unchanged",
			input:    "gemini-1.5-flash",
			expected: "gemini-1.5-flash",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := aliases.Resolve(tt.input)
			if result != tt.expected {
				t.Errorf("Resolve(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestResolve_NilAliases(t *testing.T) {
	var aliases *ModelAliases
	result := aliases.Resolve("flash")
	if result != "flash" {
		t.Errorf("Resolve on nil should return input, got %q", result)
	}
}

func TestValidateModel(t *testing.T) {
	aliases := &ModelAliases{
		Providers: map[string][]string{
			"google":    {"gemini-1.5-flash", "gemini-1.5-pro"},
			"anthropic": {"claude-sonnet-4-20250514"},
		},
	}

	tests := []struct {
		name      string
		provider  string
		model     string
		wantError bool
	}{
		{
			name:      "valid model for provider",
			provider:  "google",
			model:     "gemini-1.5-flash",
			wantError: false,
		},
		{
			name:      "another valid model",
			provider:  "anthropic",
			model:     "claude-sonnet-4-20250514",
			wantError: false,
		},
		{
			name:      "invalid model for provider",
			provider:  "google",
			model:     "claude-sonnet-4-20250514",
			wantError: true,
		},
		{
			name:      "unknown provider",
			provider:  "unknown",
			model:     "some-model",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := aliases.ValidateModel(tt.provider, tt.model)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidateModel(%q, %q) error = %v, wantError %v",
					tt.provider, tt.model, err, tt.wantError)
			}
		})
	}
}

func TestGetProviderForModel(t *testing.T) {
	aliases := &ModelAliases{
		Providers: map[string][]string{
			"google":    {"gemini-1.5-flash"},
			"anthropic": {"claude-sonnet-4-20250514"},
		},
	}

	tests := []struct {
		model    string
		expected string
	}{
		{"gemini-1.5-flash", "google"},
		{"claude-sonnet-4-20250514", "anthropic"},
		{"unknown-model", ""},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			result := aliases.GetProviderForModel(tt.model)
			if result != tt.expected {
				t.Errorf("GetProviderForModel(%q) = %q, want %q", tt.model, result, tt.expected)
			}
		})
	}
}

func TestMergeOverridesDefaults(t *testing.T) {
	aliases := DefaultAliases()
	aliases.Merge(map[string]string{"flash": "gemini-2.0-flash", "house": "mock-1"})

	if got := aliases.Resolve("flash"); got != "gemini-2.0-flash" {
		t.Fatalf("flash = %q, want merged value", got)
	}
	if got := aliases.Resolve("house"); got != "mock-1" {
		t.Fatalf("house = %q, want mock-1", got)
	}
}

func TestListAliases(t *testing.T) {
	aliases := &ModelAliases{
		Aliases: map[string]string{
			"flash":  "gemini-1.5-flash",
			"sonnet": "claude-sonnet-4-20250514",
		},
	}

	list := aliases.ListAliases()

	if len(list) != 2 {
		t.Errorf("expected 2 aliases, got %d", len(list))
	}

	if list["flash"] != "gemini-1.5-flash" {
		t.Error("ListAliases should include 'flash' alias")
	}

	// Verify it's a copy
	list["new"] = "value"
	if aliases.Aliases["new"] == "value" {
		t.Error("ListAliases should return a copy, not the original")
	}
}

func TestValidateConfig(t *testing.T) {
	aliases := DefaultAliases()

	valid := &Config{Provider: "google", Model: "flash", ModelTimeout: time.Second}
	if errs := aliases.ValidateConfig(valid); len(errs) != 0 {
		t.Errorf("expected no errors for valid config, got %v", errs)
	}

	invalid := &Config{Provider: "google", Model: "gpt-4o", ModelTimeout: 0}
	if errs := aliases.ValidateConfig(invalid); len(errs) != 2 {
		t.Errorf("expected 2 errors for invalid config, got %v", errs)
	}
}

func TestDefaultAliases(t *testing.T) {
	aliases := DefaultAliases()

	if len(aliases.Aliases) == 0 {
		t.Error("DefaultAliases should have aliases")
	}
	if aliases.Resolve("flash") != DefaultModel {
		t.Errorf("'flash' alias should resolve to %q", DefaultModel)
	}
	if aliases.DefaultModel("google") != DefaultModel {
		t.Errorf("google default model should be %q", DefaultModel)
	}
	if aliases.DefaultModel("nope") != DefaultModel {
		t.Error("unknown provider should fall back to the default model")
	}
}

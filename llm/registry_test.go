package llm

import (
	"testing"
)

func TestRegistry_IsProviderConfigured(t *testing.T) {
	// Anthropic requires an API key.
	registry := NewRegistry(&ProviderConfig{})
	if registry.IsProviderConfigured("anthropic") {
		t.Error("anthropic should not be configured without API key")
	}

	registry2 := NewRegistry(&ProviderConfig{AnthropicAPIKey: "test-key"})
	if !registry2.IsProviderConfigured("anthropic") {
		t.Error("anthropic should be configured with API key")
	}

	// Ollama is always configured (no API key required).
	if !registry.IsProviderConfigured("ollama") {
		t.Error("ollama should always be configured")
	}

	// OpenAI requires an API key.
	if registry.IsProviderConfigured("openai") {
		t.Error("openai should not be configured without API key")
	}
	registry3 := NewRegistry(&ProviderConfig{OpenAIAPIKey: "test-key"})
	if !registry3.IsProviderConfigured("openai") {
		t.Error("openai should be configured with API key")
	}

	if registry.IsProviderConfigured("bogus") {
		t.Error("unknown provider should not be configured")
	}
}

func TestRegistry_ResolveOllama(t *testing.T) {
	registry := NewRegistry(&ProviderConfig{OllamaHost: "http://localhost:11434", OllamaModel: "mistral"})

	key, err := registry.Resolve(ProviderOllama)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if key.Host != "http://localhost:11434" {
		t.Errorf("expected configured host, got %q", key.Host)
	}
	if key.Model != "mistral" {
		t.Errorf("expected configured model, got %q", key.Model)
	}
}

func TestRegistry_ResolveOllamaDefaultHost(t *testing.T) {
	t.Setenv("OLLAMA_HOST", "")
	registry := NewRegistry(&ProviderConfig{OllamaModel: "mistral"})

	key, err := registry.Resolve(ProviderOllama)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if key.Host != "http://localhost:11434" {
		t.Errorf("expected default host, got %q", key.Host)
	}
}

func TestRegistry_ResolveAnthropicDefaults(t *testing.T) {
	registry := NewRegistry(&ProviderConfig{AnthropicAPIKey: "test-key"})

	key, err := registry.Resolve(ProviderAnthropic)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if key.APIKey != "test-key" {
		t.Errorf("expected configured API key, got %q", key.APIKey)
	}
	if key.Model == "" {
		t.Error("expected a default model for anthropic")
	}
}

func TestRegistry_ResolveMissingCredentials(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	registry := NewRegistry(&ProviderConfig{})

	if _, err := registry.Resolve(ProviderOpenAI); err == nil {
		t.Error("expected error resolving openai without API key")
	}
	if _, err := registry.Resolve(ProviderAnthropic); err == nil {
		t.Error("expected error resolving anthropic without API key")
	}
	if _, err := registry.Resolve("bogus"); err == nil {
		t.Error("expected error for unknown provider")
	}
}

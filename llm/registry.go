package llm

import (
	"fmt"
	"os"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
)

// defaultAnthropicModel is used when no model is configured for Anthropic.
const defaultAnthropicModel = "claude-haiku-4-5"

// ClientKey holds everything a provider client constructor needs. Client
// creation happens in the caller so this package stays free of SDK imports.
type ClientKey struct {
	Provider     string
	Model        string
	APIKey       string // For credential-based providers
	Host         string // For Ollama
	BaseURL      string // For OpenAI
	Organization string // For OpenAI
}

// ProviderConfig holds the per-provider settings the registry resolves from.
// This avoids import cycles by not importing the config package.
type ProviderConfig struct {
	AnthropicAPIKey string
	AnthropicModel  string
	OllamaHost      string
	OllamaModel     string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	OpenAIModel     string
	OpenAIOrg       string
}

// Registry resolves the generation backend from configuration. Environment
// variables fill any gaps the config file leaves.
type Registry struct {
	config *ProviderConfig
}

// NewRegistry creates a Registry over the given provider configuration.
func NewRegistry(providerConfig *ProviderConfig) *Registry {
	return &Registry{config: providerConfig}
}

// IsProviderConfigured checks if a provider has the required configuration
// (API keys, hosts, etc.).
func (r *Registry) IsProviderConfigured(provider string) bool {
	switch provider {
	case ProviderAnthropic:
		return r.config.AnthropicAPIKey != "" || os.Getenv("ANTHROPIC_API_KEY") != ""
	case ProviderOllama:
		// Ollama doesn't require an API key; the host has a default.
		return true
	case ProviderOpenAI:
		return r.config.OpenAIAPIKey != "" || os.Getenv("OPENAI_API_KEY") != ""
	default:
		return false
	}
}

// Resolve returns the ClientKey for the requested provider, falling back to
// environment variables for anything the config leaves empty.
func (r *Registry) Resolve(provider string) (*ClientKey, error) {
	key := &ClientKey{Provider: provider}

	switch provider {
	case ProviderAnthropic:
		apiKey := r.config.AnthropicAPIKey
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("anthropic API key not configured")
		}
		key.APIKey = apiKey
		key.Model = r.config.AnthropicModel
		if key.Model == "" {
			key.Model = defaultAnthropicModel
		}

	case ProviderOllama:
		host := r.config.OllamaHost
		if host == "" {
			host = os.Getenv("OLLAMA_HOST")
		}
		if host == "" {
			host = "http://localhost:11434"
		}
		key.Host = host

		key.Model = r.config.OllamaModel
		if key.Model == "" {
			key.Model = os.Getenv("OLLAMA_MODEL")
		}
		if key.Model == "" {
			return nil, fmt.Errorf("ollama model not specified and no default configured")
		}

	case ProviderOpenAI:
		apiKey := r.config.OpenAIAPIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("openai API key not configured")
		}
		key.APIKey = apiKey

		baseURL := r.config.OpenAIBaseURL
		if baseURL == "" {
			baseURL = os.Getenv("OPENAI_BASE_URL")
		}
		key.BaseURL = baseURL

		org := r.config.OpenAIOrg
		if org == "" {
			org = os.Getenv("OPENAI_ORG_ID")
		}
		key.Organization = org

		key.Model = r.config.OpenAIModel
		if key.Model == "" {
			key.Model = os.Getenv("OPENAI_MODEL")
		}
		if key.Model == "" {
			return nil, fmt.Errorf("openai model not specified and no default configured")
		}

	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}

	return key, nil
}

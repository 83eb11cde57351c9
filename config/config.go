package config

import (
	"fmt"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// OllamaConfig represents configuration for the Ollama generation provider.
type OllamaConfig struct {
	Host  string `yaml:"host,omitempty"`  // Ollama host (default: "http://localhost:11434")
	Model string `yaml:"model,omitempty"` // Model name
}

// OpenAIConfig represents configuration for the OpenAI generation provider.
type OpenAIConfig struct {
	APIKey       string `yaml:"api_key,omitempty"`      // OpenAI API key
	BaseURL      string `yaml:"base_url,omitempty"`     // Custom base URL (default: official API)
	Model        string `yaml:"model,omitempty"`        // Model name
	Organization string `yaml:"organization,omitempty"` // Organization ID
}

// AnthropicConfig represents configuration for the Anthropic generation provider.
type AnthropicConfig struct {
	APIKey string `yaml:"api_key,omitempty"` // Anthropic API key
	Model  string `yaml:"model,omitempty"`   // Model name
}

// PersonaConfig describes the bot identity injected into every system prompt.
type PersonaConfig struct {
	Name      string `yaml:"name,omitempty"`
	Persona   string `yaml:"persona,omitempty"`
	Backstory string `yaml:"backstory,omitempty"`
}

// MemoryConfig holds the tunables of the memory lifecycle.
type MemoryConfig struct {
	SummaryThreshold int     `yaml:"summary_threshold,omitempty"` // Exchanges buffered before a summary is written
	RetentionDays    int     `yaml:"retention_days,omitempty"`    // Normal retention window; important memories get double
	RecentCap        int     `yaml:"recent_cap,omitempty"`        // Max recent-memory ring entries per user
	TrimProbability  float64 `yaml:"trim_probability,omitempty"`  // Per-insert chance of trimming the ring
	ContextBudget    int     `yaml:"context_budget,omitempty"`    // Hard character cap on the assembled context
	MaxSystemPrompt  int     `yaml:"max_system_prompt,omitempty"` // Hard character cap on the full system prompt
}

// GenerationConfig holds options passed to the generation backend.
type GenerationConfig struct {
	Provider      string  `yaml:"provider,omitempty"` // "ollama", "openai", or "anthropic"
	Temperature   float64 `yaml:"temperature,omitempty"`
	TopP          float64 `yaml:"top_p,omitempty"`
	ContextWindow int     `yaml:"context_window,omitempty"`
	MaxTokens     int     `yaml:"max_tokens,omitempty"`
	Timeout       int     `yaml:"timeout,omitempty"` // Request timeout in seconds
}

// Config is the full daemon configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr,omitempty"` // HTTP listen address (default: ":5000")
	} `yaml:"server,omitempty"`

	DBPath         string `yaml:"db_path,omitempty"`
	MigrationsPath string `yaml:"migrations_path,omitempty"`

	Ollama    OllamaConfig    `yaml:"ollama,omitempty"`
	OpenAI    OpenAIConfig    `yaml:"openai,omitempty"`
	Anthropic AnthropicConfig `yaml:"anthropic,omitempty"`

	Persona    PersonaConfig    `yaml:"persona,omitempty"`
	Memory     MemoryConfig     `yaml:"memory,omitempty"`
	Generation GenerationConfig `yaml:"generation,omitempty"`
}

// Default returns the compiled-in configuration.
func Default() *Config {
	cfg := &Config{
		DBPath:         "aria_memory.db",
		MigrationsPath: "./migrations",
		Ollama: OllamaConfig{
			Host:  "http://localhost:11434",
			Model: "mistral",
		},
		Persona: PersonaConfig{
			Name:      "Aria",
			Persona:   "a friendly, empathetic AI assistant with a touch of whimsy and emotional intelligence who remembers conversations and personal details",
			Backstory: "I was created by a team of passionate engineers who believe technology should feel human. I love learning about people and forming genuine connections over time.",
		},
		Memory: MemoryConfig{
			SummaryThreshold: 5,
			RetentionDays:    90,
			RecentCap:        100,
			TrimProbability:  0.1,
			ContextBudget:    1000,
			MaxSystemPrompt:  1500,
		},
		Generation: GenerationConfig{
			Provider:      "ollama",
			Temperature:   0.8,
			TopP:          0.92,
			ContextWindow: 2048,
			MaxTokens:     120,
			Timeout:       30,
		},
	}
	cfg.Server.Addr = ":5000"
	return cfg
}

// Load reads the YAML configuration at path and merges it over the defaults.
// A missing file is not an error; the defaults are returned unchanged.
// Provider credentials may also be supplied via OPENAI_API_KEY / ANTHROPIC_API_KEY.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // G304: user-specified config path is intentional
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(data, &fileCfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
			if err := mergo.Merge(cfg, &fileCfg, mergo.WithOverride); err != nil {
				return nil, fmt.Errorf("merge config: %w", err)
			}
		}
	}

	// Environment variables win over the file for credentials.
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.Anthropic.APIKey = v
	}
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		cfg.Ollama.Host = v
	}
	if v := os.Getenv("OLLAMA_MODEL"); v != "" {
		cfg.Ollama.Model = v
	}

	return cfg, nil
}

// DefaultPath returns the default config file location (~/.config/aria/config.yaml).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "aria", "config.yaml")
}

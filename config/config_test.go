package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValues(t *testing.T) {
	cfg := Default()

	if cfg.Server.Addr != ":5000" {
		t.Errorf("expected default addr :5000, got %q", cfg.Server.Addr)
	}
	if cfg.Generation.Provider != "ollama" {
		t.Errorf("expected default provider ollama, got %q", cfg.Generation.Provider)
	}
	if cfg.Memory.SummaryThreshold != 5 || cfg.Memory.RetentionDays != 90 {
		t.Errorf("unexpected memory defaults: %+v", cfg.Memory)
	}
	if cfg.Persona.Name != "Aria" {
		t.Errorf("expected persona Aria, got %q", cfg.Persona.Name)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  addr: \":8080\"\nollama:\n  model: llama3\nmemory:\n  retention_days: 30\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected overridden addr, got %q", cfg.Server.Addr)
	}
	if cfg.Ollama.Model != "llama3" {
		t.Errorf("expected overridden model, got %q", cfg.Ollama.Model)
	}
	if cfg.Memory.RetentionDays != 30 {
		t.Errorf("expected overridden retention, got %d", cfg.Memory.RetentionDays)
	}
	// Unset fields keep defaults.
	if cfg.Memory.SummaryThreshold != 5 {
		t.Errorf("expected default summary threshold, got %d", cfg.Memory.SummaryThreshold)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load of missing file should not error, got %v", err)
	}
	if cfg.Server.Addr != ":5000" {
		t.Errorf("expected defaults for missing file, got %q", cfg.Server.Addr)
	}
}

func TestLoadEnvCredentialsWin(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("OLLAMA_MODEL", "env-model")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.OpenAI.APIKey != "env-key" {
		t.Errorf("expected env API key, got %q", cfg.OpenAI.APIKey)
	}
	if cfg.Ollama.Model != "env-model" {
		t.Errorf("expected env model, got %q", cfg.Ollama.Model)
	}
}

package pipeline_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/contextual-ai/converse/pipeline"
	"github.com/contextual-ai/converse/provider"
	"github.com/contextual-ai/converse/session"
)

func TestDefaultConfig(t *testing.T) {
	cfg := pipeline.DefaultConfig()

	if cfg.SystemPrompt != "You are a helpful AI assistant." {
		t.Errorf("got SystemPrompt %q, want the default instruction", cfg.SystemPrompt)
	}
	if cfg.Provider.Kind != provider.KindOpenAI {
		t.Errorf("got provider kind %q, want %q", cfg.Provider.Kind, provider.KindOpenAI)
	}
	if cfg.Session.Backend != session.BackendMemory {
		t.Errorf("got session backend %q, want %q", cfg.Session.Backend, session.BackendMemory)
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := pipeline.DefaultConfig()

	source := &pipeline.Config{
		SystemPrompt: "merged prompt",
		Observer:     "noop",
		Provider:     provider.Config{Model: "gpt-4o"},
	}
	cfg.Merge(source)

	if cfg.SystemPrompt != "merged prompt" {
		t.Errorf("got SystemPrompt %q, want %q", cfg.SystemPrompt, "merged prompt")
	}
	if cfg.Observer != "noop" {
		t.Errorf("got Observer %q, want %q", cfg.Observer, "noop")
	}
	if cfg.Provider.Model != "gpt-4o" {
		t.Errorf("got provider model %q, want %q", cfg.Provider.Model, "gpt-4o")
	}
	// Unset provider fields keep their defaults.
	if cfg.Provider.Endpoint == "" {
		t.Error("provider endpoint default was lost in merge")
	}
}

func TestConfig_Merge_ZeroValuesPreserveDefaults(t *testing.T) {
	cfg := pipeline.DefaultConfig()
	original := cfg.SystemPrompt

	cfg.Merge(&pipeline.Config{})

	if cfg.SystemPrompt != original {
		t.Errorf("got SystemPrompt %q, want %q (preserved default)", cfg.SystemPrompt, original)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.json")

	content := `{
		"system_prompt": "loaded prompt",
		"provider": {
			"model": "gpt-4o",
			"api_key": "sk-test"
		},
		"session": {
			"backend": "file",
			"path": "/tmp/sessions"
		}
	}`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := pipeline.LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.SystemPrompt != "loaded prompt" {
		t.Errorf("got SystemPrompt %q, want %q", cfg.SystemPrompt, "loaded prompt")
	}
	if cfg.Provider.Model != "gpt-4o" {
		t.Errorf("got provider model %q, want %q", cfg.Provider.Model, "gpt-4o")
	}
	if cfg.Session.Backend != session.BackendFile {
		t.Errorf("got session backend %q, want %q", cfg.Session.Backend, session.BackendFile)
	}
	if cfg.Session.Path != "/tmp/sessions" {
		t.Errorf("got session path %q, want %q", cfg.Session.Path, "/tmp/sessions")
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := pipeline.LoadConfig("/nonexistent/path/config.json")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "bad.json")

	if err := os.WriteFile(configPath, []byte("{invalid}"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := pipeline.LoadConfig(configPath)
	if err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func TestNew_UnknownObserver(t *testing.T) {
	cfg := pipeline.DefaultConfig()
	cfg.Observer = "nonexistent"

	_, err := pipeline.New(&cfg)
	if err == nil {
		t.Fatal("expected error for unknown observer, got nil")
	}
}

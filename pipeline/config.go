package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/contextual-ai/converse/provider"
	"github.com/contextual-ai/converse/session"
)

const defaultSystemPrompt = "You are a helpful AI assistant."

// Config holds initialization parameters for the pipeline and its
// subsystems. Each subsystem section delegates to that subsystem's
// config-driven constructor.
type Config struct {
	Provider     provider.Config `json:"provider"`
	Session      session.Config  `json:"session"`
	SystemPrompt string          `json:"system_prompt,omitempty"`
	Observer     string          `json:"observer,omitempty"` // observability registry name
}

// DefaultConfig returns a Config with sensible defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		Provider:     provider.DefaultConfig(),
		Session:      session.DefaultConfig(),
		SystemPrompt: defaultSystemPrompt,
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Provider.Merge(&source.Provider)
	c.Session.Merge(&source.Session)

	if source.SystemPrompt != "" {
		c.SystemPrompt = source.SystemPrompt
	}
	if source.Observer != "" {
		c.Observer = source.Observer
	}
}

// LoadConfig reads a JSON config file, merges it with defaults, and returns
// the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}

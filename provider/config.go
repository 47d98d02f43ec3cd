package provider

import "fmt"

// Provider kinds understood by New.
const (
	KindOpenAI = "openai"
	KindEcho   = "echo"
)

const (
	defaultEndpoint       = "https://api.openai.com/v1/chat/completions"
	defaultModel          = "gpt-4o-mini"
	defaultTimeoutSeconds = 60
)

// Config holds model provider initialization parameters. Model, Endpoint,
// and APIKey are opaque configuration strings handed through to the service.
type Config struct {
	Kind           string `json:"kind,omitempty"` // openai (default) or echo
	Model          string `json:"model,omitempty"`
	Endpoint       string `json:"endpoint,omitempty"`
	APIKey         string `json:"api_key,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}

// DefaultConfig returns the default provider configuration.
func DefaultConfig() Config {
	return Config{
		Kind:           KindOpenAI,
		Model:          defaultModel,
		Endpoint:       defaultEndpoint,
		TimeoutSeconds: defaultTimeoutSeconds,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Kind != "" {
		c.Kind = source.Kind
	}
	if source.Model != "" {
		c.Model = source.Model
	}
	if source.Endpoint != "" {
		c.Endpoint = source.Endpoint
	}
	if source.APIKey != "" {
		c.APIKey = source.APIKey
	}
	if source.TimeoutSeconds > 0 {
		c.TimeoutSeconds = source.TimeoutSeconds
	}
}

// New creates a Model from configuration, selecting the provider by kind.
func New(cfg *Config) (Model, error) {
	switch cfg.Kind {
	case "", KindOpenAI:
		return NewOpenAIModel(cfg)
	case KindEcho:
		return NewEchoModel(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Kind)
	}
}

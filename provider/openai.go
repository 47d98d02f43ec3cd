package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/contextual-ai/converse/core/protocol"
)

// errorBodyLimit caps how much of a provider error response is echoed into
// error messages.
const errorBodyLimit = 512

type openAIModel struct {
	model    string
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewOpenAIModel creates a Model speaking the OpenAI-compatible chat
// completions protocol. The endpoint is the full completions URL; apiKey is
// sent as a bearer credential when non-empty.
func NewOpenAIModel(cfg *Config) (Model, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("provider endpoint is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("provider model name is required")
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeoutSeconds * time.Second
	}

	return &openAIModel{
		model:    cfg.Model,
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// chatMessage is the wire form of a turn. Internal roles map to the chat
// completions vocabulary: human -> user, ai -> assistant.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

// chatResponse carries the subset of the completions response the pipeline
// consumes.
type chatResponse struct {
	Model   string `json:"model,omitempty"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason,omitempty"`
	} `json:"choices"`
}

func (m *openAIModel) Complete(ctx context.Context, prompt []protocol.Turn) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    m.model,
		Messages: wireMessages(prompt),
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if m.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.apiKey)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return "", fmt.Errorf("completion request failed: status %d: %s", resp.StatusCode, snippet)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("parse completion response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return "", ErrNoChoices
	}

	return parsed.Choices[0].Message.Content, nil
}

func wireMessages(prompt []protocol.Turn) []chatMessage {
	messages := make([]chatMessage, 0, len(prompt))
	for _, turn := range prompt {
		messages = append(messages, chatMessage{
			Role:    wireRole(turn.Role),
			Content: turn.Content,
		})
	}
	return messages
}

func wireRole(role protocol.Role) string {
	switch role {
	case protocol.RoleHuman:
		return "user"
	case protocol.RoleAI:
		return "assistant"
	default:
		return string(role)
	}
}

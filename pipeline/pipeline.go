// Package pipeline composes the session store and the model boundary into
// the conversational respond loop: resolve the session history, build the
// prompt, call the model, record the exchange.
//
// The pipeline initializes from configuration via New, creating its
// subsystems internally. Functional options allow test overrides of any
// subsystem.
//
//	p, err := pipeline.New(&cfg)
//	reply, err := p.Respond(ctx, "user_123", "Hello! How are you?")
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/contextual-ai/converse/core/protocol"
	"github.com/contextual-ai/converse/observability"
	"github.com/contextual-ai/converse/provider"
	"github.com/contextual-ai/converse/session"
)

// Option configures a Pipeline after config-driven initialization.
// Applied by New after cold start; overrides replace config-created defaults.
type Option func(*Pipeline)

// WithStore overrides the config-created session store.
func WithStore(s session.Store) Option {
	return func(p *Pipeline) { p.store = s }
}

// WithModel overrides the config-created model provider.
func WithModel(m provider.Model) Option {
	return func(p *Pipeline) { p.model = m }
}

// WithObserver overrides the config-selected observer.
func WithObserver(o observability.Observer) Option {
	return func(p *Pipeline) { p.observer = o }
}

// Pipeline is the conversational runtime. Respond calls for the same session
// id serialize; distinct sessions proceed concurrently.
type Pipeline struct {
	store        session.Store
	model        provider.Model
	observer     observability.Observer
	systemPrompt string
	locks        keyedMutex
}

// New creates a Pipeline from configuration. The store and model are
// initialized from their respective config sections; functional options
// applied after initialization can override any subsystem for testing.
func New(cfg *Config, opts ...Option) (*Pipeline, error) {
	model, err := provider.New(&cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create model provider: %w", err)
	}

	store, err := session.New(&cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session store: %w", err)
	}

	observer := observability.Observer(observability.NewSlogObserver(slog.Default()))
	if cfg.Observer != "" {
		observer, err = observability.GetObserver(cfg.Observer)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve observer: %w", err)
		}
	}

	p := &Pipeline{
		store:        store,
		model:        model,
		observer:     observer,
		systemPrompt: cfg.SystemPrompt,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Respond runs one conversational exchange for the given session: the prompt
// sent to the model is the fixed system turn, the session's recorded history
// in order, and the new human turn. On success exactly two turns are
// appended to the history, human then ai. On failure (including context
// cancellation during the model call) the history is left untouched and the
// error wraps ErrModelInvocation.
func (p *Pipeline) Respond(ctx context.Context, sessionID, userText string) (string, error) {
	if sessionID == "" {
		return "", session.ErrEmptySessionID
	}

	// The history read, the model call, and the appends form one atomic unit
	// per session. Interleaving two calls on the same session could
	// duplicate or reorder turns.
	unlock := p.locks.lock(sessionID)
	defer unlock()

	history, created, err := p.store.GetOrCreate(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("resolve session %q: %w", sessionID, err)
	}

	if created {
		p.observer.OnEvent(ctx, observability.Event{
			Type:      EventSessionCreate,
			Level:     observability.LevelInfo,
			Timestamp: time.Now(),
			Source:    "pipeline.Respond",
			Data: map[string]any{
				"session_id": sessionID,
			},
		})
	}

	p.observer.OnEvent(ctx, observability.Event{
		Type:      EventRespondStart,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "pipeline.Respond",
		Data: map[string]any{
			"session_id":    sessionID,
			"history_turns": len(history),
			"input_length":  len(userText),
		},
	})

	prompt := BuildPrompt(p.systemPrompt, history, userText)

	reply, err := p.model.Complete(ctx, prompt)
	if err != nil {
		p.observer.OnEvent(ctx, observability.Event{
			Type:      EventModelError,
			Level:     observability.LevelError,
			Timestamp: time.Now(),
			Source:    "pipeline.Respond",
			Data: map[string]any{
				"session_id": sessionID,
				"error":      err.Error(),
			},
		})
		return "", fmt.Errorf("%w: %w", ErrModelInvocation, err)
	}

	// Record the user's message before the assistant's reply, even though
	// both land after the model call returns.
	if err := p.store.Append(ctx, sessionID, protocol.Human(userText), protocol.AI(reply)); err != nil {
		return "", fmt.Errorf("record exchange for session %q: %w", sessionID, err)
	}

	p.observer.OnEvent(ctx, observability.Event{
		Type:      EventRespondComplete,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "pipeline.Respond",
		Data: map[string]any{
			"session_id":   sessionID,
			"reply_length": len(reply),
		},
	})

	return reply, nil
}

// History returns a copy of the recorded turns for a session. Unlike
// Respond, it never creates the session; unknown ids surface
// session.ErrUnknownSession.
func (p *Pipeline) History(ctx context.Context, sessionID string) ([]protocol.Turn, error) {
	return p.store.Get(ctx, sessionID)
}

// Close releases the underlying session store.
func (p *Pipeline) Close() error {
	return p.store.Close()
}

// BuildPrompt assembles the transient prompt for one model call: the fixed
// system turn first, every history turn in order, then the new human turn.
// The system turn is always first, including with an empty history.
func BuildPrompt(systemPrompt string, history []protocol.Turn, userText string) []protocol.Turn {
	prompt := make([]protocol.Turn, 0, len(history)+2)
	prompt = append(prompt, protocol.System(systemPrompt))
	prompt = append(prompt, history...)
	return append(prompt, protocol.Human(userText))
}

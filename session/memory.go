package session

import (
	"context"
	"slices"
	"sync"

	"github.com/contextual-ai/converse/core/protocol"
)

type memoryStore struct {
	sessions map[string][]protocol.Turn
	mu       sync.RWMutex
}

// NewMemoryStore creates a Store backed by an in-process map. Histories live
// for the lifetime of the process; there is no eviction or size bound.
func NewMemoryStore() Store {
	return &memoryStore{
		sessions: make(map[string][]protocol.Turn),
	}
}

func (s *memoryStore) GetOrCreate(_ context.Context, id string) ([]protocol.Turn, bool, error) {
	if id == "" {
		return nil, false, ErrEmptySessionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history, exists := s.sessions[id]
	if !exists {
		// Mark the session as created; the empty slice distinguishes a fresh
		// session from an unknown one.
		s.sessions[id] = []protocol.Turn{}
	}
	return slices.Clone(history), !exists, nil
}

func (s *memoryStore) Get(_ context.Context, id string) ([]protocol.Turn, error) {
	if id == "" {
		return nil, ErrEmptySessionID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, exists := s.sessions[id]
	if !exists {
		return nil, ErrUnknownSession
	}
	return slices.Clone(history), nil
}

func (s *memoryStore) Append(_ context.Context, id string, turns ...protocol.Turn) error {
	if id == "" {
		return ErrEmptySessionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id] = append(s.sessions[id], turns...)
	return nil
}

func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = nil
	return nil
}

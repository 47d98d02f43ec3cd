package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/contextual-ai/converse/core/protocol"
)

type fileStore struct {
	root string
	mu   sync.Mutex
}

// NewFileStore creates a Store that persists each session history as one
// JSON document under root. Session ids are path-escaped, so arbitrary
// opaque ids map to flat file names.
func NewFileStore(root string) Store {
	return &fileStore{root: root}
}

func (s *fileStore) GetOrCreate(_ context.Context, id string) ([]protocol.Turn, bool, error) {
	if id == "" {
		return nil, false, ErrEmptySessionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.load(id)
	if err == nil {
		return history, false, nil
	}
	if !os.IsNotExist(err) {
		return nil, false, fmt.Errorf("%w: %s: %v", ErrLoadFailed, id, err)
	}

	// First reference: materialize an empty history so the session exists.
	if err := s.write(id, []protocol.Turn{}); err != nil {
		return nil, false, err
	}
	return []protocol.Turn{}, true, nil
}

func (s *fileStore) Get(_ context.Context, id string) ([]protocol.Turn, error) {
	if id == "" {
		return nil, ErrEmptySessionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.load(id)
	if os.IsNotExist(err) {
		return nil, ErrUnknownSession
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, id, err)
	}
	return history, nil
}

func (s *fileStore) Append(_ context.Context, id string, turns ...protocol.Turn) error {
	if id == "" {
		return ErrEmptySessionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.load(id)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %s: %v", ErrLoadFailed, id, err)
	}

	return s.write(id, append(history, turns...))
}

func (s *fileStore) Close() error {
	return nil
}

func (s *fileStore) load(id string) ([]protocol.Turn, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, err
	}

	var history []protocol.Turn
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// write replaces the session document atomically via temp file and rename,
// so a crash mid-write never leaves a torn history on disk.
func (s *fileStore) write(id string, history []protocol.Turn) error {
	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, id, err)
	}

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, id, err)
	}

	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, id, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, id, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, id, err)
	}

	if err := os.Rename(tmpName, s.path(id)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, id, err)
	}
	return nil
}

func (s *fileStore) path(id string) string {
	return filepath.Join(s.root, url.PathEscape(id)+".json")
}

// Package session maps opaque caller-supplied session identifiers to ordered
// conversation histories.
package session

import (
	"context"

	"github.com/contextual-ai/converse/core/protocol"
)

// Store owns the session-to-history mapping. Implementations must be safe
// for concurrent use and must hand out defensive copies: callers can never
// mutate a stored history through a returned slice.
type Store interface {
	// GetOrCreate returns the history for id, creating an empty one on first
	// reference, and reports whether this call created the session.
	// Idempotent: an existing history is never replaced.
	GetOrCreate(ctx context.Context, id string) ([]protocol.Turn, bool, error)
	// Get returns the history for id without creating it. Returns
	// ErrUnknownSession when the session has never been referenced.
	Get(ctx context.Context, id string) ([]protocol.Turn, error)
	// Append adds turns to the end of the history for id, in argument order,
	// creating the session if it does not exist.
	Append(ctx context.Context, id string, turns ...protocol.Turn) error
	// Close releases backend resources.
	Close() error
}

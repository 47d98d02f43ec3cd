// Package provider abstracts the hosted language-model endpoint behind a
// single completion call.
package provider

import (
	"context"

	"github.com/contextual-ai/converse/core/protocol"
)

// Model produces a reply for an ordered prompt of turns. The prompt is
// consumed as-is; implementations must not reorder or mutate it. Complete is
// the pipeline's only suspension point and must honor ctx cancellation.
type Model interface {
	Complete(ctx context.Context, prompt []protocol.Turn) (string, error)
}

package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/contextual-ai/converse/core/protocol"
)

// EchoModel is a deterministic Model that reflects the prompt back instead
// of calling an external service. Useful for tests and dry runs.
type EchoModel struct{}

// NewEchoModel creates an EchoModel.
func NewEchoModel() *EchoModel {
	return &EchoModel{}
}

func (EchoModel) Complete(_ context.Context, prompt []protocol.Turn) (string, error) {
	var sb strings.Builder
	for _, turn := range prompt {
		fmt.Fprintf(&sb, "%s: %s\n", turn.Role, turn.Content)
	}
	return sb.String(), nil
}

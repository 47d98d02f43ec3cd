package pipeline

import "errors"

// ErrModelInvocation is returned by Respond when the external model call
// fails or is cancelled. The session history is left unchanged; no partial
// turn is recorded for a failed exchange.
var ErrModelInvocation = errors.New("model invocation failed")

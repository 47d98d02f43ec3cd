package pipeline

import "github.com/contextual-ai/converse/observability"

// Pipeline event types emitted during the respond loop.
const (
	EventRespondStart    observability.EventType = "pipeline.respond.start"
	EventRespondComplete observability.EventType = "pipeline.respond.complete"
	EventModelError      observability.EventType = "pipeline.model.error"
	EventSessionCreate   observability.EventType = "pipeline.session.create"
)

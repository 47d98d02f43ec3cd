package transport

import "github.com/contextual-ai/converse/core/protocol"

// RespondRequest is the ChatService Respond request payload. SessionID is an
// opaque caller-supplied conversation key.
type RespondRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// RespondResponse carries the model's reply for one exchange.
type RespondResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

// HistoryResponse is the payload of the session history endpoint.
type HistoryResponse struct {
	SessionID string          `json:"session_id"`
	Turns     []protocol.Turn `json:"turns"`
}

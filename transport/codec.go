package transport

import "encoding/json"

// jsonCodec lets connect carry plain JSON structs, so the ChatService wire
// types need no generated schema. Both the handler and any client must be
// constructed with this codec.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(message any) ([]byte, error) {
	return json.Marshal(message)
}

func (jsonCodec) Unmarshal(data []byte, message any) error {
	return json.Unmarshal(data, message)
}

package messages

import "encoding/json"

const (
	// MessageBufferSize represents the maximum size of a client message
	MessageBufferSize = 4096
)

// Message types
const (
	// MessageTypeServerState carries a game.Snapshot; it is the first message
	// on every event stream.
	MessageTypeServerState = "state"
	// MessageTypeServerEvent carries a game.Event.
	MessageTypeServerEvent = "event"
	// MessageTypeServerError carries an ErrorPayload.
	MessageTypeServerError = "error"
	// MessageTypeClientCommand carries a game.Command.
	MessageTypeClientCommand = "command"
)

// Message represents a generic message for serialization/deserialization
type Message struct {
	ClientID uint32          `json:"clientID,omitempty"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

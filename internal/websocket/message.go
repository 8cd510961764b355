package websocket

import "encoding/json"

// Message types sent to clients.
const (
	TypeEvent = "event"
	TypeAck   = "ack"
	TypeError = "error"
)

// Message is the envelope written to every client.
type Message struct {
	Type    string `json:"type"`
	Event   string `json:"event,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// ErrorBody is the payload of an error message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewMessage creates a message with the given type and payload.
func NewMessage(msgType string, payload any) *Message {
	return &Message{Type: msgType, Payload: payload}
}

// NewEvent wraps a match event.
func NewEvent(kind string, payload any) *Message {
	return &Message{Type: TypeEvent, Event: kind, Payload: payload}
}

// NewAck acknowledges an inbound client message.
func NewAck(payload any) *Message {
	return NewMessage(TypeAck, payload)
}

// NewError reports a rejected inbound message.
func NewError(code, msg string) *Message {
	return NewMessage(TypeError, ErrorBody{Code: code, Message: msg})
}

// Encode marshals m for the wire.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

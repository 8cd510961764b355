package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/nfrund/dungeonwave/internal/topicmgr"
)

// Event binds a topic name to its payload type T.
type Event[T any] struct {
	topicName string
	config    topicmgr.TopicConfig
}

// NewEvent describes a typed topic. The payload fields of T are recorded in
// the topic metadata. Nothing is registered until Register is called.
func NewEvent[T any](name, description string) Event[T] {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	var fields []string
	if t.Kind() == reflect.Struct {
		for i := range t.NumField() {
			tag, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
			if tag != "" && tag != "-" {
				fields = append(fields, tag)
			}
		}
	}

	module, _, _ := strings.Cut(name, ".")
	return Event[T]{
		topicName: name,
		config: topicmgr.TopicConfig{
			Name:        name,
			Module:      module,
			Description: description,
			Pattern:     name,
			Metadata: map[string]any{
				"payload_fields": fields,
				"type_name":      t.Name(),
				"is_typed":       true,
			},
		},
	}
}

// Name returns the topic name.
func (e Event[T]) Name() string {
	return e.topicName
}

// Topic returns the module topic definition of e.
func (e Event[T]) Topic() topicmgr.Topic {
	return topicmgr.DefineModule(e.config)
}

// Register adds e to mgr.
func (e Event[T]) Register(mgr *topicmgr.Manager) error {
	return mgr.Register(e.Topic())
}

// PublishOption adjusts an outgoing message.
type PublishOption func(*Message)

// WithUserID targets the message at one user.
func WithUserID(id string) PublishOption {
	return func(m *Message) { m.UserID = id }
}

// WithMetadata sets a metadata key.
func WithMetadata(key, value string) PublishOption {
	return func(m *Message) {
		if m.Metadata == nil {
			m.Metadata = map[string]string{}
		}
		m.Metadata[key] = value
	}
}

// Publish sends a typed event.
func Publish[T any](ctx context.Context, p Publisher, event Event[T], payload T, opts ...PublishOption) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event.Name(), err)
	}
	msg := Message{Topic: event.Name(), Payload: data}
	for _, opt := range opts {
		opt(&msg)
	}
	return p.Publish(ctx, msg)
}

// Subscribe decodes every message on event's topic into T before calling
// handler. Undecodable messages are reported as handler errors.
func Subscribe[T any](ctx context.Context, s Subscriber, event Event[T], handler func(ctx context.Context, payload T, msg Message) error) error {
	return s.Subscribe(ctx, event.Name(), func(ctx context.Context, msg Message) error {
		var payload T
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return fmt.Errorf("decode %s payload: %w", event.Name(), err)
		}
		return handler(ctx, payload, msg)
	})
}

// Package pubsub is the in-process event bus between the game service and
// the transports.
package pubsub

import (
	"context"
)

// Message is the structure passed between components on the bus.
type Message struct {
	// Topic identifies the channel, e.g. "dungeon.match.event".
	Topic string
	// UserID is set when the message targets a single player.
	UserID string
	// Payload is the JSON encoded body.
	Payload []byte
	// Metadata carries routing context such as the match id.
	Metadata map[string]string
}

// Handler processes one received message.
type Handler func(ctx context.Context, msg Message) error

// Publisher sends messages to the bus.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Subscriber receives messages from the bus.
type Subscriber interface {
	// Subscribe starts delivering messages for topic to handler and returns
	// once the subscription is active. Delivery stops when ctx is done.
	Subscribe(ctx context.Context, topic string, handler Handler) error
	Close() error
}

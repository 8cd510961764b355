package dungeon

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nfrund/dungeonwave/internal/game/match"
	"github.com/nfrund/dungeonwave/internal/modules/dungeon/events"
	"github.com/nfrund/dungeonwave/internal/modules/dungeon/topics"
	"github.com/nfrund/dungeonwave/internal/pubsub"
)

// Notifier publishes match events on the bus. It implements
// service.Notifier.
type Notifier struct {
	publisher pubsub.Publisher
}

// NewNotifier creates a Notifier on top of pub.
func NewNotifier(pub pubsub.Publisher) *Notifier {
	return &Notifier{publisher: pub}
}

// Publish encodes ev now, so later mutations of the match do not leak into
// the message.
func (n *Notifier) Publish(ctx context.Context, matchID string, ev match.Event) error {
	var raw json.RawMessage
	if ev.Payload != nil {
		data, err := json.Marshal(ev.Payload)
		if err != nil {
			return fmt.Errorf("encode %s payload: %w", ev.Kind, err)
		}
		raw = data
	}
	opts := []pubsub.PublishOption{pubsub.WithMetadata("match_id", matchID)}
	if ev.PlayerID != "" {
		opts = append(opts, pubsub.WithUserID(ev.PlayerID))
	}
	return pubsub.Publish(ctx, n.publisher, topics.MatchEvent, events.MatchEvent{
		MatchID:  matchID,
		Kind:     string(ev.Kind),
		PlayerID: ev.PlayerID,
		Payload:  raw,
	}, opts...)
}

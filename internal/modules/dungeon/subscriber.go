package dungeon

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nfrund/dungeonwave/internal/modules/dungeon/events"
	"github.com/nfrund/dungeonwave/internal/modules/dungeon/topics"
	"github.com/nfrund/dungeonwave/internal/pubsub"
	"github.com/nfrund/dungeonwave/internal/websocket"
)

// Fanout delivers encoded messages to websocket clients.
type Fanout interface {
	Broadcast(matchID string, payload []byte)
	SendDirect(matchID, playerID string, payload []byte)
}

// Subscriber listens for match events on the bus and forwards them to the
// clients of the match.
type Subscriber struct {
	subscriber pubsub.Subscriber
	fanout     Fanout
	logger     *slog.Logger
}

// NewSubscriber creates a subscriber service for the dungeon module.
func NewSubscriber(sub pubsub.Subscriber, fanout Fanout, logger *slog.Logger) *Subscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &Subscriber{subscriber: sub, fanout: fanout, logger: logger}
}

// Start subscribes to match events. Delivery stops when ctx is cancelled.
func (s *Subscriber) Start(ctx context.Context) error {
	s.logger.Info("starting dungeon match subscriber")
	if err := pubsub.Subscribe(ctx, s.subscriber, topics.MatchEvent, s.handleMatchEvent); err != nil {
		return fmt.Errorf("subscribe %s: %w", topics.MatchEvent.Name(), err)
	}
	return nil
}

func (s *Subscriber) handleMatchEvent(_ context.Context, ev events.MatchEvent, _ pubsub.Message) error {
	payload, err := websocket.NewEvent(ev.Kind, ev.Payload).Encode()
	if err != nil {
		return fmt.Errorf("encode %s for match %s: %w", ev.Kind, ev.MatchID, err)
	}
	if ev.PlayerID != "" {
		s.fanout.SendDirect(ev.MatchID, ev.PlayerID, payload)
		return nil
	}
	s.fanout.Broadcast(ev.MatchID, payload)
	return nil
}

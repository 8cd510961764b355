package pubsub

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/dungeonwave/internal/topicmgr"
)

type ping struct {
	Seq  int    `json:"seq"`
	Note string `json:"note,omitempty"`
	skip bool
}

var pingEvent = NewEvent[ping]("dungeon.test.ping", "test ping")

func TestNewEventMetadata(t *testing.T) {
	topic := pingEvent.Topic()
	assert.Equal(t, "dungeon.test.ping", topic.Name())
	assert.Equal(t, "dungeon", topic.Module())
	assert.Equal(t, []string{"seq", "note"}, topic.Metadata()["payload_fields"])
	assert.Equal(t, "ping", topic.Metadata()["type_name"])

	mgr := topicmgr.NewManager()
	require.NoError(t, pingEvent.Register(mgr))
	assert.Error(t, pingEvent.Register(mgr))
	_, ok := mgr.Get("dungeon.test.ping")
	assert.True(t, ok)
}

func TestTypedRoundTripOverWatermill(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewWatermillBridge(nil)
	defer bus.Close()

	got := make(chan Message, 4)
	payloads := make(chan ping, 4)
	require.NoError(t, Subscribe(ctx, bus, pingEvent, func(_ context.Context, p ping, msg Message) error {
		payloads <- p
		got <- msg
		return nil
	}))

	for i := 1; i <= 3; i++ {
		require.NoError(t, Publish(ctx, bus, pingEvent, ping{Seq: i}, WithUserID("p1"), WithMetadata("match_id", "m1")))
	}

	for i := 1; i <= 3; i++ {
		select {
		case p := <-payloads:
			assert.Equal(t, i, p.Seq)
			msg := <-got
			assert.Equal(t, "dungeon.test.ping", msg.Topic)
			assert.Equal(t, "p1", msg.UserID)
			assert.Equal(t, map[string]string{"match_id": "m1"}, msg.Metadata)
		case <-time.After(2 * time.Second):
			t.Fatalf("message %d not delivered", i)
		}
	}
}

func TestHandlerErrorDoesNotStopSubscription(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewWatermillBridge(nil)
	defer bus.Close()

	seen := make(chan int, 4)
	require.NoError(t, Subscribe(ctx, bus, pingEvent, func(_ context.Context, p ping, _ Message) error {
		seen <- p.Seq
		if p.Seq == 1 {
			return errors.New("boom")
		}
		return nil
	}))
	require.NoError(t, Publish(ctx, bus, pingEvent, ping{Seq: 1}))
	require.NoError(t, Publish(ctx, bus, pingEvent, ping{Seq: 2}))

	for _, want := range []int{1, 2} {
		select {
		case seq := <-seen:
			assert.Equal(t, want, seq)
		case <-time.After(2 * time.Second):
			t.Fatalf("message %d not delivered", want)
		}
	}
}

func TestSubscribeRejectsBadPayload(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewWatermillBridge(nil)
	defer bus.Close()

	called := make(chan struct{}, 1)
	require.NoError(t, Subscribe(ctx, bus, pingEvent, func(context.Context, ping, Message) error {
		called <- struct{}{}
		return nil
	}))
	require.NoError(t, bus.Publish(ctx, Message{Topic: pingEvent.Name(), Payload: []byte("not json")}))
	require.NoError(t, Publish(ctx, bus, pingEvent, ping{Seq: 9}))

	select {
	case <-called:
	case <-time.After(2 * time.Second):
		t.Fatal("valid message not delivered")
	}
	assert.Empty(t, called)
}

package websocket_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ws "github.com/nfrund/dungeonwave/internal/websocket"
)

// testFixture holds all the components needed for testing the bridge.
type testFixture struct {
	bridge *ws.Bridge
	server *httptest.Server
	ctx    context.Context
}

func setupTestFixture(t *testing.T, opts ws.Options) *testFixture {
	t.Helper()

	bridge := ws.NewBridge(opts)
	ctx, cancel := context.WithCancel(context.Background())
	go bridge.Run(ctx)

	e := echo.New()
	e.GET("/api/matches/:id/ws", bridge.Handler())
	server := httptest.NewServer(e)

	t.Cleanup(func() {
		cancel()
		server.Close()
	})
	return &testFixture{bridge: bridge, server: server, ctx: ctx}
}

func (f *testFixture) url(matchID, player string) string {
	u := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/api/matches/" + matchID + "/ws"
	if player != "" {
		u += "?player=" + player
	}
	return u
}

func connect(t *testing.T, f *testFixture, matchID, player string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.Dial(context.Background(), f.url(matchID, player), nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() {
		conn.Close(websocket.StatusNormalClosure, "test complete")
	})
	return conn
}

func read(t *testing.T, conn *websocket.Conn) ws.Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var msg ws.Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func encode(t *testing.T, m *ws.Message) []byte {
	t.Helper()
	b, err := m.Encode()
	require.NoError(t, err)
	return b
}

func TestBridge_BroadcastReachesOnlyTheRoom(t *testing.T) {
	f := setupTestFixture(t, ws.Options{})

	p1 := connect(t, f, "m1", "p1")
	spectator := connect(t, f, "m1", "")
	other := connect(t, f, "m2", "p1")
	require.Eventually(t, func() bool {
		return f.bridge.Clients("m1") == 2 && f.bridge.Clients("m2") == 1
	}, time.Second, 10*time.Millisecond)

	f.bridge.Broadcast("m1", encode(t, ws.NewEvent("state_update", map[string]any{"wave": 1})))
	f.bridge.Broadcast("m2", encode(t, ws.NewEvent("turn_ended", nil)))

	for _, conn := range []*websocket.Conn{p1, spectator} {
		msg := read(t, conn)
		assert.Equal(t, ws.TypeEvent, msg.Type)
		assert.Equal(t, "state_update", msg.Event)
	}
	assert.Equal(t, "turn_ended", read(t, other).Event)
}

func TestBridge_SendDirectTargetsOnePlayer(t *testing.T) {
	f := setupTestFixture(t, ws.Options{})

	p1 := connect(t, f, "m1", "p1")
	p2 := connect(t, f, "m1", "p2")
	require.Eventually(t, func() bool { return f.bridge.Clients("m1") == 2 }, time.Second, 10*time.Millisecond)

	f.bridge.SendDirect("m1", "p2", encode(t, ws.NewEvent("choose_discard", nil)))
	f.bridge.Broadcast("m1", encode(t, ws.NewEvent("state_update", nil)))

	assert.Equal(t, "choose_discard", read(t, p2).Event)
	assert.Equal(t, "state_update", read(t, p2).Event)
	// p1 sees only the broadcast.
	assert.Equal(t, "state_update", read(t, p1).Event)
}

func TestBridge_OrderIsPreserved(t *testing.T) {
	f := setupTestFixture(t, ws.Options{})
	conn := connect(t, f, "m1", "p1")
	require.Eventually(t, func() bool { return f.bridge.Clients("m1") == 1 }, time.Second, 10*time.Millisecond)

	kinds := []string{"action_performed", "move", "attack", "state_update"}
	for _, k := range kinds {
		f.bridge.Broadcast("m1", encode(t, ws.NewEvent(k, nil)))
	}
	for _, k := range kinds {
		assert.Equal(t, k, read(t, conn).Event)
	}
}

func TestBridge_AuthorizerRejects(t *testing.T) {
	f := setupTestFixture(t, ws.Options{
		Authorize: func(_ context.Context, matchID, playerID string) error {
			if matchID != "m1" {
				return echo.NewHTTPError(http.StatusNotFound, "no such match")
			}
			return nil
		},
	})

	_, resp, err := websocket.Dial(context.Background(), f.url("missing", "p1"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	connect(t, f, "m1", "p1")
	require.Eventually(t, func() bool { return f.bridge.Clients("") == 1 }, time.Second, 10*time.Millisecond)
}

func TestBridge_InboundReplyAndInvalidMessage(t *testing.T) {
	received := make(chan ws.Incoming, 4)
	f := setupTestFixture(t, ws.Options{
		OnMessage: func(_ context.Context, in ws.Incoming) *ws.Message {
			received <- in
			if !json.Valid(in.Payload) {
				return ws.NewError("validation", "malformed message")
			}
			return ws.NewAck(map[string]string{"ok": "yes"})
		},
	})
	conn := connect(t, f, "m1", "p2")

	require.NoError(t, conn.Write(f.ctx, websocket.MessageText, []byte(`{invalid json`)))
	msg := read(t, conn)
	assert.Equal(t, ws.TypeError, msg.Type)

	// The connection survives a bad message.
	require.NoError(t, conn.Write(f.ctx, websocket.MessageText, []byte(`{"type":"play_card"}`)))
	msg = read(t, conn)
	assert.Equal(t, ws.TypeAck, msg.Type)

	in := <-received
	assert.Equal(t, "m1", in.MatchID)
	assert.Equal(t, "p2", in.PlayerID)
}

func TestBridge_DisconnectLeavesRoom(t *testing.T) {
	f := setupTestFixture(t, ws.Options{})
	conn := connect(t, f, "m1", "p1")
	require.Eventually(t, func() bool { return f.bridge.Clients("m1") == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, "bye"))
	require.Eventually(t, func() bool { return f.bridge.Clients("m1") == 0 }, time.Second, 10*time.Millisecond)

	// Broadcasting to an empty room is a no-op.
	f.bridge.Broadcast("m1", []byte(`{}`))
}

// Package websocket fans match events out to connected clients. Clients join
// the room of one match, either as a seated player or as a spectator.
package websocket

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"
)

const (
	defaultSendBuffer = 256
	writeTimeout      = 10 * time.Second
)

// Client is one connection in a match room. An empty PlayerID is a spectator.
type Client struct {
	MatchID  string
	PlayerID string

	conn   *websocket.Conn
	send   chan []byte
	bridge *Bridge
}

// Incoming is a message received from a client.
type Incoming struct {
	MatchID  string
	PlayerID string
	Payload  []byte
}

// Authorizer checks that a client may join a match. playerID is empty for
// spectators. The returned error is passed to echo unchanged.
type Authorizer func(ctx context.Context, matchID, playerID string) error

// InboundHandler processes a client message. A non-nil reply is sent back to
// the same connection.
type InboundHandler func(ctx context.Context, in Incoming) *Message

// Options configures a Bridge.
type Options struct {
	Logger     *slog.Logger
	Authorize  Authorizer
	OnMessage  InboundHandler
	SendBuffer int
	// OriginPatterns are passed to websocket.Accept. Empty skips the check.
	OriginPatterns []string
}

type roomMessage struct {
	matchID  string
	playerID string
	payload  []byte
}

type replyMessage struct {
	client  *Client
	payload []byte
}

// Bridge owns all connections. One goroutine, Run, mutates the room map;
// everything else talks to it over channels.
type Bridge struct {
	logger    *slog.Logger
	authorize Authorizer
	onMessage InboundHandler
	sendSize  int
	origins   []string

	// rooms maps match id to its clients.
	rooms map[string]map[*Client]struct{}
	mu    sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan roomMessage
	direct     chan roomMessage
	reply      chan replyMessage

	done     chan struct{}
	stopOnce sync.Once
}

// NewBridge initializes a Bridge. Call Run before serving connections.
func NewBridge(opts Options) *Bridge {
	b := &Bridge{
		logger:     opts.Logger,
		authorize:  opts.Authorize,
		onMessage:  opts.OnMessage,
		sendSize:   opts.SendBuffer,
		origins:    opts.OriginPatterns,
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan roomMessage),
		direct:     make(chan roomMessage),
		reply:      make(chan replyMessage),
		done:       make(chan struct{}),
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.sendSize <= 0 {
		b.sendSize = defaultSendBuffer
	}
	return b
}

// Run routes messages until ctx is cancelled, then closes every client.
func (b *Bridge) Run(ctx context.Context) {
	b.logger.Info("websocket bridge started")
	defer b.stop()
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("websocket bridge stopping", "clients", b.Clients(""))
			return

		case client := <-b.register:
			b.mu.Lock()
			room, ok := b.rooms[client.MatchID]
			if !ok {
				room = make(map[*Client]struct{})
				b.rooms[client.MatchID] = room
			}
			room[client] = struct{}{}
			b.mu.Unlock()
			b.logger.Info("client joined match", "match_id", client.MatchID, "player_id", client.PlayerID)

		case client := <-b.unregister:
			b.mu.Lock()
			if room, ok := b.rooms[client.MatchID]; ok {
				if _, ok := room[client]; ok {
					delete(room, client)
					close(client.send)
					if len(room) == 0 {
						delete(b.rooms, client.MatchID)
					}
					b.logger.Info("client left match", "match_id", client.MatchID, "player_id", client.PlayerID)
				}
			}
			b.mu.Unlock()

		case msg := <-b.broadcast:
			b.mu.RLock()
			for client := range b.rooms[msg.matchID] {
				b.enqueue(client, msg.payload)
			}
			b.mu.RUnlock()

		case msg := <-b.direct:
			b.mu.RLock()
			for client := range b.rooms[msg.matchID] {
				if client.PlayerID == msg.playerID {
					b.enqueue(client, msg.payload)
				}
			}
			b.mu.RUnlock()

		case msg := <-b.reply:
			b.mu.RLock()
			if _, ok := b.rooms[msg.client.MatchID][msg.client]; ok {
				b.enqueue(msg.client, msg.payload)
			}
			b.mu.RUnlock()
		}
	}
}

func (b *Bridge) enqueue(client *Client, payload []byte) {
	select {
	case client.send <- payload:
	default:
		b.logger.Warn("client send buffer full, dropping message", "match_id", client.MatchID, "player_id", client.PlayerID)
	}
}

func (b *Bridge) stop() {
	b.stopOnce.Do(func() {
		b.mu.Lock()
		for id, room := range b.rooms {
			for client := range room {
				close(client.send)
			}
			delete(b.rooms, id)
		}
		b.mu.Unlock()
		close(b.done)
	})
}

// Handler upgrades GET /api/matches/:id/ws?player= requests.
func (b *Bridge) Handler() echo.HandlerFunc {
	return func(c echo.Context) error {
		matchID := c.Param("id")
		playerID := c.QueryParam("player")
		if matchID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "match id is required")
		}
		select {
		case <-b.done:
			return echo.NewHTTPError(http.StatusServiceUnavailable, "server is shutting down")
		default:
		}
		if b.authorize != nil {
			if err := b.authorize(c.Request().Context(), matchID, playerID); err != nil {
				return err
			}
		}

		conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
			InsecureSkipVerify: len(b.origins) == 0,
			OriginPatterns:     b.origins,
		})
		if err != nil {
			b.logger.Error("failed to upgrade connection to websocket", "match_id", matchID, "error", err)
			return nil
		}

		client := &Client{
			MatchID:  matchID,
			PlayerID: playerID,
			conn:     conn,
			send:     make(chan []byte, b.sendSize),
			bridge:   b,
		}
		select {
		case b.register <- client:
		case <-b.done:
			conn.Close(websocket.StatusGoingAway, "server is shutting down")
			return nil
		}

		go client.writePump()
		client.readPump(c.Request().Context())
		return nil
	}
}

// readPump forwards inbound messages until the connection closes.
func (c *Client) readPump(ctx context.Context) {
	b := c.bridge
	defer func() {
		select {
		case b.unregister <- c:
		case <-b.done:
		}
		c.conn.Close(websocket.StatusNormalClosure, "client disconnected")
	}()

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			switch {
			case status == websocket.StatusNormalClosure, status == websocket.StatusGoingAway:
				b.logger.Debug("websocket closed by client", "match_id", c.MatchID, "player_id", c.PlayerID)
			case errors.Is(err, io.EOF), errors.Is(err, context.Canceled):
			default:
				b.logger.Warn("websocket read error", "match_id", c.MatchID, "player_id", c.PlayerID, "error", err)
			}
			return
		}
		if b.onMessage == nil {
			continue
		}
		reply := b.onMessage(ctx, Incoming{MatchID: c.MatchID, PlayerID: c.PlayerID, Payload: data})
		if reply == nil {
			continue
		}
		payload, err := reply.Encode()
		if err != nil {
			b.logger.Error("failed to encode reply", "match_id", c.MatchID, "error", err)
			continue
		}
		select {
		case b.reply <- replyMessage{client: c, payload: payload}:
		case <-b.done:
			return
		}
	}
}

// writePump drains the send channel. It exits when the bridge closes it.
func (c *Client) writePump() {
	defer c.conn.Close(websocket.StatusNormalClosure, "server-side cleanup")

	for message := range c.send {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := c.conn.Write(ctx, websocket.MessageText, message)
		cancel()
		if err != nil {
			c.bridge.logger.Warn("websocket write error", "match_id", c.MatchID, "player_id", c.PlayerID, "error", err)
			return
		}
	}
}

// Broadcast sends payload to every client in a match room.
func (b *Bridge) Broadcast(matchID string, payload []byte) {
	select {
	case b.broadcast <- roomMessage{matchID: matchID, payload: payload}:
	case <-b.done:
	}
}

// SendDirect sends payload to the connections of one player in a match.
func (b *Bridge) SendDirect(matchID, playerID string, payload []byte) {
	select {
	case b.direct <- roomMessage{matchID: matchID, playerID: playerID, payload: payload}:
	case <-b.done:
	}
}

// Clients counts the connections in a match room, or in all rooms when
// matchID is empty.
func (b *Bridge) Clients(matchID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if matchID != "" {
		return len(b.rooms[matchID])
	}
	n := 0
	for _, room := range b.rooms {
		n += len(room)
	}
	return n
}

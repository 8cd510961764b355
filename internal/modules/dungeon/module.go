// Package dungeon exposes matches over HTTP and websockets and forwards
// match events from the bus to connected clients.
package dungeon

import (
	"context"
	"errors"
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/dungeonwave/internal/game/service"
	"github.com/nfrund/dungeonwave/internal/module"
	"github.com/nfrund/dungeonwave/internal/modules/dungeon/topics"
	"github.com/nfrund/dungeonwave/internal/pubsub"
	"github.com/nfrund/dungeonwave/internal/registry"
	"github.com/nfrund/dungeonwave/internal/topicmgr"
	"github.com/nfrund/dungeonwave/internal/websocket"
)

// Registry keys published by this module.
var (
	ServiceKey = registry.Key[*service.Service]("dungeon.Service")
	BridgeKey  = registry.Key[*websocket.Bridge]("dungeon.Bridge")
)

// Dependencies holds all the services that the DungeonModule requires.
type Dependencies struct {
	Service    *service.Service
	Subscriber pubsub.Subscriber
	TopicMgr   *topicmgr.Manager
	Logger     *slog.Logger
	// OriginPatterns restricts websocket origins. Empty allows any origin.
	OriginPatterns []string
	// CreateMiddleware wraps match creation, e.g. with a rate limiter.
	CreateMiddleware []echo.MiddlewareFunc
}

// DungeonModule implements the module.Module interface.
type DungeonModule struct {
	module.BaseModule
	deps    Dependencies
	logger  *slog.Logger
	handler *Handler
	bridge  *websocket.Bridge
	cancel  context.CancelFunc
}

// New creates a new instance of the DungeonModule.
func New(deps Dependencies) *DungeonModule {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &DungeonModule{deps: deps, logger: logger.With("module", "dungeon")}
}

// Name returns the unique name for the module.
func (m *DungeonModule) Name() string {
	return "dungeon"
}

// MountPath places the match routes under /api/matches.
func (m *DungeonModule) MountPath() string {
	return "/api/matches"
}

// Register declares the dungeon topics and shares the service and the
// websocket bridge through the registry.
func (m *DungeonModule) Register(reg *registry.Registry) error {
	if m.deps.Service == nil || m.deps.Subscriber == nil || m.deps.TopicMgr == nil {
		return errors.New("dungeon: service, subscriber and topic manager are required")
	}
	if err := topics.Register(m.deps.TopicMgr); err != nil {
		return err
	}

	m.handler = NewHandler(m.deps.Service)
	m.bridge = websocket.NewBridge(websocket.Options{
		Logger:         m.logger,
		Authorize:      m.handler.Authorize,
		OnMessage:      m.handler.Inbound,
		OriginPatterns: m.deps.OriginPatterns,
	})
	registry.Set(reg, ServiceKey, m.deps.Service)
	registry.Set(reg, BridgeKey, m.bridge)
	return nil
}

// Boot starts the bridge and the bus subscriber and mounts the match routes.
func (m *DungeonModule) Boot(ctx context.Context, g *echo.Group, reg *registry.Registry) error {
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	go m.bridge.Run(runCtx)
	if err := NewSubscriber(m.deps.Subscriber, m.bridge, m.logger).Start(runCtx); err != nil {
		cancel()
		return err
	}

	m.logger.Info("booting dungeon module: setting up routes")
	g.POST("", m.handler.CreateMatch, m.deps.CreateMiddleware...)
	g.GET("/:id", m.handler.GetMatch)
	g.POST("/:id/actions", m.handler.PerformAction)
	g.POST("/:id/end-turn", m.handler.EndTurn)
	g.GET("/:id/log", m.handler.MatchLog)
	g.GET("/:id/ws", m.bridge.Handler())
	return nil
}

// Shutdown stops the subscriber and closes every websocket client.
func (m *DungeonModule) Shutdown(ctx context.Context) error {
	m.logger.Info("shutting down dungeon module")
	if m.cancel != nil {
		m.cancel()
	}
	return nil
}

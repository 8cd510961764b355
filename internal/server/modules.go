package server

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/dungeonwave/internal/game/service"
	"github.com/nfrund/dungeonwave/internal/module"
	"github.com/nfrund/dungeonwave/internal/modules/dungeon"
	"github.com/nfrund/dungeonwave/internal/pubsub"
	"github.com/nfrund/dungeonwave/internal/topicmgr"
)

// Dependencies holds the core services that modules are wired from.
type Dependencies struct {
	Service    *service.Service
	Subscriber pubsub.Subscriber
	TopicMgr   *topicmgr.Manager
	Logger     *slog.Logger
	RateLimit  echo.MiddlewareFunc
}

// dungeonDeps creates the dependency struct for the dungeon module.
func dungeonDeps(deps Dependencies) dungeon.Dependencies {
	d := dungeon.Dependencies{
		Service:    deps.Service,
		Subscriber: deps.Subscriber,
		TopicMgr:   deps.TopicMgr,
		Logger:     deps.Logger,
	}
	if deps.RateLimit != nil {
		d.CreateMiddleware = append(d.CreateMiddleware, deps.RateLimit)
	}
	return d
}

// NewModules returns every active module, in boot order.
func NewModules(deps Dependencies) []module.Module {
	return []module.Module{
		dungeon.New(dungeonDeps(deps)),
	}
}

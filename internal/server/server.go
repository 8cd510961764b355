// Package server assembles the application: storage backend, catalog, game
// service, event bus, topics and modules.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/nfrund/dungeonwave/internal/catalog"
	"github.com/nfrund/dungeonwave/internal/config"
	"github.com/nfrund/dungeonwave/internal/game/service"
	"github.com/nfrund/dungeonwave/internal/handlers"
	"github.com/nfrund/dungeonwave/internal/middleware"
	"github.com/nfrund/dungeonwave/internal/module"
	"github.com/nfrund/dungeonwave/internal/modules/dungeon"
	"github.com/nfrund/dungeonwave/internal/pubsub"
	"github.com/nfrund/dungeonwave/internal/registry"
	"github.com/nfrund/dungeonwave/internal/topicmgr"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	E        *echo.Echo
	Cfg      config.Provider
	Registry *registry.Registry
	Topics   *topicmgr.Manager

	logger  *slog.Logger
	bus     *pubsub.WatermillBridge
	service *service.Service
	storage *storage
	modules []module.Module
	cancel  context.CancelFunc
}

// Options overrides pieces of the assembly, mainly for tests.
type Options struct {
	Logger  *slog.Logger
	Catalog catalog.Provider
}

// New wires the server from cfg. Background work started here runs until
// Shutdown.
func New(ctx context.Context, cfg config.Provider, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s := &Server{
		Cfg:      cfg,
		Registry: registry.New(cfg),
		Topics:   topicmgr.NewManager(),
		logger:   logger,
		cancel:   cancel,
	}
	if err := s.assemble(ctx, runCtx, opts); err != nil {
		cancel()
		if s.storage != nil {
			_ = s.storage.close(ctx)
		}
		if s.bus != nil {
			_ = s.bus.Close()
		}
		return nil, err
	}
	return s, nil
}

func (s *Server) assemble(ctx, runCtx context.Context, opts Options) error {
	st, err := openStorage(ctx, s.Cfg, s.logger)
	if err != nil {
		return err
	}
	s.storage = st

	provider := opts.Catalog
	if provider == nil {
		if provider, err = openCatalog(runCtx, s.Cfg, s.logger); err != nil {
			return err
		}
	}

	s.bus = pubsub.NewWatermillBridge(s.logger)
	s.service, err = service.New(service.Options{
		Store:    st.store,
		Log:      st.log,
		Notifier: dungeon.NewNotifier(s.bus),
		Catalog:  provider,
		RNG:      rngFactory(s.Cfg),
		Logger:   s.logger,
	})
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewValidator()
	setupErrorHandling(e)
	e.Use(echomw.RequestID())
	e.Use(middleware.Logger)
	e.Use(echomw.Recover())
	s.E = e
	s.registerRoutes()

	var limiter echo.MiddlewareFunc
	if rps := s.Cfg.GetRateLimit(); rps > 0 {
		limiter = middleware.RateLimiter(rps)
	}
	s.modules = NewModules(Dependencies{
		Service:    s.service,
		Subscriber: s.bus,
		TopicMgr:   s.Topics,
		Logger:     s.logger,
		RateLimit:  limiter,
	})
	if err := registerModules(s.modules, s.Registry); err != nil {
		return err
	}
	s.logger.Debug("modules registered", "services", s.Registry.Keys())
	return bootModules(runCtx, e, s.modules, s.Registry)
}

// registerRoutes sets up the routes owned by the server itself.
func (s *Server) registerRoutes() {
	s.E.GET("/healthz", handlers.Health)
	s.E.GET("/api/topics", func(c echo.Context) error {
		type topicView struct {
			Name        string `json:"name"`
			Module      string `json:"module,omitempty"`
			Scope       string `json:"scope"`
			Description string `json:"description"`
		}
		out := []topicView{}
		for _, t := range s.Topics.List() {
			out = append(out, topicView{Name: t.Name(), Module: t.Module(), Scope: string(t.Scope()), Description: t.Description()})
		}
		return c.JSON(http.StatusOK, out)
	})
}

// Service returns the game service, useful for tests and tools.
func (s *Server) Service() *service.Service {
	return s.service
}

// Run serves until ctx is cancelled and then shuts down.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.Cfg.GetServerAddr(), "store", s.Cfg.GetStoreBackend())
		if err := s.E.Start(s.Cfg.GetServerAddr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			_ = s.Shutdown(context.WithoutCancel(ctx))
			return fmt.Errorf("serve %s: %w", s.Cfg.GetServerAddr(), err)
		}
		return nil
	case <-ctx.Done():
	}
	return s.Shutdown(context.WithoutCancel(ctx))
}

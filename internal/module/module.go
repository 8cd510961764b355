// Package module defines the lifecycle shared by every application feature.
package module

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/dungeonwave/internal/registry"
)

// Module is a self-contained feature mounted under its own route group.
type Module interface {
	// Name returns a unique identifier, also used as the route prefix.
	Name() string

	// Register shares the module's services through the registry. It runs
	// for every module before any module boots.
	Register(reg *registry.Registry) error

	// Boot mounts routes and starts background work. ctx lives as long as
	// the server.
	Boot(ctx context.Context, router *echo.Group, reg *registry.Registry) error

	// Shutdown stops background work. Modules shut down in reverse order.
	Shutdown(ctx context.Context) error
}

// BaseModule provides no-op lifecycle methods for embedding.
type BaseModule struct{}

func (m *BaseModule) Register(reg *registry.Registry) error { return nil }
func (m *BaseModule) Boot(ctx context.Context, router *echo.Group, reg *registry.Registry) error {
	return nil
}
func (m *BaseModule) Shutdown(ctx context.Context) error { return nil }

// Mounted lets a module choose its route prefix. Other modules are mounted
// under /api/<name>.
type Mounted interface {
	MountPath() string
}

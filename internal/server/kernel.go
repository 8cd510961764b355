package server

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/dungeonwave/internal/module"
	"github.com/nfrund/dungeonwave/internal/registry"
)

// mountPath is where a module's routes live.
func mountPath(m module.Module) string {
	if mm, ok := m.(module.Mounted); ok {
		return mm.MountPath()
	}
	return "/api/" + m.Name()
}

// registerModules runs the Register phase of every module.
func registerModules(mods []module.Module, reg *registry.Registry) error {
	for _, m := range mods {
		if err := m.Register(reg); err != nil {
			return fmt.Errorf("register module %s: %w", m.Name(), err)
		}
	}
	return nil
}

// bootModules mounts every module on e once all of them have registered.
func bootModules(ctx context.Context, e *echo.Echo, mods []module.Module, reg *registry.Registry) error {
	for _, m := range mods {
		if err := m.Boot(ctx, e.Group(mountPath(m)), reg); err != nil {
			return fmt.Errorf("boot module %s: %w", m.Name(), err)
		}
	}
	return nil
}

// shutdownModules stops modules in reverse boot order and returns the first
// error.
func shutdownModules(ctx context.Context, mods []module.Module) error {
	var first error
	for i := len(mods) - 1; i >= 0; i-- {
		if err := mods[i].Shutdown(ctx); err != nil && first == nil {
			first = fmt.Errorf("shutdown module %s: %w", mods[i].Name(), err)
		}
	}
	return first
}

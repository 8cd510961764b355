package server

import (
	"context"
	"errors"
	"time"
)

const shutdownTimeout = 10 * time.Second

// Shutdown stops modules, the HTTP server, the bus and the storage backend,
// in that order.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down server")

	errs := []error{shutdownModules(ctx, s.modules)}
	if s.E != nil {
		errs = append(errs, s.E.Shutdown(ctx))
	}
	s.cancel()
	if s.bus != nil {
		errs = append(errs, s.bus.Close())
	}
	if s.storage != nil {
		errs = append(errs, s.storage.close(ctx))
	}
	return errors.Join(errs...)
}

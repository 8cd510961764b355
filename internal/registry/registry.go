// Package registry is the typed service locator modules use to share the
// game service, the websocket bridge and similar long-lived values.
package registry

import (
	"fmt"
	"slices"
	"sync"

	"github.com/nfrund/dungeonwave/internal/config"
)

// Key names a service of type T, e.g. Key[*service.Service]("dungeon.Service").
type Key[T any] string

// Registry holds the services registered during module Register calls.
type Registry struct {
	mu       sync.RWMutex
	services map[string]any
	cfg      config.Provider
}

// New returns an empty registry carrying cfg.
func New(cfg config.Provider) *Registry {
	return &Registry{services: make(map[string]any), cfg: cfg}
}

// Config returns the configuration the server was built from.
func (r *Registry) Config() config.Provider {
	return r.cfg
}

// Keys lists the registered key names in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.services))
	for k := range r.services {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Set stores value under key, replacing any earlier value.
func Set[T any](r *Registry, key Key[T], value T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[string(key)] = value
}

// Get returns the value under key. A value stored under the same name with
// another type is reported as missing.
func Get[T any](r *Registry, key Key[T]) (T, bool) {
	r.mu.RLock()
	val, ok := r.services[string(key)]
	r.mu.RUnlock()
	if !ok {
		var zero T
		return zero, false
	}
	result, ok := val.(T)
	return result, ok
}

// MustGet is Get for wiring that cannot proceed without the service.
func MustGet[T any](r *Registry, key Key[T]) T {
	val, ok := Get(r, key)
	if !ok {
		panic(fmt.Sprintf("service not found for key: %v", key))
	}
	return val
}

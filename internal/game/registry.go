package game

import (
	"fmt"
	"sync"
)

// Registry maps game types to their session factories. The mapping is closed
// and explicit: every playable type is registered at startup, and dispatch is
// always by type tag, never by reflection.
type Registry struct {
	factories map[Type]Factory
	mu        sync.RWMutex
}

// NewRegistry creates an empty game registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[Type]Factory)}
}

// Register adds a factory for a game type. Registering the same type twice
// replaces the previous factory.
func (r *Registry) Register(t Type, f Factory) error {
	if t == "" {
		return fmt.Errorf("game type cannot be empty")
	}
	if f == nil {
		return fmt.Errorf("cannot register nil factory for %q", t)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[t] = f
	return nil
}

// Get retrieves the factory for a game type.
func (r *Registry) Get(t Type) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[t]
	return f, ok
}

// Types returns all registered game types.
func (r *Registry) Types() []Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]Type, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	return types
}

// Count returns the number of registered game types.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.factories)
}

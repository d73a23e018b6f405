package wizard

import (
	"sync"

	"tailored-cv-web/internal/shared/storage/object"
)

// Registry hands out one Controller per session id.
type Registry struct {
	store   object.ObjectStore
	backend Backend

	mu          sync.Mutex
	controllers map[string]*Controller
}

func NewRegistry(store object.ObjectStore, backend Backend) *Registry {
	return &Registry{
		store:       store,
		backend:     backend,
		controllers: make(map[string]*Controller),
	}
}

// For returns the controller for sessionID, creating it on first use.
func (r *Registry) For(sessionID string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.controllers[sessionID]; ok {
		return c
	}
	c := NewController(sessionID, r.store, r.backend)
	r.controllers[sessionID] = c
	return c
}

// Drop discards the controller for sessionID and its stored profile.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	c, ok := r.controllers[sessionID]
	delete(r.controllers, sessionID)
	r.mu.Unlock()
	if ok {
		c.Restart()
	}
}

// Len reports how many sessions hold a wizard.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.controllers)
}

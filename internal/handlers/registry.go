package handlers

import (
	"sort"
	"sync"

	"github.com/custodia-labs/nova/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.HandlerRegistry = (*Registry)(nil)

// Registry holds handlers in a fixed priority order.
type Registry struct {
	mu       sync.RWMutex
	handlers []driven.Handler
}

// NewRegistry creates a registry with the given handlers.
func NewRegistry(handlers ...driven.Handler) *Registry {
	r := &Registry{}
	for _, h := range handlers {
		r.Register(h)
	}
	return r
}

// Register adds a handler. Higher priority handlers are tried first;
// equal priorities are ordered by name.
func (r *Registry) Register(h driven.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers = append(r.handlers, h)
	sort.SliceStable(r.handlers, func(i, j int) bool {
		if r.handlers[i].Priority() != r.handlers[j].Priority() {
			return r.handlers[i].Priority() > r.handlers[j].Priority()
		}
		return r.handlers[i].Name() < r.handlers[j].Name()
	})
}

// Lookup returns the first handler that accepts path.
func (r *Registry) Lookup(path string) (driven.Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, h := range r.handlers {
		if h.Detect(path) {
			return h, true
		}
	}
	return nil, false
}

// Handlers returns the registered handlers in priority order.
func (r *Registry) Handlers() []driven.Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]driven.Handler, len(r.handlers))
	copy(out, r.handlers)
	return out
}

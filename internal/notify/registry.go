// internal/notify/registry.go
package notify

import (
	"fmt"
	"strings"
	"sync"
)

// Handler delivers a message to a destination identified by notifyKey.
type Handler func(notifyKey, message string) error

// Registry routes run-outcome messages to the appropriate notifier based
// on key prefix (e.g. "telegram:").
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty notifier registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

// Register adds a handler for notify keys starting with prefix.
func (r *Registry) Register(prefix string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[prefix] = handler
}

// Notify finds the handler matching the key prefix and calls it.
// Returns an error if no handler is registered for the prefix.
func (r *Registry) Notify(notifyKey, message string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for prefix, handler := range r.handlers {
		if strings.HasPrefix(notifyKey, prefix) {
			return handler(notifyKey, message)
		}
	}
	return fmt.Errorf("no notifier for key: %s", notifyKey)
}

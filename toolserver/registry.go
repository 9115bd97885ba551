package toolserver

import (
	"errors"
	"fmt"
	"sync"
)

// ErrDuplicateTool is returned when a tool name is registered twice.
var ErrDuplicateTool = errors.New("tool already registered")

// ErrUnknownTool is returned when resolving a name nobody registered.
var ErrUnknownTool = errors.New("unknown tool")

type registration struct {
	desc    Descriptor
	handler Handler
}

// Registry maps tool names to their descriptor and handler. It is
// read-mostly after startup and safe to share across concurrent
// invocations. Registration order is preserved so discovery output is
// deterministic.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*registration
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*registration),
	}
}

// Register adds a tool. The name must be non-empty and unused.
func (r *Registry) Register(desc Descriptor, handler Handler) error {
	if desc.Name == "" {
		return fmt.Errorf("tool name is empty")
	}
	if handler == nil {
		return fmt.Errorf("tool %s: handler is nil", desc.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[desc.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, desc.Name)
	}

	r.entries[desc.Name] = &registration{desc: desc, handler: handler}
	r.order = append(r.order, desc.Name)
	return nil
}

// List returns the registered descriptors in registration order.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name].desc)
	}
	return out
}

// Resolve returns the handler registered under name.
func (r *Registry) Resolve(name string) (Handler, error) {
	reg, ok := r.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return reg.handler, nil
}

func (r *Registry) lookup(name string) (*registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.entries[name]
	return reg, ok
}

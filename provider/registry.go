package provider

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds a Provider on demand.
type Factory func() (Provider, error)

// Registry manages named provider factories with lazy instantiation.
// Factories are stored at registration time; providers are created on first
// Get call and cached. Thread-safe for concurrent access.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	providers map[string]Provider
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		providers: make(map[string]Provider),
	}
}

// Register adds a named provider factory. The provider is not instantiated
// until Get is called.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("%w: %s", ErrExists, name)
	}

	r.factories[name] = factory
	return nil
}

// Get retrieves a named provider, instantiating it lazily on first access.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, exists := r.providers[name]; exists {
		return p, nil
	}

	factory, registered := r.factories[name]
	if !registered {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	p, err := factory()
	if err != nil {
		return nil, fmt.Errorf("failed to create provider %q: %w", name, err)
	}

	r.providers[name] = p
	return p, nil
}

// Replace updates the factory for an existing named provider. Any cached
// instance is invalidated; the next Get re-instantiates.
func (r *Registry) Replace(name string, factory Factory) error {
	if name == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	r.factories[name] = factory
	delete(r.providers, name)
	return nil
}

// Unregister removes a named provider from the registry.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	delete(r.factories, name)
	delete(r.providers, name)
	return nil
}

// List returns the registered provider names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

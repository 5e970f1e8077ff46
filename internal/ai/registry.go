package ai

import (
	"fmt"
	"sync"
)

// Registry manages all registered chat-completion providers, keyed by their
// normalized code.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]ChatProvider
}

// NewRegistry creates a new provider registry
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]ChatProvider),
	}
}

// Register registers a new chat provider
func (r *Registry) Register(provider ChatProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	code := NormalizeProviderCode(provider.Code())
	if code == "" {
		return fmt.Errorf("provider code cannot be empty")
	}

	if _, exists := r.providers[code]; exists {
		return fmt.Errorf("provider %s is already registered", code)
	}

	r.providers[code] = provider
	return nil
}

// Get returns a provider by its code
func (r *Registry) Get(code string) (ChatProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[NormalizeProviderCode(code)]
	if !exists {
		return nil, fmt.Errorf("provider %s not found", code)
	}

	return provider, nil
}

// Has checks if a provider is registered
func (r *Registry) Has(code string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.providers[NormalizeProviderCode(code)]
	return exists
}

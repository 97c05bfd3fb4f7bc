package provider

import (
	"sync"

	"github.com/vaultmind-ai/vaultmind/internal/config"
	"github.com/vaultmind-ai/vaultmind/pkg/types"
)

// Registry holds configured providers keyed by id.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a provider.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.ID()] = p
}

// Get resolves a provider id. A missing provider is a configuration
// error: the exchange cannot be issued.
func (r *Registry) Get(id string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	if !ok {
		return nil, &types.ConfigurationError{Field: "providers." + id, Msg: "provider not configured"}
	}
	return p, nil
}

// FromSettings builds a registry from configured credentials. Providers
// without credentials are simply not registered.
func FromSettings(s *config.Settings) *Registry {
	r := NewRegistry()
	if ps, ok := s.Providers["anthropic"]; ok && ps.APIKey != "" {
		if p, err := NewAnthropicProvider(ps.APIKey, ps.BaseURL, s.MaxTokens); err == nil {
			r.Register(p)
		}
	}
	if ps, ok := s.Providers["openai"]; ok && ps.APIKey != "" {
		if p, err := NewOpenAIProvider(ps.APIKey, ps.BaseURL, s.MaxTokens); err == nil {
			r.Register(p)
		}
	}
	return r
}

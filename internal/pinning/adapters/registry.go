package adapters

import (
	"strings"

	"github.com/zedanazad43/stampcoin-platform/internal/pinning/domain"
)

// Registry holds the known pin-provider factories keyed by name.
type Registry struct {
	factories map[string]domain.ProviderFactory
}

func NewRegistry(factories ...domain.ProviderFactory) *Registry {
	registry := &Registry{factories: map[string]domain.ProviderFactory{}}
	for _, factory := range factories {
		if factory == nil {
			continue
		}
		provider := strings.ToLower(strings.TrimSpace(factory.Provider()))
		if provider == "" {
			continue
		}
		registry.factories[provider] = factory
	}
	return registry
}

func (r *Registry) ProviderExists(provider string) bool {
	if r == nil {
		return false
	}
	provider = strings.ToLower(strings.TrimSpace(provider))
	_, ok := r.factories[provider]
	return ok
}

func (r *Registry) New(provider string, cfg domain.ProviderConfig) (domain.Provider, error) {
	if r == nil {
		return nil, domain.ErrProviderNotFound
	}
	provider = strings.ToLower(strings.TrimSpace(provider))
	factory, ok := r.factories[provider]
	if !ok {
		return nil, domain.ErrProviderNotFound
	}
	return factory.New(cfg)
}

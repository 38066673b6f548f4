package container

import (
	"fmt"
	"reflect"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups the registrations of one concern.
//
// Register runs as soon as the provider is added and only binds services.
// Boot runs once every provider is registered and the container is built,
// so it may resolve anything.
//
//	type CatsServiceProvider struct{ container.BaseProvider }
//
//	func (p *CatsServiceProvider) Register(c *container.Container) error {
//	    return c.AddScoped(NewCatsController)
//	}
//
//	func (p *CatsServiceProvider) Boot(provider *container.Provider) error {
//	    router := container.MustResolve[*routing.Router](provider, nil)
//	    router.Get("/cats/{id}", ...)
//	    return nil
//	}
type ServiceProvider interface {
	// Register binds services into the container.
	// Do NOT resolve anything here, use Boot for that.
	Register(c *Container) error

	// Boot is called after all providers are registered and the container
	// is built.
	Boot(p *Provider) error
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable no-op Boot.
//
//	type MyProvider struct{ container.BaseProvider }
//	func (p *MyProvider) Register(c *container.Container) error { ... }
type BaseProvider struct{}

func (p *BaseProvider) Boot(*Provider) error { return nil }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry registers providers against a container, builds it once
// everything is registered and boots the providers in registration order.
type ProviderRegistry struct {
	app        *Container
	providers  []ServiceProvider
	registered map[ServiceProvider]bool
	provider   *Provider
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register method. Adding the same
// provider twice is a no-op. Providers cannot be added after Boot.
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	if r.registered[provider] {
		return nil
	}
	if r.provider != nil {
		return fmt.Errorf("container: cannot register %s after boot", providerName(provider))
	}
	if err := provider.Register(r.app); err != nil {
		return fmt.Errorf("container: registering %s: %w", providerName(provider), err)
	}
	r.registered[provider] = true
	r.providers = append(r.providers, provider)
	return nil
}

// Boot builds the container and calls Boot on every provider. Calling it
// again returns the same Provider.
func (r *ProviderRegistry) Boot() (*Provider, error) {
	if r.provider != nil {
		return r.provider, nil
	}
	p, err := r.app.Build()
	if err != nil {
		return nil, err
	}
	for _, provider := range r.providers {
		if err := provider.Boot(p); err != nil {
			return nil, fmt.Errorf("container: booting %s: %w", providerName(provider), err)
		}
	}
	r.provider = p
	return p, nil
}

// Booted reports whether Boot succeeded.
func (r *ProviderRegistry) Booted() bool { return r.provider != nil }

// Providers returns the registered providers in registration order.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.providers }

func providerName(p ServiceProvider) string {
	return reflect.TypeOf(p).String()
}

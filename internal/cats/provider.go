package cats

import (
	"context"

	"github.com/km-arc/go-ioc/framework/container"
	"github.com/km-arc/go-ioc/framework/routing"
)

// ServiceProvider registers the cats domain and its routes:
//
//	GET  /cats
//	POST /cats
//	GET  /cats/stats
//	GET  /cats/{id}
type ServiceProvider struct {
	// Seed names the cats the repository starts with.
	Seed []string
}

func (p *ServiceProvider) Register(c *container.Container) error {
	repo := NewInMemoryCatsRepository(p.Seed...)
	if err := c.AddInstance(repo, container.As(container.TypeKey[CatsRepository]())); err != nil {
		return err
	}
	if c.Strict() {
		// Without inferred aliases the controller's untyped field needs an
		// explicit name.
		if err := c.Register(container.Name("cats_repository"), container.Spec{Instance: repo}); err != nil {
			return err
		}
	}
	if err := c.AddScoped(NewGetCatRequestHandler); err != nil {
		return err
	}
	if err := container.RegisterScoped[*CatsController](c); err != nil {
		return err
	}
	return c.AddSingletonFactory(func(ctx context.Context, scope *container.ActivationScope) (*Stats, error) {
		repo, err := container.Resolve[CatsRepository](scope.Provider(), scope)
		if err != nil {
			return nil, err
		}
		return NewStats(ctx, repo)
	})
}

func (p *ServiceProvider) Boot(provider *container.Provider) error {
	router, err := container.Resolve[*routing.Router](provider, nil)
	if err != nil {
		return err
	}
	router.Prefix("/cats", func(r *routing.Router) {
		r.Get("/", action((*CatsController).Index))
		r.Post("/", action((*CatsController).Store))
		r.Get("/stats", action((*CatsController).Stats))
		r.Get("/{id}", action((*CatsController).Show))
	})
	return nil
}

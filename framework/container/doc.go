// Package container provides an inversion-of-control container for Go:
// services are registered against keys, compiled once into a Provider and
// resolved with singleton, scoped or transient lifetimes.
//
// # Container Lifecycle
//
//  1. Create: c := container.New(container.WithLogger(logger))
//  2. Register services, directly or through a ProviderRegistry
//  3. Build: provider, err := c.Build(), which reports missing
//     dependencies and cycles before anything is constructed
//  4. Resolve per unit of work inside an ActivationScope
//  5. provider.Close() releases singleton resources
//
// # Keys
//
// A Key is either a Go type or a plain name:
//
//	container.TypeKey[*CatsController]()
//	container.Name("config")
//
// # Registrations
//
//	// Pre-built value
//	c.AddInstance(cfg)
//
//	// Constructor, parameters resolved by type
//	c.AddScoped(NewGetCatRequestHandler)
//
//	// Constructor bound under an interface
//	c.AddSingleton(NewInMemoryCatsRepository,
//	    container.As(container.TypeKey[CatsRepository]()))
//
//	// Struct type, exported fields injected
//	container.RegisterScoped[*CatsController](c)
//
//	// Factories: func() T, func(*ActivationScope) T or
//	// func(*ActivationScope, reflect.Type) T, returning T, (T, error),
//	// (T, func(), error) or (T, func() error, error)
//	c.AddSingletonFactory(func() (*sql.DB, func() error, error) {
//	    db, err := sql.Open("sqlite", dsn)
//	    if err != nil {
//	        return nil, nil, err
//	    }
//	    return db, db.Close, nil
//	})
//
// A factory taking a leading context.Context is async: it activates to a
// Future and services depending on it must be resolved with AResolve.
//
// # Name fallback and aliases
//
// Parameters declared as any, or whose type is not registered, are resolved
// by name. Constructor parameter names come from ParamNames; struct fields
// use their di tag or their snake_case name.
//
// Outside strict mode every registered type also answers to three inferred
// aliases (CatsRepository, catsrepository, cats_repository). AddAlias adds
// more; SetAlias adds exact aliases, which take precedence.
//
//	c.AddTransient(NewJing, container.ParamNames("jang"))
//	c.SetAlias("db", container.TypeKey[*sql.DB](), false)
//
// # Resolving
//
//	scope := provider.NewScope()
//	defer scope.Close()
//	handler, err := container.Resolve[*GetCatRequestHandler](provider, scope)
//
// # Contextual Binding
//
//	c.When(container.TypeKey[*PhotoController]()).
//	    Needs(container.TypeKey[Filesystem]()).
//	    Give(container.TypeKey[*S3Filesystem]())
//
// # Service Providers
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&CatsServiceProvider{})
//	provider, err := registry.Boot()
package container

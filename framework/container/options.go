package container

import (
	"time"

	"go.uber.org/zap"
)

// Observer receives timing information about builds and resolves. The
// metrics package provides a Prometheus implementation.
type Observer interface {
	ObserveBuild(entries int, elapsed time.Duration, err error)
	ObserveResolve(key Key, lifetime Lifetime, elapsed time.Duration, err error)
}

// Option configures a Container.
type Option func(*Container)

// WithStrict disables aliases: no inferred aliases on bind, AddAlias and
// SetAlias fail, and dependencies only resolve by type or registered name.
func WithStrict(strict bool) Option {
	return func(c *Container) { c.strict = strict }
}

// WithLogger sets the logger used by the container, its providers and
// scopes.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver sets the build/resolve observer.
func WithObserver(o Observer) Option {
	return func(c *Container) { c.observer = o }
}

// RegisterOption tunes a single registration.
type RegisterOption func(*registerOptions)

type registerOptions struct {
	key   Key
	names []string
}

func applyRegisterOptions(opts []RegisterOption) registerOptions {
	var o registerOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// As binds the registration under key instead of the constructed type. The
// constructed type must be assignable to key's type. For factories returning
// any, As supplies the missing type.
//
//	c.AddSingleton(NewInMemoryCatsRepository, container.As(container.TypeKey[CatsRepository]()))
func As(key Key) RegisterOption {
	return func(o *registerOptions) { o.key = key }
}

// ParamNames names the constructor's parameters, in order. Names are used
// to resolve parameters declared as any, or whose type is not registered.
//
//	c.AddTransient(NewJing, container.ParamNames("jang"))
func ParamNames(names ...string) RegisterOption {
	return func(o *registerOptions) { o.names = append(o.names, names...) }
}

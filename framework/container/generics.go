package container

import (
	"context"
	"fmt"
	"reflect"
)

// Source is anything services can be resolved from: a Container (through
// its cached Provider) or a Provider.
type Source interface {
	Resolve(key Key, scope *ActivationScope) (any, error)
	AResolve(ctx context.Context, key Key, scope *ActivationScope) (any, error)
}

// Resolve resolves the service registered for type T.
//
//	repo, err := container.Resolve[CatsRepository](provider, scope)
func Resolve[T any](src Source, scope *ActivationScope) (T, error) {
	return ResolveKey[T](src, TypeKey[T](), scope)
}

// ResolveKey resolves key and asserts the result to T.
//
//	cfg, err := container.ResolveKey[*config.Config](provider, container.Name("config"), nil)
func ResolveKey[T any](src Source, key Key, scope *ActivationScope) (T, error) {
	v, err := src.Resolve(key, scope)
	if err != nil {
		var zero T
		return zero, err
	}
	return cast[T](key, v)
}

// AResolve resolves the service registered for type T, awaiting async
// dependencies.
func AResolve[T any](ctx context.Context, src Source, scope *ActivationScope) (T, error) {
	v, err := src.AResolve(ctx, TypeKey[T](), scope)
	if err != nil {
		var zero T
		return zero, err
	}
	return cast[T](TypeKey[T](), v)
}

// MustResolve is Resolve that panics on error. Use it in wiring code only.
func MustResolve[T any](src Source, scope *ActivationScope) T {
	v, err := Resolve[T](src, scope)
	if err != nil {
		panic(err)
	}
	return v
}

func cast[T any](key Key, v any) (T, error) {
	t, ok := v.(T)
	if !ok && v != nil {
		return t, fmt.Errorf("container: [%s] resolved to %T, not %s", key, v, reflect.TypeFor[T]())
	}
	return t, nil
}

// RegisterSingleton registers struct type T, injecting its exported fields,
// with singleton lifetime.
//
//	container.RegisterSingleton[*CatsController](c)
func RegisterSingleton[T any](c *Container, opts ...RegisterOption) error {
	return c.AddSingleton(reflect.TypeFor[T](), opts...)
}

// RegisterScoped registers struct type T with scoped lifetime.
func RegisterScoped[T any](c *Container, opts ...RegisterOption) error {
	return c.AddScoped(reflect.TypeFor[T](), opts...)
}

// RegisterTransient registers struct type T with transient lifetime.
func RegisterTransient[T any](c *Container, opts ...RegisterOption) error {
	return c.AddTransient(reflect.TypeFor[T](), opts...)
}

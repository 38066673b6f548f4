package container

import (
	"context"
	"fmt"
	"reflect"
)

// factoryFunc is the single calling convention every factory shape is
// normalized to.
type factoryFunc func(ctx context.Context, scope *ActivationScope, activating reflect.Type) (any, func() error, error)

// normalizedFactory is a user factory adapted to factoryFunc.
type normalizedFactory struct {
	call  factoryFunc
	out   reflect.Type
	async bool
}

// normalizeFactory accepts any of the supported factory shapes:
//
//	func() T
//	func(*ActivationScope) T
//	func(*ActivationScope, reflect.Type) T
//
// each optionally taking a leading context.Context, which makes the factory
// async, and returning (T), (T, error), (T, func(), error) or
// (T, func() error, error).
func normalizeFactory(factory any) (normalizedFactory, error) {
	if factory == nil {
		return normalizedFactory{}, errInvalidFactory("factory is nil")
	}
	fv := reflect.ValueOf(factory)
	ft := fv.Type()
	if ft.Kind() != reflect.Func {
		return normalizedFactory{}, errInvalidFactory(fmt.Sprintf("%s is not a function", ft))
	}
	if ft.IsVariadic() {
		return normalizedFactory{}, errInvalidFactory("variadic factories are not supported")
	}

	in := make([]reflect.Type, ft.NumIn())
	for i := range in {
		in[i] = ft.In(i)
	}

	async := len(in) > 0 && in[0] == contextType
	if async {
		in = in[1:]
	}
	if len(in) > 2 {
		return normalizedFactory{}, errInvalidFactory(fmt.Sprintf("%s takes %d parameters, at most 2 are supported", ft, len(in)))
	}
	if len(in) >= 1 && in[0] != scopeType {
		return normalizedFactory{}, errInvalidFactory(fmt.Sprintf("first parameter of %s must be *container.ActivationScope", ft))
	}
	if len(in) == 2 && in[1] != typeType {
		return normalizedFactory{}, errInvalidFactory(fmt.Sprintf("second parameter of %s must be reflect.Type", ft))
	}

	shape, err := shapeOf(ft)
	if err != nil {
		return normalizedFactory{}, errInvalidFactory(err.Error())
	}

	arity := len(in)
	call := func(ctx context.Context, scope *ActivationScope, activating reflect.Type) (any, func() error, error) {
		args := make([]reflect.Value, 0, 3)
		if async {
			args = append(args, reflect.ValueOf(ctx))
		}
		if arity >= 1 {
			args = append(args, reflect.ValueOf(scope))
		}
		if arity == 2 {
			if activating == nil {
				args = append(args, reflect.Zero(typeType))
			} else {
				args = append(args, reflect.ValueOf(activating))
			}
		}
		return shape.unpack(fv.Call(args))
	}

	return normalizedFactory{call: call, out: shape.out, async: async}, nil
}

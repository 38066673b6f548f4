package container

import (
	"context"
	"fmt"
	"reflect"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Resolver is a construction recipe bound to a key. Compile turns it into an
// Activator during Build, resolving its dependencies through ctx.
type Resolver interface {
	Lifetime() Lifetime
	Compile(ctx *ResolutionContext) (Activator, error)
}

// ── ResolutionContext ─────────────────────────────────────────────────────────

// ResolutionContext is the state of one Build pass: the activators compiled
// so far and the chain of types currently being constructed.
type ResolutionContext struct {
	container *Container
	root      *ActivationScope
	resolved  map[Key]Activator
	chain     []Key
	logger    *zap.Logger
}

func newResolutionContext(c *Container, root *ActivationScope) *ResolutionContext {
	return &ResolutionContext{
		container: c,
		root:      root,
		resolved:  make(map[Key]Activator),
		logger:    c.logger,
	}
}

// Chain returns a copy of the types currently being constructed, outermost
// first.
func (ctx *ResolutionContext) Chain() []Key {
	return slices.Clone(ctx.chain)
}

// Resolve compiles the registration for key, reusing the activator if the key
// was compiled earlier in this pass.
func (ctx *ResolutionContext) Resolve(key Key) (Activator, error) {
	if act, ok := ctx.resolved[key]; ok {
		return act, nil
	}
	r, ok := ctx.container.registry[key]
	if !ok {
		return nil, errServiceNotFound(key)
	}
	act, err := r.Compile(ctx)
	if err != nil {
		return nil, err
	}
	ctx.resolved[key] = act
	return act, nil
}

func (ctx *ResolutionContext) push(key Key) error {
	if slices.Contains(ctx.chain, key) {
		return errCircularDependency(append(slices.Clone(ctx.chain), key))
	}
	ctx.chain = append(ctx.chain, key)
	return nil
}

func (ctx *ResolutionContext) pop() {
	ctx.chain = ctx.chain[:len(ctx.chain)-1]
}

// dependency finds the activator for parameter p. owners lists the keys
// contextual bindings may be declared on: the registration key, then the
// constructed type. Precedence: contextual binding, declared type, exact
// alias, inferred alias, then a service registered under the parameter name.
func (ctx *ResolutionContext) dependency(owners []Key, p Param) (Activator, error) {
	c := ctx.container
	owner := owners[0]

	for _, o := range owners {
		if b, ok := c.contextualFor(o, p); ok {
			if b.resolver != nil {
				return b.resolver.Compile(ctx)
			}
			return ctx.Resolve(b.target)
		}
	}

	if p.Type != nil {
		if _, ok := c.registry[KeyOf(p.Type)]; ok {
			return ctx.Resolve(KeyOf(p.Type))
		}
	}

	if p.Name != "" {
		if !c.strict {
			if target, ok := c.exactAliases[p.Name]; ok {
				return ctx.Resolve(target)
			}
			if targets := c.aliases[p.Name]; len(targets) > 0 {
				return ctx.Resolve(targets[0])
			}
		}
		if _, ok := c.registry[Name(p.Name)]; ok {
			return ctx.Resolve(Name(p.Name))
		}
	}

	return nil, errUnresolvedDependency(p.String(), owner)
}

// releaseTarget returns the scope that owns resources created by a service
// of the given lifetime.
func (ctx *ResolutionContext) releaseTarget(lifetime Lifetime, scope *ActivationScope) *ActivationScope {
	if lifetime == Singleton || scope == nil {
		return ctx.root
	}
	return scope
}

// ── InstanceResolver ──────────────────────────────────────────────────────────

// InstanceResolver serves a pre-built value.
type InstanceResolver struct {
	value any
}

// NewInstanceResolver returns a resolver for v.
func NewInstanceResolver(v any) *InstanceResolver {
	return &InstanceResolver{value: v}
}

func (r *InstanceResolver) Lifetime() Lifetime { return Singleton }

func (r *InstanceResolver) Compile(*ResolutionContext) (Activator, error) {
	v := r.value
	return func(*ActivationScope, reflect.Type) (any, error) { return v, nil }, nil
}

// ── FactoryResolver ───────────────────────────────────────────────────────────

// FactoryResolver builds a service with a user factory.
type FactoryResolver struct {
	key      Key
	factory  normalizedFactory
	lifetime Lifetime
}

// NewFactoryResolver adapts factory for key. See normalizeFactory for the
// accepted shapes.
func NewFactoryResolver(key Key, factory any, lifetime Lifetime) (*FactoryResolver, error) {
	f, err := normalizeFactory(factory)
	if err != nil {
		return nil, err
	}
	return &FactoryResolver{key: key, factory: f, lifetime: lifetime}, nil
}

func (r *FactoryResolver) Lifetime() Lifetime { return r.lifetime }

// Async reports whether the factory takes a context and activates to a
// Future.
func (r *FactoryResolver) Async() bool { return r.factory.async }

func (r *FactoryResolver) Compile(ctx *ResolutionContext) (Activator, error) {
	call := r.factory.call
	lifetime := r.lifetime
	key := r.key

	run := func(c context.Context, scope *ActivationScope, activating reflect.Type) (any, error) {
		v, release, err := call(c, scope, activating)
		if err != nil {
			return nil, fmt.Errorf("container: factory for [%s]: %w", key, err)
		}
		if release != nil {
			ctx.releaseTarget(lifetime, scope).onRelease(release)
		}
		return v, nil
	}

	var build Activator
	if r.factory.async {
		build = func(scope *ActivationScope, activating reflect.Type) (any, error) {
			return NewFuture(func(c context.Context) (any, error) {
				return run(c, scope, activating)
			}), nil
		}
	} else {
		build = func(scope *ActivationScope, activating reflect.Type) (any, error) {
			return run(context.Background(), scope, activating)
		}
	}

	ctx.logger.Debug("factory compiled", zap.Stringer("key", key), zap.Stringer("lifetime", lifetime), zap.Bool("async", r.factory.async))
	return withLifetime(key, lifetime, build), nil
}

// ── DynamicResolver ───────────────────────────────────────────────────────────

// DynamicResolver builds a service from a constructor function or a struct
// type, resolving each parameter (or exported field) from the container.
type DynamicResolver struct {
	// key is the registration key; it identifies the service in scope
	// caches and dependency chains. Bind sets it when left empty.
	key      Key
	concrete reflect.Type
	lifetime Lifetime
	params   []Param

	// constructor form
	ctor  reflect.Value
	shape resultShape

	// struct form
	structType reflect.Type
	fields     []int
}

// NewDynamicResolver returns a resolver for target, which is either a
// constructor function or the reflect.Type of a struct or pointer to struct.
// names supplies constructor parameter names, in order.
func NewDynamicResolver(target any, lifetime Lifetime, names ...string) (*DynamicResolver, error) {
	switch t := target.(type) {
	case nil:
		return nil, errInvalidRegistration(Key{}, "nil target")
	case reflect.Type:
		return newStructResolver(t, lifetime)
	}

	fv := reflect.ValueOf(target)
	if fv.Kind() != reflect.Func {
		return nil, errInvalidRegistration(KeyOf(fv.Type()), "target must be a constructor function or a reflect.Type")
	}
	shape, err := shapeOf(fv.Type())
	if err != nil {
		return nil, errInvalidRegistration(KeyOf(fv.Type()), err.Error())
	}
	params, err := funcParams(fv.Type(), names)
	if err != nil {
		return nil, errInvalidRegistration(KeyOf(shape.out), err.Error())
	}
	return &DynamicResolver{
		concrete: shape.out,
		lifetime: lifetime,
		params:   params,
		ctor:     fv,
		shape:    shape,
	}, nil
}

func newStructResolver(t reflect.Type, lifetime Lifetime) (*DynamicResolver, error) {
	st := t
	if st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	if t.Kind() == reflect.Interface {
		return nil, errInvalidRegistration(KeyOf(t), "cannot construct an interface type")
	}
	if st.Kind() != reflect.Struct {
		return nil, errInvalidRegistration(KeyOf(t), "only struct types can be constructed without a constructor")
	}
	params, fields := structParams(st)
	return &DynamicResolver{
		concrete:   t,
		lifetime:   lifetime,
		params:     params,
		structType: st,
		fields:     fields,
	}, nil
}

func (r *DynamicResolver) Lifetime() Lifetime { return r.lifetime }

// Concrete returns the type the resolver constructs.
func (r *DynamicResolver) Concrete() reflect.Type { return r.concrete }

// Params returns the dependencies the resolver needs.
func (r *DynamicResolver) Params() []Param { return slices.Clone(r.params) }

// Key returns the key the resolver is registered under.
func (r *DynamicResolver) Key() Key {
	if r.key.IsZero() {
		return KeyOf(r.concrete)
	}
	return r.key
}

func (r *DynamicResolver) Compile(ctx *ResolutionContext) (Activator, error) {
	self := r.Key()
	if err := ctx.push(self); err != nil {
		return nil, err
	}
	defer ctx.pop()

	owners := []Key{self}
	if concrete := KeyOf(r.concrete); concrete != self {
		owners = append(owners, concrete)
	}

	deps := make([]Activator, len(r.params))
	for i, p := range r.params {
		act, err := ctx.dependency(owners, p)
		if err != nil {
			return nil, err
		}
		deps[i] = act
	}

	build := func(scope *ActivationScope, _ reflect.Type) (any, error) {
		args := make([]any, len(deps))
		var pending []int
		for i, dep := range deps {
			v, err := dep(scope, r.concrete)
			if err != nil {
				return nil, err
			}
			if f, ok := v.(*Future); ok {
				if !f.Done() {
					pending = append(pending, i)
					args[i] = f
					continue
				}
				if v, err = f.Result(); err != nil {
					return nil, err
				}
			}
			args[i] = v
		}

		if len(pending) == 0 {
			return r.construct(ctx, scope, args)
		}

		// Some arguments come from async factories: construction waits
		// for all of them.
		return NewFuture(func(c context.Context) (any, error) {
			g, gctx := errgroup.WithContext(c)
			for _, i := range pending {
				f := args[i].(*Future)
				g.Go(func() error {
					v, err := f.Await(gctx)
					args[i] = v
					return err
				})
			}
			if err := g.Wait(); err != nil {
				return nil, err
			}
			return r.construct(ctx, scope, args)
		}), nil
	}

	ctx.logger.Debug("constructor compiled", zap.Stringer("key", self), zap.Stringer("type", r.concrete), zap.Stringer("lifetime", r.lifetime), zap.Int("params", len(r.params)))
	return withLifetime(self, r.lifetime, build), nil
}

func (r *DynamicResolver) construct(ctx *ResolutionContext, scope *ActivationScope, args []any) (instance any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("container: panic while constructing [%s]: %v", r.concrete, rec)
		}
	}()

	if r.structType != nil {
		ptr := reflect.New(r.structType)
		for i, idx := range r.fields {
			field := ptr.Elem().Field(idx)
			v, err := argValue(args[i], field.Type())
			if err != nil {
				return nil, fmt.Errorf("container: field %s of [%s]: %w", r.params[i], r.concrete, err)
			}
			field.Set(v)
		}
		if r.concrete.Kind() == reflect.Pointer {
			return ptr.Interface(), nil
		}
		return ptr.Elem().Interface(), nil
	}

	in := make([]reflect.Value, len(args))
	for i := range args {
		v, err := argValue(args[i], r.ctor.Type().In(i))
		if err != nil {
			return nil, fmt.Errorf("container: parameter %d of [%s]: %w", i, r.concrete, err)
		}
		in[i] = v
	}
	v, release, err := r.shape.unpack(r.ctor.Call(in))
	if err != nil {
		return nil, fmt.Errorf("container: constructing [%s]: %w", r.concrete, err)
	}
	if release != nil {
		ctx.releaseTarget(r.lifetime, scope).onRelease(release)
	}
	return v, nil
}

package container

import (
	"context"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/km-arc/go-ioc/framework/container")

// Descriptor describes one registration of a built Provider.
type Descriptor struct {
	Key      Key      `json:"key"`
	Lifetime Lifetime `json:"lifetime"`
	Kind     string   `json:"kind"`
}

// Provider is the immutable result of Container.Build: an activator per key
// (registrations, their derived name entries and aliases) and the root scope
// that owns singleton resources.
//
// A Provider is safe for concurrent use.
type Provider struct {
	entries     map[Key]Activator
	lifetimes   map[Key]Lifetime
	keys        []Key
	descriptors []Descriptor
	root        *ActivationScope
	logger      *zap.Logger
	observer    Observer
}

// add must only be called while building.
func (p *Provider) add(key Key, act Activator, lifetime Lifetime) {
	if _, ok := p.entries[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.entries[key] = act
	p.lifetimes[key] = lifetime
}

// Resolve returns the service for key. With a nil scope, scoped services
// live for this call only.
//
// Services that depend on async factories fail with ErrAsyncDependency
// until their work completed; use AResolve for those.
func (p *Provider) Resolve(key Key, scope *ActivationScope) (any, error) {
	start := time.Now()
	v, err := p.resolve(key, scope)
	p.observe(key, start, err)
	return v, err
}

func (p *Provider) resolve(key Key, scope *ActivationScope) (any, error) {
	act, scope, err := p.prepare(key, scope)
	if err != nil {
		return nil, err
	}
	v, err := act(scope, key.typ)
	if err != nil {
		return nil, err
	}
	if f, ok := v.(*Future); ok {
		if !f.Done() {
			return nil, errAsyncDependency(key)
		}
		return f.Result()
	}
	return v, nil
}

// AResolve returns the service for key, awaiting any async work it depends
// on.
func (p *Provider) AResolve(ctx context.Context, key Key, scope *ActivationScope) (v any, err error) {
	ctx, span := tracer.Start(ctx, "container.AResolve", trace.WithAttributes(
		attribute.String("container.key", key.String()),
	))
	start := time.Now()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		p.observe(key, start, err)
	}()

	act, scope, err := p.prepare(key, scope)
	if err != nil {
		return nil, err
	}
	if v, err = act(scope, key.typ); err != nil {
		return nil, err
	}
	for {
		f, ok := v.(*Future)
		if !ok {
			return v, nil
		}
		if v, err = f.Await(ctx); err != nil {
			return nil, err
		}
	}
}

func (p *Provider) prepare(key Key, scope *ActivationScope) (Activator, *ActivationScope, error) {
	act, ok := p.entries[key]
	if !ok {
		return nil, nil, errServiceNotFound(key)
	}
	if scope == nil {
		scope = newScope(p, p.logger)
		scope.ephemeral = true
	}
	return act, scope, nil
}

func (p *Provider) observe(key Key, start time.Time, err error) {
	if p.observer == nil {
		return
	}
	p.observer.ObserveResolve(key, p.lifetimes[key], time.Since(start), err)
}

// Contains reports whether key resolves: a registration, a derived name
// entry or an alias.
func (p *Provider) Contains(key Key) bool {
	_, ok := p.entries[key]
	return ok
}

// Keys returns every resolvable key, registrations first in registration
// order, then aliases.
func (p *Provider) Keys() []Key { return slices.Clone(p.keys) }

// Len returns the number of resolvable keys.
func (p *Provider) Len() int { return len(p.keys) }

// Lifetime returns the lifetime of the service behind key.
func (p *Provider) Lifetime(key Key) (Lifetime, bool) {
	l, ok := p.lifetimes[key]
	return l, ok
}

// Activator returns the compiled activator for key.
func (p *Provider) Activator(key Key) (Activator, bool) {
	act, ok := p.entries[key]
	return act, ok
}

// Descriptors returns the registrations the provider was built from.
func (p *Provider) Descriptors() []Descriptor { return slices.Clone(p.descriptors) }

// NewScope opens a scope for one unit of work. Close it when done.
func (p *Provider) NewScope() *ActivationScope {
	s := newScope(p, p.logger)
	p.logger.Debug("scope opened", zap.Stringer("scope", s.id))
	return s
}

// Root returns the scope that owns singleton resources.
func (p *Provider) Root() *ActivationScope { return p.root }

// Close releases the resources of singleton services, most recent first.
func (p *Provider) Close() error {
	return p.root.Close()
}

package container

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// Activator is a compiled construction strategy. It produces the instance
// for one key given the caller's scope and the type being activated (the
// type that asked for this dependency, or the requested type at top level).
type Activator func(scope *ActivationScope, activating reflect.Type) (any, error)

// withLifetime wraps build with the caching policy of lifetime. cacheKey
// identifies the instance in scope caches.
func withLifetime(cacheKey Key, lifetime Lifetime, build Activator) Activator {
	switch lifetime {
	case Singleton:
		s := &singletonProvider{build: build}
		return s.activate
	case Scoped:
		s := &scopedProvider{key: cacheKey, build: build}
		return s.activate
	default:
		return build
	}
}

// singletonProvider constructs its instance once. Concurrent first resolves
// wait on the mutex; once ready the fast path takes no lock. A Future that
// completed with an error is not kept: the next resolve builds again.
type singletonProvider struct {
	build Activator
	mu    sync.Mutex
	value atomic.Pointer[instance]
}

type instance struct{ v any }

func (s *singletonProvider) activate(scope *ActivationScope, activating reflect.Type) (any, error) {
	if in := s.value.Load(); in != nil && !failed(in.v) {
		return in.v, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if in := s.value.Load(); in != nil && !failed(in.v) {
		return in.v, nil
	}

	v, err := s.build(scope, activating)
	if err != nil {
		return nil, err
	}
	s.value.Store(&instance{v: v})
	return v, nil
}

type scopedProvider struct {
	key   Key
	build Activator
}

func (s *scopedProvider) activate(scope *ActivationScope, activating reflect.Type) (any, error) {
	if scope == nil {
		return nil, errScopeUnavailable(s.key, "no activation scope")
	}

	cached, ok, err := scope.lookup(s.key)
	if err != nil {
		return nil, err
	}
	if ok && !failed(cached) {
		return cached, nil
	}

	// The scope lock is not held while building: dependencies of this
	// service may live in the same scope.
	v, err := s.build(scope, activating)
	if err != nil {
		return nil, err
	}
	if ok {
		return scope.replace(s.key, cached, v), nil
	}
	return scope.store(s.key, v), nil
}

package container

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ActivationScope is a unit-of-work cache: scoped services are created once
// per scope, and resources acquired through it are released when it closes.
//
// A scope belongs to its caller and must not be shared between concurrent
// units of work.
//
//	scope := provider.NewScope()
//	defer scope.Close()
//	handler, err := container.Resolve[*GetCatRequestHandler](provider, scope)
type ActivationScope struct {
	id       uuid.UUID
	provider *Provider
	logger   *zap.Logger

	// ephemeral scopes are created for scope-less resolves; their
	// releases go to the provider's root scope.
	ephemeral bool

	mu       sync.Mutex
	services map[Key]any
	releases []func() error
	closed   bool
}

func newScope(p *Provider, logger *zap.Logger) *ActivationScope {
	return &ActivationScope{
		id:       uuid.New(),
		provider: p,
		logger:   logger,
		services: make(map[Key]any),
	}
}

// ID returns the scope's unique id.
func (s *ActivationScope) ID() uuid.UUID { return s.id }

// Provider returns the provider the scope was opened on.
func (s *ActivationScope) Provider() *Provider { return s.provider }

// Resolve resolves key within this scope.
func (s *ActivationScope) Resolve(key Key) (any, error) {
	return s.provider.Resolve(key, s)
}

// AResolve resolves key within this scope, awaiting async work.
func (s *ActivationScope) AResolve(ctx context.Context, key Key) (any, error) {
	return s.provider.AResolve(ctx, key, s)
}

// Closed reports whether Close has been called.
func (s *ActivationScope) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *ActivationScope) lookup(key Key) (any, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, errScopeUnavailable(key, "scope is closed")
	}
	v, ok := s.services[key]
	return v, ok, nil
}

// store caches v under key unless another activation got there first, and
// returns the cached value.
func (s *ActivationScope) store(key Key, v any) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.services == nil {
		// closed while building
		return v
	}
	if existing, ok := s.services[key]; ok {
		return existing
	}
	s.services[key] = v
	return v
}

// replace swaps a failed cached value for v, unless another activation
// already replaced it, and returns the cached value.
func (s *ActivationScope) replace(key Key, old, v any) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.services == nil {
		return v
	}
	if existing, ok := s.services[key]; ok && existing != old {
		return existing
	}
	s.services[key] = v
	return v
}

// onRelease registers fn to run when the scope closes. On a closed scope fn
// runs immediately.
func (s *ActivationScope) onRelease(fn func() error) {
	if s.ephemeral && s.provider != nil {
		s.provider.root.onRelease(fn)
		return
	}
	s.mu.Lock()
	if !s.closed {
		s.releases = append(s.releases, fn)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	if err := fn(); err != nil {
		s.logger.Warn("release after scope close failed", zap.Stringer("scope", s.id), zap.Error(err))
	}
}

// Close releases every resource acquired in the scope, most recent first,
// and drops the scoped instances. Closing twice is a no-op.
func (s *ActivationScope) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	releases := s.releases
	s.releases = nil
	s.services = nil
	s.mu.Unlock()

	var err error
	for i := len(releases) - 1; i >= 0; i-- {
		err = multierr.Append(err, releases[i]())
	}
	if err != nil {
		s.logger.Warn("scope released with errors", zap.Stringer("scope", s.id), zap.Error(err))
	} else {
		s.logger.Debug("scope closed", zap.Stringer("scope", s.id), zap.Int("released", len(releases)))
	}
	return err
}

type scopeContextKey struct{}

// WithScope returns a copy of ctx carrying s.
func WithScope(ctx context.Context, s *ActivationScope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, s)
}

// ScopeFrom returns the scope stored in ctx by WithScope, or nil.
func ScopeFrom(ctx context.Context) *ActivationScope {
	s, _ := ctx.Value(scopeContextKey{}).(*ActivationScope)
	return s
}

package container_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-ioc/framework/container"
)

// ── stub providers ────────────────────────────────────────────────────────────

type catsProvider struct {
	container.BaseProvider
	registerCalled bool
}

func (p *catsProvider) Register(c *container.Container) error {
	p.registerCalled = true
	if err := c.AddSingleton(NewInMemoryCatsRepository, container.As(container.TypeKey[CatsRepository]())); err != nil {
		return err
	}
	return c.AddScoped(NewGetCatRequestHandler)
}

// bootingProvider resolves from the built provider in Boot.
type bootingProvider struct {
	bootCalled bool
	repo       CatsRepository
}

func (p *bootingProvider) Register(*container.Container) error { return nil }

func (p *bootingProvider) Boot(provider *container.Provider) error {
	p.bootCalled = true
	repo, err := container.Resolve[CatsRepository](provider, nil)
	p.repo = repo
	return err
}

type failingProvider struct {
	container.BaseProvider
	err error
}

func (p *failingProvider) Register(*container.Container) error { return p.err }

type failingBootProvider struct {
	err error
}

func (p *failingBootProvider) Register(*container.Container) error { return nil }
func (p *failingBootProvider) Boot(*container.Provider) error      { return p.err }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

func TestRegistry_RegisterCalledImmediately(t *testing.T) {
	reg := container.NewProviderRegistry(container.New())

	p := &catsProvider{}
	require.NoError(t, reg.Register(p))
	assert.True(t, p.registerCalled)
	assert.False(t, reg.Booted())
}

func TestRegistry_BootBuildsThenBoots(t *testing.T) {
	reg := container.NewProviderRegistry(container.New())
	booting := &bootingProvider{}

	// Registration order does not matter: Boot runs after everything is
	// registered.
	require.NoError(t, reg.Register(booting))
	require.NoError(t, reg.Register(&catsProvider{}))
	assert.False(t, booting.bootCalled)

	provider, err := reg.Boot()
	require.NoError(t, err)
	assert.True(t, booting.bootCalled)
	assert.NotNil(t, booting.repo)
	assert.True(t, reg.Booted())

	handler, err := container.Resolve[*GetCatRequestHandler](provider, nil)
	require.NoError(t, err)
	assert.Same(t, booting.repo, handler.repo)
}

func TestRegistry_Boot_Idempotent(t *testing.T) {
	reg := container.NewProviderRegistry(container.New())
	require.NoError(t, reg.Register(&catsProvider{}))

	p1, err := reg.Boot()
	require.NoError(t, err)
	p2, err := reg.Boot()
	require.NoError(t, err)
	assert.Same(t, p1, p2)
}

func TestRegistry_DuplicateRegisterIgnored(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)

	p := &catsProvider{}
	require.NoError(t, reg.Register(p))
	// A second Register would fail with duplicate bindings if it ran.
	require.NoError(t, reg.Register(p))
	assert.Len(t, reg.Providers(), 1)
	assert.Equal(t, 2, c.Len())
}

func TestRegistry_RegisterErrorIsWrapped(t *testing.T) {
	boom := errors.New("boom")
	reg := container.NewProviderRegistry(container.New())

	err := reg.Register(&failingProvider{err: boom})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "*container_test.failingProvider")
	assert.Empty(t, reg.Providers())
}

func TestRegistry_BootErrors(t *testing.T) {
	boom := errors.New("boom")
	reg := container.NewProviderRegistry(container.New())
	require.NoError(t, reg.Register(&failingBootProvider{err: boom}))

	_, err := reg.Boot()
	require.ErrorIs(t, err, boom)
	assert.False(t, reg.Booted())
}

func TestRegistry_BuildErrorsSurfaceFromBoot(t *testing.T) {
	c := container.New()
	require.NoError(t, c.AddScoped(NewGetCatRequestHandler))
	reg := container.NewProviderRegistry(c)

	_, err := reg.Boot()
	assert.ErrorIs(t, err, container.ErrUnresolvedDependency)
}

func TestRegistry_RegisterAfterBootFails(t *testing.T) {
	reg := container.NewProviderRegistry(container.New())
	_, err := reg.Boot()
	require.NoError(t, err)

	p := &catsProvider{}
	assert.Error(t, reg.Register(p))
	assert.False(t, p.registerCalled)
}

func TestBaseProvider_BootIsNoop(t *testing.T) {
	var p container.BaseProvider
	assert.NoError(t, p.Boot(nil))
}

package container_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-ioc/framework/container"
)

// ── cats domain ───────────────────────────────────────────────────────────────

type Cat struct {
	ID   int
	Name string
}

type CatsRepository interface {
	GetByID(id int) (*Cat, bool)
}

type InMemoryCatsRepository struct {
	cats map[int]*Cat
}

func NewInMemoryCatsRepository() *InMemoryCatsRepository {
	return &InMemoryCatsRepository{cats: map[int]*Cat{1: {ID: 1, Name: "Celine"}}}
}

func (r *InMemoryCatsRepository) GetByID(id int) (*Cat, bool) {
	c, ok := r.cats[id]
	return c, ok
}

type GetCatRequestHandler struct {
	repo CatsRepository
}

func NewGetCatRequestHandler(repo CatsRepository) *GetCatRequestHandler {
	return &GetCatRequestHandler{repo: repo}
}

type CatsController struct {
	Handler *GetCatRequestHandler
}

// ── P / R ─────────────────────────────────────────────────────────────────────

type P struct{ n int }

type R struct {
	P *P
}

// ── cycles ────────────────────────────────────────────────────────────────────

type A struct{ B *B }
type B struct{ A *A }

type Self struct{ Self *Self }

// W → X → Y → Z → W through untyped fields resolved by name.
type W struct{ X any }
type X struct{ Y any }
type Y struct{ Z any }
type Z struct{ W any }

// ── name fallback ─────────────────────────────────────────────────────────────

type Jang struct{}

type Jing struct {
	Jang any
}

func NewJing(jang any) *Jing { return &Jing{Jang: jang} }

// ── async ─────────────────────────────────────────────────────────────────────

type Conn struct{ DSN string }

type Repo struct{ Conn *Conn }

func NewRepo(conn *Conn) *Repo { return &Repo{Conn: conn} }

func asyncConn(calls *atomic.Int32) func(ctx context.Context) (*Conn, error) {
	return func(ctx context.Context) (*Conn, error) {
		calls.Add(1)
		return &Conn{DSN: "memory"}, nil
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func build(t *testing.T, c *container.Container) *container.Provider {
	t.Helper()
	p, err := c.Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func newCatsContainer(t *testing.T, opts ...container.Option) *container.Container {
	t.Helper()
	c := container.New(opts...)
	require.NoError(t, c.AddSingleton(NewInMemoryCatsRepository, container.As(container.TypeKey[CatsRepository]())))
	require.NoError(t, c.AddScoped(NewGetCatRequestHandler))
	require.NoError(t, container.RegisterScoped[*CatsController](c))
	return c
}

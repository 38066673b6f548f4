// Package cats is the demo domain served by the go-ioc binary: a cats
// repository, a request handler and a controller wired through the
// container with constructor and field injection.
package cats

import (
	"context"
	"errors"
	"slices"
	"sync"
)

// ErrCatNotFound is returned for unknown cat ids.
var ErrCatNotFound = errors.New("cats: cat not found")

type Cat struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CatsRepository stores cats.
type CatsRepository interface {
	GetByID(ctx context.Context, id int) (*Cat, error)
	List(ctx context.Context) ([]*Cat, error)
	Add(ctx context.Context, name string) (*Cat, error)
}

// InMemoryCatsRepository is a CatsRepository kept in memory. Safe for
// concurrent use.
type InMemoryCatsRepository struct {
	mu   sync.RWMutex
	cats map[int]*Cat
	next int
}

func NewInMemoryCatsRepository(seed ...string) *InMemoryCatsRepository {
	r := &InMemoryCatsRepository{cats: make(map[int]*Cat)}
	for _, name := range seed {
		_, _ = r.Add(context.Background(), name)
	}
	return r
}

func (r *InMemoryCatsRepository) GetByID(_ context.Context, id int) (*Cat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cat, ok := r.cats[id]
	if !ok {
		return nil, ErrCatNotFound
	}
	return cat, nil
}

func (r *InMemoryCatsRepository) List(context.Context) ([]*Cat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Cat, 0, len(r.cats))
	for _, c := range r.cats {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *Cat) int { return a.ID - b.ID })
	return out, nil
}

func (r *InMemoryCatsRepository) Add(_ context.Context, name string) (*Cat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	cat := &Cat{ID: r.next, Name: name}
	r.cats[cat.ID] = cat
	return cat, nil
}

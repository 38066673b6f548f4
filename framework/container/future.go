package container

import (
	"context"
	"fmt"
	"sync"
)

// Future is a computation that has to be awaited before its value exists.
// Async factories activate to a Future; Resolve refuses pending futures and
// AResolve awaits them.
//
// The computation starts on the first Await. It runs with the values of
// that caller's context but not its cancellation: an awaiter giving up only
// ends its own wait. Later callers share the same result.
type Future struct {
	fn    func(ctx context.Context) (any, error)
	start sync.Once
	done  chan struct{}
	value any
	err   error
}

// NewFuture returns a pending Future for fn.
func NewFuture(fn func(ctx context.Context) (any, error)) *Future {
	return &Future{fn: fn, done: make(chan struct{})}
}

// Await starts the computation if needed and blocks until it completes or
// ctx is done.
func (f *Future) Await(ctx context.Context) (any, error) {
	f.start.Do(func() { go f.run(context.WithoutCancel(ctx)) })
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done reports whether the computation has completed.
func (f *Future) Done() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Result returns the outcome of a completed Future. It must only be called
// once Done reports true.
func (f *Future) Result() (any, error) {
	return f.value, f.err
}

// Failed reports whether the computation completed with an error.
func (f *Future) Failed() bool {
	return f.Done() && f.err != nil
}

// failed reports whether v is a Future that completed with an error. Caches
// drop such values so the next resolve starts over.
func failed(v any) bool {
	f, ok := v.(*Future)
	return ok && f.Failed()
}

func (f *Future) run(ctx context.Context) {
	defer close(f.done)
	defer func() {
		if r := recover(); r != nil {
			f.value, f.err = nil, fmt.Errorf("container: panic in async factory: %v", r)
		}
	}()

	v, err := f.fn(ctx)
	// A computation may itself hand back another pending computation.
	for err == nil {
		next, ok := v.(*Future)
		if !ok {
			break
		}
		v, err = next.Await(ctx)
	}
	f.value, f.err = v, err
}

package mustache

import (
	"context"
	"sync"
)

// Deferred is a value that becomes available later, such as the result of a
// database query or a remote call. Any value in a view, a partial source or
// the template itself may be Deferred; the renderer waits for it at the point
// the value is needed.
type Deferred interface {
	// Await blocks until the value settles or ctx is done.
	Await(ctx context.Context) (any, error)
}

// Promise is a channel-backed Deferred that is settled exactly once.
type Promise struct {
	done  chan struct{}
	once  sync.Once
	value any
	err   error
}

// NewPromise creates an unsettled promise.
func NewPromise() *Promise {
	return &Promise{done: make(chan struct{})}
}

// Resolved returns a promise already settled with value.
func Resolved(value any) *Promise {
	p := NewPromise()
	p.Resolve(value)
	return p
}

// Rejected returns a promise already settled with err.
func Rejected(err error) *Promise {
	p := NewPromise()
	p.Reject(err)
	return p
}

// Async runs fn on a new goroutine and returns a promise for its result.
func Async(ctx context.Context, fn func(ctx context.Context) (any, error)) *Promise {
	p := NewPromise()
	go func() {
		value, err := fn(ctx)
		p.settle(value, err)
	}()
	return p
}

// Resolve settles the promise with value. Later calls are ignored.
func (p *Promise) Resolve(value any) {
	p.settle(value, nil)
}

// Reject settles the promise with err. Later calls are ignored.
func (p *Promise) Reject(err error) {
	p.settle(nil, err)
}

func (p *Promise) settle(value any, err error) {
	p.once.Do(func() {
		p.value = value
		p.err = err
		close(p.done)
	})
}

// Done returns a channel closed once the promise settles.
func (p *Promise) Done() <-chan struct{} {
	return p.done
}

// Await implements Deferred.
func (p *Promise) Await(ctx context.Context) (any, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// DeferredFunc adapts a function to Deferred. The function runs on every
// Await call, on the caller's goroutine.
type DeferredFunc func(ctx context.Context) (any, error)

// Await implements Deferred.
func (f DeferredFunc) Await(ctx context.Context) (any, error) {
	if f == nil {
		return nil, nil
	}
	return f(ctx)
}

// Await returns value unchanged unless it is Deferred, in which case it waits
// for the value to settle. A Deferred that settles to another Deferred is
// awaited in turn.
func Await(ctx context.Context, value any) (any, error) {
	for {
		d, ok := value.(Deferred)
		if !ok {
			return value, nil
		}
		if isNilRef(d) {
			return nil, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var err error
		value, err = d.Await(ctx)
		if err != nil {
			return nil, err
		}
	}
}

// IsDeferred reports whether value must be awaited before use.
func IsDeferred(value any) bool {
	_, ok := value.(Deferred)
	return ok
}

package mustache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Context is one scope of the view chain used during rendering. Sections push
// a new Context for each item they iterate; lookups that miss in a scope fall
// back to its parent.
//
// Every lookup is memoized for the lifetime of the Context: the first
// resolution of a path wins, even if the underlying view changes later.
// Failures caused by a cancelled or expired context are not memoized, so a
// Context reused across renders is not poisoned by an aborted one.
type Context struct {
	view   any
	parent *Context
	logger *zap.Logger

	mu   sync.Mutex
	memo map[string]*memoEntry
}

// memoEntry holds one resolved path. Concurrent lookups of the same path wait
// on once for the first resolution.
type memoEntry struct {
	once  sync.Once
	value any
	err   error
}

// NewContext creates a root context for view.
// If view is already a *Context it is returned unchanged.
func NewContext(view any) *Context {
	return newContext(view, nil, nil)
}

func newContext(view any, parent *Context, logger *zap.Logger) *Context {
	if c, ok := view.(*Context); ok && parent == nil && c != nil {
		return c
	}
	if logger == nil {
		if parent != nil {
			logger = parent.logger
		} else {
			logger = zap.NewNop()
		}
	}
	return &Context{
		view:   view,
		parent: parent,
		logger: logger,
		memo:   make(map[string]*memoEntry),
	}
}

// Push returns a child context whose parent is c.
func (c *Context) Push(view any) *Context {
	return newContext(view, c, c.logger)
}

// View returns the view held by this scope.
func (c *Context) View() any {
	return c.view
}

// Parent returns the enclosing context, or nil for a root context.
func (c *Context) Parent() *Context {
	return c.parent
}

// Lookup resolves a dotted path. "." is the view of this scope; any other
// path is resolved segment by segment from this scope's view and, when that
// yields nothing, from each enclosing scope in turn. Deferred values met along
// the way are awaited. A path found nowhere resolves to nil without error.
func (c *Context) Lookup(ctx context.Context, path string) (any, error) {
	c.mu.Lock()
	entry, ok := c.memo[path]
	if !ok {
		entry = &memoEntry{}
		c.memo[path] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		entry.value, entry.err = c.resolve(ctx, path)
	})
	if isContextErr(entry.err) {
		c.mu.Lock()
		if c.memo[path] == entry {
			delete(c.memo, path)
		}
		c.mu.Unlock()
	}
	return entry.value, entry.err
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (c *Context) resolve(ctx context.Context, path string) (any, error) {
	if path == PathSelf {
		view, err := Await(ctx, c.view)
		if err != nil {
			return nil, err
		}
		return c.computed(ctx, path, view, view)
	}

	names := strings.Split(path, PathSeparator)
	for frame := c; frame != nil; frame = frame.parent {
		value, err := frame.descend(ctx, path, names)
		if err != nil {
			return nil, err
		}
		if Classify(value) != KindNullish {
			return value, nil
		}
	}
	return nil, nil
}

// descend walks names from the view of c, stopping at the first nullish value.
func (c *Context) descend(ctx context.Context, path string, names []string) (any, error) {
	value, err := Await(ctx, c.view)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if Classify(value) == KindNullish {
			return nil, nil
		}
		holder := value
		next, found, err := property(holder, name)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, nil
		}
		if next, err = Await(ctx, next); err != nil {
			return nil, err
		}
		if value, err = c.computed(ctx, path, next, holder); err != nil {
			return nil, err
		}
	}
	return value, nil
}

// computed invokes value once if it is a computed property and awaits the
// result. Function values that are neither computed properties nor lambdas
// are logged and left for Classify to treat as nullish.
func (c *Context) computed(ctx context.Context, path string, value, holder any) (any, error) {
	result, ok, err := invokeComputed(value, holder)
	if err != nil {
		return nil, err
	}
	if !ok {
		if isFunc(value) && !isNilRef(value) && Classify(value) == KindNullish {
			c.logger.Debug(LogMsgUnsupportedFunc,
				zap.String(LogFieldPath, path),
				zap.String(LogFieldType, fmt.Sprintf("%T", value)))
		}
		return value, nil
	}
	return Await(ctx, result)
}

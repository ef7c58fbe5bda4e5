package mustache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromise(t *testing.T) {
	ctx := context.Background()

	t.Run("resolved", func(t *testing.T) {
		v, err := Resolved("x").Await(ctx)
		require.NoError(t, err)
		assert.Equal(t, "x", v)
	})

	t.Run("rejected", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := Rejected(boom).Await(ctx)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("first settlement wins", func(t *testing.T) {
		p := NewPromise()
		p.Resolve(1)
		p.Resolve(2)
		p.Reject(errors.New("late"))

		v, err := p.Await(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, v)
	})

	t.Run("settled from another goroutine", func(t *testing.T) {
		p := NewPromise()
		go func() {
			time.Sleep(5 * time.Millisecond)
			p.Resolve("later")
		}()

		<-p.Done()
		v, err := p.Await(ctx)
		require.NoError(t, err)
		assert.Equal(t, "later", v)
	})

	t.Run("await honours cancellation", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := NewPromise().Await(cctx)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("async", func(t *testing.T) {
		p := Async(ctx, func(ctx context.Context) (any, error) {
			return 42, nil
		})
		v, err := p.Await(ctx)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	})
}

func TestAwait(t *testing.T) {
	ctx := context.Background()

	t.Run("plain value passes through", func(t *testing.T) {
		v, err := Await(ctx, "plain")
		require.NoError(t, err)
		assert.Equal(t, "plain", v)
	})

	t.Run("nested deferred values are unwrapped", func(t *testing.T) {
		v, err := Await(ctx, Resolved(Resolved(DeferredFunc(func(context.Context) (any, error) {
			return "deep", nil
		}))))
		require.NoError(t, err)
		assert.Equal(t, "deep", v)
	})

	t.Run("nil promise is nil", func(t *testing.T) {
		var p *Promise
		v, err := Await(ctx, p)
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := Await(cctx, Resolved(1))
		assert.ErrorIs(t, err, context.Canceled)
	})

	assert.True(t, IsDeferred(Resolved(1)))
	assert.False(t, IsDeferred(1))
}

package mustache

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_ForEach(t *testing.T) {
	engine := MustNew()
	view := map[string]any{"items": []string{"a", "b"}}

	var chunks []string
	err := engine.StreamRender("<{{#items}}[{{.}}]{{/items}}>", view, nil).
		ForEach(context.Background(), func(_ context.Context, chunk string) error {
			chunks = append(chunks, chunk)
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, []string{"<", "[", "a", "]", "[", "b", "]", ">"}, chunks)

	out, err := engine.StreamRender("<{{#items}}[{{.}}]{{/items}}>", view, nil).Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, strings.Join(chunks, ""), out)
}

func TestStream_Backpressure(t *testing.T) {
	var produced atomic.Int32
	view := map[string]any{
		"n": func() any { return produced.Add(1) },
		// each item is a fresh scope, so n is recomputed per item
		"items": []any{map[string]any{}, map[string]any{}, map[string]any{}, map[string]any{}},
	}
	s := MustNew().StreamRender("{{#items}}{{n}}{{/items}}", view, nil)

	ch := make(chan string)
	done := make(chan error, 1)
	go func() {
		done <- s.ForEach(context.Background(), ChanWriter(ch))
		close(ch)
	}()

	assert.Equal(t, "1", <-ch)
	time.Sleep(20 * time.Millisecond)
	assert.LessOrEqual(t, produced.Load(), int32(2), "rendering runs at most one chunk ahead of the consumer")

	var rest []string
	for chunk := range ch {
		rest = append(rest, chunk)
	}
	require.NoError(t, <-done)
	assert.Equal(t, []string{"2", "3", "4"}, rest)
}

func TestStream_PartialOutputBeforeFailure(t *testing.T) {
	boom := errors.New("boom")
	view := map[string]any{"ok": "fine", "bad": Rejected(boom)}

	var got []string
	err := MustNew().StreamRender("{{ok}} then {{bad}} never", view, nil).
		ForEach(context.Background(), func(_ context.Context, chunk string) error {
			got = append(got, chunk)
			return nil
		})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"fine", " then "}, got)
}

func TestStream_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan string)

	errc := make(chan error, 1)
	go func() {
		errc <- MustNew().StreamRender("a{{x}}b", map[string]any{"x": 1}, nil).ForEach(ctx, ChanWriter(ch))
	}()

	assert.Equal(t, "a", <-ch)
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("render did not stop after cancellation")
	}
}

func TestStream_WriteTo(t *testing.T) {
	var buf bytes.Buffer
	n, err := MustNew().StreamRender("Hello {{name}}!", map[string]any{"name": "World"}, nil).WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, "Hello World!", buf.String())
	assert.Equal(t, int64(len("Hello World!")), n)
}

func TestStream_CompileError(t *testing.T) {
	s := MustNew().StreamRender("{{#open}}", nil, nil)

	_, err := s.Read(context.Background())
	require.Error(t, err)
	assert.True(t, IsParseError(err))

	called := false
	err = s.ForEach(context.Background(), func(context.Context, string) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
}

func TestEngine_RenderAsync(t *testing.T) {
	p := MustNew().RenderAsync(context.Background(), "{{a}}-{{b}}", map[string]any{
		"a": Resolved("x"),
		"b": Async(context.Background(), func(context.Context) (any, error) { return "y", nil }),
	}, nil)

	v, err := p.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "x-y", v)
}

package mustache

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		engine, err := New()
		require.NoError(t, err)
		assert.Equal(t, DefaultTags(), engine.config.tags)
		assert.Equal(t, DefaultMaxDepth, engine.config.maxDepth)
		assert.Nil(t, engine.config.loader)
	})

	t.Run("custom tags", func(t *testing.T) {
		engine := MustNew(WithTags("<%", "%>"))
		out, err := engine.Render(context.Background(), "<% x %> {{x}}", map[string]any{"x": 1}, nil)
		require.NoError(t, err)
		assert.Equal(t, "1 {{x}}", out)
	})

	t.Run("empty tag values keep defaults", func(t *testing.T) {
		engine := MustNew(WithTags("", ""))
		assert.Equal(t, DefaultTags(), engine.config.tags)
	})
}

func TestEngine_CompileCache(t *testing.T) {
	engine := MustNew()

	first, err := engine.Compile("Hi {{name}}")
	require.NoError(t, err)
	second, err := engine.Compile("Hi {{name}}")
	require.NoError(t, err)
	assert.Same(t, first, second)

	t.Run("tags are part of the key", func(t *testing.T) {
		other, err := engine.CompileWithTags("Hi {{name}}", Tags{Open: "<%", Close: "%>"})
		require.NoError(t, err)
		assert.NotSame(t, first, other)
		assert.Equal(t, Tags{Open: "<%", Close: "%>"}, other.Tags())
	})

	t.Run("clear cache forces recompilation", func(t *testing.T) {
		engine.ClearCache()
		third, err := engine.Compile("Hi {{name}}")
		require.NoError(t, err)
		assert.NotSame(t, first, third)

		a, err := first.Render(context.Background(), map[string]any{"name": "x"}, nil)
		require.NoError(t, err)
		b, err := third.Render(context.Background(), map[string]any{"name": "x"}, nil)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("failed compilations are not cached", func(t *testing.T) {
		_, err := engine.Compile("{{#a}}")
		require.Error(t, err)
		_, err = engine.Compile("{{#a}}")
		require.Error(t, err)
	})
}

func TestEngine_Partials(t *testing.T) {
	engine := MustNew()

	_, err := engine.CompilePartial("b", "B")
	require.NoError(t, err)
	_, err = engine.CompilePartial("a", "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, engine.PartialNames())

	p, ok := engine.Partial("a")
	require.True(t, ok)
	assert.Equal(t, "A", p.Source())

	t.Run("registered partials outlive the render call", func(t *testing.T) {
		out, err := engine.Render(context.Background(), "{{>a}}{{>b}}", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "AB", out)
	})

	t.Run("last write wins", func(t *testing.T) {
		out, err := engine.Render(context.Background(), "{{>a}}", nil, PartialMap{"a": "A2"})
		require.NoError(t, err)
		assert.Equal(t, "A2", out)

		p, _ := engine.Partial("a")
		assert.Equal(t, "A2", p.Source())
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := engine.CompilePartial("", "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgEmptyPartialName)
	})

	t.Run("clear cache drops partials", func(t *testing.T) {
		engine.ClearCache()
		assert.Empty(t, engine.PartialNames())
		_, ok := engine.Partial("a")
		assert.False(t, ok)
	})

	t.Run("engine loader is the fallback", func(t *testing.T) {
		fallback := PartialMap{"shared": "S", "both": "engine"}
		engine := MustNew(WithPartialLoader(fallback))
		perCall := LoaderFunc(func(_ context.Context, name string) (string, bool, error) {
			if name == "both" {
				return "call", true, nil
			}
			return "", false, nil
		})
		out, err := engine.Render(context.Background(), "{{>shared}} {{>both}}", nil, perCall)
		require.NoError(t, err)
		assert.Equal(t, "S call", out)
	})
}

func TestEngine_Escape(t *testing.T) {
	engine := MustNew(WithEscapeFunc(strings.ToUpper))
	out, err := engine.Render(context.Background(), "{{v}} {{{v}}}", map[string]any{"v": "abc"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ABC abc", out)

	engine.SetEscapeFunc(NoEscape)
	assert.Equal(t, "<>", engine.Escape("<>"))

	engine.SetEscapeFunc(nil)
	assert.Equal(t, "&lt;&gt;", engine.Escape("<>"))
}

func TestEscapeHTML(t *testing.T) {
	assert.Equal(t, "&amp;&lt;&gt;&quot;&#39;&#x2F;", EscapeHTML(`&<>"'/`))
	assert.Equal(t, "plain text", EscapeHTML("plain text"))
}

func TestEngine_Logging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	engine := MustNew(WithLogger(zap.New(core)))

	_, err := engine.Render(context.Background(), "{{>hedaer}}", nil, PartialMap{"header": "H"})
	require.NoError(t, err)
	_, err = engine.Compile("{{>hedaer}}")
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage(LogMsgCacheHit).Len())
	assert.Equal(t, 1, logs.FilterMessage(LogMsgPartialRegistered).Len())

	missing := logs.FilterMessage(LogMsgPartialMissing).All()
	require.Len(t, missing, 1)
	assert.Equal(t, "hedaer", missing[0].ContextMap()[LogFieldPartial])
	assert.Equal(t, []any{"header"}, missing[0].ContextMap()[LogFieldSuggestions])
}

func TestEngine_ConcurrentRenders(t *testing.T) {
	engine := MustNew()
	var wg sync.WaitGroup
	errs := make(chan error, 20)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := engine.Render(context.Background(), "{{#items}}{{.}}{{/items}}|{{>p}}",
				map[string]any{"items": []int{i, i}}, PartialMap{"p": "P"})
			if err != nil {
				errs <- err
				return
			}
			if out != strings.Repeat(itoa(i), 2)+"|P" {
				errs <- assert.AnError
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func itoa(i int) string {
	return formatValue(i)
}

func TestDefaultEngine(t *testing.T) {
	t.Cleanup(func() {
		ClearCache()
		SetEscapeFunc(nil)
	})

	out, err := Render(context.Background(), "{{> sub}}", map[string]any{}, PartialMap{"sub": "Partial!"})
	require.NoError(t, err)
	assert.Equal(t, "Partial!", out)
	assert.Contains(t, Default().PartialNames(), "sub")

	_, err = CompilePartial("extra", "E")
	require.NoError(t, err)
	tmpl, err := Compile("{{>extra}}")
	require.NoError(t, err)
	assert.Equal(t, []string{"extra"}, tmpl.Partials())

	SetEscapeFunc(NoEscape)
	out, err = StreamRender("{{v}}", map[string]any{"v": "<"}, nil).Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "<", out)

	out, err = RenderDeferred(context.Background(), Resolved("{{>extra}}"), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "E", out)

	ClearCache()
	assert.Empty(t, Default().PartialNames())
}

func TestTemplate_Introspection(t *testing.T) {
	tmpl, err := MustNew().Compile("{{#s}}{{>a}}{{/s}}{{>b}}")
	require.NoError(t, err)

	assert.Equal(t, "{{#s}}{{>a}}{{/s}}{{>b}}", tmpl.Source())
	assert.Equal(t, DefaultTags(), tmpl.Tags())
	assert.Equal(t, []string{"a", "b"}, tmpl.Partials())
	assert.Equal(t, "SECTION s\n  PARTIAL a\nPARTIAL b\n", tmpl.String())
}

func TestParseTagsPublic(t *testing.T) {
	tags, err := ParseTags("<% %>")
	require.NoError(t, err)
	assert.Equal(t, Tags{Open: "<%", Close: "%>"}, tags)

	_, err = ParseTags("<%")
	require.Error(t, err)
	assert.True(t, IsParseError(err))
}

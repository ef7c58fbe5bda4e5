package mustache

import (
	"context"
	"errors"
	"iter"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	Name   string
	Emails []string
	secret string
}

func (p person) Greeting() string { return "hi " + p.Name }

func (p *person) Fails() (string, error) { return "", errors.New("method failed") }

type itemList []string

func (l itemList) Each(ctx context.Context, fn func(any) error) error {
	for _, item := range l {
		if err := fn(item); err != nil {
			return err
		}
	}
	return nil
}

func TestClassify(t *testing.T) {
	var nilMap map[string]any
	var nilPtr *person
	var seq iter.Seq[any] = func(yield func(any) bool) {}
	ch := make(chan int)
	var sendOnly chan<- int = ch

	tests := []struct {
		name  string
		value any
		want  Kind
	}{
		{"nil", nil, KindNullish},
		{"nil map", nilMap, KindNullish},
		{"nil pointer", nilPtr, KindNullish},
		{"plain func", func() {}, KindNullish},
		{"nil computed func", (func() any)(nil), KindNullish},
		{"nil lambda", Lambda(nil), KindNullish},
		{"nil text lambda", (func(string) string)(nil), KindNullish},
		{"nil seq", iter.Seq[any](nil), KindNullish},
		{"nil channel", (chan int)(nil), KindNullish},
		{"nil deferred func", DeferredFunc(nil), KindNullish},
		{"send-only channel", sendOnly, KindNullish},
		{"string", "x", KindScalar},
		{"empty string", "", KindScalar},
		{"bool", false, KindScalar},
		{"int", 0, KindScalar},
		{"float", 1.5, KindScalar},
		{"bytes", []byte("x"), KindScalar},
		{"duration", time.Second, KindScalar},
		{"slice", []int{1}, KindSequence},
		{"nil slice", []string(nil), KindSequence},
		{"array", [2]int{}, KindSequence},
		{"seq", seq, KindIterable},
		{"channel", ch, KindIterable},
		{"iterable", itemList{"a"}, KindIterable},
		{"map", map[string]int{}, KindMapping},
		{"struct", person{}, KindMapping},
		{"struct pointer", &person{}, KindMapping},
		{"lambda", Lambda(func(any, string, RenderFunc) (any, error) { return nil, nil }), KindLambda},
		{"short lambda", func(string, RenderFunc) (any, error) { return nil, nil }, KindLambda},
		{"text lambda", func(s string) string { return s }, KindLambda},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.value))
		})
	}
}

func TestIsFalsy(t *testing.T) {
	for _, v := range []any{false, 0, int64(0), uint8(0), 0.0, math.NaN(), "", []byte{}} {
		assert.True(t, isFalsy(v), "%#v", v)
	}
	for _, v := range []any{true, 1, -1, 0.1, "0", " ", []byte("x")} {
		assert.False(t, isFalsy(v), "%#v", v)
	}
}

func TestProperty(t *testing.T) {
	p := &person{Name: "Ann", Emails: []string{"a@x", "b@x"}, secret: "s"}

	tests := []struct {
		name  string
		value any
		key   string
		want  any
		found bool
	}{
		{"map key", map[string]any{"a": 1}, "a", 1, true},
		{"missing map key", map[string]any{"a": 1}, "b", nil, false},
		{"typed map", map[string]string{"a": "x"}, "a", "x", true},
		{"exact field", p, "Name", "Ann", true},
		{"case-insensitive field", p, "name", "Ann", true},
		{"unexported field", p, "secret", nil, false},
		{"method", p, "Greeting", "hi Ann", true},
		{"value receiver method on value", *p, "Greeting", "hi Ann", true},
		{"slice index", []string{"a", "b"}, "1", "b", true},
		{"slice index out of range", []string{"a"}, "3", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found, err := property(tt.value, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("method error", func(t *testing.T) {
		_, found, err := property(p, "Fails")
		assert.True(t, found)
		assert.EqualError(t, err, "method failed")
	})
}

func TestFormatValue(t *testing.T) {
	n := 7
	tests := []struct {
		value any
		want  string
	}{
		{"s", "s"},
		{42, "42"},
		{int64(-3), "-3"},
		{uint(9), "9"},
		{1.5, "1.5"},
		{float32(0.25), "0.25"},
		{1e21, "1000000000000000000000"},
		{true, "true"},
		{[]byte("b"), "b"},
		{time.Second, "1s"},
		{&n, "7"},
		{[]int{1, 2}, "[1 2]"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatValue(tt.value))
	}
}

func TestEachItem(t *testing.T) {
	ctx := context.Background()
	collect := func(value any) []any {
		var got []any
		err := eachItem(ctx, value, func(item any) error {
			got = append(got, item)
			return nil
		})
		require.NoError(t, err)
		return got
	}

	var seq iter.Seq[any] = func(yield func(any) bool) {
		for _, v := range []any{1, 2, 3} {
			if !yield(v) {
				return
			}
		}
	}
	assert.Equal(t, []any{1, 2, 3}, collect(seq))

	ch := make(chan string, 2)
	ch <- "a"
	ch <- "b"
	close(ch)
	assert.Equal(t, []any{"a", "b"}, collect(ch))

	assert.Equal(t, []any{"x", "y"}, collect(itemList{"x", "y"}))

	t.Run("open channel stops on cancellation", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := eachItem(cctx, make(chan int), func(any) error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})
}

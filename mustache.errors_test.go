package mustache

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/itsatony/go-cuserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metadata(t *testing.T, err error, key string) string {
	t.Helper()
	var customErr *cuserr.CustomError
	require.True(t, errors.As(err, &customErr))
	value, ok := customErr.GetMetadata(key)
	require.True(t, ok, "missing metadata %q", key)
	return value
}

func TestNewParseError(t *testing.T) {
	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("underlying")
		pos := Position{Offset: 12, Line: 2, Column: 5}
		err := NewParseError(ErrMsgUnclosedTag, pos, cause)

		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgUnclosedTag)
		assert.Equal(t, strconv.Itoa(pos.Line), metadata(t, err, MetaKeyLine))
		assert.Equal(t, strconv.Itoa(pos.Column), metadata(t, err, MetaKeyColumn))
		assert.Equal(t, strconv.Itoa(pos.Offset), metadata(t, err, MetaKeyOffset))
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("without cause", func(t *testing.T) {
		err := NewParseError(ErrMsgInvalidTags, Position{Line: 1, Column: 1}, nil)
		assert.Contains(t, err.Error(), ErrMsgInvalidTags)
		assert.Equal(t, "1", metadata(t, err, MetaKeyLine))
		assert.False(t, IsParseError(err))
	})

	assert.Equal(t, "line 3, column 7", Position{Line: 3, Column: 7}.String())
}

func TestCompile_ParseErrorMetadata(t *testing.T) {
	tests := []struct {
		name     string
		template string
		msg      string
		line     string
		column   string
	}{
		{"unclosed tag", "ab\n  {{name", ErrMsgUnclosedTag, "2", "9"},
		{"unopened section", "{{/x}}", ErrMsgUnopenedSection, "1", "1"},
		{"mismatched section", "{{#a}}\n{{/b}}", ErrMsgMismatchedSection, "2", "1"},
		{"unclosed section", "{{#a}}", ErrMsgUnclosedSection, "1", "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MustNew().Compile(tt.template)
			require.Error(t, err)
			assert.True(t, IsParseError(err))
			assert.Contains(t, err.Error(), tt.msg)
			assert.Equal(t, tt.line, metadata(t, err, MetaKeyLine))
			assert.Equal(t, tt.column, metadata(t, err, MetaKeyColumn))
		})
	}
}

func TestNewRenderError(t *testing.T) {
	cause := errors.New("lookup exploded")
	err := NewRenderError(ErrMsgLookupFailed, "user.name", cause)
	assert.Contains(t, err.Error(), ErrMsgLookupFailed)
	assert.Equal(t, "user.name", metadata(t, err, MetaKeyPath))
	assert.ErrorIs(t, err, cause)

	err = NewRenderError(ErrMsgRenderFailed, "", nil)
	assert.Contains(t, err.Error(), ErrMsgRenderFailed)
}

func TestNewMaxDepthError(t *testing.T) {
	err := NewMaxDepthError("loop", 101, 100)
	assert.Contains(t, err.Error(), ErrMsgMaxDepthExceeded)
	assert.Equal(t, "loop", metadata(t, err, MetaKeyPartial))
	assert.Equal(t, "101", metadata(t, err, MetaKeyDepth))
	assert.Equal(t, "100", metadata(t, err, MetaKeyMaxDepth))
}

func TestLoaderErrors(t *testing.T) {
	cause := errors.New("disk on fire")

	err := NewLoaderError(ErrMsgReadPartialFailed, cause)
	assert.Contains(t, err.Error(), ErrMsgReadPartialFailed)
	assert.ErrorIs(t, err, cause)

	err = NewReadPartialError("/tmp/x.mustache", cause)
	assert.Equal(t, "/tmp/x.mustache", metadata(t, err, MetaKeyFile))
	assert.ErrorIs(t, err, cause)

	err = NewInvalidPartialNameError("../x")
	assert.Contains(t, err.Error(), ErrMsgInvalidPartialName)
	assert.Equal(t, "../x", metadata(t, err, MetaKeyPartial))

	err = NewPartialLoadError("p", cause)
	assert.Equal(t, "p", metadata(t, err, MetaKeyPartial))
	assert.ErrorIs(t, err, cause)
}

func TestRenderDeferred_TypeError(t *testing.T) {
	_, err := MustNew().RenderDeferred(context.Background(), Resolved(7), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgDeferredTemplate)
	assert.Equal(t, "int", metadata(t, err, MetaKeyType))
}

func TestParseErrorDetails(t *testing.T) {
	_, err := MustNew().Compile("x\n{{#a}}{{/b}}")
	require.Error(t, err)

	msg, pos, ok := ParseErrorDetails(err)
	require.True(t, ok)
	assert.Equal(t, ErrMsgMismatchedSection, msg)
	assert.Equal(t, Position{Offset: 8, Line: 2, Column: 7}, pos)

	_, _, ok = ParseErrorDetails(errors.New("other"))
	assert.False(t, ok)
}

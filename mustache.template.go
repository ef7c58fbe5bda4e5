package mustache

import (
	"bytes"
	"context"
	"sync"

	"github.com/itsatony/go-mustache/internal"
)

// Tags is a pair of opening and closing delimiters.
type Tags = internal.Tags

// DefaultTags returns the standard {{ }} delimiters.
func DefaultTags() Tags {
	return internal.DefaultTags()
}

// ParseTags parses a delimiter pair written as exactly two
// whitespace-separated delimiters, such as "<% %>".
func ParseTags(pair string) (Tags, error) {
	tags, err := internal.ParseTags(pair)
	if err != nil {
		return Tags{}, newParseErrorFrom(err)
	}
	return tags, nil
}

// Template is a compiled template. It is immutable and safe for concurrent
// use; partial lookups go through the engine that compiled it.
type Template struct {
	source string
	tags   Tags
	tokens []internal.Token
	engine *Engine
}

func newTemplate(source string, tags Tags, tokens []internal.Token, engine *Engine) *Template {
	return &Template{
		source: source,
		tags:   tags,
		tokens: tokens,
		engine: engine,
	}
}

var bufPool = sync.Pool{New: func() any { return new(bytes.Buffer) }}

// Render renders the template into a string.
func (t *Template) Render(ctx context.Context, view any, partials PartialLoader) (string, error) {
	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufPool.Put(buf)

	if err := t.Execute(ctx, view, partials, bufferWriter(buf)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Execute renders the template, passing each chunk of output to write in
// document order. Rendering waits for write to return before continuing.
func (t *Template) Execute(ctx context.Context, view any, partials PartialLoader, write WriteFunc) error {
	return t.engine.execute(ctx, t, view, partials, write)
}

// Stream returns a stream over the output of the template.
func (t *Template) Stream(view any, partials PartialLoader) *Stream {
	return &Stream{tmpl: t, view: view, partials: partials}
}

// Source returns the template text the template was compiled from.
func (t *Template) Source() string {
	return t.source
}

// Tags returns the delimiters the template was compiled with.
func (t *Template) Tags() Tags {
	return t.tags
}

// Partials returns the names of the partials the template references, in
// order of first appearance.
func (t *Template) Partials() []string {
	return internal.PartialNames(t.tokens)
}

// String returns an indented listing of the token tree.
func (t *Template) String() string {
	return internal.Dump(t.tokens)
}

func bufferWriter(buf *bytes.Buffer) WriteFunc {
	return func(_ context.Context, chunk string) error {
		_, err := buf.WriteString(chunk)
		return err
	}
}

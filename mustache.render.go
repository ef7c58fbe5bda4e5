package mustache

import (
	"bytes"
	"context"

	"github.com/itsatony/go-mustache/internal"
)

// WriteFunc receives rendered output one chunk at a time. Rendering does not
// continue until it returns, so a WriteFunc that blocks applies backpressure.
// A non-nil error aborts the render.
type WriteFunc func(ctx context.Context, chunk string) error

// renderer walks token trees for one render call. It is sequential: every
// token finishes emitting before the next one starts.
type renderer struct {
	engine  *Engine
	loaders []PartialLoader
	escape  EscapeFunc
	write   WriteFunc
}

func (r *renderer) renderTokens(ctx context.Context, tmpl *Template, tokens []internal.Token, c *Context, depth int) error {
	for _, tok := range tokens {
		if err := ctx.Err(); err != nil {
			return NewRenderError(ErrMsgRenderFailed, "", err)
		}

		var err error
		switch t := tok.(type) {
		case *internal.TextToken:
			err = r.emit(ctx, t.Value)
		case *internal.NameToken:
			err = r.interpolate(ctx, c, t.Path, true)
		case *internal.UnescapedToken:
			err = r.interpolate(ctx, c, t.Path, false)
		case *internal.SectionToken:
			err = r.section(ctx, tmpl, t, c, depth)
		case *internal.InvertedToken:
			err = r.inverted(ctx, tmpl, t, c, depth)
		case *internal.PartialToken:
			err = r.partial(ctx, t.Name, c, depth)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) emit(ctx context.Context, chunk string) error {
	if chunk == "" {
		return nil
	}
	if err := r.write(ctx, chunk); err != nil {
		return NewRenderError(ErrMsgWriteFailed, "", err)
	}
	return nil
}

func (r *renderer) lookup(ctx context.Context, c *Context, path string) (any, error) {
	value, err := c.Lookup(ctx, path)
	if err != nil {
		return nil, NewRenderError(ErrMsgLookupFailed, path, err)
	}
	return value, nil
}

func (r *renderer) interpolate(ctx context.Context, c *Context, path string, escaped bool) error {
	value, err := r.lookup(ctx, c, path)
	if err != nil {
		return err
	}
	switch Classify(value) {
	case KindNullish, KindLambda:
		return nil
	}
	text := formatValue(value)
	if escaped {
		text = r.escape(text)
	}
	return r.emit(ctx, text)
}

func (r *renderer) section(ctx context.Context, tmpl *Template, tok *internal.SectionToken, c *Context, depth int) error {
	value, err := r.lookup(ctx, c, tok.Path)
	if err != nil {
		return err
	}

	renderItem := func(item any) error {
		item, err := Await(ctx, item)
		if err != nil {
			return NewRenderError(ErrMsgIterationFailed, tok.Path, err)
		}
		return r.renderTokens(ctx, tmpl, tok.Children, c.Push(item), depth)
	}

	switch Classify(value) {
	case KindScalar:
		if isFalsy(value) {
			return nil
		}
		return r.renderTokens(ctx, tmpl, tok.Children, c, depth)
	case KindSequence:
		return eachElement(value, renderItem)
	case KindIterable:
		var itemErr error
		err := eachItem(ctx, value, func(item any) error {
			itemErr = renderItem(item)
			return itemErr
		})
		if err != nil && itemErr == nil {
			return NewRenderError(ErrMsgIterationFailed, tok.Path, err)
		}
		return err
	case KindMapping:
		return r.renderTokens(ctx, tmpl, tok.Children, c.Push(value), depth)
	case KindLambda:
		return r.lambda(ctx, tmpl, tok, c, depth, value)
	default:
		return nil
	}
}

func (r *renderer) inverted(ctx context.Context, tmpl *Template, tok *internal.InvertedToken, c *Context, depth int) error {
	value, err := r.lookup(ctx, c, tok.Path)
	if err != nil {
		return err
	}

	var empty bool
	switch Classify(value) {
	case KindNullish:
		empty = true
	case KindScalar:
		empty = isFalsy(value)
	case KindSequence:
		empty = isEmptySequence(value)
	}
	if !empty {
		return nil
	}
	return r.renderTokens(ctx, tmpl, tok.Children, c, depth)
}

// lambda hands the raw block text to a section lambda and writes its result.
func (r *renderer) lambda(ctx context.Context, tmpl *Template, tok *internal.SectionToken, c *Context, depth int, value any) error {
	text := tok.InnerText(tmpl.source)
	render := func(source string) (string, error) {
		sub, err := r.engine.CompileWithTags(source, tok.Tags)
		if err != nil {
			return "", err
		}
		var buf bytes.Buffer
		inner := &renderer{
			engine:  r.engine,
			loaders: r.loaders,
			escape:  r.escape,
			write:   bufferWriter(&buf),
		}
		if err := inner.renderTokens(ctx, sub, sub.tokens, c, depth); err != nil {
			return "", err
		}
		return buf.String(), nil
	}

	view, err := Await(ctx, c.view)
	if err != nil {
		return NewRenderError(ErrMsgLambdaFailed, tok.Path, err)
	}

	var result any
	switch fn := value.(type) {
	case Lambda:
		result, err = fn(view, text, render)
	case func(any, string, RenderFunc) (any, error):
		result, err = fn(view, text, render)
	case func(string, RenderFunc) (any, error):
		result, err = fn(text, render)
	case func(string) string:
		result = fn(text)
	}
	if err != nil {
		return NewRenderError(ErrMsgLambdaFailed, tok.Path, err)
	}

	result, err = Await(ctx, result)
	if err != nil {
		return NewRenderError(ErrMsgLambdaFailed, tok.Path, err)
	}
	if Classify(result) == KindNullish {
		return nil
	}
	return r.emit(ctx, formatValue(result))
}

// partial renders a named partial against the current context.
func (r *renderer) partial(ctx context.Context, name string, c *Context, depth int) error {
	if maxDepth := r.engine.config.maxDepth; maxDepth > 0 && depth >= maxDepth {
		return NewMaxDepthError(name, depth+1, maxDepth)
	}
	tmpl, err := r.engine.resolvePartial(ctx, name, r.loaders)
	if err != nil {
		return err
	}
	if tmpl == nil {
		return nil
	}
	return r.renderTokens(ctx, tmpl, tmpl.tokens, c, depth+1)
}

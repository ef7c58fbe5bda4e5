// Package mustache provides a logic-less Mustache template engine in which any
// value may arrive later: the template itself, a partial, or anything in the
// view can be a Deferred that the renderer waits for.
//
// Templates use {{ and }} delimiters by default:
//
//	Hello, {{name}}!
//
// # Basic Usage
//
// Render a template with the default engine:
//
//	out, err := mustache.Render(ctx, "Hello, {{name}}!", map[string]any{
//	    "name": "Alice",
//	}, nil)
//	// out: "Hello, Alice!"
//
// # Tags
//
//	{{name}}          escaped interpolation
//	{{{name}}}        unescaped interpolation, also {{& name}}
//	{{#items}}..{{/items}}  section
//	{{^items}}..{{/items}}  inverted section
//	{{> header}}      partial
//	{{! comment }}    comment
//	{{=<% %>=}}       delimiter change
//
// Names may be dotted ({{user.name}}). A name not found in the current section
// item is looked up in the enclosing ones; a name found nowhere renders as
// nothing.
//
// # Sections
//
// A section renders its block once per element of a slice or array, once per
// item of an iter.Seq[any], receive channel or Iterable, once with a map or
// struct pushed as the new scope, and once in the current scope for any other
// value that is not false, zero, NaN or empty. Inverted sections render
// exactly when the section would not.
//
// A section whose value is a Lambda receives the raw block text and a render
// callback instead:
//
//	view := map[string]any{
//	    "bold": func(text string, render mustache.RenderFunc) (any, error) {
//	        inner, err := render(text)
//	        return "<b>" + inner + "</b>", err
//	    },
//	}
//
// # Deferred Values
//
// Any value may be a Deferred. Promise is the channel-backed implementation:
//
//	user := mustache.Async(ctx, func(ctx context.Context) (any, error) {
//	    return db.LoadUser(ctx, id)
//	})
//	out, err := mustache.Render(ctx, "{{#user}}{{name}}{{/user}}", map[string]any{
//	    "user": user,
//	}, nil)
//
// Rendering is sequential: output is produced in document order no matter in
// which order deferred values settle.
//
// # Streaming
//
// StreamRender delivers output chunk by chunk. The renderer waits for each
// write to return, so a slow consumer throttles rendering:
//
//	err := mustache.StreamRender(tmpl, view, nil).ForEach(ctx,
//	    func(ctx context.Context, chunk string) error {
//	        _, err := w.Write([]byte(chunk))
//	        return err
//	    })
//
// # Configuration
//
// Customize an engine with functional options:
//
//	engine, _ := mustache.New(
//	    mustache.WithTags("<%", "%>"),
//	    mustache.WithPartialLoader(loader),
//	    mustache.WithLogger(logger),
//	)
package mustache

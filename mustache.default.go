package mustache

import "context"

// defaultEngine backs the package-level functions. It is created with the
// default options when the package is initialized and lives for the whole
// process. ClearCache resets its compiled templates and partials; otherwise
// only compile and render calls change it.
var defaultEngine = MustNew()

// Default returns the process-wide engine used by the package-level functions.
func Default() *Engine {
	return defaultEngine
}

// Render renders template with the default engine.
func Render(ctx context.Context, template string, view any, partials PartialLoader) (string, error) {
	return defaultEngine.Render(ctx, template, view, partials)
}

// RenderDeferred renders a deferred template with the default engine.
func RenderDeferred(ctx context.Context, template Deferred, view any, partials PartialLoader) (string, error) {
	return defaultEngine.RenderDeferred(ctx, template, view, partials)
}

// StreamRender returns a stream over template rendered by the default engine.
func StreamRender(template string, view any, partials PartialLoader) *Stream {
	return defaultEngine.StreamRender(template, view, partials)
}

// Compile compiles template with the default engine.
func Compile(template string) (*Template, error) {
	return defaultEngine.Compile(template)
}

// CompilePartial compiles and registers a partial with the default engine.
func CompilePartial(name, template string) (*Template, error) {
	return defaultEngine.CompilePartial(name, template)
}

// ClearCache clears the default engine's templates and partials.
func ClearCache() {
	defaultEngine.ClearCache()
}

// SetEscapeFunc replaces the default engine's escape function.
func SetEscapeFunc(fn EscapeFunc) {
	defaultEngine.SetEscapeFunc(fn)
}

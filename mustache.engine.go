package mustache

import (
	"context"
	"sort"
	"sync"

	"github.com/itsatony/go-mustache/internal"
	"go.uber.org/zap"
)

// Engine compiles and renders templates. It caches compiled templates by
// source and delimiters, and holds the registry of named partials shared by
// every render it performs. An Engine is safe for concurrent use; when two
// renders register a partial under the same name, the last write wins.
type Engine struct {
	config *engineConfig
	logger *zap.Logger

	mu       sync.RWMutex // protects cache, partials and escape
	cache    map[cacheKey]*Template
	partials map[string]*Template
	escape   EscapeFunc
}

// cacheKey identifies a compiled template.
type cacheKey struct {
	source string
	tags   Tags
}

// New creates a new Engine with the given options.
func New(opts ...Option) (*Engine, error) {
	config := defaultEngineConfig()
	for _, opt := range opts {
		opt(config)
	}

	if !config.tags.Valid() {
		return nil, NewParseError(ErrMsgInvalidTags, Position{}, nil)
	}

	logger := config.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Debug(LogMsgEngineCreated,
		zap.String(LogFieldOpen, config.tags.Open),
		zap.String(LogFieldClose, config.tags.Close))

	return &Engine{
		config:   config,
		logger:   logger,
		cache:    make(map[cacheKey]*Template),
		partials: make(map[string]*Template),
		escape:   config.escape,
	}, nil
}

// MustNew creates a new Engine and panics if there's an error.
func MustNew(opts ...Option) *Engine {
	engine, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return engine
}

// Compile compiles a template using the engine's delimiters, or returns the
// cached compilation of the same source.
func (e *Engine) Compile(template string) (*Template, error) {
	return e.CompileWithTags(template, e.config.tags)
}

// CompileWithTags compiles a template starting with the given delimiters.
func (e *Engine) CompileWithTags(template string, tags Tags) (*Template, error) {
	key := cacheKey{source: template, tags: tags}

	e.mu.RLock()
	tmpl, ok := e.cache[key]
	e.mu.RUnlock()
	if ok {
		e.logger.Debug(LogMsgCacheHit, zap.Int(LogFieldSource, len(template)))
		return tmpl, nil
	}
	e.logger.Debug(LogMsgCacheMiss, zap.Int(LogFieldSource, len(template)))

	tokens, err := internal.NewParser(template, tags, e.logger).Parse()
	if err != nil {
		return nil, newParseErrorFrom(err)
	}
	tmpl = newTemplate(template, tags, tokens, e)

	e.mu.Lock()
	defer e.mu.Unlock()
	if cached, ok := e.cache[key]; ok {
		return cached, nil
	}
	e.cache[key] = tmpl
	return tmpl, nil
}

// CompilePartial compiles a template and registers it as the partial name,
// replacing any partial previously registered under that name.
func (e *Engine) CompilePartial(name, template string) (*Template, error) {
	return e.CompilePartialWithTags(name, template, e.config.tags)
}

// CompilePartialWithTags is CompilePartial with explicit starting delimiters.
func (e *Engine) CompilePartialWithTags(name, template string, tags Tags) (*Template, error) {
	if name == "" {
		return nil, NewLoaderError(ErrMsgEmptyPartialName, nil)
	}
	tmpl, err := e.CompileWithTags(template, tags)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.partials[name] = tmpl
	e.mu.Unlock()

	e.logger.Debug(LogMsgPartialRegistered, zap.String(LogFieldPartial, name))
	return tmpl, nil
}

// Partial returns the partial registered under name.
func (e *Engine) Partial(name string) (*Template, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	tmpl, ok := e.partials[name]
	return tmpl, ok
}

// PartialNames returns the registered partial names in sorted order.
func (e *Engine) PartialNames() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.partials))
	for name := range e.partials {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ClearCache discards all compiled templates and registered partials.
func (e *Engine) ClearCache() {
	e.mu.Lock()
	e.cache = make(map[cacheKey]*Template)
	e.partials = make(map[string]*Template)
	e.mu.Unlock()

	e.logger.Debug(LogMsgCacheCleared)
}

// Escape applies the engine's escape function to s.
func (e *Engine) Escape(s string) string {
	return e.escapeFunc()(s)
}

// SetEscapeFunc replaces the function applied to {{name}} interpolations.
// A nil fn restores EscapeHTML.
func (e *Engine) SetEscapeFunc(fn EscapeFunc) {
	if fn == nil {
		fn = EscapeHTML
	}
	e.mu.Lock()
	e.escape = fn
	e.mu.Unlock()
}

func (e *Engine) escapeFunc() EscapeFunc {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.escape
}

// Render compiles template (or reuses its cached compilation) and renders it
// into a string.
//
// partials may be nil, a PartialMap whose entries are registered before
// rendering starts, or any other PartialLoader consulted for partials that
// are not registered. The loader set with WithPartialLoader is consulted last.
func (e *Engine) Render(ctx context.Context, template string, view any, partials PartialLoader) (string, error) {
	tmpl, err := e.Compile(template)
	if err != nil {
		return "", err
	}
	return tmpl.Render(ctx, view, partials)
}

// RenderDeferred waits for template to settle to a string and renders it.
func (e *Engine) RenderDeferred(ctx context.Context, template Deferred, view any, partials PartialLoader) (string, error) {
	value, err := Await(ctx, template)
	if err != nil {
		return "", NewRenderError(ErrMsgRenderFailed, "", err)
	}
	source, ok := value.(string)
	if !ok {
		return "", NewDeferredTypeError(ErrMsgDeferredTemplate, value)
	}
	return e.Render(ctx, source, view, partials)
}

// RenderAsync renders on a new goroutine and returns a promise settled with
// the output string.
func (e *Engine) RenderAsync(ctx context.Context, template string, view any, partials PartialLoader) *Promise {
	return Async(ctx, func(ctx context.Context) (any, error) {
		return e.Render(ctx, template, view, partials)
	})
}

// StreamRender compiles template and returns a stream over its output.
// A compilation failure is reported by the stream's methods.
func (e *Engine) StreamRender(template string, view any, partials PartialLoader) *Stream {
	tmpl, err := e.Compile(template)
	if err != nil {
		return &Stream{err: err}
	}
	return tmpl.Stream(view, partials)
}

// execute runs one render of tmpl, writing output through write.
func (e *Engine) execute(ctx context.Context, tmpl *Template, view any, partials PartialLoader, write WriteFunc) error {
	e.logger.Debug(LogMsgRenderStart, zap.Int(LogFieldSource, len(tmpl.source)))

	loaders, err := e.preparePartials(ctx, partials)
	if err != nil {
		e.logger.Debug(LogMsgRenderFailed, zap.Error(err))
		return err
	}

	r := &renderer{
		engine:  e,
		loaders: loaders,
		escape:  e.escapeFunc(),
		write:   write,
	}
	if err := r.renderTokens(ctx, tmpl, tmpl.tokens, newContext(view, nil, e.logger), 0); err != nil {
		e.logger.Debug(LogMsgRenderFailed, zap.Error(err))
		return err
	}

	e.logger.Debug(LogMsgRenderEnd)
	return nil
}

// preparePartials registers the entries of a PartialMap and returns the
// loaders to consult on a registry miss, in order.
func (e *Engine) preparePartials(ctx context.Context, partials PartialLoader) ([]PartialLoader, error) {
	var loaders []PartialLoader
	switch p := partials.(type) {
	case nil:
	case PartialMap:
		if err := e.registerPartials(ctx, p); err != nil {
			return nil, err
		}
	default:
		loaders = append(loaders, p)
	}
	if e.config.loader != nil {
		loaders = append(loaders, e.config.loader)
	}
	return loaders, nil
}

func (e *Engine) registerPartials(ctx context.Context, partials PartialMap) error {
	names := make([]string, 0, len(partials))
	for name := range partials {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		source, found, err := partials.LoadPartial(ctx, name)
		if err != nil {
			return NewPartialLoadError(name, err)
		}
		if !found {
			continue
		}
		if _, err := e.CompilePartial(name, source); err != nil {
			return err
		}
	}
	return nil
}

// resolvePartial returns the partial registered under name, loading and
// registering it from the first loader that has it on a miss. A partial that
// no loader knows resolves to nil.
func (e *Engine) resolvePartial(ctx context.Context, name string, loaders []PartialLoader) (*Template, error) {
	if tmpl, ok := e.Partial(name); ok {
		return tmpl, nil
	}

	for _, loader := range loaders {
		source, found, err := loader.LoadPartial(ctx, name)
		if err != nil {
			e.logger.Warn(LogMsgPartialLoadFailed, zap.String(LogFieldPartial, name), zap.Error(err))
			return nil, NewPartialLoadError(name, err)
		}
		if !found {
			continue
		}
		e.logger.Debug(LogMsgPartialLoaded, zap.String(LogFieldPartial, name))
		return e.CompilePartial(name, source)
	}

	e.logger.Debug(LogMsgPartialMissing,
		zap.String(LogFieldPartial, name),
		zap.Strings(LogFieldSuggestions, SuggestPartials(name, e.PartialNames(), DefaultMaxSuggestions)))
	return nil, nil
}

package mustache

import (
	"go.uber.org/zap"
)

// Option is a functional option for configuring the Engine.
type Option func(*engineConfig)

// engineConfig holds the internal configuration for an Engine.
type engineConfig struct {
	tags     Tags
	escape   EscapeFunc
	loader   PartialLoader
	maxDepth int
	logger   *zap.Logger
}

// defaultEngineConfig returns the default engine configuration.
func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		tags:     DefaultTags(),
		escape:   EscapeHTML,
		loader:   nil,
		maxDepth: DefaultMaxDepth,
		logger:   nil,
	}
}

// WithTags sets the delimiters templates start with.
// Empty values keep the default.
// Default: "{{" and "}}"
func WithTags(open, close string) Option {
	return func(c *engineConfig) {
		if open != "" {
			c.tags.Open = open
		}
		if close != "" {
			c.tags.Close = close
		}
	}
}

// WithEscapeFunc sets the function applied to {{name}} interpolations.
// Default: EscapeHTML
func WithEscapeFunc(fn EscapeFunc) Option {
	return func(c *engineConfig) {
		if fn != nil {
			c.escape = fn
		}
	}
}

// WithPartialLoader sets a loader consulted when a partial is not registered
// and the render call supplies no loader of its own.
// Default: nil
func WithPartialLoader(loader PartialLoader) Option {
	return func(c *engineConfig) {
		c.loader = loader
	}
}

// WithMaxDepth sets the maximum partial nesting depth.
// Use 0 for unlimited depth.
// Default: 100
func WithMaxDepth(depth int) Option {
	return func(c *engineConfig) {
		c.maxDepth = depth
	}
}

// WithLogger sets the logger for the engine.
// Default: nil (no logging)
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

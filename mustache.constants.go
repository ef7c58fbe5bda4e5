package mustache

import (
	"time"

	"github.com/itsatony/go-mustache/internal"
)

// Delimiter constants
const (
	DefaultOpenTag  = internal.DefaultOpenTag
	DefaultCloseTag = internal.DefaultCloseTag
)

// Default configuration values
const (
	DefaultMaxDepth       = 100
	DefaultMaxSuggestions = 3
	DefaultPartialExt     = ".mustache"
)

// Path handling
const (
	PathSeparator = "."
	PathSelf      = "."
)

// Filesystem loader constants
const (
	FilesystemDirPermissions = 0755
)

// PostgreSQL loader constants
const (
	PostgresDriverName             = "postgres"
	PostgresDefaultTable           = "mustache_partials"
	PostgresDefaultQueryTimeout    = 30 * time.Second
	PostgresDefaultConnMaxLifetime = 5 * time.Minute
	PostgresDefaultMaxOpenConns    = 10
	PostgresDefaultMaxIdleConns    = 2
)

// Error code constants for categorization
const (
	ErrCodeParse  = "MUSTACHE_PARSE"
	ErrCodeRender = "MUSTACHE_RENDER"
	ErrCodeLoader = "MUSTACHE_LOADER"
)

// Error message constants - parse errors mirror the internal parser messages
const (
	ErrMsgParseFailed       = "template parsing failed"
	ErrMsgInvalidTags       = internal.ErrMsgInvalidTags
	ErrMsgUnclosedTag       = internal.ErrMsgUnclosedTag
	ErrMsgUnopenedSection   = internal.ErrMsgUnopenedSection
	ErrMsgMismatchedSection = internal.ErrMsgMismatchedSection
	ErrMsgUnclosedSection   = internal.ErrMsgUnclosedSection

	ErrMsgRenderFailed       = "template rendering failed"
	ErrMsgLookupFailed       = "value resolution failed"
	ErrMsgLambdaFailed       = "lambda section failed"
	ErrMsgPartialLoadFailed  = "partial loading failed"
	ErrMsgWriteFailed        = "output write failed"
	ErrMsgMaxDepthExceeded   = "maximum partial depth exceeded"
	ErrMsgDeferredTemplate   = "deferred template did not resolve to a string"
	ErrMsgDeferredPartial    = "deferred partial did not resolve to a string"
	ErrMsgIterationFailed    = "section iteration failed"
	ErrMsgEmptyPartialName   = "partial name cannot be empty"
	ErrMsgInvalidPartialName = "invalid partial name"

	ErrMsgEmptyLoaderRoot       = "filesystem loader root is empty"
	ErrMsgReadPartialFailed     = "failed to read partial file"
	ErrMsgPostgresEmptyConnStr  = "PostgreSQL connection string is empty"
	ErrMsgPostgresConnectFailed = "failed to connect to PostgreSQL"
	ErrMsgPostgresQueryFailed   = "PostgreSQL query failed"
	ErrMsgPostgresMigrateFailed = "PostgreSQL migration failed"
	ErrMsgPostgresInvalidTable  = "invalid PostgreSQL table name"
	ErrMsgPostgresLoaderClosed  = "PostgreSQL loader is closed"
)

// Metadata keys for cuserr.WithMetadata
const (
	MetaKeyLine     = "line"
	MetaKeyColumn   = "column"
	MetaKeyOffset   = "offset"
	MetaKeyExpected = "expected"
	MetaKeyActual   = "actual"
	MetaKeyPath     = "path"
	MetaKeyPartial  = "partial"
	MetaKeyDepth    = "depth"
	MetaKeyMaxDepth = "max_depth"
	MetaKeyType     = "type"
	MetaKeyFile     = "file"
	MetaKeyTable    = "table"
)

// Log messages
const (
	LogMsgEngineCreated     = "engine created"
	LogMsgCacheHit          = "compiled template cache hit"
	LogMsgCacheMiss         = "compiled template cache miss"
	LogMsgCacheCleared      = "template caches cleared"
	LogMsgPartialRegistered = "partial registered"
	LogMsgPartialLoaded     = "partial loaded"
	LogMsgPartialMissing    = "partial not found"
	LogMsgPartialLoadFailed = "partial loader failed"
	LogMsgRenderStart       = "starting render"
	LogMsgRenderEnd         = "render complete"
	LogMsgRenderFailed      = "render failed"
	LogMsgUnsupportedFunc   = "function value is neither a lambda nor a computed property"
)

// Log field names
const (
	LogFieldSource      = "source_length"
	LogFieldTokens      = "token_count"
	LogFieldPartial     = "partial"
	LogFieldSuggestions = "suggestions"
	LogFieldPath        = "path"
	LogFieldType        = "type"
	LogFieldPartials    = "partial_count"
	LogFieldOpen        = "open_tag"
	LogFieldClose       = "close_tag"
)

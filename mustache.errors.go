package mustache

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/itsatony/go-cuserr"
	"github.com/itsatony/go-mustache/internal"
)

// Position represents a location in the source template
type Position struct {
	Offset int // Byte offset from start
	Line   int // 1-indexed line number
	Column int // 1-indexed column number
}

// String returns a human-readable position string
func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// NewParseError creates a parse error with position context
func NewParseError(msg string, pos Position, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeParse, msg)
	} else {
		err = cuserr.NewValidationError(ErrCodeParse, msg)
	}
	return err.
		WithMetadata(MetaKeyLine, strconv.Itoa(pos.Line)).
		WithMetadata(MetaKeyColumn, strconv.Itoa(pos.Column)).
		WithMetadata(MetaKeyOffset, strconv.Itoa(pos.Offset))
}

// newParseErrorFrom converts a parser failure into the public error form.
func newParseErrorFrom(err error) error {
	var pe *internal.ParseError
	if !errors.As(err, &pe) {
		return NewParseError(ErrMsgParseFailed, Position{}, err)
	}
	pos := Position(pe.Position)
	cerr := cuserr.WrapStdError(pe, ErrCodeParse, pe.Message).
		WithMetadata(MetaKeyLine, strconv.Itoa(pos.Line)).
		WithMetadata(MetaKeyColumn, strconv.Itoa(pos.Column)).
		WithMetadata(MetaKeyOffset, strconv.Itoa(pos.Offset))
	if pe.Expected != "" {
		cerr = cerr.WithMetadata(MetaKeyExpected, pe.Expected)
	}
	if pe.Actual != "" {
		cerr = cerr.WithMetadata(MetaKeyActual, pe.Actual)
	}
	return cerr
}

// IsParseError reports whether err was caused by a malformed template.
func IsParseError(err error) bool {
	var pe *internal.ParseError
	return errors.As(err, &pe)
}

// ParseErrorDetails returns the parser's message and the position of a
// malformed template error.
func ParseErrorDetails(err error) (string, Position, bool) {
	var pe *internal.ParseError
	if !errors.As(err, &pe) {
		return "", Position{}, false
	}
	return pe.Message, Position(pe.Position), true
}

// NewRenderError creates a render failure for the value at path
func NewRenderError(msg string, path string, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeRender, msg)
	} else {
		err = cuserr.NewValidationError(ErrCodeRender, msg)
	}
	return err.WithMetadata(MetaKeyPath, path)
}

// NewPartialLoadError creates a render failure for a partial that could not be loaded
func NewPartialLoadError(name string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeRender, ErrMsgPartialLoadFailed).
		WithMetadata(MetaKeyPartial, name)
}

// NewMaxDepthError creates an error for runaway partial recursion
func NewMaxDepthError(name string, depth, maxDepth int) error {
	return cuserr.NewValidationError(ErrCodeRender, ErrMsgMaxDepthExceeded).
		WithMetadata(MetaKeyPartial, name).
		WithMetadata(MetaKeyDepth, strconv.Itoa(depth)).
		WithMetadata(MetaKeyMaxDepth, strconv.Itoa(maxDepth))
}

// NewDeferredTypeError creates an error for a deferred source that settled to a non-string
func NewDeferredTypeError(msg string, value any) error {
	return cuserr.NewValidationError(ErrCodeRender, msg).
		WithMetadata(MetaKeyType, fmt.Sprintf("%T", value))
}

// NewLoaderError creates a partial loader configuration or I/O error
func NewLoaderError(msg string, cause error) error {
	if cause != nil {
		return cuserr.WrapStdError(cause, ErrCodeLoader, msg)
	}
	return cuserr.NewValidationError(ErrCodeLoader, msg)
}

// NewInvalidPartialNameError creates an error for a partial name a loader refuses
func NewInvalidPartialNameError(name string) error {
	return cuserr.NewValidationError(ErrCodeLoader, ErrMsgInvalidPartialName).
		WithMetadata(MetaKeyPartial, name)
}

// NewReadPartialError creates an error for a partial file that could not be read
func NewReadPartialError(path string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeLoader, ErrMsgReadPartialFailed).
		WithMetadata(MetaKeyFile, path)
}

package internal

import (
	"fmt"
	"strings"
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

// PositionAt calculates the Position for a byte offset in source.
func PositionAt(source string, offset int) Position {
	if offset > len(source) {
		offset = len(source)
	}
	pos := Position{Offset: offset, Line: 1, Column: 1}
	for i := 0; i < offset; i++ {
		if source[i] == CharNewline {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
	}
	return pos
}

// Tags is a pair of opening and closing delimiters.
type Tags struct {
	Open  string
	Close string
}

// DefaultTags returns the standard {{ }} delimiters.
func DefaultTags() Tags {
	return Tags{Open: DefaultOpenTag, Close: DefaultCloseTag}
}

// Valid reports whether both delimiters are non-empty.
func (t Tags) Valid() bool {
	return t.Open != StringEmpty && t.Close != StringEmpty
}

// String returns the delimiters separated by a space.
func (t Tags) String() string {
	return t.Open + " " + t.Close
}

// TokenKind identifies a token variant
type TokenKind int

// Token kinds
const (
	KindText TokenKind = iota
	KindName
	KindUnescaped
	KindSection
	KindInverted
	KindPartial
)

// Token kind names for debugging
const (
	KindNameText      = "TEXT"
	KindNameName      = "NAME"
	KindNameUnescaped = "UNESCAPED"
	KindNameSection   = "SECTION"
	KindNameInverted  = "INVERTED"
	KindNamePartial   = "PARTIAL"
	KindNameUnknown   = "UNKNOWN"
)

// String returns the string representation of the token kind
func (k TokenKind) String() string {
	switch k {
	case KindText:
		return KindNameText
	case KindName:
		return KindNameName
	case KindUnescaped:
		return KindNameUnescaped
	case KindSection:
		return KindNameSection
	case KindInverted:
		return KindNameInverted
	case KindPartial:
		return KindNamePartial
	default:
		return KindNameUnknown
	}
}

// Token is a node of a compiled template tree.
// The set of implementations is closed: TextToken, NameToken, UnescapedToken,
// SectionToken, InvertedToken and PartialToken.
type Token interface {
	Kind() TokenKind
	// Span returns the byte offsets of the token in the template source.
	Span() (start, end int)
	String() string
}

// TextToken is literal template text.
type TextToken struct {
	Value string
	Start int
	End   int
}

func (t *TextToken) Kind() TokenKind        { return KindText }
func (t *TextToken) Span() (start, end int) { return t.Start, t.End }

func (t *TextToken) String() string {
	value := t.Value
	if len(value) > MaxTextDisplayLength {
		value = value[:TruncatedTextLength] + TruncationSuffix
	}
	return fmt.Sprintf("%s %q", KindNameText, value)
}

// NameToken is an escaped interpolation, {{path}}.
type NameToken struct {
	Path  string
	Start int
	End   int
}

func (t *NameToken) Kind() TokenKind        { return KindName }
func (t *NameToken) Span() (start, end int) { return t.Start, t.End }
func (t *NameToken) String() string         { return KindNameName + " " + t.Path }

// UnescapedToken is a raw interpolation, {{&path}} or {{{path}}}.
type UnescapedToken struct {
	Path  string
	Start int
	End   int
}

func (t *UnescapedToken) Kind() TokenKind        { return KindUnescaped }
func (t *UnescapedToken) Span() (start, end int) { return t.Start, t.End }
func (t *UnescapedToken) String() string         { return KindNameUnescaped + " " + t.Path }

// SectionToken is a {{#path}}...{{/path}} block.
type SectionToken struct {
	Path       string
	Start      int // start of the opening tag
	End        int // end of the opening tag
	Children   []Token
	CloseStart int  // start of the closing tag
	CloseEnd   int  // end of the closing tag
	Tags       Tags // delimiters in effect at the opening tag
}

func (t *SectionToken) Kind() TokenKind        { return KindSection }
func (t *SectionToken) Span() (start, end int) { return t.Start, t.End }
func (t *SectionToken) String() string         { return KindNameSection + " " + t.Path }

// InnerText returns the raw template text between the opening and closing tags.
func (t *SectionToken) InnerText(source string) string {
	if t.End > t.CloseStart || t.CloseStart > len(source) {
		return StringEmpty
	}
	return source[t.End:t.CloseStart]
}

// InvertedToken is a {{^path}}...{{/path}} block.
type InvertedToken struct {
	Path       string
	Start      int
	End        int
	Children   []Token
	CloseStart int
	CloseEnd   int
}

func (t *InvertedToken) Kind() TokenKind        { return KindInverted }
func (t *InvertedToken) Span() (start, end int) { return t.Start, t.End }
func (t *InvertedToken) String() string         { return KindNameInverted + " " + t.Path }

// PartialToken is a {{>name}} inclusion.
type PartialToken struct {
	Name  string
	Start int
	End   int
}

func (t *PartialToken) Kind() TokenKind        { return KindPartial }
func (t *PartialToken) Span() (start, end int) { return t.Start, t.End }
func (t *PartialToken) String() string         { return KindNamePartial + " " + t.Name }

// Children returns the nested tokens of a section or inverted section, or nil.
func Children(tok Token) []Token {
	switch t := tok.(type) {
	case *SectionToken:
		return t.Children
	case *InvertedToken:
		return t.Children
	default:
		return nil
	}
}

// Dump renders a token tree as an indented listing.
func Dump(tokens []Token) string {
	var sb strings.Builder
	dump(&sb, tokens, 0)
	return sb.String()
}

func dump(sb *strings.Builder, tokens []Token, depth int) {
	for _, tok := range tokens {
		sb.WriteString(strings.Repeat(DumpIndent, depth))
		sb.WriteString(tok.String())
		sb.WriteByte(CharNewline)
		dump(sb, Children(tok), depth+1)
	}
}

// PartialNames returns the distinct partial names referenced in a tree,
// in order of first appearance.
func PartialNames(tokens []Token) []string {
	seen := make(map[string]struct{})
	var names []string
	var walk func([]Token)
	walk = func(toks []Token) {
		for _, tok := range toks {
			if p, ok := tok.(*PartialToken); ok {
				if _, dup := seen[p.Name]; !dup {
					seen[p.Name] = struct{}{}
					names = append(names, p.Name)
				}
			}
			walk(Children(tok))
		}
	}
	walk(tokens)
	return names
}

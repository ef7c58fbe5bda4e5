package internal

// Default delimiters
const (
	DefaultOpenTag  = "{{"
	DefaultCloseTag = "}}"
)

// Tag sigils recognised immediately after the opening delimiter
const (
	SigilSection   = "#"
	SigilInverted  = "^"
	SigilClose     = "/"
	SigilPartial   = ">"
	SigilTriple    = "{"
	SigilUnescaped = "&"
	SigilDelims    = "="
	SigilComment   = "!"
	SigilName      = "name"
)

// Regular expression sources used by the parser
const (
	PatternWhite    = `\s*`
	PatternSpace    = `\s+`
	PatternEquals   = `\s*=`
	PatternCurly    = `\s*\}`
	PatternSigil    = `#|\^|/|>|\{|&|=|!`
	PatternTripleCl = "}"
)

// Character constants
const (
	CharNewline = '\n'
	CharDot     = "."
	StringEmpty = ""
)

// Display limits for token dumps
const (
	MaxTextDisplayLength = 40
	TruncatedTextLength  = 37
	TruncationSuffix     = "..."
	DumpIndent           = "  "
)

// Error messages
const (
	ErrMsgInvalidTags       = "invalid tags"
	ErrMsgUnclosedTag       = "unclosed tag"
	ErrMsgUnopenedSection   = "unopened section"
	ErrMsgMismatchedSection = "mismatched section"
	ErrMsgUnclosedSection   = "unclosed section"
)

// Log messages
const (
	LogMsgParseStart = "starting parse"
	LogMsgParseEnd   = "parse complete"
	LogMsgDelimiters = "delimiters changed"
)

// Log field names
const (
	LogFieldSource = "source_length"
	LogFieldTokens = "token_count"
	LogFieldOpen   = "open"
	LogFieldClose  = "close"
)

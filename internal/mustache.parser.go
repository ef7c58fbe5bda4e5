package internal

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
)

// typeText marks literal text in the flat token list
const typeText = "text"

var (
	reWhiteAt  = anchored(PatternWhite)
	reEquals   = unanchored(PatternEquals)
	reEqualsAt = anchored(PatternEquals)
	reCurlyAt  = anchored(PatternCurly)
	reSigilAt  = anchored(PatternSigil)
)

// tagPatterns holds the compiled patterns for one delimiter pair.
type tagPatterns struct {
	open        *regexp.Regexp
	openAt      *regexp.Regexp
	close       *regexp.Regexp
	closeAt     *regexp.Regexp
	tripleClose *regexp.Regexp
}

func compileTags(tags Tags) tagPatterns {
	open := regexp.QuoteMeta(tags.Open) + PatternWhite
	cls := PatternWhite + regexp.QuoteMeta(tags.Close)
	return tagPatterns{
		open:        unanchored(open),
		openAt:      anchored(open),
		close:       unanchored(cls),
		closeAt:     anchored(cls),
		tripleClose: unanchored(PatternWhite + regexp.QuoteMeta(PatternTripleCl+tags.Close)),
	}
}

// ParseTags parses a delimiter pair such as "<% %>".
// Exactly two whitespace-separated delimiters are required.
func ParseTags(pair string) (Tags, error) {
	parts := strings.Fields(pair)
	if len(parts) != 2 {
		return Tags{}, &ParseError{Message: ErrMsgInvalidTags, Actual: pair}
	}
	return Tags{Open: parts[0], Close: parts[1]}, nil
}

// rawToken is an entry of the flat token list built before nesting.
type rawToken struct {
	typ   string
	value string
	start int
	end   int
	tags  Tags
}

// Parser compiles a template string into a token tree.
type Parser struct {
	source string
	tags   Tags
	logger *zap.Logger
}

// NewParser creates a parser for source using the given starting delimiters.
func NewParser(source string, tags Tags, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{
		source: source,
		tags:   tags,
		logger: logger,
	}
}

// Parse produces the nested token tree.
func (p *Parser) Parse() ([]Token, error) {
	p.logger.Debug(LogMsgParseStart, zap.Int(LogFieldSource, len(p.source)))

	tags := p.tags
	if !tags.Valid() {
		return nil, &ParseError{Message: ErrMsgInvalidTags, Actual: tags.String()}
	}
	patterns := compileTags(tags)
	scanner := NewScanner(p.source)

	var (
		sections []*rawToken // open sections, innermost last
		tokens   []*rawToken
		spaces   []int // indices of whitespace tokens on the current line
		hasTag   bool  // a tag occurred on the current line
		nonSpace bool  // a non-whitespace character occurred on the current line
	)

	stripSpace := func() {
		if hasTag && !nonSpace {
			for _, idx := range spaces {
				tokens[idx] = nil
			}
		}
		spaces = spaces[:0]
		hasTag = false
		nonSpace = false
	}

	for !scanner.EOS() {
		start := scanner.Pos()

		if text := scanner.ScanUntil(patterns.open); text != StringEmpty {
			for i := 0; i < len(text); {
				r, size := utf8.DecodeRuneInString(text[i:])
				if unicode.IsSpace(r) {
					spaces = append(spaces, len(tokens))
				} else {
					nonSpace = true
				}
				tokens = append(tokens, &rawToken{typ: typeText, value: text[i : i+size], start: start, end: start + size})
				start += size
				i += size
				if r == CharNewline {
					stripSpace()
				}
			}
		}

		if scanner.Scan(patterns.openAt) == StringEmpty {
			break
		}
		hasTag = true

		typ := scanner.Scan(reSigilAt)
		if typ == StringEmpty {
			typ = SigilName
		}
		scanner.Scan(reWhiteAt)

		var value string
		switch typ {
		case SigilDelims:
			value = scanner.ScanUntil(reEquals)
			scanner.Scan(reEqualsAt)
			scanner.ScanUntil(patterns.close)
		case SigilTriple:
			value = scanner.ScanUntil(patterns.tripleClose)
			scanner.Scan(reCurlyAt)
			scanner.ScanUntil(patterns.close)
			typ = SigilUnescaped
		default:
			value = scanner.ScanUntil(patterns.close)
		}

		if scanner.Scan(patterns.closeAt) == StringEmpty {
			return nil, p.newError(ErrMsgUnclosedTag, scanner.Pos(), StringEmpty, StringEmpty)
		}

		tok := &rawToken{typ: typ, value: value, start: start, end: scanner.Pos(), tags: tags}
		tokens = append(tokens, tok)

		switch typ {
		case SigilSection, SigilInverted:
			sections = append(sections, tok)
		case SigilClose:
			if len(sections) == 0 {
				return nil, p.newError(ErrMsgUnopenedSection, start, StringEmpty, value)
			}
			open := sections[len(sections)-1]
			sections = sections[:len(sections)-1]
			if open.value != value {
				return nil, p.newError(ErrMsgMismatchedSection, start, open.value, value)
			}
		case SigilName, SigilUnescaped:
			nonSpace = true
		case SigilDelims:
			newTags, err := ParseTags(value)
			if err != nil {
				return nil, p.newError(ErrMsgInvalidTags, start, StringEmpty, value)
			}
			tags = newTags
			patterns = compileTags(tags)
			p.logger.Debug(LogMsgDelimiters, zap.String(LogFieldOpen, tags.Open), zap.String(LogFieldClose, tags.Close))
		}
	}

	// The last line has no trailing newline but is still a line.
	stripSpace()

	if len(sections) > 0 {
		open := sections[len(sections)-1]
		return nil, p.newError(ErrMsgUnclosedSection, scanner.Pos(), open.value, StringEmpty)
	}

	tree, _ := nestTokens(squashTokens(tokens), 0)
	p.logger.Debug(LogMsgParseEnd, zap.Int(LogFieldTokens, len(tree)))
	return tree, nil
}

// squashTokens merges runs of text tokens and drops stripped, comment and
// delimiter-change entries.
func squashTokens(tokens []*rawToken) []*rawToken {
	squashed := make([]*rawToken, 0, len(tokens))
	var (
		run  *rawToken
		text strings.Builder
	)
	flush := func() {
		if run != nil {
			run.value = text.String()
			text.Reset()
			run = nil
		}
	}

	for _, tok := range tokens {
		if tok == nil || tok.typ == SigilComment || tok.typ == SigilDelims {
			continue
		}
		if tok.typ != typeText {
			flush()
			squashed = append(squashed, tok)
			continue
		}
		if run == nil {
			run = &rawToken{typ: typeText, start: tok.start}
			squashed = append(squashed, run)
		}
		text.WriteString(tok.value)
		run.end = tok.end
	}
	flush()

	return squashed
}

// nestTokens builds the tree starting at tokens[i]. It returns when it meets a
// closing tag or runs out of tokens, along with the index after the last
// consumed token.
func nestTokens(tokens []*rawToken, i int) ([]Token, int) {
	var tree []Token
	for i < len(tokens) {
		tok := tokens[i]
		i++

		switch tok.typ {
		case SigilSection, SigilInverted:
			children, next := nestTokens(tokens, i)
			closing := tokens[next-1]
			i = next
			if tok.typ == SigilSection {
				tree = append(tree, &SectionToken{
					Path:       tok.value,
					Start:      tok.start,
					End:        tok.end,
					Children:   children,
					CloseStart: closing.start,
					CloseEnd:   closing.end,
					Tags:       tok.tags,
				})
			} else {
				tree = append(tree, &InvertedToken{
					Path:       tok.value,
					Start:      tok.start,
					End:        tok.end,
					Children:   children,
					CloseStart: closing.start,
					CloseEnd:   closing.end,
				})
			}
		case SigilClose:
			return tree, i
		case SigilName:
			tree = append(tree, &NameToken{Path: tok.value, Start: tok.start, End: tok.end})
		case SigilUnescaped:
			tree = append(tree, &UnescapedToken{Path: tok.value, Start: tok.start, End: tok.end})
		case SigilPartial:
			tree = append(tree, &PartialToken{Name: tok.value, Start: tok.start, End: tok.end})
		default:
			tree = append(tree, &TextToken{Value: tok.value, Start: tok.start, End: tok.end})
		}
	}
	return tree, i
}

func (p *Parser) newError(msg string, offset int, expected, actual string) *ParseError {
	return &ParseError{
		Message:  msg,
		Position: PositionAt(p.source, offset),
		Expected: expected,
		Actual:   actual,
	}
}

// ParseError describes a malformed template.
type ParseError struct {
	Message  string
	Position Position
	Expected string // innermost open section, when relevant
	Actual   string // offending tag value, when relevant
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	if e.Expected != StringEmpty {
		sb.WriteString(" expected " + strconv.Quote(e.Expected))
	}
	if e.Actual != StringEmpty {
		sb.WriteString(" got " + strconv.Quote(e.Actual))
	}
	if e.Position.Line > 0 {
		sb.WriteString(" at " + e.Position.String())
	}
	return sb.String()
}

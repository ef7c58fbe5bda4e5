package internal

import "regexp"

// Scanner is a forward-only cursor over a template string.
type Scanner struct {
	source string
	tail   string
	pos    int
}

// NewScanner creates a scanner positioned at the start of source.
func NewScanner(source string) *Scanner {
	return &Scanner{
		source: source,
		tail:   source,
	}
}

// EOS returns true when the tail is empty.
func (s *Scanner) EOS() bool {
	return s.tail == StringEmpty
}

// Pos returns the byte offset of the cursor.
func (s *Scanner) Pos() int {
	return s.pos
}

// Tail returns the unconsumed remainder of the source.
func (s *Scanner) Tail() string {
	return s.tail
}

// Scan consumes and returns the text matched by re at the cursor.
// If re does not match at the cursor, Scan returns "" and consumes nothing.
func (s *Scanner) Scan(re *regexp.Regexp) string {
	loc := re.FindStringIndex(s.tail)
	if loc == nil || loc[0] != 0 {
		return StringEmpty
	}
	match := s.tail[:loc[1]]
	s.tail = s.tail[loc[1]:]
	s.pos += loc[1]
	return match
}

// ScanUntil consumes and returns all text up to the first match of re.
// The whole tail is consumed when re never matches.
func (s *Scanner) ScanUntil(re *regexp.Regexp) string {
	loc := re.FindStringIndex(s.tail)
	switch {
	case loc == nil:
		match := s.tail
		s.pos += len(s.tail)
		s.tail = StringEmpty
		return match
	case loc[0] == 0:
		return StringEmpty
	default:
		match := s.tail[:loc[0]]
		s.tail = s.tail[loc[0]:]
		s.pos += loc[0]
		return match
	}
}

// anchored compiles src so that it can only match at the start of the input.
func anchored(src string) *regexp.Regexp {
	return regexp.MustCompile(`^(?:` + src + `)`)
}

// unanchored compiles src for use with ScanUntil.
func unanchored(src string) *regexp.Regexp {
	return regexp.MustCompile(src)
}

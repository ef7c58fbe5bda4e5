package mustache

import "strings"

// EscapeFunc transforms the text of an escaped interpolation.
type EscapeFunc func(s string) string

var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
	"/", "&#x2F;",
)

// EscapeHTML escapes & < > " ' and / as HTML entities.
func EscapeHTML(s string) string {
	return htmlReplacer.Replace(s)
}

// NoEscape returns s unchanged. Useful for non-HTML output.
func NoEscape(s string) string {
	return s
}

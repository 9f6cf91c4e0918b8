package filtergraph

import "strings"

// Filter text passes through up to three unescaping levels in ffmpeg:
// the graph parser splits filter arguments (level 1), the option parser
// splits key=value pairs (level 2), and drawtext expands %{...} sequences in
// its text (level 3). Each level honors backslash escapes, treats single
// quotes as quoting, and trims unescaped leading and trailing whitespace.

const (
	graphSpecial  = `\'[],;`
	optionSpecial = `\':` + "\n"
	textSpecial   = `\%`
	whitespace    = " \t\r\n"
)

// EscapeText escapes drawtext text expansion characters.
func EscapeText(s string) string {
	return backslashEscape(s, textSpecial, false)
}

// EscapeOptionValue escapes a filter option value against the option parser.
func EscapeOptionValue(s string) string {
	return backslashEscape(s, optionSpecial, true)
}

// EscapeGraphArgs escapes a filter's joined argument string against the
// filtergraph parser.
func EscapeGraphArgs(s string) string {
	return backslashEscape(s, graphSpecial, true)
}

// backslashEscape prefixes every rune in special with a backslash. When
// guardEdges is set, leading and trailing whitespace is escaped too so the
// parser does not trim it.
func backslashEscape(s, special string, guardEdges bool) string {
	if s == "" {
		return s
	}
	lead, trail := 0, len(s)
	if guardEdges {
		lead = len(s) - len(strings.TrimLeft(s, whitespace))
		trail = len(strings.TrimRight(s, whitespace))
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		edge := guardEdges && (i < lead || i >= trail) && strings.IndexByte(whitespace, c) >= 0
		if edge || strings.IndexByte(special, c) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}

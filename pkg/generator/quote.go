package generator

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Style selects the escape grammar of a target's string literals.
type Style int

const (
	StyleC Style = iota
	StyleJava
	StylePython
)

// Quote renders s as a literal delimited by q.
func Quote(s string, q byte, style Style) string {
	return string(q) + Escape(s, q, style) + string(q)
}

// Escape escapes s for the inside of a literal delimited by q. Printable
// text, non-ASCII included, passes through.
func Escape(s string, q byte, style Style) string {
	var str strings.Builder

	for i, w := 0, 0; i < len(s); i += w {
		r, width := utf8.DecodeRuneInString(s[i:])
		w = width

		switch {
		case r == utf8.RuneError && width == 1:
			str.WriteString(byteEscape(s[i], style))
		case r == '\\':
			str.WriteString(`\\`)
		case r < 0x80 && byte(r) == q:
			str.WriteByte('\\')
			str.WriteByte(q)
		case r == '\n':
			str.WriteString(`\n`)
		case r == '\t':
			str.WriteString(`\t`)
		case r == '\r':
			str.WriteString(`\r`)
		case r == '\b':
			str.WriteString(`\b`)
		case r == '\f':
			str.WriteString(`\f`)
		case r == '\a' && style != StyleJava:
			str.WriteString(`\a`)
		case r == '\v' && style != StyleJava:
			str.WriteString(`\v`)
		case r < 0x20 || r == 0x7f:
			str.WriteString(byteEscape(byte(r), style))
		default:
			str.WriteRune(r)
		}
	}

	return str.String()
}

// byteEscape spells a control character or stray byte. C gets octal, which
// unlike \x cannot swallow the digits that follow.
func byteEscape(b byte, style Style) string {
	switch style {
	case StyleJava:
		return fmt.Sprintf(`\u%04x`, b)
	case StylePython:
		return fmt.Sprintf(`\x%02x`, b)
	}

	return fmt.Sprintf(`\%03o`, b)
}

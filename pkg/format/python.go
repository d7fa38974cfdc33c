package format

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
)

// Field is one piece of an f-string: literal text, or a replacement field
// with its expression, conversion and format spec.
type Field struct {
	Text string

	Expr       string
	Conversion byte
	Spec       string
}

func (f Field) IsText() bool {
	return f.Expr == ""
}

// SplitFString splits the decoded body of an f-string into literal text and
// replacement fields. Doubled braces are literal braces.
func SplitFString(body string) ([]Field, error) {
	var fields []Field
	var text strings.Builder

	flush := func() {
		if text.Len() > 0 {
			fields = append(fields, Field{Text: text.String()})
			text.Reset()
		}
	}

	for i := 0; i < len(body); i++ {
		c := body[i]

		switch {
		case (c == '{' || c == '}') && i+1 < len(body) && body[i+1] == c:
			text.WriteByte(c)
			i++
		case c == '}':
			return nil, fmt.Errorf("single '}' at offset %d", i)
		case c == '{':
			field, end, err := replacementField(body, i+1)
			if err != nil {
				return nil, err
			}

			flush()
			fields = append(fields, field)
			i = end
		default:
			text.WriteByte(c)
		}
	}

	flush()
	return fields, nil
}

// replacementField scans the field starting at start, just past the '{'. It
// returns the offset of the closing '}'.
func replacementField(s string, start int) (Field, int, error) {
	var field Field

	depth := 0
	var quote byte

	i := start
	for ; i < len(s); i++ {
		c := s[i]

		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}

		switch c {
		case '\'', '"':
			quote = c
			continue
		case '(', '[', '{':
			depth++
			continue
		case ')', ']':
			depth--
			continue
		}

		if depth > 0 {
			if c == '}' {
				depth--
			}
			continue
		}

		if c == '}' || c == ':' || (c == '!' && (i+1 == len(s) || s[i+1] != '=')) {
			break
		}
	}

	field.Expr = strings.TrimSpace(s[start:i])
	if field.Expr == "" {
		return field, 0, fmt.Errorf("empty expression at offset %d", start)
	}

	if selfDocumenting(field.Expr) {
		return field, 0, fmt.Errorf("self-documenting expression %q", field.Expr)
	}

	if i < len(s) && s[i] == '!' {
		if i+1 >= len(s) {
			return field, 0, fmt.Errorf("missing conversion at offset %d", i)
		}

		field.Conversion = s[i+1]
		i += 2
	}

	if i < len(s) && s[i] == ':' {
		end := strings.IndexByte(s[i:], '}')
		if end < 0 {
			return field, 0, fmt.Errorf("unterminated field at offset %d", start)
		}

		field.Spec = s[i+1 : i+end]
		if strings.Contains(field.Spec, "{") {
			return field, 0, fmt.Errorf("nested field in format spec %q", field.Spec)
		}

		i += end
	}

	if i >= len(s) || s[i] != '}' {
		return field, 0, fmt.Errorf("unterminated field at offset %d", start)
	}

	return field, i, nil
}

func selfDocumenting(expr string) bool {
	if !strings.HasSuffix(expr, "=") {
		return false
	}

	for _, op := range []string{"==", "!=", "<=", ">="} {
		if strings.HasSuffix(expr, op) {
			return false
		}
	}

	return true
}

var pythonSpecPattern = regexp2.MustCompile(
	`^(?:(?<fill>.)?(?<align>[<>=^]))?(?<sign>[-+ ])?(?<z>z)?(?<alt>#)?(?<zero>0)?(?<width>\d+)?(?<group>[,_])?(?:\.(?<prec>\d+))?(?<type>[bcdeEfFgGnosxX%])?$`,
	regexp2.None,
)

// FromPython converts the format spec of a replacement field into a printf
// specifier. verb is used when the spec names no presentation type; it
// should follow the type of the value. Features printf cannot express are
// dropped and reported in notes.
func FromPython(spec string, verb byte) (*Spec, []string, error) {
	m, err := pythonSpecPattern.FindStringMatch(spec)
	if err != nil || m == nil {
		return nil, nil, fmt.Errorf("invalid format spec %q", spec)
	}

	group := func(name string) string {
		return m.GroupByName(name).String()
	}

	var notes []string
	s := &Spec{Width: group("width"), Verb: verb}

	if prec := m.GroupByName("prec"); len(prec.Captures) > 0 {
		s.HasPrecision = true
		s.Precision = prec.String()
	}

	switch t := group("type"); t {
	case "":
		if s.HasPrecision && (verb == 'f' || verb == 'g') {
			s.Verb = 'g'
		}
	case "n":
		s.Verb = 'd'
	case "b":
		return nil, nil, fmt.Errorf("binary presentation in %q", spec)
	case "%":
		return nil, nil, fmt.Errorf("percentage presentation in %q", spec)
	default:
		s.Verb = t[0]
	}

	var flags strings.Builder

	fill, align := group("fill"), group("align")
	switch align {
	case "<":
		flags.WriteByte('-')
	case "^":
		notes = append(notes, "centered alignment")
	case "":
		if s.Width != "" && (s.Verb == 's' || s.Verb == 'c') {
			flags.WriteByte('-')
		}
	}

	switch fill {
	case "", " ":
	case "0":
		if align == ">" || align == "=" {
			flags.WriteByte('0')
		}
	default:
		notes = append(notes, fmt.Sprintf("fill character %q", fill))
	}

	switch group("sign") {
	case "+":
		flags.WriteByte('+')
	case " ":
		flags.WriteByte(' ')
	}

	if group("alt") != "" {
		flags.WriteByte('#')
	}

	if group("zero") != "" && align != "<" {
		flags.WriteByte('0')
	}

	if group("z") != "" {
		notes = append(notes, "negative zero coercion")
	}

	if group("group") != "" {
		notes = append(notes, "digit grouping")
	}

	s.Flags = flags.String()
	return s, notes, nil
}

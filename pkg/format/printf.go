// Package format models printf-style format strings. A format is parsed once
// into literal and specifier segments and rendered for each target: printf
// syntax for C and Java, f-string replacement fields for Python.
package format

import (
	"strings"

	"github.com/dlclark/regexp2"
)

var specPattern = regexp2.MustCompile(
	`%(?<flags>[-+ #0]*)(?<width>\d+|\*)?(?:\.(?<prec>\d*|\*))?(?<length>hh|h|ll|l|L|z|j|t)?(?<verb>[diouxXeEfFgGcspnb%])`,
	regexp2.None,
)

// Spec is one conversion specifier.
type Spec struct {
	Flags     string
	Width     string
	Precision string
	// HasPrecision tells "%.f" apart from "%f".
	HasPrecision bool
	Length       string
	Verb         byte
}

// Segment is either literal text or a specifier.
type Segment struct {
	Text string
	Spec *Spec
}

type Format struct {
	Segments []Segment
}

// Parse splits s, the decoded contents of a format literal. "%%" becomes a
// literal percent sign and "%n" a newline. A '%' that starts no valid
// specifier is kept as text.
func Parse(s string) *Format {
	f := &Format{}
	runes := []rune(s)

	last := 0
	m, err := specPattern.FindStringMatch(s)
	for err == nil && m != nil {
		if m.Index > last {
			f.text(string(runes[last:m.Index]))
		}

		spec := &Spec{
			Flags:  m.GroupByName("flags").String(),
			Width:  m.GroupByName("width").String(),
			Length: m.GroupByName("length").String(),
			Verb:   m.GroupByName("verb").String()[0],
		}

		if prec := m.GroupByName("prec"); len(prec.Captures) > 0 {
			spec.HasPrecision = true
			spec.Precision = prec.String()
		}

		switch spec.Verb {
		case '%':
			f.text("%")
		case 'n':
			f.text("\n")
		default:
			f.Segments = append(f.Segments, Segment{Spec: spec})
		}

		last = m.Index + m.Length
		m, err = specPattern.FindNextMatch(m)
	}

	if last < len(runes) {
		f.text(string(runes[last:]))
	}

	return f
}

// text appends literal text, merging it with a preceding literal.
func (f *Format) text(s string) {
	if n := len(f.Segments); n > 0 && f.Segments[n-1].Spec == nil {
		f.Segments[n-1].Text += s
		return
	}

	f.Segments = append(f.Segments, Segment{Text: s})
}

func (f *Format) Specs() []*Spec {
	var specs []*Spec
	for _, seg := range f.Segments {
		if seg.Spec != nil {
			specs = append(specs, seg.Spec)
		}
	}

	return specs
}

// Arity is the number of arguments the format consumes, counting '*' widths
// and precisions.
func (f *Format) Arity() int {
	n := 0
	for _, spec := range f.Specs() {
		n++
		if spec.Width == "*" {
			n++
		}
		if spec.Precision == "*" {
			n++
		}
	}

	return n
}

// HasNewline reports whether the format ends with a newline.
func (f *Format) HasNewline() bool {
	n := len(f.Segments)
	return n > 0 && f.Segments[n-1].Spec == nil && strings.HasSuffix(f.Segments[n-1].Text, "\n")
}

// TrimNewline removes one trailing newline and reports whether there was one.
func (f *Format) TrimNewline() bool {
	if !f.HasNewline() {
		return false
	}

	last := &f.Segments[len(f.Segments)-1]
	last.Text = strings.TrimSuffix(last.Text, "\n")
	if last.Text == "" {
		f.Segments = f.Segments[:len(f.Segments)-1]
	}

	return true
}

// Bare reports a format made of one plain specifier and nothing else, such
// as "%d".
func (f *Format) Bare() bool {
	if len(f.Segments) != 1 || f.Segments[0].Spec == nil {
		return false
	}

	spec := f.Segments[0].Spec
	return spec.Flags == "" && spec.Width == "" && !spec.HasPrecision
}

// Literal reports whether the format has no specifiers.
func (f *Format) Literal() bool {
	return len(f.Specs()) == 0
}

// Text returns the literal text of a format without specifiers.
func (f *Format) Text() string {
	var str strings.Builder
	for _, seg := range f.Segments {
		str.WriteString(seg.Text)
	}

	return str.String()
}

// Printf renders the format in printf syntax with render choosing each
// specifier.
func (f *Format) Printf(render func(*Spec) string) string {
	var str strings.Builder
	for _, seg := range f.Segments {
		if seg.Spec == nil {
			str.WriteString(strings.ReplaceAll(seg.Text, "%", "%%"))
			continue
		}

		str.WriteString(render(seg.Spec))
	}

	return str.String()
}

func (f *Format) C() string {
	return f.Printf((*Spec).C)
}

func (f *Format) Java() string {
	return f.Printf((*Spec).Java)
}

// Python renders the body of an f-string, substituting one argument
// expression per specifier. The literal text goes through escape. It fails
// when the argument count does not match or a specifier takes its width or
// precision from an argument.
func (f *Format) Python(args []string, escape func(string) string) (string, bool) {
	specs := f.Specs()
	if len(specs) != len(args) {
		return "", false
	}

	var str strings.Builder
	i := 0
	for _, seg := range f.Segments {
		if seg.Spec == nil {
			text := strings.NewReplacer("{", "{{", "}", "}}").Replace(seg.Text)
			str.WriteString(escape(text))
			continue
		}

		if seg.Spec.Width == "*" || seg.Spec.Precision == "*" {
			return "", false
		}

		str.WriteString("{")
		str.WriteString(args[i])
		str.WriteString(seg.Spec.Python())
		str.WriteString("}")
		i++
	}

	return str.String(), true
}

// String renders the specifier as written.
func (s *Spec) String() string {
	return s.render(s.Length, s.Verb)
}

func (s *Spec) render(length string, verb byte) string {
	var str strings.Builder
	str.WriteByte('%')
	str.WriteString(s.Flags)
	str.WriteString(s.Width)
	if s.HasPrecision {
		str.WriteByte('.')
		str.WriteString(s.Precision)
	}
	str.WriteString(length)
	str.WriteByte(verb)

	return str.String()
}

// Integer reports the integer conversions.
func (s *Spec) Integer() bool {
	switch s.Verb {
	case 'd', 'i', 'u', 'o', 'x', 'X':
		return true
	}

	return false
}

// Floating reports the floating point conversions.
func (s *Spec) Floating() bool {
	switch s.Verb {
	case 'e', 'E', 'f', 'F', 'g', 'G':
		return true
	}

	return false
}

// C normalises the specifier for printf. Java's %b has no C counterpart; the
// caller passes the value as a string.
func (s *Spec) C() string {
	switch s.Verb {
	case 'b':
		return s.render("", 's')
	case 'i':
		return s.render(s.Length, 'd')
	}

	return s.String()
}

// Java drops length modifiers, which Java's Formatter rejects.
func (s *Spec) Java() string {
	switch s.Verb {
	case 'i', 'u':
		return s.render("", 'd')
	case 'p':
		return s.render("", 's')
	}

	return s.render("", s.Verb)
}

// Python returns the format spec of an f-string replacement field, including
// the leading ':', or "" when the value prints as is.
func (s *Spec) Python() string {
	var spec strings.Builder

	flags := s.Flags
	switch {
	case strings.Contains(flags, "-"):
		spec.WriteByte('<')
	case strings.Contains(flags, "0") && s.Width != "":
	case s.Width != "":
		spec.WriteByte('>')
	}

	switch {
	case strings.Contains(flags, "+"):
		spec.WriteByte('+')
	case strings.Contains(flags, " "):
		spec.WriteByte(' ')
	}

	if strings.Contains(flags, "#") {
		spec.WriteByte('#')
	}

	if strings.Contains(flags, "0") && !strings.Contains(flags, "-") && s.Width != "" {
		spec.WriteByte('0')
	}

	spec.WriteString(s.Width)

	if s.HasPrecision {
		spec.WriteByte('.')
		if s.Precision == "" {
			spec.WriteByte('0')
		} else {
			spec.WriteString(s.Precision)
		}
	}

	switch s.Verb {
	case 'f', 'F', 'e', 'E', 'g', 'G', 'x', 'X', 'o':
		spec.WriteByte(s.Verb)
	case 'd', 'i', 'u':
		if s.HasPrecision {
			// no f-string form for a minimum digit count
			return (&Spec{Flags: s.Flags, Width: s.Width, Verb: 'd'}).Python()
		}
	}

	if spec.Len() == 0 {
		return ""
	}

	return ":" + spec.String()
}

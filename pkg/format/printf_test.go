package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	f := Parse("%d and %-8.2lf%%\n")

	require.Len(t, f.Segments, 4)
	assert.Equal(t, &Spec{Verb: 'd'}, f.Segments[0].Spec)
	assert.Equal(t, " and ", f.Segments[1].Text)
	assert.Equal(t, &Spec{Flags: "-", Width: "8", Precision: "2", HasPrecision: true, Length: "l", Verb: 'f'}, f.Segments[2].Spec)
	assert.Equal(t, "%\n", f.Segments[3].Text)

	assert.Equal(t, 2, f.Arity())
	assert.True(t, f.HasNewline())
}

func TestParseOddities(t *testing.T) {
	cases := []struct {
		data  string
		text  string
		specs int
		arity int
	}{
		{"100%", "100%", 0, 0},
		{"a%nb", "a\nb", 0, 0},
		{"%*d", "", 1, 2},
		{"%.f", "", 1, 1},
		{"héllo %s", "héllo ", 1, 1},
	}

	for _, c := range cases {
		f := Parse(c.data)
		assert.Equal(t, c.text, f.Text(), c.data)
		assert.Len(t, f.Specs(), c.specs, c.data)
		assert.Equal(t, c.arity, f.Arity(), c.data)
	}
}

func TestTrimNewline(t *testing.T) {
	f := Parse("%d\n")
	assert.True(t, f.TrimNewline())
	assert.True(t, f.Bare())
	assert.False(t, f.TrimNewline())

	f = Parse("x\n\n")
	assert.True(t, f.TrimNewline())
	assert.Equal(t, "x\n", f.Text())
}

func TestRenderPrintf(t *testing.T) {
	cases := []struct {
		data string
		c    string
		java string
	}{
		{"%d and %.2f\n", "%d and %.2f\n", "%d and %.2f\n"},
		{"%ld %i %u", "%ld %d %u", "%d %d %d"},
		{"%b|%5s|%%", "%s|%5s|%%", "%b|%5s|%%"},
		{"%-10lu", "%-10lu", "%-10d"},
	}

	for _, c := range cases {
		f := Parse(c.data)
		assert.Equal(t, c.c, f.C(), c.data)
		assert.Equal(t, c.java, f.Java(), c.data)
	}
}

func TestRenderPython(t *testing.T) {
	escape := func(s string) string {
		return strings.ReplaceAll(s, "\n", `\n`)
	}

	cases := []struct {
		data  string
		args   []string
		expect string
	}{
		{"%d and %.2f", []string{"x", "y"}, "{x} and {y:.2f}"},
		{"%5d|%-5s|%05d|%10s", []string{"a", "b", "c", "d"}, "{a:>5}|{b:<5}|{c:05}|{d:>10}"},
		{"%x %+d %e", []string{"a", "b", "c"}, "{a:x} {b:+} {c:e}"},
		{"{%s}%%\n", []string{"s"}, "{{{s}}}%\\n"},
		{"%.3d", []string{"n"}, "{n}"},
	}

	for _, c := range cases {
		got, ok := Parse(c.data).Python(c.args, escape)
		require.True(t, ok, c.data)
		assert.Equal(t, c.expect, got, c.data)
	}

	_, ok := Parse("%d %d").Python([]string{"x"}, escape)
	assert.False(t, ok)

	_, ok = Parse("%*d").Python([]string{"w", "x"}, escape)
	assert.False(t, ok)
}

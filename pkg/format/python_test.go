package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFString(t *testing.T) {
	cases := []struct {
		data   string
		expect []Field
	}{
		{"plain", []Field{{Text: "plain"}}},
		{"a{x}b", []Field{{Text: "a"}, {Expr: "x"}, {Text: "b"}}},
		{"{{lit}}", []Field{{Text: "{lit}"}}},
		{"{ x }", []Field{{Expr: "x"}}},
		{"{x!r:>5}", []Field{{Expr: "x", Conversion: 'r', Spec: ">5"}}},
		{"{a != b}", []Field{{Expr: "a != b"}}},
		{"{d['k']}", []Field{{Expr: "d['k']"}}},
		{"{f(a, b):d}", []Field{{Expr: "f(a, b)", Spec: "d"}}},
		{"{s:}", []Field{{Expr: "s"}}},
		{"{x == 1}", []Field{{Expr: "x == 1"}}},
	}

	for _, c := range cases {
		fields, err := SplitFString(c.data)
		require.NoError(t, err, c.data)
		assert.Equal(t, c.expect, fields, c.data)
	}
}

func TestSplitFStringErrors(t *testing.T) {
	for _, data := range []string{"{}", "{x=}", "{x", "}", "a}b", "{x:{w}}", "{x!}"} {
		_, err := SplitFString(data)
		assert.Error(t, err, data)
	}
}

func TestFromPython(t *testing.T) {
	cases := []struct {
		spec   string
		verb   byte
		expect string
		notes  []string
	}{
		{"5d", 'd', "%5d", nil},
		{".2f", 'g', "%.2f", nil},
		{".3", 'g', "%.3g", nil},
		{"", 's', "%s", nil},
		{"<10", 's', "%-10s", nil},
		{">10", 's', "%10s", nil},
		{"10", 's', "%-10s", nil},
		{"10", 'd', "%10d", nil},
		{"010.2f", 'g', "%010.2f", nil},
		{"0>4", 'd', "%04d", nil},
		{"+.1e", 'g', "%+.1e", nil},
		{"#x", 'd', "%#x", nil},
		{"n", 'd', "%d", nil},
		{"^10", 's', "%10s", []string{"centered alignment"}},
		{"*>5", 'd', "%5d", []string{`fill character "*"`}},
		{",d", 'd', "%d", []string{"digit grouping"}},
	}

	for _, c := range cases {
		spec, notes, err := FromPython(c.spec, c.verb)
		require.NoError(t, err, c.spec)
		assert.Equal(t, c.expect, spec.String(), c.spec)
		assert.Equal(t, c.notes, notes, c.spec)
	}
}

func TestFromPythonErrors(t *testing.T) {
	for _, spec := range []string{"b", ".1%", "5q", "{w}"} {
		_, _, err := FromPython(spec, 'd')
		assert.Error(t, err, spec)
	}
}

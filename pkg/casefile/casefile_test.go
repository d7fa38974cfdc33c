package casefile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

const fence = "```"

func TestParse(t *testing.T) {
	markdown := `# Prints

Some prose.

## Test: hello
` + fence + `python
print("hi")
` + fence + `
` + fence + `c
#include <stdio.h>
` + fence + `
` + fence + `warnings
` + fence + `

## Test: second
` + fence + `java
x;
` + fence + `
` + fence + `python
x
` + fence

	cases, err := Parse([]byte(markdown))
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 2)

	c := cases[0]
	be.Equal(t, c.Name, "hello")
	be.Equal(t, c.Line, 5)
	be.Equal(t, c.Input.Info, "python")
	be.Equal(t, c.Input.Content, "print(\"hi\")\n")
	be.Equal(t, c.Input.Line, 7)
	be.Equal(t, len(c.Expect), 2)

	out, ok := c.Expected("c")
	be.True(t, ok)
	be.Equal(t, out, "#include <stdio.h>\n")

	out, ok = c.Expected("warnings")
	be.True(t, ok)
	be.Equal(t, out, "")

	_, ok = c.Expected("java")
	be.True(t, !ok)

	be.Equal(t, cases[1].Name, "second")
	be.Equal(t, cases[1].Input.Info, "java")
}

func TestParseEmpty(t *testing.T) {
	cases, err := Parse(nil)
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 0)
}

func TestParseIgnoresPlainFences(t *testing.T) {
	markdown := fence + `
not a case
` + fence + `

## Test: plain
` + fence + `c
int x;
` + fence + `
` + fence + `
prose
` + fence + `
` + fence + `python
x = 0
` + fence

	cases, err := Parse([]byte(markdown))
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 1)
	be.Equal(t, len(cases[0].Expect), 1)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		known    []string
		msg      string
	}{
		{
			"fence outside test",
			"# Doc\n\n" + fence + "python\nx = 1\n" + fence + "\n",
			nil,
			"python fence found outside of test case",
		},
		{
			"no input",
			"## Test: empty\n\nnothing here\n",
			nil,
			"test 'empty' has no input fence",
		},
		{
			"no expectation",
			"## Test: lonely\n" + fence + "c\nint x;\n" + fence + "\n",
			nil,
			"test 'lonely' has no expectation fences",
		},
		{
			"duplicate expectation",
			"## Test: twice\n" + fence + "c\na;\n" + fence + "\n" + fence + "java\nb;\n" + fence + "\n" + fence + "java\nc;\n" + fence + "\n",
			nil,
			"multiple java fences in test 'twice'",
		},
		{
			"unknown language",
			"## Test: cobol\n" + fence + "cobol\nDISPLAY 'HI'.\n" + fence + "\n",
			[]string{"python", "java", "c"},
			"unknown fence language 'cobol'",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse([]byte(test.markdown), test.known...)
			be.True(t, err != nil)
			be.True(t, strings.Contains(err.Error(), test.msg))
		})
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.md")
	err := os.WriteFile(path, []byte("## Test: broken\n"), 0o644)
	be.Err(t, err, nil)

	_, err = ReadFile(path)
	be.True(t, err != nil)
	be.True(t, strings.HasPrefix(err.Error(), path))

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.md"))
	be.True(t, err != nil)
}

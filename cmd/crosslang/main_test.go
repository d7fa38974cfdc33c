package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.crosslang.dev/pkg/core"
	"go.crosslang.dev/pkg/lexer"
	"go.crosslang.dev/pkg/translator"
)

func TestTranslateStdin(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := cmdTranslate([]string{"-from", "python", "-to", "java"}, strings.NewReader("print(1)\n"), &stdout, &stderr)

	assert.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "System.out.println(1);")
}

func TestTranslateFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "main.c")
	out := filepath.Join(dir, "main.py")
	require.NoError(t, os.WriteFile(in, []byte("int main() {\n    int *p = 0;\n    return 0;\n}\n"), 0o644))

	var stdout, stderr bytes.Buffer
	code := cmdTranslate([]string{"-from", "c", "-to", "py", "-o", out, in}, nil, &stdout, &stderr)
	assert.Equal(t, 0, code, stderr.String())
	assert.Empty(t, stdout.String())

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotEmpty(t, written)
}

func TestTranslateFailure(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := cmdTranslate([]string{"-from", "c", "-to", "java"}, strings.NewReader("int main() { return 0 }"), &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.True(t, strings.HasPrefix(stdout.String(), "// Translation from C to Java failed."))
	assert.Contains(t, stderr.String(), "Parse error:")
}

func TestTranslateBadFlags(t *testing.T) {
	cases := [][]string{
		{"-from", "c"},
		{"-from", "c", "-to", "c"},
		{"-from", "cobol", "-to", "c"},
		{"-from", "c", "-to", "python", "-log-level", "loud"},
		{"-from", "c", "-to", "python", "-scope", "global"},
	}

	for _, args := range cases {
		var stdout, stderr bytes.Buffer
		code := cmdTranslate(args, strings.NewReader(""), &stdout, &stderr)
		assert.Equal(t, 1, code, args)
		assert.NotEmpty(t, stderr.String(), args)
	}
}

func TestServe(t *testing.T) {
	in := strings.Join([]string{
		`{"source_code":"print(1)\n","source_language":"python","target_language":"c"}`,
		``,
		`not json`,
		`{"source_code":"x","source_language":"c","target_language":"c"}`,
	}, "\n")

	var out bytes.Buffer
	require.NoError(t, serve(translator.NewService(translator.Options{}), strings.NewReader(in), &out))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	var resps []translator.Response
	for _, l := range lines {
		var r translator.Response
		require.NoError(t, json.Unmarshal([]byte(l), &r))
		resps = append(resps, r)
	}

	assert.True(t, resps[0].Success)
	assert.Contains(t, resps[0].Code, `printf("%d\n", 1);`)
	assert.False(t, resps[1].Success)
	assert.Contains(t, resps[1].Error, "bad request")
	assert.False(t, resps[2].Success)
}

func TestPrintWarnings(t *testing.T) {
	var out bytes.Buffer
	printWarnings(&out, []core.Warning{
		{Kind: "Unsupported", Pos: lexer.Position{Line: 2, Column: 5}, Message: "unsupported goto"},
		{Kind: "Generation", Message: "string concatenation in C"},
		{Kind: "Approximation", Message: "unknown type of x taken as int"},
		{Kind: "Other", Message: "odd"},
	})

	expect := `Unsupported construct: unsupported goto at 2:5
Could not generate: string concatenation in C
Approximation: unknown type of x taken as int
Warning: other: odd
`
	assert.Equal(t, expect, out.String())
}

func TestPrintError(t *testing.T) {
	cases := []struct {
		err    error
		expect string
	}{
		{&core.ParseError{Position: lexer.Position{Line: 1, Column: 3}, Msg: "expected ;"}, "Parse error: expected ; at 1:3\n"},
		{&core.EntryPointError{Msg: "no main function"}, "Entry point not found: no main function\n"},
		{&core.GenerationError{Node: "program", Msg: "boom"}, "Generation failed: cannot generate program: boom\n"},
		{errors.New("plain"), "Error: plain\n"},
	}

	for _, c := range cases {
		var out bytes.Buffer
		printError(&out, c.err)
		assert.Equal(t, c.expect, out.String())
	}
}

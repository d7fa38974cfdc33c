package translator

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.crosslang.dev/pkg/casefile"
	"go.crosslang.dev/pkg/core"
	"go.crosslang.dev/pkg/logger"
)

const squareC = `#include <stdio.h>
#define N 10

int square(int x) {
    return x * x;
}

int main() {
    int a = 5;
    printf("%d\n", square(a));
    return 0;
}
`

func translator(t *testing.T, source, target core.Language) *Translator {
	t.Helper()

	tr, err := New(source, target, Options{Logger: logger.Discard()})
	require.NoError(t, err)

	return tr
}

func TestGolden(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.md"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	var known []string
	for _, l := range core.Targets() {
		known = append(known, l.String())
	}

	for _, file := range files {
		cases, err := casefile.ReadFile(file, known...)
		require.NoError(t, err)

		for _, c := range cases {
			source, err := core.ParseLanguage(c.Input.Info)
			require.NoError(t, err, c.Name)

			for _, expect := range c.Expect {
				target, err := core.ParseLanguage(expect.Info)
				require.NoError(t, err, c.Name)

				t.Run(c.Name+"/"+source.String()+"-to-"+target.String(), func(t *testing.T) {
					res := translator(t, source, target).Translate(c.Input.Content)
					require.NoError(t, res.Err)
					assert.Equal(t, expect.Content, res.Code)
					assert.Empty(t, res.Warnings)
				})
			}
		}
	}
}

func TestPairs(t *testing.T) {
	pairs := Pairs()
	assert.Len(t, pairs, 9)

	for _, p := range pairs {
		assert.NotEqual(t, p[0], p[1])
		_, err := New(p[0], p[1], Options{Logger: logger.Discard()})
		assert.NoError(t, err, "%s to %s", p[0], p[1])
	}
}

func TestNewRejects(t *testing.T) {
	cases := []struct {
		source, target core.Language
	}{
		{core.C, core.C},
		{core.LLVM, core.C},
		{core.Python, core.Language("cobol")},
	}

	for _, c := range cases {
		_, err := New(c.source, c.target, Options{})
		assert.Error(t, err, "%s to %s", c.source, c.target)
	}
}

func TestParseFailure(t *testing.T) {
	src := "int main() { return 0 }"
	res := translator(t, core.C, core.Python).Translate(src)

	assert.False(t, res.Success())
	assert.Equal(t, StageParsing, res.Stage)

	var parseErr *core.ParseError
	require.ErrorAs(t, res.Err, &parseErr)
	assert.Equal(t, 1, parseErr.Position.Line)

	lines := strings.Split(strings.TrimRight(res.Code, "\n"), "\n")
	assert.Equal(t, "# Translation from C to Python failed.", lines[0])
	assert.Equal(t, "# "+res.Err.Error(), lines[1])
	assert.Equal(t, "# Original source:", lines[3])
	assert.Equal(t, "# "+src, lines[len(lines)-1])
	for _, l := range lines {
		assert.True(t, strings.HasPrefix(l, "#"), l)
	}
}

func TestEntryPointFailure(t *testing.T) {
	src := "public class A {\n    static int f() {\n        return 1;\n    }\n}\n"
	res := translator(t, core.Java, core.C).Translate(src)

	assert.False(t, res.Success())
	assert.Equal(t, StageEntryPoint, res.Stage)

	var entryErr *core.EntryPointError
	assert.ErrorAs(t, res.Err, &entryErr)
	assert.True(t, strings.HasPrefix(res.Code, "// Translation from Java to C failed.\n"))
	assert.Contains(t, res.Code, "//     static int f() {\n")
}

func TestFailureCodeMarkers(t *testing.T) {
	cases := []struct {
		target core.Language
		marker string
	}{
		{core.Python, "# "},
		{core.Java, "// "},
		{core.C, "// "},
		{core.LLVM, "; "},
	}

	for _, c := range cases {
		code := FailureCode(core.Java, c.target, "x = 1;", nil)
		assert.True(t, strings.HasPrefix(code, c.marker+"Translation from Java to "+c.target.DisplayName()+" failed."), code)
		assert.True(t, strings.HasSuffix(code, c.marker+"x = 1;\n"), code)
	}

	assert.True(t, strings.HasSuffix(FailureCode(core.C, core.Python, "  \n", nil), "# Original source:\n"))
}

func TestUnsupportedConstruct(t *testing.T) {
	src := `int main() {
    int x = 1;
    int *p = &x;
    printf("%d\n", x);
    return 0;
}
`
	res := translator(t, core.C, core.Python).Translate(src)

	require.True(t, res.Success())
	assert.Contains(t, res.Code, "# unsupported pointer operation\n")
	assert.Contains(t, res.Code, "print(x)\n")
	require.NotEmpty(t, res.Warnings)
	assert.Equal(t, "Unsupported", res.Warnings[0].Kind)
}

func TestOptionalImports(t *testing.T) {
	cases := []struct {
		src     string
		include bool
	}{
		{"flag = True\nprint(flag)\n", true},
		{"n = 1\nprint(n)\n", false},
	}

	for _, c := range cases {
		res := translator(t, core.Python, core.C).Translate(c.src)
		require.True(t, res.Success(), c.src)
		assert.Equal(t, c.include, strings.Contains(res.Code, "#include <stdbool.h>"), res.Code)
		assert.Contains(t, res.Code, "#include <stdio.h>")
	}
}

func TestRoundTrip(t *testing.T) {
	src := "print(\"hello\")\n"

	java := translator(t, core.Python, core.Java).Translate(src)
	require.True(t, java.Success())
	assert.Contains(t, java.Code, `System.out.println("hello");`)

	back := translator(t, core.Java, core.Python).Translate(java.Code)
	require.True(t, back.Success())
	assert.Equal(t, src, back.Code)
}

func TestClassName(t *testing.T) {
	tr, err := New(core.C, core.Java, Options{ClassName: "Translated", Indent: "  ", Logger: logger.Discard()})
	require.NoError(t, err)

	res := tr.Translate(squareC)
	require.True(t, res.Success())
	assert.Contains(t, res.Code, "public class Translated {\n  static final int N = 10;\n")
}

func TestLLVM(t *testing.T) {
	res := translator(t, core.C, core.LLVM).Translate(squareC)

	require.True(t, res.Success())
	assert.Contains(t, res.Code, "@N = constant i32 10")
	assert.Contains(t, res.Code, "define i32 @square(i32 %x)")
	assert.Contains(t, res.Code, "define i32 @main()")
	assert.Contains(t, res.Code, "call i32 @square(")
	assert.Contains(t, res.Code, "@printf")
}

func TestConcurrentTranslate(t *testing.T) {
	tr := translator(t, core.C, core.Python)
	want := tr.Translate(squareC).Code

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = tr.Translate(squareC).Code
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestHandle(t *testing.T) {
	s := NewService(Options{Logger: logger.Discard()})

	cases := []struct {
		req     Request
		success bool
		errText string
	}{
		{Request{SourceCode: squareC, SourceLanguage: "c", TargetLanguage: "py"}, true, ""},
		{Request{SourceCode: "x = 1\n", SourceLanguage: "python", TargetLanguage: "python"}, false, "both Python"},
		{Request{SourceCode: "x = 1\n", SourceLanguage: "cobol", TargetLanguage: "java"}, false, "source language"},
		{Request{SourceCode: "x = 1\n", SourceLanguage: "python", TargetLanguage: "rust"}, false, "target language"},
		{Request{SourceCode: "x = 1\n", SourceLanguage: "llvm", TargetLanguage: "c"}, false, "not a source language"},
		{Request{SourceCode: "int main() {", SourceLanguage: "c", TargetLanguage: "java"}, false, "parse error"},
	}

	for _, c := range cases {
		resp := s.Handle(c.req)
		assert.Equal(t, c.success, resp.Success, c.req)
		assert.NotNil(t, resp.Warnings)
		assert.Contains(t, resp.Error, c.errText)

		if !c.success {
			assert.Contains(t, resp.Code, "Original source:")
		}
	}

	resp := s.Handle(Request{SourceCode: "x = 1\n", SourceLanguage: "python", TargetLanguage: "rust"})
	lines := strings.Split(strings.TrimRight(resp.Code, "\n"), "\n")
	assert.Equal(t, "// Translation from Python to Rust failed.", lines[0])
	assert.Equal(t, "// x = 1", lines[len(lines)-1])

	resp = s.Handle(Request{SourceCode: "x = 1\n", SourceLanguage: "python"})
	assert.True(t, strings.HasPrefix(resp.Code, "// Translation from Python to Unknown failed.\n"), resp.Code)
}

func TestResponseJSON(t *testing.T) {
	var req Request
	err := json.Unmarshal([]byte(`{"source_code":"print(1)\n","source_language":"python","target_language":"java"}`), &req)
	require.NoError(t, err)

	resp := Handle(req)
	require.True(t, resp.Success)

	out, err := json.Marshal(resp)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(out, &fields))
	assert.Equal(t, true, fields["success"])
	assert.Contains(t, fields["code"], "System.out.println(1);")
	assert.Equal(t, []any{}, fields["warnings"])
	assert.NotContains(t, fields, "error")
}

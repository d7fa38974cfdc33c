package lexer

import (
	"testing"

	"go.crosslang.dev/internal/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tok struct {
	Typ   TokenType
	Value string
}

func scan(t *testing.T, src string, d *Dialect) []tok {
	t.Helper()

	tokens, err := NewLexer(src, d).Run()
	require.NoError(t, err)

	var got []tok
	for _, token := range tokens {
		if token.Typ == TokenEOF {
			break
		}

		got = append(got, tok{token.Typ, token.Value})
	}

	return got
}

func TestLexerC(t *testing.T) {
	cases := []struct {
		data   string
		expect []tok
	}{
		{
			"int main() {}",
			[]tok{
				{TokenKeyword, "int"},
				{TokenIdentifier, "main"},
				{TokenOperator, "("},
				{TokenOperator, ")"},
				{TokenOperator, "{"},
				{TokenOperator, "}"},
			},
		},
		{
			"// this is a comment\n",
			[]tok{
				{TokenLineComment, " this is a comment"},
			},
		},
		{
			"/* block\n comment */",
			[]tok{
				{TokenBlockComment, " block\n comment "},
			},
		},
		{
			"#include <stdio.h>\nint x;",
			[]tok{
				{TokenDirective, "#include <stdio.h>"},
				{TokenKeyword, "int"},
				{TokenIdentifier, "x"},
				{TokenOperator, ";"},
			},
		},
		{
			`printf("%d\n", x);`,
			[]tok{
				{TokenIdentifier, "printf"},
				{TokenOperator, "("},
				{TokenString, `"%d\n"`},
				{TokenOperator, ","},
				{TokenIdentifier, "x"},
				{TokenOperator, ")"},
				{TokenOperator, ";"},
			},
		},
		{
			"x <<= 2.5f >= 0x1F && c == '\\''",
			[]tok{
				{TokenIdentifier, "x"},
				{TokenOperator, "<<="},
				{TokenNumber, "2.5f"},
				{TokenOperator, ">="},
				{TokenNumber, "0x1F"},
				{TokenOperator, "&&"},
				{TokenIdentifier, "c"},
				{TokenOperator, "=="},
				{TokenChar, `'\''`},
			},
		},
		{
			"i++; --j; 1e10",
			[]tok{
				{TokenIdentifier, "i"},
				{TokenOperator, "++"},
				{TokenOperator, ";"},
				{TokenOperator, "--"},
				{TokenIdentifier, "j"},
				{TokenOperator, ";"},
				{TokenNumber, "1e10"},
			},
		},
	}

	for _, c := range cases {
		assert.Equal(t, c.expect, scan(t, c.data, C), c.data)
	}
}

func TestLexerJava(t *testing.T) {
	got := scan(t, `System.out.println("a" + x >>> 2); long n = 10L;`, Java)

	assert.Equal(t, []tok{
		{TokenIdentifier, "System"},
		{TokenOperator, "."},
		{TokenIdentifier, "out"},
		{TokenOperator, "."},
		{TokenIdentifier, "println"},
		{TokenOperator, "("},
		{TokenString, `"a"`},
		{TokenOperator, "+"},
		{TokenIdentifier, "x"},
		{TokenOperator, ">>>"},
		{TokenNumber, "2"},
		{TokenOperator, ")"},
		{TokenOperator, ";"},
		{TokenKeyword, "long"},
		{TokenIdentifier, "n"},
		{TokenOperator, "="},
		{TokenNumber, "10L"},
		{TokenOperator, ";"},
	}, got)
}

func TestLexerPythonIndentation(t *testing.T) {
	src := "if x:\n    y = 1\n\n    # note\n    z = 2\nprint(y)\n"

	assert.Equal(t, []tok{
		{TokenKeyword, "if"},
		{TokenIdentifier, "x"},
		{TokenOperator, ":"},
		{TokenNewline, ""},
		{TokenIndent, ""},
		{TokenIdentifier, "y"},
		{TokenOperator, "="},
		{TokenNumber, "1"},
		{TokenNewline, ""},
		{TokenLineComment, " note"},
		{TokenIdentifier, "z"},
		{TokenOperator, "="},
		{TokenNumber, "2"},
		{TokenNewline, ""},
		{TokenDedent, ""},
		{TokenIdentifier, "print"},
		{TokenOperator, "("},
		{TokenIdentifier, "y"},
		{TokenOperator, ")"},
		{TokenNewline, ""},
	}, scan(t, src, Python))
}

func TestLexerPythonBrackets(t *testing.T) {
	src := "x = [1,\n     2]\ny = f\"{x}\" ** 2 // 3"

	assert.Equal(t, []tok{
		{TokenIdentifier, "x"},
		{TokenOperator, "="},
		{TokenOperator, "["},
		{TokenNumber, "1"},
		{TokenOperator, ","},
		{TokenNumber, "2"},
		{TokenOperator, "]"},
		{TokenNewline, ""},
		{TokenIdentifier, "y"},
		{TokenOperator, "="},
		{TokenString, `f"{x}"`},
		{TokenOperator, "**"},
		{TokenNumber, "2"},
		{TokenOperator, "//"},
		{TokenNumber, "3"},
		{TokenNewline, ""},
	}, scan(t, src, Python))
}

func TestLexerPythonDedentAtEOF(t *testing.T) {
	got := scan(t, "while x:\n    while y:\n        pass", Python)

	assert.Equal(t, tok{TokenDedent, ""}, got[len(got)-1])
	assert.Equal(t, tok{TokenDedent, ""}, got[len(got)-2])
	assert.Equal(t, tok{TokenNewline, ""}, got[len(got)-3])
}

func TestLexerErrors(t *testing.T) {
	cases := []struct {
		data    string
		dialect *Dialect
	}{
		{`"unclosed`, C},
		{"'x", Java},
		{"/* open", C},
		{"x = `y`", C},
		{"if x:\n        y\n    z\n", Python},
		{`"""never closed`, Python},
	}

	for _, c := range cases {
		_, err := NewLexer(c.data, c.dialect).Run()

		var lexErr *Error
		assert.ErrorAs(t, err, &lexErr, c.data)
	}
}

func TestLexerPositions(t *testing.T) {
	tokens, err := NewLexer("int x;\n  x = 1;", C).Run()
	require.NoError(t, err)

	assert.Equal(t, Position{Offset: 0, Line: 1, Column: 1}, tokens[0].Pos)
	assert.Equal(t, Position{Offset: 9, Line: 2, Column: 3}, tokens[3].Pos)
	assert.Equal(t, 10, tokens[3].End)
}

func TestLexerRandomTokens(t *testing.T) {
	cases := []struct {
		vocabulary string
		dialect    *Dialect
	}{
		{test.CTokens, C},
		{test.JavaTokens, Java},
		{test.PythonTokens, Python},
	}

	for _, c := range cases {
		for i := 0; i < 20; i++ {
			src := test.GetRandomTokens(c.vocabulary, 200)

			tokens, err := NewLexer(src, c.dialect).Run()
			if assert.NoError(t, err, src) {
				assert.Equal(t, TokenEOF, tokens[len(tokens)-1].Typ)
			}
		}
	}
}

package visitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/core"
	"go.crosslang.dev/pkg/parser"
)

// lower parses src as source and lowers it with a fresh context.
func lower(t *testing.T, source core.Language, src string) (*ast.Program, *core.Context) {
	t.Helper()

	parsers := map[core.Language]core.Parser{
		core.C:      parser.NewC(),
		core.Java:   parser.NewJava(),
		core.Python: parser.NewPython(),
	}
	visitors := map[core.Language]core.Visitor{
		core.C:      NewC(),
		core.Java:   NewJava(),
		core.Python: NewPython(),
	}

	root, err := parsers[source].Parse(src)
	require.NoError(t, err)

	entry, err := visitors[source].EntryPoint(root)
	require.NoError(t, err)

	ctx := core.NewContext(source, core.Python, src)
	prog, err := visitors[source].Visit(root, entry, ctx)
	require.NoError(t, err)

	return prog, ctx
}

func id(name string) *ast.Identifier {
	return &ast.Identifier{Name: name}
}

func num(value string) *ast.Literal {
	return &ast.Literal{Value: value, Type: ast.LiteralInt}
}

func text(value string) *ast.Literal {
	return &ast.Literal{Value: value, Type: ast.LiteralString}
}

var (
	intType    = ast.Named(ast.TypeInt)
	stringType = ast.Named(ast.TypeString)
)

func TestNumber(t *testing.T) {
	cases := []struct {
		data   string
		value  string
		suffix string
		typ    ast.LiteralType
	}{
		{"42", "42", "", ast.LiteralInt},
		{"1_000", "1000", "", ast.LiteralInt},
		{"0x1FL", "0x1F", "L", ast.LiteralInt},
		{"0xFF", "0xFF", "", ast.LiteralInt},
		{"0b101", "0b101", "", ast.LiteralInt},
		{"017", "0o17", "", ast.LiteralInt},
		{"00", "0", "", ast.LiteralInt},
		{"10L", "10", "L", ast.LiteralInt},
		{"1.5f", "1.5", "f", ast.LiteralFloat},
		{"1e3", "1e3", "", ast.LiteralFloat},
		{"2.", "2.", "", ast.LiteralFloat},
	}

	for _, c := range cases {
		lit := number(c.data)
		assert.Equal(t, c.value, lit.Value, c.data)
		assert.Equal(t, c.suffix, lit.Suffix, c.data)
		assert.Equal(t, c.typ, lit.Type, c.data)
	}
}

func TestUnquote(t *testing.T) {
	cases := []struct {
		data   string
		text   string
		prefix string
	}{
		{`"a\tb"`, "a\tb", ""},
		{`'\x41\101'`, "AA", ""},
		{`"café"`, "café", ""},
		{`"\q"`, `\q`, ""},
		{`f"x{y}"`, "x{y}", "f"},
		{`r"\n"`, `\n`, "r"},
		{`'''doc'''`, "doc", ""},
		{`""`, "", ""},
	}

	for _, c := range cases {
		text, prefix := unquote(c.data)
		assert.Equal(t, c.text, text, c.data)
		assert.Equal(t, c.prefix, prefix, c.data)
	}
}

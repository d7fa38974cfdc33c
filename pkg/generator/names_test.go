package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go.crosslang.dev/pkg/ast"
)

func TestRename(t *testing.T) {
	reserved := Reserved("class", "class_", "def")

	assert.Equal(t, "class__", Rename("class", reserved))
	assert.Equal(t, "def_", Rename("def", reserved))
	assert.Equal(t, "total", Rename("total", reserved))
}

func TestNumber(t *testing.T) {
	cases := []struct {
		lit    *ast.Literal
		style  Style
		expect string
	}{
		{&ast.Literal{Value: "10", Type: ast.LiteralInt, Suffix: "L"}, StylePython, "10"},
		{&ast.Literal{Value: "10", Type: ast.LiteralInt, Suffix: "L"}, StyleJava, "10L"},
		{&ast.Literal{Value: "10", Type: ast.LiteralInt, Suffix: "ul"}, StyleC, "10ul"},
		{&ast.Literal{Value: "0o17", Type: ast.LiteralInt}, StylePython, "0o17"},
		{&ast.Literal{Value: "0o17", Type: ast.LiteralInt}, StyleJava, "017"},
		{&ast.Literal{Value: "0b101", Type: ast.LiteralInt}, StyleJava, "0b101"},
		{&ast.Literal{Value: "0b101", Type: ast.LiteralInt}, StyleC, "5"},
		{&ast.Literal{Value: "1", Type: ast.LiteralFloat, Suffix: "f"}, StyleJava, "1.0f"},
		{&ast.Literal{Value: "2.5", Type: ast.LiteralFloat, Suffix: "d"}, StyleC, "2.5"},
		{&ast.Literal{Value: "1e3", Type: ast.LiteralFloat}, StylePython, "1e3"},
	}

	for _, c := range cases {
		assert.Equal(t, c.expect, Number(c.lit, c.style), c.lit.Value)
	}
}

func TestFloatText(t *testing.T) {
	cases := map[string]string{
		"3":     "3.0",
		"3.":    "3.",
		"1E5":   "1E5",
		"0x1p3": "0x1p3",
		"inf":   "inf",
	}

	for in, expect := range cases {
		assert.Equal(t, expect, FloatText(in))
	}
}

package generator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/core"
)

// testContext renders names, literals, sums and products with Python
// precedence, and placeholders as comments.
func testContext() *core.Context {
	ctx := core.NewContext(core.C, core.Python, "")

	rank := func(e ast.Expr) int {
		if bin, ok := e.(*ast.BinaryExpression); ok {
			if bin.Operator == ast.BinaryMultiplication {
				return 12
			}
			return 11
		}
		return Atom
	}

	ctx.Generators = core.NewGeneratorRegistry(core.Python).
		Func(ast.KindIdentifier, func(n ast.Node, _ *core.Context) (string, error) {
			return n.(*ast.Identifier).Name, nil
		}).
		Func(ast.KindLiteral, func(n ast.Node, _ *core.Context) (string, error) {
			return n.(*ast.Literal).Value, nil
		}).
		Func(ast.KindBinaryExpression, func(n ast.Node, ctx *core.Context) (string, error) {
			bin := n.(*ast.BinaryExpression)
			prec := rank(bin)

			left, err := Operand(bin.Left, prec, false, rank, ctx)
			if err != nil {
				return "", err
			}
			right, err := Operand(bin.Right, prec, true, rank, ctx)
			if err != nil {
				return "", err
			}

			return left + " " + string(bin.Operator) + " " + right, nil
		}).
		Func(ast.KindPlaceholder, func(n ast.Node, _ *core.Context) (string, error) {
			return Prefix(Note(n.(*ast.Placeholder)), "#"), nil
		})

	return ctx
}

func bin(op ast.BinaryOp, left, right ast.Expr) *ast.BinaryExpression {
	return &ast.BinaryExpression{Operator: op, Left: left, Right: right}
}

func TestOperand(t *testing.T) {
	ctx := testContext()

	cases := []struct {
		expr   ast.Expr
		expect string
	}{
		{bin(ast.BinaryAddition, id("a"), id("b")), "a + b"},
		{bin(ast.BinaryMultiplication, bin(ast.BinaryAddition, id("a"), id("b")), id("c")), "(a + b) * c"},
		{bin(ast.BinaryAddition, bin(ast.BinaryMultiplication, id("a"), id("b")), id("c")), "a * b + c"},
		{bin(ast.BinarySubtraction, id("a"), bin(ast.BinarySubtraction, id("b"), id("c"))), "a - (b - c)"},
		{bin(ast.BinarySubtraction, bin(ast.BinarySubtraction, id("a"), id("b")), id("c")), "a - b - c"},
	}

	for _, c := range cases {
		out, err := ctx.Generate(c.expr)
		require.NoError(t, err)
		assert.Equal(t, c.expect, out)
	}
}

func TestRenderDegrades(t *testing.T) {
	ctx := testContext()

	stmt := func(n ast.Node, ctx *core.Context) (string, error) {
		switch n := n.(type) {
		case *ast.BreakStatement:
			return "", nil
		case *ast.ContinueStatement:
			return "", errors.New("plain failure")
		default:
			return ctx.Generate(n)
		}
	}

	lines := Render([]ast.Node{id("x"), &ast.BreakStatement{}, &ast.ReturnStatement{}, &ast.ContinueStatement{}}, ctx, stmt)

	assert.Equal(t, []string{"x", "# unsupported ReturnStatement in Python", "# plain failure"}, lines)

	warnings := ctx.Warnings()
	require.Len(t, warnings, 2)
	assert.Equal(t, "Unsupported", warnings[0].Kind)
	assert.Equal(t, "Generation", warnings[1].Kind)
}

func TestBlock(t *testing.T) {
	ctx := testContext()
	stmt := func(n ast.Node, ctx *core.Context) (string, error) { return ctx.Generate(n) }

	assert.Equal(t, "if x {\n    a\n    b\n}", Braces("if x", []ast.Node{id("a"), id("b")}, ctx, stmt))
	assert.Equal(t, "if x {\n}", Braces("if x", nil, ctx, stmt))
}

func TestIndent(t *testing.T) {
	assert.Equal(t, "  a\n\n  b", Indent("a\n\nb", "  "))
	assert.Equal(t, "", Indent("", "  "))
}

func TestPrefix(t *testing.T) {
	cases := []struct {
		text   string
		marker string
		expect string
	}{
		{"one", "#", "# one"},
		{"one\n\ntwo\n", "//", "// one\n//\n// two"},
		{"", ";", ";"},
	}

	for _, c := range cases {
		assert.Equal(t, c.expect, Prefix(c.text, c.marker))
	}
}

func TestSlashComment(t *testing.T) {
	cases := []struct {
		comment *ast.Comment
		expect  string
	}{
		{&ast.Comment{Text: "line"}, "// line"},
		{&ast.Comment{Text: "a\nb"}, "// a\n// b"},
		{&ast.Comment{Text: "short", IsBlock: true}, "/* short */"},
		{&ast.Comment{Text: "first\nsecond\n", IsBlock: true}, "/*\n * first\n * second\n */"},
	}

	for _, c := range cases {
		assert.Equal(t, c.expect, SlashComment(c.comment))
	}
}

func TestNote(t *testing.T) {
	assert.Equal(t, "unsupported goto", Note(&ast.Placeholder{Reason: "unsupported goto"}))
	assert.Equal(t, "unsupported goto\ngoto end;", Note(&ast.Placeholder{Reason: "unsupported goto", Text: "goto end;"}))
}

func TestComments(t *testing.T) {
	assert.True(t, Comments([]string{"# a", "  # b\n\n# c"}, "#"))
	assert.True(t, Comments(nil, "#"))
	assert.False(t, Comments([]string{"# a", "x = 1"}, "#"))
}

func TestAssignedAndDeclared(t *testing.T) {
	body := []ast.Node{
		&ast.VariableDeclaration{Name: "a", Type: ast.Named(ast.TypeInt)},
		&ast.AssignmentExpression{Left: id("b"), Operator: ast.Assign, Right: IntLiteral(1)},
		&ast.LoopStatement{Loop: ast.LoopWhile, Condition: id("c"), Body: []ast.Node{incr("d")}},
		&ast.LoopStatement{LoopVar: "e", Iterable: id("xs")},
	}

	assert.Equal(t, map[string]bool{"b": true, "d": true}, Assigned(body))
	assert.Equal(t, map[string]bool{"a": true, "e": true}, Declared(body))
}

func TestHasContinue(t *testing.T) {
	inner := &ast.LoopStatement{Loop: ast.LoopWhile, Condition: id("c"), Body: []ast.Node{&ast.ContinueStatement{}}}

	assert.True(t, HasContinue([]ast.Node{id("x"), &ast.ContinueStatement{}}))
	assert.False(t, HasContinue([]ast.Node{inner}))
	assert.False(t, HasContinue(nil))
}

func TestConcat(t *testing.T) {
	ctx := testContext()
	str := &ast.Literal{Value: "a", Type: ast.LiteralString}

	sum := bin(ast.BinaryAddition, IntLiteral(1), IntLiteral(2))
	parts, ok := Concat(bin(ast.BinaryAddition, bin(ast.BinaryAddition, sum, str), id("x")), ctx)
	require.True(t, ok)
	assert.Equal(t, []ast.Expr{sum, str, id("x")}, parts)

	_, ok = Concat(sum, ctx)
	assert.False(t, ok)
}

func TestCharLiteral(t *testing.T) {
	one := &ast.Literal{Value: "é", Type: ast.LiteralString}
	two := &ast.Literal{Value: "ab", Type: ast.LiteralString}

	assert.Equal(t, &ast.Literal{Value: "é", Type: ast.LiteralChar}, CharLiteral(one))
	assert.Same(t, two, CharLiteral(two))
}

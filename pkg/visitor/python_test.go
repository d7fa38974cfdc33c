package visitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/core"
	"go.crosslang.dev/pkg/parser"
)

func TestVisitPython(t *testing.T) {
	src := `def area(w, h):
    return w * h

total = area(2, 3)
if total > 5:
    label = "big"
else:
    label = "small"
print(f"{label}: {total:5d}", end="")
`
	prog, ctx := lower(t, core.Python, src)

	assert.Equal(t, []*ast.FunctionDeclaration{{
		Name:       "area",
		ReturnType: intType,
		Parameters: []ast.Parameter{{Name: "w", Type: intType}, {Name: "h", Type: intType}},
		Body: []ast.Node{&ast.ReturnStatement{
			Value: &ast.BinaryExpression{Operator: ast.BinaryMultiplication, Left: id("w"), Right: id("h")},
		}},
	}}, prog.Functions)

	assert.Empty(t, prog.Globals)
	assert.Equal(t, []ast.Node{
		&ast.VariableDeclaration{
			Name:  "total",
			Type:  intType,
			Value: &ast.CallExpression{FunctionName: "area", Args: []ast.Expr{num("2"), num("3")}},
		},
		&ast.VariableDeclaration{Name: "label", Type: stringType},
		&ast.ConditionalStatement{
			Condition: &ast.ComparisonExpression{Operator: ast.CompareGreater, Left: id("total"), Right: num("5")},
			Then:      []ast.Node{&ast.AssignmentExpression{Left: id("label"), Operator: ast.Assign, Right: text("big")}},
			Else:      []ast.Node{&ast.AssignmentExpression{Left: id("label"), Operator: ast.Assign, Right: text("small")}},
		},
		&ast.PrintStatement{
			Args:      []ast.Expr{text("%s: %5d"), id("label"), id("total")},
			Formatted: true,
			Sep:       " ",
		},
	}, prog.Main)

	assert.Empty(t, ctx.Warnings())
}

func TestVisitPythonMainGuard(t *testing.T) {
	src := `LIMIT = 3

def show(n):
    print(n * LIMIT)

def main():
    for i in range(LIMIT):
        show(i)

if __name__ == "__main__":
    main()
`
	root, err := parser.NewPython().Parse(src)
	require.NoError(t, err)

	entry, err := NewPython().EntryPoint(root)
	require.NoError(t, err)
	assert.Equal(t, "main", entry.Field("name").Text())

	prog, _ := lower(t, core.Python, src)

	assert.Equal(t, []ast.Node{&ast.VariableDeclaration{Name: "LIMIT", Type: intType, Value: num("3")}}, prog.Globals)

	require.Len(t, prog.Functions, 1)
	assert.Equal(t, []ast.Parameter{{Name: "n", Type: intType}}, prog.Functions[0].Parameters)
	assert.Equal(t, ast.Named(ast.TypeVoid), prog.Functions[0].ReturnType)

	assert.Equal(t, []ast.Node{&ast.LoopStatement{
		Loop:      ast.LoopFor,
		Init:      &ast.VariableDeclaration{Name: "i", Type: intType, Value: num("0")},
		Condition: &ast.ComparisonExpression{Operator: ast.CompareLess, Left: id("i"), Right: id("LIMIT")},
		Update:    &ast.UnaryExpression{Operator: ast.UnaryIncrement, Operand: id("i"), Postfix: true},
		Body:      []ast.Node{&ast.CallExpression{FunctionName: "show", Args: []ast.Expr{id("i")}}},
	}}, prog.Main)
}

func TestVisitPythonStatements(t *testing.T) {
	cases := []struct {
		data   string
		expect []ast.Node
	}{
		{
			"a, b = 1, 2",
			[]ast.Node{
				&ast.VariableDeclaration{Name: "a", Type: intType, Value: num("1")},
				&ast.VariableDeclaration{Name: "b", Type: intType, Value: num("2")},
			},
		},
		{
			"a = b = 0",
			[]ast.Node{
				&ast.VariableDeclaration{Name: "a", Type: intType, Value: num("0")},
				&ast.VariableDeclaration{Name: "b", Type: intType, Value: id("a")},
			},
		},
		{
			"x = 1\ny = 2\nx, y = y, x",
			[]ast.Node{
				&ast.VariableDeclaration{Name: "x", Type: intType, Value: num("1")},
				&ast.VariableDeclaration{Name: "y", Type: intType, Value: num("2")},
				&ast.VariableDeclaration{Name: "tmp", Type: intType, Value: id("y")},
				&ast.AssignmentExpression{Left: id("y"), Operator: ast.Assign, Right: id("x")},
				&ast.AssignmentExpression{Left: id("x"), Operator: ast.Assign, Right: id("tmp")},
			},
		},
		{
			"while True:\n    n = 1\n    if n > 0:\n        break",
			[]ast.Node{
				&ast.VariableDeclaration{Name: "n", Type: intType},
				&ast.LoopStatement{
					Loop:      ast.LoopDoWhile,
					Condition: &ast.ComparisonExpression{Operator: ast.CompareLessEqual, Left: id("n"), Right: num("0")},
					Body:      []ast.Node{&ast.AssignmentExpression{Left: id("n"), Operator: ast.Assign, Right: num("1")}},
				},
			},
		},
		{
			"xs = [0] * 4",
			[]ast.Node{&ast.ArrayDeclaration{Name: "xs", ElementType: intType, Sizes: []ast.Expr{num("4")}}},
		},
		{
			"xs = [1, 2]",
			[]ast.Node{&ast.ArrayDeclaration{Name: "xs", ElementType: intType, Values: []ast.Expr{num("1"), num("2")}}},
		},
		{
			"y = 7 // 2",
			[]ast.Node{&ast.VariableDeclaration{
				Name:  "y",
				Type:  intType,
				Value: &ast.BinaryExpression{Operator: ast.BinaryFloorDivision, Left: num("7"), Right: num("2")},
			}},
		},
		{
			"print(1 < 2 < 3)",
			[]ast.Node{&ast.PrintStatement{
				Args: []ast.Expr{&ast.LogicalExpression{
					Operator: ast.LogicalAnd,
					Left:     &ast.ComparisonExpression{Operator: ast.CompareLess, Left: num("1"), Right: num("2")},
					Right:    &ast.ComparisonExpression{Operator: ast.CompareLess, Left: num("2"), Right: num("3")},
				}},
				Newline: true,
				Sep:     " ",
			}},
		},
		{
			"print()",
			[]ast.Node{&ast.PrintStatement{Args: []ast.Expr{}, Newline: true, Sep: " "}},
		},
		{
			"import sys\nsys.exit(2)",
			[]ast.Node{&ast.ReturnStatement{Value: num("2")}},
		},
	}

	for _, c := range cases {
		prog, ctx := lower(t, core.Python, c.data+"\n")
		assert.Equal(t, c.expect, prog.Main, c.data)
		assert.Empty(t, ctx.Warnings(), c.data)
	}
}

func TestVisitPythonCalls(t *testing.T) {
	src := `def scale(x, factor=2):
    return x * factor

print(scale(3))
print(scale(factor=4, x=1))
`
	prog, _ := lower(t, core.Python, src)

	call := func(args ...ast.Expr) ast.Node {
		return &ast.PrintStatement{
			Args:    []ast.Expr{&ast.CallExpression{FunctionName: "scale", Args: args}},
			Newline: true,
			Sep:     " ",
		}
	}

	assert.Equal(t, []ast.Node{call(num("3"), num("2")), call(num("1"), num("4"))}, prog.Main)
	assert.Equal(t, []ast.Parameter{{Name: "x", Type: intType}, {Name: "factor", Type: intType}}, prog.Functions[0].Parameters)
}

func TestVisitPythonUnsupported(t *testing.T) {
	src := `class A:
    pass

x = [i for i in range(3)]
`
	prog, ctx := lower(t, core.Python, src)
	require.Len(t, prog.Main, 2)

	reasons := make([]string, 0, 2)
	for _, n := range prog.Main {
		placeholder, ok := n.(*ast.Placeholder)
		require.True(t, ok)
		reasons = append(reasons, placeholder.Reason)
	}

	assert.Equal(t, []string{"unsupported class declaration", "unsupported list comprehension"}, reasons)
	assert.Len(t, ctx.Warnings(), 2)
}

func TestVisitPythonFString(t *testing.T) {
	cases := []struct {
		data     string
		format   string
		warnings int
	}{
		{`f"{x:.2f}"`, "%.2f", 0},
		{`f"{x:>8.3}"`, "%8.3g", 0},
		{`f"{n:05d}%"`, "%05d%%", 0},
		{`f"{s:<6}|"`, "%-6s|", 0},
		{`f"{s:^6}"`, "%6s", 1},
		{`f"{n!r}"`, "%s", 1},
		{`f"{{n}}"`, "{n}", 0},
	}

	for _, c := range cases {
		src := "x = 1.5\nn = 3\ns = \"ab\"\nprint(" + c.data + ")\n"
		prog, ctx := lower(t, core.Python, src)

		require.Len(t, prog.Main, 4, c.data)
		p, ok := prog.Main[3].(*ast.PrintStatement)
		require.True(t, ok, c.data)
		assert.True(t, p.Formatted, c.data)
		assert.Equal(t, text(c.format), p.Args[0], c.data)
		assert.Len(t, ctx.Warnings(), c.warnings, c.data)
	}
}

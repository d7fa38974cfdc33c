package visitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/core"
	"go.crosslang.dev/pkg/parser"
)

func TestVisitC(t *testing.T) {
	src := `#include <stdio.h>
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
	prog, ctx := lower(t, core.C, src)

	assert.Equal(t, []*ast.IncludeStatement{{Header: "stdio.h"}}, prog.Includes)

	require.Len(t, prog.Globals, 1)
	n, ok := prog.Globals[0].(*ast.VariableDeclaration)
	require.True(t, ok)
	assert.Equal(t, "N", n.Name)
	assert.True(t, n.Const)
	assert.Equal(t, num("10"), n.Value)

	assert.Equal(t, []*ast.FunctionDeclaration{{
		Name:       "square",
		ReturnType: intType,
		Parameters: []ast.Parameter{{Name: "x", Type: intType}},
		Body: []ast.Node{&ast.ReturnStatement{
			Value: &ast.BinaryExpression{Operator: ast.BinaryMultiplication, Left: id("x"), Right: id("x")},
		}},
	}}, prog.Functions)

	assert.Equal(t, []ast.Node{
		&ast.VariableDeclaration{Name: "a", Type: intType, Value: num("5")},
		&ast.PrintStatement{
			Args:      []ast.Expr{text("%d\n"), &ast.CallExpression{FunctionName: "square", Args: []ast.Expr{id("a")}}},
			Formatted: true,
		},
	}, prog.Main)

	assert.Empty(t, ctx.Warnings())
}

func TestVisitCArraysAndLoops(t *testing.T) {
	src := `int main() {
    int xs[] = {1, 2, 3};
    int n = sizeof(xs) / sizeof(xs[0]);
    for (int i = 0; i < n; i++) {
        xs[i] *= 2;
    }
    char name[] = "bob";
    do {
        n--;
    } while (n > 0);
    return 0;
}
`
	prog, _ := lower(t, core.C, src)
	require.Len(t, prog.Main, 5)

	assert.Equal(t, &ast.ArrayDeclaration{
		Name:        "xs",
		ElementType: intType,
		Values:      []ast.Expr{num("1"), num("2"), num("3")},
	}, prog.Main[0])

	assert.Equal(t, &ast.VariableDeclaration{
		Name:  "n",
		Type:  intType,
		Value: builtin("len", id("xs")),
	}, prog.Main[1])

	loop, ok := prog.Main[2].(*ast.LoopStatement)
	require.True(t, ok)
	assert.Equal(t, ast.LoopFor, loop.Loop)
	assert.Equal(t, &ast.VariableDeclaration{Name: "i", Type: intType, Value: num("0")}, loop.Init)
	assert.Equal(t, &ast.ComparisonExpression{Operator: ast.CompareLess, Left: id("i"), Right: id("n")}, loop.Condition)
	assert.Equal(t, &ast.UnaryExpression{Operator: ast.UnaryIncrement, Operand: id("i"), Postfix: true}, loop.Update)
	assert.Equal(t, []ast.Node{&ast.AssignmentExpression{
		Left:     &ast.Subscript{Array: id("xs"), Index: id("i")},
		Operator: ast.AssignMultiply,
		Right:    num("2"),
	}}, loop.Body)

	name, ok := prog.Main[3].(*ast.VariableDeclaration)
	require.True(t, ok)
	assert.True(t, name.Type.IsCharBuffer())
	assert.Equal(t, text("bob"), name.Value)

	do, ok := prog.Main[4].(*ast.LoopStatement)
	require.True(t, ok)
	assert.Equal(t, ast.LoopDoWhile, do.Loop)
	assert.Len(t, do.Body, 1)
}

func TestVisitCUnsupported(t *testing.T) {
	src := `int main() {
    int x = 1;
    int *p = &x;
    printf("%d\n", x);
    return 0;
}
`
	prog, ctx := lower(t, core.C, src)
	require.Len(t, prog.Main, 3)

	placeholder, ok := prog.Main[1].(*ast.Placeholder)
	require.True(t, ok)
	assert.Equal(t, "unsupported pointer operation", placeholder.Reason)
	assert.Contains(t, placeholder.Text, "&x")

	require.Len(t, ctx.Warnings(), 1)
	assert.Equal(t, "Unsupported", ctx.Warnings()[0].Kind)
	assert.Equal(t, 3, ctx.Warnings()[0].Pos.Line)
}

func TestVisitCExit(t *testing.T) {
	prog, _ := lower(t, core.C, "int main() {\n    exit(3);\n}\n")
	assert.Equal(t, []ast.Node{&ast.ReturnStatement{Value: num("3")}}, prog.Main)

	prog, ctx := lower(t, core.C, "void stop() {\n    exit(1);\n}\nint main() {\n    stop();\n    return 0;\n}\n")
	require.Len(t, prog.Functions, 1)
	assert.IsType(t, &ast.Placeholder{}, prog.Functions[0].Body[0])
	assert.Len(t, ctx.Warnings(), 1)
}

func TestCEntryPoint(t *testing.T) {
	root, err := parser.NewC().Parse("int helper() { return 1; }\n")
	require.NoError(t, err)

	_, err = NewC().EntryPoint(root)

	var entry *core.EntryPointError
	require.ErrorAs(t, err, &entry)
}

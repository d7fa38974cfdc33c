package visitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/core"
)

func loopAt(t *testing.T, nodes []ast.Node, i int) *ast.LoopStatement {
	t.Helper()

	require.Greater(t, len(nodes), i)
	loop, ok := nodes[i].(*ast.LoopStatement)
	require.True(t, ok, "node %d is %T", i, nodes[i])

	return loop
}

func TestLoopScopesRepeatedCounter(t *testing.T) {
	prog, _ := lower(t, core.Python, "for i in range(5):\n    print(i)\nfor i in range(5, 0, -1):\n    print(i)\n")
	require.Len(t, prog.Main, 2)

	first, second := loopAt(t, prog.Main, 0), loopAt(t, prog.Main, 1)
	assert.Equal(t, &ast.VariableDeclaration{Name: "i", Type: intType, Value: num("0")}, first.Init)
	assert.Equal(t, &ast.VariableDeclaration{Name: "i", Type: intType, Value: num("5")}, second.Init)
}

func TestLoopScopesHoisting(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"read after the loop", "for i in range(3):\n    pass\nprint(i)\n"},
		{"nested rebinding", "for i in range(2):\n    for i in range(3):\n        print(i)\n"},
		{"assigned after the loop", "for i in range(3):\n    pass\ni = 10\n"},
		{"first loop in a branch", "if True:\n    for i in range(3):\n        pass\nprint(i)\n"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			prog, _ := lower(t, core.Python, c.data)
			require.NotEmpty(t, prog.Main)
			assert.Equal(t, &ast.VariableDeclaration{Name: "i", Type: intType}, prog.Main[0])

			decls := 0
			ast.InspectAll(prog.Main, func(n ast.Node) bool {
				if d, ok := n.(*ast.VariableDeclaration); ok && d.Name == "i" {
					decls++
				}
				return true
			})
			assert.Equal(t, 1, decls)
		})
	}
}

func TestLoopScopesReadAfterLoop(t *testing.T) {
	prog, _ := lower(t, core.Python, "for i in range(3):\n    pass\nprint(i)\n")
	require.Len(t, prog.Main, 3)

	assert.Equal(t, &ast.LoopStatement{
		Loop:      ast.LoopFor,
		Init:      &ast.VariableDeclaration{Name: "i_", Type: intType, Value: num("0")},
		Condition: &ast.ComparisonExpression{Operator: ast.CompareLess, Left: id("i_"), Right: num("3")},
		Update:    &ast.UnaryExpression{Operator: ast.UnaryIncrement, Operand: id("i_"), Postfix: true},
		Body:      []ast.Node{&ast.AssignmentExpression{Left: id("i"), Operator: ast.Assign, Right: id("i_")}},
	}, loopAt(t, prog.Main, 1))
}

func TestLoopScopesNestedRebinding(t *testing.T) {
	prog, _ := lower(t, core.Python, "for i in range(2):\n    for i in range(3):\n        print(i)\n")
	require.Len(t, prog.Main, 2)

	outer := loopAt(t, prog.Main, 1)
	assert.Equal(t, &ast.VariableDeclaration{Name: "i_", Type: intType, Value: num("0")}, outer.Init)
	require.Len(t, outer.Body, 2)
	assert.Equal(t, &ast.AssignmentExpression{Left: id("i"), Operator: ast.Assign, Right: id("i_")}, outer.Body[0])

	inner := loopAt(t, outer.Body, 1)
	assert.Equal(t, &ast.VariableDeclaration{Name: "i__", Type: intType, Value: num("0")}, inner.Init)
	assert.Equal(t, &ast.ComparisonExpression{Operator: ast.CompareLess, Left: id("i__"), Right: num("3")}, inner.Condition)
	assert.Equal(t, []ast.Node{
		&ast.AssignmentExpression{Left: id("i"), Operator: ast.Assign, Right: id("i__")},
		&ast.PrintStatement{Args: []ast.Expr{id("i")}, Newline: true, Sep: " "},
	}, inner.Body)
}

func TestLoopScopesIteration(t *testing.T) {
	prog, _ := lower(t, core.Python, "xs = [1, 2]\nfor x in xs:\n    pass\nprint(x)\n")
	require.Len(t, prog.Main, 4)

	assert.Equal(t, &ast.VariableDeclaration{Name: "x", Type: intType}, prog.Main[1])

	loop := loopAt(t, prog.Main, 2)
	assert.Equal(t, "x_", loop.LoopVar)
	assert.Equal(t, []ast.Node{&ast.AssignmentExpression{Left: id("x"), Operator: ast.Assign, Right: id("x_")}}, loop.Body)
}

func TestLoopScopesParameter(t *testing.T) {
	prog, _ := lower(t, core.Python, "def f(i, i_):\n    for i in range(3):\n        print(i)\n\nf(1, 2)\n")
	require.Len(t, prog.Functions, 1)

	body := prog.Functions[0].Body
	require.Len(t, body, 1)

	loop := loopAt(t, body, 0)
	assert.Equal(t, &ast.VariableDeclaration{Name: "i__", Type: intType, Value: num("0")}, loop.Init)
	assert.Equal(t, &ast.AssignmentExpression{Left: id("i"), Operator: ast.Assign, Right: id("i__")}, loop.Body[0])
}

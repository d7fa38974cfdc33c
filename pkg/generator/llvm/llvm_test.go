package llvm

import (
	"strings"
	"testing"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/core"
)

func id(name string) *ast.Identifier {
	return &ast.Identifier{Name: name}
}

func num(v string) *ast.Literal {
	return &ast.Literal{Value: v, Type: ast.LiteralInt}
}

func intVar(name string, value ast.Expr) *ast.VariableDeclaration {
	return &ast.VariableDeclaration{Name: name, Type: ast.Named(ast.TypeInt), Value: value}
}

func printLine(args ...ast.Expr) *ast.PrintStatement {
	return &ast.PrintStatement{Args: args, Sep: " ", Newline: true}
}

func assemble(t *testing.T, source core.Language, p *ast.Program) (string, *core.Context) {
	ctx := core.NewContext(source, core.LLVM, "")
	out, err := New().Assemble(p, ctx)
	require.NoError(t, err)

	return out, ctx
}

func TestValueLookup(t *testing.T) {
	vals := newValueLookup()

	v1 := &variable{ptr: constant.NewInt(types.I32, 1), typ: types.I32}
	v2 := &variable{ptr: constant.NewInt(types.I32, 2), typ: types.I32}

	vals.Set("id1", v1)
	vals.Set("id2", v2)

	got, ok := vals.Get("id1")
	assert.True(t, ok)
	assert.Equal(t, v1, got)

	_, ok = vals.Get("id3")
	assert.False(t, ok)
}

func TestValueLookupInherit(t *testing.T) {
	parent := newValueLookup()

	v1 := &variable{ptr: constant.NewInt(types.I32, 1), typ: types.I32}
	v2 := &variable{ptr: constant.NewInt(types.I32, 2), typ: types.I32}
	v3 := &variable{ptr: constant.NewInt(types.I32, 3), typ: types.I32}

	parent.Set("id1", v1)
	parent.Set("id2", v2)

	child := parent.Inherit()
	child.Set("id1", v3)

	got, _ := child.Get("id1")
	assert.Equal(t, v3, got)
	got, _ = child.Get("id2")
	assert.Equal(t, v2, got)
	got, _ = parent.Get("id1")
	assert.Equal(t, v1, got)
}

func TestLiteral(t *testing.T) {
	cases := []struct {
		lit    *ast.Literal
		typ    *types.IntType
		expect int64
	}{
		{num("42"), types.I32, 42},
		{num("0x1F"), types.I32, 31},
		{num("0b101"), types.I32, 5},
		{num("1_000"), types.I32, 1000},
		{num("3000000000"), types.I64, 3000000000},
		{&ast.Literal{Value: "7", Suffix: "L", Type: ast.LiteralInt}, types.I64, 7},
		{&ast.Literal{Value: "A", Type: ast.LiteralChar}, types.I8, 65},
		{&ast.Literal{Value: "", Type: ast.LiteralChar}, types.I8, 0},
		{&ast.Literal{Value: "true", Type: ast.LiteralBool}, types.I1, 1},
	}

	for _, c := range cases {
		got, err := literal(c.lit)
		require.NoError(t, err, c.lit.Value)
		assert.Equal(t, c.typ, got.Typ, c.lit.Value)
		assert.Equal(t, c.expect, got.X.Int64(), c.lit.Value)
	}

	_, err := literal(&ast.Literal{Value: "1.5", Type: ast.LiteralFloat})
	assert.Error(t, err)
}

func TestAssembleMain(t *testing.T) {
	p := &ast.Program{
		Main: []ast.Node{
			intVar("a", num("7")),
			intVar("b", num("2")),
			printLine(&ast.BinaryExpression{Operator: ast.BinaryFloorDivision, Left: id("a"), Right: id("b")}),
		},
	}

	out, ctx := assemble(t, core.Python, p)

	assert.Contains(t, out, "define i32 @main()")
	assert.Contains(t, out, "declare i32 @printf(i8* %format, ...)")
	assert.Contains(t, out, "alloca i32")
	assert.Contains(t, out, "sdiv i32")
	assert.Contains(t, out, "srem i32")
	assert.Contains(t, out, `c"%d\0A\00"`)
	assert.Contains(t, out, "ret i32 0")
	assert.Empty(t, ctx.Warnings())
}

func TestAssembleFunctions(t *testing.T) {
	p := &ast.Program{
		Globals: []ast.Node{
			&ast.VariableDeclaration{Name: "LIMIT", Type: ast.Named(ast.TypeInt), Value: num("3"), Const: true},
		},
		Functions: []*ast.FunctionDeclaration{
			{
				Name:       "twice",
				ReturnType: ast.Named(ast.TypeInt),
				Parameters: []ast.Parameter{{Name: "n", Type: ast.Named(ast.TypeInt)}},
				Body: []ast.Node{&ast.ReturnStatement{
					Value: &ast.BinaryExpression{Operator: ast.BinaryMultiplication, Left: id("n"), Right: id("LIMIT")},
				}},
			},
			{Name: "printf", ReturnType: ast.Named(ast.TypeVoid)},
		},
		Main: []ast.Node{
			printLine(&ast.CallExpression{FunctionName: "twice", Args: []ast.Expr{num("21")}}),
			&ast.CallExpression{FunctionName: "printf"},
		},
	}

	out, ctx := assemble(t, core.Java, p)

	assert.Contains(t, out, "@LIMIT = constant i32 3")
	assert.Contains(t, out, "define i32 @twice(i32 %n)")
	assert.Contains(t, out, "mul i32")
	assert.Contains(t, out, "call i32 @twice(i32 21)")
	assert.Contains(t, out, "define void @printf_()")
	assert.Contains(t, out, "call void @printf_()")
	assert.Empty(t, ctx.Warnings())
}

func TestAssembleLoops(t *testing.T) {
	p := &ast.Program{
		Main: []ast.Node{
			intVar("i", num("0")),
			&ast.LoopStatement{
				Loop:      ast.LoopWhile,
				Condition: &ast.ComparisonExpression{Operator: ast.CompareLess, Left: id("i"), Right: num("10")},
				Body: []ast.Node{
					&ast.UnaryExpression{Operator: ast.UnaryIncrement, Operand: id("i"), Postfix: true},
					&ast.ConditionalStatement{
						Condition: &ast.ComparisonExpression{Operator: ast.CompareEqual, Left: id("i"), Right: num("5")},
						Then:      []ast.Node{&ast.BreakStatement{}},
					},
				},
			},
			&ast.LoopStatement{
				Loop:      ast.LoopFor,
				Init:      intVar("j", num("0")),
				Condition: &ast.ComparisonExpression{Operator: ast.CompareLess, Left: id("j"), Right: num("3")},
				Update:    &ast.UnaryExpression{Operator: ast.UnaryIncrement, Operand: id("j"), Postfix: true},
				Body:      []ast.Node{&ast.ContinueStatement{}},
			},
		},
	}

	out, ctx := assemble(t, core.C, p)

	for _, label := range []string{"loop.cond", "loop.body", "loop.end", "if.then", "for.cond", "for.step", "for.end"} {
		assert.Contains(t, out, label)
	}
	assert.Contains(t, out, "icmp slt i32")
	assert.Contains(t, out, "icmp eq i32")
	assert.Contains(t, out, "br i1")
	assert.Empty(t, ctx.Warnings())
}

func TestAssembleBooleans(t *testing.T) {
	p := &ast.Program{
		Main: []ast.Node{
			&ast.VariableDeclaration{Name: "flag", Value: &ast.Literal{Value: "true", Type: ast.LiteralBool}},
			printLine(&ast.LogicalExpression{Operator: ast.LogicalAnd, Left: id("flag"), Right: &ast.ComparisonExpression{
				Operator: ast.CompareGreater, Left: num("2"), Right: num("1"),
			}}),
		},
	}

	out, ctx := assemble(t, core.Python, p)

	assert.Contains(t, out, "alloca i1")
	assert.Contains(t, out, "phi i1")
	assert.Contains(t, out, `c"True\00"`)
	assert.Contains(t, out, `c"False\00"`)
	assert.Contains(t, out, "select i1")
	assert.Empty(t, ctx.Warnings())
}

func TestAssembleSkipsUnsupported(t *testing.T) {
	p := &ast.Program{
		Main: []ast.Node{
			&ast.VariableDeclaration{Name: "s", Type: ast.Named(ast.TypeString), Value: &ast.Literal{Value: "x", Type: ast.LiteralString}},
			&ast.ArrayDeclaration{Name: "xs", ElementType: ast.Named(ast.TypeInt), Values: []ast.Expr{num("1")}},
			printLine(num("1")),
		},
	}

	out, ctx := assemble(t, core.Java, p)

	assert.Contains(t, out, "define i32 @main()")
	assert.Contains(t, out, "@printf")

	warnings := ctx.Warnings()
	require.Len(t, warnings, 2)
	assert.Equal(t, "Unsupported", warnings[0].Kind)
	assert.Equal(t, "Unsupported", warnings[1].Kind)
}

func TestAssembleFormatted(t *testing.T) {
	p := &ast.Program{
		Main: []ast.Node{
			&ast.VariableDeclaration{Name: "big", Type: ast.Named(ast.TypeLong), Value: num("5")},
			&ast.PrintStatement{
				Formatted: true,
				Newline:   true,
				Args:      []ast.Expr{&ast.Literal{Value: "%d items", Type: ast.LiteralString}, id("big")},
			},
		},
	}

	out, ctx := assemble(t, core.Java, p)

	assert.Contains(t, out, "alloca i64")
	assert.Contains(t, out, `c"%ld items\0A\00"`)
	assert.Empty(t, ctx.Warnings())
}

func TestAssembleDropsFailedBranches(t *testing.T) {
	orY := &ast.LogicalExpression{Operator: ast.LogicalOr, Left: id("x"), Right: id("y")}

	cases := []struct {
		name string
		stmt ast.Node
	}{
		{"logical", &ast.VariableDeclaration{Name: "v", Value: orY}},
		{"ternary", intVar("v", &ast.TernaryExpression{
			Condition: &ast.ComparisonExpression{Operator: ast.CompareGreater, Left: id("x"), Right: num("0")},
			Then:      num("1"),
			Else:      id("y"),
		})},
		{"conditional", &ast.ConditionalStatement{Condition: orY, Then: []ast.Node{printLine(num("1"))}}},
		{"loop", &ast.LoopStatement{Loop: ast.LoopWhile, Condition: orY, Body: []ast.Node{&ast.BreakStatement{}}}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			// x = 1; y = 2.5; ...; print(x); print(x + 1)
			p := &ast.Program{
				Main: []ast.Node{
					intVar("x", num("1")),
					&ast.VariableDeclaration{Name: "y", Type: ast.Named(ast.TypeDouble), Value: &ast.Literal{Value: "2.5", Type: ast.LiteralFloat}},
					c.stmt,
					printLine(id("x")),
					printLine(&ast.BinaryExpression{Operator: ast.BinaryAddition, Left: id("x"), Right: num("1")}),
				},
			}

			out, ctx := assemble(t, core.Python, p)

			assert.NotContains(t, out, "unreachable")
			for _, label := range []string{"or.rhs", "or.end", "cond.then", "cond.end", "if.then", "if.end", "loop.cond"} {
				assert.NotContains(t, out, label)
			}
			assert.Equal(t, 3, strings.Count(out, "@printf("), "declaration and two calls")
			assert.Contains(t, out, "add i32")
			assert.Contains(t, out, "ret i32 0")
			assert.Len(t, ctx.Warnings(), 2)
		})
	}
}

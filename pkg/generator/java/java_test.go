package java

import (
	"testing"

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

func strLit(v string) *ast.Literal {
	return &ast.Literal{Value: v, Type: ast.LiteralString}
}

func char(v string) *ast.Literal {
	return &ast.Literal{Value: v, Type: ast.LiteralChar}
}

func bin(op ast.BinaryOp, l, r ast.Expr) *ast.BinaryExpression {
	return &ast.BinaryExpression{Operator: op, Left: l, Right: r}
}

func cmp(op ast.ComparisonOp, l, r ast.Expr) *ast.ComparisonExpression {
	return &ast.ComparisonExpression{Operator: op, Left: l, Right: r}
}

func assign(l ast.Expr, op ast.AssignOp, r ast.Expr) *ast.AssignmentExpression {
	return &ast.AssignmentExpression{Left: l, Operator: op, Right: r}
}

func callOf(name string, args ...ast.Expr) *ast.CallExpression {
	return &ast.CallExpression{FunctionName: name, Args: args}
}

func context() *core.Context {
	ctx := core.NewContext(core.C, core.Java, "")
	ctx.Generators = New().Generators()

	vars := map[string]ast.Type{
		"a":    ast.Named(ast.TypeInt),
		"b":    ast.Named(ast.TypeInt),
		"n":    ast.Named(ast.TypeInt),
		"x":    ast.Named(ast.TypeDouble),
		"c":    ast.Named(ast.TypeChar),
		"s":    ast.Named(ast.TypeString),
		"flag": ast.Named(ast.TypeBool),
		"xs":   {Name: ast.TypeInt, Dims: []ast.Expr{nil}},
	}
	for name, t := range vars {
		ctx.AddSymbol(&core.Symbol{Name: name, Type: t})
	}

	return ctx
}

func TestRegistryComplete(t *testing.T) {
	assert.NoError(t, New().Generators().Validate())
}

func TestExpressions(t *testing.T) {
	cases := []struct {
		expr   ast.Expr
		expect string
	}{
		{bin(ast.BinaryAddition, id("a"), bin(ast.BinaryMultiplication, id("b"), num("2"))), "a + b * 2"},
		{bin(ast.BinarySubtraction, id("a"), bin(ast.BinarySubtraction, id("b"), num("1"))), "a - (b - 1)"},
		{bin(ast.BinaryTrueDivision, id("a"), id("b")), "(double) a / b"},
		{bin(ast.BinaryFloorDivision, id("a"), id("b")), "Math.floorDiv(a, b)"},
		{bin(ast.BinaryFloorDivision, id("x"), num("2")), "Math.floor(x / 2)"},
		{bin(ast.BinaryPower, id("a"), num("2")), "Math.pow(a, 2)"},
		{bin(ast.BinaryMultiplication, id("s"), num("3")), "s.repeat(3)"},
		{cmp(ast.CompareEqual, id("s"), strLit("hi")), `s.equals("hi")`},
		{cmp(ast.CompareNotEqual, id("s"), strLit("hi")), `!s.equals("hi")`},
		{cmp(ast.CompareLess, id("s"), strLit("m")), `s.compareTo("m") < 0`},
		{cmp(ast.CompareEqual, id("s"), &ast.Literal{Type: ast.LiteralNull}), "s == null"},
		{cmp(ast.CompareEqual, id("c"), strLit("a")), "c == 'a'"},
		{&ast.LogicalExpression{Operator: ast.LogicalAnd, Left: id("a"), Right: id("flag")}, "a != 0 && flag"},
		{&ast.LogicalExpression{Operator: ast.LogicalNot, Left: id("a")}, "!(a != 0)"},
		{&ast.LogicalExpression{
			Operator: ast.LogicalAnd,
			Left:     id("flag"),
			Right:    &ast.LogicalExpression{Operator: ast.LogicalOr, Left: id("flag"), Right: cmp(ast.CompareGreater, id("b"), num("0"))},
		}, "flag && (flag || b > 0)"},
		{&ast.TernaryExpression{Condition: cmp(ast.CompareGreater, id("a"), id("b")), Then: id("a"), Else: id("b")}, "a > b ? a : b"},
		{&ast.UnaryExpression{Operator: ast.UnaryIncrement, Operand: id("a"), Postfix: true}, "a++"},
		{&ast.UnaryExpression{Operator: ast.UnaryDecrement, Operand: id("a")}, "--a"},
		{callOf("len", id("s")), "s.length()"},
		{callOf("len", id("xs")), "xs.length"},
		{callOf("max", id("a"), id("b"), id("n")), "Math.max(a, Math.max(b, n))"},
		{callOf("sqrt", id("x")), "Math.sqrt(x)"},
		{callOf("int", id("s")), "Integer.parseInt(s)"},
		{callOf("int", id("x")), "(int) x"},
		{callOf("float", id("a")), "(double) a"},
		{callOf("str", id("a")), "String.valueOf(a)"},
		{callOf("chr", bin(ast.BinaryAddition, id("a"), num("1"))), "(char) (a + 1)"},
		{callOf("ord", strLit("A")), "(int) 'A'"},
		{callOf("ord", id("s")), "(int) s.charAt(0)"},
		{&ast.Subscript{Array: id("s"), Index: num("0")}, "s.charAt(0)"},
		{&ast.Subscript{Array: id("xs"), Index: id("a")}, "xs[a]"},
		{&ast.Attribute{Object: id("s"), Attribute: "length"}, "s.length()"},
		{assign(id("c"), ast.Assign, id("a")), "c = (char) a"},
		{assign(id("a"), ast.Assign, id("x")), "a = (int) x"},
		{assign(id("a"), ast.AssignPower, num("2")), "a = (int) Math.pow(a, 2)"},
		{assign(id("x"), ast.AssignTrueDivide, num("2")), "x /= 2"},
		{id("class"), "class_"},
		{num("3000000000"), "3000000000L"},
		{&ast.Literal{Value: "1", Suffix: "f", Type: ast.LiteralFloat}, "1.0f"},
		{char(""), `'\0'`},
		{&ast.ArrayLiteral{Elements: []ast.Expr{num("1"), num("2")}}, "new int[]{1, 2}"},
	}

	for _, c := range cases {
		ctx := context()
		got, err := ctx.Generate(c.expr)
		require.NoError(t, err, c.expect)
		assert.Equal(t, c.expect, got)
	}
}

func TestExpressionErrors(t *testing.T) {
	ctx := context()

	_, err := ctx.Generate(assign(&ast.Subscript{Array: id("s"), Index: num("0")}, ast.Assign, char("x")))
	assert.Error(t, err)

	_, err = ctx.Generate(callOf("abs"))
	assert.Error(t, err)
}

func TestStatements(t *testing.T) {
	cases := []struct {
		node   ast.Node
		expect string
	}{
		{&ast.VariableDeclaration{Name: "d", Type: ast.Named(ast.TypeDouble)}, "double d = 0.0;"},
		{&ast.VariableDeclaration{Name: "f", Type: ast.Named(ast.TypeFloat), Value: &ast.Literal{Value: "1.5", Type: ast.LiteralFloat}}, "float f = 1.5f;"},
		{&ast.VariableDeclaration{Name: "LIMIT", Type: ast.Named(ast.TypeInt), Value: num("3"), Const: true}, "final int LIMIT = 3;"},
		{&ast.VariableDeclaration{Name: "t", Value: strLit("x")}, `String t = "x";`},
		{&ast.VariableDeclaration{Name: "p", Type: ast.Type{Name: ast.TypeChar, Pointer: 1}}, "String p = null;"},
		{&ast.ArrayDeclaration{Name: "grid", ElementType: ast.Named(ast.TypeInt), Sizes: []ast.Expr{num("3"), num("4")}},
			"int[][] grid = new int[3][4];"},
		{&ast.ArrayDeclaration{Name: "ys", ElementType: ast.Named(ast.TypeInt), Values: []ast.Expr{num("1"), num("2")}, Sizes: []ast.Expr{num("4")}},
			"int[] ys = {1, 2, 0, 0};"},
		{&ast.ArrayDeclaration{Name: "buf", ElementType: ast.Named(ast.TypeChar), Sizes: []ast.Expr{num("20")}}, `String buf = "";`},
		{&ast.CallExpression{FunctionName: "go", Args: []ast.Expr{id("a")}}, "go(a);"},
		{&ast.ConditionalStatement{
			Condition: cmp(ast.CompareLess, id("a"), num("0")),
			Then:      []ast.Node{&ast.Comment{Text: "negative"}},
			Elifs:     []ast.ElifBranch{{Condition: cmp(ast.CompareEqual, id("a"), num("0")), Then: []ast.Node{&ast.BreakStatement{}}}},
			Else:      []ast.Node{&ast.ContinueStatement{}},
		}, "if (a < 0) {\n    // negative\n} else if (a == 0) {\n    break;\n} else {\n    continue;\n}"},
	}

	for _, c := range cases {
		ctx := context()
		got, err := statement(c.node, ctx)
		require.NoError(t, err, c.expect)
		assert.Equal(t, c.expect, got)
		assert.Empty(t, ctx.Warnings(), c.expect)
	}
}

func TestUnknownType(t *testing.T) {
	ctx := context()

	got, err := statement(&ast.VariableDeclaration{Name: "v"}, ctx)
	require.NoError(t, err)

	assert.Equal(t, "int v = 0;", got)
	require.Len(t, ctx.Warnings(), 1)
	assert.Equal(t, "Approximation", ctx.Warnings()[0].Kind)
}

func TestLoops(t *testing.T) {
	cases := []struct {
		loop   *ast.LoopStatement
		expect string
	}{
		{&ast.LoopStatement{
			Loop:      ast.LoopFor,
			Init:      &ast.VariableDeclaration{Name: "i", Type: ast.Named(ast.TypeInt), Value: num("0")},
			Condition: cmp(ast.CompareLess, id("i"), id("n")),
			Update:    &ast.UnaryExpression{Operator: ast.UnaryIncrement, Operand: id("i"), Postfix: true},
			Body:      []ast.Node{&ast.PrintStatement{Args: []ast.Expr{id("i")}, Newline: true}},
		}, "for (int i = 0; i < n; i++) {\n    System.out.println(i);\n}"},
		{&ast.LoopStatement{Loop: ast.LoopFor}, "for (;;) {\n}"},
		{&ast.LoopStatement{
			Loop:      ast.LoopDoWhile,
			Condition: cmp(ast.CompareLess, id("a"), num("10")),
			Body:      []ast.Node{&ast.UnaryExpression{Operator: ast.UnaryIncrement, Operand: id("a"), Postfix: true}},
		}, "do {\n    a++;\n} while (a < 10);"},
		{&ast.LoopStatement{Loop: ast.LoopWhile}, "while (true) {\n}"},
		{&ast.LoopStatement{Loop: ast.LoopWhile, Condition: id("a")}, "while (a != 0) {\n}"},
		{&ast.LoopStatement{
			Loop:     ast.LoopFor,
			LoopVar:  "ch",
			Iterable: id("s"),
			Body:     []ast.Node{&ast.PrintStatement{Args: []ast.Expr{id("ch")}, Newline: true}},
		}, "for (char ch : s.toCharArray()) {\n    System.out.println(ch);\n}"},
	}

	for _, c := range cases {
		ctx := context()
		got, err := loop(c.loop, ctx)
		require.NoError(t, err, c.expect)
		assert.Equal(t, c.expect, got)
	}
}

func TestPythonRemainder(t *testing.T) {
	cases := []struct {
		source core.Language
		node   ast.Node
		expect string
	}{
		{core.Python, bin(ast.BinaryModulo, id("a"), num("3")), "Math.floorMod(a, 3)"},
		{core.Python, bin(ast.BinaryModulo, num("7"), num("3")), "7 % 3"},
		{core.Python, bin(ast.BinaryModulo, id("x"), num("2")), "x % 2"},
		{core.Python, assign(id("a"), ast.AssignModulo, num("3")), "a = Math.floorMod(a, 3)"},
		{core.C, bin(ast.BinaryModulo, id("a"), num("3")), "a % 3"},
		{core.C, assign(id("a"), ast.AssignModulo, num("3")), "a %= 3"},
		{core.Python, &ast.LoopStatement{
			Loop:      ast.LoopFor,
			Init:      &ast.VariableDeclaration{Name: "i", Type: ast.Named(ast.TypeInt), Value: num("0")},
			Condition: cmp(ast.CompareLess, id("i"), id("a")),
			Update:    &ast.UnaryExpression{Operator: ast.UnaryIncrement, Operand: id("i"), Postfix: true},
			Body:      []ast.Node{&ast.PrintStatement{Args: []ast.Expr{bin(ast.BinaryModulo, id("i"), num("2"))}, Newline: true}},
		}, "for (int i = 0; i < a; i++) {\n    System.out.println(i % 2);\n}"},
	}

	for _, c := range cases {
		ctx := context()
		ctx.Source = c.source
		got, err := ctx.Generate(c.node)
		require.NoError(t, err, c.expect)
		assert.Equal(t, c.expect, got)
	}
}

func TestPrint(t *testing.T) {
	formatted := func(args ...ast.Expr) *ast.PrintStatement {
		return &ast.PrintStatement{Args: args, Formatted: true}
	}

	cases := []struct {
		node   *ast.PrintStatement
		expect string
	}{
		{&ast.PrintStatement{Args: []ast.Expr{id("a"), id("b")}, Sep: ", ", Newline: true}, `System.out.println(a + ", " + b);`},
		{&ast.PrintStatement{Args: []ast.Expr{id("xs")}, Newline: true}, "System.out.println(Arrays.toString(xs));"},
		{&ast.PrintStatement{Args: []ast.Expr{id("c")}}, "System.out.print(c);"},
		{&ast.PrintStatement{Newline: true}, "System.out.println();"},
		{formatted(strLit("hi\n")), `System.out.println("hi");`},
		{formatted(strLit("%d\n"), id("a")), "System.out.println(a);"},
		{formatted(strLit("%5.2f|%-4d\n"), id("x"), id("a")), `System.out.printf("%5.2f|%-4d%n", x, a);`},
		{formatted(strLit("%d %c\n"), id("c"), id("a")), `System.out.printf("%d %c%n", (int) c, a);`},
		{formatted(strLit("%ld items"), id("a")), `System.out.printf("%d items", a);`},
		{formatted(strLit("%f"), id("a")), `System.out.printf("%f", (double) a);`},
		{formatted(strLit("100%% \"done\"\n")), `System.out.println("100% \"done\"");`},
	}

	for _, c := range cases {
		ctx := context()
		got, err := printStatement(c.node, ctx)
		require.NoError(t, err, c.expect)
		assert.Equal(t, c.expect, got)
	}
}

func TestPrintPrecision(t *testing.T) {
	ctx := context()

	got, err := printStatement(&ast.PrintStatement{Args: []ast.Expr{strLit("%.3d\n"), id("a")}, Formatted: true}, ctx)
	require.NoError(t, err)

	assert.Equal(t, `System.out.printf("%03d%n", a);`, got)
	require.Len(t, ctx.Warnings(), 1)
	assert.Equal(t, "Approximation", ctx.Warnings()[0].Kind)
}

func TestPrintErrors(t *testing.T) {
	cases := []*ast.PrintStatement{
		{Args: []ast.Expr{strLit("%*d\n"), id("n"), id("a")}, Formatted: true},
		{Args: []ast.Expr{id("s")}, Formatted: true},
		{Formatted: true},
	}

	for _, c := range cases {
		_, err := printStatement(c, context())
		assert.Error(t, err)
	}
}

func TestAssemble(t *testing.T) {
	p := &ast.Program{
		Globals: []ast.Node{&ast.VariableDeclaration{Name: "count", Type: ast.Named(ast.TypeInt), Value: num("0")}},
		Functions: []*ast.FunctionDeclaration{{
			Name:       "bump",
			ReturnType: ast.Named(ast.TypeVoid),
			Parameters: []ast.Parameter{{Name: "n", Type: ast.Named(ast.TypeInt)}},
			Body:       []ast.Node{assign(id("count"), ast.AssignAdd, id("n"))},
		}},
		Main: []ast.Node{
			&ast.CallExpression{FunctionName: "bump", Args: []ast.Expr{num("2")}},
			&ast.PrintStatement{Args: []ast.Expr{strLit("count=%d\n"), id("count")}, Formatted: true},
			&ast.ReturnStatement{Value: num("0")},
		},
	}

	ctx := core.NewContext(core.C, core.Java, "")
	out, err := New().Assemble(p, ctx)
	require.NoError(t, err)

	expect := `public class Main {
    static int count = 0;

    static void bump(int n) {
        count += n;
    }

    public static void main(String[] args) {
        bump(2);
        System.out.printf("count=%d%n", count);
        System.exit(0);
    }
}
`
	assert.Equal(t, expect, out)
	assert.Empty(t, ctx.Warnings())
}

func TestAssembleClassAndImports(t *testing.T) {
	p := &ast.Program{
		Main: []ast.Node{
			&ast.ArrayDeclaration{Name: "ys", ElementType: ast.Named(ast.TypeInt), Values: []ast.Expr{num("1")}},
			&ast.PrintStatement{Args: []ast.Expr{id("ys")}, Newline: true},
		},
	}

	ctx := core.NewContext(core.Python, core.Java, "")
	ctx.CurrentClass = "Hello"
	out, err := New().Assemble(p, ctx)
	require.NoError(t, err)

	expect := `import java.util.Arrays;

public class Hello {
    public static void main(String[] args) {
        int[] ys = {1};
        System.out.println(Arrays.toString(ys));
    }
}
`
	assert.Equal(t, expect, out)
}

func TestAssembleDegrades(t *testing.T) {
	p := &ast.Program{
		Main: []ast.Node{
			&ast.VariableDeclaration{Name: "s", Type: ast.Named(ast.TypeString), Value: strLit("abc")},
			assign(&ast.Subscript{Array: id("s"), Index: num("0")}, ast.Assign, char("x")),
		},
	}

	ctx := core.NewContext(core.C, core.Java, "")
	out, err := New().Assemble(p, ctx)
	require.NoError(t, err)

	expect := `public class Main {
    public static void main(String[] args) {
        String s = "abc";
        // assignment to a character of an immutable string
    }
}
`
	assert.Equal(t, expect, out)
	require.Len(t, ctx.Warnings(), 1)
	assert.Equal(t, "Generation", ctx.Warnings()[0].Kind)
}

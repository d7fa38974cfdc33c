package visitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/core"
	"go.crosslang.dev/pkg/parser"
)

func TestVisitJava(t *testing.T) {
	src := `import java.util.Arrays;

public class Main {
    static int count = 0;

    static double half(int x) {
        return x / 2.0;
    }

    public static void main(String[] args) {
        int[] xs = new int[5];
        for (int x : xs) {
            System.out.println(x);
        }
        System.out.printf("%.2f%n", half(3));
        String s = "abc";
        System.out.println(s.length() + Math.pow(2, 3));
    }
}
`
	prog, ctx := lower(t, core.Java, src)
	assert.Equal(t, "Main", ctx.CurrentClass)
	assert.Empty(t, prog.Includes)

	assert.Equal(t, []ast.Node{&ast.VariableDeclaration{Name: "count", Type: intType, Value: num("0")}}, prog.Globals)

	require.Len(t, prog.Functions, 1)
	half := prog.Functions[0]
	assert.Equal(t, "half", half.Name)
	assert.Equal(t, ast.Named(ast.TypeDouble), half.ReturnType)
	assert.Equal(t, []ast.Parameter{{Name: "x", Type: intType}}, half.Parameters)

	require.Len(t, prog.Main, 5)
	assert.Equal(t, &ast.ArrayDeclaration{Name: "xs", ElementType: intType, Sizes: []ast.Expr{num("5")}}, prog.Main[0])

	assert.Equal(t, &ast.LoopStatement{
		Loop:     ast.LoopFor,
		LoopVar:  "x",
		Iterable: id("xs"),
		Body:     []ast.Node{&ast.PrintStatement{Args: []ast.Expr{id("x")}, Newline: true}},
	}, prog.Main[1])

	assert.Equal(t, &ast.PrintStatement{
		Args:      []ast.Expr{text("%.2f%n"), &ast.CallExpression{FunctionName: "half", Args: []ast.Expr{num("3")}}},
		Formatted: true,
	}, prog.Main[2])

	assert.Equal(t, &ast.VariableDeclaration{Name: "s", Type: stringType, Value: text("abc")}, prog.Main[3])

	assert.Equal(t, &ast.PrintStatement{
		Args: []ast.Expr{&ast.BinaryExpression{
			Operator: ast.BinaryAddition,
			Left:     builtin("len", id("s")),
			Right:    &ast.BinaryExpression{Operator: ast.BinaryPower, Left: num("2"), Right: num("3")},
		}},
		Newline: true,
	}, prog.Main[4])

	assert.Empty(t, ctx.Warnings())
}

func TestVisitJavaLibrary(t *testing.T) {
	cases := []struct {
		data   string
		expect ast.Expr
	}{
		{`Integer.parseInt("7")`, builtin("int", text("7"))},
		{`Double.parseDouble("1.5")`, builtin("float", text("1.5"))},
		{`String.valueOf(3)`, builtin("str", num("3"))},
		{`Math.abs(3)`, builtin("abs", num("3"))},
		{`Math.max(1, 2)`, builtin("max", num("1"), num("2"))},
		{`Math.floorDiv(7, 2)`, &ast.BinaryExpression{Operator: ast.BinaryFloorDivision, Left: num("7"), Right: num("2")}},
		{`"abc".charAt(1)`, &ast.Subscript{Array: text("abc"), Index: num("1")}},
		{`"abc".equals("abd")`, &ast.ComparisonExpression{Operator: ast.CompareEqual, Left: text("abc"), Right: text("abd")}},
	}

	for _, c := range cases {
		src := "class A {\n    public static void main(String[] args) {\n        Object x = " + c.data + ";\n    }\n}\n"
		prog, ctx := lower(t, core.Java, src)

		require.Len(t, prog.Main, 1, c.data)
		decl, ok := prog.Main[0].(*ast.VariableDeclaration)
		require.True(t, ok, c.data)
		assert.Equal(t, c.expect, decl.Value, c.data)
		assert.Empty(t, ctx.Warnings(), c.data)
	}
}

func TestVisitJavaUnsupported(t *testing.T) {
	src := `public class Shape {
    Shape() {}

    public static void main(String[] args) {
        Shape s = new Shape();
    }
}
`
	prog, ctx := lower(t, core.Java, src)

	require.Len(t, prog.Globals, 1)
	assert.IsType(t, &ast.Placeholder{}, prog.Globals[0])

	require.Len(t, prog.Main, 1)
	assert.IsType(t, &ast.Placeholder{}, prog.Main[0])

	assert.Len(t, ctx.Warnings(), 2)
}

func TestJavaEntryPoint(t *testing.T) {
	root, err := parser.NewJava().Parse("class A {\n    void main() {}\n}\n")
	require.NoError(t, err)

	_, err = NewJava().EntryPoint(root)

	var entry *core.EntryPointError
	require.ErrorAs(t, err, &entry)
}

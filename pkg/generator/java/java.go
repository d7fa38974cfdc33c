// Package java renders the tree as a single Java class whose static main
// method holds the entry point.
package java

import (
	"strings"

	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/core"
	"go.crosslang.dev/pkg/generator"
	"go.crosslang.dev/pkg/lexer"
)

var reserved = generator.Reserved(
	"abstract", "assert", "boolean", "break", "byte", "case", "catch", "char",
	"class", "const", "continue", "default", "do", "double", "else", "enum",
	"extends", "final", "finally", "float", "for", "goto", "if", "implements",
	"import", "instanceof", "int", "interface", "long", "native", "new",
	"package", "private", "protected", "public", "return", "short", "static",
	"strictfp", "super", "switch", "synchronized", "this", "throw", "throws",
	"transient", "try", "void", "volatile", "while", "true", "false", "null",
	// used by the generated code
	"args", "Math", "System", "String", "Arrays", "Integer", "Double",
)

func name(s string) string {
	return generator.Rename(s, reserved)
}

type Backend struct {
	registry *core.GeneratorRegistry
}

func New() *Backend {
	r := core.NewGeneratorRegistry(core.Java).
		Func(ast.KindVariableDeclaration, variableDeclaration).
		Func(ast.KindPrintStatement, printStatement).
		Func(ast.KindComment, comment).
		Func(ast.KindConditionalStatement, conditional).
		Func(ast.KindLoopStatement, loop).
		Func(ast.KindArrayDeclaration, arrayDeclaration).
		Func(ast.KindFunctionDeclaration, function).
		Func(ast.KindCallExpression, call).
		Func(ast.KindReturnStatement, returnStatement).
		Func(ast.KindIncludeStatement, include).
		Func(ast.KindBreakStatement, keyword("break;")).
		Func(ast.KindContinueStatement, keyword("continue;")).
		Func(ast.KindPlaceholder, placeholder).
		Func(ast.KindBinaryExpression, binary).
		Func(ast.KindUnaryExpression, unary).
		Func(ast.KindLogicalExpression, logical).
		Func(ast.KindComparisonExpression, comparison).
		Func(ast.KindBitwiseExpression, bitwise).
		Func(ast.KindTernaryExpression, ternary).
		Func(ast.KindAssignmentExpression, assignment).
		Func(ast.KindIdentifier, identifier).
		Func(ast.KindLiteral, literal).
		Func(ast.KindSubscript, subscript).
		Func(ast.KindAttribute, attribute).
		Func(ast.KindArrayLiteral, arrayLiteral)

	return &Backend{registry: r}
}

func (*Backend) Language() core.Language {
	return core.Java
}

func (b *Backend) Generators() *core.GeneratorRegistry {
	return b.registry
}

// Assemble wraps the program in a public class named after the context's
// current class, Main by default. Globals become static fields and functions
// static methods.
func (b *Backend) Assemble(p *ast.Program, ctx *core.Context) (string, error) {
	ctx.Generators = b.registry
	ctx.CurrentFunction = ""
	generator.DeclareFunctions(p.Functions, ctx)

	var members []string
	if fields := generator.Render(p.Globals, ctx, field); len(fields) > 0 {
		members = append(members, strings.Join(fields, "\n"))
	}

	for _, fn := range p.Functions {
		text, err := function(fn, ctx)
		if err != nil {
			text = generator.Degrade(err, ctx)
		}
		members = append(members, text)
	}

	members = append(members, generator.Braces("public static void main(String[] args)", p.Main, ctx, statement))

	class := ctx.CurrentClass
	if class == "" {
		class = "Main"
	}

	var str strings.Builder
	if ctx.Requires(core.FeatureArrays) {
		str.WriteString("import java.util.Arrays;\n\n")
	}

	str.WriteString("public class " + class + " {\n")
	for i, m := range members {
		if i > 0 {
			str.WriteString("\n\n")
		}
		str.WriteString(generator.Indent(m, ctx.Indent))
	}
	str.WriteString("\n}\n")

	return str.String(), nil
}

// statement renders a node on a line of its own; expressions are
// terminated with a semicolon.
func statement(node ast.Node, ctx *core.Context) (string, error) {
	s, err := ctx.Generate(node)
	if err != nil {
		return "", err
	}

	if _, ok := node.(ast.Expr); ok {
		s += ";"
	}

	return s, nil
}

// field renders a global as a static member.
func field(node ast.Node, ctx *core.Context) (string, error) {
	s, err := statement(node, ctx)
	if err != nil {
		return "", err
	}

	switch node.(type) {
	case *ast.VariableDeclaration, *ast.ArrayDeclaration:
		return "static " + s, nil
	}

	return s, nil
}

// typeName spells t in Java. Character buffers and char pointers are
// strings; unknown types fall back on int with a warning.
func typeName(t ast.Type, ctx *core.Context) string {
	if t.Name == ast.TypeChar && (t.Pointer > 0 || t.IsCharBuffer()) {
		return "String"
	}

	var base string
	switch t.Name {
	case ast.TypeBool:
		base = "boolean"
	case ast.TypeString:
		base = "String"
	case ast.TypeUnknown:
		ctx.Warnf("Approximation", lexer.Position{}, "unknown type in %s taken as int", where(ctx))
		base = "int"
	default:
		base = string(t.Name)
	}

	return base + strings.Repeat("[]", len(t.Dims))
}

func where(ctx *core.Context) string {
	if generator.InMain(ctx) {
		return "main"
	}

	return ctx.CurrentFunction
}

func keyword(word string) func(ast.Node, *core.Context) (string, error) {
	return func(ast.Node, *core.Context) (string, error) {
		return word, nil
	}
}

func comment(node ast.Node, _ *core.Context) (string, error) {
	return generator.SlashComment(node.(*ast.Comment)), nil
}

func placeholder(node ast.Node, _ *core.Context) (string, error) {
	return generator.Prefix(generator.Note(node.(*ast.Placeholder)), "//"), nil
}

func include(ast.Node, *core.Context) (string, error) {
	return "", nil
}

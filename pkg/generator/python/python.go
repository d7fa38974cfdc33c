// Package python renders the tree as a Python 3 script. The entry point
// becomes top level code after the function definitions.
package python

import (
	"strings"

	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/core"
	"go.crosslang.dev/pkg/generator"
)

var reserved = generator.Reserved(
	"False", "None", "True", "and", "as", "assert", "async", "await", "break",
	"class", "continue", "def", "del", "elif", "else", "except", "finally",
	"for", "from", "global", "if", "import", "in", "is", "lambda", "nonlocal",
	"not", "or", "pass", "raise", "return", "try", "while", "with", "yield",
	// used by the generated code
	"print", "range", "len", "str", "int", "float", "abs", "max", "min",
	"chr", "ord", "math", "sys",
)

func name(s string) string {
	return generator.Rename(s, reserved)
}

type Backend struct {
	registry *core.GeneratorRegistry
}

func New() *Backend {
	r := core.NewGeneratorRegistry(core.Python).
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
		Func(ast.KindBreakStatement, keyword("break")).
		Func(ast.KindContinueStatement, keyword("continue")).
		Func(ast.KindPlaceholder, placeholder).
		Func(ast.KindBinaryExpression, binary).
		Func(ast.KindUnaryExpression, unary).
		Func(ast.KindLogicalExpression, logical).
		Func(ast.KindComparisonExpression, comparison).
		Func(ast.KindBitwiseExpression, bitwise).
		Func(ast.KindTernaryExpression, ternary).
		Func(ast.KindAssignmentExpression, walrus).
		Func(ast.KindIdentifier, identifier).
		Func(ast.KindLiteral, literal).
		Func(ast.KindSubscript, subscript).
		Func(ast.KindAttribute, attribute).
		Func(ast.KindArrayLiteral, arrayLiteral)

	return &Backend{registry: r}
}

func (*Backend) Language() core.Language {
	return core.Python
}

func (b *Backend) Generators() *core.GeneratorRegistry {
	return b.registry
}

// section is a top level chunk of the script; definitions get two blank
// lines around them.
type section struct {
	text string
	def  bool
}

// Assemble renders the imports the program turned out to need, the
// globals, the functions and finally the statements of the entry point.
func (b *Backend) Assemble(p *ast.Program, ctx *core.Context) (string, error) {
	ctx.Generators = b.registry
	ctx.CurrentFunction = ""
	generator.DeclareFunctions(p.Functions, ctx)

	var body []section
	if globals := generator.Render(p.Globals, ctx, statement); len(globals) > 0 {
		body = append(body, section{text: strings.Join(globals, "\n")})
	}

	for _, fn := range p.Functions {
		text, err := function(fn, ctx)
		if err != nil {
			text = generator.Degrade(err, ctx)
		}
		body = append(body, section{text: text, def: true})
	}

	if main := generator.Render(p.Main, ctx, statement); len(main) > 0 {
		body = append(body, section{text: strings.Join(main, "\n")})
	}

	var imports []string
	if ctx.Requires(core.FeatureMath) {
		imports = append(imports, "import math")
	}
	if ctx.Requires(core.FeatureSys) {
		imports = append(imports, "import sys")
	}

	var sections []section
	if len(imports) > 0 {
		sections = append(sections, section{text: strings.Join(imports, "\n")})
	}
	sections = append(sections, body...)

	var str strings.Builder
	for i, s := range sections {
		if i > 0 {
			if s.def || sections[i-1].def {
				str.WriteString("\n\n\n")
			} else {
				str.WriteString("\n\n")
			}
		}
		str.WriteString(s.text)
	}
	str.WriteString("\n")

	return str.String(), nil
}

// statement renders a node on a line of its own, where assignments and
// increments are statements rather than expressions.
func statement(node ast.Node, ctx *core.Context) (string, error) {
	switch n := node.(type) {
	case *ast.AssignmentExpression:
		return assignment(n, ctx)
	case *ast.UnaryExpression:
		switch n.Operator {
		case ast.UnaryIncrement:
			return step(n.Operand, ast.AssignAdd, ctx)
		case ast.UnaryDecrement:
			return step(n.Operand, ast.AssignSubtract, ctx)
		}
	}

	return ctx.Generate(node)
}

func step(target ast.Expr, op ast.AssignOp, ctx *core.Context) (string, error) {
	one := &ast.Literal{Value: "1", Type: ast.LiteralInt}
	return assignment(&ast.AssignmentExpression{Left: target, Operator: op, Right: one}, ctx)
}

// suite renders an indented block, which may not be empty in Python.
func suite(nodes []ast.Node, ctx *core.Context) string {
	lines := generator.Block(nodes, ctx, statement)
	if generator.Comments(lines, "#") {
		lines = append(lines, ctx.Indent+"pass")
	}

	return strings.Join(lines, "\n")
}

func keyword(word string) func(ast.Node, *core.Context) (string, error) {
	return func(ast.Node, *core.Context) (string, error) {
		return word, nil
	}
}

func comment(node ast.Node, _ *core.Context) (string, error) {
	return generator.Prefix(node.(*ast.Comment).Text, "#"), nil
}

func placeholder(node ast.Node, _ *core.Context) (string, error) {
	return generator.Prefix(generator.Note(node.(*ast.Placeholder)), "#"), nil
}

// include renders nothing; imports follow from the features in use.
func include(ast.Node, *core.Context) (string, error) {
	return "", nil
}

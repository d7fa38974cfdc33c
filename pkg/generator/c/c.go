// Package c renders the tree as a C99 program. Functions keep their
// signatures; the entry point becomes int main().
package c

import (
	"strings"

	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/core"
	"go.crosslang.dev/pkg/generator"
	"go.crosslang.dev/pkg/lexer"
)

var reserved = generator.Reserved(
	"auto", "break", "case", "char", "const", "continue", "default", "do",
	"double", "else", "enum", "extern", "float", "for", "goto", "if", "inline",
	"int", "long", "register", "restrict", "return", "short", "signed",
	"sizeof", "static", "struct", "switch", "typedef", "union", "unsigned",
	"void", "volatile", "while", "bool", "true", "false", "NULL",
	// used by the generated code
	"printf", "strlen", "strcmp", "strcpy", "strcat", "memset", "pow", "sqrt",
	"floor", "fabs", "abs", "atoi", "atof",
)

func name(s string) string {
	return generator.Rename(s, reserved)
}

type Backend struct {
	registry *core.GeneratorRegistry
}

func New() *Backend {
	r := core.NewGeneratorRegistry(core.C).
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
	return core.C
}

func (b *Backend) Generators() *core.GeneratorRegistry {
	return b.registry
}

// headers lists the includes behind each feature, in the order they are
// emitted.
var headers = []struct {
	feature core.Feature
	header  string
}{
	{core.FeatureIO, "stdio.h"},
	{core.FeatureStdlib, "stdlib.h"},
	{core.FeatureString, "string.h"},
	{core.FeatureMath, "math.h"},
	{core.FeatureBool, "stdbool.h"},
}

// Assemble renders includes, globals, prototypes when a function is called
// before its definition, the functions and main.
func (b *Backend) Assemble(p *ast.Program, ctx *core.Context) (string, error) {
	ctx.Generators = b.registry
	ctx.CurrentFunction = ""
	generator.DeclareFunctions(p.Functions, ctx)

	var sections []string
	globals := generator.Render(p.Globals, ctx, global)

	var fns, protos []string
	for _, fn := range p.Functions {
		text, err := function(fn, ctx)
		if err != nil {
			text = generator.Degrade(err, ctx)
		} else if head, _, ok := strings.Cut(text, " {"); ok {
			protos = append(protos, head+";")
		}
		fns = append(fns, text)
	}
	if !forward(p.Functions) {
		protos = nil
	}

	body := p.Main
	if len(body) == 0 || body[len(body)-1].Kind() != ast.KindReturnStatement {
		body = append(append([]ast.Node(nil), body...), &ast.ReturnStatement{Value: generator.IntLiteral(0)})
	}
	main := generator.Braces("int main()", body, ctx, statement)

	if includes := includes(p, ctx); len(includes) > 0 {
		sections = append(sections, strings.Join(includes, "\n"))
	}
	if len(globals) > 0 {
		sections = append(sections, strings.Join(globals, "\n"))
	}
	if len(protos) > 0 {
		sections = append(sections, strings.Join(protos, "\n"))
	}
	sections = append(sections, fns...)
	sections = append(sections, main)

	return strings.Join(sections, "\n\n") + "\n", nil
}

// includes merges the program's own includes with those the generated
// code needs, without repeats.
func includes(p *ast.Program, ctx *core.Context) []string {
	seen := make(map[string]bool)

	var out []string
	add := func(h string) {
		if h == "" || seen[h] {
			return
		}
		seen[h] = true
		out = append(out, includeLine(h))
	}

	for _, inc := range p.Includes {
		add(inc.Header)
	}
	for _, h := range headers {
		if ctx.Requires(h.feature) {
			add(h.header)
		}
	}

	return out
}

func includeLine(header string) string {
	if strings.HasPrefix(header, `"`) {
		return "#include " + header
	}

	return "#include <" + header + ">"
}

// forward reports a call to a function defined further down.
func forward(fns []*ast.FunctionDeclaration) bool {
	index := make(map[string]int, len(fns))
	for i, fn := range fns {
		index[fn.Name] = i
	}

	found := false
	for i, fn := range fns {
		ast.InspectAll(fn.Body, func(n ast.Node) bool {
			if call, ok := n.(*ast.CallExpression); ok && call.Receiver == nil {
				if j, ok := index[call.FunctionName]; ok && j > i {
					found = true
				}
			}
			return !found
		})
	}

	return found
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

// global renders constants initialised with a literal as macros.
func global(node ast.Node, ctx *core.Context) (string, error) {
	if n, ok := node.(*ast.VariableDeclaration); ok && n.Const {
		if lit, ok := n.Value.(*ast.Literal); ok {
			value, err := ctx.Generate(lit)
			if err != nil {
				return "", err
			}

			ctx.AddSymbol(&core.Symbol{Name: n.Name, Type: ctx.TypeOf(lit), Value: lit, Kind: core.SymbolConstant})
			return "#define " + name(n.Name) + " " + value, nil
		}
	}

	return statement(node, ctx)
}

// declarator spells a declaration of id with type t: base type, pointer
// stars, then array dimensions. Strings are char pointers.
func declarator(t ast.Type, id string, ctx *core.Context) (string, error) {
	base := string(t.Name)
	stars := t.Pointer

	switch t.Name {
	case ast.TypeString:
		base = "char"
		stars++
	case ast.TypeBool:
		ctx.Require(core.FeatureBool)
	case ast.TypeUnknown:
		ctx.Warnf("Approximation", lexer.Position{}, "unknown type of %s taken as int", id)
		base = "int"
	}

	var str strings.Builder
	str.WriteString(base + " " + strings.Repeat("*", stars) + id)

	for _, d := range t.Dims {
		if d == nil {
			str.WriteString("[]")
			continue
		}

		size, err := ctx.Generate(d)
		if err != nil {
			return "", err
		}
		str.WriteString("[" + size + "]")
	}

	return str.String(), nil
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

func include(node ast.Node, _ *core.Context) (string, error) {
	return includeLine(node.(*ast.IncludeStatement).Header), nil
}

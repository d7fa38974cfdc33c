package c

import (
	"strings"

	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/core"
	"go.crosslang.dev/pkg/format"
	"go.crosslang.dev/pkg/generator"
	"go.crosslang.dev/pkg/lexer"
)

func quote(s string) string {
	return generator.Quote(s, '"', generator.StyleC)
}

func printStatement(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.PrintStatement)
	ctx.Require(core.FeatureIO)

	if n.Formatted {
		return printf(n, ctx)
	}

	var text strings.Builder
	var args []string

	for i, a := range n.Args {
		if i > 0 {
			text.WriteString(percent(n.Sep))
		}

		parts, ok := generator.Concat(a, ctx)
		if !ok {
			parts = []ast.Expr{a}
		}

		for _, p := range parts {
			if err := field(p, &text, &args, ctx); err != nil {
				return "", err
			}
		}
	}

	if n.Newline {
		text.WriteString("\n")
	}

	return printfCall(quote(text.String()), args), nil
}

func printfCall(text string, args []string) string {
	if len(args) == 0 {
		return "printf(" + text + ");"
	}

	return "printf(" + text + ", " + strings.Join(args, ", ") + ");"
}

func percent(s string) string {
	return strings.ReplaceAll(s, "%", "%%")
}

// field adds one printed value to the format: literals go in as text,
// everything else as a specifier chosen by type.
func field(e ast.Expr, text *strings.Builder, args *[]string, ctx *core.Context) error {
	if lit, ok := e.(*ast.Literal); ok && (lit.Type == ast.LiteralString || lit.Type == ast.LiteralChar) {
		text.WriteString(percent(lit.Value))
		return nil
	}

	// str() only matters to the concatenation
	if c, ok := e.(*ast.CallExpression); ok && c.FunctionName == "str" && c.Receiver == nil && len(c.Args) == 1 && ctx.IsBuiltin("str") {
		e = c.Args[0]
	}

	t := ctx.TypeOf(e)
	if t.IsArray() && !t.IsCharBuffer() {
		return generator.Fail(e, "printing a whole array")
	}

	if t.IsBool() {
		s, err := boolText(e, ctx)
		if err != nil {
			return err
		}

		text.WriteString("%s")
		*args = append(*args, s)
		return nil
	}

	s, err := ctx.Generate(e)
	if err != nil {
		return err
	}

	text.WriteString("%" + verb(t, ctx))
	*args = append(*args, s)
	return nil
}

// verb picks the printf conversion of a value of type t.
func verb(t ast.Type, ctx *core.Context) string {
	switch {
	case t.IsString():
		return "s"
	case generator.IsChar(t):
		return "c"
	case t.Name == ast.TypeLong && t.IsIntegral():
		return "ld"
	case t.IsIntegral():
		return "d"
	case t.IsFloating():
		return "g"
	case t.Pointer > 0:
		return "p"
	}

	ctx.Warnf("Approximation", lexer.Position{}, "value of unknown type printed with %%d")
	return "d"
}

// boolText prints a boolean the way the source language spells it.
func boolText(e ast.Expr, ctx *core.Context) (string, error) {
	cond, err := operand(e, precOr, false, ctx)
	if err != nil {
		return "", err
	}

	if ctx.Source == core.Python {
		return cond + ` ? "True" : "False"`, nil
	}

	return cond + ` ? "true" : "false"`, nil
}

// printf keeps the format, adjusting the specifiers whose values have a
// different C type than the source's format expects.
func printf(n *ast.PrintStatement, ctx *core.Context) (string, error) {
	if len(n.Args) == 0 {
		return "", generator.Fail(n, "print without a format")
	}

	lit, ok := n.Args[0].(*ast.Literal)
	if !ok || lit.Type != ast.LiteralString {
		return "", generator.Fail(n, "print format is not a literal")
	}

	f := format.Parse(lit.Value)
	values := n.Args[1:]

	if f.Arity() != len(values) {
		ctx.Warnf("Approximation", lexer.Position{}, "format %q takes %d arguments, got %d", lit.Value, f.Arity(), len(values))
	}

	// '*' widths and precisions consume an argument of their own
	var args []string
	next := 0
	for _, spec := range f.Specs() {
		for _, star := range []bool{spec.Width == "*", spec.Precision == "*"} {
			if star && next < len(values) {
				s, err := ctx.Generate(values[next])
				if err != nil {
					return "", err
				}
				args = append(args, s)
				next++
			}
		}

		if next >= len(values) {
			break
		}

		s, err := specArg(spec, values[next], ctx)
		if err != nil {
			return "", err
		}
		args = append(args, s)
		next++
	}

	for ; next < len(values); next++ {
		s, err := ctx.Generate(values[next])
		if err != nil {
			return "", err
		}
		args = append(args, s)
	}

	text := f.C()
	if n.Newline {
		text += "\n"
	}

	return printfCall(quote(text), args), nil
}

// specArg renders the value of spec, changing the conversion or casting
// the value where C's printf would misread it.
func specArg(spec *format.Spec, value ast.Expr, ctx *core.Context) (string, error) {
	t := ctx.TypeOf(value)

	switch {
	case spec.Verb == 'b' || (spec.Verb == 's' && t.IsBool()):
		spec.Verb = 's'
		return boolText(value, ctx)
	case spec.Verb == 's' && !t.IsString() && t.Known():
		v := verb(t, ctx)
		spec.Length, spec.Verb = v[:len(v)-1], v[len(v)-1]
	case spec.Integer() && t.Name == ast.TypeLong && spec.Length == "":
		spec.Length = "l"
	case spec.Integer() && t.IsFloating():
		return cast("int", value, ctx)
	case spec.Floating() && t.IsIntegral():
		return cast("double", value, ctx)
	}

	return ctx.Generate(value)
}

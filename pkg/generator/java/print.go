package java

import (
	"strings"

	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/core"
	"go.crosslang.dev/pkg/format"
	"go.crosslang.dev/pkg/generator"
	"go.crosslang.dev/pkg/lexer"
)

func quote(s string) string {
	return generator.Quote(s, '"', generator.StyleJava)
}

func printStatement(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.PrintStatement)
	if n.Formatted {
		return printf(n, ctx)
	}

	method := "print"
	if n.Newline {
		method = "println"
	}

	switch len(n.Args) {
	case 0:
		if n.Newline {
			return "System.out.println();", nil
		}
		return `System.out.print("");`, nil
	case 1:
		s, err := printArg(n.Args[0], 0, ctx)
		if err != nil {
			return "", err
		}
		return "System.out." + method + "(" + s + ");", nil
	}

	// the separators make the whole chain a string concatenation
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		s, err := printArg(a, i, ctx)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}

	return "System.out." + method + "(" + strings.Join(parts, " + "+quote(n.Sep)+" + ") + ");", nil
}

// printArg renders the i-th argument of a plain print. Arrays print their
// elements rather than their identity.
func printArg(e ast.Expr, i int, ctx *core.Context) (string, error) {
	if t := ctx.TypeOf(e); t.IsArray() && !t.IsCharBuffer() {
		s, err := ctx.Generate(e)
		if err != nil {
			return "", err
		}

		ctx.Require(core.FeatureArrays)
		if len(t.Dims) > 1 {
			return "Arrays.deepToString(" + s + ")", nil
		}
		return "Arrays.toString(" + s + ")", nil
	}

	if i == 0 {
		return operand(e, precAdditive, false, ctx)
	}

	return operand(e, precAdditive, true, ctx)
}

// printf keeps the format for System.out.printf, adjusting the specifiers
// Java's Formatter reads differently.
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

	newline := n.Newline || f.TrimNewline()
	method := "print"
	if newline {
		method = "println"
	}

	specs := f.Specs()
	switch {
	case f.Literal() && len(values) == 0:
		return "System.out." + method + "(" + quote(f.Text()) + ");", nil
	case f.Bare() && len(values) == 1 && plain(specs[0], values[0], ctx):
		s, err := ctx.Generate(values[0])
		if err != nil {
			return "", err
		}

		return "System.out." + method + "(" + s + ");", nil
	}

	if f.Arity() != len(values) {
		ctx.Warnf("Approximation", lexer.Position{}, "format %q takes %d arguments, got %d", lit.Value, f.Arity(), len(values))
	}

	args := make([]string, len(values))
	for i, v := range values {
		var err error
		if i < len(specs) {
			args[i], err = specArg(specs[i], v, ctx)
		} else {
			args[i], err = ctx.Generate(v)
		}
		if err != nil {
			return "", err
		}
	}

	for _, spec := range specs {
		if spec.Width == "*" || spec.Precision == "*" {
			return "", generator.Fail(n, "width taken from an argument")
		}
	}

	text := f.Java()
	if newline {
		text += "%n"
	}

	call := "System.out.printf(" + quote(text)
	if len(args) > 0 {
		call += ", " + strings.Join(args, ", ")
	}

	return call + ");", nil
}

// specArg renders the value of spec, casting where Java's Formatter would
// throw. An integer precision, meaning minimum digits, becomes zero padding.
func specArg(spec *format.Spec, value ast.Expr, ctx *core.Context) (string, error) {
	t := ctx.TypeOf(value)

	if spec.Integer() && spec.HasPrecision {
		ctx.Warnf("Approximation", lexer.Position{}, "precision of %s taken as zero padding", spec)
		if spec.Width == "" {
			spec.Width = spec.Precision
			if !strings.Contains(spec.Flags, "-") {
				spec.Flags += "0"
			}
		}
		spec.HasPrecision, spec.Precision = false, ""
	}

	switch {
	case spec.Integer() && generator.IsChar(t):
		return cast("int", value, ctx)
	case spec.Floating() && t.IsIntegral():
		return cast("double", value, ctx)
	}

	return ctx.Generate(value)
}

// plain reports a lone specifier that prints its value the way println does.
func plain(spec *format.Spec, value ast.Expr, ctx *core.Context) bool {
	t := ctx.TypeOf(value)

	switch spec.Verb {
	case 'd', 'i', 'u':
		return t.IsIntegral() && !generator.IsChar(t)
	case 's':
		return t.IsString()
	case 'c':
		return generator.IsChar(t)
	}

	return false
}

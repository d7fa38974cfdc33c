package python

import (
	"strings"

	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/core"
	"go.crosslang.dev/pkg/format"
	"go.crosslang.dev/pkg/generator"
	"go.crosslang.dev/pkg/lexer"
)

func printStatement(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.PrintStatement)
	if n.Formatted {
		return printf(n, ctx)
	}

	args := make([]string, 0, len(n.Args)+2)
	for _, a := range n.Args {
		s, err := printArg(a, ctx)
		if err != nil {
			return "", err
		}
		args = append(args, s)
	}

	if len(n.Args) > 1 && n.Sep != " " {
		args = append(args, "sep="+quote(n.Sep))
	}
	if !n.Newline {
		args = append(args, `end=""`)
	}

	return "print(" + strings.Join(args, ", ") + ")", nil
}

func quote(s string) string {
	return generator.Quote(s, '"', generator.StylePython)
}

func escape(s string) string {
	return generator.Escape(s, '"', generator.StylePython)
}

// printArg prints a string concatenation as an f-string.
func printArg(e ast.Expr, ctx *core.Context) (string, error) {
	if parts, ok := generator.Concat(e, ctx); ok {
		s, ok, err := fstring(parts, ctx)
		if ok || err != nil {
			return s, err
		}
	}

	return ctx.Generate(e)
}

func fstring(parts []ast.Expr, ctx *core.Context) (string, bool, error) {
	braces := strings.NewReplacer("{", "{{", "}", "}}")

	var str strings.Builder
	for _, p := range parts {
		if lit, ok := p.(*ast.Literal); ok && (lit.Type == ast.LiteralString || lit.Type == ast.LiteralChar) {
			str.WriteString(escape(braces.Replace(lit.Value)))
			continue
		}

		s, err := ctx.Generate(p)
		if err != nil {
			return "", false, err
		}

		if !fieldSafe(s) {
			return "", false, nil
		}

		str.WriteString("{" + s + "}")
	}

	return `f"` + str.String() + `"`, true, nil
}

// fieldSafe reports an expression that can sit inside a double quoted
// f-string on every Python 3 version.
func fieldSafe(s string) bool {
	return !strings.ContainsAny(s, "\"\\\n")
}

// printf renders a formatted print as an f-string, falling back on the %
// operator when the arguments do not fit one.
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

	tail := ""
	if newline := n.Newline || f.TrimNewline(); !newline {
		tail = `, end=""`
	}

	specs := f.Specs()
	switch {
	case f.Literal() && len(values) == 0:
		return "print(" + quote(f.Text()) + tail + ")", nil
	case f.Bare() && len(values) == 1 && plain(specs[0], values[0], ctx):
		s, err := ctx.Generate(values[0])
		if err != nil {
			return "", err
		}

		return "print(" + s + tail + ")", nil
	}

	args, err := generator.Exprs(values, ctx)
	if err != nil {
		return "", err
	}

	for i, spec := range specs {
		if i >= len(args) {
			break
		}

		switch spec.Verb {
		case 'c':
			if !generator.IsChar(ctx.TypeOf(values[i])) {
				args[i] = "chr(" + args[i] + ")"
			}
			spec.Verb = 's'
		case 'b':
			args[i] = "str(" + args[i] + ").lower()"
			spec.Verb = 's'
		}
	}

	safe := true
	for _, a := range args {
		safe = safe && fieldSafe(a)
	}

	if body, ok := f.Python(args, escape); ok && safe {
		return `print(f"` + body + `"` + tail + ")", nil
	}

	if f.Arity() != len(args) {
		ctx.Warnf("Approximation", lexer.Position{}, "format %q takes %d arguments, got %d", lit.Value, f.Arity(), len(args))
	}

	tuple := "()"
	if len(args) > 0 {
		tuple = "(" + strings.Join(args, ", ") + ",)"
	}

	return "print(" + quote(f.Printf((*format.Spec).Java)) + " % " + tuple + tail + ")", nil
}

// plain reports a lone specifier that prints its value the way print does.
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

package visitor

import (
	"strings"

	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/cst"
	"go.crosslang.dev/pkg/format"
	"go.crosslang.dev/pkg/parser"
)

// print lowers a call to the print builtin. An f-string or a % format as the
// only argument makes a formatted print; an end other than "\n" or "" is
// folded into the format.
func (v *python) print(call *cst.Node) *ast.PrintStatement {
	fn := call.Field("function")
	if !fn.Is(cst.KindIdentifier) || fn.Text() != "print" || v.isUser("print") {
		return nil
	}

	p := &ast.PrintStatement{Newline: true, Sep: " "}
	end := "\n"

	var positional []*cst.Node
	for _, arg := range call.Field("arguments").Children {
		if !arg.Is(cst.KindKeywordArg) {
			positional = append(positional, arg)
			continue
		}

		value := arg.Field("value")
		switch name := arg.Field("name").Text(); name {
		case "sep":
			p.Sep = v.stringArgument(value, name, " ")
		case "end":
			end = v.stringArgument(value, name, "\n")
		case "flush":
		case "file":
			if qualified(value) != "sys.stdout" {
				v.bail(arg, "print to a file")
			}
		default:
			v.bail(arg, "keyword argument")
		}
	}

	switch {
	case len(positional) == 1 && isFString(positional[0]):
		p.Formatted = true
		p.Args = v.fstringFormat(positional[0])
	case len(positional) == 1 && positional[0].Is(cst.KindBinary) &&
		positional[0].Field("operator").Text() == "%" && isPlainString(positional[0].Field("left")):
		p.Formatted = true
		p.Args = v.percentFormat(positional[0])
	default:
		p.Args = v.exprs(positional)
	}

	switch end {
	case "\n":
	case "":
		p.Newline = false
	default:
		p.Newline = false
		appendEnd(p, end)
	}

	return p
}

// stringArgument reads a literal keyword argument of print. None selects
// the default.
func (v *python) stringArgument(n *cst.Node, name, def string) string {
	if n.Is(cst.KindNull) {
		return def
	}

	if !isPlainString(n) {
		v.bail(n, "computed "+name+" argument")
	}

	text, _ := unquote(n.Text())
	return text
}

// appendEnd turns p into a formatted print whose format ends with end.
func appendEnd(p *ast.PrintStatement, end string) {
	if !p.Formatted {
		specs := make([]string, len(p.Args))
		for i := range specs {
			specs[i] = "%s"
		}

		f := &ast.Literal{Value: strings.Join(specs, escapePercent(p.Sep)), Type: ast.LiteralString}
		p.Args = append([]ast.Expr{f}, p.Args...)
		p.Formatted = true
	}

	f := p.Args[0].(*ast.Literal)
	f.Value += escapePercent(end)
}

func escapePercent(s string) string {
	return strings.ReplaceAll(s, "%", "%%")
}

func (v *python) fstring(n *cst.Node) []format.Field {
	text, _ := unquote(n.Text())

	fields, err := format.SplitFString(text)
	if err != nil {
		v.bail(n, "f-string: "+err.Error())
	}

	return fields
}

// fstringFormat converts an f-string into a printf format followed by its
// arguments. Fields without a format spec use %s; targets pick the
// conversion from the argument type.
func (v *python) fstringFormat(n *cst.Node) []ast.Expr {
	var f strings.Builder
	args := []ast.Expr{nil}

	for _, field := range v.fstring(n) {
		if field.IsText() {
			f.WriteString(escapePercent(field.Text))
			continue
		}

		arg := v.fieldExpr(n, field.Expr)
		args = append(args, arg)

		if field.Conversion == 'r' || field.Conversion == 'a' {
			v.ctx.Warnf("Approximation", n.Start, "!%c conversion of %s printed as str", field.Conversion, field.Expr)
		}

		if field.Spec == "" {
			f.WriteString("%s")
			continue
		}

		spec, notes, err := format.FromPython(field.Spec, verb(v.ctx.TypeOf(arg)))
		if err != nil {
			v.bail(n, err.Error())
		}

		for _, note := range notes {
			v.ctx.Warnf("Approximation", n.Start, "%s dropped from format spec %q", note, field.Spec)
		}

		f.WriteString(spec.String())
	}

	args[0] = &ast.Literal{Value: f.String(), Type: ast.LiteralString}
	return args
}

// fstringExpr lowers an f-string used as a value to a concatenation.
func (v *python) fstringExpr(n *cst.Node) ast.Expr {
	var parts []ast.Expr

	for _, field := range v.fstring(n) {
		if field.IsText() {
			parts = append(parts, &ast.Literal{Value: field.Text, Type: ast.LiteralString})
			continue
		}

		if field.Spec != "" {
			v.bail(n, "format spec outside print")
		}

		arg := v.fieldExpr(n, field.Expr)
		if !v.ctx.TypeOf(arg).IsString() {
			arg = builtin("str", arg)
		}
		parts = append(parts, arg)
	}

	if len(parts) == 0 {
		return &ast.Literal{Type: ast.LiteralString}
	}

	expr := parts[0]
	for _, part := range parts[1:] {
		expr = &ast.BinaryExpression{Operator: ast.BinaryAddition, Left: expr, Right: part}
	}

	return expr
}

// fieldExpr parses the expression of a replacement field.
func (v *python) fieldExpr(n *cst.Node, src string) ast.Expr {
	root, err := parser.NewPython().Parse(src)
	if err != nil || len(root.Children) != 1 || !root.Children[0].Is(cst.KindExpressionStatement) {
		v.bail(n, "f-string expression")
	}

	return v.expr(root.Children[0].Children[0])
}

// percentFormat lowers "fmt" % args.
func (v *python) percentFormat(n *cst.Node) []ast.Expr {
	text, _ := unquote(n.Field("left").Text())

	values := []*cst.Node{n.Field("right")}
	if right := n.Field("right"); right.Is(cst.KindTuple) {
		values = right.Children
	}

	if format.Parse(text).Arity() != len(values) {
		v.bail(n, "format argument count")
	}

	args := []ast.Expr{&ast.Literal{Value: text, Type: ast.LiteralString}}
	return append(args, v.exprs(values)...)
}

// verb picks the printf conversion for a value of type t.
func verb(t ast.Type) byte {
	switch {
	case t.Name == ast.TypeChar && !t.IsArray():
		return 'c'
	case t.IsIntegral():
		return 'd'
	case t.IsFloating():
		return 'g'
	}

	return 's'
}

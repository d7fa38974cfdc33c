// Package generator holds what the text backends share: statement
// rendering with graceful degradation, indentation, operator precedence,
// string escaping and the analyses behind loop and print lowering.
package generator

import (
	"errors"
	"strings"

	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/core"
	"go.crosslang.dev/pkg/lexer"
)

// Statement renders one node in statement position.
type Statement func(node ast.Node, ctx *core.Context) (string, error)

// Render renders nodes one after the other. A node that fails to render is
// replaced by the target's placeholder and a warning; nodes rendering to
// nothing are dropped.
func Render(nodes []ast.Node, ctx *core.Context, stmt Statement) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		text, err := stmt(n, ctx)
		if err != nil {
			text = Degrade(err, ctx)
		}

		if text != "" {
			out = append(out, text)
		}
	}

	return out
}

// Degrade records err as a warning and renders a placeholder in its place.
func Degrade(err error, ctx *core.Context) string {
	reason := err.Error()

	var cerr core.Error
	if errors.As(err, &cerr) {
		ctx.Warn(core.WarningFrom(cerr))
		reason = cerr.Message()
	} else {
		ctx.Warnf("Generation", lexer.Position{}, "%v", err)
	}

	text, err := ctx.Generate(&ast.Placeholder{Reason: reason})
	if err != nil {
		return ""
	}

	return text
}

// Block renders the statements of a nested block in its own scope, indented
// one level.
func Block(nodes []ast.Node, ctx *core.Context, stmt Statement) []string {
	inner := ctx.Block()

	lines := Render(nodes, inner, stmt)
	for i, l := range lines {
		lines[i] = Indent(l, ctx.Indent)
	}

	return lines
}

// Indent prefixes every non-empty line of s.
func Indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}

	return strings.Join(lines, "\n")
}

// Prefix renders text as comment lines starting with marker.
func Prefix(text, marker string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, l := range lines {
		if l == "" {
			lines[i] = marker
		} else {
			lines[i] = marker + " " + l
		}
	}

	return strings.Join(lines, "\n")
}

// Fail builds the error of a node the target cannot express.
func Fail(node ast.Node, msg string) error {
	return &core.GenerationError{Node: node.Kind().String(), Msg: msg}
}

// Unsupported builds the error of a construct the target lacks.
func Unsupported(construct string, ctx *core.Context) error {
	return &core.UnsupportedError{Construct: construct + " in " + ctx.Target.DisplayName()}
}

// Exprs renders a list of expressions.
func Exprs(list []ast.Expr, ctx *core.Context) ([]string, error) {
	out := make([]string, 0, len(list))
	for _, e := range list {
		s, err := ctx.Generate(e)
		if err != nil {
			return nil, err
		}

		out = append(out, s)
	}

	return out, nil
}

// Rank gives the binding strength of an expression in one target. Higher
// binds tighter.
type Rank func(e ast.Expr) int

// Atom is the rank of names, literals, calls and everything else that never
// needs parentheses.
const Atom = 100

// Operand renders e as an operand of an operator binding with prec. Looser
// operands are parenthesised; so are right operands of equal rank, every
// binary operator being left associative.
func Operand(e ast.Expr, prec int, right bool, rank Rank, ctx *core.Context) (string, error) {
	s, err := ctx.Generate(e)
	if err != nil {
		return "", err
	}

	if r := rank(e); r < prec || (right && r == prec) {
		return "(" + s + ")", nil
	}

	return s, nil
}

// Assigned collects the names nodes assign to, including increments.
func Assigned(nodes []ast.Node) map[string]bool {
	names := make(map[string]bool)

	ast.InspectAll(nodes, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.AssignmentExpression:
			if id, ok := n.Left.(*ast.Identifier); ok {
				names[id.Name] = true
			}
		case *ast.UnaryExpression:
			if n.Operator == ast.UnaryIncrement || n.Operator == ast.UnaryDecrement {
				if id, ok := n.Operand.(*ast.Identifier); ok {
					names[id.Name] = true
				}
			}
		}
		return true
	})

	return names
}

// Declared collects the names nodes declare.
func Declared(nodes []ast.Node) map[string]bool {
	names := make(map[string]bool)

	ast.InspectAll(nodes, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.VariableDeclaration:
			names[n.Name] = true
		case *ast.ArrayDeclaration:
			names[n.Name] = true
		case *ast.LoopStatement:
			if n.LoopVar != "" {
				names[n.LoopVar] = true
			}
		}
		return true
	})

	return names
}

// HasContinue reports a continue that belongs to the loop owning body.
func HasContinue(body []ast.Node) bool {
	found := false

	ast.InspectAll(body, func(n ast.Node) bool {
		switch n.(type) {
		case *ast.ContinueStatement:
			found = true
		case *ast.LoopStatement, *ast.FunctionDeclaration:
			return false
		}
		return !found
	})

	return found
}

// Comments reports whether every rendered line is a comment starting with
// marker.
func Comments(lines []string, marker string) bool {
	for _, block := range lines {
		for _, l := range strings.Split(block, "\n") {
			if l = strings.TrimSpace(l); l != "" && !strings.HasPrefix(l, marker) {
				return false
			}
		}
	}

	return true
}

// Declare records a declaration in ctx as it is generated.
func Declare(ctx *core.Context, name string, t ast.Type, value ast.Expr) {
	kind := core.SymbolVariable
	if t.IsArray() {
		kind = core.SymbolArray
	}

	ctx.AddSymbol(&core.Symbol{Name: name, Type: t, Value: value, Kind: kind})
}

// ElementType returns the element type of the values of an array literal
// when t is unknown.
func ElementType(t ast.Type, values []ast.Expr, ctx *core.Context) ast.Type {
	if t.Known() {
		return t
	}

	elem := ctx.TypeOf(&ast.ArrayLiteral{Elements: values})
	elem.Dims = nil

	return elem
}

// DeclareFunctions records the signatures of fns so that calls made before
// a definition know their result type.
func DeclareFunctions(fns []*ast.FunctionDeclaration, ctx *core.Context) {
	for _, fn := range fns {
		params := make([]ast.Type, len(fn.Parameters))
		for i, p := range fn.Parameters {
			params[i] = p.Type
		}

		ctx.AddSymbol(&core.Symbol{Name: fn.Name, Type: fn.ReturnType, Kind: core.SymbolFunction, Params: params})
	}
}

// Function returns the context for the body of fn, with its parameters
// declared.
func Function(fn *ast.FunctionDeclaration, ctx *core.Context) *core.Context {
	inner := ctx.Nested(ctx.Scope)
	inner.CurrentFunction = fn.Name

	for _, p := range fn.Parameters {
		inner.AddSymbol(&core.Symbol{Name: p.Name, Type: p.Type, Kind: core.SymbolParameter})
	}

	return inner
}

// InMain reports whether ctx renders the body of the entry point.
func InMain(ctx *core.Context) bool {
	return ctx.CurrentFunction == ""
}

// IsChar reports a single character value.
func IsChar(t ast.Type) bool {
	return t.Name == ast.TypeChar && !t.IsArray() && t.Pointer == 0
}

// NonNegative reports an integer expression that cannot be negative: a
// literal, a length or a counter running up from a non-negative start.
func NonNegative(e ast.Expr, ctx *core.Context) bool {
	switch e := e.(type) {
	case *ast.Literal, *ast.UnaryExpression:
		v, ok := IntValue(e)
		return ok && v >= 0
	case *ast.Identifier:
		sym := ctx.GetSymbol(e.Name)
		return sym != nil && sym.Kind == core.SymbolCounter
	case *ast.CallExpression:
		return e.Receiver == nil && e.FunctionName == "len" && ctx.IsBuiltin("len")
	case *ast.Attribute:
		return e.Attribute == "length"
	}

	return false
}

// FloorsRemainder reports a Python remainder of integers that may be
// negative, where Python floors and the C family truncates.
func FloorsRemainder(left, right ast.Expr, ctx *core.Context) bool {
	if ctx.Source != core.Python || !ctx.IsIntegral(left) || !ctx.IsIntegral(right) {
		return false
	}

	return !NonNegative(left, ctx) || !NonNegative(right, ctx)
}

// Join renders a list of expressions separated by commas.
func Join(list []ast.Expr, ctx *core.Context) (string, error) {
	parts, err := Exprs(list, ctx)
	if err != nil {
		return "", err
	}

	return strings.Join(parts, ", "), nil
}

// Braces renders a block in braces after head.
func Braces(head string, body []ast.Node, ctx *core.Context, stmt Statement) string {
	lines := Block(body, ctx, stmt)
	if len(lines) == 0 {
		return head + " {\n}"
	}

	return head + " {\n" + strings.Join(lines, "\n") + "\n}"
}

// SlashComment renders a comment in C syntax.
func SlashComment(c *ast.Comment) string {
	if !c.IsBlock {
		return Prefix(c.Text, "//")
	}

	text := strings.TrimRight(c.Text, "\n")
	if !strings.Contains(text, "\n") {
		return "/* " + text + " */"
	}

	return "/*\n" + Prefix(text, " *") + "\n */"
}

// Note is the comment text of a placeholder: its reason, then the source
// it stands for.
func Note(p *ast.Placeholder) string {
	if p.Text == "" {
		return p.Reason
	}

	return p.Reason + "\n" + p.Text
}

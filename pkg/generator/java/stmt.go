package java

import (
	"strings"

	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/core"
	"go.crosslang.dev/pkg/generator"
)

// zero is the value of a declaration without an initialiser. Java rejects
// reads of unassigned locals, so every declaration gets one.
func zero(t ast.Type) string {
	switch {
	case t.IsCharBuffer():
		return `""`
	case t.IsArray() || t.IsReference():
		return "null"
	case generator.IsChar(t):
		return `'\0'`
	case t.IsBool():
		return "false"
	case t.Name == ast.TypeFloat:
		return "0.0f"
	case t.IsFloating():
		return "0.0"
	}

	return "0"
}

func variableDeclaration(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.VariableDeclaration)

	t := n.Type
	if !t.Known() && n.Value != nil {
		t = ctx.TypeOf(n.Value)
	}

	typ := "var"
	if t.Known() || n.Value == nil {
		typ = typeName(t, ctx)
	}

	value := zero(t)
	if n.Value != nil {
		var err error
		if value, err = coerce(t, n.Value, ctx); err != nil {
			return "", err
		}
	}

	prefix := ""
	if n.Const {
		prefix = "final "
	}

	generator.Declare(ctx, n.Name, t, n.Value)
	return prefix + typ + " " + name(n.Name) + " = " + value + ";", nil
}

func arrayDeclaration(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.ArrayDeclaration)

	elem := generator.ElementType(n.ElementType, n.Values, ctx)
	t := elem
	t.Dims = make([]ast.Expr, n.Rank())
	copy(t.Dims, n.Sizes)

	var value string
	switch {
	case len(n.Values) > 0:
		values := n.Values

		// a C initialiser shorter than the array leaves the rest zeroed
		if size, ok := generator.IntValue(first(n.Sizes)); ok && len(n.Sizes) == 1 {
			for int64(len(values)) < size {
				values = append(values[:len(values):len(values)], zeroLiteral(elem))
			}
		}

		init, err := initializer(values, elem, ctx)
		if err != nil {
			return "", err
		}
		value = init
	case t.IsCharBuffer():
		value = `""`
	default:
		sizes, err := dims(n.Sizes, ctx)
		if err != nil {
			return "", err
		}
		value = "new " + typeName(elem, ctx) + sizes
	}

	generator.Declare(ctx, n.Name, t, nil)
	return typeName(t, ctx) + " " + name(n.Name) + " = " + value + ";", nil
}

func first(list []ast.Expr) ast.Expr {
	if len(list) == 0 {
		return nil
	}

	return list[0]
}

// zeroLiteral pads short initialisers.
func zeroLiteral(t ast.Type) ast.Expr {
	switch {
	case generator.IsChar(t):
		return &ast.Literal{Type: ast.LiteralChar}
	case t.IsBool():
		return &ast.Literal{Value: "false", Type: ast.LiteralBool}
	case t.IsFloating():
		return &ast.Literal{Value: "0.0", Type: ast.LiteralFloat}
	case t.IsIntegral():
		return &ast.Literal{Value: "0", Type: ast.LiteralInt}
	}

	return &ast.Literal{Type: ast.LiteralNull}
}

// dims renders the sizes of an array creation expression; a missing size
// makes an empty array.
func dims(sizes []ast.Expr, ctx *core.Context) (string, error) {
	if len(sizes) == 0 {
		return "[0]", nil
	}

	var str strings.Builder
	for _, s := range sizes {
		if s == nil {
			str.WriteString("[0]")
			continue
		}

		size, err := ctx.Generate(s)
		if err != nil {
			return "", err
		}
		str.WriteString("[" + size + "]")
	}

	return str.String(), nil
}

func conditional(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.ConditionalStatement)

	cond, err := truth(n.Condition, precAssign, ctx)
	if err != nil {
		return "", err
	}

	var str strings.Builder
	str.WriteString(generator.Braces("if ("+cond+")", n.Then, ctx, statement))

	for _, elif := range n.Elifs {
		cond, err := truth(elif.Condition, precAssign, ctx)
		if err != nil {
			return "", err
		}

		str.WriteString(" " + generator.Braces("else if ("+cond+")", elif.Then, ctx, statement))
	}

	if len(n.Else) > 0 {
		str.WriteString(" " + generator.Braces("else", n.Else, ctx, statement))
	}

	return str.String(), nil
}

func condition(e ast.Expr, ctx *core.Context) (string, error) {
	if e == nil {
		return "true", nil
	}

	return truth(e, precAssign, ctx)
}

func loop(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.LoopStatement)

	switch {
	case n.IsIteration():
		return forEach(n, ctx)
	case n.Loop == ast.LoopFor:
		return forLoop(n, ctx)
	case n.Loop == ast.LoopDoWhile:
		cond, err := condition(n.Condition, ctx)
		if err != nil {
			return "", err
		}

		return generator.Braces("do", n.Body, ctx, statement) + " while (" + cond + ");", nil
	}

	cond, err := condition(n.Condition, ctx)
	if err != nil {
		return "", err
	}

	return generator.Braces("while ("+cond+")", n.Body, ctx, statement), nil
}

func forEach(n *ast.LoopStatement, ctx *core.Context) (string, error) {
	t := ctx.TypeOf(n.Iterable)

	iter, err := operand(n.Iterable, generator.Atom, false, ctx)
	if err != nil {
		return "", err
	}

	if t.IsString() {
		iter += ".toCharArray()"
	}

	elem := t.Element()
	typ := "var"
	if elem.Known() {
		typ = typeName(elem, ctx)
	}

	inner := ctx.Block()
	generator.Declare(inner, n.LoopVar, elem, nil)

	return generator.Braces("for ("+typ+" "+name(n.LoopVar)+" : "+iter+")", n.Body, inner, statement), nil
}

// forLoop keeps the three clauses. The init is declared in a scope of its
// own, as Java scopes it to the loop.
func forLoop(n *ast.LoopStatement, ctx *core.Context) (string, error) {
	inner := ctx.Block()

	var init, cond, update string
	var err error

	if n.Init != nil {
		if init, err = statement(n.Init, inner); err != nil {
			return "", err
		}
		init = strings.TrimSuffix(init, ";")
	}

	if r, ok := generator.CountedRange(n, inner); ok {
		generator.DeclareCounter(r, inner)
	}

	if n.Condition != nil {
		if cond, err = truth(n.Condition, precAssign, inner); err != nil {
			return "", err
		}
	}

	if n.Update != nil {
		if update, err = inner.Generate(n.Update); err != nil {
			return "", err
		}
	}

	head := "for (" + init + ";"
	if cond != "" {
		head += " " + cond
	}
	head += ";"
	if update != "" {
		head += " " + update
	}
	head += ")"

	return generator.Braces(head, n.Body, inner, statement), nil
}

func function(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.FunctionDeclaration)
	inner := generator.Function(n, ctx)

	params := make([]string, len(n.Parameters))
	for i, p := range n.Parameters {
		params[i] = typeName(p.Type, inner) + " " + name(p.Name)
	}

	head := "static " + typeName(n.ReturnType, inner) + " " + name(n.Name) + "(" + strings.Join(params, ", ") + ")"
	return generator.Braces(head, n.Body, inner, statement), nil
}

func returnStatement(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.ReturnStatement)

	if generator.InMain(ctx) {
		if n.Value == nil {
			return "return;", nil
		}

		value, err := ctx.Generate(n.Value)
		if err != nil {
			return "", err
		}

		return "System.exit(" + value + ");", nil
	}

	if n.Value == nil {
		return "return;", nil
	}

	var value string
	var err error
	if sym := ctx.GetSymbol(ctx.CurrentFunction); sym != nil && sym.Kind == core.SymbolFunction && sym.Type.Known() {
		value, err = coerce(sym.Type, n.Value, ctx)
	} else {
		value, err = ctx.Generate(n.Value)
	}
	if err != nil {
		return "", err
	}

	return "return " + value + ";", nil
}

package c

import (
	"strings"

	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/core"
	"go.crosslang.dev/pkg/generator"
	"go.crosslang.dev/pkg/lexer"
)

func variableDeclaration(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.VariableDeclaration)

	t := n.Type
	if !t.Known() && n.Value != nil {
		t = ctx.TypeOf(n.Value)
	}

	decl, err := declarator(t, name(n.Name), ctx)
	if err != nil {
		return "", err
	}

	if n.Const {
		decl = "const " + decl
	}

	generator.Declare(ctx, n.Name, t, n.Value)

	if n.Value == nil {
		return decl + ";", nil
	}

	if _, ok := generator.Concat(n.Value, ctx); ok {
		return "", generator.Fail(n, "string concatenation in C")
	}

	value, err := ctx.Generate(n.Value)
	if err != nil {
		return "", err
	}

	return decl + " = " + value + ";", nil
}

func arrayDeclaration(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.ArrayDeclaration)

	elem := generator.ElementType(n.ElementType, n.Values, ctx)
	t := elem
	t.Dims = dims(n)

	decl, err := declarator(t, name(n.Name), ctx)
	if err != nil {
		return "", err
	}

	generator.Declare(ctx, n.Name, t, nil)

	switch {
	case len(n.Values) > 0:
		init, err := generator.Join(n.Values, ctx)
		if err != nil {
			return "", err
		}
		return decl + " = {" + init + "};", nil
	case ctx.Source == core.C || t.IsCharBuffer():
		return decl + ";", nil
	case constant(n.Sizes):
		return decl + " = {0};", nil
	}

	// variable length arrays take no initialiser
	ctx.Require(core.FeatureString)
	return decl + ";\nmemset(" + name(n.Name) + ", 0, sizeof(" + name(n.Name) + "));", nil
}

// dims returns the dimensions of an array declaration. Without sizes the
// outer one is left to the initialiser and the inner ones are read from
// the first nested literal.
func dims(n *ast.ArrayDeclaration) []ast.Expr {
	if len(n.Sizes) > 0 {
		return append([]ast.Expr(nil), n.Sizes...)
	}

	out := []ast.Expr{nil}
	values := n.Values
	for len(values) > 0 {
		inner, ok := values[0].(*ast.ArrayLiteral)
		if !ok {
			break
		}

		out = append(out, generator.IntLiteral(int64(len(inner.Elements))))
		values = inner.Elements
	}

	return out
}

func constant(sizes []ast.Expr) bool {
	if len(sizes) == 0 {
		return false
	}

	for _, s := range sizes {
		if _, ok := generator.IntValue(s); !ok {
			return false
		}
	}

	return true
}

func conditional(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.ConditionalStatement)

	cond, err := condition(n.Condition, ctx)
	if err != nil {
		return "", err
	}

	var str strings.Builder
	str.WriteString(generator.Braces("if ("+cond+")", n.Then, ctx, statement))

	for _, elif := range n.Elifs {
		cond, err := condition(elif.Condition, ctx)
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
		return "1", nil
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

// forEach walks an array or a string with an index, declaring the loop
// variable as the first statement of the body.
func forEach(n *ast.LoopStatement, ctx *core.Context) (string, error) {
	t := ctx.TypeOf(n.Iterable)
	if !t.IsArray() && !t.IsString() {
		return "", generator.Fail(n, "iteration over something other than an array or a string")
	}

	if id, ok := n.Iterable.(*ast.Identifier); ok {
		if sym := ctx.GetSymbol(id.Name); sym != nil && sym.Kind == core.SymbolParameter && !t.IsString() {
			ctx.Warnf("Approximation", lexer.Position{}, "length of parameter %s taken with sizeof", id.Name)
		}
	}

	inner := ctx.Block()
	index := fresh(n.LoopVar, inner)
	generator.Declare(inner, index, ast.Named(ast.TypeInt), nil)
	i := &ast.Identifier{Name: index}

	var cond ast.Expr
	if t.IsString() {
		cond = &ast.ComparisonExpression{
			Operator: ast.CompareNotEqual,
			Left:     &ast.Subscript{Array: n.Iterable, Index: i},
			Right:    &ast.Literal{Type: ast.LiteralChar},
		}
	} else {
		cond = &ast.ComparisonExpression{
			Operator: ast.CompareLess,
			Left:     i,
			Right:    &ast.CallExpression{FunctionName: "len", Args: []ast.Expr{n.Iterable}},
		}
	}

	body := append([]ast.Node{&ast.VariableDeclaration{
		Name:  n.LoopVar,
		Type:  t.Element(),
		Value: &ast.Subscript{Array: n.Iterable, Index: i},
	}}, n.Body...)

	return forLoop(&ast.LoopStatement{
		Loop:      ast.LoopFor,
		Init:      &ast.VariableDeclaration{Name: index, Type: ast.Named(ast.TypeInt), Value: generator.IntLiteral(0)},
		Condition: cond,
		Update:    &ast.UnaryExpression{Operator: ast.UnaryIncrement, Operand: i, Postfix: true},
		Body:      body,
	}, ctx)
}

// fresh picks an index name the loop does not use.
func fresh(loopVar string, ctx *core.Context) string {
	for _, candidate := range []string{"i", "j", "k"} {
		if candidate != loopVar && !ctx.HasSymbol(candidate) {
			return candidate
		}
	}

	return loopVar + "_i"
}

// forLoop keeps the three clauses, the init scoped to the loop.
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

// signature renders the head of a function; ctx is the function's own.
func signature(fn *ast.FunctionDeclaration, ctx *core.Context) string {
	params := make([]string, len(fn.Parameters))
	for i, p := range fn.Parameters {
		decl, err := declarator(p.Type, name(p.Name), ctx)
		if err != nil {
			decl = "int " + name(p.Name)
		}
		params[i] = decl
	}

	head, err := declarator(fn.ReturnType, name(fn.Name), ctx)
	if err != nil {
		head = "int " + name(fn.Name)
	}

	return head + "(" + strings.Join(params, ", ") + ")"
}

func function(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.FunctionDeclaration)
	inner := generator.Function(n, ctx)

	return generator.Braces(signature(n, inner), n.Body, inner, statement), nil
}

func returnStatement(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.ReturnStatement)

	if n.Value == nil {
		if generator.InMain(ctx) {
			return "return 0;", nil
		}
		return "return;", nil
	}

	value, err := ctx.Generate(n.Value)
	if err != nil {
		return "", err
	}

	return "return " + value + ";", nil
}

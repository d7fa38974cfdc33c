package python

import (
	"sort"
	"strings"

	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/core"
	"go.crosslang.dev/pkg/generator"
)

// zero is the value of a declaration without an initialiser.
func zero(t ast.Type) string {
	switch {
	case t.IsCharBuffer(), generator.IsChar(t):
		return `""`
	case t.IsArray():
		return "[]"
	case t.IsBool():
		return "False"
	case t.IsIntegral():
		return "0"
	case t.IsFloating():
		return "0.0"
	}

	return "None"
}

func variableDeclaration(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.VariableDeclaration)

	t := n.Type
	if !t.Known() && n.Value != nil {
		t = ctx.TypeOf(n.Value)
	}

	value := zero(t)
	if n.Value != nil {
		var err error
		if value, err = assigned(t, n.Value, ctx); err != nil {
			return "", err
		}
	}

	generator.Declare(ctx, n.Name, t, n.Value)
	return name(n.Name) + " = " + value, nil
}

// assigned renders a value stored into a variable of type t. Numbers stored
// into characters become one character strings.
func assigned(t ast.Type, value ast.Expr, ctx *core.Context) (string, error) {
	s, err := ctx.Generate(value)
	if err != nil {
		return "", err
	}

	v := ctx.TypeOf(value)
	if generator.IsChar(t) && v.IsIntegral() && !generator.IsChar(v) {
		return "chr(" + s + ")", nil
	}

	return s, nil
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
		values, err := generator.Exprs(n.Values, ctx)
		if err != nil {
			return "", err
		}

		// a C initialiser shorter than the array leaves the rest zeroed
		if size, ok := generator.IntValue(first(n.Sizes)); ok && len(n.Sizes) == 1 {
			for int64(len(values)) < size {
				values = append(values, zero(elem))
			}
		}

		value = "[" + strings.Join(values, ", ") + "]"
	case t.IsCharBuffer():
		value = `""`
	default:
		var err error
		if value, err = sized(n.Sizes, zero(elem), ctx); err != nil {
			return "", err
		}
	}

	generator.Declare(ctx, n.Name, t, nil)
	return name(n.Name) + " = " + value, nil
}

func first(list []ast.Expr) ast.Expr {
	if len(list) == 0 {
		return nil
	}

	return list[0]
}

// sized builds a list of lists filled with fill. Inner lists are built one
// per row so that rows are not shared.
func sized(sizes []ast.Expr, fill string, ctx *core.Context) (string, error) {
	for _, s := range sizes {
		if s == nil {
			return "[]", nil
		}
	}

	last, err := operand(sizes[len(sizes)-1], precMultiplicative, true, ctx)
	if err != nil {
		return "", err
	}

	expr := "[" + fill + "] * " + last
	for i := len(sizes) - 2; i >= 0; i-- {
		size, err := ctx.Generate(sizes[i])
		if err != nil {
			return "", err
		}

		expr = "[" + expr + " for _ in range(" + size + ")]"
	}

	return expr, nil
}

func assignment(n *ast.AssignmentExpression, ctx *core.Context) (string, error) {
	left, err := ctx.Generate(n.Left)
	if err != nil {
		return "", err
	}

	if sub, ok := n.Left.(*ast.Subscript); ok && ctx.TypeOf(sub.Array).IsString() {
		return "", generator.Fail(n, "assignment to a character of an immutable string")
	}

	t := ctx.TypeOf(n.Left)
	if generator.IsChar(t) && n.Operator != ast.Assign {
		return assignment(n.Expand(), ctx)
	}

	if n.Operator == ast.Assign {
		// a = b = c
		if inner, ok := n.Right.(*ast.AssignmentExpression); ok && inner.Operator == ast.Assign {
			rest, err := assignment(inner, ctx)
			if err != nil {
				return "", err
			}

			return left + " = " + rest, nil
		}

		value, err := assigned(t, n.Right, ctx)
		if err != nil {
			return "", err
		}

		return left + " = " + value, nil
	}

	op := string(n.Operator)
	switch n.Operator {
	case ast.AssignDivide, ast.AssignModulo:
		if truncates(n.Left, n.Right, ctx) {
			return assignment(n.Expand(), ctx)
		}
		if n.Operator == ast.AssignDivide {
			op = "/="
			if ctx.IsIntegral(n.Left) && ctx.IsIntegral(n.Right) {
				op = "//="
			}
		}
	case ast.AssignTrueDivide:
		op = "/="
	case ast.AssignAdd:
		if t.IsString() && !ctx.TypeOf(n.Right).IsString() && !generator.IsChar(ctx.TypeOf(n.Right)) {
			value, err := text(n.Right, false, ctx)
			if err != nil {
				return "", err
			}

			return left + " += " + value, nil
		}
	}

	value, err := ctx.Generate(n.Right)
	if err != nil {
		return "", err
	}

	return left + " " + op + " " + value, nil
}

func conditional(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.ConditionalStatement)

	cond, err := ctx.Generate(n.Condition)
	if err != nil {
		return "", err
	}

	var str strings.Builder
	str.WriteString("if " + cond + ":\n" + suite(n.Then, ctx))

	for _, elif := range n.Elifs {
		cond, err := ctx.Generate(elif.Condition)
		if err != nil {
			return "", err
		}

		str.WriteString("\nelif " + cond + ":\n" + suite(elif.Then, ctx))
	}

	if len(n.Else) > 0 {
		str.WriteString("\nelse:\n" + suite(n.Else, ctx))
	}

	return str.String(), nil
}

func loop(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.LoopStatement)

	switch {
	case n.IsIteration():
		iter, err := ctx.Generate(n.Iterable)
		if err != nil {
			return "", err
		}

		inner := ctx.Block()
		generator.Declare(inner, n.LoopVar, ctx.TypeOf(n.Iterable).Element(), nil)

		return "for " + name(n.LoopVar) + " in " + iter + ":\n" + suite(n.Body, inner), nil
	case n.Loop == ast.LoopDoWhile:
		return doWhile(n, ctx)
	case n.Loop == ast.LoopFor:
		// range leaves the variable on the last value rather than the
		// bound, which only matters when it outlives the loop
		_, scoped := n.Init.(*ast.VariableDeclaration)
		scoped = scoped || ctx.Source == core.Python
		if r, ok := generator.CountedRange(n, ctx); ok && scoped {
			return forRange(n, r, ctx)
		}
		return forWhile(n, ctx)
	}

	cond := "True"
	if n.Condition != nil {
		var err error
		if cond, err = ctx.Generate(n.Condition); err != nil {
			return "", err
		}
	}

	return "while " + cond + ":\n" + suite(n.Body, ctx), nil
}

func forRange(n *ast.LoopStatement, r *generator.Range, ctx *core.Context) (string, error) {
	var bounds []ast.Expr
	if !r.IsSimple() {
		bounds = append(bounds, r.Start)
	}
	bounds = append(bounds, r.Stop)
	if r.Step != 1 {
		bounds = append(bounds, generator.IntLiteral(r.Step))
	}

	args, err := generator.Join(bounds, ctx)
	if err != nil {
		return "", err
	}

	inner := ctx.Block()
	generator.Declare(inner, r.Var, ast.Named(ast.TypeInt), nil)
	generator.DeclareCounter(r, inner)

	return "for " + name(r.Var) + " in range(" + args + "):\n" + suite(n.Body, inner), nil
}

// forWhile lowers a for loop that is not a plain count into its init and a
// while loop ending with the update.
func forWhile(n *ast.LoopStatement, ctx *core.Context) (string, error) {
	var lines []string
	if n.Init != nil {
		init, err := statement(n.Init, ctx)
		if err != nil {
			return "", err
		}
		lines = append(lines, init)
	}

	cond := "True"
	if n.Condition != nil {
		var err error
		if cond, err = ctx.Generate(n.Condition); err != nil {
			return "", err
		}
	}

	body := n.Body
	if n.Update != nil {
		body = append(beforeContinue(n.Body, n.Update), n.Update)
	}

	lines = append(lines, "while "+cond+":\n"+suite(body, ctx))
	return strings.Join(lines, "\n"), nil
}

// doWhile runs the body once before the first test, which sits at the
// bottom of an endless loop.
func doWhile(n *ast.LoopStatement, ctx *core.Context) (string, error) {
	body := n.Body
	if n.Condition != nil {
		exit := &ast.ConditionalStatement{Condition: ast.Not(n.Condition), Then: []ast.Node{&ast.BreakStatement{}}}
		body = append(beforeContinue(n.Body, exit), exit)
	}

	return "while True:\n" + suite(body, ctx), nil
}

// beforeContinue copies body with stmt ahead of every continue belonging to
// the loop, for the parts of a C loop that a lowered continue would skip.
func beforeContinue(body []ast.Node, stmt ast.Node) []ast.Node {
	if !generator.HasContinue(body) {
		return append([]ast.Node(nil), body...)
	}

	out := make([]ast.Node, 0, len(body))
	for _, node := range body {
		switch n := node.(type) {
		case *ast.ContinueStatement:
			out = append(out, stmt, n)
		case *ast.ConditionalStatement:
			c := *n
			c.Then = beforeContinue(n.Then, stmt)
			c.Elifs = make([]ast.ElifBranch, len(n.Elifs))
			for i, elif := range n.Elifs {
				elif.Then = beforeContinue(elif.Then, stmt)
				c.Elifs[i] = elif
			}
			c.Else = beforeContinue(n.Else, stmt)
			out = append(out, &c)
		default:
			out = append(out, node)
		}
	}

	return out
}

func function(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.FunctionDeclaration)
	inner := generator.Function(n, ctx)

	params := make([]string, len(n.Parameters))
	for i, p := range n.Parameters {
		params[i] = name(p.Name)
	}

	lines := generator.Block(n.Body, inner, statement)
	if shared := globals(n, ctx); len(shared) > 0 {
		lines = append([]string{ctx.Indent + "global " + strings.Join(shared, ", ")}, lines...)
	}
	if generator.Comments(lines, "#") {
		lines = append(lines, ctx.Indent+"pass")
	}

	head := "def " + name(n.Name) + "(" + strings.Join(params, ", ") + "):"
	return head + "\n" + strings.Join(lines, "\n"), nil
}

// globals lists the module level variables fn assigns, which Python would
// otherwise treat as locals.
func globals(fn *ast.FunctionDeclaration, ctx *core.Context) []string {
	declared := generator.Declared(fn.Body)
	for _, p := range fn.Parameters {
		declared[p.Name] = true
	}

	var names []string
	for n := range generator.Assigned(fn.Body) {
		if declared[n] {
			continue
		}

		if sym := ctx.GetSymbol(n); sym != nil && sym.Kind != core.SymbolFunction {
			names = append(names, name(n))
		}
	}
	sort.Strings(names)

	return names
}

func returnStatement(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.ReturnStatement)

	value := ""
	if n.Value != nil {
		var err error
		if value, err = ctx.Generate(n.Value); err != nil {
			return "", err
		}
	}

	if generator.InMain(ctx) {
		ctx.Require(core.FeatureSys)
		return "sys.exit(" + value + ")", nil
	}

	if value == "" {
		return "return", nil
	}

	return "return " + value, nil
}

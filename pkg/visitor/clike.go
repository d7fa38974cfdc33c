package visitor

import (
	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/core"
	"go.crosslang.dev/pkg/cst"
)

// clike lowers the statements and expressions C and Java share. The
// dialect specific parts live in c.go and java.go.
type clike struct {
	base
	java bool
}

var arithmeticOperators = map[string]ast.BinaryOp{
	"+": ast.BinaryAddition,
	"-": ast.BinarySubtraction,
	"*": ast.BinaryMultiplication,
	"/": ast.BinaryDivision,
	"%": ast.BinaryModulo,
}

var assignOperators = map[string]ast.AssignOp{
	"=":   ast.Assign,
	"+=":  ast.AssignAdd,
	"-=":  ast.AssignSubtract,
	"*=":  ast.AssignMultiply,
	"/=":  ast.AssignDivide,
	"%=":  ast.AssignModulo,
	"&=":  ast.AssignBitAnd,
	"|=":  ast.AssignBitOr,
	"^=":  ast.AssignBitXor,
	"<<=": ast.AssignShiftLeft,
	">>=": ast.AssignShiftRight,
}

func (v *clike) typeOf(typ, declarator *cst.Node) ast.Type {
	if v.java {
		return javaType(typ)
	}

	return cType(typ, declarator)
}

// declareFunction records a function signature before any body is visited,
// so calls resolve regardless of declaration order.
func (v *clike) declareFunction(n *cst.Node) {
	var params []ast.Type
	for _, p := range n.Field("parameters").Children {
		params = append(params, v.typeOf(p.Field("type"), nil))
	}

	v.ctx.AddSymbol(&core.Symbol{
		Name:   n.Field("name").Text(),
		Type:   v.typeOf(n.Field("type"), nil),
		Kind:   core.SymbolFunction,
		Params: params,
	})
}

func (v *clike) function(n *cst.Node) *ast.FunctionDeclaration {
	fn := &ast.FunctionDeclaration{
		Name:       n.Field("name").Text(),
		ReturnType: v.typeOf(n.Field("type"), nil),
	}

	v.within(v.ctx.Block(), func() {
		v.ctx.CurrentFunction = fn.Name

		for _, p := range n.Field("parameters").Children {
			param := ast.Parameter{Name: p.Field("name").Text(), Type: v.typeOf(p.Field("type"), nil)}
			fn.Parameters = append(fn.Parameters, param)

			v.ctx.AddSymbol(&core.Symbol{Name: param.Name, Type: param.Type, Kind: core.SymbolParameter})
		}

		fn.Body = v.statements(n.Field("body").Children)
	})

	return fn
}

// mainBody lowers the entry point. A trailing return of zero is dropped;
// targets that need one add it back.
func (v *clike) mainBody(n *cst.Node) []ast.Node {
	body := v.function(n).Body

	for i := len(body) - 1; i >= 0; i-- {
		if _, ok := body[i].(*ast.Comment); ok {
			continue
		}

		if ret, ok := body[i].(*ast.ReturnStatement); ok && isZero(ret.Value) {
			body = append(body[:i], body[i+1:]...)
		}
		break
	}

	return body
}

func isZero(expr ast.Expr) bool {
	lit, ok := expr.(*ast.Literal)
	return ok && lit.Type == ast.LiteralInt && lit.Value == "0"
}

func (v *clike) statements(children []*cst.Node) []ast.Node {
	var nodes []ast.Node
	for _, child := range children {
		nodes = append(nodes, v.statement(child)...)
	}

	return nodes
}

// body lowers the body of a compound statement in a nested scope.
func (v *clike) body(n *cst.Node) []ast.Node {
	var nodes []ast.Node

	v.within(v.ctx.Block(), func() {
		if n.Is(cst.KindBlock) {
			nodes = v.statements(n.Children)
		} else {
			nodes = v.statement(n)
		}
	})

	return nodes
}

func (v *clike) statement(n *cst.Node) (nodes []ast.Node) {
	defer v.guard(n, &nodes)

	switch n.Kind {
	case cst.KindComment:
		return []ast.Node{comment(n)}
	case cst.KindDeclaration, cst.KindField:
		return v.declaration(n)
	case cst.KindExpressionStatement:
		for _, child := range n.Children {
			nodes = append(nodes, v.expressionStatement(child))
		}
		return nodes
	case cst.KindIf:
		return []ast.Node{v.ifStatement(n)}
	case cst.KindFor:
		return v.forStatement(n)
	case cst.KindForEach:
		return []ast.Node{v.forEach(n)}
	case cst.KindWhile:
		return []ast.Node{&ast.LoopStatement{
			Loop:      ast.LoopWhile,
			Condition: v.expr(n.Field("condition")),
			Body:      v.body(n.Field("body")),
		}}
	case cst.KindDoWhile:
		body := v.body(n.Field("body"))
		return []ast.Node{&ast.LoopStatement{
			Loop:      ast.LoopDoWhile,
			Condition: v.expr(n.Field("condition")),
			Body:      body,
		}}
	case cst.KindReturn:
		ret := &ast.ReturnStatement{}
		if value := n.Field("value"); value != nil {
			ret.Value = v.expr(value)
		}
		return []ast.Node{ret}
	case cst.KindBreak:
		return []ast.Node{&ast.BreakStatement{}}
	case cst.KindContinue:
		return []ast.Node{&ast.ContinueStatement{}}
	case cst.KindBlock:
		return v.body(n)
	case cst.KindEmpty:
		return nil
	case cst.KindInclude:
		return []ast.Node{include(n)}
	case cst.KindDefine:
		return []ast.Node{v.define(n)}
	}

	return []ast.Node{v.placeholder(n)}
}

func (v *clike) expressionStatement(e *cst.Node) ast.Node {
	if e.Is(cst.KindCall) {
		if p := v.print(e); p != nil {
			return p
		}

		if v.isExit(e) {
			if v.ctx.CurrentFunction != "main" {
				v.bail(e, "exit outside the entry point")
			}

			ret := &ast.ReturnStatement{}
			if args := v.args(e); len(args) > 0 {
				ret.Value = args[0]
			}

			return ret
		}
	}

	return v.expr(e)
}

func (v *clike) print(call *cst.Node) *ast.PrintStatement {
	if v.java {
		return v.javaPrint(call)
	}

	return v.cPrint(call)
}

func (v *clike) isExit(call *cst.Node) bool {
	fn := call.Field("function")
	if v.java {
		return qualified(fn) == "System.exit"
	}

	return fn.Is(cst.KindIdentifier) && fn.Text() == "exit"
}

func (v *clike) ifStatement(n *cst.Node) *ast.ConditionalStatement {
	stmt := &ast.ConditionalStatement{
		Condition: v.expr(n.Field("condition")),
		Then:      v.body(n.Field("consequence")),
	}

	alt := n.Field("alternative")
	for alt.Is(cst.KindIf) {
		stmt.Elifs = append(stmt.Elifs, ast.ElifBranch{
			Condition: v.expr(alt.Field("condition")),
			Then:      v.body(alt.Field("consequence")),
		})
		alt = alt.Field("alternative")
	}

	if alt != nil {
		stmt.Else = v.body(alt)
	}

	return stmt
}

// forStatement keeps the initializer, condition and update of a C-style
// loop. Generators decide whether the loop has a counted range form.
func (v *clike) forStatement(n *cst.Node) []ast.Node {
	var nodes []ast.Node
	loop := &ast.LoopStatement{Loop: ast.LoopFor}

	v.within(v.ctx.Block(), func() {
		if init := n.Field("initializer"); init != nil {
			var inits []ast.Node
			if init.Is(cst.KindDeclaration) {
				inits = v.declaration(init)
			} else {
				for _, child := range init.Children {
					inits = append(inits, v.expressionStatement(child))
				}
			}

			if len(inits) == 1 {
				loop.Init = inits[0]
			} else {
				nodes = inits
			}
		}

		if cond := n.Field("condition"); cond != nil {
			loop.Condition = v.expr(cond)
		} else {
			loop.Condition = &ast.Literal{Value: "true", Type: ast.LiteralBool}
		}

		var updates []ast.Node
		if update := n.Field("update"); update != nil {
			for _, child := range update.Children {
				updates = append(updates, v.expressionStatement(child))
			}
		}

		loop.Body = v.body(n.Field("body"))

		switch {
		case len(updates) == 1:
			loop.Update = updates[0]
		case len(updates) > 1:
			if containsContinue(loop.Body) {
				v.ctx.Warnf("Approximation", n.Start, "continue skips the updates moved to the end of the loop body")
			}
			loop.Body = append(loop.Body, updates...)
		}
	})

	return append(nodes, loop)
}

func (v *clike) forEach(n *cst.Node) *ast.LoopStatement {
	loop := &ast.LoopStatement{
		Loop:     ast.LoopFor,
		LoopVar:  n.Field("name").Text(),
		Iterable: v.expr(n.Field("value")),
	}

	v.within(v.ctx.Block(), func() {
		t := v.typeOf(n.Field("type"), nil)
		if !t.Known() {
			t = v.ctx.TypeOf(loop.Iterable).Element()
		}

		v.ctx.AddSymbol(&core.Symbol{Name: loop.LoopVar, Type: t})
		loop.Body = v.body(n.Field("body"))
	})

	return loop
}

func (v *clike) declaration(n *cst.Node) []ast.Node {
	typ := n.Field("type")
	constant := typ.Field("const") != nil || typ.Field("final") != nil

	var nodes []ast.Node
	for _, d := range n.Children {
		if d.Is(cst.KindDeclarator) {
			nodes = append(nodes, v.declarator(typ, d, constant))
		}
	}

	return nodes
}

func (v *clike) declarator(typ, d *cst.Node, constant bool) ast.Node {
	name := d.Field("name").Text()
	value := d.Field("value")

	t := v.typeOf(typ, d)
	for _, dim := range d.Children {
		if dim.Is(cst.KindEmpty) {
			t.Dims = append(t.Dims, nil)
		} else {
			t.Dims = append(t.Dims, v.expr(dim))
		}
	}

	if !t.IsArray() || (t.IsCharBuffer() && value.Is(cst.KindString)) {
		decl := &ast.VariableDeclaration{Name: name, Type: t, Const: constant}
		if value != nil {
			decl.Value = v.expr(value)
		}

		kind := core.SymbolVariable
		if constant {
			kind = core.SymbolConstant
		}
		v.ctx.AddSymbol(&core.Symbol{Name: name, Type: t, Value: decl.Value, Kind: kind})

		return decl
	}

	elem := t
	elem.Dims = nil
	arr := &ast.ArrayDeclaration{Name: name, ElementType: elem}
	sizes := t.Dims

	switch {
	case value == nil:
	case value.Is(cst.KindInitializer):
		arr.Values = v.elements(value)
	case value.Is(cst.KindNewArray):
		sizes = nil
		for _, dim := range value.Children {
			sizes = append(sizes, v.expr(dim))
		}

		if init := value.Field("value"); init != nil {
			arr.Values = v.elements(init)
		}
	default:
		// an array valued expression such as a call
		decl := &ast.VariableDeclaration{Name: name, Type: t, Value: v.expr(value)}
		v.ctx.AddSymbol(&core.Symbol{Name: name, Type: t, Kind: core.SymbolArray})

		return decl
	}

	if sized(sizes) {
		arr.Sizes = sizes
	}

	if arr.Values == nil && arr.Sizes == nil {
		v.bail(d, "array declaration without a size")
	}

	v.ctx.AddSymbol(&core.Symbol{Name: name, Type: t, Kind: core.SymbolArray})
	return arr
}

func sized(dims []ast.Expr) bool {
	for _, dim := range dims {
		if dim == nil {
			return false
		}
	}

	return len(dims) > 0
}

// elements flattens an initializer list; nested lists become array literals.
func (v *clike) elements(list *cst.Node) []ast.Expr {
	elems := make([]ast.Expr, 0, len(list.Children))
	for _, child := range list.Children {
		if child.Is(cst.KindInitializer) {
			elems = append(elems, &ast.ArrayLiteral{Elements: v.elements(child)})
			continue
		}

		elems = append(elems, v.expr(child))
	}

	return elems
}

func (v *clike) exprs(nodes []*cst.Node) []ast.Expr {
	exprs := make([]ast.Expr, 0, len(nodes))
	for _, n := range nodes {
		exprs = append(exprs, v.expr(n))
	}

	return exprs
}

func (v *clike) args(call *cst.Node) []ast.Expr {
	return v.exprs(call.Field("arguments").Children)
}

func (v *clike) expr(n *cst.Node) ast.Expr {
	switch n.Kind {
	case cst.KindIdentifier:
		return &ast.Identifier{Name: n.Text()}
	case cst.KindNumber, cst.KindString, cst.KindChar, cst.KindTrue, cst.KindFalse, cst.KindNull:
		return literal(n)
	case cst.KindParenthesized:
		return v.expr(n.Children[0])
	case cst.KindBinary:
		return v.binary(n)
	case cst.KindUnary:
		return v.unary(n)
	case cst.KindUpdate:
		op, arg := n.Field("operator"), n.Field("argument")

		update := &ast.UnaryExpression{
			Operator: ast.UnaryIncrement,
			Operand:  v.expr(arg),
			Postfix:  op.Start.Offset > arg.Start.Offset,
		}
		if op.Text() == "--" {
			update.Operator = ast.UnaryDecrement
		}

		return update
	case cst.KindAssignment:
		op, ok := assignOperators[n.Field("operator").Text()]
		if !ok {
			v.bail(n, "operator "+n.Field("operator").Text())
		}

		return &ast.AssignmentExpression{
			Left:     v.expr(n.Field("left")),
			Operator: op,
			Right:    v.expr(n.Field("right")),
		}
	case cst.KindConditional:
		return &ast.TernaryExpression{
			Condition: v.expr(n.Field("condition")),
			Then:      v.expr(n.Field("consequence")),
			Else:      v.expr(n.Field("alternative")),
		}
	case cst.KindCast:
		return v.cast(n)
	case cst.KindCall:
		return v.call(n)
	case cst.KindSubscript:
		return &ast.Subscript{
			Array: v.expr(n.Field("argument")),
			Index: v.expr(n.Field("index")),
		}
	case cst.KindMember:
		return v.member(n)
	case cst.KindInitializer:
		return &ast.ArrayLiteral{Elements: v.elements(n)}
	case cst.KindNewArray:
		if init := n.Field("value"); init != nil {
			return &ast.ArrayLiteral{Elements: v.elements(init)}
		}
	case cst.KindSizeof:
		v.bail(n, "sizeof")
	}

	v.bail(n, construct(n))
	return nil
}

func (v *clike) binary(n *cst.Node) ast.Expr {
	op := n.Field("operator").Text()

	if length, ok := v.arrayLength(n); ok {
		return length
	}

	left, right := v.expr(n.Field("left")), v.expr(n.Field("right"))

	if o, ok := arithmeticOperators[op]; ok {
		return &ast.BinaryExpression{Operator: o, Left: left, Right: right}
	}

	if o, ok := comparisonOperators[op]; ok {
		return &ast.ComparisonExpression{Operator: o, Left: left, Right: right}
	}

	if o, ok := bitwiseOperators[op]; ok {
		return &ast.BitwiseExpression{Operator: o, Left: left, Right: right}
	}

	switch op {
	case "&&":
		return &ast.LogicalExpression{Operator: ast.LogicalAnd, Left: left, Right: right}
	case "||":
		return &ast.LogicalExpression{Operator: ast.LogicalOr, Left: left, Right: right}
	case ">>>":
		v.ctx.Warnf("Approximation", n.Start, "unsigned shift lowered to a signed shift")
		return &ast.BitwiseExpression{Operator: ast.BitwiseShiftRight, Left: left, Right: right}
	}

	v.bail(n, "operator "+op)
	return nil
}

func (v *clike) unary(n *cst.Node) ast.Expr {
	arg := v.expr(n.Field("argument"))

	switch n.Field("operator").Text() {
	case "!":
		return &ast.LogicalExpression{Operator: ast.LogicalNot, Left: arg}
	case "~":
		return &ast.BitwiseExpression{Operator: ast.BitwiseNot, Left: arg}
	case "-":
		return &ast.UnaryExpression{Operator: ast.UnaryNegative, Operand: arg}
	case "+":
		return &ast.UnaryExpression{Operator: ast.UnaryPositive, Operand: arg}
	}

	v.bail(n, "pointer operation")
	return nil
}

// cast lowers a conversion to the canonical int, float, chr, ord or str
// builtins. Casts between integer types are dropped.
func (v *clike) cast(n *cst.Node) ast.Expr {
	t := v.typeOf(n.Field("type"), nil)
	value := v.expr(n.Field("value"))
	from := v.ctx.TypeOf(value)

	switch {
	case t.IsArray() || t.Pointer > 0:
		return value
	case t.Name == ast.TypeChar && from.Name != ast.TypeChar:
		return builtin("chr", value)
	case t.Name == ast.TypeChar:
		return value
	case from.Name == ast.TypeChar && t.IsIntegral():
		return builtin("ord", value)
	case from.IsIntegral() && t.IsIntegral():
		return value
	case t.IsIntegral():
		return builtin("int", value)
	case t.IsFloating() && from.IsFloating():
		return value
	case t.IsFloating():
		return builtin("float", value)
	case t.Name == ast.TypeString:
		return builtin("str", value)
	}

	return value
}

func (v *clike) call(n *cst.Node) ast.Expr {
	var lowered ast.Expr
	if v.java {
		lowered = v.javaLibrary(n)
	} else {
		lowered = v.cLibrary(n)
	}

	if lowered != nil {
		return lowered
	}

	fn := n.Field("function")
	switch {
	case fn.Is(cst.KindIdentifier):
		return &ast.CallExpression{FunctionName: fn.Text(), Args: v.args(n)}
	case fn.Is(cst.KindMember) && fn.Field("operator").Text() == ".":
		return &ast.CallExpression{
			FunctionName: fn.Field("field").Text(),
			Receiver:     v.expr(fn.Field("argument")),
			Args:         v.args(n),
		}
	}

	v.bail(n, "indirect call")
	return nil
}

func (v *clike) member(n *cst.Node) ast.Expr {
	field := n.Field("field").Text()

	if n.Field("operator").Text() == "->" {
		v.bail(n, "pointer member access")
	}

	if v.java && field == "length" {
		return builtin("len", v.expr(n.Field("argument")))
	}

	return &ast.Attribute{Object: v.expr(n.Field("argument")), Attribute: field}
}

// qualified renders a dotted name such as System.out, or "" for anything
// else.
func qualified(n *cst.Node) string {
	switch {
	case n.Is(cst.KindIdentifier):
		return n.Text()
	case n.Is(cst.KindMember):
		if prefix := qualified(n.Field("argument")); prefix != "" {
			return prefix + "." + n.Field("field").Text()
		}
	}

	return ""
}

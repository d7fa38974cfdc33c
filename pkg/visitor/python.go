package visitor

import (
	"strconv"
	"strings"

	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/core"
	"go.crosslang.dev/pkg/cst"
)

// Python lowers a module. The module level statements are the entry point;
// a main function called under the __main__ guard joins them.
type Python struct{}

func NewPython() *Python {
	return &Python{}
}

// EntryPoint returns the main function when the module calls it under the
// __main__ guard, and the module itself otherwise.
func (*Python) EntryPoint(root *cst.Node) (*cst.Node, error) {
	var main *cst.Node
	called := false

	for _, child := range root.Children {
		switch {
		case child.Is(cst.KindFunction) && child.Field("name").Text() == "main":
			main = child
		case isMainGuard(child):
			for _, stmt := range child.Field("consequence").Children {
				called = called || isMainCall(stmt)
			}
		}
	}

	if main != nil && called && len(main.Field("parameters").Children) == 0 {
		return main, nil
	}

	return root, nil
}

// Visit runs two throwaway passes over the module to learn parameter types
// from call sites and return types from return statements, then lowers it
// for real.
func (*Python) Visit(root, entry *cst.Node, ctx *core.Context) (*ast.Program, error) {
	sig := newSignatures()

	for pass := 0; pass < 2; pass++ {
		scratch := core.NewContext(ctx.Source, ctx.Target, ctx.Input)
		scratch.Scope = ctx.Scope

		probe := &python{base: base{ctx: scratch}, sig: sig, main: entry != root}
		probe.program(root, entry)
	}

	v := &python{base: base{ctx: ctx}, sig: sig, main: entry != root}
	return v.program(root, entry), nil
}

func isMainGuard(n *cst.Node) bool {
	if !n.Is(cst.KindIf) || len(n.Children) > 0 || n.Field("alternative") != nil {
		return false
	}

	cond := n.Field("condition")
	if !cond.Is(cst.KindComparison) || len(cond.Children) != 3 || cond.Children[1].Text() != "==" {
		return false
	}

	name, value := cond.Children[0], cond.Children[2]
	if name.Is(cst.KindString) {
		name, value = value, name
	}

	text, _ := unquote(value.Text())
	return name.Is(cst.KindIdentifier) && name.Text() == "__name__" && value.Is(cst.KindString) && text == "__main__"
}

func isMainCall(stmt *cst.Node) bool {
	if !stmt.Is(cst.KindExpressionStatement) {
		return false
	}

	call := stmt.Children[0]
	return call.Is(cst.KindCall) && call.Field("function").Text() == "main" && len(call.Field("arguments").Children) == 0
}

// signatures is what the passes over a module learn about its functions.
type signatures struct {
	names    map[string][]string
	defaults map[string][]*cst.Node
	params   map[string][]ast.Type
	returns  map[string]ast.Type
	// Types of the names bound at module level.
	globals map[string]ast.Type
}

func newSignatures() *signatures {
	return &signatures{
		names:    make(map[string][]string),
		defaults: make(map[string][]*cst.Node),
		params:   make(map[string][]ast.Type),
		returns:  make(map[string]ast.Type),
		globals:  make(map[string]ast.Type),
	}
}

func (s *signatures) observe(name string, args []ast.Type) {
	params := s.params[name]
	for len(params) < len(args) {
		params = append(params, ast.Named(ast.TypeUnknown))
	}

	for i, t := range args {
		params[i] = merge(params[i], t)
	}

	s.params[name] = params
}

// merge combines two observations of the same value. Numbers widen; otherwise
// the first known type wins.
func merge(a, b ast.Type) ast.Type {
	switch {
	case !a.Known():
		return b
	case !b.Known():
		return a
	case a.IsNumeric() && b.IsNumeric():
		return ast.Promote(a, b)
	}

	return a
}

type python struct {
	base
	sig *signatures

	// main is set when the entry point is a main function.
	main bool

	// Nesting of the block being lowered inside the current function.
	depth int
	// Declarations of names first bound inside a nested block, waiting for
	// the enclosing top level statement.
	hoisted []ast.Node
	// Names of the current function bound by a global statement.
	globals map[string]bool
	// Element types of the iteration loops that introduce their variable.
	elems map[*ast.LoopStatement]ast.Type
}

func (v *python) program(root, entry *cst.Node) *ast.Program {
	prog := &ast.Program{}
	v.declareFunctions(root)

	var top, main, tail []ast.Node
	for _, child := range root.Children {
		switch {
		case child.Is(cst.KindComment):
			v.pending = append(v.pending, comment(child))
		case child == entry:
			main = v.flush(v.function(child).Body...)
		case child.Is(cst.KindFunction):
			v.definition(child, prog)
		case isMainGuard(child):
			for _, stmt := range child.Field("consequence").Children {
				if v.main && isMainCall(stmt) {
					continue
				}
				tail = append(tail, v.flush(v.topLevel(stmt)...)...)
			}
		default:
			top = append(top, v.flush(v.topLevel(child)...)...)
		}
	}

	prog.Main = append(append(append(top, main...), tail...), v.flush()...)
	v.hoistGlobals(prog, len(top))
	prog.Main = v.loopScopes(prog.Main)

	return prog
}

// declareFunctions registers every module level function before any body is
// lowered. Annotations win over the types seen at call sites.
func (v *python) declareFunctions(root *cst.Node) {
	for _, child := range root.Children {
		if !child.Is(cst.KindFunction) {
			continue
		}

		name := child.Field("name").Text()
		observed := v.sig.params[name]

		var names []string
		var defaults []*cst.Node
		var params []ast.Type

		for i, p := range child.Field("parameters").Children {
			names = append(names, p.Field("name").Text())
			defaults = append(defaults, p.Field("value"))

			t := pythonType(p.Field("type"))
			if !t.Known() && i < len(observed) {
				t = observed[i]
			}
			if def := p.Field("value"); !t.Known() && def != nil {
				if lit := literal(def); lit != nil {
					t = v.ctx.TypeOf(lit)
				}
			}

			params = append(params, t)
		}

		ret := pythonType(child.Field("type"))
		switch {
		case ret.Known():
		case returnsValue(child.Field("body")):
			ret = v.sig.returns[name]
		default:
			ret = ast.Named(ast.TypeVoid)
		}

		v.sig.names[name] = names
		v.sig.defaults[name] = defaults
		v.ctx.AddSymbol(&core.Symbol{Name: name, Type: ret, Kind: core.SymbolFunction, Params: params})
	}
}

func returnsValue(n *cst.Node) bool {
	if n == nil || n.Is(cst.KindFunction) {
		return false
	}

	if n.Is(cst.KindReturn) && n.Field("value") != nil {
		return true
	}

	for _, child := range n.Children {
		if returnsValue(child) {
			return true
		}
	}

	for _, field := range []string{"consequence", "alternative", "body"} {
		if returnsValue(n.Field(field)) {
			return true
		}
	}

	return false
}

// definition lowers a function declaration; one that cannot be lowered
// becomes a placeholder among the globals.
func (v *python) definition(n *cst.Node, prog *ast.Program) {
	var nodes []ast.Node

	func() {
		defer v.guard(n, &nodes)

		fn := v.function(n)
		params := make([]string, len(fn.Parameters))
		for i, p := range fn.Parameters {
			params[i] = p.Name
		}
		fn.Body = v.loopScopes(v.flush(fn.Body...), params...)
		prog.Functions = append(prog.Functions, fn)
	}()
	v.depth, v.hoisted, v.globals = 0, nil, nil

	if len(nodes) > 0 {
		prog.Globals = append(prog.Globals, v.flush(nodes...)...)
	}
}

func (v *python) function(n *cst.Node) *ast.FunctionDeclaration {
	name := n.Field("name").Text()

	sym := v.ctx.GetSymbol(name)
	if sym == nil || sym.Kind != core.SymbolFunction {
		v.bail(n, "function definition")
	}

	fn := &ast.FunctionDeclaration{Name: name, ReturnType: sym.Type}

	v.within(v.scope(), func() {
		v.ctx.CurrentFunction = name
		v.depth, v.hoisted, v.globals = 0, nil, make(map[string]bool)

		for i, p := range n.Field("parameters").Children {
			if p.Field("splat") != nil {
				v.bail(p, "variadic parameter")
			}

			param := ast.Parameter{Name: p.Field("name").Text(), Type: sym.Params[i]}
			fn.Parameters = append(fn.Parameters, param)

			v.ctx.AddSymbol(&core.Symbol{Name: param.Name, Type: param.Type, Kind: core.SymbolParameter})
		}

		fn.Body = v.suite(n.Field("body").Children)
	})

	v.globals = nil
	return fn
}

// scope opens the scope of a function body. Module level names are visible
// with the types the passes inferred, unless scopes are isolated.
func (v *python) scope() *core.Context {
	ctx := v.ctx.Block()
	if v.ctx.Scope == core.ScopeIsolated {
		return ctx
	}

	for name, t := range v.sig.globals {
		if ctx.HasSymbol(name) {
			continue
		}

		kind := core.SymbolVariable
		if t.IsArray() {
			kind = core.SymbolArray
		}
		ctx.AddSymbol(&core.Symbol{Name: name, Type: t, Kind: kind})
	}

	return ctx.Nested(core.ScopeInherit)
}

// hoistGlobals moves the module level declarations functions refer to out
// of the entry point. A declaration with a computed value leaves its
// assignment behind. Only the first top nodes of Main are module level.
func (v *python) hoistGlobals(prog *ast.Program, top int) {
	used := make(map[string]bool)
	for _, fn := range prog.Functions {
		ast.InspectAll(fn.Body, func(n ast.Node) bool {
			if id, ok := n.(*ast.Identifier); ok {
				used[id.Name] = true
			}
			return true
		})
	}

	if len(used) == 0 {
		return
	}

	main := make([]ast.Node, 0, len(prog.Main))
	for i, node := range prog.Main {
		if i >= top {
			main = append(main, node)
			continue
		}

		switch d := node.(type) {
		case *ast.VariableDeclaration:
			if !used[d.Name] {
				break
			}

			if d.Value == nil || constant(d.Value) {
				prog.Globals = append(prog.Globals, d)
				continue
			}

			prog.Globals = append(prog.Globals, &ast.VariableDeclaration{Name: d.Name, Type: d.Type})
			main = append(main, &ast.AssignmentExpression{Left: &ast.Identifier{Name: d.Name}, Operator: ast.Assign, Right: d.Value})
			continue
		case *ast.ArrayDeclaration:
			if used[d.Name] && constants(d.Sizes) && constants(d.Values) {
				prog.Globals = append(prog.Globals, d)
				continue
			}
		}

		main = append(main, node)
	}

	prog.Main = main
}

func constant(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.Literal:
		return true
	case *ast.UnaryExpression:
		return constant(e.Operand)
	case *ast.ArrayLiteral:
		return constants(e.Elements)
	}

	return false
}

func constants(list []ast.Expr) bool {
	for _, e := range list {
		if !constant(e) {
			return false
		}
	}

	return true
}

// suite lowers the statements of a function or module body. Declarations
// hoisted out of nested blocks go before the statement that bound them.
func (v *python) suite(children []*cst.Node) []ast.Node {
	var nodes []ast.Node
	for _, child := range children {
		nodes = append(nodes, v.topLevel(child)...)
	}

	return nodes
}

func (v *python) topLevel(n *cst.Node) []ast.Node {
	nodes := v.statement(n)

	out := append(v.hoisted, nodes...)
	v.hoisted = nil

	return out
}

// block lowers a nested block. Python blocks do not open a scope.
func (v *python) block(n *cst.Node) []ast.Node {
	v.depth++
	defer func() { v.depth-- }()

	var nodes []ast.Node
	for _, child := range n.Children {
		nodes = append(nodes, v.statement(child)...)
	}

	return nodes
}

func (v *python) statement(n *cst.Node) (nodes []ast.Node) {
	defer v.guard(n, &nodes)

	switch n.Kind {
	case cst.KindComment:
		return []ast.Node{comment(n)}
	case cst.KindExpressionStatement:
		return []ast.Node{v.expressionStatement(n.Children[0])}
	case cst.KindAssignment:
		return v.assignment(n)
	case cst.KindAugmented:
		return []ast.Node{v.augmented(n)}
	case cst.KindAnnotatedDecl:
		return v.annotated(n)
	case cst.KindIf:
		return []ast.Node{v.ifStatement(n)}
	case cst.KindWhile:
		return v.whileStatement(n)
	case cst.KindForIn:
		return v.forIn(n)
	case cst.KindReturn:
		return []ast.Node{v.returnStatement(n)}
	case cst.KindBreak:
		return []ast.Node{&ast.BreakStatement{}}
	case cst.KindContinue:
		return []ast.Node{&ast.ContinueStatement{}}
	case cst.KindPass:
		return nil
	case cst.KindImport:
		if v.standardImport(n) {
			return nil
		}
	case cst.KindUnsupported:
		if word := n.Token.Value; word == "global" || word == "nonlocal" {
			for _, name := range strings.Split(directiveArgument(n.Source(v.ctx.Input), word), ",") {
				if v.globals != nil {
					v.globals[strings.TrimSpace(name)] = true
				}
			}
			return nil
		}
	case cst.KindFunction:
		v.bail(n, "nested function")
	}

	return []ast.Node{v.placeholder(n)}
}

// standardImport reports imports of math and sys, whose functions are
// lowered to builtins.
func (v *python) standardImport(n *cst.Node) bool {
	words := strings.FieldsFunc(n.Source(v.ctx.Input), func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
	if len(words) < 2 {
		return false
	}

	switch words[0] {
	case "import":
		for _, w := range words[1:] {
			if w != "math" && w != "sys" {
				return false
			}
		}
		return true
	case "from":
		if words[1] == "__future__" {
			return true
		}

		if words[1] != "math" || len(words) < 4 {
			return false
		}

		for _, w := range words[3:] {
			if w != "sqrt" && w != "pow" {
				return false
			}
		}
		return true
	}

	return false
}

func (v *python) expressionStatement(e *cst.Node) ast.Node {
	switch {
	case e.Is(cst.KindString):
		// docstring
		text, prefix := unquote(e.Text())
		if !strings.ContainsAny(prefix, "fFbB") {
			return &ast.Comment{Text: blockText(text), IsBlock: true}
		}
	case e.Is(cst.KindCall):
		if p := v.print(e); p != nil {
			return p
		}

		if v.isExit(e) {
			return v.exit(e)
		}
	}

	return v.expr(e)
}

func (v *python) isExit(call *cst.Node) bool {
	fn := call.Field("function")
	if fn.Is(cst.KindIdentifier) {
		return (fn.Text() == "exit" || fn.Text() == "quit") && !v.isUser(fn.Text())
	}

	return qualified(fn) == "sys.exit"
}

// exit lowers sys.exit in the entry point to a return.
func (v *python) exit(call *cst.Node) ast.Node {
	fn := v.ctx.CurrentFunction
	if fn != "" && !(v.main && fn == "main") {
		v.bail(call, "exit outside the entry point")
	}

	ret := &ast.ReturnStatement{}
	if args := v.args(call); len(args) > 0 {
		if v.ctx.TypeOf(args[0]).IsString() {
			v.bail(call, "exit with a message")
		}
		ret.Value = args[0]
	}

	return ret
}

func (v *python) returnStatement(n *cst.Node) ast.Node {
	ret := &ast.ReturnStatement{}

	value := n.Field("value")
	if value == nil {
		return ret
	}

	if value.Is(cst.KindTuple) {
		v.bail(n, "multiple return values")
	}

	ret.Value = v.expr(value)
	if fn := v.ctx.CurrentFunction; fn != "" {
		v.sig.returns[fn] = merge(v.sig.returns[fn], v.ctx.TypeOf(ret.Value))
	}

	return ret
}

func (v *python) ifStatement(n *cst.Node) *ast.ConditionalStatement {
	stmt := &ast.ConditionalStatement{
		Condition: v.expr(n.Field("condition")),
		Then:      v.block(n.Field("consequence")),
	}

	for _, elif := range n.Children {
		if elif.Is(cst.KindElif) {
			stmt.Elifs = append(stmt.Elifs, ast.ElifBranch{
				Condition: v.expr(elif.Field("condition")),
				Then:      v.block(elif.Field("consequence")),
			})
		}
	}

	if alt := n.Field("alternative"); alt != nil {
		stmt.Else = v.block(alt.Field("body"))
	}

	return stmt
}

// whileStatement recognises the do-while idiom: an endless loop whose last
// statement breaks out on a condition.
func (v *python) whileStatement(n *cst.Node) []ast.Node {
	loop := &ast.LoopStatement{
		Loop:      ast.LoopWhile,
		Condition: v.expr(n.Field("condition")),
		Body:      v.block(n.Field("body")),
	}

	if cond, body, ok := doWhile(loop); ok {
		loop.Loop, loop.Condition, loop.Body = ast.LoopDoWhile, cond, body
	}

	return v.loopElse(n, loop)
}

func doWhile(loop *ast.LoopStatement) (ast.Expr, []ast.Node, bool) {
	lit, ok := loop.Condition.(*ast.Literal)
	if !ok || lit.Type != ast.LiteralBool || lit.Value != "true" {
		return nil, nil, false
	}

	last := len(loop.Body) - 1
	for last >= 0 {
		if _, ok := loop.Body[last].(*ast.Comment); !ok {
			break
		}
		last--
	}

	if last < 0 {
		return nil, nil, false
	}

	exit, ok := loop.Body[last].(*ast.ConditionalStatement)
	if !ok || len(exit.Elifs) > 0 || len(exit.Else) > 0 || len(exit.Then) != 1 {
		return nil, nil, false
	}

	if _, ok := exit.Then[0].(*ast.BreakStatement); !ok || containsContinue(loop.Body[:last]) {
		return nil, nil, false
	}

	body := append(append([]ast.Node(nil), loop.Body[:last]...), loop.Body[last+1:]...)
	return ast.Not(exit.Condition), body, true
}

// loopElse keeps a loop and turns its else clause into a placeholder.
func (v *python) loopElse(n *cst.Node, loop ast.Node) []ast.Node {
	alt := n.Field("alternative")
	if alt == nil {
		return []ast.Node{loop}
	}

	return []ast.Node{loop, v.ctx.Unsupported(alt.Start, "loop else clause", alt.Source(v.ctx.Input))}
}

func (v *python) forIn(n *cst.Node) []ast.Node {
	target, iter := n.Field("left"), n.Field("right")
	if !target.Is(cst.KindIdentifier) {
		v.bail(target, "tuple unpacking")
	}
	name := target.Text()

	if fn := iter.Field("function"); iter.Is(cst.KindCall) && fn.Is(cst.KindIdentifier) && !v.isUser(fn.Text()) {
		switch fn.Text() {
		case "range":
			return v.loopElse(n, v.rangeLoop(n, name, iter))
		case "enumerate", "zip", "reversed", "sorted", "map", "filter":
			v.bail(iter, fn.Text())
		}
	}

	loop := &ast.LoopStatement{Loop: ast.LoopFor, LoopVar: name, Iterable: v.expr(iter)}
	elem := v.ctx.TypeOf(loop.Iterable).Element()
	if !v.declared(name) {
		if v.elems == nil {
			v.elems = make(map[*ast.LoopStatement]ast.Type)
		}
		v.elems[loop] = elem
	}
	v.ctx.AddSymbol(&core.Symbol{Name: name, Type: elem})
	loop.Body = v.block(n.Field("body"))

	return v.loopElse(n, loop)
}

// rangeLoop lowers a for over range to a counted loop. The direction comes
// from the sign of a literal step.
func (v *python) rangeLoop(n *cst.Node, name string, call *cst.Node) *ast.LoopStatement {
	args := v.args(call)

	var start, end, step ast.Expr
	switch len(args) {
	case 1:
		start, end = intLiteral(0), args[0]
	case 2:
		start, end = args[0], args[1]
	case 3:
		start, end, step = args[0], args[1], args[2]
	default:
		v.bail(call, "range call")
	}

	i := &ast.Identifier{Name: name}
	loop := &ast.LoopStatement{Loop: ast.LoopFor}

	if v.declared(name) {
		loop.Init = &ast.AssignmentExpression{Left: i, Operator: ast.Assign, Right: start}
	} else {
		loop.Init = &ast.VariableDeclaration{Name: name, Type: ast.Named(ast.TypeInt), Value: start}
		v.ctx.AddSymbol(&core.Symbol{Name: name, Type: ast.Named(ast.TypeInt)})
	}

	cmp := ast.CompareLess
	switch sign(step) {
	case -1:
		cmp = ast.CompareGreater
	case 0:
		v.ctx.Warnf("Approximation", call.Start, "range step of unknown sign treated as positive")
	}
	loop.Condition = &ast.ComparisonExpression{Operator: cmp, Left: i, Right: end}

	neg, negative := step.(*ast.UnaryExpression)
	switch {
	case step == nil || isOne(step):
		loop.Update = &ast.UnaryExpression{Operator: ast.UnaryIncrement, Operand: i, Postfix: true}
	case negative && neg.Operator == ast.UnaryNegative && isOne(neg.Operand):
		loop.Update = &ast.UnaryExpression{Operator: ast.UnaryDecrement, Operand: i, Postfix: true}
	case negative && neg.Operator == ast.UnaryNegative:
		loop.Update = &ast.AssignmentExpression{Left: i, Operator: ast.AssignSubtract, Right: neg.Operand}
	default:
		loop.Update = &ast.AssignmentExpression{Left: i, Operator: ast.AssignAdd, Right: step}
	}

	loop.Body = v.block(n.Field("body"))
	return loop
}

// sign is 1 or -1 for a literal step and 0 when it is not known.
func sign(step ast.Expr) int {
	switch e := step.(type) {
	case nil:
		return 1
	case *ast.Literal:
		return 1
	case *ast.UnaryExpression:
		if _, ok := e.Operand.(*ast.Literal); ok {
			if e.Operator == ast.UnaryNegative {
				return -1
			}
			return 1
		}
	}

	return 0
}

func isOne(e ast.Expr) bool {
	lit, ok := e.(*ast.Literal)
	return ok && lit.Type == ast.LiteralInt && lit.Value == "1"
}

// declared reports a name already bound in the current function, or the
// module when lowering module level code.
func (v *python) declared(name string) bool {
	return v.ctx.Symbols().Local(name) || v.globals[name]
}

func (v *python) isUser(name string) bool {
	_, ok := v.sig.names[name]
	return ok
}

// assignment lowers single, chained and tuple assignments. In a = b = v the
// first target takes the value and the others copy it.
func (v *python) assignment(n *cst.Node) []ast.Node {
	targets := []*cst.Node{n.Field("left")}

	value := n.Field("right")
	for value.Is(cst.KindAssignment) {
		targets = append(targets, value.Field("left"))
		value = value.Field("right")
	}

	nodes := v.assign(targets[0], value)
	if len(targets) == 1 {
		return nodes
	}

	if !targets[0].Is(cst.KindIdentifier) {
		v.bail(n, "chained assignment")
	}

	for _, target := range targets[1:] {
		nodes = append(nodes, v.assignExpr(target, &ast.Identifier{Name: targets[0].Text()}))
	}

	return nodes
}

func (v *python) assign(target, value *cst.Node) []ast.Node {
	switch {
	case target.Is(cst.KindIdentifier):
		name := target.Text()
		if !v.declared(name) {
			if arr := v.array(name, value, ast.Named(ast.TypeUnknown)); arr != nil {
				return []ast.Node{arr}
			}
		}

		return []ast.Node{v.bind(name, v.expr(value), ast.Named(ast.TypeUnknown))}
	case target.Is(cst.KindTuple, cst.KindList):
		return v.unpack(target, value)
	}

	return []ast.Node{v.assignExpr(target, v.expr(value))}
}

func (v *python) assignExpr(target *cst.Node, value ast.Expr) ast.Node {
	switch {
	case target.Is(cst.KindIdentifier):
		return v.bind(target.Text(), value, ast.Named(ast.TypeUnknown))
	case target.Is(cst.KindSubscript, cst.KindMember):
		return &ast.AssignmentExpression{Left: v.expr(target), Operator: ast.Assign, Right: value}
	}

	v.bail(target, "assignment target")
	return nil
}

// bind assigns value to name, declaring the name on first use with type t,
// or the inferred type when t is unknown. A name first bound in a nested
// block is declared before the enclosing top level statement.
func (v *python) bind(name string, value ast.Expr, t ast.Type) ast.Node {
	id := &ast.Identifier{Name: name}
	if v.declared(name) {
		return &ast.AssignmentExpression{Left: id, Operator: ast.Assign, Right: value}
	}

	if !t.Known() {
		t = v.ctx.TypeOf(value)
	}

	kind := core.SymbolVariable
	if t.IsArray() {
		kind = core.SymbolArray
	}
	v.ctx.AddSymbol(&core.Symbol{Name: name, Type: t, Value: value, Kind: kind})
	v.noteGlobal(name, t)

	if v.depth > 0 && !t.IsArray() {
		v.hoisted = append(v.hoisted, &ast.VariableDeclaration{Name: name, Type: t})
		return &ast.AssignmentExpression{Left: id, Operator: ast.Assign, Right: value}
	}

	return &ast.VariableDeclaration{Name: name, Type: t, Value: value}
}

func (v *python) noteGlobal(name string, t ast.Type) {
	if v.ctx.CurrentFunction == "" {
		v.sig.globals[name] = t
	}
}

// array declares name from a list display or from [fill] * n. It returns nil
// when value is neither.
func (v *python) array(name string, value *cst.Node, t ast.Type) *ast.ArrayDeclaration {
	arr := &ast.ArrayDeclaration{Name: name}

	switch {
	case value.Is(cst.KindList):
		if len(value.Children) == 0 {
			v.bail(value, "empty list")
		}

		arr.Values = v.exprs(value.Children)
		if !t.IsArray() {
			t = v.ctx.TypeOf(&ast.ArrayLiteral{Elements: arr.Values})
		}
	case value.Is(cst.KindBinary) && value.Field("operator").Text() == "*":
		list, size := value.Field("left"), value.Field("right")
		if size.Is(cst.KindList) {
			list, size = size, list
		}

		if !list.Is(cst.KindList) {
			return nil
		}

		if len(list.Children) != 1 || list.Children[0].Is(cst.KindList) {
			v.bail(value, "list repetition")
		}

		fill := v.expr(list.Children[0])
		if !isDefault(fill) {
			v.bail(value, "list repetition with a non-default value")
		}

		arr.Sizes = []ast.Expr{v.expr(size)}
		if !t.IsArray() {
			t = arrayType(v.ctx.TypeOf(fill), 1)
		}
	default:
		return nil
	}

	arr.ElementType = t
	arr.ElementType.Dims = nil

	v.ctx.AddSymbol(&core.Symbol{Name: name, Type: t, Kind: core.SymbolArray})
	v.noteGlobal(name, t)

	return arr
}

// isDefault reports the zero value of a numeric or boolean type.
func isDefault(e ast.Expr) bool {
	lit, ok := e.(*ast.Literal)
	if !ok {
		return false
	}

	switch lit.Type {
	case ast.LiteralInt, ast.LiteralFloat:
		f, err := strconv.ParseFloat(lit.Value, 64)
		return err == nil && f == 0
	case ast.LiteralBool:
		return lit.Value == "false"
	}

	return false
}

// unpack lowers a, b = x, y. When the right side reads a target, every value
// but the last is saved in a temporary first.
func (v *python) unpack(target, value *cst.Node) []ast.Node {
	if !value.Is(cst.KindTuple, cst.KindList) || len(value.Children) != len(target.Children) {
		v.bail(target, "unpacking")
	}

	names := make(map[string]bool)
	for _, t := range target.Children {
		if t.Is(cst.KindIdentifier) {
			names[t.Text()] = true
		}
	}

	var nodes []ast.Node
	if !reads(value, names) {
		for i, t := range target.Children {
			nodes = append(nodes, v.assign(t, value.Children[i])...)
		}
		return nodes
	}

	last := len(target.Children) - 1
	temps := make([]string, last)
	for i := range temps {
		temps[i] = v.temp()

		expr := v.expr(value.Children[i])
		t := v.ctx.TypeOf(expr)

		nodes = append(nodes, &ast.VariableDeclaration{Name: temps[i], Type: t, Value: expr})
		v.ctx.AddSymbol(&core.Symbol{Name: temps[i], Type: t})
	}

	nodes = append(nodes, v.assignExpr(target.Children[last], v.expr(value.Children[last])))
	for i, name := range temps {
		nodes = append(nodes, v.assignExpr(target.Children[i], &ast.Identifier{Name: name}))
	}

	return nodes
}

// reads reports whether n mentions any of names.
func reads(n *cst.Node, names map[string]bool) bool {
	if n == nil {
		return false
	}

	if n.Is(cst.KindIdentifier) && names[n.Text()] {
		return true
	}

	for _, child := range n.Children {
		if reads(child, names) {
			return true
		}
	}

	for name, child := range n.Fields {
		if name != "field" && reads(child, names) {
			return true
		}
	}

	return false
}

func (v *python) temp() string {
	name := "tmp"
	for i := 2; v.ctx.HasSymbol(name); i++ {
		name = "tmp" + strconv.Itoa(i)
	}

	return name
}

var pythonAugmented = map[string]ast.AssignOp{
	"+=":  ast.AssignAdd,
	"-=":  ast.AssignSubtract,
	"*=":  ast.AssignMultiply,
	"/=":  ast.AssignTrueDivide,
	"//=": ast.AssignFloorDivide,
	"%=":  ast.AssignModulo,
	"**=": ast.AssignPower,
	"&=":  ast.AssignBitAnd,
	"|=":  ast.AssignBitOr,
	"^=":  ast.AssignBitXor,
	"<<=": ast.AssignShiftLeft,
	">>=": ast.AssignShiftRight,
}

func (v *python) augmented(n *cst.Node) ast.Node {
	op, ok := pythonAugmented[n.Field("operator").Text()]
	if !ok {
		v.bail(n, "operator "+n.Field("operator").Text())
	}

	left := n.Field("left")
	if !left.Is(cst.KindIdentifier, cst.KindSubscript, cst.KindMember) {
		v.bail(n, "assignment target")
	}

	return &ast.AssignmentExpression{Left: v.expr(left), Operator: op, Right: v.expr(n.Field("right"))}
}

// annotated lowers x: T = v. The annotation wins over the inferred type.
func (v *python) annotated(n *cst.Node) []ast.Node {
	left, value := n.Field("left"), n.Field("value")
	t := pythonType(n.Field("type"))

	if !left.Is(cst.KindIdentifier) {
		if value == nil {
			return nil
		}
		return []ast.Node{v.assignExpr(left, v.expr(value))}
	}

	name := left.Text()
	if v.declared(name) {
		if value == nil {
			return nil
		}
		return v.assign(left, value)
	}

	if value == nil {
		if t.IsArray() {
			v.bail(n, "array declaration without a size")
		}

		v.ctx.AddSymbol(&core.Symbol{Name: name, Type: t})
		v.noteGlobal(name, t)
		return []ast.Node{&ast.VariableDeclaration{Name: name, Type: t}}
	}

	if arr := v.array(name, value, t); arr != nil {
		return []ast.Node{arr}
	}

	return []ast.Node{v.bind(name, v.expr(value), t)}
}

func pythonType(n *cst.Node) ast.Type {
	switch {
	case n.Is(cst.KindNull):
		return ast.Named(ast.TypeVoid)
	case n.Is(cst.KindString):
		text, _ := unquote(n.Text())
		return pythonTypeName(strings.TrimSpace(text))
	case n.Is(cst.KindIdentifier):
		return pythonTypeName(n.Text())
	case n.Is(cst.KindSubscript):
		switch n.Field("argument").Text() {
		case "list", "List":
			elem := pythonType(n.Field("index"))
			elem.Dims = append([]ast.Expr{nil}, elem.Dims...)
			return elem
		}
	}

	return ast.Named(ast.TypeUnknown)
}

func pythonTypeName(name string) ast.Type {
	switch name {
	case "int":
		return ast.Named(ast.TypeInt)
	case "float":
		return ast.Named(ast.TypeDouble)
	case "str":
		return ast.Named(ast.TypeString)
	case "bool":
		return ast.Named(ast.TypeBool)
	case "None":
		return ast.Named(ast.TypeVoid)
	case "list", "List":
		return arrayType(ast.Named(ast.TypeUnknown), 1)
	}

	return ast.Named(ast.TypeUnknown)
}

var pythonArithmetic = map[string]ast.BinaryOp{
	"+":  ast.BinaryAddition,
	"-":  ast.BinarySubtraction,
	"*":  ast.BinaryMultiplication,
	"/":  ast.BinaryTrueDivision,
	"//": ast.BinaryFloorDivision,
	"%":  ast.BinaryModulo,
	"**": ast.BinaryPower,
}

func (v *python) exprs(nodes []*cst.Node) []ast.Expr {
	exprs := make([]ast.Expr, 0, len(nodes))
	for _, n := range nodes {
		exprs = append(exprs, v.expr(n))
	}

	return exprs
}

// args lowers positional arguments. Keyword arguments are only understood
// for user functions; see userCall.
func (v *python) args(call *cst.Node) []ast.Expr {
	args := call.Field("arguments").Children
	for _, arg := range args {
		if arg.Is(cst.KindKeywordArg) {
			v.bail(arg, "keyword argument")
		}
	}

	return v.exprs(args)
}

func (v *python) expr(n *cst.Node) ast.Expr {
	switch n.Kind {
	case cst.KindIdentifier:
		return &ast.Identifier{Name: n.Text()}
	case cst.KindNumber:
		if strings.ContainsAny(n.Text(), "jJ") {
			v.bail(n, "complex number")
		}
		return number(n.Text())
	case cst.KindString:
		return v.str(n)
	case cst.KindTrue, cst.KindFalse, cst.KindNull:
		return literal(n)
	case cst.KindParenthesized:
		return v.expr(n.Children[0])
	case cst.KindBinary:
		return v.binary(n)
	case cst.KindBooleanOp:
		op := ast.LogicalAnd
		if n.Field("operator").Text() == "or" {
			op = ast.LogicalOr
		}
		return &ast.LogicalExpression{Operator: op, Left: v.expr(n.Field("left")), Right: v.expr(n.Field("right"))}
	case cst.KindNot:
		return &ast.LogicalExpression{Operator: ast.LogicalNot, Left: v.expr(n.Field("argument"))}
	case cst.KindComparison:
		return v.comparison(n)
	case cst.KindUnary:
		arg := v.expr(n.Field("argument"))
		switch n.Field("operator").Text() {
		case "-":
			return &ast.UnaryExpression{Operator: ast.UnaryNegative, Operand: arg}
		case "+":
			return &ast.UnaryExpression{Operator: ast.UnaryPositive, Operand: arg}
		}
		return &ast.BitwiseExpression{Operator: ast.BitwiseNot, Left: arg}
	case cst.KindConditional:
		return &ast.TernaryExpression{
			Condition: v.expr(n.Field("condition")),
			Then:      v.expr(n.Field("consequence")),
			Else:      v.expr(n.Field("alternative")),
		}
	case cst.KindCall:
		return v.call(n)
	case cst.KindSubscript:
		return v.subscript(n)
	case cst.KindMember:
		return v.attribute(n)
	case cst.KindList:
		return &ast.ArrayLiteral{Elements: v.exprs(n.Children)}
	case cst.KindTuple:
		v.bail(n, "tuple")
	}

	v.bail(n, construct(n))
	return nil
}

func (v *python) str(n *cst.Node) ast.Expr {
	text, prefix := unquote(n.Text())

	switch {
	case strings.ContainsAny(prefix, "bB"):
		v.bail(n, "bytes literal")
	case strings.ContainsAny(prefix, "fF"):
		return v.fstringExpr(n)
	}

	return &ast.Literal{Value: text, Type: ast.LiteralString}
}

func (v *python) binary(n *cst.Node) ast.Expr {
	op := n.Field("operator").Text()
	l, r := n.Field("left"), n.Field("right")

	switch {
	case op == "%" && isPlainString(l):
		v.bail(n, "percent formatting outside print")
	case op == "*" && (l.Is(cst.KindList) || r.Is(cst.KindList)):
		v.bail(n, "list repetition")
	}

	left, right := v.expr(l), v.expr(r)

	if o, ok := pythonArithmetic[op]; ok {
		if o == ast.BinaryMultiplication && (v.ctx.TypeOf(left).IsString() || v.ctx.TypeOf(right).IsString()) {
			v.bail(n, "string repetition")
		}

		return &ast.BinaryExpression{Operator: o, Left: left, Right: right}
	}

	if o, ok := bitwiseOperators[op]; ok {
		return &ast.BitwiseExpression{Operator: o, Left: left, Right: right}
	}

	v.bail(n, "operator "+op)
	return nil
}

func isPlainString(n *cst.Node) bool {
	if !n.Is(cst.KindString) {
		return false
	}

	_, prefix := unquote(n.Text())
	return !strings.ContainsAny(prefix, "fFbB")
}

func isFString(n *cst.Node) bool {
	if !n.Is(cst.KindString) {
		return false
	}

	_, prefix := unquote(n.Text())
	return strings.ContainsAny(prefix, "fF")
}

// comparison lowers a chain such as a < b < c to a conjunction of pairs.
func (v *python) comparison(n *cst.Node) ast.Expr {
	var result ast.Expr

	left := v.expr(n.Children[0])
	for i := 1; i+1 < len(n.Children); i += 2 {
		right := v.expr(n.Children[i+1])

		var op ast.ComparisonOp
		switch text := n.Children[i].Text(); text {
		case "is":
			op = ast.CompareEqual
		case "is not":
			op = ast.CompareNotEqual
		case "in", "not in":
			v.bail(n, "membership test")
		default:
			op = comparisonOperators[text]
		}

		cmp := &ast.ComparisonExpression{Operator: op, Left: left, Right: right}
		if result == nil {
			result = cmp
		} else {
			result = &ast.LogicalExpression{Operator: ast.LogicalAnd, Left: result, Right: cmp}
		}

		left = right
	}

	return result
}

// subscript lowers xs[i]. A negative literal index counts from the end.
func (v *python) subscript(n *cst.Node) ast.Expr {
	index := n.Field("index")
	if index.Is(cst.KindTuple) {
		v.bail(n, "multi-dimensional index")
	}

	arr, i := v.expr(n.Field("argument")), v.expr(index)
	if neg, ok := i.(*ast.UnaryExpression); ok && neg.Operator == ast.UnaryNegative {
		if _, ok := neg.Operand.(*ast.Literal); ok {
			i = &ast.BinaryExpression{Operator: ast.BinarySubtraction, Left: builtin("len", arr), Right: neg.Operand}
		}
	}

	return &ast.Subscript{Array: arr, Index: i}
}

func (v *python) attribute(n *cst.Node) ast.Expr {
	switch qualified(n) {
	case "math.pi":
		return &ast.Literal{Value: "3.141592653589793", Type: ast.LiteralFloat}
	case "math.e":
		return &ast.Literal{Value: "2.718281828459045", Type: ast.LiteralFloat}
	}

	return &ast.Attribute{Object: v.expr(n.Field("argument")), Attribute: n.Field("field").Text()}
}

func (v *python) call(n *cst.Node) ast.Expr {
	fn := n.Field("function")

	switch {
	case fn.Is(cst.KindIdentifier) && v.isUser(fn.Text()):
		return v.userCall(n, fn.Text())
	case fn.Is(cst.KindIdentifier):
		if e := v.builtinCall(n, fn.Text()); e != nil {
			return e
		}
		return &ast.CallExpression{FunctionName: fn.Text(), Args: v.args(n)}
	case fn.Is(cst.KindMember):
		return v.methodCall(n, fn)
	}

	v.bail(n, "indirect call")
	return nil
}

// userCall matches keyword arguments to parameters by name and fills the
// missing trailing arguments with the parameter defaults.
func (v *python) userCall(n *cst.Node, name string) ast.Expr {
	names, defaults := v.sig.names[name], v.sig.defaults[name]
	args := make([]ast.Expr, len(names))

	pos := 0
	for _, arg := range n.Field("arguments").Children {
		if arg.Is(cst.KindKeywordArg) {
			i := indexOf(names, arg.Field("name").Text())
			if i < 0 || args[i] != nil {
				v.bail(arg, "keyword argument")
			}

			args[i] = v.expr(arg.Field("value"))
			continue
		}

		if pos >= len(args) {
			v.bail(n, "too many arguments")
		}

		args[pos] = v.expr(arg)
		pos++
	}

	types := make([]ast.Type, len(args))
	for i := range args {
		if args[i] == nil {
			if defaults[i] == nil {
				v.bail(n, "missing argument")
			}
			args[i] = v.expr(defaults[i])
		}

		types[i] = v.ctx.TypeOf(args[i])
	}

	v.sig.observe(name, types)
	return &ast.CallExpression{FunctionName: name, Args: args}
}

func indexOf(list []string, s string) int {
	for i, item := range list {
		if item == s {
			return i
		}
	}

	return -1
}

func (v *python) builtinCall(n *cst.Node, name string) ast.Expr {
	switch name {
	case "print":
		v.bail(n, "print inside an expression")
	case "input":
		v.bail(n, "input")
	case "range":
		v.bail(n, "range outside a for loop")
	case "exit", "quit":
		v.bail(n, "exit inside an expression")
	}

	if !core.Builtins[name] && name != "pow" {
		return nil
	}

	args := v.args(n)

	switch name {
	case "pow":
		if len(args) != 2 {
			v.bail(n, "pow with a modulus")
		}
		return &ast.BinaryExpression{Operator: ast.BinaryPower, Left: args[0], Right: args[1]}
	case "max", "min":
		if len(args) < 2 {
			v.bail(n, name+" of an iterable")
		}
	case "int":
		if len(args) != 1 {
			v.bail(n, "int with a base")
		}
	default:
		if len(args) != 1 {
			v.bail(n, name+" call")
		}
	}

	return builtin(name, args...)
}

func (v *python) methodCall(n *cst.Node, fn *cst.Node) ast.Expr {
	q := qualified(fn)

	switch q {
	case "math.sqrt":
		return builtin("sqrt", v.args(n)...)
	case "math.fabs":
		return builtin("abs", v.args(n)...)
	case "math.pow":
		args := v.args(n)
		if len(args) == 2 {
			return &ast.BinaryExpression{Operator: ast.BinaryPower, Left: args[0], Right: args[1]}
		}
	case "sys.exit":
		v.bail(n, "exit inside an expression")
	}

	if strings.HasPrefix(q, "math.") || strings.HasPrefix(q, "sys.") {
		v.bail(n, q)
	}

	switch method := fn.Field("field").Text(); method {
	case "append", "extend", "insert", "pop", "remove", "clear":
		v.bail(n, "list "+method)
	}

	return &ast.CallExpression{
		FunctionName: fn.Field("field").Text(),
		Receiver:     v.expr(fn.Field("argument")),
		Args:         v.args(n),
	}
}

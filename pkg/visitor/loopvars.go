package visitor

import (
	"go.crosslang.dev/pkg/ast"
)

// binding is a loop that binds a name: a counted loop whose init assigns
// or declares it, or an iteration loop over it.
type binding struct {
	loop *ast.LoopStatement
	name string
}

func bindingOf(n ast.Node) (binding, bool) {
	loop, ok := n.(*ast.LoopStatement)
	if !ok || loop.Loop != ast.LoopFor {
		return binding{}, false
	}

	if loop.IsIteration() {
		return binding{loop, loop.LoopVar}, true
	}

	switch init := loop.Init.(type) {
	case *ast.VariableDeclaration:
		return binding{loop, init.Name}, true
	case *ast.AssignmentExpression:
		if id, ok := init.Left.(*ast.Identifier); ok && init.Operator == ast.Assign {
			return binding{loop, id.Name}, true
		}
	}

	return binding{}, false
}

// loopScopes settles where loop variables live. Python binds them in the
// enclosing function while the C family scopes them to their loop. A name
// the loops introduce and nothing else touches is declared by each loop.
// Any other name introduced by a loop is declared once, before the statement
// holding that loop. Its loops then walk a fresh variable and copy it over
// on each pass, so that the name keeps the last value Python leaves in it
// and rebinding it in the body does not steer the loop.
func (v *python) loopScopes(body []ast.Node, params ...string) []ast.Node {
	loops := make(map[string][]*ast.LoopStatement)
	var order []string

	ast.InspectAll(body, func(n ast.Node) bool {
		if b, ok := bindingOf(n); ok {
			if _, seen := loops[b.name]; !seen {
				order = append(order, b.name)
			}
			loops[b.name] = append(loops[b.name], b.loop)
		}
		return true
	})

	hoisted := make(map[*ast.LoopStatement]ast.Node)
	taken := names(body)
	for _, p := range params {
		taken[p] = true
	}

	for _, name := range order {
		list := loops[name]

		t, introduced := v.counterType(list[0])
		if introduced && confined(body, name, list) {
			for _, loop := range list {
				if a, ok := loop.Init.(*ast.AssignmentExpression); ok {
					loop.Init = &ast.VariableDeclaration{Name: name, Type: ast.Named(ast.TypeInt), Value: a.Right}
				}
			}
			continue
		}

		if introduced && !declaredOutside(body, name) {
			hoisted[list[0]] = &ast.VariableDeclaration{Name: name, Type: t}
		}

		for _, loop := range list {
			alias := unique(name, taken)
			if loop.IsIteration() {
				loop.LoopVar = alias
			} else {
				retarget(loop, name, alias)
			}

			assign := &ast.AssignmentExpression{Left: &ast.Identifier{Name: name}, Operator: ast.Assign, Right: &ast.Identifier{Name: alias}}
			loop.Body = append([]ast.Node{assign}, loop.Body...)
		}
	}

	if len(hoisted) == 0 {
		return body
	}

	out := make([]ast.Node, 0, len(body)+len(hoisted))
	for _, stmt := range body {
		ast.Inspect(stmt, func(n ast.Node) bool {
			if loop, ok := n.(*ast.LoopStatement); ok {
				if d, ok := hoisted[loop]; ok {
					out = append(out, d)
				}
			}
			return true
		})
		out = append(out, stmt)
	}

	return out
}

// retarget moves a counted loop over name onto a counter of its own. The
// loop has the shape range loops are lowered to: the counter on the left
// of the condition and alone in the update.
func retarget(loop *ast.LoopStatement, name, alias string) {
	counter := &ast.Identifier{Name: alias}

	var start ast.Expr
	switch init := loop.Init.(type) {
	case *ast.VariableDeclaration:
		start = init.Value
	case *ast.AssignmentExpression:
		start = init.Right
	}
	loop.Init = &ast.VariableDeclaration{Name: alias, Type: ast.Named(ast.TypeInt), Value: start}

	if c, ok := loop.Condition.(*ast.ComparisonExpression); ok && isName(c.Left, name) {
		cond := *c
		cond.Left = counter
		loop.Condition = &cond
	}

	switch u := loop.Update.(type) {
	case *ast.UnaryExpression:
		if isName(u.Operand, name) {
			update := *u
			update.Operand = counter
			loop.Update = &update
		}
	case *ast.AssignmentExpression:
		if isName(u.Left, name) {
			update := *u
			update.Left = counter
			loop.Update = &update
		}
	}
}

func isName(e ast.Expr, name string) bool {
	id, ok := e.(*ast.Identifier)
	return ok && id.Name == name
}

// counterType is the type of the variable loop introduces. It reports false
// when the name was bound before the loop.
func (v *python) counterType(loop *ast.LoopStatement) (ast.Type, bool) {
	if loop.IsIteration() {
		t, ok := v.elems[loop]
		return t, ok
	}

	d, ok := loop.Init.(*ast.VariableDeclaration)
	if !ok {
		return ast.Type{}, false
	}

	return d.Type, true
}

// confined reports whether every use of name sits inside one of the loops
// binding it, none of which nests another.
func confined(body []ast.Node, name string, loops []*ast.LoopStatement) bool {
	inside := 0
	for _, loop := range loops {
		for _, other := range loops {
			if other != loop && contains(loop.Body, other) {
				return false
			}
		}
		inside += uses([]ast.Node{loop}, name)
	}

	return !declaredOutside(body, name) && inside == uses(body, name)
}

func contains(nodes []ast.Node, target ast.Node) bool {
	found := false
	ast.InspectAll(nodes, func(n ast.Node) bool {
		found = found || n == target
		return !found
	})

	return found
}

func uses(nodes []ast.Node, name string) int {
	count := 0
	ast.InspectAll(nodes, func(n ast.Node) bool {
		if id, ok := n.(*ast.Identifier); ok && id.Name == name {
			count++
		}
		return true
	})

	return count
}

// declaredOutside reports a declaration of name that is not a loop init.
func declaredOutside(body []ast.Node, name string) bool {
	found := false
	ast.InspectAll(body, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.LoopStatement:
			if _, ok := n.Init.(*ast.VariableDeclaration); ok {
				found = found || declaredOutside(n.Body, name)
				return false
			}
		case *ast.VariableDeclaration:
			found = found || n.Name == name
		case *ast.ArrayDeclaration:
			found = found || n.Name == name
		}
		return !found
	})

	return found
}

// names collects every name used or declared in body.
func names(body []ast.Node) map[string]bool {
	set := make(map[string]bool)
	ast.InspectAll(body, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.Identifier:
			set[n.Name] = true
		case *ast.VariableDeclaration:
			set[n.Name] = true
		case *ast.ArrayDeclaration:
			set[n.Name] = true
		case *ast.LoopStatement:
			if n.LoopVar != "" {
				set[n.LoopVar] = true
			}
		}
		return true
	})

	return set
}

func unique(name string, taken map[string]bool) string {
	name += "_"
	for taken[name] {
		name += "_"
	}
	taken[name] = true

	return name
}

package generator

import (
	"strconv"

	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/core"
)

// Range is a counted loop visiting Start, Start+Step, ... up to Stop,
// exclusive.
type Range struct {
	Var   string
	Start ast.Expr
	Stop  ast.Expr
	Step  int64
}

// IsSimple reports a loop from zero in steps of one.
func (r *Range) IsSimple() bool {
	lit, ok := r.Start.(*ast.Literal)
	return ok && lit.Type == ast.LiteralInt && lit.Value == "0" && r.Step == 1
}

// CountedRange derives a range from a C-style loop: an integer variable
// initialised once, compared against a bound the body leaves alone, and
// stepped by a constant.
func CountedRange(loop *ast.LoopStatement, ctx *core.Context) (*Range, bool) {
	if loop.Loop != ast.LoopFor || loop.IsIteration() {
		return nil, false
	}

	r := &Range{}

	switch init := loop.Init.(type) {
	case *ast.VariableDeclaration:
		if init.Value == nil || !init.Type.IsIntegral() {
			return nil, false
		}
		r.Var, r.Start = init.Name, init.Value
	case *ast.AssignmentExpression:
		id, ok := init.Left.(*ast.Identifier)
		if !ok || init.Operator != ast.Assign || !ctx.IsIntegral(id) {
			return nil, false
		}
		r.Var, r.Start = id.Name, init.Right
	default:
		return nil, false
	}

	step, ok := stepOf(loop.Update, r.Var)
	if !ok || step == 0 {
		return nil, false
	}
	r.Step = step

	cmp, ok := loop.Condition.(*ast.ComparisonExpression)
	if !ok {
		return nil, false
	}

	op, bound := cmp.Operator, cmp.Right
	if !isVar(cmp.Left, r.Var) {
		if !isVar(cmp.Right, r.Var) {
			return nil, false
		}
		op, bound = mirror(op), cmp.Left
	}

	switch op {
	case ast.CompareLess:
		r.Stop = bound
	case ast.CompareLessEqual:
		r.Stop = offset(bound, 1)
	case ast.CompareGreater:
		r.Stop = bound
	case ast.CompareGreaterEqual:
		r.Stop = offset(bound, -1)
	case ast.CompareNotEqual:
		if step != 1 && step != -1 {
			return nil, false
		}
		r.Stop = bound
	default:
		return nil, false
	}

	up := op == ast.CompareLess || op == ast.CompareLessEqual
	down := op == ast.CompareGreater || op == ast.CompareGreaterEqual
	if (up && step < 0) || (down && step > 0) {
		return nil, false
	}

	assigned := Assigned(loop.Body)
	if assigned[r.Var] {
		return nil, false
	}

	stable := true
	ast.Inspect(bound, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.Identifier:
			stable = stable && !assigned[n.Name]
		case *ast.CallExpression, *ast.AssignmentExpression:
			stable = false
		}
		return stable
	})

	return r, stable
}

// DeclareCounter records the variable of r in ctx as a counter when it
// runs up from a non-negative start, which keeps it non-negative.
func DeclareCounter(r *Range, ctx *core.Context) {
	start, ok := IntValue(r.Start)
	if !ok || start < 0 || r.Step < 0 {
		return
	}

	t := ast.Named(ast.TypeInt)
	if sym := ctx.GetSymbol(r.Var); sym != nil {
		t = sym.Type
	}
	ctx.AddSymbol(&core.Symbol{Name: r.Var, Type: t, Kind: core.SymbolCounter})
}

func isVar(e ast.Expr, name string) bool {
	id, ok := e.(*ast.Identifier)
	return ok && id.Name == name
}

// mirror swaps the operands of a comparison.
func mirror(op ast.ComparisonOp) ast.ComparisonOp {
	switch op {
	case ast.CompareLess:
		return ast.CompareGreater
	case ast.CompareLessEqual:
		return ast.CompareGreaterEqual
	case ast.CompareGreater:
		return ast.CompareLess
	case ast.CompareGreaterEqual:
		return ast.CompareLessEqual
	}

	return op
}

func stepOf(update ast.Node, name string) (int64, bool) {
	switch u := update.(type) {
	case *ast.UnaryExpression:
		if !isVar(u.Operand, name) {
			return 0, false
		}

		switch u.Operator {
		case ast.UnaryIncrement:
			return 1, true
		case ast.UnaryDecrement:
			return -1, true
		}
	case *ast.AssignmentExpression:
		if !isVar(u.Left, name) {
			return 0, false
		}

		switch u.Operator {
		case ast.AssignAdd:
			return IntValue(u.Right)
		case ast.AssignSubtract:
			n, ok := IntValue(u.Right)
			return -n, ok
		case ast.Assign:
			// i = i + k, i = i - k
			bin, ok := u.Right.(*ast.BinaryExpression)
			if !ok || !isVar(bin.Left, name) {
				return 0, false
			}

			n, ok := IntValue(bin.Right)
			switch bin.Operator {
			case ast.BinaryAddition:
				return n, ok
			case ast.BinarySubtraction:
				return -n, ok
			}
		}
	}

	return 0, false
}

// IntValue reads a decimal integer literal, possibly negated.
func IntValue(e ast.Expr) (int64, bool) {
	switch e := e.(type) {
	case *ast.Literal:
		if e.Type != ast.LiteralInt {
			return 0, false
		}

		n, err := strconv.ParseInt(e.Value, 0, 64)
		return n, err == nil
	case *ast.UnaryExpression:
		n, ok := IntValue(e.Operand)
		switch e.Operator {
		case ast.UnaryNegative:
			return -n, ok
		case ast.UnaryPositive:
			return n, ok
		}
	}

	return 0, false
}

// offset adds k to e, folding integer literals.
func offset(e ast.Expr, k int64) ast.Expr {
	if n, ok := IntValue(e); ok {
		return IntLiteral(n + k)
	}

	op := ast.BinaryAddition
	if k < 0 {
		op, k = ast.BinarySubtraction, -k
	}

	return &ast.BinaryExpression{Operator: op, Left: e, Right: IntLiteral(k)}
}

// IntLiteral builds an integer literal; negative values become a negation.
func IntLiteral(n int64) ast.Expr {
	if n < 0 {
		return &ast.UnaryExpression{Operator: ast.UnaryNegative, Operand: IntLiteral(-n)}
	}

	return &ast.Literal{Value: strconv.FormatInt(n, 10), Type: ast.LiteralInt}
}
